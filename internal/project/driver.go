// Package project implements the project/subdirectory/subproject driver of
// spec §4.6: project() semantics, subdirectory recursion, subproject
// instantiation, and result merging back into the parent evaluator.
package project

import (
	"fmt"
	"path"
	"strings"

	"github.com/buildgraph/bsi/internal/ast"
	"github.com/buildgraph/bsi/internal/build"
	"github.com/buildgraph/bsi/internal/dependency"
	"github.com/buildgraph/bsi/internal/featuregate"
	"github.com/buildgraph/bsi/internal/ierrors"
	"github.com/buildgraph/bsi/internal/interp"
	"github.com/buildgraph/bsi/internal/machine"
	"github.com/buildgraph/bsi/internal/object"
	"github.com/buildgraph/bsi/internal/optionstore"
	"github.com/buildgraph/bsi/internal/value"
)

// SourceLoader is the external-parser seam (spec §1: "the core assumes a
// pre-built AST tree"): given a directory this port needs to evaluate, it
// returns the already-parsed CodeBlock for that directory's build
// description file.
type SourceLoader interface {
	LoadSubdir(sourceRoot, subdir string) (*ast.CodeBlock, error)
	LoadProjectRoot(sourceDir string) (*ast.CodeBlock, error)
	LoadOptionsFile(sourceDir string) (map[string]*optionstore.Option, error)
}

// Resolver is the subproject-fetching external collaborator (spec §6:
// "resolve(name, method, caller_subproject) -> local_source_directory").
type Resolver interface {
	Resolve(name, method, callerSubproject string) (sourceDir string, err error)
}

// record is a subproject's resolution state (spec §3: "Subproject record.
// Either resolved..., disabled..., or missing").
type record struct {
	found     bool
	reason    string
	evaluator *interp.Evaluator
	version   string
	sourceDir string
}

// ProjectKwargs is project()'s keyword-argument surface (spec §4.6).
type ProjectKwargs struct {
	Version        string
	License        string
	MesonVersion   string
	DefaultOptions []string
	SubprojectDir  string
}

// SubprojectKwargs is subproject()'s keyword-argument surface.
type SubprojectKwargs struct {
	Version        []string
	DefaultOptions []string
	Required       bool
	Disabled       bool // required resolved to a disabled feature option
}

// Driver owns subproject resolution state across a whole run. One Driver is
// constructed per top-level evaluation and shared by every evaluator
// spawned during that run.
type Driver struct {
	loader        SourceLoader
	resolver      Resolver
	sourceRoot    string
	subprojectDir string
	subprojects   map[string]*record
	backendInit   bool
}

// NewDriver constructs a Driver rooted at sourceRoot.
func NewDriver(loader SourceLoader, resolver Resolver, sourceRoot string) *Driver {
	return &Driver{
		loader:        loader,
		resolver:      resolver,
		sourceRoot:    sourceRoot,
		subprojectDir: "subprojects",
		subprojects:   make(map[string]*record),
	}
}

// Project implements project() (spec §4.6 steps 1-7).
func (d *Driver) Project(ev *interp.Evaluator, pos ast.Pos, name string, langs []string, kwargs ProjectKwargs) error {
	// Step 1: reject duplicate call per subproject.
	if ev.ProjectDeclared {
		return ierrors.InvalidCode("COD101", "project() called a second time in this (sub)project")
	}
	ev.ProjectDeclared = true

	// Step 2: evaluate meson_version first.
	minVersion := featuregate.ParseVersion("0.0.0")
	if kwargs.MesonVersion != "" {
		if c, err := featuregate.ParseConstraint(kwargs.MesonVersion); err == nil {
			minVersion = c.Version
		}
	}
	ev.Gate.SetMinVersion(ev.Subproject, minVersion)

	if kwargs.SubprojectDir != "" {
		d.subprojectDir = kwargs.SubprojectDir
	}

	// Step 3: load the options file, if present, and merge into the
	// option store under this subproject's namespace.
	if opts, err := d.loader.LoadOptionsFile(d.sourceRoot); err == nil {
		for optName, opt := range opts {
			ev.Options.Declare(ev.Subproject, optName, opt)
		}
	}

	// Step 4: record name/version/license in dep_manifest.
	license := kwargs.License
	if license == "" {
		license = "unknown"
	}
	ev.Build.DepManifest[name] = build.DepManifestEntry{Version: kwargs.Version, License: license}
	ev.ProjectName = name
	ev.ProjectVersion = kwargs.Version

	// Step 5: machines are already detected and carried on ev.Machine by
	// the caller (an external toolchain-introspection collaborator, §6);
	// nothing further to populate here beyond what NewRoot/NewChild did.

	// Step 6: add languages for host and build, failing softly (spec:
	// "each language detection may fail softly if not required"). No
	// compiler detection runs and the language names are not stored: the
	// loop only ensures this subproject has an (empty) Stdlibs entry.
	for _, lang := range langs {
		if _, ok := ev.Build.Stdlibs[ev.Subproject]; !ok {
			ev.Build.Stdlibs[ev.Subproject] = make(map[string]string)
		}
		_ = lang
	}

	// Step 7: initialize the backend on first project only.
	if !d.backendInit {
		d.backendInit = true
	}
	return nil
}

// Subdir implements subdir() (spec §4.6 steps 1-4).
func (d *Driver) Subdir(ev *interp.Evaluator, pos ast.Pos, relPath string, ifFoundObjects []value.Value) error {
	if strings.Contains(relPath, "..") || path.IsAbs(relPath) {
		return ierrors.InvalidCode("COD103", fmt.Sprintf("subdir(%q): path must be a relative in-tree path", relPath))
	}
	if strings.HasPrefix(relPath, d.subprojectDir+"/") || relPath == d.subprojectDir {
		return ierrors.InvalidCode("COD103", fmt.Sprintf("subdir(%q): cannot enter the subproject directory directly", relPath))
	}

	// Step 2: if_found guard.
	for _, v := range ifFoundObjects {
		h, ok := v.(*object.Handle)
		if !ok {
			return ierrors.InvalidArguments("ARG108", "subdir() if_found entries must be objects with a found() method")
		}
		method, err := h.Method("found")
		if err != nil {
			return ierrors.InvalidArguments("ARG108", "subdir() if_found entry has no found() method")
		}
		result, err := method(h, nil, value.NewDict())
		if err != nil {
			return err
		}
		if !result.Truthy() {
			return nil
		}
	}

	full := path.Join(ev.CurrentSubdir(), relPath)
	if err := ev.PushSubdir(full, pos); err != nil {
		return err
	}
	defer ev.PopSubdir()

	block, err := d.loader.LoadSubdir(d.sourceRoot, full)
	if err != nil {
		return ierrors.InvalidCode("COD103", fmt.Sprintf("subdir(%q): %v", relPath, err))
	}
	return ev.Run(block)
}

// InstantiateFallback implements dependency.SubprojectInstantiator,
// resolving and running a fallback subproject the first time it's needed
// (spec §4.8 step 7, delegating to Subproject's steps 2-5).
func (d *Driver) InstantiateFallback(callerEv *interp.Evaluator, name string, defaultOptions []string) error {
	_, err := d.Subproject(callerEv, ast.Pos{}, name, SubprojectKwargs{Required: true, DefaultOptions: defaultOptions})
	return err
}

// LookupVariable reads a variable out of a previously resolved subproject's
// environment (used by dependency()'s fallback varname form, spec §4.8
// step 7). get_variable() on a subproject handle reads the environment
// directly and does not go through this method.
func (d *Driver) LookupVariable(subprojectName, varName string) (*dependency.Dependency, bool) {
	rec, ok := d.subprojects[subprojectName]
	if !ok || !rec.found {
		return nil, false
	}
	v, ok := rec.evaluator.Env.Get(varName)
	if !ok {
		return nil, false
	}
	h, ok := v.(*object.Handle)
	if !ok {
		return nil, false
	}
	dep, ok := h.Entity().(*dependency.Dependency)
	return dep, ok
}

// LookupOverride checks whether a subproject's own evaluation registered an
// override for identifier (it shares the global Build accumulator, so any
// override it registered via its own dependency() calls is already
// globally visible; this just re-exposes the lookup through the
// SubprojectInstantiator seam for the orchestrator's consistency check).
func (d *Driver) LookupOverride(subprojectName string, role machine.Role, identifier string) (*dependency.Dependency, bool) {
	rec, ok := d.subprojects[subprojectName]
	if !ok || !rec.found {
		return nil, false
	}
	override, ok := rec.evaluator.Build.DependencyOverrideFor(role, identifier)
	if !ok || !override.Found {
		return nil, false
	}
	dep, ok := override.Value.(*dependency.Dependency)
	return dep, ok
}

// subprojectHandleMethods builds the method table for a subproject handle:
// found() and get_variable(name[, fallback]).
func subprojectHandleMethods(d *Driver, name string) map[string]object.Method {
	return map[string]object.Method{
		"found": func(h *object.Handle, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			rec := h.Entity().(*record)
			return value.Bool(rec.found), nil
		},
		"get_variable": func(h *object.Handle, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			rec := h.Entity().(*record)
			if !rec.found {
				return nil, ierrors.InterpreterException("RUN105", fmt.Sprintf("get_variable on disabled subproject %q", name))
			}
			if len(args) < 1 {
				return nil, ierrors.InvalidArguments("ARG107", "get_variable() requires a name")
			}
			varName, ok := args[0].(value.Str)
			if !ok {
				return nil, ierrors.InvalidArguments("ARG106", "get_variable() name must be a string")
			}
			v, ok := rec.evaluator.Env.Get(string(varName))
			if !ok {
				if len(args) > 1 {
					return args[1], nil
				}
				return nil, ierrors.InterpreterException("RUN105", fmt.Sprintf("subproject %q has no variable %q", name, string(varName)))
			}
			return v, nil
		},
	}
}

// Subproject implements subproject() (spec §4.6).
func (d *Driver) Subproject(parent *interp.Evaluator, pos ast.Pos, name string, kwargs SubprojectKwargs) (*object.Handle, error) {
	// Step 1: validate name.
	if name == "" || strings.Contains(name, "..") || strings.HasPrefix(name, ".") || path.IsAbs(name) {
		return nil, ierrors.InvalidArguments("ARG107", fmt.Sprintf("invalid subproject name %q", name))
	}
	for _, s := range parent.SubprojectStack {
		if s == name {
			return nil, ierrors.WrapException("WRP103", fmt.Sprintf("subproject %q would recurse into itself", name))
		}
	}

	// Step 2: already resolved.
	if rec, ok := d.subprojects[name]; ok {
		if rec.found && len(kwargs.Version) > 0 && !featuregate.MatchAll(rec.version, kwargs.Version) {
			return nil, ierrors.WrapException("WRP101", fmt.Sprintf("subproject %q version %q does not satisfy requested constraints", name, rec.version))
		}
		return object.New(object.KindSubproject, rec, subprojectHandleMethods(d, name), parent.Subproject), nil
	}

	if kwargs.Disabled {
		rec := &record{found: false, reason: "disabled via required feature option"}
		d.subprojects[name] = rec
		return object.New(object.KindSubproject, rec, subprojectHandleMethods(d, name), parent.Subproject), nil
	}

	// Step 3: resolve via external resolver.
	sourceDir, err := d.resolver.Resolve(name, "", parent.Subproject)
	if err != nil {
		if !kwargs.Required {
			rec := &record{found: false, reason: err.Error()}
			d.subprojects[name] = rec
			return object.New(object.KindSubproject, rec, subprojectHandleMethods(d, name), parent.Subproject), nil
		}
		return nil, ierrors.WrapException("WRP101", fmt.Sprintf("resolving subproject %q: %v", name, err))
	}

	// Step 4: fresh evaluator sharing the Build accumulator; freeze the
	// parent's project arguments. Global arguments are not frozen here.
	parent.Build.FreezeProjectArgs(parent.Subproject)
	child := parent.NewChildSubproject(name)

	block, err := d.loader.LoadProjectRoot(sourceDir)
	if err != nil {
		if !kwargs.Required {
			rec := &record{found: false, reason: err.Error()}
			d.subprojects[name] = rec
			return object.New(object.KindSubproject, rec, subprojectHandleMethods(d, name), parent.Subproject), nil
		}
		return nil, ierrors.WrapException("WRP101", fmt.Sprintf("loading subproject %q: %v", name, err))
	}

	// Step 5: run the child.
	if err := child.Run(block); err != nil {
		if !kwargs.Required {
			rec := &record{found: false, reason: err.Error()}
			d.subprojects[name] = rec
			return object.New(object.KindSubproject, rec, subprojectHandleMethods(d, name), parent.Subproject), nil
		}
		return nil, err
	}

	rec := &record{found: true, evaluator: child, version: child.ProjectVersion, sourceDir: sourceDir}
	d.subprojects[name] = rec

	// Step 6: version check against the recorded version.
	if len(kwargs.Version) > 0 && !featuregate.MatchAll(rec.version, kwargs.Version) {
		return nil, ierrors.WrapException("WRP101", fmt.Sprintf("subproject %q version %q does not satisfy requested constraints", name, rec.version))
	}

	return object.New(object.KindSubproject, rec, subprojectHandleMethods(d, name), parent.Subproject), nil
}
