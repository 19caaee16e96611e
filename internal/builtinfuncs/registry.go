// Package builtinfuncs implements the declarative built-in function surface
// of spec §4.4: one schema record per built-in (positional arity, kwarg
// whitelist) consulted by a single central dispatcher, mirroring the
// teacher's internal/builtins.BuiltinSpec/RegisterEffectBuiltin registry.
package builtinfuncs

import (
	"fmt"

	"github.com/buildgraph/bsi/internal/ast"
	"github.com/buildgraph/bsi/internal/configure"
	"github.com/buildgraph/bsi/internal/dependency"
	"github.com/buildgraph/bsi/internal/ierrors"
	"github.com/buildgraph/bsi/internal/interp"
	"github.com/buildgraph/bsi/internal/modloader"
	"github.com/buildgraph/bsi/internal/project"
	"github.com/buildgraph/bsi/internal/value"
)

// Impl is one built-in's implementation, receiving already arity/kwarg-
// checked (but not yet type-coerced) arguments.
type Impl func(r *Registry, ev *interp.Evaluator, pos ast.Pos, args []value.Value, kwargs *value.Dict) (value.Value, error)

// Spec is the declarative per-built-in schema of spec §4.4(a)-(b): "every
// built-in, the contract has four parts: positional arity and types,
// whitelisted kwargs...".
type Spec struct {
	Name      string
	MinPos    int
	MaxPos    int // -1 = unbounded
	Kwargs    map[string]bool
	AnyKwargs bool // true for builtins (e.g. custom_target) that accept an open-ended kwarg set
	Fn        Impl
}

// FileReader is the external source-reading collaborator configure_file
// uses to fetch an input template's contents before substitution (spec §5:
// file reads are one of the three blocking operation classes the core
// delegates rather than performs itself).
type FileReader interface {
	ReadFile(path string) (string, error)
}

// Registry is the central dispatcher plus all of this port's collaborator
// seams: the project driver, the dependency orchestrator, the
// configure_file registry, and the module loader.
type Registry struct {
	table map[string]*Spec

	Driver    *project.Driver
	DepOrch   *dependency.Orchestrator
	ConfigReg *configure.Registry
	Modules   *modloader.Loader
	Files     FileReader

	// SourceRoot/BuildRoot back meson.source_root()/meson.build_root()
	// (spec §4.6, deprecated as of 0.56.0 in favor of the per-evaluator
	// current_source_dir()).
	SourceRoot string
	BuildRoot  string
}

// New constructs a Registry with every built-in of spec §4.4 registered,
// wired to the given collaborators.
func New(driver *project.Driver, depOrch *dependency.Orchestrator, configReg *configure.Registry, modules *modloader.Loader, files FileReader, sourceRoot, buildRoot string) *Registry {
	r := &Registry{
		table:      make(map[string]*Spec),
		Driver:     driver,
		DepOrch:    depOrch,
		ConfigReg:  configReg,
		Modules:    modules,
		Files:      files,
		SourceRoot: sourceRoot,
		BuildRoot:  buildRoot,
	}
	registerMeta(r)
	registerOptions(r)
	registerTargets(r)
	registerTests(r)
	registerInstall(r)
	registerConfig(r)
	registerDependency(r)
	registerIncludes(r)
	registerArgs(r)
	return r
}

func (r *Registry) register(s *Spec) {
	r.table[s.Name] = s
}

// disablerExempt holds the built-ins exempted from disabler absorption
// (original_source/mesonbuild/interpreter.py's func_is_disabler and its
// neighboring variable-table accessors): these inspect or bind the
// Disabler value itself rather than consuming it as an ordinary
// argument, so absorbing it before Fn runs would make is_disabler()
// and set_variable() unable to ever see one.
var disablerExempt = map[string]bool{
	"get_variable": true,
	"set_variable": true,
	"is_variable":  true,
	"is_disabler":  true,
}

// Call implements interp.Registry: look up the schema, enforce positional
// arity and the kwarg whitelist (spec §4.2 step 2's "positional arity
// check, kwarg whitelist"), then invoke Fn.
func (r *Registry) Call(ev *interp.Evaluator, name string, pos ast.Pos, args []value.Value, kwargs *value.Dict) (value.Value, error) {
	// Disabler absorption: if any positional argument is the Disabler,
	// the whole call resolves to Disabler without raising (spec §3,
	// testable property 2) — this mirrors the receiver-is-Disabler rule
	// applied at method-call sites, extended to free functions. The
	// variable-table and is_disabler() accessors are exempted since they
	// must be able to see a Disabler value rather than have it absorbed
	// out from under them.
	if !disablerExempt[name] {
		for _, a := range args {
			if value.IsDisabler(a) {
				return value.Disabler, nil
			}
		}
	}

	spec, ok := r.table[name]
	if !ok {
		return nil, ierrors.InterpreterException("RUN105", fmt.Sprintf("unknown function %q", name))
	}
	if len(args) < spec.MinPos || (spec.MaxPos >= 0 && len(args) > spec.MaxPos) {
		return nil, ierrors.InvalidArguments("ARG107", fmt.Sprintf("%s() expects between %d and %s positional arguments, got %d", name, spec.MinPos, maxPosStr(spec.MaxPos), len(args)))
	}
	if !spec.AnyKwargs {
		for _, k := range kwargs.Keys() {
			if !spec.Kwargs[k] {
				return nil, ierrors.InvalidArguments("ARG108", fmt.Sprintf("%s() does not accept kwarg %q", name, k))
			}
		}
	}
	return spec.Fn(r, ev, pos, args, kwargs)
}

func maxPosStr(max int) string {
	if max < 0 {
		return "unbounded"
	}
	return fmt.Sprintf("%d", max)
}
