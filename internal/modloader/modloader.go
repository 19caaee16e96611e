// Package modloader implements the extension-module registry of spec
// §4.11: named modules loaded on first import(), a ModuleState snapshot
// assembled per call, and tamper detection on the Build accumulator.
package modloader

import (
	"fmt"

	"github.com/buildgraph/bsi/internal/ast"
	"github.com/buildgraph/bsi/internal/build"
	"github.com/buildgraph/bsi/internal/ierrors"
	"github.com/buildgraph/bsi/internal/interp"
	"github.com/buildgraph/bsi/internal/machine"
	"github.com/buildgraph/bsi/internal/object"
	"github.com/buildgraph/bsi/internal/value"
)

// ModuleState is the immutable per-call snapshot handed to module methods
// (spec §4.11): "current source/build roots, current subdir, subproject,
// environment reference, project name and version, targets map,
// headers/man/data lists, machine descriptors, global/project args, and the
// current AST location".
type ModuleState struct {
	SourceRoot     string
	BuildRoot      string
	Subdir         string
	Subproject     string
	ProjectName    string
	ProjectVersion string
	Targets        map[string]*build.Target
	Headers        []build.DataFile
	Man            []build.DataFile
	Data           []build.DataFile
	Machines       machine.Set
	GlobalArgs     map[string][]string
	ProjectArgs    map[string]map[string][]string
	Pos            ast.Pos
}

// ModuleReturnValue is what a module method returns when it both produces
// a DSL-visible Value and wants new domain entities folded into the Build
// accumulator (spec §4.11: "its new_objects are processed... and the
// return_value is re-wrapped as a handle").
type ModuleReturnValue struct {
	ReturnValue value.Value
	NewTargets  []*build.Target
}

// MethodFunc is a single module method implementation.
type MethodFunc func(state ModuleState, args []value.Value, kwargs *value.Dict) (*ModuleReturnValue, error)

// Module is one named extension module's method table, built once at first
// import().
type Module struct {
	Name    string
	Methods map[string]MethodFunc
}

// Factory constructs a fresh Module instance. Modules are stateless enough
// in this port that most factories simply return a fixed method table, but
// the indirection mirrors the teacher's per-session module instantiation.
type Factory func() *Module

// Loader is the module registry shared across a whole run.
type Loader struct {
	factories map[string]Factory
	loaded    map[string]*Module
	buildRoot string
	sourceRoot string
}

// NewLoader constructs an empty Loader rooted at the given source/build
// directories, used to assemble ModuleState snapshots.
func NewLoader(sourceRoot, buildRoot string) *Loader {
	return &Loader{
		factories:  make(map[string]Factory),
		loaded:     make(map[string]*Module),
		sourceRoot: sourceRoot,
		buildRoot:  buildRoot,
	}
}

// NewDefaultLoader constructs a Loader with the supplemented built-in
// modules (fs, keyval, modtest) already registered, the set this port ships
// out of the box alongside whatever a build description imports.
func NewDefaultLoader(sourceRoot, buildRoot string) *Loader {
	l := NewLoader(sourceRoot, buildRoot)
	l.Register("fs", NewFSModule)
	l.Register("keyval", NewKeyvalModule)
	l.Register("modtest", NewModtestModule)
	return l
}

// Register adds a module factory under name, called by the built-in module
// set (fs, keyval, modtest) at Loader construction time.
func (l *Loader) Register(name string, f Factory) {
	l.factories[name] = f
}

// Import implements import(name) (spec §4.11): "The first call per name
// instantiates the module, which registers its own methods."
func (l *Loader) Import(name string) (*Module, error) {
	if m, ok := l.loaded[name]; ok {
		return m, nil
	}
	f, ok := l.factories[name]
	if !ok {
		return nil, ierrors.InvalidArguments("ARG108", fmt.Sprintf("unknown module %q", name))
	}
	m := f()
	l.loaded[name] = m
	return m, nil
}

// moduleHandleEntity is what a module's ObjectHandle wraps.
type moduleHandleEntity struct {
	module *Module
	loader *Loader
}

// NewHandle wraps an imported module as a DSL-visible handle whose methods
// dispatch through Call, snapshotting ModuleState and tamper-checking the
// Build accumulator around every call (spec §4.11 closing sentence).
func (l *Loader) NewHandle(ev *interp.Evaluator, m *Module) *object.Handle {
	entity := &moduleHandleEntity{module: m, loader: l}
	methods := make(map[string]object.Method, len(m.Methods))
	for name, fn := range m.Methods {
		fn := fn
		methods[name] = func(h *object.Handle, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			state := l.snapshot(ev)
			before := len(ev.Build.Targets)
			ret, err := fn(state, args, kwargs)
			if err != nil {
				return nil, err
			}
			for _, t := range ret.NewTargets {
				if err := ev.Build.AddTarget(t); err != nil {
					return nil, err
				}
			}
			after := before + len(ret.NewTargets)
			if len(ev.Build.Targets) != after {
				return nil, ierrors.InvalidCode("COD107", fmt.Sprintf("module %q mutated the build accumulator directly instead of via new_objects", m.Name))
			}
			if ret.ReturnValue == nil {
				return value.Null{}, nil
			}
			return ret.ReturnValue, nil
		}
	}
	return object.New(object.KindModule, entity, methods, ev.Subproject)
}

func (l *Loader) snapshot(ev *interp.Evaluator) ModuleState {
	return ModuleState{
		SourceRoot:     l.sourceRoot,
		BuildRoot:      l.buildRoot,
		Subdir:         ev.CurrentSubdir(),
		Subproject:     ev.Subproject,
		ProjectName:    ev.ProjectName,
		ProjectVersion: ev.ProjectVersion,
		Targets:        ev.Build.Targets,
		Headers:        ev.Build.Headers,
		Man:            ev.Build.Man,
		Data:           ev.Build.Data,
		Machines:       ev.Machine,
		GlobalArgs:     ev.Build.GlobalArgs,
		ProjectArgs:    ev.Build.ProjectArgs,
	}
}
