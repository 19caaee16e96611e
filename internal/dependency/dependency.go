// Package dependency implements the dependency resolution orchestrator of
// spec §4.8: required-gate, identity computation, override/cache lookup,
// fallback-to-subproject binding, system-search delegation, and
// auto-registration of every found dependency as an override.
package dependency

import (
	"fmt"
	"sort"
	"strings"

	"github.com/buildgraph/bsi/internal/build"
	"github.com/buildgraph/bsi/internal/featuregate"
	"github.com/buildgraph/bsi/internal/ierrors"
	"github.com/buildgraph/bsi/internal/interp"
	"github.com/buildgraph/bsi/internal/machine"
)

// Dependency is the domain entity behind a found or not-found dependency
// handle.
type Dependency struct {
	Name       string
	Identifier string
	Found      bool
	Version    string
	CompileArgs []string
	LinkArgs    []string
	Variables   map[string]string
	Subproject  string // "" if system-provided
}

// NotFound constructs the not-found dependency value returned when a
// dependency can't be resolved and required=false (spec §4.8 step 8).
func NotFound(name string) *Dependency {
	return &Dependency{Name: name, Found: false}
}

// Provider is the external system-search collaborator (spec §6:
// "find_external_dependency(name, env, kwargs) -> Dependency").
type Provider interface {
	Find(name string, role machine.Role, kwargs Kwargs) (*Dependency, error)
}

// SubprojectInstantiator instantiates a fallback subproject and reads a
// variable or override out of it (spec §4.8 step 7). This is implemented by
// package project, injected here to avoid project<->dependency import
// cycles (project needs to call back into dependency for its own
// `dependency()` kwarg handling in a fuller port; this port keeps the
// direction one-way: builtinfuncs wires both into each other through this
// narrow seam).
type SubprojectInstantiator interface {
	InstantiateFallback(callerEv *interp.Evaluator, subprojectName string, defaultOptions []string) error
	LookupVariable(subprojectName, varName string) (*Dependency, bool)
	LookupOverride(subprojectName string, role machine.Role, identifier string) (*Dependency, bool)
}

// Kwargs is the subset of dependency()'s keyword arguments the orchestrator
// acts on directly; everything else (modules, include_type, method, ...) is
// opaque data forwarded to the Provider.
type Kwargs struct {
	VersionConstraints []string
	Required           bool
	Disabled           bool // required was an explicitly-disabled feature option
	Native             bool // native: true forces the build-machine role
	Static             bool
	Fallback           []string // [subproject_name, varname] or [subproject_name]
	AllowFallback      bool
	DefaultOptions     []string
	NotFoundMessage    string
	Raw                map[string]string // everything else, opaque passthrough for the Provider
}

func (k Kwargs) identitySuffix() string {
	var b strings.Builder
	if k.Static {
		b.WriteString("static;")
	}
	keys := make([]string, 0, len(k.Raw))
	for key := range k.Raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(&b, "%s=%s;", key, k.Raw[key])
	}
	return b.String()
}

// Orchestrator is the per-run dependency resolution engine, sharing the
// Build accumulator's override/cache tables with the rest of the
// evaluator.
type Orchestrator struct {
	build        *build.Build
	provider     Provider
	instantiator SubprojectInstantiator
	cache        map[machine.Role]map[string]*Dependency
	warn         func(message string)
}

// New constructs an Orchestrator bound to a shared Build accumulator.
func New(b *build.Build, provider Provider, instantiator SubprojectInstantiator, warn func(string)) *Orchestrator {
	return &Orchestrator{
		build:        b,
		provider:     provider,
		instantiator: instantiator,
		cache:        make(map[machine.Role]map[string]*Dependency),
		warn:         warn,
	}
}

// Identifier computes the cache/override key for a (name, kwargs, machine)
// triple (spec §4.8 step 2).
func Identifier(name string, kwargs Kwargs, role machine.Role) string {
	return fmt.Sprintf("%s@%s@%s", name, role, kwargs.identitySuffix())
}

// Resolve implements the full §4.8 algorithm. callerEv is the evaluator
// whose subdir/subproject dependency() is being evaluated in, used only to
// seed a fallback subproject's stack should one be instantiated.
func (o *Orchestrator) Resolve(callerEv *interp.Evaluator, name string, kwargs Kwargs) (*Dependency, error) {
	role := machine.RoleHost
	if kwargs.Native {
		role = machine.RoleBuild
	}

	// Step 1: required gate.
	if kwargs.Disabled {
		return NotFound(name), nil
	}

	identifier := Identifier(name, kwargs, role)

	// Step 3: override check.
	if cached, ok := o.cacheLookup(role, identifier); ok {
		if versionOK(cached, kwargs.VersionConstraints) {
			return cached, nil
		}
		return nil, o.fail(name, kwargs, "cached dependency %q does not satisfy version constraints", name)
	}

	// Steps 5-6: the system search always runs before any fallback is
	// tried. There is no forced-fallback path that skips it, and
	// kwargs.AllowFallback is not consulted.
	found, searchErr := o.provider.Find(name, role, kwargs)
	if searchErr == nil && found != nil && found.Found {
		if !versionOK(found, kwargs.VersionConstraints) {
			return o.tryFallback(callerEv, name, kwargs, role, identifier,
				"dependency() found %q on the system but it does not satisfy the requested version", name)
		}
		found.Identifier = identifier
		o.registerOverride(role, found)
		return found, nil
	}

	return o.tryFallback(callerEv, name, kwargs, role, identifier, "dependency() could not find %q on the system", name)
}

func (o *Orchestrator) cacheLookup(role machine.Role, identifier string) (*Dependency, bool) {
	if override, ok := o.build.DependencyOverrideFor(role, identifier); ok && override.Found {
		if dep, ok := override.Value.(*Dependency); ok {
			return dep, true
		}
	}
	m, ok := o.cache[role]
	if !ok {
		return nil, false
	}
	dep, ok := m[identifier]
	return dep, ok
}

func (o *Orchestrator) tryFallback(callerEv *interp.Evaluator, name string, kwargs Kwargs, role machine.Role, identifier, reasonFmt string, reasonArgs ...any) (*Dependency, error) {
	if len(kwargs.Fallback) == 0 {
		if !kwargs.Required {
			return NotFound(name), nil
		}
		return nil, o.fail(name, kwargs, reasonFmt, reasonArgs...)
	}

	subprojectName := kwargs.Fallback[0]
	var varName string
	if len(kwargs.Fallback) > 1 {
		varName = kwargs.Fallback[1]
	}

	if err := o.instantiator.InstantiateFallback(callerEv, subprojectName, kwargs.DefaultOptions); err != nil {
		if !kwargs.Required {
			return NotFound(name), nil
		}
		return nil, err
	}

	var dep *Dependency
	var ok bool
	if override, overrideOK := o.instantiator.LookupOverride(subprojectName, role, identifier); overrideOK {
		dep, ok = override, true
		if varName != "" {
			if varDep, varOK := o.instantiator.LookupVariable(subprojectName, varName); varOK && varDep.Identifier != dep.Identifier {
				o.warn(fmt.Sprintf("dependency fallback %q: override and variable %q disagree; preferring the override (open question, §9)", subprojectName, varName))
			}
		}
	} else if varName != "" {
		dep, ok = o.instantiator.LookupVariable(subprojectName, varName)
	}

	if !ok || dep == nil || !dep.Found {
		if !kwargs.Required {
			return NotFound(name), nil
		}
		return nil, o.fail(name, kwargs, "fallback subproject %q did not provide a found dependency", subprojectName)
	}
	if !versionOK(dep, kwargs.VersionConstraints) {
		if !kwargs.Required {
			return NotFound(name), nil
		}
		return nil, o.fail(name, kwargs, "fallback dependency from %q does not satisfy version constraints", subprojectName)
	}
	dep.Identifier = identifier
	o.registerOverride(role, dep)
	return dep, nil
}

func (o *Orchestrator) registerOverride(role machine.Role, dep *Dependency) {
	m, ok := o.cache[role]
	if !ok {
		m = make(map[string]*Dependency)
		o.cache[role] = m
	}
	m[dep.Identifier] = dep
	o.build.SetDependencyOverride(role, &build.DependencyOverride{
		Identifier: dep.Identifier,
		Found:      true,
		Version:    dep.Version,
		Value:      dep,
	})
}

func (o *Orchestrator) fail(name string, kwargs Kwargs, reasonFmt string, reasonArgs ...any) error {
	msg := fmt.Sprintf(reasonFmt, reasonArgs...)
	if kwargs.NotFoundMessage != "" {
		msg = kwargs.NotFoundMessage
	}
	return ierrors.DependencyException("DEP101", msg)
}

// versionOK implements the "any of a list of constraints all hold; match
// uses featuregate.MatchAll" rule of spec §4.8 closing paragraph.
func versionOK(dep *Dependency, constraints []string) bool {
	if len(constraints) == 0 {
		return true
	}
	return featuregate.MatchAll(dep.Version, constraints)
}
