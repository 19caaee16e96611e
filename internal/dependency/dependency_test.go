package dependency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildgraph/bsi/internal/build"
	"github.com/buildgraph/bsi/internal/interp"
	"github.com/buildgraph/bsi/internal/machine"
)

type fakeProvider struct {
	found map[string]*Dependency
	err   error
}

func (f *fakeProvider) Find(name string, role machine.Role, kwargs Kwargs) (*Dependency, error) {
	if f.err != nil {
		return nil, f.err
	}
	if d, ok := f.found[name]; ok {
		return d, nil
	}
	return NotFound(name), nil
}

type fakeInstantiator struct {
	instantiateErr error
	overrides      map[string]*Dependency
	variables      map[string]*Dependency
}

func (f *fakeInstantiator) InstantiateFallback(callerEv *interp.Evaluator, subprojectName string, defaultOptions []string) error {
	return f.instantiateErr
}

func (f *fakeInstantiator) LookupOverride(subprojectName string, role machine.Role, identifier string) (*Dependency, bool) {
	d, ok := f.overrides[subprojectName]
	return d, ok
}

func (f *fakeInstantiator) LookupVariable(subprojectName, varName string) (*Dependency, bool) {
	d, ok := f.variables[subprojectName]
	return d, ok
}

func machines() machine.Set {
	d := machine.Descriptor{System: "linux", CPUFamily: "x86_64"}
	return machine.Set{Build: d, Host: d, Target: d}
}

func TestResolve_DisabledShortCircuits(t *testing.T) {
	b := build.New(machines())
	o := New(b, &fakeProvider{}, &fakeInstantiator{}, func(string) {})

	dep, err := o.Resolve(nil, "zlib", Kwargs{Disabled: true, Required: true})
	require.NoError(t, err)
	assert.False(t, dep.Found)
}

func TestResolve_SystemFoundReturnsDependency(t *testing.T) {
	b := build.New(machines())
	provider := &fakeProvider{found: map[string]*Dependency{
		"zlib": {Name: "zlib", Found: true, Version: "1.3.0"},
	}}
	o := New(b, provider, &fakeInstantiator{}, func(string) {})

	dep, err := o.Resolve(nil, "zlib", Kwargs{})
	require.NoError(t, err)
	assert.True(t, dep.Found)
	assert.Equal(t, "1.3.0", dep.Version)
}

func TestResolve_NotFoundNotRequiredReturnsNotFoundDependency(t *testing.T) {
	b := build.New(machines())
	o := New(b, &fakeProvider{}, &fakeInstantiator{}, func(string) {})

	dep, err := o.Resolve(nil, "missing", Kwargs{Required: false})
	require.NoError(t, err)
	assert.False(t, dep.Found)
}

func TestResolve_NotFoundRequiredErrors(t *testing.T) {
	b := build.New(machines())
	o := New(b, &fakeProvider{}, &fakeInstantiator{}, func(string) {})

	_, err := o.Resolve(nil, "missing", Kwargs{Required: true})
	require.Error(t, err)
}

func TestResolve_VersionMismatchFallsBack(t *testing.T) {
	b := build.New(machines())
	provider := &fakeProvider{found: map[string]*Dependency{
		"zlib": {Name: "zlib", Found: true, Version: "1.1.0"},
	}}
	inst := &fakeInstantiator{
		overrides: map[string]*Dependency{
			"zlibproj": {Name: "zlib", Found: true, Version: "1.3.0"},
		},
	}
	o := New(b, provider, inst, func(string) {})

	dep, err := o.Resolve(nil, "zlib", Kwargs{
		VersionConstraints: []string{">=1.2.0"},
		Fallback:           []string{"zlibproj"},
		Required:           true,
	})
	require.NoError(t, err)
	assert.Equal(t, "1.3.0", dep.Version)
}

func TestResolve_FallbackVariableLookup(t *testing.T) {
	b := build.New(machines())
	inst := &fakeInstantiator{
		variables: map[string]*Dependency{
			"greeter": {Name: "greeter_dep", Found: true, Version: "0.1.0"},
		},
	}
	o := New(b, &fakeProvider{}, inst, func(string) {})

	dep, err := o.Resolve(nil, "greeter_dep", Kwargs{
		Fallback: []string{"greeter", "greeter_dep"},
		Required: true,
	})
	require.NoError(t, err)
	assert.True(t, dep.Found)
	assert.Equal(t, "0.1.0", dep.Version)
}

func TestResolve_FallbackInstantiationErrorPropagatesWhenRequired(t *testing.T) {
	b := build.New(machines())
	inst := &fakeInstantiator{instantiateErr: assertErr{"boom"}}
	o := New(b, &fakeProvider{}, inst, func(string) {})

	_, err := o.Resolve(nil, "x", Kwargs{Fallback: []string{"sub"}, Required: true})
	require.Error(t, err)
}

func TestResolve_CachedOverrideIsReused(t *testing.T) {
	b := build.New(machines())
	provider := &fakeProvider{found: map[string]*Dependency{
		"zlib": {Name: "zlib", Found: true, Version: "1.3.0"},
	}}
	o := New(b, provider, &fakeInstantiator{}, func(string) {})

	first, err := o.Resolve(nil, "zlib", Kwargs{})
	require.NoError(t, err)

	second, err := o.Resolve(nil, "zlib", Kwargs{})
	require.NoError(t, err)
	assert.Equal(t, first.Identifier, second.Identifier)
}

type assertErr struct{ msg string }

func (e assertErr) Error() string { return e.msg }
