package build

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildgraph/bsi/internal/machine"
)

func machines() machine.Set {
	d := machine.Descriptor{System: "linux", CPUFamily: "x86_64"}
	return machine.Set{Build: d, Host: d, Target: d}
}

func TestAddTarget_RejectsDuplicateID(t *testing.T) {
	b := New(machines())
	require.NoError(t, b.AddTarget(&Target{ID: "t1", Name: "a"}))
	err := b.AddTarget(&Target{ID: "t1", Name: "b"})
	require.Error(t, err)
}

func TestAddGlobalArguments_FrozenAfterFirstTarget(t *testing.T) {
	b := New(machines())
	require.NoError(t, b.AddGlobalArguments("c", []string{"-Wall"}))

	require.NoError(t, b.AddTarget(&Target{ID: "t1", Name: "a"}))

	err := b.AddGlobalArguments("c", []string{"-O2"})
	require.Error(t, err)
}

func TestAddProjectArguments_FrozenAfterFreeze(t *testing.T) {
	b := New(machines())
	require.NoError(t, b.AddProjectArguments("sub", "c", []string{"-DX"}))

	b.FreezeProjectArgs("sub")

	err := b.AddProjectArguments("sub", "c", []string{"-DY"})
	require.Error(t, err)
}

func TestAddProjectArguments_OtherSubprojectUnaffectedByFreeze(t *testing.T) {
	b := New(machines())
	b.FreezeProjectArgs("sub")

	err := b.AddProjectArguments("other", "c", []string{"-DY"})
	require.NoError(t, err)
}

func TestRegisterFindOverride_RejectsDuplicate(t *testing.T) {
	b := New(machines())
	require.NoError(t, b.RegisterFindOverride("tool", "prog1"))
	err := b.RegisterFindOverride("tool", "prog2")
	require.Error(t, err)
}

func TestRegisterFindOverride_RejectsAfterSearch(t *testing.T) {
	b := New(machines())
	b.MarkSearched("tool")
	err := b.RegisterFindOverride("tool", "prog1")
	require.Error(t, err)
}

func TestDependencyOverrideForRoundTrip(t *testing.T) {
	b := New(machines())
	b.SetDependencyOverride(machine.RoleHost, &DependencyOverride{Identifier: "zlib@host@", Found: true, Version: "1.3.0"})

	got, ok := b.DependencyOverrideFor(machine.RoleHost, "zlib@host@")
	require.True(t, ok)
	assert.Equal(t, "1.3.0", got.Version)

	_, ok = b.DependencyOverrideFor(machine.RoleBuild, "zlib@host@")
	assert.False(t, ok)
}
