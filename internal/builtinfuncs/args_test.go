package builtinfuncs

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildgraph/bsi/internal/ast"
	"github.com/buildgraph/bsi/internal/diag"
	"github.com/buildgraph/bsi/internal/interp"
	"github.com/buildgraph/bsi/internal/machine"
	"github.com/buildgraph/bsi/internal/sandbox"
	"github.com/buildgraph/bsi/internal/value"
)

func newArgsRegistry() *Registry {
	r := &Registry{table: make(map[string]*Spec)}
	registerArgs(r)
	return r
}

func newArgsEvaluator() *interp.Evaluator {
	d := machine.Descriptor{System: "linux", CPUFamily: "x86_64"}
	machines := machine.Set{Build: d, Host: d, Target: d}
	return interp.NewRoot(machines, diag.NewReporter(&bytes.Buffer{}), nil, sandbox.Policy{})
}

func TestAddGlobalArguments_DefaultsToUnnamedLanguage(t *testing.T) {
	r := newArgsRegistry()
	ev := newArgsEvaluator()
	_, err := r.Call(ev, "add_global_arguments", ast.Pos{}, []value.Value{value.NewStr("-Wall")}, value.NewDict())
	require.NoError(t, err)
	assert.Equal(t, []string{"-Wall"}, ev.Build.GlobalArgs[""])
}

func TestAddGlobalArguments_PerLanguage(t *testing.T) {
	r := newArgsRegistry()
	ev := newArgsEvaluator()
	kwargs := value.NewDict()
	kwargs.Set("language", value.NewStr("c"))
	_, err := r.Call(ev, "add_global_arguments", ast.Pos{}, []value.Value{value.NewStr("-DX")}, kwargs)
	require.NoError(t, err)
	assert.Equal(t, []string{"-DX"}, ev.Build.GlobalArgs["c"])
}

func TestAddProjectArguments_ScopedToSubproject(t *testing.T) {
	r := newArgsRegistry()
	ev := newArgsEvaluator()
	ev.Subproject = "sub"
	_, err := r.Call(ev, "add_project_arguments", ast.Pos{}, []value.Value{value.NewStr("-DY")}, value.NewDict())
	require.NoError(t, err)
	assert.Equal(t, []string{"-DY"}, ev.Build.ProjectArgs["sub"][""])
}

func TestJoinPathsBuiltin(t *testing.T) {
	r := newArgsRegistry()
	ev := newArgsEvaluator()
	got, err := r.Call(ev, "join_paths", ast.Pos{}, []value.Value{value.NewStr("a"), value.NewStr("b"), value.NewStr("c")}, value.NewDict())
	require.NoError(t, err)
	assert.Equal(t, value.NewStr("a/b/c"), got)
}

func TestAddLanguages_ReturnsTrue(t *testing.T) {
	r := newArgsRegistry()
	ev := newArgsEvaluator()
	got, err := r.Call(ev, "add_languages", ast.Pos{}, []value.Value{value.NewStr("c")}, value.NewDict())
	require.NoError(t, err)
	assert.Equal(t, value.Bool(true), got)
}
