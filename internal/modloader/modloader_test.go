package modloader

import (
	"os"
	"path/filepath"
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

func newEvaluator() *interp.Evaluator {
	d := machine.Descriptor{System: "linux", CPUFamily: "x86_64"}
	machines := machine.Set{Build: d, Host: d, Target: d}
	return interp.NewRoot(machines, diag.NewReporter(os.Stderr), noopRegistry{}, sandbox.Policy{})
}

type noopRegistry struct{}

func (noopRegistry) Call(ev *interp.Evaluator, name string, pos ast.Pos, args []value.Value, kwargs *value.Dict) (value.Value, error) {
	return value.Null{}, nil
}

func TestImport_FirstCallInstantiatesAndCaches(t *testing.T) {
	l := NewDefaultLoader("/src", "/build")
	m1, err := l.Import("modtest")
	require.NoError(t, err)
	m2, err := l.Import("modtest")
	require.NoError(t, err)
	assert.Same(t, m1, m2)
}

func TestImport_UnknownModuleErrors(t *testing.T) {
	l := NewDefaultLoader("/src", "/build")
	_, err := l.Import("nonexistent")
	require.Error(t, err)
}

func TestNewHandle_MethodDispatchesAndSnapshotsState(t *testing.T) {
	l := NewDefaultLoader("/src", "/build")
	m, err := l.Import("modtest")
	require.NoError(t, err)

	ev := newEvaluator()
	ev.Subproject = "sub1"
	h := l.NewHandle(ev, m)

	got, err := h.Method("current_subproject")
	require.NoError(t, err)
	ret, err := got(h, nil, value.NewDict())
	require.NoError(t, err)
	assert.Equal(t, value.NewStr("sub1"), ret)
}

func TestNewHandle_PropagatesMethodError(t *testing.T) {
	l := NewDefaultLoader("/src", "/build")
	m, err := l.Import("modtest")
	require.NoError(t, err)

	ev := newEvaluator()
	h := l.NewHandle(ev, m)

	fn, err := h.Method("private_function")
	require.NoError(t, err)
	_, err = fn(h, nil, value.NewDict())
	require.Error(t, err)
}

func TestFSModule_ExistsTrueAndFalse(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "present.txt")
	require.NoError(t, os.WriteFile(f, []byte("x"), 0o644))

	m := NewFSModule()
	state := ModuleState{SourceRoot: dir}

	ret, err := m.Methods["exists"](state, []value.Value{value.NewStr("present.txt")}, value.NewDict())
	require.NoError(t, err)
	assert.Equal(t, value.Bool(true), ret.ReturnValue)

	ret, err = m.Methods["exists"](state, []value.Value{value.NewStr("absent.txt")}, value.NewDict())
	require.NoError(t, err)
	assert.Equal(t, value.Bool(false), ret.ReturnValue)
}

func TestFSModule_IsDirAndIsFile(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	file := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	m := NewFSModule()
	state := ModuleState{SourceRoot: dir}

	ret, err := m.Methods["is_dir"](state, []value.Value{value.NewStr("sub")}, value.NewDict())
	require.NoError(t, err)
	assert.Equal(t, value.Bool(true), ret.ReturnValue)

	ret, err = m.Methods["is_file"](state, []value.Value{value.NewStr("f.txt")}, value.NewDict())
	require.NoError(t, err)
	assert.Equal(t, value.Bool(true), ret.ReturnValue)
}

func TestFSModule_ReadReturnsContents(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "data.txt")
	require.NoError(t, os.WriteFile(f, []byte("hello"), 0o644))

	m := NewFSModule()
	ret, err := m.Methods["read"](ModuleState{SourceRoot: dir}, []value.Value{value.NewStr("data.txt")}, value.NewDict())
	require.NoError(t, err)
	assert.Equal(t, value.NewStr("hello"), ret.ReturnValue)
}

func TestFSModule_ReadMissingFileErrors(t *testing.T) {
	dir := t.TempDir()
	m := NewFSModule()
	_, err := m.Methods["read"](ModuleState{SourceRoot: dir}, []value.Value{value.NewStr("nope.txt")}, value.NewDict())
	require.Error(t, err)
}

func TestFSModule_NameReturnsBasename(t *testing.T) {
	m := NewFSModule()
	ret, err := m.Methods["name"](ModuleState{SourceRoot: "/src"}, []value.Value{value.NewStr("a/b/c.txt")}, value.NewDict())
	require.NoError(t, err)
	assert.Equal(t, value.NewStr("c.txt"), ret.ReturnValue)
}

func TestFSModule_RejectsMissingPathArg(t *testing.T) {
	m := NewFSModule()
	_, err := m.Methods["exists"](ModuleState{SourceRoot: "/src"}, nil, value.NewDict())
	require.Error(t, err)
}

func TestKeyvalModule_LoadParsesFile(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "kv.txt")
	require.NoError(t, os.WriteFile(f, []byte("# comment\nfoo=bar\n\nbaz = qux\n"), 0o644))

	m := NewKeyvalModule()
	ret, err := m.Methods["load"](ModuleState{SourceRoot: dir}, []value.Value{value.NewStr("kv.txt")}, value.NewDict())
	require.NoError(t, err)

	d, ok := ret.ReturnValue.(*value.Dict)
	require.True(t, ok)
	got, ok := d.Get("foo")
	require.True(t, ok)
	assert.Equal(t, value.NewStr("bar"), got)
	got, ok = d.Get("baz")
	require.True(t, ok)
	assert.Equal(t, value.NewStr("qux"), got)
}

func TestKeyvalModule_LoadMissingFileErrors(t *testing.T) {
	m := NewKeyvalModule()
	_, err := m.Methods["load"](ModuleState{SourceRoot: t.TempDir()}, []value.Value{value.NewStr("missing.txt")}, value.NewDict())
	require.Error(t, err)
}

func TestModtestModule_PrintHello(t *testing.T) {
	m := NewModtestModule()
	ret, err := m.Methods["print_hello"](ModuleState{}, nil, value.NewDict())
	require.NoError(t, err)
	assert.Equal(t, value.NewStr("Hello from modtest"), ret.ReturnValue)
}
