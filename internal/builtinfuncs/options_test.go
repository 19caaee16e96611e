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
	"github.com/buildgraph/bsi/internal/optionstore"
	"github.com/buildgraph/bsi/internal/sandbox"
	"github.com/buildgraph/bsi/internal/value"
)

func newOptionsRegistry() *Registry {
	r := &Registry{table: make(map[string]*Spec)}
	registerOptions(r)
	return r
}

func newOptionsEvaluator() *interp.Evaluator {
	d := machine.Descriptor{System: "linux", CPUFamily: "x86_64"}
	machines := machine.Set{Build: d, Host: d, Target: d}
	return interp.NewRoot(machines, diag.NewReporter(&bytes.Buffer{}), nil, sandbox.Policy{})
}

func TestGetOption_StringOptionReturnsValue(t *testing.T) {
	r := newOptionsRegistry()
	ev := newOptionsEvaluator()
	ev.Options.Declare("", "prefix", &optionstore.Option{Kind: optionstore.KindString, Value: value.NewStr("/usr/local")})

	got, err := r.Call(ev, "get_option", ast.Pos{}, []value.Value{value.NewStr("prefix")}, value.NewDict())
	require.NoError(t, err)
	assert.Equal(t, value.NewStr("/usr/local"), got)
}

func TestGetOption_FeatureOptionReturnsHandle(t *testing.T) {
	r := newOptionsRegistry()
	ev := newOptionsEvaluator()
	ev.Options.Declare("", "foo", &optionstore.Option{
		Kind:  optionstore.KindFeature,
		Value: &optionstore.FeatureRef{Name: "foo", State: optionstore.Enabled},
	})

	got, err := r.Call(ev, "get_option", ast.Pos{}, []value.Value{value.NewStr("foo")}, value.NewDict())
	require.NoError(t, err)

	enabledFn, err := got.Method("enabled")
	require.NoError(t, err)
	enabled, err := enabledFn(nil, nil, value.NewDict())
	require.NoError(t, err)
	assert.Equal(t, value.Bool(true), enabled)
}

func TestGetOption_UndeclaredErrors(t *testing.T) {
	r := newOptionsRegistry()
	ev := newOptionsEvaluator()
	_, err := r.Call(ev, "get_option", ast.Pos{}, []value.Value{value.NewStr("missing")}, value.NewDict())
	require.Error(t, err)
}

func TestFeatureOptionHandle_RequireEnabledWithFalseConditionErrors(t *testing.T) {
	r := newOptionsRegistry()
	ev := newOptionsEvaluator()
	ev.Options.Declare("", "foo", &optionstore.Option{
		Kind:  optionstore.KindFeature,
		Value: &optionstore.FeatureRef{Name: "foo", State: optionstore.Enabled},
	})
	got, err := r.Call(ev, "get_option", ast.Pos{}, []value.Value{value.NewStr("foo")}, value.NewDict())
	require.NoError(t, err)

	requireFn, err := got.Method("require")
	require.NoError(t, err)
	_, err = requireFn(nil, []value.Value{value.Bool(false)}, value.NewDict())
	require.Error(t, err)
}

func TestFeatureOptionHandle_RequireAutoWithFalseConditionDisables(t *testing.T) {
	r := newOptionsRegistry()
	ev := newOptionsEvaluator()
	ev.Options.Declare("", "foo", &optionstore.Option{
		Kind:  optionstore.KindFeature,
		Value: &optionstore.FeatureRef{Name: "foo", State: optionstore.Auto},
	})
	got, err := r.Call(ev, "get_option", ast.Pos{}, []value.Value{value.NewStr("foo")}, value.NewDict())
	require.NoError(t, err)

	requireFn, err := got.Method("require")
	require.NoError(t, err)
	result, err := requireFn(nil, []value.Value{value.Bool(false)}, value.NewDict())
	require.NoError(t, err)

	disabledFn, err := result.Method("disabled")
	require.NoError(t, err)
	disabled, err := disabledFn(nil, nil, value.NewDict())
	require.NoError(t, err)
	assert.Equal(t, value.Bool(true), disabled)
}

func TestFeatureOptionHandle_DisableAutoIfTrueConditionDisablesAuto(t *testing.T) {
	r := newOptionsRegistry()
	ev := newOptionsEvaluator()
	ev.Options.Declare("", "foo", &optionstore.Option{
		Kind:  optionstore.KindFeature,
		Value: &optionstore.FeatureRef{Name: "foo", State: optionstore.Auto},
	})
	got, err := r.Call(ev, "get_option", ast.Pos{}, []value.Value{value.NewStr("foo")}, value.NewDict())
	require.NoError(t, err)

	fn, err := got.Method("disable_auto_if")
	require.NoError(t, err)
	result, err := fn(nil, []value.Value{value.Bool(true)}, value.NewDict())
	require.NoError(t, err)

	disabledFn, err := result.Method("disabled")
	require.NoError(t, err)
	disabled, err := disabledFn(nil, nil, value.NewDict())
	require.NoError(t, err)
	assert.Equal(t, value.Bool(true), disabled)
}
