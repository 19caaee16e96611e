package builtinfuncs

import (
	"github.com/buildgraph/bsi/internal/ast"
	"github.com/buildgraph/bsi/internal/build"
	"github.com/buildgraph/bsi/internal/ierrors"
	"github.com/buildgraph/bsi/internal/interp"
	"github.com/buildgraph/bsi/internal/object"
	"github.com/buildgraph/bsi/internal/value"
)

func registerTests(r *Registry) {
	testKwargs := kwset("args", "env", "workdir", "timeout", "suite", "is_parallel", "depends")
	r.register(&Spec{
		Name: "test", MinPos: 2, MaxPos: 2, Kwargs: testKwargs,
		Fn: testBuiltin(false),
	})
	r.register(&Spec{
		Name: "benchmark", MinPos: 2, MaxPos: 2, Kwargs: testKwargs,
		Fn: testBuiltin(true),
	})
	r.register(&Spec{
		Name: "add_test_setup", MinPos: 1, MaxPos: 1,
		Kwargs: kwset("env", "is_default", "timeout_multiplier"),
		Fn:     biAddTestSetup,
	})
}

func testBuiltin(isBenchmark bool) Impl {
	return func(r *Registry, ev *interp.Evaluator, pos ast.Pos, args []value.Value, kwargs *value.Dict) (value.Value, error) {
		name, err := strArg(args[0], "test() name")
		if err != nil {
			return nil, err
		}
		h, err := asHandle(args[1], object.KindTarget, "test() executable")
		if err != nil {
			return nil, err
		}
		target := h.Entity().(*build.Target)
		var testArgs []string
		if v, ok := kwargs.Get("args"); ok {
			testArgs, err = strList(v)
			if err != nil {
				return nil, err
			}
		}
		tc := &build.TestCase{Name: name, Target: target, Args: testArgs, Subproject: ev.Subproject, IsBenchmark: isBenchmark}
		if isBenchmark {
			ev.Build.Benchmarks = append(ev.Build.Benchmarks, tc)
		} else {
			ev.Build.Tests = append(ev.Build.Tests, tc)
		}
		return value.Null{}, nil
	}
}

func biAddTestSetup(r *Registry, ev *interp.Evaluator, pos ast.Pos, args []value.Value, kwargs *value.Dict) (value.Value, error) {
	name, err := strArg(args[0], "add_test_setup() name")
	if err != nil {
		return nil, err
	}
	setup := &build.TestSetup{Name: name, Env: map[string]string{}}
	if v, ok := kwargs.Get("env"); ok {
		d, ok := v.(*value.Dict)
		if !ok {
			return nil, ierrors.InvalidArguments("ARG106", "add_test_setup() env must be a dict")
		}
		for _, k := range d.Keys() {
			val, _ := d.Get(k)
			s, err := strArg(val, "add_test_setup() env value")
			if err != nil {
				return nil, err
			}
			setup.Env[k] = s
		}
	}
	isDefault, err := kwargBool(kwargs, "is_default", false)
	if err != nil {
		return nil, err
	}
	ev.Build.AddTestSetup(setup, isDefault)
	return value.Null{}, nil
}
