package builtinfuncs

import (
	"fmt"

	"github.com/buildgraph/bsi/internal/ast"
	"github.com/buildgraph/bsi/internal/ierrors"
	"github.com/buildgraph/bsi/internal/interp"
	"github.com/buildgraph/bsi/internal/object"
	"github.com/buildgraph/bsi/internal/optionstore"
	"github.com/buildgraph/bsi/internal/value"
)

func registerOptions(r *Registry) {
	r.register(&Spec{
		Name:   "get_option",
		MinPos: 1, MaxPos: 1,
		Kwargs: kwset(),
		Fn: func(r *Registry, ev *interp.Evaluator, pos ast.Pos, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			name, err := strArg(args[0], "get_option() name")
			if err != nil {
				return nil, err
			}
			opt, err := ev.Options.Get(ev.Subproject, name, pos)
			if err != nil {
				return nil, err
			}
			if opt.Kind == optionstore.KindFeature {
				ref, ok := opt.ResolvedValue().(*optionstore.FeatureRef)
				if !ok {
					return nil, ierrors.InterpreterException("RUN105", fmt.Sprintf("option %q is malformed: expected a feature reference", name))
				}
				return newFeatureOptionHandle(ev, ref), nil
			}
			return opt.ResolvedValue(), nil
		},
	})
}

// newFeatureOptionHandle wraps a *optionstore.FeatureRef in an ObjectHandle
// per spec §4.7's "feature options return a handle... wrapping the
// tri-state", giving DSL code the enabled()/disabled()/auto()/allowed()/
// require()/disable_auto_if() method surface real build descriptions use
// to branch on optional functionality.
func newFeatureOptionHandle(ev *interp.Evaluator, ref *optionstore.FeatureRef) *object.Handle {
	methods := map[string]object.Method{
		"enabled": func(h *object.Handle, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			return value.Bool(ref.State == optionstore.Enabled), nil
		},
		"disabled": func(h *object.Handle, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			return value.Bool(ref.State == optionstore.Disabled), nil
		},
		"auto": func(h *object.Handle, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			return value.Bool(ref.State == optionstore.Auto), nil
		},
		"allowed": func(h *object.Handle, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			return value.Bool(ref.State != optionstore.Disabled), nil
		},
		"require": func(h *object.Handle, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			if len(args) < 1 {
				return nil, ierrors.InvalidArguments("ARG107", "require() needs a boolean condition")
			}
			cond := args[0].Truthy()
			if cond {
				return newFeatureOptionHandle(ev, ref), nil
			}
			msg, _, err := kwargStr(kwargs, "error_message")
			if err != nil {
				return nil, err
			}
			switch ref.State {
			case optionstore.Enabled:
				if msg == "" {
					msg = fmt.Sprintf("feature %q is enabled but its required condition is false", ref.Name)
				}
				return nil, ierrors.InterpreterException("RUN104", msg)
			default:
				return newFeatureOptionHandle(ev, &optionstore.FeatureRef{Name: ref.Name, State: optionstore.Disabled}), nil
			}
		},
		"disable_auto_if": func(h *object.Handle, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			if len(args) < 1 {
				return nil, ierrors.InvalidArguments("ARG107", "disable_auto_if() needs a boolean condition")
			}
			if ref.State == optionstore.Auto && args[0].Truthy() {
				return newFeatureOptionHandle(ev, &optionstore.FeatureRef{Name: ref.Name, State: optionstore.Disabled}), nil
			}
			return newFeatureOptionHandle(ev, ref), nil
		},
	}
	return object.New(object.KindFeatureOption, ref, methods, ev.Subproject)
}
