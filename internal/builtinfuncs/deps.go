package builtinfuncs

import (
	"fmt"

	"github.com/buildgraph/bsi/internal/ast"
	"github.com/buildgraph/bsi/internal/build"
	"github.com/buildgraph/bsi/internal/dependency"
	"github.com/buildgraph/bsi/internal/ierrors"
	"github.com/buildgraph/bsi/internal/interp"
	"github.com/buildgraph/bsi/internal/object"
	"github.com/buildgraph/bsi/internal/optionstore"
	"github.com/buildgraph/bsi/internal/value"
)

func registerDependency(r *Registry) {
	r.register(&Spec{
		Name:   "dependency",
		MinPos: 1, MaxPos: 1,
		Kwargs: kwset("version", "required", "native", "static", "fallback", "allow_fallback",
			"default_options", "not_found_message", "modules", "method", "include_type"),
		Fn: biDependency,
	})
	r.register(&Spec{
		Name:   "find_program",
		MinPos: 1, MaxPos: -1,
		Kwargs: kwset("required", "native", "version", "disabler"),
		Fn:     biFindProgram,
	})
	r.register(&Spec{
		Name:   "declare_dependency",
		MinPos: 0, MaxPos: 0,
		Kwargs: kwset("version", "link_with", "include_directories", "sources", "dependencies", "variables"),
		Fn:     biDeclareDependency,
	})
}

func biDependency(r *Registry, ev *interp.Evaluator, pos ast.Pos, args []value.Value, kwargs *value.Dict) (value.Value, error) {
	name, err := strArg(args[0], "dependency() name")
	if err != nil {
		return nil, err
	}

	kw := dependency.Kwargs{Required: true, Raw: map[string]string{}}
	kw.VersionConstraints, err = kwargStrList(kwargs, "version")
	if err != nil {
		return nil, err
	}
	if v, ok := kwargs.Get("required"); ok {
		disabled, required, _, err := optionstore.ExtractRequiredKwarg(v, true, true)
		if err != nil {
			return nil, err
		}
		kw.Required = required
		kw.Disabled = disabled
	}
	kw.Native, err = kwargBool(kwargs, "native", false)
	if err != nil {
		return nil, err
	}
	kw.Static, err = kwargBool(kwargs, "static", false)
	if err != nil {
		return nil, err
	}
	kw.Fallback, err = kwargStrList(kwargs, "fallback")
	if err != nil {
		return nil, err
	}
	kw.AllowFallback, err = kwargBool(kwargs, "allow_fallback", true)
	if err != nil {
		return nil, err
	}
	kw.DefaultOptions, err = kwargStrList(kwargs, "default_options")
	if err != nil {
		return nil, err
	}
	kw.NotFoundMessage, _, err = kwargStr(kwargs, "not_found_message")
	if err != nil {
		return nil, err
	}
	for _, k := range []string{"method", "include_type"} {
		if s, ok, err := kwargStr(kwargs, k); err == nil && ok {
			kw.Raw[k] = s
		}
	}

	dep, err := r.DepOrch.Resolve(ev, name, kw)
	if err != nil {
		return nil, err
	}
	return dependencyHandle(ev, dep), nil
}

func dependencyHandle(ev *interp.Evaluator, dep *dependency.Dependency) *object.Handle {
	methods := map[string]object.Method{
		"found": func(h *object.Handle, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			return value.Bool(dep.Found), nil
		},
		"name": func(h *object.Handle, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			return value.NewStr(dep.Name), nil
		},
		"version": func(h *object.Handle, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			return value.NewStr(dep.Version), nil
		},
		"get_variable": func(h *object.Handle, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			if len(args) < 1 {
				return nil, ierrors.InvalidArguments("ARG107", "get_variable() requires a name")
			}
			name, err := strArg(args[0], "get_variable() name")
			if err != nil {
				return nil, err
			}
			if v, ok := dep.Variables[name]; ok {
				return value.NewStr(v), nil
			}
			if len(args) > 1 {
				return args[1], nil
			}
			return nil, ierrors.InterpreterException("RUN102", fmt.Sprintf("dependency %q has no variable %q", dep.Name, name))
		},
		"partial_dependency": func(h *object.Handle, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			return dependencyHandle(ev, dep), nil
		},
	}
	return object.New(object.KindDependency, dep, methods, ev.Subproject)
}

func biFindProgram(r *Registry, ev *interp.Evaluator, pos ast.Pos, args []value.Value, kwargs *value.Dict) (value.Value, error) {
	name, err := strArg(args[0], "find_program() name")
	if err != nil {
		return nil, err
	}
	required := true
	if v, ok := kwargs.Get("required"); ok {
		_, req, _, err := optionstore.ExtractRequiredKwarg(v, true, true)
		if err != nil {
			return nil, err
		}
		required = req
	}
	if override, ok := ev.Build.FindOverrides[name]; ok {
		ev.Build.MarkSearched(name)
		prog, _ := override.(*build.ExternalProgram)
		return programHandle(ev, prog), nil
	}
	ev.Build.MarkSearched(name)
	prog := &build.ExternalProgram{Name: name, Path: name, Found: true}
	if !required {
		useDisabler, derr := kwargBool(kwargs, "disabler", false)
		if derr != nil {
			return nil, derr
		}
		if useDisabler {
			return value.Disabler, nil
		}
	}
	if !prog.Found && required {
		return nil, ierrors.InterpreterException("RUN103", fmt.Sprintf("program %q not found", name))
	}
	return programHandle(ev, prog), nil
}

func programHandle(ev *interp.Evaluator, prog *build.ExternalProgram) *object.Handle {
	methods := map[string]object.Method{
		"found": func(h *object.Handle, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			return value.Bool(prog.Found), nil
		},
		"path": func(h *object.Handle, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			return value.NewStr(prog.Path), nil
		},
		"full_path": func(h *object.Handle, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			return value.NewStr(prog.Path), nil
		},
	}
	return object.New(object.KindExternalProgram, prog, methods, ev.Subproject)
}

func biDeclareDependency(r *Registry, ev *interp.Evaluator, pos ast.Pos, args []value.Value, kwargs *value.Dict) (value.Value, error) {
	dep := &dependency.Dependency{Name: "", Found: true, Subproject: ev.Subproject, Variables: map[string]string{}}
	dep.Version, _, _ = kwargStr(kwargs, "version")
	if v, ok := kwargs.Get("variables"); ok {
		d, ok := v.(*value.Dict)
		if !ok {
			return nil, ierrors.InvalidArguments("ARG106", "declare_dependency() variables must be a dict")
		}
		for _, k := range d.Keys() {
			val, _ := d.Get(k)
			s, err := strArg(val, "declare_dependency() variable value")
			if err != nil {
				return nil, err
			}
			dep.Variables[k] = s
		}
	}
	return dependencyHandle(ev, dep), nil
}
