package builtinfuncs

import (
	"fmt"

	"github.com/buildgraph/bsi/internal/ast"
	"github.com/buildgraph/bsi/internal/build"
	"github.com/buildgraph/bsi/internal/featuregate"
	"github.com/buildgraph/bsi/internal/ierrors"
	"github.com/buildgraph/bsi/internal/installscript"
	"github.com/buildgraph/bsi/internal/interp"
	"github.com/buildgraph/bsi/internal/object"
	"github.com/buildgraph/bsi/internal/optionstore"
	"github.com/buildgraph/bsi/internal/project"
	"github.com/buildgraph/bsi/internal/value"
)

func registerMeta(r *Registry) {
	r.register(&Spec{
		Name:   "project",
		MinPos: 1, MaxPos: -1,
		Kwargs: kwset("version", "license", "meson_version", "default_options", "subproject_dir"),
		Fn:     biProject,
	})
	r.register(&Spec{
		Name:   "subdir",
		MinPos: 1, MaxPos: 1,
		Kwargs: kwset("if_found"),
		Fn:     biSubdir,
	})
	r.register(&Spec{
		Name:   "subdir_done",
		MinPos: 0, MaxPos: 0,
		Kwargs: kwset(),
		Fn: func(r *Registry, ev *interp.Evaluator, pos ast.Pos, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			return nil, interp.ErrSubdirDone
		},
	})
	r.register(&Spec{
		Name:   "subproject",
		MinPos: 1, MaxPos: 1,
		Kwargs: kwset("version", "default_options", "required"),
		Fn:     biSubproject,
	})
	r.register(&Spec{
		Name:   "assert",
		MinPos: 1, MaxPos: 2,
		Kwargs: kwset(),
		Fn: func(r *Registry, ev *interp.Evaluator, pos ast.Pos, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			if args[0].Truthy() {
				return value.Null{}, nil
			}
			msg := "assertion failed"
			if len(args) > 1 {
				if s, ok := args[1].(value.Str); ok {
					msg = string(s)
				}
			}
			return nil, ierrors.InterpreterException("RUN104", msg)
		},
	})
	r.register(&Spec{
		Name:   "error",
		MinPos: 1, MaxPos: -1,
		Kwargs: kwset(),
		Fn: func(r *Registry, ev *interp.Evaluator, pos ast.Pos, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			return nil, ierrors.InterpreterException("RUN104", joinStrs(args))
		},
	})
	r.register(&Spec{
		Name:   "warning",
		MinPos: 1, MaxPos: -1,
		Kwargs: kwset(),
		Fn: func(r *Registry, ev *interp.Evaluator, pos ast.Pos, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			ev.Diag.Warn(ev.Subproject, joinStrs(args), pos)
			return value.Null{}, nil
		},
	})
	r.register(&Spec{
		Name:   "message",
		MinPos: 1, MaxPos: -1,
		Kwargs: kwset(),
		Fn: func(r *Registry, ev *interp.Evaluator, pos ast.Pos, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			ev.Diag.Message(joinStrs(args))
			return value.Null{}, nil
		},
	})
	r.register(&Spec{
		Name:   "summary",
		MinPos: 1, MaxPos: 2,
		Kwargs: kwset("section", "bool_yn", "list_sep"),
		Fn: func(r *Registry, ev *interp.Evaluator, pos ast.Pos, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			ev.Diag.Message(fmt.Sprintf("summary: %s", joinStrs(args)))
			return value.Null{}, nil
		},
	})
	r.register(&Spec{
		Name:   "import",
		MinPos: 1, MaxPos: 1,
		Kwargs: kwset("required"),
		Fn: func(r *Registry, ev *interp.Evaluator, pos ast.Pos, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			name, err := strArg(args[0], "import() name")
			if err != nil {
				return nil, err
			}
			m, err := r.Modules.Import(name)
			if err != nil {
				if required, kerr := kwargBool(kwargs, "required", true); kerr == nil && !required {
					return value.Disabler, nil
				}
				return nil, err
			}
			return r.Modules.NewHandle(ev, m), nil
		},
	})
	r.register(&Spec{
		Name:   "files",
		MinPos: 0, MaxPos: -1,
		Kwargs: kwset(),
		Fn: func(r *Registry, ev *interp.Evaluator, pos ast.Pos, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			out := make([]value.Value, 0, len(args))
			for _, a := range args {
				s, err := strArg(a, "files() argument")
				if err != nil {
					return nil, err
				}
				if err := ev.Sandbox.CheckFile(s, ev.Subproject); err != nil {
					return nil, err
				}
				f := &build.File{Path: s, Subproject: ev.Subproject}
				out = append(out, object.New(object.KindFile, f, nil, ev.Subproject))
			}
			return &value.List{Elements: out}, nil
		},
	})
	r.register(&Spec{
		Name:   "get_variable",
		MinPos: 1, MaxPos: 2,
		Kwargs: kwset(),
		Fn: func(r *Registry, ev *interp.Evaluator, pos ast.Pos, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			name, err := strArg(args[0], "get_variable() name")
			if err != nil {
				return nil, err
			}
			if v, ok := ev.Env.Get(name); ok {
				return v, nil
			}
			if len(args) > 1 {
				return args[1], nil
			}
			return nil, ierrors.InterpreterException("RUN105", fmt.Sprintf("undefined variable %q", name))
		},
	})
	r.register(&Spec{
		Name:   "set_variable",
		MinPos: 2, MaxPos: 2,
		Kwargs: kwset(),
		Fn: func(r *Registry, ev *interp.Evaluator, pos ast.Pos, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			name, err := strArg(args[0], "set_variable() name")
			if err != nil {
				return nil, err
			}
			ev.Env.Set(name, args[1])
			return value.Null{}, nil
		},
	})
	r.register(&Spec{
		Name:   "is_variable",
		MinPos: 1, MaxPos: 1,
		Kwargs: kwset(),
		Fn: func(r *Registry, ev *interp.Evaluator, pos ast.Pos, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			name, err := strArg(args[0], "is_variable() name")
			if err != nil {
				return nil, err
			}
			return value.Bool(ev.Env.Has(name)), nil
		},
	})
	r.register(&Spec{
		Name:   "is_disabler",
		MinPos: 1, MaxPos: 1,
		Kwargs: kwset(),
		Fn: func(r *Registry, ev *interp.Evaluator, pos ast.Pos, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			return value.Bool(value.IsDisabler(args[0])), nil
		},
	})
	r.register(&Spec{
		Name:   "disabler",
		MinPos: 0, MaxPos: 0,
		Kwargs: kwset(),
		Fn: func(r *Registry, ev *interp.Evaluator, pos ast.Pos, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			return value.Disabler, nil
		},
	})
}

func kwset(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

func joinStrs(args []value.Value) string {
	out := ""
	for i, a := range args {
		if i > 0 {
			out += " "
		}
		out += a.String()
	}
	return out
}

func biProject(r *Registry, ev *interp.Evaluator, pos ast.Pos, args []value.Value, kwargs *value.Dict) (value.Value, error) {
	name, err := strArg(args[0], "project() name")
	if err != nil {
		return nil, err
	}
	langs := make([]string, 0, len(args)-1)
	for _, a := range args[1:] {
		s, err := strArg(a, "project() language")
		if err != nil {
			return nil, err
		}
		langs = append(langs, s)
	}
	pk := project.ProjectKwargs{}
	pk.Version, _, err = kwargStr(kwargs, "version")
	if err != nil {
		return nil, err
	}
	pk.License, _, err = kwargStr(kwargs, "license")
	if err != nil {
		return nil, err
	}
	pk.MesonVersion, _, err = kwargStr(kwargs, "meson_version")
	if err != nil {
		return nil, err
	}
	pk.SubprojectDir, _, err = kwargStr(kwargs, "subproject_dir")
	if err != nil {
		return nil, err
	}
	pk.DefaultOptions, err = kwargStrList(kwargs, "default_options")
	if err != nil {
		return nil, err
	}
	if err := r.Driver.Project(ev, pos, name, langs, pk); err != nil {
		return nil, err
	}
	ev.Env.Set("meson", newMesonHandle(r, ev))
	return value.Null{}, nil
}

func biSubdir(r *Registry, ev *interp.Evaluator, pos ast.Pos, args []value.Value, kwargs *value.Dict) (value.Value, error) {
	path, err := strArg(args[0], "subdir() path")
	if err != nil {
		return nil, err
	}
	var ifFound []value.Value
	if v, ok := kwargs.Get("if_found"); ok {
		if list, ok := v.(*value.List); ok {
			ifFound = list.Elements
		} else {
			ifFound = []value.Value{v}
		}
	}
	return value.Null{}, r.Driver.Subdir(ev, pos, path, ifFound)
}

func biSubproject(r *Registry, ev *interp.Evaluator, pos ast.Pos, args []value.Value, kwargs *value.Dict) (value.Value, error) {
	name, err := strArg(args[0], "subproject() name")
	if err != nil {
		return nil, err
	}
	sk := project.SubprojectKwargs{Required: true}
	if v, ok := kwargs.Get("required"); ok {
		disabled, required, _, err := optionstore.ExtractRequiredKwarg(v, true, true)
		if err != nil {
			return nil, err
		}
		sk.Required = required
		sk.Disabled = disabled
	}
	sk.DefaultOptions, err = kwargStrList(kwargs, "default_options")
	if err != nil {
		return nil, err
	}
	sk.Version, err = kwargStrList(kwargs, "version")
	if err != nil {
		return nil, err
	}
	return r.Driver.Subproject(ev, pos, name, sk)
}

// mesonHandleEntity is the entity behind the "meson" pseudo-object bound
// into scope by project() (spec §4.6, §4.10's meson.add_install_script and
// friends, and S2's meson.source_root()).
type mesonHandleEntity struct{}

func newMesonHandle(r *Registry, ev *interp.Evaluator) *object.Handle {
	methods := map[string]object.Method{
		"source_root": func(h *object.Handle, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			ev.Gate.Check(ev.Subproject, "meson.source_root()", "0.56.0", featuregate.Deprecated, ast.Pos{})
			return value.NewStr(r.SourceRoot), nil
		},
		"build_root": func(h *object.Handle, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			ev.Gate.Check(ev.Subproject, "meson.build_root()", "0.56.0", featuregate.Deprecated, ast.Pos{})
			return value.NewStr(r.BuildRoot), nil
		},
		"current_source_dir": func(h *object.Handle, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			return value.NewStr(ev.CurrentSubdir()), nil
		},
		"project_name": func(h *object.Handle, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			return value.NewStr(ev.ProjectName), nil
		},
		"project_version": func(h *object.Handle, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			return value.NewStr(ev.ProjectVersion), nil
		},
		"is_cross_build": func(h *object.Handle, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			return value.Bool(ev.Machine.CrossBuild()), nil
		},
		"add_install_script": func(h *object.Handle, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			return value.Null{}, installscript.Collect(ev.Build, installscript.Install, ev.Subproject, args)
		},
		"add_postconf_script": func(h *object.Handle, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			return value.Null{}, installscript.Collect(ev.Build, installscript.Postconf, ev.Subproject, args)
		},
		"add_dist_script": func(h *object.Handle, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			if len(ev.SubprojectStack) > 0 {
				ev.Gate.Check(ev.Subproject, "meson.add_dist_script() in a subproject", "0.58.0", featuregate.Broken, ast.Pos{})
			}
			return value.Null{}, installscript.Collect(ev.Build, installscript.Dist, ev.Subproject, args)
		},
	}
	return object.New(object.KindModule, &mesonHandleEntity{}, methods, ev.Subproject)
}
