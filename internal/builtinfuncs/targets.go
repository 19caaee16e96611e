package builtinfuncs

import (
	"fmt"

	"github.com/buildgraph/bsi/internal/ast"
	"github.com/buildgraph/bsi/internal/build"
	"github.com/buildgraph/bsi/internal/ierrors"
	"github.com/buildgraph/bsi/internal/installscript"
	"github.com/buildgraph/bsi/internal/interp"
	"github.com/buildgraph/bsi/internal/object"
	"github.com/buildgraph/bsi/internal/value"
)

func registerTargets(r *Registry) {
	buildTargetKwargs := kwset("install", "install_dir", "dependencies", "include_directories",
		"link_with", "c_args", "cpp_args", "link_args", "build_by_default")

	r.register(&Spec{Name: "executable", MinPos: 1, MaxPos: -1, Kwargs: buildTargetKwargs,
		Fn: targetBuiltin(build.Executable)})
	r.register(&Spec{Name: "static_library", MinPos: 1, MaxPos: -1, Kwargs: buildTargetKwargs,
		Fn: targetBuiltin(build.StaticLib)})
	r.register(&Spec{Name: "shared_library", MinPos: 1, MaxPos: -1, Kwargs: buildTargetKwargs,
		Fn: targetBuiltin(build.SharedLib)})
	r.register(&Spec{Name: "shared_module", MinPos: 1, MaxPos: -1, Kwargs: buildTargetKwargs,
		Fn: targetBuiltin(build.SharedModule)})
	r.register(&Spec{Name: "jar", MinPos: 1, MaxPos: -1, Kwargs: buildTargetKwargs,
		Fn: targetBuiltin(build.Jar)})
	r.register(&Spec{
		Name: "build_target", MinPos: 1, MaxPos: -1,
		Kwargs: kwset("install", "install_dir", "dependencies", "include_directories",
			"link_with", "c_args", "cpp_args", "link_args", "build_by_default", "target_type"),
		Fn: biBuildTarget,
	})
	r.register(&Spec{
		Name: "both_libraries", MinPos: 1, MaxPos: -1, Kwargs: buildTargetKwargs,
		Fn: biBothLibraries,
	})
	r.register(&Spec{
		Name: "library", MinPos: 1, MaxPos: -1, Kwargs: buildTargetKwargs,
		Fn: biLibrary,
	})
	r.register(&Spec{
		Name:   "custom_target", MinPos: 0, MaxPos: 1,
		Kwargs: kwset("input", "output", "command", "depends", "build_by_default", "install", "install_dir", "capture"),
		Fn:     biCustomTarget,
	})
	r.register(&Spec{
		Name: "run_target", MinPos: 1, MaxPos: 1,
		Kwargs: kwset("command", "depends"),
		Fn:     biRunTarget,
	})
	r.register(&Spec{
		Name: "alias_target", MinPos: 1, MaxPos: -1,
		Kwargs: kwset(),
		Fn:     biAliasTarget,
	})
	r.register(&Spec{
		Name: "generator", MinPos: 1, MaxPos: 1,
		Kwargs: kwset("arguments", "output"),
		Fn:     biGenerator,
	})
}

func targetID(subproject, name string) string {
	if subproject == "" {
		return name
	}
	return subproject + ":" + name
}

func targetBuiltin(kind build.TargetKind) Impl {
	return func(r *Registry, ev *interp.Evaluator, pos ast.Pos, args []value.Value, kwargs *value.Dict) (value.Value, error) {
		t, err := newTarget(ev, kind, args, kwargs)
		if err != nil {
			return nil, err
		}
		if err := ev.Build.AddTarget(t); err != nil {
			return nil, err
		}
		return targetHandle(ev, t), nil
	}
}

func newTarget(ev *interp.Evaluator, kind build.TargetKind, args []value.Value, kwargs *value.Dict) (*build.Target, error) {
	if len(args) < 1 {
		return nil, ierrors.InvalidArguments("ARG107", fmt.Sprintf("%s requires a name", kind))
	}
	name, err := strArg(args[0], "target name")
	if err != nil {
		return nil, err
	}
	sources, err := sourcesArg(args[1:])
	if err != nil {
		return nil, err
	}
	install, err := kwargBool(kwargs, "install", false)
	if err != nil {
		return nil, err
	}
	installDir, _, err := kwargStr(kwargs, "install_dir")
	if err != nil {
		return nil, err
	}
	buildByDefault, err := kwargBool(kwargs, "build_by_default", kind != build.RunTarget)
	if err != nil {
		return nil, err
	}
	return &build.Target{
		ID:             targetID(ev.Subproject, name),
		Name:           name,
		Kind:           kind,
		Subproject:     ev.Subproject,
		Sources:        sources,
		BuildByDefault: buildByDefault,
		InstallDir:     installDir,
		Installed:      install,
	}, nil
}

func targetHandle(ev *interp.Evaluator, t *build.Target) *object.Handle {
	methods := map[string]object.Method{
		"name": func(h *object.Handle, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			return value.NewStr(t.Name), nil
		},
		"full_path": func(h *object.Handle, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			if t.InstallDir != "" {
				return value.NewStr(t.InstallDir + "/" + t.Name), nil
			}
			return value.NewStr(t.Name), nil
		},
		"found": func(h *object.Handle, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			return value.Bool(true), nil
		},
	}
	return object.New(object.KindTarget, t, methods, ev.Subproject)
}

func biBuildTarget(r *Registry, ev *interp.Evaluator, pos ast.Pos, args []value.Value, kwargs *value.Dict) (value.Value, error) {
	tt, _, err := kwargStr(kwargs, "target_type")
	if err != nil {
		return nil, err
	}
	kind := build.Executable
	switch tt {
	case "static_library":
		kind = build.StaticLib
	case "shared_library":
		kind = build.SharedLib
	case "shared_module":
		kind = build.SharedModule
	case "jar":
		kind = build.Jar
	case "executable", "":
		kind = build.Executable
	default:
		return nil, ierrors.InvalidArguments("ARG109", fmt.Sprintf("build_target(): unknown target_type %q", tt))
	}
	t, err := newTarget(ev, kind, args, kwargs)
	if err != nil {
		return nil, err
	}
	if err := ev.Build.AddTarget(t); err != nil {
		return nil, err
	}
	return targetHandle(ev, t), nil
}

// biBothLibraries builds both a static and a shared variant of the same
// sources (spec supplement over the original's build_target "both"
// convenience), returning a handle whose get_shared_lib()/get_static_lib()
// expose each half — resolving the Open Question of how a dual-kind
// library result is represented without inventing a new Value kind.
func biBothLibraries(r *Registry, ev *interp.Evaluator, pos ast.Pos, args []value.Value, kwargs *value.Dict) (value.Value, error) {
	shared, err := newTarget(ev, build.SharedLib, args, kwargs)
	if err != nil {
		return nil, err
	}
	if err := ev.Build.AddTarget(shared); err != nil {
		return nil, err
	}
	static, err := newTarget(ev, build.StaticLib, args, kwargs)
	if err != nil {
		return nil, err
	}
	static.ID = static.ID + "_static"
	if err := ev.Build.AddTarget(static); err != nil {
		return nil, err
	}

	sharedHandle := targetHandle(ev, shared)
	staticHandle := targetHandle(ev, static)
	methods := map[string]object.Method{
		"get_shared_lib": func(h *object.Handle, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			return sharedHandle, nil
		},
		"get_static_lib": func(h *object.Handle, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			return staticHandle, nil
		},
		"name": func(h *object.Handle, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			return value.NewStr(shared.Name), nil
		},
		"found": func(h *object.Handle, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			return value.Bool(true), nil
		},
	}
	return object.New(object.KindTarget, shared, methods, ev.Subproject), nil
}

// biLibrary picks static/shared per the default_library option (spec
// supplement: the original dispatches library() through this option;
// falls back to shared when the option isn't declared).
func biLibrary(r *Registry, ev *interp.Evaluator, pos ast.Pos, args []value.Value, kwargs *value.Dict) (value.Value, error) {
	kind := build.SharedLib
	if opt, err := ev.Options.Get(ev.Subproject, "default_library", pos); err == nil {
		if s, ok := opt.ResolvedValue().(value.Str); ok {
			switch string(s) {
			case "static":
				kind = build.StaticLib
			case "both":
				return biBothLibraries(r, ev, pos, args, kwargs)
			}
		}
	}
	t, err := newTarget(ev, kind, args, kwargs)
	if err != nil {
		return nil, err
	}
	if err := ev.Build.AddTarget(t); err != nil {
		return nil, err
	}
	return targetHandle(ev, t), nil
}

func biCustomTarget(r *Registry, ev *interp.Evaluator, pos ast.Pos, args []value.Value, kwargs *value.Dict) (value.Value, error) {
	name := ""
	if len(args) == 1 {
		var err error
		name, err = strArg(args[0], "custom_target() name")
		if err != nil {
			return nil, err
		}
	}
	outV, ok := kwargs.Get("output")
	if !ok {
		return nil, ierrors.InvalidArguments("ARG107", "custom_target() requires output")
	}
	outputs, err := strList(outV)
	if err != nil {
		return nil, err
	}
	if name == "" && len(outputs) > 0 {
		name = outputs[0]
	}
	cmdV, ok := kwargs.Get("command")
	if !ok {
		return nil, ierrors.InvalidArguments("ARG107", "custom_target() requires command")
	}
	cmdList, ok := cmdV.(*value.List)
	if !ok {
		return nil, ierrors.InvalidArguments("ARG106", "custom_target() command must be a list")
	}
	cmd := make([]string, 0, len(cmdList.Elements))
	for _, e := range cmdList.Elements {
		s, err := installscript.NormalizeArg(e, ev.Build)
		if err != nil {
			return nil, err
		}
		cmd = append(cmd, s)
	}
	install, err := kwargBool(kwargs, "install", false)
	if err != nil {
		return nil, err
	}
	installDir, _, err := kwargStr(kwargs, "install_dir")
	if err != nil {
		return nil, err
	}
	buildByDefault, err := kwargBool(kwargs, "build_by_default", false)
	if err != nil {
		return nil, err
	}
	t := &build.Target{
		ID:             targetID(ev.Subproject, name),
		Name:           name,
		Kind:           build.CustomTarget,
		Subproject:     ev.Subproject,
		Sources:        cmd,
		BuildByDefault: buildByDefault,
		InstallDir:     installDir,
		Installed:      install,
	}
	if err := ev.Build.AddTarget(t); err != nil {
		return nil, err
	}
	return targetHandle(ev, t), nil
}

func biRunTarget(r *Registry, ev *interp.Evaluator, pos ast.Pos, args []value.Value, kwargs *value.Dict) (value.Value, error) {
	name, err := strArg(args[0], "run_target() name")
	if err != nil {
		return nil, err
	}
	cmdV, ok := kwargs.Get("command")
	if !ok {
		return nil, ierrors.InvalidArguments("ARG107", "run_target() requires command")
	}
	var cmd []string
	switch v := cmdV.(type) {
	case *value.List:
		for _, e := range v.Elements {
			s, err := installscript.NormalizeArg(e, ev.Build)
			if err != nil {
				return nil, err
			}
			cmd = append(cmd, s)
		}
	default:
		s, err := installscript.NormalizeArg(cmdV, ev.Build)
		if err != nil {
			return nil, err
		}
		cmd = []string{s}
	}
	id := targetID(ev.Subproject, name)
	if ev.Build.RunTargetNames[id] {
		return nil, ierrors.InvalidCode("COD104", fmt.Sprintf("duplicate run_target name %q", name))
	}
	ev.Build.RunTargetNames[id] = true
	t := &build.Target{ID: id, Name: name, Kind: build.RunTarget, Subproject: ev.Subproject, Sources: cmd}
	if err := ev.Build.AddTarget(t); err != nil {
		return nil, err
	}
	return targetHandle(ev, t), nil
}

func biAliasTarget(r *Registry, ev *interp.Evaluator, pos ast.Pos, args []value.Value, kwargs *value.Dict) (value.Value, error) {
	name, err := strArg(args[0], "alias_target() name")
	if err != nil {
		return nil, err
	}
	deps := make([]string, 0, len(args)-1)
	for _, a := range args[1:] {
		h, err := asHandle(a, object.KindTarget, "alias_target() dependency")
		if err != nil {
			return nil, err
		}
		t := h.Entity().(*build.Target)
		deps = append(deps, t.ID)
	}
	t := &build.Target{ID: targetID(ev.Subproject, name), Name: name, Kind: build.AliasTarget, Subproject: ev.Subproject, Sources: deps, BuildByDefault: true}
	if err := ev.Build.AddTarget(t); err != nil {
		return nil, err
	}
	return targetHandle(ev, t), nil
}

func biGenerator(r *Registry, ev *interp.Evaluator, pos ast.Pos, args []value.Value, kwargs *value.Dict) (value.Value, error) {
	h, err := asHandle(args[0], object.KindExternalProgram, "generator() executable")
	if err != nil {
		return nil, err
	}
	exe := h.Entity().(*build.ExternalProgram)
	arguments, err := kwargStrList(kwargs, "arguments")
	if err != nil {
		return nil, err
	}
	outputs, err := kwargStrList(kwargs, "output")
	if err != nil {
		return nil, err
	}
	gen := &build.Generator{Exe: exe, Arguments: arguments, Outputs: outputs}
	methods := map[string]object.Method{
		"process": func(h *object.Handle, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			return value.NewList(), nil
		},
	}
	return object.New(object.KindGenerator, gen, methods, ev.Subproject), nil
}
