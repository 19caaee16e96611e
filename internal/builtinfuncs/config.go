package builtinfuncs

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/buildgraph/bsi/internal/ast"
	"github.com/buildgraph/bsi/internal/build"
	"github.com/buildgraph/bsi/internal/configure"
	"github.com/buildgraph/bsi/internal/ierrors"
	"github.com/buildgraph/bsi/internal/interp"
	"github.com/buildgraph/bsi/internal/object"
	"github.com/buildgraph/bsi/internal/value"
)

func registerConfig(r *Registry) {
	r.register(&Spec{
		Name:   "configuration_data",
		MinPos: 0, MaxPos: 1,
		Kwargs: kwset(),
		Fn: func(r *Registry, ev *interp.Evaluator, pos ast.Pos, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			data := configure.NewData()
			if len(args) == 1 {
				d, ok := args[0].(*value.Dict)
				if !ok {
					return nil, ierrors.InvalidArguments("ARG106", "configuration_data() argument must be a dict")
				}
				for _, k := range d.Keys() {
					v, _ := d.Get(k)
					if err := data.Set(k, v, ""); err != nil {
						return nil, err
					}
				}
			}
			return configDataHandle(ev, data), nil
		},
	})
	r.register(&Spec{
		Name:   "environment",
		MinPos: 0, MaxPos: 1,
		Kwargs: kwset("method"),
		Fn: func(r *Registry, ev *interp.Evaluator, pos ast.Pos, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			env := build.NewEnvironment()
			if len(args) == 1 {
				d, ok := args[0].(*value.Dict)
				if !ok {
					return nil, ierrors.InvalidArguments("ARG106", "environment() argument must be a dict")
				}
				for _, k := range d.Keys() {
					v, _ := d.Get(k)
					vals, err := strList(v)
					if err != nil {
						return nil, err
					}
					env.Set(k, vals)
				}
			}
			return environmentHandle(ev, env), nil
		},
	})
	r.register(&Spec{
		Name:   "configure_file",
		MinPos: 0, MaxPos: 0,
		Kwargs: kwset("input", "output", "configuration", "command", "copy", "capture", "format", "install", "install_dir", "install_mode"),
		Fn:     biConfigureFile,
	})
}

// configDataHandle wraps *configure.Data as an ObjectHandle with the
// set()/set10()/set_quoted()/get()/has() method surface used throughout
// build descriptions to assemble #define-style substitution tables.
func configDataHandle(ev *interp.Evaluator, data *configure.Data) *object.Handle {
	guard := func(fn object.Method) object.Method {
		return func(h *object.Handle, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			if data.Frozen() {
				return nil, ierrors.InvalidCode("COD105", "configuration_data object was already consumed by configure_file")
			}
			return fn(h, args, kwargs)
		}
	}
	methods := map[string]object.Method{
		"set": guard(func(h *object.Handle, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			if len(args) < 2 {
				return nil, ierrors.InvalidArguments("ARG107", "set() requires a key and a value")
			}
			key, err := strArg(args[0], "set() key")
			if err != nil {
				return nil, err
			}
			desc, _, err := kwargStr(kwargs, "description")
			if err != nil {
				return nil, err
			}
			return value.Null{}, data.Set(key, args[1], desc)
		}),
		"set10": guard(func(h *object.Handle, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			if len(args) < 2 {
				return nil, ierrors.InvalidArguments("ARG107", "set10() requires a key and a value")
			}
			key, err := strArg(args[0], "set10() key")
			if err != nil {
				return nil, err
			}
			desc, _, err := kwargStr(kwargs, "description")
			if err != nil {
				return nil, err
			}
			b := value.Int(0)
			if args[1].Truthy() {
				b = 1
			}
			return value.Null{}, data.Set(key, b, desc)
		}),
		"set_quoted": guard(func(h *object.Handle, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			if len(args) < 2 {
				return nil, ierrors.InvalidArguments("ARG107", "set_quoted() requires a key and a value")
			}
			key, err := strArg(args[0], "set_quoted() key")
			if err != nil {
				return nil, err
			}
			s, err := strArg(args[1], "set_quoted() value")
			if err != nil {
				return nil, err
			}
			desc, _, err := kwargStr(kwargs, "description")
			if err != nil {
				return nil, err
			}
			return value.Null{}, data.Set(key, value.NewStr(fmt.Sprintf("%q", s)), desc)
		}),
		"get": func(h *object.Handle, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			if len(args) < 1 {
				return nil, ierrors.InvalidArguments("ARG107", "get() requires a key")
			}
			key, err := strArg(args[0], "get() key")
			if err != nil {
				return nil, err
			}
			e, ok := data.Get(key)
			if !ok {
				if len(args) > 1 {
					return args[1], nil
				}
				return nil, ierrors.InterpreterException("RUN102", fmt.Sprintf("configuration_data has no key %q", key))
			}
			return e.Value, nil
		},
		"has": func(h *object.Handle, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			if len(args) < 1 {
				return nil, ierrors.InvalidArguments("ARG107", "has() requires a key")
			}
			key, err := strArg(args[0], "has() key")
			if err != nil {
				return nil, err
			}
			_, ok := data.Get(key)
			return value.Bool(ok), nil
		},
	}
	return object.New(object.KindConfigurationData, data, methods, ev.Subproject)
}

func environmentHandle(ev *interp.Evaluator, env *build.Environment) *object.Handle {
	methods := map[string]object.Method{
		"set": func(h *object.Handle, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			return envMutate(env.Set, args)
		},
		"append": func(h *object.Handle, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			return envMutate(env.Append, args)
		},
		"prepend": func(h *object.Handle, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			return envMutate(env.Prepend, args)
		},
	}
	return object.New(object.KindEnvironment, env, methods, ev.Subproject)
}

func envMutate(fn func(string, []string), args []value.Value) (value.Value, error) {
	if len(args) < 2 {
		return nil, ierrors.InvalidArguments("ARG107", "environment methods require a name and at least one value")
	}
	name, err := strArg(args[0], "environment variable name")
	if err != nil {
		return nil, err
	}
	vals := make([]string, 0, len(args)-1)
	for _, a := range args[1:] {
		s, err := strArg(a, "environment value")
		if err != nil {
			return nil, err
		}
		vals = append(vals, s)
	}
	fn(name, vals)
	return value.Null{}, nil
}

func biConfigureFile(r *Registry, ev *interp.Evaluator, pos ast.Pos, args []value.Value, kwargs *value.Dict) (value.Value, error) {
	output, _, err := kwargStr(kwargs, "output")
	if err != nil {
		return nil, err
	}
	if output == "" {
		return nil, ierrors.InvalidArguments("ARG107", "configure_file() requires an output kwarg")
	}
	outPath := filepath.Join(r.BuildRoot, ev.CurrentSubdir(), output)

	_, hasConfig := kwargs.Get("configuration")
	_, hasCommand := kwargs.Get("command")
	_, hasCopy := kwargs.Get("copy")
	modeCount := 0
	if hasConfig {
		modeCount++
	}
	if hasCommand {
		modeCount++
	}
	if hasCopy {
		modeCount++
	}
	if modeCount > 1 {
		return nil, ierrors.InterpreterException("RUN107", "configure_file() accepts only one of configuration, command, or copy")
	}

	req := configure.Request{OutputPath: outPath, CallSite: pos.String()}

	input, _, err := kwargStr(kwargs, "input")
	if err != nil {
		return nil, err
	}
	if input != "" {
		inPath := filepath.Join(r.SourceRoot, ev.CurrentSubdir(), input)
		if err := ev.Sandbox.CheckFile(inPath, ev.Subproject); err != nil {
			return nil, err
		}
		text, err := r.Files.ReadFile(inPath)
		if err != nil {
			return nil, ierrors.InterpreterException("RUN106", fmt.Sprintf("configure_file: reading input %q: %v", input, err))
		}
		req.InputPath = inPath
		req.InputText = text
	}

	switch {
	case hasCopy:
		req.Mode = configure.ModeCopy
		if input == "" {
			return nil, ierrors.InvalidArguments("ARG107", "configure_file() copy mode requires input")
		}
		req.CopySource = req.InputPath
	case hasCommand:
		req.Mode = configure.ModeCommand
		v, _ := kwargs.Get("command")
		cmd, err := strList(v)
		if err != nil {
			return nil, err
		}
		for i, a := range cmd {
			a = strings.ReplaceAll(a, "@INPUT@", req.InputPath)
			cmd[i] = strings.ReplaceAll(a, "@OUTPUT@", outPath)
		}
		req.Command = cmd
		req.Capture, err = kwargBool(kwargs, "capture", false)
		if err != nil {
			return nil, err
		}
	default:
		req.Mode = configure.ModeConfiguration
		v, ok := kwargs.Get("configuration")
		if !ok {
			return nil, ierrors.InvalidArguments("ARG107", "configure_file() requires configuration, command, or copy")
		}
		h, err := asHandle(v, object.KindConfigurationData, "configure_file() configuration")
		if err != nil {
			return nil, err
		}
		data, ok := h.Entity().(*configure.Data)
		if !ok {
			return nil, ierrors.InvalidArguments("ARG106", "configure_file() configuration must be a configuration_data object")
		}
		req.Data = data
		format, _, err := kwargStr(kwargs, "format")
		if err != nil {
			return nil, err
		}
		if format == "nasm" {
			req.HeaderFormat = configure.FormatNASM
		} else {
			req.HeaderFormat = configure.FormatC
		}
	}

	if _, err := r.ConfigReg.Configure(req); err != nil {
		return nil, err
	}

	f := &build.File{Path: outPath, Subproject: ev.Subproject}
	return object.New(object.KindFile, f, nil, ev.Subproject), nil
}
