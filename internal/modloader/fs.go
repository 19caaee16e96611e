package modloader

import (
	"os"
	"path/filepath"

	"github.com/buildgraph/bsi/internal/ierrors"
	"github.com/buildgraph/bsi/internal/value"
)

// NewFSModule builds the `fs` module (supplemented from
// original_source/mesonbuild/modules/fs.py): filesystem queries useful
// during evaluation, kept read-only per §4.11's "forbidden from mutating
// the accumulator" rule — fs never touches build.Target.
func NewFSModule() *Module {
	return &Module{
		Name: "fs",
		Methods: map[string]MethodFunc{
			"exists": func(state ModuleState, args []value.Value, kwargs *value.Dict) (*ModuleReturnValue, error) {
				p, err := fsPathArg(state, args)
				if err != nil {
					return nil, err
				}
				_, statErr := os.Stat(p)
				return &ModuleReturnValue{ReturnValue: value.Bool(statErr == nil)}, nil
			},
			"is_dir": func(state ModuleState, args []value.Value, kwargs *value.Dict) (*ModuleReturnValue, error) {
				p, err := fsPathArg(state, args)
				if err != nil {
					return nil, err
				}
				info, statErr := os.Stat(p)
				return &ModuleReturnValue{ReturnValue: value.Bool(statErr == nil && info.IsDir())}, nil
			},
			"is_file": func(state ModuleState, args []value.Value, kwargs *value.Dict) (*ModuleReturnValue, error) {
				p, err := fsPathArg(state, args)
				if err != nil {
					return nil, err
				}
				info, statErr := os.Stat(p)
				return &ModuleReturnValue{ReturnValue: value.Bool(statErr == nil && !info.IsDir())}, nil
			},
			"read": func(state ModuleState, args []value.Value, kwargs *value.Dict) (*ModuleReturnValue, error) {
				p, err := fsPathArg(state, args)
				if err != nil {
					return nil, err
				}
				contents, readErr := os.ReadFile(p)
				if readErr != nil {
					return nil, ierrors.InterpreterException("RUN106", "fs.read: "+readErr.Error())
				}
				return &ModuleReturnValue{ReturnValue: value.NewStr(string(contents))}, nil
			},
			"name": func(state ModuleState, args []value.Value, kwargs *value.Dict) (*ModuleReturnValue, error) {
				p, err := fsPathArg(state, args)
				if err != nil {
					return nil, err
				}
				return &ModuleReturnValue{ReturnValue: value.NewStr(filepath.Base(p))}, nil
			},
		},
	}
}

func fsPathArg(state ModuleState, args []value.Value) (string, error) {
	if len(args) < 1 {
		return "", ierrors.InvalidArguments("ARG107", "fs method requires a path argument")
	}
	s, ok := args[0].(value.Str)
	if !ok {
		return "", ierrors.InvalidArguments("ARG106", "fs method requires a string path")
	}
	p := string(s)
	if !filepath.IsAbs(p) {
		p = filepath.Join(state.SourceRoot, state.Subdir, p)
	}
	return p, nil
}
