package modloader

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/buildgraph/bsi/internal/ierrors"
	"github.com/buildgraph/bsi/internal/value"
)

// NewKeyvalModule builds the `keyval` module (supplemented from
// original_source/mesonbuild/modules/keyval.py): a flat key=value file
// parser returning a dict, skipping blank lines and '#' comments.
func NewKeyvalModule() *Module {
	return &Module{
		Name: "keyval",
		Methods: map[string]MethodFunc{
			"load": func(state ModuleState, args []value.Value, kwargs *value.Dict) (*ModuleReturnValue, error) {
				if len(args) < 1 {
					return nil, ierrors.InvalidArguments("ARG107", "keyval.load() requires a path")
				}
				s, ok := args[0].(value.Str)
				if !ok {
					return nil, ierrors.InvalidArguments("ARG106", "keyval.load() requires a string path")
				}
				p := string(s)
				if !filepath.IsAbs(p) {
					p = filepath.Join(state.SourceRoot, state.Subdir, p)
				}
				f, err := os.Open(p)
				if err != nil {
					return nil, ierrors.InterpreterException("RUN106", "keyval.load: "+err.Error())
				}
				defer f.Close()

				result := value.NewDict()
				scanner := bufio.NewScanner(f)
				for scanner.Scan() {
					line := strings.TrimSpace(scanner.Text())
					if line == "" || strings.HasPrefix(line, "#") {
						continue
					}
					parts := strings.SplitN(line, "=", 2)
					if len(parts) != 2 {
						continue
					}
					result.Set(strings.TrimSpace(parts[0]), value.NewStr(strings.TrimSpace(parts[1])))
				}
				if err := scanner.Err(); err != nil {
					return nil, ierrors.InterpreterException("RUN106", "keyval.load: "+err.Error())
				}
				return &ModuleReturnValue{ReturnValue: result}, nil
			},
		},
	}
}
