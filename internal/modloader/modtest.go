package modloader

import (
	"github.com/buildgraph/bsi/internal/ierrors"
	"github.com/buildgraph/bsi/internal/value"
)

// NewModtestModule builds the `modtest` module (supplemented from
// original_source/mesonbuild/modules/modtest.py): a minimal reference
// module with no real effect, used as the module-loader's own smoke test —
// it exercises ModuleState snapshotting and the tamper check without
// depending on any other package's domain logic.
func NewModtestModule() *Module {
	return &Module{
		Name: "modtest",
		Methods: map[string]MethodFunc{
			"print_hello": func(state ModuleState, args []value.Value, kwargs *value.Dict) (*ModuleReturnValue, error) {
				return &ModuleReturnValue{ReturnValue: value.NewStr("Hello from modtest")}, nil
			},
			"current_subproject": func(state ModuleState, args []value.Value, kwargs *value.Dict) (*ModuleReturnValue, error) {
				return &ModuleReturnValue{ReturnValue: value.NewStr(state.Subproject)}, nil
			},
			"private_function": func(state ModuleState, args []value.Value, kwargs *value.Dict) (*ModuleReturnValue, error) {
				return nil, ierrors.InvalidArguments("ARG110", "modtest.private_function is for internal module-loader tests only")
			},
		},
	}
}
