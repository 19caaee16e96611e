package builtinfuncs

import (
	"github.com/buildgraph/bsi/internal/ast"
	"github.com/buildgraph/bsi/internal/build"
	"github.com/buildgraph/bsi/internal/interp"
	"github.com/buildgraph/bsi/internal/object"
	"github.com/buildgraph/bsi/internal/value"
)

func registerIncludes(r *Registry) {
	r.register(&Spec{
		Name:   "include_directories",
		MinPos: 0, MaxPos: -1,
		Kwargs: kwset("is_system"),
		Fn: func(r *Registry, ev *interp.Evaluator, pos ast.Pos, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			dirs := make([]string, 0, len(args))
			for _, a := range args {
				s, err := strArg(a, "include_directories() argument")
				if err != nil {
					return nil, err
				}
				if err := ev.Sandbox.CheckFile(s, ev.Subproject); err != nil {
					return nil, err
				}
				dirs = append(dirs, s)
			}
			isSystem, err := kwargBool(kwargs, "is_system", false)
			if err != nil {
				return nil, err
			}
			inc := &build.IncludeDirectories{Dirs: dirs, IsSystem: isSystem}
			return object.New(object.KindIncludeDirectories, inc, nil, ev.Subproject), nil
		},
	})
}
