package builtinfuncs

import (
	"github.com/buildgraph/bsi/internal/ast"
	"github.com/buildgraph/bsi/internal/interp"
	"github.com/buildgraph/bsi/internal/value"
)

func registerArgs(r *Registry) {
	r.register(&Spec{
		Name:   "add_global_arguments",
		MinPos: 0, MaxPos: -1,
		Kwargs: kwset("language", "native"),
		Fn: func(r *Registry, ev *interp.Evaluator, pos ast.Pos, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			return value.Null{}, forEachLang(kwargs, func(lang string) error {
				a, err := sourcesArg(args)
				if err != nil {
					return err
				}
				return ev.Build.AddGlobalArguments(lang, a)
			})
		},
	})
	r.register(&Spec{
		Name:   "add_project_arguments",
		MinPos: 0, MaxPos: -1,
		Kwargs: kwset("language", "native"),
		Fn: func(r *Registry, ev *interp.Evaluator, pos ast.Pos, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			return value.Null{}, forEachLang(kwargs, func(lang string) error {
				a, err := sourcesArg(args)
				if err != nil {
					return err
				}
				return ev.Build.AddProjectArguments(ev.Subproject, lang, a)
			})
		},
	})
	r.register(&Spec{
		Name:   "add_global_link_arguments",
		MinPos: 0, MaxPos: -1,
		Kwargs: kwset("language", "native"),
		Fn: func(r *Registry, ev *interp.Evaluator, pos ast.Pos, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			return value.Null{}, forEachLang(kwargs, func(lang string) error {
				a, err := sourcesArg(args)
				if err != nil {
					return err
				}
				return ev.Build.AddGlobalLinkArguments(lang, a)
			})
		},
	})
	r.register(&Spec{
		Name:   "add_project_link_arguments",
		MinPos: 0, MaxPos: -1,
		Kwargs: kwset("language", "native"),
		Fn: func(r *Registry, ev *interp.Evaluator, pos ast.Pos, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			return value.Null{}, forEachLang(kwargs, func(lang string) error {
				a, err := sourcesArg(args)
				if err != nil {
					return err
				}
				return ev.Build.AddProjectLinkArguments(ev.Subproject, lang, a)
			})
		},
	})
	r.register(&Spec{
		Name:   "add_languages",
		MinPos: 0, MaxPos: -1,
		Kwargs: kwset("required", "native"),
		Fn: func(r *Registry, ev *interp.Evaluator, pos ast.Pos, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			for _, a := range args {
				lang, err := strArg(a, "add_languages() argument")
				if err != nil {
					return nil, err
				}
				if _, ok := ev.Build.Stdlibs[ev.Subproject]; !ok {
					ev.Build.Stdlibs[ev.Subproject] = make(map[string]string)
				}
				_ = lang
			}
			return value.Bool(true), nil
		},
	})
	r.register(&Spec{
		Name:   "join_paths",
		MinPos: 1, MaxPos: -1,
		Kwargs: kwset(),
		Fn: func(r *Registry, ev *interp.Evaluator, pos ast.Pos, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			parts := make([]string, 0, len(args))
			for _, a := range args {
				s, err := strArg(a, "join_paths() argument")
				if err != nil {
					return nil, err
				}
				parts = append(parts, s)
			}
			return value.NewStr(interp.JoinPaths(parts)), nil
		},
	})
}

// forEachLang runs fn for every language named by the "language" kwarg
// (str or list[str]), defaulting to a single unnamed "" language bucket
// when absent — mirroring the original's per-language argument tables
// (spec §3: "compiler-argument tables, keyed per language").
func forEachLang(kwargs *value.Dict, fn func(lang string) error) error {
	v, ok := kwargs.Get("language")
	if !ok {
		return fn("")
	}
	langs, err := strList(v)
	if err != nil {
		return err
	}
	for _, lang := range langs {
		if err := fn(lang); err != nil {
			return err
		}
	}
	return nil
}
