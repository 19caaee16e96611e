package builtinfuncs

import (
	"github.com/buildgraph/bsi/internal/ast"
	"github.com/buildgraph/bsi/internal/build"
	"github.com/buildgraph/bsi/internal/ierrors"
	"github.com/buildgraph/bsi/internal/interp"
	"github.com/buildgraph/bsi/internal/object"
	"github.com/buildgraph/bsi/internal/value"
)

func registerInstall(r *Registry) {
	r.register(&Spec{
		Name: "install_data", MinPos: 0, MaxPos: -1,
		Kwargs: kwset("install_dir", "rename", "sources"),
		Fn:     dataInstaller(func(b *build.Build, df build.DataFile) { b.Data = append(b.Data, df) }),
	})
	r.register(&Spec{
		Name: "install_headers", MinPos: 0, MaxPos: -1,
		Kwargs: kwset("install_dir", "subdir", "sources"),
		Fn:     dataInstaller(func(b *build.Build, df build.DataFile) { b.Headers = append(b.Headers, df) }),
	})
	r.register(&Spec{
		Name: "install_man", MinPos: 0, MaxPos: -1,
		Kwargs: kwset("install_dir", "sources"),
		Fn:     dataInstaller(func(b *build.Build, df build.DataFile) { b.Man = append(b.Man, df) }),
	})
	r.register(&Spec{
		Name: "install_subdir", MinPos: 1, MaxPos: 1,
		Kwargs: kwset("install_dir", "strip_directory", "exclude_files", "exclude_directories"),
		Fn: func(r *Registry, ev *interp.Evaluator, pos ast.Pos, args []value.Value, kwargs *value.Dict) (value.Value, error) {
			src, err := strArg(args[0], "install_subdir() source")
			if err != nil {
				return nil, err
			}
			destDir, _, err := kwargStr(kwargs, "install_dir")
			if err != nil {
				return nil, err
			}
			ev.Build.InstallDirs = append(ev.Build.InstallDirs, build.InstallDir{Source: src, DestDir: destDir})
			return value.Null{}, nil
		},
	})
	r.register(&Spec{
		Name: "vcs_tag", MinPos: 0, MaxPos: 0,
		Kwargs: kwset("input", "output", "fallback", "command", "replace_string"),
		Fn:     biVcsTag,
	})
}

func dataInstaller(add func(*build.Build, build.DataFile)) Impl {
	return func(r *Registry, ev *interp.Evaluator, pos ast.Pos, args []value.Value, kwargs *value.Dict) (value.Value, error) {
		sources, err := sourcesArg(args)
		if err != nil {
			return nil, err
		}
		if v, ok := kwargs.Get("sources"); ok {
			extra, err := strList(v)
			if err != nil {
				return nil, err
			}
			sources = append(sources, extra...)
		}
		destDir, _, err := kwargStr(kwargs, "install_dir")
		if err != nil {
			return nil, err
		}
		for _, s := range sources {
			add(ev.Build, build.DataFile{Source: s, DestDir: destDir})
		}
		return value.Null{}, nil
	}
}

// biVcsTag returns a File handle named by the `output` kwarg. It does not
// probe any repository, and it ignores `fallback`, `command`, `input` and
// `replace_string`:
// no file content is produced and no target is recorded.
func biVcsTag(r *Registry, ev *interp.Evaluator, pos ast.Pos, args []value.Value, kwargs *value.Dict) (value.Value, error) {
	output, _, err := kwargStr(kwargs, "output")
	if err != nil {
		return nil, err
	}
	if output == "" {
		return nil, ierrors.InvalidArguments("ARG107", "vcs_tag() requires output")
	}
	f := &build.File{Path: output, Subproject: ev.Subproject}
	return object.New(object.KindFile, f, nil, ev.Subproject), nil
}
