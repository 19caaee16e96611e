// Package installscript implements the deferred install/postconf/dist
// script collector of spec §4.10: argument normalization into command-list
// strings, and RunScript record construction.
package installscript

import (
	"fmt"

	"github.com/buildgraph/bsi/internal/build"
	"github.com/buildgraph/bsi/internal/ierrors"
	"github.com/buildgraph/bsi/internal/object"
	"github.com/buildgraph/bsi/internal/value"
)

// Kind distinguishes which of the three deferred-script lists a call
// targets.
type Kind int

const (
	Install Kind = iota
	Postconf
	Dist
)

// NormalizeArg converts a single add_install_script-style argument into its
// command-list form (spec §4.10): strings stay literal; Files keep the
// path they were declared with and are not rebased onto the build root;
// built targets become their install_dir/name (or bare name) and are
// forced to build_by_default=true; external programs become their path.
func NormalizeArg(v value.Value, b *build.Build) (string, error) {
	switch x := v.(type) {
	case value.Str:
		return string(x), nil
	case *object.Handle:
		switch x.ObjectKind() {
		case object.KindFile:
			f, ok := x.Entity().(*build.File)
			if !ok {
				return "", ierrors.InvalidArguments("ARG106", "install-script argument: malformed file handle")
			}
			return f.Path, nil
		case object.KindTarget:
			t, ok := x.Entity().(*build.Target)
			if !ok {
				return "", ierrors.InvalidArguments("ARG106", "install-script argument: malformed target handle")
			}
			t.BuildByDefault = true
			if t.InstallDir != "" {
				return t.InstallDir + "/" + t.Name, nil
			}
			return t.Name, nil
		case object.KindExternalProgram:
			p, ok := x.Entity().(*build.ExternalProgram)
			if !ok {
				return "", ierrors.InvalidArguments("ARG106", "install-script argument: malformed program handle")
			}
			return p.Path, nil
		}
	}
	return "", ierrors.InvalidArguments("ARG106", fmt.Sprintf("install-script argument must be a string, file, target, or program, got %s", v.Kind()))
}

// Collect normalizes a full argument list and appends a RunScript record to
// the appropriate Build accumulator list (spec §4.10).
func Collect(b *build.Build, kind Kind, subproject string, args []value.Value) error {
	if len(args) == 0 {
		return ierrors.InvalidArguments("ARG107", "install/postconf/dist script requires at least a command name")
	}
	cmd := make([]string, 0, len(args))
	for _, a := range args {
		s, err := NormalizeArg(a, b)
		if err != nil {
			return err
		}
		cmd = append(cmd, s)
	}
	script := build.RunScript{Command: cmd, Subproject: subproject}
	switch kind {
	case Install:
		b.InstallScripts = append(b.InstallScripts, script)
	case Postconf:
		b.PostconfScripts = append(b.PostconfScripts, script)
	case Dist:
		b.DistScripts = append(b.DistScripts, script)
	}
	return nil
}
