package build

// Environment is the append/prepend/set environment-variable record of
// spec §3 ("environment-variables records (append/prepend/set)" is one of
// the three mutable-after-construction entity classes listed in §5).
type Environment struct {
	// Vars maps a variable name to its accumulated value segments, applied
	// in call order: Set replaces, Append/Prepend add to either end.
	Vars map[string][]string
}

// NewEnvironment constructs an empty environment-variables record.
func NewEnvironment() *Environment {
	return &Environment{Vars: make(map[string][]string)}
}

func (e *Environment) Set(name string, values []string) {
	e.Vars[name] = append([]string{}, values...)
}

func (e *Environment) Append(name string, values []string) {
	e.Vars[name] = append(e.Vars[name], values...)
}

func (e *Environment) Prepend(name string, values []string) {
	e.Vars[name] = append(append([]string{}, values...), e.Vars[name]...)
}

// IncludeDirectories is the domain entity behind include_directories().
type IncludeDirectories struct {
	Dirs     []string
	IsSystem bool
}

// ExternalProgram is the domain entity behind find_program() and
// meson.override_find_program()-style find_overrides.
type ExternalProgram struct {
	Name  string
	Path  string
	Found bool
}

// File is the domain entity behind files(): a single source-tree path
// together with the subproject it was declared in, carried for sandbox
// checks (§4.12) and for install-script path rewriting (§4.10).
type File struct {
	Path       string
	Subproject string
}

// FilePath returns the file's path, satisfying the small structural
// interface builtinfuncs uses to accept File handles wherever a bare
// source-string is also accepted.
func (f *File) FilePath() string { return f.Path }

// Generator is the domain entity behind generator(): a program invoked once
// per input to produce one or more outputs from a templated argument list.
type Generator struct {
	Exe       *ExternalProgram
	Arguments []string
	Outputs   []string
}
