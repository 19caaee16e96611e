// Package configure implements configuration-data records and the
// configure_file three-mode operation of spec §4.9, grounded on the
// teacher's effect-context style for deterministic, side-effecting
// operations (internal/effects in the original tree): every output is
// written to a temporary file beside its target on the real filesystem
// and renamed into place (writeFileAtomic).
package configure

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/buildgraph/bsi/internal/ierrors"
	"github.com/buildgraph/bsi/internal/interp"
	"github.com/buildgraph/bsi/internal/value"
)

// Entry is one configuration-data variable: a value plus an optional
// description, mirroring set10/set_quoted's bookkeeping in the original.
type Entry struct {
	Value       value.Value
	Description string
}

// Data is the mutable-until-frozen configuration-data record (spec §3:
// "configuration_data objects are immutable after being consumed by
// configure-file").
type Data struct {
	entries map[string]*Entry
	order   []string
	frozen  bool
}

// NewData constructs an empty configuration-data record.
func NewData() *Data {
	return &Data{entries: make(map[string]*Entry)}
}

// Frozen reports whether this record has already been consumed.
func (d *Data) Frozen() bool { return d.frozen }

// Freeze marks the record consumed; further Set calls fail (invariant 5).
func (d *Data) Freeze() { d.frozen = true }

// Set records or overwrites a variable, rejecting mutation after freeze
// (spec testable property 6).
func (d *Data) Set(key string, v value.Value, description string) error {
	if d.frozen {
		return ierrors.InvalidCode("COD105", fmt.Sprintf("configuration_data is frozen: cannot set %q", key))
	}
	if _, ok := d.entries[key]; !ok {
		d.order = append(d.order, key)
	}
	d.entries[key] = &Entry{Value: v, Description: description}
	return nil
}

// Get looks up a variable.
func (d *Data) Get(key string) (*Entry, bool) {
	e, ok := d.entries[key]
	return e, ok
}

// Keys returns variable names in insertion order.
func (d *Data) Keys() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Len reports the number of declared variables.
func (d *Data) Len() int { return len(d.order) }

// AsDict renders the record as a value.Dict for @VAR@ substitution.
func (d *Data) AsDict() *value.Dict {
	out := value.NewDict()
	for _, k := range d.order {
		out.Set(k, d.entries[k].Value)
	}
	return out
}

// Mode is the configure_file operating mode, chosen by mutual exclusion
// over the configuration/command/copy kwargs (spec §4.9).
type Mode int

const (
	ModeConfiguration Mode = iota
	ModeCommand
	ModeCopy
)

// HeaderFormat selects the synthesized-header syntax used when no input
// template is given in configuration mode.
type HeaderFormat string

const (
	FormatC    HeaderFormat = "c"
	FormatNASM HeaderFormat = "nasm"
)

// Runner executes a command for command mode. Real process execution is an
// external collaborator (spec §5: subprocess invocations are one of the
// three blocking operation classes); this interface is what the core
// consumes.
type Runner interface {
	Run(args []string, cwd string) (stdout string, exitCode int, err error)
}

// Request describes one configure_file() call.
type Request struct {
	Mode         Mode
	OutputPath   string // absolute path under the build/scratch directory
	InputPath    string // "" if no input template was given
	InputText    string // template contents, read by an external collaborator and handed in
	Data         *Data  // configuration mode only
	HeaderFormat HeaderFormat
	Command      []string // command mode only, already @INPUT@/@OUTPUT@-substituted by the caller
	Capture      bool
	CopySource   string // copy mode only

	// CallSite is a human-readable location used in duplicate-output
	// warnings (spec §4.9: "naming both the first and the current call
	// sites").
	CallSite string
}

// Registry tracks configure_file output paths across a whole run so
// duplicate outputs can be detected and warned about (spec §4.9 closing
// paragraph).
type Registry struct {
	seen map[string]string // output path -> first call site
	warn func(message string)
	run  Runner
}

// NewRegistry constructs a Registry. warn receives duplicate-output
// warnings; run executes command-mode commands.
func NewRegistry(warn func(string), run Runner) *Registry {
	return &Registry{seen: make(map[string]string), warn: warn, run: run}
}

// Configure dispatches a Request to the mode-specific implementation and
// records the output path for duplicate detection.
func (r *Registry) Configure(req Request) (string, error) {
	if prior, ok := r.seen[req.OutputPath]; ok {
		r.warn(fmt.Sprintf("configure_file output %q was already produced at %s; now also produced at %s", req.OutputPath, prior, req.CallSite))
	} else {
		r.seen[req.OutputPath] = req.CallSite
	}

	switch req.Mode {
	case ModeConfiguration:
		return req.OutputPath, r.configurationMode(req)
	case ModeCommand:
		return req.OutputPath, r.commandMode(req)
	case ModeCopy:
		return req.OutputPath, r.copyMode(req)
	default:
		return "", ierrors.InterpreterException("RUN107", "configure_file: unknown mode")
	}
}

func (r *Registry) configurationMode(req Request) error {
	if req.Data == nil {
		return ierrors.InvalidArguments("ARG109", "configure_file configuration mode requires a configuration_data object")
	}
	var out string
	if req.InputPath != "" {
		out = substituteTemplate(req.InputText, req.Data, r.warn)
	} else {
		if req.Data.Len() == 0 {
			r.warn("configure_file: configuration_data has no entries and no input template; output will be empty")
		}
		out = synthesizeHeader(req.Data, req.HeaderFormat)
	}
	req.Data.Freeze()
	return writeFileAtomic(req.OutputPath, out)
}

// substituteTemplate implements @VAR@ and #mesondefine VAR substitution
// (spec §4.9: "substitute @VAR@ and #mesondefine VAR patterns... Emit
// #define/#undef appropriately").
func substituteTemplate(template string, data *Data, warn func(string)) string {
	lines := strings.Split(template, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#mesondefine") {
			name := strings.TrimSpace(strings.TrimPrefix(trimmed, "#mesondefine"))
			lines[i] = mesondefineLine(name, data)
			continue
		}
		lines[i] = interp.SubstituteConfig(line, data.AsDict(), func(missing string) {
			warn(fmt.Sprintf("configure_file template references %q which is not present in configuration data", missing))
		})
	}
	return strings.Join(lines, "\n") + "\n"
}

func mesondefineLine(name string, data *Data) string {
	e, ok := data.Get(name)
	if !ok {
		return "/* #undef " + name + " */"
	}
	if !e.Value.Truthy() {
		if _, isBool := e.Value.(value.Bool); isBool {
			return "#undef " + name
		}
	}
	if s, ok := e.Value.(value.Str); ok {
		return fmt.Sprintf("#define %s %s", name, string(s))
	}
	return fmt.Sprintf("#define %s %s", name, e.Value.String())
}

// synthesizeHeader emits a full header from configuration data when no
// input template was given (spec §4.9).
func synthesizeHeader(data *Data, format HeaderFormat) string {
	keys := append([]string{}, data.Keys()...)
	sort.Strings(keys)
	var b strings.Builder
	commentPrefix := "/* "
	commentSuffix := " */"
	if format == FormatNASM {
		commentPrefix = "; "
		commentSuffix = ""
	}
	fmt.Fprintf(&b, "%sGenerated by configure_file, do not edit%s\n", commentPrefix, commentSuffix)
	for _, k := range keys {
		e, _ := data.Get(k)
		if format == FormatNASM {
			fmt.Fprintf(&b, "%%define %s %s\n", k, e.Value.String())
			continue
		}
		if s, ok := e.Value.(value.Str); ok {
			fmt.Fprintf(&b, "#define %s %q\n", k, string(s))
		} else {
			fmt.Fprintf(&b, "#define %s %s\n", k, e.Value.String())
		}
	}
	return b.String()
}

func (r *Registry) commandMode(req Request) error {
	stdout, code, err := r.run.Run(req.Command, filepath.Dir(req.OutputPath))
	if err != nil {
		return ierrors.InterpreterException("RUN106", fmt.Sprintf("configure_file command failed: %v", err))
	}
	if code != 0 {
		return ierrors.InterpreterException("RUN106", fmt.Sprintf("configure_file command exited with code %d", code))
	}
	if req.Capture {
		return writeFileAtomic(req.OutputPath, stdout)
	}
	// The command is expected to write the output itself; nothing further
	// to do here.
	return nil
}

func (r *Registry) copyMode(req Request) error {
	data, err := os.ReadFile(req.CopySource)
	if err != nil {
		return ierrors.InterpreterException("RUN106", fmt.Sprintf("configure_file copy: %v", err))
	}
	return writeFileAtomic(req.OutputPath, string(data))
}

// writeFileAtomic implements spec §5's "written atomically via temp+rename"
// requirement.
func writeFileAtomic(path, contents string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ierrors.InterpreterException("RUN106", fmt.Sprintf("configure_file: %v", err))
	}
	tmp, err := os.CreateTemp(dir, ".configure-*.tmp")
	if err != nil {
		return ierrors.InterpreterException("RUN106", fmt.Sprintf("configure_file: %v", err))
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(contents); err != nil {
		tmp.Close()
		return ierrors.InterpreterException("RUN106", fmt.Sprintf("configure_file: %v", err))
	}
	if err := tmp.Close(); err != nil {
		return ierrors.InterpreterException("RUN106", fmt.Sprintf("configure_file: %v", err))
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return ierrors.InterpreterException("RUN106", fmt.Sprintf("configure_file: %v", err))
	}
	return nil
}
