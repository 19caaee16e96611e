package ierrors

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/buildgraph/bsi/internal/ast"
)

// Frame is one level of the "in subproject X, subdir Y" chain printed by
// the top-level run (spec §7). It carries no statement location; the
// Report's own Pos holds that.
type Frame struct {
	Subproject string `json:"subproject,omitempty"`
	Subdir     string `json:"subdir,omitempty"`
}

// Report is the canonical structured error type, following the shape of
// the teacher's internal/errors.Report: schema-tagged, code-tagged,
// JSON-encodable, carrying a source position and a frame chain.
type Report struct {
	Schema  string    `json:"schema"`
	Code    string    `json:"code"`
	Kind    string    `json:"kind"` // InvalidArguments | InvalidCode | InterpreterException | DependencyException | WrapException
	Message string    `json:"message"`
	Pos     ast.Pos   `json:"pos"`
	Frames  []Frame   `json:"frames,omitempty"`
	Data    any       `json:"data,omitempty"`
}

const schemaV1 = "bsi.error/v1"

func (r *Report) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s at %s", r.Code, r.Message, r.Pos)
	for _, f := range r.Frames {
		fmt.Fprintf(&b, "\n  in subproject %s, subdir %s", f.Subproject, f.Subdir)
	}
	return b.String()
}

// ToJSON renders the report as indented JSON for machine-readable tooling.
func (r *Report) ToJSON() (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WithFrame appends a propagation frame (innermost call first) and
// returns the same report for chaining at each unwind step.
func (r *Report) WithFrame(subproject, subdir string) *Report {
	r.Frames = append(r.Frames, Frame{Subproject: subproject, Subdir: subdir})
	return r
}

func newReport(kind, code, msg string) *Report {
	return &Report{Schema: schemaV1, Code: code, Kind: kind, Message: msg}
}

// InvalidArguments constructs a non-recoverable argument error.
func InvalidArguments(code, msg string) error { return newReport("InvalidArguments", code, msg) }

// InvalidCode constructs a non-recoverable ill-formed-construct error.
func InvalidCode(code, msg string) error { return newReport("InvalidCode", code, msg) }

// InterpreterException constructs a runtime error raised by a built-in.
func InterpreterException(code, msg string) error {
	return newReport("InterpreterException", code, msg)
}

// DependencyException constructs a dependency-resolution failure, trapped
// at the dependency boundary when required=false (spec §7).
func DependencyException(code, msg string) error {
	return newReport("DependencyException", code, msg)
}

// WrapException constructs a subproject-resolver failure, trapped when
// required=false (spec §7).
func WrapException(code, msg string) error {
	return newReport("WrapException", code, msg)
}

// AsReport extracts a *Report from an error chain, if present.
func AsReport(err error) (*Report, bool) {
	r, ok := err.(*Report)
	return r, ok
}

// IsDependencyException reports whether err is a DependencyException,
// used by the §4.8 required=false trap to decide whether to soften the
// error into a not-found dependency.
func IsDependencyException(err error) bool {
	r, ok := AsReport(err)
	return ok && r.Kind == "DependencyException"
}

// IsWrapException reports whether err is a WrapException, used by the
// §4.6 subproject() required=false trap.
func IsWrapException(err error) bool {
	r, ok := AsReport(err)
	return ok && r.Kind == "WrapException"
}
