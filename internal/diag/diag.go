// Package diag implements the colorized diagnostic reporter of spec §7:
// non-fatal warnings deduplicated per (subproject, message-site) and
// counted, fatal errors rendered with a source location and a
// "in subproject X, subdir Y" frame chain, and an
// end-of-run summary of per-subproject warning counts.
//
// The color scheme (green success, red error, yellow warning, cyan info)
// follows the teacher's cmd/ailang/main.go and internal/repl/repl.go,
// both built on github.com/fatih/color.
package diag

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"

	"github.com/buildgraph/bsi/internal/ast"
	"github.com/buildgraph/bsi/internal/ierrors"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// site identifies a deduplication bucket: the same warning text raised
// twice at the same location is counted once.
type site struct {
	subproject string
	message    string
	pos        string
}

// Reporter collects warnings/messages for one top-level run and renders
// them to an io.Writer (normally stderr).
type Reporter struct {
	out      io.Writer
	seen     map[site]bool
	counts   map[string]int // subproject -> warning count
	order    []string       // subprojects in first-seen order, for a stable summary
}

// NewReporter constructs a Reporter writing to out.
func NewReporter(out io.Writer) *Reporter {
	return &Reporter{
		out:    out,
		seen:   make(map[site]bool),
		counts: make(map[string]int),
	}
}

// Warn implements featuregate.Sink and is also the general-purpose
// warning entry point used by message-site warnings elsewhere in the
// evaluator (e.g. configure_file duplicate outputs, §4.9).
func (r *Reporter) Warn(subproject, message string, pos ast.Pos) {
	s := site{subproject: subproject, message: message, pos: pos.String()}
	if r.seen[s] {
		return
	}
	r.seen[s] = true
	r.track(subproject)
	fmt.Fprintf(r.out, "%s %s: %s\n", yellow("WARNING"), pos, message)
}

func (r *Reporter) track(subproject string) {
	if _, ok := r.counts[subproject]; !ok {
		r.order = append(r.order, subproject)
	}
	r.counts[subproject]++
}

// Message prints a message() call's output (cyan, per the teacher's
// logging color scheme).
func (r *Reporter) Message(text string) {
	fmt.Fprintf(r.out, "%s %s\n", cyan("Message:"), text)
}

// Success prints a non-error, non-warning success note (green).
func (r *Reporter) Success(text string) {
	fmt.Fprintf(r.out, "%s %s\n", green(bold("OK")), text)
}

// Error renders a fatal *ierrors.Report with its full frame chain
// (spec §7 propagation policy).
func (r *Reporter) Error(err error) {
	if rep, ok := ierrors.AsReport(err); ok {
		fmt.Fprintf(r.out, "%s %s: %s at %s\n", red(bold("ERROR")), rep.Code, rep.Message, rep.Pos)
		for _, f := range rep.Frames {
			fmt.Fprintf(r.out, "  in subproject %s, subdir %s\n", f.Subproject, f.Subdir)
		}
		return
	}
	fmt.Fprintf(r.out, "%s %s\n", red(bold("ERROR")), err.Error())
}

// WarningCount returns the deduplicated warning count for a subproject
// (spec S2: "warning count for the subproject incremented by 1").
func (r *Reporter) WarningCount(subproject string) int {
	return r.counts[subproject]
}

// Summary prints the final per-subproject warning counts (spec §7:
// "the final summary reports counts per subproject").
func (r *Reporter) Summary() {
	subs := append([]string(nil), r.order...)
	sort.Strings(subs)
	fmt.Fprintf(r.out, "%s\n", bold("Warning summary:"))
	for _, sp := range subs {
		name := sp
		if name == "" {
			name = "(root project)"
		}
		fmt.Fprintf(r.out, "  %s: %d warning(s)\n", name, r.counts[sp])
	}
}
