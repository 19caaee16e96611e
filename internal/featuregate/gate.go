// Package featuregate implements the uniform feature/deprecation/
// brokenness check of spec §4.5: a (feature_name, required_version, kind)
// triple evaluated against a subproject's declared minimum DSL version,
// deduplicated per (subproject, feature), aggregated into an
// end-of-subproject report.
package featuregate

import (
	"fmt"

	"github.com/buildgraph/bsi/internal/ast"
)

// Kind classifies a feature check, per spec §4.5.
type Kind int

const (
	New Kind = iota
	Deprecated
	Broken
)

// Sink receives deduplicated warnings as they're produced. The
// featuregate package doesn't know how warnings are displayed or
// counted across the run — that's package diag's job — it just reports
// them through this seam, mirroring the teacher pipeline's
// Config.LedgerHook callback-injection style.
type Sink interface {
	Warn(subproject, message string, pos ast.Pos)
}

type subprojectState struct {
	minVersion Version
	seen       map[string]bool // feature name -> warned already
}

// Gate tracks feature-check state across all subprojects in a run.
type Gate struct {
	sink  Sink
	subs  map[string]*subprojectState
}

// NewGate constructs a Gate that reports through sink.
func NewGate(sink Sink) *Gate {
	return &Gate{sink: sink, subs: make(map[string]*subprojectState)}
}

// SetMinVersion records a subproject's declared meson_version minimum
// (spec §4.6 step 2: "Evaluate meson_version first").
func (g *Gate) SetMinVersion(subproject string, v Version) {
	g.subs[subproject] = &subprojectState{minVersion: v, seen: make(map[string]bool)}
}

func (g *Gate) state(subproject string) *subprojectState {
	s, ok := g.subs[subproject]
	if !ok {
		s = &subprojectState{minVersion: ParseVersion("0.0.0"), seen: make(map[string]bool)}
		g.subs[subproject] = s
	}
	return s
}

// Check evaluates a single feature check and emits a deduplicated warning
// through the sink if warranted. required is the version string at which
// the feature was introduced/deprecated/declared broken.
func (g *Gate) Check(subproject, feature, required string, kind Kind, pos ast.Pos) {
	s := g.state(subproject)
	reqVersion := ParseVersion(required)

	var shouldWarn bool
	var verb string
	switch kind {
	case New:
		shouldWarn = s.minVersion.Less(reqVersion)
		verb = "is a new feature"
	case Deprecated:
		shouldWarn = s.minVersion.GreaterOrEqual(reqVersion)
		verb = "is deprecated"
	case Broken:
		shouldWarn = true
		verb = "is known-broken"
	}
	if !shouldWarn {
		return
	}

	// First warning per (subproject, feature) is kept; duplicates
	// suppressed (spec §4.5).
	if s.seen[feature] {
		return
	}
	s.seen[feature] = true

	msg := fmt.Sprintf("%s %s as of %s (project declares minimum %s)", feature, verb, required, s.minVersion)
	if kind == Broken {
		msg = fmt.Sprintf("%s is known-broken as of %s", feature, required)
	}
	g.sink.Warn(subproject, msg, pos)
}

// KwargCheck is a single (kwarg name -> introduced-at-version) entry for
// the batch FeatureNewKwargs/FeatureDeprecatedKwargs checks.
type KwargCheck struct {
	Kwarg   string
	Version string
}

// CheckKwargs runs Check for every kwarg name present in presentKwargs
// that has a registered version check, mirroring Meson's
// FeatureNewKwargs/FeatureDeprecatedKwargs decorators
// (original_source/mesonbuild/interpreterbase).
func (g *Gate) CheckKwargs(subproject, funcName string, kind Kind, checks []KwargCheck, presentKwargs map[string]bool, pos ast.Pos) {
	for _, c := range checks {
		if !presentKwargs[c.Kwarg] {
			continue
		}
		g.Check(subproject, fmt.Sprintf("%s kwarg %q of %s", funcOrKwarg(kind), c.Kwarg, funcName), c.Version, kind, pos)
	}
}

func funcOrKwarg(kind Kind) string {
	if kind == Deprecated {
		return "deprecated"
	}
	return "new"
}

// Report is the end-of-subproject aggregate summary (spec §4.5 "A final
// aggregate report is emitted at the end of each subproject's
// evaluation").
type Report struct {
	Subproject   string
	MinVersion   string
	FeaturesUsed []string
}

// Summarize returns the aggregate report for one subproject.
func (g *Gate) Summarize(subproject string) Report {
	s := g.state(subproject)
	used := make([]string, 0, len(s.seen))
	for f := range s.seen {
		used = append(used, f)
	}
	return Report{Subproject: subproject, MinVersion: s.minVersion.String(), FeaturesUsed: used}
}
