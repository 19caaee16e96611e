package featuregate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/buildgraph/bsi/internal/ast"
)

type collectingSink struct {
	messages []string
}

func (s *collectingSink) Warn(subproject, message string, pos ast.Pos) {
	s.messages = append(s.messages, message)
}

func TestGateCheck_NewFeatureWarnsWhenBelowMinVersion(t *testing.T) {
	sink := &collectingSink{}
	g := NewGate(sink)
	g.SetMinVersion("", ParseVersion("0.50.0"))

	g.Check("", "some_fn", "0.55.0", New, ast.Pos{})
	assert.Len(t, sink.messages, 1)
}

func TestGateCheck_NewFeatureSilentWhenAboveMinVersion(t *testing.T) {
	sink := &collectingSink{}
	g := NewGate(sink)
	g.SetMinVersion("", ParseVersion("0.60.0"))

	g.Check("", "some_fn", "0.55.0", New, ast.Pos{})
	assert.Empty(t, sink.messages)
}

func TestGateCheck_DeprecatedWarnsWhenAtOrAboveVersion(t *testing.T) {
	sink := &collectingSink{}
	g := NewGate(sink)
	g.SetMinVersion("", ParseVersion("0.60.0"))

	g.Check("", "old_fn", "0.55.0", Deprecated, ast.Pos{})
	assert.Len(t, sink.messages, 1)
}

func TestGateCheck_BrokenAlwaysWarns(t *testing.T) {
	sink := &collectingSink{}
	g := NewGate(sink)
	g.SetMinVersion("", ParseVersion("0.1.0"))

	g.Check("", "broken_fn", "0.1.0", Broken, ast.Pos{})
	assert.Len(t, sink.messages, 1)
}

func TestGateCheck_DeduplicatesPerSubprojectAndFeature(t *testing.T) {
	sink := &collectingSink{}
	g := NewGate(sink)
	g.SetMinVersion("", ParseVersion("0.50.0"))

	g.Check("", "some_fn", "0.55.0", New, ast.Pos{})
	g.Check("", "some_fn", "0.55.0", New, ast.Pos{})
	g.Check("", "some_fn", "0.55.0", New, ast.Pos{})
	assert.Len(t, sink.messages, 1)
}

func TestGateCheck_UnsetSubprojectDefaultsToZeroVersion(t *testing.T) {
	sink := &collectingSink{}
	g := NewGate(sink)

	g.Check("untracked", "some_fn", "0.1.0", New, ast.Pos{})
	assert.Len(t, sink.messages, 1)
}
