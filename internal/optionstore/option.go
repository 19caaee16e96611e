// Package optionstore implements the typed, namespaced, yielding user
// options of spec §4.7.
package optionstore

import (
	"fmt"

	"github.com/buildgraph/bsi/internal/ast"
	"github.com/buildgraph/bsi/internal/ierrors"
	"github.com/buildgraph/bsi/internal/value"
)

// Kind is one of the six option kinds of spec §3.
type Kind string

const (
	KindString  Kind = "string"
	KindBool    Kind = "bool"
	KindCombo   Kind = "combo"
	KindInteger Kind = "integer"
	KindArray   Kind = "array"
	KindFeature Kind = "feature"
)

// FeatureState is the tri-state value of a feature option.
type FeatureState string

const (
	Enabled  FeatureState = "enabled"
	Disabled FeatureState = "disabled"
	Auto     FeatureState = "auto"
)

// Option is a single declared option.
type Option struct {
	Kind        Kind
	Description string
	Default     value.Value
	Value       value.Value
	Choices     []string // combo only
	Min, Max    *int64   // integer only
	Yielding    bool
	Deprecated  string // non-empty if deprecated, holding the replacement hint
}

// Sink receives yielding-mismatch warnings.
type Sink interface {
	Warn(subproject, message string, pos ast.Pos)
}

// Store holds all declared options, namespaced as "[subproject:]name".
type Store struct {
	options map[string]*Option
	sink    Sink
}

// NewStore constructs an empty option store.
func NewStore(sink Sink) *Store {
	return &Store{options: make(map[string]*Option), sink: sink}
}

func namespacedKey(subproject, name string) string {
	if subproject == "" {
		return name
	}
	return subproject + ":" + name
}

// Declare registers an option under a (sub)project namespace. Declaring
// the same namespaced name twice overwrites the previous declaration,
// matching an options file being reloaded.
func (s *Store) Declare(subproject, name string, opt *Option) {
	s.options[namespacedKey(subproject, name)] = opt
}

// rawLookup returns the option declared directly under key, without
// yielding.
func (s *Store) rawLookup(key string) (*Option, bool) {
	o, ok := s.options[key]
	return o, ok
}

// Get implements get_option(name) for a given subproject context,
// including the yielding rule (spec §4.7, testable property 3):
//
//  1. Look up subproject:name.
//  2. If declared with yielding=true and the parent defines the same
//     name with the same kind, use the parent's value.
//  3. On kind mismatch, warn and keep the child's value.
func (s *Store) Get(subproject, name string, pos ast.Pos) (*Option, error) {
	key := namespacedKey(subproject, name)
	opt, ok := s.rawLookup(key)
	if !ok {
		return nil, ierrors.InterpreterException("RUN105", fmt.Sprintf("unknown option %q", name))
	}
	if subproject == "" || !opt.Yielding {
		return opt, nil
	}
	parent, ok := s.rawLookup(name)
	if !ok {
		return opt, nil
	}
	if parent.Kind != opt.Kind {
		s.sink.Warn(subproject, fmt.Sprintf(
			"option %q is yielding but parent kind %s differs from child kind %s; using child value",
			name, parent.Kind, opt.Kind), pos)
		return opt, nil
	}
	// Yield to the parent: same kind, return parent's Option but keep
	// the child's description/metadata identity by returning a shallow
	// copy with the parent's Value substituted in.
	yielded := *opt
	yielded.Value = parent.Value
	return &yielded, nil
}

// ResolvedValue converts an Option to the plain Value returned by
// get_option(): feature options return a handle-free tri-state wrapper
// (callers wrap as an object.Handle); booleans/ints/strings are
// primitives; array options return a list of strings (spec §4.7 step 3).
func (o *Option) ResolvedValue() value.Value {
	return o.Value
}

// ExtractRequiredKwarg implements extract_required_kwarg(kwargs,
// subproject, default) of spec §4.7: returns (disabled, required,
// featureName) based on the `required` kwarg's value — a plain bool, or
// a feature-option tri-state where enabled->required, disabled->disabled,
// auto->optional.
func ExtractRequiredKwarg(required value.Value, hasDefault bool, defaultVal bool) (disabled bool, isRequired bool, featureName string, err error) {
	if required == nil {
		return false, defaultVal, "", nil
	}
	switch v := required.(type) {
	case value.Bool:
		return false, bool(v), "", nil
	case *FeatureRef:
		switch v.State {
		case Enabled:
			return false, true, v.Name, nil
		case Disabled:
			return true, false, v.Name, nil
		case Auto:
			return false, false, v.Name, nil
		}
	}
	return false, false, "", ierrors.InvalidArguments("ARG109", "'required' must be a bool or a feature option")
}

// FeatureRef is the Value a feature option resolves to when read via
// get_option(): a handle-free tri-state reference carrying enough
// identity (Name) for ExtractRequiredKwarg's not-found-message plumbing.
type FeatureRef struct {
	Name  string
	State FeatureState
}

func (f *FeatureRef) Kind() string { return "feature" }
func (f *FeatureRef) Truthy() bool { return f.State == Enabled }
func (f *FeatureRef) String() string { return string(f.State) }
