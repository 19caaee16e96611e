// Package object implements the ObjectHandle model of spec §3/§4.2: a
// DSL-visible wrapper around a domain entity owned by the Build
// accumulator, carrying a kind tag, a method table, and freeze/sandbox
// bookkeeping.
//
// This reshapes the teacher's "holder wrapping a domain entity" pattern
// (and the original Meson interpreter's InterpreterObject/ObjectHolder
// split) into a single tagged-union handle with an explicit method table,
// per spec §9's re-architecture note: entities live in arenas (the Build
// accumulator), handles carry indices/refs, and there is no
// holder/unholder dance.
package object

import (
	"fmt"

	"github.com/buildgraph/bsi/internal/value"
)

// Kind identifies an ObjectHandle's class, used for dispatch, error
// messages, and introspection.
type Kind string

const (
	KindCompiler            Kind = "compiler"
	KindTarget              Kind = "target"
	KindDependency           Kind = "dependency"
	KindConfigurationData   Kind = "configuration_data"
	KindEnvironment         Kind = "environment"
	KindIncludeDirectories  Kind = "include_directories"
	KindExternalProgram     Kind = "external_program"
	KindSubproject          Kind = "subproject"
	KindModule              Kind = "module"
	KindFeatureOption       Kind = "feature_option"
	KindFile                Kind = "file"
	KindGenerator           Kind = "generator"
	KindRunResult           Kind = "run_result"
)

// Method is a callable bound to a handle's receiver. It receives already
// flattened/coerced positional args and a kwargs dict (spec §4.2 step 2),
// and returns a Value or an error.
type Method func(h *Handle, args []value.Value, kwargs *value.Dict) (value.Value, error)

// Handle is the DSL-visible wrapper around a domain entity.
//
// Handles are reference-shared: two handles obtained from the same
// underlying Entity (by index into the Build accumulator) compare equal
// by identity, never by structural comparison of their fields (spec
// §4.2 "Equality of two handles is identity of underlying entity").
type Handle struct {
	kind       Kind
	entity     any // the domain entity this handle wraps (e.g. *build.Target)
	methods    map[string]Method
	subproject string // subproject-of-origin, for sandbox checks (§4.12)

	mutable bool // methods may still mutate entity
	frozen  bool // true once a freezing consumer (e.g. configure_file) has used it
}

// New constructs a handle around entity with the given method table.
func New(kind Kind, entity any, methods map[string]Method, subproject string) *Handle {
	return &Handle{
		kind:       kind,
		entity:     entity,
		methods:    methods,
		subproject: subproject,
		mutable:    true,
	}
}

// Kind returns the handle's kind tag.
func (h *Handle) Kind() string { return string(h.kind) }

// ObjectKind returns the typed kind tag (for switches, unlike Kind()
// which satisfies value.Value).
func (h *Handle) ObjectKind() Kind { return h.kind }

// Entity returns the wrapped domain entity. Callers type-assert it to
// the concrete type registered for h.kind.
func (h *Handle) Entity() any { return h.entity }

// SubprojectOrigin returns the subproject this handle was created in.
func (h *Handle) SubprojectOrigin() string { return h.subproject }

// Truthy implements value.Value: objects are always truthy (only
// Disabler/Null/empty-collection/zero/false/"" are falsy per §4.1).
func (h *Handle) Truthy() bool { return true }

func (h *Handle) String() string { return fmt.Sprintf("<%s>", h.kind) }

// Freeze marks the handle's entity immutable after first consuming use
// (spec §3: configuration_data freezes on first use by configure_file;
// invariant 5/ testable property 6).
func (h *Handle) Freeze() { h.frozen = true }

// Frozen reports whether Freeze has been called.
func (h *Handle) Frozen() bool { return h.frozen }

// Identity returns a value usable as a map key for identity-equality
// comparisons (spec §4.2), derived from the entity pointer.
func (h *Handle) Identity() any { return h.entity }

// Equal implements identity equality between two handles.
func (h *Handle) Equal(other *Handle) bool {
	return other != nil && h.entity == other.entity
}

// Method looks up a method by name, honoring the privacy rule (names
// beginning with '_' are rejected, spec §4.2 step 3).
func (h *Handle) Method(name string) (Method, error) {
	if len(name) > 0 && name[0] == '_' {
		return nil, fmt.Errorf("method %q is private", name)
	}
	m, ok := h.methods[name]
	if !ok {
		return nil, fmt.Errorf("%s has no method %q", h.kind, name)
	}
	return m, nil
}
