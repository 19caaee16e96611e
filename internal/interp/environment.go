package interp

import "github.com/buildgraph/bsi/internal/value"

// Environment is a flat variable scope per (sub)project, mirroring the
// teacher's internal/eval.Environment shape. Spec §4.3: "a variable
// environment... flat per (sub)project scope (no lexical nesting beyond
// function-like subdir inclusion; subdir shares the scope)" — so unlike
// the teacher, subdir() does NOT create a child environment; it reuses
// the caller's. Only subproject() gets a fresh Environment (a new
// evaluator, spec §4.6 step 4).
type Environment struct {
	values map[string]value.Value
}

// NewEnvironment creates an empty environment.
func NewEnvironment() *Environment {
	return &Environment{values: make(map[string]value.Value)}
}

// Set binds or rebinds a name.
func (e *Environment) Set(name string, v value.Value) {
	e.values[name] = v
}

// Get looks up a name.
func (e *Environment) Get(name string) (value.Value, bool) {
	v, ok := e.values[name]
	return v, ok
}

// Has reports whether name is bound (used by is_variable()).
func (e *Environment) Has(name string) bool {
	_, ok := e.values[name]
	return ok
}

// Delete removes a binding (used by module state snapshots that must not
// leak subsequent mutations, and by unset_variable-style cleanup).
func (e *Environment) Delete(name string) {
	delete(e.values, name)
}

// All returns a snapshot copy of every binding, for ModuleState assembly
// (spec §4.11) and for merging a subproject's variables under its
// namespace (spec §4.6 step 5).
func (e *Environment) All() map[string]value.Value {
	out := make(map[string]value.Value, len(e.values))
	for k, v := range e.values {
		out[k] = v
	}
	return out
}
