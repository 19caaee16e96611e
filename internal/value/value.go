// Package value implements the DSL's tagged-union value model (spec §3).
//
// A Value is one of: Int, Bool, Str, List, Dict, Disabler, Null, or an
// object handle (defined in package object, which implements this
// package's Value interface so handles can flow through the same
// arithmetic/equality machinery as primitives).
package value

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Value is any runtime value the evaluator can hold or pass to a method.
type Value interface {
	// Kind names the value's tag for diagnostics and type-mismatch errors.
	Kind() string
	// Truthy implements the falsiness rules of spec §4.1.
	Truthy() bool
	// String renders the value for message()/error()/string interpolation.
	String() string
}

// Normalize applies NFC Unicode normalization to identifiers that will be
// used as map keys (target ids, option names, dependency identifiers) so
// visually identical names with different codepoint sequences can't
// collide or bypass equality checks.
func Normalize(s string) string {
	if norm.NFC.IsNormalString(s) {
		return s
	}
	return norm.NFC.String(s)
}

// Int is a signed 64-bit integer value.
type Int int64

func (i Int) Kind() string   { return "int" }
func (i Int) Truthy() bool   { return i != 0 }
func (i Int) String() string { return fmt.Sprintf("%d", int64(i)) }

// Bool is a boolean value.
type Bool bool

func (b Bool) Kind() string   { return "bool" }
func (b Bool) Truthy() bool   { return bool(b) }
func (b Bool) String() string { return fmt.Sprintf("%t", bool(b)) }

// Str is an immutable, NFC-normalized UTF-8 string value.
type Str string

// NewStr constructs a Str, normalizing its contents.
func NewStr(s string) Str { return Str(Normalize(s)) }

func (s Str) Kind() string   { return "str" }
func (s Str) Truthy() bool   { return len(s) != 0 }
func (s Str) String() string { return string(s) }

// Null is the absent value (e.g. an unset kwarg default).
type Null struct{}

func (Null) Kind() string   { return "void" }
func (Null) Truthy() bool   { return false }
func (Null) String() string { return "void" }

// List is an ordered, mutable-by-method list of values.
type List struct {
	Elements []Value
}

func NewList(elements ...Value) *List { return &List{Elements: elements} }

func (l *List) Kind() string { return "list" }
func (l *List) Truthy() bool { return len(l.Elements) > 0 }
func (l *List) String() string {
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		parts[i] = quoteIfStr(e)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Dict is an insertion-ordered string-keyed mapping.
type Dict struct {
	keys   []string
	values map[string]Value
}

func NewDict() *Dict {
	return &Dict{values: make(map[string]Value)}
}

// Set inserts or overwrites a key, preserving original insertion position.
func (d *Dict) Set(key string, v Value) {
	key = Normalize(key)
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = v
}

// Get looks up a key.
func (d *Dict) Get(key string) (Value, bool) {
	v, ok := d.values[Normalize(key)]
	return v, ok
}

// Keys returns keys in insertion order.
func (d *Dict) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// Len returns the number of entries.
func (d *Dict) Len() int { return len(d.keys) }

func (d *Dict) Kind() string { return "dict" }
func (d *Dict) Truthy() bool { return len(d.keys) > 0 }
func (d *Dict) String() string {
	parts := make([]string, 0, len(d.keys))
	for _, k := range d.keys {
		parts = append(parts, fmt.Sprintf("%q: %s", k, quoteIfStr(d.values[k])))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Clone returns a shallow copy of the dict (used before mutating methods
// that must not alias a caller's dict, e.g. map + map).
func (d *Dict) Clone() *Dict {
	nd := NewDict()
	for _, k := range d.keys {
		nd.Set(k, d.values[k])
	}
	return nd
}

func quoteIfStr(v Value) string {
	if s, ok := v.(Str); ok {
		return fmt.Sprintf("%q", string(s))
	}
	return v.String()
}

// disabler is the poison sentinel of spec §3. It is a singleton: all
// Disabler values are the one instance below, so identity comparison
// ("is this value THE disabler") is just a type assertion.
type disabler struct{}

func (disabler) Kind() string   { return "disabler" }
func (disabler) Truthy() bool   { return false }
func (disabler) String() string { return "<disabler>" }

// Disabler is the singleton poison value.
var Disabler Value = disabler{}

// IsDisabler reports whether v is the Disabler sentinel.
func IsDisabler(v Value) bool {
	_, ok := v.(disabler)
	return ok
}

// IsNull reports whether v is Null.
func IsNull(v Value) bool {
	_, ok := v.(Null)
	return ok
}
