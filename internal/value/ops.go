package value

import (
	"fmt"
	"strings"

	"github.com/buildgraph/bsi/internal/ierrors"
)

// Add implements the `+` operator of spec §4.1: int+int, str+str,
// list+list (concat), list+T (append), map+map (right overrides).
func Add(l, r Value) (Value, error) {
	if IsDisabler(l) || IsDisabler(r) {
		return Disabler, nil
	}
	switch lv := l.(type) {
	case Int:
		if rv, ok := r.(Int); ok {
			return lv + rv, nil
		}
	case Str:
		if rv, ok := r.(Str); ok {
			return NewStr(string(lv) + string(rv)), nil
		}
	case *List:
		if rv, ok := r.(*List); ok {
			elems := make([]Value, 0, len(lv.Elements)+len(rv.Elements))
			elems = append(elems, lv.Elements...)
			elems = append(elems, rv.Elements...)
			return &List{Elements: elems}, nil
		}
		// list + T: append a single non-list element
		elems := make([]Value, 0, len(lv.Elements)+1)
		elems = append(elems, lv.Elements...)
		elems = append(elems, r)
		return &List{Elements: elems}, nil
	case *Dict:
		if rv, ok := r.(*Dict); ok {
			merged := lv.Clone()
			for _, k := range rv.Keys() {
				v, _ := rv.Get(k)
				merged.Set(k, v)
			}
			return merged, nil
		}
	}
	return nil, ierrors.InvalidArguments("ARG101", fmt.Sprintf("cannot add %s and %s", l.Kind(), r.Kind()))
}

func intArith(name string, l, r Value, op func(a, b int64) (int64, error)) (Value, error) {
	if IsDisabler(l) || IsDisabler(r) {
		return Disabler, nil
	}
	lv, lok := l.(Int)
	rv, rok := r.(Int)
	if !lok || !rok {
		return nil, ierrors.InvalidArguments("ARG102", fmt.Sprintf("%s requires int operands, got %s and %s", name, l.Kind(), r.Kind()))
	}
	res, err := op(int64(lv), int64(rv))
	if err != nil {
		return nil, err
	}
	return Int(res), nil
}

// Sub implements `-`.
func Sub(l, r Value) (Value, error) {
	return intArith("-", l, r, func(a, b int64) (int64, error) { return a - b, nil })
}

// Mul implements `*`.
func Mul(l, r Value) (Value, error) {
	return intArith("*", l, r, func(a, b int64) (int64, error) { return a * b, nil })
}

// Div implements integer `/`, failing on division by zero.
func Div(l, r Value) (Value, error) {
	return intArith("/", l, r, func(a, b int64) (int64, error) {
		if b == 0 {
			return 0, ierrors.InvalidArguments("ARG103", "division by zero")
		}
		return a / b, nil
	})
}

// Mod implements `%`, failing on division by zero.
func Mod(l, r Value) (Value, error) {
	return intArith("%", l, r, func(a, b int64) (int64, error) {
		if b == 0 {
			return 0, ierrors.InvalidArguments("ARG103", "modulo by zero")
		}
		return a % b, nil
	})
}

// Eq implements `==` (same kind; strings case-sensitive; lists/maps
// structural).
func Eq(l, r Value) (Value, error) {
	if IsDisabler(l) || IsDisabler(r) {
		return Disabler, nil
	}
	return Bool(structEqual(l, r)), nil
}

// Neq implements `!=`.
func Neq(l, r Value) (Value, error) {
	eq, err := Eq(l, r)
	if err != nil {
		return nil, err
	}
	if IsDisabler(eq) {
		return eq, nil
	}
	return Bool(!bool(eq.(Bool))), nil
}

func structEqual(l, r Value) bool {
	switch lv := l.(type) {
	case Int:
		rv, ok := r.(Int)
		return ok && lv == rv
	case Bool:
		rv, ok := r.(Bool)
		return ok && lv == rv
	case Str:
		rv, ok := r.(Str)
		return ok && lv == rv
	case Null:
		_, ok := r.(Null)
		return ok
	case *List:
		rv, ok := r.(*List)
		if !ok || len(lv.Elements) != len(rv.Elements) {
			return false
		}
		for i := range lv.Elements {
			if !structEqual(lv.Elements[i], rv.Elements[i]) {
				return false
			}
		}
		return true
	case *Dict:
		rv, ok := r.(*Dict)
		if !ok || lv.Len() != rv.Len() {
			return false
		}
		for _, k := range lv.Keys() {
			lval, _ := lv.Get(k)
			rval, ok := rv.Get(k)
			if !ok || !structEqual(lval, rval) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Compare implements `<`,`<=`,`>`,`>=` over int,int or str,str
// (lexicographic).
func Compare(op string, l, r Value) (Value, error) {
	if IsDisabler(l) || IsDisabler(r) {
		return Disabler, nil
	}
	var cmp int
	switch lv := l.(type) {
	case Int:
		rv, ok := r.(Int)
		if !ok {
			return nil, ierrors.InvalidArguments("ARG104", "comparison requires matching int/str operands")
		}
		switch {
		case lv < rv:
			cmp = -1
		case lv > rv:
			cmp = 1
		}
	case Str:
		rv, ok := r.(Str)
		if !ok {
			return nil, ierrors.InvalidArguments("ARG104", "comparison requires matching int/str operands")
		}
		cmp = strings.Compare(string(lv), string(rv))
	default:
		return nil, ierrors.InvalidArguments("ARG104", fmt.Sprintf("%s is not orderable", l.Kind()))
	}
	switch op {
	case "<":
		return Bool(cmp < 0), nil
	case "<=":
		return Bool(cmp <= 0), nil
	case ">":
		return Bool(cmp > 0), nil
	case ">=":
		return Bool(cmp >= 0), nil
	}
	return nil, ierrors.InvalidArguments("ARG104", "unknown comparison operator "+op)
}

// Not implements unary `not`.
func Not(v Value) Value {
	if IsDisabler(v) {
		return v
	}
	return Bool(!v.Truthy())
}

// In implements the `in` operator: element-in-list, key-in-map,
// substring-in-string.
func In(needle, haystack Value) (Value, error) {
	if IsDisabler(needle) || IsDisabler(haystack) {
		return Disabler, nil
	}
	switch h := haystack.(type) {
	case *List:
		for _, e := range h.Elements {
			if structEqual(needle, e) {
				return Bool(true), nil
			}
		}
		return Bool(false), nil
	case *Dict:
		key, ok := needle.(Str)
		if !ok {
			return Bool(false), nil
		}
		_, found := h.Get(string(key))
		return Bool(found), nil
	case Str:
		needleStr, ok := needle.(Str)
		if !ok {
			return nil, ierrors.InvalidArguments("ARG105", "substring test requires a string needle")
		}
		return Bool(strings.Contains(string(h), string(needleStr))), nil
	}
	return nil, ierrors.InvalidArguments("ARG105", fmt.Sprintf("'in' not supported on %s", haystack.Kind()))
}

// Index implements `[]`: list index (0-based, negative from end), map key
// (fails if absent), string index -> 1-char string.
func Index(recv, idx Value) (Value, error) {
	if IsDisabler(recv) {
		return recv, nil
	}
	if IsDisabler(idx) {
		return idx, nil
	}
	switch r := recv.(type) {
	case *List:
		i, ok := idx.(Int)
		if !ok {
			return nil, ierrors.InvalidArguments("ARG106", "list index must be an int")
		}
		n := int64(len(r.Elements))
		pos := int64(i)
		if pos < 0 {
			pos += n
		}
		if pos < 0 || pos >= n {
			return nil, ierrors.InterpreterException("RUN101", fmt.Sprintf("list index %d out of range (len %d)", int64(i), n))
		}
		return r.Elements[pos], nil
	case *Dict:
		key, ok := idx.(Str)
		if !ok {
			return nil, ierrors.InvalidArguments("ARG106", "dict key must be a string")
		}
		v, found := r.Get(string(key))
		if !found {
			return nil, ierrors.InterpreterException("RUN102", fmt.Sprintf("key %q not found in dict", string(key)))
		}
		return v, nil
	case Str:
		i, ok := idx.(Int)
		if !ok {
			return nil, ierrors.InvalidArguments("ARG106", "string index must be an int")
		}
		runes := []rune(string(r))
		n := int64(len(runes))
		pos := int64(i)
		if pos < 0 {
			pos += n
		}
		if pos < 0 || pos >= n {
			return nil, ierrors.InterpreterException("RUN101", fmt.Sprintf("string index %d out of range (len %d)", int64(i), n))
		}
		return NewStr(string(runes[pos])), nil
	}
	return nil, ierrors.InvalidArguments("ARG106", fmt.Sprintf("%s is not indexable", recv.Kind()))
}
