package builtinfuncs

import (
	"fmt"

	"github.com/buildgraph/bsi/internal/ierrors"
	"github.com/buildgraph/bsi/internal/object"
	"github.com/buildgraph/bsi/internal/value"
)

func strArg(v value.Value, what string) (string, error) {
	s, ok := v.(value.Str)
	if !ok {
		return "", ierrors.InvalidArguments("ARG106", fmt.Sprintf("%s must be a string, got %s", what, v.Kind()))
	}
	return string(s), nil
}

func boolArg(v value.Value, what string) (bool, error) {
	b, ok := v.(value.Bool)
	if !ok {
		return false, ierrors.InvalidArguments("ARG106", fmt.Sprintf("%s must be a bool, got %s", what, v.Kind()))
	}
	return bool(b), nil
}

// strList coerces a Value that is either a bare string or a list of
// strings into a []string, matching the DSL's pervasive "str | list[str]"
// argument shape.
func strList(v value.Value) ([]string, error) {
	switch x := v.(type) {
	case value.Str:
		return []string{string(x)}, nil
	case *value.List:
		out := make([]string, 0, len(x.Elements))
		for _, e := range x.Elements {
			s, ok := e.(value.Str)
			if !ok {
				return nil, ierrors.InvalidArguments("ARG106", "expected a list of strings")
			}
			out = append(out, string(s))
		}
		return out, nil
	default:
		return nil, ierrors.InvalidArguments("ARG106", fmt.Sprintf("expected a string or list of strings, got %s", v.Kind()))
	}
}

// sourcesArg coerces a mixed positional-argument tail into a flat string
// list, accepting bare strings and File handles (their Path field).
func sourcesArg(args []value.Value) ([]string, error) {
	out := make([]string, 0, len(args))
	for _, a := range args {
		switch x := a.(type) {
		case value.Str:
			out = append(out, string(x))
		case *object.Handle:
			if x.ObjectKind() == object.KindFile {
				if f, ok := x.Entity().(interface{ FilePath() string }); ok {
					out = append(out, f.FilePath())
					continue
				}
			}
			return nil, ierrors.InvalidArguments("ARG106", fmt.Sprintf("unsupported source argument kind %s", x.ObjectKind()))
		default:
			return nil, ierrors.InvalidArguments("ARG106", fmt.Sprintf("unsupported source argument kind %s", a.Kind()))
		}
	}
	return out, nil
}

func kwargStr(kwargs *value.Dict, name string) (string, bool, error) {
	v, ok := kwargs.Get(name)
	if !ok {
		return "", false, nil
	}
	s, err := strArg(v, name)
	return s, true, err
}

func kwargBool(kwargs *value.Dict, name string, def bool) (bool, error) {
	v, ok := kwargs.Get(name)
	if !ok {
		return def, nil
	}
	return boolArg(v, name)
}

func kwargStrList(kwargs *value.Dict, name string) ([]string, error) {
	v, ok := kwargs.Get(name)
	if !ok {
		return nil, nil
	}
	return strList(v)
}

func asHandle(v value.Value, kind object.Kind, what string) (*object.Handle, error) {
	h, ok := v.(*object.Handle)
	if !ok || h.ObjectKind() != kind {
		return nil, ierrors.InvalidArguments("ARG106", fmt.Sprintf("%s must be a %s object", what, kind))
	}
	return h, nil
}
