package interp

import (
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/buildgraph/bsi/internal/ierrors"
	"github.com/buildgraph/bsi/internal/value"
)

var formatTokenRe = regexp.MustCompile(`@(\d+|[A-Za-z_][A-Za-z0-9_]*)@`)

// FormatString implements x.format([a, b, c]) string interpolation (spec
// §4.3): substitutes @N@ tokens with the Nth element of items (stringified
// per the value's natural rendering); missing indices fail, extra items
// are ignored.
func FormatString(template string, items []value.Value) (string, error) {
	var outerErr error
	result := formatTokenRe.ReplaceAllStringFunc(template, func(tok string) string {
		name := tok[1 : len(tok)-1]
		idx, err := strconv.Atoi(name)
		if err != nil {
			// Not a numeric token — leave non-numeric @NAME@ alone; this
			// path is for configuration-data substitution, handled by
			// SubstituteConfig instead.
			return tok
		}
		if idx < 0 || idx >= len(items) {
			outerErr = ierrors.InvalidArguments("ARG107", "format() references index "+name+" but only "+strconv.Itoa(len(items))+" items were given")
			return tok
		}
		return items[idx].String()
	})
	if outerErr != nil {
		return "", outerErr
	}
	return result, nil
}

// SubstituteConfig substitutes @VARNAME@ tokens from a configuration-data
// mapping (spec §4.3, §4.9 configuration mode). Variables referenced in
// the template but absent from data produce a warning via warnMissing
// rather than failing the whole substitution (spec §4.9: "Warn on
// variables referenced in the template but absent from the data").
func SubstituteConfig(template string, data *value.Dict, warnMissing func(name string)) string {
	return formatTokenRe.ReplaceAllStringFunc(template, func(tok string) string {
		name := tok[1 : len(tok)-1]
		if _, err := strconv.Atoi(name); err == nil {
			// Numeric tokens belong to format(), not configuration
			// substitution; leave them untouched.
			return tok
		}
		v, ok := data.Get(name)
		if !ok {
			if warnMissing != nil {
				warnMissing(name)
			}
			return tok
		}
		return v.String()
	})
}

// JoinPaths implements join_paths()'s OS-aware semantics (spec §4.3): a
// component that is itself an absolute path resets the accumulated path,
// discarding everything joined so far.
func JoinPaths(parts []string) string {
	acc := ""
	for _, p := range parts {
		if filepath.IsAbs(p) {
			acc = p
			continue
		}
		if acc == "" {
			acc = p
			continue
		}
		acc = filepath.Join(acc, p)
	}
	return filepath.Clean(acc)
}

// SplitFormatArgs coerces a single list-of-values argument (the shape
// format() takes) into a Go slice, rejecting anything else. Nothing in
// this module calls it.
func SplitFormatArgs(v value.Value) ([]value.Value, error) {
	list, ok := v.(*value.List)
	if !ok {
		return nil, ierrors.InvalidArguments("ARG107", "format() expects a single list argument")
	}
	return list.Elements, nil
}

// JoinPathsSlash is JoinPaths with the result converted to forward
// slashes. Nothing in this module calls it.
func JoinPathsSlash(parts []string) string {
	return filepath.ToSlash(JoinPaths(parts))
}
