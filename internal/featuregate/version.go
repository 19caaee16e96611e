package featuregate

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a parsed dotted version number (e.g. "0.56.0" -> [0,56,0]).
// Comparisons are component-wise; missing trailing components compare as
// zero, so "0.56" == "0.56.0".
type Version struct {
	parts []int
	raw   string
}

// ParseVersion parses a dotted version string. Non-numeric or empty
// components parse as zero, matching the permissive style build
// descriptions tend to write ("0.56", "0.56.0", "1").
func ParseVersion(s string) Version {
	fields := strings.Split(s, ".")
	parts := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			n = 0
		}
		parts[i] = n
	}
	return Version{parts: parts, raw: s}
}

func (v Version) String() string {
	if v.raw != "" {
		return v.raw
	}
	strs := make([]string, len(v.parts))
	for i, p := range v.parts {
		strs[i] = strconv.Itoa(p)
	}
	return strings.Join(strs, ".")
}

// Compare returns -1, 0, or 1 per normal version-ordering semantics.
func (v Version) Compare(other Version) int {
	n := len(v.parts)
	if len(other.parts) > n {
		n = len(other.parts)
	}
	for i := 0; i < n; i++ {
		a, b := 0, 0
		if i < len(v.parts) {
			a = v.parts[i]
		}
		if i < len(other.parts) {
			b = other.parts[i]
		}
		if a != b {
			if a < b {
				return -1
			}
			return 1
		}
	}
	return 0
}

func (v Version) Less(other Version) bool         { return v.Compare(other) < 0 }
func (v Version) LessOrEqual(other Version) bool  { return v.Compare(other) <= 0 }
func (v Version) GreaterOrEqual(other Version) bool { return v.Compare(other) >= 0 }

// Constraint is a single version predicate like ">=1.2" or "!=1.4".
type Constraint struct {
	Op      string // one of >=, <=, >, <, ==, !=
	Version Version
}

// ParseConstraint parses a single constraint string, e.g. ">=1.2".
func ParseConstraint(s string) (Constraint, error) {
	s = strings.TrimSpace(s)
	for _, op := range []string{">=", "<=", "==", "!=", ">", "<"} {
		if strings.HasPrefix(s, op) {
			return Constraint{Op: op, Version: ParseVersion(strings.TrimSpace(s[len(op):]))}, nil
		}
	}
	return Constraint{}, fmt.Errorf("invalid version constraint %q", s)
}

// Match reports whether v satisfies the constraint.
func (c Constraint) Match(v Version) bool {
	cmp := v.Compare(c.Version)
	switch c.Op {
	case ">=":
		return cmp >= 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	case "<":
		return cmp < 0
	case "==":
		return cmp == 0
	case "!=":
		return cmp != 0
	default:
		return false
	}
}

// MatchAll implements §4.8's version matching: "any of a list of
// constraints... all hold". "undefined" never matches.
func MatchAll(versionStr string, constraints []string) bool {
	if versionStr == "" || versionStr == "undefined" {
		return false
	}
	v := ParseVersion(versionStr)
	for _, cs := range constraints {
		c, err := ParseConstraint(cs)
		if err != nil {
			return false
		}
		if !c.Match(v) {
			return false
		}
	}
	return true
}
