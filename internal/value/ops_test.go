package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdd(t *testing.T) {
	tests := []struct {
		name    string
		l, r    Value
		want    Value
		wantErr bool
	}{
		{"int+int", Int(1), Int(2), Int(3), false},
		{"str+str", NewStr("a"), NewStr("b"), NewStr("ab"), false},
		{"list+list concat", NewList(Int(1)), NewList(Int(2)), NewList(Int(1), Int(2)), false},
		{"list+scalar append", NewList(Int(1)), Int(2), NewList(Int(1), Int(2)), false},
		{"mismatched kinds", Int(1), NewStr("x"), nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Add(tt.l, tt.r)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, structEqual(tt.want, got))
		})
	}
}

func TestAddDisablerAbsorbs(t *testing.T) {
	got, err := Add(Disabler, Int(1))
	require.NoError(t, err)
	assert.True(t, IsDisabler(got))
}

func TestAddDictMergeRightOverrides(t *testing.T) {
	l := NewDict()
	l.Set("a", Int(1))
	l.Set("b", Int(2))
	r := NewDict()
	r.Set("b", Int(20))
	r.Set("c", Int(3))

	got, err := Add(l, r)
	require.NoError(t, err)
	merged := got.(*Dict)
	a, _ := merged.Get("a")
	b, _ := merged.Get("b")
	c, _ := merged.Get("c")
	assert.Equal(t, Int(1), a)
	assert.Equal(t, Int(20), b)
	assert.Equal(t, Int(3), c)
}

func TestDivByZero(t *testing.T) {
	_, err := Div(Int(1), Int(0))
	require.Error(t, err)
}

func TestModByZero(t *testing.T) {
	_, err := Mod(Int(1), Int(0))
	require.Error(t, err)
}

func TestEqStructural(t *testing.T) {
	a := NewList(Int(1), NewStr("x"))
	b := NewList(Int(1), NewStr("x"))
	eq, err := Eq(a, b)
	require.NoError(t, err)
	assert.Equal(t, Bool(true), eq)
}

func TestNeq(t *testing.T) {
	neq, err := Neq(Int(1), Int(2))
	require.NoError(t, err)
	assert.Equal(t, Bool(true), neq)
}

func TestCompareInts(t *testing.T) {
	lt, err := Compare("<", Int(1), Int(2))
	require.NoError(t, err)
	assert.Equal(t, Bool(true), lt)
}

func TestCompareStrsLexicographic(t *testing.T) {
	lt, err := Compare("<", NewStr("a"), NewStr("b"))
	require.NoError(t, err)
	assert.Equal(t, Bool(true), lt)
}

func TestCompareMismatchedKindsErrors(t *testing.T) {
	_, err := Compare("<", Int(1), NewStr("a"))
	require.Error(t, err)
}

func TestNot(t *testing.T) {
	assert.Equal(t, Bool(false), Not(Bool(true)))
	assert.True(t, IsDisabler(Not(Disabler)))
}

func TestInList(t *testing.T) {
	found, err := In(Int(2), NewList(Int(1), Int(2), Int(3)))
	require.NoError(t, err)
	assert.Equal(t, Bool(true), found)
}

func TestInDict(t *testing.T) {
	d := NewDict()
	d.Set("k", Int(1))
	found, err := In(NewStr("k"), d)
	require.NoError(t, err)
	assert.Equal(t, Bool(true), found)
}

func TestInSubstring(t *testing.T) {
	found, err := In(NewStr("ell"), NewStr("hello"))
	require.NoError(t, err)
	assert.Equal(t, Bool(true), found)
}

func TestIndexListNegative(t *testing.T) {
	l := NewList(Int(1), Int(2), Int(3))
	got, err := Index(l, Int(-1))
	require.NoError(t, err)
	assert.Equal(t, Int(3), got)
}

func TestIndexListOutOfRange(t *testing.T) {
	l := NewList(Int(1))
	_, err := Index(l, Int(5))
	require.Error(t, err)
}

func TestIndexDictMissingKey(t *testing.T) {
	d := NewDict()
	_, err := Index(d, NewStr("missing"))
	require.Error(t, err)
}

func TestIndexDisablerPassesThrough(t *testing.T) {
	got, err := Index(Disabler, Int(0))
	require.NoError(t, err)
	assert.True(t, IsDisabler(got))
}

func TestIndexDisablerIndexAbsorbs(t *testing.T) {
	l := NewList(Int(1), Int(2), Int(3))
	got, err := Index(l, Disabler)
	require.NoError(t, err)
	assert.True(t, IsDisabler(got))
}
