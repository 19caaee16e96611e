package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildgraph/bsi/internal/value"
)

func TestFormatString_SubstitutesIndices(t *testing.T) {
	got, err := FormatString("@0@ and @1@", []value.Value{value.NewStr("a"), value.Int(2)})
	require.NoError(t, err)
	assert.Equal(t, "a and 2", got)
}

func TestFormatString_OutOfRangeErrors(t *testing.T) {
	_, err := FormatString("@5@", []value.Value{value.Int(1)})
	require.Error(t, err)
}

func TestFormatString_LeavesNonNumericTokensAlone(t *testing.T) {
	got, err := FormatString("@NAME@ and @0@", []value.Value{value.NewStr("x")})
	require.NoError(t, err)
	assert.Equal(t, "@NAME@ and x", got)
}

func TestSubstituteConfig_ReplacesKnownVariable(t *testing.T) {
	d := value.NewDict()
	d.Set("VERSION", value.NewStr("1.2.0"))
	got := SubstituteConfig("v=@VERSION@", d, nil)
	assert.Equal(t, "v=1.2.0", got)
}

func TestSubstituteConfig_WarnsOnMissingVariable(t *testing.T) {
	var warned string
	d := value.NewDict()
	got := SubstituteConfig("v=@MISSING@", d, func(name string) { warned = name })
	assert.Equal(t, "v=@MISSING@", got)
	assert.Equal(t, "MISSING", warned)
}

func TestSubstituteConfig_LeavesNumericTokensForFormat(t *testing.T) {
	d := value.NewDict()
	got := SubstituteConfig("@0@", d, nil)
	assert.Equal(t, "@0@", got)
}

func TestJoinPaths_AbsoluteComponentResetsAccumulator(t *testing.T) {
	got := JoinPaths([]string{"a", "b", "/abs/c", "d"})
	assert.Equal(t, "/abs/c/d", got)
}

func TestJoinPaths_AllRelative(t *testing.T) {
	got := JoinPaths([]string{"a", "b", "c"})
	assert.Equal(t, "a/b/c", got)
}
