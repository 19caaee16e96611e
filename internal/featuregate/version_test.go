package featuregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersionTrailingZeros(t *testing.T) {
	a := ParseVersion("0.56")
	b := ParseVersion("0.56.0")
	assert.Equal(t, 0, a.Compare(b))
}

func TestVersionCompareOrdering(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.2.0", "1.3.0", -1},
		{"1.3.0", "1.2.0", 1},
		{"1.2.3", "1.2.3", 0},
		{"2.0.0", "1.99.99", 1},
	}
	for _, tt := range tests {
		got := ParseVersion(tt.a).Compare(ParseVersion(tt.b))
		assert.Equal(t, tt.want, got, "%s vs %s", tt.a, tt.b)
	}
}

func TestParseVersionNonNumericComponentIsZero(t *testing.T) {
	v := ParseVersion("1.x.0")
	assert.Equal(t, 0, v.Compare(ParseVersion("1.0.0")))
}

func TestParseConstraint(t *testing.T) {
	c, err := ParseConstraint(">=1.2.0")
	require.NoError(t, err)
	assert.True(t, c.Match(ParseVersion("1.2.0")))
	assert.True(t, c.Match(ParseVersion("1.3.0")))
	assert.False(t, c.Match(ParseVersion("1.1.0")))
}

func TestParseConstraintInvalid(t *testing.T) {
	_, err := ParseConstraint("~>1.2.0")
	require.Error(t, err)
}

func TestMatchAll(t *testing.T) {
	assert.True(t, MatchAll("1.5.0", []string{">=1.0.0", "<2.0.0"}))
	assert.False(t, MatchAll("1.5.0", []string{">=1.0.0", "<1.0.0"}))
	assert.False(t, MatchAll("undefined", []string{">=1.0.0"}))
	assert.False(t, MatchAll("", []string{">=1.0.0"}))
}
