package builtinfuncs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildgraph/bsi/internal/build"
	"github.com/buildgraph/bsi/internal/object"
	"github.com/buildgraph/bsi/internal/value"
)

func TestStrArg(t *testing.T) {
	s, err := strArg(value.NewStr("hi"), "x")
	require.NoError(t, err)
	assert.Equal(t, "hi", s)

	_, err = strArg(value.Int(1), "x")
	require.Error(t, err)
}

func TestBoolArg(t *testing.T) {
	b, err := boolArg(value.Bool(true), "x")
	require.NoError(t, err)
	assert.True(t, b)

	_, err = boolArg(value.NewStr("nope"), "x")
	require.Error(t, err)
}

func TestStrList_FromBareString(t *testing.T) {
	out, err := strList(value.NewStr("a"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, out)
}

func TestStrList_FromListOfStrings(t *testing.T) {
	out, err := strList(value.NewList(value.NewStr("a"), value.NewStr("b")))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, out)
}

func TestStrList_RejectsNonStringElement(t *testing.T) {
	_, err := strList(value.NewList(value.NewStr("a"), value.Int(1)))
	require.Error(t, err)
}

func TestStrList_RejectsOtherKinds(t *testing.T) {
	_, err := strList(value.Int(1))
	require.Error(t, err)
}

func TestSourcesArg_MixedStringsAndFiles(t *testing.T) {
	f := object.New(object.KindFile, &build.File{Path: "a.c"}, nil, "")
	out, err := sourcesArg([]value.Value{value.NewStr("b.c"), f})
	require.NoError(t, err)
	assert.Equal(t, []string{"b.c", "a.c"}, out)
}

func TestSourcesArg_RejectsUnsupportedHandleKind(t *testing.T) {
	h := object.New(object.KindTarget, &build.Target{Name: "x"}, nil, "")
	_, err := sourcesArg([]value.Value{h})
	require.Error(t, err)
}

func TestKwargStr_AbsentReturnsFalseOk(t *testing.T) {
	s, present, err := kwargStr(value.NewDict(), "install_dir")
	require.NoError(t, err)
	assert.False(t, present)
	assert.Equal(t, "", s)
}

func TestKwargBool_AbsentReturnsDefault(t *testing.T) {
	b, err := kwargBool(value.NewDict(), "install", true)
	require.NoError(t, err)
	assert.True(t, b)
}

func TestKwargBool_PresentOverridesDefault(t *testing.T) {
	d := value.NewDict()
	d.Set("install", value.Bool(false))
	b, err := kwargBool(d, "install", true)
	require.NoError(t, err)
	assert.False(t, b)
}

func TestAsHandle_WrongKindErrors(t *testing.T) {
	h := object.New(object.KindTarget, &build.Target{}, nil, "")
	_, err := asHandle(h, object.KindFile, "input")
	require.Error(t, err)
}

func TestAsHandle_CorrectKindPasses(t *testing.T) {
	h := object.New(object.KindFile, &build.File{Path: "x"}, nil, "")
	got, err := asHandle(h, object.KindFile, "input")
	require.NoError(t, err)
	assert.Equal(t, h, got)
}
