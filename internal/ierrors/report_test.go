package ierrors

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvalidArguments_SetsKindAndCode(t *testing.T) {
	err := InvalidArguments(ARG107, "wrong arity")
	r, ok := AsReport(err)
	require.True(t, ok)
	assert.Equal(t, "InvalidArguments", r.Kind)
	assert.Equal(t, ARG107, r.Code)
	assert.Equal(t, "wrong arity", r.Message)
}

func TestReportError_IncludesCodeMessageAndFrames(t *testing.T) {
	r := newReport("InvalidCode", COD101, "duplicate project() call")
	r.WithFrame("sub1", "src/sub1")
	msg := r.Error()
	assert.Contains(t, msg, COD101)
	assert.Contains(t, msg, "duplicate project() call")
	assert.Contains(t, msg, "sub1")
}

func TestWithFrame_AppendsInOrder(t *testing.T) {
	r := newReport("WrapException", WRP101, "resolve failed")
	r.WithFrame("outer", "a").WithFrame("inner", "b")
	require.Len(t, r.Frames, 2)
	assert.Equal(t, "outer", r.Frames[0].Subproject)
	assert.Equal(t, "inner", r.Frames[1].Subproject)
}

func TestToJSON_RoundTripsSchemaAndCode(t *testing.T) {
	r := newReport("DependencyException", DEP101, "not found")
	out, err := r.ToJSON()
	require.NoError(t, err)

	var decoded Report
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "bsi.error/v1", decoded.Schema)
	assert.Equal(t, DEP101, decoded.Code)
}

func TestIsDependencyException(t *testing.T) {
	depErr := DependencyException(DEP101, "not found")
	assert.True(t, IsDependencyException(depErr))
	assert.False(t, IsDependencyException(InvalidCode(COD101, "x")))
	assert.False(t, IsDependencyException(nil))
}

func TestIsWrapException(t *testing.T) {
	wrapErr := WrapException(WRP101, "resolve failed")
	assert.True(t, IsWrapException(wrapErr))
	assert.False(t, IsWrapException(InterpreterException(RUN104, "assertion failed")))
}

func TestAsReport_NonReportErrorFalse(t *testing.T) {
	_, ok := AsReport(assertPlainError{})
	assert.False(t, ok)
}

type assertPlainError struct{}

func (assertPlainError) Error() string { return "plain" }
