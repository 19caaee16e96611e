package sandbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func policy() Policy {
	return Policy{SourceRoot: "/src", SubprojectDir: "subprojects"}
}

func TestCheckFile_RootFileAlwaysAllowed(t *testing.T) {
	require.NoError(t, policy().CheckFile("meson.build", ""))
}

func TestCheckFile_SameSubprojectAllowed(t *testing.T) {
	require.NoError(t, policy().CheckFile("subprojects/foo/src/a.c", "foo"))
}

func TestCheckFile_CrossSubprojectRejected(t *testing.T) {
	err := policy().CheckFile("subprojects/foo/src/a.c", "bar")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sandbox violation")
}

func TestCheckFile_RootReferencingSubprojectFromRootRejected(t *testing.T) {
	err := policy().CheckFile("subprojects/foo/src/a.c", "")
	require.Error(t, err)
}

func TestCheckFile_AbsolutePathOutsideSourceRootAllowed(t *testing.T) {
	require.NoError(t, policy().CheckFile("/opt/vendor/lib.h", "foo"))
}

func TestCheckFile_AbsolutePathInsideSourceRootChecksSubproject(t *testing.T) {
	err := policy().CheckFile("/src/subprojects/foo/a.c", "bar")
	require.Error(t, err)

	require.NoError(t, policy().CheckFile("/src/subprojects/foo/a.c", "foo"))
}

func TestCheckFile_RelativeEscapeAboveSourceRootRejected(t *testing.T) {
	err := policy().CheckFile("../outside/file.c", "foo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sandbox violation")
}

func TestCheckFile_SubprojectsDirItselfNotASubprojectEscape(t *testing.T) {
	require.NoError(t, policy().CheckFile("subprojects", "foo"))
}
