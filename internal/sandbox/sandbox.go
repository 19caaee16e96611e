// Package sandbox implements the File() path policy of spec §4.12: any
// File(path) reference inside a subproject must not cross subproject
// boundaries, while absolute paths outside the source tree are allowed
// (vendored material).
package sandbox

import (
	"path/filepath"
	"strings"

	"github.com/buildgraph/bsi/internal/ierrors"
)

// Policy holds the directory layout needed to classify a path.
type Policy struct {
	SourceRoot    string
	SubprojectDir string // relative to SourceRoot, e.g. "subprojects"
}

// subprojectNameAt returns the subproject name rooted at rel (a path
// relative to SourceRoot) if rel descends into SubprojectDir, and how
// many path segments were traversed to reach it.
func (p Policy) subprojectNameAt(rel string) (name string, depth int, ok bool) {
	rel = filepath.ToSlash(rel)
	prefix := filepath.ToSlash(p.SubprojectDir) + "/"
	if !strings.HasPrefix(rel, prefix) {
		return "", 0, false
	}
	rest := strings.TrimPrefix(rel, prefix)
	parts := strings.Split(rest, "/")
	if len(parts) == 0 || parts[0] == "" {
		return "", 0, false
	}
	return parts[0], len(parts), true
}

// CheckFile validates a File(path) reference from within currentSubproject
// (spec §4.12, testable property 8).
//
//   - Absolute paths outside SourceRoot are always allowed (vendored
//     material).
//   - Paths resolving inside SourceRoot must not cross subproject
//     boundaries: the number of subproject-dir segments traversed must be
//     zero, or the computed subproject name must equal currentSubproject.
func (p Policy) CheckFile(path, currentSubproject string) error {
	if filepath.IsAbs(path) {
		rel, err := filepath.Rel(p.SourceRoot, path)
		if err != nil || strings.HasPrefix(rel, "..") {
			// Outside the source tree entirely: allowed.
			return nil
		}
		return p.checkRelative(rel, currentSubproject, path)
	}
	return p.checkRelative(path, currentSubproject, path)
}

func (p Policy) checkRelative(rel, currentSubproject, original string) error {
	rel = filepath.Clean(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		// A relative reference that escapes the source tree, unlike an
		// absolute out-of-tree path (handled and allowed in CheckFile
		// before this is ever reached from that branch), is not vendored
		// material: it is a build description reaching outside its own
		// source tree via '..' (spec §4.12, testable property 8).
		return ierrors.InvalidCode("COD102", "sandbox violation: '"+original+"' escapes the source tree from '"+currentSubproject+"'")
	}
	name, depth, insideSubprojectDir := p.subprojectNameAt(rel)
	if !insideSubprojectDir {
		return nil
	}
	if depth == 0 {
		return nil
	}
	if name == currentSubproject {
		return nil
	}
	return ierrors.InvalidCode("COD102", "sandbox violation: '"+original+"' crosses into subproject '"+name+"' from '"+currentSubproject+"'")
}
