// Package manifest persists the per-run dependency manifest and
// reconfigure-trigger file list of spec §6 ("Persisted state layout": "a
// build-definition file list..., a per-project-name dependency manifest
// derived from dep_manifest"), grounded on the teacher's
// internal/eval_harness YAML usage (gopkg.in/yaml.v3).
package manifest

import (
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/buildgraph/bsi/internal/build"
)

// ProjectEntry mirrors build.DepManifestEntry in a YAML-friendly shape.
type ProjectEntry struct {
	Version string `yaml:"version"`
	License string `yaml:"license"`
}

// Manifest is the persisted document written to the build directory at the
// end of a run and reread at the start of the next to decide whether
// reconfiguration is needed.
type Manifest struct {
	Projects   map[string]ProjectEntry `yaml:"projects"`
	BuildFiles []string                `yaml:"build_def_files"`
}

// FromBuild snapshots a Build accumulator's dep_manifest and a run's
// accumulated build-definition file list into a persistable Manifest.
func FromBuild(b *build.Build, buildDefFiles []string) *Manifest {
	projects := make(map[string]ProjectEntry, len(b.DepManifest))
	for name, e := range b.DepManifest {
		projects[name] = ProjectEntry{Version: e.Version, License: e.License}
	}
	files := append([]string{}, buildDefFiles...)
	sort.Strings(files)
	return &Manifest{Projects: projects, BuildFiles: files}
}

// WriteFile marshals the manifest to YAML and writes it to path.
func WriteFile(path string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadFile reads a previously persisted manifest, returning (nil, nil) if
// the file does not exist (first configure of a fresh build directory).
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// NeedsReconfigure reports whether any of the given mtimes-keyed paths
// changed relative to the manifest's recorded build_def_files, i.e. a file
// reconfiguration depends on was added or removed. Timestamp comparison
// itself is the caller's responsibility (an external collaborator): this
// just diffs the recorded file sets.
func (m *Manifest) NeedsReconfigure(currentFiles []string) bool {
	if m == nil {
		return true
	}
	if len(currentFiles) != len(m.BuildFiles) {
		return true
	}
	sorted := append([]string{}, currentFiles...)
	sort.Strings(sorted)
	for i, f := range sorted {
		if f != m.BuildFiles[i] {
			return true
		}
	}
	return false
}
