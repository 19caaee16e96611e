// Package build implements the Build accumulator of spec §3: the single,
// process-wide, append-mostly record of everything a build description
// declares. It is created once per top-level evaluator run and shared by
// reference with every subproject's child evaluator (spec §2, §5).
package build

import (
	"fmt"

	"github.com/buildgraph/bsi/internal/ierrors"
	"github.com/buildgraph/bsi/internal/machine"
)

// TargetKind distinguishes the build_target() flavors of spec §4.4.
type TargetKind string

const (
	Executable   TargetKind = "executable"
	StaticLib    TargetKind = "static_library"
	SharedLib    TargetKind = "shared_library"
	SharedModule TargetKind = "shared_module"
	Jar          TargetKind = "jar"
	CustomTarget TargetKind = "custom_target"
	RunTarget    TargetKind = "run_target"
	AliasTarget  TargetKind = "alias_target"
)

// Target is a declared build target.
type Target struct {
	ID               string
	Name             string
	Kind             TargetKind
	Subproject       string
	Sources          []string
	BuildByDefault   bool
	InstallDir       string
	Installed        bool
}

// InstallDir is a directory installed wholesale via install_subdir().
type InstallDir struct {
	Source  string
	DestDir string
}

// DataFile is a plain file installed via install_data().
type DataFile struct {
	Source  string
	DestDir string
}

// RunScript is a deferred command record produced by
// meson.add_install_script / add_postconf_script / add_dist_script
// (spec §4.10).
type RunScript struct {
	Command    []string
	Subproject string
}

// TestCase is a declared test() or benchmark() (spec §4.4).
type TestCase struct {
	Name       string
	Target     *Target
	Args       []string
	Subproject string
	IsBenchmark bool
}

// TestSetup is a named bundle of test-running defaults added via
// add_test_setup() (spec §3).
type TestSetup struct {
	Name string
	Env  map[string]string
}

// DependencyOverride records a dependency resolution that's been locked
// in for its identifier, either by explicit override or by the
// auto-registration rule of spec §4.8's closing paragraph.
type DependencyOverride struct {
	Identifier string
	Found      bool
	Version    string
	Value      any // the resolved dependency handle/value
}

// DepManifestEntry is one project's recorded version/license (spec §3,
// §6 "per-project-name dependency manifest").
type DepManifestEntry struct {
	Version string
	License string
}

// Build is the process-wide accumulator.
type Build struct {
	Targets map[string]*Target // id -> Target, unique by construction

	InstallScripts  []RunScript
	PostconfScripts []RunScript
	DistScripts     []RunScript
	InstallDirs     []InstallDir
	Data            []DataFile
	Headers         []DataFile
	Man             []DataFile
	Tests           []*TestCase
	Benchmarks      []*TestCase
	RunTargetNames  map[string]bool

	Machines machine.Set

	// DependencyOverrides is keyed per machine role then identifier.
	DependencyOverrides map[machine.Role]map[string]*DependencyOverride

	// Per-subproject argument accumulators.
	GlobalArgs     map[string][]string // language -> args
	ProjectArgs    map[string]map[string][]string // subproject -> language -> args
	GlobalLinkArgs map[string][]string
	ProjectLinkArgs map[string]map[string][]string
	Stdlibs        map[string]map[string]string // subproject -> language -> stdlib dep name

	DepManifest map[string]DepManifestEntry // project name -> {version, license}

	FindOverrides    map[string]any // program name -> ExternalProgram handle
	SearchedPrograms map[string]bool

	TestSetups           map[string]*TestSetup
	TestSetupDefaultName string

	// globalArgsFrozen becomes true once any target has been declared
	// (invariant 2: "after a target is declared, global arguments cannot
	// be added").
	globalArgsFrozen bool

	// projectArgsFrozen[subproject] becomes true once that subproject's
	// argument set has been frozen (invariant 3), e.g. when a child
	// subproject is spawned and the parent's project arguments are locked
	// in (spec §4.6 step 4).
	projectArgsFrozen map[string]bool
}

// New constructs an empty Build accumulator.
func New(machines machine.Set) *Build {
	return &Build{
		Targets:             make(map[string]*Target),
		RunTargetNames:      make(map[string]bool),
		Machines:            machines,
		DependencyOverrides: map[machine.Role]map[string]*DependencyOverride{},
		GlobalArgs:          make(map[string][]string),
		ProjectArgs:         make(map[string]map[string][]string),
		GlobalLinkArgs:      make(map[string][]string),
		ProjectLinkArgs:     make(map[string]map[string][]string),
		Stdlibs:             make(map[string]map[string]string),
		DepManifest:         make(map[string]DepManifestEntry),
		FindOverrides:       make(map[string]any),
		SearchedPrograms:    make(map[string]bool),
		TestSetups:          make(map[string]*TestSetup),
		projectArgsFrozen:   make(map[string]bool),
	}
}

// AddTarget registers a new target, enforcing invariant 1 (unique target
// ids) and invariant 2 (freezing global args).
func (b *Build) AddTarget(t *Target) error {
	if _, exists := b.Targets[t.ID]; exists {
		return ierrors.InvalidCode("COD104", fmt.Sprintf("duplicate target id %q", t.ID))
	}
	b.Targets[t.ID] = t
	b.globalArgsFrozen = true
	return nil
}

// AddGlobalArguments appends args for a language, rejecting the call once
// any target has been declared (invariant 2).
func (b *Build) AddGlobalArguments(lang string, args []string) error {
	if b.globalArgsFrozen {
		return ierrors.InvalidCode("COD106", "add_global_arguments called after a target was declared")
	}
	b.GlobalArgs[lang] = append(b.GlobalArgs[lang], args...)
	return nil
}

// AddGlobalLinkArguments is the link-argument counterpart of
// AddGlobalArguments.
func (b *Build) AddGlobalLinkArguments(lang string, args []string) error {
	if b.globalArgsFrozen {
		return ierrors.InvalidCode("COD106", "add_global_link_arguments called after a target was declared")
	}
	b.GlobalLinkArgs[lang] = append(b.GlobalLinkArgs[lang], args...)
	return nil
}

// FreezeProjectArgs locks in a subproject's project-argument set
// (invariant 3). The project driver calls it with the parent's subproject
// name just before spawning a child subproject evaluator (spec §4.6 step
// 4). It does not freeze global arguments.
func (b *Build) FreezeProjectArgs(subproject string) {
	b.projectArgsFrozen[subproject] = true
}

// AddProjectArguments appends args for a language within a subproject,
// rejecting the call if that subproject's args are already frozen.
func (b *Build) AddProjectArguments(subproject, lang string, args []string) error {
	if b.projectArgsFrozen[subproject] {
		return ierrors.InvalidCode("COD106", fmt.Sprintf("add_project_arguments called for %q after its arguments were frozen", subproject))
	}
	m, ok := b.ProjectArgs[subproject]
	if !ok {
		m = make(map[string][]string)
		b.ProjectArgs[subproject] = m
	}
	m[lang] = append(m[lang], args...)
	return nil
}

// AddProjectLinkArguments is the link-argument counterpart.
func (b *Build) AddProjectLinkArguments(subproject, lang string, args []string) error {
	if b.projectArgsFrozen[subproject] {
		return ierrors.InvalidCode("COD106", fmt.Sprintf("add_project_link_arguments called for %q after its arguments were frozen", subproject))
	}
	m, ok := b.ProjectLinkArgs[subproject]
	if !ok {
		m = make(map[string][]string)
		b.ProjectLinkArgs[subproject] = m
	}
	m[lang] = append(m[lang], args...)
	return nil
}

// RegisterFindOverride implements invariant 4: a name may appear in
// find_overrides only once and only if not yet searched.
func (b *Build) RegisterFindOverride(name string, prog any) error {
	if b.SearchedPrograms[name] {
		return ierrors.InvalidCode("COD104", fmt.Sprintf("program %q was already searched for before being overridden", name))
	}
	if _, exists := b.FindOverrides[name]; exists {
		return ierrors.InvalidCode("COD104", fmt.Sprintf("program %q is already overridden", name))
	}
	b.FindOverrides[name] = prog
	return nil
}

// MarkSearched records that find_program(name) has run the external
// search, closing off future overrides for that name (invariant 4).
func (b *Build) MarkSearched(name string) {
	b.SearchedPrograms[name] = true
}

// DependencyOverrideFor returns the override recorded for an identifier
// on a given machine role, if any.
func (b *Build) DependencyOverrideFor(role machine.Role, identifier string) (*DependencyOverride, bool) {
	m, ok := b.DependencyOverrides[role]
	if !ok {
		return nil, false
	}
	o, ok := m[identifier]
	return o, ok
}

// SetDependencyOverride records (or replaces) the override for an
// identifier on a machine role — this is both the explicit
// dependency_overrides bookkeeping of §4.8 step 3 and the
// auto-registration of every found dependency (§4.8 closing paragraph).
func (b *Build) SetDependencyOverride(role machine.Role, override *DependencyOverride) {
	m, ok := b.DependencyOverrides[role]
	if !ok {
		m = make(map[string]*DependencyOverride)
		b.DependencyOverrides[role] = m
	}
	m[override.Identifier] = override
}

// AddTestSetup registers a named test setup, optionally as the default.
func (b *Build) AddTestSetup(setup *TestSetup, isDefault bool) {
	b.TestSetups[setup.Name] = setup
	if isDefault {
		b.TestSetupDefaultName = setup.Name
	}
}
