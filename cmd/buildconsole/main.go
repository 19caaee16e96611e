// Command buildconsole is a read-only introspection REPL over a finished
// Build accumulator (spec §4.13): list targets, inspect a dependency's
// resolution, print the dependency manifest. It evaluates the bundled
// demo fixture once at startup (parsing real build-description text is an
// external collaborator this port doesn't implement, spec §1) and then
// lets the user poke at the result with peterh/liner-backed line editing,
// mirroring the teacher's internal/repl.REPL.
package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/buildgraph/bsi/internal/ast"
	"github.com/buildgraph/bsi/internal/build"
	"github.com/buildgraph/bsi/internal/builtinfuncs"
	"github.com/buildgraph/bsi/internal/configure"
	"github.com/buildgraph/bsi/internal/demo"
	"github.com/buildgraph/bsi/internal/dependency"
	"github.com/buildgraph/bsi/internal/diag"
	"github.com/buildgraph/bsi/internal/interp"
	"github.com/buildgraph/bsi/internal/machine"
	"github.com/buildgraph/bsi/internal/manifest"
	"github.com/buildgraph/bsi/internal/modloader"
	"github.com/buildgraph/bsi/internal/project"
	"github.com/buildgraph/bsi/internal/sandbox"
)

var (
	green = color.New(color.FgGreen).SprintFunc()
	cyan  = color.New(color.FgCyan).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
	dim   = color.New(color.Faint).SprintFunc()
)

const sourceRoot = ""
const buildRoot = "build"

// run wires every collaborator together and evaluates the demo fixture,
// returning the finished top-level Evaluator for introspection.
func run() (*interp.Evaluator, error) {
	machines := machine.Set{
		Build:  machine.Descriptor{System: "linux", CPUFamily: "x86_64", Endian: "little"},
		Host:   machine.Descriptor{System: "linux", CPUFamily: "x86_64", Endian: "little"},
		Target: machine.Descriptor{System: "linux", CPUFamily: "x86_64", Endian: "little"},
	}
	diagReporter := diag.NewReporter(os.Stderr)
	sandboxPolicy := sandbox.Policy{SourceRoot: sourceRoot, SubprojectDir: "subprojects"}

	b := build.New(machines)
	driver := project.NewDriver(demo.Loader{}, demo.Resolver{}, sourceRoot)
	depOrch := dependency.New(b, demo.Provider{}, driver, func(msg string) { diagReporter.Warn("", msg, ast.Pos{}) })
	configReg := configure.NewRegistry(func(msg string) { diagReporter.Warn("", msg, ast.Pos{}) }, demo.Runner{})
	modules := modloader.NewDefaultLoader(sourceRoot, buildRoot)
	funcs := builtinfuncs.New(driver, depOrch, configReg, modules, demo.FileReader{}, sourceRoot, buildRoot)

	ev := interp.NewRootWithBuild(b, machines, diagReporter, funcs, sandboxPolicy)
	block, err := demo.Loader{}.LoadProjectRoot(sourceRoot)
	if err != nil {
		return nil, err
	}
	if err := ev.Run(block); err != nil {
		diagReporter.Error(err)
		return ev, err
	}
	diagReporter.Success("build description evaluated")
	diagReporter.Summary()

	ev.BuildDefFiles = append(ev.BuildDefFiles, "meson.build", "lib/meson.build")
	if err := os.MkdirAll(buildRoot, 0o755); err == nil {
		m := manifest.FromBuild(ev.Build, ev.BuildDefFiles)
		if err := manifest.WriteFile(buildRoot+"/bsi-manifest.yaml", m); err != nil {
			diagReporter.Warn("", "writing manifest: "+err.Error(), ast.Pos{})
		}
	}
	return ev, nil
}

func main() {
	ev, err := run()
	if err != nil && ev == nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", color.RedString("fatal"), err)
		os.Exit(1)
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCompleter(func(s string) (c []string) {
		for _, cmd := range []string{":targets", ":tests", ":deps", ":manifest", ":options", ":help", ":quit"} {
			if strings.HasPrefix(cmd, s) {
				c = append(c, cmd)
			}
		}
		return
	})

	fmt.Println(bold("buildconsole"), dim("— read-only introspection over the demo Build accumulator"))
	fmt.Println(dim("Type :help for commands, :quit to exit"))

	for {
		input, err := line.Prompt("bsi> ")
		if err != nil {
			break
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)
		switch input {
		case ":quit", ":q":
			return
		case ":help":
			printHelp()
		case ":targets":
			printTargets(ev)
		case ":tests":
			printTests(ev)
		case ":deps":
			printDeps(ev)
		case ":manifest":
			printManifest(ev)
		case ":options":
			printOptions(ev)
		default:
			fmt.Printf("unknown command %q; try :help\n", input)
		}
	}
}

func printHelp() {
	fmt.Println(`commands:
  :targets   list declared targets
  :tests     list declared tests/benchmarks
  :deps      show registered dependency overrides
  :manifest  print the per-project dep_manifest
  :options   show the demo fixture's declared option values
  :quit      exit`)
}

func printTargets(ev *interp.Evaluator) {
	ids := make([]string, 0, len(ev.Build.Targets))
	for id := range ev.Build.Targets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		t := ev.Build.Targets[id]
		fmt.Printf("  %s %s (%s)%s\n", cyan(t.Kind), t.Name, id, installSuffix(t))
	}
}

func installSuffix(t *build.Target) string {
	if !t.Installed {
		return ""
	}
	return fmt.Sprintf(" %s", dim("[install"+withDir(t.InstallDir)+"]"))
}

func withDir(dir string) string {
	if dir == "" {
		return ""
	}
	return ": " + dir
}

func printTests(ev *interp.Evaluator) {
	for _, tc := range ev.Build.Tests {
		fmt.Printf("  test %s -> %s\n", tc.Name, tc.Target.Name)
	}
	for _, tc := range ev.Build.Benchmarks {
		fmt.Printf("  benchmark %s -> %s\n", tc.Name, tc.Target.Name)
	}
}

func printDeps(ev *interp.Evaluator) {
	for role, byID := range ev.Build.DependencyOverrides {
		for id, o := range byID {
			status := "found"
			if !o.Found {
				status = "not found"
			}
			fmt.Printf("  [%s] %s: %s (%s)\n", role, id, status, o.Version)
		}
	}
}

func printManifest(ev *interp.Evaluator) {
	names := make([]string, 0, len(ev.Build.DepManifest))
	for name := range ev.Build.DepManifest {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		e := ev.Build.DepManifest[name]
		fmt.Printf("  %s %s (%s)\n", name, e.Version, e.License)
	}
}

func printOptions(ev *interp.Evaluator) {
	for _, name := range []string{"enable_tests", "default_library"} {
		opt, err := ev.Options.Get("", name, ast.Pos{})
		if err != nil {
			fmt.Printf("  %s: %v\n", name, err)
			continue
		}
		fmt.Printf("  %s = %s\n", name, opt.ResolvedValue())
	}
}
