// Package demo supplies the external collaborators spec §1 puts out of
// scope (a parser, a subproject fetcher, a system dependency search, a
// subprocess runner, a file reader) with small, self-contained stand-ins,
// so cmd/buildconsole has a real Build accumulator to introspect without
// this port growing its own parser/lexer or toolchain integration.
//
// The "source tree" here is a hand-built AST rather than text on disk,
// since turning .build text into this shape is exactly the out-of-scope
// parser's job (spec §1).
package demo

import (
	"fmt"
	"strings"

	"github.com/buildgraph/bsi/internal/ast"
	"github.com/buildgraph/bsi/internal/dependency"
	"github.com/buildgraph/bsi/internal/machine"
	"github.com/buildgraph/bsi/internal/optionstore"
	"github.com/buildgraph/bsi/internal/value"
)

func pos(line int) ast.Pos { return ast.Pos{File: "meson.build", Line: line} }

func str(s string) *ast.StringNode  { return &ast.StringNode{Value: s} }
func id(name string) *ast.IdNode    { return &ast.IdNode{Name: name} }
func posArg(v ast.Expr) *ast.ArgumentNode { return &ast.ArgumentNode{Value: v} }
func kwArg(name string, v ast.Expr) *ast.ArgumentNode {
	return &ast.ArgumentNode{Name: name, Value: v}
}
func call(name string, line int, args ...*ast.ArgumentNode) *ast.FunctionCallNode {
	return &ast.FunctionCallNode{Name: name, Args: args, Pos: pos(line)}
}
func method(recv ast.Expr, name string, line int, args ...*ast.ArgumentNode) *ast.MethodCallNode {
	return &ast.MethodCallNode{Receiver: recv, Method: name, Args: args, Pos: pos(line)}
}
func exprStmt(e ast.Expr, line int) *ast.ExprStmt { return &ast.ExprStmt{Expr: e, Pos: pos(line)} }
func assign(name string, v ast.Expr, line int) *ast.AssignmentNode {
	return &ast.AssignmentNode{Name: name, Value: v, Pos: pos(line)}
}

// rootBlock is the demo's top-level project: a small C-flavored build
// description exercising project(), get_option(), dependency(), a
// subproject, a target, a test, install_data, subdir, and configure_file.
func rootBlock() *ast.CodeBlock {
	return &ast.CodeBlock{Pos: pos(1), Statements: []ast.Stmt{
		exprStmt(call("project", 1,
			posArg(str("demo")), posArg(str("c")),
			kwArg("version", str("1.2.0")),
			kwArg("license", str("MIT")),
			kwArg("default_options", &ast.ArrayNode{Elements: []ast.Expr{str("default_library=static")}}),
		), 1),
		assign("enable_tests", call("get_option", 2, posArg(str("enable_tests"))), 2),
		assign("zlib_dep", call("dependency", 3,
			posArg(str("zlib")),
			kwArg("version", &ast.ArrayNode{Elements: []ast.Expr{str(">=1.2.0")}}),
			kwArg("required", &ast.BooleanNode{Value: false}),
		), 3),
		assign("greeter_sub", call("subproject", 4, posArg(str("greeter"))), 4),
		assign("exe", call("executable", 5,
			posArg(str("democli")), posArg(str("main.c")),
			kwArg("dependencies", &ast.ArrayNode{Elements: []ast.Expr{id("zlib_dep")}}),
			kwArg("install", &ast.BooleanNode{Value: true}),
		), 5),
		&ast.IfNode{Pos: pos(6), Branches: []ast.IfBranch{
			{Cond: method(id("enable_tests"), "enabled", 6), Body: []ast.Stmt{
				exprStmt(call("test", 7, posArg(str("smoke")), posArg(id("exe"))), 7),
			}},
		}},
		exprStmt(call("install_data", 8,
			posArg(str("README.md")),
			kwArg("install_dir", str("share/doc")),
		), 8),
		exprStmt(call("subdir", 9, posArg(str("lib"))), 9),
		assign("cfg", call("configuration_data", 10), 10),
		exprStmt(method(id("cfg"), "set", 11, posArg(str("VERSION")), posArg(str("1.2.0"))), 11),
		assign("header", call("configure_file", 12,
			kwArg("input", str("config.h.in")),
			kwArg("output", str("config.h")),
			kwArg("configuration", id("cfg")),
		), 12),
		exprStmt(call("summary", 13,
			posArg(str("zlib found")), posArg(method(id("zlib_dep"), "found", 13)),
		), 13),
	}}
}

// libBlock is the "lib" subdir pulled in by subdir('lib').
func libBlock() *ast.CodeBlock {
	return &ast.CodeBlock{Pos: pos(1), Statements: []ast.Stmt{
		exprStmt(call("static_library", 1, posArg(str("foo")), posArg(str("foo.c"))), 1),
	}}
}

// greeterBlock is the "greeter" fallback subproject's own tiny project.
func greeterBlock() *ast.CodeBlock {
	return &ast.CodeBlock{Pos: pos(1), Statements: []ast.Stmt{
		exprStmt(call("project", 1, posArg(str("greeter")), kwArg("version", str("0.1.0"))), 1),
		assign("greeting", str("hello"), 2),
	}}
}

// Loader implements project.SourceLoader over the in-memory fixture above.
type Loader struct{}

func (Loader) LoadProjectRoot(sourceDir string) (*ast.CodeBlock, error) {
	switch sourceDir {
	case "", ".":
		return rootBlock(), nil
	case "subprojects/greeter":
		return greeterBlock(), nil
	}
	return nil, fmt.Errorf("demo: no fixture project root at %q", sourceDir)
}

func (Loader) LoadSubdir(sourceRoot, subdir string) (*ast.CodeBlock, error) {
	if subdir == "lib" {
		return libBlock(), nil
	}
	return nil, fmt.Errorf("demo: no fixture subdir %q", subdir)
}

func (Loader) LoadOptionsFile(sourceDir string) (map[string]*optionstore.Option, error) {
	if sourceDir != "" && sourceDir != "." {
		return nil, nil
	}
	return map[string]*optionstore.Option{
		"enable_tests": {
			Kind:        optionstore.KindFeature,
			Description: "Build and run the smoke test",
			Default:     &optionstore.FeatureRef{Name: "enable_tests", State: optionstore.Auto},
			Value:       &optionstore.FeatureRef{Name: "enable_tests", State: optionstore.Enabled},
		},
		"default_library": {
			Kind:        optionstore.KindCombo,
			Description: "Default library type",
			Choices:     []string{"shared", "static", "both"},
			Default:     value.NewStr("shared"),
			Value:       value.NewStr("static"),
		},
	}, nil
}

// Resolver implements project.Resolver, resolving the one "greeter"
// fallback subproject this fixture knows about.
type Resolver struct{}

func (Resolver) Resolve(name, method, callerSubproject string) (string, error) {
	if name == "greeter" {
		return "subprojects/greeter", nil
	}
	return "", fmt.Errorf("demo: no fixture subproject %q", name)
}

// Provider implements dependency.Provider as a tiny fake system search:
// "zlib" is always found, anything else is not.
type Provider struct{}

func (Provider) Find(name string, role machine.Role, kwargs dependency.Kwargs) (*dependency.Dependency, error) {
	if name == "zlib" {
		return &dependency.Dependency{
			Name: name, Found: true, Version: "1.3.1",
			CompileArgs: []string{"-I/usr/include"},
			LinkArgs:    []string{"-lz"},
			Variables:   map[string]string{"prefix": "/usr"},
		}, nil
	}
	return dependency.NotFound(name), nil
}

// Runner implements configure.Runner. No command-mode configure_file call
// is in the fixture, so this only needs to exist to satisfy the
// constructor; it's a real (if trivial) collaborator, not a stub that's
// never reachable from DSL code.
type Runner struct{}

func (Runner) Run(args []string, cwd string) (string, int, error) {
	return strings.Join(args, " ") + "\n", 0, nil
}

// FileReader implements builtinfuncs.FileReader over the fixture's one
// configure_file input template.
type FileReader struct{}

func (FileReader) ReadFile(path string) (string, error) {
	if strings.HasSuffix(path, "config.h.in") {
		return "#define DEMO_VERSION \"@VERSION@\"\n", nil
	}
	return "", fmt.Errorf("demo: no fixture file at %q", path)
}
