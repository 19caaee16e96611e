// Package interp implements the tree-walking AST evaluator of spec §4.3:
// statement/expression evaluation, variable scope, control flow, method
// dispatch, and argument coercion, over a previously-parsed AST (the
// parser itself is an external collaborator, spec §1).
package interp

import (
	"fmt"

	"github.com/buildgraph/bsi/internal/ast"
	"github.com/buildgraph/bsi/internal/build"
	"github.com/buildgraph/bsi/internal/diag"
	"github.com/buildgraph/bsi/internal/featuregate"
	"github.com/buildgraph/bsi/internal/ierrors"
	"github.com/buildgraph/bsi/internal/machine"
	"github.com/buildgraph/bsi/internal/optionstore"
	"github.com/buildgraph/bsi/internal/sandbox"
	"github.com/buildgraph/bsi/internal/value"
)

// Registry is the set of built-in functions a FunctionCallNode dispatches
// into (spec §4.4). Defined as an interface here to avoid an import cycle
// with package builtinfuncs, which itself depends on *Evaluator's public
// surface.
type Registry interface {
	Call(ev *Evaluator, name string, pos ast.Pos, args []value.Value, kwargs *value.Dict) (value.Value, error)
}

// Evaluator walks one (sub)project's AST. A fresh Evaluator is spawned
// per subproject (spec §2), sharing the Build accumulator, Gate, Options,
// Diag, and Registry with its parent, but owning its own Environment,
// current-subdir stack, and subproject name.
type Evaluator struct {
	Env     *Environment
	Build   *build.Build
	Gate    *featuregate.Gate
	Options *optionstore.Store
	Diag    *diag.Reporter
	Sandbox sandbox.Policy
	Machine machine.Set
	Funcs   Registry

	// Subproject is this evaluator's subproject name ("" for the root
	// project).
	Subproject string
	// SubprojectStack is the chain of subproject names from root to this
	// evaluator (spec §4.6 step 4: "own subproject stack = parent stack
	// + [name]").
	SubprojectStack []string

	// subdirStack is the current subdir path chain, for diagnostics and
	// for rejecting re-entry (spec §4.6 subdir() guard 1).
	subdirStack []string
	visitedDirs map[string]bool

	// ProjectDeclared guards against a second project() call per
	// subproject (spec §4.6 step 1, invariant, testable property).
	ProjectDeclared bool

	// ProjectName/ProjectVersion are recorded by project() for
	// introspection and for the iface-like accessors consumed by
	// modules (spec §4.11 ModuleState).
	ProjectName    string
	ProjectVersion string

	// BuildDefFiles accumulates the reconfigure-trigger file list (§6).
	BuildDefFiles []string
}

// NewRoot constructs the top-level evaluator bound to a fresh Build
// accumulator, per spec §2's "single entry point constructs a top-level
// evaluator bound to an empty build accumulator".
func NewRoot(machines machine.Set, diagReporter *diag.Reporter, funcs Registry, sandboxPolicy sandbox.Policy) *Evaluator {
	return NewRootWithBuild(build.New(machines), machines, diagReporter, funcs, sandboxPolicy)
}

// NewRootWithBuild is NewRoot over a caller-supplied Build accumulator,
// for callers that must hand the same accumulator to other run-wide
// collaborators (e.g. the dependency orchestrator) before the evaluator
// exists.
func NewRootWithBuild(b *build.Build, machines machine.Set, diagReporter *diag.Reporter, funcs Registry, sandboxPolicy sandbox.Policy) *Evaluator {
	ev := &Evaluator{
		Env:         NewEnvironment(),
		Build:       b,
		Diag:        diagReporter,
		Sandbox:     sandboxPolicy,
		Machine:     machines,
		Funcs:       funcs,
		visitedDirs: make(map[string]bool),
	}
	ev.Gate = featuregate.NewGate(diagReporter)
	ev.Options = optionstore.NewStore(diagReporter)
	return ev
}

// NewChildSubproject constructs a fresh Evaluator for a subproject,
// sharing every run-wide collaborator with the parent but owning its own
// Environment and subdir/subproject bookkeeping (spec §4.6 step 4).
func (ev *Evaluator) NewChildSubproject(name string) *Evaluator {
	child := &Evaluator{
		Env:             NewEnvironment(),
		Build:           ev.Build,
		Gate:            ev.Gate,
		Options:         ev.Options,
		Diag:            ev.Diag,
		Sandbox:         ev.Sandbox,
		Machine:         ev.Machine,
		Funcs:           ev.Funcs,
		Subproject:      name,
		SubprojectStack: append(append([]string{}, ev.SubprojectStack...), name),
		visitedDirs:     make(map[string]bool),
	}
	return child
}

// CurrentSubdir returns the subdir path currently being evaluated, or ""
// at the project root.
func (ev *Evaluator) CurrentSubdir() string {
	if len(ev.subdirStack) == 0 {
		return ""
	}
	return ev.subdirStack[len(ev.subdirStack)-1]
}

// PushSubdir enters a subdir, rejecting re-entry per spec §4.6 subdir()
// guard 1. Escape and subproject-directory checks are done by the caller
// (project.Driver.Subdir), not here.
func (ev *Evaluator) PushSubdir(path string, pos ast.Pos) error {
	if ev.visitedDirs[path] {
		return ierrors.InvalidCode("COD103", fmt.Sprintf("subdir %q already evaluated in this project", path))
	}
	ev.visitedDirs[path] = true
	ev.subdirStack = append(ev.subdirStack, path)
	return nil
}

// PopSubdir leaves the current subdir.
func (ev *Evaluator) PopSubdir() {
	if len(ev.subdirStack) > 0 {
		ev.subdirStack = ev.subdirStack[:len(ev.subdirStack)-1]
	}
}

// Run evaluates the root AST of this evaluator (spec §2: "invokes run()
// which walks the root AST").
func (ev *Evaluator) Run(block *ast.CodeBlock) error {
	_, err := ev.EvalBlock(block.Statements)
	if err != nil {
		if rep, ok := ierrors.AsReport(err); ok {
			rep.WithFrame(ev.Subproject, ev.CurrentSubdir())
		}
	}
	return err
}

// EvalBlock evaluates a statement list in order, short-circuiting on the
// first non-Normal outcome or error (spec §5: "every statement is
// executed in source order").
func (ev *Evaluator) EvalBlock(stmts []ast.Stmt) (Outcome, error) {
	for _, s := range stmts {
		outcome, err := ev.EvalStmt(s)
		if err != nil {
			return OutcomeNormal, err
		}
		if outcome != OutcomeNormal {
			return outcome, nil
		}
	}
	return OutcomeNormal, nil
}

// EvalStmt evaluates a single statement.
func (ev *Evaluator) EvalStmt(s ast.Stmt) (Outcome, error) {
	switch n := s.(type) {
	case *ast.AssignmentNode:
		v, err := ev.EvalExpr(n.Value)
		if err != nil {
			return OutcomeNormal, err
		}
		ev.Env.Set(n.Name, v)
		return OutcomeNormal, nil

	case *ast.PlusAssignmentNode:
		cur, ok := ev.Env.Get(n.Name)
		if !ok {
			return OutcomeNormal, ierrors.InterpreterException("RUN105", fmt.Sprintf("undefined variable %q", n.Name))
		}
		rhs, err := ev.EvalExpr(n.Value)
		if err != nil {
			return OutcomeNormal, err
		}
		sum, err := value.Add(cur, rhs)
		if err != nil {
			return OutcomeNormal, err
		}
		ev.Env.Set(n.Name, sum)
		return OutcomeNormal, nil

	case *ast.ExprStmt:
		_, err := ev.EvalExpr(n.Expr)
		if IsSubdirDone(err) {
			return OutcomeSubdirDone, nil
		}
		return OutcomeNormal, err

	case *ast.IfNode:
		return ev.evalIf(n)

	case *ast.ForeachNode:
		return ev.evalForeach(n)

	case *ast.BreakNode:
		return OutcomeBreak, nil

	case *ast.ContinueNode:
		return OutcomeContinue, nil

	default:
		return OutcomeNormal, ierrors.InvalidCode("COD101", fmt.Sprintf("unsupported statement node %T", s))
	}
}

func (ev *Evaluator) evalIf(n *ast.IfNode) (Outcome, error) {
	for _, branch := range n.Branches {
		cond, err := ev.EvalExpr(branch.Cond)
		if err != nil {
			return OutcomeNormal, err
		}
		if value.IsDisabler(cond) {
			// Disabler absorption: a Disabler condition is falsy and
			// does not raise (spec §4.1, testable property 2).
			continue
		}
		if cond.Truthy() {
			return ev.EvalBlock(branch.Body)
		}
	}
	if n.Else != nil {
		return ev.EvalBlock(n.Else)
	}
	return OutcomeNormal, nil
}

func (ev *Evaluator) evalForeach(n *ast.ForeachNode) (Outcome, error) {
	iterable, err := ev.EvalExpr(n.Iterable)
	if err != nil {
		return OutcomeNormal, err
	}
	if value.IsDisabler(iterable) {
		return OutcomeNormal, nil
	}
	switch coll := iterable.(type) {
	case *value.List:
		for _, elem := range coll.Elements {
			ev.Env.Set(n.ValueVar, elem)
			outcome, err := ev.EvalBlock(n.Body)
			if err != nil {
				return OutcomeNormal, err
			}
			if outcome == OutcomeBreak {
				break
			}
			if outcome == OutcomeSubdirDone {
				return outcome, nil
			}
			// OutcomeContinue and OutcomeNormal both fall through to
			// the next iteration.
		}
		return OutcomeNormal, nil
	case *value.Dict:
		if n.KeyVar == "" {
			return OutcomeNormal, ierrors.InvalidArguments("ARG107", "foreach over a dict requires two loop variables")
		}
		for _, k := range coll.Keys() {
			v, _ := coll.Get(k)
			ev.Env.Set(n.KeyVar, value.NewStr(k))
			ev.Env.Set(n.ValueVar, v)
			outcome, err := ev.EvalBlock(n.Body)
			if err != nil {
				return OutcomeNormal, err
			}
			if outcome == OutcomeBreak {
				break
			}
			if outcome == OutcomeSubdirDone {
				return outcome, nil
			}
		}
		return OutcomeNormal, nil
	default:
		return OutcomeNormal, ierrors.InvalidArguments("ARG107", fmt.Sprintf("foreach requires a list or dict, got %s", iterable.Kind()))
	}
}
