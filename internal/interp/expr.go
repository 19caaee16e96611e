package interp

import (
	"fmt"

	"github.com/buildgraph/bsi/internal/ast"
	"github.com/buildgraph/bsi/internal/ierrors"
	"github.com/buildgraph/bsi/internal/object"
	"github.com/buildgraph/bsi/internal/value"
)

// EvalExpr evaluates a single expression node (spec §4.3).
func (ev *Evaluator) EvalExpr(e ast.Expr) (value.Value, error) {
	switch n := e.(type) {
	case *ast.IdNode:
		v, ok := ev.Env.Get(n.Name)
		if !ok {
			return nil, ierrors.InterpreterException("RUN105", fmt.Sprintf("undefined variable %q", n.Name))
		}
		return v, nil

	case *ast.StringNode:
		return value.NewStr(n.Value), nil

	case *ast.NumberNode:
		return value.Int(n.Value), nil

	case *ast.BooleanNode:
		return value.Bool(n.Value), nil

	case *ast.ArrayNode:
		elems := make([]value.Value, 0, len(n.Elements))
		for _, el := range n.Elements {
			v, err := ev.EvalExpr(el)
			if err != nil {
				return nil, err
			}
			elems = append(elems, v)
		}
		return &value.List{Elements: elems}, nil

	case *ast.DictNode:
		d := value.NewDict()
		for _, entry := range n.Entries {
			kv, err := ev.EvalExpr(entry.Key)
			if err != nil {
				return nil, err
			}
			key, ok := kv.(value.Str)
			if !ok {
				return nil, ierrors.InvalidArguments("ARG106", "dict keys must be strings")
			}
			vv, err := ev.EvalExpr(entry.Value)
			if err != nil {
				return nil, err
			}
			d.Set(string(key), vv)
		}
		return d, nil

	case *ast.ArithmeticNode:
		return ev.evalArithmetic(n)

	case *ast.NotNode:
		v, err := ev.EvalExpr(n.Operand)
		if err != nil {
			return nil, err
		}
		return value.Not(v), nil

	case *ast.UMinusNode:
		v, err := ev.EvalExpr(n.Operand)
		if err != nil {
			return nil, err
		}
		if value.IsDisabler(v) {
			return v, nil
		}
		iv, ok := v.(value.Int)
		if !ok {
			return nil, ierrors.InvalidArguments("ARG102", "unary minus requires an int operand")
		}
		return -iv, nil

	case *ast.TernaryNode:
		cond, err := ev.EvalExpr(n.Cond)
		if err != nil {
			return nil, err
		}
		if value.IsDisabler(cond) {
			return cond, nil
		}
		if cond.Truthy() {
			return ev.EvalExpr(n.Then)
		}
		return ev.EvalExpr(n.Else)

	case *ast.IndexNode:
		recv, err := ev.EvalExpr(n.Receiver)
		if err != nil {
			return nil, err
		}
		idx, err := ev.EvalExpr(n.Index)
		if err != nil {
			return nil, err
		}
		return value.Index(recv, idx)

	case *ast.MethodCallNode:
		return ev.evalMethodCall(n)

	case *ast.FunctionCallNode:
		return ev.evalFunctionCall(n)

	default:
		return nil, ierrors.InvalidCode("COD101", fmt.Sprintf("unsupported expression node %T", e))
	}
}

func (ev *Evaluator) evalArithmetic(n *ast.ArithmeticNode) (value.Value, error) {
	// 'and'/'or' short-circuit (spec §4.1) and must not evaluate the
	// right operand when the left already decides the result.
	switch n.Op {
	case "and":
		l, err := ev.EvalExpr(n.Left)
		if err != nil {
			return nil, err
		}
		if value.IsDisabler(l) {
			return l, nil
		}
		if !l.Truthy() {
			return value.Bool(false), nil
		}
		r, err := ev.EvalExpr(n.Right)
		if err != nil {
			return nil, err
		}
		if value.IsDisabler(r) {
			return r, nil
		}
		return value.Bool(r.Truthy()), nil
	case "or":
		l, err := ev.EvalExpr(n.Left)
		if err != nil {
			return nil, err
		}
		if value.IsDisabler(l) {
			return l, nil
		}
		if l.Truthy() {
			return value.Bool(true), nil
		}
		r, err := ev.EvalExpr(n.Right)
		if err != nil {
			return nil, err
		}
		if value.IsDisabler(r) {
			return r, nil
		}
		return value.Bool(r.Truthy()), nil
	}

	l, err := ev.EvalExpr(n.Left)
	if err != nil {
		return nil, err
	}
	r, err := ev.EvalExpr(n.Right)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case "+":
		return value.Add(l, r)
	case "-":
		return value.Sub(l, r)
	case "*":
		return value.Mul(l, r)
	case "/":
		return value.Div(l, r)
	case "%":
		return value.Mod(l, r)
	case "==":
		return value.Eq(l, r)
	case "!=":
		return value.Neq(l, r)
	case "<", "<=", ">", ">=":
		return value.Compare(n.Op, l, r)
	case "in":
		return value.In(l, r)
	case "not in":
		res, err := value.In(l, r)
		if err != nil {
			return nil, err
		}
		return value.Not(res), nil
	default:
		return nil, ierrors.InvalidArguments("ARG101", "unknown operator "+n.Op)
	}
}

// evalMethodCall evaluates `recv.method(args)` per spec §4.2's dispatch
// pipeline.
func (ev *Evaluator) evalMethodCall(n *ast.MethodCallNode) (value.Value, error) {
	recv, err := ev.EvalExpr(n.Receiver)
	if err != nil {
		return nil, err
	}
	// Disabler absorption: a method call on a Disabler returns a
	// Disabler (spec §3, testable property 2).
	if value.IsDisabler(recv) {
		return recv, nil
	}
	handle, ok := recv.(*object.Handle)
	if !ok {
		return nil, ierrors.InvalidArguments("ARG108", fmt.Sprintf("%s has no methods", recv.Kind()))
	}

	args, kwargs, err := ev.evalArguments(n.Args)
	if err != nil {
		return nil, err
	}
	// Argument preprocessing (spec §4.2 step 2): evalArguments has already
	// flattened list-valued positional args one level, for every method
	// alike; the privacy check (step 3) happens in Handle.Method.
	method, err := handle.Method(n.Method)
	if err != nil {
		return nil, ierrors.InvalidArguments("ARG110", err.Error())
	}
	result, err := method(handle, args, kwargs)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// evalFunctionCall evaluates `name(args)` by dispatching into the
// built-in function registry (spec §4.4). The DSL has no user-defined
// functions — every FunctionCallNode is a built-in.
func (ev *Evaluator) evalFunctionCall(n *ast.FunctionCallNode) (value.Value, error) {
	args, kwargs, err := ev.evalArguments(n.Args)
	if err != nil {
		return nil, err
	}
	if ev.Funcs == nil {
		return nil, ierrors.InterpreterException("RUN105", fmt.Sprintf("unknown function %q", n.Name))
	}
	return ev.Funcs.Call(ev, n.Name, n.Pos, args, kwargs)
}

// evalArguments splits and evaluates an argument list into positional
// values and a keyword dict, evaluating strictly left to right (spec §5:
// "every kwarg is evaluated left-to-right"), and flattening one level of
// any list value (literal or variable) in positional position (spec §4.2
// step 2: "flatten nested lists").
func (ev *Evaluator) evalArguments(nodes []*ast.ArgumentNode) ([]value.Value, *value.Dict, error) {
	var positional []value.Value
	kwargs := value.NewDict()
	for _, a := range nodes {
		v, err := ev.EvalExpr(a.Value)
		if err != nil {
			return nil, nil, err
		}
		if a.Name != "" {
			kwargs.Set(a.Name, v)
			continue
		}
		if list, ok := v.(*value.List); ok {
			positional = append(positional, list.Elements...)
		} else {
			positional = append(positional, v)
		}
	}
	return positional, kwargs, nil
}
