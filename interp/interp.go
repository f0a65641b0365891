// Package interp is a tree-walking interpreter over the RuneScript AST. It
// exists to check the compiler's recursion-elimination rewrites: run the
// original recursive AST here, run the rewritten iterative bytecode on the
// VM, and assert the two agree.
package interp

import (
	"fmt"
	"math"

	"rsc/ast"
)

// returnSignal unwinds the Go call stack back to RunTrigger the same way
// the teacher's interpreter unwinds on a panic, recovered at a known
// boundary rather than threaded through every Visit method's return value.
type returnSignal struct {
	value int32
}

// TreeWalkInterpreter evaluates a registry of triggers directly against
// their AST, without compiling to bytecode.
type TreeWalkInterpreter struct {
	triggers    map[string]ast.Trigger
	environment *Environment
	scriptName  string
}

func Make() *TreeWalkInterpreter {
	return &TreeWalkInterpreter{triggers: make(map[string]ast.Trigger)}
}

func (i *TreeWalkInterpreter) Register(trigger ast.Trigger) {
	i.triggers[trigger.Name] = trigger
}

func (i *TreeWalkInterpreter) RegisterScript(script *ast.Script) {
	for _, trigger := range script.Triggers {
		i.Register(trigger)
	}
}

// RunTrigger evaluates the named trigger with the given arguments, bound
// positionally to its declared parameters.
func (i *TreeWalkInterpreter) RunTrigger(name string, args []int32) (result int32, err error) {
	trigger, ok := i.triggers[name]
	if !ok {
		return 0, CreateRuntimeError(name, "no registered script with this name")
	}
	if len(args) != len(trigger.Params) {
		return 0, CreateRuntimeError(name, "argument count mismatch")
	}

	previousEnv := i.environment
	previousScript := i.scriptName
	i.environment = MakeEnvironment()
	i.scriptName = name
	defer func() {
		i.environment = previousEnv
		i.scriptName = previousScript
		if r := recover(); r != nil {
			if sig, ok := r.(returnSignal); ok {
				result = sig.value
				err = nil
				return
			}
			if rerr, ok := r.(RuntimeError); ok {
				err = rerr
				return
			}
			panic(r)
		}
	}()

	for idx, param := range trigger.Params {
		i.environment.set(param.Name, args[idx])
	}
	trigger.Body.Accept(i)
	return 0, nil
}

func (i *TreeWalkInterpreter) evalInt(expr ast.Expression) int32 {
	return expr.Accept(i).(int32)
}

// --- ast.ExpressionVisitor ---

func (i *TreeWalkInterpreter) VisitNumericLiteral(n ast.NumericLiteral) any {
	return n.Value
}

func (i *TreeWalkInterpreter) VisitStringLiteral(s ast.StringLiteral) any {
	panic(CreateRuntimeError(i.scriptName, "string values are not evaluable in the int-only interpreter core"))
}

func (i *TreeWalkInterpreter) VisitIdentifier(id ast.Identifier) any {
	panic(CreateRuntimeError(i.scriptName, fmt.Sprintf("unexpected bare identifier %q", id.Name)))
}

func (i *TreeWalkInterpreter) VisitLocalVar(lv ast.LocalVar) any {
	val, ok := i.environment.get(lv.Name)
	if !ok {
		panic(CreateRuntimeError(i.scriptName, fmt.Sprintf("undefined local $%s", lv.Name)))
	}
	return val
}

func (i *TreeWalkInterpreter) VisitBinaryExpression(b ast.BinaryExpression) any {
	a := i.evalInt(b.Left)
	bv := i.evalInt(b.Right)
	switch b.Op {
	case "+":
		return checkedAdd(a, bv, i.scriptName)
	case "-":
		return checkedSub(a, bv, i.scriptName)
	case "*":
		return checkedMul(a, bv, i.scriptName)
	case "/":
		return checkedDiv(a, bv, i.scriptName)
	case "=":
		return boolInt(a == bv)
	case "<":
		return boolInt(a < bv)
	case "<=":
		return boolInt(a <= bv)
	case ">":
		return boolInt(a > bv)
	case ">=":
		return boolInt(a >= bv)
	default:
		panic(CreateRuntimeError(i.scriptName, fmt.Sprintf("unknown operator %q", b.Op)))
	}
}

func (i *TreeWalkInterpreter) VisitFunctionCall(f ast.FunctionCall) any {
	if f.Name == "calc" {
		if len(f.Args) != 1 {
			panic(CreateRuntimeError(i.scriptName, "calc(...) takes exactly one expression"))
		}
		return i.evalInt(f.Args[0])
	}
	panic(CreateRuntimeError(i.scriptName, fmt.Sprintf("unknown command %q", f.Name)))
}

func (i *TreeWalkInterpreter) VisitScriptCall(s ast.ScriptCall) any {
	args := make([]int32, len(s.Args))
	for idx, arg := range s.Args {
		args[idx] = i.evalInt(arg)
	}
	result, err := i.RunTrigger(s.Target, args)
	if err != nil {
		panic(err)
	}
	return result
}

// --- ast.StmtVisitor ---

func (i *TreeWalkInterpreter) VisitDefine(d ast.Define) any {
	i.environment.set(d.Name, i.evalInt(d.Value))
	return nil
}

func (i *TreeWalkInterpreter) VisitAssignment(a ast.Assignment) any {
	i.environment.set(a.Target, i.evalInt(a.Value))
	return nil
}

func (i *TreeWalkInterpreter) VisitIf(ifStmt ast.If) any {
	if i.evalInt(ifStmt.Cond) != 0 {
		if ifStmt.ThenReturn != nil {
			ifStmt.ThenReturn.Accept(i)
		}
		return nil
	}
	ifStmt.ElseBody.Accept(i)
	return nil
}

func (i *TreeWalkInterpreter) VisitWhile(w ast.While) any {
	for i.evalInt(w.Cond) != 0 {
		w.Body.Accept(i)
	}
	return nil
}

func (i *TreeWalkInterpreter) VisitReturn(r ast.Return) any {
	panic(returnSignal{value: i.evalInt(r.Expr)})
}

func (i *TreeWalkInterpreter) VisitBlock(b ast.Block) any {
	for _, stmt := range b.Statements {
		stmt.Accept(i)
	}
	return nil
}

func (i *TreeWalkInterpreter) VisitExpressionStmt(e ast.ExpressionStmt) any {
	i.evalInt(e.Expr)
	return nil
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

func checkedAdd(a, b int32, scriptName string) int32 {
	sum := int64(a) + int64(b)
	if sum > math.MaxInt32 || sum < math.MinInt32 {
		panic(CreateRuntimeError(scriptName, "integer overflow"))
	}
	return int32(sum)
}

func checkedSub(a, b int32, scriptName string) int32 {
	diff := int64(a) - int64(b)
	if diff > math.MaxInt32 || diff < math.MinInt32 {
		panic(CreateRuntimeError(scriptName, "integer overflow"))
	}
	return int32(diff)
}

func checkedMul(a, b int32, scriptName string) int32 {
	prod := int64(a) * int64(b)
	if prod > math.MaxInt32 || prod < math.MinInt32 {
		panic(CreateRuntimeError(scriptName, "integer overflow"))
	}
	return int32(prod)
}

func checkedDiv(a, b int32, scriptName string) int32 {
	if b == 0 {
		panic(CreateRuntimeError(scriptName, "division by zero"))
	}
	if a == math.MinInt32 && b == -1 {
		panic(CreateRuntimeError(scriptName, "integer overflow"))
	}
	return a / b
}
