package compiler

import "rsc/ast"

// TryEliminateRecursion inspects a trigger for one of three recognized
// recursive shapes (tail recursion with an accumulator, single self-call
// combined arithmetically, or a Fibonacci-style double self-call) and, when
// the shape matches exactly, returns an equivalent iterative rewrite. When
// nothing matches it returns the trigger unchanged with eliminated=false;
// the VM still executes the original recursive form correctly via Gosub, so
// a missed rewrite is a missed optimization, never a correctness problem.
func TryEliminateRecursion(trigger ast.Trigger) (ast.Trigger, bool) {
	ifStmt, trailingReturn, ok := extractShape(trigger.Body)
	if !ok {
		return trigger, false
	}
	selfName := trigger.Name

	if isTailSelfCall(trailingReturn.(ast.Return).Expr, selfName) {
		if rewritten, ok := rewriteTailRecursion(trigger, ifStmt, trailingReturn.(ast.Return)); ok {
			return rewritten, true
		}
		return trigger, false
	}

	switch countSelfCalls(trailingReturn.(ast.Return).Expr, selfName) {
	case 1:
		if rewritten, ok := rewriteSingleRecursion(trigger, ifStmt, trailingReturn.(ast.Return), selfName); ok {
			return rewritten, true
		}
	case 2:
		if rewritten, ok := rewriteDoubleRecursion(trigger, ifStmt, trailingReturn.(ast.Return), selfName); ok {
			return rewritten, true
		}
	}
	return trigger, false
}

// extractShape recognizes the canonical "base case guard, then a single
// trailing return" body: exactly an If with a ThenReturn and an empty
// ElseBody, followed by one Return statement.
func extractShape(body ast.Block) (ast.If, ast.Stmt, bool) {
	if len(body.Statements) != 2 {
		return ast.If{}, nil, false
	}
	ifStmt, ok := body.Statements[0].(ast.If)
	if !ok || ifStmt.ThenReturn == nil || len(ifStmt.ElseBody.Statements) != 0 {
		return ast.If{}, nil, false
	}
	ret, ok := body.Statements[1].(ast.Return)
	if !ok {
		return ast.If{}, nil, false
	}
	return ifStmt, ret, true
}

func isTailSelfCall(expr ast.Expression, selfName string) bool {
	sc, ok := expr.(ast.ScriptCall)
	return ok && sc.Target == selfName
}

func countSelfCalls(expr ast.Expression, selfName string) int {
	switch e := expr.(type) {
	case ast.BinaryExpression:
		return countSelfCalls(e.Left, selfName) + countSelfCalls(e.Right, selfName)
	case ast.FunctionCall:
		n := 0
		for _, a := range e.Args {
			n += countSelfCalls(a, selfName)
		}
		return n
	case ast.ScriptCall:
		n := 0
		if e.Target == selfName {
			n++
		}
		for _, a := range e.Args {
			n += countSelfCalls(a, selfName)
		}
		return n
	default:
		return 0
	}
}

func unwrapCalc(expr ast.Expression) ast.Expression {
	if fc, ok := expr.(ast.FunctionCall); ok && fc.Name == "calc" && len(fc.Args) == 1 {
		return fc.Args[0]
	}
	return expr
}

func wrapCalc(expr ast.Expression) ast.Expression {
	return ast.FunctionCall{Name: "calc", Args: []ast.Expression{expr}}
}

var invertComparison = map[string]string{
	"<":  ">=",
	"<=": ">",
	">":  "<=",
	">=": "<",
}

func negateCond(cond ast.Expression) (ast.Expression, bool) {
	bin, ok := cond.(ast.BinaryExpression)
	if !ok {
		return nil, false
	}
	inv, ok := invertComparison[bin.Op]
	if !ok {
		return nil, false
	}
	return ast.BinaryExpression{Left: bin.Left, Op: inv, Right: bin.Right}, true
}

func isDecrementBy(expr ast.Expression, local string, by int32) bool {
	bin, ok := unwrapCalc(expr).(ast.BinaryExpression)
	if !ok || bin.Op != "-" {
		return false
	}
	lv, ok := bin.Left.(ast.LocalVar)
	if !ok || lv.Name != local {
		return false
	}
	lit, ok := bin.Right.(ast.NumericLiteral)
	return ok && lit.Value == by
}

// rewriteTailRecursion turns `if (cond) return(base); return(~self(newArgs...))`
// into a while loop that keeps reassigning the parameters until cond holds,
// then returns base. Temp locals hold the new argument values so that one
// argument's update never sees another argument's already-updated value.
func rewriteTailRecursion(trigger ast.Trigger, ifStmt ast.If, trailingReturn ast.Return) (ast.Trigger, bool) {
	sc, ok := trailingReturn.Expr.(ast.ScriptCall)
	if !ok || len(sc.Args) != len(trigger.Params) {
		return trigger, false
	}
	negCond, ok := negateCond(ifStmt.Cond)
	if !ok {
		return trigger, false
	}

	var stmts []ast.Stmt
	for i, arg := range sc.Args {
		stmts = append(stmts, ast.Define{Name: tmpName(i), Type: "int", Value: arg})
	}
	for i := range sc.Args {
		stmts = append(stmts, ast.Assignment{Target: trigger.Params[i].Name, Value: ast.LocalVar{Name: tmpName(i)}})
	}

	newBody := ast.Block{Statements: []ast.Stmt{
		ast.While{Cond: negCond, Body: ast.Block{Statements: stmts}},
		ast.Return{Expr: ifStmt.ThenReturn.Expr},
	}}
	trigger.Body = newBody
	return trigger, true
}

func tmpName(i int) string {
	return "__tmp" + string(rune('0'+i))
}

// rewriteSingleRecursion recognizes `$n <op> self(calc($n - 1))` combined
// with a constant base case (factorial, sum-to-n) and replaces it with an
// accumulator loop counting up from the base threshold to $n.
func rewriteSingleRecursion(trigger ast.Trigger, ifStmt ast.If, trailingReturn ast.Return, selfName string) (ast.Trigger, bool) {
	if len(trigger.Params) != 1 {
		return trigger, false
	}
	n := trigger.Params[0].Name

	condBin, ok := ifStmt.Cond.(ast.BinaryExpression)
	if !ok || condBin.Op != "<=" {
		return trigger, false
	}
	condLV, ok := condBin.Left.(ast.LocalVar)
	if !ok || condLV.Name != n {
		return trigger, false
	}
	threshold, ok := condBin.Right.(ast.NumericLiteral)
	if !ok {
		return trigger, false
	}

	baseLit, ok := ifStmt.ThenReturn.Expr.(ast.NumericLiteral)
	if !ok {
		return trigger, false
	}

	combine, ok := unwrapCalc(trailingReturn.Expr).(ast.BinaryExpression)
	if !ok || (combine.Op != "+" && combine.Op != "*") {
		return trigger, false
	}
	leftLV, ok := combine.Left.(ast.LocalVar)
	if !ok || leftLV.Name != n {
		return trigger, false
	}
	sc, ok := combine.Right.(ast.ScriptCall)
	if !ok || sc.Target != selfName || len(sc.Args) != 1 {
		return trigger, false
	}
	if !isDecrementBy(sc.Args[0], n, 1) {
		return trigger, false
	}

	body := ast.Block{Statements: []ast.Stmt{
		ast.Define{Name: "__acc", Type: "int", Value: baseLit},
		ast.Define{Name: "__i", Type: "int", Value: ast.NumericLiteral{Value: threshold.Value + 1}},
		ast.While{
			Cond: ast.BinaryExpression{Left: ast.LocalVar{Name: "__i"}, Op: "<=", Right: ast.LocalVar{Name: n}},
			Body: ast.Block{Statements: []ast.Stmt{
				ast.Assignment{Target: "__acc", Value: wrapCalc(ast.BinaryExpression{Left: ast.LocalVar{Name: "__acc"}, Op: combine.Op, Right: ast.LocalVar{Name: "__i"}})},
				ast.Assignment{Target: "__i", Value: wrapCalc(ast.BinaryExpression{Left: ast.LocalVar{Name: "__i"}, Op: "+", Right: ast.NumericLiteral{Value: 1}})},
			}},
		},
		ast.Return{Expr: ast.LocalVar{Name: "__acc"}},
	}}
	trigger.Body = body
	return trigger, true
}

// rewriteDoubleRecursion recognizes the canonical Fibonacci shape
// `self(calc($n-1)) + self(calc($n-2))`, base case `$n<=1 return($n)`, and
// replaces it with a rolling two-variable iteration.
func rewriteDoubleRecursion(trigger ast.Trigger, ifStmt ast.If, trailingReturn ast.Return, selfName string) (ast.Trigger, bool) {
	if len(trigger.Params) != 1 {
		return trigger, false
	}
	n := trigger.Params[0].Name

	condBin, ok := ifStmt.Cond.(ast.BinaryExpression)
	if !ok || condBin.Op != "<=" {
		return trigger, false
	}
	condLV, ok := condBin.Left.(ast.LocalVar)
	if !ok || condLV.Name != n {
		return trigger, false
	}
	threshold, ok := condBin.Right.(ast.NumericLiteral)
	if !ok || threshold.Value != 1 {
		return trigger, false
	}
	if baseLV, ok := ifStmt.ThenReturn.Expr.(ast.LocalVar); !ok || baseLV.Name != n {
		return trigger, false
	}

	combine, ok := unwrapCalc(trailingReturn.Expr).(ast.BinaryExpression)
	if !ok || combine.Op != "+" {
		return trigger, false
	}
	leftCall, ok := combine.Left.(ast.ScriptCall)
	if !ok || leftCall.Target != selfName || len(leftCall.Args) != 1 {
		return trigger, false
	}
	rightCall, ok := combine.Right.(ast.ScriptCall)
	if !ok || rightCall.Target != selfName || len(rightCall.Args) != 1 {
		return trigger, false
	}
	if !isDecrementBy(leftCall.Args[0], n, 1) || !isDecrementBy(rightCall.Args[0], n, 2) {
		return trigger, false
	}

	body := ast.Block{Statements: []ast.Stmt{
		ast.Define{Name: "__a", Type: "int", Value: ast.NumericLiteral{Value: 0}},
		ast.Define{Name: "__b", Type: "int", Value: ast.NumericLiteral{Value: 1}},
		ast.Define{Name: "__i", Type: "int", Value: ast.NumericLiteral{Value: 2}},
		ast.While{
			Cond: ast.BinaryExpression{Left: ast.LocalVar{Name: "__i"}, Op: "<=", Right: ast.LocalVar{Name: n}},
			Body: ast.Block{Statements: []ast.Stmt{
				ast.Define{Name: "__c", Type: "int", Value: wrapCalc(ast.BinaryExpression{Left: ast.LocalVar{Name: "__a"}, Op: "+", Right: ast.LocalVar{Name: "__b"}})},
				ast.Assignment{Target: "__a", Value: ast.LocalVar{Name: "__b"}},
				ast.Assignment{Target: "__b", Value: ast.LocalVar{Name: "__c"}},
				ast.Assignment{Target: "__i", Value: wrapCalc(ast.BinaryExpression{Left: ast.LocalVar{Name: "__i"}, Op: "+", Right: ast.NumericLiteral{Value: 1}})},
			}},
		},
		ast.If{
			Cond:       ast.BinaryExpression{Left: ast.LocalVar{Name: n}, Op: "<=", Right: ast.NumericLiteral{Value: 1}},
			ThenReturn: &ast.Return{Expr: ast.LocalVar{Name: n}},
			ElseBody:   ast.Block{},
		},
		ast.Return{Expr: ast.LocalVar{Name: "__b"}},
	}}
	trigger.Body = body
	return trigger, true
}
