package parser

import (
	"encoding/json"
	"os"

	"rsc/ast"
)

// astPrinter walks an ast.Script and builds a JSON-marshalable
// representation of it, for debugging.
type astPrinter struct{}

// Print renders a Script as an indented JSON string.
func Print(script *ast.Script) (string, error) {
	p := astPrinter{}
	data, err := json.MarshalIndent(p.script(script), "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// PrintToFile renders a Script as JSON and writes it to path.
func PrintToFile(script *ast.Script, path string) error {
	rendered, err := Print(script)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(rendered), 0o644)
}

func (p astPrinter) script(s *ast.Script) map[string]any {
	triggers := make([]map[string]any, 0, len(s.Triggers))
	for _, t := range s.Triggers {
		triggers = append(triggers, p.trigger(t))
	}
	return map[string]any{"triggers": triggers}
}

func (p astPrinter) trigger(t ast.Trigger) map[string]any {
	params := make([]map[string]any, 0, len(t.Params))
	for _, param := range t.Params {
		params = append(params, map[string]any{"type": param.Type, "name": param.Name})
	}
	return map[string]any{
		"kind":       t.Kind,
		"name":       t.Name,
		"params":     params,
		"returnType": t.ReturnType,
		"body":       t.Body.Accept(p),
	}
}

func (p astPrinter) VisitDefine(d ast.Define) any {
	return map[string]any{"node": "Define", "name": d.Name, "type": d.Type, "value": d.Value.Accept(p)}
}

func (p astPrinter) VisitAssignment(a ast.Assignment) any {
	return map[string]any{"node": "Assignment", "target": a.Target, "value": a.Value.Accept(p)}
}

func (p astPrinter) VisitIf(i ast.If) any {
	var thenReturn any
	if i.ThenReturn != nil {
		thenReturn = i.ThenReturn.Accept(p)
	}
	return map[string]any{
		"node":       "If",
		"cond":       i.Cond.Accept(p),
		"thenReturn": thenReturn,
		"elseBody":   i.ElseBody.Accept(p),
	}
}

func (p astPrinter) VisitWhile(w ast.While) any {
	return map[string]any{"node": "While", "cond": w.Cond.Accept(p), "body": w.Body.Accept(p)}
}

func (p astPrinter) VisitReturn(r ast.Return) any {
	return map[string]any{"node": "Return", "expr": r.Expr.Accept(p)}
}

func (p astPrinter) VisitBlock(b ast.Block) any {
	stmts := make([]any, 0, len(b.Statements))
	for _, stmt := range b.Statements {
		stmts = append(stmts, stmt.Accept(p))
	}
	return map[string]any{"node": "Block", "statements": stmts}
}

func (p astPrinter) VisitExpressionStmt(e ast.ExpressionStmt) any {
	return map[string]any{"node": "ExpressionStmt", "expr": e.Expr.Accept(p)}
}

func (p astPrinter) VisitNumericLiteral(n ast.NumericLiteral) any {
	return map[string]any{"node": "NumericLiteral", "value": n.Value}
}

func (p astPrinter) VisitStringLiteral(s ast.StringLiteral) any {
	return map[string]any{"node": "StringLiteral", "value": s.Value}
}

func (p astPrinter) VisitIdentifier(id ast.Identifier) any {
	return map[string]any{"node": "Identifier", "name": id.Name}
}

func (p astPrinter) VisitLocalVar(lv ast.LocalVar) any {
	return map[string]any{"node": "LocalVar", "name": lv.Name}
}

func (p astPrinter) VisitBinaryExpression(b ast.BinaryExpression) any {
	return map[string]any{"node": "BinaryExpression", "op": b.Op, "left": b.Left.Accept(p), "right": b.Right.Accept(p)}
}

func (p astPrinter) VisitFunctionCall(f ast.FunctionCall) any {
	args := make([]any, 0, len(f.Args))
	for _, arg := range f.Args {
		args = append(args, arg.Accept(p))
	}
	return map[string]any{"node": "FunctionCall", "name": f.Name, "args": args}
}

func (p astPrinter) VisitScriptCall(s ast.ScriptCall) any {
	args := make([]any, 0, len(s.Args))
	for _, arg := range s.Args {
		args = append(args, arg.Accept(p))
	}
	return map[string]any{"node": "ScriptCall", "target": s.Target, "args": args}
}
