package compiler

import (
	"fmt"

	"github.com/josharian/intern"

	"rsc/ast"
	"rsc/diag"
)

// arithmeticOps is the set of operators only legal inside calc(...).
var arithmeticOps = map[string]Op{
	"+": OpAdd,
	"-": OpSubtract,
	"*": OpMultiply,
	"/": OpDivide,
}

// ASTCompiler lowers one parsed ast.Script into a Module, one ByteCode per
// trigger. Before emitting, each trigger is run through the recursion
// elimination pass so self-calls that fit a known shape become loops.
type ASTCompiler struct {
	bytecode *ByteCode
}

// NewASTCompiler constructs a compiler ready to compile triggers.
func NewASTCompiler() *ASTCompiler {
	return &ASTCompiler{}
}

// CompileModule compiles every trigger in script into a Module. It stops at
// the first trigger that fails to compile.
func (c *ASTCompiler) CompileModule(script *ast.Script) (Module, error) {
	module := make(Module, len(script.Triggers))
	for _, trigger := range script.Triggers {
		bc, err := c.CompileTrigger(trigger)
		if err != nil {
			return nil, err
		}
		module[trigger.Name] = bc
	}
	return module, nil
}

// CompileTrigger compiles a single trigger to bytecode. Internal lowering
// failures panic with semanticError/developerError; CompileTrigger recovers
// them at this boundary and returns a CompileError instead.
func (c *ASTCompiler) CompileTrigger(trigger ast.Trigger) (bc *ByteCode, err error) {
	defer func() {
		if r := recover(); r != nil {
			switch e := r.(type) {
			case semanticError:
				err = CompileError{ScriptName: trigger.Name, Message: e.Message}
			case developerError:
				err = CompileError{ScriptName: trigger.Name, Message: e.Message}
			default:
				panic(r)
			}
		}
	}()

	rewritten, eliminated := TryEliminateRecursion(trigger)

	c.bytecode = NewByteCode(rewritten.Name)

	for i, param := range rewritten.Params {
		argName := intern.String(fmt.Sprintf("arg%d", i))
		c.bytecode.addLocal(argName)
		c.emit(Instruction{Op: OpPushIntLocal, StrOperand: argName})
		declName := intern.String(param.Name)
		c.bytecode.addLocal(declName)
		c.emit(Instruction{Op: OpPopIntLocal, StrOperand: declName})
	}

	rewritten.Body.Accept(c)

	if !c.endsInReturn() {
		c.emit(Instruction{Op: OpPushConstantInt, IntOperand: 0})
		c.emit(Instruction{Op: OpReturn})
	}

	diag.Logger().WithFields(map[string]any{
		"script":      rewritten.Name,
		"instrCount":  len(c.bytecode.Instructions),
		"recursionOK": eliminated,
	}).Debug("compiled trigger")

	return c.bytecode, nil
}

func (c *ASTCompiler) endsInReturn() bool {
	n := len(c.bytecode.Instructions)
	return n > 0 && c.bytecode.Instructions[n-1].Op == OpReturn
}

func (c *ASTCompiler) emit(instr Instruction) int {
	return c.bytecode.push(instr)
}

func (c *ASTCompiler) here() int {
	return len(c.bytecode.Instructions)
}

func (c *ASTCompiler) patchJump(pos int, target int) {
	c.bytecode.Instructions[pos].Target = target
}

// compileArithmetic lowers an expression that lives inside calc(...). Binary
// nodes whose operator is arithmetic recurse directly rather than going
// through VisitBinaryExpression, since that path rejects arithmetic outside
// calc(...); anything else (a local, a literal, a nested script call, a
// comparison) is compiled normally.
func (c *ASTCompiler) compileArithmetic(expr ast.Expression) {
	if bin, ok := expr.(ast.BinaryExpression); ok {
		if op, isArith := arithmeticOps[bin.Op]; isArith {
			c.compileArithmetic(bin.Left)
			c.compileArithmetic(bin.Right)
			c.emit(Instruction{Op: op})
			return
		}
	}
	expr.Accept(c)
}

// --- ast.ExpressionVisitor ---

func (c *ASTCompiler) VisitNumericLiteral(n ast.NumericLiteral) any {
	c.emit(Instruction{Op: OpPushConstantInt, IntOperand: n.Value})
	return nil
}

func (c *ASTCompiler) VisitStringLiteral(s ast.StringLiteral) any {
	c.bytecode.addString(s.Value)
	c.emit(Instruction{Op: OpPushConstantString, StrOperand: s.Value})
	return nil
}

func (c *ASTCompiler) VisitIdentifier(id ast.Identifier) any {
	panic(semanticError{Message: fmt.Sprintf("unexpected bare identifier %q in expression position", id.Name)})
}

func (c *ASTCompiler) VisitLocalVar(lv ast.LocalVar) any {
	name := intern.String(lv.Name)
	c.emit(Instruction{Op: OpPushIntLocal, StrOperand: name})
	return nil
}

// VisitBinaryExpression handles a binary expression reached OUTSIDE
// calc(...). Arithmetic operators are a compile error here; comparisons
// materialize to an int 0/1 via a branch-push-jump-push sequence.
func (c *ASTCompiler) VisitBinaryExpression(b ast.BinaryExpression) any {
	if _, isArith := arithmeticOps[b.Op]; isArith {
		panic(semanticError{Message: fmt.Sprintf("arithmetic operator %q used outside calc(...)", b.Op)})
	}
	op, ok := comparisonOps[b.Op]
	if !ok {
		panic(developerError{Message: fmt.Sprintf("unreachable binary operator %q", b.Op)})
	}

	b.Left.Accept(c)
	b.Right.Accept(c)
	branchPos := c.emit(Instruction{Op: op})
	c.emit(Instruction{Op: OpPushConstantInt, IntOperand: 0})
	jumpPos := c.emit(Instruction{Op: OpJump})
	truePos := c.here()
	c.emit(Instruction{Op: OpPushConstantInt, IntOperand: 1})
	c.patchJump(branchPos, truePos)
	c.patchJump(jumpPos, c.here())
	return nil
}

func (c *ASTCompiler) VisitFunctionCall(f ast.FunctionCall) any {
	if f.Name == "calc" {
		if len(f.Args) != 1 {
			panic(semanticError{Message: "calc(...) takes exactly one expression"})
		}
		c.compileArithmetic(f.Args[0])
		return nil
	}
	panic(semanticError{Message: fmt.Sprintf("unknown command %q", f.Name)})
}

func (c *ASTCompiler) VisitScriptCall(s ast.ScriptCall) any {
	for _, arg := range s.Args {
		arg.Accept(c)
	}
	target := intern.String(s.Target)
	if len(s.Args) == 0 {
		c.emit(Instruction{Op: OpGosub, StrOperand: target})
		return nil
	}
	c.emit(Instruction{Op: OpPushConstantInt, IntOperand: int32(len(s.Args))})
	c.emit(Instruction{Op: OpGosubWithParams, StrOperand: target})
	return nil
}

// --- ast.StmtVisitor ---

func (c *ASTCompiler) VisitDefine(d ast.Define) any {
	d.Value.Accept(c)
	name := intern.String(d.Name)
	c.bytecode.addLocal(name)
	c.emit(Instruction{Op: OpPopIntLocal, StrOperand: name})
	return nil
}

func (c *ASTCompiler) VisitAssignment(a ast.Assignment) any {
	a.Value.Accept(c)
	name := intern.String(a.Target)
	c.emit(Instruction{Op: OpPopIntLocal, StrOperand: name})
	return nil
}

func (c *ASTCompiler) VisitIf(i ast.If) any {
	i.Cond.Accept(c)
	branchNotPos := c.emit(Instruction{Op: OpBranchNot})
	if i.ThenReturn != nil {
		i.ThenReturn.Accept(c)
	}
	jumpPos := c.emit(Instruction{Op: OpJump})
	c.patchJump(branchNotPos, c.here())
	i.ElseBody.Accept(c)
	c.patchJump(jumpPos, c.here())
	return nil
}

func (c *ASTCompiler) VisitWhile(w ast.While) any {
	start := c.here()
	w.Cond.Accept(c)
	branchNotPos := c.emit(Instruction{Op: OpBranchNot})
	w.Body.Accept(c)
	c.emit(Instruction{Op: OpJump, Target: start})
	c.patchJump(branchNotPos, c.here())
	return nil
}

func (c *ASTCompiler) VisitReturn(r ast.Return) any {
	r.Expr.Accept(c)
	c.emit(Instruction{Op: OpReturn})
	return nil
}

func (c *ASTCompiler) VisitBlock(b ast.Block) any {
	for _, stmt := range b.Statements {
		stmt.Accept(c)
	}
	return nil
}

// VisitExpressionStmt compiles an expression evaluated only for its side
// effect. The VM's instruction set has no dedicated discard opcode, so the
// pushed value is bound to the scratch local "_" (the grammar already
// reserves underscore as a discard marker) and never read back.
func (c *ASTCompiler) VisitExpressionStmt(e ast.ExpressionStmt) any {
	e.Expr.Accept(c)
	c.emit(Instruction{Op: OpPopIntLocal, StrOperand: "_"})
	return nil
}
