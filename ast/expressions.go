// expressions.go contains every Expression AST node: the nodes that
// evaluate to a value.

package ast

// NumericLiteral is an integer constant, e.g. the `6` in `fact(6)`.
type NumericLiteral struct {
	Value int32
}

func (n NumericLiteral) Accept(v ExpressionVisitor) any { return v.VisitNumericLiteral(n) }

// StringLiteral is a quoted string constant. Reserved per the instruction
// set; the core VM is not required to execute string-valued programs.
type StringLiteral struct {
	Value string
}

func (s StringLiteral) Accept(v ExpressionVisitor) any { return v.VisitStringLiteral(s) }

// Identifier names a script, a command, or a trigger (no sigil).
type Identifier struct {
	Name string
}

func (id Identifier) Accept(v ExpressionVisitor) any { return v.VisitIdentifier(id) }

// LocalVar is a `$`-prefixed local variable reference; Name never carries
// the sigil itself.
type LocalVar struct {
	Name string
}

func (lv LocalVar) Accept(v ExpressionVisitor) any { return v.VisitLocalVar(lv) }

// BinaryExpression applies Op to Left and Right. Op is one of
// `+ - * / < <= > >= =`. Arithmetic operators are only well-formed as the
// immediate child of a `calc(...)` FunctionCall; the compiler enforces
// this, not the parser.
type BinaryExpression struct {
	Left  Expression
	Op    string
	Right Expression
}

func (b BinaryExpression) Accept(v ExpressionVisitor) any { return v.VisitBinaryExpression(b) }

// FunctionCall is a bare-identifier command invocation, e.g. `calc(...)`
// or any other in-dialect command.
type FunctionCall struct {
	Name string
	Args []Expression
}

func (f FunctionCall) Accept(v ExpressionVisitor) any { return v.VisitFunctionCall(f) }

// ScriptCall is a `~name(args...)` gosub-style invocation of another
// script; it evaluates to that script's single integer return value.
type ScriptCall struct {
	Target string
	Args   []Expression
}

func (s ScriptCall) Accept(v ExpressionVisitor) any { return v.VisitScriptCall(s) }
