// Package parser builds a RuneScript AST from a token stream via
// recursive descent.
package parser

import (
	"strings"

	"github.com/hashicorp/go-multierror"

	"rsc/ast"
	"rsc/token"
)

// Parser consumes a token stream and produces an ast.Script.
type Parser struct {
	Path   string // optional, used only to annotate errors
	tokens []token.Token
	pos    int
}

// Make constructs a Parser over an already-lexed token stream.
func Make(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

func (p *Parser) peek() token.Token {
	return p.tokens[p.pos]
}

func (p *Parser) previous() token.Token {
	return p.tokens[p.pos-1]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Kind == token.EOF
}

func (p *Parser) check(kind token.Kind) bool {
	if p.isAtEnd() {
		return kind == token.EOF
	}
	return p.peek().Kind == kind
}

func (p *Parser) advance() token.Token {
	if !p.isAtEnd() {
		p.pos++
	}
	return p.previous()
}

func (p *Parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) consume(kind token.Kind, message string) (token.Token, error) {
	if p.check(kind) {
		return p.advance(), nil
	}
	tok := p.peek()
	return token.Token{}, CreateSyntaxError(p.Path, tok.Line, tok.Column, tok.Lexeme, message)
}

// Parse parses the entire token stream as a sequence of top-level Trigger
// declarations. It does not stop at the first error: every script-level
// declaration that fails to parse is recorded and parsing resumes at the
// next `[`, so a single invocation reports every broken trigger in a file.
func (p *Parser) Parse() (*ast.Script, error) {
	var script ast.Script
	var errs *multierror.Error

	for !p.isAtEnd() {
		trigger, err := p.parseTrigger()
		if err != nil {
			errs = multierror.Append(errs, err)
			p.syncToNextTrigger()
			continue
		}
		script.Triggers = append(script.Triggers, trigger)
	}

	if errs != nil {
		return &script, errs.ErrorOrNil()
	}
	return &script, nil
}

// syncToNextTrigger discards tokens until the next top-level `[` or EOF,
// so one malformed trigger does not cascade into spurious errors for the
// rest of the file.
func (p *Parser) syncToNextTrigger() {
	for !p.isAtEnd() && !p.check(token.LBracket) {
		p.advance()
	}
}

// parseTrigger parses `'[' trigger_kind ',' name ']' paramlist? returntype? body`.
func (p *Parser) parseTrigger() (ast.Trigger, error) {
	if _, err := p.consume(token.LBracket, "expected '[' to begin a script declaration"); err != nil {
		return ast.Trigger{}, err
	}
	kindTok, err := p.consume(token.Trigger, "expected a trigger kind (proc, clientscript, label, debugproc)")
	if err != nil {
		return ast.Trigger{}, err
	}
	if _, err := p.consume(token.Comma, "expected ',' after trigger kind"); err != nil {
		return ast.Trigger{}, err
	}
	nameTok, err := p.consume(token.Identifier, "expected a script name")
	if err != nil {
		return ast.Trigger{}, err
	}
	if _, err := p.consume(token.RBracket, "expected ']' to close the script header"); err != nil {
		return ast.Trigger{}, err
	}

	params, err := p.parseParamList()
	if err != nil {
		return ast.Trigger{}, err
	}

	returnType, err := p.parseReturnType()
	if err != nil {
		return ast.Trigger{}, err
	}

	body, err := p.parseBodyUntilNextTrigger()
	if err != nil {
		return ast.Trigger{}, err
	}

	return ast.Trigger{
		Name:       nameTok.Lexeme,
		Kind:       kindTok.Lexeme,
		Params:     params,
		ReturnType: returnType,
		Body:       body,
	}, nil
}

// parseParamList parses `'(' (type '$' ident (',' type '$' ident)*)? ')'`.
func (p *Parser) parseParamList() ([]ast.Param, error) {
	if !p.check(token.LParen) {
		return nil, nil
	}
	p.advance()

	var params []ast.Param
	for !p.check(token.RParen) {
		if len(params) > 0 {
			if _, err := p.consume(token.Comma, "expected ',' between parameters"); err != nil {
				return nil, err
			}
		}
		typeTok, err := p.consume(token.Identifier, "expected a parameter type")
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.LocalVarSigil, "expected '$' before parameter name"); err != nil {
			return nil, err
		}
		nameTok, err := p.consume(token.Identifier, "expected a parameter name")
		if err != nil {
			return nil, err
		}
		params = append(params, ast.Param{Type: typeTok.Lexeme, Name: nameTok.Lexeme})
	}
	if _, err := p.consume(token.RParen, "expected ')' to close the parameter list"); err != nil {
		return nil, err
	}
	return params, nil
}

// parseReturnType parses an optional second `'(' type ')'` group.
func (p *Parser) parseReturnType() (string, error) {
	if !p.check(token.LParen) {
		return "", nil
	}
	p.advance()
	typeTok, err := p.consume(token.Identifier, "expected a return type")
	if err != nil {
		return "", err
	}
	if _, err := p.consume(token.RParen, "expected ')' to close the return type"); err != nil {
		return "", err
	}
	return typeTok.Lexeme, nil
}

// parseBodyUntilNextTrigger parses statements until the next top-level '['
// or EOF and wraps them as a Block.
func (p *Parser) parseBodyUntilNextTrigger() (ast.Block, error) {
	var stmts []ast.Stmt
	for !p.isAtEnd() && !p.check(token.LBracket) {
		stmt, err := p.parseStatement()
		if err != nil {
			return ast.Block{}, err
		}
		stmts = append(stmts, stmt)
	}
	return ast.Block{Statements: stmts}, nil
}

func (p *Parser) parseStatement() (ast.Stmt, error) {
	switch {
	case p.check(token.Def):
		return p.parseDefine()
	case p.check(token.If):
		return p.parseIf()
	case p.check(token.While):
		return p.parseWhile()
	case p.check(token.Return):
		return p.parseReturn()
	case p.check(token.LocalVarSigil):
		return p.parseAssignment()
	default:
		return p.parseExpressionStatement()
	}
}

// parseDefine parses `def_<type> '$' ident ('=' expr)? ';'?`.
func (p *Parser) parseDefine() (ast.Stmt, error) {
	defTok := p.advance()
	typeName := strings.TrimPrefix(defTok.Lexeme, "def_")

	if _, err := p.consume(token.LocalVarSigil, "expected '$' before declared variable name"); err != nil {
		return nil, err
	}
	nameTok, err := p.consume(token.Identifier, "expected a variable name")
	if err != nil {
		return nil, err
	}

	var value ast.Expression
	if p.match(token.Equals) {
		value, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	} else {
		value = defaultValueFor(typeName)
	}
	p.match(token.Semicolon)

	return ast.Define{Name: nameTok.Lexeme, Type: typeName, Value: value}, nil
}

func defaultValueFor(typeName string) ast.Expression {
	if typeName == "string" {
		return ast.StringLiteral{Value: ""}
	}
	return ast.NumericLiteral{Value: 0}
}

// parseIf parses `if '(' expr ')' body`, lifting a `return` found directly
// inside the then-block into the dedicated ThenReturn slot.
func (p *Parser) parseIf() (ast.Stmt, error) {
	p.advance() // 'if'
	if _, err := p.consume(token.LParen, "expected '(' after 'if'"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RParen, "expected ')' after if condition"); err != nil {
		return nil, err
	}

	thenReturn, elseBody, err := p.parseIfBody()
	if err != nil {
		return nil, err
	}
	return ast.If{Cond: cond, ThenReturn: thenReturn, ElseBody: elseBody}, nil
}

func (p *Parser) parseIfBody() (*ast.Return, ast.Block, error) {
	if p.match(token.LBrace) {
		var thenReturn *ast.Return
		var stmts []ast.Stmt
		for !p.check(token.RBrace) && !p.isAtEnd() {
			stmt, err := p.parseStatement()
			if err != nil {
				return nil, ast.Block{}, err
			}
			if ret, ok := stmt.(ast.Return); ok && thenReturn == nil {
				r := ret
				thenReturn = &r
				continue
			}
			stmts = append(stmts, stmt)
		}
		if _, err := p.consume(token.RBrace, "expected '}' to close if body"); err != nil {
			return nil, ast.Block{}, err
		}
		return thenReturn, ast.Block{Statements: stmts}, nil
	}

	stmt, err := p.parseStatement()
	if err != nil {
		return nil, ast.Block{}, err
	}
	if ret, ok := stmt.(ast.Return); ok {
		r := ret
		return &r, ast.Block{}, nil
	}
	return nil, ast.Block{Statements: []ast.Stmt{stmt}}, nil
}

// parseWhile parses `while '(' expr ')' body`.
func (p *Parser) parseWhile() (ast.Stmt, error) {
	p.advance() // 'while'
	if _, err := p.consume(token.LParen, "expected '(' after 'while'"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RParen, "expected ')' after while condition"); err != nil {
		return nil, err
	}
	body, err := p.parseBlockOrStatement()
	if err != nil {
		return nil, err
	}
	return ast.While{Cond: cond, Body: body}, nil
}

func (p *Parser) parseBlockOrStatement() (ast.Block, error) {
	if p.match(token.LBrace) {
		var stmts []ast.Stmt
		for !p.check(token.RBrace) && !p.isAtEnd() {
			stmt, err := p.parseStatement()
			if err != nil {
				return ast.Block{}, err
			}
			stmts = append(stmts, stmt)
		}
		if _, err := p.consume(token.RBrace, "expected '}' to close block"); err != nil {
			return ast.Block{}, err
		}
		return ast.Block{Statements: stmts}, nil
	}
	stmt, err := p.parseStatement()
	if err != nil {
		return ast.Block{}, err
	}
	return ast.Block{Statements: []ast.Stmt{stmt}}, nil
}

// parseReturn parses `return '(' expr ')' ';'?`.
func (p *Parser) parseReturn() (ast.Stmt, error) {
	p.advance() // 'return'
	if _, err := p.consume(token.LParen, "expected '(' after 'return'"); err != nil {
		return nil, err
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RParen, "expected ')' after return expression"); err != nil {
		return nil, err
	}
	p.match(token.Semicolon)
	return ast.Return{Expr: expr}, nil
}

// parseAssignment parses `'$' ident '=' expr ';'?`.
func (p *Parser) parseAssignment() (ast.Stmt, error) {
	p.advance() // '$'
	nameTok, err := p.consume(token.Identifier, "expected a variable name after '$'")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.Equals, "expected '=' in assignment"); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.match(token.Semicolon)
	return ast.Assignment{Target: nameTok.Lexeme, Value: value}, nil
}

func (p *Parser) parseExpressionStatement() (ast.Stmt, error) {
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.match(token.Semicolon)
	return ast.ExpressionStmt{Expr: expr}, nil
}

// parseExpression is the lowest-precedence entry point: comparison over
// additive over multiplicative over primary.
func (p *Parser) parseExpression() (ast.Expression, error) {
	return p.parseComparison()
}

func (p *Parser) parseComparison() (ast.Expression, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if p.check(token.Comparison) || p.check(token.Equals) {
		opTok := p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		op := opTok.Lexeme
		if opTok.Kind == token.Equals {
			op = "="
		}
		return ast.BinaryExpression{Left: left, Op: op, Right: right}, nil
	}
	return left, nil
}

func (p *Parser) parseAdditive() (ast.Expression, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.check(token.Plus) || p.check(token.Minus) {
		opTok := p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = ast.BinaryExpression{Left: left, Op: opTok.Lexeme, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (ast.Expression, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.check(token.Star) || p.check(token.Slash) {
		opTok := p.advance()
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		left = ast.BinaryExpression{Left: left, Op: opTok.Lexeme, Right: right}
	}
	return left, nil
}

func (p *Parser) parsePrimary() (ast.Expression, error) {
	tok := p.peek()
	switch tok.Kind {
	case token.Number:
		p.advance()
		return ast.NumericLiteral{Value: tok.Literal.(int32)}, nil
	case token.Minus:
		p.advance()
		operand, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return ast.BinaryExpression{Left: ast.NumericLiteral{Value: 0}, Op: "-", Right: operand}, nil
	case token.LocalVarSigil:
		p.advance()
		nameTok, err := p.consume(token.Identifier, "expected a variable name after '$'")
		if err != nil {
			return nil, err
		}
		return ast.LocalVar{Name: nameTok.Lexeme}, nil
	case token.LParen:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.RParen, "expected ')' to close grouping"); err != nil {
			return nil, err
		}
		return expr, nil
	case token.Command:
		p.advance()
		if _, err := p.consume(token.LParen, "expected '(' after 'calc'"); err != nil {
			return nil, err
		}
		expr, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.RParen, "expected ')' to close calc(...)"); err != nil {
			return nil, err
		}
		return ast.FunctionCall{Name: tok.Lexeme, Args: []ast.Expression{expr}}, nil
	case token.ScriptCallSigil:
		p.advance()
		targetTok, err := p.consume(token.Identifier, "expected a script name after '~'")
		if err != nil {
			return nil, err
		}
		var args []ast.Expression
		if p.match(token.LParen) {
			args, err = p.parseArgList()
			if err != nil {
				return nil, err
			}
			if _, err := p.consume(token.RParen, "expected ')' to close script call arguments"); err != nil {
				return nil, err
			}
		}
		return ast.ScriptCall{Target: targetTok.Lexeme, Args: args}, nil
	case token.Identifier:
		p.advance()
		if p.check(token.LParen) {
			p.advance()
			args, err := p.parseArgList()
			if err != nil {
				return nil, err
			}
			if _, err := p.consume(token.RParen, "expected ')' to close argument list"); err != nil {
				return nil, err
			}
			return ast.FunctionCall{Name: tok.Lexeme, Args: args}, nil
		}
		return ast.Identifier{Name: tok.Lexeme}, nil
	default:
		return nil, CreateSyntaxError(p.Path, tok.Line, tok.Column, tok.Lexeme, "unexpected token in expression")
	}
}

func (p *Parser) parseArgList() ([]ast.Expression, error) {
	var args []ast.Expression
	for !p.check(token.RParen) {
		if len(args) > 0 {
			if _, err := p.consume(token.Comma, "expected ',' between arguments"); err != nil {
				return nil, err
			}
		}
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return args, nil
}
