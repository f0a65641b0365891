package parser

import (
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rsc/ast"
	"rsc/lexer"
)

func parseSource(t *testing.T, src string) *ast.Script {
	t.Helper()
	tokens, err := lexer.New(src).Scan()
	require.NoError(t, err)
	script, err := Make(tokens).Parse()
	require.NoError(t, err)
	return script
}

func TestParseTriggerHeaderAndParams(t *testing.T) {
	script := parseSource(t, `[proc,fact](int $n)(int) return(1);`)
	require.Len(t, script.Triggers, 1)
	trig := script.Triggers[0]
	assert.Equal(t, "proc", trig.Kind)
	assert.Equal(t, "fact", trig.Name)
	assert.Equal(t, "int", trig.ReturnType)
	require.Len(t, trig.Params, 1)
	assert.Equal(t, ast.Param{Type: "int", Name: "n"}, trig.Params[0])
}

func TestParseDefineWithInitializer(t *testing.T) {
	script := parseSource(t, `[proc,p]() def_int $x = 5; return($x);`)
	body := script.Triggers[0].Body.Statements
	require.Len(t, body, 2)
	def, ok := body[0].(ast.Define)
	require.True(t, ok)
	assert.Equal(t, "x", def.Name)
	assert.Equal(t, "int", def.Type)
	assert.Equal(t, ast.NumericLiteral{Value: 5}, def.Value)
}

func TestParseDefineDefaultsToZero(t *testing.T) {
	script := parseSource(t, `[proc,p]() def_int $x; return($x);`)
	def := script.Triggers[0].Body.Statements[0].(ast.Define)
	assert.Equal(t, ast.NumericLiteral{Value: 0}, def.Value)
}

func TestParseIfLiftsTrailingReturn(t *testing.T) {
	script := parseSource(t, `[proc,fact](int $n)(int)
		if ($n <= 1) return(1);
		return(calc($n * ~fact(calc($n - 1))));`)
	body := script.Triggers[0].Body.Statements
	require.Len(t, body, 2)
	ifStmt, ok := body[0].(ast.If)
	require.True(t, ok)
	require.NotNil(t, ifStmt.ThenReturn)
	assert.Equal(t, ast.NumericLiteral{Value: 1}, ifStmt.ThenReturn.Expr)
	assert.Empty(t, ifStmt.ElseBody.Statements)

	cond, ok := ifStmt.Cond.(ast.BinaryExpression)
	require.True(t, ok)
	assert.Equal(t, "<=", cond.Op)
}

func TestParseCalcUsesAdditivePrecedenceInside(t *testing.T) {
	script := parseSource(t, `[proc,p](int $n)(int) return(calc($n - 1));`)
	ret := script.Triggers[0].Body.Statements[0].(ast.Return)
	call, ok := ret.Expr.(ast.FunctionCall)
	require.True(t, ok)
	assert.Equal(t, "calc", call.Name)
	require.Len(t, call.Args, 1)
	bin, ok := call.Args[0].(ast.BinaryExpression)
	require.True(t, ok)
	assert.Equal(t, "-", bin.Op)
}

func TestParseScriptCallWithArgs(t *testing.T) {
	script := parseSource(t, `[proc,p](int $n)(int) return(~fib(calc($n - 1)));`)
	ret := script.Triggers[0].Body.Statements[0].(ast.Return)
	call, ok := ret.Expr.(ast.ScriptCall)
	require.True(t, ok)
	assert.Equal(t, "fib", call.Target)
	require.Len(t, call.Args, 1)
}

func TestParseUnaryMinusSynthesizesZeroMinusOperand(t *testing.T) {
	script := parseSource(t, `[proc,p]() return(calc(-5));`)
	ret := script.Triggers[0].Body.Statements[0].(ast.Return)
	call := ret.Expr.(ast.FunctionCall)
	bin, ok := call.Args[0].(ast.BinaryExpression)
	require.True(t, ok)
	assert.Equal(t, ast.NumericLiteral{Value: 0}, bin.Left)
	assert.Equal(t, "-", bin.Op)
	assert.Equal(t, ast.NumericLiteral{Value: 5}, bin.Right)
}

func TestParseWhileLoop(t *testing.T) {
	script := parseSource(t, `[proc,p](int $n)(int)
		def_int $i = 0;
		while ($i < $n) {
			$i = calc($i + 1);
		}
		return($i);`)
	body := script.Triggers[0].Body.Statements
	require.Len(t, body, 3)
	whileStmt, ok := body[1].(ast.While)
	require.True(t, ok)
	require.Len(t, whileStmt.Body.Statements, 1)
}

func TestParseCollectsMultipleTriggerErrors(t *testing.T) {
	tokens, err := lexer.New(`[proc,bad
		[proc,worse
		[proc,good]() return(1);`).Scan()
	require.NoError(t, err)
	_, err = Make(tokens).Parse()
	assert.Error(t, err)
	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 2)
}
