package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rsc/ast"
	"rsc/lexer"
	"rsc/parser"
)

func parseTrigger(t *testing.T, src string) ast.Trigger {
	t.Helper()
	tokens, err := lexer.New(src).Scan()
	require.NoError(t, err)
	script, err := parser.Make(tokens).Parse()
	require.NoError(t, err)
	require.Len(t, script.Triggers, 1)
	return script.Triggers[0]
}

func TestTryEliminateRecursionFactorial(t *testing.T) {
	trigger := parseTrigger(t, `[proc,fact](int $n)(int)
		if ($n <= 1) return(1);
		return(calc($n * ~fact(calc($n - 1))));`)
	rewritten, ok := TryEliminateRecursion(trigger)
	require.True(t, ok)

	module, err := NewASTCompiler().CompileModule(&ast.Script{Triggers: []ast.Trigger{rewritten}})
	require.NoError(t, err)
	bc := module["fact"]
	for _, instr := range bc.Instructions {
		assert.NotEqual(t, OpGosub, instr.Op)
		assert.NotEqual(t, OpGosubWithParams, instr.Op)
	}
}

func TestTryEliminateRecursionFibonacci(t *testing.T) {
	trigger := parseTrigger(t, `[proc,fib](int $n)(int)
		if ($n <= 1) return($n);
		return(calc(~fib(calc($n - 1)) + ~fib(calc($n - 2))));`)
	rewritten, ok := TryEliminateRecursion(trigger)
	require.True(t, ok)

	module, err := NewASTCompiler().CompileModule(&ast.Script{Triggers: []ast.Trigger{rewritten}})
	require.NoError(t, err)
	bc := module["fib"]
	for _, instr := range bc.Instructions {
		assert.NotEqual(t, OpGosubWithParams, instr.Op)
	}
}

func TestTryEliminateRecursionTailAccumulator(t *testing.T) {
	trigger := parseTrigger(t, `[proc,sumacc](int $n, int $acc)(int)
		if ($n <= 0) return($acc);
		return(~sumacc(calc($n - 1), calc($acc + $n)));`)
	rewritten, ok := TryEliminateRecursion(trigger)
	require.True(t, ok)

	module, err := NewASTCompiler().CompileModule(&ast.Script{Triggers: []ast.Trigger{rewritten}})
	require.NoError(t, err)
	bc := module["sumacc"]
	for _, instr := range bc.Instructions {
		assert.NotEqual(t, OpGosubWithParams, instr.Op)
	}
}

func TestTryEliminateRecursionLeavesUnmatchedShapeAlone(t *testing.T) {
	trigger := parseTrigger(t, `[proc,mutual](int $n)(int)
		if ($n <= 0) return(0);
		return(~other(calc($n - 1)));`)
	_, ok := TryEliminateRecursion(trigger)
	assert.False(t, ok)
}
