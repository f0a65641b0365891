package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rsc/compiler"
	"rsc/lexer"
	"rsc/parser"
	"rsc/vm"
)

func TestFactorialMatchesRewrittenBytecode(t *testing.T) {
	src := `[proc,fact](int $n)(int)
		if ($n <= 1) return(1);
		return(calc($n * ~fact(calc($n - 1))));`

	tokens, err := lexer.New(src).Scan()
	require.NoError(t, err)
	astScript, err := parser.Make(tokens).Parse()
	require.NoError(t, err)

	interpreter := Make()
	interpreter.RegisterScript(astScript)

	module, err := compiler.NewASTCompiler().CompileModule(astScript)
	require.NoError(t, err)
	machine := vm.New()
	machine.RegisterModule(module)

	for n := int32(0); n <= 10; n++ {
		want, err := interpreter.RunTrigger("fact", []int32{n})
		require.NoError(t, err)
		got, err := machine.RunScript("fact", []int32{n})
		require.NoError(t, err)
		assert.Equal(t, want, got, "n=%d", n)
	}
}

func TestFibonacciMatchesRewrittenBytecode(t *testing.T) {
	src := `[proc,fib](int $n)(int)
		if ($n <= 1) return($n);
		return(calc(~fib(calc($n - 1)) + ~fib(calc($n - 2))));`

	tokens, err := lexer.New(src).Scan()
	require.NoError(t, err)
	astScript, err := parser.Make(tokens).Parse()
	require.NoError(t, err)

	interpreter := Make()
	interpreter.RegisterScript(astScript)

	module, err := compiler.NewASTCompiler().CompileModule(astScript)
	require.NoError(t, err)
	machine := vm.New()
	machine.RegisterModule(module)

	for n := int32(0); n <= 15; n++ {
		want, err := interpreter.RunTrigger("fib", []int32{n})
		require.NoError(t, err)
		got, err := machine.RunScript("fib", []int32{n})
		require.NoError(t, err)
		assert.Equal(t, want, got, "n=%d", n)
	}
}

func TestTailAccumulatorMatchesRewrittenBytecode(t *testing.T) {
	src := `[proc,sumacc](int $n, int $acc)(int)
		if ($n <= 0) return($acc);
		return(~sumacc(calc($n - 1), calc($acc + $n)));`

	tokens, err := lexer.New(src).Scan()
	require.NoError(t, err)
	astScript, err := parser.Make(tokens).Parse()
	require.NoError(t, err)

	interpreter := Make()
	interpreter.RegisterScript(astScript)

	module, err := compiler.NewASTCompiler().CompileModule(astScript)
	require.NoError(t, err)
	machine := vm.New()
	machine.RegisterModule(module)

	for n := int32(0); n <= 20; n++ {
		want, err := interpreter.RunTrigger("sumacc", []int32{n, 0})
		require.NoError(t, err)
		got, err := machine.RunScript("sumacc", []int32{n, 0})
		require.NoError(t, err)
		assert.Equal(t, want, got, "n=%d", n)
	}
}
