package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rsc/token"
)

func kinds(tokens []token.Token) []token.Kind {
	out := make([]token.Kind, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Kind
	}
	return out
}

func TestScanPunctuationAndSigils(t *testing.T) {
	tokens, err := New("[](){};,_$~").Scan()
	require.NoError(t, err)
	assert.Equal(t, []token.Kind{
		token.LBracket, token.RBracket, token.LParen, token.RParen,
		token.LBrace, token.RBrace, token.Semicolon, token.Comma,
		token.Underscore, token.LocalVarSigil, token.ScriptCallSigil, token.EOF,
	}, kinds(tokens))
}

func TestScanNumberLiteral(t *testing.T) {
	tokens, err := New("42").Scan()
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, token.Number, tokens[0].Kind)
	assert.Equal(t, int32(42), tokens[0].Literal)
}

func TestScanLineComment(t *testing.T) {
	tokens, err := New("// hello\n1").Scan()
	require.NoError(t, err)
	assert.Equal(t, token.SingleLineComment, tokens[0].Kind)
	assert.Equal(t, token.Number, tokens[1].Kind)
}

func TestScanNestedBlockComment(t *testing.T) {
	tokens, err := New("/* outer /* inner */ still outer */ 1").Scan()
	require.NoError(t, err)
	assert.Equal(t, token.MultiLineComment, tokens[0].Kind)
	assert.Equal(t, token.Number, tokens[1].Kind)
}

func TestScanUnterminatedBlockCommentErrors(t *testing.T) {
	_, err := New("/* never closed").Scan()
	assert.Error(t, err)
}

func TestScanCompoundComparison(t *testing.T) {
	tokens, err := New("<= >= < >").Scan()
	require.NoError(t, err)
	for _, tok := range tokens[:4] {
		assert.Equal(t, token.Comparison, tok.Kind)
	}
	assert.Equal(t, "<=", tokens[0].Lexeme)
	assert.Equal(t, ">=", tokens[1].Lexeme)
	assert.Equal(t, "<", tokens[2].Lexeme)
	assert.Equal(t, ">", tokens[3].Lexeme)
}

// TestResolveEqualsDefInitializer covers `def_int $x = 5;`: the `=`
// immediately follows a Def declaration and must be an assignment.
func TestResolveEqualsDefInitializer(t *testing.T) {
	tokens, err := New("def_int $x = 5").Scan()
	require.NoError(t, err)
	eq := findKind(t, tokens, token.Equals, token.Comparison)
	assert.Equal(t, token.Equals, eq.Kind)
}

// TestResolveEqualsBareAssignment covers `$x = calc(...)`, where `=`
// follows an already-declared local with no governing `if`/`while`.
func TestResolveEqualsBareAssignment(t *testing.T) {
	tokens, err := New("$x = calc($x + 1)").Scan()
	require.NoError(t, err)
	eq := findKind(t, tokens, token.Equals, token.Comparison)
	assert.Equal(t, token.Equals, eq.Kind)
}

// TestResolveEqualsInsideIf covers `if ($x = 3)`, where the `=` is a
// comparison because it sits directly inside an `if (...)` condition.
func TestResolveEqualsInsideIf(t *testing.T) {
	tokens, err := New("if ($x = 3)").Scan()
	require.NoError(t, err)
	eq := findKind(t, tokens, token.Equals, token.Comparison)
	assert.Equal(t, token.Comparison, eq.Kind)
}

// TestResolveEqualsInsideWhile mirrors the `if` case for `while`.
func TestResolveEqualsInsideWhile(t *testing.T) {
	tokens, err := New("while ($n = 0)").Scan()
	require.NoError(t, err)
	eq := findKind(t, tokens, token.Equals, token.Comparison)
	assert.Equal(t, token.Comparison, eq.Kind)
}

func findKind(t *testing.T, tokens []token.Token, candidates ...token.Kind) token.Token {
	t.Helper()
	for _, tok := range tokens {
		for _, k := range candidates {
			if tok.Kind == k {
				return tok
			}
		}
	}
	t.Fatalf("no token with any of %v found", candidates)
	return token.Token{}
}

func TestScanKeywordsAndCommands(t *testing.T) {
	tokens, err := New("proc if while return calc fact").Scan()
	require.NoError(t, err)
	assert.Equal(t, []token.Kind{
		token.Trigger, token.If, token.While, token.Return, token.Command, token.Identifier, token.EOF,
	}, kinds(tokens))
}
