package interp

import "fmt"

// RuntimeError mirrors vm.RuntimeError for the tree-walking interpreter,
// which exists to check the compiler's recursion rewrites against the
// original recursive AST rather than to serve production scripts.
type RuntimeError struct {
	ScriptName string
	Message    string
}

func (e RuntimeError) Error() string {
	return fmt.Sprintf("%s: %s", e.ScriptName, e.Message)
}

func CreateRuntimeError(scriptName, message string) RuntimeError {
	return RuntimeError{ScriptName: scriptName, Message: message}
}
