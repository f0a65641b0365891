package compiler

import "fmt"

// semanticError is raised internally (via panic, recovered at
// CompileTrigger's boundary) for a malformed program the parser accepted
// but the compiler cannot lower: arithmetic outside calc(...), a calc(...)
// without exactly one expression, an unknown command, or a bare identifier
// in expression position.
type semanticError struct {
	Message string
}

func (e semanticError) Error() string {
	return fmt.Sprintf("semantic error: %s", e.Message)
}

// developerError is raised internally for conditions that indicate a bug
// in the compiler itself rather than in the source program (an
// unreachable case in the emitter).
type developerError struct {
	Message string
}

func (e developerError) Error() string {
	return fmt.Sprintf("compiler error: %s", e.Message)
}

// CompileError is the typed error CompileTrigger and CompileModule return
// to callers; it never escapes as a panic.
type CompileError struct {
	ScriptName string
	Message    string
}

func (e CompileError) Error() string {
	if e.ScriptName == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.ScriptName, e.Message)
}
