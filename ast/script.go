package ast

// Param is one `type $name` entry in a trigger's parameter list.
type Param struct {
	Type string
	Name string
}

// Trigger is a top-level script entry point: `[kind,name](params)(return_type) body`.
// It is the unit of compilation and invocation.
type Trigger struct {
	Name       string
	Kind       string // proc | clientscript | label | debugproc
	Params     []Param
	ReturnType string
	Body       Block
}

// Script is one compiled source file: an ordered list of its Trigger
// declarations.
type Script struct {
	Triggers []Trigger
}
