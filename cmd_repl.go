package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"

	"rsc/compiler"
	"rsc/lexer"
	"rsc/parser"
	"rsc/vm"
)

type replCmd struct{}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "read-eval-print loop over single-line script bodies" }
func (*replCmd) Usage() string {
	return `repl:
  Read one line at a time, compile it as the body of a throwaway trigger,
  run it against a fresh VM, and print the result or the first error.
`
}
func (r *replCmd) SetFlags(f *flag.FlagSet) {}

func (r *replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rl, err := readline.New("rsc> ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	runREPL(rl, os.Stdout)
	return subcommands.ExitSuccess
}

// lineReader is the subset of *readline.Instance runREPL needs, so tests
// can feed it canned input over an in-memory reader instead of a real
// terminal.
type lineReader interface {
	Readline() (string, error)
}

func runREPL(rl lineReader, out io.Writer) {
	for {
		line, err := rl.Readline()
		if err != nil {
			return
		}
		if line == "" {
			continue
		}
		result, err := evalREPLLine(line)
		if err != nil {
			fmt.Fprintln(out, err)
			continue
		}
		fmt.Fprintln(out, result)
	}
}

// evalREPLLine wraps one line of statements as the body of a throwaway
// `repl` trigger, then lexes, parses, compiles, and runs it against a
// fresh VM.
func evalREPLLine(line string) (int32, error) {
	source := "[proc,repl]\n" + line + "\n"

	lex := lexer.New(source)
	tokens, err := lex.Scan()
	if err != nil {
		return 0, err
	}

	p := parser.Make(tokens)
	script, err := p.Parse()
	if err != nil {
		return 0, err
	}

	c := compiler.NewASTCompiler()
	module, err := c.CompileModule(script)
	if err != nil {
		return 0, err
	}

	machine := vm.New()
	machine.RegisterModule(module)
	return machine.RunScript("repl", nil)
}
