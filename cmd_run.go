package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"rsc/config"
	"rsc/vm"
)

type runCmd struct{}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "compile the scripts directory and invoke one script" }
func (*runCmd) Usage() string {
	return `run <script_name> [args...]:
  Compile every .rs2 file in the scripts directory, register the compiled
  scripts, and invoke script_name (matched case-insensitively) with the
  given integer arguments.
`
}
func (r *runCmd) SetFlags(f *flag.FlagSet) {}

func (r *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: rsc run <script_name> [args...]")
		return subcommands.ExitUsageError
	}
	scriptName, rawArgs := args[0], args[1:]

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	module, err := compileDirectory(cfg.ScriptsDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	canonical, ok := findScriptCaseInsensitive(module, scriptName)
	if !ok {
		fmt.Fprintf(os.Stderr, "no script named %q in %s\n", scriptName, cfg.ScriptsDir)
		return subcommands.ExitFailure
	}

	intArgs, err := parseIntArgs(rawArgs)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	machine := vm.New()
	machine.RegisterModule(module)

	result, err := machine.RunScript(canonical, intArgs)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	fmt.Println(result)
	return subcommands.ExitSuccess
}
