package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"

	"github.com/google/subcommands"

	"rsc/config"
)

type configCmd struct{}

func (*configCmd) Name() string     { return "config" }
func (*configCmd) Synopsis() string { return "inspect or edit the RC file" }
func (*configCmd) Usage() string {
	return `config {edit|show|init|list}:
  edit: open the RC file in $EDITOR
  show: print the resolved environment
  init: write a default RC file if one doesn't exist
  list: print the RC file's aliases and exported variables
`
}
func (c *configCmd) SetFlags(f *flag.FlagSet) {}

func (c *configCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: rsc config {edit|show|init|list}")
		return subcommands.ExitUsageError
	}

	switch args[0] {
	case "show":
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		fmt.Print(config.Summary(cfg))
		return subcommands.ExitSuccess

	case "init":
		if _, err := config.LoadRCFile(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess

	case "list":
		contents, err := config.LoadRCFile()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		aliases, envVars := config.ParseRCFile(contents)
		for _, alias := range aliases {
			fmt.Println(alias)
		}
		for key, value := range envVars {
			fmt.Printf("export %s=%s\n", key, value)
		}
		return subcommands.ExitSuccess

	case "edit":
		path, err := config.RCPath()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		if _, err := config.LoadRCFile(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		editor := config.Editor()
		cmd := exec.Command(editor, path)
		cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
		if err := cmd.Run(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess

	default:
		fmt.Fprintf(os.Stderr, "unknown config subcommand %q\n", args[0])
		return subcommands.ExitUsageError
	}
}
