package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/google/subcommands"

	"rsc/config"
	"rsc/vm"
)

type aocCmd struct{}

func (*aocCmd) Name() string     { return "aoc" }
func (*aocCmd) Synopsis() string { return "run a two-column script over a whitespace-separated data file" }
func (*aocCmd) Usage() string {
	return `aoc <script_name> <data_file>:
  Parse data_file as whitespace-separated integer pairs, one pair per line,
  sort each column independently, invoke script_name on each row of the two
  sorted columns, and print the accumulated total.
`
}
func (a *aocCmd) SetFlags(f *flag.FlagSet) {}

func (a *aocCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: rsc aoc <script_name> <data_file>")
		return subcommands.ExitUsageError
	}
	scriptName, dataFile := args[0], args[1]

	colA, colB, err := readColumns(dataFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	sort.Slice(colA, func(i, j int) bool { return colA[i] < colA[j] })
	sort.Slice(colB, func(i, j int) bool { return colB[i] < colB[j] })

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

	machine := vm.New()
	machine.RegisterModule(module)

	var total int64
	for i := range colA {
		result, err := machine.RunScript(canonical, []int32{colA[i], colB[i]})
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		total += int64(result)
	}

	fmt.Println(total)
	return subcommands.ExitSuccess
}

func readColumns(path string) ([]int32, []int32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	var colA, colB []int32
	scanner := bufio.NewScanner(f)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, nil, fmt.Errorf("%s:%d: expected two whitespace-separated integers, got %q", path, lineNo, line)
		}
		a, err := strconv.ParseInt(fields[0], 10, 32)
		if err != nil {
			return nil, nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		b, err := strconv.ParseInt(fields[1], 10, 32)
		if err != nil {
			return nil, nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		colA = append(colA, int32(a))
		colB = append(colB, int32(b))
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	return colA, colB, nil
}
