package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"

	"rsc/compiler"
	"rsc/lexer"
	"rsc/parser"
)

// compileDirectory lexes, parses, and compiles every .rs2 file under dir
// into a single Module, aggregating every file's errors into one
// *multierror.Error rather than stopping at the first failure.
func compileDirectory(dir string) (compiler.Module, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading scripts directory %s: %w", dir, err)
	}

	module := make(compiler.Module)
	var errs *multierror.Error

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".rs2") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		fileModule, err := compileFile(path)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		for name, bc := range fileModule {
			module[name] = bc
		}
	}

	if errs.ErrorOrNil() != nil {
		return nil, errs
	}
	return module, nil
}

func compileFile(path string) (compiler.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	lex := lexer.New(string(data))
	lex.Path = path
	tokens, err := lex.Scan()
	if err != nil {
		return nil, err
	}

	p := parser.Make(tokens)
	p.Path = path
	script, err := p.Parse()
	if err != nil {
		return nil, err
	}

	c := compiler.NewASTCompiler()
	return c.CompileModule(script)
}

// findScriptCaseInsensitive locates a trigger name in module matching name
// without regard to case, as the `run`/`aoc` subcommands require.
func findScriptCaseInsensitive(module map[string]*compiler.ByteCode, name string) (string, bool) {
	for candidate := range module {
		if strings.EqualFold(candidate, name) {
			return candidate, true
		}
	}
	return "", false
}

// parseIntArgs converts a slice of decimal strings to int32, erroring on
// the first one that doesn't parse.
func parseIntArgs(raw []string) ([]int32, error) {
	args := make([]int32, len(raw))
	for i, s := range raw {
		v, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("argument %d (%q) is not an integer: %w", i, s, err)
		}
		args[i] = int32(v)
	}
	return args, nil
}
