package main

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeLineReader feeds canned lines to runREPL, then io.EOF, standing in
// for a real terminal so the REPL loop can be driven without one.
type fakeLineReader struct {
	lines []string
	pos   int
}

func (f *fakeLineReader) Readline() (string, error) {
	if f.pos >= len(f.lines) {
		return "", io.EOF
	}
	line := f.lines[f.pos]
	f.pos++
	return line, nil
}

func TestRunREPLEvaluatesEachLine(t *testing.T) {
	rl := &fakeLineReader{lines: []string{"return(calc(2 + 3));", "return(calc(10 / 2));"}}
	var out bytes.Buffer

	runREPL(rl, &out)

	assert.Equal(t, "5\n5\n", out.String())
}

func TestRunREPLPrintsErrorsAndKeepsGoing(t *testing.T) {
	rl := &fakeLineReader{lines: []string{"return(calc(1 / 0));", "return(calc(4 * 4));"}}
	var out bytes.Buffer

	runREPL(rl, &out)

	assert.Contains(t, out.String(), "16\n")
}

func TestRunREPLSkipsBlankLines(t *testing.T) {
	rl := &fakeLineReader{lines: []string{"", "return(calc(1 + 1));"}}
	var out bytes.Buffer

	runREPL(rl, &out)

	assert.Equal(t, "2\n", out.String())
}
