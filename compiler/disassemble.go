package compiler

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Disassemble renders a ByteCode as a human-readable instruction listing,
// one line per instruction.
func Disassemble(bc *ByteCode) string {
	var b strings.Builder
	fmt.Fprintf(&b, "script %s (%d instructions, %d locals)\n", bc.ScriptName, len(bc.Instructions), len(bc.Locals))
	for i, instr := range bc.Instructions {
		fmt.Fprintf(&b, "%4d  %-24s", i, instr.Op.String())
		switch {
		case instr.Op == OpPushConstantInt:
			fmt.Fprintf(&b, " %d", instr.IntOperand)
		case instr.Op == OpPushConstantString:
			fmt.Fprintf(&b, " %q", instr.StrOperand)
		case instr.StrOperand != "":
			fmt.Fprintf(&b, " %s", instr.StrOperand)
		case instr.Op == OpSwitch:
			for _, c := range instr.Cases {
				fmt.Fprintf(&b, " %d->%d", c.Value, c.Target)
			}
		case instr.Target != 0 || instr.Op == OpJump || instr.Op == OpBranch || instr.Op == OpBranchNot ||
			instr.Op == OpBranchEquals || instr.Op == OpBranchNotEquals || instr.Op == OpBranchLessThan ||
			instr.Op == OpBranchLessThanOrEquals || instr.Op == OpBranchGreaterThan || instr.Op == OpBranchGreaterThanOrEquals:
			fmt.Fprintf(&b, " ->%d", instr.Target)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// DisassembleModule renders every script in a Module, in map iteration
// order; the order of scripts is not stable between calls.
func DisassembleModule(module Module) string {
	var b strings.Builder
	for _, bc := range module {
		b.WriteString(Disassemble(bc))
		b.WriteByte('\n')
	}
	return b.String()
}

// DumpBytecode serializes a Module as indented JSON and writes it to path.
// The teacher's original format packed
// instructions into a fixed-width byte layout; this compiler's Instruction
// is already a tagged struct with index-based jump targets; JSON is a more
// faithful on-disk form for that model than reintroducing a byte packer.
func DumpBytecode(module Module, path string) error {
	data, err := json.MarshalIndent(module, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
