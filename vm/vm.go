// Package vm is a stack-based interpreter for compiled RuneScript bytecode:
// one operand stack, per-activation local variables, a gosub call chain
// implemented by Go's own call stack, a memoization cache, and a bounded
// instruction budget.
package vm

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/josharian/intern"

	"rsc/compiler"
	"rsc/diag"
)

const defaultMaxInstructions = 10_000_000

// VM holds one script registry, its memo cache, and the single active
// activation's mutable state. A GosubWithParams recurses into RunScript,
// which snapshots and restores this state around the nested call, so the
// Go call stack plays the role of the gosub call stack described by the
// spec.
type VM struct {
	modules map[string]*compiler.ByteCode
	cache   map[string]int32

	instructionCount int
	maxInstructions  int

	ip            int
	currentScript string
	variables     map[string]int32
	stack         []int32
}

func New() *VM {
	return &VM{
		modules:         make(map[string]*compiler.ByteCode),
		cache:           make(map[string]int32),
		maxInstructions: defaultMaxInstructions,
	}
}

// WithMaxInstructions overrides the default instruction budget, mainly for
// tests that want a runaway loop to trip quickly.
func (v *VM) WithMaxInstructions(n int) *VM {
	v.maxInstructions = n
	return v
}

// RegisterScript installs one compiled script, interning its name and local
// table so the hot execution loop below compares canonicalized strings.
func (v *VM) RegisterScript(bc *compiler.ByteCode) {
	name := intern.String(bc.ScriptName)
	bc.ScriptName = name
	for i, local := range bc.Locals {
		bc.Locals[i] = intern.String(local)
	}
	for i := range bc.Instructions {
		if bc.Instructions[i].StrOperand != "" {
			bc.Instructions[i].StrOperand = intern.String(bc.Instructions[i].StrOperand)
		}
	}
	v.modules[name] = bc
	diag.Logger().WithField("script", name).Debug("registered script")
}

// RegisterModule installs every script a compiler.Module holds.
func (v *VM) RegisterModule(m compiler.Module) {
	for _, bc := range m {
		v.RegisterScript(bc)
	}
}

func cacheKeyFor(name string, args []int32) string {
	var b strings.Builder
	b.WriteString(name)
	for _, a := range args {
		b.WriteByte('|')
		b.WriteString(strconv.FormatInt(int64(a), 10))
	}
	return b.String()
}

// RunScript is the VM's entry point: it consults the memo cache, then
// snapshots the active activation's state, installs a fresh one for name,
// executes it to completion, restores the snapshot, and caches the result.
func (v *VM) RunScript(name string, args []int32) (int32, error) {
	bc, ok := v.modules[name]
	if !ok {
		return 0, NewScriptNotFoundError(name)
	}

	key := cacheKeyFor(bc.ScriptName, args)
	if cached, ok := v.cache[key]; ok {
		diag.Logger().WithField("script", bc.ScriptName).Debug("memo hit")
		return cached, nil
	}

	savedIP := v.ip
	savedScript := v.currentScript
	savedVars := v.variables
	savedStack := v.stack

	v.variables = make(map[string]int32, len(args)+len(bc.Locals))
	v.stack = nil
	for i, a := range args {
		v.variables[intern.String(fmt.Sprintf("arg%d", i))] = a
	}
	v.currentScript = bc.ScriptName
	v.ip = 0

	result, err := v.execute(bc)

	v.ip = savedIP
	v.currentScript = savedScript
	v.variables = savedVars
	v.stack = savedStack

	if err != nil {
		return 0, err
	}

	v.cache[key] = result
	return result, nil
}

func (v *VM) execute(bc *compiler.ByteCode) (int32, error) {
	for {
		v.instructionCount++
		if v.instructionCount > v.maxInstructions {
			diag.Logger().WithField("script", bc.ScriptName).Warn("instruction budget exceeded")
			return 0, NewInstructionBudgetExceededError(bc.ScriptName)
		}
		if v.ip < 0 || v.ip >= len(bc.Instructions) {
			return 0, NewUnsupportedInstructionError(bc.ScriptName, "instruction pointer out of range")
		}
		instr := bc.Instructions[v.ip]

		switch instr.Op {
		case compiler.OpPushConstantInt:
			v.push(instr.IntOperand)
			v.ip++

		case compiler.OpPushConstantString:
			v.ip++

		case compiler.OpPushIntLocal:
			v.push(v.variables[instr.StrOperand])
			v.ip++

		case compiler.OpPopIntLocal:
			val, err := v.pop(bc.ScriptName)
			if err != nil {
				return 0, err
			}
			v.variables[instr.StrOperand] = val
			v.ip++

		case compiler.OpAdd, compiler.OpSubtract, compiler.OpMultiply, compiler.OpDivide:
			b, err := v.pop(bc.ScriptName)
			if err != nil {
				return 0, err
			}
			a, err := v.pop(bc.ScriptName)
			if err != nil {
				return 0, err
			}
			result, err := applyArith(instr.Op, a, b, bc.ScriptName)
			if err != nil {
				return 0, err
			}
			v.push(result)
			v.ip++

		case compiler.OpBranch:
			v.ip = instr.Target

		case compiler.OpBranchNot:
			val, err := v.pop(bc.ScriptName)
			if err != nil {
				return 0, err
			}
			if val == 0 {
				v.ip = instr.Target
			} else {
				v.ip++
			}

		case compiler.OpBranchEquals, compiler.OpBranchNotEquals, compiler.OpBranchLessThan,
			compiler.OpBranchLessThanOrEquals, compiler.OpBranchGreaterThan, compiler.OpBranchGreaterThanOrEquals:
			b, err := v.pop(bc.ScriptName)
			if err != nil {
				return 0, err
			}
			a, err := v.pop(bc.ScriptName)
			if err != nil {
				return 0, err
			}
			if compareOp(instr.Op, a, b) {
				v.ip = instr.Target
			} else {
				v.ip++
			}

		case compiler.OpJump:
			v.ip = instr.Target

		case compiler.OpSwitch:
			val, err := v.pop(bc.ScriptName)
			if err != nil {
				return 0, err
			}
			target := v.ip + 1
			for _, c := range instr.Cases {
				if c.Value == val {
					target = c.Target
					break
				}
			}
			v.ip = target

		case compiler.OpReturn:
			return v.pop(bc.ScriptName)

		case compiler.OpGosub:
			result, err := v.RunScript(instr.StrOperand, nil)
			if err != nil {
				return 0, err
			}
			v.push(result)
			v.ip++

		case compiler.OpGosubWithParams:
			count, err := v.pop(bc.ScriptName)
			if err != nil {
				return 0, err
			}
			args := make([]int32, count)
			for i := int(count) - 1; i >= 0; i-- {
				a, err := v.pop(bc.ScriptName)
				if err != nil {
					return 0, err
				}
				args[i] = a
			}
			result, err := v.RunScript(instr.StrOperand, args)
			if err != nil {
				return 0, err
			}
			v.push(result)
			v.ip++

		default:
			return 0, NewUnsupportedInstructionError(bc.ScriptName, instr.Op.String())
		}
	}
}

func (v *VM) push(val int32) {
	v.stack = append(v.stack, val)
}

func (v *VM) pop(scriptName string) (int32, error) {
	n := len(v.stack)
	if n == 0 {
		return 0, NewStackUnderflowError(scriptName)
	}
	val := v.stack[n-1]
	v.stack = v.stack[:n-1]
	return val, nil
}

func applyArith(op compiler.Op, a, b int32, scriptName string) (int32, error) {
	switch op {
	case compiler.OpAdd:
		sum := int64(a) + int64(b)
		if sum > math.MaxInt32 || sum < math.MinInt32 {
			return 0, NewOverflowError(scriptName)
		}
		return int32(sum), nil
	case compiler.OpSubtract:
		diff := int64(a) - int64(b)
		if diff > math.MaxInt32 || diff < math.MinInt32 {
			return 0, NewOverflowError(scriptName)
		}
		return int32(diff), nil
	case compiler.OpMultiply:
		prod := int64(a) * int64(b)
		if prod > math.MaxInt32 || prod < math.MinInt32 {
			return 0, NewOverflowError(scriptName)
		}
		return int32(prod), nil
	case compiler.OpDivide:
		if b == 0 {
			return 0, NewDivByZeroError(scriptName)
		}
		if a == math.MinInt32 && b == -1 {
			return 0, NewOverflowError(scriptName)
		}
		return a / b, nil
	default:
		return 0, NewUnsupportedInstructionError(scriptName, op.String())
	}
}

func compareOp(op compiler.Op, a, b int32) bool {
	switch op {
	case compiler.OpBranchEquals:
		return a == b
	case compiler.OpBranchNotEquals:
		return a != b
	case compiler.OpBranchLessThan:
		return a < b
	case compiler.OpBranchLessThanOrEquals:
		return a <= b
	case compiler.OpBranchGreaterThan:
		return a > b
	case compiler.OpBranchGreaterThanOrEquals:
		return a >= b
	default:
		return false
	}
}
