package instr

import (
	"fmt"
	"strconv"
	"strings"
)

// Disassemble renders a sequence of instructions in "%04d OP operand
// operand" form, one line per instruction, with a trailing running-depth
// annotation per line.
func Disassemble(seq []Instruction) string {
	var out strings.Builder
	depths := SimulateDepth(seq)
	for i, ins := range seq {
		depth := 0
		if i < len(depths) {
			depth = depths[i]
		}
		fmt.Fprintf(&out, "%04d %-40s ; depth=%d\n", i, formatInstruction(ins), depth)
	}
	return out.String()
}

// formatInstruction renders a single instruction's mnemonic and operands.
func formatInstruction(i Instruction) string {
	switch i.Op {
	case OpPushString:
		return fmt.Sprintf("%s %q", i.Op, i.Str)
	case OpPushNum:
		return fmt.Sprintf("%s %s", i.Op, i.Str)
	case OpPushTrue, OpPushFalse, OpDup, OpIUnion, OpIIntersect:
		return i.Op.String()
	case OpSwap:
		return fmt.Sprintf("%s %d", i.Op, i.N)
	case OpLine:
		return fmt.Sprintf("%s %d %q", i.Op, i.Line, i.Text)
	case OpMap1, OpMap2Cross, OpMap2Match, OpReduce, OpSetReduce:
		return fmt.Sprintf("%s %s", i.Op, i.Operator)
	case OpFilterCross, OpFilterMatch:
		pred := "None"
		if i.Pred != nil {
			pred = *i.Pred
		}
		return fmt.Sprintf("%s %d %s", i.Op, i.N, pred)
	case OpLoadLocal:
		return fmt.Sprintf("%s %s", i.Op, i.LocalKind)
	case OpZipBuckets:
		return fmt.Sprintf("%s disjoint=%s", i.Op, strconv.FormatBool(i.Disjoint))
	case OpSplit:
		return fmt.Sprintf("%s %d %d", i.Op, i.N, i.K)
	case OpMerge:
		// Merge carries no operand in the emitted alphabet; its frame
		// size (i.K) is bookkeeping for OperandStackDelta only.
		return i.Op.String()
	default:
		return i.Op.String()
	}
}
