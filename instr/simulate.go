package instr

// SimulateDepth independently recomputes the running operand-stack depth
// after each instruction in seq, using only each instruction's static
// OperandStackDelta. It returns one depth per instruction.
//
// This exists as a check separate from the emitter's own internal
// bookkeeping (emit.Emission tracks depths incrementally as it builds the
// sequence): tests can lower an expression, take the finished
// []Instruction, and verify P1 (non-negative depth at every prefix) and P2
// (final depth 1) against a from-scratch recomputation rather than
// trusting the emitter's internal state to have tracked itself correctly.
func SimulateDepth(seq []Instruction) []int {
	depths := make([]int, len(seq))
	depth := 0
	for i, ins := range seq {
		pop, push := ins.OperandStackDelta()
		depth += push - pop
		depths[i] = depth
	}
	return depths
}
