package instr_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quirrel-lang/qbc/instr"
)

// TestOperandStackDelta checks the fixed pop/push pairs against the
// per-opcode stack-effect comments in instr.go.
func TestOperandStackDelta(t *testing.T) {
	cases := []struct {
		name string
		ins  instr.Instruction
		pop  int
		push int
	}{
		{"PushString", instr.PushString("x"), 0, 1},
		{"PushNum", instr.PushNum("1"), 0, 1},
		{"Dup", instr.Dup(), 0, 1},
		{"Swap", instr.Swap(3), 0, 0},
		{"Line", instr.Line(1, "x"), 0, 0},
		{"Map1", instr.Map1(instr.OpNeg), 1, 1},
		{"Map2Cross", instr.Map2Cross(instr.OpAdd), 2, 1},
		{"Map2Match", instr.Map2Match(instr.OpAdd), 2, 1},
		{"FilterCross", instr.FilterCross(2, nil), 1, 0},
		{"FilterMatch", instr.FilterMatch(2, nil), 1, 0},
		{"Reduce", instr.Reduce(instr.OpSum), 1, 1},
		{"SetReduce", instr.SetReduce(instr.OpDistinct), 1, 1},
		{"LoadLocal", instr.LoadLocal("Het"), 1, 1},
		{"IUnion", instr.IUnion(), 2, 1},
		{"IIntersect", instr.IIntersect(), 2, 1},
		{"ZipBuckets", instr.ZipBuckets(true), 2, 1},
		{"Split", instr.Split(3, 5), 3, 5},
		{"Merge", instr.Merge(4), 5, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pop, push := tc.ins.OperandStackDelta()
			require.Equal(t, tc.pop, pop, "pop")
			require.Equal(t, tc.push, push, "push")
		})
	}
}

func TestSimulateDepthNonNegativeAndCumulative(t *testing.T) {
	seq := []instr.Instruction{
		instr.PushNum("1"),
		instr.PushNum("2"),
		instr.Map2Cross(instr.OpAdd),
		instr.Dup(),
	}
	depths := instr.SimulateDepth(seq)
	require.Equal(t, []int{1, 2, 1, 2}, depths)
}
