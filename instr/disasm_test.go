package instr_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quirrel-lang/qbc/instr"
)

func TestDisassembleRendersMnemonicsAndDepth(t *testing.T) {
	seq := []instr.Instruction{
		instr.PushNum("1"),
		instr.PushNum("2"),
		instr.Map2Cross(instr.OpAdd),
	}
	out := instr.Disassemble(seq)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	require.Contains(t, lines[0], "PushNum")
	require.Contains(t, lines[0], "depth=1")
	require.Contains(t, lines[2], "Map2Cross")
	require.Contains(t, lines[2], "Add")
	require.Contains(t, lines[2], "depth=1")
}
