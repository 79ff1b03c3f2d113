package emit

import (
	"github.com/quirrel-lang/qbc/ast"
	"github.com/quirrel-lang/qbc/instr"
)

// Emit lowers a fully elaborated Quirrel expression tree into a linear
// instruction sequence for a stack-based virtual machine. It is the single
// public entry point of this package; everything else here is internal
// plumbing the lowering algorithm shares across node kinds.
func Emit(root ast.Expr) ([]instr.Instruction, error) {
	e := New()
	if err := Lower(e, root); err != nil {
		return nil, err
	}
	return e.Bytecode(), nil
}
