package emit

import (
	"github.com/quirrel-lang/qbc/ast"
	"github.com/quirrel-lang/qbc/instr"
)

// emitConstraintCheck lowers n's precomputed constraining expression, if
// any, and filters n's just-produced value down to the rows where it
// evaluates truthy, per §4.5.
//
// Three cases emit nothing: no constraint attached, the constraint is n
// itself (ignoring source location), or some child of n carries the same
// constraint (meaning the child already applied it when it was lowered).
// Otherwise the constraint is lowered and compared against itself via
// Dup/Map2Match(Eq), then used to filter n's value — the row-aligned
// equality check is what threads the constraint's per-row truthiness
// through to the filter rather than a raw boolean.
func emitConstraintCheck(e *Emission, n ast.Expr) error {
	c := n.Constraint()
	if c == nil {
		return nil
	}
	if ast.Equal(c, n) {
		return nil
	}
	for _, child := range ast.Children(n) {
		if child != nil && ast.Equal(child.Constraint(), c) {
			return nil
		}
	}

	if err := Lower(e, c); err != nil {
		return err
	}
	e.Emit(instr.Dup())
	e.Emit(instr.Map2Match(instr.OpEq))
	e.Emit(instr.FilterMatch(0, nil))
	return nil
}
