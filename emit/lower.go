package emit

import (
	"github.com/quirrel-lang/qbc/ast"
	"github.com/quirrel-lang/qbc/instr"
)

// Lower lowers a single expression node, wrapping the node-specific
// lowering in a source-line marker (suppressed when identical to the
// previous one) and a trailing constraint check (§4.5).
//
// Paren is the one exception: per the doc comment on ast.Paren, a
// parenthesized expression is transparent to the emitter. Its child's own
// Lower call already emits the line marker and constraint check that cover
// the same value, so a Paren node is unwrapped here before either of those
// steps runs, rather than after — wrapping it too would double up both.
func Lower(e *Emission, n ast.Expr) error {
	if p, ok := n.(*ast.Paren); ok {
		return Lower(e, p.Child)
	}

	e.EmitLine(n.Location())
	if err := lowerNode(e, n); err != nil {
		return err
	}
	return emitConstraintCheck(e, n)
}

// lowerNode dispatches on n's concrete type to the node-specific lowering
// function. It performs no line marking or constraint checking of its own;
// Lower wraps every call to it with both.
func lowerNode(e *Emission, n ast.Expr) error {
	switch n := n.(type) {
	case *ast.Str:
		e.Emit(instr.PushString(n.Value))
		return nil
	case *ast.Num:
		e.Emit(instr.PushNum(n.Value))
		return nil
	case *ast.Bool:
		if n.Value {
			e.Emit(instr.PushTrue())
		} else {
			e.Emit(instr.PushFalse())
		}
		return nil
	case *ast.New:
		return lowerUnary(e, n.Child, instr.OpNew)
	case *ast.Neg:
		return lowerUnary(e, n.Child, instr.OpNeg)
	case *ast.Comp:
		return lowerUnary(e, n.Child, instr.OpComp)
	case *ast.Relate:
		return Lower(e, n.In)
	case *ast.Let:
		return Lower(e, n.Right)
	case *ast.TicVar:
		return lowerTicVar(e, n)
	case *ast.Binary:
		return lowerBinary(e, n)
	case *ast.Descent:
		return lowerDescent(e, n)
	case *ast.Deref:
		return lowerDeref(e, n)
	case *ast.With:
		return lowerWith(e, n)
	case *ast.Where:
		return lowerWhere(e, n)
	case *ast.Union:
		return lowerUnion(e, n)
	case *ast.Intersect:
		return lowerIntersect(e, n)
	case *ast.ObjectDef:
		return lowerObjectDef(e, n)
	case *ast.ArrayDef:
		return lowerArrayDef(e, n)
	case *ast.Dispatch:
		return lowerDispatch(e, n)
	default:
		return &NotImplementedError{Node: n, Detail: "unrecognized expression node"}
	}
}

// lowerUnary lowers child, then applies op via Map1.
func lowerUnary(e *Emission, child ast.Expr, op instr.Operator) error {
	if err := Lower(e, child); err != nil {
		return err
	}
	e.Emit(instr.Map1(op))
	return nil
}
