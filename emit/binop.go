package emit

import (
	"github.com/quirrel-lang/qbc/ast"
	"github.com/quirrel-lang/qbc/instr"
)

// isCross reports whether two operand provenances require cross (Cartesian
// product) semantics rather than match (row-aligned) semantics, per §4.4:
// operands whose possibility sets share no path (after excluding the Value
// and Null sentinels from the comparison) combine via cross; operands that
// share at least one path combine via match.
func isCross(a, b ast.Provenance) bool {
	return len(ast.SharedPossibilities(a, b)) == 0
}

// requireProvenance rejects the null-provenance sentinel at a site that is
// about to make a cross/match decision from it. Per §7, a null provenance
// reaching the emitter signals that an earlier pass should have already
// rejected the tree; the emitter reports it rather than guessing.
func requireProvenance(p ast.Provenance) error {
	if p.IsNull() {
		return &NullProvenanceError{}
	}
	return nil
}

// emitMap2 lowers left and right, then emits Map2Cross or Map2Match for op
// depending on their provenances. It is the shared core behind Binary,
// With, Deref, and binary stdlib dispatch. Union and Intersect do not use
// it (see lowerUnion), and Descent shares only the cross/match choice via
// emitCombine2.
func emitMap2(e *Emission, left, right ast.Expr, op instr.Operator) error {
	if err := Lower(e, left); err != nil {
		return err
	}
	if err := Lower(e, right); err != nil {
		return err
	}
	if err := requireProvenance(left.Prov()); err != nil {
		return err
	}
	if err := requireProvenance(right.Prov()); err != nil {
		return err
	}
	emitCombine2(e, left.Prov(), right.Prov(), op)
	return nil
}

// emitCombine2 emits the Map2Cross/Map2Match decision for two already-pushed
// operands given their provenances, without lowering anything itself.
func emitCombine2(e *Emission, leftProv, rightProv ast.Provenance, op instr.Operator) {
	if isCross(leftProv, rightProv) {
		e.Emit(instr.Map2Cross(op))
	} else {
		e.Emit(instr.Map2Match(op))
	}
}

var binOpOperator = map[ast.BinOp]instr.Operator{
	ast.Add:   instr.OpAdd,
	ast.Sub:   instr.OpSub,
	ast.Mul:   instr.OpMul,
	ast.Div:   instr.OpDiv,
	ast.Lt:    instr.OpLt,
	ast.LtEq:  instr.OpLtEq,
	ast.Gt:    instr.OpGt,
	ast.GtEq:  instr.OpGtEq,
	ast.Eq:    instr.OpEq,
	ast.NotEq: instr.OpNotEq,
	ast.Or:    instr.OpOr,
	ast.And:   instr.OpAnd,
}

func lowerBinary(e *Emission, n *ast.Binary) error {
	op, ok := binOpOperator[n.Op]
	if !ok {
		return &NotImplementedError{Node: n, Detail: "unrecognized binary operator"}
	}
	return emitMap2(e, n.Left, n.Right, op)
}

func lowerWith(e *Emission, n *ast.With) error {
	return emitMap2(e, n.Left, n.Right, instr.OpJoinObject)
}

// lowerUnion and lowerIntersect lower Quirrel's set union/intersection.
// Unlike Binary/With, these combine via the dedicated IUnion/IIntersect
// instructions rather than Map2Cross/Map2Match: the set operation itself
// dictates how the two operands combine, with no cross-vs-match choice to
// make.
func lowerUnion(e *Emission, n *ast.Union) error {
	if err := Lower(e, n.Left); err != nil {
		return err
	}
	if err := Lower(e, n.Right); err != nil {
		return err
	}
	e.Emit(instr.IUnion())
	return nil
}

func lowerIntersect(e *Emission, n *ast.Intersect) error {
	if err := Lower(e, n.Left); err != nil {
		return err
	}
	if err := Lower(e, n.Right); err != nil {
		return err
	}
	e.Emit(instr.IIntersect())
	return nil
}

// lowerDescent lowers `child.property` as a synthetic binary combine: the
// child value against a pushed string literal naming the property, which
// always carries value provenance. Since a string literal's possibility set
// is the Value sentinel and SharedPossibilities always excludes that
// sentinel, the shared set is empty regardless of child's provenance, so
// Descent always combines via DerefObject cross — emitCombine2 is used
// anyway rather than hardcoding Map2Cross, so the rule stays in one place.
func lowerDescent(e *Emission, n *ast.Descent) error {
	if err := Lower(e, n.Child); err != nil {
		return err
	}
	if err := requireProvenance(n.Child.Prov()); err != nil {
		return err
	}
	e.Emit(instr.PushString(n.Property))
	emitCombine2(e, n.Child.Prov(), ast.ValueProvenance(), instr.OpDerefObject)
	return nil
}

func lowerDeref(e *Emission, n *ast.Deref) error {
	return emitMap2(e, n.Left, n.Right, instr.OpDerefArray)
}

// lowerWhere lowers a row-filtering expression. When n is a grouping
// origin already produced inside an enclosing Split frame, the recorded
// group value is reused by dup rather than re-filtering from scratch.
func lowerWhere(e *Emission, n *ast.Where) error {
	return e.EmitOrDup(GroupKey(n), func() error {
		return emitFilter(e, n.Left, n.Right, 0, nil)
	})
}

// emitFilter lowers left and right, then emits FilterCross or FilterMatch
// at the given depth with the given static predicate reference (nil for
// "None").
func emitFilter(e *Emission, left, right ast.Expr, depth int, pred *string) error {
	if err := Lower(e, left); err != nil {
		return err
	}
	if err := Lower(e, right); err != nil {
		return err
	}
	if err := requireProvenance(left.Prov()); err != nil {
		return err
	}
	if err := requireProvenance(right.Prov()); err != nil {
		return err
	}
	if isCross(left.Prov(), right.Prov()) {
		e.Emit(instr.FilterCross(depth, pred))
	} else {
		e.Emit(instr.FilterMatch(depth, pred))
	}
	return nil
}
