// Package emit implements the Quirrel bytecode emitter: the lowering
// algorithm that walks a fully elaborated AST (see the ast package) and
// produces a linear sequence of instructions (see the instr package) for a
// stack-based virtual machine. The VM itself, and everything upstream of
// the AST (parsing, name binding, provenance checking, grouping solving),
// are out of scope — this package only lowers.
//
// Four collaborating pieces do the work, matching the specification's
// component breakdown:
//   - Emission state (this file): the growing instruction buffer, the mark
//     table, the bucket table, and the running operand-stack depth needed
//     to splice retroactively.
//   - The expression lowerer (lower.go, binop.go, objects.go): recursive
//     lowering for each AST node kind.
//   - The mark-and-dup engine (dup.go): records positions of previously
//     emitted values and splices Dup/Swap sequences into the already
//     emitted stream on reuse.
//   - The bucket/solution lowerer (bucket.go): lowers grouping constructs
//     into Split/Merge frames.
package emit

import (
	"fmt"

	"github.com/quirrel-lang/qbc/ast"
	"github.com/quirrel-lang/qbc/instr"
)

// markKeyKind tags which MarkKey variant is populated.
type markKeyKind int

const (
	kindExpr markKeyKind = iota
	kindTicVar
	kindDispatch
	kindGroup
)

// MarkKey identifies what a Mark records, per the specification's four
// variants: a subexpression's result, a tic-variable binding, a complete
// let-dispatch result, or a per-group value inside a Split frame.
type MarkKey struct {
	kind    markKeyKind
	expr    ast.Expr
	let     *ast.Let
	site    *ast.Dispatch
	name    string
	actuals string
	where   *ast.Where
}

// ExprKey builds the MarkKey for a subexpression's result (used for
// zero-arity let-bound names).
func ExprKey(e ast.Expr) MarkKey { return MarkKey{kind: kindExpr, expr: e} }

// TicVarKey builds the MarkKey for a tic-variable parameter binding. site
// is the specific Dispatch call lowering the let's body, so two calls to
// the same let at different sites get independent bindings for the same
// parameter name.
func TicVarKey(site *ast.Dispatch, name string) MarkKey {
	return MarkKey{kind: kindTicVar, site: site, name: name}
}

// DispatchKey builds the MarkKey for a complete let-dispatch result with a
// specific actuals tuple. Actuals are identified by pointer identity (two
// Dispatch nodes sharing the exact same actual Expr values — not merely
// equal-looking ones — denote the same dispatch site).
func DispatchKey(let *ast.Let, actuals []ast.Expr) MarkKey {
	return MarkKey{kind: kindDispatch, let: let, actuals: encodeActuals(actuals)}
}

// GroupKey builds the MarkKey for a per-group value emitted inside a Split
// frame for a given where-clause.
func GroupKey(where *ast.Where) MarkKey { return MarkKey{kind: kindGroup, where: where} }

func encodeActuals(actuals []ast.Expr) string {
	s := ""
	for _, a := range actuals {
		s += fmt.Sprintf("%p,", a)
	}
	return s
}

// String renders a MarkKey for diagnostic messages.
func (k MarkKey) String() string {
	switch k.kind {
	case kindExpr:
		return fmt.Sprintf("Expr(%p)", k.expr)
	case kindTicVar:
		return fmt.Sprintf("TicVar(%p,%s)", k.site, k.name)
	case kindDispatch:
		return fmt.Sprintf("Dispatch(%p,%s)", k.let, k.actuals)
	case kindGroup:
		return fmt.Sprintf("Group(%p)", k.where)
	default:
		return "MarkKey(?)"
	}
}

// Mark locates a previously emitted value: index is the bytecode position
// immediately after the value was produced, offset is its depth below the
// top of stack at the moment of marking.
type Mark struct {
	Index  int
	Offset int
}

// Emission accumulates the growing bytecode, the mark table, the bucket
// table, and the most recent source-line marker, threaded through every
// lowering step. It plays the role a compiler's emission state plays for
// any stack VM target, generalized from "patch one fixed-width jump
// operand" to "splice an arbitrary-length instruction sequence at an
// arbitrary position and shift every later mark past it", which grouping
// and value-reuse support both require.
type Emission struct {
	bytecode  []instr.Instruction
	depths    []int // depths[i] = running stack depth after bytecode[0..i]
	marks     map[MarkKey]Mark
	buckets   map[*ast.Where][]ast.Expr
	curLine   *ast.Loc
	siteStack []dispatchFrame
}

// dispatchFrame records which Dispatch node is currently lowering a given
// let's body, so a 'name reference inside that body resolves to the right
// call site's TicVar marks (see TicVarKey).
type dispatchFrame struct {
	let  *ast.Let
	site *ast.Dispatch
}

// pushDispatchSite enters the body of let, being lowered for site.
func (e *Emission) pushDispatchSite(let *ast.Let, site *ast.Dispatch) {
	e.siteStack = append(e.siteStack, dispatchFrame{let: let, site: site})
}

// popDispatchSite leaves the innermost entered let body.
func (e *Emission) popDispatchSite() {
	e.siteStack = e.siteStack[:len(e.siteStack)-1]
}

// currentDispatchSite finds the innermost entered call site for let, for
// resolving a tic-variable reference inside its body.
func (e *Emission) currentDispatchSite(let *ast.Let) (*ast.Dispatch, bool) {
	for i := len(e.siteStack) - 1; i >= 0; i-- {
		if e.siteStack[i].let == let {
			return e.siteStack[i].site, true
		}
	}
	return nil, false
}

// New creates an empty Emission.
func New() *Emission {
	return &Emission{
		marks:   make(map[MarkKey]Mark),
		buckets: make(map[*ast.Where][]ast.Expr),
	}
}

// Bytecode returns the accumulated instruction sequence.
func (e *Emission) Bytecode() []instr.Instruction { return e.bytecode }

// DepthAt returns S(i), the running operand-stack depth after the first i
// instructions (0 if i <= 0).
func (e *Emission) DepthAt(i int) int {
	if i <= 0 {
		return 0
	}
	if i > len(e.depths) {
		i = len(e.depths)
	}
	return e.depths[i-1]
}

// Depth returns the current (end-of-bytecode) operand-stack depth.
func (e *Emission) Depth() int { return e.DepthAt(len(e.bytecode)) }

// Emit appends a single instruction and returns its position.
func (e *Emission) Emit(i instr.Instruction) int {
	pos := len(e.bytecode)
	e.spliceAt(pos, []instr.Instruction{i})
	return pos
}

// EmitAt splices a sequence of instructions at absolute position idx
// (negative idx counts from the end, per §4.1). Every mark with index > idx
// has its index increased by len(seq); marks with index <= idx are
// unchanged.
func (e *Emission) EmitAt(idx int, seq ...instr.Instruction) {
	if idx < 0 {
		idx = len(e.bytecode) + idx
	}
	e.spliceAt(idx, seq)
}

// spliceAt is the single primitive both Emit and EmitAt funnel through: it
// inserts seq at idx, recomputes depths for the inserted region, shifts
// every later depth by the inserted sequence's net delta, and shifts every
// mark past idx.
func (e *Emission) spliceAt(idx int, seq []instr.Instruction) {
	if len(seq) == 0 {
		return
	}
	base := e.DepthAt(idx)
	newDepths := make([]int, len(seq))
	d := base
	for i, ins := range seq {
		pop, push := ins.OperandStackDelta()
		d += push - pop
		newDepths[i] = d
	}
	netDelta := d - base

	bc := make([]instr.Instruction, 0, len(e.bytecode)+len(seq))
	bc = append(bc, e.bytecode[:idx]...)
	bc = append(bc, seq...)
	bc = append(bc, e.bytecode[idx:]...)
	e.bytecode = bc

	depths := make([]int, 0, len(e.depths)+len(seq))
	depths = append(depths, e.depths[:idx]...)
	depths = append(depths, newDepths...)
	for _, dv := range e.depths[idx:] {
		depths = append(depths, dv+netDelta)
	}
	e.depths = depths

	for k, m := range e.marks {
		if m.Index > idx {
			m.Index += len(seq)
			e.marks[k] = m
		}
	}
}

// EmitLine emits a Line marker for loc unless it is identical to the most
// recently emitted one (I5: consecutive identical line markers are
// suppressed).
func (e *Emission) EmitLine(loc ast.Loc) {
	if e.curLine != nil && *e.curLine == loc {
		return
	}
	e.Emit(instr.Line(loc.Line, loc.Text))
	cur := loc
	e.curLine = &cur
}

// Mark inserts key -> (idx, offset) into the mark table. It panics if key
// is already present: per I4, a MarkKey is inserted exactly once, and a
// second insertion attempt is a programmer error in the emitter itself, not
// a recoverable condition.
func (e *Emission) Mark(key MarkKey, idx, offset int) {
	if _, exists := e.marks[key]; exists {
		panic("emit: mark key already present: " + key.String())
	}
	e.marks[key] = Mark{Index: idx, Offset: offset}
}

// HasMark reports whether key has already been marked.
func (e *Emission) HasMark(key MarkKey) bool {
	_, ok := e.marks[key]
	return ok
}

// MarkOf returns the Mark recorded for key, if any.
func (e *Emission) MarkOf(key MarkKey) (Mark, bool) {
	m, ok := e.marks[key]
	return m, ok
}

// SetBucketExtras records the extras set (filter predicates) associated
// with a group's origin where-clause, carried for later reference.
func (e *Emission) SetBucketExtras(where *ast.Where, extras []ast.Expr) {
	e.buckets[where] = extras
}

// BucketExtras looks up the extras set recorded for where, if any.
func (e *Emission) BucketExtras(where *ast.Where) ([]ast.Expr, bool) {
	extras, ok := e.buckets[where]
	return extras, ok
}
