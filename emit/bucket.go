package emit

import (
	"github.com/quirrel-lang/qbc/ast"
	"github.com/quirrel-lang/qbc/instr"
)

// lowerGroupingDispatch lowers a solve dispatch: each named bucket is
// lowered to a single value, the bucket values open a grouping frame via
// Split, every tic-var and every first-seen group within each bucket is
// marked at the offset the Split frame gives it, the let's body is lowered
// inside that frame, and Merge closes it back down to one result.
func lowerGroupingDispatch(e *Emission, n *ast.Dispatch) error {
	let := n.Binding.Let
	if let == nil {
		return &NotImplementedError{Node: n, Detail: "grouping dispatch with nil let binding"}
	}

	for _, nb := range n.Buckets {
		if err := lowerBucket(e, nb.Bucket); err != nil {
			return err
		}
	}

	numBuckets := len(n.Buckets)
	totalOrigins := 0
	perBucketOrigins := make([][]*ast.Where, numBuckets)
	for i, nb := range n.Buckets {
		origins := ast.Origins(nb.Bucket)
		perBucketOrigins[i] = origins
		totalOrigins += len(origins)
	}
	k := numBuckets + totalOrigins

	e.Emit(instr.Split(numBuckets, k))
	end := len(e.Bytecode())

	// Walk buckets in source order, tic-var then its first-seen groups,
	// recording a creation index; the Split frame's physical layout places
	// the last bucket's last group nearest the top and the first bucket's
	// tic-var nearest the bottom, so the actual offset is the mirror of
	// the creation index around k-1.
	created := 0
	markedOrigins := make(map[*ast.Where]bool)
	for i, nb := range n.Buckets {
		e.Mark(TicVarKey(n, nb.Name), end, k-1-created)
		created++
		for _, origin := range perBucketOrigins[i] {
			if markedOrigins[origin] {
				created++
				continue
			}
			markedOrigins[origin] = true
			e.Mark(GroupKey(origin), end, k-1-created)
			created++
		}
	}

	e.pushDispatchSite(let, n)
	if err := Lower(e, let.Left); err != nil {
		e.popDispatchSite()
		return err
	}
	e.popDispatchSite()

	e.Emit(instr.Merge(k))
	return nil
}

// lowerBucket lowers a bucket tree to a single value: Union and Intersect
// zip their subbuckets' values together (disjoint=false, true
// respectively), and a Group leaf lowers its solved Solution forest.
func lowerBucket(e *Emission, b ast.Bucket) error {
	switch n := b.(type) {
	case *ast.UnionBucket:
		if err := lowerBucket(e, n.Left); err != nil {
			return err
		}
		if err := lowerBucket(e, n.Right); err != nil {
			return err
		}
		e.Emit(instr.ZipBuckets(false))
		return nil
	case *ast.IntersectBucket:
		if err := lowerBucket(e, n.Left); err != nil {
			return err
		}
		if err := lowerBucket(e, n.Right); err != nil {
			return err
		}
		e.Emit(instr.ZipBuckets(true))
		return nil
	case *ast.Group:
		if n.Forest == nil {
			return &NotImplementedError{Detail: "group bucket with nil solution forest"}
		}
		if err := lowerSolution(e, n.Forest); err != nil {
			return err
		}
		e.SetBucketExtras(n.Origin, n.Extras)
		return nil
	default:
		return &NotImplementedError{Detail: "unrecognized bucket node"}
	}
}

// lowerSolution lowers a grouping condition tree to a single value:
// Conjunction/Disjunction combine their subtrees via a row-aligned And/Or
// (grouping conditions over the same origin are always aligned, never a
// cross product), and a Definition leaf is just its defining expression.
func lowerSolution(e *Emission, s ast.Solution) error {
	switch n := s.(type) {
	case *ast.Definition:
		return Lower(e, n.Expr)
	case *ast.Conjunction:
		if err := lowerSolution(e, n.Left); err != nil {
			return err
		}
		if err := lowerSolution(e, n.Right); err != nil {
			return err
		}
		e.Emit(instr.Map2Match(instr.OpAnd))
		return nil
	case *ast.Disjunction:
		if err := lowerSolution(e, n.Left); err != nil {
			return err
		}
		if err := lowerSolution(e, n.Right); err != nil {
			return err
		}
		e.Emit(instr.Map2Match(instr.OpOr))
		return nil
	default:
		return &NotImplementedError{Detail: "unrecognized solution node"}
	}
}
