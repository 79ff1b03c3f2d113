package emit

import (
	"strconv"

	"github.com/quirrel-lang/qbc/ast"
	"github.com/quirrel-lang/qbc/instr"
)

// lowerObjectDef lowers an object literal per §4.2.1: each field is wrapped
// as a single-entry object, fields are grouped by their value's provenance,
// wrapped values within a group are joined pairwise (n fields: n-1 joins),
// and the per-group results are then joined across groups (g groups: g-1
// joins). Grouping changes field order in the emitted object relative to
// source order: the result is reordered by provenance group, with original
// relative order preserved only within each group.
func lowerObjectDef(e *Emission, n *ast.ObjectDef) error {
	groups := groupObjectFields(n.Fields)
	for _, group := range groups {
		for i, f := range group {
			e.Emit(instr.PushString(f.Key))
			if err := Lower(e, f.Value); err != nil {
				return err
			}
			e.Emit(instr.Map2Cross(instr.OpWrapObject))
			if i > 0 {
				if group[0].Value.Prov().IsValue() {
					e.Emit(instr.Map2Cross(instr.OpJoinObject))
				} else {
					e.Emit(instr.Map2Match(instr.OpJoinObject))
				}
			}
		}
	}
	for i := 1; i < len(groups); i++ {
		e.Emit(instr.Map2Cross(instr.OpJoinObject))
	}
	return nil
}

// groupObjectFields partitions fields into provenance groups, preserving
// the order each distinct provenance key was first seen in and each
// group's internal source order.
func groupObjectFields(fields []ast.ObjectField) [][]ast.ObjectField {
	var groups [][]ast.ObjectField
	index := make(map[string]int)
	for _, f := range fields {
		key := f.Value.Prov().Key()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], f)
	}
	return groups
}

// indexedExpr pairs an array element with its original source position, so
// grouping by provenance can later be undone.
type indexedExpr struct {
	srcIndex int
	value    ast.Expr
}

// lowerArrayDef lowers an array literal per §4.2.2: each value is wrapped
// as a single-element array, values are grouped by provenance exactly as
// object fields are, wrapped values are joined within and across groups the
// same way, and a final reorder pass restores source order by emitting
// ArraySwap instructions that walk each element back to its original
// position.
func lowerArrayDef(e *Emission, n *ast.ArrayDef) error {
	items := make([]indexedExpr, len(n.Values))
	for i, v := range n.Values {
		items[i] = indexedExpr{srcIndex: i, value: v}
	}

	groups := groupArrayItems(items)
	var order []int // order[physical position] = source index
	for _, group := range groups {
		for i, it := range group {
			if err := Lower(e, it.value); err != nil {
				return err
			}
			e.Emit(instr.Map1(instr.OpWrapArray))
			order = append(order, it.srcIndex)
			if i > 0 {
				if group[0].value.Prov().IsValue() {
					e.Emit(instr.Map2Cross(instr.OpJoinArray))
				} else {
					e.Emit(instr.Map2Match(instr.OpJoinArray))
				}
			}
		}
	}
	for i := 1; i < len(groups); i++ {
		e.Emit(instr.Map2Cross(instr.OpJoinArray))
	}

	emitArrayReorder(e, order)
	return nil
}

func groupArrayItems(items []indexedExpr) [][]indexedExpr {
	var groups [][]indexedExpr
	index := make(map[string]int)
	for _, it := range items {
		key := it.value.Prov().Key()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], it)
	}
	return groups
}

// emitArrayReorder restores source order within the single constructed
// array value, given order[physical position] = source index. For each
// target source index n in ascending order, it locates n's current
// physical position and walks it down to n via adjacent-position swaps,
// each emitted as push_string(k); Map2Cross(ArraySwap), where k is the
// lower of the two adjacent positions exchanged.
func emitArrayReorder(e *Emission, order []int) {
	cur := append([]int(nil), order...)
	for target := 0; target < len(cur); target++ {
		pos := -1
		for i := target; i < len(cur); i++ {
			if cur[i] == target {
				pos = i
				break
			}
		}
		for pos > target {
			k := pos - 1
			e.Emit(instr.PushString(strconv.Itoa(k)))
			e.Emit(instr.Map2Cross(instr.OpArraySwap))
			cur[pos], cur[pos-1] = cur[pos-1], cur[pos]
			pos--
		}
	}
}
