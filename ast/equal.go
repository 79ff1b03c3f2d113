package ast

// Equal reports whether a and b are the same expression shape, ignoring
// source location: same node kind, same literal/operator/name fields, and
// recursively equal children. *Let references (TicVar/Dispatch bindings)
// are compared by identity rather than recursed into, matching §9's
// "shared immutable handle" treatment of binder back-edges.
//
// Used by the constraint-emission rule (§4.5), which must recognize when
// a node's constraining expression is the node itself, or already applied
// by one of its children, without relying on pointer identity (the same
// logical constraint may be attached to multiple nodes as distinct AST
// copies).
func Equal(a, b Expr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch x := a.(type) {
	case *Str:
		y, ok := b.(*Str)
		return ok && x.Value == y.Value
	case *Num:
		y, ok := b.(*Num)
		return ok && x.Value == y.Value
	case *Bool:
		y, ok := b.(*Bool)
		return ok && x.Value == y.Value
	case *New:
		y, ok := b.(*New)
		return ok && Equal(x.Child, y.Child)
	case *Neg:
		y, ok := b.(*Neg)
		return ok && Equal(x.Child, y.Child)
	case *Comp:
		y, ok := b.(*Comp)
		return ok && Equal(x.Child, y.Child)
	case *Paren:
		y, ok := b.(*Paren)
		return ok && Equal(x.Child, y.Child)
	case *Relate:
		y, ok := b.(*Relate)
		return ok && Equal(x.From, y.From) && Equal(x.To, y.To) && Equal(x.In, y.In)
	case *Let:
		y, ok := b.(*Let)
		return ok && x == y
	case *TicVar:
		y, ok := b.(*TicVar)
		return ok && x.Name == y.Name && x.BindingLet == y.BindingLet
	case *Binary:
		y, ok := b.(*Binary)
		return ok && x.Op == y.Op && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case *Descent:
		y, ok := b.(*Descent)
		return ok && x.Property == y.Property && Equal(x.Child, y.Child)
	case *Deref:
		y, ok := b.(*Deref)
		return ok && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case *With:
		y, ok := b.(*With)
		return ok && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case *Where:
		y, ok := b.(*Where)
		return ok && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case *Union:
		y, ok := b.(*Union)
		return ok && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case *Intersect:
		y, ok := b.(*Intersect)
		return ok && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case *ObjectDef:
		y, ok := b.(*ObjectDef)
		if !ok || len(x.Fields) != len(y.Fields) {
			return false
		}
		for i := range x.Fields {
			if x.Fields[i].Key != y.Fields[i].Key || !Equal(x.Fields[i].Value, y.Fields[i].Value) {
				return false
			}
		}
		return true
	case *ArrayDef:
		y, ok := b.(*ArrayDef)
		if !ok || len(x.Values) != len(y.Values) {
			return false
		}
		for i := range x.Values {
			if !Equal(x.Values[i], y.Values[i]) {
				return false
			}
		}
		return true
	case *Dispatch:
		y, ok := b.(*Dispatch)
		if !ok || x.Name != y.Name || x.Binding.Let != y.Binding.Let || len(x.Actuals) != len(y.Actuals) {
			return false
		}
		for i := range x.Actuals {
			if !Equal(x.Actuals[i], y.Actuals[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// children returns n's immediate Expr children, for the constraint-check
// rule's "did a child already apply this constraint" search.
func children(n Expr) []Expr {
	switch x := n.(type) {
	case *New:
		return []Expr{x.Child}
	case *Neg:
		return []Expr{x.Child}
	case *Comp:
		return []Expr{x.Child}
	case *Paren:
		return []Expr{x.Child}
	case *Relate:
		return []Expr{x.From, x.To, x.In}
	case *Let:
		return []Expr{x.Left, x.Right}
	case *Binary:
		return []Expr{x.Left, x.Right}
	case *Descent:
		return []Expr{x.Child}
	case *Deref:
		return []Expr{x.Left, x.Right}
	case *With:
		return []Expr{x.Left, x.Right}
	case *Where:
		return []Expr{x.Left, x.Right}
	case *Union:
		return []Expr{x.Left, x.Right}
	case *Intersect:
		return []Expr{x.Left, x.Right}
	case *ObjectDef:
		out := make([]Expr, len(x.Fields))
		for i, f := range x.Fields {
			out[i] = f.Value
		}
		return out
	case *ArrayDef:
		return x.Values
	case *Dispatch:
		return x.Actuals
	default:
		return nil
	}
}

// Children exposes the immediate Expr children of n for callers outside
// this package (the constraint-emission rule in emit/constraint.go).
func Children(n Expr) []Expr { return children(n) }
