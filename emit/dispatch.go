package emit

import (
	"github.com/quirrel-lang/qbc/ast"
	"github.com/quirrel-lang/qbc/instr"
)

// lowerDispatch lowers a call site per §4.3, dispatching on the
// precomputed Binding: a built-in reduction/set-reduction, a stdlib
// unary/binary function, a user-defined let (zero-arity reference or
// fully-applied call), or a grouping (solve) dispatch.
func lowerDispatch(e *Emission, n *ast.Dispatch) error {
	switch n.Binding.Kind {
	case ast.BuiltIn:
		return lowerBuiltInDispatch(e, n)
	case ast.StdlibBuiltIn1:
		return lowerStdlib1Dispatch(e, n)
	case ast.StdlibBuiltIn2:
		return lowerStdlib2Dispatch(e, n)
	case ast.UserDef:
		return lowerUserDefDispatch(e, n)
	default:
		return &NotImplementedError{Node: n, Detail: "unresolved dispatch binding"}
	}
}

func lowerBuiltInDispatch(e *Emission, n *ast.Dispatch) error {
	switch n.Binding.BuiltInKind {
	case ast.BuiltInReduction:
		if len(n.Actuals) != 1 {
			return &NotImplementedError{Node: n, Detail: "reduction built-in arity"}
		}
		if err := Lower(e, n.Actuals[0]); err != nil {
			return err
		}
		e.Emit(instr.Reduce(n.Binding.ReductionOp))
		return nil
	case ast.BuiltInSetReduction:
		if len(n.Actuals) != 1 {
			return &NotImplementedError{Node: n, Detail: "set-reduction built-in arity"}
		}
		if err := Lower(e, n.Actuals[0]); err != nil {
			return err
		}
		e.Emit(instr.SetReduce(instr.OpDistinct))
		return nil
	case ast.BuiltInLoad:
		if len(n.Actuals) != 1 {
			return &NotImplementedError{Node: n, Detail: "load built-in arity"}
		}
		if err := Lower(e, n.Actuals[0]); err != nil {
			return err
		}
		e.Emit(instr.LoadLocal("Het"))
		return nil
	default:
		return &NotImplementedError{Node: n, Detail: "unrecognized built-in"}
	}
}

func lowerStdlib1Dispatch(e *Emission, n *ast.Dispatch) error {
	if len(n.Actuals) != 1 {
		return &NotImplementedError{Node: n, Detail: "stdlib unary arity"}
	}
	if err := Lower(e, n.Actuals[0]); err != nil {
		return err
	}
	e.Emit(instr.Map1(instr.BuiltInFunction1Op(n.Binding.StdlibOp)))
	return nil
}

func lowerStdlib2Dispatch(e *Emission, n *ast.Dispatch) error {
	if len(n.Actuals) != 2 {
		return &NotImplementedError{Node: n, Detail: "stdlib binary arity"}
	}
	return emitMap2(e, n.Actuals[0], n.Actuals[1], instr.BuiltInFunction2Op(n.Binding.StdlibOp))
}

// lowerUserDefDispatch lowers a reference to a user-defined let. A
// zero-arity let (no parameters) is a value binding: the first reference
// lowers its definition and marks the result under ExprKey(let.Left),
// every later reference at any call site dups it instead of relowering,
// since a zero-arity let's value does not depend on a call site. A
// fully-applied let is wrapped in EmitOrDup(DispatchKey(let, actuals)):
// on first occurrence, each actual is bound to its parameter's TicVar
// under a key scoped to this specific Dispatch node and the let's body is
// lowered; on a later occurrence with the identical actuals tuple, the
// whole result is dup'd instead. References to 'param inside the body
// resolve their marks via lowerTicVar. A grouping (solve) dispatch —
// len(Actuals) naming solve clauses rather than matching the let's
// parameter count — is handled separately by lowerGroupingDispatch.
func lowerUserDefDispatch(e *Emission, n *ast.Dispatch) error {
	let := n.Binding.Let
	if let == nil {
		return &NotImplementedError{Node: n, Detail: "nil let binding"}
	}
	if n.Buckets != nil {
		return lowerGroupingDispatch(e, n)
	}
	if len(let.Params) == 0 {
		return e.EmitOrDup(ExprKey(let.Left), func() error {
			return Lower(e, let.Left)
		})
	}
	if len(n.Actuals) != len(let.Params) {
		return &NotImplementedError{Node: n, Detail: "let arity mismatch"}
	}
	return e.EmitOrDup(DispatchKey(let, n.Actuals), func() error {
		for i, param := range let.Params {
			actual := n.Actuals[i]
			key := TicVarKey(n, param)
			if err := e.EmitAndMark(key, func() error { return Lower(e, actual) }); err != nil {
				return err
			}
		}
		e.pushDispatchSite(let, n)
		defer e.popDispatchSite()
		return Lower(e, let.Left)
	})
}

// lowerTicVar resolves a reference to 'name inside a user-defined let's
// body, or a named bucket inside a grouping dispatch's body, by dup'ing the
// value bound at the enclosing dispatch site.
func lowerTicVar(e *Emission, n *ast.TicVar) error {
	if n.BindingLet == nil {
		return &NotImplementedError{Node: n, Detail: "tic-variable with no binding"}
	}
	site, ok := e.currentDispatchSite(n.BindingLet)
	if !ok {
		return &NotImplementedError{Node: n, Detail: "tic-variable referenced outside its let's body"}
	}
	e.EmitDup(TicVarKey(site, n.Name))
	return nil
}
