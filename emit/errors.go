package emit

import (
	"fmt"

	"github.com/quirrel-lang/qbc/ast"
)

// NullProvenanceError is returned when lowering reaches a site that
// requires a real (non-null) provenance and finds the null sentinel
// instead. Per §7, this signals a defect in an upstream pass (the
// provenance checker should have rejected the tree before it reached the
// emitter), not a condition the emitter can repair. Unlike
// NotImplementedError, it carries no node reference: the defect is in the
// provenance checker's contract, not in any one node's shape, so there is
// nothing useful to point at.
type NullProvenanceError struct{}

func (e *NullProvenanceError) Error() string {
	return "emit: null provenance reached the emitter"
}

// NotImplementedError is returned for AST shapes the emitter has no
// lowering for: an unrecognized built-in name, a binding left as
// NullBinding, or any other construct upstream passes were supposed to
// have already rejected or resolved. Node is nil for malformed bucket or
// solution trees, which are not expression nodes.
type NotImplementedError struct {
	Node   ast.Node
	Detail string
}

func (e *NotImplementedError) Error() string {
	if e.Node == nil {
		return fmt.Sprintf("emit: not implemented: %s", e.Detail)
	}
	loc := e.Node.Location()
	return fmt.Sprintf("emit: not implemented at line %d: %s (%s)", loc.Line, loc.Text, e.Detail)
}
