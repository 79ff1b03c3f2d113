package ast

import "github.com/quirrel-lang/qbc/instr"

// BindingKind classifies what a Dispatch node's name resolves to.
type BindingKind int

const (
	// NullBinding means resolution failed upstream; the emitter treats
	// this as a not-implemented programmer error (§7).
	NullBinding BindingKind = iota

	// BuiltIn is a built-in with a recognized or unrecognized name; see
	// BuiltInKind to tell them apart.
	BuiltIn

	// StdlibBuiltIn1 is a unary stdlib function, emitted as Map1.
	StdlibBuiltIn1

	// StdlibBuiltIn2 is a binary stdlib function, emitted as Map2Cross or
	// Map2Match depending on provenance.
	StdlibBuiltIn2

	// UserDef is a user-defined let.
	UserDef
)

// BuiltInKind further classifies a BuiltIn binding.
type BuiltInKind int

const (
	// BuiltInUnknown is an unrecognized built-in name; a not-implemented
	// error (§7).
	BuiltInUnknown BuiltInKind = iota

	// BuiltInReduction covers Count, GeometricMean, Max, Mean, Median,
	// Min, Mode, StdDev, Sum, SumSq, Variance.
	BuiltInReduction

	// BuiltInSetReduction covers Distinct.
	BuiltInSetReduction

	// BuiltInLoad is the `load` built-in.
	BuiltInLoad
)

// Binding is the tagged union of what a Dispatch node's Name resolves to,
// precomputed by the name binder.
type Binding struct {
	Kind BindingKind

	// BuiltInKind, ReductionOp are populated when Kind == BuiltIn.
	BuiltInKind BuiltInKind
	ReductionOp instr.Operator

	// StdlibOp is populated when Kind == StdlibBuiltIn1 or StdlibBuiltIn2.
	StdlibOp string

	// Let is populated when Kind == UserDef.
	Let *Let
}
