// Package instr defines the bytecode instruction alphabet emitted by the
// Quirrel emitter and the stack-effect metadata that makes the mark-and-dup
// engine (see the emit package) and the disassembler possible.
//
// This plays the role a bytecode package plays for any stack VM (an Op
// enum, stack-effect metadata, a disassembler), but there is no VM here to
// decode a byte stream: the VM stage is out of scope for this module, so
// Instruction carries its operands as plain typed Go fields rather than
// encoding them into a []byte.
package instr

import "fmt"

// Op identifies the kind of a single Instruction.
type Op int

const (
	// OpPushString pushes a literal string constant.
	//
	// Stack: [] -> [value]
	OpPushString Op = iota

	// OpPushNum pushes a literal numeric constant (kept as source text).
	//
	// Stack: [] -> [value]
	OpPushNum

	// OpPushTrue pushes the boolean literal true.
	//
	// Stack: [] -> [value]
	OpPushTrue

	// OpPushFalse pushes the boolean literal false.
	//
	// Stack: [] -> [value]
	OpPushFalse

	// OpDup duplicates the top of the stack.
	//
	// Stack: [a] -> [a, a]
	OpDup

	// OpSwap swaps the top of the stack with the value N positions below
	// the top (N >= 1, top itself is position 0).
	//
	// Stack: [..., x, y1..yN-1, top] -> [..., top, y1..yN-1, x]
	OpSwap

	// OpLine records a source line marker; purely informational, no stack
	// effect. Consecutive identical markers are suppressed by the emitter
	// before this instruction is ever appended (see emit.Emission.EmitLine).
	OpLine

	// OpMap1 applies a unary operator to the top of the stack.
	//
	// Stack: [a] -> [op(a)]
	OpMap1

	// OpMap2Cross applies a binary operator across the cross product of
	// two operands with unrelated provenance.
	//
	// Stack: [a, b] -> [op(a, b)]
	OpMap2Cross

	// OpMap2Match applies a binary operator across two operands whose
	// provenance is known to align row-for-row.
	//
	// Stack: [a, b] -> [op(a, b)]
	OpMap2Match

	// OpFilterCross pops a boolean predicate and filters, in place, the
	// value Depth positions below it (cross form).
	//
	// Stack: [..., v, pred] -> [..., v'] (v filtered down to v')
	OpFilterCross

	// OpFilterMatch is OpFilterCross's row-matched counterpart.
	OpFilterMatch

	// OpReduce applies a reduction built-in (Count, Sum, Mean, ...).
	//
	// Stack: [a] -> [reduced]
	OpReduce

	// OpSetReduce applies a set-reduction built-in (Distinct).
	//
	// Stack: [a] -> [reduced]
	OpSetReduce

	// OpLoadLocal loads a dataset by path.
	//
	// Stack: [path] -> [dataset]
	OpLoadLocal

	// OpIUnion computes the set union of two operands.
	//
	// Stack: [a, b] -> [union]
	OpIUnion

	// OpIIntersect computes the set intersection of two operands.
	//
	// Stack: [a, b] -> [intersection]
	OpIIntersect

	// OpZipBuckets zips two bucket values into one, per Disjoint.
	//
	// Stack: [a, b] -> [zipped]
	OpZipBuckets

	// OpSplit opens a grouping frame: pops N bucket values and yields K
	// positional values arranged per the Split-frame stack layout (see
	// emit/bucket.go).
	//
	// Stack: [bucket_1, ..., bucket_N] -> [v_1, ..., v_K]
	OpSplit

	// OpMerge closes the grouping frame most recently opened by OpSplit,
	// collapsing its K positional values plus the body result back down
	// to a single value.
	//
	// Stack: [v_1, ..., v_K, body] -> [result]
	OpMerge
)

var opNames = map[Op]string{
	OpPushString:  "PushString",
	OpPushNum:     "PushNum",
	OpPushTrue:    "PushTrue",
	OpPushFalse:   "PushFalse",
	OpDup:         "Dup",
	OpSwap:        "Swap",
	OpLine:        "Line",
	OpMap1:        "Map1",
	OpMap2Cross:   "Map2Cross",
	OpMap2Match:   "Map2Match",
	OpFilterCross: "FilterCross",
	OpFilterMatch: "FilterMatch",
	OpReduce:      "Reduce",
	OpSetReduce:   "SetReduce",
	OpLoadLocal:   "LoadLocal",
	OpIUnion:      "IUnion",
	OpIIntersect:  "IIntersect",
	OpZipBuckets:  "ZipBuckets",
	OpSplit:       "Split",
	OpMerge:       "Merge",
}

// String returns the opcode's mnemonic.
func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Op(%d)", int(op))
}

// Instruction is a single emitted bytecode instruction. Only the fields
// relevant to Op are populated; the rest are zero.
type Instruction struct {
	Op Op

	// Operator carries the operator/operation tag for Map1, Map2Cross,
	// Map2Match, Reduce, and SetReduce.
	Operator Operator

	// Str carries the operand for PushString and PushNum. LoadLocal's
	// dataset-kind tag is carried in LocalKind, not here.
	Str string

	// LocalKind carries the dataset kind for LoadLocal (e.g. Het).
	LocalKind string

	// N carries the Swap distance, the first Split operand, or a
	// FilterCross/FilterMatch depth.
	N int

	// K carries the second Split operand.
	K int

	// Pred carries the optional static predicate reference for
	// FilterCross/FilterMatch; nil means the spec's "None".
	Pred *string

	// Disjoint carries ZipBuckets' boolean operand.
	Disjoint bool

	// Line and Text carry a Line marker's operands.
	Line int
	Text string
}

// PushString constructs a PushString instruction.
func PushString(s string) Instruction { return Instruction{Op: OpPushString, Str: s} }

// PushNum constructs a PushNum instruction.
func PushNum(s string) Instruction { return Instruction{Op: OpPushNum, Str: s} }

// PushTrue constructs a PushTrue instruction.
func PushTrue() Instruction { return Instruction{Op: OpPushTrue} }

// PushFalse constructs a PushFalse instruction.
func PushFalse() Instruction { return Instruction{Op: OpPushFalse} }

// Dup constructs a Dup instruction.
func Dup() Instruction { return Instruction{Op: OpDup} }

// Swap constructs a Swap instruction with the given distance.
func Swap(n int) Instruction { return Instruction{Op: OpSwap, N: n} }

// Line constructs a Line marker instruction.
func Line(n int, text string) Instruction { return Instruction{Op: OpLine, Line: n, Text: text} }

// Map1 constructs a Map1 instruction for the given unary operator.
func Map1(op Operator) Instruction { return Instruction{Op: OpMap1, Operator: op} }

// Map2Cross constructs a Map2Cross instruction for the given binary operator.
func Map2Cross(op Operator) Instruction { return Instruction{Op: OpMap2Cross, Operator: op} }

// Map2Match constructs a Map2Match instruction for the given binary operator.
func Map2Match(op Operator) Instruction { return Instruction{Op: OpMap2Match, Operator: op} }

// FilterCross constructs a FilterCross instruction.
func FilterCross(depth int, pred *string) Instruction {
	return Instruction{Op: OpFilterCross, N: depth, Pred: pred}
}

// FilterMatch constructs a FilterMatch instruction.
func FilterMatch(depth int, pred *string) Instruction {
	return Instruction{Op: OpFilterMatch, N: depth, Pred: pred}
}

// Reduce constructs a Reduce instruction for the given reduction operator.
func Reduce(op Operator) Instruction { return Instruction{Op: OpReduce, Operator: op} }

// SetReduce constructs a SetReduce instruction for the given set-reduction
// operator.
func SetReduce(op Operator) Instruction { return Instruction{Op: OpSetReduce, Operator: op} }

// LoadLocal constructs a LoadLocal instruction for the given dataset kind.
func LoadLocal(kind string) Instruction { return Instruction{Op: OpLoadLocal, LocalKind: kind} }

// IUnion constructs an IUnion instruction.
func IUnion() Instruction { return Instruction{Op: OpIUnion} }

// IIntersect constructs an IIntersect instruction.
func IIntersect() Instruction { return Instruction{Op: OpIIntersect} }

// ZipBuckets constructs a ZipBuckets instruction.
func ZipBuckets(disjoint bool) Instruction { return Instruction{Op: OpZipBuckets, Disjoint: disjoint} }

// Split constructs a Split instruction.
func Split(n, k int) Instruction { return Instruction{Op: OpSplit, N: n, K: k} }

// Merge constructs a Merge instruction that closes a grouping frame holding
// frameSize positional values. frameSize is bookkeeping the emitter needs
// to compute operand-stack deltas (see OperandStackDelta); the spec's
// output alphabet lists Merge as a zero-operand instruction, and
// Disassemble prints it bare, with no visible operand, to match.
func Merge(frameSize int) Instruction { return Instruction{Op: OpMerge, K: frameSize} }
