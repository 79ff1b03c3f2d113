package instr

// Operator is a selector carried by Map1/Map2Cross/Map2Match/Reduce/
// SetReduce instructions. Operators are not instructions themselves (§6 of
// the specification draws this distinction explicitly): they are the
// "which operation" tag an instruction applies.
type Operator struct {
	name string
}

func op(name string) Operator { return Operator{name: name} }

// String returns the operator's mnemonic.
func (o Operator) String() string { return o.name }

// IsZero reports whether o is the zero Operator (no operator set).
func (o Operator) IsZero() bool { return o.name == "" }

// Binary arithmetic/comparison/logical operators.
var (
	OpAdd    = op("Add")
	OpSub    = op("Sub")
	OpMul    = op("Mul")
	OpDiv    = op("Div")
	OpLt     = op("Lt")
	OpLtEq   = op("LtEq")
	OpGt     = op("Gt")
	OpGtEq   = op("GtEq")
	OpEq     = op("Eq")
	OpNotEq  = op("NotEq")
	OpOr     = op("Or")
	OpAnd    = op("And")
)

// Unary operators.
var (
	OpNew  = op("New")
	OpNeg  = op("Neg")
	OpComp = op("Comp")
)

// Object/array construction and traversal operators.
var (
	OpWrapObject  = op("WrapObject")
	OpWrapArray   = op("WrapArray")
	OpJoinObject  = op("JoinObject")
	OpJoinArray   = op("JoinArray")
	OpArraySwap   = op("ArraySwap")
	OpDerefObject = op("DerefObject")
	OpDerefArray  = op("DerefArray")
)

// Reduction built-in operators (Reduce instruction).
var (
	OpCount         = op("Count")
	OpGeometricMean = op("GeometricMean")
	OpMax           = op("Max")
	OpMean          = op("Mean")
	OpMedian        = op("Median")
	OpMin           = op("Min")
	OpMode          = op("Mode")
	OpStdDev        = op("StdDev")
	OpSum           = op("Sum")
	OpSumSq         = op("SumSq")
	OpVariance      = op("Variance")
)

// Set-reduction built-in operator (SetReduce instruction).
var OpDistinct = op("Distinct")

// BuiltInFunction1Op wraps a stdlib unary function name as a Map1 operator
// tag.
func BuiltInFunction1Op(name string) Operator { return op("StdlibUnary:" + name) }

// BuiltInFunction2Op wraps a stdlib binary function name as a Map2Cross/
// Map2Match operator tag.
func BuiltInFunction2Op(name string) Operator { return op("StdlibBinary:" + name) }
