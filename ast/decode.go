package ast

import (
	"encoding/json"
	"fmt"

	"github.com/quirrel-lang/qbc/instr"
)

// Decode parses a JSON-encoded elaborated AST into an Expr tree. This is
// the wire format cmd/qbc reads: since the parser, name binder, provenance
// checker, and grouping solver all live upstream of this module, JSON is
// the concrete textual form a developer (or a fixture file) uses to hand
// this package a tree to lower, standing in for whatever format a real
// Quirrel pipeline serializes its elaborated trees to.
//
// No third-party JSON library is warranted here: this is thin decode-only
// plumbing over a fixed, already-elaborated wire shape, so it's built
// directly on stdlib encoding/json.
func Decode(data []byte) (Expr, error) {
	var w wireNode
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("ast: decode: %w", err)
	}
	d := &decoder{lets: make(map[int]*Let)}
	return d.decodeNode(&w)
}

// wireNode is the on-the-wire shape of one AST node. Only the fields
// relevant to Kind are populated; json.RawMessage lets literal values
// (string/number/bool) share one field without a type assertion up front.
type wireNode struct {
	Kind       string          `json:"kind"`
	Line       int             `json:"line"`
	Text       string          `json:"text"`
	Prov       *wireProv       `json:"prov,omitempty"`
	Constraint *wireNode       `json:"constraint,omitempty"`
	Value      json.RawMessage `json:"value,omitempty"`

	Child *wireNode `json:"child,omitempty"`

	From *wireNode `json:"from,omitempty"`
	To   *wireNode `json:"to,omitempty"`
	In   *wireNode `json:"in,omitempty"`

	// Let. RefID is a decoder-local integer used only to link later
	// TicVar/Dispatch references to this definition; it has no meaning
	// beyond this one decode call.
	ID     string    `json:"id,omitempty"`
	RefID  int       `json:"refId,omitempty"`
	Params []string  `json:"params,omitempty"`
	Left   *wireNode `json:"left,omitempty"`
	Right  *wireNode `json:"right,omitempty"`

	// TicVar.
	Name   string `json:"name,omitempty"`
	LetRef int    `json:"letRef,omitempty"`

	// Binary.
	Op string `json:"op,omitempty"`

	// Object/array.
	Fields []wireField `json:"fields,omitempty"`
	Values []wireNode  `json:"values,omitempty"`

	// Dispatch.
	Actuals []wireNode        `json:"actuals,omitempty"`
	Binding *wireBinding      `json:"binding,omitempty"`
	Buckets []wireNamedBucket `json:"buckets,omitempty"`
}

type wireField struct {
	Key   string   `json:"key"`
	Value wireNode `json:"value"`
}

type wireProv struct {
	// Kind is "value", "null", or "paths".
	Kind  string   `json:"kind"`
	Paths []string `json:"paths,omitempty"`
}

func (p *wireProv) toProvenance() Provenance {
	if p == nil {
		return NullProvenance()
	}
	switch p.Kind {
	case "value":
		return ValueProvenance()
	case "paths":
		return PathProvenance(p.Paths...)
	default:
		return NullProvenance()
	}
}

type wireBinding struct {
	// Kind is "builtin", "stdlib1", "stdlib2", or "userdef".
	Kind string `json:"kind"`

	// BuiltInKind is "reduction", "setReduction", or "load", for Kind == "builtin".
	BuiltInKind string `json:"builtInKind,omitempty"`
	ReductionOp string `json:"reductionOp,omitempty"`

	StdlibOp string `json:"stdlibOp,omitempty"`

	LetRef int `json:"letRef,omitempty"`
}

type wireNamedBucket struct {
	Name   string     `json:"name"`
	Bucket wireBucket `json:"bucket"`
}

type wireBucket struct {
	// Kind is "union", "intersect", or "group".
	Kind string `json:"kind"`

	Left  *wireBucket `json:"left,omitempty"`
	Right *wireBucket `json:"right,omitempty"`

	Origin *wireNode     `json:"origin,omitempty"`
	Forest *wireSolution `json:"forest,omitempty"`
	Extras []wireNode    `json:"extras,omitempty"`
}

type wireSolution struct {
	// Kind is "conjunction", "disjunction", or "definition".
	Kind string `json:"kind"`

	Left  *wireSolution `json:"left,omitempty"`
	Right *wireSolution `json:"right,omitempty"`
	Expr  *wireNode     `json:"expr,omitempty"`
}

// decoder tracks Let definitions seen so far by their wire-local RefID, so
// that a TicVar or Dispatch decoded later in the same tree can resolve the
// binding it was bound to upstream.
type decoder struct {
	lets map[int]*Let
}

var reductionOps = map[string]instr.Operator{
	"Count":         instr.OpCount,
	"GeometricMean": instr.OpGeometricMean,
	"Max":           instr.OpMax,
	"Mean":          instr.OpMean,
	"Median":        instr.OpMedian,
	"Min":           instr.OpMin,
	"Mode":          instr.OpMode,
	"StdDev":        instr.OpStdDev,
	"Sum":           instr.OpSum,
	"SumSq":         instr.OpSumSq,
	"Variance":      instr.OpVariance,
}

var binOps = map[string]BinOp{
	"Add": Add, "Sub": Sub, "Mul": Mul, "Div": Div,
	"Lt": Lt, "LtEq": LtEq, "Gt": Gt, "GtEq": GtEq,
	"Eq": Eq, "NotEq": NotEq, "Or": Or, "And": And,
}

func (d *decoder) decodeNode(w *wireNode) (Expr, error) {
	if w == nil {
		return nil, nil
	}

	constraint, err := d.decodeNode(w.Constraint)
	if err != nil {
		return nil, err
	}
	b := base{Loc: Loc{Line: w.Line, Text: w.Text}, Prv: w.Prov.toProvenance(), Constr: constraint}

	switch w.Kind {
	case "str":
		var v string
		if err := json.Unmarshal(w.Value, &v); err != nil {
			return nil, fmt.Errorf("ast: decode str: %w", err)
		}
		return &Str{base: b, Value: v}, nil
	case "num":
		var v string
		if err := json.Unmarshal(w.Value, &v); err != nil {
			return nil, fmt.Errorf("ast: decode num: %w", err)
		}
		return &Num{base: b, Value: v}, nil
	case "bool":
		var v bool
		if err := json.Unmarshal(w.Value, &v); err != nil {
			return nil, fmt.Errorf("ast: decode bool: %w", err)
		}
		return &Bool{base: b, Value: v}, nil
	case "new", "neg", "comp", "paren":
		child, err := d.decodeNode(w.Child)
		if err != nil {
			return nil, err
		}
		switch w.Kind {
		case "new":
			return &New{base: b, Child: child}, nil
		case "neg":
			return &Neg{base: b, Child: child}, nil
		case "comp":
			return &Comp{base: b, Child: child}, nil
		default:
			return &Paren{base: b, Child: child}, nil
		}
	case "relate":
		from, err := d.decodeNode(w.From)
		if err != nil {
			return nil, err
		}
		to, err := d.decodeNode(w.To)
		if err != nil {
			return nil, err
		}
		in, err := d.decodeNode(w.In)
		if err != nil {
			return nil, err
		}
		return &Relate{base: b, From: from, To: to, In: in}, nil
	case "let":
		let := &Let{base: b, ID: w.ID, Params: w.Params}
		if w.RefID != 0 {
			d.lets[w.RefID] = let
		}
		left, err := d.decodeNode(w.Left)
		if err != nil {
			return nil, err
		}
		right, err := d.decodeNode(w.Right)
		if err != nil {
			return nil, err
		}
		let.Left = left
		let.Right = right
		return let, nil
	case "ticvar":
		let := d.lets[w.LetRef]
		return &TicVar{base: b, Name: w.Name, BindingLet: let, IsUserDef: let != nil}, nil
	case "binary":
		op, ok := binOps[w.Op]
		if !ok {
			return nil, fmt.Errorf("ast: decode binary: unknown operator %q", w.Op)
		}
		left, right, err := d.decodePair(w.Left, w.Right)
		if err != nil {
			return nil, err
		}
		return &Binary{base: b, Op: op, Left: left, Right: right}, nil
	case "descent":
		child, err := d.decodeNode(w.Child)
		if err != nil {
			return nil, err
		}
		return &Descent{base: b, Child: child, Property: w.Name}, nil
	case "deref":
		left, right, err := d.decodePair(w.Left, w.Right)
		if err != nil {
			return nil, err
		}
		return &Deref{base: b, Left: left, Right: right}, nil
	case "with":
		left, right, err := d.decodePair(w.Left, w.Right)
		if err != nil {
			return nil, err
		}
		return &With{base: b, Left: left, Right: right}, nil
	case "where":
		left, right, err := d.decodePair(w.Left, w.Right)
		if err != nil {
			return nil, err
		}
		return &Where{base: b, Left: left, Right: right}, nil
	case "union":
		left, right, err := d.decodePair(w.Left, w.Right)
		if err != nil {
			return nil, err
		}
		return &Union{base: b, Left: left, Right: right}, nil
	case "intersect":
		left, right, err := d.decodePair(w.Left, w.Right)
		if err != nil {
			return nil, err
		}
		return &Intersect{base: b, Left: left, Right: right}, nil
	case "object":
		fields := make([]ObjectField, len(w.Fields))
		for i, f := range w.Fields {
			v, err := d.decodeNode(&f.Value)
			if err != nil {
				return nil, err
			}
			fields[i] = ObjectField{Key: f.Key, Value: v}
		}
		return &ObjectDef{base: b, Fields: fields}, nil
	case "array":
		values := make([]Expr, len(w.Values))
		for i := range w.Values {
			v, err := d.decodeNode(&w.Values[i])
			if err != nil {
				return nil, err
			}
			values[i] = v
		}
		return &ArrayDef{base: b, Values: values}, nil
	case "dispatch":
		actuals := make([]Expr, len(w.Actuals))
		for i := range w.Actuals {
			v, err := d.decodeNode(&w.Actuals[i])
			if err != nil {
				return nil, err
			}
			actuals[i] = v
		}
		binding, err := d.decodeBinding(w.Binding)
		if err != nil {
			return nil, err
		}
		var buckets []NamedBucket
		for _, nb := range w.Buckets {
			bk, err := d.decodeBucket(&nb.Bucket)
			if err != nil {
				return nil, err
			}
			buckets = append(buckets, NamedBucket{Name: nb.Name, Bucket: bk})
		}
		return &Dispatch{base: b, Name: w.Name, Actuals: actuals, Binding: binding, Buckets: buckets}, nil
	default:
		return nil, fmt.Errorf("ast: decode: unknown node kind %q", w.Kind)
	}
}

func (d *decoder) decodePair(l, r *wireNode) (Expr, Expr, error) {
	left, err := d.decodeNode(l)
	if err != nil {
		return nil, nil, err
	}
	right, err := d.decodeNode(r)
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

func (d *decoder) decodeBinding(w *wireBinding) (Binding, error) {
	if w == nil {
		return Binding{}, nil
	}
	switch w.Kind {
	case "builtin":
		bk := BuiltInUnknown
		var reductionOp instr.Operator
		switch w.BuiltInKind {
		case "reduction":
			bk = BuiltInReduction
			op, ok := reductionOps[w.ReductionOp]
			if !ok {
				return Binding{}, fmt.Errorf("ast: decode binding: unknown reduction operator %q", w.ReductionOp)
			}
			reductionOp = op
		case "setReduction":
			bk = BuiltInSetReduction
		case "load":
			bk = BuiltInLoad
		}
		return Binding{Kind: BuiltIn, BuiltInKind: bk, ReductionOp: reductionOp}, nil
	case "stdlib1":
		return Binding{Kind: StdlibBuiltIn1, StdlibOp: w.StdlibOp}, nil
	case "stdlib2":
		return Binding{Kind: StdlibBuiltIn2, StdlibOp: w.StdlibOp}, nil
	case "userdef":
		return Binding{Kind: UserDef, Let: d.lets[w.LetRef]}, nil
	default:
		return Binding{Kind: NullBinding}, nil
	}
}

func (d *decoder) decodeBucket(w *wireBucket) (Bucket, error) {
	if w == nil {
		return nil, nil
	}
	switch w.Kind {
	case "union":
		left, err := d.decodeBucket(w.Left)
		if err != nil {
			return nil, err
		}
		right, err := d.decodeBucket(w.Right)
		if err != nil {
			return nil, err
		}
		return &UnionBucket{Left: left, Right: right}, nil
	case "intersect":
		left, err := d.decodeBucket(w.Left)
		if err != nil {
			return nil, err
		}
		right, err := d.decodeBucket(w.Right)
		if err != nil {
			return nil, err
		}
		return &IntersectBucket{Left: left, Right: right}, nil
	case "group":
		origin, err := d.decodeNode(w.Origin)
		if err != nil {
			return nil, err
		}
		whereOrigin, ok := origin.(*Where)
		if !ok {
			return nil, fmt.Errorf("ast: decode bucket: group origin is not a where-clause")
		}
		forest, err := d.decodeSolution(w.Forest)
		if err != nil {
			return nil, err
		}
		extras := make([]Expr, len(w.Extras))
		for i := range w.Extras {
			v, err := d.decodeNode(&w.Extras[i])
			if err != nil {
				return nil, err
			}
			extras[i] = v
		}
		return &Group{Origin: whereOrigin, Forest: forest, Extras: extras}, nil
	default:
		return nil, fmt.Errorf("ast: decode bucket: unknown kind %q", w.Kind)
	}
}

func (d *decoder) decodeSolution(w *wireSolution) (Solution, error) {
	if w == nil {
		return nil, nil
	}
	switch w.Kind {
	case "conjunction":
		left, right, err := d.decodeSolutionPair(w.Left, w.Right)
		if err != nil {
			return nil, err
		}
		return &Conjunction{Left: left, Right: right}, nil
	case "disjunction":
		left, right, err := d.decodeSolutionPair(w.Left, w.Right)
		if err != nil {
			return nil, err
		}
		return &Disjunction{Left: left, Right: right}, nil
	case "definition":
		expr, err := d.decodeNode(w.Expr)
		if err != nil {
			return nil, err
		}
		return &Definition{Expr: expr}, nil
	default:
		return nil, fmt.Errorf("ast: decode solution: unknown kind %q", w.Kind)
	}
}

func (d *decoder) decodeSolutionPair(l, r *wireSolution) (Solution, Solution, error) {
	left, err := d.decodeSolution(l)
	if err != nil {
		return nil, nil, err
	}
	right, err := d.decodeSolution(r)
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}
