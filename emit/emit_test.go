package emit_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quirrel-lang/qbc/ast"
	"github.com/quirrel-lang/qbc/emit"
	"github.com/quirrel-lang/qbc/instr"
)

// mustDecode decodes a JSON fixture and fails the test on error, keeping
// every test case below a one-liner at the call site.
func mustDecode(t *testing.T, js string) ast.Expr {
	t.Helper()
	expr, err := ast.Decode([]byte(js))
	require.NoError(t, err)
	return expr
}

// assertP1P2 checks the two depth invariants from §8 against an
// independent recomputation (instr.SimulateDepth), not the emitter's own
// internal bookkeeping: P1, the running depth never goes negative at any
// prefix, and P2, the final depth is exactly 1.
func assertP1P2(t *testing.T, bytecode []instr.Instruction) {
	t.Helper()
	depths := instr.SimulateDepth(bytecode)
	for i, d := range depths {
		require.GreaterOrEqualf(t, d, 0, "negative depth at instruction %d", i)
	}
	require.NotEmpty(t, bytecode)
	require.Equal(t, 1, depths[len(depths)-1])
}

func TestEmitNumLiteral(t *testing.T) {
	expr := mustDecode(t, `{"kind":"num","line":1,"text":"1","prov":{"kind":"value"},"value":"1"}`)

	bytecode, err := emit.Emit(expr)
	require.NoError(t, err)
	assertP1P2(t, bytecode)

	require.Equal(t, instr.OpLine, bytecode[0].Op)
	require.Equal(t, instr.OpPushNum, bytecode[1].Op)
	require.Equal(t, "1", bytecode[1].Str)
}

func TestEmitBinaryAddValueProvenanceIsCross(t *testing.T) {
	expr := mustDecode(t, `{
		"kind":"binary","op":"Add","line":1,"text":"1+2","prov":{"kind":"value"},
		"left":{"kind":"num","line":1,"text":"1","prov":{"kind":"value"},"value":"1"},
		"right":{"kind":"num","line":1,"text":"2","prov":{"kind":"value"},"value":"2"}
	}`)

	bytecode, err := emit.Emit(expr)
	require.NoError(t, err)
	assertP1P2(t, bytecode)

	last := bytecode[len(bytecode)-1]
	require.Equal(t, instr.OpMap2Cross, last.Op)
	require.Equal(t, instr.OpAdd, last.Operator)
}

func TestEmitWhereSharedPathIsMatch(t *testing.T) {
	expr := mustDecode(t, `{
		"kind":"where","line":1,"text":"clicks where clicks.valid","prov":{"kind":"paths","paths":["/clicks"]},
		"left":{"kind":"descent","name":"x","line":1,"text":"clicks","prov":{"kind":"paths","paths":["/clicks"]},
			"child":{"kind":"str","line":1,"text":"clicks","prov":{"kind":"paths","paths":["/clicks"]},"value":"clicks"}},
		"right":{"kind":"descent","name":"valid","line":1,"text":"clicks.valid","prov":{"kind":"paths","paths":["/clicks"]},
			"child":{"kind":"str","line":1,"text":"clicks","prov":{"kind":"paths","paths":["/clicks"]},"value":"clicks"}}
	}`)

	bytecode, err := emit.Emit(expr)
	require.NoError(t, err)
	assertP1P2(t, bytecode)

	var sawFilter bool
	for _, ins := range bytecode {
		if ins.Op == instr.OpFilterMatch {
			sawFilter = true
		}
	}
	require.True(t, sawFilter, "expected a FilterMatch instruction, shared-path operands should not cross")
}

func TestEmitNullProvenanceErrors(t *testing.T) {
	expr := mustDecode(t, `{
		"kind":"binary","op":"Add","line":1,"text":"x+1",
		"left":{"kind":"num","line":1,"text":"x","value":"1"},
		"right":{"kind":"num","line":1,"text":"1","prov":{"kind":"value"},"value":"1"}
	}`)

	_, err := emit.Emit(expr)
	require.Error(t, err)
	var nullErr *emit.NullProvenanceError
	require.ErrorAs(t, err, &nullErr)
	require.Equal(t, &emit.NullProvenanceError{}, nullErr, "NullProvenanceError must carry no node reference, unlike NotImplementedError")
}

func TestEmitObjectLiteralGroupsByProvenance(t *testing.T) {
	expr := mustDecode(t, `{
		"kind":"object","line":1,"text":"{a:1,b:clicks.n,c:2}","prov":{"kind":"value"},
		"fields":[
			{"key":"a","value":{"kind":"num","line":1,"text":"1","prov":{"kind":"value"},"value":"1"}},
			{"key":"b","value":{"kind":"descent","name":"n","line":1,"text":"clicks.n","prov":{"kind":"paths","paths":["/clicks"]},
				"child":{"kind":"str","line":1,"text":"clicks","prov":{"kind":"paths","paths":["/clicks"]},"value":"clicks"}}},
			{"key":"c","value":{"kind":"num","line":1,"text":"2","prov":{"kind":"value"},"value":"2"}}
		]
	}`)

	bytecode, err := emit.Emit(expr)
	require.NoError(t, err)
	assertP1P2(t, bytecode)

	var joins int
	for _, ins := range bytecode {
		if ins.Op == instr.OpMap2Cross && ins.Operator == instr.OpJoinObject {
			joins++
		}
		if ins.Op == instr.OpMap2Match && ins.Operator == instr.OpJoinObject {
			joins++
		}
	}
	// Three fields in two provenance groups (a,c value-grouped together,
	// b alone): one intra-group join for the value group plus one
	// across-group join, two total.
	require.Equal(t, 2, joins)
}

func TestEmitZeroArityLetDupsOnSecondReference(t *testing.T) {
	expr := mustDecode(t, `{
		"kind":"let","line":1,"text":"x := 1\nx+x","id":"x","refId":1,
		"left":{"kind":"num","line":1,"text":"1","prov":{"kind":"value"},"value":"1"},
		"right":{
			"kind":"binary","op":"Add","line":2,"text":"x+x","prov":{"kind":"value"},
			"left":{"kind":"dispatch","name":"x","line":2,"text":"x","prov":{"kind":"value"},
				"binding":{"kind":"userdef","letRef":1}},
			"right":{"kind":"dispatch","name":"x","line":2,"text":"x","prov":{"kind":"value"},
				"binding":{"kind":"userdef","letRef":1}}
		}
	}`)

	bytecode, err := emit.Emit(expr)
	require.NoError(t, err)
	assertP1P2(t, bytecode)

	var dups int
	for _, ins := range bytecode {
		if ins.Op == instr.OpDup {
			dups++
		}
	}
	require.Equal(t, 1, dups, "second reference to a zero-arity let should dup, not relower")
}

func TestEmitConstraintEmitsDupEqFilter(t *testing.T) {
	expr := mustDecode(t, `{
		"kind":"num","line":1,"text":"1","prov":{"kind":"value"},"value":"1",
		"constraint":{"kind":"bool","line":1,"text":"true","prov":{"kind":"value"},"value":true}
	}`)

	bytecode, err := emit.Emit(expr)
	require.NoError(t, err)
	assertP1P2(t, bytecode)

	var ops []instr.Op
	for _, ins := range bytecode {
		ops = append(ops, ins.Op)
	}
	require.Contains(t, ops, instr.OpDup)
	require.Contains(t, ops, instr.OpMap2Match)
	require.Contains(t, ops, instr.OpFilterMatch)

	var lastTwo []instr.Op
	if len(ops) >= 2 {
		lastTwo = ops[len(ops)-2:]
	}
	require.Equal(t, []instr.Op{instr.OpMap2Match, instr.OpFilterMatch}, lastTwo)
}

func TestEmitConstraintSkippedWhenSelf(t *testing.T) {
	// A node whose constraint is structurally identical to itself (ignoring
	// location) must not emit a Dup/Eq/Filter sequence at all.
	expr := mustDecode(t, `{
		"kind":"num","line":1,"text":"1","prov":{"kind":"value"},"value":"1",
		"constraint":{"kind":"num","line":9,"text":"1","prov":{"kind":"value"},"value":"1"}
	}`)

	bytecode, err := emit.Emit(expr)
	require.NoError(t, err)
	assertP1P2(t, bytecode)

	for _, ins := range bytecode {
		require.NotEqual(t, instr.OpDup, ins.Op)
	}
}

func TestEmitGroupingDispatchAssemblesSplitMergeFrame(t *testing.T) {
	expr := mustDecode(t, `{
		"kind":"let","line":1,"text":"solve","id":"g","refId":9,
		"left":{
			"kind":"binary","op":"Add","line":2,"text":"'a+'b","prov":{"kind":"value"},
			"left":{"kind":"ticvar","name":"a","line":2,"text":"'a","prov":{"kind":"value"},"letRef":9},
			"right":{"kind":"ticvar","name":"b","line":2,"text":"'b","prov":{"kind":"value"},"letRef":9}
		},
		"right":{
			"kind":"dispatch","name":"g","line":3,"text":"solve(a,b)","prov":{"kind":"value"},
			"binding":{"kind":"userdef","letRef":9},
			"buckets":[
				{"name":"a","bucket":{"kind":"group",
					"origin":{"kind":"where","line":3,"text":"w1","prov":{"kind":"value"},
						"left":{"kind":"str","line":3,"text":"s","prov":{"kind":"value"},"value":"s"},
						"right":{"kind":"bool","line":3,"text":"true","prov":{"kind":"value"},"value":true}},
					"forest":{"kind":"definition","expr":{"kind":"bool","line":3,"text":"true","prov":{"kind":"value"},"value":true}}}},
				{"name":"b","bucket":{"kind":"group",
					"origin":{"kind":"where","line":3,"text":"w2","prov":{"kind":"value"},
						"left":{"kind":"str","line":3,"text":"s","prov":{"kind":"value"},"value":"s"},
						"right":{"kind":"bool","line":3,"text":"true","prov":{"kind":"value"},"value":true}},
					"forest":{"kind":"definition","expr":{"kind":"bool","line":3,"text":"true","prov":{"kind":"value"},"value":true}}}}
			]
		}
	}`)

	bytecode, err := emit.Emit(expr)
	require.NoError(t, err)
	assertP1P2(t, bytecode)

	var split, merge *instr.Instruction
	for i, ins := range bytecode {
		if ins.Op == instr.OpSplit {
			split = &bytecode[i]
		}
		if ins.Op == instr.OpMerge {
			merge = &bytecode[i]
		}
	}
	require.NotNil(t, split)
	require.NotNil(t, merge)
	// Two buckets, one group-origin each: k = 2 + 2 = 4.
	require.Equal(t, 2, split.N)
	require.Equal(t, 4, split.K)
	require.Equal(t, 4, merge.K)
}
