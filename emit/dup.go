package emit

import "github.com/quirrel-lang/qbc/instr"

// EmitDup splices a duplicate of the value marked under key onto the top of
// the current stack, per §4.6. The marked value sits at bytecode position
// m.Index, m.Offset slots below the top of stack as of that point; it must
// be retrieved without disturbing the relative order of anything emitted
// since, and without leaving a stray copy sitting mid-stack once retrieval
// is done.
//
// The splice proceeds in four steps, inserted as a single block at
// m.Index:
//
//  1. An ascending Swap(1), Swap(2), ..., Swap(offset) sequence rotates the
//     marked value from depth offset up to the top, shifting everything
//     above it down by one slot while preserving their relative order.
//  2. Dup copies it.
//  3. A descending Swap(offset+1), ..., Swap(1) sequence sends the
//     original (now duplicated) value back down to its prior relative
//     depth — one slot deeper than before, since the new duplicate now
//     occupies the top.
//  4. A descending Swap(insertStack), ..., Swap(1) sequence sinks the
//     fresh duplicate all the way to the bottom of the stack as it stood
//     at m.Index, out of the way of everything lowered afterward.
//
// A final ascending Swap(1), ..., Swap(finalStack-1) sequence is appended
// at the very end of the bytecode built so far to retrieve the sunk
// duplicate back to the top, where the reference to the marked value
// expects to find it.
func (e *Emission) EmitDup(key MarkKey) {
	m, ok := e.MarkOf(key)
	if !ok {
		panic("emit: dup of unmarked key: " + key.String())
	}

	insertStack := e.DepthAt(m.Index)
	finalStack := e.Depth() + 1

	var seq []instr.Instruction
	for i := 1; i <= m.Offset; i++ {
		seq = append(seq, instr.Swap(i))
	}
	seq = append(seq, instr.Dup())
	for i := m.Offset + 1; i >= 1; i-- {
		seq = append(seq, instr.Swap(i))
	}
	for i := insertStack; i >= 1; i-- {
		seq = append(seq, instr.Swap(i))
	}
	e.EmitAt(m.Index, seq...)

	if finalStack > 1 {
		var tail []instr.Instruction
		for i := 1; i <= finalStack-1; i++ {
			tail = append(tail, instr.Swap(i))
		}
		e.EmitAt(len(e.Bytecode()), tail...)
	}
}

// EmitOrDup either lowers a value for the first time and marks it, or
// splices a dup of the already-marked value if key has already been seen.
// This is the building block behind zero-arity let-bound names (§4.3): the
// first reference lowers the definition and marks it; every later
// reference under the same key dups it instead of relowering.
func (e *Emission) EmitOrDup(key MarkKey, thunk func() error) error {
	if e.HasMark(key) {
		e.EmitDup(key)
		return nil
	}
	if err := thunk(); err != nil {
		return err
	}
	e.Mark(key, len(e.Bytecode()), 0)
	return nil
}

// EmitAndMark runs thunk to lower a value, then marks it under key at
// offset 0 (the value it just produced sits on top of the stack). Used for
// tic-variable parameter bindings at a fully-applied dispatch site, which
// are always marked immediately after being lowered rather than
// conditionally dup'd.
func (e *Emission) EmitAndMark(key MarkKey, thunk func() error) error {
	if err := thunk(); err != nil {
		return err
	}
	e.Mark(key, len(e.Bytecode()), 0)
	return nil
}
