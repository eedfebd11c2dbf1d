// Package vm implements the stack-frame virtual machine: a stack of call
// frames, each owning a shared Code reference, an instruction cursor, a
// growable operand slot array, and a boolean test flag, executing the
// instruction set internal/code defines.
//
// Grounded in original_source/source/let/exec/exec.cpp (exec_frame,
// executor_impl, exec_visitor) — the "newer, Value-uniform" design
// spec.md's design notes direct implementations to follow, as opposed to
// the older ex_tuple/ex_list-based context.cpp executor.
package vm

import (
	"github.com/funvibe/lix/internal/code"
	"github.com/funvibe/lix/internal/value"
)

// Frame is one activation of a Code sequence.
type Frame struct {
	code  code.Code
	ip    code.Offset
	slots []value.Value
	test  bool
	id    string

	// external marks a frame pushed by a re-entrant host call (the
	// top-level ExecuteAll/ExecuteN entry point, or a native Function
	// calling back into a Closure via CallClosure/CallMFA): its return
	// value must NOT be auto-pushed into whatever frame happens to sit
	// below it on the stack, because that frame did not emit a `call`
	// instruction expecting a result slot for this invocation — the
	// caller is Go code, not VM bytecode, and reads the returned Value
	// directly.
	external bool
}

// newFrame returns a frame starting execution of c at entry, with an
// initial slot array already containing initial (e.g. a closure's captures
// followed by its argument). Pushed by an in-VM `call`/`tail` instruction.
func newFrame(c code.Code, entry code.Offset, initial []value.Value) *Frame {
	return &Frame{code: c, ip: entry, slots: initial}
}

// newExternalFrame is like newFrame but marks the frame external (see the
// field comment on Frame.external).
func newExternalFrame(c code.Code, entry code.Offset, initial []value.Value) *Frame {
	return &Frame{code: c, ip: entry, slots: initial, external: true}
}

// SetSlot writes v into slot, growing the slot array if necessary. Slots
// are conceptually append-only within a frame (matching the compiler's
// monotonically increasing slot counter) except where `rewind` truncates
// the array back to a smaller size after a failed clause attempt.
func (f *Frame) SetSlot(slot code.Slot, v value.Value) {
	for int(slot) >= len(f.slots) {
		f.slots = append(f.slots, value.Value{})
	}
	f.slots[slot] = v
}

// GetSlot reads the current value of slot.
func (f *Frame) GetSlot(slot code.Slot) value.Value {
	return f.slots[slot]
}

// push appends v as a new slot and returns its index. Every "producing"
// instruction (Add, ConstInt, Call, Dot, ...) has no explicit result-slot
// operand in internal/code — the compiler's consume_slot() discipline
// allocates slot indices in strict program order, so the VM mirrors that by
// always appending the result of the instruction currently executing.
func (f *Frame) push(v value.Value) code.Slot {
	slot := code.Slot(len(f.slots))
	f.slots = append(f.slots, v)
	return slot
}

// rewind truncates the slot array to exactly n entries.
func (f *Frame) rewind(n code.Slot) {
	f.slots = f.slots[:n]
}

// atEnd reports whether the frame's cursor has run past its code.
func (f *Frame) atEnd() bool {
	return int(f.ip) >= len(f.code)
}

// fetch returns the instruction at the cursor and advances it.
func (f *Frame) fetch() code.Instruction {
	inst := f.code[f.ip]
	f.ip++
	return inst
}
