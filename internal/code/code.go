package code

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/funvibe/lix/internal/symbol"
)

// Code is a flat, jump-addressable instruction sequence, the unit a Closure
// captures a sub-range of and the VM executes.
type Code []Instruction

// Len returns the number of instructions.
func (c Code) Len() int { return len(c) }

// Builder assembles a Code sequence and hands out fresh slot numbers, the
// way the compiler's block_compiler (original_source/source/let/compiler/compile.cpp)
// hands out slots while it walks an AST: append-only, with an explicit
// "next free slot" counter the caller advances one at a time.
type Builder struct {
	code     Code
	nextSlot Slot
}

// NewBuilder returns an empty Builder with slot allocation starting at zero.
func NewBuilder() *Builder { return &Builder{} }

// Emit appends inst and returns its offset.
func (b *Builder) Emit(inst Instruction) Offset {
	b.code = append(b.code, inst)
	return Offset(len(b.code) - 1)
}

// Len returns the number of instructions emitted so far.
func (b *Builder) Len() Offset { return Offset(len(b.code)) }

// NextSlot returns the slot the next ConsumeSlot call will hand out,
// without allocating or consuming it;
// callers that only need to know where the next value *would* land (e.g. to
// compute a capture list before the capturing code is emitted) use this.
func (b *Builder) NextSlot() Slot { return b.nextSlot }

// ConsumeSlot allocates and returns a fresh slot, advancing the counter so
// the next call returns a different slot.
func (b *Builder) ConsumeSlot() Slot {
	s := b.nextSlot
	b.nextSlot++
	return s
}

// SetNextSlot overwrites the slot counter directly. The compiler uses this
// to keep its own bookkeeping of "where the next value will land" in sync
// with a `rewind` instruction it has just emitted (case/cond clause
// retries, restoring the enclosing scope's slot counter after compiling a
// closure body in its own clean slot space).
func (b *Builder) SetNextSlot(s Slot) { b.nextSlot = s }

// PatchJump rewrites the target of the Jump or FalseJump instruction at off
// to target. Panics if the instruction at off is not a jump.
func (b *Builder) PatchJump(off Offset, target Offset) {
	switch b.code[off].(type) {
	case Jump:
		b.code[off] = Jump{Target: target}
	case FalseJump:
		b.code[off] = FalseJump{Target: target}
	default:
		panic(fmt.Sprintf("code: PatchJump at %d: not a jump instruction", off))
	}
}

// Finish returns the assembled Code.
func (b *Builder) Finish() Code { return b.code }

// Disassemble renders code as the canonical textual form: one instruction
// per line prefixed by `%NNN` (the offset), followed by the mnemonic and
// operands. Slot references render as `$N`, instruction-offset operands
// (jump targets, closure code ranges) render as `%N`, symbols as `:name`,
// and strings double-quoted — exactly the encoding named for bytecode
// diagnostics, so two instructions with equal opcode and operands always
// render identically. Column alignment (left-justified mnemonic) follows
// the layout the teacher's internal/vm/disasm.go uses for its own
// disassembly text.
func Disassemble(c Code) string {
	var sb strings.Builder
	for i, inst := range c {
		fmt.Fprintf(&sb, "%%%03d %-18s %s\n", i, inst.Op().String(), operandsOf(inst))
	}
	return sb.String()
}

func operandsOf(inst Instruction) string {
	switch v := inst.(type) {
	case Ret:
		return slotStr(v.Slot)
	case Call:
		return fmt.Sprintf("fn=%s arg=%s", slotStr(v.Fn), slotStr(v.Arg))
	case CallMFA:
		return fmt.Sprintf("mod=%s fn=%s arg=%s", symbolStr(v.Module), symbolStr(v.Fn), slotStr(v.Arg))
	case Add:
		return fmt.Sprintf("%s %s", slotStr(v.A), slotStr(v.B))
	case Sub:
		return fmt.Sprintf("%s %s", slotStr(v.A), slotStr(v.B))
	case Mul:
		return fmt.Sprintf("%s %s", slotStr(v.A), slotStr(v.B))
	case Div:
		return fmt.Sprintf("%s %s", slotStr(v.A), slotStr(v.B))
	case Neg:
		return slotStr(v.Arg)
	case Concat:
		return fmt.Sprintf("%s %s", slotStr(v.A), slotStr(v.B))
	case Eq:
		return fmt.Sprintf("%s %s", slotStr(v.A), slotStr(v.B))
	case Neq:
		return fmt.Sprintf("%s %s", slotStr(v.A), slotStr(v.B))
	case ConstInt:
		return strconv.FormatInt(v.Value, 10)
	case ConstReal:
		return strconv.FormatFloat(v.Value, 'g', -1, 64)
	case ConstSymbol:
		return symbolStr(v.Sym)
	case ConstStr:
		return strconv.Quote(v.Value)
	case HardMatch:
		return fmt.Sprintf("lhs=%s rhs=%s", slotStr(v.Lhs), slotStr(v.Rhs))
	case TryMatch:
		return fmt.Sprintf("lhs=%s rhs=%s", slotStr(v.Lhs), slotStr(v.Rhs))
	case TryMatchConj:
		return fmt.Sprintf("lhs=%s rhs=%s", slotStr(v.Lhs), slotStr(v.Rhs))
	case ConstBindingSlot:
		return slotStr(v.Slot)
	case MkTupleN:
		return slotListStr(v.Slots)
	case MkList:
		return slotListStr(v.Slots)
	case MkMap:
		return slotListStr(v.Slots)
	case Jump:
		return offsetStr(v.Target)
	case TestTrue:
		return slotStr(v.Slot)
	case FalseJump:
		return offsetStr(v.Target)
	case Rewind:
		return slotStr(v.Slot)
	case Dot:
		return fmt.Sprintf("obj=%s attr=%s", slotStr(v.Object), slotStr(v.Attr))
	case IsList:
		return slotStr(v.Arg)
	case IsSymbol:
		return slotStr(v.Arg)
	case IsString:
		return slotStr(v.Arg)
	case Raise:
		return slotStr(v.Arg)
	case NoClause:
		return slotStr(v.Unmatched)
	case MkClosure:
		return fmt.Sprintf("[%s,%s) captures=%s", offsetStr(v.CodeBegin), offsetStr(v.CodeEnd), slotListStr(v.Captures))
	case MkCons:
		return fmt.Sprintf("lhs=%s rhs=%s", slotStr(v.Lhs), slotStr(v.Rhs))
	case PushFront:
		return fmt.Sprintf("elem=%s list=%s", slotStr(v.Elem), slotStr(v.List))
	case FrameID:
		return strconv.Quote(v.ID)
	case Tail:
		return fmt.Sprintf("fn=%s arg=%s", slotStr(v.Fn), slotStr(v.Arg))
	case TailMFA:
		return fmt.Sprintf("mod=%s fn=%s arg=%s", symbolStr(v.Module), symbolStr(v.Fn), slotStr(v.Arg))
	case ToString:
		return slotStr(v.Arg)
	case Inspect:
		return slotStr(v.Arg)
	default:
		return ""
	}
}

func slotStr(s Slot) string { return fmt.Sprintf("$%d", s) }

func offsetStr(o Offset) string { return fmt.Sprintf("%%%d", o) }

func symbolStr(id symbol.ID) string { return ":" + symbol.Name(id) }

func slotListStr(slots []Slot) string {
	parts := make([]string, len(slots))
	for i, s := range slots {
		parts[i] = slotStr(s)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
