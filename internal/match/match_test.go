package match

import (
	"testing"

	"github.com/funvibe/lix/internal/code"
	"github.com/funvibe/lix/internal/value"
)

// fakeFrame is a minimal SlotWriter for testing, independent of the real
// VM frame type.
type fakeFrame struct {
	slots []value.Value
}

func (f *fakeFrame) SetSlot(slot code.Slot, v value.Value) {
	for int(slot) >= len(f.slots) {
		f.slots = append(f.slots, value.Value{})
	}
	f.slots[slot] = v
}

func (f *fakeFrame) GetSlot(slot code.Slot) value.Value {
	return f.slots[slot]
}

func TestMatchBindingSlot(t *testing.T) {
	f := &fakeFrame{slots: []value.Value{value.BindingSlotVal(0)}}
	if !Match(f, value.BindingSlotVal(0), value.Int(42)) {
		t.Fatalf("binding-slot match must always succeed")
	}
	if f.GetSlot(0) != value.Int(42) {
		t.Fatalf("expected slot 0 to be bound to 42")
	}
}

func TestMatchTupleStructural(t *testing.T) {
	f := &fakeFrame{slots: []value.Value{value.BindingSlotVal(0)}}
	pattern := value.TupleOf([]value.Value{value.SymOf("ok"), value.BindingSlotVal(0)})
	subject := value.TupleOf([]value.Value{value.SymOf("ok"), value.Int(7)})
	if !Match(f, pattern, subject) {
		t.Fatalf("expected tuple pattern to match")
	}
	if f.GetSlot(0) != value.Int(7) {
		t.Fatalf("expected bound slot to hold 7")
	}

	mismatch := value.TupleOf([]value.Value{value.SymOf("error"), value.BindingSlotVal(0)})
	if Match(f, mismatch, subject) {
		t.Fatalf("expected tag mismatch to fail")
	}
}

func TestPatternLinearity(t *testing.T) {
	f := &fakeFrame{slots: []value.Value{value.BindingSlotVal(0)}}
	pattern := value.TupleOf([]value.Value{value.BindingSlotVal(0), value.BindingSlotVal(0)})

	if !Match(f, pattern, value.TupleOf([]value.Value{value.SymOf("a"), value.SymOf("a")})) {
		t.Fatalf("{k, k} = {:a, :a} must succeed")
	}

	f2 := &fakeFrame{slots: []value.Value{value.BindingSlotVal(0)}}
	if Match(f2, pattern, value.TupleOf([]value.Value{value.SymOf("a"), value.SymOf("b")})) {
		t.Fatalf("{k, k} = {:a, :b} must fail")
	}
}

func TestMatchCons(t *testing.T) {
	f := &fakeFrame{slots: []value.Value{value.BindingSlotVal(0), value.BindingSlotVal(1)}}
	pattern := value.ConsVal(&value.Cons{Head: value.BindingSlotVal(0), Tail: value.BindingSlotVal(1)})
	list := value.ListVal(value.ListFromSlice([]value.Value{value.Int(1), value.Int(2), value.Int(3)}))

	if !Match(f, pattern, list) {
		t.Fatalf("expected cons pattern to match a non-empty list")
	}
	if f.GetSlot(0) != value.Int(1) {
		t.Fatalf("expected head bound to 1")
	}
	tail := f.GetSlot(1)
	if tail.Kind() != value.KindList || tail.List().ListLen() != 2 {
		t.Fatalf("expected tail bound to remaining 2-element list")
	}
}

func TestMatchConsAgainstEmptyListFails(t *testing.T) {
	f := &fakeFrame{slots: []value.Value{value.BindingSlotVal(0), value.BindingSlotVal(1)}}
	pattern := value.ConsVal(&value.Cons{Head: value.BindingSlotVal(0), Tail: value.BindingSlotVal(1)})
	if Match(f, pattern, value.ListVal(nil)) {
		t.Fatalf("cons pattern must not match the empty list")
	}
}
