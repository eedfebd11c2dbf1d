// Package match implements structural pattern matching between a pattern
// Value (one that may contain BindingSlot or Cons alternatives) and a
// concrete Value, writing bindings into the frame that is matching.
//
// Grounded in original_source/source/let/exec/exec.cpp's _match/_do_match
// pair: a binding-slot always succeeds and writes; tuples and conses
// recurse structurally; everything else falls back to value equality.
package match

import (
	"github.com/funvibe/lix/internal/code"
	"github.com/funvibe/lix/internal/value"
)

// SlotWriter is the minimal capability Match needs from its caller: a place
// to write values bound by a successful binding-slot match. The VM's Frame
// satisfies this; declaring the interface here (rather than importing
// internal/vm) keeps match a leaf package with no dependency on the
// executor that drives it.
type SlotWriter interface {
	SetSlot(slot code.Slot, v value.Value)
	GetSlot(slot code.Slot) value.Value
}

// Match attempts to match rhs against the pattern lhs, writing any
// resulting bindings into w, and reports whether the match succeeded. A
// failed match may still have written some bindings from the portion of
// the pattern that matched before failure; callers that need transactional
// semantics (case/cond clause attempts) rewind the frame's slot array on
// failure rather than relying on Match to undo partial writes — exactly as
// spec.md §4.5's case/cond lowering algorithm does with its `rewind`
// instruction.
func Match(w SlotWriter, lhs, rhs value.Value) bool {
	if lhs.Kind() == value.KindBindingSlot {
		slot := lhs.BindingSlot()
		// A pattern variable referenced more than once compiles to the
		// same binding slot both times (the compiler's scope lookup
		// returns an already-bound name's existing slot rather than
		// allocating a fresh one). The slot still holding its own
		// unbound marker means this is the first occurrence; anything
		// else means a prior occurrence already bound it, so linearity
		// requires the new occurrence's value to match it exactly
		// (`{k, k} = {:a, :b}` must fail; `{k, k} = {:a, :a}` must not).
		current := w.GetSlot(slot)
		if current.Kind() == value.KindBindingSlot && current.BindingSlot() == slot {
			w.SetSlot(slot, rhs)
			return true
		}
		return value.Equal(current, rhs)
	}
	if lhs.Kind() == value.KindCons {
		if rhs.Kind() != value.KindList || rhs.List() == nil {
			return false
		}
		c := lhs.ConsVal()
		head := rhs.List().Head
		tail := value.ListVal(rhs.List().Tail)
		return Match(w, c.Head, head) && Match(w, c.Tail, tail)
	}
	if lhs.Kind() == value.KindTuple {
		if rhs.Kind() != value.KindTuple {
			return false
		}
		lt, rt := lhs.Tuple(), rhs.Tuple()
		if len(lt) != len(rt) {
			return false
		}
		for i := range lt {
			if !Match(w, lt[i], rt[i]) {
				return false
			}
		}
		return true
	}
	if lhs.Kind() == value.KindList {
		if rhs.Kind() != value.KindList {
			return false
		}
		ln, rn := lhs.List(), rhs.List()
		for {
			if ln == nil || rn == nil {
				return ln == nil && rn == nil
			}
			if !Match(w, ln.Head, rn.Head) {
				return false
			}
			ln, rn = ln.Tail, rn.Tail
		}
	}
	return value.Equal(lhs, rhs)
}
