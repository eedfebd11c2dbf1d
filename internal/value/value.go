// Package value implements the interpreter's runtime value model: the
// tagged union of Integer, Real, Symbol, String, Tuple, List, Map, Function,
// Closure, Cons, BindingSlot, and Boxed described by the data model.
//
// Value is a small struct rather than an interface, the way the teacher's
// internal/vm/value.go represents its own runtime values (a Kind tag plus
// inline scalar fields and a single interface field for heap-shaped
// payloads) — generalized here to the variant set this interpreter needs
// instead of the teacher's own (Record/Trait/Iterator/...) set. The shape
// itself is grounded in original_source/source/let/value.hpp, whose union
// has every alternative above except Map (see internal/code's MkMap).
package value

import (
	"github.com/funvibe/lix/internal/code"
	"github.com/funvibe/lix/internal/symbol"
)

// Kind discriminates which alternative a Value holds.
type Kind uint8

const (
	KindInt Kind = iota
	KindReal
	KindSymbol
	KindString
	KindTuple
	KindList
	KindMap
	KindFunction
	KindClosure
	KindCons
	KindBindingSlot
	KindBoxed
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "integer"
	case KindReal:
		return "real"
	case KindSymbol:
		return "symbol"
	case KindString:
		return "string"
	case KindTuple:
		return "tuple"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindFunction:
		return "function"
	case KindClosure:
		return "closure"
	case KindCons:
		return "cons"
	case KindBindingSlot:
		return "binding_slot"
	case KindBoxed:
		return "boxed"
	default:
		return "unknown"
	}
}

// Value is the universal runtime value. The zero Value is the integer 0;
// there is no "no value" state — callers that need optionality wrap Value
// themselves.
type Value struct {
	kind Kind
	i    int64   // KindInt, KindSymbol (as symbol.ID), KindBindingSlot (as slot index)
	f    float64 // KindReal
	str  string  // KindString
	obj  any     // KindTuple ([]Value), KindList (*ListNode), KindMap (*Map),
	// KindFunction (*Function), KindClosure (*Closure), KindCons (*Cons),
	// KindBoxed (*Boxed)
}

// Kind reports which alternative v holds.
func (v Value) Kind() Kind { return v.kind }

// --- constructors ---

// Int returns an Integer value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Real returns a Real value.
func Real(f float64) Value { return Value{kind: KindReal, f: f} }

// Sym returns a Symbol value for an already-interned ID.
func Sym(id symbol.ID) Value { return Value{kind: KindSymbol, i: int64(id)} }

// SymOf interns name and returns the resulting Symbol value.
func SymOf(name string) Value { return Sym(symbol.Intern(name)) }

// Str returns a String value.
func Str(s string) Value { return Value{kind: KindString, str: s} }

// TupleOf returns a Tuple value. elems is retained, not copied; callers must
// not mutate it afterward (tuples are immutable once constructed).
func TupleOf(elems []Value) Value { return Value{kind: KindTuple, obj: elems} }

// ListVal wraps a *ListNode (nil meaning the empty list) as a Value.
func ListVal(l *ListNode) Value { return Value{kind: KindList, obj: l} }

// MapVal wraps a *Map as a Value.
func MapVal(m *Map) Value { return Value{kind: KindMap, obj: m} }

// FunctionVal wraps a *Function as a Value.
func FunctionVal(fn *Function) Value { return Value{kind: KindFunction, obj: fn} }

// ClosureVal wraps a *Closure as a Value.
func ClosureVal(c *Closure) Value { return Value{kind: KindClosure, obj: c} }

// ConsVal wraps a *Cons (pattern-only) as a Value.
func ConsVal(c *Cons) Value { return Value{kind: KindCons, obj: c} }

// BindingSlotVal returns a binding-slot placeholder (pattern-only) naming a
// compiler-assigned slot index.
func BindingSlotVal(slot code.Slot) Value { return Value{kind: KindBindingSlot, i: int64(slot)} }

// BoxedVal wraps a *Boxed host value as a Value.
func BoxedVal(b *Boxed) Value { return Value{kind: KindBoxed, obj: b} }

// --- accessors; each panics if v is not of the matching Kind, the same
// contract as the teacher's As* accessors on its own tagged value type ---

func (v Value) Int() int64 {
	v.mustBe(KindInt)
	return v.i
}

func (v Value) RealVal() float64 {
	v.mustBe(KindReal)
	return v.f
}

func (v Value) SymbolID() symbol.ID {
	v.mustBe(KindSymbol)
	return symbol.ID(v.i)
}

func (v Value) SymbolName() string { return symbol.Name(v.SymbolID()) }

func (v Value) StringVal() string {
	v.mustBe(KindString)
	return v.str
}

func (v Value) Tuple() []Value {
	v.mustBe(KindTuple)
	return v.obj.([]Value)
}

func (v Value) List() *ListNode {
	v.mustBe(KindList)
	if v.obj == nil {
		return nil
	}
	return v.obj.(*ListNode)
}

func (v Value) Map() *Map {
	v.mustBe(KindMap)
	return v.obj.(*Map)
}

func (v Value) Function() *Function {
	v.mustBe(KindFunction)
	return v.obj.(*Function)
}

func (v Value) Closure() *Closure {
	v.mustBe(KindClosure)
	return v.obj.(*Closure)
}

func (v Value) ConsVal() *Cons {
	v.mustBe(KindCons)
	return v.obj.(*Cons)
}

func (v Value) BindingSlot() code.Slot {
	v.mustBe(KindBindingSlot)
	return code.Slot(v.i)
}

func (v Value) Boxed() *Boxed {
	v.mustBe(KindBoxed)
	return v.obj.(*Boxed)
}

func (v Value) mustBe(k Kind) {
	if v.kind != k {
		panic("value: " + v.kind.String() + " is not a " + k.String())
	}
}

// IsNumeric reports whether v is an Integer or a Real.
func (v Value) IsNumeric() bool { return v.kind == KindInt || v.kind == KindReal }

// IsPatternOnly reports whether v may only appear on the left-hand side of a
// match (Cons, BindingSlot) and never as a runtime data value.
func (v Value) IsPatternOnly() bool { return v.kind == KindCons || v.kind == KindBindingSlot }

// Hashable reports whether v may be used as a Map key or Tuple/List element
// requiring structural hashing. List, Map, Closure, Function, and Boxed are
// not hashable.
func (v Value) Hashable() bool {
	switch v.kind {
	case KindList, KindMap, KindClosure, KindFunction, KindBoxed:
		return false
	default:
		return true
	}
}
