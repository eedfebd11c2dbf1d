package value

import "testing"

func TestEqualRequiresSameKind(t *testing.T) {
	if Equal(Int(2), Real(2.0)) {
		t.Fatalf("Integer and Real must never compare equal")
	}
	if !Equal(Int(2), Int(2)) {
		t.Fatalf("equal integers must compare equal")
	}
}

func TestEqualTuple(t *testing.T) {
	a := TupleOf([]Value{Int(1), SymOf("ok")})
	b := TupleOf([]Value{Int(1), SymOf("ok")})
	c := TupleOf([]Value{Int(1), SymOf("err")})
	if !Equal(a, b) {
		t.Fatalf("structurally identical tuples must be equal")
	}
	if Equal(a, c) {
		t.Fatalf("tuples differing in an element must not be equal")
	}
}

func TestEqualList(t *testing.T) {
	a := ListVal(ListFromSlice([]Value{Int(1), Int(2), Int(3)}))
	b := ListVal(ListFromSlice([]Value{Int(1), Int(2), Int(3)}))
	if !Equal(a, b) {
		t.Fatalf("structurally identical lists must be equal")
	}
	if Equal(a, ListVal(ListFromSlice([]Value{Int(1), Int(2)}))) {
		t.Fatalf("lists of different length must not be equal")
	}
}

func TestMapInsertAndFind(t *testing.T) {
	m := EmptyMap().InsertOrUpdate(SymOf("a"), Int(1))
	v, ok := m.Find(SymOf("a"))
	if !ok || !Equal(v, Int(1)) {
		t.Fatalf("expected to find bound key")
	}
	if _, ok := m.Find(SymOf("b")); ok {
		t.Fatalf("unbound key must not be found")
	}
}

func TestSymbolInterningIsStable(t *testing.T) {
	a := SymOf("hello")
	b := SymOf("hello")
	if a.SymbolID() != b.SymbolID() {
		t.Fatalf("interning the same spelling twice must yield the same ID")
	}
}

func TestHashableExcludesCompoundAndCallable(t *testing.T) {
	if ListVal(nil).Hashable() {
		t.Fatalf("List must not be hashable")
	}
	if EmptyMap(); MapVal(EmptyMap()).Hashable() {
		t.Fatalf("Map must not be hashable")
	}
	if Int(1).Hashable() != true {
		t.Fatalf("Integer must be hashable")
	}
}

func TestInspect(t *testing.T) {
	got := Inspect(TupleOf([]Value{SymOf("ok"), Int(42)}))
	want := "{:ok, 42}"
	if got != want {
		t.Fatalf("Inspect = %q; want %q", got, want)
	}
}
