package hamt

import "testing"

func hashInt(k int) uint32  { return uint32(k) }
func eqInt(a, b int) bool   { return a == b }

func TestEmptyMapFind(t *testing.T) {
	m := New[int, string](hashInt, eqInt)
	if _, ok := m.Find(1); ok {
		t.Fatalf("expected empty map to have no entries")
	}
	if m.Len() != 0 {
		t.Fatalf("expected len 0, got %d", m.Len())
	}
}

func TestInsertOrUpdateIsPersistent(t *testing.T) {
	base := New[int, string](hashInt, eqInt)
	m1 := base.InsertOrUpdate(1, "one")
	m2 := m1.InsertOrUpdate(2, "two")

	if _, ok := base.Find(1); ok {
		t.Fatalf("mutating m1 must not affect base")
	}
	if v, ok := m1.Find(1); !ok || v != "one" {
		t.Fatalf("m1[1] = %q, %v; want one, true", v, ok)
	}
	if _, ok := m1.Find(2); ok {
		t.Fatalf("m1 must not see m2's insert")
	}
	if v, ok := m2.Find(2); !ok || v != "two" {
		t.Fatalf("m2[2] = %q, %v; want two, true", v, ok)
	}
	if m1.Len() != 1 || m2.Len() != 2 {
		t.Fatalf("len m1=%d m2=%d; want 1, 2", m1.Len(), m2.Len())
	}
}

func TestInsertDuplicateFails(t *testing.T) {
	m := New[int, string](hashInt, eqInt).InsertOrUpdate(1, "one")
	if _, err := m.Insert(1, "uno"); err == nil {
		t.Fatalf("expected Insert of existing key to fail")
	}
}

func TestInsertOrUpdateReplaces(t *testing.T) {
	m := New[int, string](hashInt, eqInt).InsertOrUpdate(1, "one")
	m2 := m.InsertOrUpdate(1, "uno")
	if v, _ := m2.Find(1); v != "uno" {
		t.Fatalf("m2[1] = %q; want uno", v)
	}
	if v, _ := m.Find(1); v != "one" {
		t.Fatalf("original map must be unaffected, got %q", v)
	}
}

func TestPop(t *testing.T) {
	m := New[int, string](hashInt, eqInt).InsertOrUpdate(1, "one").InsertOrUpdate(2, "two")
	val, m2, ok := m.Pop(1)
	if !ok || val != "one" {
		t.Fatalf("Pop(1) = %q, %v; want one, true", val, ok)
	}
	if _, ok := m2.Find(1); ok {
		t.Fatalf("m2 must not contain popped key")
	}
	if _, ok := m.Find(1); !ok {
		t.Fatalf("original map must be unaffected by Pop")
	}
	if _, _, ok := m.Pop(99); ok {
		t.Fatalf("Pop of missing key must report ok=false")
	}
}

func TestManyInsertsSurviveCollisionBuckets(t *testing.T) {
	m := New[int, int](func(k int) uint32 { return uint32(k) % 4 }, eqInt)
	for i := 0; i < 200; i++ {
		m = m.InsertOrUpdate(i, i*10)
	}
	if m.Len() != 200 {
		t.Fatalf("len = %d; want 200", m.Len())
	}
	for i := 0; i < 200; i++ {
		v, ok := m.Find(i)
		if !ok || v != i*10 {
			t.Fatalf("Find(%d) = %d, %v; want %d, true", i, v, ok, i*10)
		}
	}
}
