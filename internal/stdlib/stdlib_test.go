package stdlib

import (
	"testing"

	"github.com/funvibe/lix/internal/boxed"
	"github.com/funvibe/lix/internal/module"
	"github.com/funvibe/lix/internal/value"
)

func call(t *testing.T, mod *module.Module, name string, args ...value.Value) value.Value {
	t.Helper()
	fn, ok := mod.Function(name)
	if !ok {
		t.Fatalf("no function %s registered", name)
	}
	return fn.Function().Call(nil, value.TupleOf(args))
}

func TestIOPutsReturnsArgUnchanged(t *testing.T) {
	mod := BuildIOModule()
	got := call(t, mod, "puts", value.Str("hello"))
	if got.Kind() != value.KindString || got.StringVal() != "hello" {
		t.Fatalf("expected puts to return its argument, got %v", got)
	}
}

func TestStringUpcaseSplitLength(t *testing.T) {
	mod := BuildStringModule()
	up := call(t, mod, "upcase", value.Str("abc"))
	if up.StringVal() != "ABC" {
		t.Fatalf("expected ABC, got %q", up.StringVal())
	}
	split := call(t, mod, "split", value.Str("a,b,c"), value.Str(","))
	parts := split.List().ToSlice()
	if len(parts) != 3 || parts[1].StringVal() != "b" {
		t.Fatalf("expected [a b c], got %v", parts)
	}
	length := call(t, mod, "length", value.Str("héllo"))
	if length.Int() != 5 {
		t.Fatalf("expected rune length 5, got %d", length.Int())
	}
}

func TestPathJoinBasename(t *testing.T) {
	mod := BuildPathModule()
	elems := []value.Value{value.Str("a"), value.Str("b"), value.Str("c.txt")}
	joined := call(t, mod, "join", value.ListVal(value.ListFromSlice(elems)))
	if joined.StringVal() != "a/b/c.txt" {
		t.Fatalf("expected a/b/c.txt, got %q", joined.StringVal())
	}
	base := call(t, mod, "basename", value.Str("a/b/c.txt"))
	if base.StringVal() != "c.txt" {
		t.Fatalf("expected c.txt, got %q", base.StringVal())
	}
}

func TestRegexMatchAndRun(t *testing.T) {
	mod := BuildRegexModule()
	matched := call(t, mod, "match?", value.Str(`\d+`), value.Str("abc123"))
	if !value.IsTruthy(matched) {
		t.Fatalf("expected match, got %v", matched)
	}
	run := call(t, mod, "run", value.Str(`(\d+)`), value.Str("abc123"))
	tup := run.Tuple()
	if tup[0].SymbolName() != "ok" {
		t.Fatalf("expected {:ok, _}, got %v", run)
	}
	matches := tup[1].List().ToSlice()
	if len(matches) != 2 || matches[1].StringVal() != "123" {
		t.Fatalf("expected [\"123\" \"123\"], got %v", matches)
	}
}

func TestUuidV4LooksLikeAUuid(t *testing.T) {
	mod := BuildUuidModule()
	got := call(t, mod, "v4")
	if got.Kind() != value.KindString || len(got.StringVal()) != 36 {
		t.Fatalf("expected a 36-char UUID string, got %v", got)
	}
}

func TestBitstringPackUnpackRoundTrip(t *testing.T) {
	registry := boxed.NewRegistry()
	mod := BuildBitstringModule(registry)
	elems := []value.Value{value.Int(1), value.Int(2), value.Int(255)}
	packed := call(t, mod, "pack", value.ListVal(value.ListFromSlice(elems)))
	tup := packed.Tuple()
	if tup[0].SymbolName() != "ok" {
		t.Fatalf("expected {:ok, _}, got %v", packed)
	}
	unpacked := call(t, mod, "unpack", tup[1], value.Int(8))
	utup := unpacked.Tuple()
	if utup[0].SymbolName() != "ok" {
		t.Fatalf("expected {:ok, _}, got %v", unpacked)
	}
	got := utup[1].List().ToSlice()
	if len(got) != 3 || got[0].Int() != 1 || got[2].Int() != 255 {
		t.Fatalf("expected [1 2 255], got %v", got)
	}
}
