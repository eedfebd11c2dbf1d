package ast

import (
	"testing"

	"github.com/funvibe/lix/internal/symbol"
)

func TestIsVarRecognizesVarSentinelOnly(t *testing.T) {
	v := Var("x", Meta{})
	name, ok := v.IsVar()
	if !ok || name != "x" {
		t.Fatalf("expected IsVar to report x, got %q %v", name, ok)
	}

	call := Call(SymOf("f"), Meta{}, List([]Node{Int(1)}))
	if _, ok := call.IsVar(); ok {
		t.Fatalf("expected an ordinary call not to report as a var")
	}
}

func TestCallTargetAndArgList(t *testing.T) {
	n := Call(SymOf("+"), Meta{}, List([]Node{Int(1), Int(2)}))
	name, ok := n.CallTarget()
	if !ok || name != "+" {
		t.Fatalf("expected target +, got %q %v", name, ok)
	}
	elems, ok := n.ArgList()
	if !ok || len(elems) != 2 {
		t.Fatalf("expected 2-elem arg list, got %v %v", elems, ok)
	}
}

func TestToValueFromValueRoundTrip(t *testing.T) {
	n := Call(SymOf("+"), Meta{Module: "M", Function: "f", Line: 3}, List([]Node{Int(1), Int(2)}))
	v := ToValue(n)
	back, err := FromValue(v)
	if err != nil {
		t.Fatalf("FromValue: %v", err)
	}
	name, ok := back.CallTarget()
	if !ok || name != "+" {
		t.Fatalf("round-tripped call lost its target, got %q %v", name, ok)
	}
	if back.Meta.Module != "M" || back.Meta.Function != "f" || back.Meta.Line != 3 {
		t.Fatalf("round-tripped call lost its meta, got %+v", back.Meta)
	}
}

func TestFromValuePlainTupleStaysATuple(t *testing.T) {
	// A plain 3-tuple of non-call shape (middle element isn't a meta map)
	// must come back as a data tuple, not be misread as a call.
	n := Tuple([]Node{Int(1), Int(2), Int(3)})
	v := ToValue(n)
	back, err := FromValue(v)
	if err != nil {
		t.Fatalf("FromValue: %v", err)
	}
	if back.Kind != KindTuple || len(back.Elems) != 3 {
		t.Fatalf("expected a 3-tuple back, got %+v", back)
	}
}

func TestStringRendersCallsListsAndVars(t *testing.T) {
	n := Call(SymOf("f"), Meta{}, List([]Node{Var("x", Meta{}), Int(1), List([]Node{Int(2), Int(3)})}))
	got := n.String()
	want := "f(x, 1, [2, 3])"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestStringRendersSymbolsAndStrings(t *testing.T) {
	tup := Tuple([]Node{Sym(symbol.Intern("ok")), Str("hi")})
	got := tup.String()
	want := `{:ok, "hi"}`
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
