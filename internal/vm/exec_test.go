package vm

import (
	"errors"
	"testing"

	"github.com/funvibe/lix/internal/boxed"
	"github.com/funvibe/lix/internal/code"
	"github.com/funvibe/lix/internal/module"
	"github.com/funvibe/lix/internal/symbol"
	"github.com/funvibe/lix/internal/value"
)

// TestArithmeticExpression hand-assembles `2 + (6 - 2)`, one of spec.md §8's
// worked end-to-end scenarios (expected result 6).
func TestArithmeticExpression(t *testing.T) {
	c := code.Code{
		code.ConstInt{Value: 2},    // s0
		code.ConstInt{Value: 6},    // s1
		code.ConstInt{Value: 2},    // s2
		code.Sub{A: 1, B: 2},       // s3 = s1 - s2
		code.Add{A: 0, B: 3},       // s4 = s0 + s3
		code.Ret{Slot: 4},
	}
	exec := NewExecutor(module.NewContext(), nil)
	result, err := exec.ExecuteAll(c, 0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Kind() != value.KindInt || result.Int() != 6 {
		t.Fatalf("got %v, want Integer 6", result)
	}
}

// TestTupleDestructure hand-assembles `tup = {1,2,3}; {first,2,3} = tup;
// first + 45` (spec.md §8, expected 46).
func TestTupleDestructure(t *testing.T) {
	c := code.Code{
		code.ConstInt{Value: 1},                      // s0
		code.ConstInt{Value: 2},                       // s1
		code.ConstInt{Value: 3},                       // s2
		code.MkTupleN{Slots: []code.Slot{0, 1, 2}},    // s3 = tup
		code.ConstBindingSlot{Slot: 4},                // s4 = first (pattern var)
		code.ConstInt{Value: 2},                       // s5
		code.ConstInt{Value: 3},                       // s6
		code.MkTupleN{Slots: []code.Slot{4, 5, 6}},    // s7 = {first, 2, 3} pattern
		code.HardMatch{Lhs: 7, Rhs: 3},                // binds s4 = 1
		code.ConstInt{Value: 45},                      // s8
		code.Add{A: 4, B: 8},                          // s9 = first + 45
		code.Ret{Slot: 9},
	}
	exec := NewExecutor(module.NewContext(), nil)
	result, err := exec.ExecuteAll(c, 0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Kind() != value.KindInt || result.Int() != 46 {
		t.Fatalf("got %v, want Integer 46", result)
	}
}

// TestNoClauseRaisesNoMatch hand-assembles `case 5 do 1 -> nil end`, which
// must raise {:nomatch, 5} since no clause head matches.
func TestNoClauseRaisesNoMatch(t *testing.T) {
	c := code.Code{
		code.ConstInt{Value: 5},            // s0 subject
		code.ConstInt{Value: 1},             // s1 clause pattern literal
		code.TryMatch{Lhs: 1, Rhs: 0},
		code.FalseJump{Target: 6},
		code.ConstSymbol{Sym: symbol.Intern("nil")}, // s2, body (skipped)
		code.Ret{Slot: 2},
		code.NoClause{Unmatched: 0},
	}
	exec := NewExecutor(module.NewContext(), nil)
	_, err := exec.ExecuteAll(c, 0, nil)
	var rerr *RuntimeError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected a RuntimeError, got %v", err)
	}
	tup := rerr.Reason.Tuple()
	if len(tup) != 2 || tup[0].SymbolName() != "nomatch" || tup[1].Int() != 5 {
		t.Fatalf("got raise reason %v, want {:nomatch, 5}", rerr.Reason)
	}
}

// TestClosureCapturesBySnapshot hand-assembles `x=12; f=fn _ -> x end;
// x=99; f.(:ignored)`, verifying a closure captures the value a variable
// held at closure-construction time, not a live reference to the slot
// (spec.md §8's capture-snapshot example; expected 12).
func TestClosureCapturesBySnapshot(t *testing.T) {
	c := code.Code{
		code.ConstInt{Value: 12}, // s0: x = 12, offset 0
		code.Jump{Target: 3},     // jump over the closure body, offset 1
		// closure body (CodeBegin=2, CodeEnd=3): captures=[x] lands at
		// slot 0 inside the closure's own frame; the call argument would
		// land at slot 1 but this body ignores it.
		code.Ret{Slot: 0}, // offset 2
		code.MkClosure{CodeBegin: 2, CodeEnd: 3, Captures: []code.Slot{0}}, // s1 = f, offset 3
		code.ConstInt{Value: 99},                                          // s2: x = 99 (does not affect f's capture), offset 4
		code.ConstSymbol{Sym: symbol.Intern("ignored")},                   // s3: arg, offset 5
		code.Call{Fn: 1, Arg: 3},                                          // s4 = f.(:ignored), offset 6
		code.Ret{Slot: 4},                                                 // offset 7
	}
	exec := NewExecutor(module.NewContext(), nil)
	result, err := exec.ExecuteAll(c, 0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Kind() != value.KindInt || result.Int() != 12 {
		t.Fatalf("got %v, want Integer 12 (captured before reassignment)", result)
	}
}

// TestCallMFADispatchesToModule hand-assembles `M.g(13)` for a module M
// registering g(v) = v + 42 as a native Function, matching spec.md §8's
// `defmodule M do def g(v), do: v+42 end; M.g(13)` scenario (expected 55).
func TestCallMFADispatchesToModule(t *testing.T) {
	ctx := module.NewContext()
	m := module.NewModule("M")
	m.AddFunction("g", value.FunctionVal(&value.Function{
		Name: "g",
		Call: func(interp value.Interpreter, arg value.Value) value.Value {
			return value.Int(arg.Int() + 42)
		},
	}))
	ctx.RegisterModule(m)

	c := code.Code{
		code.ConstInt{Value: 13}, // s0
		code.CallMFA{Module: symbol.Intern("M"), Fn: symbol.Intern("g"), Arg: 0}, // s1
		code.Ret{Slot: 1},
	}
	exec := NewExecutor(ctx, nil)
	result, err := exec.ExecuteAll(c, 0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Kind() != value.KindInt || result.Int() != 55 {
		t.Fatalf("got %v, want Integer 55", result)
	}
}

// TestDivisionByZeroRaisesBadArith exercises the arithmetic raise path.
func TestDivisionByZeroRaisesBadArith(t *testing.T) {
	c := code.Code{
		code.ConstInt{Value: 10},
		code.ConstInt{Value: 0},
		code.Div{A: 0, B: 1},
		code.Ret{Slot: 2},
	}
	exec := NewExecutor(module.NewContext(), nil)
	_, err := exec.ExecuteAll(c, 0, nil)
	var rerr *RuntimeError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected a RuntimeError, got %v", err)
	}
	if rerr.Reason.Kind() != value.KindTuple || rerr.Reason.Tuple()[0].SymbolName() != "badarith" {
		t.Fatalf("got raise reason %v, want a :badarith tuple", rerr.Reason)
	}
}

// TestDotOnBoxedRoutesThroughRegistry exercises the Boxed branch of the Dot
// instruction's three-case dispatch.
func TestDotOnBoxedRoutesThroughRegistry(t *testing.T) {
	reg := boxed.NewRegistry()
	reg.Register("Conn", "status", func(data any) (value.Value, error) {
		return value.SymOf(data.(string)), nil
	})
	box := value.NewBoxed("Conn", "open")

	c := code.Code{
		code.ConstSymbol{Sym: symbol.Intern("status")}, // s2: attr name
		code.Dot{Object: 1, Attr: 2},                   // s3 = obj.status
		code.Ret{Slot: 3},
	}
	// The frame starts with two initial slots already occupied (index 0
	// unused, index 1 the boxed value), so the first emitted instruction's
	// result lands at index 2, continuing the append-only slot sequence.
	initial := []value.Value{value.Value{}, value.BoxedVal(box)}
	exec := NewExecutor(module.NewContext(), reg)
	result, err := exec.ExecuteAll(c, 0, initial)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Kind() != value.KindSymbol || result.SymbolName() != "open" {
		t.Fatalf("got %v, want :open", result)
	}
}
