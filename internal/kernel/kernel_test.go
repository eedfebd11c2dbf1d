package kernel

import (
	"errors"
	"testing"

	"github.com/funvibe/lix/internal/ast"
	"github.com/funvibe/lix/internal/compiler"
	"github.com/funvibe/lix/internal/macro"
	"github.com/funvibe/lix/internal/value"
	"github.com/funvibe/lix/internal/vm"
)

// TestDefmoduleDefEndToEnd compiles and runs:
//
//	defmodule M do
//	  def g(v), do: v + 42
//	end
//	M.g(13)
//
// (spec.md §8, expected 55), exercising the full Kernel/bootstrap pipeline:
// defmodule/def macro expansion, the compile-time function accumulator,
// finalize_module's same-module call qualification, and a real qualified
// dispatch back out through the Context's module registry.
func TestDefmoduleDefEndToEnd(t *testing.T) {
	meta := ast.Meta{}

	sigCall := ast.Call(ast.SymOf("g"), meta, ast.List([]ast.Node{ast.Var("v", meta)}))
	defBody := ast.Call(ast.SymOf("+"), meta, ast.List([]ast.Node{ast.Var("v", meta), ast.Int(42)}))
	defCall := ast.Call(ast.SymOf("def"), meta, ast.List([]ast.Node{
		sigCall,
		ast.List([]ast.Node{ast.Tuple([]ast.Node{ast.SymOf("do"), defBody})}),
	}))
	defmoduleCall := ast.Call(ast.SymOf("defmodule"), meta, ast.List([]ast.Node{
		ast.SymOf("M"),
		ast.List([]ast.Node{ast.Tuple([]ast.Node{ast.SymOf("do"), defCall})}),
	}))

	callTarget := ast.Call(ast.SymOf("."), meta, ast.List([]ast.Node{ast.SymOf("M"), ast.SymOf("g")}))
	callMG13 := ast.Call(callTarget, meta, ast.List([]ast.Node{ast.Int(13)}))

	program := ast.Call(ast.SymOf("__block__"), meta, ast.List([]ast.Node{defmoduleCall, callMG13}))

	ctx := BuildKernelContext(nil)

	expanded, err := macro.Expand(ctx, program)
	if err != nil {
		t.Fatalf("macro expansion failed: %v", err)
	}
	code, err := compiler.CompileRoot(expanded)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	result, err := vm.NewExecutor(ctx, nil).ExecuteAll(code, 0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Kind() != value.KindInt || result.Int() != 55 {
		t.Fatalf("got %v, want Integer 55", result)
	}

	mod, ok := ctx.Module("M")
	if !ok {
		t.Fatalf("module M was not registered")
	}
	if _, ok := mod.Function("g"); !ok {
		t.Fatalf("M.g was not registered on the module")
	}
}

// TestDefmoduleCallsSiblingFunctionUnqualified verifies finalize_module's
// call-site qualification: a def body calling another def'd name in the
// same module by its bare name must resolve correctly.
func TestDefmoduleCallsSiblingFunctionUnqualified(t *testing.T) {
	meta := ast.Meta{}

	// def double(v), do: v + v
	doubleSig := ast.Call(ast.SymOf("double"), meta, ast.List([]ast.Node{ast.Var("v", meta)}))
	doubleBody := ast.Call(ast.SymOf("+"), meta, ast.List([]ast.Node{ast.Var("v", meta), ast.Var("v", meta)}))
	doubleDef := ast.Call(ast.SymOf("def"), meta, ast.List([]ast.Node{
		doubleSig,
		ast.List([]ast.Node{ast.Tuple([]ast.Node{ast.SymOf("do"), doubleBody})}),
	}))

	// def quadruple(v), do: double(double(v))
	quadSig := ast.Call(ast.SymOf("quadruple"), meta, ast.List([]ast.Node{ast.Var("v", meta)}))
	innerCall := ast.Call(ast.SymOf("double"), meta, ast.List([]ast.Node{ast.Var("v", meta)}))
	outerCall := ast.Call(ast.SymOf("double"), meta, ast.List([]ast.Node{innerCall}))
	quadDef := ast.Call(ast.SymOf("def"), meta, ast.List([]ast.Node{
		quadSig,
		ast.List([]ast.Node{ast.Tuple([]ast.Node{ast.SymOf("do"), outerCall})}),
	}))

	block := ast.Call(ast.SymOf("__block__"), meta, ast.List([]ast.Node{doubleDef, quadDef}))
	defmoduleCall := ast.Call(ast.SymOf("defmodule"), meta, ast.List([]ast.Node{
		ast.SymOf("N"),
		ast.List([]ast.Node{ast.Tuple([]ast.Node{ast.SymOf("do"), block})}),
	}))

	callTarget := ast.Call(ast.SymOf("."), meta, ast.List([]ast.Node{ast.SymOf("N"), ast.SymOf("quadruple")}))
	callNQ := ast.Call(callTarget, meta, ast.List([]ast.Node{ast.Int(5)}))

	program := ast.Call(ast.SymOf("__block__"), meta, ast.List([]ast.Node{defmoduleCall, callNQ}))

	ctx := BuildKernelContext(nil)
	expanded, err := macro.Expand(ctx, program)
	if err != nil {
		t.Fatalf("macro expansion failed: %v", err)
	}
	c, err := compiler.CompileRoot(expanded)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	result, err := vm.NewExecutor(ctx, nil).ExecuteAll(c, 0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Kind() != value.KindInt || result.Int() != 20 {
		t.Fatalf("got %v, want Integer 20 (5 doubled twice)", result)
	}
}

// TestDefOutsideDefmoduleRaises verifies `def` used without an enclosing
// `defmodule` raises rather than panicking uncontrolled.
func TestDefOutsideDefmoduleRaises(t *testing.T) {
	meta := ast.Meta{}
	sig := ast.Call(ast.SymOf("f"), meta, ast.List([]ast.Node{ast.Var("x", meta)}))
	body := ast.Var("x", meta)
	defCall := ast.Call(ast.SymOf("def"), meta, ast.List([]ast.Node{
		sig,
		ast.List([]ast.Node{ast.Tuple([]ast.Node{ast.SymOf("do"), body})}),
	}))

	ctx := BuildKernelContext(nil)
	expanded, err := macro.Expand(ctx, defCall)
	if err != nil {
		t.Fatalf("macro expansion failed: %v", err)
	}
	c, err := compiler.CompileRoot(expanded)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	_, err = vm.NewExecutor(ctx, nil).ExecuteAll(c, 0, nil)
	var rerr *vm.RuntimeError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected a RuntimeError, got %v", err)
	}
}

// TestMapPopPutFetch exercises Kernel's HAMT-backed map primitives against
// the semantics original_source's kernel.cpp wraps directly: __map_put
// returns the updated map, __map_fetch returns {:ok, v} or bare :error,
// __map_pop returns {removed, rest} or {default, original} unchanged.
func TestMapPopPutFetch(t *testing.T) {
	put := mapPutFn()
	m := value.MapVal(value.EmptyMap())
	updated := put.Call(nil, value.TupleOf([]value.Value{m, value.SymOf("a"), value.Int(1)}))
	if updated.Kind() != value.KindMap {
		t.Fatalf("got %v, want a Map", updated)
	}

	fetch := mapFetchFn()
	found := fetch.Call(nil, value.TupleOf([]value.Value{updated, value.SymOf("a")}))
	tup := found.Tuple()
	if len(tup) != 2 || tup[0].SymbolName() != "ok" || tup[1].Int() != 1 {
		t.Fatalf("got %v, want {:ok, 1}", found)
	}
	missing := fetch.Call(nil, value.TupleOf([]value.Value{updated, value.SymOf("b")}))
	if missing.Kind() != value.KindSymbol || missing.SymbolName() != "error" {
		t.Fatalf("got %v, want :error", missing)
	}

	pop := mapPopFn()
	popped := pop.Call(nil, value.TupleOf([]value.Value{updated, value.SymOf("a"), value.Int(-1)}))
	ptup := popped.Tuple()
	if len(ptup) != 2 || ptup[0].Int() != 1 || ptup[1].Kind() != value.KindMap {
		t.Fatalf("got %v, want {1, rest_map}", popped)
	}
	poppedMissing := pop.Call(nil, value.TupleOf([]value.Value{updated, value.SymOf("z"), value.Int(-1)}))
	pmtup := poppedMissing.Tuple()
	if len(pmtup) != 2 || pmtup[0].Int() != -1 {
		t.Fatalf("got %v, want {-1, unchanged_map}", poppedMissing)
	}
}

// TestReverseList exercises Kernel.__reverse_list.
func TestReverseList(t *testing.T) {
	fn := reverseListFn()
	list := value.ListVal(value.ListFromSlice([]value.Value{value.Int(1), value.Int(2), value.Int(3)}))
	result := fn.Call(nil, value.TupleOf([]value.Value{list}))
	got := result.List().ToSlice()
	if len(got) != 3 || got[0].Int() != 3 || got[1].Int() != 2 || got[2].Int() != 1 {
		t.Fatalf("got %v, want [3, 2, 1]", got)
	}
}
