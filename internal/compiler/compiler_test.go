package compiler

import (
	"errors"
	"testing"

	"github.com/funvibe/lix/internal/ast"
	"github.com/funvibe/lix/internal/module"
	"github.com/funvibe/lix/internal/value"
	"github.com/funvibe/lix/internal/vm"
)

func run(t *testing.T, n ast.Node) (value.Value, error) {
	t.Helper()
	c, err := CompileRoot(n)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	exec := vm.NewExecutor(module.NewContext(), nil)
	return exec.ExecuteAll(c, 0, nil)
}

// TestCompileArithmetic compiles `2 + (6 - 2)` (spec.md §8, expected 6).
func TestCompileArithmetic(t *testing.T) {
	n := ast.Call(ast.SymOf("+"), ast.Meta{}, ast.List([]ast.Node{
		ast.Int(2),
		ast.Call(ast.SymOf("-"), ast.Meta{}, ast.List([]ast.Node{ast.Int(6), ast.Int(2)})),
	}))
	result, err := run(t, n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Kind() != value.KindInt || result.Int() != 6 {
		t.Fatalf("got %v, want Integer 6", result)
	}
}

// TestCompileTupleDestructure compiles `tup = {1,2,3}; {first,2,3} = tup;
// first + 45` (spec.md §8, expected 46).
func TestCompileTupleDestructure(t *testing.T) {
	meta := ast.Meta{}
	block := ast.Call(ast.SymOf("__block__"), meta, ast.List([]ast.Node{
		ast.Call(ast.SymOf("="), meta, ast.List([]ast.Node{
			ast.Var("tup", meta),
			ast.Tuple([]ast.Node{ast.Int(1), ast.Int(2), ast.Int(3)}),
		})),
		ast.Call(ast.SymOf("="), meta, ast.List([]ast.Node{
			ast.Tuple([]ast.Node{ast.Var("first", meta), ast.Int(2), ast.Int(3)}),
			ast.Var("tup", meta),
		})),
		ast.Call(ast.SymOf("+"), meta, ast.List([]ast.Node{ast.Var("first", meta), ast.Int(45)})),
	}))
	result, err := run(t, block)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Kind() != value.KindInt || result.Int() != 46 {
		t.Fatalf("got %v, want Integer 46", result)
	}
}

// TestCompileCaseNoMatchRaises compiles `case 5 do 1 -> :nil end`, which must
// raise {:nomatch, 5} since no clause head matches.
func TestCompileCaseNoMatchRaises(t *testing.T) {
	meta := ast.Meta{}
	clause := ast.Call(ast.SymOf("->"), meta, ast.List([]ast.Node{
		ast.List([]ast.Node{ast.Int(1)}),
		ast.SymOf("nil"),
	}))
	kwargs := ast.List([]ast.Node{
		ast.Tuple([]ast.Node{ast.SymOf("do"), ast.List([]ast.Node{clause})}),
	})
	caseNode := ast.Call(ast.SymOf("case"), meta, ast.List([]ast.Node{ast.Int(5), kwargs}))

	_, err := run(t, caseNode)
	var rerr *vm.RuntimeError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected a RuntimeError, got %v", err)
	}
	tup := rerr.Reason.Tuple()
	if len(tup) != 2 || tup[0].SymbolName() != "nomatch" || tup[1].Int() != 5 {
		t.Fatalf("got raise reason %v, want {:nomatch, 5}", rerr.Reason)
	}
}

// TestCompileCaseMatches compiles `case {:ok, 7} do {:ok, v} -> v + 1 end`
// (expected 8), exercising a matching clause that binds a pattern variable.
func TestCompileCaseMatches(t *testing.T) {
	meta := ast.Meta{}
	subject := ast.Tuple([]ast.Node{ast.SymOf("ok"), ast.Int(7)})
	clause := ast.Call(ast.SymOf("->"), meta, ast.List([]ast.Node{
		ast.List([]ast.Node{ast.Tuple([]ast.Node{ast.SymOf("ok"), ast.Var("v", meta)})}),
		ast.Call(ast.SymOf("+"), meta, ast.List([]ast.Node{ast.Var("v", meta), ast.Int(1)})),
	}))
	kwargs := ast.List([]ast.Node{
		ast.Tuple([]ast.Node{ast.SymOf("do"), ast.List([]ast.Node{clause})}),
	})
	caseNode := ast.Call(ast.SymOf("case"), meta, ast.List([]ast.Node{subject, kwargs}))

	result, err := run(t, caseNode)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Kind() != value.KindInt || result.Int() != 8 {
		t.Fatalf("got %v, want Integer 8", result)
	}
}

// TestCompileAnonFnClosure compiles:
//
//	value = 12
//	f = fn 1, 55 -> value + 3 end
//	f.(1, 55)
//
// (expected 15), exercising closure capture, fn-clause rewriting into a
// case-over-argument-tuple, and the `f.(...)` closure-call syntax.
func TestCompileAnonFnClosure(t *testing.T) {
	meta := ast.Meta{}
	fnClause := ast.Call(ast.SymOf("clause"), meta, ast.List([]ast.Node{
		ast.List([]ast.Node{ast.Int(1), ast.Int(55)}),
		ast.Call(ast.SymOf("+"), meta, ast.List([]ast.Node{ast.Var("value", meta), ast.Int(3)})),
	}))
	fnNode := ast.Call(ast.SymOf("fn"), meta, ast.List([]ast.Node{fnClause}))

	dotNode := ast.Call(ast.SymOf("."), meta, ast.List([]ast.Node{ast.Var("f", meta)}))
	callNode := ast.Call(dotNode, meta, ast.List([]ast.Node{ast.Int(1), ast.Int(55)}))

	block := ast.Call(ast.SymOf("__block__"), meta, ast.List([]ast.Node{
		ast.Call(ast.SymOf("="), meta, ast.List([]ast.Node{ast.Var("value", meta), ast.Int(12)})),
		ast.Call(ast.SymOf("="), meta, ast.List([]ast.Node{ast.Var("f", meta), fnNode})),
		callNode,
	}))

	result, err := run(t, block)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Kind() != value.KindInt || result.Int() != 15 {
		t.Fatalf("got %v, want Integer 15", result)
	}
}

// TestCompileQuoteLiftsCallToData compiles `quote do 1 + 2 end`, verifying a
// call node is lowered to a literal {target, meta, args} tuple rather than
// executed: the result must be the tuple itself, not the integer 3.
func TestCompileQuoteLiftsCallToData(t *testing.T) {
	meta := ast.Meta{}
	body := ast.Call(ast.SymOf("+"), meta, ast.List([]ast.Node{ast.Int(1), ast.Int(2)}))
	kwargs := ast.List([]ast.Node{ast.Tuple([]ast.Node{ast.SymOf("do"), body})})
	quoteNode := ast.Call(ast.SymOf("quote"), meta, ast.List([]ast.Node{kwargs}))

	result, err := run(t, quoteNode)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Kind() != value.KindTuple {
		t.Fatalf("got %v, want a Tuple (quoted call is data, not evaluated)", result)
	}
	tup := result.Tuple()
	if len(tup) != 3 {
		t.Fatalf("got %d-tuple, want {target, meta, args}", len(tup))
	}
	if tup[0].Kind() != value.KindSymbol || tup[0].SymbolName() != "+" {
		t.Fatalf("got target %v, want :+", tup[0])
	}
	args := tup[2].List().ToSlice()
	if len(args) != 2 || args[0].Int() != 1 || args[1].Int() != 2 {
		t.Fatalf("got args %v, want [1, 2]", args)
	}
}

// TestCompileUnboundVariableErrors compiles a bare reference to an
// undeclared variable outside any binding position, which must fail at
// compile time rather than crash the VM.
func TestCompileUnboundVariableErrors(t *testing.T) {
	_, err := CompileRoot(ast.Var("nope", ast.Meta{}))
	var cerr *CompileError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected a CompileError, got %v", err)
	}
}
