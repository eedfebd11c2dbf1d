package macro

import (
	"testing"

	"github.com/funvibe/lix/internal/ast"
	"github.com/funvibe/lix/internal/module"
	"github.com/funvibe/lix/internal/symbol"
)

// TestExpandImportAppendsModuleAndEvaluatesToOk compiles `import Foo`,
// expecting the symbol :ok and a subsequent unqualified call dispatching
// through the newly imported module's macro table.
func TestExpandImportAppendsModuleAndEvaluatesToOk(t *testing.T) {
	ctx := module.NewContext()
	m := module.NewModule("Foo")
	m.AddMacro("greet", func(ctx *module.Context, args []ast.Node) (ast.Node, error) {
		return ast.Str("hello from Foo"), nil
	})
	ctx.RegisterModule(m)

	meta := ast.Meta{}
	block := ast.Call(ast.SymOf("__block__"), meta, ast.List([]ast.Node{
		ast.Call(ast.SymOf("import"), meta, ast.List([]ast.Node{ast.SymOf("Foo")})),
		ast.Call(ast.SymOf("greet"), meta, ast.List(nil)),
	}))

	result, err := Expand(ctx, block)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok := result.CallTarget()
	if !ok || got != "__block__" {
		t.Fatalf("got %v, want __block__ call", result)
	}
	args, ok := result.ArgList()
	if !ok || len(args) != 2 {
		t.Fatalf("got %v, want 2-element block body", result)
	}
	if args[0].Kind != ast.KindSymbol || symbol.Name(args[0].Sym) != "ok" {
		t.Fatalf("got %v, want :ok from import", args[0])
	}
	if args[1].Kind != ast.KindString || args[1].Str != "hello from Foo" {
		t.Fatalf("got %v, want the macro's expansion", args[1])
	}
}

// TestExpandImportIsBlockScoped verifies a module imported inside a
// `__block__` is not visible to a macro call appearing after the block.
func TestExpandImportIsBlockScoped(t *testing.T) {
	ctx := module.NewContext()
	m := module.NewModule("Foo")
	m.AddMacro("greet", func(ctx *module.Context, args []ast.Node) (ast.Node, error) {
		return ast.Str("hello"), nil
	})
	ctx.RegisterModule(m)

	meta := ast.Meta{}
	inner := ast.Call(ast.SymOf("__block__"), meta, ast.List([]ast.Node{
		ast.Call(ast.SymOf("import"), meta, ast.List([]ast.Node{ast.SymOf("Foo")})),
	}))
	outer := ast.Call(ast.SymOf("__block__"), meta, ast.List([]ast.Node{
		inner,
		ast.Call(ast.SymOf("greet"), meta, ast.List(nil)),
	}))

	result, err := Expand(ctx, outer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	args, _ := result.ArgList()
	// greet is not a macro anywhere visible once the inner block exits, so
	// it must remain an ordinary (unexpanded) call.
	target, ok := args[1].CallTarget()
	if !ok || target != "greet" {
		t.Fatalf("got %v, want an unexpanded `greet` call (import was block-scoped)", args[1])
	}
}

// TestExpandAliasRewritesPrefixedSymbols compiles `alias Foo.Bar.Baz, as: B`
// followed by a reference to `B.quux`, expecting the alias substitution.
func TestExpandAliasRewritesPrefixedSymbols(t *testing.T) {
	ctx := module.NewContext()
	meta := ast.Meta{}
	asKw := ast.Tuple([]ast.Node{ast.SymOf("as"), ast.SymOf("B")})
	aliasCall := ast.Call(ast.SymOf("alias"), meta, ast.List([]ast.Node{
		ast.SymOf("Foo.Bar.Baz"),
		ast.List([]ast.Node{asKw}),
	}))
	block := ast.Call(ast.SymOf("__block__"), meta, ast.List([]ast.Node{
		aliasCall,
		ast.SymOf("B.quux"),
		ast.SymOf("B"),
	}))

	result, err := Expand(ctx, block)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	args, _ := result.ArgList()
	if args[1].Kind != ast.KindSymbol || symbol.Name(args[1].Sym) != "Foo.Bar.Baz.quux" {
		t.Fatalf("got %v, want :Foo.Bar.Baz.quux", args[1])
	}
	if args[2].Kind != ast.KindSymbol || symbol.Name(args[2].Sym) != "Foo.Bar.Baz" {
		t.Fatalf("got %v, want the full alias expansion for an exact match", args[2])
	}
}

// TestExpandAliasDefaultsToLastSegment compiles `alias Foo.Bar.Baz` with no
// `as:` keyword, expecting the alias to default to the path's last segment.
func TestExpandAliasDefaultsToLastSegment(t *testing.T) {
	ctx := module.NewContext()
	meta := ast.Meta{}
	aliasCall := ast.Call(ast.SymOf("alias"), meta, ast.List([]ast.Node{ast.SymOf("Foo.Bar.Baz")}))
	block := ast.Call(ast.SymOf("__block__"), meta, ast.List([]ast.Node{
		aliasCall,
		ast.SymOf("Baz.quux"),
	}))

	result, err := Expand(ctx, block)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	args, _ := result.ArgList()
	if args[1].Kind != ast.KindSymbol || symbol.Name(args[1].Sym) != "Foo.Bar.Baz.quux" {
		t.Fatalf("got %v, want :Foo.Bar.Baz.quux", args[1])
	}
}

// TestExpandUnqualifiedCallWithoutMacroPassesThrough verifies a call to a
// name with no registered macro in any imported module is left as an
// ordinary call, with its arguments still recursively expanded.
func TestExpandUnqualifiedCallWithoutMacroPassesThrough(t *testing.T) {
	ctx := module.NewContext()
	meta := ast.Meta{}
	call := ast.Call(ast.SymOf("double"), meta, ast.List([]ast.Node{
		ast.Call(ast.SymOf("+"), meta, ast.List([]ast.Node{ast.Int(1), ast.Int(2)})),
	}))

	result, err := Expand(ctx, call)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	target, ok := result.CallTarget()
	if !ok || target != "double" {
		t.Fatalf("got %v, want an unexpanded `double` call", result)
	}
	args, _ := result.ArgList()
	inner, ok := args[0].CallTarget()
	if !ok || inner != "+" {
		t.Fatalf("got %v, want the argument still a `+` call", args[0])
	}
}

// TestEscapeWrapsThreeTupleToDisambiguateFromACallNode verifies Escape
// marks an ordinary 3-element tuple literal with an explicit `{}` builder
// call so it is never confused with a {target, meta, args} call encoding.
func TestEscapeWrapsThreeTupleToDisambiguateFromACallNode(t *testing.T) {
	tup := ast.Tuple([]ast.Node{ast.Int(1), ast.Int(2), ast.Int(3)})
	escaped := Escape(tup)
	target, ok := escaped.CallTarget()
	if !ok || target != "{}" {
		t.Fatalf("got %v, want a `{}` builder call wrapping the literal tuple", escaped)
	}
	args, ok := escaped.ArgList()
	if !ok || len(args) != 3 {
		t.Fatalf("got %v, want the original 3 elements preserved", escaped)
	}
}

// TestEscapeLeavesShortTuplesAlone verifies a tuple whose length isn't 3
// (and so can never be confused with a call encoding) escapes to a plain
// tuple node.
func TestEscapeLeavesShortTuplesAlone(t *testing.T) {
	tup := ast.Tuple([]ast.Node{ast.SymOf("ok"), ast.Int(7)})
	escaped := Escape(tup)
	if escaped.Kind != ast.KindTuple || len(escaped.Elems) != 2 {
		t.Fatalf("got %v, want an ordinary 2-tuple", escaped)
	}
}
