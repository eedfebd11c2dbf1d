// Package macro implements the macro expander: a recursive AST-to-AST walk
// maintaining two lexically-scoped lists (imported modules, default
// ["Kernel"], and alias→full-module-path pairs) and invoking user macros
// registered on Context modules for unqualified calls.
//
// Grounded directly in
// original_source/source/let/compiler/macro.cpp's macro_expander and
// ast_escaper visitor structs.
package macro

import (
	"fmt"
	"strings"

	"github.com/funvibe/lix/internal/ast"
	"github.com/funvibe/lix/internal/module"
	"github.com/funvibe/lix/internal/symbol"
	"github.com/funvibe/lix/internal/value"
)

// Error is a macro-expansion-time diagnostic, carrying the offending node's
// Meta when one is available.
type Error struct {
	Message string
	Meta    ast.Meta
}

func (e *Error) Error() string {
	if e.Meta.Line != 0 {
		return fmt.Sprintf("%s (line %d)", e.Message, e.Meta.Line)
	}
	return e.Message
}

func errf(meta ast.Meta, format string, args ...any) error {
	return &Error{Message: fmt.Sprintf(format, args...), Meta: meta}
}

// aliasEntry pairs an alias name with the full module path it expands to,
// e.g. `alias Foo.Bar.Baz, as: B` records {alias: "B", expansion:
// "Foo.Bar.Baz"}.
type aliasEntry struct {
	alias     string
	expansion string
}

// expander holds the mutable, lexically-scoped state of one Expand call.
type expander struct {
	ctx     *module.Context
	imports []string
	aliases []aliasEntry
}

// Expand walks n, resolving `import`/`alias` forms and substituting
// user-macro calls, starting with Kernel implicitly imported (spec.md §4.9:
// "imported modules (default [\"Kernel\"])").
func Expand(ctx *module.Context, n ast.Node) (ast.Node, error) {
	ex := &expander{ctx: ctx, imports: []string{"Kernel"}}
	return ex.visit(n)
}

func (e *expander) visit(n ast.Node) (ast.Node, error) {
	switch n.Kind {
	case ast.KindInt, ast.KindReal, ast.KindString:
		return n, nil
	case ast.KindSymbol:
		return e.visitSymbol(n), nil
	case ast.KindList:
		return e.visitElems(n.Elems, ast.List)
	case ast.KindTuple:
		return e.visitElems(n.Elems, ast.Tuple)
	case ast.KindCall:
		return e.visitCall(n)
	default:
		return ast.Node{}, errf(n.Meta, "macro: unknown AST kind %v", n.Kind)
	}
}

func (e *expander) visitElems(elems []ast.Node, mk func([]ast.Node) ast.Node) (ast.Node, error) {
	out := make([]ast.Node, len(elems))
	for i, el := range elems {
		v, err := e.visit(el)
		if err != nil {
			return ast.Node{}, err
		}
		out[i] = v
	}
	return mk(out), nil
}

// visitSymbol rewrites a symbol matching an alias prefix (either exactly
// equal, or followed by `.`) to the alias's expansion; every other symbol
// passes through unchanged.
func (e *expander) visitSymbol(n ast.Node) ast.Node {
	name := symbol.Name(n.Sym)
	for _, a := range e.aliases {
		if name == a.alias {
			return ast.SymOf(a.expansion)
		}
		if strings.HasPrefix(name, a.alias+".") {
			return ast.SymOf(a.expansion + name[len(a.alias):])
		}
	}
	return n
}

// visitCall is the real meat of expansion, the direct analogue of
// macro_expander::operator()(const ast::call&).
func (e *expander) visitCall(n ast.Node) (ast.Node, error) {
	if name, ok := n.CallTarget(); ok {
		switch name {
		case "__block__":
			return e.visitBlock(n)
		case "import":
			return e.visitImport(n)
		case "alias":
			return e.visitAlias(n)
		default:
			if args, ok := n.ArgList(); ok {
				// Calling an unqualified name: that might be a macro.
				return e.tryExpand(*n.Target, n.Meta, args)
			}
			// Not a function call (e.g. a :Var reference); pass through.
			return n, nil
		}
	}
	// Qualified calls (M.f(...), f.(...)) are not macro-expanded; only
	// their target and arguments are recursively expanded.
	target, err := e.visit(*n.Target)
	if err != nil {
		return ast.Node{}, err
	}
	args, err := e.visit(*n.Args)
	if err != nil {
		return ast.Node{}, err
	}
	return ast.Call(target, n.Meta, args), nil
}

// visitBlock handles `__block__`: imports/aliases are lexically scoped to
// the block, so the prior lists are saved before recursing and restored
// after.
func (e *expander) visitBlock(n ast.Node) (ast.Node, error) {
	prevImports := e.imports
	prevAliases := e.aliases
	args, err := e.visit(*n.Args)
	e.imports = prevImports
	e.aliases = prevAliases
	if err != nil {
		return ast.Node{}, err
	}
	return ast.Call(*n.Target, n.Meta, args), nil
}

func (e *expander) visitImport(n ast.Node) (ast.Node, error) {
	args, ok := n.ArgList()
	if !ok {
		return ast.Node{}, errf(n.Meta, "`import` expects symbol arguments")
	}
	for _, a := range args {
		if a.Kind != ast.KindSymbol {
			return ast.Node{}, errf(n.Meta, "`import` expects symbol arguments")
		}
		e.imports = append(e.imports, symbol.Name(a.Sym))
	}
	return ast.SymOf("ok"), nil
}

func (e *expander) visitAlias(n ast.Node) (ast.Node, error) {
	args, ok := n.ArgList()
	if !ok || len(args) == 0 {
		return ast.Node{}, errf(n.Meta, "first argument to `alias` must be a symbol")
	}
	target := args[0]
	if target.Kind != ast.KindSymbol {
		return ast.Node{}, errf(n.Meta, "first argument to `alias` must be a symbol")
	}
	full := symbol.Name(target.Sym)
	if asNode, ok := keywordGet(args, "as"); ok {
		if asNode.Kind != ast.KindSymbol {
			return ast.Node{}, errf(n.Meta, "`as` must be a symbol")
		}
		e.aliases = append(e.aliases, aliasEntry{alias: symbol.Name(asNode.Sym), expansion: full})
		return ast.SymOf("ok"), nil
	}
	dot := strings.LastIndexByte(full, '.')
	if dot < 0 {
		return ast.Node{}, errf(n.Meta, "invalid alias %q", full)
	}
	e.aliases = append(e.aliases, aliasEntry{alias: full[dot+1:], expansion: full})
	return ast.SymOf("ok"), nil
}

// keywordGet scans the last element of args for a keyword-list (a List of
// 2-tuples `{keyword-symbol, value}`), the Go analogue of
// macro_argument_parser::keyword_get.
func keywordGet(args []ast.Node, kw string) (ast.Node, bool) {
	if len(args) == 0 {
		return ast.Node{}, false
	}
	tail := args[len(args)-1]
	if tail.Kind != ast.KindList {
		return ast.Node{}, false
	}
	for _, item := range tail.Elems {
		if item.Kind != ast.KindTuple || len(item.Elems) != 2 {
			continue
		}
		if item.Elems[0].Kind != ast.KindSymbol {
			continue
		}
		if symbol.Name(item.Elems[0].Sym) == kw {
			return item.Elems[1], true
		}
	}
	return ast.Node{}, false
}

// tryExpand looks up name in each imported module (in import order); the
// first module exposing a macro of that name wins, and its output replaces
// the call site without further recursion at this level (macros produce
// final code fragments; further expansion is the macro's own
// responsibility, typically via Escape). If no macro matches, the call's
// target and arguments are expanded ordinarily.
func (e *expander) tryExpand(sym ast.Node, meta ast.Meta, args []ast.Node) (ast.Node, error) {
	name := symbol.Name(sym.Sym)
	for _, modname := range e.imports {
		m, ok := e.ctx.Module(modname)
		if !ok {
			continue
		}
		macroFn, ok := m.Macro(name)
		if !ok {
			continue
		}
		return macroFn(e.ctx, args)
	}
	lhs := e.visitSymbol(sym)
	expanded := make([]ast.Node, len(args))
	for i, a := range args {
		v, err := e.visit(a)
		if err != nil {
			return ast.Node{}, err
		}
		expanded[i] = v
	}
	return ast.Call(lhs, meta, ast.List(expanded)), nil
}

// Escape converts n into a quoted AST: one that, compiled and evaluated,
// reproduces n as a runtime Value. This is the reverse half of `quote`: an
// ordinary literal 3-tuple would otherwise be indistinguishable from a
// {target, meta, args} call-node encoding once round-tripped through
// Value, so it is wrapped in an explicit `{}` builder call to mark it as
// data rather than a call to re-expand — the ast_escaper's one
// disambiguation rule.
func Escape(n ast.Node) ast.Node {
	switch n.Kind {
	case ast.KindInt, ast.KindReal, ast.KindSymbol, ast.KindString:
		return n
	case ast.KindList:
		out := make([]ast.Node, len(n.Elems))
		for i, el := range n.Elems {
			out[i] = Escape(el)
		}
		return ast.List(out)
	case ast.KindTuple:
		out := make([]ast.Node, len(n.Elems))
		for i, el := range n.Elems {
			out[i] = Escape(el)
		}
		if len(out) == 3 {
			return ast.Call(ast.SymOf("{}"), ast.Meta{}, ast.List(out))
		}
		return ast.Tuple(out)
	case ast.KindCall:
		target := Escape(*n.Target)
		args := Escape(*n.Args)
		// meta compiles to an empty Map (via the compiler's `%{}` builder),
		// not an empty List: ast.FromValue's tryCallFromTuple only recognizes
		// a {target, meta, args} call-tuple when meta is a Map, matching
		// ToValue/metaToValue — required for escaped code that gets
		// reconstructed back through FromValue (Kernel's compile_module).
		emptyMeta := ast.Call(ast.SymOf("%{}"), ast.Meta{}, ast.List(nil))
		return ast.Call(ast.SymOf("{}"), ast.Meta{}, ast.List([]ast.Node{target, emptyMeta, args}))
	default:
		return n
	}
}

// EscapeValue is Escape's Value-typed entry point: it first reconstructs an
// AST literal for v (ast.FromValue), then escapes that AST.
func EscapeValue(v value.Value) (ast.Node, error) {
	n, err := ast.FromValue(v)
	if err != nil {
		return ast.Node{}, err
	}
	return Escape(n), nil
}
