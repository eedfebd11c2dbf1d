// Package ast implements the immutable abstract syntax tree the parser
// produces and the macro expander and compiler consume.
//
// The tree has exactly the shape spec.md §4.3 names: integer, real, symbol,
// string, list(nodes), tuple(nodes), and the universal call(target, meta,
// args) node that covers function calls, operators, control constructs
// (if/case/cond/fn/quote/__block__), list/tuple builders, and variable
// references (a call whose args is the sentinel symbol Var).
package ast

import "github.com/funvibe/lix/internal/symbol"

// Kind discriminates which AST alternative a Node holds.
type Kind uint8

const (
	KindInt Kind = iota
	KindReal
	KindSymbol
	KindString
	KindList
	KindTuple
	KindCall
)

// VarName is the sentinel symbol spelling used as a call's Args to mark it
// as a variable reference rather than an invocation: call(sym, meta, :Var).
const VarName = "Var"

// Meta carries optional provenance for a call node: the module/function the
// call syntactically appears inside (filled in by the parser or compiler
// for diagnostics and traceback frames) and source position.
type Meta struct {
	Module   string
	Function string
	Line     int
	Column   int
}

// Node is one AST tree node. Only the fields relevant to Kind are
// meaningful; this mirrors the teacher's practice of a single tagged
// struct per small-variant-count tree type rather than an interface
// hierarchy (see internal/value.Value for the same idiom applied to
// runtime values).
type Node struct {
	Kind Kind

	Int    int64      // KindInt
	Real   float64    // KindReal
	Sym    symbol.ID  // KindSymbol
	Str    string     // KindString
	Elems  []Node     // KindList, KindTuple
	Target *Node      // KindCall
	Meta   Meta       // KindCall
	Args   *Node      // KindCall
}

// Int returns an integer literal node.
func Int(v int64) Node { return Node{Kind: KindInt, Int: v} }

// Real returns a real literal node.
func Real(v float64) Node { return Node{Kind: KindReal, Real: v} }

// Sym returns a symbol literal node for an already-interned ID.
func Sym(id symbol.ID) Node { return Node{Kind: KindSymbol, Sym: id} }

// SymOf interns name and returns the resulting symbol literal node.
func SymOf(name string) Node { return Sym(symbol.Intern(name)) }

// Str returns a string literal node.
func Str(v string) Node { return Node{Kind: KindString, Str: v} }

// List returns a list-builder node over elems.
func List(elems []Node) Node { return Node{Kind: KindList, Elems: elems} }

// Tuple returns a tuple-builder node over elems.
func Tuple(elems []Node) Node { return Node{Kind: KindTuple, Elems: elems} }

// Call returns a call node. args may be nil for calls with no meaningful
// args payload (rare; most forms pack a List node even for zero arguments).
func Call(target Node, meta Meta, args Node) Node {
	return Node{Kind: KindCall, Target: &target, Meta: meta, Args: &args}
}

// Var returns a variable-reference node: call(sym, meta, :Var).
func Var(name string, meta Meta) Node {
	return Call(SymOf(name), meta, SymOf(VarName))
}

// IsVar reports whether n is a variable reference, and if so returns the
// referenced name.
func (n Node) IsVar() (string, bool) {
	if n.Kind != KindCall || n.Args == nil || n.Args.Kind != KindSymbol {
		return "", false
	}
	if symbol.Name(n.Args.Sym) != VarName {
		return "", false
	}
	if n.Target == nil || n.Target.Kind != KindSymbol {
		return "", false
	}
	return symbol.Name(n.Target.Sym), true
}

// CallTarget returns the interned name of a call's target symbol and true,
// when the target is itself a plain symbol (the common case for named
// forms: `f(...)`, `if`, `case`, `__block__`, operators, ...). Qualified
// targets (`Mod.fn`) are themselves call/dot nodes and report false here.
func (n Node) CallTarget() (string, bool) {
	if n.Kind != KindCall || n.Target == nil || n.Target.Kind != KindSymbol {
		return "", false
	}
	return symbol.Name(n.Target.Sym), true
}

// ArgList returns the argument nodes when Args is a List node (the normal
// case for `f(args...)` and control-construct bodies); ok is false for
// non-list Args (e.g. the :Var sentinel).
func (n Node) ArgList() (elems []Node, ok bool) {
	if n.Kind != KindCall || n.Args == nil || n.Args.Kind != KindList {
		return nil, false
	}
	return n.Args.Elems, true
}
