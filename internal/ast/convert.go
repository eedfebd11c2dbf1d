package ast

import (
	"fmt"

	"github.com/funvibe/lix/internal/symbol"
	"github.com/funvibe/lix/internal/value"
)

// ToValue converts an AST node to its Value representation: a call becomes
// the 3-tuple {target-value, meta-value, args-value} spec.md §4.3 names as
// the round-trip contract macros rely on (quote produces these tuples;
// escape consumes them back into Nodes).
func ToValue(n Node) value.Value {
	switch n.Kind {
	case KindInt:
		return value.Int(n.Int)
	case KindReal:
		return value.Real(n.Real)
	case KindSymbol:
		return value.Sym(n.Sym)
	case KindString:
		return value.Str(n.Str)
	case KindList:
		elems := make([]value.Value, len(n.Elems))
		for i, e := range n.Elems {
			elems[i] = ToValue(e)
		}
		return value.ListVal(value.ListFromSlice(elems))
	case KindTuple:
		elems := make([]value.Value, len(n.Elems))
		for i, e := range n.Elems {
			elems[i] = ToValue(e)
		}
		return value.TupleOf(elems)
	case KindCall:
		target := value.Sym(symbol.Intern(""))
		if n.Target != nil {
			target = ToValue(*n.Target)
		}
		args := value.Sym(symbol.Intern(""))
		if n.Args != nil {
			args = ToValue(*n.Args)
		}
		return value.TupleOf([]value.Value{target, metaToValue(n.Meta), args})
	default:
		panic(fmt.Sprintf("ast: ToValue: unknown kind %d", n.Kind))
	}
}

func metaToValue(m Meta) value.Value {
	entries := value.EmptyMap()
	if m.Module != "" {
		entries = entries.InsertOrUpdate(value.SymOf("module"), value.Str(m.Module))
	}
	if m.Function != "" {
		entries = entries.InsertOrUpdate(value.SymOf("function"), value.Str(m.Function))
	}
	if m.Line != 0 {
		entries = entries.InsertOrUpdate(value.SymOf("line"), value.Int(int64(m.Line)))
	}
	if m.Column != 0 {
		entries = entries.InsertOrUpdate(value.SymOf("column"), value.Int(int64(m.Column)))
	}
	return value.MapVal(entries)
}

// FromValue converts a Value previously produced by ToValue back into a
// Node. A tuple becomes a call only when it has exactly three elements and
// a Map in the middle; every other tuple becomes a Tuple node. It returns an
// error rather than panicking for values with no AST form (a Function, a
// Closure, a Map outside a call's meta position, ...) and for meta entries
// of the wrong kind, since it is reachable from user-constructed data at
// macro-expansion time (the `escape` operation).
func FromValue(v value.Value) (Node, error) {
	switch v.Kind() {
	case value.KindInt:
		return Int(v.Int()), nil
	case value.KindReal:
		return Real(v.RealVal()), nil
	case value.KindSymbol:
		return Sym(v.SymbolID()), nil
	case value.KindString:
		return Str(v.StringVal()), nil
	case value.KindList:
		elems, err := fromValueSlice(v.List().ToSlice())
		if err != nil {
			return Node{}, err
		}
		return List(elems), nil
	case value.KindTuple:
		vals := v.Tuple()
		if len(vals) == 3 {
			if node, ok, err := tryCallFromTuple(vals); ok {
				return node, err
			}
		}
		elems, err := fromValueSlice(vals)
		if err != nil {
			return Node{}, err
		}
		return Tuple(elems), nil
	default:
		return Node{}, fmt.Errorf("ast: FromValue: %s cannot appear in quoted code", v.Kind())
	}
}

// tryCallFromTuple interprets a 3-tuple as {target, meta, args} only when
// the middle element is itself a Map (keys other than the reserved meta
// keys are ignored); this disambiguates a genuine call tuple from a plain 3-element
// data tuple a user wrote with `{}`, which the compiler instead lowers
// through an explicit `{}` builder per spec.md §4.4's escape rule.
func tryCallFromTuple(vals []value.Value) (Node, bool, error) {
	if vals[1].Kind() != value.KindMap {
		return Node{}, false, nil
	}
	meta, err := metaFromValue(vals[1])
	if err != nil {
		return Node{}, true, err
	}
	target, err := FromValue(vals[0])
	if err != nil {
		return Node{}, true, err
	}
	args, err := FromValue(vals[2])
	if err != nil {
		return Node{}, true, err
	}
	return Call(target, meta, args), true, nil
}

func metaFromValue(v value.Value) (Meta, error) {
	m := v.Map()
	var meta Meta
	if mv, ok := m.Find(value.SymOf("module")); ok {
		if mv.Kind() != value.KindString {
			return Meta{}, fmt.Errorf("ast: FromValue: meta module must be a string, got %s", mv.Kind())
		}
		meta.Module = mv.StringVal()
	}
	if fv, ok := m.Find(value.SymOf("function")); ok {
		if fv.Kind() != value.KindString {
			return Meta{}, fmt.Errorf("ast: FromValue: meta function must be a string, got %s", fv.Kind())
		}
		meta.Function = fv.StringVal()
	}
	if lv, ok := m.Find(value.SymOf("line")); ok {
		if lv.Kind() != value.KindInt {
			return Meta{}, fmt.Errorf("ast: FromValue: meta line must be an integer, got %s", lv.Kind())
		}
		meta.Line = int(lv.Int())
	}
	if cv, ok := m.Find(value.SymOf("column")); ok {
		if cv.Kind() != value.KindInt {
			return Meta{}, fmt.Errorf("ast: FromValue: meta column must be an integer, got %s", cv.Kind())
		}
		meta.Column = int(cv.Int())
	}
	return meta, nil
}

func fromValueSlice(vals []value.Value) ([]Node, error) {
	nodes := make([]Node, len(vals))
	for i, v := range vals {
		n, err := FromValue(v)
		if err != nil {
			return nil, err
		}
		nodes[i] = n
	}
	return nodes, nil
}
