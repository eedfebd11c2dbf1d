package ast

import (
	"strconv"
	"strings"

	"github.com/funvibe/lix/internal/symbol"
)

// String renders n in its canonical textual form: every call renders as
// `target(arg1, arg2)`, lists as `[e1, e2]`, tuples as `{e1, e2}`, symbols
// as `:name`, strings double-quoted, and variable references (the :Var
// sentinel) as their bare name — the textual form cmd/lix's `parse` driver
// prints and spec.md §8's `parse(to_string(n))` round-trip invariant names.
// Grounded in the teacher's internal/prettyprinter.CodePrinter's same
// node-to-source-text purpose, scaled down to this grammar's much smaller
// node-kind set (no operator-precedence table is needed here since every
// call already renders in uniform prefix-call form).
func (n Node) String() string {
	var sb strings.Builder
	n.write(&sb)
	return sb.String()
}

func (n Node) write(sb *strings.Builder) {
	switch n.Kind {
	case KindInt:
		sb.WriteString(strconv.FormatInt(n.Int, 10))
	case KindReal:
		sb.WriteString(strconv.FormatFloat(n.Real, 'g', -1, 64))
	case KindSymbol:
		sb.WriteByte(':')
		sb.WriteString(symbol.Name(n.Sym))
	case KindString:
		sb.WriteString(strconv.Quote(n.Str))
	case KindList:
		sb.WriteByte('[')
		writeElems(sb, n.Elems)
		sb.WriteByte(']')
	case KindTuple:
		sb.WriteByte('{')
		writeElems(sb, n.Elems)
		sb.WriteByte('}')
	case KindCall:
		n.writeCall(sb)
	default:
		sb.WriteString("<?>")
	}
}

func (n Node) writeCall(sb *strings.Builder) {
	if name, ok := n.IsVar(); ok {
		sb.WriteString(name)
		return
	}
	if name, ok := n.CallTarget(); ok {
		sb.WriteString(name)
	} else if n.Target != nil {
		n.Target.write(sb)
	}
	sb.WriteByte('(')
	if elems, ok := n.ArgList(); ok {
		writeElems(sb, elems)
	} else if n.Args != nil {
		n.Args.write(sb)
	}
	sb.WriteByte(')')
}

func writeElems(sb *strings.Builder, elems []Node) {
	for i, e := range elems {
		if i > 0 {
			sb.WriteString(", ")
		}
		e.write(sb)
	}
}
