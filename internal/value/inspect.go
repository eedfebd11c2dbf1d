package value

import (
	"strconv"
	"strings"
)

// Inspect renders v in the textual form `IO.inspect` and the CLI's `eval`
// driver print, mirroring original_source's operator<<(ostream&, const
// value&): one line per value, nested values recursing the same way.
func Inspect(v Value) string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindReal:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindSymbol:
		return ":" + v.SymbolName()
	case KindString:
		return strconv.Quote(v.str)
	case KindTuple:
		elems := v.Tuple()
		parts := make([]string, len(elems))
		for i, e := range elems {
			parts[i] = Inspect(e)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindList:
		parts := make([]string, 0, v.List().ListLen())
		for n := v.List(); n != nil; n = n.Tail {
			parts = append(parts, Inspect(n.Head))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindMap:
		m := v.Map()
		items := m.Items()
		parts := make([]string, len(items))
		for i, it := range items {
			parts[i] = Inspect(it.Key) + " => " + Inspect(it.Value)
		}
		return "%{" + strings.Join(parts, ", ") + "}"
	case KindFunction:
		return "#Function<" + v.Function().Name + ">"
	case KindClosure:
		c := v.Closure()
		if c.Name != "" {
			return "#Closure<" + c.Name + ">"
		}
		return "#Closure<anonymous>"
	case KindCons:
		c := v.ConsVal()
		return "<cons " + Inspect(c.Head) + "|" + Inspect(c.Tail) + ">"
	case KindBindingSlot:
		return "<unbound>"
	case KindBoxed:
		b := v.Boxed()
		return "#Boxed<" + b.TypeName + " " + b.ID.String() + ">"
	default:
		return "<invalid value>"
	}
}

// ToDisplayString renders v the way `to_string`/the `ToString` instruction
// does: unquoted, for the kinds that have a natural display form (String
// returns its raw contents, Symbol its bare name without the leading colon).
// Compound and callable kinds have no canonical display form distinct from
// their inspect form, so they fall back to Inspect.
func ToDisplayString(v Value) string {
	switch v.kind {
	case KindString:
		return v.str
	case KindSymbol:
		return v.SymbolName()
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindReal:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	default:
		return Inspect(v)
	}
}
