package value

// The language has no dedicated boolean type: truth is the symbols :true
// and :false, the way Elixir itself represents booleans as atoms. True and
// False are the canonical constructors every comparison/test-producing
// instruction uses, so every `:true` in the runtime is the same interned
// symbol.
func True() Value  { return SymOf("true") }
func False() Value { return SymOf("false") }

// BoolOf returns True() or False() for a Go bool.
func BoolOf(b bool) Value {
	if b {
		return True()
	}
	return False()
}

// IsTruthy reports whether v is the symbol :true.
func IsTruthy(v Value) bool {
	return v.Kind() == KindSymbol && v.SymbolName() == "true"
}
