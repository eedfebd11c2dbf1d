package vm

import "github.com/funvibe/lix/internal/value"

// badArith builds the raise reason for arithmetic errors: incompatible
// operand types or division by zero. spec.md §7 names these as runtime
// raises without fixing an exact shape; `:badarith` mirrors the
// `:badarg`/`:nomatch` tuple convention the spec does fix for the other two
// named raise reasons.
func badArith(detail string, operands ...value.Value) value.Value {
	elems := append([]value.Value{value.SymOf("badarith"), value.Str(detail)}, operands...)
	return value.TupleOf(elems)
}

func arith(op func(a, b int64) int64, fop func(a, b float64) float64, a, b value.Value) (value.Value, error) {
	if !a.IsNumeric() || !b.IsNumeric() {
		return value.Value{}, &RuntimeError{Reason: badArith("not numeric", a, b)}
	}
	if a.Kind() == value.KindInt && b.Kind() == value.KindInt {
		return value.Int(op(a.Int(), b.Int())), nil
	}
	return value.Real(fop(numAsFloat(a), numAsFloat(b))), nil
}

func numAsFloat(v value.Value) float64 {
	if v.Kind() == value.KindInt {
		return float64(v.Int())
	}
	return v.RealVal()
}

func add(a, b value.Value) (value.Value, error) {
	return arith(func(a, b int64) int64 { return a + b }, func(a, b float64) float64 { return a + b }, a, b)
}

func sub(a, b value.Value) (value.Value, error) {
	return arith(func(a, b int64) int64 { return a - b }, func(a, b float64) float64 { return a - b }, a, b)
}

func mul(a, b value.Value) (value.Value, error) {
	return arith(func(a, b int64) int64 { return a * b }, func(a, b float64) float64 { return a * b }, a, b)
}

func div(a, b value.Value) (value.Value, error) {
	if !a.IsNumeric() || !b.IsNumeric() {
		return value.Value{}, &RuntimeError{Reason: badArith("not numeric", a, b)}
	}
	if b.Kind() == value.KindInt && b.Int() == 0 {
		return value.Value{}, &RuntimeError{Reason: badArith("division by zero", a, b)}
	}
	if b.Kind() == value.KindReal && b.RealVal() == 0 {
		return value.Value{}, &RuntimeError{Reason: badArith("division by zero", a, b)}
	}
	if a.Kind() == value.KindInt && b.Kind() == value.KindInt {
		return value.Int(a.Int() / b.Int()), nil
	}
	return value.Real(numAsFloat(a) / numAsFloat(b)), nil
}

func neg(a value.Value) (value.Value, error) {
	switch a.Kind() {
	case value.KindInt:
		return value.Int(-a.Int()), nil
	case value.KindReal:
		return value.Real(-a.RealVal()), nil
	default:
		return value.Value{}, &RuntimeError{Reason: badArith("not numeric", a)}
	}
}

func concat(a, b value.Value) (value.Value, error) {
	if a.Kind() == value.KindString && b.Kind() == value.KindString {
		return value.Str(a.StringVal() + b.StringVal()), nil
	}
	if a.Kind() == value.KindList && b.Kind() == value.KindList {
		elems := append(a.List().ToSlice(), b.List().ToSlice()...)
		return value.ListVal(value.ListFromSlice(elems)), nil
	}
	return value.Value{}, &RuntimeError{Reason: badArith("not concatenable", a, b)}
}
