package stdlib

import (
	"github.com/funvibe/funbit/pkg/funbit"

	"github.com/funvibe/lix/internal/boxed"
	"github.com/funvibe/lix/internal/module"
	"github.com/funvibe/lix/internal/value"
)

const boxedTypeBitstring = "Bitstring"

// BuildBitstringModule returns Bitstring.pack/1 and Bitstring.unpack/2 per
// spec.md §4.11, wrapping funbit's Builder/Matcher (NewBuilder/AddInteger/
// Build and NewMatcher/Integer/Match), grounded in
// _examples/mcgru-funxy/funbit/pkg/funbit/funbit.go's package-level
// wrapper functions — this module is itself a thin second wrapper over
// that already-thin wrapper, matching spec.md's framing of every stdlib
// module as a "thin host wrapper."
func BuildBitstringModule(registry *boxed.Registry) *module.Module {
	registry.Register(boxedTypeBitstring, "length", func(data any) (value.Value, error) {
		bs := data.(*funbit.BitString)
		return value.Int(int64(bs.Length())), nil
	})

	mod := module.NewModule("Bitstring")
	mod.AddFunction("pack", nativeFn("Bitstring.pack", bitstringPackFn))
	mod.AddFunction("unpack", nativeFn("Bitstring.unpack", bitstringUnpackFn))
	return mod
}

// bitstringPackFn packs a list of integers into one byte-aligned
// bitstring, each element an 8-bit unsigned segment — the simplest case
// of funbit's general segment model, matching spec.md's scope (no
// per-segment size/endianness options are exposed at the lix surface).
func bitstringPackFn(_ value.Interpreter, arg value.Value) value.Value {
	listV := oneArg("Bitstring.pack/1", arg)
	if listV.Kind() != value.KindList {
		raise(badArg("Bitstring.pack/1", arg))
	}
	b := funbit.NewBuilder()
	for _, elem := range listV.List().ToSlice() {
		n := requireInt("Bitstring.pack/1", elem)
		funbit.AddInteger(b, n, funbit.WithSize(8))
	}
	bs, err := funbit.Build(b)
	if err != nil {
		return hostError("bitstring_pack_failed", err.Error())
	}
	return ok(value.BoxedVal(value.NewBoxed(boxedTypeBitstring, bs)))
}

// bitstringUnpackFn splits a packed bitstring back into a list of
// integers, each of the given bit size, matching pack/1's all-integer,
// fixed-width convention.
func bitstringUnpackFn(_ value.Interpreter, arg value.Value) value.Value {
	bsV, sizeV := twoArgs("Bitstring.unpack/2", arg)
	bs := requireBoxed("Bitstring.unpack/2", boxedTypeBitstring, bsV).Data.(*funbit.BitString)
	size := uint(requireInt("Bitstring.unpack/2", sizeV))
	if size == 0 {
		raise(badArg("Bitstring.unpack/2 (size must be positive)", sizeV))
	}

	m := funbit.NewMatcher()
	count := bs.Length() / size
	vars := make([]int64, count)
	for i := range vars {
		funbit.Integer(m, &vars[i], funbit.WithSize(size))
	}
	if _, err := funbit.Match(m, bs); err != nil {
		return hostError("bitstring_unpack_failed", err.Error())
	}

	elems := make([]value.Value, len(vars))
	for i, n := range vars {
		elems[i] = value.Int(n)
	}
	return ok(value.ListVal(value.ListFromSlice(elems)))
}
