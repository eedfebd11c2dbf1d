package stdlib

import (
	"strings"
	"unicode/utf8"

	"github.com/funvibe/lix/internal/module"
	"github.com/funvibe/lix/internal/value"
)

// BuildStringModule returns String.upcase/1, String.split/2 and
// String.length/1, wrapping strings/utf8 per spec.md §4.11, grounded in
// _examples/funvibe-funxy/internal/evaluator/builtins_std.go's string
// builtins (the same strings.ToUpper/strings.Split/utf8.RuneCountInString
// trio, one native per host call rather than that file's larger grab-bag
// of string helpers — only the three spec.md names are in scope here).
func BuildStringModule() *module.Module {
	mod := module.NewModule("String")
	mod.AddFunction("upcase", nativeFn("String.upcase", stringUpcaseFn))
	mod.AddFunction("split", nativeFn("String.split", stringSplitFn))
	mod.AddFunction("length", nativeFn("String.length", stringLengthFn))
	return mod
}

func stringUpcaseFn(_ value.Interpreter, arg value.Value) value.Value {
	s := requireString("String.upcase/1", oneArg("String.upcase/1", arg))
	return value.Str(strings.ToUpper(s))
}

func stringSplitFn(_ value.Interpreter, arg value.Value) value.Value {
	strV, sepV := twoArgs("String.split/2", arg)
	s := requireString("String.split/2", strV)
	sep := requireString("String.split/2", sepV)
	var parts []string
	if sep == "" {
		parts = strings.Fields(s)
	} else {
		parts = strings.Split(s, sep)
	}
	elems := make([]value.Value, len(parts))
	for i, p := range parts {
		elems[i] = value.Str(p)
	}
	return value.ListVal(value.ListFromSlice(elems))
}

func stringLengthFn(_ value.Interpreter, arg value.Value) value.Value {
	s := requireString("String.length/1", oneArg("String.length/1", arg))
	return value.Int(int64(utf8.RuneCountInString(s)))
}
