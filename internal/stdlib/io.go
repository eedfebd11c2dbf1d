package stdlib

import (
	"fmt"

	"github.com/funvibe/lix/internal/module"
	"github.com/funvibe/lix/internal/value"
)

// BuildIOModule returns IO.puts/1 and IO.inspect/1, the two console natives
// spec.md §4.11 names, grounded in
// _examples/funvibe-funxy/internal/evaluator/builtins_io.go's stdout
// builtins (fmt.Println over os.Stdout rather than that file's buffered
// stdin readers, which this language has no counterpart for yet).
func BuildIOModule() *module.Module {
	mod := module.NewModule("IO")
	mod.AddFunction("puts", nativeFn("IO.puts", putsFn))
	mod.AddFunction("inspect", nativeFn("IO.inspect", inspectFn))
	return mod
}

// putsFn writes a value's display form followed by a newline, the way
// Elixir's IO.puts prints strings bare and non-strings via to_string.
func putsFn(_ value.Interpreter, arg value.Value) value.Value {
	v := oneArg("IO.puts/1", arg)
	fmt.Println(value.ToDisplayString(v))
	return v
}

// inspectFn writes a value's debug (Inspect) form and returns the value
// unchanged, mirroring Elixir's IO.inspect/1 being a transparent pipeline
// tap.
func inspectFn(_ value.Interpreter, arg value.Value) value.Value {
	v := oneArg("IO.inspect/1", arg)
	fmt.Println(value.Inspect(v))
	return v
}
