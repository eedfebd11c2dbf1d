package value

import "github.com/funvibe/lix/internal/code"

// Interpreter is the minimal capability a native Function body needs from
// its caller: invoke a Closure value and resolve a qualified module/function
// call. It is declared here, not in the module or vm package, so that this
// package never has to import either — the concrete implementation (the VM
// executor) satisfies it structurally, the same way original_source's
// exec_visitor is the one place that both owns a context and drives
// closures, without the value type itself needing to know about either.
type Interpreter interface {
	CallClosure(c *Closure, arg Value) Value
	CallMFA(module, fn string, arg Value) Value
}

// Function is a host-implemented callable: the `Function` alternative of
// the data model, used for every stdlib wrapper (IO.puts, String.upcase,
// ...) and for the bootstrap primitives the Kernel module is built from.
type Function struct {
	Name string
	Call func(interp Interpreter, arg Value) Value
}

// Closure is a user-defined callable compiled from source: a code range
// plus the values captured from its defining scope at construction time.
type Closure struct {
	Code     code.Code
	Entry    code.Offset
	Captures []Value
	// Name is set for closures bound via `def`, for stack traces and
	// inspect output; anonymous `fn` closures leave it empty.
	Name string
}
