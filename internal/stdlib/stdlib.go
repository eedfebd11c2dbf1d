// Package stdlib implements the thin host wrapper modules spec.md frames as
// "stdlib modules": ordinary value.Function natives, registered into a
// module.Context by name exactly the way internal/kernel registers __lix
// and Kernel, wrapping a Go standard-library or third-party package per
// module. None of these participate in the VM's core invariants — they are
// host interop surface, grounded in
// _examples/funvibe-funxy/internal/evaluator/builtins_io.go and its sibling
// builtins_*.go files for the one-native-per-host-call shape, and in
// original_source/ only where a module's exact argument/return shape needs
// resolving (most of these have no original_source counterpart at all,
// since the original interpreter's stdlib is a separate concern from its
// core; in that case the wrapper follows the closest builtins_*.go sibling
// instead).
package stdlib

import (
	"log/slog"

	"github.com/funvibe/lix/internal/boxed"
	"github.com/funvibe/lix/internal/module"
	"github.com/funvibe/lix/internal/value"
	"github.com/funvibe/lix/internal/vm"
)

// raise panics with a RuntimeError the way internal/kernel's raise does,
// unwound by the VM's own call-frame recovery.
func raise(reason value.Value) { panic(&vm.RuntimeError{Reason: reason}) }

// badArg builds the {:badarg, desc, args} tuple internal/kernel's badArg
// also returns, kept in sync deliberately (both describe the same "a
// native received arguments it can't handle" condition).
func badArg(desc string, args value.Value) value.Value {
	return value.TupleOf([]value.Value{value.SymOf("badarg"), value.Str(desc), args})
}

// hostError builds a {:error, {:reason_tag, message}} tuple for a failure
// surfaced by the underlying Go library (as opposed to a caller misuse,
// which is a badArg panic instead) — the same {:ok, V} | {:error, E} shape
// spec.md's boxed/error conventions use elsewhere (e.g. internal/kernel's
// compile_module).
func hostError(tag, message string) value.Value {
	return value.TupleOf([]value.Value{value.SymOf("error"), value.TupleOf([]value.Value{value.SymOf(tag), value.Str(message)})})
}

func ok(v value.Value) value.Value {
	return value.TupleOf([]value.Value{value.SymOf("ok"), v})
}

func oneArg(fnDesc string, arg value.Value) value.Value {
	tup := arg.Tuple()
	if len(tup) != 1 {
		raise(badArg(fnDesc, arg))
	}
	return tup[0]
}

func twoArgs(fnDesc string, arg value.Value) (value.Value, value.Value) {
	tup := arg.Tuple()
	if len(tup) != 2 {
		raise(badArg(fnDesc, arg))
	}
	return tup[0], tup[1]
}

func threeArgs(fnDesc string, arg value.Value) (value.Value, value.Value, value.Value) {
	tup := arg.Tuple()
	if len(tup) != 3 {
		raise(badArg(fnDesc, arg))
	}
	return tup[0], tup[1], tup[2]
}

func requireString(fnDesc string, v value.Value) string {
	if v.Kind() != value.KindString {
		raise(badArg(fnDesc, v))
	}
	return v.StringVal()
}

func requireInt(fnDesc string, v value.Value) int64 {
	if v.Kind() != value.KindInt {
		raise(badArg(fnDesc, v))
	}
	return v.Int()
}

func requireBoxed(fnDesc, typeName string, v value.Value) *value.Boxed {
	if v.Kind() != value.KindBoxed || v.Boxed().TypeName != typeName {
		raise(badArg(fnDesc, v))
	}
	return v.Boxed()
}

// nativeFn is a convenience constructor matching internal/kernel's own
// `&value.Function{Name: ..., Call: ...}` literal shape.
func nativeFn(name string, call func(value.Interpreter, value.Value) value.Value) value.Value {
	return value.FunctionVal(&value.Function{Name: name, Call: call})
}

// ModuleBuilder constructs one module's worth of native functions; each
// stdlib submodule (io.go, file.go, ...) exposes one of these so Register
// can assemble the set lix.yaml's `modules:` list names.
type ModuleBuilder func(registry *boxed.Registry) *module.Module

// Builders maps lix.yaml module-list names (spec.md §6's `modules:` entry)
// to their constructors.
var Builders = map[string]ModuleBuilder{
	"io":        func(*boxed.Registry) *module.Module { return BuildIOModule() },
	"file":      func(*boxed.Registry) *module.Module { return BuildFileModule() },
	"path":      func(*boxed.Registry) *module.Module { return BuildPathModule() },
	"regex":     func(*boxed.Registry) *module.Module { return BuildRegexModule() },
	"string":    func(*boxed.Registry) *module.Module { return BuildStringModule() },
	"uuid":      func(*boxed.Registry) *module.Module { return BuildUuidModule() },
	"db":        func(r *boxed.Registry) *module.Module { return BuildDbModule(r) },
	"grpc":      func(r *boxed.Registry) *module.Module { return BuildGrpcModule(r) },
	"bitstring": func(r *boxed.Registry) *module.Module { return BuildBitstringModule(r) },
}

// Register builds and registers into ctx every module named in names (the
// order lix.yaml's `modules:` list gives them, an unrecognized name is a
// host configuration error, not a language error, so it panics rather than
// raising a lix RuntimeError).
func Register(ctx *module.Context, registry *boxed.Registry, names []string) {
	for _, name := range names {
		build, ok := Builders[name]
		if !ok {
			panic("stdlib: unknown module " + name)
		}
		ctx.RegisterModule(build(registry))
		slog.Debug("stdlib module registered", "module", name)
	}
}
