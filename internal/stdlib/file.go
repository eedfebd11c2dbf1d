package stdlib

import (
	"os"

	"github.com/funvibe/lix/internal/module"
	"github.com/funvibe/lix/internal/value"
)

// BuildFileModule returns File.read/1 and File.write/2, wrapping
// os.ReadFile/os.WriteFile per spec.md §4.11, grounded in
// _examples/funvibe-funxy/internal/evaluator/builtins_io.go's
// builtinReadFile/builtinWriteFile (same {:ok, V} | {:error, reason} result
// shape, adapted to this language's tuple values instead of that
// evaluator's own Result type).
func BuildFileModule() *module.Module {
	mod := module.NewModule("File")
	mod.AddFunction("read", nativeFn("File.read", fileReadFn))
	mod.AddFunction("write", nativeFn("File.write", fileWriteFn))
	return mod
}

func fileReadFn(_ value.Interpreter, arg value.Value) value.Value {
	path := requireString("File.read/1", oneArg("File.read/1", arg))
	data, err := os.ReadFile(path)
	if err != nil {
		return hostError("enoent", err.Error())
	}
	return ok(value.Str(string(data)))
}

func fileWriteFn(_ value.Interpreter, arg value.Value) value.Value {
	pathV, contentV := twoArgs("File.write/2", arg)
	path := requireString("File.write/2", pathV)
	content := requireString("File.write/2", contentV)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return hostError("eacces", err.Error())
	}
	return value.SymOf("ok")
}
