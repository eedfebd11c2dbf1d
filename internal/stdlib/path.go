package stdlib

import (
	"path/filepath"

	"github.com/funvibe/lix/internal/module"
	"github.com/funvibe/lix/internal/value"
)

// BuildPathModule returns Path.join/1 and Path.basename/1, wrapping
// path/filepath per spec.md §4.11, grounded in
// _examples/funvibe-funxy/internal/evaluator/builtins_io.go's use of
// filepath.Clean/filepath.ToSlash for path normalization.
func BuildPathModule() *module.Module {
	mod := module.NewModule("Path")
	mod.AddFunction("join", nativeFn("Path.join", pathJoinFn))
	mod.AddFunction("basename", nativeFn("Path.basename", pathBasenameFn))
	return mod
}

// pathJoinFn joins a list of path segments; Elixir's Path.join/1 takes a
// single list argument rather than variadic segments.
func pathJoinFn(_ value.Interpreter, arg value.Value) value.Value {
	listV := oneArg("Path.join/1", arg)
	if listV.Kind() != value.KindList {
		raise(badArg("Path.join/1", arg))
	}
	elems := listV.List().ToSlice()
	segments := make([]string, len(elems))
	for i, e := range elems {
		segments[i] = requireString("Path.join/1", e)
	}
	joined := filepath.ToSlash(filepath.Join(segments...))
	return value.Str(joined)
}

func pathBasenameFn(_ value.Interpreter, arg value.Value) value.Value {
	path := requireString("Path.basename/1", oneArg("Path.basename/1", arg))
	return value.Str(filepath.Base(path))
}
