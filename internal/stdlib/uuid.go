package stdlib

import (
	"github.com/google/uuid"

	"github.com/funvibe/lix/internal/module"
	"github.com/funvibe/lix/internal/value"
)

// BuildUuidModule returns Uuid.v4/0 per spec.md §4.11, grounded in
// internal/value/boxed.go's own use of uuid.New() to stamp every Boxed
// instance — this native just surfaces that same generator to user code as
// a plain String rather than a Boxed handle, since a UUID has no further
// host behavior to dispatch through boxed.Registry.
func BuildUuidModule() *module.Module {
	mod := module.NewModule("Uuid")
	mod.AddFunction("v4", nativeFn("Uuid.v4", uuidV4Fn))
	return mod
}

func uuidV4Fn(_ value.Interpreter, _ value.Value) value.Value {
	return value.Str(uuid.New().String())
}
