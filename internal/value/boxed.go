package value

import "github.com/google/uuid"

// Boxed is an opaque host value threaded through the interpreter without
// the core ever inspecting its contents directly: database handles, gRPC
// responses, anything a stdlib module wants to hand back to user code.
// Member access (`dot`) on a Boxed is resolved by a getter registered
// against TypeName in a boxed.Registry (internal/boxed), kept out of this
// package to avoid value depending on the stdlib modules that populate it.
//
// Grounded in original_source/source/let/boxed.hpp's type-erased box, which
// carries a runtime type tag and a map of named getters; the UUID tag here
// is additional and used only for inspect/debugging output (ambient
// identifier wiring), never for equality — Boxed values are never hashable
// or comparable (see Value.Hashable).
type Boxed struct {
	TypeName string
	ID       uuid.UUID
	Data     any
}

// NewBoxed wraps data under typeName, stamping a fresh identifier.
func NewBoxed(typeName string, data any) *Boxed {
	return &Boxed{TypeName: typeName, ID: uuid.New(), Data: data}
}
