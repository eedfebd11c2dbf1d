// Package boxed implements the host object registry: a mapping from a
// Boxed value's type name to a set of named getter functions, invoked by
// the VM's `dot` instruction when the left-hand side is a Boxed value.
//
// Grounded in original_source/source/let/boxed.hpp, whose box type carries
// a runtime (name, id) type tag and is unpacked via box_cast<T> after an id
// check; here the "id check" is the registry lookup by TypeName, and
// box_cast's job is done by a registered getter closing over the concrete
// Go type via a type assertion on Boxed.Data.
package boxed

import "github.com/funvibe/lix/internal/value"

// Getter reads one named member off a boxed value's underlying Data.
type Getter func(data any) (value.Value, error)

// Registry maps a Boxed.TypeName to its getters.
type Registry struct {
	types map[string]map[string]Getter
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]map[string]Getter)}
}

// Register adds a getter named member for typeName, replacing any existing
// getter of the same name.
func (r *Registry) Register(typeName, member string, get Getter) {
	m, ok := r.types[typeName]
	if !ok {
		m = make(map[string]Getter)
		r.types[typeName] = m
	}
	m[member] = get
}

// ErrBadBoxCast is returned when a requested member has no registered
// getter for the box's type, the `bad_box_cast` error spec.md §7 names.
type ErrBadBoxCast struct {
	TypeName string
	Member   string
}

func (e *ErrBadBoxCast) Error() string {
	return "bad_box_cast: " + e.TypeName + " has no member " + e.Member
}

// Get invokes the registered getter for b's type and the requested member.
func (r *Registry) Get(b *value.Boxed, member string) (value.Value, error) {
	getters, ok := r.types[b.TypeName]
	if ok {
		if get, ok := getters[member]; ok {
			return get(b.Data)
		}
	}
	return value.Value{}, &ErrBadBoxCast{TypeName: b.TypeName, Member: member}
}
