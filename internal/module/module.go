// Package module implements Module and Context: named containers of
// functions and macros, and the per-compilation environment stack used to
// thread state between the Kernel module's defmodule/def macros and the
// bootstrap module they expand into.
//
// Grounded in original_source/source/let/exec/context.cpp's context_impl
// (module registry, push_environment/pop_environment, set/get_environment_value)
// and kernel.cpp (the defmodule/def bootstrap this registry exists to
// support) — the exec_visitor-based VM (exec.cpp) this specification
// otherwise follows for instruction dispatch does not itself own module
// registration, so this part of the design is grounded on the older
// context_impl file specifically for that plumbing, not for its
// ex_tuple/ex_list value representation (which this repo does not use).
package module

import (
	"fmt"
	"sync"

	"github.com/funvibe/lix/internal/ast"
	"github.com/funvibe/lix/internal/value"
)

// MacroFunc is a host-language callable that produces AST: the compile-time
// analogue of value.Function. It receives the Context it is expanding
// within (so it can look up other modules, or push/pop compile-time
// environments) and the call site's argument nodes, unexpanded.
type MacroFunc func(ctx *Context, args []ast.Node) (ast.Node, error)

// Module owns a function-name → Value map (each Value a Function or a
// Closure) and a macro-name → MacroFunc map, per spec.md §4.9.
type Module struct {
	Name string

	mu        sync.RWMutex
	functions map[string]value.Value
	macros    map[string]MacroFunc
}

// NewModule returns an empty, named module.
func NewModule(name string) *Module {
	return &Module{
		Name:      name,
		functions: make(map[string]value.Value),
		macros:    make(map[string]MacroFunc),
	}
}

// AddFunction registers fn (a Function or Closure Value) under name,
// replacing any existing binding. This is the single registration path for
// both native stdlib wrappers and user-level `def`-produced closures (see
// SPEC_FULL.md §9).
func (m *Module) AddFunction(name string, fn value.Value) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.functions[name] = fn
}

// Function looks up a function by name.
func (m *Module) Function(name string) (value.Value, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.functions[name]
	return v, ok
}

// AddMacro registers a macro under name, replacing any existing binding.
func (m *Module) AddMacro(name string, fn MacroFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.macros[name] = fn
}

// Macro looks up a macro by name.
func (m *Module) Macro(name string) (MacroFunc, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fn, ok := m.macros[name]
	return fn, ok
}

// Context owns the name → Module registry and the compile-time environment
// stack.
type Context struct {
	mu      sync.RWMutex
	modules map[string]*Module

	// envStack is not safe for concurrent use by design: compile-time
	// environments thread state through a single module's compilation
	// (defmodule/def), which the core executes single-threaded (spec.md
	// §5). The CLI's concurrent batch eval gives each file its own
	// Context, so this never needs a lock.
	envStack []map[string]value.Value
}

// NewContext returns an empty Context.
func NewContext() *Context {
	return &Context{modules: make(map[string]*Module)}
}

// RegisterModule adds m to the registry, replacing any module of the same
// name.
func (c *Context) RegisterModule(m *Module) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modules[m.Name] = m
}

// Module looks up a registered module by name.
func (c *Context) Module(name string) (*Module, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.modules[name]
	return m, ok
}

// LookupFunction resolves Module.Function by name, the operation `dot` and
// `call_mfa` drive.
func (c *Context) LookupFunction(module, fn string) (value.Value, error) {
	m, ok := c.Module(module)
	if !ok {
		return value.Value{}, fmt.Errorf("%w: module %q not registered", ErrBadArg, module)
	}
	v, ok := m.Function(fn)
	if !ok {
		return value.Value{}, fmt.Errorf("%w: %s.%s/1 is undefined", ErrBadArg, module, fn)
	}
	return v, nil
}

// ErrBadArg is wrapped into the error returned by a failed module/function
// lookup, matching the `{:badarg, "Mod.fn", args}` raise spec.md §7 names
// for this case; the VM converts this into that raised Value at the call
// site so the error type carries enough information to do so.
var ErrBadArg = fmt.Errorf("badarg")

// PushEnv pushes a fresh, empty compile-time environment.
func (c *Context) PushEnv() {
	c.envStack = append(c.envStack, make(map[string]value.Value))
}

// PopEnv discards the innermost compile-time environment.
func (c *Context) PopEnv() {
	c.envStack = c.envStack[:len(c.envStack)-1]
}

// SetEnv binds key to v in the innermost compile-time environment. Panics
// if no environment is active.
func (c *Context) SetEnv(key string, v value.Value) {
	c.envStack[len(c.envStack)-1][key] = v
}

// GetEnv looks up key starting from the innermost compile-time environment
// outward.
func (c *Context) GetEnv(key string) (value.Value, bool) {
	for i := len(c.envStack) - 1; i >= 0; i-- {
		if v, ok := c.envStack[i][key]; ok {
			return v, true
		}
	}
	return value.Value{}, false
}
