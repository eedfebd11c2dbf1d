// Package kernel implements the bootstrap `__lix` module and the `Kernel`
// module: the `defmodule`/`def` macros, the function-definition accumulator
// they thread through a Context's compile-time environment, and the small
// set of native list/map helpers Kernel-level syntax lowers to.
//
// Grounded directly in
// original_source/source/lix/exec/kernel.cpp (the function_accumulator,
// register_module/register_function/compile_module/define_module_function/
// get_env bootstrap functions, function_final_pass, finalize_module,
// defmodule_macro/def_macro/extract_call_sig, and kernel_module's
// __reverse_list/__map_pop/__map_put/__map_fetch). An earlier, smaller
// variant of the same file exists at
// original_source/source/let/exec/kernel.cpp; this package follows the
// newer lix one.
//
// One structural adaptation throughout: value.Function.Call only receives
// (Interpreter, Value), never the Context, by design (see
// internal/value/function.go) so that package never imports module or vm.
// Every bootstrap native below is therefore built by a constructor
// (registerModuleFn, compileModuleFn, ...) that closes over a specific
// *module.Context — and, where a nested compile-and-run is needed, a
// *boxed.Registry — rather than receiving ctx as a call argument the way
// the C++ originals do.
package kernel

import (
	"fmt"
	"sort"

	"github.com/funvibe/lix/internal/ast"
	"github.com/funvibe/lix/internal/boxed"
	"github.com/funvibe/lix/internal/compiler"
	"github.com/funvibe/lix/internal/macro"
	"github.com/funvibe/lix/internal/module"
	"github.com/funvibe/lix/internal/symbol"
	"github.com/funvibe/lix/internal/value"
	"github.com/funvibe/lix/internal/vm"
)

// funcDef is one accumulated `def name(args), do: body` clause: argList is
// always a List node (possibly empty, for the bare `def name, do: ...`
// shorthand), body has already been macro-expanded.
type funcDef struct {
	argList ast.Node
	body    ast.Node
}

// functionAccumulator collects every def clause seen while compiling one
// defmodule block, keyed by function name (one name may have several
// clauses, each becoming one `fn` case). Carried through the Context's
// compile-time environment as a Boxed handle (type name
// "FunctionAccumulator") since it is never dot-accessed by user code and
// needs no boxed.Registry getter.
type functionAccumulator struct {
	moduleName string
	fns        map[string][]funcDef
}

func newFunctionAccumulator(moduleName string) *functionAccumulator {
	return &functionAccumulator{moduleName: moduleName, fns: make(map[string][]funcDef)}
}

func (a *functionAccumulator) add(name string, argList, body ast.Node) {
	a.fns[name] = append(a.fns[name], funcDef{argList: argList, body: body})
}

// sortedNames returns the accumulated function names in sorted order, the
// same deterministic iteration order the original gets for free from
// std::map<std::string, function_def_acc>.
func (a *functionAccumulator) sortedNames() []string {
	names := make([]string, 0, len(a.fns))
	for name := range a.fns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func badArg(desc string, args value.Value) value.Value {
	return value.TupleOf([]value.Value{value.SymOf("badarg"), value.Str(desc), args})
}

func raise(reason value.Value) { panic(&vm.RuntimeError{Reason: reason}) }

// dotNode builds the `.(Mod, fn)` qualified-lookup call compileDot's
// two-argument branch resolves via the module registry — the AST-builder
// counterpart of ast::call(symbol("."), {}, ast::list({Mod, fn})) in the
// original.
func dotNode(mod, fn string) ast.Node {
	return ast.Call(ast.SymOf("."), ast.Meta{}, ast.List([]ast.Node{ast.SymOf(mod), ast.SymOf(fn)}))
}

// doBlockOf extracts the `do: body` value from a macro call's trailing
// kwargs-list argument, the same `[{:do, body}]` convention
// internal/compiler's case/cond/quote forms (and macro.keywordGet) share.
func doBlockOf(args []ast.Node) (ast.Node, bool) {
	if len(args) == 0 {
		return ast.Node{}, false
	}
	tail := args[len(args)-1]
	if tail.Kind != ast.KindList {
		return ast.Node{}, false
	}
	for _, item := range tail.Elems {
		if item.Kind != ast.KindTuple || len(item.Elems) != 2 {
			continue
		}
		if item.Elems[0].Kind == ast.KindSymbol && symbol.Name(item.Elems[0].Sym) == "do" {
			return item.Elems[1], true
		}
	}
	return ast.Node{}, false
}

// --- bootstrap (__lix) natives -------------------------------------------

// registerModuleFn implements `__lix.register_module({name})`: creates and
// registers an empty module, returning it boxed. This is a standalone
// low-level primitive, not the path defmodule itself takes (compile_module
// below registers its module directly).
func registerModuleFn(ctx *module.Context) *value.Function {
	return &value.Function{
		Name: "register_module",
		Call: func(_ value.Interpreter, arg value.Value) value.Value {
			tup := arg.Tuple()
			if len(tup) != 1 || tup[0].Kind() != value.KindSymbol {
				raise(badArg("__lix.register_module/1", arg))
			}
			mod := module.NewModule(tup[0].SymbolName())
			ctx.RegisterModule(mod)
			return value.BoxedVal(value.NewBoxed("Module", mod))
		},
	}
}

// registerFunctionFn implements `__lix.register_function({mod, name,
// fn})`, binding fn (a Closure, ordinarily one finalize_module itself just
// built) under name on the boxed module.
func registerFunctionFn(_ *module.Context) *value.Function {
	return &value.Function{
		Name: "register_function",
		Call: func(_ value.Interpreter, arg value.Value) value.Value {
			tup := arg.Tuple()
			if len(tup) != 3 || tup[0].Kind() != value.KindBoxed || tup[1].Kind() != value.KindSymbol {
				raise(badArg("__lix.register_function/3", arg))
			}
			mod, ok := tup[0].Boxed().Data.(*module.Module)
			if !ok {
				raise(badArg("__lix.register_function/3", arg))
			}
			mod.AddFunction(tup[1].SymbolName(), tup[2])
			return value.SymOf("ok")
		},
	}
}

// getEnvFn implements `__lix.get_env({name})`: a compile-time environment
// lookup, returning :nil rather than raising when absent.
func getEnvFn(ctx *module.Context) *value.Function {
	return &value.Function{
		Name: "get_env",
		Call: func(_ value.Interpreter, arg value.Value) value.Value {
			tup := arg.Tuple()
			if len(tup) != 1 || tup[0].Kind() != value.KindSymbol {
				raise(badArg("__lix.get_env/1", arg))
			}
			if v, ok := ctx.GetEnv(tup[0].SymbolName()); ok {
				return v
			}
			return value.SymOf("nil")
		},
	}
}

// extractCallSig splits a def signature call `name(a, b)`, or the bare
// zero-arg shorthand `name` (a :Var reference), into its unqualified
// function name and argument-pattern list. Direct port of
// extract_call_sig; note it validates only the call shape, not whether the
// argument patterns themselves make sense (same as the original).
func extractCallSig(sig ast.Node) (name string, argList ast.Node, err error) {
	name, ok := sig.CallTarget()
	if !ok {
		return "", ast.Node{}, fmt.Errorf("`def` call signature must be named by an unqualified identifier")
	}
	if args, ok := sig.ArgList(); ok {
		return name, ast.List(args), nil
	}
	if _, ok := sig.IsVar(); ok {
		return name, ast.List(nil), nil
	}
	return "", ast.Node{}, fmt.Errorf("invalid argument list to `def`")
}

// defModuleFunctionFn implements `__lix.def_module_function({sig, body})`,
// the native the `def` macro's expansion invokes at compile time: it
// macro-expands body and appends it to the enclosing defmodule's
// accumulator. Port of define_module_function.
func defModuleFunctionFn(ctx *module.Context) *value.Function {
	return &value.Function{
		Name: "def_module_function",
		Call: func(_ value.Interpreter, arg value.Value) value.Value {
			tup := arg.Tuple()
			if len(tup) != 2 {
				raise(badArg("__lix.def_module_function/2", arg))
			}
			if _, ok := ctx.GetEnv("compiling_module"); !ok {
				raise(badArg("`def` macro must appear within a `defmodule` block", arg))
			}
			accVal, ok := ctx.GetEnv("module_function_accumulator")
			if !ok || accVal.Kind() != value.KindBoxed {
				raise(badArg("`def` macro must appear within a `defmodule` block", arg))
			}
			acc, ok := accVal.Boxed().Data.(*functionAccumulator)
			if !ok {
				raise(badArg("`def` macro must appear within a `defmodule` block", arg))
			}

			sigNode, err := ast.FromValue(tup[0])
			if err != nil {
				raise(badArg("invalid signature to `def`: "+err.Error(), arg))
			}
			bodyNode, err := ast.FromValue(tup[1])
			if err != nil {
				raise(badArg("invalid body to `def`: "+err.Error(), arg))
			}
			name, argList, sigErr := extractCallSig(sigNode)
			if sigErr != nil {
				raise(badArg(sigErr.Error(), arg))
			}
			expanded, err := macro.Expand(ctx, bodyNode)
			if err != nil {
				raise(badArg("def: "+err.Error(), arg))
			}
			acc.add(name, argList, expanded)
			return value.SymOf("ok")
		},
	}
}

// compileModuleFn implements `__lix.compile_module({name, ast})`: the
// native behind `defmodule`'s expansion. It pushes a fresh compile-time
// environment exposing the new (empty, not-yet-populated) module, the
// module name, and a fresh function accumulator; macro-expands and runs
// the block body (which populates the accumulator purely through `def`'s
// side effect); registers the module; and finally compiles+runs the
// accumulated definitions into real closures via finalizeModule. Port of
// compile_module.
func compileModuleFn(ctx *module.Context, registry *boxed.Registry) *value.Function {
	return &value.Function{
		Name: "compile_module",
		Call: func(_ value.Interpreter, arg value.Value) value.Value {
			tup := arg.Tuple()
			if len(tup) != 2 || tup[0].Kind() != value.KindSymbol {
				raise(badArg("__lix.compile_module/2", arg))
			}
			modName := tup[0].SymbolName()
			bodyNode, err := ast.FromValue(tup[1])
			if err != nil {
				raise(badArg("defmodule "+modName+": "+err.Error(), arg))
			}

			newMod := module.NewModule(modName)
			acc := newFunctionAccumulator(modName)

			ctx.PushEnv()
			defer ctx.PopEnv()
			ctx.SetEnv("compiling_module", value.BoxedVal(value.NewBoxed("Module", newMod)))
			ctx.SetEnv("compiling_module_name", value.Str(modName))
			ctx.SetEnv("module_function_accumulator", value.BoxedVal(value.NewBoxed("FunctionAccumulator", acc)))

			expanded, err := macro.Expand(ctx, bodyNode)
			if err != nil {
				raise(badArg("defmodule "+modName+": "+err.Error(), arg))
			}
			innerCode, err := compiler.CompileRoot(expanded)
			if err != nil {
				raise(badArg("defmodule "+modName+": "+err.Error(), arg))
			}
			// Runs purely for its __lix.def_module_function side effects
			// (populating acc); its result value is discarded, matching the
			// original's bare execute_all(ctx) call.
			if _, err := vm.NewExecutor(ctx, registry).ExecuteAll(innerCode, 0, nil); err != nil {
				panic(err)
			}

			ctx.RegisterModule(newMod)

			result, err := finalizeModule(ctx, registry, acc)
			if err != nil {
				panic(err)
			}
			return result
		},
	}
}

// functionFinalPass rewrites any unqualified call whose target names a
// function this same module also defines into a qualified
// `.(ModuleName, name)` call, so sibling functions in a module can call
// each other by bare name. Port of function_final_pass (the fn_name
// parameter threaded through the original is never actually read there,
// so it is dropped here).
func functionFinalPass(n ast.Node, acc *functionAccumulator) ast.Node {
	switch n.Kind {
	case ast.KindInt, ast.KindReal, ast.KindSymbol, ast.KindString:
		return n
	case ast.KindList:
		out := make([]ast.Node, len(n.Elems))
		for i, el := range n.Elems {
			out[i] = functionFinalPass(el, acc)
		}
		return ast.List(out)
	case ast.KindTuple:
		out := make([]ast.Node, len(n.Elems))
		for i, el := range n.Elems {
			out[i] = functionFinalPass(el, acc)
		}
		return ast.Tuple(out)
	case ast.KindCall:
		args := functionFinalPass(*n.Args, acc)
		if name, ok := n.CallTarget(); ok && args.Kind != ast.KindSymbol {
			if _, defined := acc.fns[name]; defined {
				return ast.Call(dotNode(acc.moduleName, name), n.Meta, args)
			}
		}
		target := functionFinalPass(*n.Target, acc)
		return ast.Call(target, n.Meta, args)
	default:
		return n
	}
}

// finalizeModule assembles the accumulated per-name def clauses into one
// `fn` per function name (one case per clause), emits one
// `__lix.register_function` call per function, wraps it all in a block
// that first rebinds `__module` from the compile-time environment, and
// compiles+executes that block. Port of finalize_module.
func finalizeModule(ctx *module.Context, registry *boxed.Registry, acc *functionAccumulator) (value.Value, error) {
	meta := ast.Meta{Module: acc.moduleName}
	stmts := []ast.Node{
		ast.Call(ast.SymOf("="), meta, ast.List([]ast.Node{
			ast.Var("__module", meta),
			ast.Call(dotNode("__lix", "get_env"), meta, ast.List([]ast.Node{ast.SymOf("compiling_module")})),
		})),
	}

	for _, name := range acc.sortedNames() {
		defs := acc.fns[name]
		fnMeta := ast.Meta{Module: acc.moduleName, Function: name}
		clauses := make([]ast.Node, len(defs))
		for i, d := range defs {
			body := functionFinalPass(d.body, acc)
			clauses[i] = ast.Call(ast.SymOf("->"), fnMeta, ast.List([]ast.Node{d.argList, body}))
		}
		fnNode := ast.Call(ast.SymOf("fn"), fnMeta, ast.List(clauses))
		stmts = append(stmts, ast.Call(dotNode("__lix", "register_function"), meta, ast.List([]ast.Node{
			ast.Var("__module", meta),
			ast.SymOf(name),
			fnNode,
		})))
	}

	block := ast.Call(ast.SymOf("__block__"), meta, ast.List(stmts))
	code, err := compiler.CompileRoot(block)
	if err != nil {
		return value.Value{}, err
	}
	return vm.NewExecutor(ctx, registry).ExecuteAll(code, 0, nil)
}

// --- Kernel macros --------------------------------------------------------

// defmoduleMacro expands `defmodule Name do ... end` into
// `.(__lix, compile_module)(Name, escaped_block)`: the block body is
// escaped (not yet macro-expanded — compile_module expands it itself,
// inside the fresh module's own environment) so the expansion happens at
// the right lexical scope. Port of defmodule_macro.
func defmoduleMacro(_ *module.Context, args []ast.Node) (ast.Node, error) {
	if len(args) != 2 {
		return ast.Node{}, fmt.Errorf("`defmodule` expects two arguments")
	}
	if args[0].Kind != ast.KindSymbol {
		return ast.Node{}, fmt.Errorf("first argument to `defmodule` must be a symbol")
	}
	block, ok := doBlockOf(args)
	if !ok {
		return ast.Node{}, fmt.Errorf("expected 'do' block for `defmodule` call")
	}
	modAst := macro.Escape(block)
	return ast.Call(dotNode("__lix", "compile_module"), ast.Meta{}, ast.List([]ast.Node{args[0], modAst})), nil
}

// defMacro expands `def sig do body end` (or `def sig, do: body`) into
// `.(__lix, def_module_function)(escaped_sig, escaped_body)`. Port of
// def_macro.
func defMacro(_ *module.Context, args []ast.Node) (ast.Node, error) {
	if len(args) != 2 {
		return ast.Node{}, fmt.Errorf("invalid arguments to `def`")
	}
	callHead := macro.Escape(args[0])
	doBlock, ok := doBlockOf(args)
	if !ok {
		return ast.Node{}, fmt.Errorf("`def` expects a 'do' block")
	}
	body := macro.Escape(doBlock)
	return ast.Call(dotNode("__lix", "def_module_function"), ast.Meta{}, ast.List([]ast.Node{callHead, body})), nil
}

// --- Kernel natives --------------------------------------------------------

func reverseListFn() *value.Function {
	return &value.Function{
		Name: "__reverse_list",
		Call: func(_ value.Interpreter, arg value.Value) value.Value {
			tup := arg.Tuple()
			if len(tup) != 1 || tup[0].Kind() != value.KindList {
				raise(badArg("Kernel.__reverse_list/1", arg))
			}
			elems := tup[0].List().ToSlice()
			out := make([]value.Value, len(elems))
			for i, v := range elems {
				out[len(elems)-1-i] = v
			}
			return value.ListVal(value.ListFromSlice(out))
		},
	}
}

// mapPopFn implements Kernel.__map_pop(map, key, default): {removed,
// rest_map} if key was present, else {default, map} unchanged. Port of the
// __map_pop lambda in kernel_module.
func mapPopFn() *value.Function {
	return &value.Function{
		Name: "__map_pop",
		Call: func(_ value.Interpreter, arg value.Value) value.Value {
			tup := arg.Tuple()
			if len(tup) != 3 || tup[0].Kind() != value.KindMap {
				raise(badArg("Kernel.__map_pop/3", arg))
			}
			removed, rest, ok := tup[0].Map().Pop(tup[1])
			if !ok {
				return value.TupleOf([]value.Value{tup[2], tup[0]})
			}
			return value.TupleOf([]value.Value{removed, value.MapVal(rest)})
		},
	}
}

func mapPutFn() *value.Function {
	return &value.Function{
		Name: "__map_put",
		Call: func(_ value.Interpreter, arg value.Value) value.Value {
			tup := arg.Tuple()
			if len(tup) != 3 || tup[0].Kind() != value.KindMap {
				raise(badArg("Kernel.__map_put/3", arg))
			}
			return value.MapVal(tup[0].Map().InsertOrUpdate(tup[1], tup[2]))
		},
	}
}

// mapFetchFn implements Kernel.__map_fetch(map, key): {:ok, value} or the
// bare symbol :error. Port of the __map_fetch lambda in kernel_module.
func mapFetchFn() *value.Function {
	return &value.Function{
		Name: "__map_fetch",
		Call: func(_ value.Interpreter, arg value.Value) value.Value {
			tup := arg.Tuple()
			if len(tup) != 2 || tup[0].Kind() != value.KindMap {
				raise(badArg("Kernel.__map_fetch/2", arg))
			}
			v, ok := tup[0].Map().Find(tup[1])
			if !ok {
				return value.SymOf("error")
			}
			return value.TupleOf([]value.Value{value.SymOf("ok"), v})
		},
	}
}

// --- module/context builders ----------------------------------------------

// BuildBootstrapModule returns the `__lix` module, every native closed over
// the same ctx and registry (used for compile_module's nested compile-run
// cycles).
func BuildBootstrapModule(ctx *module.Context, registry *boxed.Registry) *module.Module {
	mod := module.NewModule("__lix")
	mod.AddFunction("register_module", value.FunctionVal(registerModuleFn(ctx)))
	mod.AddFunction("register_function", value.FunctionVal(registerFunctionFn(ctx)))
	mod.AddFunction("compile_module", value.FunctionVal(compileModuleFn(ctx, registry)))
	mod.AddFunction("def_module_function", value.FunctionVal(defModuleFunctionFn(ctx)))
	mod.AddFunction("get_env", value.FunctionVal(getEnvFn(ctx)))
	return mod
}

// BuildKernelModule returns the `Kernel` module: the defmodule/def macros
// plus the list/map primitives Kernel-level syntax lowers to.
func BuildKernelModule() *module.Module {
	mod := module.NewModule("Kernel")
	mod.AddMacro("defmodule", defmoduleMacro)
	mod.AddMacro("def", defMacro)
	mod.AddFunction("__reverse_list", value.FunctionVal(reverseListFn()))
	mod.AddFunction("__map_pop", value.FunctionVal(mapPopFn()))
	mod.AddFunction("__map_put", value.FunctionVal(mapPutFn()))
	mod.AddFunction("__map_fetch", value.FunctionVal(mapFetchFn()))
	return mod
}

// BuildBootstrapContext returns a fresh Context with only `__lix`
// registered, the minimum needed to run user code that never touches
// defmodule (e.g. a single top-level expression).
func BuildBootstrapContext(registry *boxed.Registry) *module.Context {
	ctx := module.NewContext()
	ctx.RegisterModule(BuildBootstrapModule(ctx, registry))
	return ctx
}

// BuildKernelContext returns a fresh Context with both `__lix` and
// `Kernel` registered — the Context any real program should run against,
// since macro expansion implicitly imports Kernel (spec.md §4.9).
func BuildKernelContext(registry *boxed.Registry) *module.Context {
	ctx := BuildBootstrapContext(registry)
	ctx.RegisterModule(BuildKernelModule())
	return ctx
}
