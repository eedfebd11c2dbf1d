package vm

import (
	"github.com/funvibe/lix/internal/boxed"
	"github.com/funvibe/lix/internal/code"
	"github.com/funvibe/lix/internal/match"
	"github.com/funvibe/lix/internal/module"
	"github.com/funvibe/lix/internal/symbol"
	"github.com/funvibe/lix/internal/value"
)

func symName(id symbol.ID) string { return symbol.Name(id) }

// Executor is the frame-stack VM: it implements value.Interpreter so native
// Functions can call back into closures (CallClosure) or named module
// functions (CallMFA), re-entering the same dispatch loop recursively (see
// Frame.external for how such nested calls hand back their result).
type Executor struct {
	ctx    *module.Context
	boxed  *boxed.Registry
	frames []*Frame

	lastReturn value.Value
}

// NewExecutor returns an Executor bound to ctx (the module/function
// registry a running program resolves call_mfa/dot against) and an optional
// boxed value registry (may be nil if the program never touches Boxed
// values).
func NewExecutor(ctx *module.Context, registry *boxed.Registry) *Executor {
	return &Executor{ctx: ctx, boxed: registry}
}

// ExecuteAll runs c from entry to completion with the given initial slots
// (e.g. a top-level program's argument, or none) and returns its result.
func (e *Executor) ExecuteAll(c code.Code, entry code.Offset, initial []value.Value) (result value.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if re, ok := r.(*RuntimeError); ok {
				err = re
				return
			}
			panic(r)
		}
	}()
	depth := len(e.frames)
	e.frames = append(e.frames, newExternalFrame(c, entry, initial))
	result = e.run(depth)
	return result, nil
}

// ExecuteN behaves like ExecuteAll but runs at most budget instructions
// across the pushed frame (and any it calls into) before returning, the
// sole cancellation mechanism spec.md §5 describes. ok reports whether the
// frame ran to completion within the budget; when false the run was
// abandoned mid-flight and its partial frame stack discarded — there is no
// resumption support, matching the budget's stated purpose (bounding a
// single execution, not pausing and resuming one).
func (e *Executor) ExecuteN(c code.Code, entry code.Offset, initial []value.Value, budget int) (result value.Value, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			if re, ok := r.(*RuntimeError); ok {
				err = re
				return
			}
			panic(r)
		}
	}()
	depth := len(e.frames)
	e.frames = append(e.frames, newExternalFrame(c, entry, initial))
	for i := 0; i < budget; i++ {
		if len(e.frames) <= depth {
			return e.lastReturn, true, nil
		}
		e.step()
	}
	if len(e.frames) <= depth {
		return e.lastReturn, true, nil
	}
	e.frames = e.frames[:depth]
	return value.Value{}, false, nil
}

// run executes frames until the frame stack depth returns to target,
// returning the value produced by the frame that brought it there.
func (e *Executor) run(target int) value.Value {
	for len(e.frames) > target {
		e.step()
	}
	return e.lastReturn
}

// CallClosure implements value.Interpreter: invoked by a native Function
// that needs to call back into a user closure (e.g. a higher-order stdlib
// function taking a callback).
func (e *Executor) CallClosure(c *value.Closure, arg value.Value) value.Value {
	initial := make([]value.Value, 0, len(c.Captures)+1)
	initial = append(initial, c.Captures...)
	initial = append(initial, arg)
	depth := len(e.frames)
	e.frames = append(e.frames, newExternalFrame(c.Code, c.Entry, initial))
	return e.run(depth)
}

// CallMFA implements value.Interpreter: invoked by a native Function that
// needs to call a named module function by Module.Function(arg).
func (e *Executor) CallMFA(mod, fn string, arg value.Value) value.Value {
	target, err := e.ctx.LookupFunction(mod, fn)
	if err != nil {
		panic(&RuntimeError{Reason: badArg(mod+"."+fn, value.TupleOf([]value.Value{arg}))})
	}
	return e.invoke(target, arg)
}

// invoke dispatches a resolved Function or Closure value with a single
// argument, returning its result. For a Closure this pushes a frame and
// drives it to completion; for a Function it calls straight into Go code.
func (e *Executor) invoke(target, arg value.Value) value.Value {
	switch target.Kind() {
	case value.KindFunction:
		return target.Function().Call(e, arg)
	case value.KindClosure:
		return e.CallClosure(target.Closure(), arg)
	default:
		panic(&RuntimeError{Reason: badArg("call", value.TupleOf([]value.Value{target, arg}))})
	}
}

// step executes the single instruction at the current top frame's cursor.
func (e *Executor) step() {
	f := e.frames[len(e.frames)-1]
	if f.atEnd() {
		// A frame falling off the end of its code without an explicit Ret
		// is a compiler defect; surface it as a runtime raise rather than
		// an out-of-bounds panic.
		panic(&RuntimeError{Reason: badArg("ret", value.Value{})})
	}
	inst := f.fetch()

	switch v := inst.(type) {
	case code.Ret:
		e.doReturn(f, f.GetSlot(v.Slot))

	case code.Call:
		fn := f.GetSlot(v.Fn)
		arg := f.GetSlot(v.Arg)
		e.dispatchCall(f, fn, arg)

	case code.CallMFA:
		target, err := e.ctx.LookupFunction(symName(v.Module), symName(v.Fn))
		if err != nil {
			panic(&RuntimeError{Reason: badArg(symName(v.Module)+"."+symName(v.Fn), f.GetSlot(v.Arg))})
		}
		e.dispatchCall(f, target, f.GetSlot(v.Arg))

	case code.Tail:
		fn := f.GetSlot(v.Fn)
		arg := f.GetSlot(v.Arg)
		e.dispatchTail(f, fn, arg)

	case code.TailMFA:
		target, err := e.ctx.LookupFunction(symName(v.Module), symName(v.Fn))
		if err != nil {
			panic(&RuntimeError{Reason: badArg(symName(v.Module)+"."+symName(v.Fn), f.GetSlot(v.Arg))})
		}
		e.dispatchTail(f, target, f.GetSlot(v.Arg))

	case code.Add:
		res, err := add(f.GetSlot(v.A), f.GetSlot(v.B))
		mustPush(f, res, err)

	case code.Sub:
		res, err := sub(f.GetSlot(v.A), f.GetSlot(v.B))
		mustPush(f, res, err)

	case code.Mul:
		res, err := mul(f.GetSlot(v.A), f.GetSlot(v.B))
		mustPush(f, res, err)

	case code.Div:
		res, err := div(f.GetSlot(v.A), f.GetSlot(v.B))
		mustPush(f, res, err)

	case code.Neg:
		res, err := neg(f.GetSlot(v.Arg))
		mustPush(f, res, err)

	case code.Concat:
		res, err := concat(f.GetSlot(v.A), f.GetSlot(v.B))
		mustPush(f, res, err)

	case code.Eq:
		f.push(value.BoolOf(value.Equal(f.GetSlot(v.A), f.GetSlot(v.B))))

	case code.Neq:
		f.push(value.BoolOf(!value.Equal(f.GetSlot(v.A), f.GetSlot(v.B))))

	case code.ConstInt:
		f.push(value.Int(v.Value))

	case code.ConstReal:
		f.push(value.Real(v.Value))

	case code.ConstSymbol:
		f.push(value.Sym(v.Sym))

	case code.ConstStr:
		f.push(value.Str(v.Value))

	case code.HardMatch:
		rhs := f.GetSlot(v.Rhs)
		if !match.Match(f, f.GetSlot(v.Lhs), rhs) {
			panic(&RuntimeError{Reason: noMatch(rhs)})
		}

	case code.TryMatch:
		f.test = match.Match(f, f.GetSlot(v.Lhs), f.GetSlot(v.Rhs))

	case code.TryMatchConj:
		f.test = f.test && match.Match(f, f.GetSlot(v.Lhs), f.GetSlot(v.Rhs))

	case code.ConstBindingSlot:
		f.SetSlot(v.Slot, value.BindingSlotVal(v.Slot))

	case code.MkTupleN:
		f.push(value.TupleOf(readSlots(f, v.Slots)))

	case code.MkList:
		f.push(value.ListVal(value.ListFromSlice(readSlots(f, v.Slots))))

	case code.MkMap:
		m := value.EmptyMap()
		vals := readSlots(f, v.Slots)
		for i := 0; i+1 < len(vals); i += 2 {
			m = m.InsertOrUpdate(vals[i], vals[i+1])
		}
		f.push(value.MapVal(m))

	case code.Jump:
		f.ip = v.Target

	case code.TestTrue:
		f.test = value.IsTruthy(f.GetSlot(v.Slot))

	case code.FalseJump:
		if !f.test {
			f.ip = v.Target
		}

	case code.Rewind:
		f.rewind(v.Slot)

	case code.Dot:
		f.push(e.dot(f.GetSlot(v.Object), f.GetSlot(v.Attr)))

	case code.IsList:
		f.push(value.BoolOf(f.GetSlot(v.Arg).Kind() == value.KindList))

	case code.IsSymbol:
		f.push(value.BoolOf(f.GetSlot(v.Arg).Kind() == value.KindSymbol))

	case code.IsString:
		f.push(value.BoolOf(f.GetSlot(v.Arg).Kind() == value.KindString))

	case code.Raise:
		panic(&RuntimeError{Reason: f.GetSlot(v.Arg)})

	case code.NoClause:
		panic(&RuntimeError{Reason: noMatch(f.GetSlot(v.Unmatched))})

	case code.MkClosure:
		captures := make([]value.Value, len(v.Captures))
		for i, s := range v.Captures {
			captures[i] = f.GetSlot(s)
		}
		f.push(value.ClosureVal(&value.Closure{Code: f.code, Entry: v.CodeBegin, Captures: captures}))

	case code.MkCons:
		f.push(value.ConsVal(&value.Cons{Head: f.GetSlot(v.Lhs), Tail: f.GetSlot(v.Rhs)}))

	case code.PushFront:
		list := f.GetSlot(v.List)
		f.push(value.ListVal(value.ConsList(f.GetSlot(v.Elem), list.List())))

	case code.FrameID:
		f.id = v.ID

	case code.ToString:
		f.push(value.Str(value.ToDisplayString(f.GetSlot(v.Arg))))

	case code.Inspect:
		f.push(value.Str(value.Inspect(f.GetSlot(v.Arg))))

	default:
		panic(&RuntimeError{Reason: badArg("unknown_instruction", value.Value{})})
	}
}

// doReturn pops f (which must be the top frame) and propagates result: into
// the frame below if one exists and f was not an external entry, or as the
// Executor's lastReturn for run() to hand back to its caller otherwise.
func (e *Executor) doReturn(f *Frame, result value.Value) {
	e.frames = e.frames[:len(e.frames)-1]
	e.lastReturn = result
	if len(e.frames) > 0 && !f.external {
		e.frames[len(e.frames)-1].push(result)
	}
}

// dispatchCall runs target(arg) as a non-tail call: a Closure pushes a new
// frame (the trampoline in run/step then executes it next), a Function
// calls straight into Go and its result is pushed immediately since no Ret
// will ever fire for it.
func (e *Executor) dispatchCall(f *Frame, target, arg value.Value) {
	switch target.Kind() {
	case value.KindFunction:
		f.push(target.Function().Call(e, arg))
	case value.KindClosure:
		c := target.Closure()
		initial := make([]value.Value, 0, len(c.Captures)+1)
		initial = append(initial, c.Captures...)
		initial = append(initial, arg)
		e.frames = append(e.frames, newFrame(c.Code, c.Entry, initial))
	default:
		panic(&RuntimeError{Reason: badArg("call", value.TupleOf([]value.Value{target, arg}))})
	}
}

// dispatchTail is to dispatchCall as Tail is to Call: instead of pushing a
// new frame for a Closure target, it replaces the current one in place.
func (e *Executor) dispatchTail(f *Frame, target, arg value.Value) {
	switch target.Kind() {
	case value.KindFunction:
		e.doReturn(f, target.Function().Call(e, arg))
	case value.KindClosure:
		c := target.Closure()
		initial := make([]value.Value, 0, len(c.Captures)+1)
		initial = append(initial, c.Captures...)
		initial = append(initial, arg)
		replacement := newFrame(c.Code, c.Entry, initial)
		replacement.external = f.external
		e.frames[len(e.frames)-1] = replacement
	default:
		panic(&RuntimeError{Reason: badArg("call", value.TupleOf([]value.Value{target, arg}))})
	}
}

// dot implements the three dispatch cases spec.md §4.6/§9 name for the Dot
// instruction: obj a module-naming symbol, obj a Map, obj a Boxed value.
func (e *Executor) dot(obj, attr value.Value) value.Value {
	if attr.Kind() != value.KindSymbol {
		panic(&RuntimeError{Reason: badArg("dot", value.TupleOf([]value.Value{obj, attr}))})
	}
	member := attr.SymbolName()

	switch obj.Kind() {
	case value.KindSymbol:
		fn, err := e.ctx.LookupFunction(obj.SymbolName(), member)
		if err != nil {
			panic(&RuntimeError{Reason: badArg(obj.SymbolName()+"."+member, value.Value{})})
		}
		return fn

	case value.KindMap:
		v, ok := obj.Map().Find(attr)
		if !ok {
			panic(&RuntimeError{Reason: badArg("dot", attr)})
		}
		return v

	case value.KindBoxed:
		if e.boxed == nil {
			panic(&RuntimeError{Reason: badArg("dot", attr)})
		}
		v, err := e.boxed.Get(obj.Boxed(), member)
		if err != nil {
			panic(&RuntimeError{Reason: value.TupleOf([]value.Value{value.SymOf("bad_box_cast"), value.Str(obj.Boxed().TypeName), value.Str(member)})})
		}
		return v

	default:
		panic(&RuntimeError{Reason: badArg("dot", obj)})
	}
}

func mustPush(f *Frame, v value.Value, err error) {
	if err != nil {
		panic(err)
	}
	f.push(v)
}

func readSlots(f *Frame, slots []code.Slot) []value.Value {
	out := make([]value.Value, len(slots))
	for i, s := range slots {
		out[i] = f.GetSlot(s)
	}
	return out
}
