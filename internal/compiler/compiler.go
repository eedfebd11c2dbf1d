// Package compiler lowers expanded AST into bytecode: a single-pass,
// recursive-descent walk maintaining a variable-scope stack and a
// monotonically increasing slot counter, grounded directly in
// original_source/source/let/compiler/compile.cpp's block_compiler.
//
// The AST shapes this compiler expects for the control constructs
// (case/cond/quote's do-block kwargs-list-with-tuple-pair encoding, fn's
// bare clause list, the single-element `[call("|", _, [hd, tail])]` cons
// encoding) mirror the original's parser output exactly; internal/parser
// produces these same shapes.
package compiler

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/funvibe/lix/internal/ast"
	"github.com/funvibe/lix/internal/code"
	"github.com/funvibe/lix/internal/symbol"
)

// CompileError is a compile-time diagnostic, carrying the offending node's
// Meta when one is available (spec.md §7: compile errors "carry AST node
// meta when available").
type CompileError struct {
	Message string
	Meta    ast.Meta
}

func (e *CompileError) Error() string {
	if e.Meta.Line != 0 {
		return fmt.Sprintf("%s (line %d)", e.Message, e.Meta.Line)
	}
	return e.Message
}

func errf(meta ast.Meta, format string, args ...any) error {
	return &CompileError{Message: fmt.Sprintf(format, args...), Meta: meta}
}

const invalidSlot = code.Slot(^uint32(0))

// capture records one free variable a closure body references: the slot it
// occupies in the enclosing scope (parentSlot) and the slot it will occupy
// inside the closure's own, otherwise-empty scope (innerSlot).
type capture struct {
	name       string
	parentSlot code.Slot
	innerSlot  code.Slot
}

// compiler holds the mutable state of one compile_root invocation.
type compiler struct {
	builder *code.Builder
	scopes  []map[string]code.Slot

	// bindingExprDepth is nonzero while compiling a pattern position (the
	// left-hand side of `=`, a case/cond/fn clause head): an unbound
	// variable reference there allocates a fresh binding slot rather than
	// raising "unbound variable".
	bindingExprDepth int
}

// CompileRoot compiles a single top-level expression into a Ret-terminated
// Code sequence, the entry point for the `compile`/`eval` CLI drivers and
// for compiling def clause bodies.
func CompileRoot(n ast.Node) (code.Code, error) {
	c := &compiler{builder: code.NewBuilder()}
	c.pushScope()
	slot, err := c.compile(n)
	if err != nil {
		return nil, err
	}
	c.popScope()
	c.builder.Emit(code.Ret{Slot: slot})
	return c.builder.Finish(), nil
}

func (c *compiler) pushScope() { c.scopes = append(c.scopes, make(map[string]code.Slot)) }
func (c *compiler) popScope()  { c.scopes = c.scopes[:len(c.scopes)-1] }
func (c *compiler) topScope() map[string]code.Slot { return c.scopes[len(c.scopes)-1] }

// slotForVariable searches scopes innermost-first, matching the original's
// slot_for_variable.
func (c *compiler) slotForVariable(name string) (code.Slot, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if s, ok := c.scopes[i][name]; ok {
			return s, true
		}
	}
	return 0, false
}

func (c *compiler) compileNewScope(n ast.Node) (code.Slot, error) {
	c.pushScope()
	slot, err := c.compile(n)
	c.popScope()
	return slot, err
}

// compile dispatches on n's Kind, the direct analogue of block_compiler's
// std::visit overload set.
func (c *compiler) compile(n ast.Node) (code.Slot, error) {
	switch n.Kind {
	case ast.KindInt:
		c.builder.Emit(code.ConstInt{Value: n.Int})
		return c.builder.ConsumeSlot(), nil
	case ast.KindReal:
		c.builder.Emit(code.ConstReal{Value: n.Real})
		return c.builder.ConsumeSlot(), nil
	case ast.KindSymbol:
		c.builder.Emit(code.ConstSymbol{Sym: n.Sym})
		return c.builder.ConsumeSlot(), nil
	case ast.KindString:
		c.builder.Emit(code.ConstStr{Value: n.Str})
		return c.builder.ConsumeSlot(), nil
	case ast.KindTuple:
		return c.compileTuple(n.Elems)
	case ast.KindList:
		return c.compileList(n.Elems)
	case ast.KindCall:
		return c.compileCallNode(n)
	default:
		return 0, errf(ast.Meta{}, "compiler: unknown AST kind %v", n.Kind)
	}
}

func (c *compiler) compileTuple(elems []ast.Node) (code.Slot, error) {
	slots := make([]code.Slot, len(elems))
	for i, el := range elems {
		s, err := c.compile(el)
		if err != nil {
			return 0, err
		}
		slots[i] = s
	}
	c.builder.Emit(code.MkTupleN{Slots: slots})
	return c.builder.ConsumeSlot(), nil
}

// compileMapLiteral implements `%{}`: each arg is a 2-element tuple or
// list-call `{key, value}` (the same kwargs pair shape `do`-blocks use
// elsewhere), compiled into one flat key,value,key,value... slot run for
// code.MkMap. Both internal/parser's `%{key: value, ...}` literal and
// macro.Escape's empty-meta placeholder lower to this form.
func (c *compiler) compileMapLiteral(args []ast.Node, meta ast.Meta) (code.Slot, error) {
	slots := make([]code.Slot, 0, len(args)*2)
	for _, pair := range args {
		elems, ok := pair.ArgList()
		if !ok && pair.Kind == ast.KindTuple {
			elems = pair.Elems
			ok = true
		}
		if !ok || len(elems) != 2 {
			return 0, errf(meta, "invalid %%{} entry")
		}
		kSlot, err := c.compile(elems[0])
		if err != nil {
			return 0, err
		}
		vSlot, err := c.compile(elems[1])
		if err != nil {
			return 0, err
		}
		slots = append(slots, kSlot, vSlot)
	}
	c.builder.Emit(code.MkMap{Slots: slots})
	return c.builder.ConsumeSlot(), nil
}

// compileList recognizes the single-element `[call("|", _, [hd, tail])]`
// cons-literal shape before falling back to an ordinary list builder,
// matching the original's operator()(const ast::list&) special case.
func (c *compiler) compileList(elems []ast.Node) (code.Slot, error) {
	if len(elems) == 1 {
		if target, ok := elems[0].CallTarget(); ok && target == "|" {
			args, ok := elems[0].ArgList()
			if ok && len(args) == 2 {
				return c.compileCons(args[0], args[1])
			}
		}
	}
	slots := make([]code.Slot, len(elems))
	for i, el := range elems {
		s, err := c.compile(el)
		if err != nil {
			return 0, err
		}
		slots[i] = s
	}
	c.builder.Emit(code.MkList{Slots: slots})
	return c.builder.ConsumeSlot(), nil
}

// compileCons compiles `[hd | tail]`: a pattern-only Cons construction while
// inside a binding position, a PushFront data operation otherwise.
func (c *compiler) compileCons(hd, tail ast.Node) (code.Slot, error) {
	hdSlot, err := c.compile(hd)
	if err != nil {
		return 0, err
	}
	tailSlot, err := c.compile(tail)
	if err != nil {
		return 0, err
	}
	if c.bindingExprDepth != 0 {
		c.builder.Emit(code.MkCons{Lhs: hdSlot, Rhs: tailSlot})
	} else {
		c.builder.Emit(code.PushFront{Elem: hdSlot, List: tailSlot})
	}
	return c.builder.ConsumeSlot(), nil
}

// compileCallNode handles both variable references (Args is the :Var
// sentinel) and ordinary calls (Args is a list), the two shapes
// ast.Node.IsVar/ArgList distinguish.
func (c *compiler) compileCallNode(n ast.Node) (code.Slot, error) {
	if name, ok := n.IsVar(); ok {
		return c.compileVarRef(name, n.Meta)
	}
	args, ok := n.ArgList()
	if !ok {
		return 0, errf(n.Meta, "call signature must be an unqualified identifier")
	}
	return c.compileCall(*n.Target, args, n.Meta)
}

func (c *compiler) compileVarRef(name string, meta ast.Meta) (code.Slot, error) {
	if slot, ok := c.slotForVariable(name); ok {
		return slot, nil
	}
	if c.bindingExprDepth == 0 {
		return 0, errf(meta, "unbound variable %q", name)
	}
	c.builder.Emit(code.ConstBindingSlot{Slot: c.builder.NextSlot()})
	slot := c.builder.ConsumeSlot()
	c.topScope()[name] = slot
	return slot, nil
}

func (c *compiler) checkBinary(meta ast.Meta, args []ast.Node, form string) error {
	if len(args) != 2 {
		return errf(meta, "invalid arguments to %s", form)
	}
	return nil
}

// compileCall is the operator/control-construct dispatch table, the direct
// analogue of _compile_call.
func (c *compiler) compileCall(target ast.Node, args []ast.Node, meta ast.Meta) (code.Slot, error) {
	// Special-form dispatch applies only when the call's target position
	// holds a bare symbol (`+`, `case`, `fn`, ...), matching the original's
	// `lhs.as_symbol()` check: a target that is itself a compound
	// expression (e.g. the `.(f)` sub-call produced by `f.(1, 55)`'s
	// closure-call syntax) is never a special form and always falls
	// through to the general call path below.
	if sym, isSymbol := targetSymbol(target); isSymbol {
		if s, handled, err := c.compileSpecialForm(sym, args, meta); handled {
			return s, err
		}
	}
	// Ordinary call: compile the target (itself an expression — commonly a
	// bare variable reference or a `.` dot expression for a qualified
	// call), then each argument, pack them into the single MFA-style
	// argument tuple, and call.
	fnSlot, err := c.compile(target)
	if err != nil {
		return 0, err
	}
	argSlots := make([]code.Slot, len(args))
	for i, a := range args {
		s, err := c.compile(a)
		if err != nil {
			return 0, err
		}
		argSlots[i] = s
	}
	c.builder.Emit(code.MkTupleN{Slots: argSlots})
	argSlot := c.builder.ConsumeSlot()
	c.builder.Emit(code.Call{Fn: fnSlot, Arg: argSlot})
	return c.builder.ConsumeSlot(), nil
}

// targetSymbol reports whether a call target is a bare symbol literal (as
// opposed to a call/Var-reference node), covering the parser emitting
// `ast.SymOf("+")` directly as a call's Target without wrapping it in the
// :Var sentinel (operators and control-construct keywords are never
// variables).
func targetSymbol(n ast.Node) (string, bool) {
	if n.Kind != ast.KindSymbol {
		return "", false
	}
	return symbol.Name(n.Sym), true
}

// compileSpecialForm handles every intrinsic the compiler recognizes
// syntactically. handled is false for an ordinary function call, in which
// case the caller falls through to the general call path.
func (c *compiler) compileSpecialForm(name string, args []ast.Node, meta ast.Meta) (code.Slot, bool, error) {
	switch name {
	case "+":
		s, err := c.compileArith(args, meta, "+", func(a, b code.Slot) code.Instruction { return code.Add{A: a, B: b} })
		return s, true, err
	case "-":
		s, err := c.compileArith(args, meta, "-", func(a, b code.Slot) code.Instruction { return code.Sub{A: a, B: b} })
		return s, true, err
	case "*":
		s, err := c.compileArith(args, meta, "*", func(a, b code.Slot) code.Instruction { return code.Mul{A: a, B: b} })
		return s, true, err
	case "/":
		s, err := c.compileArith(args, meta, "/", func(a, b code.Slot) code.Instruction { return code.Div{A: a, B: b} })
		return s, true, err
	case "++":
		s, err := c.compileArith(args, meta, "++", func(a, b code.Slot) code.Instruction { return code.Concat{A: a, B: b} })
		return s, true, err
	case "==":
		s, err := c.compileArith(args, meta, "==", func(a, b code.Slot) code.Instruction { return code.Eq{A: a, B: b} })
		return s, true, err
	case "!=":
		s, err := c.compileArith(args, meta, "!=", func(a, b code.Slot) code.Instruction { return code.Neq{A: a, B: b} })
		return s, true, err
	case "=":
		s, err := c.compileMatch(args, meta)
		return s, true, err
	case "__block__":
		s, err := c.compileBlock(args, meta)
		return s, true, err
	case "{}":
		s, err := c.compileTuple(args)
		return s, true, err
	case "%{}":
		s, err := c.compileMapLiteral(args, meta)
		return s, true, err
	case "cond":
		s, err := c.compileCond(args, meta)
		return s, true, err
	case "case":
		s, err := c.compileCase(args, meta)
		return s, true, err
	case "quote":
		s, err := c.compileQuoteForm(args, meta)
		return s, true, err
	case "__slot!!":
		s, err := c.compileRawSlot(args, meta)
		return s, true, err
	case ".":
		s, err := c.compileDot(args, meta)
		return s, true, err
	case "fn":
		s, err := c.compileAnonFn(args, meta)
		return s, true, err
	case "&":
		s, err := c.compileCapture(args, meta)
		return s, true, err
	default:
		return 0, false, nil
	}
}

func (c *compiler) compileArith(args []ast.Node, meta ast.Meta, form string, mk func(a, b code.Slot) code.Instruction) (code.Slot, error) {
	if err := c.checkBinary(meta, args, form); err != nil {
		return 0, err
	}
	a, err := c.compile(args[0])
	if err != nil {
		return 0, err
	}
	b, err := c.compile(args[1])
	if err != nil {
		return 0, err
	}
	c.builder.Emit(mk(a, b))
	return c.builder.ConsumeSlot(), nil
}

func (c *compiler) compileMatch(args []ast.Node, meta ast.Meta) (code.Slot, error) {
	if err := c.checkBinary(meta, args, "="); err != nil {
		return 0, err
	}
	c.bindingExprDepth++
	lhs, err := c.compile(args[0])
	c.bindingExprDepth--
	if err != nil {
		return 0, err
	}
	rhs, err := c.compile(args[1])
	if err != nil {
		return 0, err
	}
	c.builder.Emit(code.HardMatch{Lhs: lhs, Rhs: rhs})
	return rhs, nil
}

func (c *compiler) compileBlock(args []ast.Node, meta ast.Meta) (code.Slot, error) {
	if len(args) == 0 {
		return 0, errf(meta, "invalid arguments to __block__: needs at least one expression")
	}
	var ret code.Slot
	for _, a := range args {
		s, err := c.compile(a)
		if err != nil {
			return 0, err
		}
		ret = s
	}
	return ret, nil
}

// compileRawSlot implements `__slot!!(N)`, an escape hatch the compiler
// itself uses nowhere but that generated/quoted code may reference to name
// a literal slot index directly.
func (c *compiler) compileRawSlot(args []ast.Node, meta ast.Meta) (code.Slot, error) {
	if len(args) != 1 || args[0].Kind != ast.KindInt {
		return 0, errf(meta, "invalid arguments to __slot!!")
	}
	return code.Slot(args[0].Int), nil
}

func (c *compiler) compileDot(args []ast.Node, meta ast.Meta) (code.Slot, error) {
	if len(args) == 1 {
		// A closure call `f.()`: no member access, just evaluate f.
		return c.compile(args[0])
	}
	if err := c.checkBinary(meta, args, "."); err != nil {
		return 0, err
	}
	lhs, err := c.compile(args[0])
	if err != nil {
		return 0, err
	}
	rhs, err := c.compile(args[1])
	if err != nil {
		return 0, err
	}
	c.builder.Emit(code.Dot{Object: lhs, Attr: rhs})
	return c.builder.ConsumeSlot(), nil
}

// compileCapture implements `&Mod.fun/N`: the arity literal is accepted and
// discarded (this VM's calling convention is always a single argument/tuple
// per call; there is no per-arity dispatch to select between), and the
// capture itself reduces to evaluating the qualified reference.
func (c *compiler) compileCapture(args []ast.Node, meta ast.Meta) (code.Slot, error) {
	if len(args) != 2 {
		return 0, errf(meta, "invalid arguments to &")
	}
	return c.compile(args[0])
}

// --- case/cond -------------------------------------------------------

// unwrapDoBlock unwraps the `[{:do, body}]` kwargs-list encoding
// case/cond/quote all share (the argument list's sole element is itself a
// one-element list holding a {:do, body} tuple), returning body as-is,
// matching _compile_case/_compile_cond/_compile_quote's identical
// unwrapping of the kwargs/tuple-pair structure.
func unwrapDoBlock(args []ast.Node, meta ast.Meta, form string) (ast.Node, error) {
	if len(args) != 1 {
		return ast.Node{}, errf(meta, "%s expects a do block", form)
	}
	kwargs, ok := args[0].ArgList()
	if !ok {
		// args[0] may itself be a bare List node (no call wrapper); accept
		// either representation.
		if args[0].Kind == ast.KindList {
			kwargs = args[0].Elems
		} else {
			return ast.Node{}, errf(meta, "%s expects a do block", form)
		}
	}
	if len(kwargs) != 1 || kwargs[0].Kind != ast.KindTuple || len(kwargs[0].Elems) != 2 {
		return ast.Node{}, errf(meta, "%s expects a do block", form)
	}
	pair := kwargs[0].Elems
	if pair[0].Kind != ast.KindSymbol || symbol.Name(pair[0].Sym) != "do" {
		return ast.Node{}, errf(meta, "%s expects a do block", form)
	}
	return pair[1], nil
}

// doBlockClauses unwraps a do-block whose body is a clause list (case and
// cond: the body is the list of `-> ` clauses), accepting either a bare
// List node or a List-wrapped call.
func doBlockClauses(args []ast.Node, meta ast.Meta, form string) ([]ast.Node, error) {
	body, err := unwrapDoBlock(args, meta, form)
	if err != nil {
		return nil, err
	}
	if body.Kind == ast.KindList {
		return body.Elems, nil
	}
	if elems, ok := body.ArgList(); ok {
		return elems, nil
	}
	return nil, errf(meta, "%s expects a do block", form)
}

func (c *compiler) compileCase(args []ast.Node, meta ast.Meta) (code.Slot, error) {
	if len(args) != 2 {
		return 0, errf(meta, "invalid arguments to case")
	}
	matchSlot, err := c.compile(args[0])
	if err != nil {
		return 0, err
	}
	clauses, err := doBlockClauses(args[1:], meta, "case")
	if err != nil {
		return 0, err
	}
	return c.compileBranches(matchSlot, clauses)
}

func (c *compiler) compileCond(args []ast.Node, meta ast.Meta) (code.Slot, error) {
	clauses, err := doBlockClauses(args, meta, "cond")
	if err != nil {
		return 0, err
	}
	c.builder.Emit(code.ConstSymbol{Sym: symbol.Intern("true")})
	trueSlot := c.builder.ConsumeSlot()
	return c.compileBranches(trueSlot, clauses)
}

func (c *compiler) compileBranches(matchSlot code.Slot, clauses []ast.Node) (code.Slot, error) {
	resSlot := c.builder.NextSlot()
	c.builder.Emit(code.ConstBindingSlot{Slot: resSlot})
	c.builder.ConsumeSlot()
	return c.compileBranchClauses(matchSlot, resSlot, clauses)
}

func (c *compiler) compileBranchClauses(matchSlot, resSlot code.Slot, clauses []ast.Node) (code.Slot, error) {
	if len(clauses) == 0 {
		return 0, errf(ast.Meta{}, "case/cond requires at least one clause")
	}
	rewindTo := c.builder.NextSlot()
	var exitJumps []code.Offset
	var prevFalseJump code.Offset = invalidOffset
	for _, clause := range clauses {
		if prevFalseJump != invalidOffset {
			c.builder.PatchJump(prevFalseJump, c.builder.Len())
			c.builder.Emit(code.Rewind{Slot: rewindTo})
			c.setNextSlot(rewindTo)
		}
		falseJump, exitJump, err := c.compileBranchClause(matchSlot, resSlot, clause)
		if err != nil {
			return 0, err
		}
		exitJumps = append(exitJumps, exitJump)
		prevFalseJump = falseJump
	}
	c.builder.PatchJump(prevFalseJump, c.builder.Len())
	c.builder.Emit(code.NoClause{Unmatched: matchSlot})
	for _, j := range exitJumps {
		c.builder.PatchJump(j, c.builder.Len())
	}
	c.builder.Emit(code.Rewind{Slot: rewindTo})
	c.setNextSlot(rewindTo)
	return resSlot, nil
}

const invalidOffset = code.Offset(^uint32(0))

// compileBranchClause compiles one `pattern -> body` clause, returning the
// offsets of its false_jump (patched by the next clause, or to no_clause if
// it is the last) and its trailing exit jump (patched to the branch's exit
// point once every clause has compiled).
func (c *compiler) compileBranchClause(matchSlot, resSlot code.Slot, clause ast.Node) (falseJump, exitJump code.Offset, err error) {
	target, ok := clause.CallTarget()
	if !ok || target != "->" {
		return 0, 0, errf(clause.Meta, "invalid case/cond clause (expected ->)")
	}
	args, ok := clause.ArgList()
	if !ok || len(args) != 2 {
		return 0, 0, errf(clause.Meta, "invalid case/cond clause (expected ->)")
	}
	patternList, ok := args[0].ArgList()
	if !ok && args[0].Kind == ast.KindList {
		patternList = args[0].Elems
		ok = true
	}
	if !ok || len(patternList) != 1 {
		return 0, 0, errf(clause.Meta, "invalid case/cond clause pattern")
	}
	body := args[1]

	c.pushScope()
	c.bindingExprDepth++
	testSlot, err := c.compile(patternList[0])
	c.bindingExprDepth--
	if err != nil {
		return 0, 0, err
	}
	c.builder.Emit(code.TryMatch{Lhs: testSlot, Rhs: matchSlot})
	failOff := c.builder.Emit(code.FalseJump{Target: invalidOffset})
	rhsSlot, err := c.compile(body)
	if err != nil {
		return 0, 0, err
	}
	c.builder.Emit(code.HardMatch{Lhs: resSlot, Rhs: rhsSlot})
	exitOff := c.builder.Emit(code.Jump{Target: invalidOffset})
	c.popScope()
	return failOff, exitOff, nil
}

// setNextSlot lets a branch-clause loop reset the slot counter after a
// compiled rewind, since the compiler's own slot bookkeeping must track the
// VM's runtime rewind exactly.
func (c *compiler) setNextSlot(s code.Slot) { c.builder.SetNextSlot(s) }

// --- quote -------------------------------------------------------------

func (c *compiler) compileQuoteForm(args []ast.Node, meta ast.Meta) (code.Slot, error) {
	body, err := unwrapDoBlock(args, meta, "quote")
	if err != nil {
		return 0, err
	}
	return c.compileQuoted(body)
}

// compileQuoted compiles node as data rather than code: literals push their
// own value as usual, but every call node (including ones the ordinary
// path would recognize as +, case, fn, ...) becomes a literal
// {target, meta, args} tuple instead of being executed, matching the
// original's expand_quoted visitor overload set exactly (it does not
// special-case any call target).
func (c *compiler) compileQuoted(n ast.Node) (code.Slot, error) {
	switch n.Kind {
	case ast.KindInt:
		c.builder.Emit(code.ConstInt{Value: n.Int})
		return c.builder.ConsumeSlot(), nil
	case ast.KindReal:
		c.builder.Emit(code.ConstReal{Value: n.Real})
		return c.builder.ConsumeSlot(), nil
	case ast.KindSymbol:
		c.builder.Emit(code.ConstSymbol{Sym: n.Sym})
		return c.builder.ConsumeSlot(), nil
	case ast.KindString:
		c.builder.Emit(code.ConstStr{Value: n.Str})
		return c.builder.ConsumeSlot(), nil
	case ast.KindTuple:
		slots := make([]code.Slot, len(n.Elems))
		for i, el := range n.Elems {
			s, err := c.compileQuoted(el)
			if err != nil {
				return 0, err
			}
			slots[i] = s
		}
		c.builder.Emit(code.MkTupleN{Slots: slots})
		return c.builder.ConsumeSlot(), nil
	case ast.KindList:
		slots := make([]code.Slot, len(n.Elems))
		for i, el := range n.Elems {
			s, err := c.compileQuoted(el)
			if err != nil {
				return 0, err
			}
			slots[i] = s
		}
		c.builder.Emit(code.MkList{Slots: slots})
		return c.builder.ConsumeSlot(), nil
	case ast.KindCall:
		targetSlot, err := c.compileQuoted(*n.Target)
		if err != nil {
			return 0, err
		}
		// meta is an empty Map placeholder, not an empty List: ast.FromValue's
		// tryCallFromTuple identifies a {target, meta, args} call-tuple
		// specifically by meta being a Map (matching ToValue/metaToValue), so
		// quoted code that gets escaped back through FromValue (e.g. Kernel's
		// compile_module) must produce the same shape here.
		c.builder.Emit(code.MkMap{Slots: nil})
		metaSlot := c.builder.ConsumeSlot()
		argsSlot, err := c.compileQuoted(*n.Args)
		if err != nil {
			return 0, err
		}
		c.builder.Emit(code.MkTupleN{Slots: []code.Slot{targetSlot, metaSlot, argsSlot}})
		return c.builder.ConsumeSlot(), nil
	default:
		return 0, errf(n.Meta, "compiler: unknown AST kind %v in quote", n.Kind)
	}
}

// --- closures ------------------------------------------------------------

// findClosureVariables walks node collecting every free variable reference
// (a call(sym, _, :Var) whose name resolves in the *enclosing* scope), the
// Go analogue of _find_closure_variables/_do_find_closure_variables.
func (c *compiler) findClosureVariables(n ast.Node, dest *[]capture) {
	switch n.Kind {
	case ast.KindList, ast.KindTuple:
		for _, el := range n.Elems {
			c.findClosureVariables(el, dest)
		}
	case ast.KindCall:
		if name, ok := n.IsVar(); ok {
			slot, found := c.slotForVariable(name)
			if !found {
				return
			}
			if slices.ContainsFunc(*dest, func(c capture) bool { return c.name == name }) {
				return
			}
			*dest = append(*dest, capture{name: name, parentSlot: slot, innerSlot: code.Slot(len(*dest))})
			return
		}
		if n.Target != nil {
			c.findClosureVariables(*n.Target, dest)
		}
		if n.Args != nil {
			c.findClosureVariables(*n.Args, dest)
		}
	}
}

// compileAnonFn compiles `fn clause; clause; ... end`, the anonymous
// function form: discover captures, compile the body in a fresh scope
// whose slot space starts right after the captures, and emit a MkClosure
// referencing the parent-scope slots the captures came from. Grounded in
// _compile_anon_fn/_compile_anon_fn_inner.
func (c *compiler) compileAnonFn(clauses []ast.Node, meta ast.Meta) (code.Slot, error) {
	var captures []capture
	for _, clause := range clauses {
		c.findClosureVariables(clause, &captures)
	}

	oldScopes := c.scopes
	c.scopes = []map[string]code.Slot{make(map[string]code.Slot)}
	for _, cap := range captures {
		c.topScope()[cap.name] = cap.innerSlot
	}

	oldTopSlot := c.builder.NextSlot()
	c.builder.SetNextSlot(code.Slot(len(captures)))

	jumpOver := c.builder.Emit(code.Jump{Target: invalidOffset})
	codeBegin := c.builder.Len()

	retSlot, err := c.compileAnonFnInner(clauses, meta)
	if err != nil {
		c.scopes = oldScopes
		c.builder.SetNextSlot(oldTopSlot)
		return 0, err
	}
	c.builder.Emit(code.Ret{Slot: retSlot})
	codeEnd := c.builder.Len()
	c.builder.PatchJump(jumpOver, c.builder.Len())

	closureSlots := make([]code.Slot, len(captures))
	for i, cap := range captures {
		closureSlots[i] = cap.parentSlot
	}
	c.builder.Emit(code.MkClosure{CodeBegin: codeBegin, CodeEnd: codeEnd, Captures: closureSlots})

	c.scopes = oldScopes
	c.builder.SetNextSlot(oldTopSlot)
	return c.builder.ConsumeSlot(), nil
}

// compileAnonFnInner rewrites the fn's clause list (each `(args...) ->
// body`) into a case over a synthetic single argument slot, tupling each
// clause's argument list into one pattern the way a multi-arg call's
// argument tuple does, per _compile_anon_fn_inner.
func (c *compiler) compileAnonFnInner(clauses []ast.Node, meta ast.Meta) (code.Slot, error) {
	argSlot := c.builder.ConsumeSlot()

	rewritten := make([]ast.Node, len(clauses))
	for i, clause := range clauses {
		args, ok := clause.ArgList()
		if !ok || len(args) != 2 {
			return 0, errf(clause.Meta, "invalid fn clause")
		}
		fnArgs, ok := args[0].ArgList()
		if !ok {
			if args[0].Kind == ast.KindList {
				fnArgs = args[0].Elems
			} else {
				return 0, errf(clause.Meta, "invalid fn clause arguments")
			}
		}
		patternTuple := ast.Tuple(fnArgs)
		newArgs := ast.List([]ast.Node{ast.List([]ast.Node{patternTuple}), args[1]})
		rewritten[i] = ast.Call(ast.SymOf("->"), clause.Meta, newArgs)
	}
	return c.compileBranches(argSlot, rewritten)
}
