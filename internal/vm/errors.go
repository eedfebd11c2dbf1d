package vm

import (
	"fmt"
	"strings"

	"github.com/funvibe/lix/internal/value"
)

// RuntimeError is a raised exception propagated to the host: a Value (the
// raised reason) plus a Trace of frame identifiers that Error prints when
// it is non-empty. The Executor does not fill Trace, so the errors that
// ExecuteAll and ExecuteN return carry only the reason. Declared as a
// distinct Go type (rather than errors.New) so host code can errors.As it,
// matching the teacher's convention of typed, inspectable error values
// (SPEC_FULL.md §7).
type RuntimeError struct {
	Reason value.Value
	Trace  []string
}

func (e *RuntimeError) Error() string {
	if len(e.Trace) == 0 {
		return fmt.Sprintf("raised %s", value.Inspect(e.Reason))
	}
	return fmt.Sprintf("raised %s\n  %s", value.Inspect(e.Reason), strings.Join(e.Trace, "\n  "))
}

// noMatch builds the {:nomatch, rhs} reason a failed hard_match or
// exhausted case/cond raises.
func noMatch(rhs value.Value) value.Value {
	return value.TupleOf([]value.Value{value.SymOf("nomatch"), rhs})
}

// badArg builds the {:badarg, "Mod.fn", args} reason a bad module/function
// lookup raises.
func badArg(mfa string, args value.Value) value.Value {
	return value.TupleOf([]value.Value{value.SymOf("badarg"), value.Str(mfa), args})
}
