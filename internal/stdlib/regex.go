package stdlib

import (
	"regexp"

	"github.com/funvibe/lix/internal/module"
	"github.com/funvibe/lix/internal/value"
)

// BuildRegexModule returns Regex.match?/2 and Regex.run/2, wrapping regexp
// per spec.md §4.11. Neither Elixir's real ~r// sigil nor a compiled
// Regex struct value exists in this grammar (internal/parser has no sigil
// syntax — see its package doc comment), so both natives take the pattern
// as a plain String on every call, recompiling it each time; this mirrors
// _examples/funvibe-funxy/internal/evaluator/builtins_std.go's approach of
// treating the pattern argument as an ordinary string rather than a
// precompiled host object.
func BuildRegexModule() *module.Module {
	mod := module.NewModule("Regex")
	mod.AddFunction("match?", nativeFn("Regex.match?", regexMatchFn))
	mod.AddFunction("run", nativeFn("Regex.run", regexRunFn))
	return mod
}

func compileOrBadArg(fnDesc string, pattern string) *regexp.Regexp {
	re, err := regexp.Compile(pattern)
	if err != nil {
		raise(badArg(fnDesc+" (bad pattern: "+err.Error()+")", value.Str(pattern)))
	}
	return re
}

func regexMatchFn(_ value.Interpreter, arg value.Value) value.Value {
	patternV, strV := twoArgs("Regex.match?/2", arg)
	re := compileOrBadArg("Regex.match?/2", requireString("Regex.match?/2", patternV))
	return value.BoolOf(re.MatchString(requireString("Regex.match?/2", strV)))
}

// regexRunFn returns {:ok, [matches...]} on a match (the whole match
// followed by each capture group, Elixir's Regex.run/2 shape) or :nomatch
// otherwise.
func regexRunFn(_ value.Interpreter, arg value.Value) value.Value {
	patternV, strV := twoArgs("Regex.run/2", arg)
	re := compileOrBadArg("Regex.run/2", requireString("Regex.run/2", patternV))
	matches := re.FindStringSubmatch(requireString("Regex.run/2", strV))
	if matches == nil {
		return value.SymOf("nomatch")
	}
	elems := make([]value.Value, len(matches))
	for i, m := range matches {
		elems[i] = value.Str(m)
	}
	return ok(value.ListVal(value.ListFromSlice(elems)))
}
