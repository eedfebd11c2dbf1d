package value

import "github.com/funvibe/lix/internal/hamt"

// Map is the persistent Map value, a hamt.Map keyed and valued on Value
// itself. The HAMT mechanics live in internal/hamt (grounded on the
// teacher's internal/evaluator/persistent_map.go); this file only supplies
// the Value-specific hash and equality functions the generic trie needs.
type Map = hamt.Map[Value, Value]

// EmptyMap returns the empty persistent Map.
func EmptyMap() *Map {
	return hamt.New[Value, Value](hashValue, equalValue)
}

func hashValue(v Value) uint32 {
	return Hash(v)
}

func equalValue(a, b Value) bool {
	return Equal(a, b)
}
