package value

import "math"

// Hash computes a structural hash for v, consistent with Equal: Equal
// values always hash equally. Panics if v is not Hashable (List, Map,
// Closure, Function, and Boxed carry no defined hash, the same restriction
// original_source places on using them as map keys).
func Hash(v Value) uint32 {
	if !v.Hashable() {
		panic("value: " + v.kind.String() + " is not hashable")
	}
	switch v.kind {
	case KindInt:
		return hashUint64(uint64(v.i))
	case KindReal:
		return hashUint64(math.Float64bits(v.f))
	case KindSymbol:
		return hashUint64(uint64(v.i)) ^ 0x9e3779b9
	case KindString:
		return fnv32(v.str)
	case KindTuple:
		h := uint32(2166136261)
		for _, e := range v.Tuple() {
			h = (h ^ Hash(e)) * 16777619
		}
		return h
	default:
		panic("value: " + v.kind.String() + " is not hashable")
	}
}

func hashUint64(x uint64) uint32 {
	x ^= x >> 33
	x *= 0xff51afd7ed558ccd
	x ^= x >> 33
	x *= 0xc4ceb9fe1a85ec53
	x ^= x >> 33
	return uint32(x)
}

func fnv32(s string) uint32 {
	h := uint32(2166136261)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}
