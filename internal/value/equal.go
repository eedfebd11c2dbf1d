package value

// Equal reports structural equality between a and b. Matching
// original_source's value::operator==, two values compare equal only if
// they hold the *same* alternative — an Integer and a Real holding the same
// magnitude are never equal under this operator (the language exposes a
// separate numeric comparison for that, outside the Value model itself).
// Function, Closure, Cons, and BindingSlot are never equal to anything,
// including themselves by value — they have no defined equality.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindInt:
		return a.i == b.i
	case KindReal:
		return a.f == b.f
	case KindSymbol:
		return a.i == b.i
	case KindString:
		return a.str == b.str
	case KindTuple:
		at, bt := a.Tuple(), b.Tuple()
		if len(at) != len(bt) {
			return false
		}
		for i := range at {
			if !Equal(at[i], bt[i]) {
				return false
			}
		}
		return true
	case KindList:
		return equalList(a.List(), b.List())
	case KindMap:
		am, bm := a.Map(), b.Map()
		if am.Len() != bm.Len() {
			return false
		}
		for _, item := range am.Items() {
			bv, ok := bm.Find(item.Key)
			if !ok || !Equal(item.Value, bv) {
				return false
			}
		}
		return true
	default:
		// Function, Closure, Cons, BindingSlot, Boxed: no defined equality.
		return false
	}
}

func equalList(a, b *ListNode) bool {
	for {
		if a == nil || b == nil {
			return a == nil && b == nil
		}
		if !Equal(a.Head, b.Head) {
			return false
		}
		a, b = a.Tail, b.Tail
	}
}
