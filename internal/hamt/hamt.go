// Package hamt implements a persistent hash-array-mapped trie (HAMT), the
// representation backing the language's persistent Map value.
//
// It is generic over key and value type so that the core value model
// (internal/value) can instantiate it directly over its own Value type
// without either package depending on the other — the caller supplies the
// hash and equality functions, exactly as the original C++ source's
// let::map<K, V> was parameterized by a hasher and an equality predicate.
package hamt

// bits/size/mask control the trie's branching factor: 2^bits children per
// node, matching the teacher's persistent map (internal/evaluator/persistent_map.go).
const (
	bits = 5
	size = 1 << bits
	mask = size - 1
)

// HashFunc computes a 32-bit hash for a key. Equal keys must hash equally.
type HashFunc[K any] func(K) uint32

// EqFunc reports whether two keys are equal.
type EqFunc[K any] func(a, b K) bool

// Map is an immutable hash-array-mapped trie from K to V. The zero value is
// not usable; construct with New.
type Map[K any, V any] struct {
	root  *node[K, V]
	count int
	hash  HashFunc[K]
	eq    EqFunc[K]
}

type entry[K any, V any] struct {
	hash  uint32
	key   K
	value V
}

// node is either a branch (bitmap + children) or, once all hash bits are
// exhausted, a collision bucket of entries with identical hashes.
type node[K any, V any] struct {
	bitmap   uint32
	children []any // entry[K,V] or *node[K,V]
}

// New returns an empty persistent map using the given hash and equality
// functions.
func New[K any, V any](hash HashFunc[K], eq EqFunc[K]) *Map[K, V] {
	return &Map[K, V]{hash: hash, eq: eq}
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int { return m.count }

// Find returns the value stored for key, if any.
func (m *Map[K, V]) Find(key K) (V, bool) {
	var zero V
	if m.root == nil {
		return zero, false
	}
	h := m.hash(key)
	return m.root.find(h, key, 0, m.eq)
}

// ErrDuplicateKey is returned by Insert when the key already exists.
type ErrDuplicateKey struct{}

func (ErrDuplicateKey) Error() string { return "key already present in map" }

// Insert returns a new map with key bound to value. It fails with
// ErrDuplicateKey if key is already present; use InsertOrUpdate to replace.
func (m *Map[K, V]) Insert(key K, value V) (*Map[K, V], error) {
	if _, found := m.Find(key); found {
		return nil, ErrDuplicateKey{}
	}
	return m.InsertOrUpdate(key, value), nil
}

// InsertOrUpdate returns a new map with key bound to value, replacing any
// existing binding.
func (m *Map[K, V]) InsertOrUpdate(key K, value V) *Map[K, V] {
	h := m.hash(key)
	var newRoot *node[K, V]
	var added bool
	if m.root == nil {
		newRoot, added = (&node[K, V]{}).put(h, key, value, 0, m.eq)
	} else {
		newRoot, added = m.root.put(h, key, value, 0, m.eq)
	}
	count := m.count
	if added {
		count++
	}
	return &Map[K, V]{root: newRoot, count: count, hash: m.hash, eq: m.eq}
}

// Pop returns the value removed for key (if present) and a new map without
// it. If key is absent, ok is false and the original map is returned
// unchanged.
func (m *Map[K, V]) Pop(key K) (removed V, result *Map[K, V], ok bool) {
	if m.root == nil {
		return removed, m, false
	}
	h := m.hash(key)
	newRoot, val, removedOk := m.root.remove(h, key, 0, m.eq)
	if !removedOk {
		return removed, m, false
	}
	return val, &Map[K, V]{root: newRoot, count: m.count - 1, hash: m.hash, eq: m.eq}, true
}

// Keys returns all keys in unspecified order.
func (m *Map[K, V]) Keys() []K {
	keys := make([]K, 0, m.count)
	if m.root != nil {
		m.root.collect(func(e entry[K, V]) { keys = append(keys, e.key) })
	}
	return keys
}

// Items returns all key/value pairs in unspecified order.
func (m *Map[K, V]) Items() []struct {
	Key   K
	Value V
} {
	items := make([]struct {
		Key   K
		Value V
	}, 0, m.count)
	if m.root != nil {
		m.root.collect(func(e entry[K, V]) {
			items = append(items, struct {
				Key   K
				Value V
			}{e.key, e.value})
		})
	}
	return items
}

func popcount(x uint32) int {
	x = x - ((x >> 1) & 0x55555555)
	x = (x & 0x33333333) + ((x >> 2) & 0x33333333)
	x = (x + (x >> 4)) & 0x0f0f0f0f
	return int((x * 0x01010101) >> 24)
}

func (n *node[K, V]) find(h uint32, key K, shift uint, eq EqFunc[K]) (V, bool) {
	var zero V
	if shift >= 32 {
		for _, c := range n.children {
			if e, ok := c.(entry[K, V]); ok && eq(e.key, key) {
				return e.value, true
			}
		}
		return zero, false
	}
	idx := (h >> shift) & mask
	bit := uint32(1) << idx
	if n.bitmap&bit == 0 {
		return zero, false
	}
	pos := popcount(n.bitmap & (bit - 1))
	switch c := n.children[pos].(type) {
	case entry[K, V]:
		if c.hash == h && eq(c.key, key) {
			return c.value, true
		}
		return zero, false
	case *node[K, V]:
		return c.find(h, key, shift+bits, eq)
	}
	return zero, false
}

func (n *node[K, V]) put(h uint32, key K, value V, shift uint, eq EqFunc[K]) (*node[K, V], bool) {
	if shift >= 32 {
		clone := &node[K, V]{bitmap: n.bitmap, children: append([]any(nil), n.children...)}
		for i, c := range clone.children {
			if e, ok := c.(entry[K, V]); ok && eq(e.key, key) {
				clone.children[i] = entry[K, V]{hash: h, key: key, value: value}
				return clone, false
			}
		}
		clone.children = append(clone.children, entry[K, V]{hash: h, key: key, value: value})
		return clone, true
	}

	idx := (h >> shift) & mask
	bit := uint32(1) << idx
	clone := &node[K, V]{bitmap: n.bitmap, children: append([]any(nil), n.children...)}

	if n.bitmap&bit == 0 {
		clone.bitmap |= bit
		pos := popcount(clone.bitmap & (bit - 1))
		clone.children = append(clone.children, nil)
		copy(clone.children[pos+1:], clone.children[pos:])
		clone.children[pos] = entry[K, V]{hash: h, key: key, value: value}
		return clone, true
	}

	pos := popcount(n.bitmap & (bit - 1))
	switch existing := clone.children[pos].(type) {
	case entry[K, V]:
		if existing.hash == h && eq(existing.key, key) {
			clone.children[pos] = entry[K, V]{hash: h, key: key, value: value}
			return clone, false
		}
		child := &node[K, V]{}
		child, _ = child.put(existing.hash, existing.key, existing.value, shift+bits, eq)
		child, added := child.put(h, key, value, shift+bits, eq)
		clone.children[pos] = child
		return clone, added
	case *node[K, V]:
		newChild, added := existing.put(h, key, value, shift+bits, eq)
		clone.children[pos] = newChild
		return clone, added
	}
	return clone, false
}

func (n *node[K, V]) remove(h uint32, key K, shift uint, eq EqFunc[K]) (*node[K, V], V, bool) {
	var zero V
	if shift >= 32 {
		for i, c := range n.children {
			if e, ok := c.(entry[K, V]); ok && eq(e.key, key) {
				clone := &node[K, V]{bitmap: n.bitmap, children: make([]any, 0, len(n.children)-1)}
				clone.children = append(clone.children, n.children[:i]...)
				clone.children = append(clone.children, n.children[i+1:]...)
				return clone, e.value, true
			}
		}
		return n, zero, false
	}

	idx := (h >> shift) & mask
	bit := uint32(1) << idx
	if n.bitmap&bit == 0 {
		return n, zero, false
	}
	pos := popcount(n.bitmap & (bit - 1))
	switch existing := n.children[pos].(type) {
	case entry[K, V]:
		if existing.hash != h || !eq(existing.key, key) {
			return n, zero, false
		}
		clone := &node[K, V]{bitmap: n.bitmap &^ bit, children: make([]any, 0, len(n.children)-1)}
		clone.children = append(clone.children, n.children[:pos]...)
		clone.children = append(clone.children, n.children[pos+1:]...)
		return clone, existing.value, true
	case *node[K, V]:
		newChild, val, removed := existing.remove(h, key, shift+bits, eq)
		if !removed {
			return n, zero, false
		}
		clone := &node[K, V]{bitmap: n.bitmap, children: append([]any(nil), n.children...)}
		if len(newChild.children) == 0 {
			clone.bitmap &^= bit
			clone.children = append(append([]any{}, n.children[:pos]...), n.children[pos+1:]...)
			return clone, val, true
		}
		if len(newChild.children) == 1 {
			if e, ok := newChild.children[0].(entry[K, V]); ok {
				clone.children[pos] = e
				return clone, val, true
			}
		}
		clone.children[pos] = newChild
		return clone, val, true
	}
	return n, zero, false
}

func (n *node[K, V]) collect(fn func(entry[K, V])) {
	for _, c := range n.children {
		switch v := c.(type) {
		case entry[K, V]:
			fn(v)
		case *node[K, V]:
			v.collect(fn)
		}
	}
}
