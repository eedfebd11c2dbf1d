// Package symbol implements the process-wide atom intern table.
//
// A Symbol is an interned identifier: two Intern calls for equal spellings
// return the same ID, and comparisons between symbols are pointer/index
// equality rather than string comparison, mirroring the atom table of the
// language this interpreter implements (let::symbol in the original source).
package symbol

import "sync"

// ID is a stable identity for an interned string. The zero value is not a
// valid ID; IDs are handed out starting at 1 so a zero ID can signal "none".
type ID uint32

// Table is a thread-safe string intern table.
type Table struct {
	mu      sync.RWMutex
	byName  map[string]ID
	byID    []string // byID[id-1] == spelling
}

// NewTable returns an empty intern table.
func NewTable() *Table {
	return &Table{byName: make(map[string]ID, 64)}
}

// Intern returns the stable ID for str, allocating a new one on first sight.
func (t *Table) Intern(str string) ID {
	t.mu.RLock()
	if id, ok := t.byName[str]; ok {
		t.mu.RUnlock()
		return id
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	if id, ok := t.byName[str]; ok {
		return id
	}
	t.byID = append(t.byID, str)
	id := ID(len(t.byID))
	t.byName[str] = id
	return id
}

// String returns the spelling originally interned for id. Panics if id is
// not a valid, previously-interned ID.
func (t *Table) String(id ID) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.byID[id-1]
}

// Lookup returns the ID for str without interning it, reporting whether it
// was already known.
func (t *Table) Lookup(str string) (ID, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	id, ok := t.byName[str]
	return id, ok
}

// process is the single process-wide table backing the package-level
// helpers. The core is specified as single-threaded, but the table itself
// is made safe for concurrent use (e.g. the CLI's batch eval mode runs
// multiple independent Contexts concurrently; they all intern into the
// same process-wide atom space, exactly as Erlang/Elixir atoms work).
var process = NewTable()

// Intern interns str in the process-wide table.
func Intern(str string) ID { return process.Intern(str) }

// Name returns the spelling for id from the process-wide table.
func Name(id ID) string { return process.String(id) }

// Lookup looks up str in the process-wide table without interning it.
func Lookup(str string) (ID, bool) { return process.Lookup(str) }
