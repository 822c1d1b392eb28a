// Package symbol implements Smile's interned-name table. Every identifier,
// operator, and special-form keyword used by the compiler and VM is reduced
// to a small integer Symbol before it is stored in any bytecode, local-slot
// table, or vtable key, so that identifier equality and table lookups are
// integer comparisons rather than string comparisons.
package symbol

import "sync"

// Symbol is an interned name. The zero Symbol is reserved for "no symbol".
type Symbol uint32

// None is the reserved symbol that means "no symbol".
const None Symbol = 0

// Table interns name strings to stable Symbol ids. The zero value is not
// usable; use NewTable. A Table is safe for concurrent use.
type Table struct {
	mu      sync.RWMutex
	byName  map[string]Symbol
	byID    []string // index 0 is unused (reserved for None)
}

// NewTable returns an empty symbol table, with slot 0 reserved for None.
func NewTable() *Table {
	return &Table{
		byName: make(map[string]Symbol),
		byID:   []string{""}, // index 0 reserved
	}
}

// GetSymbol interns name, returning its Symbol. If name was already
// interned, its existing Symbol is returned. An empty name always returns
// None; any other name never returns None.
func (t *Table) GetSymbol(name string) Symbol {
	if name == "" {
		return None
	}

	t.mu.RLock()
	if id, ok := t.byName[name]; ok {
		t.mu.RUnlock()
		return id
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	// re-check under write lock, another goroutine may have interned it
	if id, ok := t.byName[name]; ok {
		return id
	}
	id := Symbol(len(t.byID))
	t.byID = append(t.byID, name)
	t.byName[name] = id
	return id
}

// GetSymbolNoCreate looks up name without interning it. It returns None if
// name has not been interned.
func (t *Table) GetSymbolNoCreate(name string) Symbol {
	if name == "" {
		return None
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.byName[name]
}

// GetName returns the name previously interned as id. It panics if id was
// never returned by GetSymbol on this table, since that is always a
// compiler or VM bug, never a condition a caller should recover from.
func (t *Table) GetName(id Symbol) string {
	if id == None {
		return ""
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	if int(id) >= len(t.byID) {
		panic("symbol: GetName called with an id never returned by GetSymbol")
	}
	return t.byID[id]
}

// Len returns the number of interned symbols, not counting None.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byID) - 1
}
