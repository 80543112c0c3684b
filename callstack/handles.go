package callstack

import "sync"

// Handle is an opaque nonzero 64-bit reference to a captured Stack. The zero
// Handle means no stack is attached.
type Handle uint64

// HandleTable issues Handles and resolves them back to stacks. It is safe for
// concurrent use. A handle stays valid until freed.
type HandleTable struct {
	mu     sync.Mutex
	next   Handle
	stacks map[Handle]*Stack
}

// NewHandleTable returns an empty table.
func NewHandleTable() *HandleTable {
	return &HandleTable{stacks: make(map[Handle]*Stack)}
}

// Put stores s and returns a fresh nonzero handle for it.
func (t *HandleTable) Put(s *Stack) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	h := t.next
	t.stacks[h] = s
	return h
}

// Get resolves h. The second result is false for the zero handle and for
// handles that were never issued or have been freed.
func (t *HandleTable) Get(h Handle) (*Stack, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.stacks[h]
	return s, ok
}

// Free releases h. Freeing the zero handle or an unknown handle is a no-op.
func (t *HandleTable) Free(h Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.stacks, h)
}

// Len reports how many stacks are live in the table.
func (t *HandleTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.stacks)
}
