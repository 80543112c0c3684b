// Package vm holds the per-thread state the fault path reads: the attached
// thread's stack extent and saved signal mask, its execution environment with
// the pending and emergency exception slots, and the registry that maps thread
// identities to environments.
package vm

import (
	"syscall"

	"github.com/bxvs888/robovm/faults"
)

// Sigmask is a saved thread signal mask, one bit per signal number, with bit
// zero standing for signal 1.
type Sigmask uint64

// Has reports whether sig is blocked in the mask.
func (m Sigmask) Has(sig syscall.Signal) bool {
	if sig < 1 || sig > 64 {
		return false
	}
	return m&(1<<(uint(sig)-1)) != 0
}

// With returns a copy of the mask with sig blocked.
func (m Sigmask) With(sig syscall.Signal) Sigmask {
	if sig < 1 || sig > 64 {
		return m
	}
	return m | 1<<(uint(sig)-1)
}

// Thread is the per-thread fault context: the identity of an attached thread,
// its stack extent, and the signal mask saved when fault handling was
// installed. The mask fields are owned by the thread itself and are never
// touched from another thread.
type Thread struct {
	id        int64
	stackBase uintptr
	guardSize uintptr

	mask      Sigmask
	maskSaved bool
}

// NewThread describes a thread whose stack grows down from stackBase with a
// guard region of guardSize bytes below the usable extent.
func NewThread(id int64, stackBase, guardSize uintptr) *Thread {
	return &Thread{id: id, stackBase: stackBase, guardSize: guardSize}
}

// ID returns the thread identity the registry knows this thread by.
func (t *Thread) ID() int64 {
	return t.id
}

// StackBase returns the low address of the thread's usable stack.
func (t *Thread) StackBase() uintptr {
	return t.stackBase
}

// GuardSize returns the size in bytes of the guard region below the stack.
func (t *Thread) GuardSize() uintptr {
	return t.guardSize
}

// StackBounds returns the thread's stack extent as a classifier value.
func (t *Thread) StackBounds() faults.StackBounds {
	return faults.StackBounds{Base: t.stackBase, Guard: t.guardSize}
}

// SaveMask records the thread's signal mask as captured at install time.
func (t *Thread) SaveMask(m Sigmask) {
	t.mask = m
	t.maskSaved = true
}

// SavedMask returns the mask captured at install time. The second result is
// false if install never ran on this thread.
func (t *Thread) SavedMask() (Sigmask, bool) {
	return t.mask, t.maskSaved
}
