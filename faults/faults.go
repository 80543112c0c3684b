// Package faults classifies hardware memory-protection faults raised while a
// thread executes compiled code.
//
// Classification is a pure address computation: it never touches the faulting
// memory, acquires no locks, and allocates nothing, so it is safe to call from
// a signal handler running on a nearly exhausted stack.
package faults

// Category is the recognized reason for a memory fault.
type Category int

const (
	// Unrecognized means the fault does not match any category this
	// subsystem understands. The caller must fall back to the default
	// OS fault behavior.
	Unrecognized Category = iota

	// NullDeref is an access through the null reference.
	NullDeref

	// StackOverflow is an access inside the thread's stack guard region,
	// raised by the compiled-code prologue probe or by a real overflow.
	StackOverflow
)

// String returns a short human-readable name for the category.
func (c Category) String() string {
	switch c {
	case NullDeref:
		return "null dereference"
	case StackOverflow:
		return "stack overflow"
	default:
		return "unrecognized"
	}
}

// DefaultGuardSize is the size of the stack guard region that compiled code
// keeps clear of the stack pointer. The prologue probe reads at sp-64k, so a
// fault in the guard region leaves roughly this much stack to handle it on.
const DefaultGuardSize uintptr = 64 * 1024

// StackBounds describes a thread's stack as an immutable value: Base is the
// low end of the usable stack and Guard is the size of the inaccessible
// region just below it. The stack grows downward toward the guard region.
type StackBounds struct {
	Base  uintptr
	Guard uintptr
}

// InGuard reports whether addr falls inside the guard region, that is
// Base-Guard <= addr < Base. A Base smaller than Guard clamps the low end
// of the region to zero.
func (b StackBounds) InGuard(addr uintptr) bool {
	if b.Base == 0 || b.Guard == 0 {
		return false
	}
	low := uintptr(0)
	if b.Base > b.Guard {
		low = b.Base - b.Guard
	}
	return addr >= low && addr < b.Base
}

// Classify maps a faulting address to a fault category. The rules apply in
// priority order:
//
//  1. Faults outside compiled code are Unrecognized, regardless of address.
//  2. The null sentinel address classifies as NullDeref.
//  3. An address inside the guard region classifies as StackOverflow.
//  4. Anything else is Unrecognized.
//
// The null check precedes the guard range check, so a guard region that
// somehow includes address zero still reports NullDeref.
func Classify(addr uintptr, bounds StackBounds, inManagedCode bool) Category {
	if !inManagedCode {
		return Unrecognized
	}
	if addr == 0 {
		return NullDeref
	}
	if bounds.InGuard(addr) {
		return StackOverflow
	}
	return Unrecognized
}
