package vm

import "github.com/bxvs888/robovm/object"

// Env is one thread's execution environment as the fault path sees it: the
// owning Thread, the pending exception slot, the preallocated emergency
// exception, and the managed-frame depth behind the non-native frame check.
//
// An Env is owned by its thread. The fault handler runs synchronously on that
// same thread, so reads and writes here need no synchronization.
type Env struct {
	thread    *Thread
	pending   *object.Instance
	emergency *object.Instance
	managed   int
}

// NewEnv returns an environment owned by thread.
func NewEnv(thread *Thread) *Env {
	return &Env{thread: thread}
}

// Thread returns the owning thread.
func (e *Env) Thread() *Thread {
	return e.thread
}

// EnterManaged marks entry into compiled managed code.
func (e *Env) EnterManaged() {
	e.managed++
}

// LeaveManaged marks a transition out of compiled managed code. Calls must
// pair with EnterManaged.
func (e *Env) LeaveManaged() {
	if e.managed > 0 {
		e.managed--
	}
}

// InManagedFrame reports whether the thread's topmost frame belongs to
// compiled managed code.
func (e *Env) InManagedFrame() bool {
	return e.managed > 0
}

// Pending returns the exception waiting to be dispatched, if any.
func (e *Env) Pending() *object.Instance {
	return e.pending
}

// SetPending parks inst as the thread's pending exception, replacing any
// previous one.
func (e *Env) SetPending(inst *object.Instance) {
	e.pending = inst
}

// ClearPending removes and returns the pending exception, or nil.
func (e *Env) ClearPending() *object.Instance {
	inst := e.pending
	e.pending = nil
	return inst
}

// SetEmergency parks a preallocated exception for allocation-failure paths.
// It is set once at thread attach, while the heap is still healthy.
func (e *Env) SetEmergency(inst *object.Instance) {
	e.emergency = inst
}

// Emergency returns the preallocated allocation-failure exception, if any.
func (e *Env) Emergency() *object.Instance {
	return e.emergency
}
