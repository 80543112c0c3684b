package signals

import (
	"github.com/bxvs888/robovm/callstack"
	"github.com/bxvs888/robovm/faults"
	"github.com/bxvs888/robovm/object"
	"github.com/bxvs888/robovm/vm"
)

// Propagator transfers a populated exception into the runtime's unwinding
// machinery. A nil return means control is committed to exception dispatch
// and the faulting instruction will never resume. An error means propagation
// was deferred; the dispatcher then falls back to termination.
type Propagator interface {
	Raise(env *vm.Env, inst *object.Instance) error
}

// PendingPropagator raises by parking the exception in the thread's pending
// slot, where the embedder's trampoline picks it up and begins unwinding.
type PendingPropagator struct{}

func (PendingPropagator) Raise(env *vm.Env, inst *object.Instance) error {
	env.SetPending(inst)
	return nil
}

// classFor maps a recognized fault category to its exception class.
func (r *Registry) classFor(category faults.Category) *object.Class {
	switch category {
	case faults.NullDeref:
		return r.npeClass
	case faults.StackOverflow:
		return r.soeClass
	default:
		return nil
	}
}

// raise builds and propagates the exception for a classified fault: allocate
// the category's class, falling back to the thread's standing exception when
// the heap fails; capture the call stack rooted at the synthetic frame; store
// its handle in the reserved field; hand the instance to the propagator. The
// second result is false when no instance could be produced or the propagator
// deferred.
func (r *Registry) raise(env *vm.Env, category faults.Category, frame callstack.Frame) (*object.Instance, bool) {
	cls := r.classFor(category)
	if cls == nil {
		return nil, false
	}

	inst, err := r.alloc.Allocate(env, cls)
	if err != nil {
		inst = env.ClearPending()
		if inst == nil {
			inst = env.Emergency()
		}
		if inst == nil {
			return nil, false
		}
	}

	handle := callstack.Handle(0)
	if stack, cerr := r.capt.Capture(frame); cerr == nil {
		handle = r.handles.Put(stack)
	}
	inst.SetLong(r.stackField, int64(handle))

	if perr := r.prop.Raise(env, inst); perr != nil {
		r.handles.Free(handle)
		return nil, false
	}
	return inst, true
}
