package signals

import (
	"syscall"
	"unsafe"

	"github.com/bxvs888/robovm/callstack"
	"github.com/bxvs888/robovm/faults"
	"github.com/bxvs888/robovm/object"
)

// OutcomeKind tells the trampoline how a delivered fault was resolved.
type OutcomeKind int

const (
	// Terminated means the signal's default disposition was restored and
	// the signal re-delivered; the process is on its way down.
	Terminated OutcomeKind = iota
	// Raised means a managed exception was raised; the trampoline must
	// enter exception dispatch and never resume the faulting instruction.
	Raised
)

// String returns a short name for the outcome kind.
func (k OutcomeKind) String() string {
	switch k {
	case Raised:
		return "raised"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Outcome reports the resolution of one delivered fault.
type Outcome struct {
	Kind      OutcomeKind
	Category  faults.Category
	Exception *object.Instance // set when Kind is Raised
}

// DispatchFault is the handler body. The port's trampoline invokes it on the
// faulting thread with the delivered signal, the faulting address, and the
// raw OS context. Exactly one of two things happens: a recognized fault in
// managed code raises its exception, or default handling is restored and the
// signal re-delivered.
func (r *Registry) DispatchFault(sig syscall.Signal, addr uintptr, raw unsafe.Pointer) Outcome {
	if !r.initialized {
		panic("signals: DispatchFault before Init")
	}

	env, ok := r.threads.Current()
	if !ok {
		return r.terminate(sig, faults.Unrecognized)
	}

	category := faults.Classify(addr, env.Thread().StackBounds(), env.InManagedFrame())
	if category == faults.Unrecognized {
		return r.terminate(sig, category)
	}

	regs := r.reader(raw)
	frame := callstack.Frame{Prev: regs.FP, ReturnAddress: regs.PC}
	inst, ok := r.raise(env, category, frame)
	if !ok {
		return r.terminate(sig, category)
	}
	return Outcome{Kind: Raised, Category: category, Exception: inst}
}
