package signals_test

import (
	"errors"
	"syscall"
	"testing"

	"github.com/bxvs888/robovm/callstack"
	"github.com/bxvs888/robovm/faults"
	"github.com/bxvs888/robovm/object"
	"github.com/bxvs888/robovm/signals"
	"github.com/bxvs888/robovm/sigtest"
	"github.com/bxvs888/robovm/vm"
	"github.com/stretchr/testify/require"
)

const (
	faultPC = uintptr(0x40beef)
	faultFP = uintptr(0x8000)
)

// fixture wires a registry entirely out of scripted collaborators and
// attaches the calling goroutine as a managed thread.
type fixture struct {
	sys     *sigtest.System
	prop    *sigtest.Propagator
	alloc   *sigtest.Allocator
	handles *callstack.HandleTable
	threads *vm.ThreadRegistry
	classes *object.Registry
	reg     *signals.Registry
	env     *vm.Env
}

func newFixture(t *testing.T, opts ...signals.Option) *fixture {
	t.Helper()
	f := &fixture{
		sys:     &sigtest.System{},
		prop:    &sigtest.Propagator{},
		alloc:   &sigtest.Allocator{},
		handles: callstack.NewHandleTable(),
		threads: vm.NewThreadRegistry(),
		classes: object.Bootstrap(),
	}

	// Two real frame records above the fault: the faulting function's at
	// faultFP and its caller's at 0x9000, which ends the chain.
	mem := sigtest.Memory{
		faultFP:                      0x9000,
		faultFP + callstack.WordSize: 0xcafe1,
		0x9000:                       0,
		0x9000 + callstack.WordSize:  0xcafe2,
	}

	base := []signals.Option{
		signals.WithSystem(f.sys),
		signals.WithPropagator(f.prop),
		signals.WithAllocator(f.alloc),
		signals.WithHandles(f.handles),
		signals.WithThreads(f.threads),
		signals.WithClasses(f.classes),
		signals.WithCapturer(callstack.NewChainCapturer(mem, 0)),
		signals.WithContextReader(sigtest.StaticContext(faultPC, faultFP)),
	}
	f.reg = signals.New(append(base, opts...)...)
	require.NoError(t, f.reg.Init())

	env, err := f.threads.Attach(testStackBase, testGuardSize)
	require.NoError(t, err)
	f.env = env
	t.Cleanup(func() { _ = f.threads.Detach() })

	require.NoError(t, f.reg.Install(env))
	env.EnterManaged()
	return f
}

// stackHandle reads the reserved field off a raised exception.
func (f *fixture) stackHandle(t *testing.T, inst *object.Instance) callstack.Handle {
	t.Helper()
	throwable := f.classes.MustLookup(object.ThrowableClass)
	field, ok := throwable.FindField(object.StackStateField, object.StackStateDescriptor)
	require.True(t, ok)
	return callstack.Handle(inst.Long(field))
}

func TestDispatchNullDeref(t *testing.T) {
	f := newFixture(t)

	out := f.reg.DispatchFault(syscall.SIGSEGV, 0, nil)
	require.Equal(t, signals.Raised, out.Kind)
	require.Equal(t, faults.NullDeref, out.Category)
	require.NotNil(t, out.Exception)
	require.True(t, out.Exception.IsInstanceOf(f.classes.MustLookup(object.NullPointerExceptionClass)))

	// The reserved field resolves to a non-empty stack rooted at the fault.
	h := f.stackHandle(t, out.Exception)
	require.NotZero(t, h)
	stack, ok := f.handles.Get(h)
	require.True(t, ok)
	require.Equal(t, 3, stack.Depth())
	require.Equal(t, faultPC, stack.Entry(0).ReturnAddress)
	require.Equal(t, uintptr(0xcafe1), stack.Entry(1).ReturnAddress)
	require.Equal(t, uintptr(0xcafe2), stack.Entry(2).ReturnAddress)

	// Propagated, and nothing fell through to termination.
	require.Len(t, f.prop.Raised, 1)
	require.Same(t, out.Exception, f.prop.Raised[0])
	require.NotContains(t, f.sys.CallsFor(syscall.SIGSEGV), "default")
	require.NotContains(t, f.sys.CallsFor(syscall.SIGSEGV), "redeliver")
}

func TestDispatchStackOverflow(t *testing.T) {
	f := newFixture(t)

	out := f.reg.DispatchFault(syscall.SIGSEGV, testStackBase-1000, nil)
	require.Equal(t, signals.Raised, out.Kind)
	require.Equal(t, faults.StackOverflow, out.Category)
	require.True(t, out.Exception.IsInstanceOf(f.classes.MustLookup(object.StackOverflowErrorClass)))
	require.NotZero(t, f.stackHandle(t, out.Exception))
}

func TestDispatchUnrecognizedTerminates(t *testing.T) {
	f := newFixture(t)

	out := f.reg.DispatchFault(syscall.SIGSEGV, 0xdeadbeef, nil)
	require.Equal(t, signals.Terminated, out.Kind)
	require.Equal(t, faults.Unrecognized, out.Category)
	require.Nil(t, out.Exception)

	// No exception object was created or propagated.
	require.Zero(t, f.alloc.Allocated)
	require.Empty(t, f.prop.Raised)

	// Default disposition restored strictly before re-delivery.
	require.Equal(t, []string{"install", "default", "redeliver"},
		f.sys.CallsFor(syscall.SIGSEGV))
}

func TestDispatchInNativeFrameTerminates(t *testing.T) {
	f := newFixture(t)
	f.env.LeaveManaged()

	// The null sentinel would classify as NullDeref, but the thread was not
	// in compiled code.
	out := f.reg.DispatchFault(syscall.SIGSEGV, 0, nil)
	require.Equal(t, signals.Terminated, out.Kind)
	require.Equal(t, faults.Unrecognized, out.Category)
	require.Zero(t, f.alloc.Allocated)
	require.Empty(t, f.prop.Raised)
}

func TestDispatchAllocFailureUsesFallback(t *testing.T) {
	f := newFixture(t)
	oom := object.NewInstance(f.classes.MustLookup(object.OutOfMemoryErrorClass))
	f.env.SetEmergency(oom)
	f.alloc.Err = errors.New("heap exhausted")

	out := f.reg.DispatchFault(syscall.SIGSEGV, 0, nil)
	require.Equal(t, signals.Raised, out.Kind)
	require.Same(t, oom, out.Exception)

	// The fallback object still gets the captured stack attached, and the
	// raise still reaches the propagator.
	h := f.stackHandle(t, out.Exception)
	require.NotZero(t, h)
	stack, ok := f.handles.Get(h)
	require.True(t, ok)
	require.Equal(t, 3, stack.Depth())
	require.Len(t, f.prop.Raised, 1)
	require.Same(t, oom, f.prop.Raised[0])
}

// bareAllocator fails without parking anything, unlike the real heap.
type bareAllocator struct{ err error }

func (a bareAllocator) Allocate(*vm.Env, *object.Class) (*object.Instance, error) {
	return nil, a.err
}

func TestDispatchFallsBackToEmergencyDirectly(t *testing.T) {
	f := newFixture(t, signals.WithAllocator(bareAllocator{err: errors.New("no heap")}))
	oom := object.NewInstance(f.classes.MustLookup(object.OutOfMemoryErrorClass))
	f.env.SetEmergency(oom)

	out := f.reg.DispatchFault(syscall.SIGSEGV, 0, nil)
	require.Equal(t, signals.Raised, out.Kind)
	require.Same(t, oom, out.Exception)
}

func TestDispatchNoFallbackTerminates(t *testing.T) {
	f := newFixture(t, signals.WithAllocator(bareAllocator{err: errors.New("no heap")}))

	out := f.reg.DispatchFault(syscall.SIGSEGV, 0, nil)
	require.Equal(t, signals.Terminated, out.Kind)
	require.Equal(t, faults.NullDeref, out.Category)
	require.Empty(t, f.prop.Raised)
}

func TestDispatchDeferredPropagationTerminates(t *testing.T) {
	f := newFixture(t)
	f.prop.Fail = errors.New("no unwinder in reach")

	out := f.reg.DispatchFault(syscall.SIGSEGV, 0, nil)
	require.Equal(t, signals.Terminated, out.Kind)

	// The captured stack was released with the abandoned raise.
	require.Zero(t, f.handles.Len())
	require.Equal(t, []string{"install", "default", "redeliver"},
		f.sys.CallsFor(syscall.SIGSEGV))
}

func TestDispatchWithoutThreadTerminates(t *testing.T) {
	sys := &sigtest.System{}
	reg := signals.New(
		signals.WithSystem(sys),
		signals.WithContextReader(sigtest.StaticContext(faultPC, faultFP)),
	)
	require.NoError(t, reg.Init())

	out := reg.DispatchFault(syscall.SIGSEGV, 0, nil)
	require.Equal(t, signals.Terminated, out.Kind)
	require.Equal(t, []string{"default", "redeliver"}, sys.CallsFor(syscall.SIGSEGV))
}

func TestDispatchCaptureFailureStillRaises(t *testing.T) {
	// A context with no registers defeats the walker; the exception goes
	// out with the zero handle.
	f := newFixture(t, signals.WithContextReader(sigtest.StaticContext(0, 0)))

	out := f.reg.DispatchFault(syscall.SIGSEGV, 0, nil)
	require.Equal(t, signals.Raised, out.Kind)
	require.Zero(t, f.stackHandle(t, out.Exception))
	require.Len(t, f.prop.Raised, 1)
}

func TestDispatchPendingPropagatorParksException(t *testing.T) {
	// The default propagator (no WithPropagator) parks the exception in the
	// thread's pending slot.
	f := &fixture{
		sys:     &sigtest.System{},
		alloc:   &sigtest.Allocator{},
		handles: callstack.NewHandleTable(),
		threads: vm.NewThreadRegistry(),
		classes: object.Bootstrap(),
	}
	f.reg = signals.New(
		signals.WithSystem(f.sys),
		signals.WithAllocator(f.alloc),
		signals.WithHandles(f.handles),
		signals.WithThreads(f.threads),
		signals.WithClasses(f.classes),
		signals.WithContextReader(sigtest.StaticContext(faultPC, 0)),
	)
	require.NoError(t, f.reg.Init())

	env, err := f.threads.Attach(testStackBase, testGuardSize)
	require.NoError(t, err)
	defer f.threads.Detach()
	require.NoError(t, f.reg.Install(env))
	env.EnterManaged()

	out := f.reg.DispatchFault(syscall.SIGSEGV, 0, nil)
	require.Equal(t, signals.Raised, out.Kind)
	require.Same(t, out.Exception, env.Pending())
}
