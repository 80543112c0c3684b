// Package robovm assembles the fault-interception runtime: hardware memory
// faults delivered as signals are classified against per-thread stack bounds
// and either re-raised as managed exceptions carrying a captured call stack,
// or handed back to the OS default action.
//
// A Runtime owns one process-wide signals.Registry plus the thread, heap, and
// class collaborators behind it. Embedders create one with New, call Init
// once, then AttachThread on every thread before it runs managed code.
package robovm

import (
	"fmt"
	"runtime"

	"github.com/bxvs888/robovm/callstack"
	"github.com/bxvs888/robovm/heap"
	"github.com/bxvs888/robovm/object"
	"github.com/bxvs888/robovm/signals"
	"github.com/bxvs888/robovm/vm"
	"github.com/rs/zerolog"
)

// Option configures a Runtime.
type Option func(*options)

type options struct {
	logger    *zerolog.Logger
	system    signals.System
	allocator heap.Allocator
	classes   *object.Registry
	prop      signals.Propagator
	capturer  callstack.Capturer
	identity  vm.IdentityFunc
	reader    signals.ContextReader
}

func collectOptions(opts ...Option) *options {
	o := &options{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

func (o *options) threadOpts() []vm.RegistryOption {
	var opts []vm.RegistryOption
	if o.identity != nil {
		opts = append(opts, vm.WithIdentity(o.identity))
	}
	return opts
}

func (o *options) signalOpts(r *Runtime) []signals.Option {
	opts := []signals.Option{
		signals.WithClasses(r.classes),
		signals.WithAllocator(r.alloc),
		signals.WithThreads(r.threads),
		signals.WithHandles(r.handles),
		signals.WithLogger(r.logger),
	}
	if o.system != nil {
		opts = append(opts, signals.WithSystem(o.system))
	}
	if o.prop != nil {
		opts = append(opts, signals.WithPropagator(o.prop))
	}
	if o.capturer != nil {
		opts = append(opts, signals.WithCapturer(o.capturer))
	}
	if o.reader != nil {
		opts = append(opts, signals.WithContextReader(o.reader))
	}
	return opts
}

// WithLogger sets the control-plane logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = &logger
	}
}

// WithSystem wires the OS surface behind handler installation and signal
// masks. The embedding port supplies a signals.HostSystem pointed at its
// trampoline; diagnostics and tests supply a scripted fake.
func WithSystem(sys signals.System) Option {
	return func(o *options) {
		o.system = sys
	}
}

// WithAllocator substitutes the managed-heap allocator. The default is an
// unbounded arena.
func WithAllocator(a heap.Allocator) Option {
	return func(o *options) {
		o.allocator = a
	}
}

// WithClasses substitutes the class registry. The default is the bootstrap
// java/lang subset, which carries every class the fault path raises.
func WithClasses(classes *object.Registry) Option {
	return func(o *options) {
		o.classes = classes
	}
}

// WithPropagator substitutes the exception raise protocol. The default parks
// the exception in the faulting thread's pending slot.
func WithPropagator(p signals.Propagator) Option {
	return func(o *options) {
		o.prop = p
	}
}

// WithCapturer substitutes the call-stack capture collaborator. The default
// walks real frame records in process memory.
func WithCapturer(c callstack.Capturer) Option {
	return func(o *options) {
		o.capturer = c
	}
}

// WithThreadIdentity substitutes the thread identity source used to resolve
// the faulting thread. The default uses goroutine IDs, which is correct once
// AttachThread has pinned the goroutine to its OS thread.
func WithThreadIdentity(fn vm.IdentityFunc) Option {
	return func(o *options) {
		o.identity = fn
	}
}

// WithContextReader substitutes the reader that pulls the program counter and
// frame pointer out of the raw signal context. The default is the platform
// reader.
func WithContextReader(reader signals.ContextReader) Option {
	return func(o *options) {
		o.reader = reader
	}
}

// Runtime is the assembled fault-interception subsystem.
type Runtime struct {
	classes *object.Registry
	alloc   heap.Allocator
	threads *vm.ThreadRegistry
	handles *callstack.HandleTable
	sig     *signals.Registry
	logger  zerolog.Logger

	throwable  *object.Class
	stackField *object.InstanceField
}

// New assembles a Runtime. Collaborators left unset get working defaults;
// wiring problems surface from Init, not here.
func New(opts ...Option) *Runtime {
	o := collectOptions(opts...)
	r := &Runtime{
		classes: o.classes,
		alloc:   o.allocator,
		logger:  zerolog.Nop(),
	}
	if o.logger != nil {
		r.logger = *o.logger
	}
	if r.classes == nil {
		r.classes = object.Bootstrap()
	}
	if r.alloc == nil {
		r.alloc = heap.NewArena(0)
	}
	r.threads = vm.NewThreadRegistry(o.threadOpts()...)
	r.handles = callstack.NewHandleTable()
	r.sig = signals.New(o.signalOpts(r)...)
	return r
}

// Init initializes fault interception for the process. It must succeed once
// before any AttachThread call.
func (r *Runtime) Init() error {
	if err := r.sig.Init(); err != nil {
		return err
	}
	// Init verified the throwable root and its reserved field exist.
	r.throwable = r.classes.MustLookup(object.ThrowableClass)
	r.stackField, _ = r.throwable.FindField(object.StackStateField, object.StackStateDescriptor)
	return nil
}

// AttachThread registers the calling goroutine as a managed thread whose
// stack grows down from stackBase above a guard region of guardSize bytes,
// preallocates its emergency OutOfMemoryError, and installs the fault
// handlers. The goroutine is pinned to its OS thread for the lifetime of the
// attachment. The thread starts in native state; the embedder flips it with
// EnterManaged when compiled code is entered.
func (r *Runtime) AttachThread(stackBase, guardSize uintptr) (*vm.Env, error) {
	runtime.LockOSThread()
	env, err := r.threads.Attach(stackBase, guardSize)
	if err != nil {
		runtime.UnlockOSThread()
		return nil, err
	}

	// The emergency instance is carved out now so the raise path has a
	// fallback even when the heap cannot allocate mid-fault.
	if oom, ok := r.classes.Lookup(object.OutOfMemoryErrorClass); ok {
		em, aerr := r.alloc.Allocate(env, oom)
		if aerr != nil {
			_ = r.threads.Detach()
			runtime.UnlockOSThread()
			return nil, fmt.Errorf("robovm: emergency preallocation: %w", aerr)
		}
		env.SetEmergency(em)
	}

	if err := r.sig.Install(env); err != nil {
		_ = r.threads.Detach()
		runtime.UnlockOSThread()
		return nil, err
	}

	r.logger.Debug().Int64("thread", env.Thread().ID()).Msg("thread attached")
	return env, nil
}

// DetachThread removes the calling thread's registration and unpins the
// goroutine. Handler dispositions are process-wide and stay in place.
func (r *Runtime) DetachThread() error {
	if err := r.threads.Detach(); err != nil {
		return err
	}
	runtime.UnlockOSThread()
	return nil
}

// RestoreMask reapplies the signal mask captured when env's thread attached.
// Ports call it at managed-to-native transition points.
func (r *Runtime) RestoreMask(env *vm.Env) error {
	return r.sig.RestoreMask(env)
}

// Signals exposes the signal registry; the port's trampoline dispatches
// through it.
func (r *Runtime) Signals() *signals.Registry {
	return r.sig
}

// Classes exposes the class registry the runtime raises from.
func (r *Runtime) Classes() *object.Registry {
	return r.classes
}

// Threads exposes the thread registry.
func (r *Runtime) Threads() *vm.ThreadRegistry {
	return r.threads
}

// CallStackOf resolves the call stack attached to a raised exception. It
// reports false for non-throwables, for exceptions without a captured stack,
// and before Init.
func (r *Runtime) CallStackOf(inst *object.Instance) (*callstack.Stack, bool) {
	if r.stackField == nil || inst == nil || !inst.IsInstanceOf(r.throwable) {
		return nil, false
	}
	h := callstack.Handle(inst.Long(r.stackField))
	if h == 0 {
		return nil, false
	}
	return r.handles.Get(h)
}

// ReleaseCallStack frees the call stack attached to an exception and zeroes
// its reserved field. Embedders call it once the stack has been consumed,
// typically after formatting a stack trace.
func (r *Runtime) ReleaseCallStack(inst *object.Instance) {
	if r.stackField == nil || inst == nil || !inst.IsInstanceOf(r.throwable) {
		return
	}
	h := callstack.Handle(inst.Long(r.stackField))
	if h == 0 {
		return
	}
	r.handles.Free(h)
	inst.SetLong(r.stackField, 0)
}
