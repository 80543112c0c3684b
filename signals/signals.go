// Package signals owns the fault-to-exception path: process-wide handler
// installation, per-thread signal mask bookkeeping, and the dispatcher that
// turns a delivered hardware fault into a raised managed exception or a
// default-action termination.
//
// DispatchFault runs synchronously on the faulting thread. It takes no locks
// shared with interrupted code, performs at most the one exception-instance
// allocation, and never logs; logging is confined to control-plane calls
// (Init, Install, RestoreMask). The collaborators behind allocation, stack
// capture, propagation, and the OS itself are injectable, so the whole path
// can be exercised without real signal delivery.
package signals

import (
	"errors"
	"fmt"
	"runtime"
	"syscall"

	"github.com/bxvs888/robovm/callstack"
	"github.com/bxvs888/robovm/heap"
	"github.com/bxvs888/robovm/object"
	"github.com/bxvs888/robovm/vm"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
)

// Registry is the process-scoped owner of fault-signal dispositions and of
// the metadata the dispatch path needs. Create one with New, call Init once,
// then Install on each thread before it runs managed code.
type Registry struct {
	sys     System
	classes *object.Registry
	alloc   heap.Allocator
	capt    callstack.Capturer
	handles *callstack.HandleTable
	threads *vm.ThreadRegistry
	prop    Propagator
	reader  ContextReader
	logger  zerolog.Logger

	initialized bool
	npeClass    *object.Class
	soeClass    *object.Class
	stackField  *object.InstanceField
}

// Option is a configuration function for a Registry.
type Option func(*Registry)

// WithSystem wires the OS surface. There is no default: the embedding port
// supplies a HostSystem pointed at its trampoline, tests supply a fake.
func WithSystem(sys System) Option {
	return func(r *Registry) {
		r.sys = sys
	}
}

// WithClasses substitutes the class registry. The default is the bootstrap
// java/lang subset.
func WithClasses(classes *object.Registry) Option {
	return func(r *Registry) {
		r.classes = classes
	}
}

// WithAllocator substitutes the managed-heap allocator used on the raise
// path. The default is an unbounded arena.
func WithAllocator(a heap.Allocator) Option {
	return func(r *Registry) {
		r.alloc = a
	}
}

// WithCapturer substitutes the stack-walk collaborator. The default walks
// real frame records in process memory.
func WithCapturer(c callstack.Capturer) Option {
	return func(r *Registry) {
		r.capt = c
	}
}

// WithHandles shares a handle table with the embedder, letting it resolve the
// handles stored on raised exceptions.
func WithHandles(t *callstack.HandleTable) Option {
	return func(r *Registry) {
		r.handles = t
	}
}

// WithThreads shares the thread registry the dispatcher resolves faulting
// threads through.
func WithThreads(t *vm.ThreadRegistry) Option {
	return func(r *Registry) {
		r.threads = t
	}
}

// WithPropagator substitutes the raise protocol. The default parks the
// exception in the thread's pending slot.
func WithPropagator(p Propagator) Option {
	return func(r *Registry) {
		r.prop = p
	}
}

// WithContextReader substitutes the raw-context reader. The default is the
// platform reader; ports with foreign context layouts and tests without real
// contexts supply their own.
func WithContextReader(reader ContextReader) Option {
	return func(r *Registry) {
		r.reader = reader
	}
}

// WithLogger sets the control-plane logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}

// New builds a Registry. Collaborators left unset get working defaults,
// except the System, which must be wired before Init.
func New(opts ...Option) *Registry {
	r := &Registry{
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.classes == nil {
		r.classes = object.Bootstrap()
	}
	if r.threads == nil {
		r.threads = vm.NewThreadRegistry()
	}
	if r.alloc == nil {
		r.alloc = heap.NewArena(0)
	}
	if r.capt == nil {
		r.capt = callstack.NewChainCapturer(callstack.HostMemory{}, 0)
	}
	if r.handles == nil {
		r.handles = callstack.NewHandleTable()
	}
	if r.prop == nil {
		r.prop = PendingPropagator{}
	}
	if r.reader == nil && contextSupported {
		r.reader = readFaultContext
	}
	return r
}

// Init resolves the metadata the dispatch path needs and verifies the wiring
// is complete. It must succeed once, process-wide, before any thread calls
// Install. All problems are reported together in one InitError.
func (r *Registry) Init() error {
	if r.initialized {
		return &InitError{Err: errors.New("already initialized")}
	}

	var errs *multierror.Error
	if r.sys == nil {
		errs = multierror.Append(errs, errors.New("no system wired"))
	}
	if r.reader == nil {
		errs = multierror.Append(errs, &UnsupportedArchError{OS: runtime.GOOS, Arch: runtime.GOARCH})
	}

	npe, ok := r.classes.Lookup(object.NullPointerExceptionClass)
	if !ok {
		errs = multierror.Append(errs, fmt.Errorf("class %s not defined", object.NullPointerExceptionClass))
	}
	soe, ok := r.classes.Lookup(object.StackOverflowErrorClass)
	if !ok {
		errs = multierror.Append(errs, fmt.Errorf("class %s not defined", object.StackOverflowErrorClass))
	}
	var field *object.InstanceField
	throwable, ok := r.classes.Lookup(object.ThrowableClass)
	if !ok {
		errs = multierror.Append(errs, fmt.Errorf("class %s not defined", object.ThrowableClass))
	} else if field, ok = throwable.FindField(object.StackStateField, object.StackStateDescriptor); !ok {
		errs = multierror.Append(errs, fmt.Errorf("field %s.%s %s not defined",
			object.ThrowableClass, object.StackStateField, object.StackStateDescriptor))
	}

	if err := errs.ErrorOrNil(); err != nil {
		return &InitError{Err: err}
	}

	r.npeClass = npe
	r.soeClass = soe
	r.stackField = field
	r.initialized = true
	r.logger.Debug().Msg("fault interception initialized")
	return nil
}

type savedDisposition struct {
	sig  syscall.Signal
	prev Disposition
}

// Install registers the process fault handlers on behalf of env's thread and
// captures that thread's current signal mask. It must run on the thread being
// installed, before the thread executes managed code. On any failure, already
// installed dispositions are rolled back and the thread's mask is left
// uncaptured.
func (r *Registry) Install(env *vm.Env) error {
	if !r.initialized {
		return &SetupError{Err: errors.New("registry not initialized")}
	}
	return r.install(env, faultSignals())
}

func (r *Registry) install(env *vm.Env, sigs []syscall.Signal) error {
	installed := make([]savedDisposition, 0, len(sigs))
	for _, sig := range sigs {
		prev, err := r.sys.Install(sig)
		if err != nil {
			serr := &SetupError{Signal: sig, Err: err}
			if rbErr := r.rollback(installed); rbErr != nil {
				serr.Err = multierror.Append(err, rbErr)
			}
			return serr
		}
		installed = append(installed, savedDisposition{sig: sig, prev: prev})
	}

	mask, err := r.sys.Mask()
	if err != nil {
		serr := &SetupError{Err: fmt.Errorf("mask query: %w", err)}
		if rbErr := r.rollback(installed); rbErr != nil {
			serr.Err = multierror.Append(serr.Err, rbErr)
		}
		return serr
	}
	env.Thread().SaveMask(mask)

	r.logger.Debug().
		Int64("thread", env.Thread().ID()).
		Int("signals", len(installed)).
		Msg("fault handlers installed")
	return nil
}

// rollback restores dispositions in reverse install order, aggregating any
// failures.
func (r *Registry) rollback(installed []savedDisposition) error {
	var errs *multierror.Error
	for i := len(installed) - 1; i >= 0; i-- {
		if err := r.sys.Restore(installed[i].sig, installed[i].prev); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

// Teardown is a lifecycle placeholder: handler installation is process-wide
// and is not reverted per thread.
func (r *Registry) Teardown(env *vm.Env) {
	r.logger.Debug().Int64("thread", env.Thread().ID()).Msg("teardown")
}

// RestoreMask reapplies the signal mask captured at install time. The broader
// runtime calls it on the owning thread at managed-native transition points.
func (r *Registry) RestoreMask(env *vm.Env) error {
	mask, ok := env.Thread().SavedMask()
	if !ok {
		return fmt.Errorf("signals: thread %d has no saved mask", env.Thread().ID())
	}
	return r.sys.SetMask(mask)
}
