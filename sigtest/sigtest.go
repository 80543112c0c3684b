// Package sigtest provides scripted collaborators for exercising the fault
// path without real OS signal delivery: an in-memory System, a recording
// propagator, a failing allocator, a map-backed word memory for the stack
// walker, and fixed-register context readers.
package sigtest

import (
	"fmt"
	"sync"
	"syscall"
	"unsafe"

	"github.com/bxvs888/robovm/object"
	"github.com/bxvs888/robovm/signals"
	"github.com/bxvs888/robovm/vm"
)

// InstalledHandler is the disposition value the fake System records for an
// installed fault handler, standing in for a real trampoline address.
const InstalledHandler signals.Disposition = 0xfa17

// Call records one operation served by the fake System, in order.
type Call struct {
	Op  string // "install", "restore", "default", "redeliver", "mask", "setmask"
	Sig syscall.Signal
}

// System is an in-memory signals.System. The zero value is ready to use:
// installs succeed and the thread mask starts empty. Configure the Fail
// fields before handing it to a Registry; they are not read under a lock.
type System struct {
	// FailInstall fails Install for the given signals.
	FailInstall map[syscall.Signal]error
	// FailMask fails mask queries.
	FailMask error

	mu           sync.Mutex
	calls        []Call
	dispositions map[syscall.Signal]signals.Disposition
	mask         vm.Sigmask
}

func (s *System) record(op string, sig syscall.Signal) {
	s.calls = append(s.calls, Call{Op: op, Sig: sig})
}

// Install records the previous disposition and marks sig as pointing at the
// fault handler.
func (s *System) Install(sig syscall.Signal) (signals.Disposition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("install", sig)
	if err := s.FailInstall[sig]; err != nil {
		return 0, err
	}
	if s.dispositions == nil {
		s.dispositions = make(map[syscall.Signal]signals.Disposition)
	}
	prev := s.dispositions[sig]
	s.dispositions[sig] = InstalledHandler
	return prev, nil
}

// Restore puts back a disposition saved by Install.
func (s *System) Restore(sig syscall.Signal, prev signals.Disposition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("restore", sig)
	if s.dispositions == nil {
		s.dispositions = make(map[syscall.Signal]signals.Disposition)
	}
	s.dispositions[sig] = prev
	return nil
}

// Default resets sig to the zero disposition, standing in for SIG_DFL.
func (s *System) Default(sig syscall.Signal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("default", sig)
	if s.dispositions != nil {
		delete(s.dispositions, sig)
	}
	return nil
}

// Redeliver records the re-delivery without ending any process.
func (s *System) Redeliver(sig syscall.Signal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("redeliver", sig)
	return nil
}

// Mask returns the fake thread mask.
func (s *System) Mask() (vm.Sigmask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("mask", 0)
	if s.FailMask != nil {
		return 0, s.FailMask
	}
	return s.mask, nil
}

// SetMask replaces the fake thread mask.
func (s *System) SetMask(m vm.Sigmask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("setmask", 0)
	s.mask = m
	return nil
}

// SeedMask sets the fake thread mask directly, outside the recorded calls.
func (s *System) SeedMask(m vm.Sigmask) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mask = m
}

// CurrentMask returns the fake thread mask without recording a call.
func (s *System) CurrentMask() vm.Sigmask {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mask
}

// Disposition returns the handler currently registered for sig; the zero
// value stands for SIG_DFL.
func (s *System) Disposition(sig syscall.Signal) signals.Disposition {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dispositions[sig]
}

// Calls returns a copy of every operation served, in order.
func (s *System) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallsFor returns the operation names served for sig, in order.
func (s *System) CallsFor(sig syscall.Signal) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, c := range s.calls {
		if c.Sig == sig {
			out = append(out, c.Op)
		}
	}
	return out
}

// Propagator records raised exceptions. Set Fail to make every raise defer.
type Propagator struct {
	Fail   error
	Raised []*object.Instance
}

func (p *Propagator) Raise(env *vm.Env, inst *object.Instance) error {
	if p.Fail != nil {
		return p.Fail
	}
	p.Raised = append(p.Raised, inst)
	return nil
}

// Allocator is a scripted heap.Allocator. With Err set it fails every
// allocation after parking the env's emergency exception as pending, the way
// the real heap does on exhaustion.
type Allocator struct {
	Err       error
	Allocated int
}

func (a *Allocator) Allocate(env *vm.Env, cls *object.Class) (*object.Instance, error) {
	if a.Err != nil {
		if em := env.Emergency(); em != nil {
			env.SetPending(em)
		}
		return nil, fmt.Errorf("sigtest: allocate %s: %w", cls.Name(), a.Err)
	}
	a.Allocated++
	return object.NewInstance(cls), nil
}

// Memory is a callstack.Memory serving words from a fixed map. Reads of
// unmapped addresses fail, standing in for unreadable stack.
type Memory map[uintptr]uintptr

func (m Memory) Word(addr uintptr) (uintptr, error) {
	v, ok := m[addr]
	if !ok {
		return 0, fmt.Errorf("sigtest: no word mapped at %#x", addr)
	}
	return v, nil
}

// StaticContext returns a reader that ignores the raw pointer and reports the
// given registers, for dispatch tests that have no real OS context.
func StaticContext(pc, fp uintptr) signals.ContextReader {
	return func(unsafe.Pointer) signals.Regs {
		return signals.Regs{PC: pc, FP: fp}
	}
}
