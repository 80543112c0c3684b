//go:build linux

package signals

import (
	"fmt"
	"syscall"
	"unsafe"

	"github.com/bxvs888/robovm/vm"
	"golang.org/x/sys/unix"
)

// faultSignals returns the signals intercepted for fault translation, in
// install order. Linux reports both null dereferences and guard-region hits
// as SIGSEGV.
func faultSignals() []syscall.Signal {
	return []syscall.Signal{unix.SIGSEGV}
}

// sigaction mirrors the kernel's struct sigaction for rt_sigaction.
type sigaction struct {
	handler  uintptr
	flags    uint64
	restorer uintptr
	mask     uint64
}

const (
	saSiginfo = 0x4
	saOnstack = 0x8000000

	// The kernel expects the size of its 64-bit sigset in bytes.
	sigsetBytes = 8
)

// HostSystem drives the real OS. The port supplies the program counter of its
// fault trampoline: the assembly or C shim the kernel enters, which recovers
// (signal, fault address, raw context) and calls Registry.DispatchFault.
type HostSystem struct {
	trampoline uintptr
}

// NewHostSystem returns a System that installs trampolinePC as the handler
// entry for fault signals.
func NewHostSystem(trampolinePC uintptr) *HostSystem {
	return &HostSystem{trampoline: trampolinePC}
}

// Install replaces sig's handler with the trampoline by a read-modify-write
// of the current kernel sigaction, keeping the registered restorer intact.
// The handler mask is left empty and SA_SIGINFO|SA_ONSTACK are set; no
// alternate stack is ever registered, so delivery stays on the interrupted
// stack, where the compiled-code prologue probe guarantees residual room.
func (s *HostSystem) Install(sig syscall.Signal) (Disposition, error) {
	if s.trampoline == 0 {
		return 0, fmt.Errorf("signals: no fault trampoline configured")
	}
	var sa sigaction
	if err := rtSigaction(sig, nil, &sa); err != nil {
		return 0, err
	}
	prev := Disposition(sa.handler)
	sa.handler = s.trampoline
	sa.flags |= saSiginfo | saOnstack
	sa.mask = 0
	if err := rtSigaction(sig, &sa, nil); err != nil {
		return 0, err
	}
	return prev, nil
}

// Restore writes prev back as sig's handler, keeping the rest of the current
// action.
func (s *HostSystem) Restore(sig syscall.Signal, prev Disposition) error {
	var sa sigaction
	if err := rtSigaction(sig, nil, &sa); err != nil {
		return err
	}
	sa.handler = uintptr(prev)
	return rtSigaction(sig, &sa, nil)
}

// Default resets sig to the OS default action.
func (s *HostSystem) Default(sig syscall.Signal) error {
	var sa sigaction // zero handler is SIG_DFL
	return rtSigaction(sig, &sa, nil)
}

// Redeliver sends sig to the process group.
func (s *HostSystem) Redeliver(sig syscall.Signal) error {
	return unix.Kill(0, sig)
}

// Mask returns the calling thread's signal mask without changing it.
func (s *HostSystem) Mask() (vm.Sigmask, error) {
	var cur unix.Sigset_t
	if err := unix.PthreadSigmask(unix.SIG_SETMASK, nil, &cur); err != nil {
		return 0, err
	}
	return vm.Sigmask(cur.Val[0]), nil
}

// SetMask replaces the calling thread's signal mask.
func (s *HostSystem) SetMask(m vm.Sigmask) error {
	var set unix.Sigset_t
	set.Val[0] = uint64(m)
	return unix.PthreadSigmask(unix.SIG_SETMASK, &set, nil)
}

func rtSigaction(sig syscall.Signal, newAct, oldAct *sigaction) error {
	_, _, errno := unix.RawSyscall6(unix.SYS_RT_SIGACTION,
		uintptr(sig),
		uintptr(unsafe.Pointer(newAct)),
		uintptr(unsafe.Pointer(oldAct)),
		sigsetBytes, 0, 0)
	if errno != 0 {
		return errno
	}
	return nil
}
