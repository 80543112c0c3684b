//go:build darwin

package signals

import (
	"fmt"
	"syscall"

	"github.com/bxvs888/robovm/vm"
	"golang.org/x/sys/unix"
)

// faultSignals returns the signals intercepted for fault translation, in
// install order. On Darwin a null dereference surfaces as SIGBUS, so SIGBUS
// is installed first, then SIGSEGV.
func faultSignals() []syscall.Signal {
	return []syscall.Signal{unix.SIGBUS, unix.SIGSEGV}
}

// HostSystem drives the real OS. Disposition and mask control on Darwin go
// through libc, so the port's C shim supplies the hooks below; only signal
// re-delivery is issued directly. A hook left nil fails the operation.
type HostSystem struct {
	// InstallFn points sig at the port's fault trampoline with SA_SIGINFO
	// set and no alternate stack, returning the previous handler.
	InstallFn func(sig syscall.Signal) (uintptr, error)
	// RestoreFn puts back a handler returned by InstallFn.
	RestoreFn func(sig syscall.Signal, handler uintptr) error
	// DefaultFn resets sig to SIG_DFL.
	DefaultFn func(sig syscall.Signal) error
	// MaskFn returns the calling thread's signal mask.
	MaskFn func() (vm.Sigmask, error)
	// SetMaskFn replaces the calling thread's signal mask.
	SetMaskFn func(m vm.Sigmask) error
}

func (s *HostSystem) Install(sig syscall.Signal) (Disposition, error) {
	if s.InstallFn == nil {
		return 0, fmt.Errorf("signals: no install hook configured")
	}
	prev, err := s.InstallFn(sig)
	return Disposition(prev), err
}

func (s *HostSystem) Restore(sig syscall.Signal, prev Disposition) error {
	if s.RestoreFn == nil {
		return fmt.Errorf("signals: no restore hook configured")
	}
	return s.RestoreFn(sig, uintptr(prev))
}

func (s *HostSystem) Default(sig syscall.Signal) error {
	if s.DefaultFn == nil {
		return fmt.Errorf("signals: no default hook configured")
	}
	return s.DefaultFn(sig)
}

// Redeliver sends sig to the process group.
func (s *HostSystem) Redeliver(sig syscall.Signal) error {
	return unix.Kill(0, sig)
}

func (s *HostSystem) Mask() (vm.Sigmask, error) {
	if s.MaskFn == nil {
		return 0, fmt.Errorf("signals: no mask hook configured")
	}
	return s.MaskFn()
}

func (s *HostSystem) SetMask(m vm.Sigmask) error {
	if s.SetMaskFn == nil {
		return fmt.Errorf("signals: no set-mask hook configured")
	}
	return s.SetMaskFn(m)
}
