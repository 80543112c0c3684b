package signals

import (
	"syscall"

	"github.com/bxvs888/robovm/vm"
)

// Disposition is a saved signal disposition: the handler program counter in
// force before an install, sufficient to put the previous handler back.
type Disposition uintptr

// System is the narrow OS surface the registry drives. The host
// implementation issues real syscalls; tests substitute a scripted fake so
// classify, capture, and raise run without real signal delivery.
type System interface {
	// Install points sig's disposition at the port's fault trampoline,
	// requesting extended fault information. It returns the previous
	// disposition for rollback.
	Install(sig syscall.Signal) (Disposition, error)

	// Restore puts back a disposition previously returned by Install.
	Restore(sig syscall.Signal, prev Disposition) error

	// Default resets sig to the OS default action.
	Default(sig syscall.Signal) error

	// Redeliver sends sig to the process group so the current disposition
	// runs.
	Redeliver(sig syscall.Signal) error

	// Mask returns the calling thread's signal mask without changing it.
	Mask() (vm.Sigmask, error)

	// SetMask replaces the calling thread's signal mask.
	SetMask(m vm.Sigmask) error
}
