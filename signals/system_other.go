//go:build !linux && !darwin

package signals

import "syscall"

// faultSignals returns the signals intercepted for fault translation. No
// host System exists for this platform; a port supplies its own.
func faultSignals() []syscall.Signal {
	return []syscall.Signal{syscall.SIGSEGV}
}
