//go:build !((linux && amd64) || (linux && arm64) || (darwin && amd64) || (darwin && arm64))

package signals

import "unsafe"

// No fault-context layout is known for this platform pair. Init reports the
// gap as an UnsupportedArchError before any fault can reach the reader.
const contextSupported = false

func readFaultContext(raw unsafe.Pointer) Regs {
	return Regs{}
}
