//go:build linux && arm64

package signals

import "unsafe"

const contextSupported = true

// sigcontextARM64 mirrors the kernel's struct sigcontext on linux/arm64 up to
// the last field the reader touches. X29 is the frame pointer by convention.
type sigcontextARM64 struct {
	FaultAddr uint64
	Regs      [31]uint64
	Sp        uint64
	Pc        uint64
	Pstate    uint64
}

// ucontextARM64 mirrors the ucontext the kernel places on the signal stack.
// The kernel pads the sigmask out to 1024 bits and aligns the mcontext to a
// 16-byte boundary.
type ucontextARM64 struct {
	Flags uint64
	Link  uint64
	Stack struct {
		SP    uint64
		Flags int32
		_     [4]byte
		Size  uint64
	}
	Sigmask  uint64
	_        [120]byte
	_        [8]byte
	MContext sigcontextARM64
}

// readFaultContext returns the faulting PC and frame pointer from the raw
// ucontext delivered with the signal.
func readFaultContext(raw unsafe.Pointer) Regs {
	uc := (*ucontextARM64)(raw)
	return Regs{
		PC: uintptr(uc.MContext.Pc),
		FP: uintptr(uc.MContext.Regs[29]),
	}
}
