//go:build linux && amd64

package signals

import "unsafe"

const contextSupported = true

// sigcontext64 mirrors the kernel's struct sigcontext on linux/amd64 up to
// the last field the reader touches.
type sigcontext64 struct {
	R8, R9, R10, R11, R12, R13, R14, R15 uint64
	Rdi, Rsi, Rbp, Rbx, Rdx, Rax, Rcx    uint64
	Rsp, Rip                             uint64
	Eflags                               uint64
	Cs, Gs, Fs, Ss                       uint16
	Err, Trapno, Oldmask, Cr2            uint64
	Fpstate                              uint64
	Reserved                             [8]uint64
}

// ucontext64 mirrors the ucontext the kernel places on the signal stack.
type ucontext64 struct {
	Flags uint64
	Link  uint64
	Stack struct {
		SP    uint64
		Flags int32
		_     [4]byte
		Size  uint64
	}
	MContext sigcontext64
	Sigmask  uint64
}

// readFaultContext returns the faulting PC and frame pointer from the raw
// ucontext delivered with the signal.
func readFaultContext(raw unsafe.Pointer) Regs {
	uc := (*ucontext64)(raw)
	return Regs{
		PC: uintptr(uc.MContext.Rip),
		FP: uintptr(uc.MContext.Rbp),
	}
}
