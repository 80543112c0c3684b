//go:build darwin && amd64

package signals

import "unsafe"

const contextSupported = true

// threadState64 mirrors __darwin_x86_thread_state64.
type threadState64 struct {
	Rax, Rbx, Rcx, Rdx, Rdi, Rsi, Rbp, Rsp uint64
	R8, R9, R10, R11, R12, R13, R14, R15   uint64
	Rip, Rflags, Cs, Fs, Gs                uint64
}

// mcontext64 mirrors __darwin_mcontext64 up to the thread state.
type mcontext64 struct {
	ES struct {
		Trapno     uint16
		Cpu        uint16
		Err        uint32
		Faultvaddr uint64
	}
	SS threadState64
}

// ucontextDarwin mirrors struct ucontext64 on Darwin, where the mcontext is
// out of line behind a pointer.
type ucontextDarwin struct {
	Onstack int32
	Sigmask uint32
	Stack   struct {
		SP    uintptr
		Size  uintptr
		Flags int32
		_     [4]byte
	}
	Link     uintptr
	McSize   uintptr
	MContext *mcontext64
}

// readFaultContext returns the faulting PC and frame pointer from the raw
// ucontext delivered with the signal.
func readFaultContext(raw unsafe.Pointer) Regs {
	uc := (*ucontextDarwin)(raw)
	mc := uc.MContext
	return Regs{
		PC: uintptr(mc.SS.Rip),
		FP: uintptr(mc.SS.Rbp),
	}
}
