//go:build darwin && arm64

package signals

import "unsafe"

const contextSupported = true

// threadStateARM64 mirrors __darwin_arm_thread_state64, which carries the
// frame pointer and program counter as named registers.
type threadStateARM64 struct {
	X    [29]uint64
	Fp   uint64
	Lr   uint64
	Sp   uint64
	Pc   uint64
	Cpsr uint32
	_    uint32
}

// mcontextARM64 mirrors __darwin_mcontext64 up to the thread state.
type mcontextARM64 struct {
	ES struct {
		Far       uint64
		Esr       uint32
		Exception uint32
	}
	SS threadStateARM64
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
	MContext *mcontextARM64
}

// readFaultContext returns the faulting PC and frame pointer from the raw
// ucontext delivered with the signal.
func readFaultContext(raw unsafe.Pointer) Regs {
	uc := (*ucontextDarwin)(raw)
	mc := uc.MContext
	return Regs{
		PC: uintptr(mc.SS.Pc),
		FP: uintptr(mc.SS.Fp),
	}
}
