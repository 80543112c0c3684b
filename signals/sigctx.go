package signals

import "unsafe"

// Regs is the register pair the fault path needs from an interrupted context:
// the program counter of the faulting instruction and the frame pointer that
// heads the interrupted frame chain.
type Regs struct {
	PC uintptr
	FP uintptr
}

// ContextReader extracts Regs from the raw OS fault context handed to the
// handler. The default reader reinterprets the platform ucontext; tests and
// exotic ports substitute their own.
type ContextReader func(raw unsafe.Pointer) Regs
