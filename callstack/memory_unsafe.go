package callstack

import (
	"errors"
	"unsafe"
)

// ErrNilRead reports a word read through address zero.
var ErrNilRead = errors.New("callstack: word read through nil address")

// HostMemory reads words from the current process's own address space. It is
// the Memory used when the walker follows real compiled frames in-process.
type HostMemory struct{}

// Word returns the pointer-sized word stored at addr.
func (HostMemory) Word(addr uintptr) (uintptr, error) {
	if addr == 0 {
		return 0, ErrNilRead
	}
	return *(*uintptr)(unsafe.Pointer(addr)), nil
}
