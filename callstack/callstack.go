// Package callstack captures and represents the call chains attached to
// exceptions raised by the fault path. A captured stack is referenced through
// an opaque 64-bit Handle, sized to fit the reserved long field on a throwable
// instance, so the instance never holds a raw pointer into walker memory.
package callstack

import (
	"fmt"
	"slices"
	"strings"
)

// Frame is a raw two-word frame record: the caller link followed by a return
// address. The fault handler fabricates one to stand in for the faulting
// instruction, with Prev holding the frame pointer captured from the
// interrupted context and ReturnAddress holding the faulting program counter.
type Frame struct {
	Prev          uintptr
	ReturnAddress uintptr
}

// Entry describes one captured frame.
type Entry struct {
	FramePointer  uintptr
	ReturnAddress uintptr
}

// Stack is an immutable ordered sequence of captured frames, innermost first.
type Stack struct {
	entries []Entry
}

// NewStack builds a Stack from a copy of entries.
func NewStack(entries []Entry) *Stack {
	return &Stack{entries: slices.Clone(entries)}
}

// Depth returns the number of captured frames.
func (s *Stack) Depth() int {
	return len(s.entries)
}

// Entry returns the frame at index i. Index zero is the innermost frame.
func (s *Stack) Entry(i int) Entry {
	return s.entries[i]
}

// Entries returns a copy of all captured frames, innermost first.
func (s *Stack) Entries() []Entry {
	return slices.Clone(s.entries)
}

// String formats the stack one frame per line, innermost first.
func (s *Stack) String() string {
	var b strings.Builder
	for i, e := range s.entries {
		fmt.Fprintf(&b, "#%-2d pc=%#x fp=%#x\n", i, e.ReturnAddress, e.FramePointer)
	}
	return b.String()
}
