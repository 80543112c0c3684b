package callstack

import (
	"fmt"
	"unsafe"
)

// WordSize is the size in bytes of one frame-record word. A record's return
// address lives WordSize bytes above its caller link.
const WordSize = unsafe.Sizeof(uintptr(0))

// DefaultMaxDepth bounds a single capture. The cap keeps a corrupt or cyclic
// link from turning the walk into an infinite loop.
const DefaultMaxDepth = 512

// Memory reads pointer-sized words from the address space being unwound.
// Implementations other than HostMemory let the walker run against fabricated
// frame records.
type Memory interface {
	Word(addr uintptr) (uintptr, error)
}

// Capturer records the call chain rooted at a synthetic frame.
type Capturer interface {
	Capture(root Frame) (*Stack, error)
}

// ChainCapturer walks a frame-pointer chain: each record holds the caller's
// record address at offset zero and a return address one word above it.
type ChainCapturer struct {
	mem      Memory
	maxDepth int
}

// NewChainCapturer returns a capturer that reads frame records through mem.
// A maxDepth of zero or less selects DefaultMaxDepth.
func NewChainCapturer(mem Memory, maxDepth int) *ChainCapturer {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &ChainCapturer{mem: mem, maxDepth: maxDepth}
}

// Capture walks the chain starting at root. Entry zero is root itself, so a
// fault site appears as the innermost call. The walk ends at a zero link, at
// maxDepth, or at the first record that is unreadable or carries a zero
// return address; frames beyond that point are absent from the result.
func (c *ChainCapturer) Capture(root Frame) (*Stack, error) {
	if root.ReturnAddress == 0 {
		return nil, fmt.Errorf("callstack: root frame has no return address")
	}
	entries := make([]Entry, 0, 16)
	entries = append(entries, Entry{FramePointer: root.Prev, ReturnAddress: root.ReturnAddress})
	fp := root.Prev
	for fp != 0 && len(entries) < c.maxDepth {
		prev, err := c.mem.Word(fp)
		if err != nil {
			break
		}
		ret, err := c.mem.Word(fp + WordSize)
		if err != nil || ret == 0 {
			break
		}
		entries = append(entries, Entry{FramePointer: fp, ReturnAddress: ret})
		fp = prev
	}
	return &Stack{entries: entries}, nil
}
