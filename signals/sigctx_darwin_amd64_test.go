//go:build darwin && amd64

package signals

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestReadFaultContext(t *testing.T) {
	var mc mcontext64
	mc.SS.Rip = 0x7f00dead
	mc.SS.Rbp = 0x7ffe8000
	uc := ucontextDarwin{MContext: &mc, McSize: unsafe.Sizeof(mc)}

	regs := readFaultContext(unsafe.Pointer(&uc))
	require.Equal(t, uintptr(0x7f00dead), regs.PC)
	require.Equal(t, uintptr(0x7ffe8000), regs.FP)
}
