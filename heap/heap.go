// Package heap provides the managed-heap seam the raise path allocates
// through, plus a bounded reference allocator for hosted use.
package heap

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/bxvs888/robovm/object"
	"github.com/bxvs888/robovm/vm"
)

// ErrAllocFailed is wrapped by every allocation failure an Allocator returns.
var ErrAllocFailed = errors.New("heap: allocation failed")

// Allocator is the managed-heap seam used on the raise path. A failing
// Allocate parks the thread's standing fallback exception as pending on env
// before returning, so a caller that cannot tolerate failure can clear and
// reuse it. Implementations must not take locks that code interrupted by a
// fault could be holding.
type Allocator interface {
	Allocate(env *vm.Env, cls *object.Class) (*object.Instance, error)
}

// Arena hands out instances until a fixed budget is spent. It takes no locks,
// so it stays usable from a fault handler that may have interrupted an
// in-flight allocation.
type Arena struct {
	budget int64
	used   atomic.Int64
}

// NewArena returns an allocator with capacity for budget instances. A budget
// of zero or less means unbounded.
func NewArena(budget int64) *Arena {
	return &Arena{budget: budget}
}

// Allocate returns a zero-initialized instance of cls. On exhaustion it parks
// env's preallocated emergency exception as pending and fails with an error
// wrapping ErrAllocFailed.
func (a *Arena) Allocate(env *vm.Env, cls *object.Class) (*object.Instance, error) {
	if used := a.used.Add(1); a.budget > 0 && used > a.budget {
		a.used.Add(-1)
		if em := env.Emergency(); em != nil {
			env.SetPending(em)
		}
		return nil, fmt.Errorf("heap: budget of %d instances spent: %w", a.budget, ErrAllocFailed)
	}
	return object.NewInstance(cls), nil
}

// Used returns the number of instances handed out.
func (a *Arena) Used() int64 {
	return a.used.Load()
}
