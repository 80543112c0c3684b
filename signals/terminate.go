package signals

import (
	"syscall"

	"github.com/bxvs888/robovm/faults"
)

// terminate restores sig's default disposition and re-delivers it to the
// process group, so the OS's crash semantics apply as if no handler had been
// installed: core dump, debugger stop, exit code. Failures in either step are
// ignored; this path does not come back.
func (r *Registry) terminate(sig syscall.Signal, category faults.Category) Outcome {
	_ = r.sys.Default(sig)
	_ = r.sys.Redeliver(sig)
	return Outcome{Kind: Terminated, Category: category}
}
