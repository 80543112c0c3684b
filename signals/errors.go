package signals

import (
	"fmt"
	"syscall"
)

// InitError reports that one-time initialization could not resolve something
// the dispatch path depends on. It is fatal: fault interception must not be
// enabled for the process.
type InitError struct {
	Err error
}

func (e *InitError) Error() string {
	return "signals: init: " + e.Err.Error()
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// SetupError reports a failed per-thread handler installation. It is fatal to
// that thread: managed code must not run on it.
type SetupError struct {
	Signal syscall.Signal
	Err    error
}

func (e *SetupError) Error() string {
	if e.Signal != 0 {
		return fmt.Sprintf("signals: install signal %d: %v", int(e.Signal), e.Err)
	}
	return fmt.Sprintf("signals: install: %v", e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

// UnsupportedArchError reports that no fault-context reader exists for the
// running platform pair. It is a port-time configuration gap, surfaced at
// Init rather than mid-fault.
type UnsupportedArchError struct {
	OS   string
	Arch string
}

func (e *UnsupportedArchError) Error() string {
	return fmt.Sprintf("signals: no fault context reader for %s/%s", e.OS, e.Arch)
}
