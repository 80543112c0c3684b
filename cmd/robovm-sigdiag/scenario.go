package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"syscall"

	"github.com/bxvs888/robovm/faults"
	"github.com/bxvs888/robovm/sigtest"
)

// Scenario is one replayable fault, loaded from JSON. Addresses and register
// values are strings so files can use hex ("0x7f8000") or decimal.
type Scenario struct {
	Name      string `json:"name"`
	Signal    string `json:"signal"`     // SIGSEGV (default) or SIGBUS
	Address   string `json:"address"`    // faulting address
	StackBase string `json:"stack_base"` // low end of the usable stack
	GuardSize string `json:"guard_size"` // defaults to the runtime guard size
	Native    bool   `json:"native"`     // fault outside compiled code

	// Registers at the fault, as the signal context would carry them.
	PC string `json:"pc"`
	FP string `json:"fp"`

	// Frames maps stack addresses to words, covering the frame records the
	// capture walk reads. Both sides parse like Address.
	Frames map[string]string `json:"frames"`

	// HeapBudget caps the scripted heap; zero means unbounded. A budget of 1
	// is exhausted by the emergency preallocation, forcing the fallback path.
	HeapBudget int64 `json:"heap_budget"`

	// DeferPropagation scripts the propagator to defer every raise.
	DeferPropagation bool `json:"defer_propagation"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if sc.Name == "" {
		sc.Name = path
	}
	if _, err := sc.FaultSignal(); err != nil {
		return nil, err
	}
	for _, field := range []string{sc.Address, sc.StackBase, sc.GuardSize, sc.PC, sc.FP} {
		if _, err := parseWord(field); err != nil {
			return nil, err
		}
	}
	if _, err := sc.Memory(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// parseWord converts a scenario address or register value. Empty means zero.
func parseWord(s string) (uintptr, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("bad address %q: %w", s, err)
	}
	return uintptr(v), nil
}

func mustWord(s string) uintptr {
	v, _ := parseWord(s)
	return v
}

// FaultSignal returns the signal the scenario delivers.
func (sc *Scenario) FaultSignal() (syscall.Signal, error) {
	switch sc.Signal {
	case "", "SIGSEGV":
		return syscall.SIGSEGV, nil
	case "SIGBUS":
		return syscall.SIGBUS, nil
	default:
		return 0, fmt.Errorf("unknown signal %q", sc.Signal)
	}
}

func signalName(sig syscall.Signal) string {
	switch sig {
	case syscall.SIGSEGV:
		return "SIGSEGV"
	case syscall.SIGBUS:
		return "SIGBUS"
	default:
		return fmt.Sprintf("signal %d", int(sig))
	}
}

// Bounds returns the scenario thread's stack extent.
func (sc *Scenario) Bounds() faults.StackBounds {
	guard := mustWord(sc.GuardSize)
	if guard == 0 {
		guard = faults.DefaultGuardSize
	}
	return faults.StackBounds{Base: mustWord(sc.StackBase), Guard: guard}
}

// Memory builds the word memory the capture walk reads from.
func (sc *Scenario) Memory() (sigtest.Memory, error) {
	mem := make(sigtest.Memory, len(sc.Frames))
	for addr, word := range sc.Frames {
		a, err := parseWord(addr)
		if err != nil {
			return nil, err
		}
		w, err := parseWord(word)
		if err != nil {
			return nil, err
		}
		mem[a] = w
	}
	return mem, nil
}
