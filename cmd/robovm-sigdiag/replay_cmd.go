package main

import (
	"errors"
	"fmt"

	"github.com/bxvs888/robovm"
	"github.com/bxvs888/robovm/callstack"
	"github.com/bxvs888/robovm/heap"
	"github.com/bxvs888/robovm/sigtest"
	"github.com/gofrs/uuid"
	"github.com/spf13/cobra"
)

// replayReport is the replay command's output.
type replayReport struct {
	ID        string   `json:"id"`
	Scenario  string   `json:"scenario"`
	Signal    string   `json:"signal"`
	Address   string   `json:"address"`
	Outcome   string   `json:"outcome"`
	Category  string   `json:"category"`
	Exception string   `json:"exception,omitempty"`
	CallStack []string `json:"call_stack,omitempty"`
	SystemLog []string `json:"system_log"`
}

var replayCmd = &cobra.Command{
	Use:   "replay <scenario.json>",
	Short: "Replay a fault scenario through the dispatch path",
	Long: `replay drives one scenario through the real init, install, and
dispatch code against a scripted OS: handlers are recorded rather than
registered, and the fault is dispatched directly instead of delivered. The
report shows the outcome, the raised exception with its captured call stack,
and every operation the runtime asked of the OS.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := LoadScenario(args[0])
		if err != nil {
			return err
		}
		report, err := runReplay(sc)
		if err != nil {
			return err
		}
		fmt.Println("outcome:", outcomeMark(report.Outcome))
		return printJSON(report)
	},
}

func runReplay(sc *Scenario) (*replayReport, error) {
	logger := newLogger()
	sys := &sigtest.System{}
	mem, err := sc.Memory()
	if err != nil {
		return nil, err
	}

	opts := []robovm.Option{
		robovm.WithLogger(logger),
		robovm.WithSystem(sys),
		robovm.WithContextReader(sigtest.StaticContext(mustWord(sc.PC), mustWord(sc.FP))),
		robovm.WithCapturer(callstack.NewChainCapturer(mem, 0)),
	}
	if sc.HeapBudget > 0 {
		opts = append(opts, robovm.WithAllocator(heap.NewArena(sc.HeapBudget)))
	}
	if sc.DeferPropagation {
		opts = append(opts, robovm.WithPropagator(&sigtest.Propagator{
			Fail: errors.New("deferred by scenario"),
		}))
	}

	rt := robovm.New(opts...)
	if err := rt.Init(); err != nil {
		return nil, err
	}

	bounds := sc.Bounds()
	env, err := rt.AttachThread(bounds.Base, bounds.Guard)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rt.DetachThread() }()
	if !sc.Native {
		env.EnterManaged()
	}

	sig, err := sc.FaultSignal()
	if err != nil {
		return nil, err
	}
	out := rt.Signals().DispatchFault(sig, mustWord(sc.Address), nil)

	report := &replayReport{
		ID:       uuid.Must(uuid.NewV4()).String(),
		Scenario: sc.Name,
		Signal:   signalName(sig),
		Address:  fmt.Sprintf("%#x", mustWord(sc.Address)),
		Outcome:  out.Kind.String(),
		Category: out.Category.String(),
	}
	if out.Exception != nil {
		report.Exception = out.Exception.Class().Name()
		if stack, ok := rt.CallStackOf(out.Exception); ok {
			for i := 0; i < stack.Depth(); i++ {
				e := stack.Entry(i)
				report.CallStack = append(report.CallStack,
					fmt.Sprintf("#%-2d pc=%#x fp=%#x", i, e.ReturnAddress, e.FramePointer))
			}
		}
	}
	for _, c := range sys.Calls() {
		entry := c.Op
		if c.Sig != 0 {
			entry = fmt.Sprintf("%s %s", c.Op, signalName(c.Sig))
		}
		report.SystemLog = append(report.SystemLog, entry)
	}
	return report, nil
}

func init() {
	rootCmd.AddCommand(replayCmd)
}
