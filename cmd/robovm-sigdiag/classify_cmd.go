package main

import (
	"fmt"

	"github.com/bxvs888/robovm/faults"
	"github.com/bxvs888/robovm/object"
	"github.com/spf13/cobra"
)

// classifyReport is the classify command's output.
type classifyReport struct {
	Address   string `json:"address"`
	StackBase string `json:"stack_base"`
	GuardSize string `json:"guard_size"`
	Managed   bool   `json:"managed"`
	Category  string `json:"category"`
	Raises    string `json:"raises,omitempty"`
	Outcome   string `json:"outcome"`
}

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify a fault address against stack bounds",
	Long: `classify runs the runtime's address classifier over one fault:
the null sentinel raises NullPointerException, an address in the stack guard
region raises StackOverflowError, and anything else terminates the process.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		addrStr, _ := flags.GetString("addr")
		baseStr, _ := flags.GetString("stack-base")
		guardStr, _ := flags.GetString("guard-size")
		native, _ := flags.GetBool("native")

		addr, err := parseWord(addrStr)
		if err != nil {
			return err
		}
		base, err := parseWord(baseStr)
		if err != nil {
			return err
		}
		guard, err := parseWord(guardStr)
		if err != nil {
			return err
		}
		if guard == 0 {
			guard = faults.DefaultGuardSize
		}

		bounds := faults.StackBounds{Base: base, Guard: guard}
		category := faults.Classify(addr, bounds, !native)

		report := classifyReport{
			Address:   fmt.Sprintf("%#x", addr),
			StackBase: fmt.Sprintf("%#x", base),
			GuardSize: fmt.Sprintf("%#x", guard),
			Managed:   !native,
			Category:  category.String(),
		}
		switch category {
		case faults.NullDeref:
			report.Raises = object.NullPointerExceptionClass
			report.Outcome = "raised"
		case faults.StackOverflow:
			report.Raises = object.StackOverflowErrorClass
			report.Outcome = "raised"
		default:
			report.Outcome = "terminated"
		}

		fmt.Println("outcome:", outcomeMark(report.Outcome))
		return printJSON(report)
	},
}

func init() {
	classifyCmd.Flags().String("addr", "0", "faulting address (hex or decimal)")
	classifyCmd.Flags().String("stack-base", "0", "low end of the usable stack")
	classifyCmd.Flags().String("guard-size", "0", "guard region size (default 64 KiB)")
	classifyCmd.Flags().Bool("native", false, "treat the fault as outside compiled code")
	rootCmd.AddCommand(classifyCmd)
}
