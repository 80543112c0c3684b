package main

import (
	"github.com/bxvs888/robovm"
	"github.com/spf13/cobra"
)

var docsCmd = &cobra.Command{
	Use:   "docs [topic]",
	Short: "Browse runtime documentation",
	Long: `docs prints structured documentation about the fault-interception
runtime: fault categories, the bootstrap exception classes, the control-plane
lifecycle, and the error types it returns. With no arguments it prints a quick
reference; pass a category or topic name to narrow it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")

		var opts []robovm.DocsOption
		switch {
		case all:
			opts = append(opts, robovm.DocsAll())
		case len(args) == 1:
			switch args[0] {
			case "categories", "classes", "lifecycle", "errors":
				opts = append(opts, robovm.DocsCategory(args[0]))
			default:
				opts = append(opts, robovm.DocsTopic(args[0]))
			}
		default:
			opts = append(opts, robovm.DocsQuick())
		}

		return printJSON(robovm.Docs(opts...).Data())
	},
}

func init() {
	docsCmd.Flags().Bool("all", false, "print the complete documentation")
	rootCmd.AddCommand(docsCmd)
}
