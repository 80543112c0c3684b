package main

import (
	"runtime"

	"github.com/bxvs888/robovm"
	"github.com/spf13/cobra"
)

type versionInfo struct {
	Version  string `json:"version"`
	Runtime  string `json:"runtime"`
	Commit   string `json:"commit"`
	Date     string `json:"date"`
	Platform string `json:"platform"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printJSON(versionInfo{
			Version:  version,
			Runtime:  robovm.Version,
			Commit:   commit,
			Date:     date,
			Platform: runtime.GOOS + "/" + runtime.GOARCH,
		})
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
