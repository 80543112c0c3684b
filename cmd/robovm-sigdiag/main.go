// robovm-sigdiag exercises the fault-interception runtime from the command
// line: classify addresses against stack bounds, replay scenario files through
// the full dispatch path with scripted collaborators, and browse the runtime
// documentation.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "robovm-sigdiag",
	Short: "Diagnostics for the fault-to-exception runtime",
	Long: `robovm-sigdiag pokes at the machinery that turns hardware memory
faults into managed exceptions. It classifies fault addresses the way the
runtime would, and replays scenario files through the real dispatch path
against scripted OS collaborators, with no signals delivered.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/.robovm-sigdiag.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("no-color", rootCmd.PersistentFlags().Lookup("no-color"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigName(".robovm-sigdiag")
		}
	}

	viper.SetEnvPrefix("sigdiag")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && viper.GetBool("verbose") {
		fmt.Fprintln(os.Stderr, "using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the CLI logger: human-readable on a terminal, JSON lines
// otherwise.
func newLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	if viper.GetBool("verbose") {
		level = zerolog.DebugLevel
	}
	if isTTY(os.Stderr) && !viper.GetBool("no-color") {
		w := zerolog.ConsoleWriter{Out: os.Stderr}
		return zerolog.New(w).Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}

func isTTY(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func printError(err error) {
	msg := err.Error()
	if isTTY(os.Stderr) && !viper.GetBool("no-color") {
		msg = color.New(color.FgRed).Sprint(msg)
	}
	fmt.Fprintln(os.Stderr, msg)
}
