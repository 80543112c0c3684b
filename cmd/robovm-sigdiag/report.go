package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	prettyjson "github.com/hokaccha/go-prettyjson"
	"github.com/spf13/viper"
)

var (
	raisedMark     = color.New(color.FgGreen, color.Bold).SprintFunc()
	terminatedMark = color.New(color.FgRed, color.Bold).SprintFunc()
)

// printJSON writes v to stdout, colorized when stdout is a terminal.
func printJSON(v any) error {
	if viper.GetBool("no-color") || !isTTY(os.Stdout) {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}
	data, err := prettyjson.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// outcomeMark renders an outcome name with a color cue on terminals.
func outcomeMark(outcome string) string {
	if viper.GetBool("no-color") || !isTTY(os.Stdout) {
		return outcome
	}
	if outcome == "raised" {
		return raisedMark(outcome)
	}
	return terminatedMark(outcome)
}
