// Package main provides the entry point for the benchsweep CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/Sumatoshi-tech/benchsweep/cmd/benchsweep/commands"
	"github.com/Sumatoshi-tech/benchsweep/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	err := commands.NewSweepCommand().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
