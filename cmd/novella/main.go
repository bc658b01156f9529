// Package main is the novella command: play, check and test branching
// stories from the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/novella/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
