// Package main is the entry point for the recsel CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/recordselect/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
