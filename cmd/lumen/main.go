// Package main is the entry point for the lumen CLI/TUI.
package main

import (
	"os"

	"github.com/lumen-io/lumen/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
