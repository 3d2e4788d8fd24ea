// Package main is the entry point for the truffles CLI.
package main

import (
	"os"

	"github.com/jmylchreest/truffles/cmd/truffles/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
