// Package main provides the CLI entry point for gridcalc.
package main

import (
	"os"

	"github.com/gridstack-labs/gridcalc/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
