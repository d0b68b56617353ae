// Package main provides the entry point for the umlfca CLI.
package main

import (
	"os"

	"github.com/raphaelgruber/umlfca/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
