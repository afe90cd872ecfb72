// Package main provides the entry point for the treefort CLI.
package main

import (
	"os"

	"github.com/treefort-dev/treefort/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
