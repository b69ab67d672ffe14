// Package main provides the entry point for the dltindex CLI.
package main

import (
	"os"

	"github.com/dltkit/dltindex/cmd/dltindex/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
