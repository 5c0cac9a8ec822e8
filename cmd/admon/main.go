// Package main is the entry point for the admon CLI.
package main

import (
	"os"

	"github.com/good-yellow-bee/admon/cmd/admon/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
