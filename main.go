// Package main is the entry point of the tremor hazard engine CLI.
package main

import (
	"fmt"
	"os"

	"tremor/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
