// Package main is the entry point for the pycramdb CLI.
package main

import (
	"fmt"
	"os"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "pycramdb:", err)
		os.Exit(1)
	}
}
