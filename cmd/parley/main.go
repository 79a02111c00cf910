// parley runs detective-negotiation cases in the terminal or headless.
//
// Usage:
//
//	parley play [--case=<id>] [--new]
//	parley simulate --script=<name> [--case=<id>] [--runs=<n>] [--seed=<n>]
//	parley checkpoint show|clear
//	parley cases
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
