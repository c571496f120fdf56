// Package main provides the entry point for bpsim.
// bpsim measures branch prediction accuracy of bimodal, gshare and hybrid
// predictors on branch traces.
//
// For the full CLI, use: go run ./cmd/bpsim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("bpsim - Branch Predictor Simulator")
	fmt.Println("")
	fmt.Println("Usage: bpsim [options] <predictor> <params...> <tracefile>")
	fmt.Println("")
	fmt.Println("Predictors:")
	fmt.Println("  bimodal <M2>")
	fmt.Println("  gshare  <M1> <N>")
	fmt.Println("  hybrid  <K> <M1> <N> <M2>")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/bpsim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/bpsim' instead.")
	}
}
