// Command benchmark runs the synthetic branch workloads on a set of
// predictors.
//
// Usage:
//
//	go run ./cmd/benchmark [flags]
//
// Flags:
//
//	-csv      Output results in CSV format (default: human-readable)
//	-json     Output results in JSON format
//	-config   Predictor configuration JSON file, may be repeated
//
// Example:
//
//	# Compare the default bimodal, gshare and hybrid predictors
//	go run ./cmd/benchmark
//
//	# Output CSV for spreadsheet comparison
//	go run ./cmd/benchmark -csv > results.csv
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/sarchlab/bpsim/benchmarks"
	"github.com/sarchlab/bpsim/predictor"
)

type configFiles []string

func (c *configFiles) String() string { return strings.Join(*c, ",") }

func (c *configFiles) Set(path string) error {
	*c = append(*c, path)
	return nil
}

func main() {
	var configs configFiles

	csvOutput := flag.Bool("csv", false, "Output results in CSV format")
	jsonOutput := flag.Bool("json", false, "Output results in JSON format")
	flag.Var(&configs, "config", "Predictor configuration JSON file (repeatable)")
	flag.Parse()

	config := benchmarks.DefaultConfig()
	config.Output = os.Stdout

	if len(configs) > 0 {
		config.Predictors = nil
		for _, path := range configs {
			c, err := predictor.LoadConfig(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error loading predictor config: %v\n", err)
				os.Exit(1)
			}
			config.Predictors = append(config.Predictors, c)
		}
	}

	harness := benchmarks.NewHarness(config)
	harness.AddBenchmarks(benchmarks.GetWorkloads())

	results, err := harness.RunAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	switch {
	case *jsonOutput:
		if err := harness.PrintJSON(results); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case *csvOutput:
		harness.PrintCSV(results)
	default:
		harness.PrintResults(results)
	}
}
