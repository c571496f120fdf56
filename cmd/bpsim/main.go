// Package main provides the bpsim command line.
// bpsim replays a branch trace through a bimodal, gshare or hybrid predictor
// and reports its accuracy and final table contents.
//
// Usage:
//
//	bpsim [options] bimodal <M2> <tracefile>
//	bpsim [options] gshare <M1> <N> <tracefile>
//	bpsim [options] hybrid <K> <M1> <N> <M2> <tracefile>
//	bpsim [options] -config predictor.json <tracefile>
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/sarchlab/bpsim/predictor"
	"github.com/sarchlab/bpsim/report"
	"github.com/sarchlab/bpsim/results"
	"github.com/sarchlab/bpsim/trace"
)

var (
	configPath = flag.String("config", "", "Path to predictor configuration JSON file")
	jsonOutput = flag.Bool("json", false, "Print the report as JSON")
	dbPath     = flag.String("db", "", "Record the run in this SQLite database")
	profileTop = flag.Int("profile", 0, "Print the N most mispredicted branches")
	verbose    = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()

	config, tracePath, err := parseCommand(flag.Args(), *configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintf(os.Stderr, "\nUsage: bpsim [options] <bimodal|gshare|hybrid> <params...> <tracefile>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := run(os.Stdout, os.Args[0], config, tracePath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// parseCommand turns the positional arguments into a validated config and
// trace path. With a config file only the trace path is positional.
func parseCommand(args []string, configFile string) (predictor.Config, string, error) {
	if configFile != "" {
		if len(args) != 1 {
			return predictor.Config{}, "", fmt.Errorf("wrong number of inputs: %d", len(args))
		}
		config, err := predictor.LoadConfig(configFile)
		if err != nil {
			return predictor.Config{}, "", err
		}
		if err := config.Validate(); err != nil {
			return predictor.Config{}, "", err
		}
		return config, args[0], nil
	}

	if len(args) < 2 {
		return predictor.Config{}, "", fmt.Errorf("wrong number of inputs: %d", len(args))
	}

	variant, err := predictor.ParseVariant(args[0])
	if err != nil {
		return predictor.Config{}, "", err
	}

	want := predictor.ParamCount(variant)
	if len(args) != want+2 {
		return predictor.Config{}, "", fmt.Errorf("%s wrong number of inputs: %d", variant, len(args))
	}

	params := make([]uint, want)
	for i, text := range args[1 : want+1] {
		v, err := strconv.ParseUint(text, 10, 32)
		if err != nil {
			return predictor.Config{}, "", fmt.Errorf("%s parameter %d: %q is not a non-negative integer", variant, i+1, text)
		}
		params[i] = uint(v)
	}

	config, err := predictor.FromParams(variant, params)
	if err != nil {
		return predictor.Config{}, "", err
	}
	if err := config.Validate(); err != nil {
		return predictor.Config{}, "", err
	}

	return config, args[want+1], nil
}

// run replays the trace and writes the report to out.
func run(out io.Writer, program string, config predictor.Config, tracePath string) error {
	engine, err := predictor.NewEngine(config)
	if err != nil {
		return err
	}

	var profiler *predictor.BranchProfiler
	if *profileTop > 0 {
		profiler = predictor.NewBranchProfiler()
		engine.AcceptHook(profiler)
	}

	digest, err := trace.ReplayFile(engine, tracePath)
	if err != nil {
		return err
	}

	snapshot := engine.Snapshot()
	if snapshot.Predictions == 0 {
		return fmt.Errorf("trace %s contains no branches: %w", tracePath, predictor.ErrNoPredictions)
	}

	if *jsonOutput {
		r, err := report.New(snapshot, tracePath, digest)
		if err != nil {
			return err
		}
		if err := r.WriteJSON(out); err != nil {
			return err
		}
	} else {
		if err := report.WriteCommand(out, program, config, tracePath); err != nil {
			return err
		}
		if err := report.Write(out, snapshot); err != nil {
			return err
		}
	}

	if profiler != nil {
		printProfile(out, profiler.Top(*profileTop))
	}

	if *dbPath != "" {
		if err := recordRun(out, snapshot, tracePath, digest); err != nil {
			return err
		}
	}

	return nil
}

func printProfile(out io.Writer, top []predictor.BranchStats) {
	fmt.Fprintf(out, "MOST MISPREDICTED BRANCHES\n")
	for _, b := range top {
		fmt.Fprintf(out, " %x\t%d/%d\n", b.Address, b.Mispredictions, b.Predictions)
	}
}

func recordRun(out io.Writer, snapshot predictor.Snapshot, tracePath, digest string) error {
	store, err := results.Open(*dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	id, err := store.Record(ctx, results.NewRun(snapshot, tracePath, digest))
	if err != nil {
		return err
	}

	if !*verbose {
		return nil
	}

	runs, err := store.ForTrace(ctx, digest)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Recorded run %d in %s\n", id, *dbPath)
	fmt.Fprintf(out, "Runs on this trace (best first):\n")
	for _, r := range runs {
		rate, err := r.MispredictionRate()
		if errors.Is(err, predictor.ErrNoPredictions) {
			continue
		}
		fmt.Fprintf(out, "  #%-4d %-8s %v  %.2f%%\n", r.ID, r.Config.Variant, r.Config.Params(), rate)
	}
	return nil
}
