// Package benchmarks provides synthetic branch workloads and a harness that
// compares predictor configurations on them.
package benchmarks

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sugawarayuuta/sonnet"

	"github.com/sarchlab/bpsim/predictor"
	"github.com/sarchlab/bpsim/trace"
)

// BenchmarkResult holds the outcome of one workload on one predictor.
type BenchmarkResult struct {
	// Name identifies the workload
	Name string `json:"name"`

	// Description explains what the workload exercises
	Description string `json:"description"`

	// Config is the predictor configuration the workload ran on
	Config predictor.Config `json:"config"`

	// Predictions is the number of branches replayed
	Predictions uint64 `json:"predictions"`

	// Mispredictions is the number of wrong predictions
	Mispredictions uint64 `json:"mispredictions"`

	// MispredictionRate is Mispredictions/Predictions as a percentage
	MispredictionRate float64 `json:"misprediction_rate"`

	// WallTime is the actual time taken to replay the workload
	WallTime time.Duration `json:"wall_time_ns"`
}

// Benchmark defines a single synthetic workload.
type Benchmark struct {
	// Name identifies the workload
	Name string

	// Description explains what the workload exercises
	Description string

	// Trace is the branch stream to replay
	Trace []trace.Record
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// Predictors are the configurations every workload runs on
	Predictors []predictor.Config

	// Output is where to write results (default: os.Stdout)
	Output io.Writer
}

// DefaultConfig returns one configuration of each predictor with
// comparable storage.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		Predictors: []predictor.Config{
			predictor.BimodalConfig(10),
			predictor.GshareConfig(10, 6),
			predictor.HybridConfig(8, 10, 6, 10),
		},
		Output: os.Stdout,
	}
}

// Harness runs workloads and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	return &Harness{
		config:     config,
		benchmarks: []Benchmark{},
	}
}

// AddBenchmark adds a workload to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple workloads to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll runs every workload on every predictor, workload-major.
func (h *Harness) RunAll() ([]BenchmarkResult, error) {
	results := make([]BenchmarkResult, 0, len(h.benchmarks)*len(h.config.Predictors))

	for _, bench := range h.benchmarks {
		for _, config := range h.config.Predictors {
			result, err := Run(bench, config)
			if err != nil {
				return nil, err
			}
			results = append(results, result)
		}
	}

	return results, nil
}

// Run replays one workload on a fresh engine.
func Run(bench Benchmark, config predictor.Config) (BenchmarkResult, error) {
	e, err := predictor.NewEngine(config)
	if err != nil {
		return BenchmarkResult{}, err
	}

	start := time.Now()
	for _, rec := range bench.Trace {
		e.PredictAndUpdate(rec.Address, rec.Outcome)
	}
	wall := time.Since(start)

	s := e.Snapshot()
	rate, err := s.MispredictionRate()
	if err != nil {
		return BenchmarkResult{}, fmt.Errorf("benchmark %s: %w", bench.Name, err)
	}

	return BenchmarkResult{
		Name:              bench.Name,
		Description:       bench.Description,
		Config:            config,
		Predictions:       s.Predictions,
		Mispredictions:    s.Mispredictions,
		MispredictionRate: rate,
		WallTime:          wall,
	}, nil
}

func configLabel(c predictor.Config) string {
	label := c.Variant.String()
	for _, p := range c.Params() {
		label += fmt.Sprintf(" %d", p)
	}
	return label
}

// PrintResults outputs benchmark results in a human-readable format.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output, "=== Branch Predictor Benchmark Results ===")
	_, _ = fmt.Fprintln(h.config.Output, "")

	last := ""
	for _, r := range results {
		if r.Name != last {
			if last != "" {
				_, _ = fmt.Fprintln(h.config.Output, "")
			}
			_, _ = fmt.Fprintf(h.config.Output, "Benchmark: %s\n", r.Name)
			_, _ = fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
			last = r.Name
		}
		_, _ = fmt.Fprintf(h.config.Output, "  %-22s %8d / %8d  %6.2f%%  (%v)\n",
			configLabel(r.Config), r.Mispredictions, r.Predictions, r.MispredictionRate, r.WallTime)
	}
	_, _ = fmt.Fprintln(h.config.Output, "")
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,predictor,k,m1,n,m2,predictions,mispredictions,misprediction_rate")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%s,%d,%d,%d,%d,%d,%d,%.2f\n",
			r.Name,
			r.Config.Variant,
			r.Config.K,
			r.Config.M1,
			r.Config.N,
			r.Config.M2,
			r.Predictions,
			r.Mispredictions,
			r.MispredictionRate,
		)
	}
}

// PrintJSON outputs benchmark results as indented JSON.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	data, err := sonnet.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(h.config.Output, string(data))
	return err
}
