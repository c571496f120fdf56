// Package report formats the final state of a predictor run.
package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/sugawarayuuta/sonnet"

	"github.com/sarchlab/bpsim/predictor"
)

// WriteCommand echoes the command line that produced a run.
func WriteCommand(w io.Writer, program string, config predictor.Config, tracePath string) error {
	parts := []string{program, config.Variant.String()}
	for _, p := range config.Params() {
		parts = append(parts, fmt.Sprint(p))
	}
	parts = append(parts, tracePath)

	_, err := fmt.Fprintf(w, "COMMAND\n%s\n", strings.Join(parts, " "))
	return err
}

// Write prints the counters, the misprediction rate and every populated
// table as index/value pairs. It fails with predictor.ErrNoPredictions if
// the snapshot has no predictions.
func Write(w io.Writer, s predictor.Snapshot) error {
	rate, err := s.MispredictionRate()
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "OUTPUT")
	fmt.Fprintf(bw, "number of predictions: %d\n", s.Predictions)
	fmt.Fprintf(bw, "number of mispredictions: %d\n", s.Mispredictions)
	fmt.Fprintf(bw, "misprediction rate: %.2f%%\n", rate)

	for _, t := range s.Tables() {
		fmt.Fprintf(bw, "FINAL %s CONTENTS\n", strings.ToUpper(t.Name))
		for i, v := range t.Counters {
			fmt.Fprintf(bw, " %d\t%d\n", i, v)
		}
	}

	return bw.Flush()
}

// Table is the JSON form of a predictor table.
type Table struct {
	Name     string `json:"name"`
	Counters []int  `json:"counters"`
}

// Report is the JSON form of a run.
type Report struct {
	Config            predictor.Config `json:"config"`
	Trace             string           `json:"trace,omitempty"`
	TraceDigest       string           `json:"trace_sha3,omitempty"`
	Predictions       uint64           `json:"predictions"`
	Mispredictions    uint64           `json:"mispredictions"`
	MispredictionRate float64          `json:"misprediction_rate"`
	Tables            []Table          `json:"tables"`
}

// New builds a Report from a snapshot.
func New(s predictor.Snapshot, tracePath, digest string) (*Report, error) {
	rate, err := s.MispredictionRate()
	if err != nil {
		return nil, err
	}

	r := &Report{
		Config:            s.Config,
		Trace:             tracePath,
		TraceDigest:       digest,
		Predictions:       s.Predictions,
		Mispredictions:    s.Mispredictions,
		MispredictionRate: rate,
	}
	for _, t := range s.Tables() {
		counters := make([]int, len(t.Counters))
		for i, v := range t.Counters {
			counters[i] = int(v)
		}
		r.Tables = append(r.Tables, Table{Name: t.Name, Counters: counters})
	}

	return r, nil
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	data, err := sonnet.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	_, err = w.Write(append(data, '\n'))
	return err
}
