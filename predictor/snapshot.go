package predictor

import "errors"

// ErrNoPredictions is returned when a rate is requested before any record
// has been predicted.
var ErrNoPredictions = errors.New("misprediction rate undefined: no predictions made")

// Snapshot is a copy of the engine's counters and tables. Tables the
// configured variant does not use are nil.
type Snapshot struct {
	Config         Config
	Predictions    uint64
	Mispredictions uint64
	History        uint64

	Chooser []Counter
	Gshare  []Counter
	Bimodal []Counter
}

// Snapshot copies the current engine state. It does not mutate the engine.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		Config:         e.config,
		Predictions:    e.predictions,
		Mispredictions: e.mispredictions,
		History:        e.history,
		Chooser:        copyTable(e.chooser),
		Gshare:         copyTable(e.gshare),
		Bimodal:        copyTable(e.bimodal),
	}
}

func copyTable(table []Counter) []Counter {
	if table == nil {
		return nil
	}
	out := make([]Counter, len(table))
	copy(out, table)
	return out
}

// MispredictionRate returns the misprediction rate as a percentage.
func (s Snapshot) MispredictionRate() (float64, error) {
	if s.Predictions == 0 {
		return 0, ErrNoPredictions
	}
	return 100 * float64(s.Mispredictions) / float64(s.Predictions), nil
}

// Table is one named predictor table, used for reporting.
type Table struct {
	Name     string
	Counters []Counter
}

// Tables returns the populated tables in report order: chooser, gshare,
// bimodal.
func (s Snapshot) Tables() []Table {
	var tables []Table
	if s.Chooser != nil {
		tables = append(tables, Table{Name: "chooser", Counters: s.Chooser})
	}
	if s.Gshare != nil {
		tables = append(tables, Table{Name: "gshare", Counters: s.Gshare})
	}
	if s.Bimodal != nil {
		tables = append(tables, Table{Name: "bimodal", Counters: s.Bimodal})
	}
	return tables
}
