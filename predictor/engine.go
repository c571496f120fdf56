package predictor

import (
	"fmt"

	"github.com/sarchlab/akita/v4/sim"
)

// HookPosPredict marks the point after a record has been predicted and all
// predictor state has been updated. The hook item is a Prediction.
var HookPosPredict = &sim.HookPos{Name: "Predict"}

// Component identifies which sub-predictor produced a prediction.
type Component uint8

const (
	ComponentBimodal Component = iota + 1
	ComponentGshare
)

// String returns the component name.
func (c Component) String() string {
	switch c {
	case ComponentBimodal:
		return "bimodal"
	case ComponentGshare:
		return "gshare"
	}
	return "none"
}

// Prediction is the result of predicting and training on one trace record.
type Prediction struct {
	// Address is the branch PC.
	Address uint64
	// Outcome is the actual direction from the trace.
	Outcome Outcome
	// Taken is the authoritative predicted direction.
	Taken bool
	// Selected is the sub-predictor whose vote was used and trained.
	Selected Component
	// BimodalTaken and GshareTaken are the individual votes. For the
	// single-table variants only the selected one is meaningful.
	BimodalTaken bool
	GshareTaken  bool
	// Mispredicted is set when Taken disagreed with a valid Outcome.
	Mispredicted bool
}

// Engine owns the predictor tables, the global history register and the
// measurement counters for a single trace.
type Engine struct {
	sim.HookableBase

	config Config

	bimodal []Counter
	gshare  []Counter
	chooser []Counter

	// history holds the N most recent outcomes; the newest is bit N-1.
	history uint64

	predictions    uint64
	mispredictions uint64
}

// NewEngine validates the configuration and allocates the tables it needs.
func NewEngine(config Config) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid predictor config: %w", err)
	}

	e := &Engine{config: config}
	e.Reset()

	tracer().Infof("%s predictor: bimodal=%d gshare=%d chooser=%d history=%d bits",
		config.Variant, len(e.bimodal), len(e.gshare), len(e.chooser), e.historyBits())

	return e, nil
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() Config {
	return e.config
}

// Reset restores every table, the history register and the counters to their
// initial values.
func (e *Engine) Reset() {
	v := e.config.Variant
	if v.UsesBimodal() {
		e.bimodal = resetTable(e.bimodal, e.config.M2, WeaklyTaken)
	}
	if v.UsesGshare() {
		e.gshare = resetTable(e.gshare, e.config.M1, WeaklyTaken)
	}
	if v.UsesChooser() {
		// Biased towards bimodal at start.
		e.chooser = resetTable(e.chooser, e.config.K, WeaklyNotTaken)
	}

	e.history = 0
	e.predictions = 0
	e.mispredictions = 0
}

func resetTable(table []Counter, bits uint, init Counter) []Counter {
	if table == nil {
		return newTable(bits, init)
	}
	for i := range table {
		table[i] = init
	}
	return table
}

// PredictAndUpdate predicts the branch at addr, then trains the predictor
// with the actual outcome. Records must be supplied in trace order.
func (e *Engine) PredictAndUpdate(addr uint64, outcome Outcome) Prediction {
	var p Prediction

	switch e.config.Variant {
	case Bimodal:
		p = e.predictBimodal(addr, outcome)
	case Gshare:
		p = e.predictGshare(addr, outcome)
	case Hybrid:
		p = e.predictHybrid(addr, outcome)
	}

	if e.NumHooks() > 0 {
		e.InvokeHook(sim.HookCtx{
			Domain: e,
			Pos:    HookPosPredict,
			Item:   p,
		})
	}

	return p
}

func mask(bits uint) uint64 {
	return (uint64(1) << bits) - 1
}

// pcIndex drops the two alignment bits of the PC and keeps the low bits.
func pcIndex(addr uint64, bits uint) uint64 {
	return (addr >> 2) & mask(bits)
}

func (e *Engine) bimodalIndex(addr uint64) uint64 {
	return pcIndex(addr, e.config.M2)
}

// gshareIndex XORs the history register into the upper N bits of the M1 PC
// bits, keeping the lower M1-N bits as they are.
func (e *Engine) gshareIndex(addr uint64) uint64 {
	pc := pcIndex(addr, e.config.M1)
	n := e.historyBits()
	if n == 0 {
		return pc
	}

	low := e.config.M1 - n
	upper := pc >> low
	return ((upper ^ e.history) << low) | (pc & mask(low))
}

func (e *Engine) chooserIndex(addr uint64) uint64 {
	return pcIndex(addr, e.config.K)
}

func (e *Engine) historyBits() uint {
	if !e.config.Variant.UsesGshare() {
		return 0
	}
	return e.config.N
}

// updateHistory shifts the register right and inserts the outcome at bit
// N-1. With N=0 there is no register to update.
func (e *Engine) updateHistory(outcome Outcome) {
	n := e.historyBits()
	if n == 0 {
		return
	}

	var bit uint64
	if outcome == Taken {
		bit = 1
	}
	e.history = (e.history >> 1) | (bit << (n - 1))
}

// train applies the saturating update to table[idx] and records a
// misprediction if the vote was wrong.
func (e *Engine) train(table []Counter, idx uint64, predictTaken bool, outcome Outcome) bool {
	if !outcome.Valid() {
		return false
	}

	miss := !outcome.matches(predictTaken)
	if miss {
		e.mispredictions++
	}
	table[idx] = table[idx].Train(outcome)
	return miss
}

func (e *Engine) predictBimodal(addr uint64, outcome Outcome) Prediction {
	e.predictions++

	idx := e.bimodalIndex(addr)
	taken := e.bimodal[idx].Taken()
	miss := e.train(e.bimodal, idx, taken, outcome)

	return Prediction{
		Address:      addr,
		Outcome:      outcome,
		Taken:        taken,
		Selected:     ComponentBimodal,
		BimodalTaken: taken,
		Mispredicted: miss,
	}
}

func (e *Engine) predictGshare(addr uint64, outcome Outcome) Prediction {
	e.predictions++

	idx := e.gshareIndex(addr)
	taken := e.gshare[idx].Taken()
	miss := e.train(e.gshare, idx, taken, outcome)
	e.updateHistory(outcome)

	return Prediction{
		Address:      addr,
		Outcome:      outcome,
		Taken:        taken,
		Selected:     ComponentGshare,
		GshareTaken:  taken,
		Mispredicted: miss,
	}
}

func (e *Engine) predictHybrid(addr uint64, outcome Outcome) Prediction {
	e.predictions++

	// Both votes are read before either table is touched.
	gIdx := e.gshareIndex(addr)
	gTaken := e.gshare[gIdx].Taken()
	bIdx := e.bimodalIndex(addr)
	bTaken := e.bimodal[bIdx].Taken()

	cIdx := e.chooserIndex(addr)
	p := Prediction{
		Address:      addr,
		Outcome:      outcome,
		BimodalTaken: bTaken,
		GshareTaken:  gTaken,
	}

	if e.chooser[cIdx].Taken() {
		p.Selected = ComponentGshare
		p.Taken = gTaken
		p.Mispredicted = e.train(e.gshare, gIdx, gTaken, outcome)
	} else {
		p.Selected = ComponentBimodal
		p.Taken = bTaken
		p.Mispredicted = e.train(e.bimodal, bIdx, bTaken, outcome)
	}

	// The history follows the trace even when bimodal was selected.
	e.updateHistory(outcome)

	if outcome.Valid() {
		gRight := outcome.matches(gTaken)
		bRight := outcome.matches(bTaken)
		switch {
		case gRight && !bRight:
			e.chooser[cIdx] = e.chooser[cIdx].Inc()
		case bRight && !gRight:
			e.chooser[cIdx] = e.chooser[cIdx].Dec()
		}
	}

	return p
}

// History returns the current global history register.
func (e *Engine) History() uint64 {
	return e.history
}
