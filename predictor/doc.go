// Package predictor models the direction predictors evaluated by bpsim:
// a bimodal predictor, a gshare predictor and a hybrid predictor that uses a
// chooser table to arbitrate between the two.
//
// An Engine is built once from a validated Config and then fed retired
// branches, one record at a time and strictly in trace order, through
// PredictAndUpdate. The global history register and all tables carry state
// from one record to the next, so an Engine must never be shared between
// traces or goroutines.
package predictor

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'bpsim.predictor'
func tracer() tracing.Trace {
	return tracing.Select("bpsim.predictor")
}
