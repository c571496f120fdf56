package benchmarks

import (
	"math/rand"

	"github.com/sarchlab/bpsim/predictor"
	"github.com/sarchlab/bpsim/trace"
)

// GetWorkloads returns the standard set of synthetic workloads.
// Each workload targets a specific predictor behaviour.
func GetWorkloads() []Benchmark {
	return []Benchmark{
		alwaysTaken(4096),
		alternating(4096),
		loopExit(8, 512),
		correlatedPair(2048, 1),
		aliasingPair(2048),
	}
}

func outcome(taken bool) predictor.Outcome {
	if taken {
		return predictor.Taken
	}
	return predictor.NotTaken
}

// 1. Always Taken - every predictor should be perfect from the first record
func alwaysTaken(n int) Benchmark {
	records := make([]trace.Record, n)
	for i := range records {
		records[i] = trace.Record{Address: 0x400100, Outcome: predictor.Taken}
	}
	return Benchmark{
		Name:        "always_taken",
		Description: "single branch, always taken - initial bias check",
		Trace:       records,
	}
}

// 2. Alternating - defeats a per-address counter, trivial with history
func alternating(n int) Benchmark {
	records := make([]trace.Record, n)
	for i := range records {
		records[i] = trace.Record{Address: 0x400200, Outcome: outcome(i%2 == 0)}
	}
	return Benchmark{
		Name:        "alternating",
		Description: "single branch, T/N/T/N - needs global history",
		Trace:       records,
	}
}

// 3. Loop Exit - backward branch taken trip-1 times, then falls through
func loopExit(trip, iterations int) Benchmark {
	records := make([]trace.Record, 0, trip*iterations)
	for it := 0; it < iterations; it++ {
		for i := 0; i < trip; i++ {
			records = append(records, trace.Record{Address: 0x400300, Outcome: outcome(i < trip-1)})
		}
	}
	return Benchmark{
		Name:        "loop_exit",
		Description: "loop branch with a fixed trip count - one miss per exit for bimodal",
		Trace:       records,
	}
}

// 4. Correlated Pair - a random branch followed by one that repeats it
func correlatedPair(n int, seed int64) Benchmark {
	r := rand.New(rand.NewSource(seed))
	records := make([]trace.Record, 0, 2*n)
	for i := 0; i < n; i++ {
		o := outcome(r.Intn(2) == 0)
		records = append(records,
			trace.Record{Address: 0x400400, Outcome: o},
			trace.Record{Address: 0x400480, Outcome: o},
		)
	}
	return Benchmark{
		Name:        "correlated_pair",
		Description: "second branch copies a random first branch - history-predictable half",
		Trace:       records,
	}
}

// 5. Aliasing Pair - two opposite-biased branches 64KiB apart
func aliasingPair(n int) Benchmark {
	records := make([]trace.Record, 0, 2*n)
	for i := 0; i < n; i++ {
		records = append(records,
			trace.Record{Address: 0x400500, Outcome: predictor.Taken},
			trace.Record{Address: 0x410500, Outcome: predictor.NotTaken},
		)
	}
	return Benchmark{
		Name:        "aliasing_pair",
		Description: "taken and not-taken branches sharing low PC bits - table conflicts",
		Trace:       records,
	}
}
