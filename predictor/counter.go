package predictor

// Counter is a 2-bit saturating counter.
// States: 0=Strongly Not Taken, 1=Weakly Not Taken,
//
//	2=Weakly Taken, 3=Strongly Taken
type Counter uint8

const (
	StronglyNotTaken Counter = iota
	WeaklyNotTaken
	WeaklyTaken
	StronglyTaken
)

// Taken reports whether the counter predicts the branch taken.
func (c Counter) Taken() bool {
	return c >= WeaklyTaken
}

// Inc returns the counter moved one step towards taken, saturating at 3.
func (c Counter) Inc() Counter {
	if c < StronglyTaken {
		return c + 1
	}
	return c
}

// Dec returns the counter moved one step towards not taken, saturating at 0.
func (c Counter) Dec() Counter {
	if c > StronglyNotTaken {
		return c - 1
	}
	return c
}

// Train moves the counter towards the actual outcome. Unknown outcomes leave
// it untouched.
func (c Counter) Train(outcome Outcome) Counter {
	switch outcome {
	case Taken:
		return c.Inc()
	case NotTaken:
		return c.Dec()
	}
	return c
}

// Outcome is the resolved direction of a retired branch.
type Outcome uint8

const (
	// OutcomeUnknown marks a record whose outcome token was not recognized.
	OutcomeUnknown Outcome = iota
	Taken
	NotTaken
)

// ParseOutcome converts a trace token ("t" or "n") into an Outcome.
func ParseOutcome(token string) (Outcome, bool) {
	switch token {
	case "t":
		return Taken, true
	case "n":
		return NotTaken, true
	}
	return OutcomeUnknown, false
}

// Valid reports whether o is Taken or NotTaken.
func (o Outcome) Valid() bool {
	return o == Taken || o == NotTaken
}

// String returns the trace token for the outcome.
func (o Outcome) String() string {
	switch o {
	case Taken:
		return "t"
	case NotTaken:
		return "n"
	}
	return "?"
}

// matches reports whether a predicted direction agrees with the outcome.
// Unknown outcomes never match and never mismatch; callers check Valid first.
func (o Outcome) matches(predictTaken bool) bool {
	return (o == Taken) == predictTaken
}

func newTable(bits uint, init Counter) []Counter {
	table := make([]Counter, 1<<bits)
	for i := range table {
		table[i] = init
	}
	return table
}
