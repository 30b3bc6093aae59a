package analyzer

import (
	"fmt"
	"strconv"

	"github.com/ccollicutt/gcstw/pkg/gclog"
)

// State is the accumulation state threaded through a scan by value.
// The two flags are independent: a full and a minor collection can both be
// open when their pause report arrives.
type State struct {
	InMinorGC         bool
	InFullGC          bool
	TotalPauseSeconds float64
}

// Open reports whether a collection is waiting for its pause report.
func (s State) Open() bool {
	return s.InMinorGC || s.InFullGC
}

// OpenEvents returns the collections still waiting for a pause report.
func (s State) OpenEvents() gclog.EventKind {
	kind := gclog.EventNone
	if s.InMinorGC {
		kind |= gclog.EventMinorGC
	}
	if s.InFullGC {
		kind |= gclog.EventFullGC
	}
	return kind
}

// Step describes what a single line did to the state.
type Step struct {
	// Events are the collections the line signalled.
	Events gclog.EventKind

	// Report is true if the line matched the pause-report grammar.
	Report bool

	// Counted is true if the report was added to the total.
	Counted bool

	// Closed is the flag the counted report cleared.
	Closed gclog.EventKind

	// Seconds is the counted duration.
	Seconds float64

	// PauseReport is the matched report text.
	PauseReport gclog.PauseReport
}

// Advance applies one line to s and returns the new state.
//
// Event classification runs first, then the pause report test on the same
// line. A report counts only while a collection is open; it then clears the
// full flag if set, otherwise the minor flag.
func Advance(s State, line string) (State, Step, error) {
	step := Step{Events: gclog.ClassifyEvent(line)}

	if step.Events.Has(gclog.EventMinorGC) {
		s.InMinorGC = true
	}
	if step.Events.Has(gclog.EventFullGC) {
		s.InFullGC = true
	}

	report, ok := gclog.ParsePauseReport(line)
	if !ok {
		return s, step, nil
	}
	step.Report = true
	step.PauseReport = report

	if !s.Open() {
		return s, step, nil
	}

	seconds, err := strconv.ParseFloat(report.Seconds, 64)
	if err != nil {
		return s, step, fmt.Errorf("%w: %q", ErrMalformedPause, report.Seconds)
	}

	s.TotalPauseSeconds += seconds
	if s.InFullGC {
		s.InFullGC = false
		step.Closed = gclog.EventFullGC
	} else {
		s.InMinorGC = false
		step.Closed = gclog.EventMinorGC
	}
	step.Counted = true
	step.Seconds = seconds

	return s, step, nil
}

// Fold advances an initial zero state over lines and returns the final state.
func Fold(lines []string) (State, error) {
	var s State
	for i, line := range lines {
		var err error
		if s, _, err = Advance(s, line); err != nil {
			return s, fmt.Errorf("line %d: %w", i+1, err)
		}
	}
	return s, nil
}

// FormatSeconds renders a pause total the way the result line prints it:
// shortest exact decimal form, no exponent ("0", "1.25", "4").
func FormatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
