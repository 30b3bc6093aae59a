package analyzer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ccollicutt/gcstw/pkg/gclog"
	"github.com/ccollicutt/gcstw/pkg/parser"
)

// PauseAccumulator implements LineEngine for summing stop-the-world time.
// It pairs each collection event with the next pause report and keeps the
// running total. It never finishes early: every line is examined.
type PauseAccumulator struct {
	keepPauses bool
	timestamps *parser.DateStampParser

	// State
	state  State
	stats  Stats
	pauses []Pause
}

// AccumulatorOption configures a PauseAccumulator.
type AccumulatorOption func(*PauseAccumulator)

// WithPauseRecords keeps a record of every counted pause.
func WithPauseRecords(keep bool) AccumulatorOption {
	return func(a *PauseAccumulator) {
		a.keepPauses = keep
	}
}

// NewPauseAccumulator creates an accumulator starting from a zero total.
func NewPauseAccumulator(opts ...AccumulatorOption) *PauseAccumulator {
	a := &PauseAccumulator{
		timestamps: parser.NewDateStampParser(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Process handles a single log line.
func (a *PauseAccumulator) Process(_ context.Context, line *parser.LogLine) error {
	a.stats.LinesProcessed++

	next, step, err := Advance(a.state, line.Content)
	if err != nil {
		return fmt.Errorf("%s:%d: %w", line.Source, line.LineNum, err)
	}
	a.state = next

	if step.Events.Has(gclog.EventMinorGC) {
		a.stats.MinorEvents++
	}
	if step.Events.Has(gclog.EventFullGC) {
		a.stats.FullEvents++
	}
	if !step.Report {
		return nil
	}

	a.stats.PauseReports++
	if !step.Counted {
		a.stats.PausesIgnored++
		return nil
	}
	a.stats.PausesCounted++

	slog.Debug("pause counted",
		"seconds", step.Seconds,
		"closed", step.Closed,
		"total", a.state.TotalPauseSeconds,
		"source", line.Source,
		"line", line.LineNum)

	if a.keepPauses {
		pause := Pause{
			Seconds: step.Seconds,
			Closed:  step.Closed,
			Source:  line.Source,
			LineNum: line.LineNum,
		}
		if ts, err := a.timestamps.Extract(line.Content); err == nil {
			pause.Timestamp = &ts
		}
		a.pauses = append(a.pauses, pause)
	}

	return nil
}

// Done always returns false; the total needs the whole log.
func (a *PauseAccumulator) Done() bool {
	return false
}

// Reset clears internal state for reuse.
func (a *PauseAccumulator) Reset() {
	a.state = State{}
	a.stats = Stats{}
	a.pauses = nil
}

// State returns the current accumulation state.
func (a *PauseAccumulator) State() State {
	return a.state
}

// Stats returns the counters gathered so far.
func (a *PauseAccumulator) Stats() Stats {
	return a.stats
}

// Pauses returns the counted pauses, if WithPauseRecords was enabled.
func (a *PauseAccumulator) Pauses() []Pause {
	return a.pauses
}

// Total returns the accumulated stop-the-world seconds.
func (a *PauseAccumulator) Total() float64 {
	return a.state.TotalPauseSeconds
}
