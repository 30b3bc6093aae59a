// Package detector identifies which garbage collector produced a GC log.
package detector

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/ccollicutt/gcstw/pkg/gclog"
	"github.com/ccollicutt/gcstw/pkg/parser"
)

// Evidence names the kind of line that decided the detection.
type Evidence string

const (
	EvidenceNone           Evidence = ""
	EvidenceFlags          Evidence = "command_line_flags"
	EvidenceHeapTransition Evidence = "heap_transition"
)

// DetectionResult holds the outcome of scanning a log for its collector.
type DetectionResult struct {
	Algorithm    gclog.Algorithm `json:"algorithm"`         // AlgorithmUnknown if nothing decided
	Evidence     Evidence        `json:"evidence,omitempty"` // What kind of line decided
	Matched      string          `json:"matched,omitempty"`  // Flag or pattern name that matched
	Line         string          `json:"line,omitempty"`     // Deciding line
	LineNum      int             `json:"line_num,omitempty"` // 1-based number of the deciding line
	Source       string          `json:"source,omitempty"`   // File the deciding line came from
	ScannedLines int             `json:"scanned_lines"`      // Lines examined before stopping
}

// Detected returns true if a collector was identified.
func (r *DetectionResult) Detected() bool {
	return r.Algorithm != gclog.AlgorithmUnknown
}

// Detector scans log lines until one of them identifies the collector.
// The first decision is final: later lines are not examined.
type Detector struct {
	flags    []*CollectorFlag
	maxLines int

	result DetectionResult
	done   bool
}

// Option configures the Detector.
type Option func(*Detector)

// WithMaxLines stops the scan after n lines (default 0, meaning no limit).
func WithMaxLines(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.maxLines = n
		}
	}
}

// New creates a new Detector with the default collector flags.
func New(opts ...Option) *Detector {
	d := &Detector{
		flags: DefaultCollectorFlags(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.Reset()
	return d
}

// Process examines one line. It does nothing once Done reports true.
func (d *Detector) Process(_ context.Context, line *parser.LogLine) error {
	if d.done {
		return nil
	}
	d.result.ScannedLines++

	if gclog.IsFlagsLine(line.Content) {
		for _, f := range d.flags {
			if f.Pattern.MatchString(line.Content) {
				d.decide(f.Algorithm, EvidenceFlags, f.Flag, line)
				return nil
			}
		}
		// A flags line without a selector falls through to the heap patterns
	}

	if alg, p := gclog.DetectFamily(line.Content); p != nil {
		d.decide(alg, EvidenceHeapTransition, p.Name, line)
		return nil
	}

	if d.maxLines > 0 && d.result.ScannedLines >= d.maxLines {
		d.done = true
	}
	return nil
}

func (d *Detector) decide(alg gclog.Algorithm, ev Evidence, matched string, line *parser.LogLine) {
	d.result.Algorithm = alg
	d.result.Evidence = ev
	d.result.Matched = matched
	d.result.Line = line.Content
	d.result.LineNum = line.LineNum
	d.result.Source = line.Source
	d.done = true

	slog.Debug("collector detected",
		"algorithm", alg,
		"evidence", ev,
		"matched", matched,
		"source", line.Source,
		"line", line.LineNum)
}

// Done reports whether the detector has reached a decision or its line limit.
func (d *Detector) Done() bool {
	return d.done
}

// Reset clears the decision for reuse.
func (d *Detector) Reset() {
	d.result = DetectionResult{Algorithm: gclog.AlgorithmUnknown}
	d.done = false
}

// Result returns a copy of the current detection result.
func (d *Detector) Result() *DetectionResult {
	r := d.result
	return &r
}

// DetectFromLines analyzes a slice of log lines.
func (d *Detector) DetectFromLines(lines []string) *DetectionResult {
	d.Reset()
	ctx := context.Background()
	for i, content := range lines {
		if d.done {
			break
		}
		_ = d.Process(ctx, &parser.LogLine{Content: content, LineNum: i + 1})
	}
	return d.Result()
}

// DetectFromSource reads lines from source until a decision is made or the
// source is exhausted. Reaching the end without a decision is not an error.
func (d *Detector) DetectFromSource(ctx context.Context, source parser.LogSource) (*DetectionResult, error) {
	d.Reset()
	for !d.done {
		line, err := source.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := d.Process(ctx, line); err != nil {
			return nil, err
		}
	}
	return d.Result(), nil
}

// DetectFromFile analyzes a log file and returns the detected collector.
func (d *Detector) DetectFromFile(ctx context.Context, path string) (*DetectionResult, error) {
	source := parser.NewFileSource([]string{path})
	defer source.Close()

	result, err := d.DetectFromSource(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("detecting collector in %s: %w", path, err)
	}
	return result, nil
}
