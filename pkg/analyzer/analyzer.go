package analyzer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ccollicutt/gcstw/pkg/detector"
	"github.com/ccollicutt/gcstw/pkg/parser"
)

// Analyzer runs the two passes over a log: collector detection, then pause
// accumulation. Detection is advisory; the total never depends on it.
type Analyzer struct {
	detectorOpts []detector.Option
	keepPauses   bool
}

// AnalyzerOption configures analyzer behavior.
type AnalyzerOption func(*Analyzer)

// WithDetectorOptions passes options to the collector detector.
func WithDetectorOptions(opts ...detector.Option) AnalyzerOption {
	return func(a *Analyzer) {
		a.detectorOpts = append(a.detectorOpts, opts...)
	}
}

// WithPauses records every counted pause in the result.
func WithPauses(keep bool) AnalyzerOption {
	return func(a *Analyzer) {
		a.keepPauses = keep
	}
}

// NewAnalyzer creates a new analyzer.
func NewAnalyzer(opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AnalysisResult contains the outcome of analyzing one log.
type AnalysisResult struct {
	// Source is the analyzed log.
	Source string

	// Detection is the collector detected in the first pass.
	Detection *detector.DetectionResult

	// TotalPauseSeconds is the accumulated stop-the-world time.
	TotalPauseSeconds float64

	// FinalState is the accumulator state at end of input. Flags may still be set.
	FinalState State

	// Stats counts what the accumulation pass saw.
	Stats Stats

	// Pauses lists counted pauses when WithPauses is enabled.
	Pauses []Pause

	// StartTime is when analysis began.
	StartTime time.Time

	// EndTime is when analysis completed.
	EndTime time.Time
}

// AnalyzeFile analyzes a single log file.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (*AnalysisResult, error) {
	return a.Analyze(ctx, path, parser.FileOpener(path))
}

// AnalyzeFiles analyzes each file independently, in order.
func (a *Analyzer) AnalyzeFiles(ctx context.Context, paths []string) ([]*AnalysisResult, error) {
	results := make([]*AnalysisResult, 0, len(paths))
	for _, path := range paths {
		result, err := a.AnalyzeFile(ctx, path)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

// Analyze opens the input twice: once for detection, once for accumulation.
func (a *Analyzer) Analyze(ctx context.Context, name string, open parser.Opener) (*AnalysisResult, error) {
	result := &AnalysisResult{
		Source:    name,
		StartTime: time.Now(),
	}

	det := detector.New(a.detectorOpts...)
	if err := runPass(ctx, open, det); err != nil {
		return nil, fmt.Errorf("detecting collector: %w", err)
	}
	result.Detection = det.Result()

	slog.Debug("detection pass complete",
		"source", name,
		"algorithm", result.Detection.Algorithm,
		"scanned", result.Detection.ScannedLines)

	acc := NewPauseAccumulator(WithPauseRecords(a.keepPauses))
	if err := runPass(ctx, open, acc); err != nil {
		return nil, fmt.Errorf("accumulating pauses: %w", err)
	}

	result.TotalPauseSeconds = acc.Total()
	result.FinalState = acc.State()
	result.Stats = acc.Stats()
	result.Pauses = acc.Pauses()
	result.EndTime = time.Now()

	slog.Info("analysis complete",
		"source", name,
		"algorithm", result.Detection.Algorithm,
		"total_pause_seconds", result.TotalPauseSeconds,
		"pauses", result.Stats.PausesCounted,
		"ignored", result.Stats.PausesIgnored,
		"lines", result.Stats.LinesProcessed,
		"duration", result.EndTime.Sub(result.StartTime))

	return result, nil
}

// runPass feeds a freshly opened source to engine until the engine is done
// or the source is exhausted.
func runPass(ctx context.Context, open parser.Opener, engine LineEngine) error {
	source, err := open()
	if err != nil {
		return err
	}
	defer source.Close()

	engine.Reset()
	for !engine.Done() {
		line, err := source.Next(ctx)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := engine.Process(ctx, line); err != nil {
			return err
		}
	}
	return nil
}

// TotalPauseSeconds sums the totals of several results.
func TotalPauseSeconds(results []*AnalysisResult) float64 {
	total := 0.0
	for _, r := range results {
		total += r.TotalPauseSeconds
	}
	return total
}
