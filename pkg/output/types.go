// Package output provides formatting and output generation for analysis results.
package output

import (
	"time"

	"github.com/ccollicutt/gcstw/pkg/analyzer"
	"github.com/ccollicutt/gcstw/pkg/detector"
	"github.com/ccollicutt/gcstw/pkg/gclog"
)

// Report is the complete analysis output.
type Report struct {
	// Sources holds one entry per analyzed log, in analysis order.
	Sources []SourceReport `json:"sources"`

	// TotalPauseSeconds is the sum over all sources.
	TotalPauseSeconds float64 `json:"total_pause_seconds"`

	// Threshold is the configured limit in seconds; zero when unset.
	Threshold float64 `json:"stw_threshold,omitempty"`

	Metadata Metadata `json:"metadata"`
}

// SourceReport summarizes one log.
type SourceReport struct {
	Source            string            `json:"source"`
	Algorithm         gclog.Algorithm   `json:"algorithm"`
	Evidence          detector.Evidence `json:"evidence,omitempty"`
	TotalPauseSeconds float64           `json:"total_pause_seconds"`
	Stats             analyzer.Stats    `json:"stats"`

	// OpenAtEnd lists collections still waiting for a pause report when the log ended.
	OpenAtEnd gclog.EventKind `json:"open_at_end"`

	Pauses []analyzer.Pause `json:"pauses,omitempty"`
}

// Metadata provides context about the analysis run.
type Metadata struct {
	// ConfigFile is the path to the configuration file used, if any.
	ConfigFile string `json:"config_file,omitempty"`

	// AnalyzedAt is when the analysis finished.
	AnalyzedAt time.Time `json:"analyzed_at"`

	// Duration is how long the analysis took.
	Duration time.Duration `json:"duration"`
}

// NewReport creates a Report from per-source analysis results.
func NewReport(results []*analyzer.AnalysisResult, configFile string, threshold float64) *Report {
	report := &Report{
		Sources:           make([]SourceReport, 0, len(results)),
		TotalPauseSeconds: analyzer.TotalPauseSeconds(results),
		Threshold:         threshold,
		Metadata:          Metadata{ConfigFile: configFile},
	}

	var start, end time.Time
	for _, r := range results {
		sr := SourceReport{
			Source:            r.Source,
			Algorithm:         gclog.AlgorithmUnknown,
			TotalPauseSeconds: r.TotalPauseSeconds,
			Stats:             r.Stats,
			OpenAtEnd:         r.FinalState.OpenEvents(),
			Pauses:            r.Pauses,
		}
		if r.Detection != nil {
			sr.Algorithm = r.Detection.Algorithm
			sr.Evidence = r.Detection.Evidence
		}
		report.Sources = append(report.Sources, sr)

		if start.IsZero() || r.StartTime.Before(start) {
			start = r.StartTime
		}
		if r.EndTime.After(end) {
			end = r.EndTime
		}
	}

	report.Metadata.AnalyzedAt = end
	if !start.IsZero() {
		report.Metadata.Duration = end.Sub(start)
	}

	return report
}

// OverThreshold returns true if a threshold is set and the total exceeds it.
func (r *Report) OverThreshold() bool {
	return r.Threshold > 0 && r.TotalPauseSeconds > r.Threshold
}
