// Package analyzer accumulates stop-the-world pause time from GC logs.
package analyzer

import (
	"errors"
	"time"

	"github.com/ccollicutt/gcstw/pkg/gclog"
)

// ErrMalformedPause is returned when a pause report that should be counted
// carries a duration that is not a number. Dropping it would under-count.
var ErrMalformedPause = errors.New("malformed pause duration")

// Pause is one pause report that was added to the total.
type Pause struct {
	// Seconds is the reported stop-the-world duration.
	Seconds float64 `json:"seconds"`

	// Closed is the open collection the report was attributed to.
	Closed gclog.EventKind `json:"closed"`

	// Source is the log file of the report line.
	Source string `json:"source,omitempty"`

	// LineNum is the line number of the report.
	LineNum int `json:"line_num"`

	// Timestamp is the report's date stamp, if it carries a parseable one.
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// Stats counts what the accumulation pass saw.
type Stats struct {
	// LinesProcessed is the total number of log lines examined.
	LinesProcessed int `json:"lines_processed"`

	// MinorEvents is the number of lines that signalled a minor collection.
	MinorEvents int `json:"minor_events"`

	// FullEvents is the number of lines that signalled a full collection.
	FullEvents int `json:"full_events"`

	// PauseReports is the number of lines matching the pause-report grammar.
	PauseReports int `json:"pause_reports"`

	// PausesCounted is the number of reports added to the total.
	PausesCounted int `json:"pauses_counted"`

	// PausesIgnored is the number of reports seen with no collection open,
	// such as safepoints for deoptimization or biased lock revocation.
	PausesIgnored int `json:"pauses_ignored"`
}
