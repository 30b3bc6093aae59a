package output

import (
	"context"
	"fmt"
	"io"

	"github.com/ccollicutt/gcstw/pkg/analyzer"
	"github.com/ccollicutt/gcstw/pkg/gclog"
)

// TotalLinePrefix starts the line carrying the grand total.
const TotalLinePrefix = "TOTAL GC STW TIME "

// TextFormatter formats reports as human-readable text. With default options and
// a single source the output is exactly one line: "TOTAL GC STW TIME <seconds>".
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	if !f.opts.Quiet && len(report.Sources) > 1 {
		for _, src := range report.Sources {
			if _, err := fmt.Fprintf(w, "GC STW TIME %s %s\n", src.Source, analyzer.FormatSeconds(src.TotalPauseSeconds)); err != nil {
				return err
			}
		}
	}

	if _, err := fmt.Fprintf(w, "%s%s\n", TotalLinePrefix, analyzer.FormatSeconds(report.TotalPauseSeconds)); err != nil {
		return err
	}

	if f.opts.Quiet || !f.opts.Verbose {
		return nil
	}
	return f.formatDetails(report, w)
}

func (f *TextFormatter) formatDetails(report *Report, w io.Writer) error {
	fmt.Fprintln(w, "---")
	for _, src := range report.Sources {
		fmt.Fprintf(w, "[%s]\n", src.Source)
		if src.Evidence != "" {
			fmt.Fprintf(w, "  Collector: %s (%s)\n", src.Algorithm.DisplayName(), src.Evidence)
		} else {
			fmt.Fprintf(w, "  Collector: %s\n", src.Algorithm.DisplayName())
		}
		fmt.Fprintf(w, "  Lines: %d, minor events: %d, full events: %d\n",
			src.Stats.LinesProcessed, src.Stats.MinorEvents, src.Stats.FullEvents)
		fmt.Fprintf(w, "  Pause reports: %d (%d counted, %d ignored)\n",
			src.Stats.PauseReports, src.Stats.PausesCounted, src.Stats.PausesIgnored)
		if src.OpenAtEnd != gclog.EventNone {
			fmt.Fprintf(w, "  Unpaired at end of log: %s\n", src.OpenAtEnd)
		}
		for _, p := range src.Pauses {
			fmt.Fprintf(w, "    line %d: %s (%s)\n", p.LineNum, analyzer.FormatSeconds(p.Seconds), p.Closed)
		}
	}

	if report.Threshold > 0 {
		status := "ok"
		if report.OverThreshold() {
			status = "exceeded"
		}
		fmt.Fprintf(w, "Threshold: %s (%s)\n", analyzer.FormatSeconds(report.Threshold), status)
	}
	_, err := fmt.Fprintf(w, "Duration: %s\n", report.Metadata.Duration.Round(1e6))
	return err
}
