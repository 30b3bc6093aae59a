package analyzer

import (
	"context"

	"github.com/ccollicutt/gcstw/pkg/parser"
)

// LineEngine consumes log lines one at a time during a single pass.
// The collector detector and the pause accumulator both implement it.
type LineEngine interface {
	// Process handles a single log line, updating internal state.
	// Returns nil on success, error on fatal problems.
	Process(ctx context.Context, line *parser.LogLine) error

	// Done reports that the engine needs no further lines.
	Done() bool

	// Reset clears internal state for reuse.
	Reset()
}
