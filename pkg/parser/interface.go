package parser

import (
	"context"
)

// LogSource provides an iterator over log lines.
// Implementations must be safe for sequential access (not concurrent).
type LogSource interface {
	// Next returns the next log line.
	// Returns io.EOF when no more lines are available.
	Next(ctx context.Context) (*LogLine, error)

	// Close releases any resources held by the source.
	Close() error
}

// Opener creates a fresh LogSource positioned at the first line.
// Analyses that scan the same input more than once call it once per pass.
type Opener func() (LogSource, error)

// FileOpener returns an Opener that reads the given file from the start.
func FileOpener(path string) Opener {
	return func() (LogSource, error) {
		return NewFileSource([]string{path}), nil
	}
}
