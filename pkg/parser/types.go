// Package parser provides log file reading functionality.
package parser

// LogLine is a single line of a log, consumed once and discarded.
type LogLine struct {
	// Content is the line text without its line terminator.
	Content string

	// Source is the file path (or reader name) this line came from.
	Source string

	// LineNum is the 1-based line number in the source.
	LineNum int
}
