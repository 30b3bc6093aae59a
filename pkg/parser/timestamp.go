package parser

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// ErrNoDateStamp is returned for lines that do not start with a JVM date stamp.
// Logs written without -XX:+PrintGCDateStamps only carry uptime seconds.
var ErrNoDateStamp = errors.New("no date stamp")

// dateStamp matches the -XX:+PrintGCDateStamps prefix, e.g. 2021-05-01T10:15:30.000+0000.
// Unified logging (-Xlog with the time decorator) wraps it in brackets and may
// write the offset with a colon.
var dateStamp = regexp.MustCompile(`^\[?(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3})([+-]\d{2}:?\d{2}|Z)`)

var offsetLayouts = map[int]string{
	1: "Z07:00",
	5: "-0700",
	6: "-07:00",
}

// DateStampParser reads the wall-clock time a GC log line was written.
type DateStampParser struct {
	pattern *regexp.Regexp
}

// NewDateStampParser creates a parser for JVM GC date stamps.
func NewDateStampParser() *DateStampParser {
	return &DateStampParser{pattern: dateStamp}
}

// Extract returns the date stamp at the start of line.
func (p *DateStampParser) Extract(line string) (time.Time, error) {
	m := p.pattern.FindStringSubmatch(line)
	if m == nil {
		return time.Time{}, ErrNoDateStamp
	}

	offsetLayout, ok := offsetLayouts[len(m[2])]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: offset %q", ErrNoDateStamp, m[2])
	}

	ts, err := time.Parse("2006-01-02T15:04:05.000"+offsetLayout, m[1]+m[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date stamp %q: %w", m[1]+m[2], err)
	}
	return ts, nil
}
