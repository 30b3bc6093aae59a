// Package gclog recognizes the JVM garbage-collection log lines that gcstw cares about:
// heap transitions that mark a collection, pause-time reports and the command-line
// flags header that names the collector.
package gclog

import "strings"

// Algorithm identifies the garbage collector that produced a log.
type Algorithm string

const (
	AlgorithmUnknown  Algorithm = "unknown"
	AlgorithmG1       Algorithm = "g1"
	AlgorithmCMS      Algorithm = "cms"
	AlgorithmParallel Algorithm = "parallel"
)

// DisplayName returns the collector name as operators usually write it.
func (a Algorithm) DisplayName() string {
	switch a {
	case AlgorithmG1:
		return "G1"
	case AlgorithmCMS:
		return "CMS"
	case AlgorithmParallel:
		return "Parallel"
	default:
		return "Unknown"
	}
}

// EventKind is a set of collection events recognized on a single line.
// A line may match more than one heap-transition pattern, so kinds combine.
type EventKind uint8

const (
	// EventMinorGC marks a young-generation collection.
	EventMinorGC EventKind = 1 << iota
	// EventFullGC marks a collection of the whole heap.
	EventFullGC
)

// EventNone is the empty set: the line reported no collection.
const EventNone EventKind = 0

// Has reports whether all kinds in other are present in k.
func (k EventKind) Has(other EventKind) bool {
	return other != EventNone && k&other == other
}

// String returns a readable form such as "minor", "full" or "minor+full".
func (k EventKind) String() string {
	if k == EventNone {
		return "none"
	}
	var parts []string
	if k.Has(EventMinorGC) {
		parts = append(parts, "minor")
	}
	if k.Has(EventFullGC) {
		parts = append(parts, "full")
	}
	return strings.Join(parts, "+")
}

// MarshalText lets EventKind appear as a string in JSON reports.
func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// PauseReport is a "threads were stopped" line as matched, before its
// duration is interpreted.
type PauseReport struct {
	// Timestamp is the leading date-time field, up to the first ": ".
	Timestamp string

	// Minute is the minute field of the timestamp. It is captured for
	// compatibility with real logs and not used for accumulation.
	Minute string

	// Seconds is the raw captured duration text.
	Seconds string
}
