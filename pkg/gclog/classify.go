package gclog

import "strings"

// ClassifyEvent returns the collection events signalled by line.
// Every heap-transition pattern is tried; a line is not assumed to match only one family.
func ClassifyEvent(line string) EventKind {
	kind := EventNone
	for _, p := range EventPatterns() {
		if p.Match(line) {
			kind |= p.Kind
		}
	}
	return kind
}

// DetectFamily returns the collector whose heap-transition grammar matches line,
// trying G1, then CMS, then Parallel. It returns AlgorithmUnknown and a nil pattern
// when nothing matches.
func DetectFamily(line string) (Algorithm, *Pattern) {
	for _, p := range FamilyPatterns() {
		if p.Match(line) {
			return p.Family, p
		}
	}
	return AlgorithmUnknown, nil
}

// IsFlagsLine reports whether line is the JVM "CommandLine flags:" header.
func IsFlagsLine(line string) bool {
	return CommandLineFlags.Match(line)
}

// ParsePauseReport matches a "threads were stopped" line. The duration is returned
// as text; interpreting it is left to the caller, which may ignore the report.
func ParsePauseReport(line string) (PauseReport, bool) {
	m := PauseTime.Pattern.FindStringSubmatch(line)
	if m == nil {
		return PauseReport{}, false
	}
	ts, _, _ := strings.Cut(line, ": ")
	return PauseReport{
		Timestamp: ts,
		Minute:    m[1],
		Seconds:   m[2],
	}, true
}
