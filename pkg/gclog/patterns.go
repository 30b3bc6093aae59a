package gclog

import "regexp"

// Pattern is one line grammar recognized in GC logs.
type Pattern struct {
	Name       string         // Human-readable name
	Family     Algorithm      // Collector whose logs use this grammar
	Kind       EventKind      // Event signalled by a match
	PatternStr string         // Expression source, kept for diagnostics
	Pattern    *regexp.Regexp // Compiled form of PatternStr
	Example    string         // A line that matches
}

// Match reports whether line matches the pattern from its first character.
func (p *Pattern) Match(line string) bool {
	return p.Pattern.MatchString(line)
}

// Expressions are anchored with ^ because lines are matched from the start, not searched.
// Size fields are a number followed by a one-letter unit (B, K, M or G).
var (
	// G1Heap is the Eden/Survivors/Heap summary printed after each G1 pause.
	G1Heap = newPattern(
		"G1 heap transition",
		AlgorithmG1, EventMinorGC,
		`^\s*\[Eden: ([0-9.]+)([BKMG])\(([0-9.]+)([BKMG])\)->[0-9.BKMG()]+ Survivors: ([0-9.]+)([BKMG])->([0-9.]+)([BKMG]) Heap: ([0-9.]+)([BKMG])\([0-9.BKMG]+\)->([0-9.]+)([BKMG])\([0-9.BKMG]+\)`,
		"   [Eden: 24.0M(24.0M)->0.0B(13.0M) Survivors: 0.0B->3072.0K Heap: 24.0M(256.0M)->3939.5K(256.0M)]",
	)

	// ParallelYoung is a Parallel young collection: PSYoungGen then the whole heap.
	ParallelYoung = newPattern(
		"Parallel young transition",
		AlgorithmParallel, EventMinorGC,
		`^\s*\[PSYoungGen: ([0-9.]+)([BKMG])->([0-9.]+)([BKMG])\([0-9.MKBG]+\)\] ([0-9.]+)([MKBG])->([0-9.]+)([MKBG])\([0-9.MKBG]+\),`,
		"[PSYoungGen: 65536K->10720K(76288K)] 65536K->10736K(251392K), 0.0123456 secs]",
	)

	// ParallelFull is a Parallel full collection. The ParOldGen sizes are matched but not captured.
	ParallelFull = newPattern(
		"Parallel full transition",
		AlgorithmParallel, EventFullGC,
		`^\s*\[PSYoungGen: ([0-9.]+)([BKMG])->([0-9.]+)([BKMG])\([0-9.MKBG]+\)\] \[ParOldGen: [0-9.BKMG]+->[0-9.BKMG]+\([0-9.MKBG]+\)\] ([0-9.]+)([MKBG])->([0-9.]+)([MKBG])\([0-9.MKBG]+\),`,
		"[PSYoungGen: 10720K->0K(76288K)] [ParOldGen: 16K->10542K(175104K)] 10736K->10542K(251392K), [Metaspace: 3361K->3361K(1056768K)], 0.0456 secs]",
	)

	// CMSHeap is a ParNew young collection. It may appear anywhere on the line,
	// CMS logs prefix it with timestamps and the GC cause.
	CMSHeap = newPattern(
		"CMS ParNew transition",
		AlgorithmCMS, EventMinorGC,
		`^.*\[ParNew: ([0-9.]+)([BKMG])->([0-9.]+)([BKMG])\([0-9.BKMG]+\), [.0-9]+ secs\] ([0-9.]+)([BKMG])->([0-9.]+)([BKMG])\([0-9.BKMG]+\).*`,
		"2021-05-01T10:15:30.000+0000: 1.234: [GC (Allocation Failure) 2021-05-01T10:15:30.000+0000: 1.234: [ParNew: 34944K->4352K(39296K), 0.0138394 secs] 34944K->8532K(126720K), 0.0139214 secs]",
	)

	// PauseTime is the safepoint summary printed with -XX:+PrintGCApplicationStoppedTime.
	PauseTime = newPattern(
		"Application stopped time",
		AlgorithmUnknown, EventNone,
		`^[0-9-]*T[0-9]+:([0-9]+):.* threads were stopped: ([0-9.]+) seconds`,
		"2021-05-01T10:15:30.000+0000: 1.250: Total time for which application threads were stopped: 1.250 seconds, Stopping threads took: 0.0000 seconds",
	)

	// CommandLineFlags is the JVM header line listing the effective -XX flags.
	CommandLineFlags = newPattern(
		"Command line flags",
		AlgorithmUnknown, EventNone,
		`^CommandLine flags: .*`,
		"CommandLine flags: -XX:InitialHeapSize=268435456 -XX:+PrintGCDetails -XX:+UseG1GC",
	)
)

// EventPatterns returns the heap-transition grammars in the order they are tried
// when classifying a line for accumulation.
func EventPatterns() []*Pattern {
	return []*Pattern{G1Heap, ParallelYoung, ParallelFull, CMSHeap}
}

// FamilyPatterns returns the grammars used to infer the collector when no flags
// line is present, in precedence order. Parallel is recognized by its young
// transition only.
func FamilyPatterns() []*Pattern {
	return []*Pattern{G1Heap, CMSHeap, ParallelYoung}
}

// AllPatterns returns every grammar, for diagnostics.
func AllPatterns() []*Pattern {
	return []*Pattern{G1Heap, ParallelYoung, ParallelFull, CMSHeap, PauseTime, CommandLineFlags}
}

func newPattern(name string, family Algorithm, kind EventKind, expr, example string) *Pattern {
	return &Pattern{
		Name:       name,
		Family:     family,
		Kind:       kind,
		PatternStr: expr,
		Pattern:    regexp.MustCompile(expr),
		Example:    example,
	}
}
