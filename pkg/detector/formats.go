package detector

import (
	"regexp"

	"github.com/ccollicutt/gcstw/pkg/gclog"
)

// CollectorFlag is a JVM option that selects a garbage collector.
type CollectorFlag struct {
	Algorithm gclog.Algorithm
	Flag      string         // Option as written on the command line
	Pattern   *regexp.Regexp // Compiled search for Flag (set during init)
}

// DefaultCollectorFlags returns the collector-selection options checked on a
// "CommandLine flags:" line, in precedence order. The three are mutually
// exclusive on a real JVM; the first one found decides.
func DefaultCollectorFlags() []*CollectorFlag {
	flags := []*CollectorFlag{
		{Algorithm: gclog.AlgorithmG1, Flag: "-XX:+UseG1GC"},
		{Algorithm: gclog.AlgorithmCMS, Flag: "-XX:+UseConcMarkSweepGC"},
		{Algorithm: gclog.AlgorithmParallel, Flag: "-XX:+UseParallelGC"},
	}

	for _, f := range flags {
		f.Pattern = regexp.MustCompile(regexp.QuoteMeta(f.Flag))
	}

	return flags
}
