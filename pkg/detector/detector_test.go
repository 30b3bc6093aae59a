package detector

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ccollicutt/gcstw/pkg/gclog"
	"github.com/ccollicutt/gcstw/pkg/parser"
)

const (
	g1Line    = "   [Eden: 24.0M(24.0M)->0.0B(13.0M) Survivors: 0.0B->3072.0K Heap: 24.0M(256.0M)->3939.5K(256.0M)]"
	youngLine = "[PSYoungGen: 65536K->10720K(76288K)] 65536K->10736K(251392K), 0.0123456 secs]"
	fullLine  = "[PSYoungGen: 10720K->0K(76288K)] [ParOldGen: 16K->10542K(175104K)] 10736K->10542K(251392K), 0.0456 secs]"
	cmsLine   = "2021-05-01T10:15:30.000+0000: 1.234: [GC (Allocation Failure) [ParNew: 34944K->4352K(39296K), 0.0138394 secs] 34944K->8532K(126720K), 0.0139214 secs]"
)

func TestDetector_DetectFromLines_FlagsLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want gclog.Algorithm
	}{
		{"g1", "CommandLine flags: -XX:InitialHeapSize=268435456 -XX:+UseG1GC", gclog.AlgorithmG1},
		{"cms", "CommandLine flags: -XX:+UseConcMarkSweepGC -XX:+UseParNewGC", gclog.AlgorithmCMS},
		{"parallel", "CommandLine flags: -XX:+PrintGCDetails -XX:+UseParallelGC", gclog.AlgorithmParallel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := New().DetectFromLines([]string{tt.line})

			if result.Algorithm != tt.want {
				t.Errorf("Algorithm = %v, want %v", result.Algorithm, tt.want)
			}
			if result.Evidence != EvidenceFlags {
				t.Errorf("Evidence = %q, want %q", result.Evidence, EvidenceFlags)
			}
			if result.LineNum != 1 {
				t.Errorf("LineNum = %d, want 1", result.LineNum)
			}
		})
	}
}

func TestDetector_FlagsLineStopsScan(t *testing.T) {
	lines := []string{
		"Java HotSpot(TM) 64-Bit Server VM (25.292-b10)",
		"CommandLine flags: -XX:+UseParallelGC",
		g1Line, // Never examined
	}

	result := New().DetectFromLines(lines)

	if result.Algorithm != gclog.AlgorithmParallel {
		t.Errorf("Algorithm = %v, want parallel", result.Algorithm)
	}
	if result.ScannedLines != 2 {
		t.Errorf("ScannedLines = %d, want 2", result.ScannedLines)
	}
}

func TestDetector_FlagPrecedence(t *testing.T) {
	// Not a real JVM command line, but order must be deterministic
	line := "CommandLine flags: -XX:+UseParallelGC -XX:+UseConcMarkSweepGC -XX:+UseG1GC"
	result := New().DetectFromLines([]string{line})

	if result.Algorithm != gclog.AlgorithmG1 {
		t.Errorf("Algorithm = %v, want g1", result.Algorithm)
	}
}

func TestDetector_FlagsLineWithoutSelector(t *testing.T) {
	lines := []string{
		"CommandLine flags: -XX:+PrintGCDetails -XX:+UseParallelOldGC",
		cmsLine,
	}

	result := New().DetectFromLines(lines)

	if result.Algorithm != gclog.AlgorithmCMS {
		t.Errorf("Algorithm = %v, want cms", result.Algorithm)
	}
	if result.Evidence != EvidenceHeapTransition {
		t.Errorf("Evidence = %q, want heap transition", result.Evidence)
	}
	if result.LineNum != 2 {
		t.Errorf("LineNum = %d, want 2", result.LineNum)
	}
}

func TestDetector_HeapTransition(t *testing.T) {
	tests := []struct {
		name string
		line string
		want gclog.Algorithm
	}{
		{"g1", g1Line, gclog.AlgorithmG1},
		{"cms", cmsLine, gclog.AlgorithmCMS},
		{"parallel young", youngLine, gclog.AlgorithmParallel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := New().DetectFromLines([]string{"unrelated", tt.line})
			if result.Algorithm != tt.want {
				t.Errorf("Algorithm = %v, want %v", result.Algorithm, tt.want)
			}
			if !result.Detected() {
				t.Error("Detected() = false")
			}
		})
	}
}

func TestDetector_FirstHeapTransitionWins(t *testing.T) {
	result := New().DetectFromLines([]string{youngLine, g1Line})

	if result.Algorithm != gclog.AlgorithmParallel {
		t.Errorf("Algorithm = %v, want parallel", result.Algorithm)
	}
}

func TestDetector_ParallelFullOnlyIsUnknown(t *testing.T) {
	result := New().DetectFromLines([]string{fullLine})

	if result.Detected() {
		t.Errorf("Algorithm = %v, want unknown", result.Algorithm)
	}
}

func TestDetector_NoMatch(t *testing.T) {
	lines := []string{
		"No GC output here",
		"2021-05-01T10:15:30.000+0000: 1.250: Total time for which application threads were stopped: 0.5 seconds",
	}

	result := New().DetectFromLines(lines)

	if result.Detected() {
		t.Errorf("Expected unknown, got %v", result.Algorithm)
	}
	if result.Evidence != EvidenceNone {
		t.Errorf("Evidence = %q, want none", result.Evidence)
	}
	if result.ScannedLines != 2 {
		t.Errorf("ScannedLines = %d, want 2", result.ScannedLines)
	}
}

func TestDetector_EmptyInput(t *testing.T) {
	result := New().DetectFromLines(nil)

	if result.Algorithm != gclog.AlgorithmUnknown {
		t.Errorf("Algorithm = %v, want unknown", result.Algorithm)
	}
}

func TestDetector_WithMaxLines(t *testing.T) {
	lines := []string{"a", "b", "c", g1Line}

	result := New(WithMaxLines(3)).DetectFromLines(lines)
	if result.Detected() {
		t.Errorf("Algorithm = %v, want unknown after line limit", result.Algorithm)
	}

	result = New(WithMaxLines(0)).DetectFromLines(lines)
	if result.Algorithm != gclog.AlgorithmG1 {
		t.Errorf("Algorithm = %v, want g1 with no limit", result.Algorithm)
	}
}

func TestDetector_Reuse(t *testing.T) {
	d := New()

	first := d.DetectFromLines([]string{g1Line})
	second := d.DetectFromLines([]string{cmsLine})

	if first.Algorithm != gclog.AlgorithmG1 {
		t.Errorf("first = %v, want g1", first.Algorithm)
	}
	if second.Algorithm != gclog.AlgorithmCMS {
		t.Errorf("second = %v, want cms", second.Algorithm)
	}
}

func TestDetector_DetectFromSource_StopsEarly(t *testing.T) {
	content := strings.Join([]string{"CommandLine flags: -XX:+UseG1GC", "x", "y"}, "\n")
	source := parser.NewReaderSource("mem", strings.NewReader(content))

	result, err := New().DetectFromSource(context.Background(), source)
	if err != nil {
		t.Fatalf("DetectFromSource() error = %v", err)
	}

	// The remaining lines are still unread
	next, err := source.Next(context.Background())
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if next.Content != "x" {
		t.Errorf("next line = %q, want x", next.Content)
	}
	if result.Source != "mem" {
		t.Errorf("Source = %q, want mem", result.Source)
	}
}

func TestDetector_DetectFromFile(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "gc.log")

	content := `Java HotSpot(TM) 64-Bit Server VM (25.292-b10) for linux-amd64 JRE (1.8.0_292-b10)
Memory: 4k page, physical 16318460k(8143592k free), swap 0k(0k free)
CommandLine flags: -XX:InitialHeapSize=261095360 -XX:+PrintGC -XX:+UseG1GC
`
	if err := os.WriteFile(logFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	result, err := New().DetectFromFile(context.Background(), logFile)
	if err != nil {
		t.Fatalf("DetectFromFile() error = %v", err)
	}

	if result.Algorithm != gclog.AlgorithmG1 {
		t.Errorf("Algorithm = %v, want g1", result.Algorithm)
	}
	if result.LineNum != 3 {
		t.Errorf("LineNum = %d, want 3", result.LineNum)
	}
}

func TestDetector_DetectFromFile_NotFound(t *testing.T) {
	_, err := New().DetectFromFile(context.Background(), "/nonexistent/file.log")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestDefaultCollectorFlags(t *testing.T) {
	flags := DefaultCollectorFlags()

	if len(flags) != 3 {
		t.Fatalf("got %d flags, want 3", len(flags))
	}
	for _, f := range flags {
		if f.Pattern == nil || !f.Pattern.MatchString(f.Flag) {
			t.Errorf("flag %s pattern does not match itself", f.Flag)
		}
	}
	// The + must be literal
	if flags[0].Pattern.MatchString("-XX:UseG1GC") {
		t.Error("pattern treats + as a quantifier")
	}
}
