package analyzer

import (
	"errors"
	"testing"

	"github.com/ccollicutt/gcstw/pkg/gclog"
)

const (
	g1Line    = "   [Eden: 24.0M(24.0M)->0.0B(13.0M) Survivors: 0.0B->3072.0K Heap: 24.0M(256.0M)->3939.5K(256.0M)]"
	youngLine = "[PSYoungGen: 65536K->10720K(76288K)] 65536K->10736K(251392K), 0.0123456 secs]"
	fullLine  = "[PSYoungGen: 10720K->0K(76288K)] [ParOldGen: 16K->10542K(175104K)] 10736K->10542K(251392K), 0.0456 secs]"
	cmsLine   = "2021-05-01T10:15:30.000+0000: 1.234: [GC (Allocation Failure) [ParNew: 34944K->4352K(39296K), 0.0138394 secs] 34944K->8532K(126720K), 0.0139214 secs]"
	appLine   = "2021-05-01 10:15:30 INFO served /health in 2ms"
)

func pauseLine(seconds string) string {
	return "2021-05-01T10:15:30.000+0000: 1.250: Total time for which application threads were stopped: " +
		seconds + " seconds, Stopping threads took: 0.0000 seconds"
}

func fold(t *testing.T, lines ...string) State {
	t.Helper()
	s, err := Fold(lines)
	if err != nil {
		t.Fatalf("Fold() error = %v", err)
	}
	return s
}

func TestFold_FlagsLineOnly(t *testing.T) {
	s := fold(t, "CommandLine flags: -XX:InitialHeapSize=268435456 -XX:+UseG1GC")

	if s.TotalPauseSeconds != 0 {
		t.Errorf("TotalPauseSeconds = %v, want 0", s.TotalPauseSeconds)
	}
	if got := FormatSeconds(s.TotalPauseSeconds); got != "0" {
		t.Errorf("FormatSeconds() = %q, want 0", got)
	}
}

func TestFold_G1EventThenReport(t *testing.T) {
	s := fold(t,
		g1Line,
		"2021-05-01T10:15:30.000+0000: 1.250: [Full GC (Allocation Failure)  255M->200M(256M), 1.2500 secs] threads were stopped: 1.250 seconds",
	)

	if s.TotalPauseSeconds != 1.25 {
		t.Errorf("TotalPauseSeconds = %v, want 1.25", s.TotalPauseSeconds)
	}
	if s.Open() {
		t.Errorf("state still open: %+v", s)
	}
}

func TestFold_TwoMinorEventsOneReport(t *testing.T) {
	s := fold(t, g1Line, g1Line, pauseLine("0.75"), pauseLine("2.0"))

	if s.TotalPauseSeconds != 0.75 {
		t.Errorf("TotalPauseSeconds = %v, want 0.75", s.TotalPauseSeconds)
	}
}

func TestFold_ReportWithoutEvent(t *testing.T) {
	s := fold(t, appLine, pauseLine("3.5"), appLine)

	if s.TotalPauseSeconds != 0 {
		t.Errorf("TotalPauseSeconds = %v, want 0", s.TotalPauseSeconds)
	}
}

func TestFold_FullClearedBeforeMinor(t *testing.T) {
	s := fold(t, fullLine, youngLine, pauseLine("4.0"))

	if s.TotalPauseSeconds != 4.0 {
		t.Errorf("TotalPauseSeconds = %v, want 4.0", s.TotalPauseSeconds)
	}
	if s.InFullGC {
		t.Error("InFullGC still set")
	}
	if !s.InMinorGC {
		t.Error("InMinorGC cleared, want it left open")
	}
	if got := FormatSeconds(s.TotalPauseSeconds); got != "4" {
		t.Errorf("FormatSeconds() = %q, want 4", got)
	}
}

func TestFold_LeftoverMinorCountsNextReport(t *testing.T) {
	s := fold(t, fullLine, youngLine, pauseLine("4.0"), appLine, pauseLine("0.5"), pauseLine("9"))

	if s.TotalPauseSeconds != 4.5 {
		t.Errorf("TotalPauseSeconds = %v, want 4.5", s.TotalPauseSeconds)
	}
}

func TestFold_UnrelatedLinesBetween(t *testing.T) {
	s := fold(t, cmsLine, appLine, appLine, "", pauseLine("0.0139"))

	if s.TotalPauseSeconds != 0.0139 {
		t.Errorf("TotalPauseSeconds = %v, want 0.0139", s.TotalPauseSeconds)
	}
}

func TestFold_SumsEveryPairedReport(t *testing.T) {
	lines := []string{}
	want := 0.0
	for _, v := range []struct {
		event   string
		seconds string
		value   float64
	}{
		{g1Line, "0.1", 0.1},
		{youngLine, "0.25", 0.25},
		{fullLine, "1.5", 1.5},
		{cmsLine, "0.0125", 0.0125},
	} {
		lines = append(lines, v.event, appLine, pauseLine(v.seconds), pauseLine("100"))
		want += v.value
	}

	s := fold(t, lines...)
	if s.TotalPauseSeconds != want {
		t.Errorf("TotalPauseSeconds = %v, want %v", s.TotalPauseSeconds, want)
	}
}

func TestFold_NoReports(t *testing.T) {
	s := fold(t, g1Line, fullLine, cmsLine, appLine)

	if s.TotalPauseSeconds != 0 {
		t.Errorf("TotalPauseSeconds = %v, want 0", s.TotalPauseSeconds)
	}
	if !s.InMinorGC || !s.InFullGC {
		t.Errorf("flags = %+v, want both open", s)
	}
}

func TestAdvance_Step(t *testing.T) {
	s, step, err := Advance(State{}, fullLine)
	if err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	if step.Events != gclog.EventFullGC || step.Report {
		t.Errorf("step = %+v", step)
	}

	s, step, err = Advance(s, pauseLine("0.5"))
	if err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	if !step.Counted || step.Closed != gclog.EventFullGC || step.Seconds != 0.5 {
		t.Errorf("step = %+v", step)
	}
	if step.PauseReport.Minute != "15" {
		t.Errorf("Minute = %q, want 15", step.PauseReport.Minute)
	}

	_, step, err = Advance(s, pauseLine("0.5"))
	if err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	if !step.Report || step.Counted {
		t.Errorf("report with nothing open: step = %+v", step)
	}
}

func TestAdvance_DoesNotMutateInput(t *testing.T) {
	in := State{InMinorGC: true}
	out, _, err := Advance(in, pauseLine("1"))
	if err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	if !in.InMinorGC || in.TotalPauseSeconds != 0 {
		t.Errorf("input state changed: %+v", in)
	}
	if out.InMinorGC || out.TotalPauseSeconds != 1 {
		t.Errorf("output state = %+v", out)
	}
}

func TestAdvance_MalformedSeconds(t *testing.T) {
	bad := "2021-05-01T10:15:30.000+0000: 1.250: Total time for which application threads were stopped: 1.2.3 seconds"

	_, _, err := Advance(State{InMinorGC: true}, bad)
	if !errors.Is(err, ErrMalformedPause) {
		t.Errorf("Advance() error = %v, want ErrMalformedPause", err)
	}

	// Ignored reports are never parsed
	if _, _, err := Advance(State{}, bad); err != nil {
		t.Errorf("Advance() with nothing open error = %v, want nil", err)
	}
}

func TestFold_MalformedSecondsReportsLine(t *testing.T) {
	_, err := Fold([]string{g1Line, appLine, "2021-05-01T10:15:30: x threads were stopped: . seconds"})
	if err == nil {
		t.Fatal("Fold() expected error")
	}
	if !errors.Is(err, ErrMalformedPause) {
		t.Errorf("error = %v, want ErrMalformedPause", err)
	}
	if got := err.Error(); got[:7] != "line 3:" {
		t.Errorf("error = %q, want line prefix", got)
	}
}

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{0, "0"},
		{1.234, "1.234"},
		{12.5, "12.5"},
		{4.0, "4"},
		{0.1 + 0.2, "0.30000000000000004"},
		{1e21, "1000000000000000000000"},
	}
	for _, tt := range tests {
		if got := FormatSeconds(tt.v); got != tt.want {
			t.Errorf("FormatSeconds(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestState_OpenEvents(t *testing.T) {
	tests := []struct {
		state State
		want  gclog.EventKind
	}{
		{State{}, gclog.EventNone},
		{State{InMinorGC: true}, gclog.EventMinorGC},
		{State{InFullGC: true}, gclog.EventFullGC},
		{State{InMinorGC: true, InFullGC: true}, gclog.EventMinorGC | gclog.EventFullGC},
	}
	for _, tt := range tests {
		if got := tt.state.OpenEvents(); got != tt.want {
			t.Errorf("%+v.OpenEvents() = %v, want %v", tt.state, got, tt.want)
		}
	}
}
