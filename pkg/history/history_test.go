package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ccollicutt/gcstw/pkg/analyzer"
	"github.com/ccollicutt/gcstw/pkg/gclog"
	"github.com/ccollicutt/gcstw/pkg/output"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testReport(total float64, at time.Time) *output.Report {
	return &output.Report{
		Sources: []output.SourceReport{
			{
				Source:            "a.log",
				Algorithm:         gclog.AlgorithmG1,
				TotalPauseSeconds: total - 0.5,
				Stats:             analyzer.Stats{LinesProcessed: 100, PausesCounted: 4, PausesIgnored: 1},
			},
			{
				Source:            "b.log",
				Algorithm:         gclog.AlgorithmCMS,
				TotalPauseSeconds: 0.5,
				Stats:             analyzer.Stats{LinesProcessed: 10, PausesCounted: 1},
			},
		},
		TotalPauseSeconds: total,
		Threshold:         2,
		Metadata:          output.Metadata{ConfigFile: "gcstw.yaml", AnalyzedAt: at},
	}
}

func TestRecordAndRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	id, err := s.Record(ctx, testReport(3, at))
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if id <= 0 {
		t.Errorf("Record() id = %d", id)
	}

	runs, err := s.Recent(ctx, 5)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("Recent() = %d runs, want 1", len(runs))
	}

	r := runs[0]
	if r.ID != id || !r.RunAt.Equal(at) {
		t.Errorf("run = %+v", r)
	}
	if r.TotalPauseSeconds != 3 || r.Threshold != 2 || !r.OverThreshold {
		t.Errorf("run totals = %+v", r)
	}
	if r.ConfigFile != "gcstw.yaml" {
		t.Errorf("ConfigFile = %q", r.ConfigFile)
	}
	if len(r.Sources) != 2 {
		t.Fatalf("Sources = %d, want 2", len(r.Sources))
	}
	if r.Sources[0].Source != "a.log" || r.Sources[0].Algorithm != gclog.AlgorithmG1 {
		t.Errorf("Sources[0] = %+v", r.Sources[0])
	}
	if r.Sources[0].Lines != 100 || r.Sources[0].PausesCounted != 4 || r.Sources[0].PausesIgnored != 1 {
		t.Errorf("Sources[0] counters = %+v", r.Sources[0])
	}
	if r.Sources[1].TotalPauseSeconds != 0.5 {
		t.Errorf("Sources[1].TotalPauseSeconds = %v", r.Sources[1].TotalPauseSeconds)
	}
}

func TestRecent_NewestFirstAndLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 1; i <= 3; i++ {
		if _, err := s.Record(ctx, testReport(float64(i), at.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	runs, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Recent() = %d runs, want 2", len(runs))
	}
	if runs[0].TotalPauseSeconds != 3 || runs[1].TotalPauseSeconds != 2 {
		t.Errorf("order = %v, %v", runs[0].TotalPauseSeconds, runs[1].TotalPauseSeconds)
	}
	if runs[1].OverThreshold {
		t.Error("run with total 2 and threshold 2 should not be over threshold")
	}
}

func TestRecent_Empty(t *testing.T) {
	s := openTestStore(t)
	runs, err := s.Recent(context.Background(), 0)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("Recent() = %d runs, want 0", len(runs))
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	s, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := s.Record(ctx, testReport(1, time.Now())); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	s.Close()

	s, err = Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()

	runs, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("Recent() after reopen = %d runs, want 1", len(runs))
	}
}

func TestOpen_BadPath(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "missing", "dir", "history.db"))
	if err == nil {
		t.Error("Open() expected error for missing directory")
	}
}
