package store

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "runs.sqlite")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInsertAndListRuns(t *testing.T) {
	db := openTestDB(t)

	mean := 0.42
	id, err := db.InsertRun(RunRecord{
		Mode:           "single",
		FrameCount:     1,
		FitErrorMeanL1: &mean,
		InputSummary:   "camera+detection+object",
	})
	if err != nil {
		t.Fatalf("InsertRun: %v", err)
	}
	if id == "" {
		t.Fatalf("expected a generated run id")
	}

	runs, err := db.ListRecentRuns(10)
	if err != nil {
		t.Fatalf("ListRecentRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	if runs[0].RunID != id {
		t.Errorf("RunID = %q, want %q", runs[0].RunID, id)
	}
	if runs[0].FitErrorMeanL1 == nil || *runs[0].FitErrorMeanL1 != mean {
		t.Errorf("FitErrorMeanL1 = %v, want %v", runs[0].FitErrorMeanL1, mean)
	}
}

func TestInsertRunGeneratesIDWhenEmpty(t *testing.T) {
	db := openTestDB(t)

	idA, err := db.InsertRun(RunRecord{Mode: "sequence", FrameCount: 3, InputSummary: "a"})
	if err != nil {
		t.Fatalf("InsertRun a: %v", err)
	}
	idB, err := db.InsertRun(RunRecord{Mode: "sequence", FrameCount: 2, InputSummary: "b"})
	if err != nil {
		t.Fatalf("InsertRun b: %v", err)
	}
	if idA == idB {
		t.Errorf("expected distinct generated run ids, got %q twice", idA)
	}

	runs, err := db.ListRecentRuns(10)
	if err != nil {
		t.Fatalf("ListRecentRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
}

func TestListRecentRunsRespectsLimit(t *testing.T) {
	db := openTestDB(t)
	for i := 0; i < 5; i++ {
		if _, err := db.InsertRun(RunRecord{Mode: "single", FrameCount: 1, InputSummary: "x"}); err != nil {
			t.Fatalf("InsertRun: %v", err)
		}
	}
	runs, err := db.ListRecentRuns(2)
	if err != nil {
		t.Fatalf("ListRecentRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
}
