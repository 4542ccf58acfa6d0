package history_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"archconv/internal/archive"
	"archconv/internal/history"
	"archconv/internal/pipeline"
	"archconv/internal/services"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(filepath.Join(t.TempDir(), "state", "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleRun(id string, finished time.Time, err error) pipeline.Run {
	step := pipeline.StepAll
	if err != nil {
		step = pipeline.StepCompare
	}
	return pipeline.Run{
		ID:            id,
		Source:        "/data/" + id + ".rar",
		Destination:   "/out/" + id + ".zip",
		TargetFormat:  archive.ZIP,
		State:         pipeline.State{Step: step, Err: err},
		SourceEntries: 264,
		StartedAt:     finished.Add(-time.Minute),
		FinishedAt:    finished,
	}
}

func TestRecordAndGet(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := store.Record(ctx, sampleRun("ok", now, nil)); err != nil {
		t.Fatalf("Record: %v", err)
	}
	entry, found, err := store.Get(ctx, "ok")
	if err != nil || !found {
		t.Fatalf("Get: found=%v err=%v", found, err)
	}
	if !entry.Success() || entry.TargetFormat != "zip" || entry.SourceEntries != 264 {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if entry.Duration() != time.Minute || !entry.FinishedAt.Equal(now) {
		t.Fatalf("unexpected timing %+v", entry)
	}

	if _, found, err := store.Get(ctx, "missing"); err != nil || found {
		t.Fatalf("Get missing: found=%v err=%v", found, err)
	}
}

func TestListOrdersNewestFirst(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	failure := services.Wrap(services.ErrArchive, "pipeline", "compare", "count differs", nil)
	runs := []pipeline.Run{
		sampleRun("first", base, nil),
		sampleRun("second", base.Add(time.Hour), failure),
		sampleRun("third", base.Add(2*time.Hour), nil),
	}
	for _, run := range runs {
		if err := store.Record(ctx, run); err != nil {
			t.Fatalf("Record %s: %v", run.ID, err)
		}
	}

	all, err := store.List(ctx, 0, false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 || all[0].ID != "third" || all[2].ID != "first" {
		t.Fatalf("unexpected order: %+v", all)
	}

	limited, err := store.List(ctx, 1, false)
	if err != nil || len(limited) != 1 || limited[0].ID != "third" {
		t.Fatalf("limited list = %+v, %v", limited, err)
	}

	failed, err := store.List(ctx, 0, true)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(failed) != 1 || failed[0].ID != "second" {
		t.Fatalf("failed list = %+v", failed)
	}
	if failed[0].ErrorKind != "archive" || failed[0].Step != "COMPARE" || failed[0].ErrorMessage == "" {
		t.Fatalf("failure not recorded: %+v", failed[0])
	}
}

func TestPrune(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"old", "mid", "new"} {
		if err := store.Record(ctx, sampleRun(id, base.Add(time.Duration(i)*24*time.Hour), nil)); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	removed, err := store.Prune(ctx, base.Add(36*time.Hour))
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}
	left, _ := store.List(ctx, 0, false)
	if len(left) != 1 || left[0].ID != "new" {
		t.Fatalf("remaining = %+v", left)
	}
}

func TestRecordRequiresID(t *testing.T) {
	store := openStore(t)
	if err := store.Record(context.Background(), pipeline.Run{}); err == nil {
		t.Fatal("expected error for empty run id")
	}
}

func TestReopenKeepsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.Record(context.Background(), sampleRun("kept", time.Now(), nil)); err != nil {
		t.Fatalf("Record: %v", err)
	}
	_ = store.Close()

	reopened, err := history.Open(path)
	if err != nil {
		if errors.Is(err, history.ErrSchemaMismatch) {
			t.Fatalf("schema mismatch on reopen: %v", err)
		}
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if _, found, err := reopened.Get(context.Background(), "kept"); err != nil || !found {
		t.Fatalf("Get after reopen: found=%v err=%v", found, err)
	}
}

var _ pipeline.Recorder = (*history.Store)(nil)
