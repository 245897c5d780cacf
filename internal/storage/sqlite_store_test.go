package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sandeepkv93/questd/internal/model"
)

func setupSQLite(t *testing.T) (*SQLiteStore, string) {
	t.Helper()
	store := NewSQLiteStore()
	t.Cleanup(func() { _ = store.Close() })
	return store, filepath.Join(t.TempDir(), "questd-test.db")
}

func TestSQLiteEmptyDatabaseLoadsNil(t *testing.T) {
	store, path := setupSQLite(t)
	log, err := store.Load(context.Background(), path)
	if err != nil || log != nil {
		t.Fatalf("expected nil, nil for fresh database, got %v %v", log, err)
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	store, path := setupSQLite(t)
	want := sampleLog(t)
	if err := store.Save(context.Background(), path, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	assertSameLog(t, got, want)
}

func TestSQLiteSaveReplacesEverything(t *testing.T) {
	store, path := setupSQLite(t)
	if err := store.Save(context.Background(), path, sampleLog(t)); err != nil {
		t.Fatalf("first save: %v", err)
	}

	next := sampleLog(t)
	next.Quests = next.Quests[:1]
	next.Completions = []model.Completion{}
	next.TimerState = model.TimerState{PausedSessions: map[string]float64{}}
	next.Day = "2026-02-11"
	if err := store.Save(context.Background(), path, next); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := store.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	assertSameLog(t, got, next)
}

func TestSQLiteReopensOnPathChange(t *testing.T) {
	store, first := setupSQLite(t)
	second := filepath.Join(t.TempDir(), "other.db")

	if err := store.Save(context.Background(), first, sampleLog(t)); err != nil {
		t.Fatalf("save first: %v", err)
	}
	log, err := store.Load(context.Background(), second)
	if err != nil || log != nil {
		t.Fatalf("expected empty second database, got %v %v", log, err)
	}
	log, err = store.Load(context.Background(), first)
	if err != nil || log == nil || len(log.Quests) != 3 {
		t.Fatalf("expected first database intact, got %v %v", log, err)
	}
}

func TestSQLiteKeepsSliceOrder(t *testing.T) {
	store, path := setupSQLite(t)
	want := sampleLog(t)
	// Archived quests keep whatever order they had when archived.
	want.Quests[2].Order = 0
	want.Quests = []model.Quest{want.Quests[2], want.Quests[1], want.Quests[0]}
	want.Completions = []model.Completion{
		{QuestID: "q3", Date: "2026-02-10", MinutesSpent: 5, XPEarned: 10},
		{QuestID: "q1", Date: "2026-02-08", MinutesSpent: 42, XPEarned: 42},
	}
	if err := store.Save(context.Background(), path, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	assertSameLog(t, got, want)
	if got.Completions[0].QuestID != "q3" {
		t.Fatalf("expected completions in saved order, got %+v", got.Completions)
	}
}
