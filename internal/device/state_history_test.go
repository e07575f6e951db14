package device

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// setupStateHistoryTestDB creates an in-memory SQLite database with the state_history table.
func setupStateHistoryTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	schema := `
		CREATE TABLE state_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			previous TEXT NOT NULL,
			state TEXT NOT NULL,
			cause TEXT NOT NULL DEFAULT 'poll',
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func TestRecordChange(t *testing.T) {
	repo := NewSQLiteStateHistoryRepository(setupStateHistoryTestDB(t))
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 20, 15, 0, 0, time.UTC)

	change := Change{Previous: PowerOff, Current: PowerOn, At: at}
	if err := repo.RecordChange(ctx, change, TriggerPoll); err != nil {
		t.Fatalf("RecordChange() error = %v", err)
	}

	entries, err := repo.GetHistory(ctx, 10)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries length = %d, want 1", len(entries))
	}

	entry := entries[0]
	if entry.Previous != PowerOff || entry.State != PowerOn {
		t.Errorf("entry = %s -> %s, want off -> on", entry.Previous, entry.State)
	}
	if entry.Trigger != TriggerPoll {
		t.Errorf("Trigger = %q, want %q", entry.Trigger, TriggerPoll)
	}
	if !entry.CreatedAt.Equal(at) {
		t.Errorf("CreatedAt = %s, want %s", entry.CreatedAt, at)
	}
}

func TestRecordChange_Defaults(t *testing.T) {
	repo := NewSQLiteStateHistoryRepository(setupStateHistoryTestDB(t))
	ctx := context.Background()

	if err := repo.RecordChange(ctx, Change{Current: PowerOff}, ""); err != nil {
		t.Fatalf("RecordChange() error = %v", err)
	}

	entries, err := repo.GetHistory(ctx, 0)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries length = %d, want 1", len(entries))
	}
	if entries[0].Previous != PowerUnknown {
		t.Errorf("Previous = %q, want unknown", entries[0].Previous)
	}
	if entries[0].Trigger != TriggerPoll {
		t.Errorf("Trigger = %q, want poll", entries[0].Trigger)
	}
}

func TestRecordChange_RequiresCurrent(t *testing.T) {
	repo := NewSQLiteStateHistoryRepository(setupStateHistoryTestDB(t))

	err := repo.RecordChange(context.Background(), Change{Previous: PowerOn}, TriggerPoll)
	if !errors.Is(err, ErrInvalidHistory) {
		t.Errorf("RecordChange() error = %v, want ErrInvalidHistory", err)
	}
}

func TestGetHistory_NewestFirstAndLimit(t *testing.T) {
	repo := NewSQLiteStateHistoryRepository(setupStateHistoryTestDB(t))
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	states := []PowerState{PowerOn, PowerOff, PowerUnknown, PowerOn}
	prev := PowerUnknown
	for i, s := range states {
		change := Change{Previous: prev, Current: s, At: base.Add(time.Duration(i) * time.Minute)}
		if err := repo.RecordChange(ctx, change, TriggerPoll); err != nil {
			t.Fatalf("RecordChange() error = %v", err)
		}
		prev = s
	}

	entries, err := repo.GetHistory(ctx, 2)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries length = %d, want 2", len(entries))
	}
	if entries[0].State != PowerOn || entries[0].Previous != PowerUnknown {
		t.Errorf("newest entry = %s -> %s, want unknown -> on", entries[0].Previous, entries[0].State)
	}
	if !entries[0].CreatedAt.After(entries[1].CreatedAt) {
		t.Error("entries are not ordered newest first")
	}
}

func TestPruneHistory(t *testing.T) {
	repo := NewSQLiteStateHistoryRepository(setupStateHistoryTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	for _, at := range []time.Time{now.Add(-48 * time.Hour), now.Add(-12 * time.Hour)} {
		if err := repo.RecordChange(ctx, Change{Previous: PowerOff, Current: PowerOn, At: at}, TriggerPoll); err != nil {
			t.Fatalf("RecordChange() error = %v", err)
		}
	}

	deleted, err := repo.PruneHistory(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("PruneHistory() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	if _, err := repo.PruneHistory(ctx, 0); err == nil {
		t.Error("PruneHistory(0) expected error")
	}
}

type recordingLogger struct {
	warnings int
}

func (l *recordingLogger) Warn(string, ...any) { l.warnings++ }

type failingRepo struct{}

func (failingRepo) RecordChange(context.Context, Change, Trigger) error {
	return errors.New("disk full")
}

func (failingRepo) GetHistory(context.Context, int) ([]StateHistoryEntry, error) {
	return nil, nil
}

func TestHistoryRecorder(t *testing.T) {
	t.Run("persists change", func(t *testing.T) {
		repo := NewSQLiteStateHistoryRepository(setupStateHistoryTestDB(t))
		logger := &recordingLogger{}

		NewHistoryRecorder(repo, logger).PowerStateChanged(Change{
			Previous: PowerOff, Current: PowerOn, At: time.Now(),
		})

		entries, err := repo.GetHistory(context.Background(), 10)
		if err != nil {
			t.Fatalf("GetHistory() error = %v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("entries length = %d, want 1", len(entries))
		}
		if logger.warnings != 0 {
			t.Errorf("warnings = %d, want 0", logger.warnings)
		}
	})

	t.Run("logs failure", func(t *testing.T) {
		logger := &recordingLogger{}

		NewHistoryRecorder(failingRepo{}, logger).PowerStateChanged(Change{Current: PowerOn})

		if logger.warnings != 1 {
			t.Errorf("warnings = %d, want 1", logger.warnings)
		}
	})
}
