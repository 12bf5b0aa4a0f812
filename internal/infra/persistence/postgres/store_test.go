package postgres

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"herdcore/pkg/domain"
)

// openSQLiteBacked swaps the pgx open function for an on-disk sqlite handle.
// The snapshot SQL (JSONB column type, $n placeholders, upsert) is accepted
// by sqlite, so the full load/persist path runs without a Postgres server.
func openSQLiteBacked(t *testing.T) (path string, restore func()) {
	t.Helper()
	path = filepath.Join(t.TempDir(), "pg.db")
	restore = OverrideSQLOpen(func(_, _ string) (*sql.DB, error) {
		return sql.Open("sqlite", path)
	})
	return path, restore
}

func TestRunInTransactionPersistsSnapshot(t *testing.T) {
	_, restore := openSQLiteBacked(t)
	defer restore()

	store, err := NewStore("", domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer func() { _ = store.Close() }()

	detectedAt := time.Date(2024, 1, 10, 6, 0, 0, 0, time.UTC)
	var created domain.EstrusDetection
	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateEstrusDetection(domain.EstrusDetection{
			AnimalID:    "cow-1",
			Species:     "cattle",
			DetectedAt:  detectedAt,
			Confidence:  0.9,
			WindowStart: detectedAt.Add(9 * time.Hour),
			WindowEnd:   detectedAt.Add(27 * time.Hour),
			Status:      domain.EstrusDetected,
		})
		return err
	})
	if err != nil {
		t.Fatalf("RunInTransaction: %v", err)
	}

	var count int
	if err := store.DB().QueryRow(`SELECT COUNT(*) FROM state WHERE bucket = 'detections'`).Scan(&count); err != nil {
		t.Fatalf("query state: %v", err)
	}
	if count != 1 {
		t.Fatalf("detections bucket rows = %d, want 1", count)
	}
	if _, ok := store.GetEstrusDetection(created.ID); !ok {
		t.Fatalf("detection missing from committed state")
	}
}

func TestNewStoreHydratesFromExistingSnapshot(t *testing.T) {
	_, restore := openSQLiteBacked(t)
	defer restore()

	first, err := NewStore("", domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	detectedAt := time.Date(2024, 1, 10, 6, 0, 0, 0, time.UTC)
	var created domain.EstrusDetection
	_, err = first.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateEstrusDetection(domain.EstrusDetection{
			AnimalID:    "cow-7",
			Species:     "cattle",
			DetectedAt:  detectedAt,
			Confidence:  0.7,
			WindowStart: detectedAt.Add(9 * time.Hour),
			WindowEnd:   detectedAt.Add(27 * time.Hour),
			Status:      domain.EstrusDetected,
		})
		return err
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second, err := NewStore("", domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = second.Close() }()
	got, ok := second.GetEstrusDetection(created.ID)
	if !ok {
		t.Fatalf("expected detection hydrated from snapshot")
	}
	if got.AnimalID != "cow-7" {
		t.Fatalf("unexpected detection %+v", got)
	}
}

func TestNewStoreSurfacesOpenError(t *testing.T) {
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) {
		return nil, errors.New("refused")
	})
	defer restore()

	if _, err := NewStore("", domain.NewRulesEngine()); err == nil {
		t.Fatalf("expected open error")
	}
}

func TestPersistFailureIsRetryable(t *testing.T) {
	_, restore := openSQLiteBacked(t)
	defer restore()

	store, err := NewStore("", domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	// Closing the handle makes the post-transaction snapshot fail.
	if err := store.DB().Close(); err != nil {
		t.Fatalf("close db: %v", err)
	}

	detectedAt := time.Date(2024, 1, 10, 6, 0, 0, 0, time.UTC)
	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreateEstrusDetection(domain.EstrusDetection{
			AnimalID:    "cow-1",
			Species:     "cattle",
			DetectedAt:  detectedAt,
			Confidence:  0.9,
			WindowStart: detectedAt.Add(9 * time.Hour),
			WindowEnd:   detectedAt.Add(27 * time.Hour),
			Status:      domain.EstrusDetected,
		})
		return err
	})
	if !domain.IsRetryable(err) {
		t.Fatalf("expected retryable storage error, got %v", err)
	}
}
