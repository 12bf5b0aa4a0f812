// Package sqlite provides a SQLite-backed persistent record store. It reuses
// the in-memory transactional semantics and snapshots the full state to a
// single table of JSON buckets after every successful transaction.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"herdcore/internal/infra/persistence/memory"
	"herdcore/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*Store)(nil)

// DefaultTimeout bounds each snapshot write. Expiry surfaces as a retryable
// StorageUnavailableError.
const DefaultTimeout = 5 * time.Second

// Store persists the in-memory state to SQLite as JSON blobs.
type Store struct {
	*memory.Store
	db      *sql.DB
	mu      sync.Mutex
	path    string
	timeout time.Duration
}

// NewStore constructs a snapshotting SQLite-backed persistent store and
// hydrates it from any existing state at path.
func NewStore(path string, engine *domain.RulesEngine) (*Store, error) {
	if path == "" {
		path = "herdcore.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create state table: %w", err)
	}
	s := &Store{Store: memory.NewStore(engine), db: db, path: path, timeout: DefaultTimeout}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// SetTimeout overrides the per-write storage timeout.
func (s *Store) SetTimeout(d time.Duration) {
	if d > 0 {
		s.timeout = d
	}
}

var buckets = []string{"detections", "breedings", "pregnancies", "births"}

func (s *Store) load() error {
	rows, err := s.db.Query(`SELECT bucket, payload FROM state`)
	if err != nil {
		return fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	snapshot := memory.Snapshot{}
	targets := map[string]any{
		"detections":  &snapshot.Detections,
		"breedings":   &snapshot.Breedings,
		"pregnancies": &snapshot.Pregnancies,
		"births":      &snapshot.Births,
	}
	loaded := false
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return fmt.Errorf("scan state: %w", err)
		}
		target, ok := targets[bucket]
		if !ok || len(payload) == 0 {
			continue
		}
		if err := json.Unmarshal(payload, target); err != nil {
			return fmt.Errorf("decode %s: %w", bucket, err)
		}
		loaded = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate state: %w", err)
	}
	if loaded {
		s.ImportState(snapshot)
	}
	return nil
}

func (s *Store) persist(ctx context.Context) (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.ExportState()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return s.wrapStorageErr("begin snapshot", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for _, bucket := range buckets {
		var data []byte
		switch bucket {
		case "detections":
			data, err = json.Marshal(snapshot.Detections)
		case "breedings":
			data, err = json.Marshal(snapshot.Breedings)
		case "pregnancies":
			data, err = json.Marshal(snapshot.Pregnancies)
		case "births":
			data, err = json.Marshal(snapshot.Births)
		}
		if err != nil {
			retErr = err
			return retErr
		}
		if _, err = tx.ExecContext(ctx, `INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, bucket, data); err != nil {
			retErr = s.wrapStorageErr("upsert "+bucket, err)
			return retErr
		}
	}
	if err = tx.Commit(); err != nil {
		return s.wrapStorageErr("commit snapshot", err)
	}
	return nil
}

func (s *Store) wrapStorageErr(op string, err error) error {
	return domain.StorageUnavailableError{Op: op, Timeout: s.timeout, Err: err}
}

// RunInTransaction applies fn within a transaction, then snapshots state to
// SQLite. A snapshot failure surfaces as a retryable StorageUnavailableError,
// but the in-memory commit already stands: callers must re-read current state
// before retrying rather than replay fn, or they will apply it twice. The next
// successful write persists the full snapshot, including this commit.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx domain.Transaction) error) (domain.Result, error) {
	res, err := s.Store.RunInTransaction(ctx, fn)
	if err != nil {
		return res, err
	}
	if pErr := s.persist(ctx); pErr != nil {
		return res, pErr
	}
	return res, nil
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }
