// Package clientstate persists small pieces of per-device client state in a
// local sqlite file: cached wallet views, acknowledgement markers, claim
// timestamps and onboarding progress. It backs the reconcile package's
// Storage interface so cached state survives restarts.
package clientstate

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var ErrNotFound = errors.New("not found")

// Typed keys for the values the wallet client keeps locally. The cache and
// acknowledgement keys are owned by the reconcile package.
const (
	KeyLastClaimAt   = "claim:last_at"
	KeyOnboardingAck = "onboarding:ack"
	KeyCrashMode     = "crash_mode"
)

// Store is a sqlite-backed key-value store for client state.
type Store struct {
	db *sql.DB
}

// Open creates a Store at dbPath and initializes the schema.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) init() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			updated_at INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS completed_tasks (
			task_id TEXT PRIMARY KEY,
			completed_at INTEGER NOT NULL
		)`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}

	return nil
}

// --- Generic key-value (reconcile.Storage) ---

// Get returns the value for key, or (nil, nil) on a miss.
func (s *Store) Get(key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(key string, value []byte) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO kv (key, value, updated_at) VALUES (?, ?, ?)`,
		key, value, time.Now().Unix(),
	)
	return err
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	_, err := s.db.Exec("DELETE FROM kv WHERE key = ?", key)
	return err
}

// --- Typed helpers ---

// SetLastClaimAt records when the device last performed a reward claim.
func (s *Store) SetLastClaimAt(t time.Time) error {
	raw, err := json.Marshal(t.Unix())
	if err != nil {
		return err
	}
	return s.Set(KeyLastClaimAt, raw)
}

// LastClaimAt returns the last local claim time, or ErrNotFound.
func (s *Store) LastClaimAt() (time.Time, error) {
	raw, err := s.Get(KeyLastClaimAt)
	if err != nil {
		return time.Time{}, err
	}
	if raw == nil {
		return time.Time{}, ErrNotFound
	}
	var unix int64
	if err := json.Unmarshal(raw, &unix); err != nil {
		return time.Time{}, err
	}
	return time.Unix(unix, 0), nil
}

// SetOnboardingSeen marks the onboarding flow as completed on this device.
func (s *Store) SetOnboardingSeen() error {
	return s.Set(KeyOnboardingAck, []byte("1"))
}

// OnboardingSeen reports whether onboarding was completed on this device.
func (s *Store) OnboardingSeen() (bool, error) {
	raw, err := s.Get(KeyOnboardingAck)
	if err != nil {
		return false, err
	}
	return raw != nil, nil
}

// SetCrashMode toggles the degraded rendering mode flag.
func (s *Store) SetCrashMode(on bool) error {
	if !on {
		return s.Delete(KeyCrashMode)
	}
	return s.Set(KeyCrashMode, []byte("1"))
}

// CrashMode reports whether the degraded rendering mode flag is set.
func (s *Store) CrashMode() (bool, error) {
	raw, err := s.Get(KeyCrashMode)
	if err != nil {
		return false, err
	}
	return raw != nil, nil
}

// --- Completed tasks ---

// MarkTaskCompleted records a task as completed, returns true if it was new.
func (s *Store) MarkTaskCompleted(taskID string) (bool, error) {
	result, err := s.db.Exec(
		"INSERT OR IGNORE INTO completed_tasks (task_id, completed_at) VALUES (?, ?)",
		taskID, time.Now().Unix(),
	)
	if err != nil {
		return false, err
	}

	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// IsTaskCompleted checks whether a task was completed on this device.
func (s *Store) IsTaskCompleted(taskID string) bool {
	var one int
	err := s.db.QueryRow(
		"SELECT 1 FROM completed_tasks WHERE task_id = ?",
		taskID,
	).Scan(&one)
	return err == nil
}

// CompletedTasks returns the ids of all completed tasks, newest first.
func (s *Store) CompletedTasks() ([]string, error) {
	rows, err := s.db.Query(
		"SELECT task_id FROM completed_tasks ORDER BY completed_at DESC",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// Reset wipes all client state, used on sign-out.
func (s *Store) Reset() error {
	for _, q := range []string{"DELETE FROM kv", "DELETE FROM completed_tasks"} {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}
