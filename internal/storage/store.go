// Package storage persists the application state document in a local SQLite
// database, one row per logical field. Writes are queued in memory and
// committed by Flush; the in-memory state stays authoritative when a write
// fails.
package storage

import (
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/claude/ironpath/internal/models"
	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Persisted field keys. One row each in app_state.
const (
	keyProfile         = "profile"
	keyHistory         = "history"
	keyCurrentSession  = "currentSession"
	keyPersonalRecords = "personalRecords"
	keyTotalXP         = "totalXp"
	keyLastExercise    = "lastExerciseName"
	keySchemaVersion   = "schemaVersion"
)

// Store is the SQLite-backed state document store.
type Store struct {
	db  *sql.DB
	log *slog.Logger

	mu      sync.Mutex
	pending *models.Snapshot
}

// Open opens (or creates) the state database, applies migrations, and
// soft-resets the document if its schema version does not match
// models.SchemaVersion.
func Open(path string, log *slog.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating state db: %w", err)
	}

	s := &Store{db: db, log: log}
	if err := s.ensureSchemaVersion(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func runMigrations(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}
	drv, err := sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
	if err != nil {
		return fmt.Errorf("creating migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", drv)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// ensureSchemaVersion checks the stored document version. A mismatch wipes
// the document (soft reset) instead of attempting a migration; a fresh
// database just records the current version.
func (s *Store) ensureSchemaVersion() error {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM app_state WHERE key = ?`, keySchemaVersion).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return s.writeSchemaVersion()
	case err != nil:
		return fmt.Errorf("reading schema version: %w", err)
	}

	var stored int
	if err := json.Unmarshal([]byte(raw), &stored); err != nil || stored != models.SchemaVersion {
		s.log.Warn("state schema version mismatch, soft-resetting",
			"stored", raw, "expected", models.SchemaVersion)
		if err := s.SoftReset(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) writeSchemaVersion() error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO app_state (key, value) VALUES (?, ?)`,
		keySchemaVersion, fmt.Sprintf("%d", models.SchemaVersion))
	if err != nil {
		return fmt.Errorf("writing schema version: %w", err)
	}
	return nil
}

// Load reads the full state document. Missing fields get zero-value defaults
// and a malformed field falls back to its default rather than failing the
// whole load.
func (s *Store) Load() (models.Snapshot, error) {
	snap := models.Snapshot{
		History:         []models.WorkoutRecord{},
		CurrentSession:  []models.SetEntry{},
		PersonalRecords: map[string]models.PersonalRecord{},
		SchemaVersion:   models.SchemaVersion,
	}

	rows, err := s.db.Query(`SELECT key, value FROM app_state`)
	if err != nil {
		return snap, fmt.Errorf("reading state: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return snap, fmt.Errorf("scanning state row: %w", err)
		}
		s.decodeField(&snap, key, []byte(value))
	}
	return snap, rows.Err()
}

func (s *Store) decodeField(snap *models.Snapshot, key string, value []byte) {
	var err error
	switch key {
	case keyProfile:
		err = json.Unmarshal(value, &snap.Profile)
	case keyHistory:
		err = json.Unmarshal(value, &snap.History)
		if snap.History == nil {
			snap.History = []models.WorkoutRecord{}
		}
	case keyCurrentSession:
		err = json.Unmarshal(value, &snap.CurrentSession)
		if snap.CurrentSession == nil {
			snap.CurrentSession = []models.SetEntry{}
		}
	case keyPersonalRecords:
		err = json.Unmarshal(value, &snap.PersonalRecords)
		if snap.PersonalRecords == nil {
			snap.PersonalRecords = map[string]models.PersonalRecord{}
		}
	case keyTotalXP:
		err = json.Unmarshal(value, &snap.TotalXP)
	case keyLastExercise:
		err = json.Unmarshal(value, &snap.LastExerciseName)
	case keySchemaVersion:
		// Already validated by ensureSchemaVersion.
	default:
		s.log.Warn("unknown state field ignored", "key", key)
	}
	if err != nil {
		s.log.Warn("malformed state field, using default", "key", key, "error", err)
	}
}

// Queue records the document to be written on the next Flush. Queueing
// replaces any previously queued document; the newest state always wins.
func (s *Store) Queue(snap models.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = &snap
}

// Dirty reports whether a queued document is awaiting Flush.
func (s *Store) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Flush commits the queued document, writing every logical field in one
// transaction. No-op when nothing is queued.
func (s *Store) Flush() error {
	s.mu.Lock()
	snap := s.pending
	s.pending = nil
	s.mu.Unlock()

	if snap == nil {
		return nil
	}

	// A nil profile still writes its row (as JSON null) so a reset clears a
	// previously persisted profile instead of leaving it to resurrect on load.
	fields := map[string]any{
		keyProfile:         snap.Profile,
		keyHistory:         snap.History,
		keyCurrentSession:  snap.CurrentSession,
		keyPersonalRecords: snap.PersonalRecords,
		keyTotalXP:         snap.TotalXP,
		keyLastExercise:    snap.LastExerciseName,
		keySchemaVersion:   models.SchemaVersion,
	}

	tx, err := s.db.Begin()
	if err != nil {
		s.requeue(snap)
		return fmt.Errorf("starting state write: %w", err)
	}
	for key, v := range fields {
		data, err := json.Marshal(v)
		if err != nil {
			tx.Rollback()
			s.requeue(snap)
			return fmt.Errorf("encoding state field %s: %w", key, err)
		}
		if _, err := tx.Exec(
			`INSERT OR REPLACE INTO app_state (key, value) VALUES (?, ?)`,
			key, string(data)); err != nil {
			tx.Rollback()
			s.requeue(snap)
			return fmt.Errorf("writing state field %s: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		s.requeue(snap)
		return fmt.Errorf("committing state write: %w", err)
	}
	return nil
}

// requeue restores a failed write so a later Flush can retry it, unless a
// newer document was queued in the meantime.
func (s *Store) requeue(snap *models.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		s.pending = snap
	}
}

// SoftReset wipes every field except the schema version marker and drops any
// queued write.
func (s *Store) SoftReset() error {
	s.mu.Lock()
	s.pending = nil
	s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM app_state WHERE key != ?`, keySchemaVersion); err != nil {
		return fmt.Errorf("resetting state: %w", err)
	}
	return s.writeSchemaVersion()
}

// Close flushes any queued write and closes the database.
func (s *Store) Close() error {
	if err := s.Flush(); err != nil {
		s.log.Error("flush on close failed", "error", err)
	}
	return s.db.Close()
}
