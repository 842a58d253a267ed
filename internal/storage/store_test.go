package storage

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/claude/ironpath/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.db")
	s, err := Open(path, testLogger())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

func testSnapshot() models.Snapshot {
	return models.Snapshot{
		Profile: &models.Profile{
			WeightKg: 80, HeightCm: 180, Age: 30,
			Gender: models.GenderMale, Goal: models.GoalStrength,
		},
		History: []models.WorkoutRecord{{
			TimestampMs: 1700000000000, DisplayDate: "Nov 14",
			TotalVolume: 500, TotalCalories: 16, TotalXP: 51,
			TotalMinutes: 3, EPOCCalories: 2, SessionType: models.SessionStrength,
		}},
		CurrentSession: []models.SetEntry{{
			ID: "set-1", ExerciseName: "Bench Press", Kind: models.KindWeighted,
			WeightKg: 100, RepsOrSeconds: 5, Volume: 500, Calories: 16, XP: 51,
			PersonalRecord: true,
		}},
		PersonalRecords:  map[string]models.PersonalRecord{"Bench Press": {WeightKg: 100, Reps: 5}},
		TotalXP:          51,
		LastExerciseName: "Bench Press",
		SchemaVersion:    models.SchemaVersion,
	}
}

// TestLoadEmpty verifies a fresh database loads as an empty document with
// non-nil collections and the current schema version.
func TestLoadEmpty(t *testing.T) {
	s, _ := openTestStore(t)

	snap, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snap.Profile != nil {
		t.Errorf("Profile = %+v, want nil", snap.Profile)
	}
	if snap.History == nil || snap.CurrentSession == nil || snap.PersonalRecords == nil {
		t.Error("collections must be non-nil on an empty load")
	}
	if snap.SchemaVersion != models.SchemaVersion {
		t.Errorf("SchemaVersion = %d, want %d", snap.SchemaVersion, models.SchemaVersion)
	}
}

// TestQueueFlushLoad verifies the full write path: queue, flush, reopen, and
// load the identical document.
func TestQueueFlushLoad(t *testing.T) {
	s, path := openTestStore(t)
	want := testSnapshot()

	s.Queue(want)
	if !s.Dirty() {
		t.Error("Dirty() = false after Queue")
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if s.Dirty() {
		t.Error("Dirty() = true after Flush")
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path, testLogger())
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Profile == nil || *got.Profile != *want.Profile {
		t.Errorf("Profile = %+v, want %+v", got.Profile, want.Profile)
	}
	if len(got.History) != 1 || got.History[0] != want.History[0] {
		t.Errorf("History = %+v, want %+v", got.History, want.History)
	}
	if len(got.CurrentSession) != 1 || got.CurrentSession[0] != want.CurrentSession[0] {
		t.Errorf("CurrentSession = %+v, want %+v", got.CurrentSession, want.CurrentSession)
	}
	if got.PersonalRecords["Bench Press"] != want.PersonalRecords["Bench Press"] {
		t.Errorf("PersonalRecords = %+v, want %+v", got.PersonalRecords, want.PersonalRecords)
	}
	if got.TotalXP != 51 || got.LastExerciseName != "Bench Press" {
		t.Errorf("TotalXP/LastExerciseName = %d/%q, want 51/Bench Press",
			got.TotalXP, got.LastExerciseName)
	}
}

// TestFlushNoOp verifies flushing with nothing queued does nothing.
func TestFlushNoOp(t *testing.T) {
	s, _ := openTestStore(t)
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush with empty queue: %v", err)
	}
}

// TestQueueReplacesPending verifies the newest queued document wins.
func TestQueueReplacesPending(t *testing.T) {
	s, _ := openTestStore(t)

	first := testSnapshot()
	second := testSnapshot()
	second.TotalXP = 99
	second.LastExerciseName = "Deadlift"

	s.Queue(first)
	s.Queue(second)
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.TotalXP != 99 || got.LastExerciseName != "Deadlift" {
		t.Errorf("loaded TotalXP/LastExerciseName = %d/%q, want the second queued document",
			got.TotalXP, got.LastExerciseName)
	}
}

// TestNilProfileClearsRow verifies persisting a document without a profile
// overwrites a previously stored one instead of leaving it behind.
func TestNilProfileClearsRow(t *testing.T) {
	s, _ := openTestStore(t)

	s.Queue(testSnapshot())
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	cleared := testSnapshot()
	cleared.Profile = nil
	s.Queue(cleared)
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Profile != nil {
		t.Errorf("Profile = %+v, want nil after clearing write", got.Profile)
	}
}

// TestSchemaMismatchSoftResets verifies a stored document with a different
// schema version is wiped on open rather than loaded.
func TestSchemaMismatchSoftResets(t *testing.T) {
	s, path := openTestStore(t)
	s.Queue(testSnapshot())
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	if _, err := s.db.Exec(
		`UPDATE app_state SET value = ? WHERE key = 'schemaVersion'`, "1"); err != nil {
		t.Fatalf("forcing old schema version: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path, testLogger())
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Profile != nil || len(got.History) != 0 || got.TotalXP != 0 {
		t.Errorf("document survived a schema mismatch: %+v", got)
	}
	if got.SchemaVersion != models.SchemaVersion {
		t.Errorf("SchemaVersion = %d, want %d after reset", got.SchemaVersion, models.SchemaVersion)
	}
}

// TestMalformedFieldFallsBack verifies one corrupted row degrades to its
// default instead of failing the whole load.
func TestMalformedFieldFallsBack(t *testing.T) {
	s, _ := openTestStore(t)
	s.Queue(testSnapshot())
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	if _, err := s.db.Exec(
		`UPDATE app_state SET value = ? WHERE key = 'history'`, "{not json"); err != nil {
		t.Fatalf("corrupting history row: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.History == nil || len(got.History) != 0 {
		t.Errorf("History = %+v, want empty fallback", got.History)
	}
	if got.TotalXP != 51 {
		t.Errorf("TotalXP = %d, want 51 (other fields unaffected)", got.TotalXP)
	}
}

// TestSoftReset verifies an explicit reset clears every field but keeps the
// version marker.
func TestSoftReset(t *testing.T) {
	s, _ := openTestStore(t)
	s.Queue(testSnapshot())
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	if err := s.SoftReset(); err != nil {
		t.Fatalf("SoftReset: %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Profile != nil || len(got.History) != 0 || len(got.CurrentSession) != 0 ||
		len(got.PersonalRecords) != 0 || got.TotalXP != 0 || got.LastExerciseName != "" {
		t.Errorf("state survived reset: %+v", got)
	}
	if got.SchemaVersion != models.SchemaVersion {
		t.Errorf("SchemaVersion = %d, want %d", got.SchemaVersion, models.SchemaVersion)
	}
}
