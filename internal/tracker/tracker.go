// Package tracker owns the mutable application state: the user profile, the
// in-progress session, personal records, the workout history and the running
// XP total. All mutations go through one Tracker instance; there are no
// package-level globals. Every successful mutation queues a persistence write.
package tracker

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/ironpath/internal/catalog"
	"github.com/claude/ironpath/internal/models"
	"github.com/claude/ironpath/internal/progression"
	"github.com/claude/ironpath/internal/scoring"
	"github.com/google/uuid"
)

var (
	// ErrEmptySession rejects finalizing a workout with no logged sets.
	ErrEmptySession = errors.New("cannot finish an empty workout")
	// ErrSetNotFound reports a delete for an unknown set ID.
	ErrSetNotFound = errors.New("set not found in current session")
	// ErrRecordNotFound reports a delete for an unknown history entry.
	ErrRecordNotFound = errors.New("workout record not found in history")
)

// Store is the persistence surface the tracker writes through. Writes are
// queued; Flush commits them.
type Store interface {
	Load() (models.Snapshot, error)
	Queue(models.Snapshot)
	Flush() error
}

// Tracker is the single-writer controller over the application state.
// The mutex serializes HTTP-driven mutations; the domain model itself is
// single-actor.
type Tracker struct {
	catalog *catalog.Catalog
	store   Store
	log     *slog.Logger
	now     func() time.Time

	mu      sync.Mutex
	profile *models.Profile
	history []models.WorkoutRecord
	session []models.SetEntry
	records map[string]models.PersonalRecord
	// sessionRecords marks exercises whose current record was established by
	// the in-progress session. Only those records are re-derived from the
	// session when their holder is deleted; records carried over from earlier
	// sessions stay put.
	sessionRecords map[string]bool
	totalXP        int
	lastExercise   string
}

// New loads the persisted state and returns a ready tracker. The XP total is
// always recomputed from history on load so manual edits to the persisted
// document cannot cause drift.
func New(cat *catalog.Catalog, store Store, log *slog.Logger) (*Tracker, error) {
	snap, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading state: %w", err)
	}

	t := &Tracker{
		catalog: cat,
		store:   store,
		log:     log,
		now:     time.Now,
	}
	t.restore(snap)
	return t, nil
}

func (t *Tracker) restore(snap models.Snapshot) {
	t.profile = snap.Profile
	t.history = snap.History
	if t.history == nil {
		t.history = []models.WorkoutRecord{}
	}
	t.session = snap.CurrentSession
	if t.session == nil {
		t.session = []models.SetEntry{}
	}
	t.records = snap.PersonalRecords
	if t.records == nil {
		t.records = map[string]models.PersonalRecord{}
	}
	t.sessionRecords = map[string]bool{}
	t.lastExercise = snap.LastExerciseName
	t.totalXP = sumHistoryXP(t.history)
}

func sumHistoryXP(history []models.WorkoutRecord) int {
	total := 0
	for _, rec := range history {
		total += rec.TotalXP
	}
	return total
}

// snapshot builds the current state document. Callers must hold t.mu.
func (t *Tracker) snapshot() models.Snapshot {
	history := make([]models.WorkoutRecord, len(t.history))
	copy(history, t.history)
	session := make([]models.SetEntry, len(t.session))
	copy(session, t.session)
	records := make(map[string]models.PersonalRecord, len(t.records))
	for name, pr := range t.records {
		records[name] = pr
	}
	var profile *models.Profile
	if t.profile != nil {
		p := *t.profile
		profile = &p
	}
	return models.Snapshot{
		Profile:          profile,
		History:          history,
		CurrentSession:   session,
		PersonalRecords:  records,
		TotalXP:          t.totalXP,
		LastExerciseName: t.lastExercise,
		SchemaVersion:    models.SchemaVersion,
	}
}

// queue hands the current state to the store. Callers must hold t.mu.
func (t *Tracker) queue() {
	t.store.Queue(t.snapshot())
}

// SetProfile validates and stores the body profile.
func (t *Tracker) SetProfile(p models.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.profile = &p
	t.queue()
	return nil
}

// Profile returns a copy of the profile, or nil when onboarding has not run.
func (t *Tracker) Profile() *models.Profile {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.profile == nil {
		return nil
	}
	p := *t.profile
	return &p
}

// AddStrengthSet scores and logs one weighted, bodyweight or isometric set.
// The returned entry includes the PR bonus when the set establishes a new
// personal record.
func (t *Tracker) AddStrengthSet(exerciseName string, weightKg, repsOrSeconds float64) (models.SetEntry, error) {
	ex, err := t.catalog.Exercise(exerciseName)
	if err != nil {
		return models.SetEntry{}, err
	}
	if ex.Kind == models.KindCardio {
		return models.SetEntry{}, fmt.Errorf("%s is a cardio exercise, log it with minutes and intensity", exerciseName)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	score, err := scoring.ScoreStrength(ex, t.profile, weightKg, repsOrSeconds)
	if err != nil {
		return models.SetEntry{}, err
	}

	entry := models.SetEntry{
		ID:            uuid.NewString(),
		ExerciseName:  ex.Name,
		Kind:          ex.Kind,
		WeightKg:      weightKg,
		RepsOrSeconds: repsOrSeconds,
		Volume:        score.Volume,
		Calories:      score.Calories,
		XP:            score.XP,
	}

	// Isometric holds are scored by time; only rep-based strength sets
	// compete for records.
	if ex.Kind != models.KindIsometric {
		effective := scoring.EffectiveLoad(ex, weightKg)
		if t.checkAndUpdateRecord(ex.Name, effective, repsOrSeconds) {
			entry.PersonalRecord = true
			entry.XP += scoring.PRBonusXP
			t.log.Info("new personal record", "exercise", ex.Name, "weight_kg", effective)
		}
	}

	t.session = append([]models.SetEntry{entry}, t.session...)
	t.lastExercise = ex.Name
	t.queue()
	return entry, nil
}

// AddCardioSet scores and logs one cardio set. The MET value comes from the
// catalog's per-exercise, per-intensity table with a moderate fallback.
func (t *Tracker) AddCardioSet(exerciseName, intensity string, minutes float64) (models.SetEntry, error) {
	ex, err := t.catalog.Exercise(exerciseName)
	if err != nil {
		return models.SetEntry{}, err
	}
	if ex.Kind != models.KindCardio {
		return models.SetEntry{}, fmt.Errorf("%s is not a cardio exercise", exerciseName)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	met := t.catalog.CardioMET(ex.Name, intensity)
	score, err := scoring.ScoreCardio(met, t.profile, minutes)
	if err != nil {
		return models.SetEntry{}, err
	}

	entry := models.SetEntry{
		ID:            uuid.NewString(),
		ExerciseName:  ex.Name,
		Kind:          ex.Kind,
		RepsOrSeconds: minutes,
		Volume:        score.Volume,
		Calories:      score.Calories,
		XP:            score.XP,
	}

	t.session = append([]models.SetEntry{entry}, t.session...)
	t.lastExercise = ex.Name
	t.queue()
	return entry, nil
}

// Session returns the in-progress session, newest set first.
func (t *Tracker) Session() []models.SetEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]models.SetEntry, len(t.session))
	copy(out, t.session)
	return out
}

// DeleteSet removes one set from the in-progress session. When the removed
// set held the personal record for its exercise, the record is recomputed
// from the remaining same-session sets.
func (t *Tracker) DeleteSet(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx := -1
	for i, s := range t.session {
		if s.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("deleting set %s: %w", id, ErrSetNotFound)
	}

	removed := t.session[idx]
	t.session = append(t.session[:idx], t.session[idx+1:]...)

	if t.heldRecord(removed) {
		t.recomputeRecord(removed.ExerciseName)
	}

	t.queue()
	return nil
}

// History returns the finalized workouts, newest first.
func (t *Tracker) History() []models.WorkoutRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]models.WorkoutRecord, len(t.history))
	copy(out, t.history)
	return out
}

// DeleteHistory removes the workout with the given timestamp and rolls its XP
// contribution out of the running total by recomputing from what remains.
func (t *Tracker) DeleteHistory(timestampMs int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx := -1
	for i, rec := range t.history {
		if rec.TimestampMs == timestampMs {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("deleting workout at %d: %w", timestampMs, ErrRecordNotFound)
	}

	t.history = append(t.history[:idx], t.history[idx+1:]...)
	t.totalXP = sumHistoryXP(t.history)
	t.queue()
	return nil
}

// PersonalRecords returns a copy of the record table.
func (t *Tracker) PersonalRecords() map[string]models.PersonalRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]models.PersonalRecord, len(t.records))
	for name, pr := range t.records {
		out[name] = pr
	}
	return out
}

// TotalXP returns the running XP total (always the sum of history XP).
func (t *Tracker) TotalXP() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.totalXP
}

// Progression returns the derived level state for the current XP total.
func (t *Tracker) Progression() progression.Level {
	return progression.LevelOf(t.TotalXP())
}

// LastExercise returns the most recently logged exercise name.
func (t *Tracker) LastExercise() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastExercise
}

// Reset wipes all state: profile, session, records, history and XP. The
// persisted document is cleared immediately.
func (t *Tracker) Reset() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.profile = nil
	t.history = []models.WorkoutRecord{}
	t.session = []models.SetEntry{}
	t.records = map[string]models.PersonalRecord{}
	t.sessionRecords = map[string]bool{}
	t.totalXP = 0
	t.lastExercise = ""

	t.queue()
	if err := t.store.Flush(); err != nil {
		return fmt.Errorf("persisting reset: %w", err)
	}
	return nil
}
