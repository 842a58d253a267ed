package tracker

import (
	"github.com/claude/ironpath/internal/models"
	"github.com/claude/ironpath/internal/scoring"
)

// checkAndUpdateRecord updates the record table when effectiveWeight strictly
// beats the stored best. Ties do not count, and a zero load never records.
// Reps are stored alongside the weight but do not trigger records on their
// own. Callers must hold t.mu.
func (t *Tracker) checkAndUpdateRecord(exerciseName string, effectiveWeight, reps float64) bool {
	if effectiveWeight <= 0 {
		return false
	}
	if prev, ok := t.records[exerciseName]; ok && effectiveWeight <= prev.WeightKg {
		return false
	}
	t.records[exerciseName] = models.PersonalRecord{WeightKg: effectiveWeight, Reps: reps}
	t.sessionRecords[exerciseName] = true
	return true
}

// heldRecord reports whether a session set backs the current record for its
// exercise. The PR flag alone is not enough: after a delete-recompute the
// record holder is a set that never carried the flag. The weight comparison
// applies only to records established this session; a record carried over
// from an earlier session is never backed by a tied set logged now. Callers
// must hold t.mu.
func (t *Tracker) heldRecord(entry models.SetEntry) bool {
	if entry.PersonalRecord {
		return true
	}
	if !t.sessionRecords[entry.ExerciseName] {
		return false
	}
	rec, ok := t.records[entry.ExerciseName]
	if !ok {
		return false
	}
	ex, err := t.catalog.Exercise(entry.ExerciseName)
	if err != nil {
		return false
	}
	effective := scoring.EffectiveLoad(ex, entry.WeightKg)
	return effective > 0 && effective >= rec.WeightKg
}

// recomputeRecord rebuilds an exercise's record from the remaining sets of
// the in-progress session after the record-holding set was deleted. Records
// here are session-scoped: history is not consulted, so the record drops to
// the best remaining same-session weight or clears entirely. Callers must
// hold t.mu.
func (t *Tracker) recomputeRecord(exerciseName string) {
	ex, err := t.catalog.Exercise(exerciseName)
	if err != nil {
		// The exercise vanished from the catalog; drop the record.
		delete(t.records, exerciseName)
		delete(t.sessionRecords, exerciseName)
		return
	}

	var best *models.PersonalRecord
	for _, s := range t.session {
		if s.ExerciseName != exerciseName {
			continue
		}
		effective := scoring.EffectiveLoad(ex, s.WeightKg)
		if effective > 0 && (best == nil || effective > best.WeightKg) {
			best = &models.PersonalRecord{WeightKg: effective, Reps: s.RepsOrSeconds}
		}
	}

	if best != nil {
		t.records[exerciseName] = *best
	} else {
		delete(t.records, exerciseName)
		delete(t.sessionRecords, exerciseName)
	}
}
