package tracker

import (
	"math"

	"github.com/claude/ironpath/internal/models"
)

const (
	// minutesPerStrengthSet is the time a strength set counts for in session
	// totals and in the cardio-vs-strength classification.
	minutesPerStrengthSet = 3
	// EPOC bonus as a fraction of total calories.
	epocFactorStrength = 0.12
	epocFactorCardio   = 0.05
	// diffDeadbandPercent: smaller relative changes read as neutral.
	diffDeadbandPercent = 2.0
)

// FinishResult is the outcome of finalizing a workout: the appended history
// record plus the comparison against the previous workout of the same type.
type FinishResult struct {
	Record      models.WorkoutRecord `json:"record"`
	DiffPercent float64              `json:"diffPercent"`
	DiffType    models.DiffType      `json:"diffType"`
	TotalXP     int                  `json:"totalXp"`
}

// FinishWorkout reduces the in-progress session into one history record,
// compares it with the most recent workout of the same type, appends it to
// history (newest first) and clears the session. An empty session is
// rejected with no state change.
func (t *Tracker) FinishWorkout() (FinishResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.session) == 0 {
		return FinishResult{}, ErrEmptySession
	}

	var (
		cardioMinutes    float64
		strengthSetCount int
		totalVolume      float64
		totalCalories    int
		totalXP          int
	)
	for _, s := range t.session {
		if s.Kind == models.KindCardio {
			cardioMinutes += s.RepsOrSeconds
		} else {
			strengthSetCount++
		}
		totalVolume += s.Volume
		totalCalories += s.Calories
		totalXP += s.XP
	}

	// Cardio wins only when its minutes strictly exceed the strength time
	// equivalent; a tie is a strength session.
	strengthMinutes := float64(strengthSetCount * minutesPerStrengthSet)
	sessionType := models.SessionStrength
	if cardioMinutes > strengthMinutes {
		sessionType = models.SessionCardio
	}

	epocFactor := epocFactorCardio
	if strengthSetCount > 0 {
		epocFactor = epocFactorStrength
	}

	now := t.now()
	record := models.WorkoutRecord{
		TimestampMs:   now.UnixMilli(),
		DisplayDate:   now.Format("Jan 2"),
		TotalVolume:   totalVolume,
		TotalCalories: totalCalories,
		TotalXP:       totalXP,
		TotalMinutes:  int(math.Round(cardioMinutes + strengthMinutes)),
		EPOCCalories:  int(math.Round(float64(totalCalories) * epocFactor)),
		SessionType:   sessionType,
	}

	diffPercent, diffType := t.compareWithHistory(record)

	t.history = append([]models.WorkoutRecord{record}, t.history...)
	t.totalXP = sumHistoryXP(t.history)
	t.session = []models.SetEntry{}
	t.sessionRecords = map[string]bool{}
	t.queue()

	return FinishResult{
		Record:      record,
		DiffPercent: diffPercent,
		DiffType:    diffType,
		TotalXP:     t.totalXP,
	}, nil
}

// compareWithHistory finds the most recent record of the same session type
// and computes the relative change of the type's headline metric: minutes
// for cardio, volume for strength. Changes inside the deadband are neutral.
// Callers must hold t.mu; t.history must not yet contain the new record.
func (t *Tracker) compareWithHistory(record models.WorkoutRecord) (float64, models.DiffType) {
	var prev *models.WorkoutRecord
	for i := range t.history {
		if t.history[i].SessionType == record.SessionType {
			prev = &t.history[i]
			break
		}
	}
	if prev == nil {
		return 0, models.DiffNeutral
	}

	var current, previous float64
	if record.SessionType == models.SessionCardio {
		current, previous = float64(record.TotalMinutes), float64(prev.TotalMinutes)
	} else {
		current, previous = record.TotalVolume, prev.TotalVolume
	}
	if previous <= 0 {
		return 0, models.DiffNeutral
	}

	diffPercent := (current - previous) / previous * 100
	diffType := models.DiffNeutral
	if math.Abs(diffPercent) > diffDeadbandPercent {
		if diffPercent > 0 {
			diffType = models.DiffPositive
		} else {
			diffType = models.DiffNegative
		}
	}
	return diffPercent, diffType
}
