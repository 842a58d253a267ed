package models

import (
	"fmt"
	"math"
)

// Kind classifies how an exercise is performed and therefore how it is scored.
type Kind string

const (
	KindWeighted   Kind = "weighted"
	KindBodyweight Kind = "bodyweight"
	KindIsometric  Kind = "isometric"
	KindCardio     Kind = "cardio"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindWeighted, KindBodyweight, KindIsometric, KindCardio:
		return true
	}
	return false
}

// IsStrength reports whether sets of this kind count toward strength totals.
// Everything except cardio does.
func (k Kind) IsStrength() bool {
	return k != KindCardio
}

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

type Goal string

const (
	GoalStrength Goal = "strength"
	GoalMuscle   Goal = "muscle"
	GoalHealth   Goal = "health"
	GoalFatLoss  Goal = "fatloss"
)

// Profile is the user's body profile, used by the scoring formulas.
type Profile struct {
	WeightKg float64 `json:"weightKg"`
	HeightCm float64 `json:"heightCm"`
	Age      int     `json:"age"`
	Gender   Gender  `json:"gender"`
	Goal     Goal    `json:"goal"`
}

// Validate checks the profile invariants: weight, height and age must be
// finite and strictly positive, gender and goal must be known values.
func (p Profile) Validate() error {
	if !(p.WeightKg > 0) || math.IsInf(p.WeightKg, 0) {
		return fmt.Errorf("profile weight must be a positive number, got %v", p.WeightKg)
	}
	if !(p.HeightCm > 0) || math.IsInf(p.HeightCm, 0) {
		return fmt.Errorf("profile height must be a positive number, got %v", p.HeightCm)
	}
	if p.Age <= 0 {
		return fmt.Errorf("profile age must be positive, got %d", p.Age)
	}
	if p.Gender != GenderMale && p.Gender != GenderFemale {
		return fmt.Errorf("unknown gender %q", p.Gender)
	}
	switch p.Goal {
	case GoalStrength, GoalMuscle, GoalHealth, GoalFatLoss:
	default:
		return fmt.Errorf("unknown goal %q", p.Goal)
	}
	return nil
}

// SetEntry is one logged performance of an exercise. Entries live only inside
// the in-progress session; finalizing the workout consumes them.
type SetEntry struct {
	ID           string `json:"id"`
	ExerciseName string `json:"exerciseName"`
	Kind         Kind   `json:"kind"`
	// WeightKg is the raw input weight (0 for bodyweight-only sets).
	WeightKg float64 `json:"weightKg"`
	// RepsOrSeconds holds repetitions for weighted/bodyweight sets, seconds
	// held for isometric sets, and minutes for cardio sets.
	RepsOrSeconds  float64 `json:"repsOrSeconds"`
	Volume         float64 `json:"volume"`
	Calories       int     `json:"calories"`
	XP             int     `json:"xp"`
	PersonalRecord bool    `json:"isPersonalRecord"`
}

// PersonalRecord is the best known effective weight for one exercise, with
// the reps performed at that weight.
type PersonalRecord struct {
	WeightKg float64 `json:"weight"`
	Reps     float64 `json:"reps"`
}

// SessionType classifies a finalized workout.
type SessionType string

const (
	SessionCardio   SessionType = "cardio"
	SessionStrength SessionType = "strength"
)

// DiffType classifies the change against the previous workout of the same type.
type DiffType string

const (
	DiffPositive DiffType = "positive"
	DiffNegative DiffType = "negative"
	DiffNeutral  DiffType = "neutral"
)

// WorkoutRecord is one finalized workout in the history. Immutable once
// appended; removable only by explicit history deletion.
type WorkoutRecord struct {
	TimestampMs   int64       `json:"timestampMs"`
	DisplayDate   string      `json:"displayDate"`
	TotalVolume   float64     `json:"totalVolume"`
	TotalCalories int         `json:"totalCalories"`
	TotalXP       int         `json:"totalXp"`
	TotalMinutes  int         `json:"totalMinutes"`
	EPOCCalories  int         `json:"epocCalories,omitempty"`
	SessionType   SessionType `json:"sessionType"`
}

// SchemaVersion is the persisted state document version. A stored document
// with a different version is soft-reset rather than migrated.
const SchemaVersion = 2

// Snapshot is the full persisted state document. Export produces it verbatim
// and import accepts the same shape.
type Snapshot struct {
	Profile          *Profile                  `json:"profile"`
	History          []WorkoutRecord           `json:"history"`
	CurrentSession   []SetEntry                `json:"currentSession"`
	PersonalRecords  map[string]PersonalRecord `json:"personalRecords"`
	TotalXP          int                       `json:"totalXp"`
	LastExerciseName string                    `json:"lastExerciseName"`
	SchemaVersion    int                       `json:"schemaVersion"`
}
