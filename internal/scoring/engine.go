// Package scoring converts raw set input (weight, reps, duration, intensity)
// into volume, calories and XP. All functions are pure; calorie figures are
// heuristic MET-based estimates, not medical-grade values.
package scoring

import (
	"fmt"
	"math"

	"github.com/claude/ironpath/internal/catalog"
	"github.com/claude/ironpath/internal/models"
)

const (
	// DefaultBodyWeightKg is used when no profile exists.
	DefaultBodyWeightKg = 75
	// SecondsPerRep converts repetitions into active time.
	SecondsPerRep = 3
	// recoveryMinutesPerSet is the rest time folded into a strength set's
	// calorie minutes.
	recoveryMinutesPerSet = 1.5

	baseMET          = 4.5
	metPerLoadFactor = 1.5
	minMET           = 2.0
	maxMET           = 12.0

	// MinCalories is the per-set calorie floor: no logged set nets zero.
	MinCalories = 2
	// MinStrengthXP is the XP floor for non-cardio sets.
	MinStrengthXP = 5

	// CardioXPMultiplier maps cardio calories onto XP one-to-one.
	CardioXPMultiplier = 1.0
	// IsometricXPPerSecond scores time held.
	IsometricXPPerSecond  = 0.2
	isometricLoadXPFactor = 0.2

	bodyFactorDefault    = 0.3
	bodyFactorUnilateral = 0.5
	xpDivisor            = 40
	heavyLoadBonusXP     = 10

	// PRBonusXP is added by the tracker when a set establishes a new
	// personal record.
	PRBonusXP = 25
)

// ValidationError reports invalid raw input. The caller must not log a set
// that failed validation; no state is mutated.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Score is the outcome of scoring a single set. XP excludes the PR bonus,
// which is the tracker's call to make.
type Score struct {
	Volume   float64
	Calories int
	XP       int
}

// EffectiveBodyWeight resolves the body weight used by the formulas: at least
// 1 kg, or the default fallback when no profile exists. Never zero, so every
// division by it is safe.
func EffectiveBodyWeight(p *models.Profile) float64 {
	if p == nil {
		return DefaultBodyWeightKg
	}
	return math.Max(1, p.WeightKg)
}

// EffectiveLoad is the external load moved per rep: the entered weight,
// doubled for dual-implement exercises.
func EffectiveLoad(ex catalog.Exercise, weightKg float64) float64 {
	if weightKg <= 0 {
		return 0
	}
	return weightKg * float64(ex.LoadMultiplier())
}

// ScoreStrength scores one weighted, bodyweight or isometric set.
func ScoreStrength(ex catalog.Exercise, profile *models.Profile, weightKg, repsOrSeconds float64) (Score, error) {
	if err := validateStrengthInput(ex, weightKg, repsOrSeconds); err != nil {
		return Score{}, err
	}

	bodyWeight := EffectiveBodyWeight(profile)
	load := EffectiveLoad(ex, weightKg)

	var volume float64
	switch ex.Kind {
	case models.KindIsometric:
		// Scored by seconds held; no reps multiplier.
		volume = load
	case models.KindBodyweight:
		volume = (bodyWeight + load) * repsOrSeconds
	default:
		volume = load * repsOrSeconds
	}

	var activeMinutes float64
	if ex.Kind == models.KindIsometric {
		activeMinutes = repsOrSeconds / 60
	} else {
		activeMinutes = repsOrSeconds * SecondsPerRep / 60
	}
	totalMinutes := activeMinutes + recoveryMinutesPerSet

	loadFactor := 0.0
	if load > 0 {
		loadFactor = load / bodyWeight
	}
	met := clamp(baseMET+metPerLoadFactor*loadFactor, minMET, maxMET)
	cal := calories(met, bodyWeight, totalMinutes)

	var xp int
	if ex.Kind == models.KindIsometric {
		xp = int(math.Round(repsOrSeconds * IsometricXPPerSecond))
		if load > 0 {
			xp += int(math.Round(load * isometricLoadXPFactor))
		}
	} else {
		bodyFactor := bodyFactorDefault
		if ex.Unilateral {
			bodyFactor = bodyFactorUnilateral
		}
		workIndex := (load + bodyFactor*bodyWeight) * repsOrSeconds
		xp = int(math.Round(workIndex / xpDivisor))
		if load > bodyWeight {
			xp += heavyLoadBonusXP
		}
	}
	if xp < MinStrengthXP {
		xp = MinStrengthXP
	}

	return Score{Volume: volume, Calories: cal, XP: xp}, nil
}

// ScoreCardio scores one cardio set from its MET value and duration. Volume
// for cardio is the minutes themselves.
func ScoreCardio(met float64, profile *models.Profile, minutes float64) (Score, error) {
	if !isFiniteNumber(minutes) || minutes <= 0 {
		return Score{}, &ValidationError{Field: "minutes", Reason: "must be a positive number"}
	}
	if met <= 0 {
		met = catalog.FallbackCardioMET
	}

	bodyWeight := EffectiveBodyWeight(profile)
	cal := calories(met, bodyWeight, minutes)
	xp := int(math.Round(float64(cal) * CardioXPMultiplier))
	if xp < 1 {
		xp = 1
	}

	return Score{Volume: minutes, Calories: cal, XP: xp}, nil
}

func validateStrengthInput(ex catalog.Exercise, weightKg, repsOrSeconds float64) error {
	if !isFiniteNumber(repsOrSeconds) || repsOrSeconds <= 0 {
		field := "reps"
		if ex.Kind == models.KindIsometric {
			field = "seconds"
		}
		return &ValidationError{Field: field, Reason: "must be a positive number"}
	}
	if !isFiniteNumber(weightKg) || weightKg < 0 {
		return &ValidationError{Field: "weight", Reason: "must be a non-negative number"}
	}
	weightMandatory := ex.RequiresWeight && !ex.OptionalWeight && !ex.MachineAssisted &&
		ex.Kind == models.KindWeighted
	if weightMandatory && weightKg <= 0 {
		return &ValidationError{Field: "weight", Reason: "required for this exercise"}
	}
	return nil
}

// calories applies the standard MET energy equation
// kcal/min = MET x 3.5 x kg / 200, with the per-set floor.
func calories(met, bodyWeightKg, minutes float64) int {
	kcal := int(math.Round(met * 3.5 * bodyWeightKg / 200 * minutes))
	if kcal < MinCalories {
		kcal = MinCalories
	}
	return kcal
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func isFiniteNumber(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
