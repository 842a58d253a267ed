// Package progression maps accumulated XP onto a static rank ladder.
package progression

// Threshold is one rung of the ladder: the XP required to hold a rank.
type Threshold struct {
	XP   int    `json:"xp"`
	Rank string `json:"rank"`
	Icon string `json:"icon"`
}

// ladder is ascending by XP; the first entry is the starting rank.
var ladder = []Threshold{
	{XP: 0, Rank: "Rookie", Icon: "🥚"},
	{XP: 500, Rank: "Novice", Icon: "🐣"},
	{XP: 1500, Rank: "Brawler", Icon: "💪"},
	{XP: 3000, Rank: "Athlete", Icon: "🏃"},
	{XP: 6000, Rank: "Beast", Icon: "🦍"},
	{XP: 10000, Rank: "Titan", Icon: "⚡"},
	{XP: 16000, Rank: "Legend", Icon: "🏆"},
}

// Level is the derived progression state for a given XP total.
type Level struct {
	TotalXP int    `json:"totalXp"`
	Level   int    `json:"level"`
	Rank    string `json:"rank"`
	Icon    string `json:"icon"`
	// NextThresholdXP is the XP of the next rank, 0 when AtMax.
	NextThresholdXP int  `json:"nextThresholdXp,omitempty"`
	AtMax           bool `json:"atMax,omitempty"`
	// ProgressPercent is the position between the current and next threshold,
	// clamped to [0, 100]. 100 at max rank.
	ProgressPercent float64 `json:"progressPercent"`
}

// Thresholds returns a copy of the ladder.
func Thresholds() []Threshold {
	out := make([]Threshold, len(ladder))
	copy(out, ladder)
	return out
}

// LevelOf computes the level, rank and display progress for a total XP.
// Negative XP is treated as zero.
func LevelOf(totalXP int) Level {
	if totalXP < 0 {
		totalXP = 0
	}

	idx := 0
	for i, t := range ladder {
		if totalXP >= t.XP {
			idx = i
		}
	}

	lvl := Level{
		TotalXP: totalXP,
		Level:   idx + 1,
		Rank:    ladder[idx].Rank,
		Icon:    ladder[idx].Icon,
	}

	if idx == len(ladder)-1 {
		lvl.AtMax = true
		lvl.ProgressPercent = 100
		return lvl
	}

	prev := ladder[idx].XP
	next := ladder[idx+1].XP
	lvl.NextThresholdXP = next
	lvl.ProgressPercent = clampPercent(float64(totalXP-prev) / float64(next-prev) * 100)
	return lvl
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
