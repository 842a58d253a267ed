package progression

import "testing"

// TestLevelOfBoundaries verifies rank assignment at the exact ladder
// boundaries: a threshold is reached at its XP value, not one past it.
func TestLevelOfBoundaries(t *testing.T) {
	cases := []struct {
		xp       int
		level    int
		rank     string
		nextXP   int
		atMax    bool
	}{
		{0, 1, "Rookie", 500, false},
		{499, 1, "Rookie", 500, false},
		{500, 2, "Novice", 1500, false},
		{1499, 2, "Novice", 1500, false},
		{1500, 3, "Brawler", 3000, false},
		{5999, 4, "Athlete", 6000, false},
		{6000, 5, "Beast", 10000, false},
		{15999, 6, "Titan", 16000, false},
		{16000, 7, "Legend", 0, true},
		{999999, 7, "Legend", 0, true},
	}
	for _, tc := range cases {
		got := LevelOf(tc.xp)
		if got.Level != tc.level || got.Rank != tc.rank {
			t.Errorf("LevelOf(%d) = level %d %q, want level %d %q",
				tc.xp, got.Level, got.Rank, tc.level, tc.rank)
		}
		if got.NextThresholdXP != tc.nextXP {
			t.Errorf("LevelOf(%d).NextThresholdXP = %d, want %d", tc.xp, got.NextThresholdXP, tc.nextXP)
		}
		if got.AtMax != tc.atMax {
			t.Errorf("LevelOf(%d).AtMax = %v, want %v", tc.xp, got.AtMax, tc.atMax)
		}
	}
}

// TestLevelOfProgressPercent verifies the progress fraction between two rungs
// and that the top rung always reports 100.
func TestLevelOfProgressPercent(t *testing.T) {
	// 250 XP sits halfway between Rookie (0) and Novice (500).
	if got := LevelOf(250).ProgressPercent; got != 50 {
		t.Errorf("ProgressPercent at 250 XP = %v, want 50", got)
	}
	if got := LevelOf(0).ProgressPercent; got != 0 {
		t.Errorf("ProgressPercent at 0 XP = %v, want 0", got)
	}
	if got := LevelOf(20000).ProgressPercent; got != 100 {
		t.Errorf("ProgressPercent at max rank = %v, want 100", got)
	}
}

// TestLevelOfNegativeXP verifies negative totals are treated as zero rather
// than panicking or producing a negative progress value.
func TestLevelOfNegativeXP(t *testing.T) {
	got := LevelOf(-100)
	if got.TotalXP != 0 || got.Level != 1 || got.Rank != "Rookie" {
		t.Errorf("LevelOf(-100) = %+v, want zeroed Rookie", got)
	}
}

// TestThresholdsCopy verifies mutating the returned slice does not corrupt
// the ladder.
func TestThresholdsCopy(t *testing.T) {
	out := Thresholds()
	if len(out) != 7 {
		t.Fatalf("len(Thresholds()) = %d, want 7", len(out))
	}
	out[0].Rank = "mutated"
	if got := LevelOf(0).Rank; got != "Rookie" {
		t.Errorf("ladder mutated through Thresholds() copy: rank = %q", got)
	}
}
