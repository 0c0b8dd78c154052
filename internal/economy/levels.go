package economy

// MaxLevel caps the level ladder.
const MaxLevel = 100

// XPForLevel returns the cumulative XP required to reach level l.
// Level 1 starts at 0 XP; each subsequent level costs 100 more XP than the
// one before it, so the cumulative threshold is 100*l*(l+1)/2 - 100.
// The schedule is strictly increasing.
func XPForLevel(l int) int {
	if l <= 1 {
		return 0
	}
	return 100*l*(l+1)/2 - 100
}

// LevelForXP returns the largest level whose threshold is at or below xp.
// It is a pure, monotonic function of cumulative XP.
func LevelForXP(xp int) int {
	level := 1
	for l := 2; l <= MaxLevel; l++ {
		if XPForLevel(l) > xp {
			break
		}
		level = l
	}
	return level
}

// LevelProgress returns how far xp is through the current level, in [0,1].
// At MaxLevel progress is pinned to 1.
func LevelProgress(xp int) float64 {
	level := LevelForXP(xp)
	if level >= MaxLevel {
		return 1
	}
	lo := XPForLevel(level)
	hi := XPForLevel(level + 1)
	return float64(xp-lo) / float64(hi-lo)
}
