package economy

import (
	"time"

	"github.com/abhisek/studyquest/internal/store"
)

// applyStreak updates the profile's activity streak for activity on the
// given calendar day (store.DateLayout). Same-day repeats are no-ops, the
// next consecutive day increments, anything further resets to 1.
func applyStreak(p *store.StudentProfile, day string) {
	switch {
	case p.LastActive == day:
		// Idempotent same-day call.
		return
	case p.LastActive != "" && daysBetween(p.LastActive, day) == 1:
		p.Streak++
	default:
		p.Streak = 1
	}
	p.LastActive = day
	if p.Streak > p.LongestStreak {
		p.LongestStreak = p.Streak
	}
}

// daysBetween returns the whole calendar days from date a to date b, both in
// store.DateLayout. Unparseable input counts as a gap (streak reset).
func daysBetween(a, b string) int {
	ta, errA := time.Parse(store.DateLayout, a)
	tb, errB := time.Parse(store.DateLayout, b)
	if errA != nil || errB != nil {
		return -1
	}
	return int(tb.Sub(ta).Hours() / 24)
}
