package economy

import (
	"testing"
	"time"

	"github.com/abhisek/studyquest/internal/store"
)

func TestApplyStreak(t *testing.T) {
	tests := []struct {
		name        string
		lastActive  string
		streak      int
		day         string
		wantStreak  int
		wantLongest int
	}{
		{"first activity", "", 0, "2026-03-01", 1, 1},
		{"same day is idempotent", "2026-03-01", 3, "2026-03-01", 3, 3},
		{"next day increments", "2026-03-01", 3, "2026-03-02", 4, 4},
		{"gap resets", "2026-03-01", 9, "2026-03-04", 1, 9},
		{"month boundary", "2026-02-28", 1, "2026-03-01", 2, 2},
		{"clock skew backwards resets", "2026-03-05", 4, "2026-03-03", 1, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := store.NewProfile("s1", time.Now())
			p.LastActive = tt.lastActive
			p.Streak = tt.streak
			p.LongestStreak = tt.streak

			applyStreak(p, tt.day)

			if p.Streak != tt.wantStreak {
				t.Errorf("streak = %d, want %d", p.Streak, tt.wantStreak)
			}
			if p.LongestStreak != tt.wantLongest {
				t.Errorf("longest = %d, want %d", p.LongestStreak, tt.wantLongest)
			}
			if p.LastActive != tt.day {
				t.Errorf("last active = %q, want %q", p.LastActive, tt.day)
			}
		})
	}
}

func TestApplyStreak_LongRun(t *testing.T) {
	p := store.NewProfile("s1", time.Now())
	day := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 30; i++ {
		applyStreak(p, day.AddDate(0, 0, i).Format(store.DateLayout))
	}
	if p.Streak != 30 {
		t.Fatalf("streak = %d, want 30", p.Streak)
	}
}
