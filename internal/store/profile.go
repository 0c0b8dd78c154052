package store

import "time"

// DateLayout is the calendar-day format shared by streak tracking and the
// parental daily limit counters. Both reset on the same local-day boundary.
const DateLayout = "2006-01-02"

// StudentProfile is the durable per-student state. It is mutated exclusively
// through ProfileRepo.Transact; callers never persist it directly.
type StudentProfile struct {
	StudentID     string    `json:"student_id"`
	Coins         int       `json:"coins"`          // spendable balance, never negative
	TotalCoins    int       `json:"total_coins"`    // lifetime coins earned, monotone
	XP            int       `json:"xp"`             // monotone; level is derived, never stored
	Streak        int       `json:"streak"`         // consecutive active days
	LongestStreak int       `json:"longest_streak"`
	LastActive    string    `json:"last_active"` // DateLayout, empty for a fresh profile
	TotalQuizzes  int       `json:"total_quizzes"`
	StudyMinutes  int       `json:"study_minutes"`
	CreatedAt     time.Time `json:"created_at"`

	// WelcomeGranted flips when the one-time welcome bonus is credited so a
	// concurrent or repeated first session can never grant it twice.
	WelcomeGranted bool `json:"welcome_granted,omitempty"`

	// Achievements maps unlocked achievement id to unlock time.
	Achievements map[string]time.Time `json:"achievements"`

	// Perks maps owned perk id to its expiry/usage state.
	Perks map[string]*PerkOwnership `json:"perks"`

	// Mastery maps subject -> topic -> accumulated answer statistics.
	Mastery map[string]map[string]*TopicStats `json:"mastery"`

	Policy ParentalPolicy `json:"policy"`
	Usage  DailyUsage     `json:"usage"`

	// LastAlertAt is the time the attention policy last fired for this
	// student, zero if never. Drives the alert cooldown across restarts.
	LastAlertAt time.Time `json:"last_alert_at,omitempty"`
}

// PerkOwnership records one owned perk. Duration perks carry an expiry;
// one-shot perks carry a use counter and no expiry.
type PerkOwnership struct {
	PerkID      string     `json:"perk_id"`
	PurchasedAt time.Time  `json:"purchased_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	UsesLeft    int        `json:"uses_left,omitempty"`
}

// TopicStats accumulates per-topic answer counts for mastery display.
type TopicStats struct {
	Attempts int `json:"attempts"`
	Correct  int `json:"correct"`
}

// ParentalPolicy is the per-student parental configuration. Zero limits mean
// unlimited.
type ParentalPolicy struct {
	WebcamEnabled        bool `json:"webcam_enabled"`
	DailyStudyMinutes    int  `json:"daily_study_minutes"`
	DailyQuizLimit       int  `json:"daily_quiz_limit"`
	AutoAdjustDifficulty bool `json:"auto_adjust_difficulty"`
}

// DailyUsage tracks activity for one calendar day; counters are implicitly
// reset when Date no longer matches the current day.
type DailyUsage struct {
	Date         string `json:"date"` // DateLayout
	QuizCount    int    `json:"quiz_count"`
	StudyMinutes int    `json:"study_minutes"`
}

// DefaultPolicy returns the parental policy applied to new profiles.
func DefaultPolicy() ParentalPolicy {
	return ParentalPolicy{
		WebcamEnabled:        true,
		DailyStudyMinutes:    120,
		DailyQuizLimit:       10,
		AutoAdjustDifficulty: true,
	}
}

// NewProfile creates the default zero-state profile for a student id:
// no coins, no XP, no achievements, empty streak.
func NewProfile(studentID string, now time.Time) *StudentProfile {
	return &StudentProfile{
		StudentID:    studentID,
		CreatedAt:    now,
		Achievements: make(map[string]time.Time),
		Perks:        make(map[string]*PerkOwnership),
		Mastery:      make(map[string]map[string]*TopicStats),
		Policy:       DefaultPolicy(),
	}
}

// TopicStatsFor returns the stats bucket for (subject, topic), creating it
// if absent.
func (p *StudentProfile) TopicStatsFor(subject, topic string) *TopicStats {
	if p.Mastery == nil {
		p.Mastery = make(map[string]map[string]*TopicStats)
	}
	topics := p.Mastery[subject]
	if topics == nil {
		topics = make(map[string]*TopicStats)
		p.Mastery[subject] = topics
	}
	ts := topics[topic]
	if ts == nil {
		ts = &TopicStats{}
		topics[topic] = ts
	}
	return ts
}

// UsageFor returns the daily usage counters for the given day, rolling them
// over if the stored day has passed.
func (p *StudentProfile) UsageFor(day string) *DailyUsage {
	if p.Usage.Date != day {
		p.Usage = DailyUsage{Date: day}
	}
	return &p.Usage
}
