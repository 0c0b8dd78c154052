// Package parental enforces per-student parental controls: daily time and
// quiz-count limits, webcam opt-out, and difficulty auto-adjust opt-out.
package parental

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/studyquest/internal/store"
)

// LimitKind names which daily limit was exhausted.
type LimitKind string

const (
	LimitStudyTime LimitKind = "study_time"
	LimitQuizCount LimitKind = "quiz_count"
)

// DailyLimitError reports an exhausted daily limit. Callers can distinguish
// the kind to word the refusal appropriately.
type DailyLimitError struct {
	Kind  LimitKind
	Limit int
	Used  int
}

func (e *DailyLimitError) Error() string {
	switch e.Kind {
	case LimitStudyTime:
		return fmt.Sprintf("daily study time limit reached (%d of %d minutes)", e.Used, e.Limit)
	default:
		return fmt.Sprintf("daily quiz limit reached (%d of %d quizzes)", e.Used, e.Limit)
	}
}

// Allowance reports what is left of today's limits. -1 means unlimited.
type Allowance struct {
	MinutesLeft int `json:"minutes_left"`
	QuizzesLeft int `json:"quizzes_left"`
}

// Gate checks and updates parental policy. Limits of zero are unlimited.
type Gate struct {
	profiles store.ProfileRepo
	log      *zap.Logger
	now      func() time.Time
}

// NewGate creates the parental policy gate.
func NewGate(profiles store.ProfileRepo, log *zap.Logger) *Gate {
	return &Gate{profiles: profiles, log: log, now: time.Now}
}

// CheckQuizAllowed returns a DailyLimitError when today's quiz-count or
// study-time limit is already exhausted, nil when another quiz may start.
func (g *Gate) CheckQuizAllowed(ctx context.Context, studentID string) error {
	profile, err := g.profiles.Load(ctx, studentID)
	if err != nil {
		return err
	}

	usage := todaysUsage(profile, g.now())
	policy := profile.Policy
	if policy.DailyQuizLimit > 0 && usage.QuizCount >= policy.DailyQuizLimit {
		return &DailyLimitError{Kind: LimitQuizCount, Limit: policy.DailyQuizLimit, Used: usage.QuizCount}
	}
	if policy.DailyStudyMinutes > 0 && usage.StudyMinutes >= policy.DailyStudyMinutes {
		return &DailyLimitError{Kind: LimitStudyTime, Limit: policy.DailyStudyMinutes, Used: usage.StudyMinutes}
	}
	return nil
}

// CheckStudyAllowed returns a DailyLimitError when today's study-time limit
// is exhausted. Video/attention sessions consume study time but not the
// quiz allowance, so they are gated on time alone.
func (g *Gate) CheckStudyAllowed(ctx context.Context, studentID string) error {
	profile, err := g.profiles.Load(ctx, studentID)
	if err != nil {
		return err
	}

	usage := todaysUsage(profile, g.now())
	policy := profile.Policy
	if policy.DailyStudyMinutes > 0 && usage.StudyMinutes >= policy.DailyStudyMinutes {
		return &DailyLimitError{Kind: LimitStudyTime, Limit: policy.DailyStudyMinutes, Used: usage.StudyMinutes}
	}
	return nil
}

// RemainingToday reports today's remaining allowance.
func (g *Gate) RemainingToday(ctx context.Context, studentID string) (*Allowance, error) {
	profile, err := g.profiles.Load(ctx, studentID)
	if err != nil {
		return nil, err
	}

	usage := todaysUsage(profile, g.now())
	policy := profile.Policy
	a := &Allowance{MinutesLeft: -1, QuizzesLeft: -1}
	if policy.DailyStudyMinutes > 0 {
		a.MinutesLeft = max(0, policy.DailyStudyMinutes-usage.StudyMinutes)
	}
	if policy.DailyQuizLimit > 0 {
		a.QuizzesLeft = max(0, policy.DailyQuizLimit-usage.QuizCount)
	}
	return a, nil
}

// UpdatePolicy replaces the student's parental policy.
func (g *Gate) UpdatePolicy(ctx context.Context, studentID string, policy store.ParentalPolicy) (*store.StudentProfile, error) {
	if policy.DailyStudyMinutes < 0 {
		return nil, fmt.Errorf("daily study minutes must not be negative, got %d", policy.DailyStudyMinutes)
	}
	if policy.DailyQuizLimit < 0 {
		return nil, fmt.Errorf("daily quiz limit must not be negative, got %d", policy.DailyQuizLimit)
	}

	profile, err := g.profiles.Transact(ctx, studentID, func(p *store.StudentProfile) error {
		p.Policy = policy
		return nil
	})
	if err != nil {
		return nil, err
	}
	g.log.Info("parental policy updated",
		zap.String("student", studentID),
		zap.Bool("webcam", policy.WebcamEnabled),
		zap.Int("daily_minutes", policy.DailyStudyMinutes),
		zap.Int("daily_quizzes", policy.DailyQuizLimit))
	return profile, nil
}

// todaysUsage reads the usage counters for the current day without mutating
// the profile: a stored counter from a past day reads as zero.
func todaysUsage(p *store.StudentProfile, now time.Time) store.DailyUsage {
	day := now.Format(store.DateLayout)
	if p.Usage.Date != day {
		return store.DailyUsage{Date: day}
	}
	return p.Usage
}
