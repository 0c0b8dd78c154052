// Package engine is the facade over the learning and gamification services.
// It owns the wiring and exposes the operations the command and HTTP layers
// call.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/studyquest/internal/attention"
	"github.com/abhisek/studyquest/internal/config"
	"github.com/abhisek/studyquest/internal/content"
	"github.com/abhisek/studyquest/internal/economy"
	"github.com/abhisek/studyquest/internal/parental"
	"github.com/abhisek/studyquest/internal/questionbank"
	"github.com/abhisek/studyquest/internal/quiz"
	"github.com/abhisek/studyquest/internal/store"
)

// Engine composes the store, economy, quiz, attention, and parental
// services behind one surface.
type Engine struct {
	cfg      *config.Config
	profiles store.ProfileRepo
	attempts store.AttemptRepo

	economy   *economy.Service
	quizzes   *quiz.Service
	attention *attention.Policy
	gate      *parental.Gate

	subjects []string
	log      *zap.Logger
	now      func() time.Time
}

// New wires the engine from its configuration and the opened store.
func New(cfg *config.Config, st *store.Store, log *zap.Logger) *Engine {
	profiles := st.ProfileRepo()
	attempts := st.AttemptRepo()

	bank := questionbank.New()
	library := content.New()
	eco := economy.NewService(profiles, attempts,
		economy.DefaultRegistry(), economy.DefaultCatalog(),
		cfg.Rewards.LevelUpBonus, log)

	return &Engine{
		cfg:       cfg,
		profiles:  profiles,
		attempts:  attempts,
		economy:   eco,
		quizzes:   quiz.NewService(bank, library, profiles, attempts, eco, cfg.Quiz, cfg.Rewards, log),
		attention: attention.NewPolicy(cfg.Attention, profiles, library, log),
		gate:      parental.NewGate(profiles, log),
		subjects:  bank.Subjects(),
		log:       log,
		now:       time.Now,
	}
}

// Session is what a student gets back when starting to study.
type Session struct {
	Profile      *store.StudentProfile `json:"profile"`
	Level        int                   `json:"level"`
	IsNew        bool                  `json:"is_new"`
	WelcomeCoins int                   `json:"welcome_coins,omitempty"`
	Allowance    *parental.Allowance   `json:"allowance"`
}

// SetupSession loads or creates the student's profile and prepares the
// per-session state. A first-time student receives the one-time welcome
// coin grant; the check and the credit share one transaction, so two
// racing first sessions can never both grant it.
func (e *Engine) SetupSession(ctx context.Context, studentID string) (*Session, error) {
	if studentID == "" {
		return nil, errors.New("student id must not be empty")
	}

	profile, isNew, err := e.economy.GrantWelcome(ctx, studentID, e.cfg.Rewards.StartingCoins)
	if err != nil {
		return nil, err
	}
	welcome := 0
	if isNew {
		welcome = e.cfg.Rewards.StartingCoins
	}

	e.attention.Reset(studentID)

	allowance, err := e.gate.RemainingToday(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return &Session{
		Profile:      profile,
		Level:        economy.LevelForXP(profile.XP),
		IsNew:        isNew,
		WelcomeCoins: welcome,
		Allowance:    allowance,
	}, nil
}

// CreateQuiz starts a quiz after the parental gate admits it.
func (e *Engine) CreateQuiz(ctx context.Context, studentID, subject, difficulty string, count int) (*quiz.Quiz, error) {
	if err := e.gate.CheckQuizAllowed(ctx, studentID); err != nil {
		return nil, err
	}
	return e.quizzes.CreateQuiz(ctx, studentID, subject, difficulty, count)
}

// SubmitQuiz scores a quiz and returns the full reward outcome.
func (e *Engine) SubmitQuiz(ctx context.Context, quizID string, answers []int, timeTaken float64) (*quiz.SubmitResult, error) {
	return e.quizzes.SubmitQuiz(ctx, quizID, answers, timeTaken)
}

// UseHint spends one hint use and returns the hint for a quiz question.
func (e *Engine) UseHint(ctx context.Context, quizID string, questionIndex int) (string, error) {
	return e.quizzes.UseHint(ctx, quizID, questionIndex)
}

// PurchaseReceipt reports the outcome of a perk purchase.
type PurchaseReceipt struct {
	Perk      *economy.Perk        `json:"perk"`
	Ownership *store.PerkOwnership `json:"ownership"`
	Balance   int                  `json:"balance"`
}

// PurchasePerk buys a catalog perk for the student.
func (e *Engine) PurchasePerk(ctx context.Context, studentID, perkID string) (*PurchaseReceipt, error) {
	own, err := e.economy.PurchasePerk(ctx, studentID, perkID)
	if err != nil {
		return nil, err
	}
	profile, err := e.profiles.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return &PurchaseReceipt{
		Perk:      e.economy.Perks().Get(perkID),
		Ownership: own,
		Balance:   profile.Coins,
	}, nil
}

// PerkCatalog lists the purchasable perks.
func (e *Engine) PerkCatalog() []*economy.Perk {
	return e.economy.Perks().All()
}

// IngestAttention records one webcam focus sample and returns the alert
// decision.
func (e *Engine) IngestAttention(ctx context.Context, studentID string, sample attention.Sample) (*attention.Result, error) {
	return e.attention.Ingest(ctx, studentID, sample)
}

// StartVideoSession begins a video learning session once the parental gate
// admits it. Video sessions consume the daily study-time allowance but not
// the quiz allowance.
func (e *Engine) StartVideoSession(ctx context.Context, studentID, title string) (*attention.SessionInfo, error) {
	if err := e.gate.CheckStudyAllowed(ctx, studentID); err != nil {
		return nil, err
	}
	return e.attention.StartSession(ctx, studentID, title)
}

// VideoReward reports the outcome of a completed video session.
type VideoReward struct {
	Session        *attention.SessionSummary `json:"session"`
	AttentionBonus float64                   `json:"attention_bonus"`
	CoinsEarned    int                       `json:"coins_earned"`
	Balance        int                       `json:"balance"`
}

// CompleteVideoSession closes the student's active video session and settles
// its rewards: base coins scaled by how well the student paid attention,
// plus watch time into the streak, lifetime minutes, and today's usage.
func (e *Engine) CompleteVideoSession(ctx context.Context, studentID string) (*VideoReward, error) {
	summary, err := e.attention.CompleteSession(studentID)
	if err != nil {
		return nil, err
	}

	bonus := 1.0
	switch {
	case summary.Samples == 0:
		// No focus data (webcam off or no sensor): neutral bonus.
	case summary.Average >= 0.8:
		bonus = 1.5
	case summary.Average >= 0.6:
		bonus = 1.2
	}
	coins := int(float64(e.cfg.Rewards.VideoBase) * bonus)

	profile, err := e.economy.SettleStudySession(ctx, studentID, e.now(), summary.Minutes, coins)
	if err != nil {
		return nil, err
	}
	return &VideoReward{
		Session:        summary,
		AttentionBonus: bonus,
		CoinsEarned:    coins,
		Balance:        profile.Coins,
	}, nil
}

// UpdateParentalPolicy replaces the student's parental controls.
func (e *Engine) UpdateParentalPolicy(ctx context.Context, studentID string, policy store.ParentalPolicy) (*store.StudentProfile, error) {
	return e.gate.UpdatePolicy(ctx, studentID, policy)
}

// Leaderboard ranks students by the given metric.
func (e *Engine) Leaderboard(ctx context.Context, metric economy.Metric, limit int) ([]economy.LeaderboardEntry, error) {
	return e.economy.Leaderboard(ctx, metric, limit)
}

// RevisionSummary builds the weak-topic revision digest for a subject.
func (e *Engine) RevisionSummary(ctx context.Context, studentID, subject string) (*quiz.RevisionSummary, error) {
	return e.quizzes.RevisionSummary(ctx, studentID, subject)
}

// AchievementStatus is one dashboard achievement row.
type AchievementStatus struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Rarity      economy.Rarity `json:"rarity"`
	Unlocked    bool           `json:"unlocked"`
	UnlockedAt  *time.Time     `json:"unlocked_at,omitempty"`
}

// Dashboard is the aggregate progress view for one student.
type Dashboard struct {
	StudentID     string                          `json:"student_id"`
	Coins         int                             `json:"coins"`
	TotalCoins    int                             `json:"total_coins"`
	XP            int                             `json:"xp"`
	Level         int                             `json:"level"`
	LevelProgress float64                         `json:"level_progress"`
	Streak        int                             `json:"streak"`
	LongestStreak int                             `json:"longest_streak"`
	TotalQuizzes  int                             `json:"total_quizzes"`
	StudyMinutes  int                             `json:"study_minutes"`
	Rank          int                             `json:"rank"`
	Achievements  []AchievementStatus             `json:"achievements"`
	Perks         map[string]*store.PerkOwnership `json:"perks"`
	WeakTopics    map[string][]quiz.TopicAccuracy `json:"weak_topics"`
	Allowance     *parental.Allowance             `json:"allowance"`
	Attention     *attention.Result               `json:"attention"`
}

// GetDashboard builds the progress dashboard. Fails with store.ErrNotFound
// for a student who never had a session.
func (e *Engine) GetDashboard(ctx context.Context, studentID string) (*Dashboard, error) {
	profile, err := e.profiles.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}

	rank, err := e.economy.Rank(ctx, studentID, economy.MetricCoins)
	if err != nil {
		return nil, err
	}

	weak := make(map[string][]quiz.TopicAccuracy)
	for _, subject := range e.subjects {
		topics, err := e.quizzes.WeakTopics(ctx, studentID, subject)
		if err != nil {
			return nil, fmt.Errorf("weak topics for %s: %w", subject, err)
		}
		if len(topics) > 0 {
			weak[subject] = topics
		}
	}

	allowance, err := e.gate.RemainingToday(ctx, studentID)
	if err != nil {
		return nil, err
	}

	var achievements []AchievementStatus
	for _, a := range e.economy.Achievements().All() {
		status := AchievementStatus{
			ID:          a.ID,
			Name:        a.Name,
			Description: a.Description,
			Rarity:      a.Rarity,
		}
		if at, ok := profile.Achievements[a.ID]; ok {
			status.Unlocked = true
			t := at
			status.UnlockedAt = &t
		}
		achievements = append(achievements, status)
	}

	return &Dashboard{
		StudentID:     studentID,
		Coins:         profile.Coins,
		TotalCoins:    profile.TotalCoins,
		XP:            profile.XP,
		Level:         economy.LevelForXP(profile.XP),
		LevelProgress: economy.LevelProgress(profile.XP),
		Streak:        profile.Streak,
		LongestStreak: profile.LongestStreak,
		TotalQuizzes:  profile.TotalQuizzes,
		StudyMinutes:  profile.StudyMinutes,
		Rank:          rank,
		Achievements:  achievements,
		Perks:         profile.Perks,
		WeakTopics:    weak,
		Allowance:     allowance,
		Attention:     e.attention.Level(studentID),
	}, nil
}

// ResetStudent wipes a student's profile, attempts, and in-memory state.
func (e *Engine) ResetStudent(ctx context.Context, studentID string) error {
	if err := e.attempts.DeleteFor(ctx, studentID); err != nil {
		return err
	}
	if err := e.profiles.Delete(ctx, studentID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	e.attention.Reset(studentID)
	e.log.Info("student reset", zap.String("student", studentID))
	return nil
}
