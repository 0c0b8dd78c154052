package economy

import (
	"time"

	"github.com/abhisek/studyquest/internal/store"
)

// EvalContext is the read-only state an achievement predicate sees.
type EvalContext struct {
	Profile *store.StudentProfile
	// Recent holds the newest quiz attempts, newest first.
	Recent []*store.QuizAttempt
	Now    time.Time
}

// Achievement is a data-driven (id, predicate, reward) value object. New
// achievements are added to the registry; evaluation logic never changes.
type Achievement struct {
	ID          string
	Name        string
	Description string
	Rarity      Rarity
	RewardCoins int
	RewardXP    int

	// Unlocked reports whether the achievement's condition holds. It must be
	// side-effect free; idempotent re-evaluation is the contract.
	Unlocked func(EvalContext) bool `json:"-"`
}

// EffectKind enumerates what a perk does.
type EffectKind string

const (
	// EffectTimeBonus extends the quiz time limit.
	EffectTimeBonus EffectKind = "time_bonus"
	// EffectHint grants hint uses, consumed one per quiz.
	EffectHint EffectKind = "hint"
	// EffectCoinBoost multiplies coin rewards for a bounded duration.
	EffectCoinBoost EffectKind = "coin_boost"
	// EffectCosmetic has no gameplay effect.
	EffectCosmetic EffectKind = "cosmetic"
)

// PerkEffect is the tagged-variant payload of a perk. Only the fields for
// the matching Kind are meaningful.
type PerkEffect struct {
	Kind          EffectKind
	TimeBonusSecs int     // EffectTimeBonus
	Hints         int     // EffectHint: uses granted per purchase
	Multiplier    float64 // EffectCoinBoost
}

// Perk is a purchasable catalog entry. Duration-bound perks expire; one-shot
// perks (hints) carry a use counter instead.
type Perk struct {
	ID          string
	Name        string
	Description string
	Cost        int
	Effect      PerkEffect
	// Duration bounds the effect window from purchase time; zero means the
	// perk never expires (cosmetics) or is use-counted (hints).
	Duration time.Duration
}

// OneShot reports whether the perk is consumed per use rather than expiring.
func (p Perk) OneShot() bool {
	return p.Effect.Kind == EffectHint
}

// LevelUp describes a level transition caused by an XP award.
type LevelUp struct {
	From       int
	To         int
	BonusCoins int
}

// Metric selects the leaderboard ranking dimension.
type Metric string

const (
	MetricCoins  Metric = "coins"
	MetricLevel  Metric = "level"
	MetricStreak Metric = "streak"
)

// ParseMetric maps a string to a Metric, defaulting to coins for empty
// input; ok is false for anything unrecognized.
func ParseMetric(s string) (Metric, bool) {
	switch Metric(s) {
	case MetricCoins, MetricLevel, MetricStreak:
		return Metric(s), true
	case "":
		return MetricCoins, true
	}
	return "", false
}

// LeaderboardEntry is one ranked row. Score is the value of the requested
// metric.
type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	StudentID string `json:"student_id"`
	Score     int    `json:"score"`
	Metric    Metric `json:"metric"`
}
