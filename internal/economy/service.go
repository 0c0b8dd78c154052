package economy

import (
	"context"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/studyquest/internal/store"
)

// achievementHistoryWindow is how many recent attempts predicates see.
const achievementHistoryWindow = 50

// Service is the coin/XP ledger and the achievement, perk, streak, and
// leaderboard engine. Every mutation goes through the profile repo's
// per-student transaction.
type Service struct {
	profiles     store.ProfileRepo
	attempts     store.AttemptRepo
	achievements *Registry
	perks        *Catalog
	levelUpBonus int
	log          *zap.Logger
	now          func() time.Time
}

// NewService creates an economy service. levelUpBonus is the coins granted
// per new level on level up.
func NewService(profiles store.ProfileRepo, attempts store.AttemptRepo, achievements *Registry, perks *Catalog, levelUpBonus int, log *zap.Logger) *Service {
	return &Service{
		profiles:     profiles,
		attempts:     attempts,
		achievements: achievements,
		perks:        perks,
		levelUpBonus: levelUpBonus,
		log:          log,
		now:          time.Now,
	}
}

// Achievements returns the achievement registry.
func (s *Service) Achievements() *Registry { return s.achievements }

// Perks returns the perk catalog.
func (s *Service) Perks() *Catalog { return s.perks }

// AwardCoins credits amount to the student's balance. Negative amounts fail
// with ErrInvalidAmount and leave state untouched.
func (s *Service) AwardCoins(ctx context.Context, studentID string, amount int, reason string) (*store.StudentProfile, error) {
	if amount < 0 {
		return nil, ErrInvalidAmount
	}
	profile, err := s.profiles.Transact(ctx, studentID, func(p *store.StudentProfile) error {
		applyCoins(p, amount)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("coins awarded",
		zap.String("student", studentID),
		zap.Int("amount", amount),
		zap.String("reason", reason))
	return profile, nil
}

// SpendCoins debits amount from the balance, failing with
// ErrInsufficientFunds if the balance cannot cover it.
func (s *Service) SpendCoins(ctx context.Context, studentID string, amount int) (*store.StudentProfile, error) {
	if amount < 0 {
		return nil, ErrInvalidAmount
	}
	return s.profiles.Transact(ctx, studentID, func(p *store.StudentProfile) error {
		if p.Coins < amount {
			return ErrInsufficientFunds
		}
		p.Coins -= amount
		return nil
	})
}

// AwardXP credits XP and recomputes the level. A non-nil LevelUp is returned
// when the level increased; the level-up coin bonus is applied in the same
// transaction.
func (s *Service) AwardXP(ctx context.Context, studentID string, amount int) (*LevelUp, error) {
	if amount < 0 {
		return nil, ErrInvalidAmount
	}
	var up *LevelUp
	_, err := s.profiles.Transact(ctx, studentID, func(p *store.StudentProfile) error {
		up = applyXP(p, amount, s.levelUpBonus)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if up != nil {
		s.log.Info("level up",
			zap.String("student", studentID),
			zap.Int("from", up.From),
			zap.Int("to", up.To),
			zap.Int("bonus_coins", up.BonusCoins))
	}
	return up, nil
}

// UpdateStreak records activity on the given date for streak purposes.
// Same-day repeats are idempotent.
func (s *Service) UpdateStreak(ctx context.Context, studentID string, activityDate time.Time) (*store.StudentProfile, error) {
	day := activityDate.Format(store.DateLayout)
	return s.profiles.Transact(ctx, studentID, func(p *store.StudentProfile) error {
		applyStreak(p, day)
		return nil
	})
}

// RecordQuizActivity bumps the quiz counters, study minutes, daily usage,
// and streak for a submission at the given time, in one transaction.
func (s *Service) RecordQuizActivity(ctx context.Context, studentID string, at time.Time, studyMinutes int) (*store.StudentProfile, error) {
	day := at.Format(store.DateLayout)
	return s.profiles.Transact(ctx, studentID, func(p *store.StudentProfile) error {
		applyStreak(p, day)
		p.TotalQuizzes++
		p.StudyMinutes += studyMinutes
		usage := p.UsageFor(day)
		usage.QuizCount++
		usage.StudyMinutes += studyMinutes
		return nil
	})
}

// QuizSettlement describes the durable effects of one scored quiz.
type QuizSettlement struct {
	At           time.Time
	BaseCoins    int    // pre-multiplier quiz coins
	XP           int
	StudyMinutes int
	Reason       string
	// Fold applies the per-topic mastery updates; may be nil.
	Fold func(p *store.StudentProfile)
}

// QuizOutcome reports what one settlement granted.
type QuizOutcome struct {
	Profile  *store.StudentProfile
	Coins    int // after active coin multipliers
	LevelUp  *LevelUp
	Unlocked []*Achievement
}

// SettleQuiz applies everything a scored quiz earns in one profile
// transaction: mastery fold, streak and daily usage, coins (with active
// multipliers), XP with the level-up bonus, and newly satisfied
// achievements. Either all of it commits or none of it does, so a failed
// submission can be retried without double-counting. The attempt must
// already be appended; achievement predicates see it in the history.
func (s *Service) SettleQuiz(ctx context.Context, studentID string, st QuizSettlement) (*QuizOutcome, error) {
	if st.BaseCoins < 0 || st.XP < 0 {
		return nil, ErrInvalidAmount
	}
	recent, err := s.attempts.Recent(ctx, studentID, achievementHistoryWindow)
	if err != nil {
		return nil, err
	}

	day := st.At.Format(store.DateLayout)
	out := &QuizOutcome{}
	profile, err := s.profiles.Transact(ctx, studentID, func(p *store.StudentProfile) error {
		out.Coins, out.LevelUp, out.Unlocked = 0, nil, nil
		if st.Fold != nil {
			st.Fold(p)
		}
		applyStreak(p, day)
		p.TotalQuizzes++
		p.StudyMinutes += st.StudyMinutes
		usage := p.UsageFor(day)
		usage.QuizCount++
		usage.StudyMinutes += st.StudyMinutes

		out.Coins = int(math.Round(float64(st.BaseCoins) * s.perks.CoinMultiplier(p, st.At)))
		applyCoins(p, out.Coins)
		out.LevelUp = applyXP(p, st.XP, s.levelUpBonus)

		evalCtx := EvalContext{Profile: p, Recent: recent, Now: st.At}
		for _, a := range s.achievements.All() {
			if _, held := p.Achievements[a.ID]; held {
				continue
			}
			if !a.Unlocked(evalCtx) {
				continue
			}
			p.Achievements[a.ID] = st.At
			applyCoins(p, a.RewardCoins)
			applyXP(p, a.RewardXP, s.levelUpBonus)
			out.Unlocked = append(out.Unlocked, a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out.Profile = profile

	s.log.Info("quiz settled",
		zap.String("student", studentID),
		zap.Int("coins", out.Coins),
		zap.Int("xp", st.XP),
		zap.String("reason", st.Reason))
	for _, a := range out.Unlocked {
		s.log.Info("achievement unlocked",
			zap.String("student", studentID),
			zap.String("achievement", a.ID),
			zap.String("rarity", string(a.Rarity)))
	}
	return out, nil
}

// SettleStudySession credits a completed video/attention session in one
// transaction: coins, study minutes into the lifetime counter and today's
// usage, and the streak. Does not touch the quiz counters.
func (s *Service) SettleStudySession(ctx context.Context, studentID string, at time.Time, minutes, coins int) (*store.StudentProfile, error) {
	if coins < 0 || minutes < 0 {
		return nil, ErrInvalidAmount
	}
	day := at.Format(store.DateLayout)
	profile, err := s.profiles.Transact(ctx, studentID, func(p *store.StudentProfile) error {
		applyStreak(p, day)
		p.StudyMinutes += minutes
		usage := p.UsageFor(day)
		usage.StudyMinutes += minutes
		applyCoins(p, coins)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("study session settled",
		zap.String("student", studentID),
		zap.Int("minutes", minutes),
		zap.Int("coins", coins))
	return profile, nil
}

// GrantWelcome credits the one-time welcome bonus unless the profile has
// already received it. The check and the credit share one transaction, so
// concurrent first sessions grant it exactly once. Reports whether this call
// was the one that granted.
func (s *Service) GrantWelcome(ctx context.Context, studentID string, amount int) (*store.StudentProfile, bool, error) {
	if amount < 0 {
		return nil, false, ErrInvalidAmount
	}
	granted := false
	profile, err := s.profiles.Transact(ctx, studentID, func(p *store.StudentProfile) error {
		granted = false
		if p.WelcomeGranted {
			return nil
		}
		p.WelcomeGranted = true
		applyCoins(p, amount)
		granted = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if granted {
		s.log.Info("welcome bonus granted",
			zap.String("student", studentID),
			zap.Int("amount", amount))
	}
	return profile, granted, nil
}

// EvaluateAchievements re-evaluates every locked achievement against the
// current profile and recent attempt history, unlocking and rewarding the
// newly satisfied ones. Returns the newly unlocked achievements; an empty
// result is common. An achievement id is never granted twice.
func (s *Service) EvaluateAchievements(ctx context.Context, studentID string) ([]*Achievement, error) {
	recent, err := s.attempts.Recent(ctx, studentID, achievementHistoryWindow)
	if err != nil {
		return nil, err
	}

	var unlocked []*Achievement
	now := s.now()
	_, err = s.profiles.Transact(ctx, studentID, func(p *store.StudentProfile) error {
		unlocked = unlocked[:0]
		evalCtx := EvalContext{Profile: p, Recent: recent, Now: now}
		for _, a := range s.achievements.All() {
			if _, held := p.Achievements[a.ID]; held {
				continue
			}
			if !a.Unlocked(evalCtx) {
				continue
			}
			p.Achievements[a.ID] = now
			applyCoins(p, a.RewardCoins)
			applyXP(p, a.RewardXP, s.levelUpBonus)
			unlocked = append(unlocked, a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, a := range unlocked {
		s.log.Info("achievement unlocked",
			zap.String("student", studentID),
			zap.String("achievement", a.ID),
			zap.String("rarity", string(a.Rarity)))
	}
	return unlocked, nil
}

// PurchasePerk debits the perk's cost and records ownership. Repurchasing an
// active duration perk extends its expiry; repurchasing a one-shot perk adds
// uses; repurchasing an owned cosmetic returns the existing ownership
// without charging.
func (s *Service) PurchasePerk(ctx context.Context, studentID, perkID string) (*store.PerkOwnership, error) {
	perk := s.perks.Get(perkID)
	if perk == nil {
		return nil, ErrUnknownPerk
	}

	var own *store.PerkOwnership
	now := s.now()
	_, err := s.profiles.Transact(ctx, studentID, func(p *store.StudentProfile) error {
		existing := p.Perks[perkID]
		if existing != nil && perk.Effect.Kind == EffectCosmetic {
			own = existing
			return nil
		}
		if p.Coins < perk.Cost {
			return ErrInsufficientFunds
		}
		p.Coins -= perk.Cost

		if existing == nil {
			existing = &store.PerkOwnership{PerkID: perkID, PurchasedAt: now}
			p.Perks[perkID] = existing
		}
		switch {
		case perk.OneShot():
			existing.UsesLeft += perk.Effect.Hints
		case perk.Duration > 0:
			// Extend from the later of now and the current expiry; an
			// expired window restarts from now.
			base := now
			if existing.ExpiresAt != nil && existing.ExpiresAt.After(now) {
				base = *existing.ExpiresAt
			}
			expiry := base.Add(perk.Duration)
			existing.ExpiresAt = &expiry
		}
		own = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("perk purchased",
		zap.String("student", studentID),
		zap.String("perk", perkID),
		zap.Int("cost", perk.Cost))
	return own, nil
}

// Leaderboard ranks all students descending by the requested metric, ties
// broken by earliest profile creation. Read-only.
func (s *Service) Leaderboard(ctx context.Context, metric Metric, limit int) ([]LeaderboardEntry, error) {
	profiles, err := s.profiles.All(ctx)
	if err != nil {
		return nil, err
	}

	// All returns creation order, so a stable sort keeps the earliest
	// profile first among ties.
	sort.SliceStable(profiles, func(i, j int) bool {
		return metricValue(profiles[i], metric) > metricValue(profiles[j], metric)
	})

	if limit > 0 && len(profiles) > limit {
		profiles = profiles[:limit]
	}
	entries := make([]LeaderboardEntry, len(profiles))
	for i, p := range profiles {
		entries[i] = LeaderboardEntry{
			Rank:      i + 1,
			StudentID: p.StudentID,
			Score:     metricValue(p, metric),
			Metric:    metric,
		}
	}
	return entries, nil
}

// Rank returns the 1-based leaderboard position of a student for a metric,
// or 0 if the student has no profile.
func (s *Service) Rank(ctx context.Context, studentID string, metric Metric) (int, error) {
	entries, err := s.Leaderboard(ctx, metric, 0)
	if err != nil {
		return 0, err
	}
	for _, e := range entries {
		if e.StudentID == studentID {
			return e.Rank, nil
		}
	}
	return 0, nil
}

func metricValue(p *store.StudentProfile, metric Metric) int {
	switch metric {
	case MetricLevel:
		return LevelForXP(p.XP)
	case MetricStreak:
		return p.Streak
	default:
		return p.TotalCoins
	}
}

// applyCoins credits coins to both the spendable balance and the lifetime
// total.
func applyCoins(p *store.StudentProfile, amount int) {
	p.Coins += amount
	p.TotalCoins += amount
}

// applyXP credits XP and, if the derived level increased, grants the
// level-up coin bonus. Must run inside a profile transaction.
func applyXP(p *store.StudentProfile, amount, bonusPerLevel int) *LevelUp {
	before := LevelForXP(p.XP)
	p.XP += amount
	after := LevelForXP(p.XP)
	if after <= before {
		return nil
	}
	bonus := after * bonusPerLevel
	applyCoins(p, bonus)
	return &LevelUp{From: before, To: after, BonusCoins: bonus}
}
