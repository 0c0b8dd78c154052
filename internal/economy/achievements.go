package economy

import "github.com/abhisek/studyquest/internal/store"

// Registry holds the achievement definitions in evaluation order. It is
// built once at startup; evaluation iterates it uniformly and never special
// cases individual ids.
type Registry struct {
	ordered []*Achievement
	byID    map[string]*Achievement
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]*Achievement)}
}

// Register adds an achievement. Registering a duplicate id replaces the
// earlier definition.
func (r *Registry) Register(a *Achievement) {
	if _, exists := r.byID[a.ID]; !exists {
		r.ordered = append(r.ordered, a)
	} else {
		for i, existing := range r.ordered {
			if existing.ID == a.ID {
				r.ordered[i] = a
				break
			}
		}
	}
	r.byID[a.ID] = a
}

// Get returns the achievement with the given id, or nil.
func (r *Registry) Get(id string) *Achievement {
	return r.byID[id]
}

// All returns the achievements in registration order.
func (r *Registry) All() []*Achievement {
	return r.ordered
}

// DefaultRegistry returns the built-in achievement set.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, a := range defaultAchievements() {
		r.Register(a)
	}
	return r
}

func defaultAchievements() []*Achievement {
	return []*Achievement{
		{
			ID:          "first_quiz",
			Name:        "Quiz Rookie",
			Description: "Complete your first quiz",
			Rarity:      RarityCommon,
			RewardCoins: 25,
			RewardXP:    10,
			Unlocked: func(c EvalContext) bool {
				return c.Profile.TotalQuizzes >= 1
			},
		},
		{
			ID:          "quiz_master",
			Name:        "Quiz Master",
			Description: "Complete 50 quizzes",
			Rarity:      RarityEpic,
			RewardCoins: 200,
			RewardXP:    100,
			Unlocked: func(c EvalContext) bool {
				return c.Profile.TotalQuizzes >= 50
			},
		},
		{
			ID:          "perfect_score",
			Name:        "Perfect Scholar",
			Description: "Score 100% on a quiz",
			Rarity:      RarityRare,
			RewardCoins: 50,
			RewardXP:    25,
			Unlocked: func(c EvalContext) bool {
				for _, a := range c.Recent {
					if a.Score >= 100 {
						return true
					}
				}
				return false
			},
		},
		{
			ID:          "streak_week",
			Name:        "Week Warrior",
			Description: "Study for 7 days in a row",
			Rarity:      RarityRare,
			RewardCoins: 75,
			RewardXP:    50,
			Unlocked: func(c EvalContext) bool {
				return c.Profile.Streak >= 7
			},
		},
		{
			ID:          "streak_month",
			Name:        "Monthly Champion",
			Description: "Study for 30 days in a row",
			Rarity:      RarityLegendary,
			RewardCoins: 300,
			RewardXP:    200,
			Unlocked: func(c EvalContext) bool {
				return c.Profile.Streak >= 30
			},
		},
		{
			ID:          "math_expert",
			Name:        "Math Wizard",
			Description: "Score above 80% in 10 Math quizzes",
			Rarity:      RarityEpic,
			RewardCoins: 150,
			RewardXP:    100,
			Unlocked:    subjectExpert("math", 10, 80),
		},
		{
			ID:          "science_expert",
			Name:        "Science Explorer",
			Description: "Score above 80% in 10 Science quizzes",
			Rarity:      RarityEpic,
			RewardCoins: 150,
			RewardXP:    100,
			Unlocked:    subjectExpert("science", 10, 80),
		},
		{
			ID:          "coin_collector",
			Name:        "Coin Collector",
			Description: "Earn 1000 total coins",
			Rarity:      RarityRare,
			RewardCoins: 100,
			RewardXP:    50,
			Unlocked: func(c EvalContext) bool {
				return c.Profile.TotalCoins >= 1000
			},
		},
		{
			ID:          "focus_master",
			Name:        "Focus Master",
			Description: "Accumulate 30 minutes of focused study",
			Rarity:      RarityRare,
			RewardCoins: 100,
			RewardXP:    50,
			Unlocked: func(c EvalContext) bool {
				return c.Profile.StudyMinutes >= 30
			},
		},
	}
}

// subjectExpert builds a predicate satisfied once the student has `count`
// attempts in `subject` scoring above `minScore` within the evaluated
// history window.
func subjectExpert(subject string, count int, minScore float64) func(EvalContext) bool {
	return func(c EvalContext) bool {
		n := 0
		for _, a := range c.Recent {
			if a.Subject == subject && a.Score > minScore {
				n++
				if n >= count {
					return true
				}
			}
		}
		return false
	}
}

// unlockedSet is a convenience for tests and dashboards: ids already held by
// the profile.
func unlockedSet(p *store.StudentProfile) map[string]bool {
	set := make(map[string]bool, len(p.Achievements))
	for id := range p.Achievements {
		set[id] = true
	}
	return set
}
