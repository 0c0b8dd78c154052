package engine

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/abhisek/studyquest/internal/attention"
	"github.com/abhisek/studyquest/internal/config"
	"github.com/abhisek/studyquest/internal/parental"
	"github.com/abhisek/studyquest/internal/quiz"
	"github.com/abhisek/studyquest/internal/store"
)

func testConfig() *config.Config {
	return &config.Config{
		Env: "test",
		Quiz: config.Quiz{
			AdaptiveWindow: 5, PromoteThreshold: 80, DemoteThreshold: 40,
			WeakTopicWindow: 10, WeakTopicThreshold: 60, DefaultCount: 5,
		},
		Attention: config.Attention{Window: 10, Sensitivity: 0.5},
		Rewards: config.Rewards{
			StartingCoins: 100, EasyBase: 10, MediumBase: 20, HardBase: 30,
			VideoBase: 20, LevelUpBonus: 20,
		},
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "engine.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	return New(testConfig(), st, zap.NewNop())
}

func allCorrect(q *quiz.Quiz) []int {
	answers := make([]int, len(q.Questions))
	for i, question := range q.Questions {
		answers[i] = question.Correct
	}
	return answers
}

func TestSetupSession(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	if _, err := eng.SetupSession(ctx, ""); err == nil {
		t.Fatal("empty student id accepted")
	}

	s, err := eng.SetupSession(ctx, "kid")
	if err != nil {
		t.Fatal(err)
	}
	if !s.IsNew || s.WelcomeCoins != 100 {
		t.Fatalf("first session: IsNew=%v welcome=%d", s.IsNew, s.WelcomeCoins)
	}
	if s.Profile.Coins != 100 {
		t.Fatalf("coins = %d, want 100", s.Profile.Coins)
	}
	if s.Level != 1 {
		t.Fatalf("level = %d, want 1", s.Level)
	}
	if s.Allowance == nil {
		t.Fatal("missing allowance")
	}

	// The welcome bonus is granted exactly once.
	s, err = eng.SetupSession(ctx, "kid")
	if err != nil {
		t.Fatal(err)
	}
	if s.IsNew || s.WelcomeCoins != 0 {
		t.Fatalf("second session: IsNew=%v welcome=%d", s.IsNew, s.WelcomeCoins)
	}
	if s.Profile.Coins != 100 {
		t.Fatalf("coins after second session = %d, want 100", s.Profile.Coins)
	}
}

func TestSetupSession_ConcurrentFirstSessions(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	sessions := make(chan *Session, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := eng.SetupSession(ctx, "kid")
			if err != nil {
				t.Error(err)
				return
			}
			sessions <- s
		}()
	}
	wg.Wait()
	close(sessions)

	var newCount int
	for s := range sessions {
		if s.IsNew {
			newCount++
		}
	}
	if newCount != 1 {
		t.Fatalf("welcome granted %d times, want 1", newCount)
	}

	dash, err := eng.GetDashboard(ctx, "kid")
	if err != nil {
		t.Fatal(err)
	}
	if dash.Coins != 100 {
		t.Fatalf("coins = %d, want 100", dash.Coins)
	}
}

func TestVideoSessionFlow(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	if _, err := eng.SetupSession(ctx, "kid"); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.CompleteVideoSession(ctx, "kid"); !errors.Is(err, attention.ErrNoActiveSession) {
		t.Fatalf("complete without start: err = %v, want ErrNoActiveSession", err)
	}

	info, err := eng.StartVideoSession(ctx, "kid", "Fractions explained")
	if err != nil {
		t.Fatal(err)
	}
	if !info.Monitoring {
		t.Fatal("monitoring off with webcam enabled")
	}

	for i := 0; i < 3; i++ {
		if _, err := eng.IngestAttention(ctx, "kid", attention.Sample{Score: 0.9}); err != nil {
			t.Fatal(err)
		}
	}

	reward, err := eng.CompleteVideoSession(ctx, "kid")
	if err != nil {
		t.Fatal(err)
	}
	if reward.AttentionBonus != 1.5 {
		t.Fatalf("bonus = %v, want 1.5 for sustained focus", reward.AttentionBonus)
	}
	if reward.CoinsEarned != 30 {
		t.Fatalf("coins = %d, want 30 (20 x 1.5)", reward.CoinsEarned)
	}
	if reward.Balance != 130 {
		t.Fatalf("balance = %d, want 130", reward.Balance)
	}

	dash, err := eng.GetDashboard(ctx, "kid")
	if err != nil {
		t.Fatal(err)
	}
	if dash.StudyMinutes != reward.Session.Minutes {
		t.Fatalf("study minutes = %d, want %d", dash.StudyMinutes, reward.Session.Minutes)
	}
	if dash.Streak != 1 {
		t.Fatalf("streak = %d, want 1 (video counts as activity)", dash.Streak)
	}
}

func TestStartVideoSession_TimeLimitEnforced(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	if _, err := eng.SetupSession(ctx, "kid"); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.UpdateParentalPolicy(ctx, "kid", store.ParentalPolicy{
		WebcamEnabled:        true,
		DailyStudyMinutes:    1,
		AutoAdjustDifficulty: true,
	}); err != nil {
		t.Fatal(err)
	}

	if _, err := eng.StartVideoSession(ctx, "kid", "Volcanoes"); err != nil {
		t.Fatal(err)
	}
	reward, err := eng.CompleteVideoSession(ctx, "kid")
	if err != nil {
		t.Fatal(err)
	}
	if reward.Session.Minutes < 1 {
		t.Fatalf("minutes = %d, want at least 1", reward.Session.Minutes)
	}

	_, err = eng.StartVideoSession(ctx, "kid", "More volcanoes")
	var limit *parental.DailyLimitError
	if !errors.As(err, &limit) || limit.Kind != parental.LimitStudyTime {
		t.Fatalf("err = %v, want study_time DailyLimitError", err)
	}
}

func TestQuizFlowThroughEngine(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	if _, err := eng.SetupSession(ctx, "kid"); err != nil {
		t.Fatal(err)
	}

	q, err := eng.CreateQuiz(ctx, "kid", "math", "auto", 5)
	if err != nil {
		t.Fatal(err)
	}
	if q.Difficulty != quiz.Easy {
		t.Fatalf("difficulty = %s, want easy", q.Difficulty)
	}

	res, err := eng.SubmitQuiz(ctx, q.ID, allCorrect(q), 120)
	if err != nil {
		t.Fatal(err)
	}
	if res.Score != 100 {
		t.Fatalf("score = %v, want 100", res.Score)
	}
	if res.NextDifficulty != quiz.Medium {
		t.Fatalf("next = %s, want medium", res.NextDifficulty)
	}

	dash, err := eng.GetDashboard(ctx, "kid")
	if err != nil {
		t.Fatal(err)
	}
	if dash.TotalQuizzes != 1 || dash.Streak != 1 {
		t.Fatalf("dashboard activity: %+v", dash)
	}
	if dash.Rank != 1 {
		t.Fatalf("rank = %d, want 1", dash.Rank)
	}
	if len(dash.Achievements) == 0 {
		t.Fatal("dashboard has no achievement rows")
	}
	var unlockedCount int
	for _, a := range dash.Achievements {
		if a.Unlocked {
			unlockedCount++
		}
	}
	if unlockedCount == 0 {
		t.Fatal("perfect first quiz unlocked nothing")
	}
	if dash.Attention == nil || dash.Allowance == nil {
		t.Fatal("dashboard missing attention or allowance")
	}
}

func TestCreateQuiz_DailyLimitEnforced(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	if _, err := eng.SetupSession(ctx, "kid"); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.UpdateParentalPolicy(ctx, "kid", store.ParentalPolicy{
		WebcamEnabled:        true,
		DailyQuizLimit:       1,
		AutoAdjustDifficulty: true,
	}); err != nil {
		t.Fatal(err)
	}

	q, err := eng.CreateQuiz(ctx, "kid", "math", "easy", 5)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := eng.SubmitQuiz(ctx, q.ID, allCorrect(q), 60); err != nil {
		t.Fatal(err)
	}

	_, err = eng.CreateQuiz(ctx, "kid", "math", "easy", 5)
	var limit *parental.DailyLimitError
	if !errors.As(err, &limit) {
		t.Fatalf("err = %v, want DailyLimitError", err)
	}
	if limit.Kind != parental.LimitQuizCount {
		t.Fatalf("kind = %s, want quiz_count", limit.Kind)
	}
}

func TestPurchasePerkThroughEngine(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	if _, err := eng.SetupSession(ctx, "kid"); err != nil {
		t.Fatal(err)
	}

	receipt, err := eng.PurchasePerk(ctx, "kid", "golden_star")
	if err != nil {
		t.Fatal(err)
	}
	if receipt.Perk == nil || receipt.Perk.ID != "golden_star" {
		t.Fatalf("receipt perk = %+v", receipt.Perk)
	}
	if receipt.Balance != 50 {
		t.Fatalf("balance = %d, want 50 after 100-50", receipt.Balance)
	}

	if len(eng.PerkCatalog()) == 0 {
		t.Fatal("empty perk catalog")
	}
}

func TestResetStudent(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	if _, err := eng.SetupSession(ctx, "kid"); err != nil {
		t.Fatal(err)
	}
	if err := eng.ResetStudent(ctx, "kid"); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.GetDashboard(ctx, "kid"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("dashboard after reset: err = %v, want ErrNotFound", err)
	}

	// Resetting a student who never existed is fine.
	if err := eng.ResetStudent(ctx, "ghost"); err != nil {
		t.Fatal(err)
	}

	// A session after reset is a fresh start with a new welcome bonus.
	s, err := eng.SetupSession(ctx, "kid")
	if err != nil {
		t.Fatal(err)
	}
	if !s.IsNew {
		t.Fatal("reset student not treated as new")
	}
}
