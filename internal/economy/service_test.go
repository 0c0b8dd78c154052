package economy

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/abhisek/studyquest/internal/store"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (*Service, *memProfiles, *memAttempts) {
	t.Helper()
	profiles := newMemProfiles()
	attempts := newMemAttempts()
	svc := NewService(profiles, attempts, DefaultRegistry(), DefaultCatalog(), 20, zap.NewNop())
	return svc, profiles, attempts
}

func TestAwardCoins(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.AwardCoins(ctx, "s1", 50, "test")
	if err != nil {
		t.Fatal(err)
	}
	if p.Coins != 50 || p.TotalCoins != 50 {
		t.Fatalf("coins = %d/%d, want 50/50", p.Coins, p.TotalCoins)
	}

	if _, err := svc.AwardCoins(ctx, "s1", -1, "test"); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("negative award: err = %v, want ErrInvalidAmount", err)
	}
}

func TestSpendCoins(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AwardCoins(ctx, "s1", 100, "seed"); err != nil {
		t.Fatal(err)
	}

	p, err := svc.SpendCoins(ctx, "s1", 60)
	if err != nil {
		t.Fatal(err)
	}
	if p.Coins != 40 {
		t.Fatalf("coins = %d, want 40", p.Coins)
	}
	if p.TotalCoins != 100 {
		t.Fatalf("spend changed lifetime total: %d", p.TotalCoins)
	}

	if _, err := svc.SpendCoins(ctx, "s1", 41); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("overspend: err = %v, want ErrInsufficientFunds", err)
	}
	p, _ = svc.profiles.Get(ctx, "s1")
	if p.Coins != 40 {
		t.Fatalf("failed spend changed balance: %d", p.Coins)
	}
}

func TestAwardXP_LevelUpBonus(t *testing.T) {
	svc, profiles, _ := newTestService(t)
	ctx := context.Background()

	up, err := svc.AwardXP(ctx, "s1", 150)
	if err != nil {
		t.Fatal(err)
	}
	if up != nil {
		t.Fatalf("150 XP should not level up from level 1, got %+v", up)
	}

	up, err = svc.AwardXP(ctx, "s1", 100)
	if err != nil {
		t.Fatal(err)
	}
	if up == nil || up.From != 1 || up.To != 2 {
		t.Fatalf("level up = %+v, want 1 -> 2", up)
	}
	if up.BonusCoins != 40 {
		t.Fatalf("bonus = %d, want 40", up.BonusCoins)
	}

	p, _ := profiles.Get(ctx, "s1")
	if p.Coins != 40 || p.XP != 250 {
		t.Fatalf("profile coins/xp = %d/%d, want 40/250", p.Coins, p.XP)
	}
}

func TestRecordQuizActivity(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	p, err := svc.RecordQuizActivity(ctx, "s1", at, 4)
	if err != nil {
		t.Fatal(err)
	}
	if p.TotalQuizzes != 1 || p.StudyMinutes != 4 || p.Streak != 1 {
		t.Fatalf("unexpected profile: %+v", p)
	}
	if p.Usage.Date != "2026-03-01" || p.Usage.QuizCount != 1 || p.Usage.StudyMinutes != 4 {
		t.Fatalf("unexpected usage: %+v", p.Usage)
	}

	// Next day rolls the usage counters and extends the streak.
	p, err = svc.RecordQuizActivity(ctx, "s1", at.AddDate(0, 0, 1), 2)
	if err != nil {
		t.Fatal(err)
	}
	if p.Streak != 2 {
		t.Fatalf("streak = %d, want 2", p.Streak)
	}
	if p.Usage.Date != "2026-03-02" || p.Usage.QuizCount != 1 || p.Usage.StudyMinutes != 2 {
		t.Fatalf("usage did not roll over: %+v", p.Usage)
	}
	if p.StudyMinutes != 6 {
		t.Fatalf("lifetime minutes = %d, want 6", p.StudyMinutes)
	}
}

func TestEvaluateAchievements_GrantsOnce(t *testing.T) {
	svc, profiles, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.RecordQuizActivity(ctx, "s1", time.Now(), 5); err != nil {
		t.Fatal(err)
	}

	unlocked, err := svc.EvaluateAchievements(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(unlocked) != 1 || unlocked[0].ID != "first_quiz" {
		t.Fatalf("unlocked = %v, want [first_quiz]", ids(unlocked))
	}

	p, _ := profiles.Get(ctx, "s1")
	if p.Coins != 25 || p.XP != 10 {
		t.Fatalf("rewards not applied: coins=%d xp=%d", p.Coins, p.XP)
	}

	// Re-evaluation must not grant or pay again.
	unlocked, err = svc.EvaluateAchievements(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(unlocked) != 0 {
		t.Fatalf("second evaluation unlocked %v", ids(unlocked))
	}
	p, _ = profiles.Get(ctx, "s1")
	if p.Coins != 25 {
		t.Fatalf("rewards paid twice: coins=%d", p.Coins)
	}
}

func ids(as []*Achievement) []string {
	out := make([]string, len(as))
	for i, a := range as {
		out[i] = a.ID
	}
	return out
}

func TestPurchasePerk(t *testing.T) {
	svc, profiles, _ := newTestService(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	if _, err := svc.PurchasePerk(ctx, "s1", "nope"); !errors.Is(err, ErrUnknownPerk) {
		t.Fatalf("unknown perk: err = %v", err)
	}
	if _, err := svc.PurchasePerk(ctx, "s1", "speed_boost"); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("broke student: err = %v", err)
	}

	if _, err := svc.AwardCoins(ctx, "s1", 1000, "seed"); err != nil {
		t.Fatal(err)
	}

	own, err := svc.PurchasePerk(ctx, "s1", "speed_boost")
	if err != nil {
		t.Fatal(err)
	}
	wantExpiry := now.Add(7 * 24 * time.Hour)
	if own.ExpiresAt == nil || !own.ExpiresAt.Equal(wantExpiry) {
		t.Fatalf("expiry = %v, want %v", own.ExpiresAt, wantExpiry)
	}

	// Repurchase extends from the current expiry, not from now.
	own, err = svc.PurchasePerk(ctx, "s1", "speed_boost")
	if err != nil {
		t.Fatal(err)
	}
	wantExpiry = wantExpiry.Add(7 * 24 * time.Hour)
	if own.ExpiresAt == nil || !own.ExpiresAt.Equal(wantExpiry) {
		t.Fatalf("extended expiry = %v, want %v", own.ExpiresAt, wantExpiry)
	}

	// One-shot purchases accumulate uses.
	own, err = svc.PurchasePerk(ctx, "s1", "hint_helper")
	if err != nil {
		t.Fatal(err)
	}
	if own.UsesLeft != 1 {
		t.Fatalf("uses = %d, want 1", own.UsesLeft)
	}
	own, _ = svc.PurchasePerk(ctx, "s1", "hint_helper")
	if own.UsesLeft != 2 {
		t.Fatalf("uses = %d, want 2", own.UsesLeft)
	}

	// Cosmetics are never charged twice.
	if _, err := svc.PurchasePerk(ctx, "s1", "golden_star"); err != nil {
		t.Fatal(err)
	}
	p, _ := profiles.Get(ctx, "s1")
	before := p.Coins
	if _, err := svc.PurchasePerk(ctx, "s1", "golden_star"); err != nil {
		t.Fatal(err)
	}
	p, _ = profiles.Get(ctx, "s1")
	if p.Coins != before {
		t.Fatalf("cosmetic repurchase charged: %d -> %d", before, p.Coins)
	}
}

func TestLeaderboard(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	i := 0
	svc.profiles.(*memProfiles).now = func() time.Time {
		i++
		return base.Add(time.Duration(i) * time.Second)
	}

	svc.AwardCoins(ctx, "alice", 300, "seed")
	svc.AwardCoins(ctx, "bob", 500, "seed")
	svc.AwardCoins(ctx, "carol", 300, "seed")

	entries, err := svc.Leaderboard(ctx, MetricCoins, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("len = %d, want 3", len(entries))
	}
	if entries[0].StudentID != "bob" || entries[0].Rank != 1 {
		t.Errorf("first = %+v, want bob rank 1", entries[0])
	}
	// Tie between alice and carol resolves to the earlier profile.
	if entries[1].StudentID != "alice" || entries[2].StudentID != "carol" {
		t.Errorf("tie order = %s, %s; want alice, carol", entries[1].StudentID, entries[2].StudentID)
	}

	entries, _ = svc.Leaderboard(ctx, MetricCoins, 2)
	if len(entries) != 2 {
		t.Fatalf("limited len = %d, want 2", len(entries))
	}

	rank, err := svc.Rank(ctx, "carol", MetricCoins)
	if err != nil {
		t.Fatal(err)
	}
	if rank != 3 {
		t.Fatalf("carol rank = %d, want 3", rank)
	}
	rank, _ = svc.Rank(ctx, "nobody", MetricCoins)
	if rank != 0 {
		t.Fatalf("missing student rank = %d, want 0", rank)
	}
}

func TestSettleQuiz_AppliesEverythingInOneCall(t *testing.T) {
	svc, profiles, attempts := newTestService(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	// Active coin boost; the multiplier applies inside the settlement.
	expiry := at.Add(time.Hour)
	if _, err := profiles.Transact(ctx, "s1", func(p *store.StudentProfile) error {
		p.Perks["double_coins"] = &store.PerkOwnership{PerkID: "double_coins", ExpiresAt: &expiry}
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	if err := attempts.Append(ctx, &store.QuizAttempt{
		QuizID: "q1", StudentID: "s1", Subject: "math", Score: 100, Timestamp: at,
	}); err != nil {
		t.Fatal(err)
	}

	out, err := svc.SettleQuiz(ctx, "s1", QuizSettlement{
		At: at, BaseCoins: 30, XP: 100, StudyMinutes: 4, Reason: "quiz: math",
		Fold: func(p *store.StudentProfile) {
			p.TopicStatsFor("math", "addition").Attempts = 5
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.Coins != 60 {
		t.Fatalf("coins = %d, want 60 (30 doubled)", out.Coins)
	}

	unlocked := map[string]bool{}
	for _, a := range out.Unlocked {
		unlocked[a.ID] = true
	}
	if !unlocked["first_quiz"] || !unlocked["perfect_score"] {
		t.Fatalf("unlocked = %v, want first_quiz and perfect_score", ids(out.Unlocked))
	}

	p := out.Profile
	// 60 quiz coins + 25 first_quiz + 50 perfect_score.
	if p.Coins != 135 {
		t.Fatalf("coins = %d, want 135", p.Coins)
	}
	if p.XP != 135 {
		t.Fatalf("xp = %d, want 135", p.XP)
	}
	if p.TotalQuizzes != 1 || p.Streak != 1 || p.StudyMinutes != 4 {
		t.Fatalf("activity not applied: %+v", p)
	}
	if p.Usage.Date != "2026-03-01" || p.Usage.QuizCount != 1 || p.Usage.StudyMinutes != 4 {
		t.Fatalf("usage not applied: %+v", p.Usage)
	}
	if p.Mastery["math"]["addition"].Attempts != 5 {
		t.Fatal("mastery fold not applied")
	}

	if _, err := svc.SettleQuiz(ctx, "s1", QuizSettlement{At: at, BaseCoins: -1}); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("negative settlement: err = %v, want ErrInvalidAmount", err)
	}
}

func TestSettleStudySession(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	p, err := svc.SettleStudySession(ctx, "s1", at, 12, 30)
	if err != nil {
		t.Fatal(err)
	}
	if p.Coins != 30 || p.StudyMinutes != 12 || p.Streak != 1 {
		t.Fatalf("unexpected profile: %+v", p)
	}
	if p.Usage.StudyMinutes != 12 || p.Usage.QuizCount != 0 {
		t.Fatalf("session touched quiz counters: %+v", p.Usage)
	}
	if p.TotalQuizzes != 0 {
		t.Fatalf("session counted as quiz: %d", p.TotalQuizzes)
	}
}

func TestGrantWelcome_Once(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	p, granted, err := svc.GrantWelcome(ctx, "s1", 100)
	if err != nil {
		t.Fatal(err)
	}
	if !granted || p.Coins != 100 {
		t.Fatalf("first grant: granted=%v coins=%d", granted, p.Coins)
	}

	p, granted, err = svc.GrantWelcome(ctx, "s1", 100)
	if err != nil {
		t.Fatal(err)
	}
	if granted || p.Coins != 100 {
		t.Fatalf("second grant: granted=%v coins=%d", granted, p.Coins)
	}
}

func TestGrantWelcome_ConcurrentFirstSessions(t *testing.T) {
	svc, profiles, _ := newTestService(t)
	ctx := context.Background()

	const workers = 10
	var wg sync.WaitGroup
	grants := make(chan bool, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, granted, err := svc.GrantWelcome(ctx, "s1", 100)
			if err != nil {
				t.Error(err)
				return
			}
			grants <- granted
		}()
	}
	wg.Wait()
	close(grants)

	var count int
	for g := range grants {
		if g {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("welcome granted %d times, want 1", count)
	}
	p, _ := profiles.Get(ctx, "s1")
	if p.Coins != 100 {
		t.Fatalf("coins = %d, want 100", p.Coins)
	}
}

func TestAwardCoins_ConcurrentNoLostUpdate(t *testing.T) {
	svc, profiles, _ := newTestService(t)
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.AwardCoins(ctx, "s1", 5, "concurrent"); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	p, err := profiles.Get(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if p.Coins != workers*5 {
		t.Fatalf("coins = %d, want %d", p.Coins, workers*5)
	}
}
