package quiz

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/studyquest/internal/config"
	"github.com/abhisek/studyquest/internal/economy"
	"github.com/abhisek/studyquest/internal/store"
)

// Service is the adaptive quiz policy: difficulty resolution, topic
// selection, scoring, and weak-topic analysis. Quiz instances are held in
// memory until scored; attempts are the durable record.
type Service struct {
	bank     QuestionBank
	content  ContentSource
	profiles store.ProfileRepo
	attempts store.AttemptRepo
	economy  *economy.Service
	cfg      config.Quiz
	rewards  config.Rewards
	log      *zap.Logger
	now      func() time.Time

	mu     sync.Mutex
	active map[string]*Quiz
}

// NewService creates the quiz policy service.
func NewService(bank QuestionBank, content ContentSource, profiles store.ProfileRepo, attempts store.AttemptRepo, eco *economy.Service, cfg config.Quiz, rewards config.Rewards, log *zap.Logger) *Service {
	return &Service{
		bank:     bank,
		content:  content,
		profiles: profiles,
		attempts: attempts,
		economy:  eco,
		cfg:      cfg,
		rewards:  rewards,
		log:      log,
		now:      time.Now,
		active:   make(map[string]*Quiz),
	}
}

// CreateQuiz builds a new quiz for the student. requestedDifficulty is a
// tier name or Auto; Auto resolves from rolling accuracy over the student's
// recent attempts in the subject unless the parental policy disables
// auto-adjustment, in which case the current tier holds. Weak topics are
// prioritized, remaining slots fill round-robin over the subject's topics.
func (s *Service) CreateQuiz(ctx context.Context, studentID, subject, requestedDifficulty string, questionCount int) (*Quiz, error) {
	if questionCount <= 0 {
		questionCount = s.cfg.DefaultCount
	}

	profile, err := s.profiles.Load(ctx, studentID)
	if err != nil {
		return nil, err
	}

	difficulty, err := s.resolveDifficulty(ctx, profile, subject, requestedDifficulty)
	if err != nil {
		return nil, err
	}

	topics, err := s.selectTopics(ctx, studentID, subject)
	if err != nil {
		return nil, err
	}

	questions, err := s.bank.FetchQuestions(ctx, subject, topics, difficulty, questionCount)
	if err != nil {
		return nil, fmt.Errorf("fetch questions: %w", err)
	}
	if len(questions) < questionCount {
		return nil, fmt.Errorf("%w: want %d, bank supplied %d for %s/%s",
			ErrInsufficientQuestions, questionCount, len(questions), subject, difficulty)
	}
	questions = questions[:questionCount]

	now := s.now()
	q := &Quiz{
		ID:            uuid.New().String(),
		StudentID:     studentID,
		Subject:       subject,
		Difficulty:    difficulty,
		Questions:     questions,
		State:         StateCreated,
		CreatedAt:     now,
		TimeBonusSecs: s.economy.Perks().TimeBonusSecs(profile, now),
	}
	q.State = StateInProgress

	s.mu.Lock()
	s.active[q.ID] = q
	s.mu.Unlock()

	s.log.Info("quiz created",
		zap.String("quiz", q.ID),
		zap.String("student", studentID),
		zap.String("subject", subject),
		zap.String("difficulty", string(difficulty)),
		zap.Int("questions", len(questions)))
	return q, nil
}

func (s *Service) resolveDifficulty(ctx context.Context, profile *store.StudentProfile, subject, requested string) (Difficulty, error) {
	if requested != Auto {
		d, ok := ParseDifficulty(requested)
		if !ok {
			return "", fmt.Errorf("invalid difficulty %q", requested)
		}
		return d, nil
	}

	recent, err := s.attempts.RecentBySubject(ctx, profile.StudentID, subject, s.cfg.AdaptiveWindow)
	if err != nil {
		return "", err
	}
	if !profile.Policy.AutoAdjustDifficulty {
		// Hold the current tier when the parent disabled auto-adjustment.
		if len(recent) > 0 {
			if d, ok := ParseDifficulty(recent[0].Difficulty); ok {
				return d, nil
			}
		}
		return Easy, nil
	}
	return resolveAuto(recent, s.cfg.PromoteThreshold, s.cfg.DemoteThreshold), nil
}

// selectTopics orders the subject's topics weakest first, with topics the
// student has never seen appended in the bank's round-robin order.
func (s *Service) selectTopics(ctx context.Context, studentID, subject string) ([]string, error) {
	weak, err := s.WeakTopics(ctx, studentID, subject)
	if err != nil {
		return nil, err
	}

	var topics []string
	seen := make(map[string]bool)
	for _, w := range weak {
		topics = append(topics, w.Topic)
		seen[w.Topic] = true
	}
	for _, t := range s.bank.Topics(subject) {
		if !seen[t] {
			topics = append(topics, t)
		}
	}
	return topics, nil
}

// Get returns the in-flight quiz with the given id, or ErrUnknownQuiz.
func (s *Service) Get(quizID string) (*Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.active[quizID]
	if !ok {
		return nil, ErrUnknownQuiz
	}
	return q, nil
}

// SubmitQuiz scores an in-progress quiz: records the attempt, then settles
// mastery, streak, daily usage, coins, XP, and achievements in one profile
// transaction. Fails with ErrAlreadySubmitted if the quiz is past
// InProgress. A failed submission reverts to InProgress and may be retried:
// the attempt append is idempotent on the quiz id and the settlement is
// all-or-nothing, so a retry never double-counts.
func (s *Service) SubmitQuiz(ctx context.Context, quizID string, answers []int, timeTaken float64) (*SubmitResult, error) {
	s.mu.Lock()
	q, ok := s.active[quizID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrUnknownQuiz
	}
	if q.State != StateInProgress {
		s.mu.Unlock()
		return nil, ErrAlreadySubmitted
	}
	q.State = StateSubmitted
	s.mu.Unlock()

	now := s.now()
	answered, correct := scoreAnswers(q.Questions, answers)
	score := 0.0
	if len(q.Questions) > 0 {
		score = float64(correct) / float64(len(q.Questions)) * 100
	}

	attempt := &store.QuizAttempt{
		QuizID:     q.ID,
		StudentID:  q.StudentID,
		Subject:    q.Subject,
		Topics:     q.Topics(),
		Difficulty: string(q.Difficulty),
		Questions:  answered,
		Score:      score,
		TimeTaken:  timeTaken,
		Timestamp:  now,
	}

	outcome, err := s.settle(ctx, q, attempt, now)
	if err != nil {
		s.mu.Lock()
		q.State = StateInProgress
		s.mu.Unlock()
		return nil, err
	}

	s.mu.Lock()
	q.State = StateScored
	s.mu.Unlock()

	result := &SubmitResult{
		QuizID:          q.ID,
		Score:           score,
		CorrectCount:    correct,
		TotalQuestions:  len(q.Questions),
		CoinsEarned:     outcome.Coins,
		XPEarned:        int(math.Round(score)),
		LevelUp:         outcome.LevelUp,
		NewAchievements: outcome.Unlocked,
		NextDifficulty:  recommendNext(score, q.Difficulty, s.cfg.PromoteThreshold, s.cfg.DemoteThreshold),
	}
	s.log.Info("quiz scored",
		zap.String("quiz", q.ID),
		zap.String("student", q.StudentID),
		zap.Float64("score", score),
		zap.Int("coins", outcome.Coins))
	return result, nil
}

// settle appends the attempt and applies every reward in one economy
// settlement. The append is keyed on the quiz id, so re-running after a
// failed settlement does not duplicate history.
func (s *Service) settle(ctx context.Context, q *Quiz, attempt *store.QuizAttempt, now time.Time) (*economy.QuizOutcome, error) {
	if err := s.attempts.Append(ctx, attempt); err != nil {
		return nil, err
	}
	return s.economy.SettleQuiz(ctx, q.StudentID, economy.QuizSettlement{
		At:           now,
		BaseCoins:    coinReward(attempt.Score, q.Difficulty, s.rewards),
		XP:           int(math.Round(attempt.Score)),
		StudyMinutes: studyMinutes(attempt.TimeTaken),
		Reason:       "quiz: " + q.Subject,
		Fold: func(p *store.StudentProfile) {
			for _, aq := range attempt.Questions {
				ts := p.TopicStatsFor(q.Subject, aq.Topic)
				ts.Attempts++
				if aq.Correct {
					ts.Correct++
				}
			}
		},
	})
}

// UseHint consumes one hint use from the student's hint perks and returns
// the hint text for the given question. Fails with ErrNoHintsAvailable when
// the student has none left.
func (s *Service) UseHint(ctx context.Context, quizID string, questionIndex int) (string, error) {
	q, err := s.Get(quizID)
	if err != nil {
		return "", err
	}
	if questionIndex < 0 || questionIndex >= len(q.Questions) {
		return "", fmt.Errorf("question index %d out of range", questionIndex)
	}

	_, err = s.profiles.Transact(ctx, q.StudentID, func(p *store.StudentProfile) error {
		if !s.economy.Perks().ConsumeHint(p) {
			return ErrNoHintsAvailable
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return q.Questions[questionIndex].Hint, nil
}

// WeakTopics reports per-topic accuracy over the student's newest attempts
// in the subject, weakest first. A topic qualifies as weak only when it has
// at least one examined answer and its accuracy is below the configured
// threshold.
func (s *Service) WeakTopics(ctx context.Context, studentID, subject string) ([]TopicAccuracy, error) {
	recent, err := s.attempts.RecentBySubject(ctx, studentID, subject, s.cfg.WeakTopicWindow)
	if err != nil {
		return nil, err
	}

	type tally struct{ attempts, correct int }
	tallies := make(map[string]*tally)
	for _, a := range recent {
		for _, aq := range a.Questions {
			t := tallies[aq.Topic]
			if t == nil {
				t = &tally{}
				tallies[aq.Topic] = t
			}
			t.attempts++
			if aq.Correct {
				t.correct++
			}
		}
	}

	var weak []TopicAccuracy
	for topic, t := range tallies {
		accuracy := float64(t.correct) / float64(t.attempts) * 100
		if accuracy < s.cfg.WeakTopicThreshold {
			weak = append(weak, TopicAccuracy{Topic: topic, Accuracy: accuracy, Attempts: t.attempts})
		}
	}
	sort.Slice(weak, func(i, j int) bool {
		if weak[i].Accuracy != weak[j].Accuracy {
			return weak[i].Accuracy < weak[j].Accuracy
		}
		return weak[i].Topic < weak[j].Topic
	})
	return weak, nil
}

// RevisionSummary builds a revision digest for the student's weak topics,
// with per-topic text delegated to the content source.
func (s *Service) RevisionSummary(ctx context.Context, studentID, subject string) (*RevisionSummary, error) {
	weak, err := s.WeakTopics(ctx, studentID, subject)
	if err != nil {
		return nil, err
	}

	summary := &RevisionSummary{Subject: subject}
	for _, w := range weak {
		summary.FocusTopics = append(summary.FocusTopics, w.Topic)
		note, err := s.content.PromptFor(subject, w.Topic)
		if err != nil {
			return nil, fmt.Errorf("revision text for %s/%s: %w", subject, w.Topic, err)
		}
		summary.Notes = append(summary.Notes, note)
	}
	return summary, nil
}

// scoreAnswers pairs each question with the chosen answer index. Missing
// answers count as unanswered (-1) and incorrect.
func scoreAnswers(questions []Question, answers []int) ([]store.AnsweredQuestion, int) {
	answered := make([]store.AnsweredQuestion, len(questions))
	correct := 0
	for i, question := range questions {
		chosen := -1
		if i < len(answers) {
			chosen = answers[i]
		}
		ok := chosen == question.Correct
		if ok {
			correct++
		}
		answered[i] = store.AnsweredQuestion{
			QuestionID: question.ID,
			Topic:      question.Topic,
			Chosen:     chosen,
			Correct:    ok,
		}
	}
	return answered, correct
}

// coinReward maps score and tier to base coins. Monotone in both: a higher
// tier has a higher base, a higher score lands in a higher band.
func coinReward(score float64, tier Difficulty, rewards config.Rewards) int {
	base := rewards.EasyBase
	switch tier {
	case Medium:
		base = rewards.MediumBase
	case Hard:
		base = rewards.HardBase
	}

	switch {
	case score >= 90:
		return base * 3
	case score >= 80:
		return base * 2
	case score >= 60:
		return base * 3 / 2
	case score >= 40:
		return base
	default:
		// Consolation coins.
		if base/2 < 5 {
			return 5
		}
		return base / 2
	}
}

// studyMinutes converts quiz time to whole minutes, counting any partial
// minute as one.
func studyMinutes(seconds float64) int {
	if seconds <= 0 {
		return 0
	}
	return int(math.Ceil(seconds / 60))
}
