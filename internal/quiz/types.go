package quiz

import (
	"context"
	"time"

	"github.com/abhisek/studyquest/internal/economy"
)

// Difficulty is a quiz tier.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"

	// Auto asks the policy to resolve the tier from recent performance.
	Auto = "auto"
)

// ParseDifficulty maps a string to a tier; ok is false for anything else.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch Difficulty(s) {
	case Easy, Medium, Hard:
		return Difficulty(s), true
	}
	return "", false
}

// StepUp returns the next harder tier, capped at Hard.
func (d Difficulty) StepUp() Difficulty {
	switch d {
	case Easy:
		return Medium
	case Medium:
		return Hard
	default:
		return Hard
	}
}

// StepDown returns the next easier tier, floored at Easy.
func (d Difficulty) StepDown() Difficulty {
	switch d {
	case Hard:
		return Medium
	case Medium:
		return Easy
	default:
		return Easy
	}
}

// Question is one selectable item from the question bank. The engine selects
// and scores questions, never authors them.
type Question struct {
	ID          string     `json:"id"`
	Subject     string     `json:"subject"`
	Topic       string     `json:"topic"`
	Difficulty  Difficulty `json:"difficulty"`
	Prompt      string     `json:"prompt"`
	Options     []string   `json:"options"`
	Correct     int        `json:"correct"`
	Explanation string     `json:"explanation,omitempty"`
	Hint        string     `json:"hint,omitempty"`
}

// QuestionBank supplies questions keyed by subject, topics, and tier. It may
// return fewer than count; the policy treats the shortfall as
// ErrInsufficientQuestions.
type QuestionBank interface {
	FetchQuestions(ctx context.Context, subject string, topics []string, difficulty Difficulty, count int) ([]Question, error)
	Topics(subject string) []string
}

// ContentSource supplies revision text for a (subject, topic) pair.
type ContentSource interface {
	PromptFor(subject, topic string) (string, error)
}

// State is the quiz instance lifecycle stage.
type State string

const (
	StateCreated    State = "created"
	StateInProgress State = "in_progress"
	StateSubmitted  State = "submitted"
	StateScored     State = "scored"
)

// Quiz is one in-flight quiz instance. It lives in memory until scored; the
// durable record of a finished quiz is the QuizAttempt.
type Quiz struct {
	ID            string     `json:"id"`
	StudentID     string     `json:"student_id"`
	Subject       string     `json:"subject"`
	Difficulty    Difficulty `json:"difficulty"`
	Questions     []Question `json:"questions"`
	State         State      `json:"state"`
	CreatedAt     time.Time  `json:"created_at"`
	TimeBonusSecs int        `json:"time_bonus_secs"` // from active perks, reported to the caller
}

// Topics returns the distinct topics covered by the quiz's questions.
func (q *Quiz) Topics() []string {
	seen := make(map[string]bool)
	var topics []string
	for _, question := range q.Questions {
		if !seen[question.Topic] {
			seen[question.Topic] = true
			topics = append(topics, question.Topic)
		}
	}
	return topics
}

// SubmitResult is everything a caller learns from scoring a quiz.
type SubmitResult struct {
	QuizID          string                 `json:"quiz_id"`
	Score           float64                `json:"score"` // percentage correct, 0-100
	CorrectCount    int                    `json:"correct_count"`
	TotalQuestions  int                    `json:"total_questions"`
	CoinsEarned     int                    `json:"coins_earned"`
	XPEarned        int                    `json:"xp_earned"`
	LevelUp         *economy.LevelUp       `json:"level_up,omitempty"`
	NewAchievements []*economy.Achievement `json:"new_achievements,omitempty"`
	NextDifficulty  Difficulty             `json:"next_difficulty"`
}

// TopicAccuracy is one row of the weak-topic report.
type TopicAccuracy struct {
	Topic    string  `json:"topic"`
	Accuracy float64 `json:"accuracy"` // 0-100 over the examined window
	Attempts int     `json:"attempts"` // answered questions examined
}

// RevisionSummary is the weak-topic digest handed to the caller, with
// revision text pulled from the content source.
type RevisionSummary struct {
	Subject     string   `json:"subject"`
	FocusTopics []string `json:"focus_topics"`
	Notes       []string `json:"notes"`
}
