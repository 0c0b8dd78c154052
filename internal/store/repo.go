package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates the requested profile does not exist and creation
// was not requested.
var ErrNotFound = errors.New("profile not found")

// ProfileRepo manages durable per-student profiles.
//
// Transact serializes calls per student id: two concurrent transactions for
// the same student never interleave and neither update is lost. Transactions
// for different students proceed in parallel. A transaction either fully
// commits or has no visible effect.
type ProfileRepo interface {
	// Load returns the profile for studentID, creating and persisting a
	// default zero-state profile if absent.
	Load(ctx context.Context, studentID string) (*StudentProfile, error)

	// Get returns the profile for studentID or ErrNotFound.
	Get(ctx context.Context, studentID string) (*StudentProfile, error)

	// Transact atomically applies mutate to the profile (creating a default
	// one if absent) and persists the result. If mutate returns an error the
	// profile is left untouched and the error is returned.
	Transact(ctx context.Context, studentID string, mutate func(*StudentProfile) error) (*StudentProfile, error)

	// All returns every stored profile. Read-only, used by the leaderboard.
	All(ctx context.Context) ([]*StudentProfile, error)

	// Delete removes the profile and is the only way student state is
	// destroyed.
	Delete(ctx context.Context, studentID string) error
}

// QuizAttempt is an immutable record of one scored quiz, appended to the
// per-student history in submission order.
type QuizAttempt struct {
	QuizID     string             `json:"quiz_id"`
	StudentID  string             `json:"student_id"`
	Subject    string             `json:"subject"`
	Topics     []string           `json:"topics"`
	Difficulty string             `json:"difficulty"`
	Questions  []AnsweredQuestion `json:"questions"`
	Score      float64            `json:"score"`      // percentage correct, 0-100
	TimeTaken  float64            `json:"time_taken"` // seconds
	Timestamp  time.Time          `json:"timestamp"`
}

// AnsweredQuestion captures one answered question within an attempt.
type AnsweredQuestion struct {
	QuestionID string `json:"question_id"`
	Topic      string `json:"topic"`
	Chosen     int    `json:"chosen"` // answer index, -1 for unanswered
	Correct    bool   `json:"correct"`
}

// AttemptRepo provides append-only access to quiz attempt history.
type AttemptRepo interface {
	// Append records a scored attempt. Re-appending the same quiz id is a
	// no-op, so a retried submission never duplicates history.
	Append(ctx context.Context, attempt *QuizAttempt) error

	// Recent returns the newest limit attempts for the student across all
	// subjects, newest first.
	Recent(ctx context.Context, studentID string, limit int) ([]*QuizAttempt, error)

	// RecentBySubject returns the newest limit attempts for the student in
	// one subject, newest first.
	RecentBySubject(ctx context.Context, studentID, subject string, limit int) ([]*QuizAttempt, error)

	// DeleteFor removes all attempts for a student. Part of data reset.
	DeleteFor(ctx context.Context, studentID string) error
}
