package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// attemptRepo implements AttemptRepo on the append-only attempts table.
type attemptRepo struct {
	db *sql.DB
}

func (r *attemptRepo) Append(ctx context.Context, attempt *QuizAttempt) error {
	data, err := json.Marshal(attempt)
	if err != nil {
		return fmt.Errorf("marshal attempt: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO attempts (quiz_id, student_id, subject, data, created_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(quiz_id) DO NOTHING`,
		attempt.QuizID, attempt.StudentID, attempt.Subject, string(data), attempt.Timestamp)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (r *attemptRepo) Recent(ctx context.Context, studentID string, limit int) ([]*QuizAttempt, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT data FROM attempts WHERE student_id = ? ORDER BY id DESC LIMIT ?`,
		studentID, limit)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	return scanAttempts(rows)
}

func (r *attemptRepo) RecentBySubject(ctx context.Context, studentID, subject string, limit int) ([]*QuizAttempt, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT data FROM attempts WHERE student_id = ? AND subject = ? ORDER BY id DESC LIMIT ?`,
		studentID, subject, limit)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	return scanAttempts(rows)
}

func (r *attemptRepo) DeleteFor(ctx context.Context, studentID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM attempts WHERE student_id = ?`, studentID)
	if err != nil {
		return fmt.Errorf("delete attempts: %w", err)
	}
	return nil
}

func scanAttempts(rows *sql.Rows) ([]*QuizAttempt, error) {
	defer rows.Close()

	var attempts []*QuizAttempt
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		var a QuizAttempt
		if err := json.Unmarshal([]byte(data), &a); err != nil {
			return nil, fmt.Errorf("unmarshal attempt: %w", err)
		}
		attempts = append(attempts, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}
	return attempts, nil
}
