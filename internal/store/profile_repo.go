package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// profileRepo implements ProfileRepo on the profiles table. Every write runs
// inside a SQL transaction so a mutation is either fully durable or absent,
// and a per-student lock serializes the read-modify-persist sequence.
type profileRepo struct {
	db    *sql.DB
	locks *lockTable
}

func (r *profileRepo) Load(ctx context.Context, studentID string) (*StudentProfile, error) {
	return r.transact(ctx, studentID, nil)
}

func (r *profileRepo) Get(ctx context.Context, studentID string) (*StudentProfile, error) {
	var data string
	err := r.db.QueryRowContext(ctx,
		`SELECT data FROM profiles WHERE student_id = ?`, studentID,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query profile: %w", err)
	}
	return unmarshalProfile(data)
}

func (r *profileRepo) Transact(ctx context.Context, studentID string, mutate func(*StudentProfile) error) (*StudentProfile, error) {
	return r.transact(ctx, studentID, mutate)
}

// transact loads (creating if absent), optionally mutates, and persists the
// profile under the student's lock. A nil mutate makes it a load-or-create.
func (r *profileRepo) transact(ctx context.Context, studentID string, mutate func(*StudentProfile) error) (*StudentProfile, error) {
	lock := r.locks.forStudent(studentID)
	lock.Lock()
	defer lock.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	profile, created, err := loadOrCreate(ctx, tx, studentID)
	if err != nil {
		return nil, err
	}

	if mutate != nil {
		if err := mutate(profile); err != nil {
			// Business-rule failure: commit only a newly created default
			// profile, discard the mutation.
			if created {
				if commitErr := tx.Commit(); commitErr != nil {
					return nil, fmt.Errorf("commit transaction: %w", commitErr)
				}
			}
			return nil, err
		}
		data, err := json.Marshal(profile)
		if err != nil {
			return nil, fmt.Errorf("marshal profile: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE profiles SET data = ? WHERE student_id = ?`, string(data), studentID)
		if err != nil {
			return nil, fmt.Errorf("update profile: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return profile, nil
}

// loadOrCreate reads the profile row inside tx, inserting a default
// zero-state profile if none exists. Returns whether a row was created.
func loadOrCreate(ctx context.Context, tx *sql.Tx, studentID string) (*StudentProfile, bool, error) {
	var data string
	err := tx.QueryRowContext(ctx,
		`SELECT data FROM profiles WHERE student_id = ?`, studentID,
	).Scan(&data)
	if err == nil {
		p, uerr := unmarshalProfile(data)
		return p, false, uerr
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("query profile: %w", err)
	}

	profile := NewProfile(studentID, time.Now())
	raw, err := json.Marshal(profile)
	if err != nil {
		return nil, false, fmt.Errorf("marshal profile: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO profiles (student_id, data, created_at) VALUES (?, ?, ?)`,
		studentID, string(raw), profile.CreatedAt)
	if err != nil {
		return nil, false, fmt.Errorf("insert profile: %w", err)
	}
	return profile, true, nil
}

func (r *profileRepo) All(ctx context.Context) ([]*StudentProfile, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT data FROM profiles ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*StudentProfile
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		p, err := unmarshalProfile(data)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}
	return profiles, nil
}

func (r *profileRepo) Delete(ctx context.Context, studentID string) error {
	lock := r.locks.forStudent(studentID)
	lock.Lock()
	defer lock.Unlock()

	_, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE student_id = ?`, studentID)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}

func unmarshalProfile(data string) (*StudentProfile, error) {
	var p StudentProfile
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("unmarshal profile: %w", err)
	}
	if p.Achievements == nil {
		p.Achievements = make(map[string]time.Time)
	}
	if p.Perks == nil {
		p.Perks = make(map[string]*PerkOwnership)
	}
	if p.Mastery == nil {
		p.Mastery = make(map[string]map[string]*TopicStats)
	}
	return &p, nil
}
