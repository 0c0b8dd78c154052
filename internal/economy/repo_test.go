package economy

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/abhisek/studyquest/internal/store"
)

// memProfiles is an in-memory ProfileRepo with the same transactional
// contract as the SQLite-backed one.
type memProfiles struct {
	mu    sync.Mutex
	m     map[string]*store.StudentProfile
	order []string
	now   func() time.Time
}

func newMemProfiles() *memProfiles {
	return &memProfiles{m: make(map[string]*store.StudentProfile), now: time.Now}
}

func cloneProfile(p *store.StudentProfile) *store.StudentProfile {
	raw, err := json.Marshal(p)
	if err != nil {
		panic(err)
	}
	var out store.StudentProfile
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(err)
	}
	if out.Achievements == nil {
		out.Achievements = make(map[string]time.Time)
	}
	if out.Perks == nil {
		out.Perks = make(map[string]*store.PerkOwnership)
	}
	if out.Mastery == nil {
		out.Mastery = make(map[string]map[string]*store.TopicStats)
	}
	return &out
}

func (r *memProfiles) Load(ctx context.Context, studentID string) (*store.StudentProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.m[studentID]
	if !ok {
		p = store.NewProfile(studentID, r.now())
		r.m[studentID] = p
		r.order = append(r.order, studentID)
	}
	return cloneProfile(p), nil
}

func (r *memProfiles) Get(ctx context.Context, studentID string) (*store.StudentProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.m[studentID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneProfile(p), nil
}

func (r *memProfiles) Transact(ctx context.Context, studentID string, mutate func(*store.StudentProfile) error) (*store.StudentProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	base, ok := r.m[studentID]
	if !ok {
		base = store.NewProfile(studentID, r.now())
		r.m[studentID] = base
		r.order = append(r.order, studentID)
	}
	work := cloneProfile(base)
	if err := mutate(work); err != nil {
		return nil, err
	}
	r.m[studentID] = work
	return cloneProfile(work), nil
}

func (r *memProfiles) All(ctx context.Context) ([]*store.StudentProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*store.StudentProfile, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, cloneProfile(r.m[id]))
	}
	return out, nil
}

func (r *memProfiles) Delete(ctx context.Context, studentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.m[studentID]; !ok {
		return store.ErrNotFound
	}
	delete(r.m, studentID)
	for i, id := range r.order {
		if id == studentID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// memAttempts is an in-memory AttemptRepo.
type memAttempts struct {
	mu sync.Mutex
	m  map[string][]*store.QuizAttempt
}

func newMemAttempts() *memAttempts {
	return &memAttempts{m: make(map[string][]*store.QuizAttempt)}
}

func (r *memAttempts) Append(ctx context.Context, attempt *store.QuizAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.m[attempt.StudentID] {
		if attempt.QuizID != "" && existing.QuizID == attempt.QuizID {
			return nil
		}
	}
	r.m[attempt.StudentID] = append(r.m[attempt.StudentID], attempt)
	return nil
}

func (r *memAttempts) Recent(ctx context.Context, studentID string, limit int) ([]*store.QuizAttempt, error) {
	return r.recent(studentID, "", limit), nil
}

func (r *memAttempts) RecentBySubject(ctx context.Context, studentID, subject string, limit int) ([]*store.QuizAttempt, error) {
	return r.recent(studentID, subject, limit), nil
}

func (r *memAttempts) recent(studentID, subject string, limit int) []*store.QuizAttempt {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.m[studentID]
	var out []*store.QuizAttempt
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		if subject == "" || all[i].Subject == subject {
			out = append(out, all[i])
		}
	}
	return out
}

func (r *memAttempts) DeleteFor(ctx context.Context, studentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, studentID)
	return nil
}
