// Package attention implements the attention alert policy: a per-student
// rolling average over webcam focus samples, alerting with a gentle nudge
// when sustained attention drops below the configured sensitivity. It also
// tracks video sessions, accumulating a per-session average and alert count
// that the engine turns into coin rewards on completion.
package attention

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/studyquest/internal/config"
	"github.com/abhisek/studyquest/internal/store"
)

// ErrNoActiveSession is returned when completing a session that was never
// started.
var ErrNoActiveSession = errors.New("no active video session")

// PromptSource supplies the nudge text attached to an alert.
type PromptSource interface {
	AttentionNudge() (string, error)
}

// Sample is one focus reading from the attention sensor.
type Sample struct {
	Score float64   `json:"score"`     // 0 = fully distracted, 1 = fully focused
	At    time.Time `json:"timestamp"` // sensor time; zero means receipt time
}

// Result reports the outcome of ingesting one focus sample or querying
// the current level.
type Result struct {
	StudentID  string  `json:"student_id"`
	Level      float64 `json:"level"`   // rolling average, 0-1
	Samples    int     `json:"samples"` // samples currently in the window
	Alert      bool    `json:"alert"`
	Prompt     string  `json:"prompt,omitempty"`
	AlertCount int     `json:"alert_count,omitempty"` // alerts in the active session
}

// SessionInfo describes a freshly started video session.
type SessionInfo struct {
	StudentID  string    `json:"student_id"`
	Title      string    `json:"title"`
	StartedAt  time.Time `json:"started_at"`
	Monitoring bool      `json:"monitoring"` // false when the webcam is disabled
}

// SessionSummary is the durable outcome of a completed video session.
type SessionSummary struct {
	StudentID string    `json:"student_id"`
	Title     string    `json:"title"`
	StartedAt time.Time `json:"started_at"`
	Minutes   int       `json:"minutes"` // watch time, partial minutes round up
	Average   float64   `json:"average"` // mean focus over the session, 0 without samples
	Samples   int       `json:"samples"`
	Alerts    int       `json:"alerts"`
}

// session accumulates focus over one video session. Unlike the rolling
// window it averages every sample, so a long stretch of distraction cannot
// scroll out of the completion bonus.
type session struct {
	title     string
	startedAt time.Time
	sum       float64
	count     int
	alerts    int
}

// state is the in-memory per-student tracking: the rolling window, the
// newest accepted sample time, and the active session if any.
type state struct {
	window  []float64
	lastAt  time.Time
	session *session
}

// Policy holds the per-student tracking state. Windows and sessions are
// in-memory only; the alert cooldown is anchored on the profile so it
// survives restarts.
type Policy struct {
	cfg      config.Attention
	profiles store.ProfileRepo
	prompts  PromptSource
	log      *zap.Logger
	now      func() time.Time

	mu       sync.Mutex
	students map[string]*state
}

// NewPolicy creates the attention alert policy.
func NewPolicy(cfg config.Attention, profiles store.ProfileRepo, prompts PromptSource, log *zap.Logger) *Policy {
	return &Policy{
		cfg:      cfg,
		profiles: profiles,
		prompts:  prompts,
		log:      log,
		now:      time.Now,
		students: make(map[string]*state),
	}
}

// StartSession begins a video session for the student, replacing any session
// already in flight. Monitoring reports whether focus samples will be
// accepted under the current parental policy.
func (p *Policy) StartSession(ctx context.Context, studentID, title string) (*SessionInfo, error) {
	profile, err := p.profiles.Load(ctx, studentID)
	if err != nil {
		return nil, err
	}

	now := p.now()
	p.mu.Lock()
	st := p.stateFor(studentID)
	st.session = &session{title: title, startedAt: now}
	p.mu.Unlock()

	p.log.Info("video session started",
		zap.String("student", studentID),
		zap.String("title", title))
	return &SessionInfo{
		StudentID:  studentID,
		Title:      title,
		StartedAt:  now,
		Monitoring: profile.Policy.WebcamEnabled,
	}, nil
}

// CompleteSession closes the student's active video session and returns its
// summary. Fails with ErrNoActiveSession when none is in flight.
func (p *Policy) CompleteSession(studentID string) (*SessionSummary, error) {
	now := p.now()

	p.mu.Lock()
	st := p.stateFor(studentID)
	s := st.session
	st.session = nil
	p.mu.Unlock()

	if s == nil {
		return nil, ErrNoActiveSession
	}

	summary := &SessionSummary{
		StudentID: studentID,
		Title:     s.title,
		StartedAt: s.startedAt,
		Minutes:   watchMinutes(now.Sub(s.startedAt)),
		Samples:   s.count,
		Alerts:    s.alerts,
	}
	if s.count > 0 {
		summary.Average = s.sum / float64(s.count)
	}
	p.log.Info("video session completed",
		zap.String("student", studentID),
		zap.Int("minutes", summary.Minutes),
		zap.Float64("average", summary.Average),
		zap.Int("alerts", summary.Alerts))
	return summary, nil
}

// Ingest records one focus sample and decides whether to alert. Sample
// timestamps must not run backwards; a zero timestamp is stamped with
// receipt time. Students whose parental policy disables the webcam never
// accumulate samples and never alert.
func (p *Policy) Ingest(ctx context.Context, studentID string, sample Sample) (*Result, error) {
	if sample.Score < 0 || sample.Score > 1 {
		return nil, fmt.Errorf("focus score %v out of range [0,1]", sample.Score)
	}

	profile, err := p.profiles.Load(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if !profile.Policy.WebcamEnabled {
		return &Result{StudentID: studentID}, nil
	}

	at := sample.At
	if at.IsZero() {
		at = p.now()
	}

	level, samples, alerts, err := p.push(studentID, sample.Score, at)
	if err != nil {
		return nil, err
	}
	res := &Result{StudentID: studentID, Level: level, Samples: samples, AlertCount: alerts}

	// Alert only on a full window, below sensitivity, past the cooldown.
	// The cooldown is measured in sensor time so replayed batches behave
	// the same as live samples.
	if samples < p.cfg.Window || level >= p.cfg.Sensitivity {
		return res, nil
	}
	if !profile.LastAlertAt.IsZero() && at.Sub(profile.LastAlertAt) < p.cfg.Cooldown {
		return res, nil
	}

	// The prompt comes first: a failing content source must not burn the
	// cooldown without delivering an intervention.
	prompt, err := p.prompts.AttentionNudge()
	if err != nil {
		return nil, fmt.Errorf("attention nudge: %w", err)
	}
	if _, err := p.profiles.Transact(ctx, studentID, func(sp *store.StudentProfile) error {
		sp.LastAlertAt = at
		return nil
	}); err != nil {
		return nil, err
	}

	res.Alert = true
	res.Prompt = prompt
	res.AlertCount = p.countAlert(studentID)
	p.log.Info("attention alert",
		zap.String("student", studentID),
		zap.Float64("level", level))
	return res, nil
}

// Level reports the current rolling average without ingesting a sample.
func (p *Policy) Level(studentID string) *Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := p.stateFor(studentID)
	res := &Result{
		StudentID: studentID,
		Level:     average(st.window),
		Samples:   len(st.window),
	}
	if st.session != nil {
		res.AlertCount = st.session.alerts
	}
	return res
}

// Reset drops the student's window and any active session, e.g. at the
// start of a new study session.
func (p *Policy) Reset(studentID string) {
	p.mu.Lock()
	delete(p.students, studentID)
	p.mu.Unlock()
}

// stateFor returns the tracking state for a student, creating it if absent.
// Callers must hold p.mu.
func (p *Policy) stateFor(studentID string) *state {
	st := p.students[studentID]
	if st == nil {
		st = &state{}
		p.students[studentID] = st
	}
	return st
}

// push appends a sample, trims the window to its configured size, and feeds
// the active session. Rejects samples whose timestamp precedes the newest
// accepted one.
func (p *Policy) push(studentID string, score float64, at time.Time) (float64, int, int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	st := p.stateFor(studentID)
	if !st.lastAt.IsZero() && at.Before(st.lastAt) {
		return 0, 0, 0, fmt.Errorf("sample timestamp %s precedes newest sample %s",
			at.Format(time.RFC3339), st.lastAt.Format(time.RFC3339))
	}
	st.lastAt = at

	st.window = append(st.window, score)
	if len(st.window) > p.cfg.Window {
		st.window = st.window[len(st.window)-p.cfg.Window:]
	}

	alerts := 0
	if st.session != nil {
		st.session.sum += score
		st.session.count++
		alerts = st.session.alerts
	}
	return average(st.window), len(st.window), alerts, nil
}

// countAlert bumps the active session's alert counter and returns it; 0
// outside a session.
func (p *Policy) countAlert(studentID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := p.stateFor(studentID)
	if st.session == nil {
		return 0
	}
	st.session.alerts++
	return st.session.alerts
}

func average(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}

// watchMinutes converts a session duration to whole minutes, counting any
// partial minute as one.
func watchMinutes(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Minutes()))
}
