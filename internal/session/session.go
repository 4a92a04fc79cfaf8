// Package session models one practice session: an append-only attempt log
// with timer state, owned by the caller and discarded at session end.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mkarpov/interview-coach/internal/llm"
	"github.com/mkarpov/interview-coach/internal/model"
	"github.com/mkarpov/interview-coach/internal/scoring"
	"github.com/mkarpov/interview-coach/internal/store"
)

// ExportFilename is the artifact name offered for session downloads.
const ExportFilename = "session.json"

// Feedbacker produces optional qualitative feedback for an answer.
// *llm.Client satisfies it; nil disables the call entirely.
type Feedbacker interface {
	Feedback(ctx context.Context, question, answer string) string
}

// Session owns the attempt log and the in-progress timer. One logical
// session exists at a time; there is no cross-session sharing.
type Session struct {
	store    *store.Store
	feedback Feedbacker
	now      func() time.Time

	mu         sync.Mutex
	timerStart time.Time
	timerSet   bool
}

// New creates a session over the given store. feedback may be nil to skip
// the remote call.
func New(s *store.Store, feedback Feedbacker) *Session {
	return &Session{store: s, feedback: feedback, now: time.Now}
}

var _ Feedbacker = (*llm.Client)(nil)

// EvaluateRequest carries one evaluation action.
type EvaluateRequest struct {
	Role         string
	QuestionType model.QuestionType
	Difficulty   model.Difficulty
	Question     string
	Answer       string
	// DurationSec overrides the timer-derived duration when >= 0.
	DurationSec int
}

// Evaluate scores an answer, generates the outline, optionally fetches
// remote feedback, and appends the resulting Attempt to the session log.
func (s *Session) Evaluate(ctx context.Context, req EvaluateRequest) (model.Attempt, error) {
	duration := req.DurationSec
	if duration < 0 {
		duration = s.Elapsed()
	}

	attempt := model.Attempt{
		ID:           uuid.NewString(),
		CreatedAt:    s.now(),
		Role:         req.Role,
		QuestionType: req.QuestionType,
		Difficulty:   req.Difficulty,
		Question:     req.Question,
		Answer:       req.Answer,
		DurationSec:  duration,
		Scores:       scoring.Score(req.Question, req.Answer),
		Outline:      scoring.Outline(req.Answer),
	}
	if s.feedback != nil {
		attempt.LLMFeedback = s.feedback.Feedback(ctx, req.Question, req.Answer)
	}

	if err := s.store.AppendAttempt(attempt); err != nil {
		return model.Attempt{}, err
	}
	return attempt, nil
}

// StartTimer marks the beginning of a timed answer and returns the mark.
func (s *Session) StartTimer() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timerStart = s.now()
	s.timerSet = true
	return s.timerStart
}

// Elapsed returns whole seconds since StartTimer, or 0 if the timer was
// never started.
func (s *Session) Elapsed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.timerSet {
		return 0
	}
	elapsed := int(s.now().Sub(s.timerStart).Seconds())
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// Attempts returns the session log in chronological order.
func (s *Session) Attempts() ([]model.Attempt, error) {
	return s.store.ListAttempts()
}

// ExportJSON serializes the session log as an indented JSON array, the
// payload for the session.json download.
func (s *Session) ExportJSON() ([]byte, error) {
	attempts, err := s.store.ListAttempts()
	if err != nil {
		return nil, err
	}
	if attempts == nil {
		attempts = []model.Attempt{}
	}
	return json.MarshalIndent(attempts, "", "  ")
}
