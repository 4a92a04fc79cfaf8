package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mkarpov/interview-coach/internal/i18n"
	"github.com/mkarpov/interview-coach/internal/model"
	"github.com/mkarpov/interview-coach/internal/store"
)

type fakeFeedback struct {
	reply string
	calls int
}

func (f *fakeFeedback) Feedback(ctx context.Context, question, answer string) string {
	f.calls++
	return f.reply
}

func newTestSession(t *testing.T, fb Feedbacker) *Session {
	t.Helper()
	if err := i18n.Init("en"); err != nil {
		t.Fatalf("i18n.Init: %v", err)
	}
	st, err := store.New(store.MemoryDSN)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return New(st, fb)
}

func evaluateReq(answer string) EvaluateRequest {
	return EvaluateRequest{
		Role:         "software_engineer",
		QuestionType: model.TypeBehavioral,
		Difficulty:   model.DifficultyMedium,
		Question:     "Tell me about a time you handled a difficult challenge.",
		Answer:       answer,
		DurationSec:  95,
	}
}

func TestEvaluateAppendsAttempt(t *testing.T) {
	s := newTestSession(t, nil)

	att, err := s.Evaluate(context.Background(), evaluateReq("The situation was tense. My task was clear. My action was decisive. The result was positive."))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if att.ID == "" {
		t.Error("attempt ID should be assigned")
	}
	if att.CreatedAt.IsZero() {
		t.Error("attempt CreatedAt should be set")
	}
	if att.Scores.Structure != 100.0 {
		t.Errorf("structure = %v, want 100.0", att.Scores.Structure)
	}
	if att.Outline == "" {
		t.Error("outline should be generated")
	}
	if att.DurationSec != 95 {
		t.Errorf("duration = %d, want 95", att.DurationSec)
	}

	attempts, err := s.Attempts()
	if err != nil {
		t.Fatalf("Attempts: %v", err)
	}
	if len(attempts) != 1 || attempts[0].ID != att.ID {
		t.Errorf("session log = %v, want the one appended attempt", attempts)
	}
}

func TestEvaluateUniqueIDs(t *testing.T) {
	s := newTestSession(t, nil)
	seen := make(map[string]bool)
	for range 5 {
		att, err := s.Evaluate(context.Background(), evaluateReq("some answer"))
		if err != nil {
			t.Fatalf("Evaluate: %v", err)
		}
		if seen[att.ID] {
			t.Fatalf("duplicate attempt ID %q", att.ID)
		}
		seen[att.ID] = true
	}
}

func TestEvaluateWithFeedback(t *testing.T) {
	fb := &fakeFeedback{reply: "- be specific\nOverall: decent."}
	s := newTestSession(t, fb)

	att, err := s.Evaluate(context.Background(), evaluateReq("an answer"))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if fb.calls != 1 {
		t.Errorf("feedback called %d times, want 1", fb.calls)
	}
	if att.LLMFeedback != fb.reply {
		t.Errorf("LLMFeedback = %q, want %q", att.LLMFeedback, fb.reply)
	}
}

func TestTimer(t *testing.T) {
	s := newTestSession(t, nil)

	if got := s.Elapsed(); got != 0 {
		t.Errorf("Elapsed before start = %d, want 0", got)
	}

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	current := base
	s.now = func() time.Time { return current }

	s.StartTimer()
	current = base.Add(42 * time.Second)
	if got := s.Elapsed(); got != 42 {
		t.Errorf("Elapsed = %d, want 42", got)
	}

	// Timer-derived duration is used when the request does not carry one.
	req := evaluateReq("answer")
	req.DurationSec = -1
	att, err := s.Evaluate(context.Background(), req)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if att.DurationSec != 42 {
		t.Errorf("duration = %d, want timer-derived 42", att.DurationSec)
	}
}

func TestExportJSON(t *testing.T) {
	s := newTestSession(t, nil)

	// Empty session exports an empty array, not null.
	data, err := s.ExportJSON()
	if err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	var attempts []model.Attempt
	if err := json.Unmarshal(data, &attempts); err != nil {
		t.Fatalf("unmarshal export: %v", err)
	}
	if attempts == nil || len(attempts) != 0 {
		t.Errorf("empty export = %s, want []", data)
	}

	first, err := s.Evaluate(context.Background(), evaluateReq("first answer"))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	second, err := s.Evaluate(context.Background(), evaluateReq("second answer"))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	data, err = s.ExportJSON()
	if err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	if err := json.Unmarshal(data, &attempts); err != nil {
		t.Fatalf("unmarshal export: %v", err)
	}
	if len(attempts) != 2 || attempts[0].ID != first.ID || attempts[1].ID != second.ID {
		t.Errorf("export order wrong: %v", attempts)
	}
}
