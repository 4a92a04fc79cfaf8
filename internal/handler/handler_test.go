package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/mkarpov/interview-coach/internal/fetch"
	"github.com/mkarpov/interview-coach/internal/i18n"
	"github.com/mkarpov/interview-coach/internal/model"
	"github.com/mkarpov/interview-coach/internal/questions"
	"github.com/mkarpov/interview-coach/internal/session"
	"github.com/mkarpov/interview-coach/internal/store"
)

func newTestHandler(t *testing.T, bank *questions.Bank) *Handler {
	t.Helper()
	if err := i18n.Init("en"); err != nil {
		t.Fatalf("i18n.Init: %v", err)
	}
	st, err := store.New(store.MemoryDSN)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	if bank == nil {
		bank = questions.LoadBank("no-such-file.yaml")
	}
	return New(session.New(st, nil), bank)
}

func serve(h *Handler, method, target, body string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.Routes(r)
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHandleQuestionFallsBackToDefault(t *testing.T) {
	h := newTestHandler(t, nil)

	rec := serve(h, http.MethodGet, "/question?role=designer&type=behavioral&difficulty=easy", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	resp := decode[map[string]string](t, rec)
	if resp["question"] != model.DefaultQuestion {
		t.Errorf("question = %q, want default", resp["question"])
	}
	if resp["source"] != "default" {
		t.Errorf("source = %q, want default", resp["source"])
	}
}

func TestHandleEvaluate(t *testing.T) {
	h := newTestHandler(t, nil)

	body := `{
		"role": "software_engineer",
		"type": "behavioral",
		"difficulty": "medium",
		"question": "Tell me about a time you handled a difficult challenge.",
		"answer": "The situation was tense. My task was clear. My action was decisive. The result was positive.",
		"duration_sec": 88
	}`
	rec := serve(h, http.MethodPost, "/evaluate", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	att := decode[model.Attempt](t, rec)
	if att.ID == "" {
		t.Error("attempt ID missing")
	}
	if att.Scores.Structure != 100.0 {
		t.Errorf("structure = %v, want 100.0", att.Scores.Structure)
	}
	if att.DurationSec != 88 {
		t.Errorf("duration = %d, want 88", att.DurationSec)
	}
	if !strings.Contains(att.Outline, "STAR") {
		t.Errorf("outline missing: %q", att.Outline)
	}
}

func TestHandleEvaluateRequiresQuestion(t *testing.T) {
	h := newTestHandler(t, nil)
	rec := serve(h, http.MethodPost, "/evaluate", `{"answer": "something"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleEvaluateBadJSON(t *testing.T) {
	h := newTestHandler(t, nil)
	rec := serve(h, http.MethodPost, "/evaluate", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleKeywordsFromText(t *testing.T) {
	h := newTestHandler(t, nil)

	body := `{"text": "stakeholder management and roadmap planning. stakeholder management and roadmap planning. stakeholder management and roadmap planning.", "k": 3}`
	rec := serve(h, http.MethodPost, "/keywords", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	resp := decode[map[string][]string](t, rec)
	kws := resp["keywords"]
	if len(kws) == 0 || len(kws) > 3 {
		t.Fatalf("keywords = %v, want 1..3 entries", kws)
	}
	if kws[0] != "stakeholder management" {
		t.Errorf("top keyword = %q, want stakeholder management", kws[0])
	}
}

func TestHandleKeywordsFromURL(t *testing.T) {
	h := newTestHandler(t, nil)
	h.fetchText = func(ctx context.Context, url string) (string, error) {
		return "data quality data quality data quality", nil
	}

	rec := serve(h, http.MethodPost, "/keywords", `{"url": "https://jobs.example/1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	resp := decode[map[string][]string](t, rec)
	if len(resp["keywords"]) == 0 {
		t.Error("expected keywords from fetched text")
	}
}

func TestHandleKeywordsFetchFailure(t *testing.T) {
	h := newTestHandler(t, nil)
	h.fetchText = func(ctx context.Context, url string) (string, error) {
		return "", &fetch.Error{URL: url, Message: "HTTP status 404"}
	}

	rec := serve(h, http.MethodPost, "/keywords", `{"url": "https://jobs.example/gone"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	resp := decode[map[string]string](t, rec)
	if !strings.Contains(resp["error"], "could not extract job spec") {
		t.Errorf("error = %q, want extraction failure message", resp["error"])
	}
}

func TestHandleKeywordsRequiresInput(t *testing.T) {
	h := newTestHandler(t, nil)
	rec := serve(h, http.MethodPost, "/keywords", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleGenerateQuestions(t *testing.T) {
	h := newTestHandler(t, nil)

	body := `{"text": "kubernetes deployment kubernetes deployment kubernetes deployment", "k": 4}`
	rec := serve(h, http.MethodPost, "/questions", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Keywords  []string           `json:"keywords"`
		Questions model.QuestionPool `json:"questions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Questions) != 3 {
		t.Errorf("pool has %d categories, want 3", len(resp.Questions))
	}
	for _, qt := range model.QuestionTypes {
		qs, ok := resp.Questions[qt]
		if !ok {
			t.Errorf("missing category %s", qt)
			continue
		}
		if len(qs) != len(resp.Keywords) {
			t.Errorf("category %s: %d questions for %d keywords", qt, len(qs), len(resp.Keywords))
		}
	}
}

func TestTimerAndEvaluateWithoutDuration(t *testing.T) {
	h := newTestHandler(t, nil)

	rec := serve(h, http.MethodPost, "/timer/start", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("timer start status = %d", rec.Code)
	}

	rec = serve(h, http.MethodPost, "/evaluate", `{"question": "q", "answer": "a"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("evaluate status = %d, body %s", rec.Code, rec.Body.String())
	}
	att := decode[model.Attempt](t, rec)
	if att.DurationSec < 0 {
		t.Errorf("duration = %d, want timer-derived non-negative", att.DurationSec)
	}
}

func TestHandleExport(t *testing.T) {
	h := newTestHandler(t, nil)

	// Record one attempt, then export.
	rec := serve(h, http.MethodPost, "/evaluate", `{"question": "q", "answer": "the situation and result"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("evaluate status = %d", rec.Code)
	}

	rec = serve(h, http.MethodGet, "/export", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "session.json") {
		t.Errorf("Content-Disposition = %q, want session.json attachment", cd)
	}

	var attempts []model.Attempt
	if err := json.Unmarshal(rec.Body.Bytes(), &attempts); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if len(attempts) != 1 {
		t.Errorf("exported %d attempts, want 1", len(attempts))
	}
}

func TestHandleQuestionFromBank(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.yaml")
	yaml := "general:\n  behavioral:\n    medium:\n      - Walk me through a recent win.\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write bank: %v", err)
	}
	h := newTestHandler(t, questions.LoadBank(path))

	rec := serve(h, http.MethodGet, "/question?role=general&type=behavioral&difficulty=medium", "")
	resp := decode[map[string]string](t, rec)
	if resp["source"] != "bank" {
		t.Errorf("source = %q, want bank", resp["source"])
	}
	if resp["question"] != "Walk me through a recent win." {
		t.Errorf("question = %q", resp["question"])
	}
}
