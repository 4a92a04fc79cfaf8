// Package handler exposes the scoring and extraction pipelines over a JSON
// HTTP API. The presentation layer is an external caller: it invokes these
// endpoints and renders the returned structures.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mkarpov/interview-coach/internal/fetch"
	"github.com/mkarpov/interview-coach/internal/keywords"
	"github.com/mkarpov/interview-coach/internal/model"
	"github.com/mkarpov/interview-coach/internal/questions"
	"github.com/mkarpov/interview-coach/internal/session"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	session *session.Session
	bank    *questions.Bank

	// fetchText is swappable for tests; defaults to fetch.Text.
	fetchText func(ctx context.Context, url string) (string, error)
}

// New creates a new Handler.
func New(s *session.Session, bank *questions.Bank) *Handler {
	return &Handler{
		session: s,
		bank:    bank,
		fetchText: func(ctx context.Context, url string) (string, error) {
			return fetch.Text(ctx, url, nil)
		},
	}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/question", h.handleQuestion)
	r.Post("/evaluate", h.handleEvaluate)
	r.Post("/keywords", h.handleKeywords)
	r.Post("/questions", h.handleGenerateQuestions)
	r.Post("/timer/start", h.handleTimerStart)
	r.Get("/export", h.handleExport)
}

func (h *Handler) handleQuestion(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	role := q.Get("role")
	qtype := model.QuestionType(q.Get("type"))
	difficulty := model.Difficulty(q.Get("difficulty"))
	if difficulty == "" {
		difficulty = model.DifficultyMedium
	}

	question, found := h.bank.Pick(role, qtype, difficulty)
	source := "bank"
	if !found {
		source = "default"
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"question": question,
		"source":   source,
	})
}

type evaluateRequest struct {
	Role        string `json:"role"`
	Type        string `json:"type"`
	Difficulty  string `json:"difficulty"`
	Question    string `json:"question"`
	Answer      string `json:"answer"`
	DurationSec *int   `json:"duration_sec"`
}

func (h *Handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	// Absent duration falls back to the session timer.
	duration := -1
	if req.DurationSec != nil && *req.DurationSec >= 0 {
		duration = *req.DurationSec
	}

	attempt, err := h.session.Evaluate(r.Context(), session.EvaluateRequest{
		Role:         req.Role,
		QuestionType: model.QuestionType(req.Type),
		Difficulty:   model.Difficulty(req.Difficulty),
		Question:     req.Question,
		Answer:       req.Answer,
		DurationSec:  duration,
	})
	if err != nil {
		slog.Error("evaluate failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not record attempt")
		return
	}
	writeJSON(w, http.StatusOK, attempt)
}

type extractRequest struct {
	Text string `json:"text"`
	URL  string `json:"url"`
	K    int    `json:"k"`
}

// rawText resolves the request's job-spec text: pasted text wins, otherwise
// the URL is fetched. An empty result always comes with an error.
func (h *Handler) rawText(ctx context.Context, req extractRequest) (string, error) {
	if req.Text != "" {
		return req.Text, nil
	}
	if req.URL == "" {
		return "", errors.New("either text or url is required")
	}
	text, err := h.fetchText(ctx, req.URL)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", fmt.Errorf("no content extracted from %s", req.URL)
	}
	return text, nil
}

func (h *Handler) handleKeywords(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	raw, err := h.rawText(r.Context(), req)
	if err != nil {
		h.extractionError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"keywords": keywords.Extract(raw, req.K),
	})
}

func (h *Handler) handleGenerateQuestions(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	raw, err := h.rawText(r.Context(), req)
	if err != nil {
		h.extractionError(w, req, err)
		return
	}
	kws := keywords.Extract(raw, req.K)
	writeJSON(w, http.StatusOK, map[string]any{
		"keywords":  kws,
		"questions": questions.Generate(kws),
	})
}

// extractionError distinguishes a bad request (nothing to extract from) from
// a failed document retrieval, so the caller can branch on the failure mode.
func (h *Handler) extractionError(w http.ResponseWriter, req extractRequest, err error) {
	var fe *fetch.Error
	if errors.As(err, &fe) {
		slog.Warn("job spec retrieval failed", "url", req.URL, "error", err)
		writeError(w, http.StatusUnprocessableEntity, "could not extract job spec: "+fe.Message)
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

func (h *Handler) handleTimerStart(w http.ResponseWriter, r *http.Request) {
	started := h.session.StartTimer()
	writeJSON(w, http.StatusOK, map[string]any{"started_at": started})
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := h.session.ExportJSON()
	if err != nil {
		slog.Error("export failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not export session")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", session.ExportFilename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
