package questions

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mkarpov/interview-coach/internal/model"
)

// Bank is the static question bank: role -> question type -> difficulty ->
// ordered question list. Loaded once at startup; an absent or malformed file
// degrades to an empty bank and every lookup falls back to the default
// question.
type Bank struct {
	roles map[string]map[model.QuestionType]map[model.Difficulty][]string
}

// LoadBank reads a YAML question bank from path. A missing or malformed file
// is not an error: it logs a warning and returns an empty bank.
func LoadBank(path string) *Bank {
	b := &Bank{roles: make(map[string]map[model.QuestionType]map[model.Difficulty][]string)}

	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("question bank unavailable, using default question only", "path", path, "error", err)
		return b
	}
	if err := yaml.Unmarshal(data, &b.roles); err != nil {
		slog.Warn("question bank malformed, using default question only", "path", path, "error", err)
		b.roles = make(map[string]map[model.QuestionType]map[model.Difficulty][]string)
		return b
	}

	slog.Info("loaded question bank", "path", path, "roles", len(b.roles))
	return b
}

// Roles returns the role names present in the bank.
func (b *Bank) Roles() []string {
	roles := make([]string, 0, len(b.roles))
	for r := range b.roles {
		roles = append(roles, r)
	}
	return roles
}

// Questions returns the question list for a lookup, or an explicit not-found.
func (b *Bank) Questions(role string, qtype model.QuestionType, difficulty model.Difficulty) ([]string, bool) {
	byType, ok := b.roles[role]
	if !ok {
		return nil, false
	}
	byDifficulty, ok := byType[qtype]
	if !ok {
		return nil, false
	}
	qs, ok := byDifficulty[difficulty]
	if !ok || len(qs) == 0 {
		return nil, false
	}
	return qs, true
}

// Pick returns a random question for the lookup. found reports whether the
// bank had one; when false the default question is returned instead.
func (b *Bank) Pick(role string, qtype model.QuestionType, difficulty model.Difficulty) (question string, found bool) {
	qs, ok := b.Questions(role, qtype, difficulty)
	if !ok {
		return model.DefaultQuestion, false
	}
	return qs[rand.IntN(len(qs))], true
}

// Validate reports lookups that would fall back, for startup diagnostics.
func (b *Bank) Validate() error {
	if len(b.roles) == 0 {
		return fmt.Errorf("question bank is empty")
	}
	return nil
}
