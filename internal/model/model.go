package model

import "time"

// QuestionType represents the category of an interview question.
type QuestionType string

const (
	TypeBehavioral  QuestionType = "behavioral"
	TypeSituational QuestionType = "situational"
	TypeTechnical   QuestionType = "technical"
)

// QuestionTypes lists all categories in display order. Every QuestionPool
// carries exactly these keys.
var QuestionTypes = []QuestionType{TypeBehavioral, TypeSituational, TypeTechnical}

// Difficulty represents question difficulty level.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// DefaultQuestion is substituted whenever a bank lookup finds nothing.
const DefaultQuestion = "Tell me about a time you handled a difficult challenge."

// Scores holds the sub-scores and final score for one answer. Percentage
// fields are 0-100 with one decimal place; FillerPenalty is the magnitude
// subtracted from the base score before scaling.
type Scores struct {
	Relevance     float64 `json:"relevance"`
	Structure     float64 `json:"structure"`
	Conciseness   float64 `json:"conciseness"`
	Readability   float64 `json:"readability"`
	TokensEst     int     `json:"tokens_est"`
	Final         float64 `json:"final"`
	FillerPenalty float64 `json:"filler_penalty"`
}

// Attempt is an immutable record of one scoring event. Created once per
// evaluation, appended to the session log, never mutated.
type Attempt struct {
	ID           string       `json:"id"`
	CreatedAt    time.Time    `json:"created_at"`
	Role         string       `json:"role"`
	QuestionType QuestionType `json:"qtype"`
	Difficulty   Difficulty   `json:"difficulty"`
	Question     string       `json:"question"`
	Answer       string       `json:"answer"`
	DurationSec  int          `json:"duration_sec"`
	Scores       Scores       `json:"scores"`
	Outline      string       `json:"feedback"`
	LLMFeedback  string       `json:"llm_feedback,omitempty"`
}

// QuestionPool maps each question category to its generated questions.
// All three categories are always present, even when empty.
type QuestionPool map[QuestionType][]string

// NewQuestionPool returns a pool with every category initialized to an
// empty slice so JSON output always shows all three keys.
func NewQuestionPool() QuestionPool {
	pool := make(QuestionPool, len(QuestionTypes))
	for _, qt := range QuestionTypes {
		pool[qt] = []string{}
	}
	return pool
}
