// Package questions expands keywords into templated interview questions and
// serves questions from a static bank.
package questions

import (
	"fmt"

	"github.com/mkarpov/interview-coach/internal/model"
)

// MaxPerCategory caps the generated questions per category.
const MaxPerCategory = 12

// Template sets per category. Keyword i uses template i mod len(set), so a
// long keyword list still produces varied phrasing.
var templates = map[model.QuestionType][]string{
	model.TypeBehavioral: {
		"Tell me about a time you worked with %s.",
		"Describe a situation where %s made the difference.",
		"Share an example of how you improved %s.",
	},
	model.TypeSituational: {
		"How would you handle challenges involving %s?",
		"What would you do if %s became a blocker for your team?",
		"How would you prioritize when %s is at stake?",
	},
	model.TypeTechnical: {
		"Explain your approach to %s.",
		"What trade-offs do you weigh when working on %s?",
		"How do you measure success for %s?",
	},
}

// Generate expands each keyword into one question per category, deduplicated
// per category in order and truncated to MaxPerCategory. All three category
// keys are always present.
func Generate(kws []string) model.QuestionPool {
	pool := model.NewQuestionPool()
	for _, qt := range model.QuestionTypes {
		set := templates[qt]
		seen := make(map[string]bool)
		for i, kw := range kws {
			q := fmt.Sprintf(set[i%len(set)], kw)
			if seen[q] {
				continue
			}
			seen[q] = true
			pool[qt] = append(pool[qt], q)
			if len(pool[qt]) == MaxPerCategory {
				break
			}
		}
	}
	return pool
}
