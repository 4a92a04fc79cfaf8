// Package scoring implements the heuristic answer scorer: five sub-scores
// combined into a 0-100 final score, plus a STAR coaching outline. All
// functions are pure and deterministic; failure paths degrade to defaults
// instead of returning errors.
package scoring

import (
	"math"
	"regexp"
	"strings"

	"github.com/mkarpov/interview-coach/internal/model"
)

// Tuned scoring constants. The values are empirical and carried over as-is;
// they are named here rather than inlined so deployments can audit them.
const (
	// RelevanceFloor prevents division-by-near-zero inflation on short questions.
	RelevanceFloor = 5.0
	// RelevanceFraction scales the question vocabulary size in the relevance denominator.
	RelevanceFraction = 0.6

	// ConciseMinWords and ConciseMaxWords bound the full-credit word-count band.
	ConciseMinWords = 150
	ConciseMaxWords = 300
	// ConciseDecaySpan is the word count past the band over which the score decays to zero.
	ConciseDecaySpan = 400

	// TokensPerWord approximates LLM tokens per word for display purposes.
	TokensPerWord = 1.33

	// MaxFillerPenalty caps the filler deduction.
	MaxFillerPenalty = 0.2
	// FillerRateScale converts filler rate (fillers per word) into a penalty.
	FillerRateScale = 20.0

	weightRelevance   = 0.3
	weightStructure   = 0.3
	weightConciseness = 0.2
	weightReadability = 0.2
)

var wordRe = regexp.MustCompile(`\b\w+\b`)

// fillerPhrases are verbal tics counted case-insensitively as whole
// words/phrases. Frequency relative to answer length drives the penalty.
var fillerPhrases = []string{
	"um", "uh", "like", "you know", "sort of", "kind of",
	"basically", "actually", "literally", "i guess",
}

var fillerRes = compileFillers()

func compileFillers() []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(fillerPhrases))
	for _, p := range fillerPhrases {
		res = append(res, regexp.MustCompile(`\b`+regexp.QuoteMeta(p)+`\b`))
	}
	return res
}

// starElement associates one narrative element with its trigger keywords and
// its weight in the structure score. Action and result weigh highest: they
// carry the most interview signal.
type starElement struct {
	name     string
	keywords []string
	weight   float64
}

var starElements = []starElement{
	{"situation", []string{"situation", "background", "context"}, 0.20},
	{"task", []string{"task", "goal", "objective", "responsibility"}, 0.25},
	{"action", []string{"action", "approach", "what i did", "how i did"}, 0.30},
	{"result", []string{"result", "outcome", "impact", "metric", "learned"}, 0.25},
}

// Score computes all sub-scores for an answer to a question and combines
// them into the final 0-100 score.
func Score(question, answer string) model.Scores {
	rel := relevance(question, answer)
	stru := structure(answer)
	conc := conciseness(answer)
	read := readability(answer)
	pen := fillerPenalty(answer)

	base := weightRelevance*rel + weightStructure*stru + weightConciseness*conc + weightReadability*read
	base = clamp01(base - pen)

	return model.Scores{
		Relevance:     round1(rel * 100),
		Structure:     round1(stru * 100),
		Conciseness:   round1(conc * 100),
		Readability:   round1(read * 100),
		TokensEst:     TokenEstimate(answer),
		Final:         round1(base * 100),
		FillerPenalty: round1(pen * 100),
	}
}

// TokenEstimate approximates the LLM token count of a text. Display only,
// never used in scoring.
func TokenEstimate(text string) int {
	return int(float64(countWords(text)) * TokensPerWord)
}

func countWords(text string) int {
	return len(wordRe.FindAllStringIndex(text, -1))
}

func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range wordRe.FindAllString(strings.ToLower(text), -1) {
		set[w] = struct{}{}
	}
	return set
}

// relevance rewards answers that reuse question vocabulary: the overlap of
// lowercase word sets over max(RelevanceFloor, RelevanceFraction*|question|).
func relevance(question, answer string) float64 {
	qt := tokenSet(question)
	if len(qt) == 0 {
		return 0.0
	}
	at := tokenSet(answer)
	overlap := 0
	for w := range qt {
		if _, ok := at[w]; ok {
			overlap++
		}
	}
	return math.Min(1.0, float64(overlap)/math.Max(RelevanceFloor, RelevanceFraction*float64(len(qt))))
}

// starCoverage reports, per STAR element, whether any of its keywords occurs
// as a case-insensitive substring of the answer.
func starCoverage(answer string) map[string]bool {
	t := strings.ToLower(answer)
	cov := make(map[string]bool, len(starElements))
	for _, el := range starElements {
		found := false
		for _, kw := range el.keywords {
			if strings.Contains(t, kw) {
				found = true
				break
			}
		}
		cov[el.name] = found
	}
	return cov
}

// structure is the weighted STAR completeness: each element contributes its
// full weight when present and nothing when absent.
func structure(answer string) float64 {
	cov := starCoverage(answer)
	score := 0.0
	for _, el := range starElements {
		if cov[el.name] {
			score += el.weight
		}
	}
	return score
}

// conciseness scores the answer's word count against the spoken-answer sweet
// spot: full credit inside [ConciseMinWords, ConciseMaxWords], linear ramp
// below, linear decay above.
func conciseness(answer string) float64 {
	words := countWords(answer)
	switch {
	case words == 0:
		return 0.0
	case words >= ConciseMinWords && words <= ConciseMaxWords:
		return 1.0
	case words < ConciseMinWords:
		return math.Max(0.0, float64(words)/ConciseMinWords)
	default:
		return math.Max(0.0, 1.0-float64(words-ConciseMaxWords)/ConciseDecaySpan)
	}
}

func countFillers(answer string) int {
	t := strings.ToLower(answer)
	n := 0
	for _, re := range fillerRes {
		n += len(re.FindAllStringIndex(t, -1))
	}
	return n
}

// fillerPenalty converts the filler rate into a deduction, capped at
// MaxFillerPenalty. Subtracted from the base score, not blended.
func fillerPenalty(answer string) float64 {
	words := countWords(answer)
	if words == 0 {
		return 0.0
	}
	rate := float64(countFillers(answer)) / float64(words)
	return math.Min(MaxFillerPenalty, rate*FillerRateScale)
}

func clamp01(x float64) float64 {
	return math.Max(0.0, math.Min(1.0, x))
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
