// Package keywords turns raw job-description text into a ranked list of
// topical keywords. The pipeline is heuristic and deterministic: clean,
// tokenize, filter, form bigrams, score candidates, select, dedupe. It never
// returns an empty list and never errors.
package keywords

import (
	"regexp"
	"sort"
	"strings"
)

// DefaultK is the keyword count returned when the caller does not ask for one.
const DefaultK = 8

// SentinelKeyword is returned when no candidate survives the pipeline, so the
// question generator always has at least one keyword to expand.
const SentinelKeyword = "professional experience"

// bigramCandidateCap bounds how many bigram candidates are considered before
// unigrams are mixed in.
const bigramCandidateCap = 20

// minTokenLen drops short noise tokens unless whitelisted.
const minTokenLen = 3

// Tokens start with a letter and may continue with letters, digits, hyphen,
// plus, or slash, preserving compounds like "ci/cd" and "b2b".
var tokenRe = regexp.MustCompile(`[a-z][a-z0-9+/-]*`)

// transitionRe strips common job-ad filler transitions before tokenizing.
var transitionRe = regexp.MustCompile(`(?i)\b(?:you will|we will|you'll)\b`)

var spaceRe = regexp.MustCompile(`[ \t]+`)

// shortWhitelist exempts domain acronyms from the minimum-length filter and
// doubles their unigram score.
var shortWhitelist = map[string]bool{
	"ai": true, "api": true, "b2b": true, "b2c": true, "bi": true,
	"cd": true, "ci": true, "crm": true, "etl": true, "gtm": true,
	"kpi": true, "ml": true, "qa": true, "sem": true, "seo": true,
	"sql": true, "sre": true, "ux": true,
}

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "this": true,
	"that": true, "your": true, "you": true, "are": true, "can": true,
	"our": true, "etc": true, "have": true, "has": true, "will": true,
	"from": true, "not": true, "but": true, "all": true, "any": true,
	"who": true, "what": true, "when": true, "where": true, "how": true,
	"their": true, "they": true, "them": true, "were": true, "was": true,
	"been": true, "being": true, "into": true, "about": true, "than": true,
	"more": true, "most": true, "other": true, "some": true, "such": true,
	"also": true, "both": true, "each": true, "per": true, "via": true,
	"within": true, "across": true, "including": true, "able": true,
	"strong": true, "work": true, "working": true, "years": true,
	"experience": true, "skills": true, "role": true, "team": true,
}

// preferenceTerms up-weight bigrams carrying business or technical substance.
// A substring match against either part doubles the bigram score.
var preferenceTerms = []string{
	"stakeholder", "roadmap", "retention", "onboarding", "pipeline",
	"forecast", "segmentation", "experiment", "activation", "churn",
	"governance", "migration", "latency", "reliability", "compliance",
	"discovery", "positioning", "pricing",
}

// Extract returns up to k distinct keywords ranked by weighted frequency.
// k <= 0 selects DefaultK. The result is never empty: if nothing survives,
// it contains SentinelKeyword alone.
func Extract(raw string, k int) []string {
	if k <= 0 {
		k = DefaultK
	}

	tokens := tokenize(Clean(raw))

	uniCounts := make(map[string]int)
	uniFirst := make(map[string]int)
	for i, tok := range tokens {
		uniCounts[tok]++
		if _, seen := uniFirst[tok]; !seen {
			uniFirst[tok] = i
		}
	}
	for tok := range uniCounts {
		switch {
		case shortWhitelist[tok]:
			uniCounts[tok] *= 2
		case stopWords[tok]:
			uniCounts[tok] = 0
		}
	}

	biCounts := make(map[string]int)
	biFirst := make(map[string]int)
	for i := 0; i+1 < len(tokens); i++ {
		// Degenerate pairs of a repeated token carry no phrase signal.
		if tokens[i] == tokens[i+1] {
			continue
		}
		bg := tokens[i] + " " + tokens[i+1]
		biCounts[bg]++
		if _, seen := biFirst[bg]; !seen {
			biFirst[bg] = i
		}
	}
	for bg := range biCounts {
		if hasPreferenceTerm(bg) {
			biCounts[bg] *= 2
		}
	}

	bigrams := topCandidates(biCounts, biFirst, bigramCandidateCap)

	consumed := make(map[string]bool)
	for _, bg := range bigrams {
		for _, part := range strings.Split(bg, " ") {
			consumed[part] = true
		}
	}

	acronymScores := make(map[string]int)
	for tok, n := range uniCounts {
		if shortWhitelist[tok] && n > 0 {
			acronymScores[tok] = n
		}
	}
	acronyms := topCandidates(acronymScores, uniFirst, len(acronymScores))

	unigramScores := make(map[string]int)
	for tok, n := range uniCounts {
		if n > 1 && !stopWords[tok] && !consumed[tok] && !shortWhitelist[tok] {
			unigramScores[tok] = n
		}
	}
	unigrams := topCandidates(unigramScores, uniFirst, len(unigramScores))

	var out []string
	seen := make(map[string]bool)
	for _, candidate := range concat(bigrams, acronyms, unigrams) {
		if seen[candidate] || hasStopWordPart(candidate) {
			continue
		}
		seen[candidate] = true
		out = append(out, candidate)
		if len(out) == k {
			break
		}
	}

	if len(out) == 0 {
		return []string{SentinelKeyword}
	}
	return out
}

// Clean strips filler transition phrases and collapses runs of horizontal
// whitespace. Exposed so callers can pre-clean text they log or echo back.
func Clean(raw string) string {
	cleaned := transitionRe.ReplaceAllString(raw, " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(cleaned, " "))
}

func tokenize(text string) []string {
	all := tokenRe.FindAllString(strings.ToLower(text), -1)
	filtered := all[:0]
	for _, tok := range all {
		if len(tok) >= minTokenLen || shortWhitelist[tok] {
			filtered = append(filtered, tok)
		}
	}
	return filtered
}

func hasPreferenceTerm(bigram string) bool {
	for _, term := range preferenceTerms {
		if strings.Contains(bigram, term) {
			return true
		}
	}
	return false
}

func hasStopWordPart(phrase string) bool {
	for _, part := range strings.Split(phrase, " ") {
		if stopWords[part] && !shortWhitelist[part] {
			return true
		}
	}
	return false
}

// topCandidates returns candidates with score > 1 ordered by score descending,
// breaking ties by first appearance in the text so output is deterministic.
func topCandidates(scores map[string]int, first map[string]int, limit int) []string {
	var cands []string
	for c, n := range scores {
		if n > 1 {
			cands = append(cands, c)
		}
	}
	sort.Slice(cands, func(i, j int) bool {
		if scores[cands[i]] != scores[cands[j]] {
			return scores[cands[i]] > scores[cands[j]]
		}
		return first[cands[i]] < first[cands[j]]
	})
	if len(cands) > limit {
		cands = cands[:limit]
	}
	return cands
}

func concat(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
