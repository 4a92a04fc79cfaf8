package scoring

import (
	"math"
	"strings"
)

// Readability grade bands. Grades 7-11 are the target for spoken interview
// answers; the values are empirical and kept as named constants.
const (
	// DefaultReadability is used when a grade cannot be computed at all.
	DefaultReadability = 0.6

	// GradeTargetLow and GradeTargetHigh bound the full-credit grade band.
	GradeTargetLow  = 7.0
	GradeTargetHigh = 11.0
	// GradeDecaySpan is the grade range above the band over which the score decays.
	GradeDecaySpan = 10.0
	// GradeLowFloor and GradeHighFloor floor the below- and above-band scores.
	GradeLowFloor  = 0.6
	GradeHighFloor = 0.3
	// DegenerateGradeScore is used for texts that grade at or below zero.
	DegenerateGradeScore = 0.5
)

// readability maps a Flesch-Kincaid grade estimate onto [0,1]. Texts with no
// countable words fall back to DefaultReadability.
func readability(answer string) float64 {
	grade, ok := fleschKincaidGrade(answer)
	if !ok {
		return DefaultReadability
	}
	switch {
	case grade <= 0:
		return DegenerateGradeScore
	case grade >= GradeTargetLow && grade <= GradeTargetHigh:
		return 1.0
	case grade < GradeTargetLow:
		return math.Max(GradeLowFloor, grade/GradeTargetLow)
	default:
		return math.Max(GradeHighFloor, 1.0-(grade-GradeTargetHigh)/GradeDecaySpan)
	}
}

// fleschKincaidGrade computes the standard grade-level readability formula
// over sentence, word, and syllable counts. ok is false when the text has no
// words to count.
func fleschKincaidGrade(text string) (grade float64, ok bool) {
	words := wordRe.FindAllString(text, -1)
	if len(words) == 0 {
		return 0, false
	}
	sentences := countSentences(text)
	syllables := 0
	for _, w := range words {
		syllables += countSyllables(w)
	}
	grade = 0.39*(float64(len(words))/float64(sentences)) +
		11.8*(float64(syllables)/float64(len(words))) - 15.59
	return grade, true
}

// countSentences counts terminator runs ([.!?]+); a text without terminators
// counts as one sentence.
func countSentences(text string) int {
	n := 0
	inRun := false
	for _, r := range text {
		switch r {
		case '.', '!', '?':
			if !inRun {
				n++
				inRun = true
			}
		default:
			inRun = false
		}
	}
	if n == 0 {
		return 1
	}
	return n
}

// countSyllables estimates syllables as vowel groups, with the usual silent-e
// correction. A word always counts at least one syllable.
func countSyllables(word string) int {
	w := strings.ToLower(word)
	count := 0
	prevVowel := false
	for _, r := range w {
		v := isVowel(r)
		if v && !prevVowel {
			count++
		}
		prevVowel = v
	}
	if count > 1 && strings.HasSuffix(w, "e") && !strings.HasSuffix(w, "le") {
		count--
	}
	if count < 1 {
		count = 1
	}
	return count
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}
