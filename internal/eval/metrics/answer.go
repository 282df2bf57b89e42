package metrics

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var punctuation = regexp.MustCompile(`[^\p{L}\p{N}\s]`)

var articles = map[string]bool{"a": true, "an": true, "the": true}

// AnswerMatch is how well a predicted answer matches the best reference answer.
type AnswerMatch struct {
	Prediction string  `json:"prediction"`
	Reference  string  `json:"reference"`
	ExactMatch bool    `json:"exact_match"`
	F1         float64 `json:"f1"`
	Similarity float64 `json:"similarity"`
	Method     string  `json:"method"`
	Notes      string  `json:"notes,omitempty"`
}

// ScoreAnswer compares a prediction against every reference and keeps the best F1.
// With no references, an empty prediction is a correct abstention.
func ScoreAnswer(prediction string, references []string) AnswerMatch {
	if len(references) == 0 {
		match := AnswerMatch{Prediction: prediction, Method: "no_reference"}
		if Normalize(prediction) == "" {
			match.ExactMatch = true
			match.F1 = 1.0
			match.Similarity = 1.0
			match.Notes = "Correctly abstained"
		} else {
			match.Notes = "Answered a question with no reference answer"
		}
		return match
	}

	var best AnswerMatch
	for i, ref := range references {
		m := compareAnswer(prediction, ref)
		if i == 0 || m.F1 > best.F1 || (m.F1 == best.F1 && m.Similarity > best.Similarity) {
			best = m
		}
	}
	return best
}

func compareAnswer(prediction, reference string) AnswerMatch {
	match := AnswerMatch{
		Prediction: prediction,
		Reference:  reference,
	}

	predNorm := Normalize(prediction)
	refNorm := Normalize(reference)

	if predNorm == "" && refNorm == "" {
		match.ExactMatch = true
		match.F1 = 1.0
		match.Similarity = 1.0
		match.Method = "exact"
		return match
	}
	if predNorm == "" {
		match.Method = "prediction_missing"
		match.Notes = "No answer was produced"
		return match
	}

	match.F1 = TokenF1(prediction, reference)
	match.Similarity = calculateSimilarity(predNorm, refNorm)

	switch {
	case predNorm == refNorm:
		match.ExactMatch = true
		match.Method = "exact"
	case strings.Contains(predNorm, refNorm) || strings.Contains(refNorm, predNorm):
		match.Method = "substring"
	case match.Similarity > 0.7:
		match.Method = "fuzzy_high"
		match.Notes = fmt.Sprintf("High similarity (%.2f)", match.Similarity)
	case match.Similarity > 0.4:
		match.Method = "fuzzy_medium"
		match.Notes = fmt.Sprintf("Medium similarity (%.2f)", match.Similarity)
	default:
		match.Method = "no_match"
	}

	return match
}

// Normalize lowercases, strips punctuation and articles, and collapses whitespace.
func Normalize(text string) string {
	text = strings.ToLower(text)
	text = punctuation.ReplaceAllString(text, "")

	tokens := strings.Fields(text)
	kept := tokens[:0]
	for _, tok := range tokens {
		if !articles[tok] {
			kept = append(kept, tok)
		}
	}
	return strings.Join(kept, " ")
}

// TokenF1 is the harmonic mean of token precision and recall after normalization.
func TokenF1(prediction, reference string) float64 {
	predTokens := strings.Fields(Normalize(prediction))
	refTokens := strings.Fields(Normalize(reference))

	if len(predTokens) == 0 || len(refTokens) == 0 {
		if len(predTokens) == len(refTokens) {
			return 1.0
		}
		return 0.0
	}

	counts := make(map[string]int, len(refTokens))
	for _, tok := range refTokens {
		counts[tok]++
	}

	common := 0
	for _, tok := range predTokens {
		if counts[tok] > 0 {
			counts[tok]--
			common++
		}
	}
	if common == 0 {
		return 0.0
	}

	precision := float64(common) / float64(len(predTokens))
	recall := float64(common) / float64(len(refTokens))
	return 2 * precision * recall / (precision + recall)
}

// calculateSimilarity calculates similarity ratio (0.0 to 1.0) using Levenshtein distance over runes
func calculateSimilarity(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}

	n1, n2 := utf8.RuneCountInString(s1), utf8.RuneCountInString(s2)
	if n1 == 0 || n2 == 0 {
		return 0.0
	}

	distance := levenshteinDistance(s1, s2)
	return 1.0 - (float64(distance) / float64(max(n1, n2)))
}

// levenshteinDistance calculates the Levenshtein distance between two strings, counted in runes
func levenshteinDistance(s1, s2 string) int {
	r1, r2 := []rune(s1), []rune(s2)
	if len(r1) == 0 {
		return len(r2)
	}
	if len(r2) == 0 {
		return len(r1)
	}

	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(r2)]
}
