package providers

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Config represents the configuration for a generative LLM call
type Config struct {
	Model       string
	Temperature float64
	Prompt      string
}

// NoAnswer is what generative backends are told to reply when the text does not contain the answer.
const NoAnswer = "NO ANSWER"

// QAConfig builds the prompt for answering a question from extracted text with a
// generative model, constrained to behave like an extractive reader.
func QAConfig(model, question, context string) Config {
	prompt := fmt.Sprintf(`You answer questions about text that was extracted from an image with OCR.

RULES:
1. Answer ONLY from the text between the markers below
2. Prefer copying the shortest span of the text that answers the question
3. Do not explain your answer and do not add any commentary
4. If the text does not contain the answer, reply with exactly: %s

---BEGIN TEXT---
%s
---END TEXT---

Question: %s
Answer:`, NoAnswer, context, strings.TrimSpace(question))

	return Config{
		Model:       model,
		Temperature: 0.0,
		Prompt:      prompt,
	}
}

// CleanAnswer normalises a generative reply, mapping the no-answer sentinel to "".
func CleanAnswer(reply string) string {
	reply = strings.TrimSpace(reply)
	reply = strings.TrimPrefix(reply, "Answer:")
	reply = strings.TrimSpace(reply)
	if strings.EqualFold(strings.Trim(reply, " ."), NoAnswer) {
		return ""
	}
	return reply
}

// Span locates answer inside context and returns rune offsets, or -1 offsets
// when it is not a verbatim span. A case-insensitive match is tried second.
func Span(context, answer string) (int, int) {
	if answer == "" {
		return -1, -1
	}
	n := utf8.RuneCountInString(answer)
	if idx := strings.Index(context, answer); idx >= 0 {
		start := utf8.RuneCountInString(context[:idx])
		return start, start + n
	}

	runes := []rune(context)
	for start := 0; start+n <= len(runes); start++ {
		if strings.EqualFold(string(runes[start:start+n]), answer) {
			return start, start + n
		}
	}
	return -1, -1
}
