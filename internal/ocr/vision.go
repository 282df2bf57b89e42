package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/lehigh-university-libraries/askimage/internal/ollama"
)

const DefaultVisionModel = "mistral-small3.2:24b"

// Generator is the subset of a vision LLM client the engine needs.
type Generator interface {
	Generate(ctx context.Context, req ollama.GenerateRequest) (string, error)
}

// VisionEngine performs OCR by asking a vision-capable LLM to transcribe the image.
type VisionEngine struct {
	client Generator
	model  string
}

// NewVisionEngine creates an LLM-vision OCR engine
func NewVisionEngine(client Generator, model string) *VisionEngine {
	if model == "" {
		model = DefaultVisionModel
	}
	return &VisionEngine{client: client, model: model}
}

func (v *VisionEngine) Name() string { return "ollama:" + v.model }

// Recognize transcribes the input image.
func (v *VisionEngine) Recognize(ctx context.Context, in Input) (Result, error) {
	resp, err := v.client.Generate(ctx, ollama.GenerateRequest{
		Model:       v.model,
		Prompt:      buildOCRPrompt(in.Languages),
		Images:      [][]byte{in.Image},
		Temperature: 0.0, // exact transcription
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to call vision model for OCR: %w", err)
	}

	text := strings.TrimSpace(resp)
	if isNoTextReply(text) {
		text = ""
	}
	return Result{Text: text}, nil
}

// isNoTextReply catches the sentinel the prompt asks for when the image is blank.
func isNoTextReply(s string) bool {
	return strings.EqualFold(strings.Trim(s, " .\"'`"), "NO TEXT")
}

func buildOCRPrompt(languages []string) string {
	langHint := ""
	if len(languages) > 0 {
		langHint = fmt.Sprintf("\nThe text is most likely written in: %s.\n", strings.Join(languages, ", "))
	}

	return `You are performing OCR (Optical Character Recognition) on an image.

Your task is to extract ALL visible text from the image exactly as it appears, preserving:
- Line breaks and formatting
- Capitalization
- Punctuation
- Order of text elements
` + langHint + `
INSTRUCTIONS:
1. Read the image carefully from top to bottom
2. Transcribe every piece of visible text
3. Do not add any interpretation, commentary, or explanations
4. If the image contains no text at all, reply with exactly: NO TEXT

OUTPUT FORMAT:
Provide ONLY the extracted text. Do not include phrases like "Here is the text:" or "The image contains:".`
}
