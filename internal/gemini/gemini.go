package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/lehigh-university-libraries/askimage/internal/providers"
	"github.com/lehigh-university-libraries/askimage/internal/qa"
)

const DefaultModel = "gemini-1.5-flash"

// generateFunc sends one prompt to a Gemini model.
type generateFunc func(ctx context.Context, credential string, config providers.Config) (*genai.GenerateContentResponse, error)

// Gemini answers questions with Google Gemini
type Gemini struct {
	generate generateFunc
}

// New returns a new Gemini backend
func New() *Gemini {
	return &Gemini{generate: generateContent}
}

func (g *Gemini) Name() string { return "gemini" }

// Answer asks Gemini to answer from the supplied context
func (g *Gemini) Answer(ctx context.Context, req qa.Request) (qa.Answer, error) {
	modelName := req.Model
	if modelName == "" {
		modelName = DefaultModel
	}

	config := providers.QAConfig(modelName, req.Question, req.Context)
	resp, err := g.generate(ctx, req.Credential, config)
	if err != nil {
		return qa.Answer{}, err
	}
	return answerFromResponse(resp, req.Context)
}

func generateContent(ctx context.Context, credential string, config providers.Config) (*genai.GenerateContentResponse, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(credential))
	if err != nil {
		return nil, fmt.Errorf("failed to create new gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(config.Model)
	model.SetTemperature(float32(config.Temperature))

	resp, err := model.GenerateContent(ctx, genai.Text(config.Prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	return resp, nil
}

func answerFromResponse(resp *genai.GenerateContentResponse, context string) (qa.Answer, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return qa.Answer{}, fmt.Errorf("no candidates returned from Gemini")
	}

	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return qa.Answer{}, fmt.Errorf("empty content returned from Gemini")
	}

	txt, ok := candidate.Content.Parts[0].(genai.Text)
	if !ok {
		return qa.Answer{}, fmt.Errorf("unexpected response format from Gemini")
	}

	text := providers.CleanAnswer(string(txt))
	start, end := providers.Span(context, text)
	return qa.Answer{Text: text, Start: start, End: end}, nil
}
