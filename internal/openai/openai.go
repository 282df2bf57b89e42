package openai

import (
	"context"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/lehigh-university-libraries/askimage/internal/providers"
	"github.com/lehigh-university-libraries/askimage/internal/qa"
)

const DefaultModel = "gpt-4o"

// OpenAI answers questions with an OpenAI chat model
type OpenAI struct {
	baseURL string
}

// New returns a new OpenAI backend. An empty baseURL uses the public API.
func New(baseURL string) *OpenAI {
	return &OpenAI{baseURL: baseURL}
}

func (o *OpenAI) Name() string { return "openai" }

// Answer asks the chat model to answer from the supplied context
func (o *OpenAI) Answer(ctx context.Context, req qa.Request) (qa.Answer, error) {
	model := req.Model
	if model == "" {
		model = DefaultModel
	}

	cfg := goopenai.DefaultConfig(req.Credential)
	if o.baseURL != "" {
		cfg.BaseURL = o.baseURL
	}
	client := goopenai.NewClientWithConfig(cfg)

	config := providers.QAConfig(model, req.Question, req.Context)
	resp, err := client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: config.Model,
		Messages: []goopenai.ChatCompletionMessage{
			{
				Role:    goopenai.ChatMessageRoleUser,
				Content: config.Prompt,
			},
		},
		Temperature: float32(config.Temperature),
	})
	if err != nil {
		return qa.Answer{}, fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return qa.Answer{}, fmt.Errorf("no choices returned from OpenAI")
	}

	text := providers.CleanAnswer(resp.Choices[0].Message.Content)
	start, end := providers.Span(req.Context, text)
	return qa.Answer{Text: text, Start: start, End: end}, nil
}
