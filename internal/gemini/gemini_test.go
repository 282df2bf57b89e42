package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/generative-ai-go/genai"

	"github.com/lehigh-university-libraries/askimage/internal/providers"
	"github.com/lehigh-university-libraries/askimage/internal/qa"
)

func reply(parts ...genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts}}},
	}
}

func TestAnswer(t *testing.T) {
	tests := []struct {
		name    string
		resp    *genai.GenerateContentResponse
		genErr  error
		want    qa.Answer
		wantErr string
	}{
		{
			name: "verbatim span",
			resp: reply(genai.Text("Answer: WORLD")),
			want: qa.Answer{Text: "WORLD", Start: 6, End: 11},
		},
		{
			name: "no answer sentinel",
			resp: reply(genai.Text("NO ANSWER.")),
			want: qa.Answer{Text: "", Start: -1, End: -1},
		},
		{
			name:    "no candidates",
			resp:    &genai.GenerateContentResponse{},
			wantErr: "no candidates",
		},
		{
			name:    "nil content",
			resp:    &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}},
			wantErr: "empty content",
		},
		{
			name:    "empty parts",
			resp:    reply(),
			wantErr: "empty content",
		},
		{
			name:    "non-text part",
			resp:    reply(genai.Blob{MIMEType: "image/png", Data: []byte("x")}),
			wantErr: "unexpected response format",
		},
		{
			name:    "transport error",
			genErr:  errors.New("failed to generate content: quota"),
			wantErr: "quota",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got providers.Config
			var gotCredential string
			g := &Gemini{generate: func(ctx context.Context, credential string, config providers.Config) (*genai.GenerateContentResponse, error) {
				gotCredential = credential
				got = config
				return tt.resp, tt.genErr
			}}

			answer, err := g.Answer(context.Background(), qa.Request{
				Question:   "What is it?",
				Context:    "HELLO WORLD",
				Credential: "key",
			})
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if answer != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, answer)
			}
			if got.Model != DefaultModel || gotCredential != "key" {
				t.Errorf("Expected default model and credential, got %q %q", got.Model, gotCredential)
			}
			if !strings.Contains(got.Prompt, "HELLO WORLD") || !strings.Contains(got.Prompt, "What is it?") {
				t.Errorf("Expected context and question in prompt, got %q", got.Prompt)
			}
		})
	}
}
