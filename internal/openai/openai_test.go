package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/askimage/internal/qa"
)

func TestAnswer(t *testing.T) {
	var gotAuth, gotModel, gotPrompt string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		gotAuth = r.Header.Get("Authorization")
		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		gotModel = body.Model
		if len(body.Messages) > 0 {
			gotPrompt = body.Messages[0].Content
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Answer: HELLO WORLD"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	answer, err := New(server.URL).Answer(context.Background(), qa.Request{
		Question:   "What does the text say?",
		Context:    "HELLO WORLD",
		Credential: "sk-test",
	})
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if answer.Text != "HELLO WORLD" {
		t.Errorf("Expected HELLO WORLD, got %q", answer.Text)
	}
	if answer.Start != 0 || answer.End != 11 {
		t.Errorf("Expected span 0-11, got %d-%d", answer.Start, answer.End)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("Unexpected auth header %q", gotAuth)
	}
	if gotModel != DefaultModel {
		t.Errorf("Expected default model, got %s", gotModel)
	}
	if !strings.Contains(gotPrompt, "HELLO WORLD") {
		t.Errorf("Expected context in prompt")
	}
}

func TestAnswerAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	_, err := New(server.URL).Answer(context.Background(), qa.Request{Question: "q", Context: "c", Credential: "bad"})
	if err == nil || !strings.Contains(err.Error(), "Incorrect API key") {
		t.Fatalf("Expected API error, got %v", err)
	}
}
