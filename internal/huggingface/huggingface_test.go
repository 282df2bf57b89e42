package huggingface

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
	var gotPath, gotAuth string
	var gotBody struct {
		Inputs questionAnsweringInputs `json:"inputs"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"answer":"HELLO WORLD","score":0.87,"start":0,"end":11}`))
	}))
	defer server.Close()

	answer, err := New(server.URL+"/").Answer(context.Background(), qa.Request{
		Question:   "What does the text say?",
		Context:    "HELLO WORLD",
		Model:      DefaultModel,
		Credential: "hf_secret",
	})
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	if gotPath != "/deepset/roberta-base-squad2" {
		t.Errorf("Unexpected path %s", gotPath)
	}
	if gotAuth != "Bearer hf_secret" {
		t.Errorf("Unexpected auth header %q", gotAuth)
	}
	if gotBody.Inputs.Question != "What does the text say?" || gotBody.Inputs.Context != "HELLO WORLD" {
		t.Errorf("Unexpected inputs %+v", gotBody.Inputs)
	}
	if answer.Text != "HELLO WORLD" || answer.Score != 0.87 || answer.End != 11 {
		t.Errorf("Unexpected answer %+v", answer)
	}
}

func TestAnswerResponses(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected string
		errPart  string
	}{
		{name: "list response", status: 200, body: `[{"answer":"42","score":0.5,"start":3,"end":5}]`, expected: "42"},
		{name: "empty answer is valid", status: 200, body: `{"answer":"","score":0.01,"start":0,"end":0}`, expected: ""},
		{name: "auth rejected", status: 401, body: `{"error":"Invalid credentials in Authorization header"}`, errPart: "401 - Invalid credentials"},
		{name: "model loading", status: 503, body: `{"error":"Model is currently loading"}`, errPart: "currently loading"},
		{name: "malformed json", status: 200, body: `<html>oops</html>`, errPart: "failed to decode"},
		{name: "missing answer field", status: 200, body: `{"score":0.3}`, errPart: "missing answer"},
		{name: "empty list", status: 200, body: `[]`, errPart: "no answers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			answer, err := New(server.URL).Answer(context.Background(), qa.Request{Question: "q", Context: "c", Credential: "t"})
			if tt.errPart != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errPart) {
					t.Fatalf("Expected error containing %q, got %v", tt.errPart, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if answer.Text != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, answer.Text)
			}
		})
	}
}

func TestAnswerTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := New(url).Answer(context.Background(), qa.Request{Question: "q", Context: "c", Credential: "t"})
	if err == nil || !strings.Contains(err.Error(), "failed to send request") {
		t.Fatalf("Expected transport error, got %v", err)
	}
}
