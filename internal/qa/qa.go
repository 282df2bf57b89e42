// Package qa answers questions against extracted text using a hosted model.
package qa

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const DefaultTimeout = 30 * time.Second

var (
	// ErrMissingCredential means no API token is configured. Callers are expected to
	// check HasCredential before ever reaching Ask.
	ErrMissingCredential = errors.New("API token not configured")
	// ErrEmptyQuestion means the question was blank.
	ErrEmptyQuestion = errors.New("question is empty")
	// ErrEmptyContext means there is no extracted text to answer from. No remote call is made.
	ErrEmptyContext = errors.New("no text was extracted from the image, so there is nothing to answer from")
)

// RemoteCallFailure wraps transport, auth, timeout and malformed-response errors.
type RemoteCallFailure struct {
	Backend string
	Err     error
}

func (f *RemoteCallFailure) Error() string {
	return fmt.Sprintf("%s: %v", f.Backend, f.Err)
}

func (f *RemoteCallFailure) Unwrap() error { return f.Err }

// Request is what a backend receives for one question.
type Request struct {
	Question   string
	Context    string
	Model      string
	Credential string
}

// Answer is a backend's reply. Start and End are rune offsets into the
// context when the backend is extractive; Score is zero when not reported.
type Answer struct {
	Text  string  `json:"answer"`
	Score float64 `json:"score,omitempty"`
	Start int     `json:"start,omitempty"`
	End   int     `json:"end,omitempty"`
}

// Backend is a hosted question-answering model.
type Backend interface {
	Name() string
	Answer(ctx context.Context, req Request) (Answer, error)
}

// Client guards a backend with the credential, input and timeout rules.
type Client struct {
	backend    Backend
	model      string
	credential string
	timeout    time.Duration
}

// NewClient creates a QA client. A non-positive timeout uses DefaultTimeout.
func NewClient(backend Backend, model, credential string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		backend:    backend,
		model:      model,
		credential: credential,
		timeout:    timeout,
	}
}

// HasCredential reports whether an API token is configured.
func (c *Client) HasCredential() bool {
	return c.credential != ""
}

// BackendName reports the configured backend.
func (c *Client) BackendName() string {
	return c.backend.Name()
}

// Model reports the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// Ask makes a single attempt to answer question from the extracted text.
func (c *Client) Ask(ctx context.Context, question, extracted string) (Answer, error) {
	if !c.HasCredential() {
		return Answer{}, ErrMissingCredential
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return Answer{}, ErrEmptyQuestion
	}
	if strings.TrimSpace(extracted) == "" {
		return Answer{}, ErrEmptyContext
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	answer, err := c.backend.Answer(callCtx, Request{
		Question:   question,
		Context:    extracted,
		Model:      c.model,
		Credential: c.credential,
	})
	if err == nil && callCtx.Err() != nil {
		err = callCtx.Err()
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("request timed out after %s: %w", c.timeout, err)
		}
		slog.Error("Question answering failed", "backend", c.backend.Name(), "model", c.model, "error", err)
		return Answer{}, &RemoteCallFailure{Backend: c.backend.Name(), Err: err}
	}

	answer.Text = strings.TrimSpace(answer.Text)
	slog.Info("Answered question",
		"backend", c.backend.Name(),
		"model", c.model,
		"score", answer.Score,
		"duration", time.Since(start))
	return answer, nil
}
