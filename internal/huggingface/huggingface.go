package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/askimage/internal/qa"
)

const (
	DefaultEndpoint = "https://router.huggingface.co/hf-inference/models"
	DefaultModel    = "deepset/roberta-base-squad2"
)

// HuggingFace calls the hosted inference API for extractive question answering
type HuggingFace struct {
	endpoint   string
	httpClient *http.Client
}

// New returns a new Hugging Face backend. Timeouts are applied per call through the context.
func New(endpoint string) *HuggingFace {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &HuggingFace{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{},
	}
}

func (h *HuggingFace) Name() string { return "huggingface" }

type questionAnsweringInputs struct {
	Question string `json:"question"`
	Context  string `json:"context"`
}

type questionAnsweringOutput struct {
	Answer *string `json:"answer"`
	Score  float64 `json:"score"`
	Start  int     `json:"start"`
	End    int     `json:"end"`
}

// Answer runs the question-answering task against req.Model
func (h *HuggingFace) Answer(ctx context.Context, req qa.Request) (qa.Answer, error) {
	model := req.Model
	if model == "" {
		model = DefaultModel
	}

	requestBody, err := json.Marshal(map[string]interface{}{
		"inputs": questionAnsweringInputs{
			Question: req.Question,
			Context:  req.Context,
		},
	})
	if err != nil {
		return qa.Answer{}, fmt.Errorf("failed to marshal request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", h.endpoint+"/"+model, bytes.NewBuffer(requestBody))
	if err != nil {
		return qa.Answer{}, fmt.Errorf("failed to create new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+req.Credential)

	resp, err := h.httpClient.Do(httpReq)
	if err != nil {
		return qa.Answer{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return qa.Answer{}, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return qa.Answer{}, fmt.Errorf("received non-200 status code: %d - %s", resp.StatusCode, errorMessage(body))
	}

	out, err := decodeOutput(body)
	if err != nil {
		return qa.Answer{}, err
	}

	return qa.Answer{
		Text:  *out.Answer,
		Score: out.Score,
		Start: out.Start,
		End:   out.End,
	}, nil
}

// decodeOutput accepts either a single object or a list with the best answer first.
func decodeOutput(body []byte) (questionAnsweringOutput, error) {
	trimmed := bytes.TrimSpace(body)

	var out questionAnsweringOutput
	if bytes.HasPrefix(trimmed, []byte("[")) {
		var list []questionAnsweringOutput
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return out, fmt.Errorf("failed to decode response body: %w", err)
		}
		if len(list) == 0 {
			return out, fmt.Errorf("no answers returned from Hugging Face")
		}
		out = list[0]
	} else if err := json.Unmarshal(trimmed, &out); err != nil {
		return out, fmt.Errorf("failed to decode response body: %w", err)
	}

	if out.Answer == nil {
		return out, fmt.Errorf("malformed response: missing answer field")
	}
	return out, nil
}

// errorMessage extracts {"error": "..."} bodies, falling back to the raw text.
func errorMessage(body []byte) string {
	var apiErr struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != "" {
		return apiErr.Error
	}
	return strings.TrimSpace(string(body))
}
