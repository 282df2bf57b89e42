// Package pipeline assembles the OCR engine, QA backend and wizard from configuration,
// and runs the whole upload → extract → answer flow outside a browser.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lehigh-university-libraries/askimage/internal/config"
	"github.com/lehigh-university-libraries/askimage/internal/gemini"
	"github.com/lehigh-university-libraries/askimage/internal/huggingface"
	"github.com/lehigh-university-libraries/askimage/internal/images"
	"github.com/lehigh-university-libraries/askimage/internal/ocr"
	"github.com/lehigh-university-libraries/askimage/internal/ocr/tesseract"
	"github.com/lehigh-university-libraries/askimage/internal/ollama"
	"github.com/lehigh-university-libraries/askimage/internal/openai"
	"github.com/lehigh-university-libraries/askimage/internal/qa"
	"github.com/lehigh-university-libraries/askimage/internal/wizard"
)

type Service struct {
	Extractor *ocr.Extractor
	QA        *qa.Client
	Wizard    *wizard.Wizard
	Fetcher   *images.Fetcher
}

// NewService builds every component named by cfg.
func NewService(cfg *config.Config) (*Service, error) {
	engine, err := newEngine(cfg.OCR)
	if err != nil {
		return nil, err
	}
	backend, err := newBackend(cfg.QA)
	if err != nil {
		return nil, err
	}

	extractor := ocr.NewExtractor(engine, cfg.OCR.Languages).WithVariables(cfg.OCR.Variables)
	client := qa.NewClient(backend, cfg.QA.Model, cfg.Credential(), cfg.QA.Timeout)

	slog.Debug("Pipeline configured",
		"ocr_engine", extractor.EngineName(),
		"qa_provider", client.BackendName(),
		"qa_model", client.Model(),
		"credential_present", client.HasCredential())

	return &Service{
		Extractor: extractor,
		QA:        client,
		Wizard: wizard.New(extractor, client, wizard.Options{
			CredentialEnv: cfg.QA.CredentialEnv,
			PreviewWidth:  cfg.Server.PreviewWidth,
		}),
		Fetcher: images.NewFetcher(cfg.Server.MaxUploadBytes),
	}, nil
}

func newEngine(cfg config.OCRConfig) (ocr.Engine, error) {
	switch cfg.Engine {
	case "tesseract":
		return tesseract.New(), nil
	case "ollama":
		return ocr.NewVisionEngine(ollama.New(cfg.OllamaURL), cfg.OllamaModel), nil
	default:
		return nil, fmt.Errorf("unsupported OCR engine: %s", cfg.Engine)
	}
}

func newBackend(cfg config.QAConfig) (qa.Backend, error) {
	switch cfg.Provider {
	case "huggingface":
		return huggingface.New(cfg.Endpoint), nil
	case "openai":
		return openai.New(cfg.Endpoint), nil
	case "gemini":
		return gemini.New(), nil
	default:
		return nil, fmt.Errorf("unsupported QA provider: %s", cfg.Provider)
	}
}

// Run pushes one image and one question through a fresh wizard session and
// returns the final view. The error is non-nil only when the image could not be
// read at all; failures inside the flow are reported in the view.
func (s *Service) Run(ctx context.Context, imageRef, question string) (wizard.View, error) {
	up, err := s.Fetcher.Load(ctx, imageRef)
	if err != nil {
		return wizard.View{}, err
	}

	session := wizard.NewSession()
	view := s.Wizard.SelectFile(ctx, session, up)
	if question != "" && view.CanAsk() {
		view = s.Wizard.SubmitQuestion(ctx, session, question)
	}
	return view, nil
}

// Failed returns the first error-level result in the view, if any.
func Failed(v wizard.View) (string, bool) {
	if v.Credential != nil {
		return v.Credential.Message, true
	}
	results := []*wizard.Result{}
	if v.Upload != nil {
		results = append(results, &v.Upload.Result)
	}
	if v.Extraction != nil {
		results = append(results, &v.Extraction.Result)
	}
	if v.Answer != nil {
		results = append(results, &v.Answer.Result)
	}
	for _, r := range results {
		if r.Level == wizard.LevelError {
			return r.Message, true
		}
	}
	return "", false
}
