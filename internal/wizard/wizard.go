// Package wizard is the upload → extracted text → question/answer state machine.
// It is driven by discrete events and produces structured views; rendering lives elsewhere.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/askimage/internal/images"
	"github.com/lehigh-university-libraries/askimage/internal/qa"
)

const (
	NoTextMessage   = "No text detected in the image. Please try another image."
	NoAnswerMessage = "The model could not find an answer in the extracted text."
	ErrorPrefix     = "Sorry, there was an error: "
)

// Extractor transcribes a decoded image.
type Extractor interface {
	Extract(ctx context.Context, bitmap *images.Bitmap) (string, error)
}

// Answerer answers a question from extracted text.
type Answerer interface {
	HasCredential() bool
	BackendName() string
	Ask(ctx context.Context, question, extracted string) (qa.Answer, error)
}

// Options tune how the wizard presents itself.
type Options struct {
	// CredentialEnv names the environment variable the warning tells the user to set.
	CredentialEnv string
	// PreviewWidth caps the preview width in pixels.
	PreviewWidth int
}

// Wizard runs stage transitions against sessions.
type Wizard struct {
	extractor Extractor
	answerer  Answerer
	opts      Options
}

// New creates a wizard
func New(extractor Extractor, answerer Answerer, opts Options) *Wizard {
	if opts.CredentialEnv == "" {
		opts.CredentialEnv = "HF_TOKEN"
	}
	return &Wizard{
		extractor: extractor,
		answerer:  answerer,
		opts:      opts,
	}
}

// SelectFile handles a file-selected event. Without a credential the upload is
// ignored entirely: nothing is decoded, extracted or answered.
func (w *Wizard) SelectFile(ctx context.Context, s *Session, up images.Upload) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if !w.answerer.HasCredential() {
		slog.Warn("Ignoring upload without API token", "session_id", s.ID, "env", w.opts.CredentialEnv)
		return w.view(s)
	}

	digest := up.Digest()
	if digest == s.digest && s.bitmap != nil && s.ocrErr == nil {
		slog.Debug("Upload unchanged, reusing extraction", "session_id", s.ID, "digest", digest[:12])
		s.filename = up.Filename
		return w.view(s)
	}

	s.clearUpload()
	s.filename = up.Filename
	s.digest = digest

	bitmap, err := images.Decode(up)
	if err != nil {
		slog.Warn("Failed to decode upload", "session_id", s.ID, "filename", up.Filename, "error", err)
		s.uploadErr = err
		return w.view(s)
	}
	s.bitmap = bitmap

	preview, err := images.Preview(bitmap, w.opts.PreviewWidth)
	if err != nil {
		slog.Warn("Failed to render preview", "session_id", s.ID, "error", err)
	}
	s.preview = preview

	slog.Info("Image uploaded", "session_id", s.ID, "filename", up.Filename, "width", bitmap.Width(), "height", bitmap.Height())

	start := time.Now()
	text, err := w.extractor.Extract(ctx, bitmap)
	if err != nil {
		slog.Error("OCR failed", "session_id", s.ID, "error", err)
		s.ocrErr = err
		return w.view(s)
	}
	s.extracted = true
	s.text = text
	slog.Info("Text extracted", "session_id", s.ID, "length", len(text), "duration", time.Since(start))

	return w.view(s)
}

// SubmitQuestion handles a question-submitted event. The QA backend is only called
// once an image has been extracted and the question is non-empty; a successful
// answer is reused while neither the image nor the question changes.
func (w *Wizard) SubmitQuestion(ctx context.Context, s *Session, question string) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if !w.answerer.HasCredential() || s.bitmap == nil || (!s.extracted && s.ocrErr == nil) {
		return w.view(s)
	}

	question = strings.TrimSpace(question)
	s.question = question
	if question == "" {
		s.clearAnswer()
		return w.view(s)
	}

	key := s.digest + "\x00" + question
	if key == s.answerKey && s.answer != nil {
		slog.Debug("Question unchanged, reusing answer", "session_id", s.ID)
		return w.view(s)
	}

	s.clearAnswer()
	s.answerKey = key

	if s.ocrErr != nil {
		s.answerErr = errors.New("text extraction failed, so the question cannot be answered")
		return w.view(s)
	}

	answer, err := w.answerer.Ask(ctx, question, s.text)
	if err != nil {
		s.answerErr = err
		return w.view(s)
	}
	s.answer = &answer

	return w.view(s)
}

// Reset clears the session back to the idle stage.
func (w *Wizard) Reset(s *Session) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.clearUpload()
	s.question = ""
	return w.view(s)
}

// View renders the session without recomputing anything.
func (w *Wizard) View(s *Session) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return w.view(s)
}

// Preview returns the preview png for the current upload.
func (w *Wizard) Preview(s *Session) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !w.answerer.HasCredential() || len(s.preview) == 0 {
		return nil, false
	}
	return s.preview, true
}

// view must be called with s.mu held.
func (w *Wizard) view(s *Session) View {
	v := View{
		SessionID: s.ID,
		Stage:     StageIdle,
		Backend:   w.answerer.BackendName(),
	}

	if !w.answerer.HasCredential() {
		v.Credential = &Result{
			Level:   LevelWarning,
			Message: fmt.Sprintf("API token not found. Please set the %s environment variable.", w.opts.CredentialEnv),
		}
		return v
	}

	if s.digest == "" {
		return v
	}

	upload := &UploadView{Filename: s.filename}
	v.Upload = upload
	if s.uploadErr != nil {
		upload.Result = Result{Level: LevelError, Message: s.uploadErr.Error()}
		return v
	}
	upload.Width = s.bitmap.Width()
	upload.Height = s.bitmap.Height()
	upload.HasPreview = len(s.preview) > 0
	upload.Result = Result{Level: LevelSuccess, Message: "Preview of your uploaded image"}

	v.Stage = StageExtracted
	v.Question = s.question
	switch {
	case s.ocrErr != nil:
		v.Extraction = &ExtractionView{Result: Result{Level: LevelError, Message: s.ocrErr.Error()}}
	case strings.TrimSpace(s.text) == "":
		v.Extraction = &ExtractionView{Result: Result{Level: LevelInfo, Message: NoTextMessage}}
	default:
		v.Extraction = &ExtractionView{Text: s.text, Result: Result{Level: LevelSuccess}}
	}

	if s.answerKey == "" {
		return v
	}

	v.Stage = StageAnswered
	answer := &AnswerView{Question: s.question}
	v.Answer = answer
	switch {
	case errors.Is(s.answerErr, qa.ErrEmptyContext):
		answer.Result = Result{Level: LevelWarning, Message: s.answerErr.Error()}
	case s.answerErr != nil:
		answer.Result = Result{Level: LevelError, Message: ErrorPrefix + s.answerErr.Error()}
	case s.answer.Text == "":
		answer.Score = s.answer.Score
		answer.Result = Result{Level: LevelInfo, Message: NoAnswerMessage}
	default:
		answer.Text = s.answer.Text
		answer.Score = s.answer.Score
		answer.Result = Result{Level: LevelSuccess}
	}

	return v
}
