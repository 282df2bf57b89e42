package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/askimage/internal/images"
)

// Failure wraps an error raised by the OCR engine.
type Failure struct {
	Engine string
	Err    error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("text extraction with %s failed: %v", f.Engine, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// Extractor runs an engine over decoded bitmaps.
type Extractor struct {
	engine    Engine
	languages []string
	variables map[string]string
}

// NewExtractor creates an extractor for the given engine and language hints
func NewExtractor(engine Engine, languages []string) *Extractor {
	return &Extractor{
		engine:    engine,
		languages: append([]string(nil), languages...),
	}
}

// WithVariables sets engine-specific variables sent with every image.
func (e *Extractor) WithVariables(vars map[string]string) *Extractor {
	e.variables = make(map[string]string, len(vars))
	for k, v := range vars {
		e.variables[k] = v
	}
	return e
}

// EngineName reports the underlying engine.
func (e *Extractor) EngineName() string {
	return e.engine.Name()
}

// Extract transcribes the bitmap. It returns "" when nothing was recognized.
// Any engine error, including a panic inside a native binding, comes back as *Failure.
func (e *Extractor) Extract(ctx context.Context, bitmap *images.Bitmap) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &Failure{Engine: e.engine.Name(), Err: fmt.Errorf("engine panic: %v", r)}
		}
	}()

	data, err := images.EncodePNG(bitmap)
	if err != nil {
		return "", &Failure{Engine: e.engine.Name(), Err: err}
	}

	start := time.Now()
	result, err := e.engine.Recognize(ctx, Input{
		Image:     data,
		Format:    images.FormatPNG,
		Languages: e.languages,
		Metadata:  e.variables,
	})
	if err != nil {
		return "", &Failure{Engine: e.engine.Name(), Err: err}
	}

	text = strings.TrimSpace(result.Text)
	slog.Info("Extracted OCR text",
		"engine", e.engine.Name(),
		"length", len(text),
		"confidence", result.Confidence,
		"duration", time.Since(start))
	return text, nil
}
