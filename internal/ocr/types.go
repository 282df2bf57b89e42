// Package ocr turns decoded images into plain text through pluggable engines.
// Engines can be backed by a native library (Tesseract) or a remote vision model.
package ocr

import (
	"context"

	"github.com/lehigh-university-libraries/askimage/internal/images"
)

// Input is a single image submitted for recognition.
type Input struct {
	// Image is the encoded image payload in the format specified by Format.
	Image []byte
	// Format is the encoding of Image.
	Format images.Format
	// Languages are Tesseract language codes (e.g. "eng", "deu").
	Languages []string
	// Metadata passes engine-specific knobs through, such as Tesseract variables.
	Metadata map[string]string
}

// Result is the output for a single input.
type Result struct {
	// Text is the linearized text, whitespace-trimmed.
	Text string
	// Confidence is the mean word confidence in [0,1] when the engine reports one.
	Confidence float64
}

// Engine is one image in, one result out.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, input Input) (Result, error)
}
