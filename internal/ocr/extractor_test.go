package ocr

import (
	"context"
	"errors"
	"image"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/askimage/internal/images"
	"github.com/lehigh-university-libraries/askimage/internal/ollama"
)

type stubEngine struct {
	text  string
	err   error
	panic bool
	got   Input
}

func (s *stubEngine) Name() string { return "stub" }

func (s *stubEngine) Recognize(ctx context.Context, in Input) (Result, error) {
	s.got = in
	if s.panic {
		panic("native crash")
	}
	return Result{Text: s.text}, s.err
}

func testBitmap() *images.Bitmap {
	return &images.Bitmap{Image: image.NewGray(image.Rect(0, 0, 8, 8)), Format: images.FormatPNG}
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		engine   *stubEngine
		expected string
		wantErr  bool
	}{
		{name: "trims whitespace", engine: &stubEngine{text: "\n  HELLO WORLD \n\n"}, expected: "HELLO WORLD"},
		{name: "whitespace only is empty", engine: &stubEngine{text: " \n\t "}, expected: ""},
		{name: "engine error", engine: &stubEngine{err: errors.New("tessdata missing")}, wantErr: true},
		{name: "engine panic", engine: &stubEngine{panic: true}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := NewExtractor(tt.engine, []string{"eng"})
			got, err := ex.Extract(context.Background(), testBitmap())
			if tt.wantErr {
				var failure *Failure
				if !errors.As(err, &failure) {
					t.Fatalf("Expected *Failure, got %v", err)
				}
				if failure.Engine != "stub" {
					t.Errorf("Expected engine name in failure, got %q", failure.Engine)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
			if tt.engine.got.Format != images.FormatPNG || len(tt.engine.got.Image) == 0 {
				t.Errorf("Expected png payload to reach the engine")
			}
			if len(tt.engine.got.Languages) != 1 || tt.engine.got.Languages[0] != "eng" {
				t.Errorf("Expected language hints, got %v", tt.engine.got.Languages)
			}
		})
	}
}

func TestExtractPassesVariables(t *testing.T) {
	engine := &stubEngine{text: "x"}
	vars := map[string]string{"tessedit_pageseg_mode": "6"}
	ex := NewExtractor(engine, []string{"eng"}).WithVariables(vars)
	vars["tessedit_pageseg_mode"] = "3"

	if _, err := ex.Extract(context.Background(), testBitmap()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := engine.got.Metadata["tessedit_pageseg_mode"]; got != "6" {
		t.Errorf("Expected variable to reach the engine, got %v", engine.got.Metadata)
	}
}

type stubGenerator struct {
	reply string
	req   ollama.GenerateRequest
}

func (s *stubGenerator) Generate(ctx context.Context, req ollama.GenerateRequest) (string, error) {
	s.req = req
	return s.reply, nil
}

func TestVisionEngine(t *testing.T) {
	gen := &stubGenerator{reply: "  RECEIPT\nTotal 4.20  "}
	engine := NewVisionEngine(gen, "")

	res, err := engine.Recognize(context.Background(), Input{Image: []byte("png"), Languages: []string{"eng"}})
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if res.Text != "RECEIPT\nTotal 4.20" {
		t.Errorf("Unexpected text %q", res.Text)
	}
	if gen.req.Model != DefaultVisionModel {
		t.Errorf("Expected default model, got %s", gen.req.Model)
	}
	if len(gen.req.Images) != 1 || string(gen.req.Images[0]) != "png" {
		t.Errorf("Expected image to be attached")
	}
	if !strings.Contains(gen.req.Prompt, "eng") {
		t.Errorf("Expected language hint in prompt")
	}

	gen.reply = "No text."
	res, err = engine.Recognize(context.Background(), Input{Image: []byte("png")})
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if res.Text != "" {
		t.Errorf("Expected sentinel reply to map to empty text, got %q", res.Text)
	}
}
