package tesseract

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os/exec"
	"strings"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/lehigh-university-libraries/askimage/internal/images"
	"github.com/lehigh-university-libraries/askimage/internal/ocr"
)

// ensureTesseractAvailable checks that the tesseract binary is reachable.
func ensureTesseractAvailable(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("tesseract"); err != nil {
		t.Skip("tesseract not installed in PATH")
	}
}

func renderText(text string) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 240, 80))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	d := &font.Drawer{
		Dst:  img,
		Src:  image.Black,
		Face: basicfont.Face7x13,
		Dot:  fixed.P(10, 50),
	}
	d.DrawString(text)
	return img
}

func TestEngineRecognize(t *testing.T) {
	ensureTesseractAvailable(t)

	var buf bytes.Buffer
	if err := png.Encode(&buf, renderText("HELLO WORLD")); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	res, err := New().Recognize(context.Background(), ocr.Input{
		Image:     buf.Bytes(),
		Format:    images.FormatPNG,
		Languages: []string{"eng"},
	})
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	got := strings.ToUpper(res.Text)
	if !strings.Contains(got, "HELLO") || !strings.Contains(got, "WORLD") {
		t.Fatalf("unexpected OCR output: %q", res.Text)
	}
}

func TestExtractorBlankImage(t *testing.T) {
	ensureTesseractAvailable(t)

	img := image.NewRGBA(image.Rect(0, 0, 120, 60))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	text, err := ocr.NewExtractor(New(), []string{"eng"}).Extract(context.Background(), &images.Bitmap{Image: img, Format: images.FormatPNG})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "" {
		t.Errorf("Expected no text from a blank image, got %q", text)
	}
}

func TestRecognizeCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New().Recognize(ctx, ocr.Input{}); err == nil {
		t.Errorf("Expected error for canceled context")
	}
}
