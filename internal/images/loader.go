package images

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

// Format is a raster format accepted for upload.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
)

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatJPEG:
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}

// Upload is a raw uploaded image as received from the user.
type Upload struct {
	Filename string
	Format   Format
	Data     []byte
}

// Digest identifies the upload contents. Two uploads with the same bytes share a digest.
func (u Upload) Digest() string {
	sum := sha256.Sum256(u.Data)
	return hex.EncodeToString(sum[:])
}

// Bitmap is a decoded upload.
type Bitmap struct {
	Image  image.Image
	Format Format
}

func (b *Bitmap) Width() int  { return b.Image.Bounds().Dx() }
func (b *Bitmap) Height() int { return b.Image.Bounds().Dy() }

// DecodeError reports an upload that is not a readable png or jpeg image.
type DecodeError struct {
	Filename string
	Reason   string
	Err      error
}

func (e *DecodeError) Error() string {
	msg := "unable to read image"
	if e.Filename != "" {
		msg += " " + e.Filename
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ParseFormat resolves the declared format of an upload from its filename extension,
// falling back to the MIME type sent by the client.
func ParseFormat(filename, contentType string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return FormatPNG, nil
	case ".jpg", ".jpeg":
		return FormatJPEG, nil
	}

	mediaType := strings.TrimSpace(strings.ToLower(strings.Split(contentType, ";")[0]))
	switch mediaType {
	case "image/png":
		return FormatPNG, nil
	case "image/jpeg", "image/jpg":
		return FormatJPEG, nil
	}

	return "", &DecodeError{
		Filename: filename,
		Reason:   "unsupported file type (allowed: png, jpg, jpeg)",
	}
}

// MaxPixels caps width*height of an upload before any pixel data is allocated.
var MaxPixels = 50_000_000

// Decode decodes the upload into a bitmap. The bytes must actually be png or jpeg;
// a mismatch between the declared and real format is tolerated since browsers
// routinely mislabel files.
func Decode(up Upload) (*Bitmap, error) {
	if len(up.Data) == 0 {
		return nil, &DecodeError{Filename: up.Filename, Reason: "file is empty"}
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(up.Data))
	if err != nil {
		return nil, &DecodeError{Filename: up.Filename, Reason: "corrupt or unsupported image data", Err: err}
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(MaxPixels) {
		return nil, &DecodeError{
			Filename: up.Filename,
			Reason:   fmt.Sprintf("image dimensions too large (%dx%d)", cfg.Width, cfg.Height),
		}
	}

	img, name, err := image.Decode(bytes.NewReader(up.Data))
	if err != nil {
		return nil, &DecodeError{Filename: up.Filename, Reason: "corrupt or unsupported image data", Err: err}
	}

	var format Format
	switch name {
	case "png":
		format = FormatPNG
	case "jpeg":
		format = FormatJPEG
	default:
		return nil, &DecodeError{Filename: up.Filename, Reason: fmt.Sprintf("unsupported image format %q", name)}
	}

	return &Bitmap{Image: img, Format: format}, nil
}

// EncodePNG re-encodes the bitmap losslessly.
func EncodePNG(b *Bitmap) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, b.Image); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeJPEG re-encodes the bitmap as a jpeg.
func EncodeJPEG(b *Bitmap, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, b.Image, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// Preview renders a png no wider than maxWidth, keeping the aspect ratio.
// A non-positive maxWidth leaves the image at its original size.
func Preview(b *Bitmap, maxWidth int) ([]byte, error) {
	src := b.Image
	bounds := src.Bounds()
	if maxWidth <= 0 || bounds.Dx() <= maxWidth {
		return EncodePNG(b)
	}

	height := bounds.Dy() * maxWidth / bounds.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	return EncodePNG(&Bitmap{Image: dst, Format: FormatPNG})
}
