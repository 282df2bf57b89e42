package images

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Fetcher retrieves images from remote URLs
type Fetcher struct {
	HTTPClient *http.Client
	MaxBytes   int64
}

// NewFetcher creates a new image fetcher
func NewFetcher(maxBytes int64) *Fetcher {
	return &Fetcher{
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		MaxBytes: maxBytes,
	}
}

// Fetch downloads the image at imageURL and returns it as an upload.
func (f *Fetcher) Fetch(ctx context.Context, imageURL string) (Upload, error) {
	u, err := url.Parse(imageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return Upload{}, fmt.Errorf("invalid image url: %s", imageURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return Upload{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return Upload{}, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Upload{}, fmt.Errorf("failed to download image: HTTP %d", resp.StatusCode)
	}

	body := io.Reader(resp.Body)
	if f.MaxBytes > 0 {
		body = io.LimitReader(resp.Body, f.MaxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return Upload{}, fmt.Errorf("failed to read image data: %w", err)
	}
	if f.MaxBytes > 0 && int64(len(data)) > f.MaxBytes {
		return Upload{}, fmt.Errorf("image too large (max %d bytes)", f.MaxBytes)
	}

	filename := path.Base(u.Path)
	if filename == "" || filename == "/" || filename == "." {
		filename = "image"
	}

	format, err := ParseFormat(filename, resp.Header.Get("Content-Type"))
	if err != nil {
		return Upload{}, err
	}

	slog.Info("Downloaded image", "url", imageURL, "bytes", len(data), "format", format)
	return Upload{Filename: filename, Format: format, Data: data}, nil
}

// Load reads an image from a local path or, for http(s) references, from the network.
func (f *Fetcher) Load(ctx context.Context, ref string) (Upload, error) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return f.Fetch(ctx, ref)
	}

	format, err := ParseFormat(ref, "")
	if err != nil {
		return Upload{}, err
	}

	file, err := os.Open(ref)
	if err != nil {
		return Upload{}, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	body := io.Reader(file)
	if f.MaxBytes > 0 {
		body = io.LimitReader(file, f.MaxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return Upload{}, fmt.Errorf("failed to read image: %w", err)
	}
	if f.MaxBytes > 0 && int64(len(data)) > f.MaxBytes {
		return Upload{}, fmt.Errorf("image too large (max %d bytes)", f.MaxBytes)
	}

	return Upload{Filename: filepath.Base(ref), Format: format, Data: data}, nil
}
