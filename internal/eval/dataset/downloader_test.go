package dataset

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
)

func TestDownload(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("Expected bearer token, got %q", r.Header.Get("Authorization"))
		}
		if r.URL.Path != "/org/docvqa/data/test.jsonl" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"id":"1","image_path":"1.png","question":"q","answers":["a"]}` + "\n"))
	}))
	defer srv.Close()

	d := NewDownloader(DownloadConfig{
		CacheDir:   t.TempDir(),
		Token:      "secret",
		ResolveURL: srv.URL + "/%s/%s",
	})

	path, err := d.Download(context.Background(), "org/docvqa", "data/test.jsonl")
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if path != d.CachePath("org/docvqa", "data/test.jsonl") {
		t.Errorf("Unexpected cache path %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected cached file: %v", err)
	}

	if _, err := d.Download(context.Background(), "org/docvqa", "data/test.jsonl"); err != nil {
		t.Fatalf("Second download failed: %v", err)
	}
	if hits != 1 {
		t.Errorf("Expected cached file to be reused, got %d requests", hits)
	}
}

func TestDownloadStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	d := NewDownloader(DownloadConfig{CacheDir: t.TempDir(), ResolveURL: srv.URL + "/%s/%s"})
	if _, err := d.Download(context.Background(), "org/missing", "x.jsonl"); err == nil {
		t.Fatal("Expected error for 404")
	}
	if _, err := os.Stat(d.CachePath("org/missing", "x.jsonl")); err == nil {
		t.Errorf("Expected no cached file after failure")
	}
}
