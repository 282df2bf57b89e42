package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
)

func TestNewLoader(t *testing.T) {
	path := "./data/test.parquet"
	loader := NewLoader(path)

	if loader.datasetPath != path {
		t.Errorf("Expected path %s, got %s", path, loader.datasetPath)
	}
	if loader.BaseDir() != "data" {
		t.Errorf("Expected base dir data, got %s", loader.BaseDir())
	}
}

func TestLoadJSONL(t *testing.T) {
	tmpDir := t.TempDir()
	jsonlPath := filepath.Join(tmpDir, "test.jsonl")

	testData := `{"id":"a","image_path":"a.png","question":"What does the text say?","answers":["HELLO WORLD"]}

{"image_path":"b.png","question":"Who signed it?","answers":["Jane","Jane Doe"]}
{"id":"c","image_path":"c.png","question":"When?","answers":["1920"]}
`
	if err := os.WriteFile(jsonlPath, []byte(testData), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	loader := NewLoader(jsonlPath)

	items, err := loader.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(items))
	}
	if items[1].ID != "item-2" {
		t.Errorf("Expected generated id item-2, got %s", items[1].ID)
	}
	if len(items[1].Answers) != 2 {
		t.Errorf("Expected 2 answers, got %v", items[1].Answers)
	}

	sample, err := loader.LoadSample(2)
	if err != nil {
		t.Fatalf("LoadSample failed: %v", err)
	}
	if len(sample) != 2 {
		t.Errorf("Expected 2 items, got %d", len(sample))
	}
}

func TestLoadYAML(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "test.yaml")

	testData := `items:
  - id: receipt
    image_path: images/receipt.jpg
    question: What is the total?
    answers: ["$12.50", "12.50"]
`
	if err := os.WriteFile(path, []byte(testData), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	items, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(items) != 1 || items[0].Question != "What is the total?" {
		t.Fatalf("Unexpected items: %+v", items)
	}

	want := filepath.Join(tmpDir, "images", "receipt.jpg")
	if got := items[0].ResolveImagePath(tmpDir); got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestLoadParquet(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "test.parquet")

	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	writer := parquet.NewGenericWriter[Item](file)
	rows := []Item{
		{ID: "1", ImagePath: "1.png", Question: "q1", Answers: []string{"a1"}},
		{ID: "2", ImagePath: "2.png", Question: "q2", Answers: []string{"a2", "b2"}},
	}
	if _, err := writer.Write(rows); err != nil {
		t.Fatalf("Failed to write rows: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close writer: %v", err)
	}
	if err := file.Close(); err != nil {
		t.Fatalf("Failed to close file: %v", err)
	}

	items, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}
	if items[1].Question != "q2" || len(items[1].Answers) != 2 {
		t.Errorf("Unexpected second item: %+v", items[1])
	}
}

func TestLoadInvalidItems(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "test.jsonl")
	if err := os.WriteFile(path, []byte(`{"id":"x","image_path":"x.png"}`+"\n"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	if _, err := NewLoader(path).Load(); err == nil {
		t.Error("Expected error for item without a question")
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	loader := NewLoader("test.txt")
	if _, err := loader.Load(); err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestResolveImagePath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{name: "relative", path: "a.png", expected: filepath.Join("base", "a.png")},
		{name: "absolute", path: "/tmp/a.png", expected: "/tmp/a.png"},
		{name: "url", path: "https://example.org/a.png", expected: "https://example.org/a.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := Item{ImagePath: tt.path}
			if got := item.ResolveImagePath("base"); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}
