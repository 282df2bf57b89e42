package results

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lehigh-university-libraries/askimage/internal/eval/metrics"
	"gopkg.in/yaml.v3"
)

func TestSaveToYAML(t *testing.T) {
	match := metrics.ScoreAnswer("HELLO WORLD", []string{"hello world"})
	agg := metrics.AggregateEvaluationResults([]metrics.EvaluationResult{
		{ID: "1", Question: "What does the text say?", ExtractedText: "HELLO WORLD", References: []string{"hello world"}, Match: &match},
		{ID: "2", Question: "Who?", Error: "OCR failed"},
	}, "tesseract", "huggingface", "deepset/roberta-base-squad2")
	agg.EvaluationDate = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	dir := t.TempDir()
	path, err := SaveToYAML(dir, "data/test.jsonl", agg)
	if err != nil {
		t.Fatalf("SaveToYAML failed: %v", err)
	}

	if filepath.Base(path) != "deepset_roberta-base-squad2-2025-01-02_03-04-05.yaml" {
		t.Errorf("Unexpected filename %s", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}

	var spec EvalSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		t.Fatalf("Failed to parse output: %v", err)
	}
	if spec.Config.OCREngine != "tesseract" || spec.Summary.Total != 2 || spec.Summary.Failed != 1 {
		t.Errorf("Unexpected config/summary: %+v %+v", spec.Config, spec.Summary)
	}
	if len(spec.Results) != 2 || !spec.Results[0].ExactMatch || spec.Results[1].Error == "" {
		t.Errorf("Unexpected results: %+v", spec.Results)
	}
	if !strings.Contains(string(data), "prediction: HELLO WORLD") {
		t.Errorf("Expected prediction in YAML output")
	}
}
