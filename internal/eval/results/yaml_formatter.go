package results

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/askimage/internal/eval/metrics"
	"gopkg.in/yaml.v3"
)

// EvalConfig represents the configuration section of the eval YAML
type EvalConfig struct {
	OCREngine   string `yaml:"ocrengine"`
	Provider    string `yaml:"provider"`
	Model       string `yaml:"model"`
	DatasetPath string `yaml:"datasetpath"`
	SampleSize  int    `yaml:"samplesize"`
	Timestamp   string `yaml:"timestamp"`
}

// EvalSummary mirrors the headline numbers of metrics.AggregateResults.
type EvalSummary struct {
	Total      int     `yaml:"total"`
	Failed     int     `yaml:"failed"`
	ExactMatch float64 `yaml:"exactmatch"`
	F1         float64 `yaml:"f1"`
	Similarity float64 `yaml:"similarity"`
}

// EvalResult represents a single evaluation result
type EvalResult struct {
	Identifier    string   `yaml:"identifier"`
	Question      string   `yaml:"question"`
	ExtractedText string   `yaml:"extractedtext"`
	Prediction    string   `yaml:"prediction"`
	References    []string `yaml:"references"`
	ExactMatch    bool     `yaml:"exactmatch"`
	F1            float64  `yaml:"f1"`
	Method        string   `yaml:"method,omitempty"`
	Error         string   `yaml:"error,omitempty"`
}

// EvalSpec represents the complete evaluation record
type EvalSpec struct {
	Config  EvalConfig   `yaml:"config"`
	Summary EvalSummary  `yaml:"summary"`
	Results []EvalResult `yaml:"results"`
}

// SaveToYAML writes the aggregate to <outputDir>/<model>-<timestamp>.yaml and returns the path.
func SaveToYAML(outputDir, datasetPath string, agg *metrics.AggregateResults) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s directory: %w", outputDir, err)
	}

	timestamp := agg.EvaluationDate.Format("2006-01-02_15-04-05")
	if agg.EvaluationDate.IsZero() {
		timestamp = time.Now().Format("2006-01-02_15-04-05")
	}

	spec := EvalSpec{
		Config: EvalConfig{
			OCREngine:   agg.OCREngine,
			Provider:    agg.Provider,
			Model:       agg.Model,
			DatasetPath: datasetPath,
			SampleSize:  agg.TotalRecords,
			Timestamp:   timestamp,
		},
		Summary: EvalSummary{
			Total:      agg.TotalRecords,
			Failed:     agg.FailureCount,
			ExactMatch: agg.ExactMatch,
			F1:         agg.F1,
			Similarity: agg.Similarity,
		},
		Results: make([]EvalResult, 0, len(agg.Results)),
	}

	for _, r := range agg.Results {
		evalResult := EvalResult{
			Identifier:    r.ID,
			Question:      r.Question,
			ExtractedText: r.ExtractedText,
			References:    r.References,
			Error:         r.Error,
		}
		if r.Match != nil {
			evalResult.Prediction = r.Match.Prediction
			evalResult.ExactMatch = r.Match.ExactMatch
			evalResult.F1 = r.Match.F1
			evalResult.Method = r.Match.Method
		}
		spec.Results = append(spec.Results, evalResult)
	}

	// model ids like deepset/roberta-base-squad2 contain slashes
	name := strings.NewReplacer("/", "_", ":", "_").Replace(agg.Model)
	filename := filepath.Join(outputDir, fmt.Sprintf("%s-%s.yaml", name, timestamp))

	data, err := yaml.Marshal(&spec)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}

	return filename, nil
}

// LoadYAML reads a results file written by SaveToYAML.
func LoadYAML(path string) (*EvalSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read results: %w", err)
	}

	var spec EvalSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse results: %w", err)
	}
	return &spec, nil
}
