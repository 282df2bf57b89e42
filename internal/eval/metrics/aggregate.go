package metrics

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// EvaluationResult is the outcome of one dataset item.
type EvaluationResult struct {
	ID             string        `json:"id"`
	Question       string        `json:"question"`
	References     []string      `json:"references"`
	ExtractedText  string        `json:"extracted_text"`
	Match          *AnswerMatch  `json:"match,omitempty"`
	ProcessingTime time.Duration `json:"processing_time"`
	Error          string        `json:"error,omitempty"` // If OCR or QA failed
}

// AggregateResults represents aggregated evaluation metrics
type AggregateResults struct {
	TotalRecords int `json:"total_records"`
	SuccessCount int `json:"success_count"`
	FailureCount int `json:"failure_count"`

	ExactMatches  int     `json:"exact_matches"`
	ExactMatch    float64 `json:"exact_match"`
	F1            float64 `json:"f1"`
	Similarity    float64 `json:"similarity"`
	NoTextRecords int     `json:"no_text_records"`

	AverageProcessingTime time.Duration `json:"average_processing_time"`
	TotalProcessingTime   time.Duration `json:"total_processing_time"`

	Results []EvaluationResult `json:"results"`

	EvaluationDate time.Time `json:"evaluation_date"`
	OCREngine      string    `json:"ocr_engine"`
	Provider       string    `json:"provider"`
	Model          string    `json:"model"`
}

// AggregateEvaluationResults aggregates multiple evaluation results. Failed items
// count against exact match and F1, the same as a wrong answer.
func AggregateEvaluationResults(results []EvaluationResult, ocrEngine, provider, model string) *AggregateResults {
	agg := &AggregateResults{
		TotalRecords:   len(results),
		Results:        results,
		EvaluationDate: time.Now(),
		OCREngine:      ocrEngine,
		Provider:       provider,
		Model:          model,
	}

	var f1Scores, similarityScores []float64
	for _, r := range results {
		agg.TotalProcessingTime += r.ProcessingTime
		if strings.TrimSpace(r.ExtractedText) == "" {
			agg.NoTextRecords++
		}

		if r.Error != "" || r.Match == nil {
			agg.FailureCount++
			f1Scores = append(f1Scores, 0)
			similarityScores = append(similarityScores, 0)
			continue
		}

		agg.SuccessCount++
		if r.Match.ExactMatch {
			agg.ExactMatches++
		}
		f1Scores = append(f1Scores, r.Match.F1)
		similarityScores = append(similarityScores, r.Match.Similarity)
	}

	if agg.TotalRecords > 0 {
		agg.ExactMatch = float64(agg.ExactMatches) / float64(agg.TotalRecords)
		agg.AverageProcessingTime = agg.TotalProcessingTime / time.Duration(agg.TotalRecords)
	}
	agg.F1 = calculateAverage(f1Scores)
	agg.Similarity = calculateAverage(similarityScores)

	return agg
}

// calculateAverage calculates the average of a slice of scores
func calculateAverage(scores []float64) float64 {
	if len(scores) == 0 {
		return 0.0
	}

	sum := 0.0
	for _, score := range scores {
		sum += score
	}

	return sum / float64(len(scores))
}

// PrintSummary writes a human-readable summary of the evaluation
func (a *AggregateResults) PrintSummary(w io.Writer) {
	percent := func(n int) float64 {
		if a.TotalRecords == 0 {
			return 0
		}
		return float64(n) / float64(a.TotalRecords) * 100
	}

	fmt.Fprintln(w, "\n"+strings.Repeat("=", 70))
	fmt.Fprintln(w, "ASKIMAGE EVALUATION SUMMARY")
	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintf(w, "Evaluation Date: %s\n", a.EvaluationDate.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "OCR Engine: %s\n", a.OCREngine)
	fmt.Fprintf(w, "Provider: %s\n", a.Provider)
	fmt.Fprintf(w, "Model: %s\n", a.Model)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "PROCESSING STATISTICS")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	fmt.Fprintf(w, "Total Records: %d\n", a.TotalRecords)
	fmt.Fprintf(w, "Successful: %d (%.1f%%)\n", a.SuccessCount, percent(a.SuccessCount))
	fmt.Fprintf(w, "Failed: %d (%.1f%%)\n", a.FailureCount, percent(a.FailureCount))
	fmt.Fprintf(w, "No Text Detected: %d\n", a.NoTextRecords)
	fmt.Fprintf(w, "Average Processing Time: %s\n", a.AverageProcessingTime)
	fmt.Fprintf(w, "Total Processing Time: %s\n", a.TotalProcessingTime)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "ANSWER ACCURACY")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	fmt.Fprintf(w, "Exact Match: %.2f%% (%d/%d)\n", a.ExactMatch*100, a.ExactMatches, a.TotalRecords)
	fmt.Fprintf(w, "Token F1: %.2f%% (%.3f)\n", a.F1*100, a.F1)
	fmt.Fprintf(w, "Similarity: %.2f%% (%.3f)\n", a.Similarity*100, a.Similarity)
	fmt.Fprintln(w, strings.Repeat("=", 70))
}

// SaveToJSON saves the aggregate results to a JSON file
func (a *AggregateResults) SaveToJSON(filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(a); err != nil {
		return fmt.Errorf("failed to encode results to JSON: %w", err)
	}

	return nil
}
