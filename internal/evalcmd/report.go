package evalcmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/lehigh-university-libraries/askimage/internal/eval/results"
)

func executeReport(out io.Writer, resultsPath, format string) error {
	spec, err := results.LoadYAML(resultsPath)
	if err != nil {
		return err
	}

	switch format {
	case "text":
		return printTextReport(out, spec)
	case "json":
		return printJSONReport(out, spec)
	case "csv":
		return printCSVReport(out, spec)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func printTextReport(out io.Writer, spec *results.EvalSpec) error {
	fmt.Fprintln(out, "========================================")
	fmt.Fprintln(out, "Image Question Answering Report")
	fmt.Fprintln(out, "========================================")
	fmt.Fprintf(out, "OCR Engine: %s\n", spec.Config.OCREngine)
	fmt.Fprintf(out, "Provider:   %s\n", spec.Config.Provider)
	fmt.Fprintf(out, "Model:      %s\n", spec.Config.Model)
	fmt.Fprintf(out, "Dataset:    %s\n", spec.Config.DatasetPath)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Items:       %d (%d failed)\n", spec.Summary.Total, spec.Summary.Failed)
	fmt.Fprintf(out, "Exact Match: %.2f%%\n", spec.Summary.ExactMatch*100)
	fmt.Fprintf(out, "Token F1:    %.2f%%\n", spec.Summary.F1*100)

	fmt.Fprintln(out, "\nDetailed Results:")
	fmt.Fprintln(out, "========================================")

	for i, r := range spec.Results {
		fmt.Fprintf(out, "\n[%d] %s: %s\n", i+1, r.Identifier, r.Question)
		if r.Error != "" {
			fmt.Fprintf(out, "  Error: %s\n", r.Error)
			continue
		}
		fmt.Fprintf(out, "  Prediction: %s\n", r.Prediction)
		fmt.Fprintf(out, "  References: %s\n", strings.Join(r.References, " | "))
		fmt.Fprintf(out, "  F1: %.2f  Exact: %v  (%s)\n", r.F1, r.ExactMatch, r.Method)
		if r.ExtractedText != "" {
			fmt.Fprintf(out, "  Text: %s\n", truncate(strings.Join(strings.Fields(r.ExtractedText), " "), 80))
		}
	}

	return nil
}

func printJSONReport(out io.Writer, spec *results.EvalSpec) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(spec)
}

func printCSVReport(out io.Writer, spec *results.EvalSpec) error {
	writer := csv.NewWriter(out)

	header := []string{"ID", "Question", "Prediction", "References", "Exact Match", "F1", "Error"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, r := range spec.Results {
		row := []string{
			r.Identifier,
			r.Question,
			r.Prediction,
			strings.Join(r.References, "|"),
			fmt.Sprintf("%v", r.ExactMatch),
			fmt.Sprintf("%.4f", r.F1),
			r.Error,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
