package evalcmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/lehigh-university-libraries/askimage/internal/eval/dataset"
	"github.com/lehigh-university-libraries/askimage/internal/eval/metrics"
	"github.com/lehigh-university-libraries/askimage/internal/eval/results"
	"github.com/lehigh-university-libraries/askimage/internal/pipeline"
	"github.com/lehigh-university-libraries/askimage/internal/wizard"
)

// Runner pushes one image and question through the wizard.
type Runner interface {
	Run(ctx context.Context, imageRef, question string) (wizard.View, error)
}

type runOptions struct {
	DatasetPath string
	BaseDir     string
	OutputDir   string
	Concurrency int
	OCREngine   string
	Provider    string
	Model       string
}

func executeRun(ctx context.Context, out io.Writer, runner Runner, opts runOptions, items []dataset.Item) error {
	slog.Info("Starting evaluation run", "dataset", opts.DatasetPath, "items", len(items), "provider", opts.Provider, "model", opts.Model)

	evalResults := evaluateItems(ctx, runner, opts, items)

	agg := metrics.AggregateEvaluationResults(evalResults, opts.OCREngine, opts.Provider, opts.Model)
	agg.PrintSummary(out)

	path, err := results.SaveToYAML(opts.OutputDir, opts.DatasetPath, agg)
	if err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}

	fmt.Fprintf(out, "\nResults saved to: %s\n", path)
	fmt.Fprintf(out, "\nPrint them again with:\n")
	fmt.Fprintf(out, "  askimage eval report --results %s\n", path)

	return nil
}

// evaluateItems processes items with bounded concurrency and returns results in dataset order.
func evaluateItems(ctx context.Context, runner Runner, opts runOptions, items []dataset.Item) []metrics.EvaluationResult {
	concurrency := max(opts.Concurrency, 1)
	slog.Info("Processing items", "concurrency", concurrency)

	type indexed struct {
		idx    int
		result metrics.EvaluationResult
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, concurrency)
	resultsChan := make(chan indexed, len(items))

	for i, item := range items {
		wg.Add(1)
		go func(idx int, item dataset.Item) {
			defer wg.Done()
			semaphore <- struct{}{}        // Acquire
			defer func() { <-semaphore }() // Release

			slog.Info("Processing item", "id", item.ID, "progress", fmt.Sprintf("%d/%d", idx+1, len(items)))
			resultsChan <- indexed{idx: idx, result: processItem(ctx, runner, opts.BaseDir, item)}
		}(i, item)
	}

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	collected := make([]indexed, 0, len(items))
	for r := range resultsChan {
		collected = append(collected, r)
	}
	sort.Slice(collected, func(i, j int) bool { return collected[i].idx < collected[j].idx })

	out := make([]metrics.EvaluationResult, len(collected))
	for i, r := range collected {
		out[i] = r.result
	}
	return out
}

func processItem(ctx context.Context, runner Runner, baseDir string, item dataset.Item) metrics.EvaluationResult {
	start := time.Now()
	result := metrics.EvaluationResult{
		ID:         item.ID,
		Question:   item.Question,
		References: item.Answers,
	}

	view, err := runner.Run(ctx, item.ResolveImagePath(baseDir), item.Question)
	if err != nil {
		result.Error = err.Error()
		result.ProcessingTime = time.Since(start)
		return result
	}

	if view.Extraction != nil {
		result.ExtractedText = view.Extraction.Text
	}
	if msg, failed := pipeline.Failed(view); failed {
		result.Error = msg
		result.ProcessingTime = time.Since(start)
		return result
	}

	// no text or no answer both score as an empty prediction
	prediction := ""
	if view.Answer != nil {
		prediction = view.Answer.Text
	}
	match := metrics.ScoreAnswer(prediction, item.Answers)
	result.Match = &match
	result.ProcessingTime = time.Since(start)

	return result
}
