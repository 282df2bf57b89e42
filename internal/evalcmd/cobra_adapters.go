package evalcmd

import (
	"fmt"
	"os"

	"github.com/lehigh-university-libraries/askimage/internal/config"
	"github.com/lehigh-university-libraries/askimage/internal/eval/dataset"
	"github.com/lehigh-university-libraries/askimage/internal/pipeline"
	"github.com/spf13/cobra"
)

// ConfigLoader returns the application configuration, resolved by the root command.
type ConfigLoader func() (*config.Config, error)

// NewRunCmd creates the run command for scoring OCR + QA against a dataset
func NewRunCmd(loadConfig ConfigLoader) *cobra.Command {
	var datasetPath string
	var outputDir string
	var sampleSize int
	var concurrency int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate answers against a question/answer dataset",
		Long: `Runs every dataset item through OCR and the question-answering backend and scores
the answers SQuAD-style (exact match and token F1) against the reference answers.

Datasets are .parquet, .jsonl or .yaml files of items with id, image_path,
question and answers. Relative image paths are resolved against the dataset's directory.`,
		Example: `  # Evaluate 10 items with the configured backend
  askimage eval run --dataset ./data/docvqa.jsonl --sample 10

  # Evaluate everything with four workers
  askimage eval run --dataset ./data/docvqa.parquet --sample -1 --concurrency 4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(datasetPath); os.IsNotExist(err) {
				return fmt.Errorf("dataset file not found: %s", datasetPath)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			svc, err := pipeline.NewService(cfg)
			if err != nil {
				return err
			}
			if !svc.QA.HasCredential() {
				return fmt.Errorf("API token not found. Please set the %s environment variable", cfg.QA.CredentialEnv)
			}

			loader := dataset.NewLoader(datasetPath)
			items, err := loader.LoadSample(sampleSize)
			if err != nil {
				return fmt.Errorf("failed to load dataset: %w", err)
			}

			return executeRun(cmd.Context(), cmd.OutOrStdout(), svc, runOptions{
				DatasetPath: datasetPath,
				BaseDir:     loader.BaseDir(),
				OutputDir:   outputDir,
				Concurrency: concurrency,
				OCREngine:   svc.Extractor.EngineName(),
				Provider:    svc.QA.BackendName(),
				Model:       svc.QA.Model(),
			}, items)
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset", "", "Path to dataset file (.parquet, .jsonl or .yaml)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "evals", "Directory for YAML results")
	cmd.Flags().IntVar(&sampleSize, "sample", 10, "Number of items to evaluate (-1 for all)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 1, "Number of items to process in parallel")

	_ = cmd.MarkFlagRequired("dataset")
	return cmd
}

// NewFetchCmd creates the fetch command for downloading a dataset file from Hugging Face
func NewFetchCmd() *cobra.Command {
	var repo string
	var file string
	var cacheDir string
	var force bool

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download a dataset file from the Hugging Face hub",
		Long: `Downloads one file of a Hugging Face dataset repository into the local cache and
prints its path. HF_TOKEN is sent when set, for private or gated datasets.`,
		Example: `  askimage eval fetch --repo my-org/receipts-qa --file data/test.jsonl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			d := dataset.NewDownloader(dataset.DownloadConfig{
				CacheDir:      cacheDir,
				ForceDownload: force,
				Token:         os.Getenv("HF_TOKEN"),
			})
			path, err := d.Download(cmd.Context(), repo, file)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&repo, "repo", "", "Dataset repository (owner/name)")
	cmd.Flags().StringVar(&file, "file", "", "File within the repository")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", dataset.DefaultCacheDir, "Cache directory")
	cmd.Flags().BoolVar(&force, "force", false, "Download even when a cached copy exists")

	_ = cmd.MarkFlagRequired("repo")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// NewReportCmd creates the report command for printing a saved evaluation
func NewReportCmd() *cobra.Command {
	var resultsPath string
	var format string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a saved evaluation",
		Example: `  askimage eval report --results evals/deepset_roberta-base-squad2-2025-01-02_03-04-05.yaml
  askimage eval report --results evals/run.yaml --format csv > run.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeReport(cmd.OutOrStdout(), resultsPath, format)
		},
	}

	cmd.Flags().StringVar(&resultsPath, "results", "", "Path to a YAML results file")
	cmd.Flags().StringVar(&format, "format", "text", "Output format (text, json or csv)")

	_ = cmd.MarkFlagRequired("results")
	return cmd
}
