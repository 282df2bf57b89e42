package cmd

import (
	"github.com/lehigh-university-libraries/askimage/internal/evalcmd"
	"github.com/spf13/cobra"
)

func newEvalCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "OCR + question answering evaluation tools",
		Long: `Evaluation tools for measuring how well extracted-text question answering works.

Supports fetching datasets from the Hugging Face hub, running evaluations that
score answers against reference answers, and printing saved reports.`,
	}

	// Add eval subcommands
	cmd.AddCommand(evalcmd.NewFetchCmd())
	cmd.AddCommand(evalcmd.NewRunCmd(opts.loadConfig))
	cmd.AddCommand(evalcmd.NewReportCmd())

	return cmd
}
