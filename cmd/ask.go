package cmd

import (
	"errors"
	"fmt"

	"github.com/lehigh-university-libraries/askimage/internal/pipeline"
	"github.com/spf13/cobra"
)

func newAskCmd(opts *rootOptions) *cobra.Command {
	var imageRef string
	var question string
	var showText bool

	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Answer one question about one image",
		Example: `  askimage ask --image receipt.jpg --question "What is the total?"
  askimage ask --image https://example.org/sign.png --question "What does the sign say?" --show-text`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			svc, err := pipeline.NewService(cfg)
			if err != nil {
				return err
			}

			view, err := svc.Run(cmd.Context(), imageRef, question)
			if err != nil {
				return err
			}
			if msg, failed := pipeline.Failed(view); failed {
				return errors.New(msg)
			}

			out := cmd.OutOrStdout()
			if view.Extraction != nil && (showText || view.Extraction.Text == "") {
				if view.Extraction.Text != "" {
					fmt.Fprintf(out, "Extracted text:\n%s\n\n", view.Extraction.Text)
				} else {
					fmt.Fprintln(out, view.Extraction.Result.Message)
				}
			}
			if view.Answer != nil {
				if view.Answer.Text != "" {
					fmt.Fprintln(out, view.Answer.Text)
				} else {
					fmt.Fprintln(out, view.Answer.Result.Message)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&imageRef, "image", "i", "", "Image path or http(s) URL (png or jpeg)")
	cmd.Flags().StringVarP(&question, "question", "q", "", "Question about the text in the image")
	cmd.Flags().BoolVar(&showText, "show-text", false, "Print the extracted text before the answer")

	_ = cmd.MarkFlagRequired("image")
	_ = cmd.MarkFlagRequired("question")
	return cmd
}
