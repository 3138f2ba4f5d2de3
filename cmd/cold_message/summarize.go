package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Extract a structured summary from a resume",
	Long: "Summarizes a resume into name, contact details, skills, experience, education, projects and career level. " +
		"The output is validated against the summary schema before it is written.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := loadApp(cmd.Context(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer a.Close()
		return runSummarize(cmd.Context(), a, summarizeOpts, cmd.OutOrStdout())
	},
}

type summarizeOptions struct {
	In  string
	Out string
}

var summarizeOpts summarizeOptions

func init() {
	summarizeCmd.Flags().StringVarP(&summarizeOpts.In, "in", "i", "", "Resume file (.pdf, .docx, .html, .txt, .md), http(s) URL or s3://bucket/key (required)")
	summarizeCmd.Flags().StringVarP(&summarizeOpts.Out, "out", "o", "", "Write the summary JSON here instead of stdout")

	if err := summarizeCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(ctx context.Context, a *app, opts summarizeOptions, out io.Writer) error {
	doc, err := a.readDocument(ctx, opts.In)
	if err != nil {
		return fmt.Errorf("failed to extract resume: %w", err)
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	summary, err := a.summarizer().Summarize(ctx, doc.Text)
	if err != nil {
		return fmt.Errorf("failed to summarize resume: %w", err)
	}
	if a.printer != nil {
		a.printer.PrintSummary(summary)
	}
	return writeJSON(out, opts.Out, summary)
}
