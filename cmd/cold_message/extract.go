package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonathan/cold-message-generator/internal/ingestion"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract text and links from a resume",
	Long: "Reads a PDF, DOCX, HTML or text resume from disk or from s3://bucket/key and prints the cleaned text, " +
		"the links found in it and the document metadata as JSON.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := loadApp(cmd.Context(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer a.Close()
		return runExtract(cmd.Context(), a, extractOpts, cmd.OutOrStdout())
	},
}

type extractOptions struct {
	In     string
	Out    string
	OutDir string
}

var extractOpts extractOptions

func init() {
	extractCmd.Flags().StringVarP(&extractOpts.In, "in", "i", "", "Resume file, http(s) URL or s3://bucket/key (required)")
	extractCmd.Flags().StringVarP(&extractOpts.Out, "out", "o", "", "Write the JSON document here instead of stdout")
	extractCmd.Flags().StringVar(&extractOpts.OutDir, "out-dir", "", "Also write resume.cleaned.txt and resume.meta.json to this directory")

	if err := extractCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(extractCmd)
}

func runExtract(ctx context.Context, a *app, opts extractOptions, out io.Writer) error {
	doc, err := a.readDocument(ctx, opts.In)
	if err != nil {
		return fmt.Errorf("failed to extract resume: %w", err)
	}
	if a.printer != nil {
		a.printer.PrintDocument(doc)
	}

	if opts.OutDir != "" {
		if err := ingestion.WriteOutput(opts.OutDir, doc); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return writeJSON(out, opts.Out, doc)
}
