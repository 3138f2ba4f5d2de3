package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Substitute recipient and company into a template",
	Long: "Replaces {recipient_name} and {company_name} in a template. By default a template missing " +
		"a placeholder is filled as far as possible; with --strict it is rejected.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := loadApp(cmd.Context(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer a.Close()
		return runFill(cmd.Context(), a, fillOpts, cmd.OutOrStdout())
	},
}

type fillOptions struct {
	Template  string
	Recipient string
	Company   string
	Strict    bool
	Out       string
}

var fillOpts fillOptions

func init() {
	fillCmd.Flags().StringVarP(&fillOpts.Template, "template", "t", "", "Template file, or - for stdin (required)")
	fillCmd.Flags().StringVarP(&fillOpts.Recipient, "recipient", "r", "", "Recipient name (required)")
	fillCmd.Flags().StringVar(&fillOpts.Company, "company", "", "Company name (required)")
	fillCmd.Flags().BoolVar(&fillOpts.Strict, "strict", false, "Fail when a placeholder is missing from the template")
	fillCmd.Flags().StringVarP(&fillOpts.Out, "out", "o", "", "Write the message here instead of stdout")

	for _, name := range []string{"template", "recipient", "company"} {
		if err := fillCmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", name, err))
		}
	}

	rootCmd.AddCommand(fillCmd)
}

func runFill(_ context.Context, a *app, opts fillOptions, out io.Writer) error {
	template, err := readTemplate(opts.Template, os.Stdin)
	if err != nil {
		return err
	}
	message, err := a.filler(opts.Strict).Fill(template, opts.Recipient, opts.Company)
	if err != nil {
		return fmt.Errorf("failed to fill template: %w", err)
	}
	return writeText(out, opts.Out, strings.TrimRight(message, "\n")+"\n")
}

func readTemplate(path string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read template: %w", err)
	}
	return string(data), nil
}
