package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var classifyLinksCmd = &cobra.Command{
	Use:   "classify-links",
	Short: "Map raw links to LinkedIn, GitHub, portfolio and blog",
	Long: "Classifies profile links with the text-generation provider. Classification never fails: " +
		"when the provider errors or answers with something unusable the result is an empty mapping.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := loadApp(cmd.Context(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer a.Close()
		return runClassifyLinks(cmd.Context(), a, classifyOpts, cmd.OutOrStdout())
	},
}

type classifyOptions struct {
	In    string
	Links []string
	Out   string
}

var classifyOpts classifyOptions

func init() {
	classifyLinksCmd.Flags().StringVarP(&classifyOpts.In, "in", "i", "", "File with one link per line")
	classifyLinksCmd.Flags().StringSliceVarP(&classifyOpts.Links, "link", "l", nil, "Link to classify (repeatable)")
	classifyLinksCmd.Flags().StringVarP(&classifyOpts.Out, "out", "o", "", "Write the JSON mapping here instead of stdout")

	rootCmd.AddCommand(classifyLinksCmd)
}

func runClassifyLinks(ctx context.Context, a *app, opts classifyOptions, out io.Writer) error {
	raw := append([]string(nil), opts.Links...)
	if opts.In != "" {
		fromFile, err := readLinks(opts.In)
		if err != nil {
			return err
		}
		raw = append(raw, fromFile...)
	}
	if opts.In == "" && len(opts.Links) == 0 {
		return fmt.Errorf("either --in or --link must be provided")
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	result := a.classifier().Classify(ctx, raw)
	if a.printer != nil {
		a.printer.PrintLinks(result)
	}
	return writeJSON(out, opts.Out, result)
}

// readLinks reads one link per line. Blank lines and lines starting with # are skipped.
func readLinks(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open links file: %w", err)
	}
	defer f.Close()

	var result []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		result = append(result, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read links file: %w", err)
	}
	return result, nil
}
