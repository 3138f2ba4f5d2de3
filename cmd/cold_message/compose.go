package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/cold-message-generator/internal/types"
)

var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Draft a message template from a summary",
	Long: "Drafts a cold email or LinkedIn message for the given message type and job type. " +
		"The template keeps {recipient_name} and {company_name} for the fill command.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := loadApp(cmd.Context(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer a.Close()
		return runCompose(cmd.Context(), a, composeOpts, cmd.OutOrStdout())
	},
}

type composeOptions struct {
	Summary     string
	SummaryFile string
	MessageType string
	JobType     string
	Links       types.LinkMap
	Out         string
}

var composeOpts composeOptions

func init() {
	f := composeCmd.Flags()
	f.StringVar(&composeOpts.Summary, "summary", "", "Summary text")
	f.StringVar(&composeOpts.SummaryFile, "summary-file", "", "File holding the summary text, or a summary JSON from the summarize command")
	f.StringVarP(&composeOpts.MessageType, "message-type", "m", "", "Message type, see the message-types command (required)")
	f.StringVarP(&composeOpts.JobType, "job-type", "j", "", "Role being sought (required)")
	f.StringVar(&composeOpts.Links.LinkedIn, "linkedin", "", "LinkedIn profile URL")
	f.StringVar(&composeOpts.Links.GitHub, "github", "", "GitHub profile URL")
	f.StringVar(&composeOpts.Links.Portfolio, "portfolio", "", "Portfolio URL")
	f.StringVar(&composeOpts.Links.Blog, "blog", "", "Blog URL")
	f.StringVar(&composeOpts.Links.Resume, "resume", "", "Hosted resume URL")
	f.StringVarP(&composeOpts.Out, "out", "o", "", "Write the template here instead of stdout")

	composeCmd.MarkFlagsMutuallyExclusive("summary", "summary-file")
	composeCmd.MarkFlagsOneRequired("summary", "summary-file")
	for _, name := range []string{"message-type", "job-type"} {
		if err := composeCmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", name, err))
		}
	}

	rootCmd.AddCommand(composeCmd)
}

func runCompose(ctx context.Context, a *app, opts composeOptions, out io.Writer) error {
	messageType, err := parseMessageType(opts.MessageType)
	if err != nil {
		return err
	}
	summary := opts.Summary
	if opts.SummaryFile != "" {
		if summary, err = readSummaryFile(opts.SummaryFile); err != nil {
			return err
		}
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	in := types.NewUserInput(summary, opts.Links, messageType, opts.JobType)
	template, err := a.composer().Compose(ctx, in)
	if err != nil {
		return fmt.Errorf("failed to compose message: %w", err)
	}
	if a.printer != nil {
		a.printer.PrintTemplate(template)
	}
	return writeText(out, opts.Out, strings.TrimRight(template, "\n")+"\n")
}

// readSummaryFile accepts plain text or the JSON written by the summarize
// command, whose professional_summary is used.
func readSummaryFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read summary file: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if strings.HasPrefix(text, "{") {
		var summary types.Summary
		if err := json.Unmarshal(data, &summary); err != nil {
			return "", fmt.Errorf("failed to parse summary file: %w", err)
		}
		if strings.TrimSpace(summary.ProfessionalSummary) == "" {
			return "", fmt.Errorf("summary file has no professional_summary")
		}
		return summary.ProfessionalSummary, nil
	}
	return text, nil
}

// parseMessageType resolves a message type, listing the valid ones on failure.
func parseMessageType(name string) (types.MessageType, error) {
	mt, err := types.ParseMessageType(name)
	if err != nil {
		valid := make([]string, len(types.MessageTypes))
		for i, t := range types.MessageTypes {
			valid[i] = fmt.Sprintf("%q", t)
		}
		return "", fmt.Errorf("%w; valid types are %s", err, strings.Join(valid, ", "))
	}
	return mt, nil
}
