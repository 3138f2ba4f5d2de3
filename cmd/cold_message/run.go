package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/cold-message-generator/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline end to end",
	Long: `Run extracts the resume, classifies its links, summarizes it, drafts a template
for the chosen message type and fills in the recipient and company.

When DATABASE_URL is set every run and its artifacts are recorded.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := loadApp(cmd.Context(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer a.Close()
		return runPipeline(cmd.Context(), a, runOpts, cmd.OutOrStdout())
	},
}

type runOptions struct {
	In          string
	MessageType string
	JobType     string
	Recipient   string
	Company     string
	ResumeLink  string
	Strict      bool
	Out         string
}

var runOpts runOptions

func init() {
	f := runCmd.Flags()
	f.StringVarP(&runOpts.In, "in", "i", "", "Resume file, http(s) URL or s3://bucket/key (required)")
	f.StringVarP(&runOpts.MessageType, "message-type", "m", "", "Message type, see the message-types command (required)")
	f.StringVarP(&runOpts.JobType, "job-type", "j", "", "Role being sought (required)")
	f.StringVarP(&runOpts.Recipient, "recipient", "r", "", "Recipient name (required)")
	f.StringVar(&runOpts.Company, "company", "", "Company name (required)")
	f.StringVar(&runOpts.ResumeLink, "resume-link", "", "Hosted resume URL to include in the message")
	f.BoolVar(&runOpts.Strict, "strict", false, "Fail when the drafted template is missing a placeholder")
	f.StringVarP(&runOpts.Out, "out", "o", "", "Write the message here instead of stdout")

	for _, name := range []string{"in", "message-type", "job-type", "recipient", "company"} {
		if err := runCmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", name, err))
		}
	}

	rootCmd.AddCommand(runCmd)
}

func runPipeline(ctx context.Context, a *app, opts runOptions, out io.Writer) error {
	messageType, err := parseMessageType(opts.MessageType)
	if err != nil {
		return err
	}
	doc, err := a.readDocument(ctx, opts.In)
	if err != nil {
		return fmt.Errorf("failed to extract resume: %w", err)
	}
	if a.printer != nil {
		a.printer.PrintDocument(doc)
	}

	pipelineOpts := []pipeline.Option{
		pipeline.WithFiller(a.filler(opts.Strict)),
		pipeline.WithLogger(a.logger),
	}
	database, err := a.openDB(ctx)
	if err != nil {
		a.logger.Warn("run history unavailable, continuing without it", zap.Error(err))
	} else if database != nil {
		pipelineOpts = append(pipelineOpts, pipeline.WithRecorder(database))
	}
	if a.printer != nil {
		pipelineOpts = append(pipelineOpts, pipeline.WithProgress(a.printer.Progress()))
	}
	p := pipeline.New(a.classifier(), a.summarizer(), a.composer(), pipelineOpts...)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	result, err := p.Run(ctx, pipeline.Request{
		Document:    doc,
		MessageType: messageType,
		JobType:     opts.JobType,
		Recipient:   opts.Recipient,
		Company:     opts.Company,
		ResumeLink:  opts.ResumeLink,
	})
	if err != nil {
		return err
	}
	a.logger.Info("message generated",
		zap.String("session_id", result.Session.ID),
		zap.String("message_type", string(messageType)),
	)
	return writeText(out, opts.Out, result.Message+"\n")
}
