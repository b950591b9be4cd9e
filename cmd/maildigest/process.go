package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yashikota/maildigest/internal/config"
	"github.com/yashikota/maildigest/internal/convert"
	"github.com/yashikota/maildigest/internal/database"
	"github.com/yashikota/maildigest/internal/document"
	"github.com/yashikota/maildigest/internal/extract"
	"github.com/yashikota/maildigest/internal/log"
	"github.com/yashikota/maildigest/internal/mail"
	"github.com/yashikota/maildigest/internal/model"
	"github.com/yashikota/maildigest/internal/pipeline"
	"github.com/yashikota/maildigest/internal/report"
	"github.com/yashikota/maildigest/internal/summarize"
	"github.com/yashikota/maildigest/internal/vision/openai"
)

// NewProcessCmd creates the process command.
func NewProcessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process [attachment files...]",
		Short: "Process unread emails into aggregate summary reports",
		Long: `Process fetches unread emails, normalizes their attachments to PDF,
extracts and captions embedded images, summarizes every document through
an assistant analysis session, and writes one aggregate report per email.

Without a mailbox configured, positional arguments are treated as the
attachments of a single synthetic email, which is useful for trying the
pipeline on local files.

Examples:
  # Process a synthetic email with two attachments
  maildigest process report.pdf slides.pptx

  # Output a JSON report to a file
  maildigest process --json -o digest.json report.pdf

  # Use a custom configuration file
  maildigest process -c myconfig.yaml report.pdf`,
		Args: cobra.ArbitraryArgs,
		RunE: runProcessCmd,
	}

	addCommonFlags(cmd)
	cmd.Flags().IntP("poll-limit", "l", config.DefaultPollLimit,
		"Maximum number of unread emails to process per run")

	return cmd
}

// addCommonFlags registers the flags shared by process and summarize.
func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("model", "M", config.DefaultModel,
		"OpenAI model for captioning and summarization")
	cmd.Flags().StringP("profile", "p", config.DefaultProfile,
		"Assistant profile (pdf_summarizer, legal_analyzer, research_helper)")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of documents processed concurrently")
	cmd.Flags().IntP("caption-workers", "w", config.DefaultCaptionWorkers,
		"Number of concurrent caption requests")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .maildigest in current or home directory)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
}

// runProcessCmd executes the process command.
func runProcessCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	cfg.PollLimit, err = cmd.Flags().GetInt("poll-limit")
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(os.Stderr, getVerboseFlag(cmd))
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return runProcess(ctx, cfg, logger)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// File settings apply before flags so flags win.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		file.Apply(cfg)
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	if cmd.Flags().Changed("model") {
		if cfg.Model, err = cmd.Flags().GetString("model"); err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("profile") {
		if cfg.Profile, err = cmd.Flags().GetString("profile"); err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("batch") {
		if cfg.BatchSize, err = cmd.Flags().GetInt("batch"); err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("caption-workers") {
		if cfg.CaptionWorkers, err = cmd.Flags().GetInt("caption-workers"); err != nil {
			return nil, err
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.Targets = args

	return cfg, nil
}

// components bundles the wired processing stack shared by the process
// and summarize commands.
type components struct {
	db        *database.SeenDB
	agent     *summarize.Agent
	converter *convert.Converter
	batch     *pipeline.BatchProcessor
}

// buildComponents wires the processing stack from configuration.
func buildComponents(cfg *config.Config, logger *slog.Logger) (*components, error) {
	db := database.OpenOrPassthrough(cfg.DataDir, database.DefaultOptions(), logger)

	client := openai.NewClient(cfg.APIKey, cfg.Model, cfg.RequestTimeout,
		openai.WithTemperature(cfg.CaptionTemperature),
		openai.WithMaxCaptionTokens(cfg.MaxCaptionTokens))

	agent, err := summarize.NewAgent(client, cfg, logger)
	if err != nil {
		_ = db.Close() //nolint:errcheck // Best effort cleanup
		return nil, err
	}

	extractor := extract.New(db,
		extract.WithIconMaxDimension(cfg.IconMaxDimension),
		extract.WithLogger(logger))
	pool := summarize.NewCaptionerPool(client, cfg.CaptionWorkers, cfg.CaptionDelay, logger)
	reader := document.NewPDFReader()
	scratchDir := filepath.Join(cfg.ScratchDir, "images")

	factory := func() *pipeline.Pipeline {
		p := pipeline.New(pipeline.WithLogger(logger))
		p.AddSteps(
			pipeline.NewExtractStep(reader, extractor, scratchDir, pipeline.WithExtractLogger(logger)),
			pipeline.NewCaptionStep(pool),
			pipeline.NewSummarizeStep(agent),
		)
		return p
	}

	return &components{
		db:    db,
		agent: agent,
		converter: convert.New(filepath.Join(cfg.ScratchDir, "converted"),
			convert.WithTimeout(cfg.ConvertTimeout),
			convert.WithLogger(logger)),
		batch: pipeline.NewBatchProcessor(factory,
			pipeline.WithConcurrency(cfg.BatchSize),
			pipeline.WithBatchLogger(logger)),
	}, nil
}

// runProcess fetches unread emails and writes one aggregate report per
// email.
func runProcess(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	comps, err := buildComponents(cfg, logger)
	if err != nil {
		return err
	}
	defer comps.db.Close()

	source := newSource(cfg)
	defer func() {
		if err := source.Disconnect(); err != nil {
			logger.Warn("mail source disconnect failed", "error", err)
		}
	}()

	messages, err := source.ListUnread(ctx, cfg.PollLimit)
	if err != nil {
		return fmt.Errorf("failed to list unread emails: %w", err)
	}
	if len(messages) == 0 {
		fmt.Println("No unread emails to process.")
		return nil
	}

	logger.Info("processing emails", "count", len(messages))

	for i := range messages {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rep, err := processEmail(ctx, cfg, comps, &messages[i], logger)
		if err != nil {
			return err
		}

		if err := outputReport(cfg, rep); err != nil {
			return fmt.Errorf("failed to write report for %q: %w", messages[i].Subject, err)
		}
	}

	return nil
}

// newSource selects the mail source. Positional arguments feed a stub
// source carrying one synthetic email.
func newSource(cfg *config.Config) mail.Source {
	return mail.NewStubSource(cfg.Targets...)
}

// processEmail runs the full pipeline for one email: the body summary
// plus one artifact per attachment, merged into an aggregate report.
// Per-attachment failures never abort the email; they surface as
// failure artifacts at the attachment's position.
func processEmail(ctx context.Context, cfg *config.Config, comps *components, msg *model.EmailMessage, logger *slog.Logger) (*model.AggregateReport, error) {
	artifacts := make([]model.SummaryArtifact, len(msg.Attachments))

	// Normalize attachments to PDF. Conversion failures take their
	// position in the artifact list immediately.
	jobs := make([]*model.DocumentJob, 0, len(msg.Attachments))
	jobPositions := make([]int, 0, len(msg.Attachments))

	for i, att := range msg.Attachments {
		pdfPath, err := comps.converter.Normalize(ctx, att.Path)
		if err != nil {
			logger.Warn("attachment conversion failed",
				"attachment", att.Filename,
				"error", err)
			artifacts[i] = model.NewFailureArtifact(att.Filename, "conversion failed: "+err.Error())
			continue
		}

		jobs = append(jobs, model.NewDocumentJob(pdfPath, att.Filename))
		jobPositions = append(jobPositions, i)
	}

	results, err := comps.batch.ProcessBatch(ctx, jobs)
	if err != nil {
		return nil, err
	}
	for k, artifact := range results {
		artifacts[jobPositions[k]] = artifact
	}

	emailSummary := summarizeBody(ctx, comps.agent, msg)

	return model.NewAggregateReport(*msg, emailSummary, artifacts), nil
}

// summarizeBody produces the email-level artifact. A failed body
// summary is reported, not fatal.
func summarizeBody(ctx context.Context, agent *summarize.Agent, msg *model.EmailMessage) model.SummaryArtifact {
	summary, err := agent.SummarizeEmailBody(ctx, msg.Body)
	if err != nil {
		return model.NewFailureArtifact("email body", "body summary failed: "+err.Error())
	}
	return model.NewSummaryArtifact("email body", summary, nil)
}

// outputReport writes the aggregate report in the requested format to
// the configured destination.
func outputReport(cfg *config.Config, rep *model.AggregateReport) error {
	output, closeFn, err := reportDestination(cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	_, err = newReportWriter(cfg, output).Write(rep)
	return err
}

// reportDestination opens the report output: the configured file, or
// stdout when none is set.
func reportDestination(cfg *config.Config) (*os.File, func(), error) {
	if cfg.ReportFile == "" {
		return os.Stdout, func() {}, nil
	}

	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Reports can quote document contents, so owner-only permissions.
	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// newReportWriter selects the report format. Markdown is the default.
func newReportWriter(cfg *config.Config, output *os.File) report.Writer {
	if cfg.JSONReport {
		return report.NewJSONWriter(output, report.WithPrettyPrint())
	}
	return report.NewMarkdownWriter(output)
}
