package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/yashikota/maildigest/internal/config"
	"github.com/yashikota/maildigest/internal/log"
	"github.com/yashikota/maildigest/internal/model"
)

// NewSummarizeCmd creates the summarize command.
func NewSummarizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summarize <files...>",
		Short: "Summarize local documents without touching a mailbox",
		Long: `Summarize runs the document pipeline on local files: each file is
normalized to PDF, its embedded images are extracted and captioned, and
the document is summarized through an assistant analysis session. One
summary is written per file.

Examples:
  # Summarize a single PDF
  maildigest summarize report.pdf

  # Summarize a Word document and a slide deck as JSON
  maildigest summarize --json memo.docx slides.pptx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSummarizeCmd,
	}

	addCommonFlags(cmd)

	return cmd
}

// runSummarizeCmd executes the summarize command.
func runSummarizeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
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

	return runSummarize(ctx, cfg, logger)
}

// runSummarize processes each target file through the document
// pipeline and writes the resulting artifacts.
func runSummarize(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	comps, err := buildComponents(cfg, logger)
	if err != nil {
		return err
	}
	defer comps.db.Close()

	artifacts, err := summarizeTargets(ctx, comps, cfg.Targets, logger)
	if err != nil {
		return err
	}

	return outputArtifacts(cfg, artifacts)
}

// summarizeTargets runs the document pipeline over the given files and
// returns one artifact per file in input order. Conversion failures
// take their position as failure artifacts.
func summarizeTargets(ctx context.Context, comps *components, targets []string, logger *slog.Logger) ([]model.SummaryArtifact, error) {
	artifacts := make([]model.SummaryArtifact, len(targets))

	jobs := make([]*model.DocumentJob, 0, len(targets))
	jobPositions := make([]int, 0, len(targets))

	for i, target := range targets {
		pdfPath, err := comps.converter.Normalize(ctx, target)
		if err != nil {
			logger.Warn("conversion failed", "file", target, "error", err)
			artifacts[i] = model.NewFailureArtifact(target, "conversion failed: "+err.Error())
			continue
		}
		jobs = append(jobs, model.NewDocumentJob(pdfPath, target))
		jobPositions = append(jobPositions, i)
	}

	results, err := comps.batch.ProcessBatch(ctx, jobs)
	if err != nil {
		return nil, err
	}
	for k, artifact := range results {
		artifacts[jobPositions[k]] = artifact
	}

	return artifacts, nil
}

// outputArtifacts writes each document artifact in the requested
// format to the configured destination.
func outputArtifacts(cfg *config.Config, artifacts []model.SummaryArtifact) error {
	output, closeFn, err := reportDestination(cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	w := newReportWriter(cfg, output)
	for i := range artifacts {
		if _, err := w.WriteArtifact(&artifacts[i]); err != nil {
			return err
		}
	}
	return nil
}
