package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/yashikota/maildigest/internal/config"
	"github.com/yashikota/maildigest/internal/convert"
	"github.com/yashikota/maildigest/internal/database"
	"github.com/yashikota/maildigest/internal/document"
	"github.com/yashikota/maildigest/internal/extract"
	"github.com/yashikota/maildigest/internal/model"
	"github.com/yashikota/maildigest/internal/pipeline"
	"github.com/yashikota/maildigest/internal/summarize"
	"github.com/yashikota/maildigest/internal/vision/mock"
)

// TestNewProcessCmd tests the process command creation.
func TestNewProcessCmd(t *testing.T) {
	t.Parallel()

	cmd := NewProcessCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "process [attachment files...]" {
			t.Errorf("expected use 'process [attachment files...]', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has long description", func(t *testing.T) {
		t.Parallel()
		if cmd.Long == "" {
			t.Error("expected non-empty long description")
		}
	})

	t.Run("has model flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("model")
		if flag == nil {
			t.Fatal("expected model flag")
		}
		if flag.Shorthand != "M" {
			t.Errorf("expected shorthand 'M', got %q", flag.Shorthand)
		}
		if flag.DefValue != config.DefaultModel {
			t.Errorf("expected default %q, got %q", config.DefaultModel, flag.DefValue)
		}
	})

	t.Run("has profile flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("profile")
		if flag == nil {
			t.Fatal("expected profile flag")
		}
		if flag.Shorthand != "p" {
			t.Errorf("expected shorthand 'p', got %q", flag.Shorthand)
		}
	})

	t.Run("has batch flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("batch")
		if flag == nil {
			t.Fatal("expected batch flag")
		}
		if flag.Shorthand != "b" {
			t.Errorf("expected shorthand 'b', got %q", flag.Shorthand)
		}
	})

	t.Run("has caption-workers flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("caption-workers")
		if flag == nil {
			t.Fatal("expected caption-workers flag")
		}
		if flag.Shorthand != "w" {
			t.Errorf("expected shorthand 'w', got %q", flag.Shorthand)
		}
	})

	t.Run("has poll-limit flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("poll-limit")
		if flag == nil {
			t.Fatal("expected poll-limit flag")
		}
		if flag.Shorthand != "l" {
			t.Errorf("expected shorthand 'l', got %q", flag.Shorthand)
		}
	})

	t.Run("has config flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("config")
		if flag == nil {
			t.Fatal("expected config flag")
		}
		if flag.Shorthand != "c" {
			t.Errorf("expected shorthand 'c', got %q", flag.Shorthand)
		}
	})

	t.Run("has json flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("json")
		if flag == nil {
			t.Fatal("expected json flag")
		}
		if flag.Shorthand != "j" {
			t.Errorf("expected shorthand 'j', got %q", flag.Shorthand)
		}
	})

	t.Run("has markdown flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("markdown")
		if flag == nil {
			t.Fatal("expected markdown flag")
		}
		if flag.Shorthand != "m" {
			t.Errorf("expected shorthand 'm', got %q", flag.Shorthand)
		}
	})

	t.Run("has output flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("output")
		if flag == nil {
			t.Fatal("expected output flag")
		}
		if flag.Shorthand != "o" {
			t.Errorf("expected shorthand 'o', got %q", flag.Shorthand)
		}
	})
}

// TestGetVerboseFlag tests the verbose flag retrieval.
func TestGetVerboseFlag(t *testing.T) {
	t.Run("returns false when flag not set", func(t *testing.T) {
		cmd := NewProcessCmd()
		result := getVerboseFlag(cmd)
		if result {
			t.Error("expected false when flag not set")
		}
	})

	t.Run("returns value from parent verbose flag", func(t *testing.T) {
		root := NewRootCmd()
		_ = root.PersistentFlags().Set("verbose", "true")

		processCmd, _, err := root.Find([]string{"process"})
		if err != nil {
			t.Fatalf("failed to find process command: %v", err)
		}

		result := getVerboseFlag(processCmd)
		if !result {
			t.Error("expected true from parent verbose flag")
		}
	})
}

// TestBuildConfig tests configuration building from flags.
func TestBuildConfig(t *testing.T) {
	t.Run("builds config with default values", func(t *testing.T) {
		cmd := NewProcessCmd()
		cfg, err := buildConfig(cmd, []string{"report.pdf"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg == nil {
			t.Fatal("expected non-nil config")
		}
		if len(cfg.Targets) != 1 || cfg.Targets[0] != "report.pdf" {
			t.Errorf("expected targets [report.pdf], got %v", cfg.Targets)
		}
		if cfg.Model != config.DefaultModel {
			t.Errorf("expected model %q, got %q", config.DefaultModel, cfg.Model)
		}
		if cfg.BatchSize != config.DefaultBatchSize {
			t.Errorf("expected batch size %d, got %d", config.DefaultBatchSize, cfg.BatchSize)
		}
	})

	t.Run("builds config with custom model", func(t *testing.T) {
		cmd := NewProcessCmd()
		_ = cmd.Flags().Set("model", "gpt-4o-mini")
		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Model != "gpt-4o-mini" {
			t.Errorf("expected model 'gpt-4o-mini', got %q", cfg.Model)
		}
	})

	t.Run("builds config with custom batch size", func(t *testing.T) {
		cmd := NewProcessCmd()
		_ = cmd.Flags().Set("batch", "5")
		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.BatchSize != 5 {
			t.Errorf("expected BatchSize 5, got %d", cfg.BatchSize)
		}
	})

	t.Run("builds config with JSON flag", func(t *testing.T) {
		cmd := NewProcessCmd()
		_ = cmd.Flags().Set("json", "true")
		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !cfg.JSONReport {
			t.Error("expected JSONReport to be true")
		}
	})

	t.Run("builds config with output file", func(t *testing.T) {
		cmd := NewProcessCmd()
		_ = cmd.Flags().Set("output", "/tmp/digest.md")
		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.ReportFile != "/tmp/digest.md" {
			t.Errorf("expected ReportFile '/tmp/digest.md', got %q", cfg.ReportFile)
		}
	})

	t.Run("builds config with multiple targets", func(t *testing.T) {
		cmd := NewProcessCmd()
		cfg, err := buildConfig(cmd, []string{"a.pdf", "b.docx", "c.pptx"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(cfg.Targets) != 3 {
			t.Errorf("expected 3 targets, got %d", len(cfg.Targets))
		}
	})

	t.Run("loads config file when specified", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, ".maildigest")

		content := []byte(`
model: gpt-4o-mini
batchSize: 7
pollLimit: 2
`)
		if err := os.WriteFile(configPath, content, 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewProcessCmd()
		_ = cmd.Flags().Set("config", configPath)
		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Model != "gpt-4o-mini" {
			t.Errorf("expected model 'gpt-4o-mini', got %q", cfg.Model)
		}
		if cfg.BatchSize != 7 {
			t.Errorf("expected BatchSize 7, got %d", cfg.BatchSize)
		}
		if cfg.PollLimit != 2 {
			t.Errorf("expected PollLimit 2, got %d", cfg.PollLimit)
		}
	})

	t.Run("flags win over config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, ".maildigest")

		content := []byte("model: gpt-4o-mini\n")
		if err := os.WriteFile(configPath, content, 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewProcessCmd()
		_ = cmd.Flags().Set("config", configPath)
		_ = cmd.Flags().Set("model", "gpt-4.1")
		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Model != "gpt-4.1" {
			t.Errorf("expected flag to win with model 'gpt-4.1', got %q", cfg.Model)
		}
	})

	t.Run("returns error for missing explicit config file", func(t *testing.T) {
		cmd := NewProcessCmd()
		_ = cmd.Flags().Set("config", filepath.Join(t.TempDir(), "missing.yaml"))
		_, err := buildConfig(cmd, nil)
		if err == nil {
			t.Fatal("expected error for missing config file")
		}
		if !strings.Contains(err.Error(), "not found") {
			t.Errorf("expected 'not found' error, got %v", err)
		}
	})

	t.Run("returns error for invalid config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "invalid.yaml")

		content := []byte(`{invalid yaml`)
		if err := os.WriteFile(configPath, content, 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewProcessCmd()
		_ = cmd.Flags().Set("config", configPath)
		_, err := buildConfig(cmd, nil)
		if err == nil {
			t.Fatal("expected error for invalid config file")
		}
	})
}

// newTestComponents wires the processing stack against the mock vision
// service so command-level tests run without network access.
func newTestComponents(t *testing.T, svc *mock.Service) *components {
	t.Helper()

	cfg := config.NewConfig()
	cfg.DataDir = t.TempDir()
	cfg.ScratchDir = t.TempDir()
	cfg.RunPollInterval = time.Nanosecond
	cfg.CaptionDelay = 0

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db := database.OpenOrPassthrough(cfg.DataDir, database.DefaultOptions(), logger)
	t.Cleanup(func() { _ = db.Close() })

	agent, err := summarize.NewAgent(svc, cfg, logger)
	if err != nil {
		t.Fatalf("failed to create agent: %v", err)
	}

	extractor := extract.New(db, extract.WithLogger(logger))
	pool := summarize.NewCaptionerPool(svc, cfg.CaptionWorkers, 0, logger)
	reader := document.NewPDFReader()

	factory := func() *pipeline.Pipeline {
		p := pipeline.New(pipeline.WithLogger(logger))
		p.AddSteps(
			pipeline.NewExtractStep(reader, extractor, filepath.Join(cfg.ScratchDir, "images"),
				pipeline.WithExtractLogger(logger)),
			pipeline.NewCaptionStep(pool),
			pipeline.NewSummarizeStep(agent),
		)
		return p
	}

	return &components{
		db:    db,
		agent: agent,
		converter: convert.New(filepath.Join(cfg.ScratchDir, "converted"),
			convert.WithLogger(logger)),
		batch: pipeline.NewBatchProcessor(factory,
			pipeline.WithBatchLogger(logger)),
	}
}

// TestProcessEmail tests the per-email pipeline assembly.
func TestProcessEmail(t *testing.T) {
	t.Run("merges body and attachment artifacts in order", func(t *testing.T) {
		tmpDir := t.TempDir()
		pdfPath := filepath.Join(tmpDir, "notes.pdf")
		// Not a parseable PDF; extraction degrades to zero images but the
		// document is still summarized.
		if err := os.WriteFile(pdfPath, []byte("%PDF-1.4 stub"), 0600); err != nil {
			t.Fatalf("failed to write test file: %v", err)
		}

		svc := &mock.Service{}
		comps := newTestComponents(t, svc)
		cfg := config.NewConfig()
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))

		msg := model.EmailMessage{
			ID:      "msg-1",
			Subject: "Quarterly notes",
			Sender:  "sender@example.com",
			Body:    "Please review the attached notes.",
			Attachments: []model.Attachment{
				{Filename: "archive.zip", Path: filepath.Join(tmpDir, "archive.zip")},
				{Filename: "notes.pdf", Path: pdfPath},
			},
		}

		rep, err := processEmail(context.Background(), cfg, comps, &msg, logger)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !rep.EmailSummary.Success {
			t.Errorf("expected successful body summary, got %q", rep.EmailSummary.Err)
		}
		if rep.EmailSummary.Summary != "a mock summary" {
			t.Errorf("expected body summary 'a mock summary', got %q", rep.EmailSummary.Summary)
		}

		if len(rep.AttachmentSummaries) != 2 {
			t.Fatalf("expected 2 attachment artifacts, got %d", len(rep.AttachmentSummaries))
		}

		// Unsupported attachment fails conversion but keeps its position.
		first := rep.AttachmentSummaries[0]
		if first.Success {
			t.Error("expected failure artifact for unsupported attachment")
		}
		if first.Metadata.Filename != "archive.zip" {
			t.Errorf("expected filename 'archive.zip', got %q", first.Metadata.Filename)
		}
		if !strings.Contains(first.Err, "conversion failed") {
			t.Errorf("expected conversion failure reason, got %q", first.Err)
		}

		second := rep.AttachmentSummaries[1]
		if !second.Success {
			t.Errorf("expected successful artifact for PDF, got %q", second.Err)
		}
		if second.Metadata.Filename != "notes.pdf" {
			t.Errorf("expected filename 'notes.pdf', got %q", second.Metadata.Filename)
		}
		if second.Summary != "- mock finding" {
			t.Errorf("expected summary '- mock finding', got %q", second.Summary)
		}
	})

	t.Run("body summary failure is reported not fatal", func(t *testing.T) {
		svc := &mock.Service{}
		svc.CompleteFunc = func(_ context.Context, _, _ string, _ int) (string, error) {
			return "", context.DeadlineExceeded
		}

		comps := newTestComponents(t, svc)
		cfg := config.NewConfig()
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))

		msg := model.EmailMessage{
			ID:      "msg-2",
			Subject: "No attachments",
			Body:    "Just a note.",
		}

		rep, err := processEmail(context.Background(), cfg, comps, &msg, logger)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if rep.EmailSummary.Success {
			t.Error("expected failed body summary")
		}
		if !strings.Contains(rep.EmailSummary.Err, "body summary failed") {
			t.Errorf("expected 'body summary failed' reason, got %q", rep.EmailSummary.Err)
		}
		if rep.FailureCount() != 1 {
			t.Errorf("expected failure count 1, got %d", rep.FailureCount())
		}
	})
}

// TestOutputReport tests the report output functionality.
func TestOutputReport(t *testing.T) {
	testReport := func() *model.AggregateReport {
		return model.NewAggregateReport(
			model.EmailMessage{Subject: "Q3 results", Sender: "cfo@example.com"},
			model.NewSummaryArtifact("email body", "The body summary.", nil),
			[]model.SummaryArtifact{
				model.NewSummaryArtifact("report.pdf", "The attachment summary.", nil),
			},
		)
	}

	t.Run("outputs JSON report to file", func(t *testing.T) {
		tmpDir := t.TempDir()
		outputPath := filepath.Join(tmpDir, "digest.json")

		cfg := config.NewConfig()
		cfg.JSONReport = true
		cfg.ReportFile = outputPath

		if err := outputReport(cfg, testReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		content, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}

		var result map[string]any
		if err := json.Unmarshal(content, &result); err != nil {
			t.Fatalf("failed to parse JSON: %v", err)
		}

		metadata, ok := result["metadata"].(map[string]any)
		if !ok {
			t.Fatal("expected metadata object")
		}
		if metadata["subject"] != "Q3 results" {
			t.Errorf("expected subject 'Q3 results', got %v", metadata["subject"])
		}
	})

	t.Run("outputs Markdown report to file", func(t *testing.T) {
		tmpDir := t.TempDir()
		outputPath := filepath.Join(tmpDir, "digest.md")

		cfg := config.NewConfig()
		cfg.ReportFile = outputPath

		if err := outputReport(cfg, testReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		content, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}

		if !strings.Contains(string(content), "# Email Digest") {
			t.Error("expected Markdown report header")
		}
		if !strings.Contains(string(content), "Q3 results") {
			t.Error("expected report to contain the email subject")
		}
	})

	t.Run("creates parent directories", func(t *testing.T) {
		tmpDir := t.TempDir()
		outputPath := filepath.Join(tmpDir, "subdir", "nested", "digest.json")

		cfg := config.NewConfig()
		cfg.JSONReport = true
		cfg.ReportFile = outputPath

		if err := outputReport(cfg, testReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := os.Stat(outputPath); os.IsNotExist(err) {
			t.Error("expected output file to be created in nested directory")
		}
	})

	t.Run("report file has correct permissions", func(t *testing.T) {
		// Skip on Windows as it doesn't support Unix-style file permissions
		if runtime.GOOS == "windows" {
			t.Skip("skipping permission test on Windows")
		}

		tmpDir := t.TempDir()
		outputPath := filepath.Join(tmpDir, "digest.md")

		cfg := config.NewConfig()
		cfg.ReportFile = outputPath

		if err := outputReport(cfg, testReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		info, err := os.Stat(outputPath)
		if err != nil {
			t.Fatalf("failed to stat file: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("expected permissions 0600, got %o", perm)
		}
	})
}
