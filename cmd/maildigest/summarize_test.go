package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yashikota/maildigest/internal/config"
	"github.com/yashikota/maildigest/internal/model"
	"github.com/yashikota/maildigest/internal/vision/mock"
)

// TestNewSummarizeCmd tests the summarize command creation.
func TestNewSummarizeCmd(t *testing.T) {
	t.Parallel()

	cmd := NewSummarizeCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "summarize <files...>" {
			t.Errorf("expected use 'summarize <files...>', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("requires at least one argument", func(t *testing.T) {
		t.Parallel()
		if cmd.Args == nil {
			t.Error("expected Args validator")
		}
	})

	t.Run("shares the common flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"model", "profile", "batch", "caption-workers", "config", "json", "markdown", "output"} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected %s flag", name)
			}
		}
	})

	t.Run("does not have poll-limit flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("poll-limit") != nil {
			t.Error("poll-limit flag should not exist (no mailbox is polled)")
		}
	})
}

// TestRunSummarizeCmdNoArgs tests that summarize rejects empty input.
func TestRunSummarizeCmdNoArgs(t *testing.T) {
	t.Parallel()

	rootCmd := NewRootCmd()
	rootCmd.SetArgs([]string{"summarize"})
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)

	err := rootCmd.Execute()
	if err == nil {
		t.Error("expected error for no arguments")
	}
}

// TestSummarizeTargets tests the local-file pipeline assembly.
func TestSummarizeTargets(t *testing.T) {
	t.Run("returns one artifact per file in input order", func(t *testing.T) {
		tmpDir := t.TempDir()
		pdfPath := filepath.Join(tmpDir, "notes.pdf")
		if err := os.WriteFile(pdfPath, []byte("%PDF-1.4 stub"), 0600); err != nil {
			t.Fatalf("failed to write test file: %v", err)
		}

		svc := &mock.Service{}
		comps := newTestComponents(t, svc)
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))

		targets := []string{filepath.Join(tmpDir, "missing.zip"), pdfPath}
		artifacts, err := summarizeTargets(context.Background(), comps, targets, logger)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(artifacts) != 2 {
			t.Fatalf("expected 2 artifacts, got %d", len(artifacts))
		}

		if artifacts[0].Success {
			t.Error("expected failure artifact for unsupported file")
		}
		if !strings.Contains(artifacts[0].Err, "conversion failed") {
			t.Errorf("expected conversion failure reason, got %q", artifacts[0].Err)
		}

		if !artifacts[1].Success {
			t.Errorf("expected successful artifact for PDF, got %q", artifacts[1].Err)
		}
		if artifacts[1].Metadata.Filename != pdfPath {
			t.Errorf("expected filename %q, got %q", pdfPath, artifacts[1].Metadata.Filename)
		}
	})

	t.Run("empty target list yields no artifacts", func(t *testing.T) {
		svc := &mock.Service{}
		comps := newTestComponents(t, svc)
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))

		artifacts, err := summarizeTargets(context.Background(), comps, nil, logger)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(artifacts) != 0 {
			t.Errorf("expected no artifacts, got %d", len(artifacts))
		}
	})
}

// TestOutputArtifacts tests standalone artifact output.
func TestOutputArtifacts(t *testing.T) {
	artifacts := []model.SummaryArtifact{
		model.NewSummaryArtifact("report.pdf", "The report summary.", nil),
		model.NewFailureArtifact("broken.docx", "conversion failed: no converter"),
	}

	t.Run("writes Markdown sections to file", func(t *testing.T) {
		tmpDir := t.TempDir()
		outputPath := filepath.Join(tmpDir, "summaries.md")

		cfg := config.NewConfig()
		cfg.ReportFile = outputPath

		if err := outputArtifacts(cfg, artifacts); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		content, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}

		text := string(content)
		if !strings.Contains(text, "report.pdf") {
			t.Error("expected output to contain 'report.pdf'")
		}
		if !strings.Contains(text, "The report summary.") {
			t.Error("expected output to contain the summary text")
		}
		if !strings.Contains(text, "broken.docx") {
			t.Error("expected output to contain the failed document")
		}
	})

	t.Run("writes JSON documents to file", func(t *testing.T) {
		tmpDir := t.TempDir()
		outputPath := filepath.Join(tmpDir, "summaries.json")

		cfg := config.NewConfig()
		cfg.JSONReport = true
		cfg.ReportFile = outputPath

		if err := outputArtifacts(cfg, artifacts); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		content, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}
		if !strings.Contains(string(content), `"report.pdf"`) {
			t.Error("expected JSON output to contain the filename")
		}
	})
}
