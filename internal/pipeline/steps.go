package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/yashikota/maildigest/internal/document"
	"github.com/yashikota/maildigest/internal/extract"
	"github.com/yashikota/maildigest/internal/model"
	"github.com/yashikota/maildigest/internal/summarize"
)

// ExtractStep reads the normalized document and runs visual extraction
// over its embedded images. A document that cannot be read yields zero
// images rather than failing the job: the analysis session still runs
// against the document text.
type ExtractStep struct {
	// reader parses the normalized document into pages and images.
	reader document.Reader

	// extractor filters, deduplicates, and persists embedded images.
	extractor *extract.Extractor

	// scratchDir is where extracted image bytes are persisted.
	scratchDir string

	// logger for structured logging.
	logger *slog.Logger
}

// ExtractStepOption configures an ExtractStep.
type ExtractStepOption func(*ExtractStep)

// WithExtractLogger sets a custom logger for the extract step.
func WithExtractLogger(logger *slog.Logger) ExtractStepOption {
	return func(s *ExtractStep) {
		s.logger = logger
	}
}

// NewExtractStep creates a visual extraction step.
func NewExtractStep(reader document.Reader, extractor *extract.Extractor, scratchDir string, opts ...ExtractStepOption) *ExtractStep {
	s := &ExtractStep{
		reader:     reader,
		extractor:  extractor,
		scratchDir: scratchDir,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *ExtractStep) Name() string {
	return "extract"
}

// Do executes the extraction step.
func (s *ExtractStep) Do(ctx context.Context, job *model.DocumentJob) error {
	doc, err := s.reader.Read(ctx, job.Path)
	if err != nil {
		// A corrupt or unreadable document still gets summarized; it
		// just contributes no images.
		s.logger.Warn("document unreadable, extracting no images",
			"document", job.Filename,
			"error", err,
		)
		job.Images = nil
		return nil
	}

	job.Images = s.extractor.Extract(ctx, doc, docID(job.Filename), s.scratchDir)

	s.logger.Debug("visual extraction completed",
		"document", job.Filename,
		"images", len(job.Images),
	)

	return nil
}

// docID derives the scratch filename prefix from the original filename.
// The extension is dropped and path-hostile characters are replaced so
// the prefix is safe to embed in a filename.
func docID(filename string) string {
	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if stem == "" {
		stem = "document"
	}

	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_':
			return r
		default:
			return '-'
		}
	}, stem)
}

// CaptionStep runs the concurrent caption fan-out over the job's
// extracted images. Per-image failures become sentinel captions, so the
// step itself never fails.
type CaptionStep struct {
	// pool is the bounded caption fan-out.
	pool *summarize.CaptionerPool
}

// NewCaptionStep creates a caption generation step.
func NewCaptionStep(pool *summarize.CaptionerPool) *CaptionStep {
	return &CaptionStep{pool: pool}
}

// Name returns the step name.
func (s *CaptionStep) Name() string {
	return "caption"
}

// Do executes the caption step.
func (s *CaptionStep) Do(ctx context.Context, job *model.DocumentJob) error {
	s.pool.CaptionAll(ctx, job.Images)
	return nil
}

// SummarizeStep runs the analysis session for the document and stores
// the resulting artifact on the job. Session failures are captured in
// the artifact, so the step never returns an error.
type SummarizeStep struct {
	// agent drives the assistant analysis session.
	agent *summarize.Agent
}

// NewSummarizeStep creates an analysis session step.
func NewSummarizeStep(agent *summarize.Agent) *SummarizeStep {
	return &SummarizeStep{agent: agent}
}

// Name returns the step name.
func (s *SummarizeStep) Name() string {
	return "summarize"
}

// Do executes the analysis session step.
func (s *SummarizeStep) Do(ctx context.Context, job *model.DocumentJob) error {
	job.Artifact = s.agent.ProcessDocument(ctx, job.Path, job.Filename, job.Images)
	return nil
}
