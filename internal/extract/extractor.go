package extract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	// Register decoders for the formats PDF containers commonly embed.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/google/uuid"

	"github.com/yashikota/maildigest/internal/config"
	"github.com/yashikota/maildigest/internal/document"
	"github.com/yashikota/maildigest/internal/model"
)

// Ledger is the subset of the seen-image store the extractor needs.
// *database.SeenDB satisfies it; tests substitute fakes.
type Ledger interface {
	// HasAndRecord atomically checks and records a fingerprint,
	// returning true when it was already present.
	HasAndRecord(ctx context.Context, fp model.Fingerprint) (bool, error)
}

// Extractor pulls embedded images out of normalized documents.
type Extractor struct {
	// ledger is the cross-document deduplication store.
	ledger Ledger

	// iconMaxDimension is the icon filter threshold: images whose width
	// AND height are both at or below it are dropped.
	iconMaxDimension int

	// logger for structured logging.
	logger *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithIconMaxDimension overrides the icon filter threshold.
func WithIconMaxDimension(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.iconMaxDimension = n
		}
	}
}

// WithLogger sets a custom logger for the extractor.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// New creates an Extractor backed by the given ledger.
func New(ledger Ledger, opts ...Option) *Extractor {
	e := &Extractor{
		ledger:           ledger,
		iconMaxDimension: config.DefaultIconMaxDimension,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.Default()
	}

	return e
}

// Extract walks the document in page order then in-page order and returns
// the accepted images. docID identifies the document in scratch filenames
// (typically the source filename without extension); scratchDir is where
// accepted images are persisted.
//
// Extract never returns an error: per-image failures are absorbed (the
// image is skipped or kept without a persisted path), and the worst case
// is an empty result.
func (e *Extractor) Extract(ctx context.Context, doc *document.Document, docID, scratchDir string) []model.ExtractedImage {
	images := make([]model.ExtractedImage, 0)
	if doc == nil {
		return images
	}

	if err := os.MkdirAll(scratchDir, 0750); err != nil {
		// Extraction proceeds; persistence will fail per-image and the
		// images stay captionable in memory.
		e.logger.Warn("failed to create scratch directory",
			"dir", scratchDir,
			"error", err,
		)
	}

	for _, page := range doc.Pages {
		for i, embedded := range page.Images {
			index := i + 1

			img, ok := e.processOne(ctx, embedded, docID, scratchDir, page.Number, index)
			if !ok {
				continue
			}
			images = append(images, img)
		}
	}

	return images
}

// processOne decodes, filters, fingerprints, and persists a single
// embedded image. The bool result reports whether the image was accepted.
func (e *Extractor) processOne(ctx context.Context, embedded document.EmbeddedImage, docID, scratchDir string, pageNum, index int) (model.ExtractedImage, bool) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(embedded.Data))
	if err != nil {
		// A broken image never aborts the document.
		e.logger.Warn("failed to decode embedded image",
			"document", docID,
			"page", pageNum,
			"index", index,
			"error", err,
		)
		return model.ExtractedImage{}, false
	}

	// Small images are presumed logos or icons, not content.
	// The boundary is inclusive: 100x100 is dropped, 101x100 is kept.
	if cfg.Width <= e.iconMaxDimension && cfg.Height <= e.iconMaxDimension {
		e.logger.Debug("skipping icon-sized image",
			"document", docID,
			"page", pageNum,
			"index", index,
			"width", cfg.Width,
			"height", cfg.Height,
		)
		return model.ExtractedImage{}, false
	}

	fp := model.FingerprintBytes(embedded.Data)

	duplicate, err := e.ledger.HasAndRecord(ctx, fp)
	if err != nil {
		// A ledger error must not lose the image; treat it as novel.
		e.logger.Warn("seen-image ledger query failed, treating image as novel",
			"document", docID,
			"page", pageNum,
			"index", index,
			"error", err,
		)
	}
	if duplicate {
		e.logger.Debug("skipping previously-seen image",
			"document", docID,
			"page", pageNum,
			"index", index,
			"fingerprint", string(fp),
		)
		return model.ExtractedImage{}, false
	}

	savedPath := e.persist(embedded, docID, scratchDir, pageNum, index)

	return model.ExtractedImage{
		Page:        pageNum,
		Index:       index,
		Format:      embedded.Format,
		Width:       cfg.Width,
		Height:      cfg.Height,
		Data:        embedded.Data,
		Fingerprint: fp,
		SavedPath:   savedPath,
	}, true
}

// persist writes the image bytes to the scratch directory and returns the
// path, or "" when writing failed. The filename incorporates document
// identity, page, in-page index, and a random suffix so concurrent
// writers cannot collide.
func (e *Extractor) persist(embedded document.EmbeddedImage, docID, scratchDir string, pageNum, index int) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	filename := fmt.Sprintf("%s_p%d_img%d_%s.%s", docID, pageNum, index, suffix, embedded.Format)
	path := filepath.Join(scratchDir, filename)

	if err := os.WriteFile(path, embedded.Data, 0600); err != nil {
		// Partial success: the image stays eligible for captioning
		// even though it could not be saved to disk.
		e.logger.Warn("failed to persist extracted image",
			"document", docID,
			"path", path,
			"error", err,
		)
		return ""
	}

	e.logger.Debug("persisted extracted image", "path", path)
	return path
}
