package summarize

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yashikota/maildigest/internal/model"
	"github.com/yashikota/maildigest/internal/vision"
)

// captionPrompt is the instruction sent with every caption request.
const captionPrompt = "Describe the image. It may contain charts or " +
	"figures relevant to business or scientific contexts."

// CaptionerPool generates captions for extracted images with bounded
// concurrency and per-request pacing.
type CaptionerPool struct {
	captioner vision.Captioner
	workers   int
	delay     time.Duration
	logger    *slog.Logger
}

// NewCaptionerPool creates a caption fan-out. workers bounds concurrent
// requests; delay is the pacing pause imposed before each request.
func NewCaptionerPool(captioner vision.Captioner, workers int, delay time.Duration, logger *slog.Logger) *CaptionerPool {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CaptionerPool{
		captioner: captioner,
		workers:   workers,
		delay:     delay,
		logger:    logger,
	}
}

// CaptionAll attaches a caption to every image in place. The result set
// has the same cardinality and order as the input: an image whose
// caption request fails gets the model.CaptionFailed sentinel instead of
// being dropped, so downstream consumers can always pair captions with
// images by position.
//
// The pacing delay is local to each concurrent request, not a global
// serialization, so total wall time does not grow linearly with the
// image count.
func (p *CaptionerPool) CaptionAll(ctx context.Context, images []model.ExtractedImage) {
	if len(images) == 0 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i := range images {
		g.Go(func() error {
			images[i].Caption = p.captionOne(gctx, &images[i])
			return nil
		})
	}

	// Goroutines never return errors; failures become sentinels.
	_ = g.Wait()
}

// captionOne paces, requests, and normalizes a single caption.
func (p *CaptionerPool) captionOne(ctx context.Context, img *model.ExtractedImage) string {
	if p.delay > 0 {
		timer := time.NewTimer(p.delay)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-ctx.Done():
			return model.CaptionFailed
		}
	}

	caption, err := p.captioner.Caption(ctx, img.Data, img.Format, captionPrompt)
	if err != nil {
		p.logger.Warn("caption generation failed",
			slog.Int("page", img.Page),
			slog.Int("index", img.Index),
			slog.String("error", err.Error()))
		return model.CaptionFailed
	}
	if caption == "" {
		return model.CaptionFailed
	}
	return caption
}
