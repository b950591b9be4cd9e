package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yashikota/maildigest/internal/config"
	"github.com/yashikota/maildigest/internal/model"
	"github.com/yashikota/maildigest/internal/vision"
)

// documentPrompt opens every analysis request.
const documentPrompt = "Please summarize the attached document as bullet " +
	"points that can be read in about ten minutes. Cover the key findings, " +
	"arguments, and data."

// runInstructions steer the run toward the caption context carried in
// the user message.
const runInstructions = "The user message lists captions for images " +
	"extracted from the document. Incorporate relevant visual content " +
	"into the summary."

// emailSummaryPrompt is the system prompt for email-body summaries.
const emailSummaryPrompt = "You summarize emails. Produce a short plain " +
	"text summary of the email body the user provides."

// emailSummaryMaxTokens bounds the email-body summary length.
const emailSummaryMaxTokens = 300

// Agent drives assistant analysis sessions for documents and plain
// completions for email bodies.
type Agent struct {
	service      vision.Service
	cache        *AssistantCache
	profile      Profile
	model        string
	pollInterval time.Duration
	logger       *slog.Logger
}

// NewAgent creates an Agent from configuration. An unknown profile name
// is a configuration error and fails construction.
func NewAgent(service vision.Service, cfg *config.Config, logger *slog.Logger) (*Agent, error) {
	profile, err := ProfileFor(cfg.Profile)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Agent{
		service:      service,
		cache:        NewAssistantCache(cfg.DataDir, service, logger),
		profile:      profile,
		model:        cfg.Model,
		pollInterval: cfg.RunPollInterval,
		logger:       logger,
	}, nil
}

// ProcessDocument runs one full analysis session for the normalized
// document at path and returns an artifact describing the outcome.
// Failures are captured in the artifact rather than returned, so a
// failed session never aborts the batch.
//
// The uploaded file and the conversation thread are torn down via defers
// registered as each resource is created. The teardowns are independent:
// a failed thread deletion does not skip the file deletion.
func (a *Agent) ProcessDocument(ctx context.Context, path, filename string, images []model.ExtractedImage) model.SummaryArtifact {
	assistantID, err := a.cache.GetOrCreate(ctx, a.profile, a.model)
	if err != nil {
		return model.NewFailureArtifact(filename, fmt.Sprintf("assistant setup failed: %v", err))
	}

	fileID, err := a.service.UploadFile(ctx, path)
	if err != nil {
		return model.NewFailureArtifact(filename, fmt.Sprintf("document upload failed: %v", err))
	}
	defer func() {
		if err := a.service.DeleteFile(context.WithoutCancel(ctx), fileID); err != nil {
			a.logger.Warn("uploaded file teardown failed",
				slog.String("file_id", fileID),
				slog.String("error", err.Error()))
		}
	}()

	threadID, err := a.service.CreateThread(ctx)
	if err != nil {
		return model.NewFailureArtifact(filename, fmt.Sprintf("thread creation failed: %v", err))
	}
	defer func() {
		if err := a.service.DeleteThread(context.WithoutCancel(ctx), threadID); err != nil {
			a.logger.Warn("thread teardown failed",
				slog.String("thread_id", threadID),
				slog.String("error", err.Error()))
		}
	}()

	request := buildAnalysisRequest(a.profile, images)
	if err := a.service.SendMessage(ctx, threadID, request, fileID); err != nil {
		return model.NewFailureArtifact(filename, fmt.Sprintf("analysis request failed: %v", err))
	}

	run, err := a.service.CreateRun(ctx, threadID, assistantID, runInstructions)
	if err != nil {
		return model.NewFailureArtifact(filename, fmt.Sprintf("run creation failed: %v", err))
	}

	run, err = a.waitForRun(ctx, threadID, run)
	if err != nil {
		return model.NewFailureArtifact(filename, fmt.Sprintf("run polling failed: %v", err))
	}

	if run.Status != vision.StatusCompleted {
		reason := fmt.Sprintf("analysis run ended with status %q", run.Status)
		if run.LastError != "" {
			reason += ": " + run.LastError
		}
		return model.NewFailureArtifact(filename, reason)
	}

	summary, err := a.service.LatestAssistantMessage(ctx, threadID)
	if err != nil {
		return model.NewFailureArtifact(filename, fmt.Sprintf("summary retrieval failed: %v", err))
	}

	a.logger.Debug("analysis session completed",
		slog.String("filename", filename),
		slog.Int("images", len(images)))

	return model.NewSummaryArtifact(filename, summary, images)
}

// waitForRun polls the run until it reaches a terminal status, sleeping
// pollInterval between polls.
func (a *Agent) waitForRun(ctx context.Context, threadID string, run vision.Run) (vision.Run, error) {
	for !run.Status.Terminal() {
		select {
		case <-time.After(a.pollInterval):
		case <-ctx.Done():
			return run, ctx.Err()
		}

		var err error
		run, err = a.service.RetrieveRun(ctx, threadID, run.ID)
		if err != nil {
			return run, err
		}
	}
	return run, nil
}

// SummarizeEmailBody produces a short summary of a plain text email
// body. Unlike documents this needs no upload or thread, just a single
// completion.
func (a *Agent) SummarizeEmailBody(ctx context.Context, body string) (string, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return "", nil
	}
	return a.service.Complete(ctx, emailSummaryPrompt, body, emailSummaryMaxTokens)
}

// buildAnalysisRequest composes the user message: the persona
// instructions, the summary request, and one caption line per extracted
// image so the assistant can reference visual content the file_search
// tool cannot see.
func buildAnalysisRequest(profile Profile, images []model.ExtractedImage) string {
	b := &strings.Builder{}
	b.WriteString(profile.Instructions)
	b.WriteString("\n\n")
	b.WriteString(documentPrompt)

	if len(images) > 0 {
		b.WriteString("\n\nImages extracted from the document:\n")
		for _, img := range images {
			b.WriteString(captionLine(img))
			b.WriteString("\n")
		}
	}

	return b.String()
}

// captionLine renders one image reference for the analysis request.
func captionLine(img model.ExtractedImage) string {
	caption := img.Caption
	if caption == "" {
		caption = "(no caption)"
	}

	if img.SavedPath != "" {
		return fmt.Sprintf("- Page %d Image %d (Saved: %s): %s", img.Page, img.Index, img.SavedPath, caption)
	}
	return fmt.Sprintf("- Page %d Image %d: %s", img.Page, img.Index, caption)
}
