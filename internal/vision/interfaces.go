package vision

import "context"

// Captioner generates a textual description of a single raster image.
// Implementations must be safe for concurrent use: the caption fan-out
// issues many requests at once.
type Captioner interface {
	// Caption describes the encoded image bytes using the given
	// instruction prompt. format names the encoded byte format
	// (e.g. "png", "jpg").
	Caption(ctx context.Context, image []byte, format, prompt string) (string, error)
}

// Completer generates a plain text completion for a prompt pair.
// Used for email-body summaries, which need no document upload.
type Completer interface {
	// Complete returns the model's response to the system/user prompt
	// pair, bounded to maxTokens.
	Complete(ctx context.Context, system, user string, maxTokens int) (string, error)
}

// AssistantService is the assistant session surface of the analysis
// capability: document upload, conversation threads, runs, and teardown.
// All methods are blocking network calls that honor ctx cancellation.
type AssistantService interface {
	// CreateAssistant creates a reusable assistant and returns its ID.
	CreateAssistant(ctx context.Context, cfg AssistantConfig) (string, error)

	// RetrieveAssistant verifies that the assistant still exists
	// remotely. Used to validate cached assistant IDs.
	RetrieveAssistant(ctx context.Context, assistantID string) error

	// UploadFile uploads the document at path for assistant retrieval
	// and returns the remote file ID.
	UploadFile(ctx context.Context, path string) (string, error)

	// DeleteFile deletes an uploaded file.
	DeleteFile(ctx context.Context, fileID string) error

	// CreateThread opens a new conversation context and returns its ID.
	CreateThread(ctx context.Context) (string, error)

	// DeleteThread deletes a conversation context.
	DeleteThread(ctx context.Context, threadID string) error

	// SendMessage posts a user message to the thread. When fileID is
	// non-empty the file is attached for retrieval-backed reasoning.
	SendMessage(ctx context.Context, threadID, text, fileID string) error

	// CreateRun starts a run of the assistant against the thread with
	// auxiliary instructions.
	CreateRun(ctx context.Context, threadID, assistantID, instructions string) (Run, error)

	// RetrieveRun fetches the current state of a run.
	RetrieveRun(ctx context.Context, threadID, runID string) (Run, error)

	// LatestAssistantMessage returns the text of the most recent
	// assistant-authored message in the thread.
	LatestAssistantMessage(ctx context.Context, threadID string) (string, error)
}

// Service aggregates the full vision/analysis capability.
// The production OpenAI client implements all three facets.
type Service interface {
	Captioner
	Completer
	AssistantService
}
