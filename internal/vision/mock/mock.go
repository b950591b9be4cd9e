// Package mock provides test doubles for the vision interfaces.
// Each method delegates to an injectable function and counts its calls,
// so tests can script failures and assert teardown behavior.
package mock

import (
	"context"
	"sync"

	"github.com/yashikota/maildigest/internal/vision"
)

// Captioner is a scriptable vision.Captioner.
type Captioner struct {
	// CaptionFunc handles Caption calls. When nil, Caption returns a
	// fixed placeholder caption.
	CaptionFunc func(ctx context.Context, image []byte, format, prompt string) (string, error)

	mu           sync.Mutex
	captionCalls int
}

// Caption implements vision.Captioner.
func (m *Captioner) Caption(ctx context.Context, image []byte, format, prompt string) (string, error) {
	m.mu.Lock()
	m.captionCalls++
	m.mu.Unlock()

	if m.CaptionFunc != nil {
		return m.CaptionFunc(ctx, image, format, prompt)
	}
	return "a mock caption", nil
}

// CaptionCalls returns how many times Caption was invoked.
func (m *Captioner) CaptionCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.captionCalls
}

// Completer is a scriptable vision.Completer.
type Completer struct {
	// CompleteFunc handles Complete calls. When nil, Complete echoes a
	// fixed summary.
	CompleteFunc func(ctx context.Context, system, user string, maxTokens int) (string, error)

	mu            sync.Mutex
	completeCalls int
}

// Complete implements vision.Completer.
func (m *Completer) Complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	m.mu.Lock()
	m.completeCalls++
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, system, user, maxTokens)
	}
	return "a mock summary", nil
}

// CompleteCalls returns how many times Complete was invoked.
func (m *Completer) CompleteCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.completeCalls
}

// AssistantService is a scriptable vision.AssistantService.
// Zero value behavior: every call succeeds with canned IDs and a run
// that completes immediately.
type AssistantService struct {
	CreateAssistantFunc        func(ctx context.Context, cfg vision.AssistantConfig) (string, error)
	RetrieveAssistantFunc      func(ctx context.Context, assistantID string) error
	UploadFileFunc             func(ctx context.Context, path string) (string, error)
	DeleteFileFunc             func(ctx context.Context, fileID string) error
	CreateThreadFunc           func(ctx context.Context) (string, error)
	DeleteThreadFunc           func(ctx context.Context, threadID string) error
	SendMessageFunc            func(ctx context.Context, threadID, text, fileID string) error
	CreateRunFunc              func(ctx context.Context, threadID, assistantID, instructions string) (vision.Run, error)
	RetrieveRunFunc            func(ctx context.Context, threadID, runID string) (vision.Run, error)
	LatestAssistantMessageFunc func(ctx context.Context, threadID string) (string, error)

	mu sync.Mutex

	CreateAssistantCalls        int
	RetrieveAssistantCalls      int
	UploadFileCalls             int
	DeleteFileCalls             int
	CreateThreadCalls           int
	DeleteThreadCalls           int
	SendMessageCalls            int
	CreateRunCalls              int
	RetrieveRunCalls            int
	LatestAssistantMessageCalls int

	// SentMessages records the text of every SendMessage call.
	SentMessages []string
}

// CreateAssistant implements vision.AssistantService.
func (m *AssistantService) CreateAssistant(ctx context.Context, cfg vision.AssistantConfig) (string, error) {
	m.mu.Lock()
	m.CreateAssistantCalls++
	m.mu.Unlock()

	if m.CreateAssistantFunc != nil {
		return m.CreateAssistantFunc(ctx, cfg)
	}
	return "asst-mock", nil
}

// RetrieveAssistant implements vision.AssistantService.
func (m *AssistantService) RetrieveAssistant(ctx context.Context, assistantID string) error {
	m.mu.Lock()
	m.RetrieveAssistantCalls++
	m.mu.Unlock()

	if m.RetrieveAssistantFunc != nil {
		return m.RetrieveAssistantFunc(ctx, assistantID)
	}
	return nil
}

// UploadFile implements vision.AssistantService.
func (m *AssistantService) UploadFile(ctx context.Context, path string) (string, error) {
	m.mu.Lock()
	m.UploadFileCalls++
	m.mu.Unlock()

	if m.UploadFileFunc != nil {
		return m.UploadFileFunc(ctx, path)
	}
	return "file-mock", nil
}

// DeleteFile implements vision.AssistantService.
func (m *AssistantService) DeleteFile(ctx context.Context, fileID string) error {
	m.mu.Lock()
	m.DeleteFileCalls++
	m.mu.Unlock()

	if m.DeleteFileFunc != nil {
		return m.DeleteFileFunc(ctx, fileID)
	}
	return nil
}

// CreateThread implements vision.AssistantService.
func (m *AssistantService) CreateThread(ctx context.Context) (string, error) {
	m.mu.Lock()
	m.CreateThreadCalls++
	m.mu.Unlock()

	if m.CreateThreadFunc != nil {
		return m.CreateThreadFunc(ctx)
	}
	return "thread-mock", nil
}

// DeleteThread implements vision.AssistantService.
func (m *AssistantService) DeleteThread(ctx context.Context, threadID string) error {
	m.mu.Lock()
	m.DeleteThreadCalls++
	m.mu.Unlock()

	if m.DeleteThreadFunc != nil {
		return m.DeleteThreadFunc(ctx, threadID)
	}
	return nil
}

// SendMessage implements vision.AssistantService.
func (m *AssistantService) SendMessage(ctx context.Context, threadID, text, fileID string) error {
	m.mu.Lock()
	m.SendMessageCalls++
	m.SentMessages = append(m.SentMessages, text)
	m.mu.Unlock()

	if m.SendMessageFunc != nil {
		return m.SendMessageFunc(ctx, threadID, text, fileID)
	}
	return nil
}

// CreateRun implements vision.AssistantService.
func (m *AssistantService) CreateRun(ctx context.Context, threadID, assistantID, instructions string) (vision.Run, error) {
	m.mu.Lock()
	m.CreateRunCalls++
	m.mu.Unlock()

	if m.CreateRunFunc != nil {
		return m.CreateRunFunc(ctx, threadID, assistantID, instructions)
	}
	return vision.Run{ID: "run-mock", Status: vision.StatusCompleted}, nil
}

// RetrieveRun implements vision.AssistantService.
func (m *AssistantService) RetrieveRun(ctx context.Context, threadID, runID string) (vision.Run, error) {
	m.mu.Lock()
	m.RetrieveRunCalls++
	m.mu.Unlock()

	if m.RetrieveRunFunc != nil {
		return m.RetrieveRunFunc(ctx, threadID, runID)
	}
	return vision.Run{ID: runID, Status: vision.StatusCompleted}, nil
}

// LatestAssistantMessage implements vision.AssistantService.
func (m *AssistantService) LatestAssistantMessage(ctx context.Context, threadID string) (string, error) {
	m.mu.Lock()
	m.LatestAssistantMessageCalls++
	m.mu.Unlock()

	if m.LatestAssistantMessageFunc != nil {
		return m.LatestAssistantMessageFunc(ctx, threadID)
	}
	return "- mock finding", nil
}

// Service bundles all three facets into one scriptable vision.Service.
type Service struct {
	Captioner
	Completer
	AssistantService
}
