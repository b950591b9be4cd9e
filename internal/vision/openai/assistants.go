package openai

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/yashikota/maildigest/internal/vision"
)

// assistantResponse is the subset of the assistant object we read.
type assistantResponse struct {
	ID string `json:"id"`
}

// CreateAssistant creates a reusable assistant and returns its ID.
func (c *Client) CreateAssistant(ctx context.Context, cfg vision.AssistantConfig) (string, error) {
	tools := make([]map[string]string, 0, len(cfg.Tools))
	for _, t := range cfg.Tools {
		tools = append(tools, map[string]string{"type": t})
	}

	payload := map[string]any{
		"name":        cfg.Name,
		"description": cfg.Description,
		"model":       cfg.Model,
		"tools":       tools,
	}

	var resp assistantResponse
	if err := c.postJSON(ctx, "/assistants", payload, &resp, true); err != nil {
		return "", fmt.Errorf("create assistant: %w", err)
	}
	return resp.ID, nil
}

// RetrieveAssistant verifies the assistant still exists remotely.
// A 404 surfaces as an error, which callers treat as a stale cache entry.
func (c *Client) RetrieveAssistant(ctx context.Context, assistantID string) error {
	var resp assistantResponse
	if err := c.getJSON(ctx, "/assistants/"+assistantID, &resp, true); err != nil {
		return fmt.Errorf("retrieve assistant %s: %w", assistantID, err)
	}
	return nil
}

// fileResponse is the subset of the file object we read.
type fileResponse struct {
	ID string `json:"id"`
}

// UploadFile uploads the document at path with purpose "assistants" and
// returns the remote file ID.
func (c *Client) UploadFile(ctx context.Context, path string) (string, error) {
	if err := c.ensureAPIKey(); err != nil {
		return "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open upload file: %w", err)
	}
	defer f.Close()

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)

	if err := mw.WriteField("purpose", "assistants"); err != nil {
		return "", fmt.Errorf("write purpose field: %w", err)
	}

	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("copy file contents: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/files", buf)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var resp fileResponse
	if err := c.doInto(req, &resp); err != nil {
		return "", fmt.Errorf("upload file: %w", err)
	}
	return resp.ID, nil
}

// DeleteFile deletes an uploaded file.
func (c *Client) DeleteFile(ctx context.Context, fileID string) error {
	if err := c.deleteReq(ctx, "/files/"+fileID, false); err != nil {
		return fmt.Errorf("delete file %s: %w", fileID, err)
	}
	return nil
}

// threadResponse is the subset of the thread object we read.
type threadResponse struct {
	ID string `json:"id"`
}

// CreateThread opens a new conversation context and returns its ID.
func (c *Client) CreateThread(ctx context.Context) (string, error) {
	var resp threadResponse
	if err := c.postJSON(ctx, "/threads", map[string]any{}, &resp, true); err != nil {
		return "", fmt.Errorf("create thread: %w", err)
	}
	return resp.ID, nil
}

// DeleteThread deletes a conversation context.
func (c *Client) DeleteThread(ctx context.Context, threadID string) error {
	if err := c.deleteReq(ctx, "/threads/"+threadID, true); err != nil {
		return fmt.Errorf("delete thread %s: %w", threadID, err)
	}
	return nil
}

// SendMessage posts a user message to the thread. A non-empty fileID is
// attached with the file_search tool so the run can search the document.
func (c *Client) SendMessage(ctx context.Context, threadID, text, fileID string) error {
	payload := map[string]any{
		"role":    "user",
		"content": text,
	}
	if fileID != "" {
		payload["attachments"] = []map[string]any{
			{
				"file_id": fileID,
				"tools":   []map[string]string{{"type": "file_search"}},
			},
		}
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := c.postJSON(ctx, "/threads/"+threadID+"/messages", payload, &resp, true); err != nil {
		return fmt.Errorf("send message to thread %s: %w", threadID, err)
	}
	return nil
}

// runResponse is the subset of the run object we read.
type runResponse struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	LastError *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"last_error"`
}

// toRun converts the wire shape into the vision.Run value.
func (r runResponse) toRun() vision.Run {
	run := vision.Run{
		ID:     r.ID,
		Status: vision.RunStatus(r.Status),
	}
	if r.LastError != nil {
		run.LastError = r.LastError.Message
	}
	return run
}

// CreateRun starts a run of the assistant against the thread.
// instructions are passed as additional_instructions so they extend the
// assistant's base behavior rather than replacing it.
func (c *Client) CreateRun(ctx context.Context, threadID, assistantID, instructions string) (vision.Run, error) {
	payload := map[string]any{
		"assistant_id": assistantID,
	}
	if instructions != "" {
		payload["additional_instructions"] = instructions
	}

	var resp runResponse
	if err := c.postJSON(ctx, "/threads/"+threadID+"/runs", payload, &resp, true); err != nil {
		return vision.Run{}, fmt.Errorf("create run on thread %s: %w", threadID, err)
	}
	return resp.toRun(), nil
}

// RetrieveRun fetches the current state of a run.
func (c *Client) RetrieveRun(ctx context.Context, threadID, runID string) (vision.Run, error) {
	var resp runResponse
	if err := c.getJSON(ctx, "/threads/"+threadID+"/runs/"+runID, &resp, true); err != nil {
		return vision.Run{}, fmt.Errorf("retrieve run %s: %w", runID, err)
	}
	return resp.toRun(), nil
}

// messagesResponse is the subset of the message list we read.
type messagesResponse struct {
	Data []struct {
		Role    string `json:"role"`
		Content []struct {
			Type string `json:"type"`
			Text struct {
				Value string `json:"value"`
			} `json:"text"`
		} `json:"content"`
	} `json:"data"`
}

// LatestAssistantMessage returns the text of the most recent
// assistant-authored message in the thread.
func (c *Client) LatestAssistantMessage(ctx context.Context, threadID string) (string, error) {
	var resp messagesResponse
	path := "/threads/" + threadID + "/messages?order=desc&limit=1"
	if err := c.getJSON(ctx, path, &resp, true); err != nil {
		return "", fmt.Errorf("list messages for thread %s: %w", threadID, err)
	}

	if len(resp.Data) == 0 {
		return "", fmt.Errorf("thread %s has no messages", threadID)
	}
	msg := resp.Data[0]
	if msg.Role != "assistant" {
		return "", fmt.Errorf("latest message in thread %s is not from the assistant", threadID)
	}
	for _, content := range msg.Content {
		if content.Type == "text" {
			return content.Text.Value, nil
		}
	}
	return "", fmt.Errorf("latest assistant message in thread %s has no text content", threadID)
}
