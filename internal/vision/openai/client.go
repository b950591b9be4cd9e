package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yashikota/maildigest/internal/config"
)

// defaultBaseURL is the OpenAI API root.
const defaultBaseURL = "https://api.openai.com/v1"

// assistantsBetaHeader opts requests into the v2 assistants API.
const assistantsBetaHeader = "assistants=v2"

// Client is an OpenAI API client implementing vision.Service.
// It is safe for concurrent use.
type Client struct {
	// apiKey authenticates every request.
	apiKey string

	// baseURL is the API root, overridable for tests.
	baseURL string

	// model is the model used for captioning and completions.
	model string

	// temperature is the sampling temperature for captions.
	temperature float64

	// maxCaptionTokens bounds the length of caption responses.
	maxCaptionTokens int

	// httpClient executes requests. Its timeout bounds each call in
	// addition to the caller's context.
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the API root. Used by tests to target a local
// httptest server.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(u, "/")
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTemperature overrides the caption sampling temperature.
func WithTemperature(t float64) ClientOption {
	return func(c *Client) {
		c.temperature = t
	}
}

// WithMaxCaptionTokens overrides the caption response token limit.
func WithMaxCaptionTokens(n int) ClientOption {
	return func(c *Client) {
		c.maxCaptionTokens = n
	}
}

// NewClient creates an OpenAI client.
// The API key is validated lazily at the point of use so construction
// never fails; a missing key surfaces as config.ErrMissingAPIKey on the
// first request.
func NewClient(apiKey, model string, timeout time.Duration, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:           apiKey,
		baseURL:          defaultBaseURL,
		model:            model,
		temperature:      config.DefaultCaptionTemperature,
		maxCaptionTokens: config.DefaultMaxCaptionTokens,
		httpClient:       &http.Client{Timeout: timeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ensureAPIKey returns config.ErrMissingAPIKey when no key is configured.
// Missing credentials are a fatal configuration error, raised to the
// caller rather than degraded.
func (c *Client) ensureAPIKey() error {
	if strings.TrimSpace(c.apiKey) == "" {
		return config.ErrMissingAPIKey
	}
	return nil
}

// apiError is the error payload shape of the OpenAI API.
type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// decodeAPIError turns a non-2xx response into a Go error carrying the
// API-supplied message when one is present.
func (c *Client) decodeAPIError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return fmt.Errorf("api error: status %d (failed to read body: %w)", resp.StatusCode, err)
	}

	var payload apiError
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		return fmt.Errorf("api error: status %d: %s", resp.StatusCode, payload.Error.Message)
	}
	return fmt.Errorf("api error: status %d", resp.StatusCode)
}

// postJSON sends a JSON POST and decodes the JSON response into out.
// beta adds the assistants beta header.
func (c *Client) postJSON(ctx context.Context, path string, payload, out any, beta bool) error {
	if err := c.ensureAPIKey(); err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(payload); err != nil {
			return fmt.Errorf("encode request payload: %w", err)
		}
		body = buf
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if beta {
		req.Header.Set("OpenAI-Beta", assistantsBetaHeader)
	}

	return c.doInto(req, out)
}

// getJSON sends a GET and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, path string, out any, beta bool) error {
	if err := c.ensureAPIKey(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if beta {
		req.Header.Set("OpenAI-Beta", assistantsBetaHeader)
	}

	return c.doInto(req, out)
}

// deleteReq sends a DELETE, ignoring the response body on success.
func (c *Client) deleteReq(ctx context.Context, path string, beta bool) error {
	if err := c.ensureAPIKey(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if beta {
		req.Header.Set("OpenAI-Beta", assistantsBetaHeader)
	}

	return c.doInto(req, nil)
}

// doInto executes the request and decodes the response into out when out
// is non-nil.
func (c *Client) doInto(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return c.decodeAPIError(resp)
	}

	if out == nil {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// chatResponse is the subset of the chat completions response we read.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Caption describes the encoded image using the vision-capable chat
// completions endpoint. The image travels inline as a base64 data URL.
func (c *Client) Caption(ctx context.Context, image []byte, format, prompt string) (string, error) {
	dataURL := fmt.Sprintf("data:image/%s;base64,%s", format, base64.StdEncoding.EncodeToString(image))

	payload := map[string]any{
		"model": c.model,
		"messages": []map[string]any{
			{
				"role": "user",
				"content": []map[string]any{
					{
						"type":      "image_url",
						"image_url": map[string]any{"url": dataURL},
					},
					{
						"type": "text",
						"text": prompt,
					},
				},
			},
		},
		"temperature": c.temperature,
		"max_tokens":  c.maxCaptionTokens,
	}

	var resp chatResponse
	if err := c.postJSON(ctx, "/chat/completions", payload, &resp, false); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("caption response contained no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Complete returns a plain text completion for the system/user prompt pair.
func (c *Client) Complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	payload := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
		"max_tokens": maxTokens,
	}

	var resp chatResponse
	if err := c.postJSON(ctx, "/chat/completions", payload, &resp, false); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion response contained no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
