// Package backend is the typed HTTP client for the remote execution API.
// Calls are one-shot: no retries, no caching. Callers decide how to
// degrade when the backend is unreachable.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hypertask-network/hypertask/internal/domain"
)

// DefaultBaseURL is the hosted execution API.
const DefaultBaseURL = "https://hypertask.onrender.com"

// defaultTimeout bounds every request, including execute calls.
const defaultTimeout = 30 * time.Second

// Client is a minimal HTTP API client. One Client is shared across
// goroutines; neither field may be mutated after first use.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// ChatResponse is the intent-capture reply.
type ChatResponse struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id"`
	ReadyToExecute bool   `json:"ready_to_execute"`
}

// ExecutionResult is the deliverable bundle returned by /execute.
type ExecutionResult struct {
	ProjectID    string               `json:"project_id"`
	Deliverables []domain.Deliverable `json:"deliverables"`
	Transaction  *domain.Transaction  `json:"transaction"`
}

// LogoResult is the DesignBot direct-generation reply.
type LogoResult struct {
	ImageBase64 string `json:"image_base64"`
	Size        string `json:"size"`
}

// Health probes the API root. The body is ignored; only reachability
// and status matter.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// Agents lists the remote agent roster. The endpoint has shipped both a
// bare array and a wrapper object; both are accepted. A structurally
// odd payload reads as an empty roster, not an error.
func (c *Client) Agents(ctx context.Context) ([]domain.Agent, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/agents", nil, &raw); err != nil {
		return nil, err
	}

	var agents []domain.Agent
	if err := json.Unmarshal(raw, &agents); err == nil {
		return agents, nil
	}
	var wrapper struct {
		Agents []domain.Agent `json:"agents"`
	}
	if err := json.Unmarshal(raw, &wrapper); err == nil {
		return wrapper.Agents, nil
	}
	return nil, nil
}

// Chat sends one user message. conversationID may be empty on the
// first turn; the server assigns one.
func (c *Client) Chat(ctx context.Context, message, conversationID string) (ChatResponse, error) {
	body := map[string]any{"message": message}
	if conversationID != "" {
		body["conversation_id"] = conversationID
	}
	var resp ChatResponse
	err := c.do(ctx, http.MethodPost, "/chat", body, &resp)
	return resp, err
}

// Execute runs a captured conversation to completion.
func (c *Client) Execute(ctx context.Context, conversationID string) (ExecutionResult, error) {
	body := map[string]any{"conversation_id": conversationID}
	return c.execute(ctx, body)
}

// ExecuteDirect runs a raw prompt without a prior conversation.
func (c *Client) ExecuteDirect(ctx context.Context, prompt string, extra map[string]any) (ExecutionResult, error) {
	body := map[string]any{"prompt": prompt}
	if len(extra) > 0 {
		body["context"] = extra
	}
	return c.execute(ctx, body)
}

func (c *Client) execute(ctx context.Context, body map[string]any) (ExecutionResult, error) {
	var resp ExecutionResult
	if err := c.do(ctx, http.MethodPost, "/execute", body, &resp); err != nil {
		return resp, err
	}
	// A 200 without the deliverable bundle is as useless as a failure.
	if len(resp.Deliverables) == 0 || resp.Transaction == nil {
		return resp, domain.ErrMalformedResponse
	}
	return resp, nil
}

// Slogan asks CopyBot for a one-line slogan.
func (c *Client) Slogan(ctx context.Context, brand, brandContext string) (string, error) {
	body := map[string]any{"brand_name": brand}
	if brandContext != "" {
		body["context"] = brandContext
	}
	var resp struct {
		Slogan string `json:"slogan"`
	}
	err := c.do(ctx, http.MethodPost, "/agents/copybot/slogan", body, &resp)
	return resp.Slogan, err
}

// Logo asks DesignBot for a generated logo image.
func (c *Client) Logo(ctx context.Context, brand, style, brandContext string) (LogoResult, error) {
	body := map[string]any{"brand_name": brand}
	if style != "" {
		body["style"] = style
	}
	if brandContext != "" {
		body["context"] = brandContext
	}
	var resp LogoResult
	err := c.do(ctx, http.MethodPost, "/agents/designbot/logo", body, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	url := strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(endpoint, "/")

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
