package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/emberco/recall/pkg/chat"
)

const (
	// DefaultServiceURL is the memory service address used when none is
	// configured.
	DefaultServiceURL = "http://127.0.0.1:5000"

	// DefaultTimeout bounds each request. The service's own processing
	// (embedding + rerank) dominates latency, so this is deliberately
	// generous.
	DefaultTimeout = 30 * time.Second
)

// Error is the normalized failure value for every gateway operation. Any
// transport failure resolves to one of these; callers branch on the error
// and never see a raw *http or json error escape this package undescribed.
type Error struct {
	// Op names the failing operation, e.g. "add_memory".
	Op string

	// Message is a human-readable description of the failure.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("memory service %s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Config holds configuration for the memory service client.
type Config struct {
	// URL is the memory service base URL. Defaults to DefaultServiceURL.
	URL string

	// Timeout bounds each request. Zero means DefaultTimeout; negative
	// disables the timeout entirely.
	Timeout time.Duration
}

// Client implements Service against the memory service's HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a memory service client.
func NewClient(c Config, logger *zap.Logger) *Client {
	baseURL := c.URL
	if baseURL == "" {
		baseURL = DefaultServiceURL
	}

	timeout := c.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	if timeout < 0 {
		timeout = 0
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// AddMemory stores a single raw-text memory via POST /add.
func (c *Client) AddMemory(ctx context.Context, rec MemoryRecord) (*AddResponse, error) {
	resp := &AddResponse{}
	if err := c.post(ctx, "add_memory", "/add", rec, resp); err != nil {
		return nil, err
	}

	c.logger.Debug("memory added",
		zap.String("character_id", rec.CharacterID),
		zap.String("chat_id", rec.ChatID),
		zap.String("message_type", string(rec.MessageType)),
	)

	return resp, nil
}

// AddChatMessage stores a transcript entry via POST /add_chat_message,
// preserving the host's native field shape.
func (c *Client) AddChatMessage(ctx context.Context, msg ChatMessageRequest) (*AddResponse, error) {
	resp := &AddResponse{}
	if err := c.post(ctx, "add_chat_message", "/add_chat_message", msg, resp); err != nil {
		return nil, err
	}

	c.logger.Debug("chat message added",
		zap.String("character_id", msg.CharacterID),
		zap.String("chat_id", msg.ChatID),
		zap.String("message_type", string(msg.MessageType)),
	)

	return resp, nil
}

// AddBatch stores multiple records in one POST /add_batch request.
func (c *Client) AddBatch(ctx context.Context, records []MemoryRecord) (*BatchResponse, error) {
	resp := &BatchResponse{}
	if err := c.post(ctx, "add_batch", "/add_batch", batchRequest{Messages: records}, resp); err != nil {
		return nil, err
	}

	if resp.Errors == nil {
		resp.Errors = []BatchError{}
	}

	c.logger.Debug("batch added",
		zap.Int("submitted", len(records)),
		zap.Int("processed", resp.Processed),
		zap.Int("errors", len(resp.Errors)),
	)

	return resp, nil
}

// Query retrieves relevant memories via POST /query.
func (c *Client) Query(ctx context.Context, text string, params QueryParams) (*QueryResponse, error) {
	resp := &QueryResponse{}
	req := queryRequest{Text: text, QueryParams: params}
	if err := c.post(ctx, "query", "/query", req, resp); err != nil {
		return nil, err
	}

	if resp.Results == nil {
		resp.Results = []QueryResult{}
	}

	c.logger.Debug("memories queried",
		zap.Int("results", len(resp.Results)),
		zap.Int("token_count", resp.TokenCount),
	)

	return resp, nil
}

// Recent returns the recent-message window for a scope via POST /recent.
func (c *Client) Recent(ctx context.Context, scope chat.Scope, maxMessages int) (*RecentResponse, error) {
	resp := &RecentResponse{}
	req := recentRequest{
		CharacterID: scope.CharacterID,
		ChatID:      scope.ChatID,
		MaxMessages: maxMessages,
	}
	if err := c.post(ctx, "recent", "/recent", req, resp); err != nil {
		return nil, err
	}

	if resp.RecentMessages == nil {
		resp.RecentMessages = []RecentMessage{}
	}

	return resp, nil
}

// Status reports service health via GET /status.
func (c *Client) Status(ctx context.Context) (*StatusResponse, error) {
	const op = "status"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status", nil)
	if err != nil {
		return nil, &Error{Op: op, Message: "creating request", Err: err}
	}

	resp := &StatusResponse{}
	if err := c.do(op, req, resp); err != nil {
		return nil, err
	}

	return resp, nil
}

// Delete removes memories for a scope via POST /delete. A zero scope deletes
// all memories; callers gate that behind explicit confirmation.
func (c *Client) Delete(ctx context.Context, scope chat.Scope) (*DeleteResponse, error) {
	resp := &DeleteResponse{}
	req := deleteRequest{
		CharacterID: scope.CharacterID,
		ChatID:      scope.ChatID,
	}
	if err := c.post(ctx, "delete", "/delete", req, resp); err != nil {
		return nil, err
	}

	c.logger.Debug("memories deleted",
		zap.String("character_id", scope.CharacterID),
		zap.String("chat_id", scope.ChatID),
		zap.Int("deleted", resp.Deleted),
	)

	return resp, nil
}

// post marshals body, issues a single POST, and decodes the response into
// out. All failures are normalized to *Error.
func (c *Client) post(ctx context.Context, op, path string, body, out any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return &Error{Op: op, Message: "marshaling request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return &Error{Op: op, Message: "creating request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(op, req, out)
}

// do executes the request and decodes the body. One attempt, no retries:
// pipelines treat every failure as best-effort and the service enforces its
// own consistency across concurrent writes.
func (c *Client) do(op string, req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Op: op, Message: "service unreachable", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &Error{
			Op:      op,
			Message: fmt.Sprintf("status %d: %s", resp.StatusCode, bytes.TrimSpace(body)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Op: op, Message: "decoding response", Err: err}
	}

	return nil
}
