package a2a

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BaSui01/a2aflow/internal/tlsutil"
)

// ClientConfig holds configuration for the A2A client.
type ClientConfig struct {
	// Timeout is the default timeout for non-streaming HTTP requests.
	Timeout time.Duration
	// Headers are additional headers to include in every request.
	Headers map[string]string
	// HTTPClient overrides the hardened default client when set.
	HTTPClient *http.Client
	// Logger receives request-level debug logging. Nil means no logging.
	Logger *zap.Logger
}

// DefaultClientConfig returns a ClientConfig with sensible defaults.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		Timeout: 30 * time.Second,
		Headers: make(map[string]string),
	}
}

// Client speaks the A2A JSON-RPC protocol against a single agent endpoint.
type Client struct {
	endpoint   string
	config     *ClientConfig
	httpClient *http.Client
	logger     *zap.Logger

	// card is the agent card the client was built from, when known.
	card *AgentCard
}

// NewClient creates a client for the agent at endpoint (the agent's base
// URL). A nil config selects DefaultClientConfig.
func NewClient(endpoint string, config *ClientConfig) *Client {
	if config == nil {
		config = DefaultClientConfig()
	}
	if config.Headers == nil {
		config.Headers = make(map[string]string)
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = tlsutil.SecureHTTPClient(config.Timeout)
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		config:     config,
		httpClient: httpClient,
		logger:     logger,
	}
}

// NewClientFromCard creates a client bound to a resolved agent card.
func NewClientFromCard(card *AgentCard, config *ClientConfig) (*Client, error) {
	if card == nil {
		return nil, fmt.Errorf("%w: nil agent card", ErrInvalidResponse)
	}
	if err := card.Validate(); err != nil {
		return nil, err
	}
	c := NewClient(card.URL, config)
	c.card = card
	return c, nil
}

// Card returns the agent card the client was built from, or nil.
func (c *Client) Card() *AgentCard {
	return c.card
}

// SendMessage sends a message via message/send and returns the result union
// (a Task snapshot or a direct Message reply).
func (c *Client) SendMessage(ctx context.Context, params MessageSendParams) (*SendResult, error) {
	if err := params.Message.Validate(); err != nil {
		return nil, err
	}

	resp, err := c.call(ctx, MethodMessageSend, params)
	if err != nil {
		return nil, err
	}

	var result SendResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetTask queries a task by ID via tasks/get.
func (c *Client) GetTask(ctx context.Context, params TaskQueryParams) (*Task, error) {
	if params.ID == "" {
		return nil, fmt.Errorf("%w: empty task id", ErrTaskNotFound)
	}

	resp, err := c.call(ctx, MethodTasksGet, params)
	if err != nil {
		return nil, err
	}

	var task Task
	if err := json.Unmarshal(resp.Result, &task); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return &task, nil
}

// CancelTask requests cancellation of a task via tasks/cancel and returns the
// resulting task snapshot.
func (c *Client) CancelTask(ctx context.Context, taskID string) (*Task, error) {
	if taskID == "" {
		return nil, fmt.Errorf("%w: empty task id", ErrTaskNotFound)
	}

	resp, err := c.call(ctx, MethodTasksCancel, TaskIDParams{ID: taskID})
	if err != nil {
		return nil, err
	}

	var task Task
	if err := json.Unmarshal(resp.Result, &task); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return &task, nil
}

// SetHeader sets a custom header for all requests.
func (c *Client) SetHeader(key, value string) {
	c.config.Headers[key] = value
}

// call performs one JSON-RPC round trip and unwraps the response envelope.
func (c *Client) call(ctx context.Context, method string, params any) (*Response, error) {
	req, err := newRequest(uuid.NewString(), method, params)
	if err != nil {
		return nil, err
	}

	httpResp, err := c.post(ctx, req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode >= 400 {
		body, _ := io.ReadAll(httpResp.Body)
		return nil, fmt.Errorf("%w: status %d, body: %s", ErrRemoteUnavailable, httpResp.StatusCode, string(body))
	}

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	if len(resp.Result) == 0 {
		return nil, fmt.Errorf("%w: empty result", ErrInvalidResponse)
	}

	c.logger.Debug("rpc call completed",
		zap.String("method", method),
		zap.String("request_id", req.ID),
	)

	return &resp, nil
}

// post sends one JSON-RPC request envelope. The caller owns the response body.
func (c *Client) post(ctx context.Context, req *Request) (*http.Response, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if req.Method == MethodMessageStream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}
	for k, v := range c.config.Headers {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	return httpResp, nil
}
