package a2a

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BaSui01/a2aflow/internal/tlsutil"
)

// StreamMessage sends a message via message/stream and returns a channel of
// decoded server-sent events. The channel is always closed: after a final
// status update, on [DONE], on EOF, on a decode error (delivered as the last
// event's Err) or when ctx is canceled. Consumers must drain the channel.
//
// When the client was built from an agent card that does not advertise
// streaming, ErrStreamingNotSupported is returned up front.
func (c *Client) StreamMessage(ctx context.Context, params MessageSendParams) (<-chan StreamEvent, error) {
	if c.card != nil && !c.card.Capabilities.Streaming {
		return nil, ErrStreamingNotSupported
	}
	if err := params.Message.Validate(); err != nil {
		return nil, err
	}

	req, err := newRequest(uuid.NewString(), MethodMessageStream, params)
	if err != nil {
		return nil, err
	}

	// The overall client timeout would sever long-lived streams, so
	// streaming uses a transport-only client and relies on ctx for
	// cancellation.
	streamClient := c.config.HTTPClient
	if streamClient == nil {
		streamClient = &http.Client{Transport: tlsutil.SecureTransport()}
	}
	httpResp, err := c.doStream(ctx, streamClient, req)
	if err != nil {
		return nil, err
	}

	if httpResp.StatusCode >= 400 {
		defer httpResp.Body.Close()
		body, _ := io.ReadAll(httpResp.Body)
		return nil, fmt.Errorf("%w: status %d, body: %s", ErrRemoteUnavailable, httpResp.StatusCode, string(body))
	}

	ch := make(chan StreamEvent)
	go c.consumeSSE(ctx, httpResp.Body, ch)
	return ch, nil
}

// doStream posts the stream request with SSE accept headers.
func (c *Client) doStream(ctx context.Context, httpClient *http.Client, req *Request) (*http.Response, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(string(payload)))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	for k, v := range c.config.Headers {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	return httpResp, nil
}

// consumeSSE parses the SSE body line by line and forwards decoded events.
// Each data line is a JSON-RPC response whose result is the stream union.
func (c *Client) consumeSSE(ctx context.Context, body io.ReadCloser, ch chan<- StreamEvent) {
	defer body.Close()
	defer close(ch)

	reader := bufio.NewReader(body)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				c.emit(ctx, ch, StreamEvent{Err: fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)})
			}
			return
		}

		line = strings.TrimSpace(line)
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			return
		}

		var resp Response
		if err := json.Unmarshal([]byte(data), &resp); err != nil {
			c.emit(ctx, ch, StreamEvent{Err: fmt.Errorf("%w: %v", ErrInvalidResponse, err)})
			return
		}
		if resp.Error != nil {
			c.emit(ctx, ch, StreamEvent{Err: resp.Error})
			return
		}

		event, err := decodeStreamResult(resp.Result)
		if err != nil {
			c.emit(ctx, ch, StreamEvent{Err: err})
			return
		}

		if !c.emit(ctx, ch, event) {
			return
		}

		if event.StatusUpdate != nil && event.StatusUpdate.Final {
			c.logger.Debug("stream finished",
				zap.String("task_id", event.StatusUpdate.TaskID),
				zap.String("state", string(event.StatusUpdate.Status.State)),
			)
			return
		}
	}
}

// emit delivers one event unless ctx is done. Reports whether delivery
// happened.
func (c *Client) emit(ctx context.Context, ch chan<- StreamEvent, ev StreamEvent) bool {
	select {
	case <-ctx.Done():
		return false
	case ch <- ev:
		return true
	}
}
