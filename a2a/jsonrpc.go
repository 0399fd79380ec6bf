package a2a

import (
	"encoding/json"
	"fmt"
)

// JSON-RPC method names defined by the A2A protocol.
const (
	MethodMessageSend   = "message/send"
	MethodMessageStream = "message/stream"
	MethodTasksGet      = "tasks/get"
	MethodTasksCancel   = "tasks/cancel"
)

// JSON-RPC error codes. The negative 32000 range is reserved by the A2A
// protocol for task-level failures.
const (
	CodeParseError           = -32700
	CodeInvalidRequest       = -32600
	CodeMethodNotFound       = -32601
	CodeInvalidParams        = -32602
	CodeInternalError        = -32603
	CodeTaskNotFound         = -32001
	CodeTaskNotCancelable    = -32002
	CodeUnsupportedOperation = -32004
)

// Request is a JSON-RPC 2.0 request envelope.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      string          `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is a JSON-RPC 2.0 response envelope. Result is kept raw so the
// caller can decode the protocol's result union.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      string          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	return fmt.Sprintf("a2a rpc error %d: %s", e.Code, e.Message)
}

// Unwrap maps protocol error codes onto package sentinels so callers can use
// errors.Is.
func (e *RPCError) Unwrap() error {
	switch e.Code {
	case CodeTaskNotFound:
		return ErrTaskNotFound
	case CodeTaskNotCancelable:
		return ErrTaskNotCancelable
	}
	return nil
}

// MessageSendParams are the params for message/send and message/stream.
type MessageSendParams struct {
	Message  Message        `json:"message"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// TaskQueryParams are the params for tasks/get. HistoryLength limits the
// returned history to the most recent N messages; zero or negative means the
// full history.
type TaskQueryParams struct {
	ID            string `json:"id"`
	HistoryLength int    `json:"historyLength,omitempty"`
}

// TaskIDParams are the params for tasks/cancel.
type TaskIDParams struct {
	ID string `json:"id"`
}

// SendResult is the result union of message/send: either a Task snapshot or
// a direct Message reply, discriminated by the "kind" field.
type SendResult struct {
	Task    *Task
	Message *Message
}

// TaskID extracts the server-issued task identifier from the result.
// Returns ErrMissingTaskID when the response exposes none.
func (r *SendResult) TaskID() (string, error) {
	if r.Task != nil && r.Task.ID != "" {
		return r.Task.ID, nil
	}
	if r.Message != nil && r.Message.TaskID != "" {
		return r.Message.TaskID, nil
	}
	return "", ErrMissingTaskID
}

// UnmarshalJSON decodes the result union by its kind discriminator.
func (r *SendResult) UnmarshalJSON(data []byte) error {
	kind, err := peekKind(data)
	if err != nil {
		return err
	}
	switch kind {
	case KindTask:
		r.Task = new(Task)
		return json.Unmarshal(data, r.Task)
	case KindMessage:
		r.Message = new(Message)
		return json.Unmarshal(data, r.Message)
	}
	return fmt.Errorf("%w: unexpected result kind %q", ErrInvalidResponse, kind)
}

// StreamEvent is one decoded message/stream event. Exactly one of the
// pointer fields is set unless Err is non-nil, in which case Err is the last
// event before the channel closes.
type StreamEvent struct {
	Task           *Task
	Message        *Message
	StatusUpdate   *TaskStatusUpdateEvent
	ArtifactUpdate *TaskArtifactUpdateEvent
	Err            error
}

// decodeStreamResult decodes the result union of a message/stream response.
func decodeStreamResult(data []byte) (StreamEvent, error) {
	kind, err := peekKind(data)
	if err != nil {
		return StreamEvent{}, err
	}
	switch kind {
	case KindTask:
		t := new(Task)
		if err := json.Unmarshal(data, t); err != nil {
			return StreamEvent{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
		return StreamEvent{Task: t}, nil
	case KindMessage:
		m := new(Message)
		if err := json.Unmarshal(data, m); err != nil {
			return StreamEvent{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
		return StreamEvent{Message: m}, nil
	case KindStatusUpdate:
		ev := new(TaskStatusUpdateEvent)
		if err := json.Unmarshal(data, ev); err != nil {
			return StreamEvent{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
		return StreamEvent{StatusUpdate: ev}, nil
	case KindArtifactUpdate:
		ev := new(TaskArtifactUpdateEvent)
		if err := json.Unmarshal(data, ev); err != nil {
			return StreamEvent{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
		return StreamEvent{ArtifactUpdate: ev}, nil
	}
	return StreamEvent{}, fmt.Errorf("%w: unexpected stream result kind %q", ErrInvalidResponse, kind)
}

// peekKind reads only the kind discriminator from a result object.
func peekKind(data []byte) (string, error) {
	var probe struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if probe.Kind == "" {
		return "", fmt.Errorf("%w: result has no kind discriminator", ErrInvalidResponse)
	}
	return probe.Kind, nil
}

// newRequest builds a JSON-RPC request envelope with marshaled params.
func newRequest(id, method string, params any) (*Request, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal params: %w", err)
	}
	return &Request{
		JSONRPC: "2.0",
		ID:      id,
		Method:  method,
		Params:  raw,
	}, nil
}
