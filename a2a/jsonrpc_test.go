package a2a

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendResult_UnmarshalTask(t *testing.T) {
	data := []byte(`{
		"kind": "task",
		"id": "task-1",
		"contextId": "ctx-1",
		"status": {"state": "submitted"}
	}`)

	var result SendResult
	require.NoError(t, json.Unmarshal(data, &result))

	require.NotNil(t, result.Task)
	assert.Nil(t, result.Message)
	assert.Equal(t, "task-1", result.Task.ID)
	assert.Equal(t, TaskStateSubmitted, result.Task.Status.State)

	id, err := result.TaskID()
	require.NoError(t, err)
	assert.Equal(t, "task-1", id)
}

func TestSendResult_UnmarshalMessage(t *testing.T) {
	data := []byte(`{
		"kind": "message",
		"role": "agent",
		"messageId": "m1",
		"taskId": "task-2",
		"parts": [{"kind": "text", "text": "hi"}]
	}`)

	var result SendResult
	require.NoError(t, json.Unmarshal(data, &result))

	require.NotNil(t, result.Message)
	assert.Nil(t, result.Task)
	assert.Equal(t, "hi", result.Message.Text())

	id, err := result.TaskID()
	require.NoError(t, err)
	assert.Equal(t, "task-2", id)
}

func TestSendResult_TaskIDMissing(t *testing.T) {
	result := SendResult{Message: &Message{MessageID: "m1", Role: RoleAgent}}

	_, err := result.TaskID()
	assert.ErrorIs(t, err, ErrMissingTaskID)
}

func TestSendResult_UnmarshalUnknownKind(t *testing.T) {
	var result SendResult
	err := json.Unmarshal([]byte(`{"kind": "widget"}`), &result)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestSendResult_UnmarshalNoKind(t *testing.T) {
	var result SendResult
	err := json.Unmarshal([]byte(`{"id": "task-1"}`), &result)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestDecodeStreamResult(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		check func(t *testing.T, ev StreamEvent)
	}{
		{
			name: "task",
			data: `{"kind":"task","id":"t1","status":{"state":"submitted"}}`,
			check: func(t *testing.T, ev StreamEvent) {
				require.NotNil(t, ev.Task)
				assert.Equal(t, "t1", ev.Task.ID)
			},
		},
		{
			name: "message",
			data: `{"kind":"message","role":"agent","messageId":"m1","parts":[{"kind":"text","text":"hi"}]}`,
			check: func(t *testing.T, ev StreamEvent) {
				require.NotNil(t, ev.Message)
				assert.Equal(t, "hi", ev.Message.Text())
			},
		},
		{
			name: "status update",
			data: `{"kind":"status-update","taskId":"t1","status":{"state":"working"},"final":false}`,
			check: func(t *testing.T, ev StreamEvent) {
				require.NotNil(t, ev.StatusUpdate)
				assert.Equal(t, TaskStateWorking, ev.StatusUpdate.Status.State)
				assert.False(t, ev.StatusUpdate.Final)
			},
		},
		{
			name: "artifact update",
			data: `{"kind":"artifact-update","taskId":"t1","artifact":{"artifactId":"a1","parts":[{"kind":"text","text":"chunk"}]},"append":true,"lastChunk":true}`,
			check: func(t *testing.T, ev StreamEvent) {
				require.NotNil(t, ev.ArtifactUpdate)
				assert.True(t, ev.ArtifactUpdate.Append)
				assert.True(t, ev.ArtifactUpdate.LastChunk)
				assert.Equal(t, "chunk", ev.ArtifactUpdate.Artifact.Text())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := decodeStreamResult([]byte(tt.data))
			require.NoError(t, err)
			tt.check(t, ev)
		})
	}
}

func TestDecodeStreamResult_Invalid(t *testing.T) {
	_, err := decodeStreamResult([]byte(`{"taskId":"t1"}`))
	assert.ErrorIs(t, err, ErrInvalidResponse)

	_, err = decodeStreamResult([]byte(`{"kind":"widget"}`))
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestRPCError_Unwrap(t *testing.T) {
	notFound := &RPCError{Code: CodeTaskNotFound, Message: "task missing"}
	assert.True(t, errors.Is(notFound, ErrTaskNotFound))
	assert.Contains(t, notFound.Error(), "-32001")

	notCancelable := &RPCError{Code: CodeTaskNotCancelable, Message: "already done"}
	assert.True(t, errors.Is(notCancelable, ErrTaskNotCancelable))

	internal := &RPCError{Code: CodeInternalError, Message: "boom"}
	assert.False(t, errors.Is(internal, ErrTaskNotFound))
}

func TestNewRequest(t *testing.T) {
	req, err := newRequest("req-1", MethodTasksGet, TaskQueryParams{ID: "t1", HistoryLength: 5})
	require.NoError(t, err)

	assert.Equal(t, "2.0", req.JSONRPC)
	assert.Equal(t, "req-1", req.ID)
	assert.Equal(t, MethodTasksGet, req.Method)
	assert.JSONEq(t, `{"id":"t1","historyLength":5}`, string(req.Params))
}
