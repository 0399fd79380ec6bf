package a2a

import (
	"encoding/json"
	"strings"
	"time"
)

// TaskState enumerates the server-reported lifecycle states of a task.
type TaskState string

const (
	// TaskStateSubmitted indicates the task has been accepted by the agent.
	TaskStateSubmitted TaskState = "submitted"
	// TaskStateWorking indicates the agent is actively working on the task.
	TaskStateWorking TaskState = "working"
	// TaskStateInputRequired indicates the agent is waiting for more input.
	TaskStateInputRequired TaskState = "input-required"
	// TaskStateCompleted indicates the task finished successfully.
	TaskStateCompleted TaskState = "completed"
	// TaskStateFailed indicates the task failed.
	TaskStateFailed TaskState = "failed"
	// TaskStateCanceled indicates the task was canceled.
	TaskStateCanceled TaskState = "canceled"
	// TaskStateUnknown is reported when the server state is not recognized.
	TaskStateUnknown TaskState = "unknown"
)

// Terminal reports whether the state ends the task lifecycle. Some servers
// spell canceled with a double l, so both spellings are accepted.
func (s TaskState) Terminal() bool {
	switch s {
	case TaskStateCompleted, TaskStateFailed, TaskStateCanceled, TaskState("cancelled"):
		return true
	}
	return false
}

// Normalize maps unrecognized states to TaskStateUnknown.
func (s TaskState) Normalize() TaskState {
	switch s {
	case TaskStateSubmitted, TaskStateWorking, TaskStateInputRequired,
		TaskStateCompleted, TaskStateFailed, TaskStateCanceled:
		return s
	case TaskState("cancelled"):
		return TaskStateCanceled
	}
	return TaskStateUnknown
}

// UnmarshalJSON normalizes on decode, so states introduced by newer servers
// surface as TaskStateUnknown instead of leaking raw through the client.
func (s *TaskState) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = TaskState(raw).Normalize()
	return nil
}

// TaskStatus is the current state of a task plus an optional progress message.
type TaskStatus struct {
	State     TaskState `json:"state"`
	Message   *Message  `json:"message,omitempty"`
	Timestamp string    `json:"timestamp,omitempty"`
}

// NewTaskStatus stamps a status with the current UTC time.
func NewTaskStatus(state TaskState) TaskStatus {
	return TaskStatus{
		State:     state,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}
}

// Artifact is an output blob produced by the agent while working on a task.
type Artifact struct {
	ArtifactID string         `json:"artifactId"`
	Name       string         `json:"name,omitempty"`
	Parts      []Part         `json:"parts"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Text joins the text parts of the artifact.
func (a *Artifact) Text() string {
	texts := make([]string, 0, len(a.Parts))
	for _, p := range a.Parts {
		if p.Kind == PartKindText && p.Text != "" {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, "")
}

// KindTask is the wire discriminator for Task results.
const KindTask = "task"

// Task is the server-tracked unit of work identified by an opaque string ID.
type Task struct {
	Kind      string         `json:"kind,omitempty"`
	ID        string         `json:"id"`
	ContextID string         `json:"contextId,omitempty"`
	Status    TaskStatus     `json:"status"`
	History   []Message      `json:"history,omitempty"`
	Artifacts []Artifact     `json:"artifacts,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Stream event discriminators.
const (
	KindStatusUpdate   = "status-update"
	KindArtifactUpdate = "artifact-update"
)

// TaskStatusUpdateEvent is streamed when the task changes state.
// Final marks the last event of the stream.
type TaskStatusUpdateEvent struct {
	Kind      string     `json:"kind,omitempty"`
	TaskID    string     `json:"taskId"`
	ContextID string     `json:"contextId,omitempty"`
	Status    TaskStatus `json:"status"`
	Final     bool       `json:"final,omitempty"`
}

// TaskArtifactUpdateEvent is streamed when the task produces or extends an
// artifact. Append selects chunk accumulation over replacement.
type TaskArtifactUpdateEvent struct {
	Kind      string   `json:"kind,omitempty"`
	TaskID    string   `json:"taskId"`
	ContextID string   `json:"contextId,omitempty"`
	Artifact  Artifact `json:"artifact"`
	Append    bool     `json:"append,omitempty"`
	LastChunk bool     `json:"lastChunk,omitempty"`
}

// ArtifactAccumulator folds artifact update events into per-artifact text,
// honoring the append/replace semantics of the protocol. Order of arrival is
// preserved for Texts.
type ArtifactAccumulator struct {
	order []string
	texts map[string]string
}

// NewArtifactAccumulator returns an empty accumulator.
func NewArtifactAccumulator() *ArtifactAccumulator {
	return &ArtifactAccumulator{texts: make(map[string]string)}
}

// Apply merges one artifact update event and returns the artifact's
// accumulated text so far.
func (acc *ArtifactAccumulator) Apply(ev *TaskArtifactUpdateEvent) string {
	id := ev.Artifact.ArtifactID
	if _, ok := acc.texts[id]; !ok {
		acc.order = append(acc.order, id)
		acc.texts[id] = ""
	}
	if ev.Append {
		acc.texts[id] += ev.Artifact.Text()
	} else {
		acc.texts[id] = ev.Artifact.Text()
	}
	return acc.texts[id]
}

// Text returns the accumulated text for an artifact ID.
func (acc *ArtifactAccumulator) Text(artifactID string) (string, bool) {
	text, ok := acc.texts[artifactID]
	return text, ok
}

// Texts returns all accumulated artifacts in arrival order.
func (acc *ArtifactAccumulator) Texts() map[string]string {
	out := make(map[string]string, len(acc.texts))
	for id, text := range acc.texts {
		out[id] = text
	}
	return out
}

// IDs returns artifact IDs in arrival order.
func (acc *ArtifactAccumulator) IDs() []string {
	ids := make([]string, len(acc.order))
	copy(ids, acc.order)
	return ids
}
