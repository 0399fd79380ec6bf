package a2a

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Role identifies the sender of a message.
type Role string

const (
	// RoleUser marks a message originating from the client.
	RoleUser Role = "user"
	// RoleAgent marks a message originating from the agent.
	RoleAgent Role = "agent"
)

// PartKind discriminates the content type of a message part.
type PartKind string

const (
	// PartKindText is a plain text part.
	PartKindText PartKind = "text"
	// PartKindFile is a file part (inline bytes or URI).
	PartKindFile PartKind = "file"
	// PartKindData is a structured JSON data part.
	PartKindData PartKind = "data"
)

// Part is a single typed content element of a message or artifact.
// The Kind field selects which of the remaining fields is meaningful.
type Part struct {
	Kind PartKind        `json:"kind"`
	Text string          `json:"text,omitempty"`
	File *FileContent    `json:"file,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// FileContent carries file data inline (base64) or by reference.
type FileContent struct {
	Name     string `json:"name,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
	Bytes    string `json:"bytes,omitempty"`
	URI      string `json:"uri,omitempty"`
}

// NewTextPart returns a text part.
func NewTextPart(text string) Part {
	return Part{Kind: PartKindText, Text: text}
}

// NewDataPart returns a structured data part.
func NewDataPart(data json.RawMessage) Part {
	return Part{Kind: PartKindData, Data: data}
}

// Message is a single turn in a task conversation.
type Message struct {
	// Kind is always "message" on the wire so results can be discriminated
	// from tasks and update events.
	Kind      string         `json:"kind,omitempty"`
	Role      Role           `json:"role"`
	Parts     []Part         `json:"parts"`
	MessageID string         `json:"messageId"`
	TaskID    string         `json:"taskId,omitempty"`
	ContextID string         `json:"contextId,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// KindMessage is the wire discriminator for Message results.
const KindMessage = "message"

// NewUserTextMessage builds a user message with a single text part and a
// fresh message ID.
func NewUserTextMessage(text string) Message {
	return Message{
		Kind:      KindMessage,
		Role:      RoleUser,
		Parts:     []Part{NewTextPart(text)},
		MessageID: uuid.NewString(),
	}
}

// NewAgentTextMessage builds an agent reply with a single text part.
func NewAgentTextMessage(text, taskID, contextID string) Message {
	return Message{
		Kind:      KindMessage,
		Role:      RoleAgent,
		Parts:     []Part{NewTextPart(text)},
		MessageID: uuid.NewString(),
		TaskID:    taskID,
		ContextID: contextID,
	}
}

// Validate checks the message for the fields the protocol requires.
func (m *Message) Validate() error {
	if m.MessageID == "" {
		return ErrMessageMissingID
	}
	if m.Role == "" {
		return ErrMessageMissingRole
	}
	if m.Role != RoleUser && m.Role != RoleAgent {
		return fmt.Errorf("%w: unknown role %q", ErrMessageMissingRole, m.Role)
	}
	if len(m.Parts) == 0 {
		return ErrMessageNoParts
	}
	return nil
}

// Text joins all text parts of the message with single spaces.
// Non-text parts are skipped.
func (m *Message) Text() string {
	texts := make([]string, 0, len(m.Parts))
	for _, p := range m.Parts {
		if p.Kind == PartKindText && p.Text != "" {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, " ")
}
