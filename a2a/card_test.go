package a2a

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAgentCard(t *testing.T) {
	card := NewAgentCard("test-agent", "A test agent", "http://localhost:8080", "1.0.0")

	assert.Equal(t, "test-agent", card.Name)
	assert.Equal(t, "A test agent", card.Description)
	assert.Equal(t, "http://localhost:8080", card.URL)
	assert.Equal(t, "1.0.0", card.Version)
	assert.Equal(t, []string{"text"}, card.DefaultInputModes)
	assert.Equal(t, []string{"text"}, card.DefaultOutputModes)
	assert.False(t, card.Capabilities.Streaming)
}

func TestAgentCard_AddSkill(t *testing.T) {
	card := NewAgentCard("test-agent", "A test agent", "http://localhost:8080", "1.0.0").
		AddSkill("chat", "Chat", "Reply to a user message", "chat").
		AddSkill("summarize", "Summarize", "Summarize a document", "text", "summary")

	require.Len(t, card.Skills, 2)
	assert.Equal(t, "chat", card.Skills[0].ID)
	assert.Equal(t, []string{"chat"}, card.Skills[0].Tags)
	assert.Equal(t, "summarize", card.Skills[1].ID)
	assert.Equal(t, []string{"text", "summary"}, card.Skills[1].Tags)
}

func TestAgentCard_Validate(t *testing.T) {
	tests := []struct {
		name    string
		card    AgentCard
		wantErr error
	}{
		{
			name:    "missing name",
			card:    AgentCard{URL: "http://localhost:8080", Version: "1.0.0"},
			wantErr: ErrMissingName,
		},
		{
			name:    "missing url",
			card:    AgentCard{Name: "agent", Version: "1.0.0"},
			wantErr: ErrMissingURL,
		},
		{
			name:    "missing version",
			card:    AgentCard{Name: "agent", URL: "http://localhost:8080"},
			wantErr: ErrMissingVersion,
		},
		{
			name: "valid",
			card: AgentCard{Name: "agent", URL: "http://localhost:8080", Version: "1.0.0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.card.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
