package a2a

// AgentCapabilities declares optional protocol features of an agent.
type AgentCapabilities struct {
	Streaming         bool `json:"streaming"`
	PushNotifications bool `json:"pushNotifications"`
}

// AgentSkill describes one capability advertised on an agent card.
type AgentSkill struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Examples    []string `json:"examples,omitempty"`
}

// AgentCard is the self-description an agent serves at
// /.well-known/agent.json.
type AgentCard struct {
	Name               string            `json:"name"`
	Description        string            `json:"description,omitempty"`
	URL                string            `json:"url"`
	Version            string            `json:"version"`
	Capabilities       AgentCapabilities `json:"capabilities"`
	Skills             []AgentSkill      `json:"skills,omitempty"`
	DefaultInputModes  []string          `json:"defaultInputModes,omitempty"`
	DefaultOutputModes []string          `json:"defaultOutputModes,omitempty"`
}

// NewAgentCard builds a minimal text-in text-out agent card.
func NewAgentCard(name, description, url, version string) *AgentCard {
	return &AgentCard{
		Name:               name,
		Description:        description,
		URL:                url,
		Version:            version,
		DefaultInputModes:  []string{"text"},
		DefaultOutputModes: []string{"text"},
	}
}

// AddSkill appends a skill to the card and returns the card for chaining.
func (c *AgentCard) AddSkill(id, name, description string, tags ...string) *AgentCard {
	c.Skills = append(c.Skills, AgentSkill{
		ID:          id,
		Name:        name,
		Description: description,
		Tags:        tags,
	})
	return c
}

// Validate checks the card for the fields the protocol requires.
func (c *AgentCard) Validate() error {
	if c.Name == "" {
		return ErrMissingName
	}
	if c.URL == "" {
		return ErrMissingURL
	}
	if c.Version == "" {
		return ErrMissingVersion
	}
	return nil
}
