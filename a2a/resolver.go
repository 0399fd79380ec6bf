package a2a

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/BaSui01/a2aflow/internal/tlsutil"
)

// AgentCardPath is the well-known discovery path for agent cards.
const AgentCardPath = "/.well-known/agent.json"

// cardCacheTTL bounds how long a discovered card is reused.
const cardCacheTTL = 5 * time.Minute

// CardResolver fetches and caches agent cards from remote agents.
type CardResolver struct {
	httpClient *http.Client

	mu    sync.RWMutex
	cache map[string]*cachedCard
}

type cachedCard struct {
	card      *AgentCard
	expiresAt time.Time
}

// NewCardResolver creates a resolver. A nil httpClient selects the hardened
// default client.
func NewCardResolver(httpClient *http.Client) *CardResolver {
	if httpClient == nil {
		httpClient = tlsutil.SecureHTTPClient(30 * time.Second)
	}
	return &CardResolver{
		httpClient: httpClient,
		cache:      make(map[string]*cachedCard),
	}
}

// Resolve retrieves the AgentCard for the agent at baseURL. Cards are cached
// for a short TTL per base URL.
func (r *CardResolver) Resolve(ctx context.Context, baseURL string) (*AgentCard, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%w: empty base url", ErrRemoteUnavailable)
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	r.mu.RLock()
	if cached, ok := r.cache[baseURL]; ok && time.Now().Before(cached.expiresAt) {
		r.mu.RUnlock()
		return cached.card, nil
	}
	r.mu.RUnlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+AgentCardPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status code %d", ErrRemoteUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var card AgentCard
	if err := json.Unmarshal(body, &card); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if err := card.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[baseURL] = &cachedCard{
		card:      &card,
		expiresAt: time.Now().Add(cardCacheTTL),
	}
	r.mu.Unlock()

	return &card, nil
}

// ClearCache drops all cached cards.
func (r *CardResolver) ClearCache() {
	r.mu.Lock()
	r.cache = make(map[string]*cachedCard)
	r.mu.Unlock()
}
