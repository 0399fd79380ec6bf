package a2a

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardResolver_Resolve(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, AgentCardPath, r.URL.Path)
		hits.Add(1)
		card := NewAgentCard("weather-agent", "Reports the weather", "http://example.com", "2.1.0")
		card.Capabilities.Streaming = true
		require.NoError(t, json.NewEncoder(w).Encode(card))
	}))
	defer server.Close()

	resolver := NewCardResolver(server.Client())

	card, err := resolver.Resolve(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "weather-agent", card.Name)
	assert.True(t, card.Capabilities.Streaming)

	// Second resolve is served from the cache, trailing slash included.
	again, err := resolver.Resolve(context.Background(), server.URL+"/")
	require.NoError(t, err)
	assert.Equal(t, card, again)
	assert.Equal(t, int64(1), hits.Load())

	resolver.ClearCache()
	_, err = resolver.Resolve(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, int64(2), hits.Load())
}

func TestCardResolver_EmptyURL(t *testing.T) {
	resolver := NewCardResolver(nil)

	_, err := resolver.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, ErrRemoteUnavailable)
}

func TestCardResolver_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	resolver := NewCardResolver(server.Client())
	_, err := resolver.Resolve(context.Background(), server.URL)
	assert.ErrorIs(t, err, ErrRemoteUnavailable)
}

func TestCardResolver_InvalidCard(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"agent"}`))
	}))
	defer server.Close()

	resolver := NewCardResolver(server.Client())
	_, err := resolver.Resolve(context.Background(), server.URL)
	assert.ErrorIs(t, err, ErrMissingURL)
}

func TestCardResolver_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	resolver := NewCardResolver(server.Client())
	_, err := resolver.Resolve(context.Background(), server.URL)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}
