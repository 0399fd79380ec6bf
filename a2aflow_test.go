package a2aflow

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/a2aflow/a2a"
)

func TestConnect(t *testing.T) {
	srv := a2a.NewServer(nil, a2a.ExecutorFunc(func(ctx context.Context, msg *a2a.Message) ([]a2a.Part, error) {
		return []a2a.Part{a2a.NewTextPart("hi")}, nil
	}))
	ts := httptest.NewServer(srv)
	defer ts.Close()
	srv.Card().URL = ts.URL

	client, err := Connect(context.Background(), ts.URL)
	require.NoError(t, err)
	require.NotNil(t, client.Card())
	assert.Equal(t, srv.Card().Name, client.Card().Name)
}

func TestConnect_Unreachable(t *testing.T) {
	_, err := Connect(context.Background(), "http://127.0.0.1:1")
	assert.ErrorIs(t, err, a2a.ErrRemoteUnavailable)
}

func TestAsk(t *testing.T) {
	srv := a2a.NewServer(nil, a2a.ExecutorFunc(func(ctx context.Context, msg *a2a.Message) ([]a2a.Part, error) {
		return []a2a.Part{a2a.NewTextPart("echo: " + msg.Text())}, nil
	}))
	ts := httptest.NewServer(srv)
	defer ts.Close()
	srv.Card().URL = ts.URL

	task, err := Ask(context.Background(), ts.URL, "hello")
	require.NoError(t, err)

	assert.Equal(t, a2a.TaskStateCompleted, task.Status.State)
	require.NotEmpty(t, task.Artifacts)
	assert.Equal(t, "echo: hello", task.Artifacts[0].Text())
}
