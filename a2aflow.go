// Package a2aflow provides a top-level convenience entry point for talking to
// A2A agents with minimal boilerplate.
//
// Usage:
//
//	import "github.com/BaSui01/a2aflow"
//
//	client, err := a2aflow.Connect(ctx, "http://localhost:8080")
//	result, err := client.SendMessage(ctx, a2a.MessageSendParams{
//	    Message: a2a.NewUserTextMessage("hello"),
//	})
//
// This is a thin wrapper around the [a2a] package; use that package directly
// when you need a custom HTTP client, headers, or logging.
package a2aflow

import (
	"context"

	"github.com/BaSui01/a2aflow/a2a"
)

// Connect resolves the agent card at baseURL and returns a client bound to
// it. Streaming support is checked lazily by [a2a.Client.StreamMessage].
func Connect(ctx context.Context, baseURL string) (*a2a.Client, error) {
	card, err := a2a.NewCardResolver(nil).Resolve(ctx, baseURL)
	if err != nil {
		return nil, err
	}
	return a2a.NewClientFromCard(card, nil)
}

// Ask sends one text message to the agent at baseURL and waits for the task
// to finish, returning the final task snapshot. It is the shortest path from
// a prompt to a completed task.
func Ask(ctx context.Context, baseURL, text string) (*a2a.Task, error) {
	client, err := Connect(ctx, baseURL)
	if err != nil {
		return nil, err
	}

	result, err := client.SendMessage(ctx, a2a.MessageSendParams{
		Message: a2a.NewUserTextMessage(text),
	})
	if err != nil {
		return nil, err
	}

	taskID, err := result.TaskID()
	if err != nil {
		return nil, err
	}

	return a2a.NewPoller(client, nil).Wait(ctx, taskID)
}
