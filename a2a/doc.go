/*
Package a2a implements a client and a minimal server for the Agent-to-Agent
(A2A) protocol: JSON-RPC 2.0 over HTTP with Server-Sent Events for streaming.

# Core types

  - AgentCard — agent metadata served at /.well-known/agent.json
  - Message — a user or agent message made of typed Parts
  - Task — a server-tracked unit of work with status, history and artifacts
  - Client — message/send, message/stream, tasks/get, tasks/cancel
  - Poller — bounded sleep-and-retry loop over tasks/get
  - Server — in-memory demo server backing the examples

# Typical flow

	resolver := a2a.NewCardResolver(nil)
	card, err := resolver.Resolve(ctx, "http://localhost:8080")

	client := a2a.NewClient(card.URL, nil)
	result, err := client.SendMessage(ctx, a2a.MessageSendParams{
	    Message: a2a.NewUserTextMessage("Tell me a very short story."),
	})

	taskID, err := result.TaskID()
	task, err := a2a.NewPoller(client, nil).Wait(ctx, taskID)
*/
package a2a
