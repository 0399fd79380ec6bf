package a2a

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BaSui01/a2aflow/internal/metrics"
)

// Executor produces the agent's reply parts for one incoming message.
// It is the only piece a demo agent needs to implement.
type Executor interface {
	Execute(ctx context.Context, msg *Message) ([]Part, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, msg *Message) ([]Part, error)

// Execute implements Executor.
func (f ExecutorFunc) Execute(ctx context.Context, msg *Message) ([]Part, error) {
	return f(ctx, msg)
}

// ServerConfig holds configuration for the demo A2A server.
type ServerConfig struct {
	// AgentName and AgentDescription fill the served agent card.
	AgentName        string
	AgentDescription string
	// BaseURL is the externally visible URL put on the agent card.
	BaseURL string
	// Version is the agent version on the card.
	Version string
	// RequestTimeout bounds task execution.
	RequestTimeout time.Duration
	// Logger is the logger instance. Nil means no logging.
	Logger *zap.Logger
	// Metrics receives server metrics. Nil disables recording.
	Metrics *metrics.Collector
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		AgentName:        "a2aflow demo agent",
		AgentDescription: "A minimal A2A agent for the example clients",
		BaseURL:          "http://localhost:8080",
		Version:          "1.0.0",
		RequestTimeout:   30 * time.Second,
	}
}

// Server is an in-memory A2A server: one agent card, one executor, tasks kept
// in a map for the lifetime of the process. It exists so the example clients
// in this repository have something real to talk to.
type Server struct {
	config   *ServerConfig
	executor Executor
	logger   *zap.Logger
	card     *AgentCard

	mu    sync.RWMutex
	tasks map[string]*serverTask
}

// serverTask pairs the stored task with its cancel handle.
type serverTask struct {
	task   *Task
	cancel context.CancelFunc
}

// NewServer creates a demo server around an executor. A nil config selects
// DefaultServerConfig.
func NewServer(config *ServerConfig, executor Executor) *Server {
	if config == nil {
		config = DefaultServerConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	card := NewAgentCard(config.AgentName, config.AgentDescription, config.BaseURL, config.Version)
	card.Capabilities.Streaming = true
	card.AddSkill("chat", "Chat", "Reply to a user message", "chat")

	return &Server{
		config:   config,
		executor: executor,
		logger:   logger,
		card:     card,
		tasks:    make(map[string]*serverTask),
	}
}

// Card returns the agent card the server publishes.
func (s *Server) Card() *AgentCard {
	return s.card
}

// ServeHTTP implements http.Handler: agent card discovery plus the JSON-RPC
// endpoint at the root path.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == AgentCardPath && r.Method == http.MethodGet:
		s.writeJSON(w, http.StatusOK, s.card)
	case r.URL.Path == "/" && r.Method == http.MethodPost:
		s.handleRPC(w, r)
	default:
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
	}
}

// handleRPC decodes the JSON-RPC envelope and dispatches by method.
func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeRPCError(w, "", &RPCError{Code: CodeParseError, Message: err.Error()})
		return
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		s.writeRPCError(w, req.ID, &RPCError{Code: CodeInvalidRequest, Message: "not a jsonrpc 2.0 request"})
		return
	}

	var rpcErr *RPCError
	switch req.Method {
	case MethodMessageSend:
		rpcErr = s.handleMessageSend(w, &req)
	case MethodMessageStream:
		rpcErr = s.handleMessageStream(w, r, &req)
	case MethodTasksGet:
		rpcErr = s.handleTasksGet(w, &req)
	case MethodTasksCancel:
		rpcErr = s.handleTasksCancel(w, &req)
	default:
		rpcErr = &RPCError{Code: CodeMethodNotFound, Message: fmt.Sprintf("unknown method %q", req.Method)}
	}

	outcome := "ok"
	if rpcErr != nil {
		s.writeRPCError(w, req.ID, rpcErr)
		outcome = "error"
	}
	if s.config.Metrics != nil {
		s.config.Metrics.RecordRPC(req.Method, outcome, time.Since(start))
	}
}

// handleMessageSend accepts a message, creates a task and runs the executor
// in the background. The response is the submitted task snapshot, so clients
// can capture the task ID and poll.
func (s *Server) handleMessageSend(w http.ResponseWriter, req *Request) *RPCError {
	params, rpcErr := decodeSendParams(req)
	if rpcErr != nil {
		return rpcErr
	}

	task, taskCtx, cancel := s.createTask(&params.Message)
	snapshot := s.snapshot(task.ID, 0)

	ctx, ctxCancel := context.WithTimeout(taskCtx, s.config.RequestTimeout)
	go func() {
		defer ctxCancel()
		defer cancel()
		s.runTask(ctx, task.ID, &params.Message)
	}()

	s.writeResult(w, req.ID, snapshot)
	return nil
}

// handleMessageStream accepts a message and streams task progress as
// server-sent events: a working status update, one artifact update per reply
// part, then a final status update.
func (s *Server) handleMessageStream(w http.ResponseWriter, r *http.Request, req *Request) *RPCError {
	params, rpcErr := decodeSendParams(req)
	if rpcErr != nil {
		return rpcErr
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		return &RPCError{Code: CodeInternalError, Message: "streaming unsupported by connection"}
	}

	task, taskCtx, cancel := s.createTask(&params.Message)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	emit := func(result any, kind string) {
		raw, err := json.Marshal(result)
		if err != nil {
			s.logger.Error("failed to marshal stream event", zap.Error(err))
			return
		}
		resp := Response{JSONRPC: "2.0", ID: req.ID, Result: raw}
		payload, err := json.Marshal(resp)
		if err != nil {
			s.logger.Error("failed to marshal stream envelope", zap.Error(err))
			return
		}
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
		if s.config.Metrics != nil {
			s.config.Metrics.RecordStreamEvent(kind)
		}
	}

	ctx, ctxCancel := context.WithTimeout(taskCtx, s.config.RequestTimeout)
	defer ctxCancel()
	go func() {
		// A dropped connection cancels the task.
		select {
		case <-r.Context().Done():
			ctxCancel()
		case <-ctx.Done():
		}
	}()

	// Initial snapshot so the client learns the task ID first.
	emit(s.snapshot(task.ID, 0), KindTask)

	s.setState(task.ID, TaskStateWorking, nil)
	emit(&TaskStatusUpdateEvent{
		Kind:      KindStatusUpdate,
		TaskID:    task.ID,
		ContextID: task.ContextID,
		Status:    NewTaskStatus(TaskStateWorking),
	}, KindStatusUpdate)

	parts, err := s.executor.Execute(ctx, &params.Message)
	if err != nil {
		s.failTask(task.ID, err)
		emit(&TaskStatusUpdateEvent{
			Kind:      KindStatusUpdate,
			TaskID:    task.ID,
			ContextID: task.ContextID,
			Status:    s.snapshot(task.ID, 0).Status,
			Final:     true,
		}, KindStatusUpdate)
		return nil
	}

	artifactID := uuid.NewString()
	for i, part := range parts {
		update := &TaskArtifactUpdateEvent{
			Kind:      KindArtifactUpdate,
			TaskID:    task.ID,
			ContextID: task.ContextID,
			Artifact: Artifact{
				ArtifactID: artifactID,
				Name:       "response",
				Parts:      []Part{part},
			},
			Append:    i > 0,
			LastChunk: i == len(parts)-1,
		}
		emit(update, KindArtifactUpdate)
	}

	s.completeTask(task.ID, parts, artifactID)
	emit(&TaskStatusUpdateEvent{
		Kind:      KindStatusUpdate,
		TaskID:    task.ID,
		ContextID: task.ContextID,
		Status:    NewTaskStatus(TaskStateCompleted),
		Final:     true,
	}, KindStatusUpdate)

	return nil
}

// handleTasksGet returns a task snapshot, honoring historyLength truncation.
func (s *Server) handleTasksGet(w http.ResponseWriter, req *Request) *RPCError {
	var params TaskQueryParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return &RPCError{Code: CodeInvalidParams, Message: err.Error()}
	}
	if params.ID == "" {
		return &RPCError{Code: CodeInvalidParams, Message: "missing task id"}
	}

	snapshot := s.snapshot(params.ID, params.HistoryLength)
	if snapshot == nil {
		return &RPCError{Code: CodeTaskNotFound, Message: fmt.Sprintf("task %s not found", params.ID)}
	}

	s.writeResult(w, req.ID, snapshot)
	return nil
}

// handleTasksCancel cancels a non-terminal task.
func (s *Server) handleTasksCancel(w http.ResponseWriter, req *Request) *RPCError {
	var params TaskIDParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return &RPCError{Code: CodeInvalidParams, Message: err.Error()}
	}

	s.mu.Lock()
	st, ok := s.tasks[params.ID]
	if !ok {
		s.mu.Unlock()
		return &RPCError{Code: CodeTaskNotFound, Message: fmt.Sprintf("task %s not found", params.ID)}
	}
	if st.task.Status.State.Terminal() {
		s.mu.Unlock()
		return &RPCError{Code: CodeTaskNotCancelable, Message: fmt.Sprintf("task %s is %s", params.ID, st.task.Status.State)}
	}
	st.cancel()
	st.task.Status = NewTaskStatus(TaskStateCanceled)
	s.mu.Unlock()

	if s.config.Metrics != nil {
		s.config.Metrics.TaskFinished(string(TaskStateCanceled))
	}
	s.logger.Info("task canceled", zap.String("task_id", params.ID))

	s.writeResult(w, req.ID, s.snapshot(params.ID, 0))
	return nil
}

// createTask stores a new submitted task seeded with the user message.
// The returned context is canceled by tasks/cancel.
func (s *Server) createTask(msg *Message) (*Task, context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	userMsg := *msg
	task := &Task{
		Kind:      KindTask,
		ID:        uuid.NewString(),
		ContextID: uuid.NewString(),
		Status:    NewTaskStatus(TaskStateSubmitted),
		History:   []Message{userMsg},
	}
	userMsg.TaskID = task.ID
	userMsg.ContextID = task.ContextID
	task.History[0] = userMsg

	s.mu.Lock()
	s.tasks[task.ID] = &serverTask{task: task, cancel: cancel}
	s.mu.Unlock()

	if s.config.Metrics != nil {
		s.config.Metrics.TaskStarted()
	}
	s.logger.Info("task created",
		zap.String("task_id", task.ID),
		zap.String("message_id", msg.MessageID),
	)

	return task, ctx, cancel
}

// runTask executes the agent and records the outcome.
func (s *Server) runTask(ctx context.Context, taskID string, msg *Message) {
	s.setState(taskID, TaskStateWorking, nil)

	parts, err := s.executor.Execute(ctx, msg)
	if err != nil {
		s.failTask(taskID, err)
		return
	}

	s.completeTask(taskID, parts, uuid.NewString())
}

// setState transitions the stored task, optionally attaching a status message.
func (s *Server) setState(taskID string, state TaskState, statusMsg *Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.tasks[taskID]
	if !ok || st.task.Status.State.Terminal() {
		return
	}
	status := NewTaskStatus(state)
	status.Message = statusMsg
	st.task.Status = status
}

// failTask marks the task failed with the error as the status message.
func (s *Server) failTask(taskID string, err error) {
	transitioned := false
	s.mu.Lock()
	st, ok := s.tasks[taskID]
	if ok && !st.task.Status.State.Terminal() {
		status := NewTaskStatus(TaskStateFailed)
		errMsg := NewAgentTextMessage(err.Error(), taskID, st.task.ContextID)
		status.Message = &errMsg
		st.task.Status = status
		transitioned = true
	}
	s.mu.Unlock()

	if transitioned && s.config.Metrics != nil {
		s.config.Metrics.TaskFinished(string(TaskStateFailed))
	}
	s.logger.Warn("task failed", zap.String("task_id", taskID), zap.Error(err))
}

// completeTask records the reply parts as an artifact and history entry.
func (s *Server) completeTask(taskID string, parts []Part, artifactID string) {
	transitioned := false
	s.mu.Lock()
	st, ok := s.tasks[taskID]
	if ok && !st.task.Status.State.Terminal() {
		reply := Message{
			Kind:      KindMessage,
			Role:      RoleAgent,
			Parts:     parts,
			MessageID: uuid.NewString(),
			TaskID:    taskID,
			ContextID: st.task.ContextID,
		}
		st.task.History = append(st.task.History, reply)
		st.task.Artifacts = append(st.task.Artifacts, Artifact{
			ArtifactID: artifactID,
			Name:       "response",
			Parts:      parts,
		})
		st.task.Status = NewTaskStatus(TaskStateCompleted)
		transitioned = true
	}
	s.mu.Unlock()

	if transitioned && s.config.Metrics != nil {
		s.config.Metrics.TaskFinished(string(TaskStateCompleted))
	}
	s.logger.Info("task completed", zap.String("task_id", taskID))
}

// snapshot deep-copies a stored task so handler responses never alias the
// mutable store. historyLength > 0 keeps only the most recent N messages.
func (s *Server) snapshot(taskID string, historyLength int) *Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.tasks[taskID]
	if !ok {
		return nil
	}
	t := st.task

	out := &Task{
		Kind:      KindTask,
		ID:        t.ID,
		ContextID: t.ContextID,
		Status:    t.Status,
		Metadata:  t.Metadata,
	}
	history := t.History
	if historyLength > 0 && len(history) > historyLength {
		history = history[len(history)-historyLength:]
	}
	out.History = append([]Message(nil), history...)
	out.Artifacts = append([]Artifact(nil), t.Artifacts...)
	return out
}

// TaskCount reports how many tasks the server currently tracks.
func (s *Server) TaskCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// CleanupExpiredTasks drops terminal tasks whose status timestamp is older
// than maxAge. Returns the number of removed tasks.
func (s *Server) CleanupExpiredTasks(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for id, st := range s.tasks {
		if !st.task.Status.State.Terminal() {
			continue
		}
		ts, err := time.Parse(time.RFC3339Nano, st.task.Status.Timestamp)
		if err == nil && ts.Before(cutoff) {
			delete(s.tasks, id)
			count++
		}
	}
	return count
}

// decodeSendParams decodes and validates message/send params.
func decodeSendParams(req *Request) (*MessageSendParams, *RPCError) {
	var params MessageSendParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return nil, &RPCError{Code: CodeInvalidParams, Message: err.Error()}
	}
	if err := params.Message.Validate(); err != nil {
		return nil, &RPCError{Code: CodeInvalidParams, Message: err.Error()}
	}
	return &params, nil
}

// writeResult writes a successful JSON-RPC response.
func (s *Server) writeResult(w http.ResponseWriter, id string, result any) {
	raw, err := json.Marshal(result)
	if err != nil {
		s.writeRPCError(w, id, &RPCError{Code: CodeInternalError, Message: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, Response{JSONRPC: "2.0", ID: id, Result: raw})
}

// writeRPCError writes a JSON-RPC error response. The HTTP status stays 200,
// as JSON-RPC reports failures in the envelope.
func (s *Server) writeRPCError(w http.ResponseWriter, id string, rpcErr *RPCError) {
	s.logger.Warn("rpc error",
		zap.Int("code", rpcErr.Code),
		zap.String("message", rpcErr.Message),
	)
	s.writeJSON(w, http.StatusOK, Response{JSONRPC: "2.0", ID: id, Error: rpcErr})
}

// writeJSON writes a JSON response body.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
