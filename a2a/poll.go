package a2a

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// PollConfig bounds the sleep-and-retry loop of a Poller.
type PollConfig struct {
	// Interval is the fixed delay between polls.
	Interval time.Duration
	// MaxPolls is the maximum number of tasks/get calls before giving up.
	MaxPolls int
	// HistoryLength is passed through to tasks/get on every poll.
	HistoryLength int
	// Logger receives per-poll debug logging. Nil means no logging.
	Logger *zap.Logger
}

// DefaultPollConfig returns the defaults used by the example clients:
// 30 polls, two seconds apart, last five history messages.
func DefaultPollConfig() *PollConfig {
	return &PollConfig{
		Interval:      2 * time.Second,
		MaxPolls:      30,
		HistoryLength: 5,
	}
}

// Poller repeatedly queries a task until it reaches a terminal state.
type Poller struct {
	client   *Client
	config   *PollConfig
	logger   *zap.Logger
	observer func(poll int, task *Task)
}

// NewPoller creates a poller over the given client. A nil config selects
// DefaultPollConfig.
func NewPoller(client *Client, config *PollConfig) *Poller {
	if config == nil {
		config = DefaultPollConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		client: client,
		config: config,
		logger: logger,
	}
}

// OnPoll registers a callback invoked with each observed task snapshot,
// before terminality is checked. Polls are numbered from 1.
func (p *Poller) OnPoll(fn func(poll int, task *Task)) *Poller {
	p.observer = fn
	return p
}

// Wait polls the task until its state is terminal. It returns the final task
// snapshot, or ErrPollLimit together with the last observed snapshot when
// MaxPolls is exhausted; the task may still be running server-side.
func (p *Poller) Wait(ctx context.Context, taskID string) (*Task, error) {
	if taskID == "" {
		return nil, fmt.Errorf("%w: empty task id", ErrTaskNotFound)
	}

	var last *Task
	for poll := 1; poll <= p.config.MaxPolls; poll++ {
		task, err := p.client.GetTask(ctx, TaskQueryParams{
			ID:            taskID,
			HistoryLength: p.config.HistoryLength,
		})
		if err != nil {
			return last, err
		}
		last = task

		p.logger.Debug("task polled",
			zap.String("task_id", taskID),
			zap.Int("poll", poll),
			zap.String("state", string(task.Status.State)),
		)

		if p.observer != nil {
			p.observer(poll, task)
		}

		if task.Status.State.Terminal() {
			return task, nil
		}

		if poll < p.config.MaxPolls {
			select {
			case <-ctx.Done():
				return last, ctx.Err()
			case <-time.After(p.config.Interval):
			}
		}
	}

	return last, fmt.Errorf("%w: %d polls", ErrPollLimit, p.config.MaxPolls)
}
