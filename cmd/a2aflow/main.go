// a2aflow command line entry point.
//
// Usage:
//
//	a2aflow stream --agent http://localhost:8080 --text "hello"   # stream a message
//	a2aflow poll --agent http://localhost:8080 --text "hello"     # send and poll
//	a2aflow get --agent http://localhost:8080 --task <id>         # query a task
//	a2aflow cancel --agent http://localhost:8080 --task <id>      # cancel a task
//	a2aflow serve --config config.yaml                            # run the demo agent
//	a2aflow version                                               # show version info
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/a2aflow/a2a"
	"github.com/BaSui01/a2aflow/config"
)

// Version information injected at build time.
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "stream":
		runStream(os.Args[2:])
	case "poll":
		runPoll(os.Args[2:])
	case "get":
		runGet(os.Args[2:])
	case "cancel":
		runCancel(os.Args[2:])
	case "serve":
		runServe(os.Args[2:])
	case "version":
		printVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// clientFlags are the flags shared by the client subcommands.
type clientFlags struct {
	fs      *flag.FlagSet
	cfgPath *string
	agent   *string
	timeout *time.Duration
}

func newClientFlags(name string) *clientFlags {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	return &clientFlags{
		fs:      fs,
		cfgPath: fs.String("config", "", "Path to config file"),
		agent:   fs.String("agent", "", "Agent base URL (overrides config)"),
		timeout: fs.Duration("timeout", 0, "Request timeout (overrides config)"),
	}
}

// load resolves config, logger and a connected client from the parsed flags.
func (f *clientFlags) load() (*config.Config, *zap.Logger, *a2a.Client) {
	cfg, err := config.NewLoader().WithConfigPath(*f.cfgPath).Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *f.agent != "" {
		cfg.Client.AgentURL = *f.agent
	}
	if *f.timeout > 0 {
		cfg.Client.Timeout = *f.timeout
	}

	logger := config.BuildLogger(cfg.Log)

	clientCfg := a2a.DefaultClientConfig()
	clientCfg.Timeout = cfg.Client.Timeout
	clientCfg.Logger = logger
	for k, v := range cfg.Client.Headers {
		clientCfg.Headers[k] = v
	}
	client := a2a.NewClient(cfg.Client.AgentURL, clientCfg)

	return cfg, logger, client
}

// runStream sends one message via message/stream and prints the events as
// they arrive.
func runStream(args []string) {
	flags := newClientFlags("stream")
	text := flags.fs.String("text", "", "Message text to send")
	flags.fs.Parse(args)

	if *text == "" {
		fmt.Fprintln(os.Stderr, "stream: --text is required")
		os.Exit(1)
	}

	cfg, logger, client := flags.load()
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	resolver := a2a.NewCardResolver(nil)
	card, err := resolver.Resolve(ctx, cfg.Client.AgentURL)
	if err != nil {
		logger.Fatal("failed to resolve agent card", zap.Error(err))
	}
	fmt.Printf("Connected to %s (%s)\n", card.Name, card.Version)

	ch, err := client.StreamMessage(ctx, a2a.MessageSendParams{
		Message: a2a.NewUserTextMessage(*text),
	})
	if err != nil {
		logger.Fatal("failed to start stream", zap.Error(err))
	}

	acc := a2a.NewArtifactAccumulator()
	for ev := range ch {
		switch {
		case ev.Err != nil:
			logger.Fatal("stream error", zap.Error(ev.Err))
		case ev.Task != nil:
			fmt.Printf("Task %s: %s\n", ev.Task.ID, ev.Task.Status.State)
		case ev.StatusUpdate != nil:
			fmt.Printf("Status: %s\n", ev.StatusUpdate.Status.State)
			if ev.StatusUpdate.Final {
				fmt.Println("Stream complete.")
			}
		case ev.Message != nil:
			fmt.Printf("Agent: %s\n", ev.Message.Text())
		case ev.ArtifactUpdate != nil:
			acc.Apply(ev.ArtifactUpdate)
		}
	}

	for _, id := range acc.IDs() {
		text, _ := acc.Text(id)
		fmt.Printf("Artifact %s:\n%s\n", id, text)
	}
}

// runPoll sends one message via message/send and polls tasks/get until the
// task reaches a terminal state.
func runPoll(args []string) {
	flags := newClientFlags("poll")
	text := flags.fs.String("text", "", "Message text to send")
	flags.fs.Parse(args)

	if *text == "" {
		fmt.Fprintln(os.Stderr, "poll: --text is required")
		os.Exit(1)
	}

	cfg, logger, client := flags.load()
	defer logger.Sync()

	ctx := context.Background()

	result, err := client.SendMessage(ctx, a2a.MessageSendParams{
		Message: a2a.NewUserTextMessage(*text),
	})
	if err != nil {
		logger.Fatal("failed to send message", zap.Error(err))
	}

	taskID, err := result.TaskID()
	if err != nil {
		// The agent replied directly without creating a task.
		if result.Message != nil {
			fmt.Printf("Agent: %s\n", result.Message.Text())
			return
		}
		logger.Fatal("no task id in response", zap.Error(err))
	}
	fmt.Printf("Task submitted: %s\n", taskID)

	poller := a2a.NewPoller(client, &a2a.PollConfig{
		Interval:      cfg.Poll.Interval,
		MaxPolls:      cfg.Poll.MaxPolls,
		HistoryLength: cfg.Poll.HistoryLength,
		Logger:        logger,
	})
	poller.OnPoll(func(poll int, task *a2a.Task) {
		fmt.Printf("Poll %d: %s\n", poll, task.Status.State)
	})

	task, err := poller.Wait(ctx, taskID)
	if err != nil {
		logger.Fatal("polling failed", zap.Error(err))
	}

	printTask(task)
}

// runGet queries a single task by ID.
func runGet(args []string) {
	flags := newClientFlags("get")
	taskID := flags.fs.String("task", "", "Task ID to query")
	history := flags.fs.Int("history", 20, "Number of history messages to request")
	flags.fs.Parse(args)

	if *taskID == "" {
		fmt.Fprintln(os.Stderr, "get: --task is required")
		os.Exit(1)
	}

	_, logger, client := flags.load()
	defer logger.Sync()

	task, err := client.GetTask(context.Background(), a2a.TaskQueryParams{
		ID:            *taskID,
		HistoryLength: *history,
	})
	if err != nil {
		logger.Fatal("failed to query task", zap.Error(err))
	}

	printTask(task)
}

// runCancel cancels a running task.
func runCancel(args []string) {
	flags := newClientFlags("cancel")
	taskID := flags.fs.String("task", "", "Task ID to cancel")
	flags.fs.Parse(args)

	if *taskID == "" {
		fmt.Fprintln(os.Stderr, "cancel: --task is required")
		os.Exit(1)
	}

	_, logger, client := flags.load()
	defer logger.Sync()

	task, err := client.CancelTask(context.Background(), *taskID)
	if err != nil {
		logger.Fatal("failed to cancel task", zap.Error(err))
	}

	fmt.Printf("Task %s: %s\n", task.ID, task.Status.State)
}

// printTask renders a task snapshot for the terminal.
func printTask(task *a2a.Task) {
	fmt.Printf("Task %s: %s\n", task.ID, task.Status.State)
	if task.Status.Message != nil {
		fmt.Printf("  Status message: %s\n", task.Status.Message.Text())
	}
	if len(task.History) > 0 {
		fmt.Printf("  History (%d messages):\n", len(task.History))
		for _, msg := range task.History {
			text := msg.Text()
			if len(text) > 120 {
				text = text[:120] + "..."
			}
			fmt.Printf("    [%s] %s\n", msg.Role, text)
		}
	}
	for _, artifact := range task.Artifacts {
		name := artifact.Name
		if name == "" {
			name = artifact.ArtifactID
		}
		fmt.Printf("  Artifact %s:\n%s\n", name, indent(artifact.Text(), "    "))
	}
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i := range lines {
		lines[i] = prefix + lines[i]
	}
	return strings.Join(lines, "\n")
}

func printVersion() {
	fmt.Printf("a2aflow %s\n", Version)
	fmt.Printf("  Build Time: %s\n", BuildTime)
	fmt.Printf("  Git Commit: %s\n", GitCommit)
}

func printUsage() {
	fmt.Println(`a2aflow - A2A protocol client and demo agent

Usage:
  a2aflow <command> [options]

Commands:
  stream    Send a message and stream the response (message/stream)
  poll      Send a message and poll until the task finishes (message/send + tasks/get)
  get       Query a task by ID (tasks/get)
  cancel    Cancel a running task (tasks/cancel)
  serve     Run the demo A2A agent server
  version   Show version information
  help      Show this help message

Common options:
  --config <path>    Path to configuration file (YAML)
  --agent <url>      Agent base URL (overrides config)

Examples:
  a2aflow stream --agent http://localhost:8080 --text "tell me a story"
  a2aflow poll --agent http://localhost:8080 --text "hello"
  a2aflow get --agent http://localhost:8080 --task 9f07e18b --history 20
  a2aflow serve --config /etc/a2aflow/config.yaml
  a2aflow version`)
}
