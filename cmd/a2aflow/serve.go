package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/a2aflow/a2a"
	"github.com/BaSui01/a2aflow/config"
	"github.com/BaSui01/a2aflow/internal/metrics"
)

// runServe starts the demo agent server plus a separate metrics listener and
// blocks until a shutdown signal arrives.
func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	fs.Parse(args)

	loader := config.NewLoader()
	if *configPath != "" {
		loader = loader.WithConfigPath(*configPath)
	}

	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := config.BuildLogger(cfg.Log)
	defer logger.Sync()

	logger.Info("Starting a2aflow",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector := metrics.NewCollector("a2aflow", logger)

	server := a2a.NewServer(&a2a.ServerConfig{
		AgentName:        cfg.Server.AgentName,
		AgentDescription: cfg.Server.AgentDescription,
		BaseURL:          cfg.Server.BaseURL,
		Version:          Version,
		RequestTimeout:   cfg.Server.RequestTimeout,
		Logger:           logger,
		Metrics:          collector,
	}, echoAgent())

	handler := Chain(server,
		Recovery(logger),
		RequestLogger(logger),
		RateLimiter(ctx, cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst, logger),
	)

	httpServer := &http.Server{
		Addr:        cfg.Server.ListenAddr,
		Handler:     handler,
		ReadTimeout: cfg.Server.ReadTimeout,
		// WriteTimeout stays at the configured value; zero keeps streaming
		// responses open indefinitely.
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:    cfg.Server.MetricsAddr,
		Handler: metricsMux,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("JSON-RPC endpoint listening", zap.String("addr", cfg.Server.ListenAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("Metrics endpoint listening", zap.String("addr", cfg.Server.MetricsAddr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		return errors.Join(errs...)
	})

	g.Go(func() error {
		// Drop terminal tasks periodically so long-lived servers do not
		// accumulate state without bound.
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if removed := server.CleanupExpiredTasks(time.Hour); removed > 0 {
					logger.Info("expired tasks removed", zap.Int("count", removed))
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}

	logger.Info("a2aflow stopped")
}

// echoAgent is the demo executor: it repeats the user's message back in a
// couple of chunks so streaming clients have something to accumulate.
func echoAgent() a2a.Executor {
	return a2a.ExecutorFunc(func(ctx context.Context, msg *a2a.Message) ([]a2a.Part, error) {
		text := msg.Text()
		if strings.TrimSpace(text) == "" {
			return nil, errors.New("message has no text to echo")
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}

		return []a2a.Part{
			a2a.NewTextPart("You said: "),
			a2a.NewTextPart(text),
		}, nil
	})
}
