package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/vietbot-labs/ragcore/config"
	"github.com/vietbot-labs/ragcore/server"
)

// ServeCmd starts the chat API server.
type ServeCmd struct {
	Port  int  `help:"Port to listen on (overrides config)." default:"0"`
	Watch bool `help:"Watch config file for changes and hot-swap the pipeline."`
}

func (c *ServeCmd) Run(cli *CLI) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("Shutting down...")
		cancel()
	}()

	cfg, err := loadConfig(cli.Config)
	if err != nil {
		return err
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}

	// A broken pipeline is not fatal: the server still starts, /health
	// reports unhealthy, and a config reload can bring it up.
	pl, err := buildPipeline(ctx, cfg)
	if err != nil {
		slog.Error("Failed to build pipeline, serving degraded", "error", err)
	}

	srv := newServer(cfg, pl)

	stopWatch := func() {}
	if c.Watch && cli.Config != "" {
		stopWatch, err = watchConfig(ctx, cli.Config, c.Port, srv, &pl)
		if err != nil {
			return err
		}
	}

	fmt.Printf("\nragcore server ready\n")
	fmt.Printf("   Chat:     http://%s/chat\n", cfg.Server.Address())
	fmt.Printf("   Health:   http://%s/health\n", cfg.Server.Address())
	fmt.Printf("   Agents:   http://%s/agents\n", cfg.Server.Address())
	fmt.Printf("   Metrics:  http://%s/metrics\n", cfg.Server.Address())
	fmt.Println("\nPress Ctrl+C to stop")

	err = srv.Start(ctx)

	stopWatch()
	if pl != nil {
		pl.Close()
	}
	return err
}

func newServer(cfg *config.Config, pl *pipeline) *server.Server {
	if pl == nil {
		return server.New(cfg, nil, nil, nil)
	}
	return server.New(cfg, pl.engine, pl.search, pl.providers)
}

// watchConfig hot-swaps the pipeline on config changes. The old
// pipeline is closed once the swap lands; in-flight requests hold their
// own references and finish on the engine they started with.
func watchConfig(ctx context.Context, path string, portOverride int, srv *server.Server, current **pipeline) (func(), error) {
	var mu sync.Mutex

	watcher, err := config.NewWatcher(path, func(cfg *config.Config) {
		if portOverride != 0 {
			cfg.Server.Port = portOverride
		}

		next, err := buildPipeline(ctx, cfg)
		if err != nil {
			slog.Error("Config reload failed to build pipeline, keeping previous", "error", err)
			return
		}

		mu.Lock()
		old := *current
		*current = next
		srv.Swap(next.engine, next.search, next.providers)
		mu.Unlock()

		if old != nil {
			old.Close()
		}
		slog.Info("Pipeline hot-swapped from reloaded config")
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}

	if err := watcher.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start config watcher: %w", err)
	}

	return func() { _ = watcher.Stop() }, nil
}
