package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/telelink-io/telelink"
)

func newMonitorCommand(configPath *string) *cobra.Command {
	var healthEvery time.Duration
	var verbose bool

	cmd := &cobra.Command{
		Use:   "monitor [stream...]",
		Short: "Connect and print stream updates",
		Long: `Connects to the telemetry backend and prints every update for the
named streams. With no arguments, all streams announced by the backend
are followed. Runs until interrupted.

Edits to the config file are picked up live: changed ping intervals are
applied without reconnecting.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMonitor(*configPath, args, healthEvery, verbose)
		},
	}

	cmd.Flags().DurationVar(&healthEvery, "health-every", 10*time.Second, "interval between health snapshots (0 disables)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging regardless of configured level")

	return cmd
}

func runMonitor(configPath string, streams []string, healthEvery time.Duration, verbose bool) error {
	cfg, logger, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if verbose {
		logger = setupLogging("debug")
	}

	client := telelink.New(cfg, logger)
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	client.OnConnectionChange(func(s telelink.ConnectionState) {
		logger.Info("connection state changed", "state", s)
	})

	logger.Info("connecting", "url", cfg.Server.URL)
	if err := client.Connect(ctx); err != nil {
		// The client keeps retrying on the reconnect schedule.
		logger.Warn("initial connect failed, retrying", "error", err)
	}

	printUpdate := func(rec telelink.StreamRecord) {
		fmt.Printf("%s  %-24s %s %s\n",
			rec.ReceivedAt.Format(time.RFC3339),
			rec.StreamID,
			rec.Value.Display(),
			rec.Unit,
		)
	}

	followed := make(map[string]bool)
	follow := func(id string) {
		if followed[id] {
			return
		}
		followed[id] = true
		client.Subscribe(id, printUpdate)
		logger.Debug("following stream", "stream", id)
	}

	if len(streams) > 0 {
		for _, id := range streams {
			follow(id)
		}
	} else {
		// Follow everything the backend announces, including streams that
		// appear in later negotiation frames.
		go func() {
			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					for _, id := range client.StreamIDs() {
						follow(id)
					}
				}
			}
		}()
	}

	if healthEvery > 0 {
		go func() {
			ticker := time.NewTicker(healthEvery)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					h := client.Health()
					logger.Info("health",
						"local_status", h.Local.Status,
						"local_latency_ms", h.Local.LatencyMs,
						"remote_status", h.Remote.Status,
						"remote_latency_ms", h.Remote.LatencyMs,
					)
				}
			}
		}()
	}

	go watchConfig(ctx, configPath, client, logger)

	<-ctx.Done()

	logger.Info("shutting down")
	client.Disconnect()
	return nil
}

// watchConfig reloads the config file on change and applies ping-interval
// updates to the running client. Other settings need a restart.
func watchConfig(ctx context.Context, path string, client *telelink.Client, logger *slog.Logger) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn("config watch unavailable", "error", err)
		return
	}
	defer watcher.Close()

	// Watch the directory: editors replace files on save, which drops a
	// watch placed on the file itself.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		logger.Warn("config watch unavailable", "dir", dir, "error", err)
		return
	}

	target, _ := filepath.Abs(path)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			name, _ := filepath.Abs(event.Name)
			if name != target {
				continue
			}
			applyConfigChange(path, client, logger)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("config watch error", "error", err)
		}
	}
}

func applyConfigChange(path string, client *telelink.Client, logger *slog.Logger) {
	cfg, err := telelink.LoadConfig(path)
	if err != nil {
		logger.Warn("ignoring config change", "error", err)
		return
	}

	update := telelink.IntervalUpdate{
		Local:       &cfg.Ping.LocalInterval,
		Remote:      &cfg.Ping.RemoteInterval,
		HealthCheck: &cfg.Ping.HealthCheckInterval,
	}
	if err := client.UpdateIntervals(update); err != nil {
		logger.Warn("interval update not applied", "error", err)
		return
	}

	logger.Info("ping intervals updated",
		"local", cfg.Ping.LocalInterval,
		"remote", cfg.Ping.RemoteInterval,
		"health_check", cfg.Ping.HealthCheckInterval,
	)
}
