package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/telelink-io/telelink"
	"github.com/telelink-io/telelink/internal/version"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "telelink",
		Short: "Telelink - real-time telemetry client",
		Long: `Telelink connects to a telemetry backend over a single WebSocket,
multiplexes named data streams, and tracks connection health for both
ends of the link.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildTime),
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/telelink.yaml", "path to config file")

	rootCmd.AddCommand(newMonitorCommand(&configPath))
	rootCmd.AddCommand(newSendCommand(&configPath))
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.String())
		},
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setupLogging builds the process logger from the configured level.
func setupLogging(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: lvl,
	}))
	slog.SetDefault(logger)
	return logger
}

func loadConfig(path string) (*telelink.Config, *slog.Logger, error) {
	cfg, err := telelink.LoadConfig(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, setupLogging(cfg.Logging.Level), nil
}
