package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/telelink-io/telelink"
)

func newSendCommand(configPath *string) *cobra.Command {
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "send <module> <command> <value>",
		Short: "Send a one-shot control command",
		Long: `Connects, sends a single control command to a hardware module, and
exits. The value is typed by shape: "true"/"false" become booleans,
integer and decimal literals become numbers, anything else is a string.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSend(*configPath, args[0], args[1], parseValue(args[2]), wait)
		},
	}

	cmd.Flags().DurationVar(&wait, "wait", 5*time.Second, "how long to wait for the connection")

	return cmd
}

func runSend(configPath, moduleID, command string, value telelink.Value, wait time.Duration) error {
	cfg, logger, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	client := telelink.New(cfg, logger)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()

	if err := client.Connect(ctx); err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	// No queueing: the command is sent now or not at all.
	if err := client.SendControl(moduleID, command, value); err != nil {
		return fmt.Errorf("send control: %w", err)
	}

	logger.Info("control sent", "module", moduleID, "command", command, "value", value.Display())
	return nil
}

// parseValue types a command-line literal the way the wire format does:
// booleans, then integers, then floats, with string as the fallback.
func parseValue(s string) telelink.Value {
	if b, err := strconv.ParseBool(s); err == nil && (s == "true" || s == "false") {
		return telelink.Bool(b)
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return telelink.Int(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return telelink.Float(f)
	}
	return telelink.String(s)
}
