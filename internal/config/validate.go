package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return errors.New("server.url is required")
	}
	if !strings.HasPrefix(c.Server.URL, "ws://") && !strings.HasPrefix(c.Server.URL, "wss://") {
		return fmt.Errorf("server.url must be a ws:// or wss:// URL, got %q", c.Server.URL)
	}

	if c.Socket.BufferSize < 1 {
		return errors.New("socket.buffer_size must be >= 1")
	}
	if c.Socket.WriteTimeout <= 0 {
		return errors.New("socket.write_timeout must be positive")
	}

	if c.Reconnect.Delay <= 0 {
		return errors.New("reconnect.delay must be positive")
	}

	if c.Ping.LocalInterval <= 0 {
		return errors.New("ping.local_interval must be positive")
	}
	if c.Ping.RemoteInterval <= 0 {
		return errors.New("ping.remote_interval must be positive")
	}
	if c.Ping.HealthCheckInterval <= 0 {
		return errors.New("ping.health_check_interval must be positive")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}

	return nil
}
