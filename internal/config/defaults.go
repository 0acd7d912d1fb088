package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultHandshakeTimeout    = 10 * time.Second
	DefaultBufferSize          = 1000
	DefaultWriteTimeout        = 5 * time.Second
	DefaultReconnectDelay      = 5 * time.Second
	DefaultLocalInterval       = 3 * time.Second
	DefaultRemoteInterval      = 10 * time.Second
	DefaultHealthCheckInterval = 1 * time.Second
	DefaultLogLevel            = "info"
)

func (c *Config) applyDefaults() {
	if c.Server.HandshakeTimeout == 0 {
		c.Server.HandshakeTimeout = DefaultHandshakeTimeout
	}

	if c.Socket.BufferSize == 0 {
		c.Socket.BufferSize = DefaultBufferSize
	}
	if c.Socket.WriteTimeout == 0 {
		c.Socket.WriteTimeout = DefaultWriteTimeout
	}

	if c.Reconnect.Delay == 0 {
		c.Reconnect.Delay = DefaultReconnectDelay
	}

	if c.Ping.LocalInterval == 0 {
		c.Ping.LocalInterval = DefaultLocalInterval
	}
	if c.Ping.RemoteInterval == 0 {
		c.Ping.RemoteInterval = DefaultRemoteInterval
	}
	if c.Ping.HealthCheckInterval == 0 {
		c.Ping.HealthCheckInterval = DefaultHealthCheckInterval
	}

	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
}
