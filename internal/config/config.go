package config

import "time"

// Config is the root configuration for a telelink client.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Socket    SocketConfig    `yaml:"socket"`
	Reconnect ReconnectConfig `yaml:"reconnect"`
	Ping      PingConfig      `yaml:"ping"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig identifies the telemetry backend.
type ServerConfig struct {
	URL              string        `yaml:"url"`               // e.g. wss://telemetry.example.com/ws
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"` // WebSocket dial timeout
}

// SocketConfig holds low-level socket settings.
type SocketConfig struct {
	BufferSize   int           `yaml:"buffer_size"`   // inbound message channel capacity
	WriteTimeout time.Duration `yaml:"write_timeout"` // write deadline for sends
}

// ReconnectConfig holds the auto-reconnect policy. The delay is fixed,
// not a backoff schedule.
type ReconnectConfig struct {
	Delay time.Duration `yaml:"delay"`
}

// PingConfig holds the connection-health protocol intervals.
// RemoteInterval is a negotiated setting: changing it at runtime sends a
// ping_interval_update frame so the far side adjusts its emission cadence.
type PingConfig struct {
	LocalInterval       time.Duration `yaml:"local_interval"`
	RemoteInterval      time.Duration `yaml:"remote_interval"`
	HealthCheckInterval time.Duration `yaml:"health_check_interval"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}
