// Package telelink is a real-time telemetry client. It owns one
// persistent WebSocket connection to a backend, multiplexes named data
// streams over it, and offers a subscribe/replay API keyed by stream
// identifier, plus a dual-target connection-health protocol that tells
// transport-level connectivity apart from application-level liveness.
//
// A Client is explicitly constructed and owned by the caller; there is
// no process-wide instance. Delivery is best effort and most-recent
// value: nothing is persisted or retransmitted.
package telelink

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/telelink-io/telelink/internal/config"
	"github.com/telelink-io/telelink/internal/connection"
	"github.com/telelink-io/telelink/internal/control"
	"github.com/telelink-io/telelink/internal/health"
	"github.com/telelink-io/telelink/internal/router"
	"github.com/telelink-io/telelink/internal/stream"
	"github.com/telelink-io/telelink/internal/wire"
)

// Re-exported types so consumers never import internal packages.
type (
	// Config is the client configuration.
	Config = config.Config

	// ConnectionState is the socket-level state owned by the client.
	ConnectionState = connection.State

	// StreamRecord is the cached last value of one stream.
	StreamRecord = stream.Record

	// StreamCallback receives stream updates.
	StreamCallback = stream.Callback

	// Value is the tagged payload variant over float, int, string, bool.
	Value = wire.Value

	// HealthSnapshot is a read-only view of both ping targets.
	HealthSnapshot = health.Snapshot

	// IntervalUpdate is a partial change to the ping cadences.
	IntervalUpdate = health.IntervalUpdate
)

// Connection states.
const (
	StateDisconnected = connection.StateDisconnected
	StateConnecting   = connection.StateConnecting
	StateConnected    = connection.StateConnected
	StateError        = connection.StateError
	StateReconnecting = connection.StateReconnecting
)

// ErrNotConnected is returned by writes issued while the socket is down.
var ErrNotConnected = connection.ErrNotConnected

// Value constructors.
var (
	Float  = wire.Float
	Int    = wire.Int
	String = wire.String
	Bool   = wire.Bool
)

// LoadConfig reads, defaults, and validates a YAML config file.
func LoadConfig(path string) (*Config, error) {
	return config.LoadAndValidate(path)
}

// Client is the telemetry client. Construct with New, start with
// Connect, and release with Close.
type Client struct {
	logger *slog.Logger

	manager  *connection.Manager
	registry *stream.Registry
	monitor  *health.Monitor
	router   *router.Router
	control  *control.Dispatcher

	routeID uuid.UUID
}

// New assembles a client from cfg. The logger may be nil.
func New(cfg *Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	manager := connection.NewManager(connection.ManagerConfig{
		URL:              cfg.Server.URL,
		HandshakeTimeout: cfg.Server.HandshakeTimeout,
		WriteTimeout:     cfg.Socket.WriteTimeout,
		BufferSize:       cfg.Socket.BufferSize,
		ReconnectDelay:   cfg.Reconnect.Delay,
	}, logger.With("component", "connection"))

	registry := stream.NewRegistry(logger.With("component", "stream"))

	monitor := health.NewMonitor(health.Intervals{
		Local:       cfg.Ping.LocalInterval,
		Remote:      cfg.Ping.RemoteInterval,
		HealthCheck: cfg.Ping.HealthCheckInterval,
	}, manager, logger.With("component", "health"))

	rt := router.NewRouter(registry, monitor, logger.With("component", "router"))

	c := &Client{
		logger:   logger,
		manager:  manager,
		registry: registry,
		monitor:  monitor,
		router:   rt,
		control:  control.NewDispatcher(manager, logger.With("component", "control")),
	}

	// Inbound frames flow through the router in arrival order.
	c.routeID = manager.OnMessage(rt.HandleFrame)

	return c
}

// Connect opens the socket and starts the health protocol. The health
// timers keep running across reconnects; probes are skipped while the
// link is down.
func (c *Client) Connect(ctx context.Context) error {
	c.monitor.Start()
	return c.manager.Connect(ctx)
}

// Disconnect closes the socket, cancels any pending reconnect, and
// stops both health timers. A later Connect resumes normal operation.
func (c *Client) Disconnect() {
	c.monitor.Stop()
	c.manager.Disconnect()
}

// Close shuts the client down. It must not be used afterwards.
func (c *Client) Close() {
	c.Disconnect()
	c.manager.OffMessage(c.routeID)
}

// State returns the current connection state.
func (c *Client) State() ConnectionState {
	return c.manager.State()
}

// IsConnected reports whether the socket-level state is connected.
func (c *Client) IsConnected() bool {
	return c.manager.IsConnected()
}

// OnConnectionChange registers a listener for state transitions.
func (c *Client) OnConnectionChange(fn func(ConnectionState)) uuid.UUID {
	return c.manager.OnStateChange(fn)
}

// OffConnectionChange removes a state listener.
func (c *Client) OffConnectionChange(id uuid.UUID) {
	c.manager.OffStateChange(id)
}

// OnMessage registers an observer for every raw inbound frame.
func (c *Client) OnMessage(fn func(data []byte)) uuid.UUID {
	return c.manager.OnMessage(fn)
}

// OffMessage removes a raw frame observer.
func (c *Client) OffMessage(id uuid.UUID) {
	c.manager.OffMessage(id)
}

// Subscribe registers cb for streamID. When a cached record exists, cb
// is invoked with it once before Subscribe returns.
func (c *Client) Subscribe(streamID string, cb StreamCallback) uuid.UUID {
	return c.registry.Subscribe(streamID, cb)
}

// Unsubscribe removes the subscription identified by id.
func (c *Client) Unsubscribe(streamID string, id uuid.UUID) {
	c.registry.Unsubscribe(streamID, id)
}

// Value returns the cached record for streamID.
func (c *Client) Value(streamID string) (StreamRecord, bool) {
	return c.registry.Value(streamID)
}

// StreamIDs returns a sorted snapshot of all known stream identifiers.
func (c *Client) StreamIDs() []string {
	return c.registry.StreamIDs()
}

// SendControl sends a command frame to a hardware module. It fails
// synchronously with ErrNotConnected while the link is down; nothing is
// queued or retried.
func (c *Client) SendControl(moduleID, command string, value Value) error {
	return c.control.Send(moduleID, command, value)
}

// UpdateIntervals applies a partial change to the ping cadences. A new
// remote interval is negotiated with the far side via a
// ping_interval_update frame.
func (c *Client) UpdateIntervals(u IntervalUpdate) error {
	return c.monitor.UpdateIntervals(u)
}

// Health returns a read-only snapshot of both ping targets.
func (c *Client) Health() HealthSnapshot {
	return c.monitor.Snapshot()
}
