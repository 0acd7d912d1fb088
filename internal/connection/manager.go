package connection

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/telelink-io/telelink/internal/observer"
)

// Manager owns the socket lifecycle. It is the sole writer of the
// connection State, drives the fixed-delay auto-reconnect, and fans out
// state transitions and raw inbound frames to registered observers.
//
// An unintentional close schedules exactly one reconnect attempt after
// ReconnectDelay. Disconnect cancels any pending attempt and marks the
// close intentional before the socket teardown fires, so auto-reconnect
// never races an explicit disconnect.
type Manager struct {
	cfg    ManagerConfig
	logger *slog.Logger

	// newClient is a construction seam for tests.
	newClient func() Client

	stateListeners *observer.List[StateListener]
	frameListeners *observer.List[FrameListener]

	mu          sync.Mutex
	state       State
	client      Client
	intentional bool
	reconnect   *time.Timer
	ctx         context.Context // from Connect, reused for reconnect dials
}

// NewManager creates a connection Manager. It does not dial; call Connect.
func NewManager(cfg ManagerConfig, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		cfg:            cfg,
		logger:         logger,
		stateListeners: observer.NewList[StateListener](),
		frameListeners: observer.NewList[FrameListener](),
		state:          StateDisconnected,
	}
	m.newClient = func() Client {
		return NewClient(cfg.clientConfig(), logger)
	}
	return m
}

// Connect opens the socket if it is not already open or opening. A
// pending reconnect timer is cancelled in favor of dialing immediately.
// A dial failure is returned and also surfaces as an error state
// transition followed by a scheduled reconnect.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	if m.state == StateConnecting || m.state == StateConnected {
		m.mu.Unlock()
		return nil
	}
	m.intentional = false
	m.cancelReconnectLocked()
	m.ctx = ctx
	m.mu.Unlock()

	return m.dial(ctx)
}

// Disconnect closes the socket and suppresses auto-reconnect.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	m.intentional = true
	m.cancelReconnectLocked()
	client := m.client
	m.client = nil
	m.mu.Unlock()

	if client != nil {
		client.Close()
	}
	m.setState(StateDisconnected)
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsConnected reports whether the connection state is connected.
func (m *Manager) IsConnected() bool {
	return m.State() == StateConnected
}

// Send writes raw bytes to the socket. It fails synchronously with
// ErrNotConnected when the connection is not in the connected state;
// nothing is queued.
func (m *Manager) Send(data []byte) error {
	m.mu.Lock()
	if m.state != StateConnected || m.client == nil {
		m.mu.Unlock()
		return ErrNotConnected
	}
	client := m.client
	m.mu.Unlock()

	return client.Send(data)
}

// OnStateChange registers a listener notified on every state transition.
// The returned token deregisters it via OffStateChange.
func (m *Manager) OnStateChange(fn StateListener) uuid.UUID {
	return m.stateListeners.Add(fn)
}

// OffStateChange removes a state listener.
func (m *Manager) OffStateChange(id uuid.UUID) {
	m.stateListeners.Remove(id)
}

// OnMessage registers an observer for every raw inbound frame.
func (m *Manager) OnMessage(fn FrameListener) uuid.UUID {
	return m.frameListeners.Add(fn)
}

// OffMessage removes a raw frame observer.
func (m *Manager) OffMessage(id uuid.UUID) {
	m.frameListeners.Remove(id)
}

// dial runs one connecting → connected/error cycle.
func (m *Manager) dial(ctx context.Context) error {
	m.setState(StateConnecting)

	client := m.newClient()
	if err := client.Connect(ctx); err != nil {
		m.logger.Warn("connect failed", "url", m.cfg.URL, "error", err)
		m.setState(StateError)
		m.scheduleReconnect()
		return fmt.Errorf("dial %s: %w", m.cfg.URL, err)
	}

	m.mu.Lock()
	m.client = client
	m.mu.Unlock()

	m.setState(StateConnected)
	go m.pump(client)

	return nil
}

// pump delivers inbound frames to observers in arrival order and reacts
// to socket failure. One pump goroutine exists per live connection.
func (m *Manager) pump(client Client) {
	for {
		select {
		case err := <-client.Errors():
			m.handleSocketDown(err)
			return

		case msg, ok := <-client.Messages():
			if !ok {
				// Read loop exited: either an error was signalled first
				// or the close was intentional.
				select {
				case err := <-client.Errors():
					m.handleSocketDown(err)
				default:
					m.handleSocketDown(ErrSocketClosed)
				}
				return
			}
			m.dispatchFrame(msg.Data)
		}
	}
}

// dispatchFrame notifies raw frame observers against a snapshot of the
// observer set. A panicking observer never stops delivery.
func (m *Manager) dispatchFrame(data []byte) {
	for _, fn := range m.frameListeners.Snapshot() {
		m.safeNotifyFrame(fn, data)
	}
}

func (m *Manager) safeNotifyFrame(fn FrameListener, data []byte) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("frame observer panicked", "panic", r)
		}
	}()
	fn(data)
}

// handleSocketDown reacts to an unintentional socket teardown.
func (m *Manager) handleSocketDown(err error) {
	m.mu.Lock()
	if m.intentional {
		m.mu.Unlock()
		return
	}
	m.client = nil
	m.mu.Unlock()

	m.logger.Warn("connection lost", "error", err)
	m.setState(StateError)
	m.scheduleReconnect()
}

// scheduleReconnect arms the single reconnect timer. A timer that is
// already pending is left alone.
func (m *Manager) scheduleReconnect() {
	m.mu.Lock()
	if m.intentional || m.reconnect != nil {
		m.mu.Unlock()
		return
	}
	ctx := m.ctx
	m.reconnect = time.AfterFunc(m.cfg.ReconnectDelay, func() {
		m.mu.Lock()
		m.reconnect = nil
		// Stand down if Disconnect or an explicit Connect won the race.
		if m.intentional || m.state != StateReconnecting {
			m.mu.Unlock()
			return
		}
		m.mu.Unlock()

		if ctx.Err() != nil {
			m.logger.Debug("reconnect abandoned, context done")
			return
		}
		// dial schedules the next attempt itself on failure.
		m.dial(ctx)
	})
	m.mu.Unlock()

	m.logger.Info("reconnect scheduled", "delay", m.cfg.ReconnectDelay)
	m.setState(StateReconnecting)
}

// cancelReconnectLocked stops a pending reconnect timer. Caller holds mu.
func (m *Manager) cancelReconnectLocked() {
	if m.reconnect != nil {
		m.reconnect.Stop()
		m.reconnect = nil
	}
}

// setState records a transition and notifies listeners in registration
// order against a snapshot of the listener set.
func (m *Manager) setState(s State) {
	m.mu.Lock()
	if m.state == s {
		m.mu.Unlock()
		return
	}
	old := m.state
	m.state = s
	m.mu.Unlock()

	m.logger.Debug("connection state changed", "from", old, "to", s)

	for _, fn := range m.stateListeners.Snapshot() {
		m.safeNotifyState(fn, s)
	}
}

func (m *Manager) safeNotifyState(fn StateListener, s State) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("state listener panicked", "panic", r)
		}
	}()
	fn(s)
}
