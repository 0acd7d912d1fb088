package health

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/telelink-io/telelink/internal/wire"
)

// Sender writes outbound frames, gated on connection state.
type Sender interface {
	Send(data []byte) error
	IsConnected() bool
}

// Monitor tracks round-trip latency and liveness for the local and
// remote targets. Start launches the probe and sweep loops; Stop cancels
// both. A Monitor can be restarted after Stop.
type Monitor struct {
	logger *slog.Logger
	sender Sender

	// now is a clock seam for tests.
	now func() time.Time

	mu        sync.Mutex
	intervals Intervals
	local     TargetHealth
	remote    TargetHealth
	done      chan struct{}
}

// NewMonitor creates a Monitor. Both targets start disconnected.
func NewMonitor(intervals Intervals, sender Sender, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}

	return &Monitor{
		logger:    logger,
		sender:    sender,
		now:       time.Now,
		intervals: intervals,
		local:     TargetHealth{Status: StatusDisconnected},
		remote:    TargetHealth{Status: StatusDisconnected},
	}
}

// Start launches the probe and liveness-sweep loops. Calling Start on a
// running Monitor is a no-op.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.done != nil {
		return
	}
	m.done = make(chan struct{})

	go m.probeLoop(m.done)
	go m.sweepLoop(m.done)
}

// Stop cancels both timer loops. Target state is retained.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.done == nil {
		return
	}
	close(m.done)
	m.done = nil
}

// Snapshot returns a read-only view of both targets.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{Local: m.local, Remote: m.remote}
}

// UpdateIntervals merges a partial interval change. A new local interval
// takes effect on the probe loop's next scheduling tick. A new remote
// interval additionally sends one ping_interval_update frame so the far
// side adjusts its emission cadence.
func (m *Monitor) UpdateIntervals(u IntervalUpdate) error {
	m.mu.Lock()
	if u.Local != nil {
		m.intervals.Local = *u.Local
	}
	if u.HealthCheck != nil {
		m.intervals.HealthCheck = *u.HealthCheck
	}
	remoteChanged := u.Remote != nil && *u.Remote != m.intervals.Remote
	if u.Remote != nil {
		m.intervals.Remote = *u.Remote
	}
	remote := m.intervals.Remote
	m.mu.Unlock()

	if !remoteChanged {
		return nil
	}

	frame := wire.PingIntervalUpdate{
		Type:       wire.TypePingIntervalUpdate,
		IntervalMs: remote.Milliseconds(),
	}
	data, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("encode ping_interval_update: %w", err)
	}
	if err := m.sender.Send(data); err != nil {
		m.logger.Warn("ping interval update not sent", "error", err)
		return fmt.Errorf("send ping_interval_update: %w", err)
	}

	m.logger.Debug("remote ping interval negotiated", "interval", remote)
	return nil
}

// Intervals returns the current cadences.
func (m *Monitor) Intervals() Intervals {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.intervals
}

// HandlePong processes a pong for the local target. Frames without a
// positive echoed timestamp are ignored.
func (m *Monitor) HandlePong(p wire.Pong) {
	if p.Target != "" && p.Target != wire.TargetLocal {
		m.logger.Debug("pong for unexpected target dropped", "target", p.Target)
		return
	}

	ts := int64(p.Timestamp)
	if ts <= 0 {
		m.logger.Debug("pong with invalid timestamp dropped", "timestamp", ts)
		return
	}

	now := m.now()
	latency := now.UnixMilli() - ts
	if latency < 0 {
		latency = 0
	}

	m.mu.Lock()
	m.local.LatencyMs = latency
	m.local.LastPongAt = now
	m.local.Status = StatusConnected
	m.mu.Unlock()
}

// HandleRemoteTelemetry applies the far side's self-reported health,
// carried inside a negotiation frame, to the remote target.
func (m *Monitor) HandleRemoteTelemetry(t wire.PingTelemetry) {
	now := m.now()

	m.mu.Lock()
	m.remote.LatencyMs = t.LatencyMs
	m.remote.LastPongAt = now
	m.remote.Status = mapStatus(t.Status)
	m.mu.Unlock()
}

// probeLoop sends a ping for the local target every local interval. The
// interval is re-read each cycle so updates apply on the next tick.
func (m *Monitor) probeLoop(done <-chan struct{}) {
	for {
		m.mu.Lock()
		interval := m.intervals.Local
		m.mu.Unlock()

		select {
		case <-done:
			return
		case <-time.After(interval):
			m.probeTick()
		}
	}
}

// probeTick sends one ping if the connection is up.
func (m *Monitor) probeTick() {
	if !m.sender.IsConnected() {
		return
	}

	now := m.now()

	m.mu.Lock()
	status := m.local.Status
	m.mu.Unlock()

	frame := wire.Ping{
		Type:      wire.TypePing,
		Timestamp: now.UnixMilli(),
		Target:    wire.TargetLocal,
		Status:    string(status),
	}
	data, err := json.Marshal(frame)
	if err != nil {
		m.logger.Error("encode ping", "error", err)
		return
	}
	if err := m.sender.Send(data); err != nil {
		m.logger.Warn("ping not sent", "error", err)
		return
	}

	m.mu.Lock()
	m.local.LastPingAt = now
	m.mu.Unlock()
}

// sweepLoop periodically checks both targets for staleness.
func (m *Monitor) sweepLoop(done <-chan struct{}) {
	for {
		m.mu.Lock()
		interval := m.intervals.HealthCheck
		m.mu.Unlock()

		select {
		case <-done:
			return
		case <-time.After(interval):
			m.sweepTick()
		}
	}
}

// sweepTick forces a target to disconnected when pongs have stopped for
// longer than staleMultiplier probe intervals. This is application-level
// liveness: it fires even while the socket itself remains open.
func (m *Monitor) sweepTick() {
	now := m.now()

	m.mu.Lock()
	threshold := time.Duration(staleMultiplier) * m.intervals.Local
	stale := []struct {
		name   string
		target *TargetHealth
	}{
		{"local", &m.local},
		{"remote", &m.remote},
	}
	for _, s := range stale {
		if s.target.LastPongAt.IsZero() {
			continue
		}
		if now.Sub(s.target.LastPongAt) <= threshold {
			continue
		}
		if s.target.Status == StatusDisconnected {
			continue
		}
		s.target.Status = StatusDisconnected
		m.logger.Warn("ping target stale",
			"target", s.name,
			"last_pong", s.target.LastPongAt,
			"threshold", threshold,
		)
	}
	m.mu.Unlock()
}

func mapStatus(raw string) Status {
	switch raw {
	case string(StatusConnected):
		return StatusConnected
	case string(StatusReconnecting):
		return StatusReconnecting
	default:
		return StatusDisconnected
	}
}
