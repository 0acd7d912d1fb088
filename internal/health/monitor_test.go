package health

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/telelink-io/telelink/internal/wire"
)

// fakeSender captures outbound frames.
type fakeSender struct {
	mu        sync.Mutex
	connected bool
	sent      [][]byte
	sendErr   error
}

func (s *fakeSender) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, data)
	return nil
}

func (s *fakeSender) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *fakeSender) frames(t *testing.T) []map[string]any {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]map[string]any, 0, len(s.sent))
	for _, raw := range s.sent {
		var m map[string]any
		if err := json.Unmarshal(raw, &m); err != nil {
			t.Fatalf("sent frame is not JSON: %v", err)
		}
		out = append(out, m)
	}
	return out
}

// fixedClock is a manually advanced clock for simulated time.
type fixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFixedClock(ms int64) *fixedClock {
	return &fixedClock{t: time.UnixMilli(ms)}
}

func (c *fixedClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fixedClock) set(ms int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = time.UnixMilli(ms)
}

func newTestMonitor(sender *fakeSender, clock *fixedClock) *Monitor {
	m := NewMonitor(Intervals{
		Local:       time.Second,
		Remote:      10 * time.Second,
		HealthCheck: 100 * time.Millisecond,
	}, sender, nil)
	m.now = clock.now
	return m
}

func TestMonitor_PongLatency(t *testing.T) {
	clock := newFixedClock(0)
	m := newTestMonitor(&fakeSender{}, clock)

	// Ping carried timestamp T; pong arrives at T+37.
	clock.set(1_000_037)
	m.HandlePong(wire.Pong{Type: wire.TypePong, Target: "local", Timestamp: 1_000_000})

	snap := m.Snapshot()
	if snap.Local.LatencyMs != 37 {
		t.Errorf("LatencyMs = %d, want 37", snap.Local.LatencyMs)
	}
	if snap.Local.Status != StatusConnected {
		t.Errorf("Status = %s, want connected", snap.Local.Status)
	}
	if !snap.Local.LastPongAt.Equal(clock.now()) {
		t.Errorf("LastPongAt = %v, want %v", snap.Local.LastPongAt, clock.now())
	}
}

func TestMonitor_PongLatencyClampedAtZero(t *testing.T) {
	clock := newFixedClock(1_000_000)
	m := newTestMonitor(&fakeSender{}, clock)

	// Echoed timestamp ahead of the local clock (skewed peer).
	m.HandlePong(wire.Pong{Type: wire.TypePong, Timestamp: 1_000_500})

	if got := m.Snapshot().Local.LatencyMs; got != 0 {
		t.Errorf("LatencyMs = %d, want 0", got)
	}
}

func TestMonitor_InvalidPongIgnored(t *testing.T) {
	clock := newFixedClock(1_000_000)
	m := newTestMonitor(&fakeSender{}, clock)

	m.HandlePong(wire.Pong{Type: wire.TypePong, Timestamp: 0})
	m.HandlePong(wire.Pong{Type: wire.TypePong, Timestamp: -5})
	m.HandlePong(wire.Pong{Type: wire.TypePong, Target: "remote", Timestamp: 999_000})

	snap := m.Snapshot()
	if snap.Local.Status != StatusDisconnected {
		t.Errorf("Status = %s, want disconnected (untouched)", snap.Local.Status)
	}
	if !snap.Local.LastPongAt.IsZero() {
		t.Error("LastPongAt set by invalid pong")
	}
}

func TestMonitor_RemoteTelemetry(t *testing.T) {
	clock := newFixedClock(2_000_000)
	m := newTestMonitor(&fakeSender{}, clock)

	m.HandleRemoteTelemetry(wire.PingTelemetry{LatencyMs: 12, Status: "connected"})

	snap := m.Snapshot()
	if snap.Remote.LatencyMs != 12 {
		t.Errorf("Remote LatencyMs = %d, want 12", snap.Remote.LatencyMs)
	}
	if snap.Remote.Status != StatusConnected {
		t.Errorf("Remote Status = %s, want connected", snap.Remote.Status)
	}

	m.HandleRemoteTelemetry(wire.PingTelemetry{LatencyMs: 80, Status: "degraded"})
	if got := m.Snapshot().Remote.Status; got != StatusDisconnected {
		t.Errorf("unknown status mapped to %s, want disconnected", got)
	}
}

func TestMonitor_LivenessSweep(t *testing.T) {
	clock := newFixedClock(0)
	m := newTestMonitor(&fakeSender{}, clock)

	// A pong at t=0 marks local connected.
	clock.set(1)
	m.HandlePong(wire.Pong{Type: wire.TypePong, Timestamp: 1})

	// Pin LastPongAt to t=0 for the 5*interval arithmetic.
	m.mu.Lock()
	m.local.LastPongAt = time.UnixMilli(0)
	m.mu.Unlock()

	clock.set(4999)
	m.sweepTick()
	if got := m.Snapshot().Local.Status; got != StatusConnected {
		t.Errorf("status at t=4999 = %s, want connected", got)
	}

	clock.set(5001)
	m.sweepTick()
	if got := m.Snapshot().Local.Status; got != StatusDisconnected {
		t.Errorf("status at t=5001 = %s, want disconnected", got)
	}
}

func TestMonitor_SweepSkipsNeverPonged(t *testing.T) {
	clock := newFixedClock(100_000)
	m := newTestMonitor(&fakeSender{}, clock)

	m.mu.Lock()
	m.local.Status = StatusConnected
	m.mu.Unlock()

	m.sweepTick()
	if got := m.Snapshot().Local.Status; got != StatusConnected {
		t.Errorf("sweep touched target with zero LastPongAt: %s", got)
	}
}

func TestMonitor_SweepTargetsIndependent(t *testing.T) {
	clock := newFixedClock(0)
	m := newTestMonitor(&fakeSender{}, clock)

	clock.set(1)
	m.HandlePong(wire.Pong{Type: wire.TypePong, Timestamp: 1})
	m.mu.Lock()
	m.local.LastPongAt = time.UnixMilli(0)
	m.mu.Unlock()

	// Remote telemetry keeps arriving while local goes silent.
	clock.set(5001)
	m.HandleRemoteTelemetry(wire.PingTelemetry{LatencyMs: 9, Status: "connected"})
	m.sweepTick()

	snap := m.Snapshot()
	if snap.Local.Status != StatusDisconnected {
		t.Errorf("local = %s, want disconnected", snap.Local.Status)
	}
	if snap.Remote.Status != StatusConnected {
		t.Errorf("remote = %s, want connected", snap.Remote.Status)
	}
}

func TestMonitor_ProbeTick(t *testing.T) {
	sender := &fakeSender{connected: true}
	clock := newFixedClock(42_000)
	m := newTestMonitor(sender, clock)

	m.probeTick()

	frames := sender.frames(t)
	if len(frames) != 1 {
		t.Fatalf("sent frames = %d, want 1", len(frames))
	}
	if frames[0]["type"] != "ping" {
		t.Errorf("type = %v, want ping", frames[0]["type"])
	}
	if frames[0]["target"] != "local" {
		t.Errorf("target = %v, want local", frames[0]["target"])
	}
	if int64(frames[0]["timestamp"].(float64)) != 42_000 {
		t.Errorf("timestamp = %v, want 42000", frames[0]["timestamp"])
	}
	if got := m.Snapshot().Local.LastPingAt; !got.Equal(clock.now()) {
		t.Errorf("LastPingAt = %v, want %v", got, clock.now())
	}
}

func TestMonitor_ProbeSkipsWhenDisconnected(t *testing.T) {
	sender := &fakeSender{connected: false}
	m := newTestMonitor(sender, newFixedClock(0))

	m.probeTick()

	if len(sender.frames(t)) != 0 {
		t.Error("probe sent while not connected")
	}
}

func TestMonitor_UpdateIntervals(t *testing.T) {
	sender := &fakeSender{connected: true}
	m := newTestMonitor(sender, newFixedClock(0))

	local := 2 * time.Second
	if err := m.UpdateIntervals(IntervalUpdate{Local: &local}); err != nil {
		t.Fatalf("UpdateIntervals failed: %v", err)
	}
	if got := m.Intervals().Local; got != local {
		t.Errorf("Local = %v, want %v", got, local)
	}
	if len(sender.frames(t)) != 0 {
		t.Error("local-only change sent a frame")
	}

	remote := 3 * time.Second
	if err := m.UpdateIntervals(IntervalUpdate{Remote: &remote}); err != nil {
		t.Fatalf("UpdateIntervals failed: %v", err)
	}
	frames := sender.frames(t)
	if len(frames) != 1 {
		t.Fatalf("sent frames = %d, want 1", len(frames))
	}
	if frames[0]["type"] != "ping_interval_update" {
		t.Errorf("type = %v, want ping_interval_update", frames[0]["type"])
	}
	if int64(frames[0]["interval_ms"].(float64)) != 3000 {
		t.Errorf("interval_ms = %v, want 3000", frames[0]["interval_ms"])
	}

	// Same remote value again: negotiated setting unchanged, no frame.
	if err := m.UpdateIntervals(IntervalUpdate{Remote: &remote}); err != nil {
		t.Fatalf("UpdateIntervals failed: %v", err)
	}
	if len(sender.frames(t)) != 1 {
		t.Error("unchanged remote interval re-sent")
	}
}

func TestMonitor_StartStop(t *testing.T) {
	sender := &fakeSender{connected: true}
	m := NewMonitor(Intervals{
		Local:       10 * time.Millisecond,
		Remote:      time.Second,
		HealthCheck: 10 * time.Millisecond,
	}, sender, nil)

	m.Start()
	m.Start() // no-op on a running monitor

	time.Sleep(50 * time.Millisecond)
	m.Stop()
	m.Stop() // no-op on a stopped monitor

	if len(sender.frames(t)) == 0 {
		t.Error("no pings sent by running probe loop")
	}
}
