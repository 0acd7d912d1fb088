package health

import "time"

// Status is the application-level liveness of one ping target. It is
// deliberately independent of the socket-level connection state.
type Status string

const (
	StatusConnected    Status = "connected"
	StatusDisconnected Status = "disconnected"
	StatusReconnecting Status = "reconnecting"
)

// TargetHealth is the observed health of one ping target.
type TargetHealth struct {
	LatencyMs  int64
	Status     Status
	LastPingAt time.Time
	LastPongAt time.Time
}

// Snapshot is a read-only view of both targets.
type Snapshot struct {
	Local  TargetHealth
	Remote TargetHealth
}

// Intervals holds the health protocol cadences.
type Intervals struct {
	// Local is the probe interval for the local target.
	Local time.Duration
	// Remote is the far side's negotiated emission interval.
	Remote time.Duration
	// HealthCheck is the liveness sweep interval.
	HealthCheck time.Duration
}

// IntervalUpdate is a partial change to Intervals; nil fields keep their
// current value.
type IntervalUpdate struct {
	Local       *time.Duration
	Remote      *time.Duration
	HealthCheck *time.Duration
}

// staleMultiplier scales the local probe interval into the liveness
// threshold: a target with no pong for this many probe intervals is
// considered disconnected.
const staleMultiplier = 5
