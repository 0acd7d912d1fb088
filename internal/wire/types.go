package wire

import (
	"encoding/json"
	"strconv"
)

// Frame type discriminants.
const (
	TypePing               = "ping"
	TypePong               = "pong"
	TypeNegotiation        = "negotiation"
	TypeStreamUpdate       = "stream_update"
	TypeControl            = "control"
	TypePingIntervalUpdate = "ping_interval_update"
)

// Ping target names. Exactly two targets exist: the channel this client
// probes directly, and the channel the far side reports on its own behalf.
const (
	TargetLocal  = "local"
	TargetRemote = "remote"
)

// Envelope is used for fast discriminant extraction before full parsing.
type Envelope struct {
	Type string `json:"type"`
}

// FlexInt64 can unmarshal from either a JSON string or number.
// Some telemetry sources send millisecond timestamps as strings.
type FlexInt64 int64

func (f *FlexInt64) UnmarshalJSON(data []byte) error {
	var i int64
	if err := json.Unmarshal(data, &i); err == nil {
		*f = FlexInt64(i)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*f = FlexInt64(i)
	return nil
}

// Ping is the outbound probe frame for the local target.
type Ping struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"` // Unix milliseconds at send time
	Target    string `json:"target"`
	Status    string `json:"status"`
}

// Pong is the inbound reply to a Ping. Timestamp echoes the probe's
// timestamp so round-trip latency is computed against the local clock.
type Pong struct {
	Type      string    `json:"type"`
	Target    string    `json:"target"`
	Timestamp FlexInt64 `json:"timestamp"`
}

// Negotiation is the periodic broadcast from the remote side describing
// the streams it publishes, plus its self-measured ping telemetry.
type Negotiation struct {
	Type string          `json:"type"`
	Data NegotiationData `json:"data"`
}

// NegotiationData is the nested payload of a Negotiation frame.
type NegotiationData struct {
	Streams []StreamInfo   `json:"streams"`
	Ping    *PingTelemetry `json:"ping,omitempty"`
}

// StreamInfo describes one available stream in the negotiation directory.
type StreamInfo struct {
	ID       string `json:"id"`
	Unit     string `json:"unit,omitempty"`
	Datatype string `json:"datatype,omitempty"`
}

// PingTelemetry is the remote side's self-reported health, embedded in
// negotiation frames. The remote target is never probed directly.
type PingTelemetry struct {
	LatencyMs int64  `json:"latency_ms"`
	Status    string `json:"status"`
}

// StreamUpdate carries one new value for a named stream.
type StreamUpdate struct {
	Type     string `json:"type"`
	Stream   string `json:"stream"`
	Value    Value  `json:"value"`
	Unit     string `json:"unit,omitempty"`
	Datatype string `json:"datatype,omitempty"`
	Status   string `json:"status,omitempty"`
}

// Control is an outbound command frame for a hardware module.
type Control struct {
	Type     string `json:"type"`
	ModuleID string `json:"module_id"`
	Command  string `json:"command"`
	Value    Value  `json:"value"`
}

// PingIntervalUpdate asks the remote side to adjust its ping emission
// cadence. The remote interval is a cross-process negotiated setting.
type PingIntervalUpdate struct {
	Type       string `json:"type"`
	IntervalMs int64  `json:"interval_ms"`
}
