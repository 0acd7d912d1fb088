package router

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/telelink-io/telelink/internal/stream"
	"github.com/telelink-io/telelink/internal/wire"
)

// HealthHandler receives the frames that feed the health monitor.
type HealthHandler interface {
	HandlePong(wire.Pong)
	HandleRemoteTelemetry(wire.PingTelemetry)
}

// StreamSink receives stream directory announcements and value updates.
type StreamSink interface {
	RegisterStreams(ids []string)
	Publish(streamID string, value wire.Value, meta stream.Metadata)
}

// Stats contains routing counters.
type Stats struct {
	Received    int64
	Routed      int64
	ParseErrors int64
	Unknown     int64
}

// Router parses raw frames and dispatches them by message kind.
type Router struct {
	logger  *slog.Logger
	health  HealthHandler
	streams StreamSink

	mu    sync.Mutex
	stats Stats
}

// NewRouter creates a Router.
func NewRouter(streams StreamSink, health HealthHandler, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}

	return &Router{
		logger:  logger,
		health:  health,
		streams: streams,
	}
}

// HandleFrame parses one raw frame and dispatches it. A frame that does
// not parse, or whose discriminant is unknown, is logged and dropped.
func (r *Router) HandleFrame(raw []byte) {
	r.count(func(s *Stats) { s.Received++ })

	var env wire.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		r.parseError("envelope", err)
		return
	}

	switch env.Type {
	case wire.TypePong:
		var pong wire.Pong
		if err := json.Unmarshal(raw, &pong); err != nil {
			r.parseError(env.Type, err)
			return
		}
		r.health.HandlePong(pong)

	case wire.TypeNegotiation:
		var neg wire.Negotiation
		if err := json.Unmarshal(raw, &neg); err != nil {
			r.parseError(env.Type, err)
			return
		}
		r.handleNegotiation(neg)

	case wire.TypeStreamUpdate:
		var upd wire.StreamUpdate
		if err := json.Unmarshal(raw, &upd); err != nil {
			r.parseError(env.Type, err)
			return
		}
		if upd.Stream == "" {
			r.parseError(env.Type, errMissingStreamID)
			return
		}
		r.streams.Publish(upd.Stream, upd.Value, stream.Metadata{
			Unit:     upd.Unit,
			Datatype: upd.Datatype,
			Status:   upd.Status,
		})

	default:
		r.count(func(s *Stats) { s.Unknown++ })
		r.logger.Debug("unknown frame type dropped", "type", env.Type)
		return
	}

	r.count(func(s *Stats) { s.Routed++ })
}

// handleNegotiation updates the stream directory and forwards any
// embedded remote ping telemetry.
func (r *Router) handleNegotiation(neg wire.Negotiation) {
	if len(neg.Data.Streams) > 0 {
		ids := make([]string, 0, len(neg.Data.Streams))
		for _, s := range neg.Data.Streams {
			ids = append(ids, s.ID)
		}
		r.streams.RegisterStreams(ids)
	}

	if neg.Data.Ping != nil {
		r.health.HandleRemoteTelemetry(*neg.Data.Ping)
	}
}

// Stats returns a copy of the routing counters.
func (r *Router) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

func (r *Router) count(apply func(*Stats)) {
	r.mu.Lock()
	apply(&r.stats)
	r.mu.Unlock()
}

func (r *Router) parseError(kind string, err error) {
	r.count(func(s *Stats) { s.ParseErrors++ })
	r.logger.Warn("frame dropped", "kind", kind, "error", err)
}
