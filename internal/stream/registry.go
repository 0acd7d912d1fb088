package stream

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/telelink-io/telelink/internal/observer"
	"github.com/telelink-io/telelink/internal/wire"
)

// Registry caches the last value per stream and fans updates out to
// subscribers.
type Registry struct {
	logger *slog.Logger

	// now is a clock seam for tests.
	now func() time.Time

	mu      sync.Mutex
	records map[string]Record
	subs    map[string]*observer.List[Callback]
	known   map[string]struct{} // directory ids from negotiation frames
}

// NewRegistry creates an empty Registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}

	return &Registry{
		logger:  logger,
		now:     time.Now,
		records: make(map[string]Record),
		subs:    make(map[string]*observer.List[Callback]),
		known:   make(map[string]struct{}),
	}
}

// Subscribe registers cb for streamID and returns its removal token.
// When a cached record exists, cb is invoked exactly once with it before
// Subscribe returns, so a late subscriber is never blind until the next
// update.
func (r *Registry) Subscribe(streamID string, cb Callback) uuid.UUID {
	r.mu.Lock()
	list, ok := r.subs[streamID]
	if !ok {
		list = observer.NewList[Callback]()
		r.subs[streamID] = list
	}
	id := list.Add(cb)
	rec, hasRecord := r.records[streamID]
	r.mu.Unlock()

	if hasRecord {
		r.deliver(cb, rec)
	}

	return id
}

// Unsubscribe removes the subscription identified by id. Unknown tokens
// are a no-op.
func (r *Registry) Unsubscribe(streamID string, id uuid.UUID) {
	r.mu.Lock()
	list, ok := r.subs[streamID]
	r.mu.Unlock()

	if ok {
		list.Remove(id)
	}
}

// Publish updates or creates the record for streamID and delivers it to
// every subscriber registered at the start of the call, in registration
// order. Subscriptions changed from inside a callback take effect on the
// next publish.
func (r *Registry) Publish(streamID string, value wire.Value, meta Metadata) {
	r.mu.Lock()
	rec := Record{
		StreamID:   streamID,
		Value:      value,
		Unit:       meta.Unit,
		Datatype:   meta.Datatype,
		Status:     meta.Status,
		ReceivedAt: r.now(),
	}
	r.records[streamID] = rec
	r.known[streamID] = struct{}{}

	var snapshot []Callback
	if list, ok := r.subs[streamID]; ok {
		snapshot = list.Snapshot()
	}
	r.mu.Unlock()

	for _, cb := range snapshot {
		r.deliver(cb, rec)
	}
}

// Value returns the cached record for streamID.
func (r *Registry) Value(streamID string) (Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[streamID]
	return rec, ok
}

// StreamIDs returns a sorted snapshot of all known stream identifiers:
// ids announced via negotiation plus ids observed through updates.
func (r *Registry) StreamIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.known))
	for id := range r.known {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// RegisterStreams adds ids to the stream directory without publishing
// values. Called when a negotiation frame announces available streams.
func (r *Registry) RegisterStreams(ids []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		if id == "" {
			continue
		}
		r.known[id] = struct{}{}
	}
}

// deliver invokes one callback with panic isolation so a failing
// subscriber never blocks delivery to the rest.
func (r *Registry) deliver(cb Callback, rec Record) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("subscriber callback panicked",
				"stream", rec.StreamID,
				"panic", p,
			)
		}
	}()
	cb(rec)
}
