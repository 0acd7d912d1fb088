package stream

import (
	"time"

	"github.com/telelink-io/telelink/internal/wire"
)

// Record is the cached last value of one stream.
type Record struct {
	StreamID   string
	Value      wire.Value
	Unit       string
	Datatype   string
	Status     string
	ReceivedAt time.Time // local receipt time; non-decreasing per stream
}

// Metadata describes a stream value beyond the value itself.
type Metadata struct {
	Unit     string
	Datatype string
	Status   string
}

// Callback receives stream updates. Invoked synchronously during
// Publish and once during Subscribe when a cached record exists.
type Callback func(Record)
