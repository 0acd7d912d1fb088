// Package stream holds the per-stream value cache and subscriber
// registry.
//
// A Record is created on the first observed update for a stream id and
// never removed, so a late subscriber always receives the last known
// value immediately (replay-on-subscribe). Fan-out iterates a snapshot
// of the subscriber set in registration order; a panicking callback is
// isolated and logged without affecting delivery to the rest.
package stream
