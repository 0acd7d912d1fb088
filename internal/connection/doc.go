// Package connection owns the WebSocket lifecycle.
//
// Client wraps a single socket: dial, serialized writes, and a read loop
// feeding buffered channels. Manager layers the connection state machine
// on top: it is the only writer of the connection state, drives the
// fixed-delay auto-reconnect, and fans out state transitions and raw
// inbound frames to registered observers.
package connection
