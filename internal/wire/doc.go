// Package wire defines the telemetry wire protocol.
//
// Every frame is a flat JSON record with a required "type" discriminant:
//   - inbound: pong, negotiation, stream_update
//   - outbound: ping, control, ping_interval_update
//
// Payload values are carried as a closed tagged variant (Value) over
// float, int, string, and bool. Anything else is rejected at decode time
// so untyped shapes never propagate past the protocol boundary.
package wire
