// Package health implements the dual-target connection-health protocol.
//
// The local target is probed directly with ping/pong round trips. The
// remote target is never probed: its latency and status arrive
// passively, embedded in negotiation frames from the far side. A
// periodic liveness sweep marks either target disconnected when pongs
// stop arriving, independently of the transport-level connection state —
// an open socket whose counterpart has gone silent is still a dead link.
package health
