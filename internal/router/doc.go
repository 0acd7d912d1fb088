// Package router dispatches inbound frames by their type discriminant.
//
// The router never terminates the connection: malformed frames and
// unknown discriminants are logged, counted, and dropped. Frames are
// handled strictly in arrival order; nothing is reordered or batched.
package router
