package smp

import "time"

// BufSize is the minimum receive buffer size, large enough for a
// full-MTU UDP payload.
const BufSize = 1500

// Link moves one SMP frame at a time to or from a single peer. It has
// datagram semantics: one Send/SendTo call corresponds to exactly one
// Receive call on the other side, with no fragmentation at this layer.
//
// Two concurrency variants satisfy this contract (see package smp/udp):
// a blocking variant where Receive blocks the calling goroutine, and a
// cooperative variant where Receive may suspend the calling goroutine
// behind a channel, but never past its configured timeout.
type Link interface {
	// Send transmits one datagram to the connected (or last-targeted) peer.
	Send(b []byte) error
	// SendTo transmits to the most recently observed source address, for
	// use by a passive server that replies to whoever last sent it a
	// datagram. Fails with ErrNoPeerKnown if no datagram has been
	// received yet.
	SendTo(b []byte) error
	// Receive waits for one inbound datagram and returns its payload.
	// It fails with ErrTimeout if the configured receive timeout elapses
	// first, or a wrapped ErrIO on any other transport failure.
	Receive() ([]byte, error)
	// SetReceiveTimeout configures the per-Receive deadline; a zero
	// duration disables it.
	SetReceiveTimeout(d time.Duration)
}
