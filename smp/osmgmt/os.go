// Package osmgmt implements the SMP OS management group: echo and reset.
// This package is a pure data layer — request builders and response
// parsers — with no I/O of its own; the Client Facade drives the
// Channel and calls into this package to build and interpret payloads.
package osmgmt

import "github.com/ffenix113/smp-tool/smp"

// EchoRequest is the payload of an echo command.
type EchoRequest struct {
	D string `cbor:"d"`
}

// BuildEcho returns the payload for an OS echo command.
func BuildEcho(message string) EchoRequest {
	return EchoRequest{D: message}
}

// EchoReply is the echo response: either R is set (success, echoing D)
// or Rc is set (device rejected the request).
type EchoReply struct {
	R  *string `cbor:"r,omitempty"`
	Rc *int32  `cbor:"rc,omitempty"`
}

// ParseEcho decodes an echo response frame.
func ParseEcho(frame smp.Frame) (EchoReply, error) {
	var reply EchoReply
	if err := smp.DecodePayload(frame, &reply); err != nil {
		return EchoReply{}, err
	}
	return reply, nil
}

// Result returns the echoed string, or a *smp.DeviceError if the device
// reported a failure.
func (r EchoReply) Result() (string, error) {
	if r.Rc != nil {
		return "", &smp.DeviceError{Rc: *r.Rc}
	}
	if r.R == nil {
		return "", nil
	}
	return *r.R, nil
}

// ResetRequest is the payload of a reset command. Force is omitted when
// false rather than encoded as a CBOR false value.
type ResetRequest struct {
	Force bool `cbor:"force,omitempty"`
}

// BuildReset returns the payload for an OS reset command.
func BuildReset(force bool) ResetRequest {
	return ResetRequest{Force: force}
}

// ResetReply is the reset response: an empty map on success, or Rc set
// on failure.
type ResetReply struct {
	Rc *int32 `cbor:"rc,omitempty"`
}

// ParseReset decodes a reset response frame.
func ParseReset(frame smp.Frame) (ResetReply, error) {
	var reply ResetReply
	if err := smp.DecodePayload(frame, &reply); err != nil {
		return ResetReply{}, err
	}
	return reply, nil
}

// Result returns nil on success, or a *smp.DeviceError if the device
// reported a failure. A successful reset normally preempts the reply
// entirely; callers must be prepared to treat smp.ErrTimeout as success.
func (r ResetReply) Result() error {
	if r.Rc != nil {
		return &smp.DeviceError{Rc: *r.Rc}
	}
	return nil
}
