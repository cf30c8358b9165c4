package smp

import (
	"errors"
	"fmt"
)

// Sentinel errors for the framing/transport layers. Use errors.Is to test
// for these across the package boundary; Channel.Transceive and the Link
// implementations wrap the underlying cause with %w.
var (
	// ErrIO is the underlying datagram transport failing; not retried here.
	ErrIO = errors.New("smp: io error")
	// ErrTimeout is a per-receive deadline elapsing; callers decide whether to retry.
	ErrTimeout = errors.New("smp: timeout")
	// ErrNoPeerKnown is SendTo being called before any source address has been observed.
	ErrNoPeerKnown = errors.New("smp: no peer known")
	// ErrShortFrame is fewer than HeaderLen bytes having been received.
	ErrShortFrame = errors.New("smp: short frame")
	// ErrLengthMismatch is Header.Len not matching the actual payload length.
	ErrLengthMismatch = errors.New("smp: length mismatch")
)

// CborError wraps a CBOR encode/decode failure from the payload layer.
type CborError struct {
	Err error
}

func (e *CborError) Error() string { return fmt.Sprintf("smp: cbor error: %s", e.Err) }
func (e *CborError) Unwrap() error { return e.Err }

// DeviceError is the device rejecting a request at the SMP layer, decoded
// from a group codec's error shape ({rc, rsn?}).
type DeviceError struct {
	Rc     int32
	Reason string
}

func (e *DeviceError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("smp: device error: rc=%d rsn=%q", e.Rc, e.Reason)
	}
	return fmt.Sprintf("smp: device error: rc=%d", e.Rc)
}

// UploadRejected is a write-chunk error during a firmware upload; the
// upload engine aborts on this.
type UploadRejected struct {
	Rc     int32
	Reason string
}

func (e *UploadRejected) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("smp: upload rejected: rc=%d rsn=%q", e.Rc, e.Reason)
	}
	return fmt.Sprintf("smp: upload rejected: rc=%d", e.Rc)
}

// ErrVerificationFailed is the full image having uploaded but the device's
// hash check not matching.
var ErrVerificationFailed = errors.New("smp: image verification failed")

// ShellNonZeroExit is a shell command completing but returning a non-zero
// exit status. Stdout captured before the failure is preserved on Stdout.
type ShellNonZeroExit struct {
	Ret    int32
	Stdout string
}

func (e *ShellNonZeroExit) Error() string {
	return fmt.Sprintf("smp: shell command exited %d", e.Ret)
}

// HashHexLengthMismatch is an invalid user-supplied hex hash: after
// stripping non-hex characters, the input did not contain exactly 64
// hex digits.
type HashHexLengthMismatch struct {
	Expected int
	Got      int
}

func (e *HashHexLengthMismatch) Error() string {
	return fmt.Sprintf("smp: hash hex length mismatch: expected %d, got %d", e.Expected, e.Got)
}
