package smp

import (
	"errors"
	"log/slog"
)

// Channel is the request/response correlation point: it owns one Link
// and matches inbound frames to outstanding requests by sequence number.
// Channel itself holds no recoverable state on error, so callers may
// retry at the operation level.
type Channel struct {
	link Link
	log  *slog.Logger
}

// NewChannel wraps link in a Channel. A nil logger falls back to
// slog.Default().
func NewChannel(link Link, log *slog.Logger) *Channel {
	if log == nil {
		log = slog.Default()
	}
	return &Channel{link: link, log: log}
}

// Transceive encodes payload as a request frame with the given header
// fields, sends it over the Link, then loops on Receive until a frame
// with a matching sequence arrives (discarding well-formed frames with
// any other sequence), returning the decoded Frame. It surfaces
// ErrTimeout, ErrIO, *CborError, ErrShortFrame and ErrLengthMismatch
// from the Link/Framer unchanged.
func (c *Channel) Transceive(op Op, group Group, sequence uint8, command uint8, payload interface{}) (Frame, error) {
	return c.TransceiveRetry(op, group, sequence, command, payload, 0)
}

// TransceiveRetry behaves like Transceive, but retries the whole
// send-and-wait cycle up to retries additional times when the Link
// reports ErrTimeout. Used only for the first chunk of an image
// upload, which the device may be slow to prepare for (allocating the
// target flash area) before it can reply; every other operation uses
// Transceive's zero-retry behaviour.
func (c *Channel) TransceiveRetry(op Op, group Group, sequence uint8, command uint8, payload interface{}, retries int) (Frame, error) {
	req, err := EncodeFrame(op, group, sequence, command, payload)
	if err != nil {
		return Frame{}, err
	}

	for attempt := 0; ; attempt++ {
		frame, err := c.transceiveOnce(req, sequence)
		if err == nil {
			return frame, nil
		}
		if !errors.Is(err, ErrTimeout) || attempt >= retries {
			return Frame{}, err
		}
		c.log.Debug("smp: retrying after timeout", "attempt", attempt+1)
	}
}

func (c *Channel) transceiveOnce(req []byte, sequence uint8) (Frame, error) {
	if err := c.link.Send(req); err != nil {
		return Frame{}, err
	}

	for {
		raw, err := c.link.Receive()
		if err != nil {
			return Frame{}, err
		}

		frame, err := DecodeFrame(raw)
		if err != nil {
			return Frame{}, err
		}

		if frame.Header.Sequence != sequence {
			c.log.Debug("smp: discarding mismatched sequence",
				"want", sequence, "got", frame.Header.Sequence)
			continue
		}

		return frame, nil
	}
}

// SendTo encodes payload as a frame and sends it to the Link's
// last-observed peer. Used only by a passive test server impersonating
// the device.
func (c *Channel) SendTo(op Op, group Group, sequence uint8, command uint8, payload interface{}) error {
	req, err := EncodeFrame(op, group, sequence, command, payload)
	if err != nil {
		return err
	}
	return c.link.SendTo(req)
}

// ReceiveAs waits for exactly one inbound frame and decodes its payload
// into v, with no sequence matching. Used only by a passive test server.
func (c *Channel) ReceiveAs(v interface{}) (Frame, error) {
	raw, err := c.link.Receive()
	if err != nil {
		return Frame{}, err
	}

	frame, err := DecodeFrame(raw)
	if err != nil {
		return Frame{}, err
	}

	if v != nil {
		if err := DecodePayload(frame, v); err != nil {
			return Frame{}, err
		}
	}

	return frame, nil
}

// Link returns the underlying Link, e.g. to adjust its receive timeout.
func (c *Channel) Link() Link {
	return c.link
}
