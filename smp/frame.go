package smp

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// encMode produces definite-length CBOR for maps and arrays so the device
// can size-check the payload, per the Zephyr/MCUmgr wire contract.
var encMode = func() cbor.EncMode {
	opts := cbor.EncOptions{IndefLength: cbor.IndefLengthForbidden}
	mode, err := opts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("smp: building cbor encode mode: %s", err))
	}
	return mode
}()

// Frame is a decoded SMP header paired with its still-encoded CBOR payload.
type Frame struct {
	Header Header
	Data   []byte
}

// EncodeFrame serialises payload as CBOR and prepends the 8-byte header,
// with Len filled in from the encoded payload. op is whatever Op the
// caller intends the frame to carry — a Request variant when building a
// request, or op.Response() when building a reply.
func EncodeFrame(op Op, group Group, sequence uint8, command uint8, payload interface{}) ([]byte, error) {
	data, err := encMode.Marshal(payload)
	if err != nil {
		return nil, &CborError{Err: err}
	}

	h := Header{
		Op:       op,
		Len:      uint16(len(data)),
		Group:    group,
		Sequence: sequence,
		Command:  command,
	}

	out := make([]byte, 0, HeaderLen+len(data))
	out = append(out, h.Marshal()...)
	out = append(out, data...)
	return out, nil
}

// DecodeFrame reads the 8-byte header from buf, validates Len against the
// remainder, and returns the Frame with Data left CBOR-encoded (callers
// decode into their specific response type with DecodePayload).
func DecodeFrame(buf []byte) (Frame, error) {
	h, err := UnmarshalHeader(buf)
	if err != nil {
		return Frame{}, err
	}

	rest := buf[HeaderLen:]
	if int(h.Len) != len(rest) {
		return Frame{}, fmt.Errorf("%w: header says %d, got %d", ErrLengthMismatch, h.Len, len(rest))
	}

	return Frame{Header: h, Data: rest}, nil
}

// DecodePayload CBOR-decodes a Frame's Data into v.
func DecodePayload(f Frame, v interface{}) error {
	if err := cbor.Unmarshal(f.Data, v); err != nil {
		return &CborError{Err: err}
	}
	return nil
}
