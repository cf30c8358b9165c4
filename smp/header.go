// Package smp implements the Simple Management Protocol wire format: an
// 8-byte header followed by a CBOR payload, plus the Channel that
// correlates a reply to its request on a shared datagram Link.
package smp

import (
	"encoding/binary"
	"fmt"
)

// HeaderLen is the fixed size of the SMP header in bytes.
const HeaderLen = 8

// Op is the SMP operation code carried in the low 3 bits of header byte 0.
type Op uint8

// Op values, per the Zephyr/MCUmgr SMP specification.
const (
	OpReadRequest Op = iota
	OpReadResponse
	OpWriteRequest
	OpWriteResponse
)

func (o Op) String() string {
	switch o {
	case OpReadRequest:
		return "ReadRequest"
	case OpReadResponse:
		return "ReadResponse"
	case OpWriteRequest:
		return "WriteRequest"
	case OpWriteResponse:
		return "WriteResponse"
	default:
		return fmt.Sprintf("Op(%d)", uint8(o))
	}
}

// Response returns the Response Op that corresponds to a Request Op.
// Calling it on a Response Op is a no-op (the value is returned unchanged).
func (o Op) Response() Op {
	switch o {
	case OpReadRequest:
		return OpReadResponse
	case OpWriteRequest:
		return OpWriteResponse
	default:
		return o
	}
}

// Group is the SMP management group a command belongs to.
type Group uint16

// Group codes in scope for this client.
const (
	GroupOS    Group = 0
	GroupImage Group = 1
	GroupShell Group = 9

	// GroupDefault is a sentinel group code outside the groups in scope.
	// Nothing in this module sends it or assigns it; the test server
	// dispatches on the group of each decoded frame and keeps no
	// per-server group state.
	GroupDefault Group = 0xffff

	// GroupUserDefinedMin is the first group code reserved for
	// vendor-specific extensions; the wire permits it, this client
	// never sends or expects it.
	GroupUserDefinedMin Group = 64
)

// Command IDs used by the groups this client speaks.
const (
	CommandOSEcho  = 0
	CommandOSReset = 5

	CommandImageState  = 0
	CommandImageUpload = 1

	CommandShellExec = 0
)

// Header is the fixed 8-byte SMP frame header.
//
//	byte 0 : op (low 3 bits) | flags (high 5 bits, reserved, zero)
//	bytes 1-2 : length of CBOR payload, big-endian
//	bytes 3-4 : group, big-endian
//	byte 5    : sequence
//	byte 6    : command
//	byte 7    : reserved (zero)
type Header struct {
	Op       Op
	Flags    uint8
	Len      uint16
	Group    Group
	Sequence uint8
	Command  uint8
}

// Marshal packs the header into its 8-byte wire form.
func (h Header) Marshal() []byte {
	buf := make([]byte, HeaderLen)
	buf[0] = uint8(h.Op&0x07) | (h.Flags << 3)
	binary.BigEndian.PutUint16(buf[1:3], h.Len)
	binary.BigEndian.PutUint16(buf[3:5], uint16(h.Group))
	buf[5] = h.Sequence
	buf[6] = h.Command
	buf[7] = 0
	return buf
}

// UnmarshalHeader unpacks the 8-byte wire form into a Header.
func UnmarshalHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderLen {
		return Header{}, fmt.Errorf("%w: header needs %d bytes, got %d", ErrShortFrame, HeaderLen, len(buf))
	}
	return Header{
		Op:       Op(buf[0] & 0x07),
		Flags:    buf[0] >> 3,
		Len:      binary.BigEndian.Uint16(buf[1:3]),
		Group:    Group(binary.BigEndian.Uint16(buf[3:5])),
		Sequence: buf[5],
		Command:  buf[6],
	}, nil
}
