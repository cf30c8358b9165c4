// Package imgmgmt implements the SMP image management group: enumerating
// images, marking one pending/confirmed, and the chunked upload wire
// format. Request/response types here are a pure data layer; the upload
// state machine lives in upload.go and drives a smp.Channel directly,
// since (unlike the other groups) it is stateful across many requests.
package imgmgmt

import (
	"fmt"

	"github.com/ffenix113/smp-tool/smp"
)

// ImageDescriptor describes one image slot as reported by the device.
type ImageDescriptor struct {
	Slot      uint32 `cbor:"slot"`
	Version   string `cbor:"version"`
	Hash      []byte `cbor:"hash,omitempty"`
	Active    bool   `cbor:"active,omitempty"`
	Confirmed bool   `cbor:"confirmed,omitempty"`
	Bootable  bool   `cbor:"bootable,omitempty"`
	Pending   bool   `cbor:"pending,omitempty"`
}

// Validate enforces the well-formedness invariant: when Hash is present
// it is exactly 32 bytes (a SHA-256 digest).
func (d ImageDescriptor) Validate() error {
	if d.Hash != nil && len(d.Hash) != 32 {
		return fmt.Errorf("smp: image descriptor hash is %d bytes, want 32", len(d.Hash))
	}
	return nil
}

// GetStateRequest is the (empty) payload of an image state request.
type GetStateRequest struct{}

// BuildGetState returns the payload for an image state request.
func BuildGetState() GetStateRequest {
	return GetStateRequest{}
}

// GetStateReply is the image state response: Images is set on success,
// Rc is set on failure.
type GetStateReply struct {
	Images []ImageDescriptor `cbor:"images,omitempty"`
	Rc     *int32            `cbor:"rc,omitempty"`
	Rsn    *string           `cbor:"rsn,omitempty"`
}

// ParseGetState decodes an image state response frame.
func ParseGetState(frame smp.Frame) (GetStateReply, error) {
	var reply GetStateReply
	if err := smp.DecodePayload(frame, &reply); err != nil {
		return GetStateReply{}, err
	}
	return reply, nil
}

// Result returns the image list on success, or a *smp.DeviceError
// carrying the device's rc/rsn on failure.
func (r GetStateReply) Result() ([]ImageDescriptor, error) {
	if r.Rc != nil {
		return nil, r.deviceError()
	}
	for _, img := range r.Images {
		if err := img.Validate(); err != nil {
			return nil, err
		}
	}
	return r.Images, nil
}

func (r GetStateReply) deviceError() *smp.DeviceError {
	reason := ""
	if r.Rsn != nil {
		reason = *r.Rsn
	}
	return &smp.DeviceError{Rc: *r.Rc, Reason: reason}
}

// SetStateRequest is the payload to mark an image pending ("test") or
// confirmed. With Hash set and Confirm false, mark that image pending
// for the next boot. With Hash absent and Confirm true, confirm the
// currently active image.
type SetStateRequest struct {
	Hash    []byte `cbor:"hash,omitempty"`
	Confirm bool   `cbor:"confirm"`
}

// BuildSetState returns the payload for a set-state request.
func BuildSetState(hash []byte, confirm bool) SetStateRequest {
	return SetStateRequest{Hash: hash, Confirm: confirm}
}

// ParseSetState decodes a set-state response frame; its shape is
// identical to GetStateReply's.
func ParseSetState(frame smp.Frame) (GetStateReply, error) {
	return ParseGetState(frame)
}
