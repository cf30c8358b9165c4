package imgmgmt

import (
	"crypto/sha256"

	"github.com/ffenix113/smp-tool/smp"
)

// WriteChunkRequest is the payload of one image-upload chunk. Only the
// very first chunk (Off == 0) carries Len, Sha, Upgrade and Image;
// later chunks carry only Off and Data, to save wire bytes.
type WriteChunkRequest struct {
	Off     uint32  `cbor:"off"`
	Data    []byte  `cbor:"data"`
	Len     *uint32 `cbor:"len,omitempty"`
	Sha     []byte  `cbor:"sha,omitempty"`
	Upgrade bool    `cbor:"upgrade,omitempty"`
	Image   *uint32 `cbor:"image,omitempty"`
}

// BuildWriteChunk returns the payload for one chunk of an image upload.
// firstChunk carries the total length, image hash, upgrade flag and
// target slot; pass nil for every chunk after the first.
func BuildWriteChunk(offset uint32, data []byte, firstChunk *FirstChunkFields) WriteChunkRequest {
	req := WriteChunkRequest{Off: offset, Data: data}
	if firstChunk != nil {
		req.Len = &firstChunk.TotalLen
		req.Sha = firstChunk.Hash
		req.Upgrade = firstChunk.Upgrade
		req.Image = firstChunk.Slot
	}
	return req
}

// FirstChunkFields are the additional fields only the offset-zero chunk
// of an upload carries.
type FirstChunkFields struct {
	TotalLen uint32
	Hash     []byte
	Upgrade  bool
	Slot     *uint32
}

// WriteChunkReply is the write-chunk response: either Off (and
// optionally Match, on the terminal chunk) are set on success, or Rc is
// set on failure.
type WriteChunkReply struct {
	Off   *uint32 `cbor:"off,omitempty"`
	Match *bool   `cbor:"match,omitempty"`
	Rc    *int32  `cbor:"rc,omitempty"`
	Rsn   *string `cbor:"rsn,omitempty"`
}

// ParseWriteChunk decodes a write-chunk response frame.
func ParseWriteChunk(frame smp.Frame) (WriteChunkReply, error) {
	var reply WriteChunkReply
	if err := smp.DecodePayload(frame, &reply); err != nil {
		return WriteChunkReply{}, err
	}
	return reply, nil
}

// Result returns the device-advertised next offset and terminal-chunk
// match flag on success, or a *smp.UploadRejected on failure.
func (r WriteChunkReply) Result() (offset uint32, match *bool, err error) {
	if r.Rc != nil {
		reason := ""
		if r.Rsn != nil {
			reason = *r.Rsn
		}
		return 0, nil, &smp.UploadRejected{Rc: *r.Rc, Reason: reason}
	}
	if r.Off == nil {
		return 0, nil, &smp.UploadRejected{Rc: -1, Reason: "response carried neither off nor rc"}
	}
	return *r.Off, r.Match, nil
}

// UploadOptions configures a Flash call.
type UploadOptions struct {
	// Slot selects the target image slot; nil uses the device's default.
	Slot *uint32
	// ChunkSize is the number of firmware bytes per write-chunk request.
	ChunkSize uint32
	// Upgrade restricts the device to accepting only newer firmware
	// versions.
	Upgrade bool
	// Progress, if non-nil, is called after every successful chunk
	// with the bytes written so far and the total image size. This is
	// the only coupling this package has to user-facing output.
	Progress func(written, total uint32)
}

const defaultChunkSize = 256

// Flash drives a byte-aligned chunked upload of firmware to the device
// over ch, honouring the device's offset feedback and verifying the
// final image hash end-to-end, per spec.md §4.5.
//
// nextSeq is called once per chunk to obtain that request's sequence
// number; the Client Facade owns the counter so flash participates in
// the same monotonic sequence space as every other operation on the
// Channel.
func Flash(ch *smp.Channel, nextSeq func() uint8, firmware []byte, opts UploadOptions) error {
	chunkSize := opts.ChunkSize
	if chunkSize == 0 {
		chunkSize = defaultChunkSize
	}

	digest := sha256.Sum256(firmware)
	total := uint32(len(firmware))

	var offset uint32
	var verified *bool

	for offset < total {
		end := offset + chunkSize
		if end > total {
			end = total
		}
		chunk := firmware[offset:end]

		var first *FirstChunkFields
		if offset == 0 {
			first = &FirstChunkFields{
				TotalLen: total,
				Hash:     digest[:],
				Upgrade:  opts.Upgrade,
				Slot:     opts.Slot,
			}
		}

		req := BuildWriteChunk(offset, chunk, first)

		// The first chunk gets one retry on Timeout: the device may
		// still be preparing the target flash area and miss the
		// deadline on its first reply. Every later chunk gets none.
		retries := 0
		if offset == 0 {
			retries = 1
		}

		frame, err := ch.TransceiveRetry(smp.OpWriteRequest, smp.GroupImage, nextSeq(), smp.CommandImageUpload, req, retries)
		if err != nil {
			return err
		}

		reply, err := ParseWriteChunk(frame)
		if err != nil {
			return err
		}

		newOffset, match, err := reply.Result()
		if err != nil {
			return err
		}

		// The device's reported offset is authoritative: it arbitrates
		// flash-page alignment and may coalesce, reject, or ask for a
		// retransmit of the same region.
		offset = newOffset
		if match != nil {
			verified = match
		}

		if opts.Progress != nil {
			opts.Progress(offset, total)
		}
	}

	if verified == nil || !*verified {
		return smp.ErrVerificationFailed
	}

	return nil
}
