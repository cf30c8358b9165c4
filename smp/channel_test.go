package smp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// memLink is an in-memory smp.Link used to test Channel in isolation from
// any real socket.
type memLink struct {
	sent    [][]byte
	inbound chan []byte
}

func newMemLink() *memLink {
	return &memLink{inbound: make(chan []byte, 8)}
}

func (m *memLink) Send(b []byte) error {
	m.sent = append(m.sent, append([]byte(nil), b...))
	return nil
}

func (m *memLink) SendTo(b []byte) error { return m.Send(b) }

func (m *memLink) Receive() ([]byte, error) {
	select {
	case b := <-m.inbound:
		return b, nil
	case <-time.After(time.Second):
		return nil, ErrTimeout
	}
}

func (m *memLink) SetReceiveTimeout(time.Duration) {}

func (m *memLink) push(t *testing.T, op Op, group Group, seq uint8, cmd uint8, payload interface{}) {
	t.Helper()
	raw, err := EncodeFrame(op, group, seq, cmd, payload)
	require.NoError(t, err)
	m.inbound <- raw
}

func TestChannelTransceiveMatchesSequence(t *testing.T) {
	link := newMemLink()
	ch := NewChannel(link, nil)

	link.push(t, OpWriteResponse, GroupOS, 5, CommandOSEcho, echoPayload{D: "hi"})

	frame, err := ch.Transceive(OpWriteRequest, GroupOS, 5, CommandOSEcho, echoPayload{D: "hi"})
	require.NoError(t, err)
	require.EqualValues(t, 5, frame.Header.Sequence)
}

// Given a Channel with an outstanding request of sequence s, when the
// Link yields a valid frame with a different sequence followed by one
// matching s, Transceive must return only the second and never the first.
func TestChannelDiscardsMismatchedSequence(t *testing.T) {
	link := newMemLink()
	ch := NewChannel(link, nil)

	link.push(t, OpWriteResponse, GroupOS, 9, CommandOSEcho, echoPayload{D: "stale"})
	link.push(t, OpWriteResponse, GroupOS, 5, CommandOSEcho, echoPayload{D: "fresh"})

	frame, err := ch.Transceive(OpWriteRequest, GroupOS, 5, CommandOSEcho, echoPayload{D: "fresh"})
	require.NoError(t, err)

	var got echoPayload
	require.NoError(t, DecodePayload(frame, &got))
	require.Equal(t, "fresh", got.D)
}

func TestChannelTransceivePropagatesTimeout(t *testing.T) {
	link := newMemLink()
	ch := NewChannel(link, nil)

	_, err := ch.Transceive(OpWriteRequest, GroupOS, 0, CommandOSEcho, echoPayload{D: "x"})
	require.ErrorIs(t, err, ErrTimeout)
}

// flakyLink times out on every Send except the sendsToSucceed-th one, at
// which point it replies immediately with the given sequence.
type flakyLink struct {
	sends          int
	sendsToSucceed int
	reply          []byte
}

func (f *flakyLink) Send([]byte) error {
	f.sends++
	return nil
}
func (f *flakyLink) SendTo(b []byte) error { return f.Send(b) }
func (f *flakyLink) Receive() ([]byte, error) {
	if f.sends == f.sendsToSucceed {
		return f.reply, nil
	}
	return nil, ErrTimeout
}
func (f *flakyLink) SetReceiveTimeout(time.Duration) {}

func TestChannelTransceiveRetryRecoversFromOneTimeout(t *testing.T) {
	reply, err := EncodeFrame(OpWriteResponse, GroupImage, 3, CommandImageUpload, struct {
		Off uint32 `cbor:"off"`
	}{Off: 4})
	require.NoError(t, err)

	link := &flakyLink{sendsToSucceed: 2, reply: reply}
	ch := NewChannel(link, nil)

	frame, err := ch.TransceiveRetry(OpWriteRequest, GroupImage, 3, CommandImageUpload, struct {
		Off uint32 `cbor:"off"`
	}{Off: 0}, 1)
	require.NoError(t, err)
	require.EqualValues(t, 3, frame.Header.Sequence)
	require.Equal(t, 2, link.sends)
}

func TestChannelTransceiveRetryExhaustedReturnsTimeout(t *testing.T) {
	link := &flakyLink{sendsToSucceed: -1}
	ch := NewChannel(link, nil)

	_, err := ch.TransceiveRetry(OpWriteRequest, GroupImage, 0, CommandImageUpload, struct{}{}, 1)
	require.ErrorIs(t, err, ErrTimeout)
	require.Equal(t, 2, link.sends)
}

func TestChannelSendToAndReceiveAs(t *testing.T) {
	link := newMemLink()
	ch := NewChannel(link, nil)

	link.push(t, OpWriteRequest, GroupShell, 1, CommandShellExec, struct {
		Argv []string `cbor:"argv"`
	}{Argv: []string{"ls"}})

	var decoded struct {
		Argv []string `cbor:"argv"`
	}
	frame, err := ch.ReceiveAs(&decoded)
	require.NoError(t, err)
	require.Equal(t, GroupShell, frame.Header.Group)
	require.Equal(t, []string{"ls"}, decoded.Argv)

	require.NoError(t, ch.SendTo(OpWriteResponse, GroupShell, 1, CommandShellExec, struct {
		O   string `cbor:"o"`
		Ret int32  `cbor:"ret"`
	}{O: "", Ret: 0}))
	require.Len(t, link.sent, 1)
}
