package smp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTrip(t *testing.T) {
	cases := []Header{
		{Op: OpReadRequest, Len: 0, Group: GroupOS, Sequence: 0, Command: CommandOSEcho},
		{Op: OpWriteResponse, Len: 1337, Group: GroupImage, Sequence: 255, Command: CommandImageUpload},
		{Op: OpWriteRequest, Len: 42, Group: GroupShell, Sequence: 7, Command: CommandShellExec},
	}

	for _, want := range cases {
		buf := want.Marshal()
		require.Len(t, buf, HeaderLen)

		got, err := UnmarshalHeader(buf)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestHeaderBigEndianFields(t *testing.T) {
	h := Header{Op: OpReadResponse, Len: 0x0102, Group: 0x0304, Sequence: 5, Command: 6}
	buf := h.Marshal()

	require.Equal(t, byte(0x01), buf[1], "length high byte")
	require.Equal(t, byte(0x02), buf[2], "length low byte")
	require.Equal(t, byte(0x03), buf[3], "group high byte")
	require.Equal(t, byte(0x04), buf[4], "group low byte")
	require.Equal(t, byte(5), buf[5])
	require.Equal(t, byte(6), buf[6])
	require.Equal(t, byte(0), buf[7], "reserved byte")
}

func TestUnmarshalHeaderShortFrame(t *testing.T) {
	_, err := UnmarshalHeader([]byte{1, 2, 3})
	require.ErrorIs(t, err, ErrShortFrame)
}

func TestOpResponse(t *testing.T) {
	require.Equal(t, OpReadResponse, OpReadRequest.Response())
	require.Equal(t, OpWriteResponse, OpWriteRequest.Response())
}
