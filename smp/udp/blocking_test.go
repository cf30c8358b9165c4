package udp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ffenix113/smp-tool/smp"
)

func TestBlockingLinkReceiveTimesOut(t *testing.T) {
	server, err := Listen("127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = server.Close() })

	server.SetReceiveTimeout(50 * time.Millisecond)

	start := time.Now()
	_, err = server.Receive()
	elapsed := time.Since(start)

	require.ErrorIs(t, err, smp.ErrTimeout)
	require.Less(t, elapsed, time.Second)
}

func TestBlockingLinkSendReceiveRoundTrip(t *testing.T) {
	server, err := Listen("127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = server.Close() })

	client, err := Dial(server.LocalAddr().String())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	server.SetReceiveTimeout(2 * time.Second)

	require.NoError(t, client.Send([]byte("ping")))

	got, err := server.Receive()
	require.NoError(t, err)
	require.Equal(t, "ping", string(got))

	require.NoError(t, server.SendTo([]byte("pong")))

	client.SetReceiveTimeout(2 * time.Second)
	got, err = client.Receive()
	require.NoError(t, err)
	require.Equal(t, "pong", string(got))
}

func TestBlockingLinkRejectsOversizeFrame(t *testing.T) {
	server, err := Listen("127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = server.Close() })

	err = server.Send(make([]byte, smp.BufSize+1))
	require.ErrorIs(t, err, smp.ErrLengthMismatch)
}
