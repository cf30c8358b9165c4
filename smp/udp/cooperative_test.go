package udp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ffenix113/smp-tool/smp"
)

// Receive must return ErrTimeout as an outer bound even though nothing
// will ever arrive on the socket, rather than suspending indefinitely.
func TestCooperativeLinkReceiveTimesOut(t *testing.T) {
	server, err := ListenCooperative("127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = server.Close() })

	server.SetReceiveTimeout(50 * time.Millisecond)

	start := time.Now()
	_, err = server.Receive()
	elapsed := time.Since(start)

	require.ErrorIs(t, err, smp.ErrTimeout)
	require.Less(t, elapsed, time.Second)
}

func TestCooperativeLinkSendReceiveRoundTrip(t *testing.T) {
	server, err := ListenCooperative("127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = server.Close() })

	client, err := DialCooperative(server.LocalAddr().String())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	server.SetReceiveTimeout(2 * time.Second)
	client.SetReceiveTimeout(2 * time.Second)

	require.NoError(t, client.Send([]byte("hello")))

	got, err := server.Receive()
	require.NoError(t, err)
	require.Equal(t, "hello", string(got))

	require.NoError(t, server.SendTo([]byte("world")))
	got, err = client.Receive()
	require.NoError(t, err)
	require.Equal(t, "world", string(got))
}

func TestCooperativeLinkSendToNoPeer(t *testing.T) {
	server, err := ListenCooperative("127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = server.Close() })

	err = server.SendTo([]byte("x"))
	require.Error(t, err)
}
