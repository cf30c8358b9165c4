package osmgmt

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ffenix113/smp-tool/smp"
)

func encode(t *testing.T, op smp.Op, group smp.Group, cmd uint8, payload interface{}) smp.Frame {
	t.Helper()
	raw, err := smp.EncodeFrame(op, group, 0, cmd, payload)
	require.NoError(t, err)
	frame, err := smp.DecodeFrame(raw)
	require.NoError(t, err)
	return frame
}

func TestEchoRoundTrip(t *testing.T) {
	req := BuildEcho("hi")
	require.Equal(t, "hi", req.D)

	frame := encode(t, smp.OpWriteResponse, smp.GroupOS, smp.CommandOSEcho, EchoReply{R: strPtr("hi")})
	reply, err := ParseEcho(frame)
	require.NoError(t, err)

	got, err := reply.Result()
	require.NoError(t, err)
	require.Equal(t, "hi", got)
}

func TestEchoErrorResult(t *testing.T) {
	frame := encode(t, smp.OpWriteResponse, smp.GroupOS, smp.CommandOSEcho, EchoReply{Rc: int32Ptr(1)})
	reply, err := ParseEcho(frame)
	require.NoError(t, err)

	_, err = reply.Result()
	var devErr *smp.DeviceError
	require.ErrorAs(t, err, &devErr)
	require.EqualValues(t, 1, devErr.Rc)
}

func TestResetRequestOmitsForceWhenFalse(t *testing.T) {
	raw, err := smp.EncodeFrame(smp.OpWriteRequest, smp.GroupOS, 0, smp.CommandOSReset, BuildReset(false))
	require.NoError(t, err)
	frame, err := smp.DecodeFrame(raw)
	require.NoError(t, err)

	var asMap map[string]interface{}
	require.NoError(t, smp.DecodePayload(frame, &asMap))
	require.NotContains(t, asMap, "force")
}

func TestResetSuccessResult(t *testing.T) {
	frame := encode(t, smp.OpWriteResponse, smp.GroupOS, smp.CommandOSReset, struct{}{})
	reply, err := ParseReset(frame)
	require.NoError(t, err)
	require.NoError(t, reply.Result())
}

func strPtr(s string) *string { return &s }
func int32Ptr(i int32) *int32 { return &i }
