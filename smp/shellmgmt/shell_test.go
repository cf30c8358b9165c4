package shellmgmt

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ffenix113/smp-tool/smp"
)

func TestExecRoundTrip(t *testing.T) {
	req := BuildExec([]string{"ls", "-la"})
	require.Equal(t, []string{"ls", "-la"}, req.Argv)

	o := "total 0\n"
	ret := int32(0)
	raw, err := smp.EncodeFrame(smp.OpWriteResponse, smp.GroupShell, 0, smp.CommandShellExec, ExecReply{O: &o, Ret: &ret})
	require.NoError(t, err)
	frame, err := smp.DecodeFrame(raw)
	require.NoError(t, err)

	reply, err := ParseExec(frame)
	require.NoError(t, err)

	stdout, gotRet, err := reply.Result()
	require.NoError(t, err)
	require.Equal(t, "total 0\n", stdout)
	require.EqualValues(t, 0, gotRet)
}

func TestExecNonZeroExitIsNotAnError(t *testing.T) {
	o := "not found"
	ret := int32(127)
	raw, err := smp.EncodeFrame(smp.OpWriteResponse, smp.GroupShell, 0, smp.CommandShellExec, ExecReply{O: &o, Ret: &ret})
	require.NoError(t, err)
	frame, err := smp.DecodeFrame(raw)
	require.NoError(t, err)

	reply, err := ParseExec(frame)
	require.NoError(t, err)

	stdout, gotRet, err := reply.Result()
	require.NoError(t, err)
	require.Equal(t, "not found", stdout)
	require.EqualValues(t, 127, gotRet)
}

func TestExecDeviceError(t *testing.T) {
	rc := int32(5)
	raw, err := smp.EncodeFrame(smp.OpWriteResponse, smp.GroupShell, 0, smp.CommandShellExec, ExecReply{Rc: &rc})
	require.NoError(t, err)
	frame, err := smp.DecodeFrame(raw)
	require.NoError(t, err)

	reply, err := ParseExec(frame)
	require.NoError(t, err)

	_, _, err = reply.Result()
	var devErr *smp.DeviceError
	require.ErrorAs(t, err, &devErr)
}
