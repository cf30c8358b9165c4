// Package shellmgmt implements the SMP shell management group: running one
// remote command and capturing its stdout and exit status. This package
// builds requests and parses responses only; the Client Facade drives
// the Channel.
package shellmgmt

import "github.com/ffenix113/smp-tool/smp"

// ExecRequest is the payload of a shell exec command. Argv[0] is the
// command, the rest are its arguments.
type ExecRequest struct {
	Argv []string `cbor:"argv"`
}

// BuildExec returns the payload for a shell exec command.
func BuildExec(argv []string) ExecRequest {
	return ExecRequest{Argv: argv}
}

// ExecReply is the exec response: either O/Ret are set (the command ran,
// possibly with a non-zero exit status) or Rc is set (an SMP-layer
// failure unrelated to the command's own exit status).
type ExecReply struct {
	O   *string `cbor:"o,omitempty"`
	Ret *int32  `cbor:"ret,omitempty"`
	Rc  *int32  `cbor:"rc,omitempty"`
}

// ParseExec decodes a shell exec response frame.
func ParseExec(frame smp.Frame) (ExecReply, error) {
	var reply ExecReply
	if err := smp.DecodePayload(frame, &reply); err != nil {
		return ExecReply{}, err
	}
	return reply, nil
}

// Result returns (stdout, exit status) on success. A non-zero exit
// status is not itself an error here — spec.md maps that to
// smp.ShellNonZeroExit at the Client Facade, which has the context
// (the caller's expectations) to decide that. An SMP-layer rc maps to
// a *smp.DeviceError.
func (r ExecReply) Result() (stdout string, ret int32, err error) {
	if r.Rc != nil {
		return "", 0, &smp.DeviceError{Rc: *r.Rc}
	}
	if r.O != nil {
		stdout = *r.O
	}
	if r.Ret != nil {
		ret = *r.Ret
	}
	return stdout, ret, nil
}
