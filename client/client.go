// Package client is the Client Facade: one high-level method per SMP
// operation, each allocating the next sequence number, building a
// request with the appropriate group codec, driving it through the
// Channel, and interpreting the response.
package client

import (
	"errors"
	"log/slog"

	"github.com/ffenix113/smp-tool/smp"
	"github.com/ffenix113/smp-tool/smp/imgmgmt"
	"github.com/ffenix113/smp-tool/smp/osmgmt"
	"github.com/ffenix113/smp-tool/smp/shellmgmt"
)

// Client holds one Channel and a sequence counter initialised to zero.
// Operations on a Client are strictly serial: the caller must not
// invoke two methods on the same Client concurrently.
type Client struct {
	ch  *smp.Channel
	seq uint8
}

// New wraps link in a Channel and returns a ready-to-use Client. link
// may be either a udp.BlockingLink or a udp.CooperativeLink: both
// satisfy smp.Link identically from the Facade's point of view.
func New(link smp.Link, opts ...Option) *Client {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	return &Client{ch: smp.NewChannel(link, o.log)}
}

type options struct {
	log *slog.Logger
}

// Option configures a Client constructed with New.
type Option func(*options)

// WithLogger overrides the Client's logger; the default is
// slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

func (c *Client) nextSeq() uint8 {
	s := c.seq
	c.seq++
	return s
}

// Info requests the device's image list (image-group get_state).
func (c *Client) Info() ([]imgmgmt.ImageDescriptor, error) {
	req := imgmgmt.BuildGetState()
	frame, err := c.ch.Transceive(smp.OpReadRequest, smp.GroupImage, c.nextSeq(), smp.CommandImageState, req)
	if err != nil {
		return nil, err
	}
	reply, err := imgmgmt.ParseGetState(frame)
	if err != nil {
		return nil, err
	}
	return reply.Result()
}

// Echo sends msg to the device's OS echo command and returns what the
// device echoed back.
func (c *Client) Echo(msg string) (string, error) {
	req := osmgmt.BuildEcho(msg)
	frame, err := c.ch.Transceive(smp.OpWriteRequest, smp.GroupOS, c.nextSeq(), smp.CommandOSEcho, req)
	if err != nil {
		return "", err
	}
	reply, err := osmgmt.ParseEcho(frame)
	if err != nil {
		return "", err
	}
	return reply.Result()
}

// Reset asks the device to reboot. The device typically reboots before
// acknowledging, so a Timeout here is treated as success rather than an
// error: the caller asked the device to go away, and it did.
func (c *Client) Reset() error {
	req := osmgmt.BuildReset(false)
	frame, err := c.ch.Transceive(smp.OpWriteRequest, smp.GroupOS, c.nextSeq(), smp.CommandOSReset, req)
	if err != nil {
		if errors.Is(err, smp.ErrTimeout) {
			return nil
		}
		return err
	}
	reply, err := osmgmt.ParseReset(frame)
	if err != nil {
		return err
	}
	return reply.Result()
}

// Exec runs argv as a shell command on the device. A non-zero exit
// status is not a transport or device error; it surfaces as
// *smp.ShellNonZeroExit so callers can still read the captured stdout.
func (c *Client) Exec(argv []string) (stdout string, err error) {
	req := shellmgmt.BuildExec(argv)
	frame, err := c.ch.Transceive(smp.OpWriteRequest, smp.GroupShell, c.nextSeq(), smp.CommandShellExec, req)
	if err != nil {
		return "", err
	}
	reply, err := shellmgmt.ParseExec(frame)
	if err != nil {
		return "", err
	}
	stdout, ret, err := reply.Result()
	if err != nil {
		return stdout, err
	}
	if ret != 0 {
		return stdout, &smp.ShellNonZeroExit{Ret: ret, Stdout: stdout}
	}
	return stdout, nil
}

// FlashOptions configures a Flash call.
type FlashOptions struct {
	Slot      *uint32
	ChunkSize uint32
	Upgrade   bool
	Progress  func(written, total uint32)
}

// Flash uploads firmware to the device, chunk by chunk, verifying the
// final hash.
func (c *Client) Flash(firmware []byte, opts FlashOptions) error {
	return imgmgmt.Flash(c.ch, c.nextSeq, firmware, imgmgmt.UploadOptions{
		Slot:      opts.Slot,
		ChunkSize: opts.ChunkSize,
		Upgrade:   opts.Upgrade,
		Progress:  opts.Progress,
	})
}

// Test marks the image with the given SHA-256 hash pending for the
// next boot, without confirming it.
func (c *Client) Test(hash []byte) ([]imgmgmt.ImageDescriptor, error) {
	return c.setState(hash, false)
}

// Confirm permanently marks the image with the given SHA-256 hash as
// good, preventing an automatic rollback.
func (c *Client) Confirm(hash []byte) ([]imgmgmt.ImageDescriptor, error) {
	return c.setState(hash, true)
}

func (c *Client) setState(hash []byte, confirm bool) ([]imgmgmt.ImageDescriptor, error) {
	req := imgmgmt.BuildSetState(hash, confirm)
	frame, err := c.ch.Transceive(smp.OpWriteRequest, smp.GroupImage, c.nextSeq(), smp.CommandImageState, req)
	if err != nil {
		return nil, err
	}
	reply, err := imgmgmt.ParseSetState(frame)
	if err != nil {
		return nil, err
	}
	return reply.Result()
}

// Channel exposes the underlying smp.Channel, e.g. to adjust the
// Link's receive timeout between calls.
func (c *Client) Channel() *smp.Channel { return c.ch }
