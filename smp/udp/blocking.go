// Package udp provides the two concurrency variants of smp.Link over UDP:
// BlockingLink (OS-thread blocking I/O) and CooperativeLink (a background
// goroutine feeding a channel, for callers that want a context-friendly,
// suspend-rather-than-block Receive).
package udp

import (
	"fmt"
	"net"
	"time"

	"github.com/ffenix113/smp-tool/smp"
)

// BlockingLink is a smp.Link backed by a net.UDPConn whose Receive blocks
// the calling goroutine until a datagram arrives or the read deadline
// elapses.
type BlockingLink struct {
	conn    *net.UDPConn
	buf     []byte
	peer    *net.UDPAddr
	timeout time.Duration
}

var _ smp.Link = (*BlockingLink)(nil)

// Dial opens a client-mode BlockingLink targeting addr, bound to the
// unspecified address on an ephemeral local port.
func Dial(addr string) (*BlockingLink, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %q: %s", smp.ErrIO, addr, err)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %q: %s", smp.ErrIO, addr, err)
	}
	return &BlockingLink{conn: conn, buf: make([]byte, smp.BufSize), peer: raddr}, nil
}

// Listen opens a server-mode BlockingLink bound to bindAddr. SendTo
// targets the source of the most recently received datagram.
func Listen(bindAddr string) (*BlockingLink, error) {
	laddr, err := net.ResolveUDPAddr("udp", bindAddr)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %q: %s", smp.ErrIO, bindAddr, err)
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, fmt.Errorf("%w: listen %q: %s", smp.ErrIO, bindAddr, err)
	}
	return &BlockingLink{conn: conn, buf: make([]byte, smp.BufSize)}, nil
}

// Close releases the underlying socket.
func (l *BlockingLink) Close() error {
	return l.conn.Close()
}

// LocalAddr returns the local address the socket is bound to.
func (l *BlockingLink) LocalAddr() net.Addr {
	return l.conn.LocalAddr()
}

func (l *BlockingLink) Send(b []byte) error {
	if len(b) > smp.BufSize {
		return fmt.Errorf("%w: frame %d bytes exceeds buffer size %d", smp.ErrLengthMismatch, len(b), smp.BufSize)
	}
	if _, err := l.conn.Write(b); err != nil {
		return fmt.Errorf("%w: %s", smp.ErrIO, err)
	}
	return nil
}

func (l *BlockingLink) SendTo(b []byte) error {
	if l.peer == nil {
		return smp.ErrNoPeerKnown
	}
	if len(b) > smp.BufSize {
		return fmt.Errorf("%w: frame %d bytes exceeds buffer size %d", smp.ErrLengthMismatch, len(b), smp.BufSize)
	}
	if _, err := l.conn.WriteToUDP(b, l.peer); err != nil {
		return fmt.Errorf("%w: %s", smp.ErrIO, err)
	}
	return nil
}

func (l *BlockingLink) Receive() ([]byte, error) {
	if l.timeout > 0 {
		if err := l.conn.SetReadDeadline(time.Now().Add(l.timeout)); err != nil {
			return nil, fmt.Errorf("%w: %s", smp.ErrIO, err)
		}
	} else {
		if err := l.conn.SetReadDeadline(time.Time{}); err != nil {
			return nil, fmt.Errorf("%w: %s", smp.ErrIO, err)
		}
	}

	n, addr, err := l.conn.ReadFromUDP(l.buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return nil, smp.ErrTimeout
		}
		return nil, fmt.Errorf("%w: %s", smp.ErrIO, err)
	}

	l.peer = addr
	if n > smp.BufSize {
		return nil, fmt.Errorf("%w: frame %d bytes exceeds buffer size %d", smp.ErrLengthMismatch, n, smp.BufSize)
	}

	out := make([]byte, n)
	copy(out, l.buf[:n])
	return out, nil
}

func (l *BlockingLink) SetReceiveTimeout(d time.Duration) {
	l.timeout = d
}
