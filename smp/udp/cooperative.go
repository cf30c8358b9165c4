package udp

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ffenix113/smp-tool/smp"
)

// CooperativeLink is a smp.Link whose Receive may suspend the calling
// goroutine on a channel instead of blocking it on the socket directly.
// A single background goroutine (managed by an errgroup.Group, grounded
// on the same fan-out-reader shape as notnil-canbus's Mux) owns the
// socket read side; Receive's timeout is an outer bound enforced with a
// timer, so a silent device can never wedge the caller past the
// configured deadline.
type CooperativeLink struct {
	conn *net.UDPConn

	frames chan []byte
	errs   chan error

	mu   sync.Mutex
	peer *net.UDPAddr

	timeoutMu sync.Mutex
	timeout   time.Duration

	cancel context.CancelFunc
	group  *errgroup.Group
}

var _ smp.Link = (*CooperativeLink)(nil)

// DialCooperative opens a client-mode CooperativeLink targeting addr.
func DialCooperative(addr string) (*CooperativeLink, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %q: %s", smp.ErrIO, addr, err)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %q: %s", smp.ErrIO, addr, err)
	}
	return newCooperativeLink(conn, raddr), nil
}

// ListenCooperative opens a server-mode CooperativeLink bound to bindAddr.
func ListenCooperative(bindAddr string) (*CooperativeLink, error) {
	laddr, err := net.ResolveUDPAddr("udp", bindAddr)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %q: %s", smp.ErrIO, bindAddr, err)
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, fmt.Errorf("%w: listen %q: %s", smp.ErrIO, bindAddr, err)
	}
	return newCooperativeLink(conn, nil), nil
}

func newCooperativeLink(conn *net.UDPConn, peer *net.UDPAddr) *CooperativeLink {
	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)

	l := &CooperativeLink{
		conn:   conn,
		frames: make(chan []byte, 1),
		errs:   make(chan error, 1),
		peer:   peer,
		cancel: cancel,
		group:  g,
	}

	g.Go(func() error {
		return l.readLoop(ctx)
	})

	return l
}

// readLoop owns the socket's read side and has no notion of per-caller
// deadlines: it simply forwards whatever arrives (or the terminal error)
// onto channels that Receive selects against with its own timer.
func (l *CooperativeLink) readLoop(ctx context.Context) error {
	buf := make([]byte, smp.BufSize)
	for {
		n, addr, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case l.errs <- fmt.Errorf("%w: %s", smp.ErrIO, err):
			case <-ctx.Done():
			}
			return err
		}

		l.mu.Lock()
		l.peer = addr
		l.mu.Unlock()

		out := make([]byte, n)
		copy(out, buf[:n])

		select {
		case l.frames <- out:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close stops the background reader and releases the socket.
func (l *CooperativeLink) Close() error {
	l.cancel()
	err := l.conn.Close()
	_ = l.group.Wait()
	return err
}

// LocalAddr returns the local address the socket is bound to.
func (l *CooperativeLink) LocalAddr() net.Addr {
	return l.conn.LocalAddr()
}

func (l *CooperativeLink) Send(b []byte) error {
	if len(b) > smp.BufSize {
		return fmt.Errorf("%w: frame %d bytes exceeds buffer size %d", smp.ErrLengthMismatch, len(b), smp.BufSize)
	}
	if _, err := l.conn.Write(b); err != nil {
		return fmt.Errorf("%w: %s", smp.ErrIO, err)
	}
	return nil
}

func (l *CooperativeLink) SendTo(b []byte) error {
	l.mu.Lock()
	peer := l.peer
	l.mu.Unlock()

	if peer == nil {
		return smp.ErrNoPeerKnown
	}
	if len(b) > smp.BufSize {
		return fmt.Errorf("%w: frame %d bytes exceeds buffer size %d", smp.ErrLengthMismatch, len(b), smp.BufSize)
	}
	if _, err := l.conn.WriteToUDP(b, peer); err != nil {
		return fmt.Errorf("%w: %s", smp.ErrIO, err)
	}
	return nil
}

// Receive suspends the calling goroutine until a frame arrives on the
// background reader's channel, the reader reports a fatal error, or the
// configured timeout elapses — whichever comes first. The timeout is
// always an outer bound: it never waits past it, even if the reader
// itself never returns.
func (l *CooperativeLink) Receive() ([]byte, error) {
	l.timeoutMu.Lock()
	timeout := l.timeout
	l.timeoutMu.Unlock()

	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	select {
	case b := <-l.frames:
		return b, nil
	case err := <-l.errs:
		return nil, err
	case <-timeoutCh:
		return nil, smp.ErrTimeout
	}
}

func (l *CooperativeLink) SetReceiveTimeout(d time.Duration) {
	l.timeoutMu.Lock()
	l.timeout = d
	l.timeoutMu.Unlock()
}
