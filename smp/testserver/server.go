// Package testserver is a minimal passive SMP server used only by
// integration tests: it binds a socket, learns the client's address
// from the first inbound frame, and replies to whatever commands have
// been registered. It is a thin wrapper over smp.Channel's auxiliary
// operations (SendTo/ReceiveAs) and is not part of the CLI's runtime
// path.
package testserver

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ffenix113/smp-tool/smp"
)

// Handler decodes one inbound request frame and returns the payload to
// send back in its reply. Returning a non-nil error skips the reply
// entirely, emulating a device that drops a frame.
type Handler func(frame smp.Frame) (reply interface{}, err error)

// Server dispatches inbound SMP frames to registered Handlers purely by
// the decoded header's (group, command) — never by trying one decode
// and reclassifying on failure, which the original implementation this
// is modeled on did ambiguously.
type Server struct {
	ch       *smp.Channel
	handlers map[dispatchKey]Handler
	log      *slog.Logger
}

type dispatchKey struct {
	group   smp.Group
	command uint8
}

// New wraps link in a Server. A nil logger falls back to slog.Default().
func New(link smp.Link, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		ch:       smp.NewChannel(link, log),
		handlers: make(map[dispatchKey]Handler),
		log:      log,
	}
}

// Handle registers h to answer requests for (group, command). A second
// registration for the same key replaces the first.
func (s *Server) Handle(group smp.Group, command uint8, h Handler) {
	s.handlers[dispatchKey{group, command}] = h
}

// Serve processes inbound frames one at a time until ctx is cancelled
// or the Link returns a non-Timeout error.
func (s *Server) Serve(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		if err := s.ServeOne(); err != nil {
			if errors.Is(err, smp.ErrTimeout) {
				continue
			}
			return err
		}
	}
}

// ServeOne waits for exactly one inbound frame, dispatches it, and
// replies if a handler is registered and returns a reply. Exposed
// separately from Serve so tests can drive the server one request at a
// time without a background goroutine.
func (s *Server) ServeOne() error {
	frame, err := s.ch.ReceiveAs(nil)
	if err != nil {
		return err
	}

	key := dispatchKey{frame.Header.Group, frame.Header.Command}
	h, ok := s.handlers[key]
	if !ok {
		s.log.Debug("smp/testserver: no handler registered", "group", frame.Header.Group, "command", frame.Header.Command)
		return nil
	}

	reply, err := h(frame)
	if err != nil {
		s.log.Debug("smp/testserver: handler declined to reply", "err", err)
		return nil
	}

	return s.ch.SendTo(frame.Header.Op.Response(), frame.Header.Group, frame.Header.Sequence, frame.Header.Command, reply)
}

// Channel exposes the underlying smp.Channel, e.g. to adjust the
// Link's receive timeout before Serve/ServeOne.
func (s *Server) Channel() *smp.Channel { return s.ch }
