package ipc

import (
	"context"
	"errors"
	"io"
	"log"
	"net"
	"strings"
	"time"

	"github.com/takeru911/my-launcher/internal/framing"
	"github.com/takeru911/my-launcher/internal/tabs"
)

// ServerConfig holds configuration for the pipe server.
type ServerConfig struct {
	// Endpoint is the pipe name (Windows) or socket path (elsewhere).
	Endpoint string

	// CreateRetryInterval is the wait between attempts to bind the
	// endpoint when creation fails, e.g. because another launcher
	// instance still owns it. Binding is retried indefinitely.
	CreateRetryInterval time.Duration
}

// DefaultServerConfig returns the endpoint and retry cadence the
// launcher ships with.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Endpoint:            DefaultEndpoint,
		CreateRetryInterval: 5 * time.Second,
	}
}

// Server is the launcher side of the pipe transport. It serves one
// bridge client at a time with a strict request-then-respond exchange;
// when a connection fails it is torn down and the server waits for the
// next client.
type Server struct {
	config ServerConfig
	store  *tabs.Store
	queue  *tabs.CommandQueue
}

// NewServer creates a pipe server over the given shared state.
func NewServer(config ServerConfig, store *tabs.Store, queue *tabs.CommandQueue) *Server {
	if config.Endpoint == "" {
		config.Endpoint = DefaultEndpoint
	}
	if config.CreateRetryInterval <= 0 {
		config.CreateRetryInterval = 5 * time.Second
	}
	return &Server{config: config, store: store, queue: queue}
}

// Run binds the endpoint and serves clients until ctx is canceled.
// Endpoint creation failures are logged and retried every
// CreateRetryInterval.
func (s *Server) Run(ctx context.Context) error {
	for {
		ln, err := listen(s.config.Endpoint)
		if err != nil {
			log.Printf("[PipeServer] failed to create endpoint %s: %v", s.config.Endpoint, err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.config.CreateRetryInterval):
				continue
			}
		}

		log.Printf("[PipeServer] listening on %s", s.config.Endpoint)
		err = s.acceptLoop(ctx, ln)
		ln.Close()

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			log.Printf("[PipeServer] listener failed: %v", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.config.CreateRetryInterval):
			}
		}
	}
}

// acceptLoop serves clients sequentially. There is exactly one bridge
// client per logical session, so concurrent connections are not
// multiplexed.
func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	// Unblock Accept when the context ends.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			ln.Close()
		case <-done:
		}
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		log.Printf("[PipeServer] client connected")
		s.serveConn(conn)
		conn.Close()
		log.Printf("[PipeServer] client disconnected")

		if ctx.Err() != nil {
			return nil
		}
	}
}

// serveConn runs the request-then-respond exchange for one client.
// Read or write failures end the connection; the caller accepts the
// next one.
func (s *Server) serveConn(conn net.Conn) {
	for {
		var req Message
		if err := framing.ReadJSON(conn, &req); err != nil {
			if !isDisconnect(err) {
				log.Printf("[PipeServer] read failed: %v", err)
			}
			return
		}

		resp, ok := s.dispatch(req)
		if !ok {
			// Unrecognized request shape: drop it and keep the
			// connection, matching the schema-error policy.
			continue
		}

		if err := framing.WriteJSON(conn, resp); err != nil {
			log.Printf("[PipeServer] write failed: %v", err)
			return
		}
	}
}

// dispatch maps one request to its response. The second return is
// false when the message is not a recognized request.
func (s *Server) dispatch(req Message) (Message, bool) {
	switch req.Kind {
	case KindGetTabs:
		// Delivery priority rule: a pending switch command preempts
		// the tab list, because the poll channel doubles as the only
		// path for pushing commands toward the browser.
		if cmd, ok := s.queue.PopFront(); ok {
			log.Printf("[PipeServer] delivering pending command tab_id=%d window_id=%d", cmd.TabID, cmd.WindowID)
			return ChromeCommand(cmd), true
		}
		return TabList(s.store.All()), true

	case KindSwitchToTab:
		// Accepted, not completed: the launcher UI performs the
		// actual focus change.
		log.Printf("[PipeServer] switch requested: tab_id=%d window_id=%d", req.Switch.TabID, req.Switch.WindowID)
		return TabSwitchResult(true, ""), true

	case KindTabList:
		log.Printf("[PipeServer] tab list push: %d tabs", len(req.Tabs))
		s.store.Replace(req.Tabs)
		return TabSwitchResult(true, ""), true

	case KindTabSwitchResult:
		// Switch acknowledgment forwarded by the bridge. Nothing to
		// update, but the exchange is strictly request-then-respond,
		// so acknowledge it rather than leave the client blocked.
		log.Printf("[PipeServer] switch acknowledged: success=%v", req.Result.Success)
		return TabSwitchResult(true, ""), true

	default:
		log.Printf("[PipeServer] unexpected message kind %v", req.Kind)
		return Message{}, false
	}
}

// isDisconnect reports whether err is an orderly end of the client
// connection rather than a protocol failure worth logging.
func isDisconnect(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
		return true
	}
	return strings.Contains(err.Error(), "closed pipe")
}
