package wsserver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/takeru911/my-launcher/internal/tabs"
)

// Config holds configuration for the WebSocket server.
type Config struct {
	// Addr is the TCP listen address. The extension runs on the same
	// machine, so the default binds loopback only.
	Addr string

	// PollInterval is how often each session checks the command queue
	// for a pending switch command to push.
	PollInterval time.Duration
}

// DefaultConfig returns the address and poll cadence the launcher
// ships with.
func DefaultConfig() Config {
	return Config{
		Addr:         "127.0.0.1:8765",
		PollInterval: 50 * time.Millisecond,
	}
}

// Server accepts extension connections and runs one session loop per
// connection. All sessions share the launcher's tab store and command
// queue, so a command queued on any transport is visible here.
type Server struct {
	config Config
	store  *tabs.Store
	queue  *tabs.CommandQueue

	upgrader   websocket.Upgrader
	httpServer *http.Server
	running    atomic.Bool
	stopped    chan struct{}

	mu       sync.Mutex
	listener net.Listener
	wg       sync.WaitGroup
}

// New creates a WebSocket server over the given shared state.
func New(config Config, store *tabs.Store, queue *tabs.CommandQueue) *Server {
	if config.Addr == "" {
		config.Addr = "127.0.0.1:8765"
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 50 * time.Millisecond
	}
	return &Server{
		config: config,
		store:  store,
		queue:  queue,
		upgrader: websocket.Upgrader{
			// The extension connects from a chrome-extension:// origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Start binds the listener and begins accepting connections. It returns
// once the server is listening; sessions run until ctx is canceled or
// Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("wsserver: already running")
	}

	listener, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		s.running.Store(false)
		return fmt.Errorf("wsserver: listen on %s: %w", s.config.Addr, err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		s.handleUpgrade(ctx, w, r)
	})

	s.mu.Lock()
	s.listener = listener
	s.httpServer = &http.Server{Handler: mux}
	s.stopped = make(chan struct{})
	s.mu.Unlock()

	log.Printf("[WebSocket] listening on %s", listener.Addr())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[WebSocket] server stopped: %v", err)
		}
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.httpServer.Shutdown(shutdownCtx)
		case <-s.stopped:
		}
	}()

	return nil
}

// Addr returns the bound listen address, useful when Addr was
// configured with port 0.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return s.config.Addr
	}
	return s.listener.Addr().String()
}

// Shutdown stops accepting connections and waits for session loops to
// finish.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	if s.stopped != nil {
		select {
		case <-s.stopped:
		default:
			close(s.stopped)
		}
	}
	s.mu.Unlock()

	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			return err
		}
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.running.Store(false)
	return nil
}

// handleUpgrade upgrades one HTTP request and runs its session loop.
func (s *Server) handleUpgrade(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WebSocket] handshake failed for %s: %v", r.RemoteAddr, err)
		return
	}

	sess := newSession(conn, s.store, s.queue, s.config.PollInterval)
	log.Printf("[WebSocket] session %s connected from %s", sess.id, r.RemoteAddr)

	s.wg.Add(1)
	defer s.wg.Done()
	sess.run(ctx)
	conn.Close()
	log.Printf("[WebSocket] session %s closed", sess.id)
}
