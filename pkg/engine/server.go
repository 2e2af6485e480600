// HTTP listener for the stub engine.

package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/getstubd/stubd/pkg/config"
	"github.com/getstubd/stubd/pkg/logging"
	"github.com/getstubd/stubd/pkg/requestlog"
	"github.com/getstubd/stubd/pkg/store"
	"github.com/getstubd/stubd/pkg/store/memory"
)

// Server is the stubd HTTP server. One listener serves everything: the
// management API is mounted under the admin prefix and every other
// request is stub traffic routed through the CORS check and the handler.
type Server struct {
	cfg          *config.ServerConfiguration
	store        store.Store
	requests     *requestlog.Log
	handler      *Handler
	cors         *DynamicCORS
	adminHandler http.Handler
	log          *slog.Logger
	httpServer   *http.Server
	listener     net.Listener
	mu           sync.RWMutex
	running      bool
	startTime    time.Time
	requestCount atomic.Int64
}

// ServerOption is a functional option for configuring a Server.
type ServerOption func(*Server)

// WithStore sets the backing store. Defaults to an in-memory store.
func WithStore(st store.Store) ServerOption {
	return func(s *Server) {
		if st != nil {
			s.store = st
		}
	}
}

// WithLogger sets the operational logger for the server.
func WithLogger(log *slog.Logger) ServerOption {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithAdminHandler mounts a management API under the admin prefix.
func WithAdminHandler(h http.Handler) ServerOption {
	return func(s *Server) {
		s.adminHandler = h
	}
}

// NewServer creates a new Server with the given configuration.
func NewServer(cfg *config.ServerConfiguration, opts ...ServerOption) *Server {
	if cfg == nil {
		cfg = config.DefaultServerConfiguration()
	}

	s := &Server{
		cfg: cfg,
		log: logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = memory.New()
	}

	s.requests = requestlog.NewLog(cfg.MaxLogEntries)

	s.handler = NewHandler(s.store)
	s.handler.SetRequestLog(s.requests)
	s.handler.SetLogger(s.log)

	s.cors = NewDynamicCORS(s.handler, s.store)
	s.cors.SetLogger(s.log)

	return s
}

// SetAdminHandler mounts a management API under the admin prefix. It
// must be called before Start; the handler is wired into the mux there.
// Callers that need the server reference while building the handler use
// this instead of WithAdminHandler.
func (s *Server) SetAdminHandler(h http.Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adminHandler = h
}

// Start binds the listener and begins serving. It returns once the
// listener is bound, so Port() is valid immediately after.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("server is already running")
	}

	mux := http.NewServeMux()
	if s.adminHandler != nil {
		prefix := strings.TrimSuffix(s.cfg.AdminPrefix, "/")
		if prefix == "" {
			prefix = config.DefaultAdminPrefix
		}
		mux.Handle(prefix+"/", http.StripPrefix(prefix, s.adminHandler))
	}
	mux.Handle("/", s.cors)

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("listen on port %d: %w", s.cfg.Port, err)
	}
	s.listener = listener

	s.httpServer = &http.Server{
		Handler:      s.countRequests(mux),
		ReadTimeout:  time.Duration(s.cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeout) * time.Second,
	}

	s.log.Info("starting server", "port", s.Port(), "admin_prefix", s.cfg.AdminPrefix)
	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("server error", "error", err)
		}
	}()

	s.running = true
	s.startTime = time.Now()
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	s.running = false
	return err
}

// countRequests tracks the total number of requests served.
func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requestCount.Add(1)
		next.ServeHTTP(w, r)
	})
}

// Port returns the port the server is bound to. Useful when the
// configured port is 0 and the OS picked one.
func (s *Server) Port() int {
	if s.listener != nil {
		if addr, ok := s.listener.Addr().(*net.TCPAddr); ok {
			return addr.Port
		}
	}
	return s.cfg.Port
}

// IsRunning returns whether the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Uptime returns the server uptime in seconds.
func (s *Server) Uptime() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.running {
		return 0
	}
	return int(time.Since(s.startTime).Seconds())
}

// RequestCount returns the total number of requests served since start.
func (s *Server) RequestCount() int64 {
	return s.requestCount.Load()
}

// RequestLog returns the request history log.
func (s *Server) RequestLog() *requestlog.Log {
	return s.requests
}

// Handler returns the stub request handler.
func (s *Server) Handler() *Handler {
	return s.handler
}

// Config returns the server configuration.
func (s *Server) Config() *config.ServerConfiguration {
	return s.cfg
}
