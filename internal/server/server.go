// Package server is an in-memory development stand-in for the remote
// conversation store. It implements the same HTTP surface the gateway talks
// to, so the client can be exercised end-to-end without a real backend.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// ErrServerClosed is returned when the server is closed.
var ErrServerClosed = http.ErrServerClosed

// DefaultAddr matches the backend the client defaults to.
const DefaultAddr = "127.0.0.1:8000"

// Server serves the stub conversation store on a TCP address.
type Server struct {
	Addr string

	h      *http.Server
	ln     net.Listener
	store  *memStore
	secret []byte
	logger *slog.Logger
}

// NewServer creates a stub store bound to addr. secret signs the demo bearer
// tokens; any non-empty value works.
func NewServer(addr string, secret string) *Server {
	s := &Server{
		Addr:   addr,
		store:  newMemStore(),
		secret: []byte(secret),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleGetHealth)
	mux.HandleFunc("POST /auth/login", s.handlePostLogin)
	mux.HandleFunc("POST /auth/logout", s.auth(s.handlePostLogout))
	mux.HandleFunc("GET /sessions/{userID}", s.auth(s.handleGetSessions))
	mux.HandleFunc("GET /messages/{userID}/{sessionID}", s.auth(s.handleGetMessages))
	mux.HandleFunc("POST /message", s.auth(s.handlePostMessage))
	mux.HandleFunc("PUT /session/{sessionID}/title", s.auth(s.handlePutSessionTitle))
	mux.HandleFunc("DELETE /session/{sessionID}", s.auth(s.handleDeleteSession))

	s.h = &http.Server{
		Addr:    addr,
		Handler: s.loggingHandler(mux),
	}
	return s
}

// SetLogger sets the request logger.
func (s *Server) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// Handler exposes the routed handler, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.h.Handler
}

// Serve accepts incoming connections on the listener.
func (s *Server) Serve(ln net.Listener) error {
	s.ln = ln
	return s.h.Serve(ln)
}

// ListenAndServe starts the server and begins accepting connections.
func (s *Server) ListenAndServe() error {
	if s.ln != nil {
		return fmt.Errorf("server already started")
	}
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.Addr, err)
	}
	return s.Serve(ln)
}

// Close force closes all listeners and connections.
func (s *Server) Close() error {
	defer s.closeListener()
	return s.h.Close()
}

// Shutdown gracefully shuts down the server without interrupting active
// connections.
func (s *Server) Shutdown(ctx context.Context) error {
	defer s.closeListener()
	return s.h.Shutdown(ctx)
}

func (s *Server) closeListener() {
	if s.ln != nil {
		s.ln.Close()
		s.ln = nil
	}
}

func (s *Server) loggingHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.logger == nil {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(lrw, r)

		s.logger.Debug("HTTP request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", lrw.statusCode),
			slog.Duration("duration", time.Since(start)),
			slog.String("remote_addr", r.RemoteAddr),
		)
	})
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Unwrap() http.ResponseWriter {
	return lrw.ResponseWriter
}
