package exitlistener

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
)

// DefaultMaxBodyBytes caps the /exit body when [Options.MaxBodyBytes] is zero.
const DefaultMaxBodyBytes = 64 << 10

// ///////////////////////////////////////////////
// Server
// ///////////////////////////////////////////////

// Options configures a [Server]. The zero value serves with [Exit] as the
// terminator, the default slog logger, and [DefaultMaxBodyBytes].
type Options struct {
	// Terminate is called with the requested code after the 204 is flushed.
	Terminate Terminator
	// Logger receives net/http server errors at debug level. Requests
	// themselves are never logged.
	Logger *slog.Logger
	// MaxBodyBytes bounds the request body read by /exit.
	MaxBodyBytes int64
}

// Server answers exit requests on a listener.
type Server struct {
	terminate Terminator
	logger    *slog.Logger
	maxBody   int64
	handler   http.Handler

	// exitMu serializes respond-then-terminate so at most one 204 reaches a
	// caller before the process dies.
	exitMu sync.Mutex
}

// NewServer builds a Server from opts.
func NewServer(opts Options) *Server {
	s := &Server{
		terminate: opts.Terminate,
		logger:    opts.Logger,
		maxBody:   opts.MaxBodyBytes,
	}
	if s.terminate == nil {
		s.terminate = Exit
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.maxBody <= 0 {
		s.maxBody = DefaultMaxBodyBytes
	}
	s.handler = newRouter(s.routes())
	return s
}

// Handler returns the route table as an [http.Handler].
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Serve accepts connections on listener until ctx is cancelled, handling each
// on its own goroutine. No read or write timeouts apply: a stalled client
// holds only its own connection. Serve returns nil after cancellation and the
// accept error otherwise. The listener is closed on return.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:  s.handler,
		ErrorLog: slog.NewLogLogger(s.logger.Handler(), slog.LevelDebug),
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = srv.Close()
		case <-done:
		}
	}()

	err := srv.Serve(listener)
	if errors.Is(err, http.ErrServerClosed) || ctx.Err() != nil {
		return nil
	}
	return fmt.Errorf("serve exit listener: %w", err)
}

// ///////////////////////////////////////////////
// Handlers
// ///////////////////////////////////////////////

// handleExit validates the body and, on success, answers 204 and terminates
// the process. Invalid requests get 400 and the listener keeps serving.
func (s *Server) handleExit(w http.ResponseWriter, r *http.Request) {
	// The body length must be declared up front; chunked bodies are refused.
	if r.ContentLength < 0 {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	req, err := ParseExitRequest(body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.exitMu.Lock()
	defer s.exitMu.Unlock()

	w.Header().Set("Connection", "close")
	w.WriteHeader(http.StatusNoContent)
	// The flush is what puts the status line on the wire; termination skips
	// every buffer that is still pending.
	if err := http.NewResponseController(w).Flush(); err != nil {
		s.logger.Debug("flush exit response", "error", err)
	}
	s.terminate(req.Code)
}
