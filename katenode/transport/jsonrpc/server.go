// Package jsonrpc serves the kate RPC methods as JSON-RPC 2.0 over HTTP.
package jsonrpc

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/ratelimit"

	"github.com/LumeraProtocol/kate/pkg/errors"
	"github.com/LumeraProtocol/kate/pkg/logtrace"
)

// DefaultListenAddress is the conventional substrate RPC port.
const DefaultListenAddress = "0.0.0.0:9933"

// HeaderRequestID carries the correlation id of a request.
const HeaderRequestID = "X-Request-ID"

// Server is the HTTP JSON-RPC server.
type Server struct {
	address  string
	service  ProofService
	reporter Reporter
	admin    CacheAdmin
	limiter  ratelimit.Limiter
	server   *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithRateLimit admits at most rps requests per second. Zero disables limiting.
func WithRateLimit(rps int) Option {
	return func(s *Server) {
		if rps > 0 {
			s.limiter = ratelimit.New(rps)
		}
	}
}

// WithStatus serves kate_status from r.
func WithStatus(r Reporter) Option {
	return func(s *Server) { s.reporter = r }
}

// WithCacheAdmin serves kate_resetCache against a.
func WithCacheAdmin(a CacheAdmin) Option {
	return func(s *Server) { s.admin = a }
}

// NewServer creates a server listening on address once Run is called.
func NewServer(address string, service ProofService, opts ...Option) (*Server, error) {
	if service == nil {
		return nil, errors.New("proof service is required")
	}
	if address == "" {
		address = DefaultListenAddress
	}
	s := &Server{address: address, service: service}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Handler returns the HTTP handler with every route and middleware attached.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/", s.serveRPC).Methods(http.MethodPost)
	r.HandleFunc("/health", s.serveHealth).Methods(http.MethodGet)
	r.Use(s.correlationMiddleware, s.rateLimitMiddleware)
	return s.corsMiddleware(r)
}

// Run serves until ctx is done or the listener fails.
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.address)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", s.address)
	}
	return s.Serve(ctx, lis)
}

// Serve serves on lis until ctx is done.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	s.server = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return logtrace.CtxWithOrigin(ctx, "jsonrpc") },
	}

	errCh := make(chan error, 1)
	go func() {
		logtrace.Info(ctx, "jsonrpc server listening", logtrace.Fields{
			logtrace.FieldModule: "jsonrpc",
			"address":            lis.Addr().String(),
		})
		errCh <- s.server.Serve(lis)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "jsonrpc server failed")
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := s.Stop(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	}
}

// Stop gracefully stops the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	logtrace.Debug(ctx, "shutting down jsonrpc server", logtrace.Fields{logtrace.FieldModule: "jsonrpc"})
	return s.server.Shutdown(ctx)
}

// correlationMiddleware tags the request context with the caller supplied
// request id, or a fresh one.
func (s *Server) correlationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		ctx := logtrace.CtxWithCorrelationID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil {
			s.limiter.Take()
		}
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware adds CORS headers for browser light clients.
func (s *Server) corsMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, "+HeaderRequestID)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}
