// Package server exposes the directory over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gnemet/staffgrid"
	"github.com/gnemet/staffgrid/internal/auth"
)

const ShutdownTimeout = 10 * time.Second

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Options struct {
	Addr    string
	Metrics bool
	Gate    *auth.Gate
	Logger  *slog.Logger
}

type Server struct {
	handler *staffgrid.Handler
	pinger  Pinger
	opts    Options
}

func New(h *staffgrid.Handler, pinger Pinger, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Gate == nil {
		opts.Gate = &auth.Gate{}
	}
	return &Server{handler: h, pinger: pinger, opts: opts}
}

// Router mounts the API behind the identity gate. Health and metrics stay open.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(requestLogger(s.opts.Logger), instrument)

	r.HandleFunc("/healthz", s.health).Methods(http.MethodGet)
	if s.opts.Metrics {
		r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.opts.Gate.Middleware)
	api.Handle("/view", s.handler).Methods(http.MethodGet)
	api.Handle("/colaboradores", s.handler).Methods(http.MethodGet)

	r.NotFoundHandler = requestLogger(s.opts.Logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	}))
	return r
}

func (s *Server) Handler() http.Handler {
	return gziphandler.GzipHandler(s.Router())
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.pinger.PingContext(ctx); err != nil {
		slog.ErrorContext(ctx, "Health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errc := make(chan error, 1)
	go func() {
		s.opts.Logger.Info("Server listening", "addr", ln.Addr().String())
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.opts.Logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
