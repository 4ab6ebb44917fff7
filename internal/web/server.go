// Package web provides the HTTP surface of the monitor: a status page, a
// JSON snapshot, the websocket event stream and prometheus metrics.
package web

import (
	"context"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mdelathouwer/gpio-monitor/internal/status"
)

// Server serves the status page and event stream over HTTP.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	tracker    *status.Tracker
}

// New creates a Server. events serves the websocket stream at /ws;
// gatherer, when non-nil, is exposed at /metrics.
func New(addr string, tracker *status.Tracker, events http.Handler, gatherer prometheus.Gatherer) *Server {
	s := &Server{tracker: tracker}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/index.html", s.handleIndex)
	r.Get("/index.json", s.handleJSON)
	if events != nil {
		r.Handle("/ws", events)
	}
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	s.router = r
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: r,
	}
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve accepts connections on ln. It blocks until the server is shut
// down and then returns http.ErrServerClosed.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server. Hijacked websocket
// connections are not tracked; close the hub separately.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, snap)
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}
