// Package gateway exposes the session over HTTP for a UI collaborator:
// read endpoints for session and artifact state, ensure endpoints that
// delegate to the orchestrator, and a WebSocket feed of artifact state
// transitions. The gateway never mutates artifacts itself; the store stays
// owned by the orchestrator.
package gateway

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"questgen/internal/pipeline"
)

// Server is the h2c HTTP server plus the watch hub.
type Server struct {
	http *http.Server
	hub  *Hub
	orch *pipeline.Orchestrator
	log  *zap.SugaredLogger
}

// New wires the routes and registers the hub as the store's event sink.
func New(addr string, orch *pipeline.Orchestrator, log *zap.SugaredLogger) *Server {
	s := &Server{
		hub:  NewHub(log),
		orch: orch,
		log:  log,
	}
	orch.SetEventSink(s.hub.Broadcast)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/session", s.handleSession)
	mux.HandleFunc("GET /v1/artifacts", s.handleArtifacts)
	mux.HandleFunc("GET /v1/artifacts/{name...}", s.handleArtifact)
	mux.HandleFunc("POST /v1/ensure/{stage}", s.handleEnsure)
	mux.HandleFunc("GET /v1/watch", s.handleWatch)

	s.http = &http.Server{
		Addr:    addr,
		Handler: h2c.NewHandler(mux, &http2.Server{}),
	}
	return s
}

// Handler exposes the route tree (tests serve it through httptest).
func (s *Server) Handler() http.Handler { return s.http.Handler }

// Start serves until Shutdown.
func (s *Server) Start() error {
	if s.log != nil {
		s.log.Infow("gateway listening", "addr", s.http.Addr)
	}
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains the HTTP server and disconnects every watcher.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	s.hub.Close()
	s.orch.SetEventSink(nil)
	return err
}
