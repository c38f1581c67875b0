package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"questgen/internal/artifact"
	"questgen/internal/contract"
	"questgen/internal/fingerprint"
	"questgen/internal/pipeline"
)

var watchUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Single-user tool, typically driven from a local UI.
	CheckOrigin: func(*http.Request) bool { return true },
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.orch.Status())
}

// artifactSummary is the listing row: entry metadata without the value
// bytes (an export value can be large).
type artifactSummary struct {
	Name        string             `json:"name"`
	Kind        artifact.Kind      `json:"kind"`
	State       artifact.State     `json:"state"`
	Fingerprint fingerprint.Digest `json:"fingerprint,omitempty"`
	UpdatedAt   time.Time          `json:"updated_at"`
	Bytes       int                `json:"bytes"`
}

func (s *Server) handleArtifacts(w http.ResponseWriter, r *http.Request) {
	entries := s.orch.Artifacts()
	out := make([]artifactSummary, 0, len(entries))
	for _, e := range entries {
		out = append(out, artifactSummary{
			Name:        e.Name,
			Kind:        e.Kind,
			State:       e.State,
			Fingerprint: e.Fingerprint,
			UpdatedAt:   e.UpdatedAt,
			Bytes:       len(e.Value),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	entry, ok := s.orch.Artifact(name)
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("no stored value for "+name))
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

type ensureRequest struct {
	LOID string `json:"loId"`
}

type ensureResponse struct {
	Cached bool `json:"cached"`
	Result any  `json:"result"`
}

// handleEnsure runs one generation request through the orchestrator. The
// call is synchronous; the UI shows its own loading state meanwhile.
func (s *Server) handleEnsure(w http.ResponseWriter, r *http.Request) {
	var req ensureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("body must be JSON with loId"))
		return
	}

	var (
		result any
		cached bool
		err    error
	)
	switch r.PathValue("stage") {
	case "alignment":
		result, cached, err = s.orch.EnsureAlignment(r.Context(), req.LOID)
	case "questions":
		result, cached, err = s.orch.EnsureQuestions(r.Context(), req.LOID)
	default:
		writeError(w, http.StatusNotFound, errors.New("unknown stage: want alignment or questions"))
		return
	}
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, ensureResponse{Cached: cached, Result: result})
}

func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	conn, err := watchUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.hub.serve(conn)
}

// statusFor maps the error taxonomy onto HTTP statuses: contract
// violations are unprocessable payloads, backend failures are bad
// gateways, everything session-shaped is the client's request.
func statusFor(err error) int {
	var violation *contract.SchemaViolation
	var generation *pipeline.GenerationFailure
	switch {
	case errors.As(err, &violation):
		return http.StatusUnprocessableEntity
	case errors.As(err, &generation):
		return http.StatusBadGateway
	case errors.Is(err, pipeline.ErrObjectiveNotFound):
		return http.StatusNotFound
	case errors.Is(err, pipeline.ErrNoModule):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
