package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"vibecut/internal/api"
	"vibecut/internal/compiler"
	"vibecut/internal/engine"
	"vibecut/internal/logging"
	"vibecut/internal/preflight"
	"vibecut/internal/render"
	"vibecut/internal/services"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

func (s *Server) routes() http.Handler {
	token := s.cfg.Server.APIToken
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/render", s.authMiddleware(token, s.handleRender))
	mux.HandleFunc("/api/status", s.authMiddleware(token, s.handleStatus))
	mux.HandleFunc("/api/renders", s.authMiddleware(token, s.handleRenders))
	mux.HandleFunc("/api/renders/", s.authMiddleware(token, s.handleRenderItem))
	return s.withRequestID(s.withRecover(s.withCORS(mux)))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}
	s.writeJSON(w, http.StatusOK, api.Health{Status: "ok", Version: compiler.Version})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}
	ctx := r.Context()
	logger := logging.WithContext(ctx, s.logger)

	if err := s.slots.Acquire(ctx, 1); err != nil {
		logging.WarnWithContext(logger, "render cancelled while waiting for a slot", "render_slot_wait_cancelled",
			logging.Error(err),
			logging.Int("max_concurrent_renders", s.cfg.Server.MaxConcurrentRenders),
			logging.String(logging.FieldErrorHint, "client disconnected or server is shutting down"),
			logging.String(logging.FieldImpact, "render not started"),
		)
		s.writeError(w, http.StatusServiceUnavailable, "render cancelled while waiting for a slot", "")
		return
	}
	defer s.slots.Release(1)

	maxBytes := s.cfg.MaxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	form, err := parseRenderForm(r, maxBytes)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	defer form.cleanup()

	result, err := s.service.Render(ctx, render.Request{
		Project:  form.project,
		Settings: form.settings,
		Uploads:  form.uploads,
	})
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	defer func() {
		if err := result.Cleanup(); err != nil {
			logging.WarnWithContext(logger, "failed to remove render workspace", "workspace_cleanup_failed",
				logging.String("render_id", result.ID),
				logging.Error(err),
				logging.String(logging.FieldImpact, "workspace removed by the next stale sweep"),
			)
		}
	}()

	artifact, err := os.Open(result.ArtifactPath)
	if err != nil {
		s.writeFailure(w, services.Wrap(services.ErrUnexpected, "server", "open artifact", "", err))
		return
	}
	defer artifact.Close()

	h := w.Header()
	h.Set("Content-Type", result.ContentType)
	h.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="rendered.%s"`, form.settings.Format))
	h.Set("Content-Length", strconv.FormatInt(result.Size, 10))
	h.Set("X-Render-ID", result.ID)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, artifact); err != nil {
		logging.WarnWithContext(logger, "artifact stream interrupted", "artifact_stream_failed",
			logging.String("render_id", result.ID),
			logging.Error(err),
			logging.String(logging.FieldImpact, "client received a partial artifact"),
		)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}
	payload := api.Status{
		Version:      compiler.Version,
		Dependencies: api.FromDependencies(preflight.CheckSystemDeps(s.cfg)),
		Checks:       api.FromChecks(preflight.RunAll(r.Context(), s.cfg)),
	}
	if s.history != nil {
		payload.HistoryPath = s.history.Path()
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleRenders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}
	if s.history == nil {
		s.writeJSON(w, http.StatusOK, api.RenderListResponse{Renders: []api.Render{}})
		return
	}
	limit := defaultListLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer", "input_malformed")
			return
		}
		limit = min(parsed, maxListLimit)
	}
	records, err := s.history.List(r.Context(), limit)
	if err != nil {
		s.writeFailure(w, services.Wrap(services.ErrUnexpected, "server", "list renders", "", err))
		return
	}
	s.writeJSON(w, http.StatusOK, api.RenderListResponse{Renders: api.FromRecords(records)})
}

func (s *Server) handleRenderItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/renders/")
	if id == "" || strings.Contains(id, "/") || s.history == nil {
		s.writeError(w, http.StatusNotFound, "render not found", "not_found")
		return
	}
	record, err := s.history.Get(r.Context(), id)
	if err != nil {
		s.writeFailure(w, services.Wrap(services.ErrUnexpected, "server", "get render", "", err))
		return
	}
	if record == nil {
		s.writeError(w, http.StatusNotFound, "render not found", "not_found")
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromRecord(record))
}

// writeFailure maps a pipeline error to its status and body. Engine
// failures carry the bounded diagnostic tail instead of the wrapped chain.
func (s *Server) writeFailure(w http.ResponseWriter, err error) {
	message := err.Error()
	var failure *engine.Failure
	if errors.As(err, &failure) {
		detail := strings.TrimSpace(failure.Tail)
		if detail == "" {
			detail = failure.Error()
		}
		message = "FFmpeg failed:\n" + detail
	}
	s.writeError(w, services.HTTPStatus(err), message, services.Kind(err))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message, kind string) {
	s.writeJSON(w, status, api.Error{Error: message, Kind: kind})
}
