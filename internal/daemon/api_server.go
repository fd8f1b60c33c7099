package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"clipforge/internal/config"
	"clipforge/internal/logging"
	"clipforge/internal/queue"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	srv := &apiServer{
		bind:   bind,
		logger: logger,
		daemon: d,
	}

	router := chi.NewRouter()
	router.Use(srv.countRequests)
	router.Get("/api/health", srv.handleHealth)
	router.Group(func(router chi.Router) {
		router.Use(authMiddleware(cfg.Paths.APIToken))
		router.Get("/api/jobs", srv.handleListJobs)
		router.Post("/api/jobs", srv.handleSubmitJob)
		router.Get("/api/jobs/{id}", srv.handleGetJob)
		router.Post("/api/jobs/{id}/cancel", srv.handleCancelJob)
		router.Post("/api/jobs/{id}/retry", srv.handleRetryJob)
		router.Get("/api/videos/{videoID}/candidates", srv.handleCandidates)
		router.Get("/api/videos/{videoID}/transcript", srv.handleTranscript)
	})
	if d.metrics != nil {
		router.Get("/metrics", d.metrics.Handler().ServeHTTP)
	}

	srv.server = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.daemon.metrics.IncRequests()
		next.ServeHTTP(w, r)
	})
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	health, err := s.daemon.workflow.Health(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "health check failed")
		return
	}
	s.writeJSON(w, http.StatusOK, health)
}

func (s *apiServer) handleListJobs(w http.ResponseWriter, r *http.Request) {
	var statuses []queue.Status
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		for _, piece := range strings.Split(raw, ",") {
			status, ok := queue.ParseStatus(piece)
			if !ok {
				s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown status %q", piece))
				return
			}
			statuses = append(statuses, status)
		}
	}

	jobs, err := s.daemon.store.List(r.Context(), statuses...)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "list jobs failed")
		return
	}
	views := make([]jobView, 0, len(jobs))
	for _, job := range jobs {
		views = append(views, newJobView(job))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"jobs": views})
}

type submitRequest struct {
	VideoID    string          `json:"video_id"`
	SourcePath string          `json:"source_path"`
	Params     json.RawMessage `json:"params,omitempty"`
}

func (s *apiServer) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.VideoID) == "" || strings.TrimSpace(req.SourcePath) == "" {
		s.writeError(w, http.StatusBadRequest, "video_id and source_path are required")
		return
	}

	paramsJSON := ""
	if len(req.Params) > 0 {
		params := s.daemon.cfg.DefaultJobParams()
		if err := json.Unmarshal(req.Params, &params); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid params")
			return
		}
		params.Normalize()
		if err := params.Validate(); err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		paramsJSON = string(req.Params)
	}

	job, err := s.daemon.store.NewJob(r.Context(), req.VideoID, req.SourcePath, paramsJSON)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "enqueue job failed")
		return
	}
	s.daemon.metrics.JobSubmitted()
	s.writeJSON(w, http.StatusCreated, newJobView(job))
}

func (s *apiServer) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.daemon.store.GetJob(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "get job failed")
		return
	}
	if job == nil {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}
	s.writeJSON(w, http.StatusOK, newJobView(job))
}

func (s *apiServer) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job, err := s.daemon.store.GetJob(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "get job failed")
		return
	}
	if job == nil {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if job.Status.IsTerminal() {
		s.writeError(w, http.StatusConflict, "job already finished")
		return
	}

	if _, err := s.daemon.store.RequestCancel(r.Context(), id); err != nil {
		s.writeError(w, http.StatusInternalServerError, "cancel request failed")
		return
	}
	updated, err := s.daemon.store.GetJob(r.Context(), id)
	if err != nil || updated == nil {
		s.writeError(w, http.StatusInternalServerError, "get job failed")
		return
	}
	s.writeJSON(w, http.StatusOK, newJobView(updated))
}

func (s *apiServer) handleRetryJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	retried, err := s.daemon.store.RetryFailed(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "retry failed")
		return
	}
	if retried == 0 {
		s.writeError(w, http.StatusConflict, "job is not in the failed state")
		return
	}
	job, err := s.daemon.store.GetJob(r.Context(), id)
	if err != nil || job == nil {
		s.writeError(w, http.StatusInternalServerError, "get job failed")
		return
	}
	s.writeJSON(w, http.StatusOK, newJobView(job))
}

func (s *apiServer) handleCandidates(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoID")
	candidates, err := s.daemon.store.CandidatesByVideo(r.Context(), videoID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "list candidates failed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"video_id":   videoID,
		"candidates": candidates,
	})
}

func (s *apiServer) handleTranscript(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoID")
	transcript, ok, err := s.daemon.store.TranscriptByVideo(r.Context(), videoID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "load transcript failed")
		return
	}
	if !ok {
		s.writeError(w, http.StatusNotFound, "no transcript for video")
		return
	}
	s.writeJSON(w, http.StatusOK, transcript)
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("encode api response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// jobView is the wire representation of a job.
type jobView struct {
	ID         string          `json:"id"`
	VideoID    string          `json:"video_id"`
	SourcePath string          `json:"source_path"`
	Status     string          `json:"status"`
	Progress   float64         `json:"progress"`
	Error      string          `json:"error,omitempty"`
	Logs       json.RawMessage `json:"logs,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func newJobView(job *queue.Job) jobView {
	view := jobView{
		ID:         job.ID,
		VideoID:    job.VideoID,
		SourcePath: job.SourcePath,
		Status:     string(job.Status),
		Progress:   job.Progress,
		Error:      job.ErrorMessage,
		CreatedAt:  job.CreatedAt,
		UpdatedAt:  job.UpdatedAt,
	}
	if strings.TrimSpace(job.LogsJSON) != "" {
		view.Logs = json.RawMessage(job.LogsJSON)
	}
	return view
}
