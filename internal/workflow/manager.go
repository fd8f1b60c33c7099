package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"clipforge/internal/config"
	"clipforge/internal/logging"
	"clipforge/internal/metrics"
	"clipforge/internal/queue"
	"clipforge/internal/services"
	"clipforge/internal/stage"
)

// Manager drives the analysis worker loop over the job queue.
type Manager struct {
	cfg     *config.Config
	store   *queue.Store
	handler stage.Handler
	logger  *slog.Logger
	metrics *metrics.Metrics

	pollInterval time.Duration
	errorRetry   time.Duration
	heartbeat    *HeartbeatMonitor

	mu      sync.RWMutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	lastErr error
}

// NewManager constructs a workflow manager. The metrics collector may be nil.
func NewManager(cfg *config.Config, store *queue.Store, handler stage.Handler, logger *slog.Logger, collector *metrics.Metrics) *Manager {
	logger = logging.NewComponentLogger(logger, "workflow-manager")
	return &Manager{
		cfg:          cfg,
		store:        store,
		handler:      handler,
		logger:       logger,
		metrics:      collector,
		pollInterval: time.Duration(cfg.Workflow.PollIntervalSeconds) * time.Second,
		errorRetry:   time.Duration(cfg.Workflow.ErrorRetrySeconds) * time.Second,
		heartbeat: NewHeartbeatMonitor(
			store,
			logger,
			time.Duration(cfg.Workflow.HeartbeatIntervalSeconds)*time.Second,
			time.Duration(cfg.Workflow.HeartbeatTimeoutSeconds)*time.Second,
		),
	}
}

// Start begins background processing.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return errors.New("workflow already running")
	}
	if m.handler == nil {
		return errors.New("workflow stage not configured")
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	go m.run(runCtx)
	return nil
}

// Stop terminates background processing and waits for completion.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

// Running reports whether the worker loop is active.
func (m *Manager) Running() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

// LastError returns the most recent processing error, if any.
func (m *Manager) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := m.heartbeat.ReclaimStaleJobs(ctx); err != nil && !errors.Is(err, context.Canceled) {
			m.logger.Warn("reclaim stale processing failed; stuck jobs may remain",
				logging.Error(err),
				logging.String(logging.FieldEventType, "heartbeat_reclaim_failed"),
				logging.String(logging.FieldErrorHint, "check job database access"),
			)
		}

		job, err := m.store.NextPending(ctx)
		if err != nil {
			m.setLastError(err)
			m.logger.Error("failed to fetch next job",
				logging.Error(err),
				logging.String(logging.FieldEventType, "queue_fetch_failed"),
			)
			m.sleep(ctx, m.errorRetry)
			continue
		}
		if job == nil {
			m.sleep(ctx, m.pollInterval)
			continue
		}

		if err := m.processJob(ctx, job); err != nil && errors.Is(err, context.Canceled) {
			return
		}
	}
}

func (m *Manager) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		d = time.Second
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

func (m *Manager) processJob(ctx context.Context, job *queue.Job) error {
	requestID := uuid.NewString()
	jobCtx := services.WithRequestID(services.WithJobID(ctx, job.ID), requestID)
	logger := m.logger.With(
		logging.String(logging.FieldJobID, job.ID),
		logging.String(logging.FieldVideoID, job.VideoID),
		logging.String(logging.FieldCorrelationID, requestID),
	)

	if err := m.transitionToProcessing(jobCtx, job); err != nil {
		logger.Error("failed to transition job to processing", logging.Error(err))
		m.setLastError(err)
		return err
	}
	m.metrics.JobStarted()

	start := time.Now()
	logger.Info("analysis started",
		logging.String(logging.FieldEventType, "job_start"),
		logging.String("source_file", job.SourcePath),
	)

	if err := m.handler.Prepare(jobCtx, job); err != nil {
		m.handleFailure(jobCtx, logger, job, err)
		return err
	}
	if err := m.store.Update(jobCtx, job); err != nil {
		wrapped := fmt.Errorf("persist job preparation: %w", err)
		m.handleFailure(jobCtx, logger, job, wrapped)
		return wrapped
	}

	execErr := m.executeWithHeartbeat(jobCtx, job)
	if execErr != nil {
		// Plain context cancellation means daemon shutdown: leave the job
		// processing so heartbeat reclamation returns it to pending.
		if errors.Is(execErr, context.Canceled) && !errors.Is(execErr, services.ErrCancelled) {
			logger.Debug("analysis interrupted by shutdown")
			return execErr
		}
		m.handleFailure(jobCtx, logger, job, execErr)
		return execErr
	}

	job.Status = queue.StatusCompleted
	job.LastHeartbeat = nil
	if err := m.store.Update(jobCtx, job); err != nil {
		wrapped := fmt.Errorf("persist job result: %w", err)
		m.handleFailure(jobCtx, logger, job, wrapped)
		return wrapped
	}

	m.metrics.JobCompleted(time.Since(start))
	logger.Info("analysis completed",
		logging.String(logging.FieldEventType, "job_complete"),
		logging.Float64("progress", job.Progress),
		logging.Duration("duration", time.Since(start)),
	)
	return nil
}

func (m *Manager) executeWithHeartbeat(ctx context.Context, job *queue.Job) error {
	hbCtx, hbCancel := context.WithCancel(ctx)
	var hbWG sync.WaitGroup
	hbWG.Add(1)
	go m.heartbeat.StartLoop(hbCtx, &hbWG, job.ID)

	execErr := m.handler.Execute(ctx, job)
	hbCancel()
	hbWG.Wait()
	return execErr
}

func (m *Manager) transitionToProcessing(ctx context.Context, job *queue.Job) error {
	now := time.Now().UTC()
	job.Status = queue.StatusProcessing
	job.ErrorMessage = ""
	job.LastHeartbeat = &now
	if err := m.store.Update(ctx, job); err != nil {
		return fmt.Errorf("persist processing transition: %w", err)
	}
	return nil
}

func (m *Manager) handleFailure(ctx context.Context, logger *slog.Logger, job *queue.Job, err error) {
	m.setLastError(err)
	job.LastHeartbeat = nil

	if !services.IsFatalToJob(err) {
		// Transient storage or IO trouble returns the job to the queue so a
		// later poll retries it instead of burying it as failed.
		job.Status = queue.StatusPending
		job.ErrorMessage = err.Error()
		logger.Warn("transient failure, returning job to queue",
			logging.Error(err),
			logging.String(logging.FieldEventType, "job_requeue"),
		)
		if updateErr := m.store.Update(ctx, job); updateErr != nil {
			logger.Error("failed to requeue job", logging.Error(updateErr))
		}
		return
	}

	reason := services.FailureReason(err)
	job.SetFailed(reason)

	logger.Error("analysis failed",
		logging.Error(err),
		logging.String(logging.FieldEventType, "job_failure"),
		logging.String("reason", reason),
		logging.Float64("progress", job.Progress),
	)

	if updateErr := m.store.Update(ctx, job); updateErr != nil {
		if errors.Is(updateErr, context.Canceled) {
			logger.Debug("daemon shutting down, could not persist job failure")
		} else {
			logger.Error("failed to persist job failure", logging.Error(updateErr))
		}
	}
	m.metrics.JobFailed(reasonClass(err))
}

// reasonClass buckets failures into the stable labels the metrics use.
func reasonClass(err error) string {
	switch {
	case errors.Is(err, services.ErrCancelled):
		return "cancelled"
	case errors.Is(err, services.ErrTimeout):
		return "timeout"
	case errors.Is(err, services.ErrInput):
		return "input"
	case errors.Is(err, services.ErrExtractor):
		return "extractor"
	case errors.Is(err, services.ErrConfiguration):
		return "configuration"
	default:
		return "other"
	}
}
