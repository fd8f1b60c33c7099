// Package pipeline runs the full analysis for one job: probe, concurrent
// feature extraction, window generation, scoring, and candidate selection.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"clipforge/internal/analysis"
	"clipforge/internal/analysis/audioenergy"
	"clipforge/internal/analysis/motion"
	"clipforge/internal/analysis/speech"
	"clipforge/internal/config"
	"clipforge/internal/logging"
	"clipforge/internal/media"
	"clipforge/internal/queue"
	"clipforge/internal/scoring"
	"clipforge/internal/segment"
	"clipforge/internal/selection"
	"clipforge/internal/services"
	"clipforge/internal/stage"
)

// Progress checkpoints reported as the analysis advances.
const (
	progressProbed      = 10
	progressTranscribed = 30
	progressMotionDone  = 50
	progressAudioDone   = 70
	progressCandidates  = 90
	progressComplete    = 100
)

// SpeechExtractor produces the transcript for a probed source.
type SpeechExtractor interface {
	Extract(ctx context.Context, source media.Source, language string) (speech.Transcript, error)
}

// MotionExtractor produces the per-second motion signal.
type MotionExtractor interface {
	Extract(ctx context.Context, source media.Source) (analysis.Signal, error)
}

// AudioExtractor produces the per-second loudness profile.
type AudioExtractor interface {
	Extract(ctx context.Context, source media.Source) (audioenergy.Result, error)
}

// ProbeFunc inspects the source file ahead of extraction.
type ProbeFunc func(ctx context.Context, path string) (media.Source, error)

// Analyzer implements the analysis stage over a job queue.
type Analyzer struct {
	store  *queue.Store
	cfg    *config.Config
	logger *slog.Logger

	probe  ProbeFunc
	speech SpeechExtractor
	motion MotionExtractor
	audio  AudioExtractor

	timeout time.Duration
}

// NewAnalyzer wires the production extractors from configuration.
func NewAnalyzer(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Analyzer {
	ffmpeg := cfg.FFmpegBinary()

	var engine speech.Engine
	if cfg.Speech.Engine == speech.EngineOpenAI {
		if hosted, err := speech.NewOpenAIEngine(speech.OpenAIConfig{
			APIKey:  cfg.Speech.OpenAIAPIKey,
			BaseURL: cfg.Speech.OpenAIBaseURL,
		}); err == nil {
			engine = hosted
		}
	}
	if engine == nil {
		engine = speech.NewWhisperEngine(speech.WhisperConfig{
			Model:       cfg.Speech.Model,
			CUDAEnabled: cfg.Speech.CUDAEnabled,
			WorkDir:     cfg.Paths.WorkDir,
		}, nil)
	}

	analyzer := &Analyzer{
		store:   store,
		cfg:     cfg,
		logger:  logging.NewComponentLogger(logger, "analyzer"),
		speech:  speech.NewExtractor(engine, ffmpeg, cfg.Paths.WorkDir, nil),
		motion:  motion.NewExtractor(motion.Config{SampleFPS: cfg.Motion.SampleFPS, ClampPercentile: cfg.Motion.ClampPercentile}, ffmpeg, nil),
		audio:   audioenergy.NewExtractor(audioenergy.Config{PeakSigma: cfg.Audio.PeakSigma}, ffmpeg, nil),
		timeout: time.Duration(cfg.Analysis.JobTimeoutSeconds) * time.Second,
	}
	analyzer.probe = func(ctx context.Context, path string) (media.Source, error) {
		return media.Probe(ctx, cfg.FFprobeBinary(), path, nil)
	}
	return analyzer
}

// WithExtractors swaps the extraction backends, used by tests.
func (a *Analyzer) WithExtractors(probe ProbeFunc, sp SpeechExtractor, mo MotionExtractor, au AudioExtractor) *Analyzer {
	if probe != nil {
		a.probe = probe
	}
	if sp != nil {
		a.speech = sp
	}
	if mo != nil {
		a.motion = mo
	}
	if au != nil {
		a.audio = au
	}
	return a
}

// Prepare validates the job parameters before any extraction starts.
func (a *Analyzer) Prepare(ctx context.Context, job *queue.Job) error {
	params, err := job.Params(a.cfg.DefaultJobParams())
	if err != nil {
		return services.Wrap(services.ErrInput, "analyzer", "prepare", "job parameters are malformed", err)
	}
	params.Normalize()
	if err := params.Validate(); err != nil {
		return services.Wrap(services.ErrInput, "analyzer", "prepare", "job parameters are invalid", err)
	}
	job.Progress = 0
	job.ErrorMessage = ""
	return nil
}

// Execute runs the analysis to completion, raising the job's progress at
// each checkpoint and persisting the final candidate set.
func (a *Analyzer) Execute(ctx context.Context, job *queue.Job) error {
	ctx = services.WithJobID(ctx, job.ID)
	ctx = services.WithVideoID(ctx, job.VideoID)
	logger := logging.WithContext(ctx, a.logger)

	params, err := job.Params(a.cfg.DefaultJobParams())
	if err != nil {
		return services.Wrap(services.ErrInput, "analyzer", "params", "job parameters are malformed", err)
	}
	params.Normalize()

	source, err := a.probe(ctx, job.SourcePath)
	if err != nil {
		return err
	}
	if err := a.checkpoint(ctx, job, progressProbed); err != nil {
		return err
	}
	logger.InfoContext(ctx, "source probed",
		logging.Float64("duration_s", source.Duration),
		logging.Int("audio_streams", source.AudioStreams),
	)

	// A source shorter than the minimum clip completes with zero candidates
	// rather than failing.
	if source.Duration < params.ClipMinSeconds {
		logger.InfoContext(ctx, "source shorter than minimum clip, completing empty")
		return a.finish(ctx, job, speech.Transcript{}, nil, 0, source.Duration)
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if a.timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	features, err := a.extract(runCtx, job, source)
	if err != nil {
		return a.classify(runCtx, err)
	}
	if err := a.checkCancel(runCtx, job); err != nil {
		return err
	}

	windows := segment.Generate(source.Duration, segment.Params{
		MinDuration:    params.ClipMinSeconds,
		MaxDuration:    params.ClipMaxSeconds,
		TargetDuration: params.TargetSeconds,
		Step:           params.StepSeconds,
	})
	scorer := scoring.NewScorer(features.transcript, features.motion, features.audio, params.Keywords, params.Weights)
	scored := scorer.Score(windows)

	quota := segment.Quota(source.Duration, params.CandidatesPerMinute, params.MaxCandidates)
	candidates := selection.Select(scored, selection.Options{
		MaxCandidates:    quota,
		MinScore:         params.MinScore,
		FreshnessPenalty: params.FreshnessPenalty,
		Weights:          params.Weights,
	})
	if err := a.checkpoint(ctx, job, progressCandidates); err != nil {
		return err
	}
	logger.InfoContext(ctx, "candidates selected",
		logging.Int("windows_scored", len(scored)),
		logging.Int("candidates", len(candidates)),
	)

	return a.finish(ctx, job, features.transcript, candidates, len(scored), source.Duration)
}

// HealthCheck verifies the media binaries the extractors shell out to.
func (a *Analyzer) HealthCheck(ctx context.Context) stage.Health {
	for _, binary := range []string{a.cfg.FFmpegBinary(), a.cfg.FFprobeBinary()} {
		if _, err := exec.LookPath(binary); err != nil {
			return stage.Unhealthy("analyzer", binary+" not found in PATH")
		}
	}
	return stage.Healthy("analyzer")
}

type extracted struct {
	transcript speech.Transcript
	motion     analysis.Signal
	audio      audioenergy.Result
}

// extract runs the three feature extractors concurrently. Each raises the
// job's progress as it completes; the raise-only rule keeps the reported
// value monotonic regardless of completion order. On multiple failures the
// speech error wins, then motion, then audio.
func (a *Analyzer) extract(ctx context.Context, job *queue.Job, source media.Source) (extracted, error) {
	var (
		result                         extracted
		speechErr, motionErr, audioErr error
		wg                             sync.WaitGroup
		mu                             sync.Mutex
	)

	advance := func(target float64) {
		mu.Lock()
		defer mu.Unlock()
		job.SetProgress(target)
		if err := a.store.Update(ctx, job); err != nil {
			a.logger.WarnContext(ctx, "persist progress", logging.Error(err))
		}
	}

	wg.Add(3)
	go func() {
		defer wg.Done()
		result.transcript, speechErr = a.speech.Extract(ctx, source, a.cfg.Speech.Language)
		if speechErr == nil {
			advance(progressTranscribed)
		}
	}()
	go func() {
		defer wg.Done()
		result.motion, motionErr = a.motion.Extract(ctx, source)
		if motionErr == nil {
			advance(progressMotionDone)
		}
	}()
	go func() {
		defer wg.Done()
		result.audio, audioErr = a.audio.Extract(ctx, source)
		if audioErr == nil {
			advance(progressAudioDone)
		}
	}()
	wg.Wait()

	for _, err := range []error{speechErr, motionErr, audioErr} {
		if err != nil {
			return extracted{}, err
		}
	}
	return result, nil
}

// finish persists the transcript, candidate set, and summary log before
// marking the job complete.
func (a *Analyzer) finish(ctx context.Context, job *queue.Job, transcript speech.Transcript, candidates []selection.Candidate, windowsScored int, duration float64) error {
	if !transcript.Empty() {
		if err := a.store.SaveTranscript(ctx, job.VideoID, transcript); err != nil {
			return services.Wrap(services.ErrTransient, "analyzer", "persist", "save transcript failed", err)
		}
	}
	if err := a.store.ReplaceCandidates(ctx, job.VideoID, candidates); err != nil {
		return services.Wrap(services.ErrTransient, "analyzer", "persist", "save candidates failed", err)
	}
	if err := job.SetLogs(map[string]any{
		"windows_scored": windowsScored,
		"candidates":     len(candidates),
		"language":       transcript.Language,
		"duration_s":     duration,
	}); err != nil {
		return services.Wrap(services.ErrTransient, "analyzer", "persist", "encode analysis summary failed", err)
	}
	job.SetProgress(progressComplete)
	return nil
}

// checkpoint raises the job's progress and gives cancellation a chance to
// take effect between stages.
func (a *Analyzer) checkpoint(ctx context.Context, job *queue.Job, target float64) error {
	if err := a.checkCancel(ctx, job); err != nil {
		return err
	}
	job.SetProgress(target)
	if err := a.store.Update(ctx, job); err != nil {
		return services.Wrap(services.ErrTransient, "analyzer", "persist", "update progress failed", err)
	}
	return nil
}

// checkCancel surfaces context expiry and user cancellation requests.
func (a *Analyzer) checkCancel(ctx context.Context, job *queue.Job) error {
	if err := a.classify(ctx, ctx.Err()); err != nil {
		return err
	}
	flagged, err := a.store.CancelPending(context.WithoutCancel(ctx), job.ID)
	if err != nil {
		return services.Wrap(services.ErrTransient, "analyzer", "cancel check", "read cancel flag failed", err)
	}
	if flagged {
		return services.Wrap(services.ErrCancelled, "analyzer", "cancel check", "cancellation requested", nil)
	}
	return nil
}

// classify maps context errors to the job failure taxonomy. A deadline hit
// means the analysis budget expired; plain cancellation propagates unchanged
// so daemon shutdown leaves the job for heartbeat reclamation.
func (a *Analyzer) classify(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return services.Wrap(services.ErrTimeout, "analyzer", "run", "analysis exceeded its time budget", err)
	}
	return err
}
