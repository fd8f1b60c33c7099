package config

const (
	defaultWorkDir = "~/.local/share/clipforge/work"
	defaultDataDir = "~/.local/share/clipforge/data"
	defaultLogDir  = "~/.local/share/clipforge/logs"
	defaultAPIBind = "127.0.0.1:7519"

	defaultClipMinSeconds      = 7.0
	defaultClipMaxSeconds      = 15.0
	defaultTargetSeconds       = 10.0
	defaultStepSeconds         = 3.0
	defaultCandidatesPerMinute = 4.0
	defaultMaxCandidates       = 20
	defaultMinScore            = 0.0
	defaultFreshnessPenalty    = 0.5
	defaultJobTimeoutSeconds   = 1800

	defaultSpeechEngine = "whisper"
	defaultSpeechModel  = "base"

	defaultMotionSampleFPS       = 5.0
	defaultMotionClampPercentile = 95.0

	defaultAudioPeakSigma = 1.2

	defaultPollIntervalSeconds      = 5
	defaultErrorRetrySeconds        = 10
	defaultHeartbeatIntervalSeconds = 15
	defaultHeartbeatTimeoutSeconds  = 120

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// DefaultWeights returns the reference feature fusion weights.
func DefaultWeights() Weights {
	return Weights{
		SpeechHook:     0.30,
		Motion:         0.25,
		AudioPeak:      0.20,
		KeywordMatch:   0.15,
		SceneFreshness: 0.10,
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir: defaultWorkDir,
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Analysis: Analysis{
			ClipMinSeconds:      defaultClipMinSeconds,
			ClipMaxSeconds:      defaultClipMaxSeconds,
			TargetSeconds:       defaultTargetSeconds,
			StepSeconds:         defaultStepSeconds,
			CandidatesPerMinute: defaultCandidatesPerMinute,
			MaxCandidates:       defaultMaxCandidates,
			MinScore:            defaultMinScore,
			FreshnessPenalty:    defaultFreshnessPenalty,
			JobTimeoutSeconds:   defaultJobTimeoutSeconds,
		},
		Weights: DefaultWeights(),
		Speech: Speech{
			Engine: defaultSpeechEngine,
			Model:  defaultSpeechModel,
		},
		Motion: Motion{
			SampleFPS:       defaultMotionSampleFPS,
			ClampPercentile: defaultMotionClampPercentile,
		},
		Audio: Audio{
			PeakSigma: defaultAudioPeakSigma,
		},
		Workflow: Workflow{
			PollIntervalSeconds:      defaultPollIntervalSeconds,
			ErrorRetrySeconds:        defaultErrorRetrySeconds,
			HeartbeatIntervalSeconds: defaultHeartbeatIntervalSeconds,
			HeartbeatTimeoutSeconds:  defaultHeartbeatTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
