package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	WorkDir  string `toml:"work_dir"`
	DataDir  string `toml:"data_dir"`
	LogDir   string `toml:"log_dir"`
	APIBind  string `toml:"api_bind"`
	APIToken string `toml:"api_token"`
}

// Analysis contains the default windowing and selection parameters applied to
// jobs that do not override them.
type Analysis struct {
	ClipMinSeconds      float64 `toml:"clip_min_seconds"`
	ClipMaxSeconds      float64 `toml:"clip_max_seconds"`
	TargetSeconds       float64 `toml:"target_seconds"`
	StepSeconds         float64 `toml:"step_seconds"`
	CandidatesPerMinute float64 `toml:"candidates_per_minute"`
	MaxCandidates       int     `toml:"max_candidates"`
	MinScore            float64 `toml:"min_score"`
	FreshnessPenalty    float64 `toml:"freshness_penalty"`
	JobTimeoutSeconds   int     `toml:"job_timeout_seconds"`
}

// Weights holds the linear fusion weights for the five window features.
// The fields must be non-negative and sum to approximately 1.
type Weights struct {
	SpeechHook     float64 `toml:"speech_hook" json:"speech_hook"`
	Motion         float64 `toml:"motion" json:"motion"`
	AudioPeak      float64 `toml:"audio_peak" json:"audio_peak"`
	KeywordMatch   float64 `toml:"keyword_match" json:"keyword_match"`
	SceneFreshness float64 `toml:"scene_freshness" json:"scene_freshness"`
}

// Sum returns the total of all weight components.
func (w Weights) Sum() float64 {
	return w.SpeechHook + w.Motion + w.AudioPeak + w.KeywordMatch + w.SceneFreshness
}

// Speech contains configuration for the speech-to-text extractor.
type Speech struct {
	// Engine selects the transcription backend: "whisper" (local CLI) or
	// "openai" (hosted API).
	Engine      string `toml:"engine"`
	Model       string `toml:"model"`
	Language    string `toml:"language"`
	CUDAEnabled bool   `toml:"cuda_enabled"`
	// OpenAI settings, used when engine = "openai".
	OpenAIAPIKey  string `toml:"openai_api_key"`
	OpenAIBaseURL string `toml:"openai_base_url"`
}

// Motion contains configuration for the motion-intensity extractor.
type Motion struct {
	SampleFPS float64 `toml:"sample_fps"`
	// ClampPercentile caps raw motion readings at the given percentile before
	// min-max scaling, which keeps hard cuts from dominating the signal.
	ClampPercentile float64 `toml:"clamp_percentile"`
}

// Audio contains configuration for the audio-energy extractor.
type Audio struct {
	// PeakSigma is the number of standard deviations above the whole-video
	// mean at which a second is flagged as an energy peak.
	PeakSigma float64 `toml:"peak_sigma"`
	// WeightedPeaks scales the audio_peak feature by how far flagged seconds
	// sit above the threshold instead of using a plain fraction.
	WeightedPeaks bool `toml:"weighted_peaks"`
}

// Workflow contains worker timing and intervals.
type Workflow struct {
	PollIntervalSeconds      int `toml:"poll_interval_seconds"`
	ErrorRetrySeconds        int `toml:"error_retry_seconds"`
	HeartbeatIntervalSeconds int `toml:"heartbeat_interval_seconds"`
	HeartbeatTimeoutSeconds  int `toml:"heartbeat_timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for clipforge.
//
// Configuration sections by subsystem:
//   - Paths: working/data/log directories and API bind address
//   - Analysis: default windowing, selection, and timeout parameters
//   - Weights: feature fusion weights
//   - Speech, Motion, Audio: per-extractor settings
//   - Workflow: worker polling intervals and heartbeats
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Analysis Analysis `toml:"analysis"`
	Weights  Weights  `toml:"weights"`
	Speech   Speech   `toml:"speech"`
	Motion   Motion   `toml:"motion"`
	Audio    Audio    `toml:"audio"`
	Workflow Workflow `toml:"workflow"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/clipforge/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether a config file was found at the resolved path.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("clipforge.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for worker operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable name used for media decoding.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for media inspection.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
