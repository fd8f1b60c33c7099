package config

import (
	"os"
	"strings"
)

// normalize expands path fields and fills blanks with defaults so the rest of
// the system can rely on absolute paths and non-empty selections.
func (c *Config) normalize() error {
	for _, field := range []*string{&c.Paths.WorkDir, &c.Paths.DataDir, &c.Paths.LogDir} {
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}

	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)

	c.Speech.Engine = strings.ToLower(strings.TrimSpace(c.Speech.Engine))
	if c.Speech.Engine == "" {
		c.Speech.Engine = defaultSpeechEngine
	}
	c.Speech.Model = strings.TrimSpace(c.Speech.Model)
	if c.Speech.Model == "" {
		c.Speech.Model = defaultSpeechModel
	}
	c.Speech.Language = strings.TrimSpace(c.Speech.Language)
	c.Speech.OpenAIAPIKey = strings.TrimSpace(c.Speech.OpenAIAPIKey)
	if c.Speech.OpenAIAPIKey == "" {
		c.Speech.OpenAIAPIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}

	if c.Workflow.PollIntervalSeconds <= 0 {
		c.Workflow.PollIntervalSeconds = defaultPollIntervalSeconds
	}
	if c.Workflow.ErrorRetrySeconds <= 0 {
		c.Workflow.ErrorRetrySeconds = defaultErrorRetrySeconds
	}
	if c.Workflow.HeartbeatIntervalSeconds <= 0 {
		c.Workflow.HeartbeatIntervalSeconds = defaultHeartbeatIntervalSeconds
	}
	if c.Workflow.HeartbeatTimeoutSeconds <= 0 {
		c.Workflow.HeartbeatTimeoutSeconds = defaultHeartbeatTimeoutSeconds
	}

	return nil
}
