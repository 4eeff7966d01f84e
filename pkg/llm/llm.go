package llm

import (
	"strings"
	"time"

	openaisdk "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// Config describes one OpenAI-compatible completion endpoint.
type Config struct {
	BaseURL     string        `split_words:"true" default:"https://api.openai.com/v1"`
	APIKey      string        `split_words:"true"`
	Model       string        `split_words:"true" default:"gpt-4o-mini"`
	Temperature float64       `split_words:"true" default:"0"`
	Timeout     time.Duration `split_words:"true" default:"60s"`
}

// NewClient creates an OpenAI SDK client for the configured endpoint.
// Returns nil when no API key is configured.
func NewClient(cfg Config) *openaisdk.Client {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil
	}

	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
	}

	if trimmed := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); trimmed != "" {
		opts = append(opts, option.WithBaseURL(trimmed))
	}

	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	client := openaisdk.NewClient(opts...)
	return &client
}
