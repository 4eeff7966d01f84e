package llm

import (
	"testing"

	"github.com/kelseyhightower/envconfig"
)

// The api key is optional at load time: secondary endpoints (the in-process
// tool client) may be left unconfigured, and the caller decides whether a
// nil client is fatal.
func TestConfigLoadsWithoutAPIKey(t *testing.T) {
	var conf Config
	if err := envconfig.Process("LLM_TEST_UNSET", &conf); err != nil {
		t.Fatalf("Process with no api key set: %v", err)
	}
	if conf.APIKey != "" {
		t.Errorf("api key = %q, want empty", conf.APIKey)
	}
	if conf.Model != "gpt-4o-mini" {
		t.Errorf("default model = %q", conf.Model)
	}

	if client := NewClient(conf); client != nil {
		t.Error("NewClient returned a client without an api key")
	}
}

func TestNewClientWithKey(t *testing.T) {
	t.Parallel()

	client := NewClient(Config{APIKey: "sk-test"})
	if client == nil {
		t.Fatal("NewClient returned nil for a configured key")
	}
}
