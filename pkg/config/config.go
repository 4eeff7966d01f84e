// Package config loads typed configuration structs from the environment,
// optionally seeded from a .env file ($ENV_FILE or ./\.env by default).
package config

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

var loadFileOnce sync.Once

// MustNew is New for startup paths where a bad configuration should stop
// the process.
func MustNew[T any](prefix string) *T {
	conf, err := New[T](prefix)
	if err != nil {
		panic(fmt.Sprintf("config %s: %v", prefix, err))
	}
	return conf
}

// New populates T from PREFIX_* environment variables. On first use the
// env file, when present, is exported into the environment; variables
// already set always win over file entries.
func New[T any](prefix string) (*T, error) {
	var loadErr error
	loadFileOnce.Do(func() {
		if path := envFile(); path != "" {
			loadErr = exportFile(path)
		}
	})
	if loadErr != nil {
		return nil, fmt.Errorf("load env file: %w", loadErr)
	}

	var conf T
	if err := envconfig.Process(prefix, &conf); err != nil {
		return nil, fmt.Errorf("process %s environment: %w", prefix, err)
	}
	return &conf, nil
}

// envFile resolves which env file to read: $ENV_FILE when set, the
// default .env when it exists, otherwise nothing.
func envFile() string {
	if path := strings.TrimSpace(os.Getenv("ENV_FILE")); path != "" {
		return path
	}
	if info, err := os.Stat(".env"); err == nil && !info.IsDir() {
		return ".env"
	}
	return ""
}

func exportFile(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	for key, value := range v.AllSettings() {
		name := strings.ToUpper(key)
		if _, exists := os.LookupEnv(name); exists {
			continue
		}
		if err := os.Setenv(name, fmt.Sprint(value)); err != nil {
			return err
		}
	}
	return nil
}
