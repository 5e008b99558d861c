package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment names.
const (
	EnvPrefix = "MATCHBOARD_"
	EnvFile   = EnvPrefix + "CONFIG"

	// envGeminiKey is honoured when no prefixed key is set.
	envGeminiKey = "GEMINI_API_KEY"
)

// Path returns the YAML config path, if any.
func Path() string {
	return os.Getenv(EnvFile)
}

// Load builds a Config by layering, low to high precedence:
//  1. defaults (New)
//  2. YAML file named by MATCHBOARD_CONFIG
//  3. env (prefix MATCHBOARD_), e.g. MATCHBOARD_POPULATION_SIZE -> population_size
func Load(_ context.Context) (*Config, error) {
	k := koanf.New(".")

	if path := Path(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: file %s: %w", ErrLoadConfig, path, err)
		}
	}

	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := New()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if cfg.AIAPIKey == "" {
		cfg.AIAPIKey = os.Getenv(envGeminiKey)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// Watch reloads the configuration whenever the YAML file changes and hands
// the result to onChange. It is a no-op without a config file. Watching
// stops when ctx is done.
func Watch(ctx context.Context, onChange func(*Config, error)) error {
	path := Path()
	if path == "" {
		return nil
	}

	fp := file.Provider(path)
	err := fp.Watch(func(_ any, err error) {
		if err != nil {
			onChange(nil, fmt.Errorf("%w: watch %s: %w", ErrLoadConfig, path, err))
			return
		}
		onChange(Load(ctx))
	})
	if err != nil {
		return fmt.Errorf("%w: watch %s: %w", ErrLoadConfig, path, err)
	}

	go func() {
		<-ctx.Done()
		_ = fp.Unwatch()
	}()
	return nil
}
