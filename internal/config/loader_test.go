package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/matchboard/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("MATCHBOARD_ADDR", ":8080")
			_ = os.Setenv("MATCHBOARD_POPULATION_SIZE", "120")
			_ = os.Setenv("MATCHBOARD_SEED", "42")
			_ = os.Setenv("MATCHBOARD_ACTIVITY_WINDOW", "72h")
			_ = os.Setenv("MATCHBOARD_AI_API_KEY", "secret")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.PopulationSize, convey.ShouldEqual, 120)
				convey.So(cfg.Seed, convey.ShouldEqual, 42)
				convey.So(cfg.ActivityWindow, convey.ShouldEqual, 72*time.Hour)
				convey.So(cfg.AIAPIKey, convey.ShouldEqual, "secret")
				convey.So(cfg.PipelineLimit, convey.ShouldEqual, 50)
			})
		})

		convey.Convey("When only the Gemini key is exported", func() {
			_ = os.Setenv("GEMINI_API_KEY", "fallback-key")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it becomes the credential", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.AIEnabled(), convey.ShouldBeTrue)
				convey.So(cfg.AIAPIKey, convey.ShouldEqual, "fallback-key")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			path := writeConfigFile(t, `
addr: ":9090"
population_size: 200
pipeline_limit: 25
sse_throttle: 1s
`)
			_ = os.Setenv("MATCHBOARD_CONFIG", path)
			_ = os.Setenv("MATCHBOARD_POPULATION_SIZE", "90")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.PopulationSize, convey.ShouldEqual, 90)
				convey.So(cfg.PipelineLimit, convey.ShouldEqual, 25)
				convey.So(cfg.SSEThrottle, convey.ShouldEqual, time.Second)
				convey.So(cfg.AIModel, convey.ShouldEqual, config.DefaultAIModel)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			_ = os.Setenv("MATCHBOARD_CONFIG", writeConfigFile(t, `invalid: yaml: content: [`))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("MATCHBOARD_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the population size is out of range", func() {
			_ = os.Setenv("MATCHBOARD_POPULATION_SIZE", "9000")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "population_size")
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("MATCHBOARD_PIPELINE_LIMIT", "lots")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestConfigWatch(t *testing.T) {
	convey.Convey("Given a watched config file", t, func() {
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		convey.Convey("When there is no config file", func() {
			called := false
			err := config.Watch(ctx, func(*config.Config, error) { called = true })

			convey.Convey("Then watching is a no-op", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(called, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When the file is rewritten", func() {
			path := writeConfigFile(t, "log_level: info\n")
			_ = os.Setenv("MATCHBOARD_CONFIG", path)

			changes := make(chan *config.Config, 16)
			err := config.Watch(ctx, func(cfg *config.Config, err error) {
				if err != nil {
					return
				}
				select {
				case changes <- cfg:
				default:
				}
			})
			convey.So(err, convey.ShouldBeNil)

			convey.So(os.WriteFile(path, []byte("log_level: debug\n"), 0o600), convey.ShouldBeNil)

			convey.Convey("Then the reloaded config is delivered", func() {
				deadline := time.After(5 * time.Second)
				level := ""
				for level != "debug" {
					select {
					case cfg := <-changes:
						level = cfg.LogLevel
					case <-deadline:
						t.Fatal("no reload observed")
					}
				}
				convey.So(level, convey.ShouldEqual, "debug")
			})
		})
	})
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "matchboard.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func clearConfigEnvVars() {
	for _, k := range []string{
		"MATCHBOARD_CONFIG", "MATCHBOARD_ADDR", "MATCHBOARD_POPULATION_SIZE", "MATCHBOARD_SEED",
		"MATCHBOARD_ACTIVITY_WINDOW", "MATCHBOARD_AI_API_KEY", "MATCHBOARD_PIPELINE_LIMIT",
		"MATCHBOARD_LOG_LEVEL", "GEMINI_API_KEY",
	} {
		_ = os.Unsetenv(k)
	}
}
