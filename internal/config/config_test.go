package config_test

import (
	"testing"
	"time"

	"github.com/okian/matchboard/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.PopulationSize, convey.ShouldEqual, 80)
			convey.So(cfg.Seed, convey.ShouldEqual, 0)
			convey.So(cfg.ActivityWindow, convey.ShouldEqual, 100_000_000*time.Millisecond)
			convey.So(cfg.PipelineLimit, convey.ShouldEqual, 50)
			convey.So(cfg.AIModel, convey.ShouldEqual, "gemini-3-flash-preview")
			convey.So(cfg.AIEnabled(), convey.ShouldBeFalse)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given invalid settings", t, func() {
		cases := []struct {
			field  string
			mutate func(*config.Config)
		}{
			{"population_size", func(c *config.Config) { c.PopulationSize = 0 }},
			{"population_size", func(c *config.Config) { c.PopulationSize = config.MaxPopulationSize + 1 }},
			{"pipeline_limit", func(c *config.Config) { c.PipelineLimit = -1 }},
			{"log_level", func(c *config.Config) { c.LogLevel = "loud" }},
			{"log_format", func(c *config.Config) { c.LogFormat = "xml" }},
			{"addr", func(c *config.Config) { c.Addr = "" }},
			{"activity_window", func(c *config.Config) { c.ActivityWindow = -time.Second }},
			{"stats_interval", func(c *config.Config) { c.StatsInterval = time.Millisecond }},
		}
		for _, tc := range cases {
			cfg := config.New()
			tc.mutate(cfg)
			err := cfg.Validate()
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(err.Error(), convey.ShouldContainSubstring, tc.field)
		}
	})

	convey.Convey("Given a credential", t, func() {
		cfg := config.New()
		cfg.AIAPIKey = "key"
		convey.So(cfg.AIEnabled(), convey.ShouldBeTrue)
	})
}
