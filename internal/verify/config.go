// Package verify checks a running service's dataset and funnel for
// consistency from the outside, over its HTTP API.
package verify

import (
	"time"

	"github.com/okian/matchboard/internal/domain/funnel"
	"github.com/okian/matchboard/pkg/logger"
)

// Defaults.
const (
	DefaultBaseURL = "http://localhost:9080"
	DefaultTimeout = 30 * time.Second
)

// Report formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Config controls one verification run.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Output  string // report file; empty skips saving
	Format  string // json or yaml; empty derives it from Output's extension
	Logger  logger.Logger
}

func (c *Config) defaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Logger == nil {
		c.Logger = logger.NewNop()
	}
}

// Report is the outcome of a run.
type Report struct {
	BaseURL    string        `json:"baseUrl" yaml:"baseUrl"`
	CheckedAt  time.Time     `json:"checkedAt" yaml:"checkedAt"`
	Duration   time.Duration `json:"duration" yaml:"duration"`
	Attendees  int           `json:"attendees" yaml:"attendees"`
	Matches    int           `json:"matches" yaml:"matches"`
	Outcomes   int           `json:"outcomes" yaml:"outcomes"`
	Funnel     FunnelView    `json:"funnel" yaml:"funnel"`
	Server     FunnelView    `json:"serverFunnel" yaml:"serverFunnel"`
	Violations []string      `json:"violations" yaml:"violations"`
	Warnings   []string      `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Passed     bool          `json:"passed" yaml:"passed"`
}

// FunnelView is the comparable part of a funnel report.
type FunnelView struct {
	Counts     [5]int       `json:"funnelCounts" yaml:"funnelCounts"`
	Rates      funnel.Rates `json:"conversionRates" yaml:"conversionRates"`
	Bottleneck string       `json:"bottleneck" yaml:"bottleneck"`
}

func viewOf(r funnel.Report) FunnelView {
	return FunnelView{Counts: r.Counts, Rates: r.Rates, Bottleneck: r.Bottleneck.String()}
}
