package config

import (
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	domainConfig "github.com/secmon-lab/queuewatch/pkg/domain/model/config"
	"github.com/secmon-lab/queuewatch/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// AppConfig represents the triage rule configuration loaded from a TOML
// file. All sections are optional; unset values keep the built-in
// defaults.
type AppConfig struct {
	AlwaysUrgent []string `toml:"always_urgent"`
	Thresholds   struct {
		WeekendMin  int `toml:"weekend_min"`
		CriticalMin int `toml:"critical_min"`
		DefaultMin  int `toml:"default_min"`
	} `toml:"thresholds"`
	Timezone struct {
		Name          string `toml:"name"`
		OffsetMinutes int    `toml:"offset_minutes"`
	} `toml:"timezone"`
	HistoryPick   string  `toml:"history_pick"`
	CommentMarker string  `toml:"comment_marker"`
	Queries       []Query `toml:"query"`
}

// Query overrides the CRM query filter for one mode
type Query struct {
	Mode   string `toml:"mode"`
	Filter string `toml:"filter"`
}

// Validate checks if the Query is valid
func (q *Query) Validate() error {
	if _, err := types.ParseMode(q.Mode); err != nil {
		return goerr.Wrap(err, "invalid query mode")
	}
	if q.Filter == "" {
		return goerr.New("query filter is required", goerr.V("mode", q.Mode))
	}
	return nil
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	if a.Thresholds.WeekendMin < 0 || a.Thresholds.CriticalMin < 0 || a.Thresholds.DefaultMin < 0 {
		return goerr.New("thresholds must not be negative")
	}

	if a.HistoryPick != "" {
		if !domainConfig.HistoryPick(a.HistoryPick).IsValid() {
			return goerr.New("invalid history_pick", goerr.V("value", a.HistoryPick))
		}
	}

	seen := make(map[string]bool)
	for _, q := range a.Queries {
		if err := q.Validate(); err != nil {
			return goerr.Wrap(err, "invalid query")
		}
		if seen[q.Mode] {
			return goerr.New("duplicate query mode", goerr.V("mode", q.Mode))
		}
		seen[q.Mode] = true
	}

	return nil
}

// Flags returns CLI flags for the app configuration
func (a *AppConfig) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Usage:   "Path to the triage rule configuration TOML file",
			Sources: cli.EnvVars("QUEUEWATCH_CONFIG"),
		},
	}
}

// Configure loads the configuration file named by the --config flag and
// converts it to the domain triage configuration. Without a file the
// built-in defaults apply unchanged.
func (a *AppConfig) Configure(c *cli.Command) (*domainConfig.TriageConfig, error) {
	path := c.String("config")
	if path == "" {
		return domainConfig.DefaultTriageConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", path))
	}

	if err := toml.Unmarshal(data, a); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML config", goerr.V("path", path))
	}

	if err := a.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V("path", path))
	}

	return a.ToTriageConfig(), nil
}

// ToTriageConfig converts AppConfig to the domain triage configuration,
// layering file values over the defaults.
func (a *AppConfig) ToTriageConfig() *domainConfig.TriageConfig {
	cfg := domainConfig.DefaultTriageConfig()

	if len(a.AlwaysUrgent) > 0 {
		cfg.AlwaysUrgent = a.AlwaysUrgent
	}
	if a.Thresholds.WeekendMin > 0 {
		cfg.WeekendThresholdMin = a.Thresholds.WeekendMin
	}
	if a.Thresholds.CriticalMin > 0 {
		cfg.CriticalThresholdMin = a.Thresholds.CriticalMin
	}
	if a.Thresholds.DefaultMin > 0 {
		cfg.DefaultThresholdMin = a.Thresholds.DefaultMin
	}
	if a.Timezone.Name != "" {
		cfg.Location = time.FixedZone(a.Timezone.Name, a.Timezone.OffsetMinutes*60)
	}
	if a.HistoryPick != "" {
		cfg.HistoryPick = domainConfig.HistoryPick(a.HistoryPick)
	}
	if a.CommentMarker != "" {
		cfg.CommentMarker = a.CommentMarker
	}
	for _, q := range a.Queries {
		mode, _ := types.ParseMode(q.Mode)
		cfg.Queries[mode] = q.Filter
	}

	return cfg
}
