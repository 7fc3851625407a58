package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/aevon-lab/event-replay/internal/core/ledger"
	"github.com/aevon-lab/event-replay/internal/core/linkage"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"golang.org/x/text/language"
)

// EnvPrefix marks environment variables read as config overrides.
// REPLAY_DATA__DIR sets data.dir.
const EnvPrefix = "REPLAY_"

// Config represents the top-level configuration for a replay run plus the
// resolved linkage rules.
type Config struct {
	Data    DataConfig    `koanf:"data"`
	Linkage LinkageConfig `koanf:"linkage"`
	Ledger  LedgerConfig  `koanf:"ledger"`
	Report  ReportConfig  `koanf:"report"`
	Log     LogConfig     `koanf:"log"`

	// LinkRules is populated by Load from linkage.rules_dir.
	LinkRules []linkage.Rule `koanf:"-"`
}

// DataConfig locates the event tables.
type DataConfig struct {
	Dir          string   `koanf:"dir"`
	FallbackDirs []string `koanf:"fallback_dirs"` // probed in order when dir is absent
	Extension    string   `koanf:"extension"`
	Tables       []string `koanf:"tables"` // replay and report order
}

type LinkageConfig struct {
	PrimaryTable string `koanf:"primary_table"`
	RulesDir     string `koanf:"rules_dir"` // empty: built-in account rules
}

type LedgerConfig struct {
	Rules []ledger.Rule `koanf:"rules"`
}

type ReportConfig struct {
	TimeFormat string `koanf:"time_format"`
	Timezone   string `koanf:"timezone"`
	Language   string `koanf:"language"` // BCP 47 tag for number formatting
}

type LogConfig struct {
	Level  string `koanf:"level"`  // debug | info | warn | error
	Format string `koanf:"format"` // text | json
}

// Location resolves report.timezone.
func (c ReportConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// Tag resolves report.language.
func (c ReportConfig) Tag() (language.Tag, error) {
	return language.Parse(c.Language)
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Data.Dir) == "" {
		return fmt.Errorf("data.dir is required")
	}
	if len(c.Data.Tables) == 0 {
		return fmt.Errorf("data.tables must list at least one table")
	}
	seen := make(map[string]bool, len(c.Data.Tables))
	for _, table := range c.Data.Tables {
		if strings.TrimSpace(table) == "" {
			return fmt.Errorf("data.tables contains an empty table name")
		}
		if strings.ContainsAny(table, `/\`) {
			return fmt.Errorf("invalid table name %q in data.tables", table)
		}
		if seen[table] {
			return fmt.Errorf("duplicate table %q in data.tables", table)
		}
		seen[table] = true
	}

	if c.Linkage.PrimaryTable != "" && !seen[c.Linkage.PrimaryTable] {
		return fmt.Errorf("linkage.primary_table %q is not listed in data.tables", c.Linkage.PrimaryTable)
	}

	for _, rule := range c.Ledger.Rules {
		if err := rule.Validate(); err != nil {
			return err
		}
	}

	if strings.TrimSpace(c.Report.TimeFormat) == "" {
		return fmt.Errorf("report.time_format is required")
	}
	if _, err := c.Report.Location(); err != nil {
		return fmt.Errorf("invalid report.timezone %q: %w", c.Report.Timezone, err)
	}
	if _, err := c.Report.Tag(); err != nil {
		return fmt.Errorf("invalid report.language %q: %w", c.Report.Language, err)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level %q (must be debug, info, warn or error)", c.Log.Level)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("invalid log.format %q (must be text or json)", c.Log.Format)
	}

	return nil
}

// Load parses config from defaults, file and env, validates it, then loads the linkage rules.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"data.dir":              "data",
		"data.fallback_dirs":    []string{"../data", "../../data"},
		"data.extension":        ".json",
		"data.tables":           []string{"accounts", "cards", "savings_accounts"},
		"linkage.primary_table": "accounts",
		"linkage.rules_dir":     "",
		"report.time_format":    "2006-01-02 15:04:05",
		"report.timezone":       "Local",
		"report.language":       "en",
		"log.level":             "info",
		"log.format":            "text",
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if len(cfg.Ledger.Rules) == 0 {
		cfg.Ledger.Rules = ledger.DefaultRules()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rules, err := linkage.LoadRules(cfg.Linkage.RulesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load linkage rules: %w", err)
	}
	cfg.LinkRules = rules

	return &cfg, nil
}
