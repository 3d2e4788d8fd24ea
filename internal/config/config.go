// Package config resolves truffles settings. Defaults come from TRUFFLES_*
// environment variables; flags and the config file override them only when
// explicitly set.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/spf13/viper"

	"github.com/jmylchreest/truffles/internal/logger"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "TRUFFLES_"

// Config holds runtime settings.
type Config struct {
	DataDir   string        `env:"DATA_DIR"`
	Throttle  time.Duration `env:"THROTTLE" envDefault:"1s"`
	Freshness time.Duration `env:"FRESHNESS" envDefault:"720h"`
	Timeout   time.Duration `env:"TIMEOUT" envDefault:"30s"`
	UserAgent string        `env:"USER_AGENT"`
	LogLevel  string        `env:"LOG_LEVEL" envDefault:"warn"`
	LogFile   string        `env:"LOG_FILE"`
	LogJSON   bool          `env:"LOG_JSON"`
	SeedsFile string        `env:"SEEDS_FILE"`
}

// Load reads the environment and fills derived defaults: the data directory
// is ~/.truffles and the log file lives inside it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("locate home directory: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".truffles")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Apply overrides fields with values explicitly set in v, from flags or the
// config file. Keys match the long flag names.
func (c *Config) Apply(v *viper.Viper) error {
	if v.IsSet("data-dir") {
		c.DataDir = v.GetString("data-dir")
	}
	if v.IsSet("throttle") {
		d, err := ParseInterval(v.GetString("throttle"))
		if err != nil {
			return fmt.Errorf("throttle: %w", err)
		}
		c.Throttle = d
	}
	if v.IsSet("freshness") {
		d, err := ParseFreshness(v.GetString("freshness"))
		if err != nil {
			return fmt.Errorf("freshness: %w", err)
		}
		c.Freshness = d
	}
	if v.IsSet("timeout") {
		c.Timeout = v.GetDuration("timeout")
	}
	if v.IsSet("user-agent") {
		c.UserAgent = v.GetString("user-agent")
	}
	if v.IsSet("level") {
		c.LogLevel = v.GetString("level")
	}
	if v.IsSet("log-file") {
		c.LogFile = v.GetString("log-file")
	}
	if v.IsSet("log-json") {
		c.LogJSON = v.GetBool("log-json")
	}
	if v.IsSet("seeds") {
		c.SeedsFile = v.GetString("seeds")
	}
	return c.Validate()
}

// Validate rejects settings no command can run with.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory is required")
	}
	if c.Throttle < 0 {
		return fmt.Errorf("throttle must not be negative: %s", c.Throttle)
	}
	if c.Freshness < 0 {
		return fmt.Errorf("freshness must not be negative: %s", c.Freshness)
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// LogPath returns the log file, defaulting to truffles.log in the data
// directory. "-" disables the file.
func (c *Config) LogPath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return filepath.Join(c.DataDir, "truffles.log")
}

// ParseInterval accepts a Go duration ("1.5s", "720h") or a bare number of
// milliseconds.
func ParseInterval(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		if ms < 0 {
			return 0, fmt.Errorf("negative interval %q", s)
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid interval %q: %w", s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("negative interval %q", s)
	}
	return d, nil
}

// ParseFreshness reads a freshness window. A unit is required: a Go duration
// ("720h") or a number of days ("30d"). "0" refetches every listing.
func ParseFreshness(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "0" {
		return 0, nil
	}

	var d time.Duration
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.ParseUint(days, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid freshness %q: %w", s, err)
		}
		d = time.Duration(n) * 24 * time.Hour
	} else {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("invalid freshness %q, expected e.g. 30d or 720h: %w", s, err)
		}
		d = parsed
	}
	if d < 0 {
		return 0, fmt.Errorf("negative freshness %q", s)
	}
	return d, nil
}
