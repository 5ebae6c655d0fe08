package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/fundnav"
	"github.com/etnz/fundnav/agent"
	"github.com/etnz/fundnav/eodhd"
	"github.com/etnz/fundnav/yahoo"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
)

// Feed providers.
const (
	ProviderYahoo = "yahoo"
	ProviderEODHD = "eodhd"
)

// Config is the content of the fnav configuration file.
type Config struct {
	Currency string        `toml:"currency"` // Currency, when set, is the currency every ledger must use.
	Feed     FeedConfig    `toml:"feed"`
	Report   ReportConfig  `toml:"report"`
	Logging  LoggingConfig `toml:"logging"`
}

// FeedConfig selects and configures the price feed.
type FeedConfig struct {
	Provider  string `toml:"provider"`  // "yahoo" or "eodhd"
	Benchmark string `toml:"benchmark"` // Benchmark is the ticker whose trading days make the calendar.
	Suffix    string `toml:"suffix"`    // Suffix is appended to tickers without exchange.
	APIKey    string `toml:"api_key"`
	Cache     string `toml:"cache"` // Cache is the directory of the eodhd response cache.
}

// ReportConfig configures the reports written by fnav run.
type ReportConfig struct {
	Output  string `toml:"output"`  // Output is the directory reports are written to.
	Narrate bool   `toml:"narrate"` // Narrate adds a model written commentary to reports.
	Model   string `toml:"model"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// NewDefaultConfig returns a Config with defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Feed:    FeedConfig{Provider: ProviderYahoo},
		Report:  ReportConfig{Output: "reports", Model: agent.DefaultModel},
		Logging: LoggingConfig{Level: "info"},
	}
}

// LoadConfig loads configuration files, later files override earlier ones,
// then applies environment overrides. Missing files are skipped.
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()
	for _, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, &fundnav.Error{Kind: fundnav.ErrConfiguration, Err: fmt.Errorf("failed to parse config file %s: %w", path, err)}
		}
	}
	applyEnvOverrides(config)
	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("FNAV_BENCHMARK"); v != "" {
		config.Feed.Benchmark = v
	}
	if v := os.Getenv("FNAV_PROVIDER"); v != "" {
		config.Feed.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("FNAV_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if config.Feed.APIKey == "" {
		for _, env := range []string{"FNAV_EODHD_API_KEY", "EODHD_API_KEY"} {
			if v := os.Getenv(env); v != "" {
				config.Feed.APIKey = v
				break
			}
		}
	}
}

// Validate checks the configuration of a replay.
func (c *Config) Validate() error {
	if c.Feed.Benchmark == "" {
		return &fundnav.Error{Kind: fundnav.ErrConfiguration, Err: errors.New("no benchmark configured, set [feed] benchmark")}
	}
	if c.Currency != "" {
		if err := fundnav.ValidateCurrency(c.Currency); err != nil {
			return &fundnav.Error{Kind: fundnav.ErrConfiguration, Err: err}
		}
	}
	switch c.Feed.Provider {
	case ProviderYahoo:
	case ProviderEODHD:
		if c.Feed.APIKey == "" {
			return &fundnav.Error{Kind: fundnav.ErrConfiguration, Err: errors.New("eodhd requires an API key, set [feed] api_key or FNAV_EODHD_API_KEY")}
		}
	default:
		return &fundnav.Error{Kind: fundnav.ErrConfiguration, Err: fmt.Errorf("unknown feed provider %q", c.Feed.Provider)}
	}
	return nil
}

// NewFeed creates the configured price feed.
func (c *Config) NewFeed(log zerolog.Logger) (fundnav.PriceFeed, error) {
	switch c.Feed.Provider {
	case ProviderYahoo:
		f := yahoo.New()
		f.Suffix = c.Feed.Suffix
		f.Log = log.With().Str("feed", ProviderYahoo).Logger()
		return f, nil
	case ProviderEODHD:
		return c.eodhd(log), nil
	default:
		return nil, &fundnav.Error{Kind: fundnav.ErrConfiguration, Err: fmt.Errorf("unknown feed provider %q", c.Feed.Provider)}
	}
}

func (c *Config) eodhd(log zerolog.Logger) *eodhd.Feed {
	f := eodhd.New(c.Feed.APIKey)
	f.Suffix = c.Feed.Suffix
	f.CacheDir = c.Feed.Cache
	f.Log = log.With().Str("feed", ProviderEODHD).Logger()
	return f
}
