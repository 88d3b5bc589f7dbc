// Package config loads feedgist configuration from an optional YAML file,
// environment variables, and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jonesrussell/feedgist/internal/domain"
	"github.com/jonesrussell/feedgist/internal/logger"
)

// Scraper modes.
const (
	ScraperModeBrowser = "browser"
	ScraperModeHTTP    = "http"
)

// Extractor providers.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Environments.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// providerKeyEnv is consulted when extractor.api_key is unset.
var providerKeyEnv = map[string]string{
	ProviderGemini:    "GEMINI_API_KEY",
	ProviderOpenAI:    "OPENAI_API_KEY",
	ProviderAnthropic: "ANTHROPIC_API_KEY",
}

// Config is the complete, read-only configuration of a process.
type Config struct {
	App       AppConfig           `mapstructure:"app"`
	Logging   logger.Config       `mapstructure:"logging"`
	Sources   []domain.FeedSource `mapstructure:"sources"`
	Fetcher   FetcherConfig       `mapstructure:"fetcher"`
	Selector  SelectorConfig      `mapstructure:"selector"`
	Scraper   ScraperConfig       `mapstructure:"scraper"`
	Extractor ExtractorConfig     `mapstructure:"extractor"`
	Publisher PublisherConfig     `mapstructure:"publisher"`
	Metrics   MetricsConfig       `mapstructure:"metrics"`
	Schedule  ScheduleConfig      `mapstructure:"schedule"`
}

// AppConfig identifies the process.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
}

// FetcherConfig controls feed downloads.
type FetcherConfig struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
	RetryDelay   time.Duration `mapstructure:"retry_delay"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
	UserAgent    string        `mapstructure:"user_agent"`
}

// SelectorConfig bounds candidate selection.
type SelectorConfig struct {
	Quota         int `mapstructure:"quota"`
	CandidateCap  int `mapstructure:"candidate_cap"`
	MinTextLength int `mapstructure:"min_text_length"`
}

// ScraperConfig selects and tunes the page scraper.
type ScraperConfig struct {
	Mode           string        `mapstructure:"mode"`
	ExecPath       string        `mapstructure:"exec_path"`
	Headless       bool          `mapstructure:"headless"`
	UserAgent      string        `mapstructure:"user_agent"`
	PageTimeout    time.Duration `mapstructure:"page_timeout"`
	ConsentTimeout time.Duration `mapstructure:"consent_timeout"`
	SettleDelay    time.Duration `mapstructure:"settle_delay"`
	ConsentLabels  []string      `mapstructure:"consent_labels"`
	ConsentXPaths  []string      `mapstructure:"consent_xpaths"`
}

// ExtractorConfig selects the language model used to produce markdown.
type ExtractorConfig struct {
	Provider      string        `mapstructure:"provider"`
	APIKey        string        `mapstructure:"api_key"`
	BaseURL       string        `mapstructure:"base_url"`
	Model         string        `mapstructure:"model"`
	MaxTokens     int64         `mapstructure:"max_tokens"`
	SimplifyHTML  bool          `mapstructure:"simplify_html"`
	MaxInputChars int           `mapstructure:"max_input_chars"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// PublisherConfig points at the gist API.
type PublisherConfig struct {
	APIURL  string        `mapstructure:"api_url"`
	Token   string        `mapstructure:"token"`
	Public  bool          `mapstructure:"public"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// MetricsConfig enables pushing run metrics to a Prometheus Pushgateway.
type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	Job            string `mapstructure:"job"`
}

// ScheduleConfig drives the schedule command.
type ScheduleConfig struct {
	Cron string `mapstructure:"cron"`
}

// NewViper builds a viper instance with defaults, the optional config file, and
// environment bindings applied. An explicit cfgFile must exist; the default
// search for config.yaml in . and ./config may come up empty.
func NewViper(cfgFile string) (*viper.Viper, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, &ViperError{Operation: "read config", Err: err}
		}
	}

	if err := bindEnv(v); err != nil {
		return nil, err
	}

	return v, nil
}

// Load decodes v into a Config, fills the default registry when none is
// configured, and validates the result.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ViperError{Operation: "unmarshal", Err: err}
	}

	if len(cfg.Sources) == 0 {
		sources, err := DefaultSources()
		if err != nil {
			return nil, err
		}
		cfg.Sources = sources
	}

	applyEnvFallbacks(&cfg)

	if cfg.App.Debug {
		cfg.Logging.Level = "debug"
	}
	if cfg.App.Environment == EnvDevelopment {
		cfg.Logging.Development = true
		cfg.Logging.Format = logger.FormatConsole
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnvFallbacks resolves provider-specific API key variables.
func applyEnvFallbacks(cfg *Config) {
	if cfg.Extractor.APIKey == "" {
		if name, ok := providerKeyEnv[cfg.Extractor.Provider]; ok {
			cfg.Extractor.APIKey = os.Getenv(name)
		}
	}
}

// Validate checks structural constraints. Credentials are checked separately
// by RequireCredentials since read-only commands do not need them.
func (c *Config) Validate() error {
	if _, err := NewRegistry(c.Sources); err != nil {
		return err
	}

	checks := []struct {
		ok     bool
		field  string
		value  any
		reason string
	}{
		{c.Fetcher.Timeout > 0, "fetcher.timeout", c.Fetcher.Timeout, "must be positive"},
		{c.Fetcher.MaxAttempts >= 1, "fetcher.max_attempts", c.Fetcher.MaxAttempts, "must be at least 1"},
		{c.Fetcher.RetryDelay >= 0, "fetcher.retry_delay", c.Fetcher.RetryDelay, "must not be negative"},
		{c.Selector.Quota > 0, "selector.quota", c.Selector.Quota, "must be positive"},
		{c.Selector.CandidateCap > 0, "selector.candidate_cap", c.Selector.CandidateCap, "must be positive"},
		{c.Selector.MinTextLength > 0, "selector.min_text_length", c.Selector.MinTextLength, "must be positive"},
		{
			c.Scraper.Mode == ScraperModeBrowser || c.Scraper.Mode == ScraperModeHTTP,
			"scraper.mode", c.Scraper.Mode, "must be browser or http",
		},
		{c.Scraper.PageTimeout > 0, "scraper.page_timeout", c.Scraper.PageTimeout, "must be positive"},
		{c.Scraper.ConsentTimeout >= 0, "scraper.consent_timeout", c.Scraper.ConsentTimeout, "must not be negative"},
		{c.Scraper.SettleDelay >= 0, "scraper.settle_delay", c.Scraper.SettleDelay, "must not be negative"},
		{isProvider(c.Extractor.Provider), "extractor.provider", c.Extractor.Provider, "must be gemini, openai or anthropic"},
		{c.Extractor.MaxInputChars >= 0, "extractor.max_input_chars", c.Extractor.MaxInputChars, "must not be negative"},
		{c.Publisher.APIURL != "", "publisher.api_url", c.Publisher.APIURL, "must not be empty"},
	}

	for _, check := range checks {
		if !check.ok {
			return &ValidationError{Field: check.field, Value: check.value, Reason: check.reason}
		}
	}

	return nil
}

// RequireCredentials reports a missing extractor key, or a missing gist token
// unless publishing is skipped.
func (c *Config) RequireCredentials(skipPublish bool) error {
	if c.Extractor.APIKey == "" {
		return fmt.Errorf("%w: extractor api key (set EXTRACTOR_API_KEY or %s)",
			ErrMissingCredential, providerKeyEnv[c.Extractor.Provider])
	}
	if !skipPublish && c.Publisher.Token == "" {
		return fmt.Errorf("%w: gist token (set GIST_TOKEN or PEPOGIT_TOKEN)", ErrMissingCredential)
	}

	return nil
}

// Registry builds the feed registry from the validated sources.
func (c *Config) Registry() (*Registry, error) {
	return NewRegistry(c.Sources)
}

func isProvider(name string) bool {
	_, ok := providerKeyEnv[name]
	return ok
}
