package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/jonesrussell/feedgist/internal/logger"
	"github.com/jonesrussell/feedgist/internal/scrape"
	"github.com/jonesrussell/feedgist/internal/selector"
)

// Default values.
const (
	DefaultAppName        = "feedgist"
	DefaultFetchTimeout   = "5s"
	DefaultMaxAttempts    = 2
	DefaultRetryDelay     = "500ms"
	DefaultMaxBodyBytes   = 10 << 20
	DefaultUserAgent      = "feedgist/1.0 (+https://github.com/jonesrussell/feedgist)"
	DefaultPageTimeout    = "30s"
	DefaultConsentTimeout = "10s"
	DefaultSettleDelay    = "2s"
	DefaultExtractTimeout = "120s"
	DefaultGistAPIURL     = "https://api.github.com"
	DefaultPublishTimeout = "30s"
	DefaultCron           = "0 7 * * *"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", DefaultAppName)
	v.SetDefault("app.environment", EnvProduction)
	v.SetDefault("app.debug", false)

	v.SetDefault("logging.level", logger.DefaultLevel)
	v.SetDefault("logging.format", logger.DefaultFormat)
	v.SetDefault("logging.development", false)
	v.SetDefault("logging.output_paths", logger.DefaultOutputPaths)

	v.SetDefault("fetcher.timeout", DefaultFetchTimeout)
	v.SetDefault("fetcher.max_attempts", DefaultMaxAttempts)
	v.SetDefault("fetcher.retry_delay", DefaultRetryDelay)
	v.SetDefault("fetcher.max_body_bytes", DefaultMaxBodyBytes)
	v.SetDefault("fetcher.user_agent", DefaultUserAgent)

	v.SetDefault("selector.quota", selector.DefaultQuota)
	v.SetDefault("selector.candidate_cap", selector.DefaultCandidateCap)
	v.SetDefault("selector.min_text_length", selector.DefaultMinTextLength)

	v.SetDefault("scraper.mode", ScraperModeBrowser)
	v.SetDefault("scraper.exec_path", "")
	v.SetDefault("scraper.headless", true)
	v.SetDefault("scraper.user_agent", "")
	v.SetDefault("scraper.page_timeout", DefaultPageTimeout)
	v.SetDefault("scraper.consent_timeout", DefaultConsentTimeout)
	v.SetDefault("scraper.settle_delay", DefaultSettleDelay)
	v.SetDefault("scraper.consent_labels", scrape.DefaultConsentLabels)
	v.SetDefault("scraper.consent_xpaths", []string{})

	v.SetDefault("extractor.provider", ProviderGemini)
	v.SetDefault("extractor.api_key", "")
	v.SetDefault("extractor.base_url", "")
	v.SetDefault("extractor.model", "")
	v.SetDefault("extractor.max_tokens", 0)
	v.SetDefault("extractor.simplify_html", false)
	v.SetDefault("extractor.max_input_chars", 0)
	v.SetDefault("extractor.timeout", DefaultExtractTimeout)

	v.SetDefault("publisher.api_url", DefaultGistAPIURL)
	v.SetDefault("publisher.token", "")
	v.SetDefault("publisher.public", true)
	v.SetDefault("publisher.timeout", DefaultPublishTimeout)

	v.SetDefault("metrics.pushgateway_url", "")
	v.SetDefault("metrics.job", DefaultAppName)

	v.SetDefault("schedule.cron", DefaultCron)
}

// bindEnv maps the conventional environment variable names onto config keys.
// Keys not listed here are still reachable through AutomaticEnv (FETCHER_TIMEOUT, ...).
func bindEnv(v *viper.Viper) error {
	bindings := []struct {
		key  string
		envs []string
	}{
		{"app.environment", []string{"APP_ENV"}},
		{"app.debug", []string{"APP_DEBUG"}},
		{"logging.level", []string{"LOG_LEVEL"}},
		{"logging.format", []string{"LOG_FORMAT"}},
		{"publisher.token", []string{"GIST_TOKEN", "PEPOGIT_TOKEN"}},
		{"extractor.api_key", []string{"EXTRACTOR_API_KEY"}},
		{"extractor.provider", []string{"EXTRACTOR_PROVIDER"}},
		{"metrics.pushgateway_url", []string{"PUSHGATEWAY_URL"}},
		{"schedule.cron", []string{"FEEDGIST_CRON"}},
	}

	for _, b := range bindings {
		args := append([]string{b.key}, b.envs...)
		if err := v.BindEnv(args...); err != nil {
			return &ViperError{Operation: fmt.Sprintf("bind %s", b.key), Err: err}
		}
	}

	return nil
}
