package config

import (
	"fmt"
	"net/url"
	"runtime"
	"time"

	"github.com/spf13/viper"
)

// Config holds all crawl configuration. It is validated exactly once before
// the controller starts; nothing re-derives option values per task.
type Config struct {
	FollowLinks    bool          `mapstructure:"follow_links"`
	MaxDepth       int           `mapstructure:"max_depth"`
	Concurrency    int           `mapstructure:"concurrency"`
	Workers        int           `mapstructure:"workers"`
	Sitemap        string        `mapstructure:"sitemap"`
	OutputFormat   string        `mapstructure:"output_format"`
	UserAgent      string        `mapstructure:"user_agent"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	LogLevel       string        `mapstructure:"log_level"`
}

// ConfigError reports an invalid option value. It is the only error class
// that aborts a run before any fetch begins.
type ConfigError struct {
	Option string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config option %s: %s", e.Option, e.Reason)
}

// Load reads configuration from an optional YAML file, the environment and
// defaults. Command-line flags are applied by the caller on top.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("seosmith")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.seosmith")
	}

	setDefaults(v)

	v.SetEnvPrefix("SEOSMITH")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Missing config file is fine, defaults and env apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("follow_links", false)
	v.SetDefault("max_depth", 3)
	v.SetDefault("concurrency", 20)
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("output_format", "json")
	v.SetDefault("user_agent", "SEOSmith/1.0")
	v.SetDefault("request_timeout", "15s")
	v.SetDefault("log_level", "info")
}

// Validate checks option bounds and the sitemap URL. A non-nil return is a
// fatal ConfigError.
func (c *Config) Validate() error {
	if c.MaxDepth < 0 {
		return &ConfigError{Option: "max_depth", Reason: "must not be negative"}
	}
	if c.Concurrency <= 0 {
		return &ConfigError{Option: "concurrency", Reason: "must be positive"}
	}
	if c.Workers <= 0 {
		return &ConfigError{Option: "workers", Reason: "must be positive"}
	}
	if c.RequestTimeout <= 0 {
		return &ConfigError{Option: "request_timeout", Reason: "must be positive"}
	}
	if c.OutputFormat != "json" && c.OutputFormat != "html" {
		return &ConfigError{Option: "output_format", Reason: "must be json or html"}
	}
	if c.Sitemap != "" {
		u, err := url.Parse(c.Sitemap)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return &ConfigError{Option: "sitemap", Reason: "must be an absolute URL"}
		}
	}
	return nil
}

// ValidateStartURL checks the crawl seed before any fetch begins.
func ValidateStartURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return &ConfigError{Option: "start_url", Reason: err.Error()}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &ConfigError{Option: "start_url", Reason: "scheme must be http or https"}
	}
	if u.Host == "" {
		return &ConfigError{Option: "start_url", Reason: "missing host"}
	}
	return nil
}
