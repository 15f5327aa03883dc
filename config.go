package qbt

import (
	"fmt"
	"strings"
	"time"

	"github.com/jfxdev/go-qbt-add/request"
	"github.com/spf13/viper"
)

const (
	DefaultRequestTimeout      = 30 * time.Second
	DefaultFileReadConcurrency = defaultFileReadConcurrency
	DefaultLogLevel            = "info"
	DefaultLogFormat           = "console"
)

// Config contains runtime client settings and credentials.
type Config struct {
	BaseURL  string `mapstructure:"base_url"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`

	// RequestTimeout bounds every HTTP call made by the default transport.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	// RateLimit throttles sends, e.g. "10/second" or "60/minute". Empty means unlimited.
	RateLimit string `mapstructure:"rate_limit"`
	// FileReadConcurrency caps parallel .torrent reads while building an upload.
	FileReadConcurrency int `mapstructure:"file_read_concurrency"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	// LogFile, when set, also writes logs to a rotating file.
	LogFile string `mapstructure:"log_file"`
	// Debug forces the debug log level.
	Debug bool `mapstructure:"debug"`
}

func (c Config) withDefaults() Config {
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.FileReadConcurrency <= 0 {
		c.FileReadConcurrency = DefaultFileReadConcurrency
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	return c
}

// LoadConfig reads configuration from path (yaml, json or toml) and from
// QBT_* environment variables. An empty path reads the environment only.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("qbt")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("base_url", "http://localhost:8080")
	v.SetDefault("username", "")
	v.SetDefault("password", "")
	v.SetDefault("request_timeout", DefaultRequestTimeout)
	v.SetDefault("rate_limit", "")
	v.SetDefault("file_read_concurrency", DefaultFileReadConcurrency)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_format", DefaultLogFormat)
	v.SetDefault("log_file", "")
	v.SetDefault("debug", false)
}

func (c Config) validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("base_url must start with http:// or https://: %s", c.BaseURL)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log_level: %s", c.LogLevel)
	}

	if c.RateLimit != "" && request.ParseRateLimit(c.RateLimit) == nil {
		return fmt.Errorf("invalid rate_limit %q: want N/second or N/minute", c.RateLimit)
	}

	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[strings.ToLower(c.LogFormat)] {
		return fmt.Errorf("invalid log_format: %s", c.LogFormat)
	}

	return nil
}
