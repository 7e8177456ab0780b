// Package config loads mailtl settings from a config file, MAILTL_*
// environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ZaguanLabs/mailtl"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "MAILTL"

type Config struct {
	Root        string          `mapstructure:"root"`
	TargetLang  string          `mapstructure:"target_lang"`
	SourceLang  string          `mapstructure:"source_lang"`
	Provider    string          `mapstructure:"provider"`
	DryRun      bool            `mapstructure:"dry_run"`
	Concurrency int             `mapstructure:"concurrency"`
	SetHTMLLang bool            `mapstructure:"set_html_lang"`
	IgnoredTags []string        `mapstructure:"ignored_tags"`
	Context     string          `mapstructure:"context"`
	Exclude     []string        `mapstructure:"exclude"`
	Glossary    []GlossaryEntry `mapstructure:"glossary"`
	Cache       CacheConfig     `mapstructure:"cache"`
	Retry       RetryConfig     `mapstructure:"retry"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	Google      GoogleConfig    `mapstructure:"google"`
	OpenAI      OpenAIConfig    `mapstructure:"openai"`
	Logger      LoggerConfig    `mapstructure:"logger"`
}

// GlossaryEntry is a preferred translation. It is a list item rather than a
// map entry because viper lowercases map keys.
type GlossaryEntry struct {
	Source string `mapstructure:"source"`
	Target string `mapstructure:"target"`
}

type CacheConfig struct {
	Backend   string `mapstructure:"backend"` // memory, redis or none
	TTL       int    `mapstructure:"ttl"`     // seconds, 0 = no expiration
	File      string `mapstructure:"file"`    // JSON file imported before and exported after a run
	RedisURL  string `mapstructure:"redis_url"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type RetryConfig struct {
	MaxRetries int           `mapstructure:"max_retries"`
	BaseDelay  time.Duration `mapstructure:"base_delay"`
	MaxDelay   time.Duration `mapstructure:"max_delay"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"` // 0 disables rate limiting
	Burst             int `mapstructure:"burst"`
}

type GoogleConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type LoggerConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // text or json
	Output string `mapstructure:"output"` // stderr, stdout or a file path
}

// Load reads configuration. Precedence, highest first: flags that were set,
// MAILTL_* environment variables, the config file, defaults. An empty
// configFile searches for mailtl.yaml in the usual places; a missing file is
// not an error unless configFile names it explicitly.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("mailtl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home + "/.config/mailtl")
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"lang":           "target_lang",
	"source":         "source_lang",
	"provider":       "provider",
	"dry-run":        "dry_run",
	"concurrency":    "concurrency",
	"set-lang":       "set_html_lang",
	"context":        "context",
	"exclude":        "exclude",
	"cache":          "cache.backend",
	"cache-ttl":      "cache.ttl",
	"cache-file":     "cache.file",
	"redis-url":      "cache.redis_url",
	"rpm":            "rate_limit.requests_per_minute",
	"max-retries":    "retry.max_retries",
	"model":          "openai.model",
	"api-key":        "openai.api_key",
	"log-level":      "logger.level",
	"log-format":     "logger.format",
	"google-timeout": "google.timeout",
	"google-url":     "google.base_url",
	"ignore-tags":    "ignored_tags",
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("binding flag --%s: %w", name, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("root", "")
	v.SetDefault("target_lang", mailtl.DefaultTargetLang)
	v.SetDefault("source_lang", mailtl.DefaultSourceLang)
	v.SetDefault("provider", "google")
	v.SetDefault("dry_run", false)
	v.SetDefault("concurrency", 1)
	v.SetDefault("set_html_lang", false)
	v.SetDefault("ignored_tags", []string{"script", "style", "code", "pre", "textarea", "noscript"})
	v.SetDefault("context", "")
	v.SetDefault("exclude", []string{})
	v.SetDefault("glossary", []GlossaryEntry{})

	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.ttl", 0)
	v.SetDefault("cache.file", "")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.key_prefix", "mailtl:")

	v.SetDefault("retry.max_retries", 3)
	v.SetDefault("retry.base_delay", time.Second)
	v.SetDefault("retry.max_delay", 30*time.Second)

	v.SetDefault("rate_limit.requests_per_minute", 0)
	v.SetDefault("rate_limit.burst", 0)

	v.SetDefault("google.base_url", "")
	v.SetDefault("google.timeout", 15*time.Second)

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.base_url", "")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "text")
	v.SetDefault("logger.output", "stderr")
}

// Validate checks the settings a translation run depends on.
func (c *Config) Validate() error {
	return errors.Join(c.ValidateScan(), c.validateProvider(), c.ValidateCache())
}

// ValidateScan checks the settings needed to analyze templates without
// translating them.
func (c *Config) ValidateScan() error {
	var errs []error

	if c.Root == "" {
		errs = append(errs, errors.New("root directory is required"))
	}

	if _, err := mailtl.NormalizeLocale(c.TargetLang); err != nil || c.TargetLang == mailtl.DefaultSourceLang {
		errs = append(errs, fmt.Errorf("invalid target language %q", c.TargetLang))
	}
	if _, err := mailtl.NormalizeLocale(c.SourceLang); err != nil {
		errs = append(errs, fmt.Errorf("invalid source language %q", c.SourceLang))
	}

	if c.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency))
	}

	return errors.Join(errs...)
}

// ValidateCache checks the cache settings.
func (c *Config) ValidateCache() error {
	switch c.Cache.Backend {
	case "memory", "none", "":
	case "redis":
		if c.Cache.RedisURL == "" {
			return errors.New("cache.redis_url is required for the redis cache")
		}
	default:
		return fmt.Errorf("unknown cache backend %q (want memory, redis or none)", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got %d", c.Cache.TTL)
	}
	return nil
}

func (c *Config) validateProvider() error {
	var errs []error

	switch c.Provider {
	case "google":
	case "openai":
		if c.OpenAIKey() == "" {
			errs = append(errs, errors.New("OpenAI API key required (--api-key, MAILTL_OPENAI_API_KEY or OPENAI_API_KEY)"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown provider %q (want google or openai)", c.Provider))
	}

	if c.Retry.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("retry.max_retries must not be negative, got %d", c.Retry.MaxRetries))
	}
	if c.RateLimit.RequestsPerMinute < 0 {
		errs = append(errs, fmt.Errorf("rate_limit.requests_per_minute must not be negative, got %d", c.RateLimit.RequestsPerMinute))
	}

	return errors.Join(errs...)
}

// GlossaryMap returns the glossary as source → target.
func (c *Config) GlossaryMap() map[string]string {
	if len(c.Glossary) == 0 {
		return nil
	}
	m := make(map[string]string, len(c.Glossary))
	for _, e := range c.Glossary {
		if e.Source != "" {
			m[e.Source] = e.Target
		}
	}
	return m
}

// OpenAIKey returns the configured key, falling back to OPENAI_API_KEY.
func (c *Config) OpenAIKey() string {
	if c.OpenAI.APIKey != "" {
		return c.OpenAI.APIKey
	}
	return os.Getenv("OPENAI_API_KEY")
}
