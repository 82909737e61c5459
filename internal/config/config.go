// Package config loads analyzer configuration from defaults, an optional
// config file, RESUME_ANALYZER_* environment variables and command flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, with dots in keys
// replaced by underscores (server.port -> RESUME_ANALYZER_SERVER_PORT).
const EnvPrefix = "RESUME_ANALYZER"

// Config is the full runtime configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" json:"server"`
	Analysis  AnalysisConfig  `mapstructure:"analysis" json:"analysis"`
	Taxonomy  TaxonomyConfig  `mapstructure:"taxonomy" json:"taxonomy"`
	Database  DatabaseConfig  `mapstructure:"database" json:"database"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit" json:"ratelimit"`
	Fetch     FetchConfig     `mapstructure:"fetch" json:"fetch"`
	Log       LogConfig       `mapstructure:"log" json:"log"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int           `mapstructure:"port" json:"port" validate:"min=1,max=65535"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes" json:"max_upload_bytes" validate:"gt=0"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout" json:"read_timeout" validate:"gt=0"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout" json:"write_timeout" validate:"gt=0"`
}

// AnalysisConfig tunes the analysis pipeline.
type AnalysisConfig struct {
	MinJobDescriptionLength int    `mapstructure:"min_job_description_length" json:"min_job_description_length" validate:"gte=0"`
	ExtendedSymbols         bool   `mapstructure:"extended_symbols" json:"extended_symbols"`
	BatchConcurrency        int    `mapstructure:"batch_concurrency" json:"batch_concurrency" validate:"min=1,max=64"`
	JobFormat               string `mapstructure:"job_format" json:"job_format" validate:"omitempty,oneof=text html"`
}

// TaxonomyConfig points at an optional taxonomy file. Empty uses the built-in table.
type TaxonomyConfig struct {
	Path string `mapstructure:"path" json:"path"`
}

// DatabaseConfig selects the optional history store.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" json:"driver" validate:"omitempty,oneof=postgres sqlite"`
	URL    string `mapstructure:"url" json:"-" validate:"required_with=Driver"`
}

// Enabled reports whether a history store is configured.
func (d DatabaseConfig) Enabled() bool {
	return d.Driver != ""
}

// RateLimitConfig configures per-client request limiting.
type RateLimitConfig struct {
	Enabled           bool     `mapstructure:"enabled" json:"enabled"`
	RequestsPerMinute int      `mapstructure:"requests_per_minute" json:"requests_per_minute" validate:"gte=0"`
	Burst             int      `mapstructure:"burst" json:"burst" validate:"gte=0"`
	Whitelist         []string `mapstructure:"whitelist" json:"whitelist,omitempty" validate:"dive,ip"`
	Blacklist         []string `mapstructure:"blacklist" json:"blacklist,omitempty" validate:"dive,ip"`
}

// FetchConfig controls downloading job postings by URL.
type FetchConfig struct {
	Timeout         time.Duration `mapstructure:"timeout" json:"timeout" validate:"gt=0"`
	UserAgent       string        `mapstructure:"user_agent" json:"user_agent"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes" json:"max_body_bytes" validate:"gt=0"`
	BrowserFallback bool          `mapstructure:"browser_fallback" json:"browser_fallback"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Debug bool `mapstructure:"debug" json:"debug"`
	JSON  bool `mapstructure:"json" json:"json"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:           8080,
			MaxUploadBytes: 16 << 20,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   60 * time.Second,
		},
		Analysis: AnalysisConfig{
			MinJobDescriptionLength: 10,
			BatchConcurrency:        4,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 60,
			Burst:             10,
		},
		Fetch: FetchConfig{
			Timeout:      30 * time.Second,
			MaxBodyBytes: 5 << 20,
		},
	}
}

// NewViper returns a viper instance with defaults registered and environment
// lookup enabled. Callers bind command flags to it before calling Load.
func NewViper() *viper.Viper {
	v := viper.New()

	d := Defaults()
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.max_upload_bytes", d.Server.MaxUploadBytes)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("analysis.min_job_description_length", d.Analysis.MinJobDescriptionLength)
	v.SetDefault("analysis.extended_symbols", d.Analysis.ExtendedSymbols)
	v.SetDefault("analysis.batch_concurrency", d.Analysis.BatchConcurrency)
	v.SetDefault("analysis.job_format", d.Analysis.JobFormat)
	v.SetDefault("taxonomy.path", d.Taxonomy.Path)
	v.SetDefault("database.driver", d.Database.Driver)
	v.SetDefault("database.url", d.Database.URL)
	v.SetDefault("ratelimit.enabled", d.RateLimit.Enabled)
	v.SetDefault("ratelimit.requests_per_minute", d.RateLimit.RequestsPerMinute)
	v.SetDefault("ratelimit.burst", d.RateLimit.Burst)
	v.SetDefault("ratelimit.whitelist", []string{})
	v.SetDefault("ratelimit.blacklist", []string{})
	v.SetDefault("fetch.timeout", d.Fetch.Timeout)
	v.SetDefault("fetch.user_agent", d.Fetch.UserAgent)
	v.SetDefault("fetch.max_body_bytes", d.Fetch.MaxBodyBytes)
	v.SetDefault("fetch.browser_fallback", d.Fetch.BrowserFallback)
	v.SetDefault("log.debug", d.Log.Debug)
	v.SetDefault("log.json", d.Log.JSON)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// DATABASE_URL is the conventional name and is honoured as a fallback.
	_ = v.BindEnv("database.url", EnvPrefix+"_DATABASE_URL", "DATABASE_URL")

	return v
}

// Load reads the optional config file at path into v and decodes and
// validates the merged result.
func Load(v *viper.Viper, path string) (*Config, error) {
	if v == nil {
		v = NewViper()
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field ranges. A database URL without a driver is allowed
// and leaves the history store disabled.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return fmt.Errorf("config error: %s failed %q validation", first.Namespace(), first.Tag())
		}
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}
