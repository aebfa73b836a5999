// Package config loads linksift settings from flags, environment variables
// and an optional YAML file through viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/btraven00/linksift/internal/logger"
	"github.com/btraven00/linksift/internal/prober"
)

// EnvPrefix is the prefix of environment variables read by Load
// (e.g. LINKSIFT_PROBE_TIMEOUT).
const EnvPrefix = "LINKSIFT"

// ErrInvalidConfig is returned when a loaded configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the complete application configuration.
type Config struct {
	// Markers overrides dead-content markers per platform name.
	Markers map[string][]string `mapstructure:"markers"`
	Log     logger.Config       `mapstructure:"log"`
	Server  ServerConfig        `mapstructure:"server"`
	Probe   prober.Config       `mapstructure:"probe"`
	Store   StoreConfig         `mapstructure:"store"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// StoreConfig configures the in-memory batch store.
type StoreConfig struct {
	// TTL is how long an unconsumed batch is kept; 0 keeps batches forever.
	TTL time.Duration `mapstructure:"ttl"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	def := prober.DefaultConfig()

	v.SetDefault("probe.timeout", def.Timeout)
	v.SetDefault("probe.concurrency", def.Concurrency)
	v.SetDefault("probe.user_agent", def.UserAgent)
	v.SetDefault("probe.max_body_bytes", def.MaxBodyBytes)
	v.SetDefault("probe.max_redirects", def.MaxRedirects)
	v.SetDefault("probe.rate_limit", def.RateLimit)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", time.Duration(0))

	v.SetDefault("store.ttl", time.Hour)
}

// BindEnv makes v read LINKSIFT_* environment variables for every key.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load applies defaults, decodes v and validates the result.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if len(cfg.Probe.Markers) == 0 && len(cfg.Markers) > 0 {
		cfg.Probe.Markers = normalizeMarkers(cfg.Markers)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	cfg, err := Load(viper.New())
	if err != nil {
		panic(err) // defaults are always valid
	}

	return cfg
}

// Validate checks the configuration for values the engine cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Probe.Timeout <= 0:
		return fmt.Errorf("%w: probe.timeout must be positive, got %v", ErrInvalidConfig, c.Probe.Timeout)
	case c.Probe.Concurrency < 1:
		return fmt.Errorf("%w: probe.concurrency must be at least 1, got %d", ErrInvalidConfig, c.Probe.Concurrency)
	case c.Probe.MaxBodyBytes <= 0:
		return fmt.Errorf("%w: probe.max_body_bytes must be positive, got %d", ErrInvalidConfig, c.Probe.MaxBodyBytes)
	case c.Probe.MaxRedirects < 0:
		return fmt.Errorf("%w: probe.max_redirects must not be negative, got %d", ErrInvalidConfig, c.Probe.MaxRedirects)
	case c.Probe.RateLimit < 0:
		return fmt.Errorf("%w: probe.rate_limit must not be negative, got %v", ErrInvalidConfig, c.Probe.RateLimit)
	case c.Store.TTL < 0:
		return fmt.Errorf("%w: store.ttl must not be negative, got %v", ErrInvalidConfig, c.Store.TTL)
	}

	return nil
}

func normalizeMarkers(in map[string][]string) map[string][]string {
	out := make(map[string][]string, len(in))
	for name, markers := range in {
		out[strings.ToLower(name)] = markers
	}

	return out
}
