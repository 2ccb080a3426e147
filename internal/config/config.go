// Package config resolves run settings from flags, PEAKS_* environment
// variables, an optional config file and defaults, in that order.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/couchcryptid/srtm-peaks/internal/adapter/file"
	"github.com/couchcryptid/srtm-peaks/internal/adapter/srtm"
	"github.com/couchcryptid/srtm-peaks/internal/peaks"
)

// EnvPrefix prefixes every environment variable, e.g. PEAKS_SRTM_DIR.
const EnvPrefix = "PEAKS"

// Keys shared by flags, environment variables and config files.
const (
	KeyConfigFile      = "config"
	KeyOutput          = "output"
	KeyFormat          = "format"
	KeySRTMDir         = "srtm-dir"
	KeyRegenerateIndex = "regenerate-index"
	KeySource          = "source"
	KeyHowMany         = "howmany"
	KeyMinSeparation   = "min-separation"
	KeyCacheTiles      = "cache-tiles"
	KeyHTTPTimeout     = "http-timeout"
	KeyOffline         = "offline"
	KeyLogLevel        = "log-level"
	KeyLogFormat       = "log-format"
	KeyKafkaBrokers    = "kafka-brokers"
	KeyKafkaTopic      = "kafka-topic"
	KeyRedisURL        = "redis-url"
	KeyRedisTTL        = "redis-ttl"
	KeyMetricsFile     = "metrics-file"
	KeyMetricsAddr     = "metrics-addr"
	KeyShutdownTimeout = "shutdown-timeout"
)

// Config holds the settings of one run.
type Config struct {
	Output          string `mapstructure:"output"`
	Format          string `mapstructure:"format"`
	SRTMDir         string `mapstructure:"srtm-dir"`
	RegenerateIndex bool   `mapstructure:"regenerate-index"`
	Source          string `mapstructure:"source"`

	// HowMany caps the peaks per region; 0 means unlimited.
	HowMany       int     `mapstructure:"howmany"`
	MinSeparation float64 `mapstructure:"min-separation"`
	CacheTiles    int     `mapstructure:"cache-tiles"`

	HTTPTimeout time.Duration `mapstructure:"http-timeout"`
	Offline     bool          `mapstructure:"offline"`

	LogLevel  string `mapstructure:"log-level"`
	LogFormat string `mapstructure:"log-format"`

	KafkaBrokers []string `mapstructure:"kafka-brokers"`
	KafkaTopic   string   `mapstructure:"kafka-topic"`

	RedisURL string        `mapstructure:"redis-url"`
	RedisTTL time.Duration `mapstructure:"redis-ttl"`

	MetricsFile     string        `mapstructure:"metrics-file"`
	MetricsAddr     string        `mapstructure:"metrics-addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown-timeout"`
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyOutput, "peaks.kml")
	v.SetDefault(KeyFormat, "")
	v.SetDefault(KeySRTMDir, "srtm")
	v.SetDefault(KeyRegenerateIndex, false)
	v.SetDefault(KeySource, srtm.DefaultSource)
	v.SetDefault(KeyMinSeparation, peaks.DefaultMinSeparation)
	v.SetDefault(KeyCacheTiles, srtm.DefaultCacheTiles)
	v.SetDefault(KeyHTTPTimeout, "60s")
	v.SetDefault(KeyOffline, false)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyKafkaBrokers, []string{})
	v.SetDefault(KeyKafkaTopic, "")
	v.SetDefault(KeyRedisURL, "")
	v.SetDefault(KeyRedisTTL, "720h")
	v.SetDefault(KeyMetricsFile, "")
	v.SetDefault(KeyMetricsAddr, "")
	v.SetDefault(KeyShutdownTimeout, "10s")
}

// Load reads the config file named by the "config" key (if any), applies
// PEAKS_* environment variables and defaults, and validates the result.
// Flags are expected to be bound to v by the caller.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	// howmany has no default so IsSet reports only explicit values.
	_ = v.BindEnv(KeyHowMany)

	if path := v.GetString(KeyConfigFile); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.KafkaBrokers = splitList(cfg.KafkaBrokers)
	if cfg.Format == "" {
		cfg.Format = formatForPath(cfg.Output)
	}

	if v.IsSet(KeyHowMany) && cfg.HowMany <= 0 {
		return nil, fmt.Errorf("%s must be greater than 0, got %d", KeyHowMany, cfg.HowMany)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings that do not depend on how they were supplied.
func (c *Config) Validate() error {
	if c.Output == "" {
		return errors.New("output is required")
	}
	if c.SRTMDir == "" {
		return errors.New("srtm-dir is required")
	}
	if c.HowMany < 0 {
		return fmt.Errorf("howmany must not be negative, got %d", c.HowMany)
	}
	if _, err := file.WriterFor(c.Format); err != nil {
		return fmt.Errorf("format: %w", err)
	}
	if _, err := srtm.ParseSource(c.Source); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if c.HTTPTimeout <= 0 {
		return errors.New("http-timeout must be positive")
	}
	if c.MinSeparation < 0 {
		return errors.New("min-separation must not be negative")
	}
	if c.CacheTiles <= 0 {
		return errors.New("cache-tiles must be positive")
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		return errors.New("kafka-topic is required when kafka-brokers is set")
	}
	if c.RedisURL != "" && c.RedisTTL < 0 {
		return errors.New("redis-ttl must not be negative")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("shutdown-timeout must be positive")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log-level %q is not one of debug, info, warn, error", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log-format %q is not one of text, json", c.LogFormat)
	}
	return nil
}

// formatForPath picks the output format from the file extension.
func formatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json":
		return file.FormatGeoJSON
	default:
		return file.FormatKML
	}
}

// splitList flattens comma separated entries, which is how a list arrives
// from a single environment variable.
func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
