// Package config loads osmsurvey settings from an optional YAML file and
// OSMSURVEY_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, with dots in the
// key replaced by underscores: OSMSURVEY_FETCH_RADIUS.
const EnvPrefix = "OSMSURVEY"

// Config holds the full application configuration.
type Config struct {
	Location   LocationConfig   `yaml:"location" mapstructure:"location"`
	Fetch      FetchConfig      `yaml:"fetch" mapstructure:"fetch"`
	Overpass   ServiceConfig    `yaml:"overpass" mapstructure:"overpass"`
	Notes      ServiceConfig    `yaml:"notes" mapstructure:"notes"`
	Survey     SurveyConfig     `yaml:"survey" mapstructure:"survey"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Monitoring MonitoringConfig `yaml:"monitoring" mapstructure:"monitoring"`
	Tracing    TracingConfig    `yaml:"tracing" mapstructure:"tracing"`
	UserAgent  string           `yaml:"user_agent" mapstructure:"user_agent"`
}

// LocationConfig controls position polling and the location source.
type LocationConfig struct {
	CheckInterval time.Duration `yaml:"check_interval" mapstructure:"check_interval"`
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaximumAge    time.Duration `yaml:"maximum_age" mapstructure:"maximum_age"`
	HighAccuracy  bool          `yaml:"high_accuracy" mapstructure:"high_accuracy"`
	MaxAccuracy   float64       `yaml:"max_accuracy" mapstructure:"max_accuracy"`

	// Source is "static" or "replay"
	Source         string  `yaml:"source" mapstructure:"source"`
	Static         string  `yaml:"static" mapstructure:"static"`
	StaticAccuracy float64 `yaml:"static_accuracy" mapstructure:"static_accuracy"`
	ReplayFile     string  `yaml:"replay_file" mapstructure:"replay_file"`
}

// FetchConfig controls building fetches.
type FetchConfig struct {
	Radius         float64 `yaml:"radius" mapstructure:"radius"`
	MaxZoom        int     `yaml:"max_zoom" mapstructure:"max_zoom"`
	DrawnCacheSize int     `yaml:"drawn_cache_size" mapstructure:"drawn_cache_size"`
}

// ServiceConfig describes one external HTTP endpoint.
type ServiceConfig struct {
	URL               string        `yaml:"url" mapstructure:"url"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`

	// StatusProbeInterval enables a periodic health probe when positive
	StatusProbeInterval time.Duration `yaml:"status_probe_interval" mapstructure:"status_probe_interval"`
}

// SurveyConfig controls prompts and note wording.
type SurveyConfig struct {
	Locale      string `yaml:"locale" mapstructure:"locale"`
	Formatter   string `yaml:"formatter" mapstructure:"formatter"`
	CancelToken string `yaml:"cancel_token" mapstructure:"cancel_token"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}

// MonitoringConfig configures the metrics and health endpoint.
type MonitoringConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// TracingConfig configures OTLP export.
type TracingConfig struct {
	Endpoint    string  `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure    bool    `yaml:"insecure" mapstructure:"insecure"`
	Environment string  `yaml:"environment" mapstructure:"environment"`
	SampleRatio float64 `yaml:"sample_ratio" mapstructure:"sample_ratio"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("location.check_interval", time.Minute)
	v.SetDefault("location.timeout", 45*time.Second)
	v.SetDefault("location.maximum_age", time.Duration(0))
	v.SetDefault("location.high_accuracy", true)
	v.SetDefault("location.max_accuracy", 500.0)
	v.SetDefault("location.source", "static")
	v.SetDefault("location.static", "")
	v.SetDefault("location.static_accuracy", 10.0)
	v.SetDefault("location.replay_file", "")
	v.SetDefault("fetch.radius", 1000.0)
	v.SetDefault("fetch.max_zoom", 16)
	v.SetDefault("fetch.drawn_cache_size", 4096)
	v.SetDefault("overpass.url", "https://overpass-api.de/api/interpreter")
	v.SetDefault("overpass.timeout", 3*time.Minute)
	v.SetDefault("overpass.requests_per_second", 1.0)
	v.SetDefault("overpass.burst", 1)
	v.SetDefault("overpass.status_probe_interval", time.Duration(0))
	v.SetDefault("notes.url", "https://api.openstreetmap.org/api/0.6/notes")
	v.SetDefault("notes.timeout", 30*time.Second)
	v.SetDefault("notes.requests_per_second", 0.5)
	v.SetDefault("notes.burst", 2)
	v.SetDefault("notes.status_probe_interval", time.Duration(0))
	v.SetDefault("survey.locale", "ru")
	v.SetDefault("survey.formatter", "composed")
	v.SetDefault("survey.cancel_token", "/cancel")
	v.SetDefault("log.level", "info")
	v.SetDefault("monitoring.addr", "")
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.insecure", true)
	v.SetDefault("tracing.environment", "development")
	v.SetDefault("tracing.sample_ratio", 1.0)
	v.SetDefault("user_agent", "osmsurvey/0.1.0")
}

// Load reads the configuration. When path is empty an osmsurvey.yaml in the
// working directory is used if present; an explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("osmsurvey")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// the conventional collector variable also works
	if err := v.BindEnv("tracing.endpoint", EnvPrefix+"_TRACING_ENDPOINT", "OTLP_ENDPOINT"); err != nil {
		return nil, fmt.Errorf("config: bind env: %w", err)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return &cfg, nil
}

// Validate rejects settings the survey cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Location.CheckInterval <= 0 {
		errs = append(errs, fmt.Errorf("location.check_interval must be positive, got %s", c.Location.CheckInterval))
	}
	if c.Location.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("location.timeout must be positive, got %s", c.Location.Timeout))
	}
	if c.Location.MaximumAge < 0 {
		errs = append(errs, fmt.Errorf("location.maximum_age must not be negative"))
	}
	if c.Location.MaxAccuracy <= 0 {
		errs = append(errs, fmt.Errorf("location.max_accuracy must be positive, got %v", c.Location.MaxAccuracy))
	}
	switch c.Location.Source {
	case "static", "replay":
	default:
		errs = append(errs, fmt.Errorf("location.source must be static or replay, got %q", c.Location.Source))
	}
	if c.Location.Source == "replay" && c.Location.ReplayFile == "" {
		errs = append(errs, errors.New("location.replay_file is required for the replay source"))
	}

	if c.Fetch.Radius <= 0 {
		errs = append(errs, fmt.Errorf("fetch.radius must be positive, got %v", c.Fetch.Radius))
	}
	if c.Fetch.MaxZoom < 0 || c.Fetch.MaxZoom > 22 {
		errs = append(errs, fmt.Errorf("fetch.max_zoom must be between 0 and 22, got %d", c.Fetch.MaxZoom))
	}
	if c.Fetch.DrawnCacheSize <= 0 {
		errs = append(errs, fmt.Errorf("fetch.drawn_cache_size must be positive, got %d", c.Fetch.DrawnCacheSize))
	}

	if c.Overpass.URL == "" {
		errs = append(errs, errors.New("overpass.url is required"))
	}
	if c.Notes.URL == "" {
		errs = append(errs, errors.New("notes.url is required"))
	}

	switch c.Survey.Formatter {
	case "composed", "keyvalue":
	default:
		errs = append(errs, fmt.Errorf("survey.formatter must be composed or keyvalue, got %q", c.Survey.Formatter))
	}
	if strings.TrimSpace(c.Survey.CancelToken) == "" {
		errs = append(errs, errors.New("survey.cancel_token must not be blank"))
	}

	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("tracing.sample_ratio must be within [0, 1], got %v", c.Tracing.SampleRatio))
	}

	return errors.Join(errs...)
}
