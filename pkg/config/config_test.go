package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	inTempDir(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, time.Minute, cfg.Location.CheckInterval)
	assert.Equal(t, 45*time.Second, cfg.Location.Timeout)
	assert.True(t, cfg.Location.HighAccuracy)
	assert.InDelta(t, 500.0, cfg.Location.MaxAccuracy, 0.001)
	assert.Equal(t, "static", cfg.Location.Source)
	assert.InDelta(t, 1000.0, cfg.Fetch.Radius, 0.001)
	assert.Equal(t, 16, cfg.Fetch.MaxZoom)
	assert.Equal(t, 4096, cfg.Fetch.DrawnCacheSize)
	assert.Equal(t, "https://overpass-api.de/api/interpreter", cfg.Overpass.URL)
	assert.Equal(t, "https://api.openstreetmap.org/api/0.6/notes", cfg.Notes.URL)
	assert.Equal(t, "ru", cfg.Survey.Locale)
	assert.Equal(t, "composed", cfg.Survey.Formatter)
	assert.Equal(t, "/cancel", cfg.Survey.CancelToken)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "osmsurvey/0.1.0", cfg.UserAgent)

	assert.NoError(t, cfg.Validate())
}

func TestLoadFromYAML(t *testing.T) {
	dir := inTempDir(t)

	yaml := `
location:
  check_interval: 30s
  source: replay
  replay_file: walk.jsonl
fetch:
  radius: 250
survey:
  locale: en
  formatter: keyvalue
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "osmsurvey.yaml"), []byte(yaml), 0644))

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Location.CheckInterval)
	assert.Equal(t, "replay", cfg.Location.Source)
	assert.Equal(t, "walk.jsonl", cfg.Location.ReplayFile)
	assert.InDelta(t, 250.0, cfg.Fetch.Radius, 0.001)
	assert.Equal(t, "en", cfg.Survey.Locale)
	assert.Equal(t, "keyvalue", cfg.Survey.Formatter)
	assert.Equal(t, "debug", cfg.Log.Level)
	// defaults still apply for unset values
	assert.Equal(t, 45*time.Second, cfg.Location.Timeout)
	assert.NoError(t, cfg.Validate())
}

func TestLoadExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "field.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fetch:\n  max_zoom: 18\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 18, cfg.Fetch.MaxZoom)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := inTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "osmsurvey.yaml"), []byte("fetch:\n  radius: 250\n"), 0644))

	t.Setenv("OSMSURVEY_FETCH_RADIUS", "750")
	t.Setenv("OSMSURVEY_SURVEY_LOCALE", "en")
	t.Setenv("OTLP_ENDPOINT", "collector:4317")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.InDelta(t, 750.0, cfg.Fetch.Radius, 0.001)
	assert.Equal(t, "en", cfg.Survey.Locale)
	assert.Equal(t, "collector:4317", cfg.Tracing.Endpoint)
}

func TestValidate(t *testing.T) {
	inTempDir(t)

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero interval", func(c *Config) { c.Location.CheckInterval = 0 }, "location.check_interval"},
		{"zero accuracy", func(c *Config) { c.Location.MaxAccuracy = 0 }, "location.max_accuracy"},
		{"unknown source", func(c *Config) { c.Location.Source = "gps" }, "location.source"},
		{"replay without file", func(c *Config) { c.Location.Source = "replay" }, "location.replay_file"},
		{"negative radius", func(c *Config) { c.Fetch.Radius = -1 }, "fetch.radius"},
		{"zoom too deep", func(c *Config) { c.Fetch.MaxZoom = 30 }, "fetch.max_zoom"},
		{"no overpass url", func(c *Config) { c.Overpass.URL = "" }, "overpass.url"},
		{"unknown formatter", func(c *Config) { c.Survey.Formatter = "xml" }, "survey.formatter"},
		{"blank cancel token", func(c *Config) { c.Survey.CancelToken = " " }, "survey.cancel_token"},
		{"sample ratio", func(c *Config) { c.Tracing.SampleRatio = 2 }, "tracing.sample_ratio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			require.NoError(t, err)

			tt.mutate(cfg)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
