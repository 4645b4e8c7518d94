package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultServerConfiguration(t *testing.T) {
	cfg := DefaultServerConfiguration()
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, "/api", cfg.Prefix)
	assert.True(t, cfg.PrettyJSON)
	assert.Nil(t, cfg.RateLimit)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowOrigins)
	assert.Equal(t, SourceDefault, cfg.Source("port"))
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile_YAML(t *testing.T) {
	t.Setenv("MOCKREST_TEST_PORT", "4000")
	path := writeConfig(t, "mockrest.yaml", `
port: ${MOCKREST_TEST_PORT}
prefix: ${MOCKREST_TEST_PREFIX:-/v1}
prettyJSON: false
log:
  level: debug
rateLimit:
  enabled: true
  requestsPerSecond: 5
`)
	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Port)
	assert.Equal(t, "/v1", cfg.Prefix)
	assert.False(t, cfg.PrettyJSON)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format, "unset nested fields keep defaults")
	require.NotNil(t, cfg.RateLimit)
	assert.Equal(t, 5.0, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, DefaultHost, cfg.Host)

	assert.Equal(t, SourceFile, cfg.Source("port"))
	assert.Equal(t, SourceDefault, cfg.Source("host"))
	assert.Equal(t, path, cfg.ConfigFile)
}

func TestLoadFromFile_JSON(t *testing.T) {
	path := writeConfig(t, "mockrest.json", `{"port": 8080, "prefix": ""}`)
	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Empty(t, cfg.Prefix)
}

func TestLoadFromFile_Errors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
		want error
	}{
		{"missing", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.yaml") }, ErrFileNotFound},
		{"empty", func(t *testing.T) string { return writeConfig(t, "c.yaml", "  \n") }, ErrEmptyFile},
		{"bad yaml", func(t *testing.T) string { return writeConfig(t, "c.yml", "port: [1") }, ErrInvalidYAML},
		{"bad json", func(t *testing.T) string { return writeConfig(t, "c.json", "{port:") }, ErrInvalidJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(tt.path(t))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoadEnvConfig(t *testing.T) {
	t.Setenv(EnvPort, "5000")
	t.Setenv(EnvHost, "127.0.0.1")
	t.Setenv(EnvPrefix, "")
	t.Setenv(EnvFixturesDir, "/data")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvRateLimit, "25")

	cfg := DefaultServerConfiguration()
	LoadEnvConfig(cfg)

	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Empty(t, cfg.Prefix)
	assert.Equal(t, "/data", cfg.FixturesDir)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	require.NotNil(t, cfg.RateLimit)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 25.0, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, SourceEnv, cfg.Source("port"))
}

func TestLoadEnvConfig_IgnoresGarbage(t *testing.T) {
	t.Setenv(EnvPort, "not-a-port")
	t.Setenv(EnvRateLimit, "fast")

	cfg := DefaultServerConfiguration()
	LoadEnvConfig(cfg)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Nil(t, cfg.RateLimit)
}

func TestLoad_Precedence(t *testing.T) {
	path := writeConfig(t, "mockrest.yaml", "port: 4000\nhost: localhost\n")
	t.Setenv(EnvConfig, path)
	t.Setenv(EnvPort, "4500")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 4500, cfg.Port, "env beats file")
	assert.Equal(t, "localhost", cfg.Host, "file beats default")
	assert.Equal(t, SourceEnv, cfg.Source("port"))
	assert.Equal(t, SourceFile, cfg.Source("host"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *ServerConfiguration)
		field  string
	}{
		{"port too large", func(c *ServerConfiguration) { c.Port = 70000 }, "port"},
		{"prefix without slash", func(c *ServerConfiguration) { c.Prefix = "api" }, "prefix"},
		{"prefix trailing slash", func(c *ServerConfiguration) { c.Prefix = "/api/" }, "prefix"},
		{"prefix pattern", func(c *ServerConfiguration) { c.Prefix = "/{x}" }, "prefix"},
		{"negative body size", func(c *ServerConfiguration) { c.MaxBodySize = -1 }, "maxBodySize"},
		{"negative log entries", func(c *ServerConfiguration) { c.MaxLogEntries = -1 }, "maxLogEntries"},
		{"bad level", func(c *ServerConfiguration) { c.Log.Level = "verbose" }, "log.level"},
		{"bad format", func(c *ServerConfiguration) { c.Log.Format = "xml" }, "log.format"},
		{"rate limit without rate", func(c *ServerConfiguration) {
			c.RateLimit = &RateLimitConfig{Enabled: true}
		}, "rateLimit.requestsPerSecond"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultServerConfiguration()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestNormalizedPrefix(t *testing.T) {
	cfg := DefaultServerConfiguration()
	assert.Equal(t, "/api", cfg.NormalizedPrefix())
	cfg.Prefix = "/"
	assert.Equal(t, "", cfg.NormalizedPrefix())
	assert.NoError(t, cfg.Validate())
	cfg.Prefix = "v1/"
	assert.Equal(t, "/v1", cfg.NormalizedPrefix())
}

func TestApplyRateLimit(t *testing.T) {
	cfg := DefaultServerConfiguration()
	cfg.ApplyRateLimit(0)
	assert.Nil(t, cfg.RateLimit)

	cfg.ApplyRateLimit(10)
	require.NotNil(t, cfg.RateLimit)
	assert.True(t, cfg.RateLimit.Enabled)

	cfg.ApplyRateLimit(-1)
	assert.False(t, cfg.RateLimit.Enabled)
}
