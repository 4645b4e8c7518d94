package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/mockrest/pkg/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version", "--json")
	require.NoError(t, err)

	var info versionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, Version, info.Version)
	assert.NotEmpty(t, info.GoVersion)

	out, err = execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "mockrest "+Version)
}

func TestResourcesCommand(t *testing.T) {
	out, err := execute(t, "resources", "--json")
	require.NoError(t, err)

	var rows []resourceRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 12)
	assert.Equal(t, "users", rows[0].Name)
	assert.Equal(t, "/api/users", rows[0].Path)
	assert.Equal(t, 5, rows[0].Records)
	assert.Equal(t, []string{"posts", "todos", "albums", "reviews"}, rows[0].Nested)
	assert.Equal(t, "embedded", rows[0].Source)

	out, err = execute(t, "resources", "--prefix", "/")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "/todos")
	assert.NotContains(t, out, "/api/")
}

func TestValidateCommand(t *testing.T) {
	t.Run("embedded fixtures are consistent", func(t *testing.T) {
		out, err := execute(t, "validate")
		require.NoError(t, err)
		assert.Contains(t, out, "✓ 76 records in 12 resources")
		assert.Contains(t, out, "Users")
	})

	t.Run("dangling reference", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "comments.json"), `[{"id":1,"postId":99,"userId":1,"body":"orphan"}]`)

		out, err := execute(t, "validate", "--fixtures-dir", dir)
		assert.ErrorIs(t, err, errValidationFailed)
		assert.Contains(t, out, "comments #1")
		assert.Contains(t, out, "Invalid postId")
	})

	t.Run("schema violation", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "tags.json"), `[{"id":1}]`)

		out, err := execute(t, "validate", "--fixtures-dir", dir, "--json")
		assert.ErrorIs(t, err, errValidationFailed)

		var report validateReport
		require.NoError(t, json.Unmarshal([]byte(out), &report))
		assert.False(t, report.Valid)
		assert.NotEmpty(t, report.Error)
	})
}

func TestOpenAPICommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openapi.json")
	_, err := execute(t, "openapi", "--output", path, "--prefix", "/v1")
	require.NoError(t, err)

	doc, err := openapi3.NewLoader().LoadFromFile(path)
	require.NoError(t, err)
	assert.NotNil(t, doc.Paths.Find("/v1/carts/{id}"))

	out, err := execute(t, "openapi", "--compact")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(out)))
}

func TestResolveServeConfig(t *testing.T) {
	cmd := newServeCmd()
	require.NoError(t, cmd.ParseFlags([]string{
		"--port", "4000",
		"--prefix", "/v2",
		"--no-pretty",
		"--rate-limit", "5",
		"--log-format", "json",
	}))

	cfg, err := resolveServeConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Port)
	assert.Equal(t, "/v2", cfg.Prefix)
	assert.False(t, cfg.PrettyJSON)
	require.NotNil(t, cfg.RateLimit)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.InDelta(t, 5.0, cfg.RateLimit.RequestsPerSecond, 0)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, config.SourceFlag, cfg.Source("port"))
	assert.Equal(t, config.SourceDefault, cfg.Source("host"))

	bad := newServeCmd()
	require.NoError(t, bad.ParseFlags([]string{"--log-level", "loud"}))
	_, err = resolveServeConfig(bad)
	assert.Error(t, err)
}

func TestResolveServeConfig_FileThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mockrest.yaml")
	writeFile(t, path, "port: 5000\nhost: 127.0.0.1\nprettyJSON: false\n")

	cmd := newServeCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--config", path, "--port", "6000"}))

	cfg, err := resolveServeConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, 6000, cfg.Port)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.False(t, cfg.PrettyJSON)
	assert.Equal(t, config.SourceFile, cfg.Source("host"))
	assert.Equal(t, config.SourceFlag, cfg.Source("port"))
}

func TestRunServe(t *testing.T) {
	cfg := config.DefaultServerConfiguration()
	cfg.Host = "127.0.0.1"
	cfg.Port = 0
	cfg.Log.Level = "error"

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	require.NoError(t, runServe(ctx, cfg, &out))
	assert.Contains(t, out.String(), "listening on http://127.0.0.1:")
	assert.Contains(t, out.String(), "12 resources, 76 records")
	assert.Contains(t, out.String(), "Shutting down")
}

func TestRunServe_BadFixtures(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "users.json"), `{"not":"an array"}`)

	cfg := config.DefaultServerConfiguration()
	cfg.FixturesDir = dir
	cfg.Log.Level = "error"

	err := runServe(context.Background(), cfg, &bytes.Buffer{})
	assert.ErrorContains(t, err, "loading fixtures")
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
