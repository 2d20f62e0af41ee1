package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/gnana997/blendmeta/pkg/util"
)

// inTempDir runs the test from an empty working directory with no
// BLENDMETA_* variables set.
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, envPrefix) {
			t.Setenv(name, "")
			require.NoError(t, os.Unsetenv(name))
		}
	}
	return dir
}

func TestLoadConfig_Defaults(t *testing.T) {
	inTempDir(t)

	cfg, path, err := loadConfig()
	require.NoError(t, err)
	assert.Empty(t, path)

	assert.Equal(t, "packages/blend/lib/components", cfg.ComponentsDir)
	assert.Equal(t, "apps/docs/meta", cfg.OutputDir)
	assert.Equal(t, []string{"button", "charts", "datatable", "statcard", "alert", "modal", "tabs"}, cfg.Exclude)
	assert.Equal(t, []string{"types.ts", "Types.ts", "{name}.tsx", "index.ts"}, cfg.Candidates)
	assert.False(t, cfg.FailOnError)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Empty(t, cfg.MCP.LogPath)
	assert.Equal(t, 200, cfg.Watch.DebounceMs)
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	dir := inTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte(`
components_dir: src/components
exclude: [legacy*]
fail_on_error: true
log:
  level: debug
`), 0644))

	cfg, path, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, configFileName, path)

	assert.Equal(t, "src/components", cfg.ComponentsDir)
	assert.Equal(t, "apps/docs/meta", cfg.OutputDir)
	assert.Equal(t, []string{"legacy*"}, cfg.Exclude)
	assert.True(t, cfg.FailOnError)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := inTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte("output_dir: from-file\n"), 0644))

	t.Setenv("BLENDMETA_OUTPUT_DIR", "from-env")
	t.Setenv("BLENDMETA_EXCLUDE", "button, modal ,")
	t.Setenv("BLENDMETA_LOG_FORMAT", "json")
	t.Setenv("BLENDMETA_WATCH_DEBOUNCE_MS", "50")
	t.Setenv("BLENDMETA_MCP_LOG_PATH", "logs/mcp.jsonl")
	t.Setenv("BLENDMETA_FAIL_ON_ERROR", "true")

	cfg, _, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.OutputDir)
	assert.Equal(t, []string{"button", "modal"}, cfg.Exclude)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 50, cfg.Watch.DebounceMs)
	assert.Equal(t, "logs/mcp.jsonl", cfg.MCP.LogPath)
	assert.True(t, cfg.FailOnError)
}

func TestLoadConfig_ExplicitPath(t *testing.T) {
	dir := inTempDir(t)
	custom := filepath.Join(dir, "conf", "custom.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(custom), 0755))
	require.NoError(t, os.WriteFile(custom, []byte("components_dir: custom\n"), 0644))
	t.Setenv(configPathEnv, custom)

	cfg, path, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, custom, path)
	assert.Equal(t, "custom", cfg.ComponentsDir)

	t.Setenv(configPathEnv, filepath.Join(dir, "missing.yaml"))
	_, _, err = loadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := inTempDir(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte("components_dir: [unclosed\n"), 0644))
	_, _, err := loadConfig()
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte("output_dir: \"\"\n"), 0644))
	_, _, err = loadConfig()
	assert.ErrorContains(t, err, "output_dir")
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantKey string
		want    any
	}{
		{"BLENDMETA_COMPONENTS_DIR", "x", "components_dir", "x"},
		{"BLENDMETA_LOG_LEVEL", "warn", "log.level", "warn"},
		{"BLENDMETA_CANDIDATES", "a.ts,b.ts", "candidates", []string{"a.ts", "b.ts"}},
		{"BLENDMETA_CONFIG", "c.yaml", "", nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			key, val := envKey(tc.name, tc.value)
			assert.Equal(t, tc.wantKey, key)
			assert.Equal(t, tc.want, val)
		})
	}
}

func TestConfigAccessors(t *testing.T) {
	cfg := &Config{
		ComponentsDir: "c",
		OutputDir:     "o",
		Exclude:       []string{"button"},
		Log:           LogConfig{Level: "error", Format: "json"},
	}

	pc := cfg.Pipeline()
	assert.Equal(t, "c", pc.ComponentsDir)
	assert.Equal(t, []string{"button"}, pc.Exclude)

	lc := cfg.Logger()
	assert.Equal(t, util.LevelError, lc.Level)
	assert.Equal(t, util.FormatJSON, lc.Format)
	assert.Equal(t, os.Stderr, lc.Output)
}

func TestWriteConfigFile(t *testing.T) {
	dir := inTempDir(t)
	cfg, _, err := loadConfig()
	require.NoError(t, err)

	path := filepath.Join(dir, configFileName)
	require.NoError(t, writeConfigFile(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var roundTrip Config
	require.NoError(t, yaml.Unmarshal(data, &roundTrip))
	assert.Equal(t, *cfg, roundTrip)

	assert.ErrorIs(t, writeConfigFile(path, cfg), errConfigExists)
}
