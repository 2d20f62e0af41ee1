package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/gnana997/blendmeta/defaults"
	"github.com/gnana997/blendmeta/pkg/pipeline"
	"github.com/gnana997/blendmeta/pkg/util"
)

const (
	// configFileName is looked up in the working directory.
	configFileName = "blendmeta.yaml"
	// configPathEnv names an explicit config file.
	configPathEnv = "BLENDMETA_CONFIG"
	envPrefix     = "BLENDMETA_"
)

// errConfigExists is returned by init when the config file is already there.
var errConfigExists = errors.New("config file already exists")

// Config is the effective blendmeta configuration.
type Config struct {
	ComponentsDir string      `koanf:"components_dir" yaml:"components_dir"`
	OutputDir     string      `koanf:"output_dir" yaml:"output_dir"`
	Exclude       []string    `koanf:"exclude" yaml:"exclude"`
	Candidates    []string    `koanf:"candidates" yaml:"candidates"`
	FailOnError   bool        `koanf:"fail_on_error" yaml:"fail_on_error"`
	Log           LogConfig   `koanf:"log" yaml:"log"`
	MCP           MCPConfig   `koanf:"mcp" yaml:"mcp"`
	Watch         WatchConfig `koanf:"watch" yaml:"watch"`
}

// LogConfig selects the slog level and handler.
type LogConfig struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}

// MCPConfig configures the serve command.
type MCPConfig struct {
	// LogPath enables the JSONL tool-call log when non-empty.
	LogPath string `koanf:"log_path" yaml:"log_path"`
}

// WatchConfig configures the watch command.
type WatchConfig struct {
	DebounceMs int `koanf:"debounce_ms" yaml:"debounce_ms"`
}

// Pipeline returns the pipeline configuration.
func (c *Config) Pipeline() pipeline.Config {
	return pipeline.Config{
		ComponentsDir: c.ComponentsDir,
		OutputDir:     c.OutputDir,
		Exclude:       c.Exclude,
		Candidates:    c.Candidates,
	}
}

// Logger returns the logger configuration. Output goes to stderr.
func (c *Config) Logger() util.LoggerConfig {
	lc := util.DefaultLoggerConfig()
	if c.Log.Level != "" {
		lc.Level = util.LogLevel(c.Log.Level)
	}
	if c.Log.Format != "" {
		lc.Format = util.LogFormat(c.Log.Format)
	}
	return lc
}

// findConfigFile returns the config file to load, or "" when none exists.
// An explicit BLENDMETA_CONFIG path must exist.
func findConfigFile() (string, error) {
	if explicit := os.Getenv(configPathEnv); explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file %s: %w", explicit, err)
		}
		return explicit, nil
	}
	for _, name := range []string{configFileName, "blendmeta.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}
	}
	return "", nil
}

// loadConfig layers embedded defaults, the config file, and BLENDMETA_*
// environment variables, later layers winning. It returns the file used,
// if any.
func loadConfig() (*Config, string, error) {
	k := koanf.New(".")

	base, err := defaults.Map()
	if err != nil {
		return nil, "", err
	}
	if err := k.Load(confmap.Provider(base, "."), nil); err != nil {
		return nil, "", fmt.Errorf("failed to load defaults: %w", err)
	}

	path, err := findConfigFile()
	if err != nil {
		return nil, "", err
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, "", fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(envPrefix, ".", envKey), nil); err != nil {
		return nil, "", fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, "", fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, "", err
	}
	return &cfg, path, nil
}

// nestedSections are config keys whose env vars carry a sub-key, e.g.
// BLENDMETA_LOG_LEVEL -> log.level.
var nestedSections = []string{"log", "mcp", "watch"}

// envKey maps BLENDMETA_OUTPUT_DIR -> output_dir and BLENDMETA_LOG_LEVEL ->
// log.level. List values are comma-separated.
func envKey(name, value string) (string, any) {
	if name == configPathEnv {
		return "", nil
	}
	key := strings.ToLower(strings.TrimPrefix(name, envPrefix))
	for _, section := range nestedSections {
		if rest, ok := strings.CutPrefix(key, section+"_"); ok {
			return section + "." + rest, value
		}
	}
	if key == "exclude" || key == "candidates" {
		return key, splitList(value)
	}
	return key, value
}

func splitList(value string) []string {
	out := []string{}
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) validate() error {
	if c.ComponentsDir == "" {
		return fmt.Errorf("components_dir must not be empty")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty")
	}
	if c.Watch.DebounceMs < 0 {
		return fmt.Errorf("watch.debounce_ms must not be negative")
	}
	return nil
}

// writeConfigFile writes cfg as YAML to path, refusing to overwrite.
func writeConfigFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", errConfigExists, path)
	}
	data, err := yamlv3.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
