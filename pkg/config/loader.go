package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Common errors for configuration loading.
var (
	ErrFileNotFound     = errors.New("configuration file not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidJSON      = errors.New("invalid JSON syntax")
	ErrInvalidYAML      = errors.New("invalid YAML syntax")
	ErrEmptyFile        = errors.New("configuration file is empty")
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// ExpandEnvVars expands ${VAR_NAME} and ${VAR_NAME:-default} references.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		sub := envVarPattern.FindStringSubmatch(match)
		if val := os.Getenv(sub[1]); val != "" {
			return val
		}
		return sub[2]
	})
}

// LoadFromFile reads a configuration file over the defaults. The format is
// chosen by extension: .yaml and .yml are YAML, anything else JSON.
func LoadFromFile(path string) (*ServerConfiguration, error) {
	cfg := DefaultServerConfiguration()
	if err := cfg.MergeFile(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MergeFile overlays the settings in path onto c and marks the keys it
// sets as coming from the file.
func (c *ServerConfiguration) MergeFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		if os.IsPermission(err) {
			return fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsPermission(err) {
			return fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return fmt.Errorf("failed to read file: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	expanded := []byte(ExpandEnvVars(string(data)))
	keys := map[string]any{}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		if err := yaml.Unmarshal(expanded, c); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidYAML, path, err)
		}
		_ = yaml.Unmarshal(expanded, &keys)
	} else {
		if !json.Valid(expanded) {
			return fmt.Errorf("%w in file: %s", ErrInvalidJSON, path)
		}
		if err := json.Unmarshal(expanded, c); err != nil {
			return fmt.Errorf("failed to parse JSON: %w", err)
		}
		_ = json.Unmarshal(expanded, &keys)
	}

	for key := range keys {
		c.SetSource(key, SourceFile)
	}
	c.ConfigFile = path
	return nil
}

// Load resolves the configuration from defaults, the file at path (or
// MOCKREST_CONFIG when path is empty) and the environment, then validates it.
func Load(path string) (*ServerConfiguration, error) {
	cfg := DefaultServerConfiguration()
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		if err := cfg.MergeFile(path); err != nil {
			return nil, err
		}
	}
	LoadEnvConfig(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
