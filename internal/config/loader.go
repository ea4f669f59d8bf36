// Package config loads btclassic settings from layered YAML files.
//
// Layers, later overriding earlier:
//
//  1. Defaults (GetDefaultConfig)
//  2. User configuration (~/.config/btclassic/config.yaml)
//  3. Project configuration (./.btclassic/config.yaml)
//  4. An explicit file passed with --config
//
// Example:
//
//	adapter: hci0
//	assumeEnabled: true
//	scanTimeout: 10s
//	queueSize: 64
//	logLevel: info
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// For mocking in tests
var osUserHomeDir = os.UserHomeDir
var osGetwd = os.Getwd

const (
	userConfigDir    = ".config/btclassic"
	projectConfigDir = ".btclassic"
	configFileName   = "config.yaml"

	defaultScanTimeout = 10 * time.Second
	defaultQueueSize   = 64
)

// GetDefaultConfig returns the built-in configuration.
func GetDefaultConfig() Config {
	enabled := true
	return Config{
		AssumeEnabled: &enabled,
		ScanTimeout:   defaultScanTimeout,
		QueueSize:     defaultQueueSize,
		LogLevel:      "info",
	}
}

// LoadConfig layers defaults, user, project and (if non-empty) explicitPath.
// Missing user and project files are skipped; a missing explicit file is an
// error.
func LoadConfig(explicitPath string) (Config, error) {
	config := GetDefaultConfig()

	for _, layer := range []func() (string, error){getUserConfigPath, getProjectConfigPath} {
		path, err := layer()
		if err != nil {
			// Optional layer; keep going.
			fmt.Fprintf(os.Stderr, "Warning: Could not determine config path: %v\n", err)
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		overlay, err := loadConfigFromFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: load %s: %w", path, err)
		}
		config = mergeConfigs(config, overlay)
	}

	if explicitPath != "" {
		overlay, err := loadConfigFromFile(explicitPath)
		if err != nil {
			return Config{}, fmt.Errorf("config: load %s: %w", explicitPath, err)
		}
		config = mergeConfigs(config, overlay)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// Validate rejects values no component can work with.
func (c Config) Validate() error {
	if c.ScanTimeout < 0 {
		return fmt.Errorf("config: scanTimeout must not be negative, got %s", c.ScanTimeout)
	}
	if c.QueueSize < 0 {
		return fmt.Errorf("config: queueSize must not be negative, got %d", c.QueueSize)
	}
	return nil
}

var getUserConfigPath = func() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir, configFileName), nil
}

var getProjectConfigPath = func() (string, error) {
	wd, err := osGetwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, projectConfigDir, configFileName), nil
}

func loadConfigFromFile(filePath string) (Config, error) {
	var config Config
	data, err := os.ReadFile(filePath)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, err
	}
	return config, nil
}

// mergeConfigs merges 'overlay' config into 'base' config. Zero values in
// overlay do not override.
func mergeConfigs(base, overlay Config) Config {
	merged := base
	if overlay.Adapter != "" {
		merged.Adapter = overlay.Adapter
	}
	if overlay.AssumeEnabled != nil {
		v := *overlay.AssumeEnabled
		merged.AssumeEnabled = &v
	}
	if overlay.ScanTimeout != 0 {
		merged.ScanTimeout = overlay.ScanTimeout
	}
	if overlay.QueueSize != 0 {
		merged.QueueSize = overlay.QueueSize
	}
	if overlay.LogLevel != "" {
		merged.LogLevel = overlay.LogLevel
	}
	return merged
}
