package config

import "time"

// Config is the top-level configuration structure for btclassic.
type Config struct {
	// Adapter is the BlueZ adapter name (e.g. "hci0"). Empty selects the
	// first adapter BlueZ reports.
	Adapter string `yaml:"adapter,omitempty"`

	// AssumeEnabled is the adapter state used until the first status probe
	// or event arrives. Nil means the default (true).
	AssumeEnabled *bool `yaml:"assumeEnabled,omitempty"`

	// ScanTimeout bounds one device discovery pass.
	ScanTimeout time.Duration `yaml:"scanTimeout,omitempty"`

	// QueueSize is the buffer of the serialized event queue.
	QueueSize int `yaml:"queueSize,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"logLevel,omitempty"`
}

// InitialEnabled resolves AssumeEnabled.
func (c Config) InitialEnabled() bool {
	if c.AssumeEnabled == nil {
		return true
	}
	return *c.AssumeEnabled
}
