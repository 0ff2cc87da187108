// internal/config/config.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Monitor MonitorConfig `yaml:"monitor"`
}

type MonitorConfig struct {
	Listen  ListenConfig  `yaml:"listen"`
	Storage StorageConfig `yaml:"storage"`
	Input   InputConfig   `yaml:"input"`
	Display DisplayConfig `yaml:"display"`
	Log     LogConfig     `yaml:"log"`
}

// ---- LISTEN ----

type ListenConfig struct {
	// Addr is the UDP bind address for the call-event broadcast,
	// e.g. ":3520".
	Addr string `yaml:"addr"`
}

// ---- STORAGE ----

type StorageConfig struct {
	// Path of the durable archive block file.
	Path string `yaml:"path"`
	// SizeBytes is the fixed block size. Archive capacity is whatever
	// fits after the header.
	SizeBytes int `yaml:"size_bytes"`
}

// ---- INPUT ----

type InputConfig struct {
	// Serial device for the keyboard byte stream (optional).
	SerialDevice string `yaml:"serial_device"`
	BaudRate     int    `yaml:"baud_rate"`
}

// ---- DISPLAY ----

type DisplayConfig struct {
	// Mode is "term" (interactive front panel) or "headless".
	Mode string `yaml:"mode"`
}

// ---- LOG ----

type LogConfig struct {
	// Path of the rotating log file. Empty logs to stderr only.
	Path string `yaml:"path"`
	// Level is a zerolog level name; empty means "info".
	Level string `yaml:"level"`
	// Console additionally mirrors the log to stderr.
	Console bool `yaml:"console"`
}

// Load reads and parses one YAML config file. Validation is separate.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // path is the operator's CLI argument
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &cfg, nil
}
