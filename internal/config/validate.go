// internal/config/validate.go
package config

import (
	"fmt"

	"github.com/tamzrod/cid-monitor/internal/archive"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	m := cfg.Monitor

	if m.Listen.Addr == "" {
		return fmt.Errorf("config: listen.addr is required")
	}

	if m.Storage.Path == "" {
		return fmt.Errorf("config: storage.path is required")
	}
	minSize := archive.HeaderSize + archive.RecordSize
	if m.Storage.SizeBytes < minSize {
		return fmt.Errorf(
			"config: storage.size_bytes %d too small, need >= %d (header plus one record)",
			m.Storage.SizeBytes, minSize,
		)
	}

	if m.Input.SerialDevice != "" && m.Input.BaudRate < 0 {
		return fmt.Errorf("config: input.baud_rate must be >= 0")
	}

	switch m.Display.Mode {
	case "", "term", "headless":
	default:
		return fmt.Errorf("config: display.mode %q unknown (term or headless)", m.Display.Mode)
	}

	return nil
}
