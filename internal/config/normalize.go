// internal/config/normalize.go
package config

// Normalize applies post-validation defaults.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}
	m := &cfg.Monitor

	if m.Display.Mode == "" {
		m.Display.Mode = "headless"
	}

	if m.Input.SerialDevice != "" && m.Input.BaudRate == 0 {
		m.Input.BaudRate = 9600
	}

	if m.Log.Level == "" {
		m.Log.Level = "info"
	}
}
