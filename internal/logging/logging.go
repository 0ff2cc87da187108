// internal/logging/logging.go
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/tamzrod/cid-monitor/internal/config"
)

// Init configures the global zerolog logger from config: a rotating
// file writer when a path is set, optionally mirrored to stderr.
func Init(cfg config.LogConfig) error {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(level)

	var writers []io.Writer

	if cfg.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o750); err != nil {
			return err
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    1,
			MaxBackups: 2,
		})
	}
	if cfg.Console || len(writers) == 0 {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr})
	}

	log.Logger = log.Output(io.MultiWriter(writers...)).
		With().Timestamp().Logger()

	return nil
}
