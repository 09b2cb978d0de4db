package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/wedding-gallery/photo-api/internal/config"
)

// New builds the root zerolog logger. Components derive their own child
// loggers via log.With().Str("component", ...).
func New(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = time.RFC3339

	var out io.Writer = os.Stdout
	if cfg.Environment == "development" {
		out = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", cfg.ServiceName).
		Logger()
}
