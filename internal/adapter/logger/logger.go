package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sm8ta/webike_rental_service/internal/core/ports"
)

type LoggerAdapter struct {
	log zerolog.Logger
}

var _ ports.LoggerPort = (*LoggerAdapter)(nil)

// NewLoggerAdapter writes JSON at info level in production and a console stream at debug level elsewhere.
// A non-empty level overrides the default.
func NewLoggerAdapter(app, env, level string) *LoggerAdapter {
	var output io.Writer = os.Stdout
	if env != "production" {
		output = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return NewWriterAdapter(output, app, env, level)
}

func NewWriterAdapter(w io.Writer, app, env, level string) *LoggerAdapter {
	lvl := zerolog.DebugLevel
	if env == "production" {
		lvl = zerolog.InfoLevel
	}
	if parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level))); err == nil && level != "" {
		lvl = parsed
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	log := zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Str("app", app).
		Str("env", env).
		Logger()

	return &LoggerAdapter{log: log}
}

// NewNop discards everything.
func NewNop() *LoggerAdapter {
	return &LoggerAdapter{log: zerolog.Nop()}
}

func (l *LoggerAdapter) Debug(msg string, fields map[string]interface{}) {
	l.log.Debug().Fields(fields).Msg(msg)
}

func (l *LoggerAdapter) Info(msg string, fields map[string]interface{}) {
	l.log.Info().Fields(fields).Msg(msg)
}

func (l *LoggerAdapter) Warn(msg string, fields map[string]interface{}) {
	l.log.Warn().Fields(fields).Msg(msg)
}

func (l *LoggerAdapter) Error(msg string, fields map[string]interface{}) {
	l.log.Error().Fields(fields).Msg(msg)
}
