// Package logger provides structured logging on top of zerolog.
package logger

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

type Logger struct {
	logger zerolog.Logger
}

// New creates a JSON logger writing to stdout.
// Unknown levels fall back to info.
func New(level string) *Logger {
	zl := zerolog.New(os.Stdout).
		Level(parseLevel(level)).
		With().
		Timestamp().
		Logger()

	return &Logger{logger: zl}
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *Logger) Debug(format string, args ...any) {
	l.logger.Debug().Msgf(format, args...)
}

func (l *Logger) Info(format string, args ...any) {
	l.logger.Info().Msgf(format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.logger.Warn().Msgf(format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.logger.Error().Msgf(format, args...)
}

// Fatal logs the error and exits the process.
func (l *Logger) Fatal(err error) {
	l.logger.Fatal().Err(err).Send()
}
