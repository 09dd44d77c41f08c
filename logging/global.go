// Package logging wraps slog with a process-wide logger, console fallback
// and an HTTP access log middleware.
package logging

import (
	"log/slog"
	"os"
)

type LoggingService struct {
	Logger *slog.Logger
	close  func() error
}

var DefaultLoggingService *LoggingService

// InitLogger initializes the global logger instance. An empty dir logs to
// the console only.
func InitLogger(dir string) {
	InitLoggerWithOptions(dir, slog.LevelInfo, 7)
}

// InitLoggerWithOptions initializes the global logger with a level and file retention
func InitLoggerWithOptions(dir string, level slog.Level, retentionDays int) {
	logger, closer := SetupLogger(dir, level, retentionDays)
	DefaultLoggingService = &LoggingService{Logger: logger, close: closer}
	slog.SetDefault(logger)
}

// Close releases the log file of the global logger, if any
func Close() error {
	if DefaultLoggingService == nil || DefaultLoggingService.close == nil {
		return nil
	}
	return DefaultLoggingService.close()
}

// Logger returns the global logger, or a stderr fallback when not initialized
func Logger() *slog.Logger {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return DefaultLoggingService.Logger
}

// Package-level functions for direct access

func Info(msg string, args ...any) {
	Logger().Info(msg, args...)
}

func Error(msg string, args ...any) {
	Logger().Error(msg, args...)
}

func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}
