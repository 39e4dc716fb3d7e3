package logger

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	defaultLogger *slog.Logger
	once          sync.Once
)

// Init initializes the default logger writing to os.Stdout. The level
// comes from LOG_LEVEL (debug, info, warn, error; default info) and
// LOG_FORMAT=json switches to the JSON handler. Initialization happens
// only once.
func Init() {
	once.Do(func() {
		opts := &slog.HandlerOptions{Level: levelFromEnv()}
		var handler slog.Handler
		if strings.EqualFold(os.Getenv("LOG_FORMAT"), "json") {
			handler = slog.NewJSONHandler(os.Stdout, opts)
		} else {
			handler = slog.NewTextHandler(os.Stdout, opts)
		}
		defaultLogger = slog.New(handler)
		slog.SetDefault(defaultLogger)
	})
}

func levelFromEnv() slog.Level {
	return parseLevel(os.Getenv("LOG_LEVEL"))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Configure rebuilds the default logger with an explicit level and
// format ("json" or "text"). Called once configuration is loaded,
// since Init runs before any config file is read.
func Configure(level, format string) {
	Init()
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

// Get returns the initialized default logger.
func Get() *slog.Logger {
	Init()
	return defaultLogger
}

// Info logs an informational message using the default logger.
func Info(msg string, args ...any) {
	Get().Info(msg, args...)
}

// Warn logs a warning message using the default logger.
func Warn(msg string, args ...any) {
	Get().Warn(msg, args...)
}

// Error logs an error message using the default logger.
func Error(msg string, err error, args ...any) {
	if err != nil {
		args = append(args, "error", err.Error())
	}
	Get().Error(msg, args...)
}

// Debug logs a debug message using the default logger.
func Debug(msg string, args ...any) {
	Get().Debug(msg, args...)
}
