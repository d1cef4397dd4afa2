package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/phrazzld/kanban-api/internal/config"
)

// Setup initializes the server's logging system from cfg. It creates a
// structured JSON logger writing to stdout at the configured level and sets
// it as the default slog logger.
func Setup(cfg config.ServerConfig) (*slog.Logger, error) {
	logger := New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)
	return logger, nil
}

// New returns a JSON logger writing to w at the given level. An unknown
// level falls back to info and is reported once through a text logger on stderr.
func New(w io.Writer, level string) *slog.Logger {
	lvl, ok := ParseLevel(level)
	if !ok {
		tmpLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		tmpLogger.Warn("invalid log level configured, using default level",
			"configured_level", level,
			"default_level", "info")
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler)
}

// ParseLevel maps a case-insensitive level name to a slog.Level.
// The second return value is false for unknown names, in which case
// slog.LevelInfo is returned.
func ParseLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
