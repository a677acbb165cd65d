// Package logging sets up the application logger. The TUI owns the
// terminal, so logs go to a rotating file only.
package logging

import (
	"log/slog"
	"os"
	"path/filepath"

	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Init creates a JSON slog logger writing to dir/pdfchat.log with rotation
// and installs it as the default logger.
func Init(dir string) (*slog.Logger, error) {
	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	writer := &lumberjack.Logger{
		Filename:   filepath.Join(dir, "pdfchat.log"),
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}
	handler := slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: slog.LevelInfo})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, nil
}
