package main

import (
	"fmt"
	"os"

	"github.com/kadirpekel/intentkernel/internal/logger"
)

// initLogger resolves level/file/format (CLI flag > env var > default)
// and initializes the package-scope slog logger, mirroring
// cmd/hector's initLoggerFromCLI.
func initLogger(level, file, format string) (func(), error) {
	if level == "" {
		level = envOrDefault("LOG_LEVEL", "info")
	}
	if file == "" {
		file = os.Getenv("LOG_FILE")
	}
	if format == "" {
		format = envOrDefault("LOG_FORMAT", "simple")
	}

	parsed, err := logger.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	output := os.Stderr
	var cleanup func()
	if file != "" {
		f, cleanupFn, err := logger.OpenLogFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		output = f
		cleanup = cleanupFn
	}

	logger.Init(parsed, output, format)
	return cleanup, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
