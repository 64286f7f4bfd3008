package config

import (
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// NewLogger returns the application logger: human readable text with debug
// output in development, JSON at info level otherwise
func NewLogger(env string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          "lostfound",
	})

	if env == "production" {
		logger.SetFormatter(log.JSONFormatter)
		logger.SetLevel(log.InfoLevel)
	} else {
		logger.SetLevel(log.DebugLevel)
	}

	log.SetDefault(logger)
	return logger
}
