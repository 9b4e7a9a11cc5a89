package main

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"pycramdb/config"
)

// setupLogging configures the standard logrus logger every package logs
// through.
func setupLogging(cfg *config.LogConfig, out io.Writer) error {
	logger := logrus.StandardLogger()
	logger.SetOutput(out)
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	logger.SetLevel(level)
	switch cfg.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("unknown log format %q", cfg.Format)
	}
	return nil
}
