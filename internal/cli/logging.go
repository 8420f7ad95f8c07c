package cli

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/themizzi/sessionsuite/internal/config"
)

// ConfigureLogger applies LOG_LEVEL and LOG_FORMAT to logger.
func ConfigureLogger(logger *logrus.Logger, cfg config.LogConfig) error {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	logger.SetLevel(level)

	switch cfg.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}
