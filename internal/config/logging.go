package config

import "fmt"

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL"`
	Format string `envconfig:"LOG_FORMAT"`
}

// LoadLogConfig loads logger settings from environment variables
func LoadLogConfig(lookup LookupFunc) (LogConfig, error) {
	var config LogConfig
	if err := decode(&config, lookup); err != nil {
		return config, err
	}

	if config.Level == "" {
		config.Level = "info"
	}
	if config.Format == "" {
		config.Format = "text"
	}
	if config.Format != "text" && config.Format != "json" {
		return config, fmt.Errorf("unsupported LOG_FORMAT %q", config.Format)
	}

	return config, nil
}
