// Package config loads the suite's settings from the environment.
package config

import (
	"fmt"

	"github.com/mstoykov/envconfig"
)

// LookupFunc resolves an environment key. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// Config aggregates every section the CLI and the e2e suite need.
type Config struct {
	Roles    *RolesConfig
	Database *DatabaseConfig
	Auth     *AuthConfig
	Browser  BrowserConfig
	Log      LogConfig
}

// Load reads and validates all sections.
func Load(lookup LookupFunc) (*Config, error) {
	roles, err := LoadRolesConfig(lookup)
	if err != nil {
		return nil, err
	}

	db, err := LoadDatabaseConfig(lookup)
	if err != nil {
		return nil, err
	}

	auth, err := LoadAuthConfig(lookup)
	if err != nil {
		return nil, err
	}

	browser, err := LoadBrowserConfig(lookup)
	if err != nil {
		return nil, err
	}

	logCfg, err := LoadLogConfig(lookup)
	if err != nil {
		return nil, err
	}

	return &Config{
		Roles:    roles,
		Database: db,
		Auth:     auth,
		Browser:  browser,
		Log:      logCfg,
	}, nil
}

func decode(spec interface{}, lookup LookupFunc) error {
	if err := envconfig.Process("", spec, lookup); err != nil {
		return fmt.Errorf("failed to decode environment: %w", err)
	}
	return nil
}

// requireAll returns an error naming the first empty key, checked in order.
func requireAll(values map[string]string, keys ...string) error {
	for _, key := range keys {
		if values[key] == "" {
			return fmt.Errorf("%s is required", key)
		}
	}
	return nil
}
