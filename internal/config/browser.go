package config

import (
	"fmt"
	"strings"
	"time"
)

// BrowserConfig selects and tunes the automated browser
type BrowserConfig struct {
	Name     string        `envconfig:"BROWSER"`
	Headless string        `envconfig:"HEADLESS"`
	SlowMo   time.Duration `envconfig:"BROWSER_SLOWMO"`
	// Timeout bounds every browser action and navigation without its own timeout
	Timeout  time.Duration `envconfig:"BROWSER_TIMEOUT"`
}

// LoadBrowserConfig loads browser settings from environment variables
func LoadBrowserConfig(lookup LookupFunc) (BrowserConfig, error) {
	var config BrowserConfig
	if err := decode(&config, lookup); err != nil {
		return config, err
	}

	if config.Name == "" {
		config.Name = "chromium"
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	switch config.Name {
	case "chromium", "firefox", "webkit":
	default:
		return config, fmt.Errorf("unsupported BROWSER %q", config.Name)
	}

	return config, nil
}

// IsHeadless reports whether the browser runs without a window. Set
// HEADLESS=false to watch the run.
func (c BrowserConfig) IsHeadless() bool {
	return !strings.EqualFold(c.Headless, "false")
}
