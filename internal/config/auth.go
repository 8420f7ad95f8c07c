package config

import (
	"fmt"
	"time"
)

// OTP sources
const (
	OTPSourceSQL   = "sql"
	OTPSourceRedis = "redis"
)

// AuthConfig tunes session reuse and login
type AuthConfig struct {
	Dir            string        `envconfig:"AUTH_DIR"`
	ProbeTimeout   time.Duration `envconfig:"AUTH_PROBE_TIMEOUT"`
	LoginTimeout   time.Duration `envconfig:"AUTH_LOGIN_TIMEOUT"`
	AdminSubmitOTP bool          `envconfig:"ADMIN_SUBMIT_OTP"`
	OTPSource      string        `envconfig:"OTP_SOURCE"`
	RedisAddr      string        `envconfig:"REDIS_ADDR"`
}

// LoadAuthConfig loads authentication settings from environment variables
func LoadAuthConfig(lookup LookupFunc) (*AuthConfig, error) {
	var config AuthConfig
	if err := decode(&config, lookup); err != nil {
		return nil, err
	}

	if config.Dir == "" {
		config.Dir = "playwright/.auth" // Same location the session files always lived in
	}
	if config.ProbeTimeout <= 0 {
		config.ProbeTimeout = 5 * time.Second
	}
	if config.LoginTimeout <= 0 {
		config.LoginTimeout = 30 * time.Second
	}
	if config.OTPSource == "" {
		config.OTPSource = OTPSourceSQL
	}

	switch config.OTPSource {
	case OTPSourceSQL:
	case OTPSourceRedis:
		if config.RedisAddr == "" {
			return nil, fmt.Errorf("REDIS_ADDR is required when OTP_SOURCE is %s", OTPSourceRedis)
		}
	default:
		return nil, fmt.Errorf("unsupported OTP_SOURCE %q", config.OTPSource)
	}

	return &config, nil
}
