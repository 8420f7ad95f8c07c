package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envFrom(values map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func validEnv() map[string]string {
	return map[string]string{
		"ADMIN_URL":      "https://hr.example/web/index.php",
		"ADMIN_EMAIL":    "admin@example.com",
		"ADMIN_PASSWORD": "admin123",
		"USER_URL":       "https://shop.example",
		"USER_EMAIL":     "user@example.com",
		"USER_PASSWORD":  "user123",
		"DB_HOST":        "localhost",
		"DB_USER":        "qa",
		"DB_PASSWORD":    "secret",
		"DB_NAME":        "portal",
	}
}

func TestLoadRolesConfig(t *testing.T) {
	tests := []struct {
		name    string
		unset   string
		wantErr string
	}{
		{name: "all present"},
		{name: "missing admin url", unset: "ADMIN_URL", wantErr: "ADMIN_URL is required"},
		{name: "missing admin password", unset: "ADMIN_PASSWORD", wantErr: "ADMIN_PASSWORD is required"},
		{name: "missing user email", unset: "USER_EMAIL", wantErr: "USER_EMAIL is required"},
		{name: "missing user password", unset: "USER_PASSWORD", wantErr: "USER_PASSWORD is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := validEnv()
			delete(env, tt.unset)

			cfg, err := LoadRolesConfig(envFrom(env))
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, RoleConfig{
				URL:      "https://hr.example/web/index.php",
				Email:    "admin@example.com",
				Password: "admin123",
			}, cfg.Admin())
			assert.Equal(t, "user@example.com", cfg.User().Email)
		})
	}
}

func TestLoadDatabaseConfig(t *testing.T) {
	t.Run("defaults to mysql", func(t *testing.T) {
		cfg, err := LoadDatabaseConfig(envFrom(validEnv()))
		require.NoError(t, err)
		assert.Equal(t, DriverMySQL, cfg.Driver)
		assert.Equal(t, "3306", cfg.Port)
		dsn := cfg.ConnectionString()
		assert.Contains(t, dsn, "qa:secret@tcp(localhost:3306)/portal")
		assert.Contains(t, dsn, "parseTime=true")
	})

	t.Run("postgres", func(t *testing.T) {
		env := validEnv()
		env["DB_DRIVER"] = DriverPostgres
		cfg, err := LoadDatabaseConfig(envFrom(env))
		require.NoError(t, err)
		assert.Equal(t, "host=localhost port=5432 user=qa password=secret dbname=portal sslmode=disable",
			cfg.ConnectionString())
	})

	t.Run("sqlite only needs a name", func(t *testing.T) {
		cfg, err := LoadDatabaseConfig(envFrom(map[string]string{
			"DB_DRIVER": DriverSQLite,
			"DB_NAME":   "otp.db",
		}))
		require.NoError(t, err)
		assert.Equal(t, "otp.db", cfg.ConnectionString())
	})

	t.Run("missing host", func(t *testing.T) {
		env := validEnv()
		delete(env, "DB_HOST")
		_, err := LoadDatabaseConfig(envFrom(env))
		require.EqualError(t, err, "DB_HOST is required")
	})

	t.Run("unknown driver", func(t *testing.T) {
		env := validEnv()
		env["DB_DRIVER"] = "oracle"
		_, err := LoadDatabaseConfig(envFrom(env))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "oracle")
	})
}

func TestLoadAuthConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := LoadAuthConfig(envFrom(nil))
		require.NoError(t, err)
		assert.Equal(t, "playwright/.auth", cfg.Dir)
		assert.Equal(t, 5*time.Second, cfg.ProbeTimeout)
		assert.Equal(t, 30*time.Second, cfg.LoginTimeout)
		assert.Equal(t, OTPSourceSQL, cfg.OTPSource)
		assert.False(t, cfg.AdminSubmitOTP)
	})

	t.Run("overrides", func(t *testing.T) {
		cfg, err := LoadAuthConfig(envFrom(map[string]string{
			"AUTH_DIR":           "/tmp/auth",
			"AUTH_PROBE_TIMEOUT": "2s",
			"AUTH_LOGIN_TIMEOUT": "1m",
			"ADMIN_SUBMIT_OTP":   "true",
			"OTP_SOURCE":         "redis",
			"REDIS_ADDR":         "localhost:6379",
		}))
		require.NoError(t, err)
		assert.Equal(t, "/tmp/auth", cfg.Dir)
		assert.Equal(t, 2*time.Second, cfg.ProbeTimeout)
		assert.Equal(t, time.Minute, cfg.LoginTimeout)
		assert.True(t, cfg.AdminSubmitOTP)
		assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	})

	t.Run("redis without address", func(t *testing.T) {
		_, err := LoadAuthConfig(envFrom(map[string]string{"OTP_SOURCE": "redis"}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "REDIS_ADDR is required")
	})

	t.Run("bad duration", func(t *testing.T) {
		_, err := LoadAuthConfig(envFrom(map[string]string{"AUTH_PROBE_TIMEOUT": "soon"}))
		require.Error(t, err)
	})
}

func TestLoadBrowserConfig(t *testing.T) {
	cfg, err := LoadBrowserConfig(envFrom(nil))
	require.NoError(t, err)
	assert.Equal(t, "chromium", cfg.Name)
	assert.True(t, cfg.IsHeadless())
	assert.Equal(t, 10*time.Second, cfg.Timeout)

	cfg, err = LoadBrowserConfig(envFrom(map[string]string{"HEADLESS": "false", "BROWSER": "firefox", "BROWSER_TIMEOUT": "45s"}))
	require.NoError(t, err)
	assert.False(t, cfg.IsHeadless())
	assert.Equal(t, "firefox", cfg.Name)
	assert.Equal(t, 45*time.Second, cfg.Timeout)

	_, err = LoadBrowserConfig(envFrom(map[string]string{"BROWSER": "lynx"}))
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	cfg, err := Load(envFrom(validEnv()))
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example", cfg.Roles.UserURL)
	assert.Equal(t, "portal", cfg.Database.Name)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)

	env := validEnv()
	delete(env, "DB_PASSWORD")
	_, err = Load(envFrom(env))
	require.EqualError(t, err, "DB_PASSWORD is required")

	env = validEnv()
	env["LOG_FORMAT"] = "xml"
	_, err = Load(envFrom(env))
	require.Error(t, err)
}
