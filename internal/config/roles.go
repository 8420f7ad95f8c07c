package config

// RoleConfig holds the login endpoint and credentials of one actor type
type RoleConfig struct {
	URL      string
	Email    string
	Password string
}

// RolesConfig holds both roles exercised by the suite
type RolesConfig struct {
	AdminURL      string `envconfig:"ADMIN_URL"`
	AdminEmail    string `envconfig:"ADMIN_EMAIL"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`
	UserURL       string `envconfig:"USER_URL"`
	UserEmail     string `envconfig:"USER_EMAIL"`
	UserPassword  string `envconfig:"USER_PASSWORD"`
}

// LoadRolesConfig loads admin and user credentials from environment variables
func LoadRolesConfig(lookup LookupFunc) (*RolesConfig, error) {
	var config RolesConfig
	if err := decode(&config, lookup); err != nil {
		return nil, err
	}

	// Validate required fields
	err := requireAll(map[string]string{
		"ADMIN_URL":      config.AdminURL,
		"ADMIN_EMAIL":    config.AdminEmail,
		"ADMIN_PASSWORD": config.AdminPassword,
		"USER_URL":       config.UserURL,
		"USER_EMAIL":     config.UserEmail,
		"USER_PASSWORD":  config.UserPassword,
	}, "ADMIN_URL", "ADMIN_EMAIL", "ADMIN_PASSWORD", "USER_URL", "USER_EMAIL", "USER_PASSWORD")
	if err != nil {
		return nil, err
	}

	return &config, nil
}

// Admin returns the administrative role's settings
func (c *RolesConfig) Admin() RoleConfig {
	return RoleConfig{URL: c.AdminURL, Email: c.AdminEmail, Password: c.AdminPassword}
}

// User returns the end-customer role's settings
func (c *RolesConfig) User() RoleConfig {
	return RoleConfig{URL: c.UserURL, Email: c.UserEmail, Password: c.UserPassword}
}
