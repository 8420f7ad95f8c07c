package config

import (
	"fmt"
	"net"

	"github.com/go-sql-driver/mysql"
)

// Supported database drivers
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DatabaseConfig holds configuration for the database that stores OTP records
type DatabaseConfig struct {
	Driver   string `envconfig:"DB_DRIVER"`
	Host     string `envconfig:"DB_HOST"`
	Port     string `envconfig:"DB_PORT"`
	User     string `envconfig:"DB_USER"`
	Password string `envconfig:"DB_PASSWORD"`
	Name     string `envconfig:"DB_NAME"`
}

// LoadDatabaseConfig loads database configuration from environment variables.
// With the sqlite driver only DB_NAME, the database file, is required.
func LoadDatabaseConfig(lookup LookupFunc) (*DatabaseConfig, error) {
	var config DatabaseConfig
	if err := decode(&config, lookup); err != nil {
		return nil, err
	}

	if config.Driver == "" {
		config.Driver = DriverMySQL
	}

	values := map[string]string{
		"DB_HOST":     config.Host,
		"DB_USER":     config.User,
		"DB_PASSWORD": config.Password,
		"DB_NAME":     config.Name,
	}

	switch config.Driver {
	case DriverMySQL, DriverPostgres:
		if err := requireAll(values, "DB_HOST", "DB_USER", "DB_PASSWORD", "DB_NAME"); err != nil {
			return nil, err
		}
	case DriverSQLite:
		if err := requireAll(values, "DB_NAME"); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", config.Driver)
	}

	if config.Port == "" {
		switch config.Driver {
		case DriverMySQL:
			config.Port = "3306"
		case DriverPostgres:
			config.Port = "5432"
		}
	}

	return &config, nil
}

// ConnectionString returns the DSN for the configured driver
func (c *DatabaseConfig) ConnectionString() string {
	switch c.Driver {
	case DriverPostgres:
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			c.Host, c.Port, c.User, c.Password, c.Name)
	case DriverSQLite:
		return c.Name
	default:
		dsn := mysql.NewConfig()
		dsn.User = c.User
		dsn.Passwd = c.Password
		dsn.Net = "tcp"
		dsn.Addr = net.JoinHostPort(c.Host, c.Port)
		dsn.DBName = c.Name
		dsn.ParseTime = true
		return dsn.FormatDSN()
	}
}
