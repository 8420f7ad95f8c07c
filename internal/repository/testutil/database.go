package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"testing"
	"time"

	"github.com/themizzi/sessionsuite/internal/config"
	"github.com/themizzi/sessionsuite/internal/database"
	_ "github.com/lib/pq"
)

// TestDatabase represents an isolated test database
type TestDatabase struct {
	DB         *sql.DB
	SchemaName string
	connConfig *config.DatabaseConfig
	masterDB   *sql.DB
}

// SetupTestDatabase creates an isolated Postgres schema for testing
func SetupTestDatabase(t *testing.T) *TestDatabase {
	t.Helper()

	// Load database configuration from environment, falling back to a local Postgres
	connConfig, err := config.LoadDatabaseConfig(func(key string) (string, bool) {
		switch key {
		case "DB_DRIVER":
			return config.DriverPostgres, true
		case "DB_HOST":
			return getEnvOrDefault("DB_HOST", "localhost"), true
		case "DB_PORT":
			return getEnvOrDefault("DB_PORT", "5432"), true
		case "DB_USER":
			return getEnvOrDefault("DB_USER", "postgres"), true
		case "DB_PASSWORD":
			return getEnvOrDefault("DB_PASSWORD", "postgres"), true
		case "DB_NAME":
			return getEnvOrDefault("DB_NAME", "postgres"), true
		default:
			return "", false
		}
	})
	if err != nil {
		t.Fatalf("Failed to load database config: %v", err)
	}

	// Connect to the master database
	masterConnStr := connConfig.ConnectionString()

	masterDB, err := sql.Open("postgres", masterConnStr)
	if err != nil {
		t.Fatalf("Failed to connect to master database: %v", err)
	}

	if err := masterDB.Ping(); err != nil {
		masterDB.Close()
		t.Fatalf("Failed to ping master database: %v", err)
	}

	// Generate unique schema name for this test
	schemaName := fmt.Sprintf("test_schema_%d_%d", time.Now().UnixNano(), rand.Intn(10000))

	// Create schema
	_, err = masterDB.Exec(fmt.Sprintf("CREATE SCHEMA %s", schemaName))
	if err != nil {
		masterDB.Close()
		t.Fatalf("Failed to create test schema: %v", err)
	}

	// Connect to the same database but set search_path to the test schema
	testConnStr := fmt.Sprintf("%s search_path=%s", masterConnStr, schemaName)
	testDB, err := sql.Open("postgres", testConnStr)
	if err != nil {
		masterDB.Exec(fmt.Sprintf("DROP SCHEMA %s CASCADE", schemaName))
		masterDB.Close()
		t.Fatalf("Failed to connect to test schema: %v", err)
	}

	if err := testDB.Ping(); err != nil {
		testDB.Close()
		masterDB.Exec(fmt.Sprintf("DROP SCHEMA %s CASCADE", schemaName))
		masterDB.Close()
		t.Fatalf("Failed to ping test database: %v", err)
	}

	// Configure connection pool for test database
	testDB.SetMaxOpenConns(5)
	testDB.SetMaxIdleConns(2)
	testDB.SetConnMaxLifetime(5 * time.Minute)

	testDatabase := &TestDatabase{
		DB:         testDB,
		SchemaName: schemaName,
		connConfig: connConfig,
		masterDB:   masterDB,
	}

	// Run migrations in the test schema
	if err := database.RunMigrations(context.Background(), testDB, config.DriverPostgres); err != nil {
		testDatabase.Teardown(t)
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return testDatabase
}

// Teardown cleans up the test database schema
func (td *TestDatabase) Teardown(t *testing.T) {
	t.Helper()

	if td.DB != nil {
		td.DB.Close()
	}

	if td.masterDB != nil {
		// Drop the test schema
		_, err := td.masterDB.Exec(fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", td.SchemaName))
		if err != nil {
			t.Logf("Warning: Failed to drop test schema %s: %v", td.SchemaName, err)
		}
		td.masterDB.Close()
	}
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
