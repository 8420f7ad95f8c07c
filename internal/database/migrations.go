package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/themizzi/sessionsuite/internal/config"
)

var otpTable = map[string][]string{
	config.DriverPostgres: {
		`CREATE TABLE IF NOT EXISTS otp_verification (
			id BIGSERIAL PRIMARY KEY,
			email VARCHAR(255) NOT NULL,
			otp VARCHAR(16) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_otp_verification_email ON otp_verification(email, created_at)`,
	},
	config.DriverSQLite: {
		`CREATE TABLE IF NOT EXISTS otp_verification (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email VARCHAR(255) NOT NULL,
			otp VARCHAR(16) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_otp_verification_email ON otp_verification(email, created_at)`,
	},
	config.DriverMySQL: {
		`CREATE TABLE IF NOT EXISTS otp_verification (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			email VARCHAR(255) NOT NULL,
			otp VARCHAR(16) NOT NULL,
			created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
			INDEX idx_otp_verification_email (email, created_at)
		)`,
	},
}

// RunMigrations creates the otp_verification table used for second-factor codes
func RunMigrations(ctx context.Context, db *sql.DB, driver string) error {
	if db == nil {
		return fmt.Errorf("database connection not initialized")
	}

	statements, ok := otpTable[driver]
	if !ok {
		return fmt.Errorf("no migrations for driver %q", driver)
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create otp_verification table: %w", err)
		}
	}

	return nil
}
