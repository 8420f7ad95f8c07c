package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/themizzi/sessionsuite/internal/database"
	"github.com/themizzi/sessionsuite/internal/models"
)

// ErrOTPNotFound is returned when no code was ever issued to an email
var ErrOTPNotFound = errors.New("otp not found")

// OTPRepository handles database operations for one-time passcodes
type OTPRepository struct {
	db     *sql.DB
	driver string
}

// NewOTPRepository creates a new OTP repository over db using driver's bind syntax
func NewOTPRepository(db *sql.DB, driver string) *OTPRepository {
	return &OTPRepository{
		db:     db,
		driver: driver,
	}
}

// CreateOTP stores a newly issued code
func (r *OTPRepository) CreateOTP(ctx context.Context, record *models.OTPRecord) error {
	query := fmt.Sprintf(`
		INSERT INTO otp_verification (email, otp, created_at)
		VALUES (%s, %s, %s)
	`, r.bind(1), r.bind(2), r.bind(3))

	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, query, record.Email, record.Code, record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create otp: %w", err)
	}

	return nil
}

// GetLatestOTPByEmail retrieves the most recently issued code for email
func (r *OTPRepository) GetLatestOTPByEmail(ctx context.Context, email string) (*models.OTPRecord, error) {
	query := fmt.Sprintf(`
		SELECT id, email, otp, created_at
		FROM otp_verification
		WHERE email = %s
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, r.bind(1))

	record := &models.OTPRecord{}
	var createdAt interface{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&record.ID,
		&record.Email,
		&record.Code,
		&createdAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrOTPNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get otp: %w", err)
	}

	record.CreatedAt, err = parseTimestamp(createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get otp: %w", err)
	}

	return record, nil
}

// DeleteOTPsByEmail removes every code issued to email and reports how many were removed
func (r *OTPRepository) DeleteOTPsByEmail(ctx context.Context, email string) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM otp_verification WHERE email = %s`, r.bind(1))

	result, err := r.db.ExecContext(ctx, query, email)
	if err != nil {
		return 0, fmt.Errorf("failed to delete otps: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

func (r *OTPRepository) bind(n int) string {
	return database.Placeholder(r.driver, n)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// parseTimestamp normalizes the created_at column; drivers differ in whether
// they hand back time.Time or text.
func parseTimestamp(v interface{}) (time.Time, error) {
	var text string
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		text = t
	case []byte:
		text = string(t)
	default:
		return time.Time{}, fmt.Errorf("unexpected created_at type %T", v)
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, text); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized created_at value %q", text)
}
