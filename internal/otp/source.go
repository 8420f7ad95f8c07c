// Package otp looks up the newest one-time passcode issued to an email address.
package otp

import (
	"context"
	"errors"
	"fmt"

	"github.com/themizzi/sessionsuite/internal/models"
	"github.com/themizzi/sessionsuite/internal/repository"
)

// Source returns the most recent code for an email. found is false when no
// code was ever issued; err is reserved for lookup failures.
type Source interface {
	LatestCode(ctx context.Context, email string) (code string, found bool, err error)
}

// DataSourceError reports a failed lookup or connection
type DataSourceError struct {
	Op  string
	Err error
}

func (e *DataSourceError) Error() string {
	return fmt.Sprintf("otp %s: %v", e.Op, e.Err)
}

func (e *DataSourceError) Unwrap() error {
	return e.Err
}

// OTPRepository is the persistence the SQL source reads from
type OTPRepository interface {
	GetLatestOTPByEmail(ctx context.Context, email string) (*models.OTPRecord, error)
}

// SQLSource reads codes from the otp_verification table
type SQLSource struct {
	repo OTPRepository
}

// NewSQLSource creates a source backed by repo
func NewSQLSource(repo OTPRepository) *SQLSource {
	return &SQLSource{repo: repo}
}

// LatestCode implements Source
func (s *SQLSource) LatestCode(ctx context.Context, email string) (string, bool, error) {
	record, err := s.repo.GetLatestOTPByEmail(ctx, email)
	if errors.Is(err, repository.ErrOTPNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &DataSourceError{Op: "lookup", Err: err}
	}
	return record.Code, true, nil
}
