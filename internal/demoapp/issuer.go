package demoapp

import (
	"context"
	"fmt"
	"time"

	"github.com/themizzi/sessionsuite/internal/models"
)

// OTPIssuer creates and stores a new one-time passcode for an email.
type OTPIssuer interface {
	IssueOTP(ctx context.Context, email string) (string, error)
}

// OTPWriter is the write side of the otp_verification repository.
type OTPWriter interface {
	CreateOTP(ctx context.Context, record *models.OTPRecord) error
	DeleteOTPsByEmail(ctx context.Context, email string) (int64, error)
}

// RepositoryIssuer writes codes to the otp_verification table.
type RepositoryIssuer struct {
	repo OTPWriter
}

func NewRepositoryIssuer(repo OTPWriter) *RepositoryIssuer {
	return &RepositoryIssuer{repo: repo}
}

// IssueOTP implements OTPIssuer. Codes issued earlier to the same address are
// removed first, so only the newest one is ever accepted.
func (i *RepositoryIssuer) IssueOTP(ctx context.Context, email string) (string, error) {
	record, err := models.NewOTPRecord(email)
	if err != nil {
		return "", err
	}
	if _, err := i.repo.DeleteOTPsByEmail(ctx, record.Email); err != nil {
		return "", fmt.Errorf("failed to clear old otps: %w", err)
	}
	if err := i.repo.CreateOTP(ctx, record); err != nil {
		return "", fmt.Errorf("failed to store otp: %w", err)
	}
	return record.Code, nil
}

// CodeSetter stores a code with an expiry. *otp.RedisSource satisfies it.
type CodeSetter interface {
	Issue(ctx context.Context, email, code string, ttl time.Duration) error
}

// RedisIssuer writes expiring codes to Redis.
type RedisIssuer struct {
	store CodeSetter
	ttl   time.Duration
}

func NewRedisIssuer(store CodeSetter, ttl time.Duration) *RedisIssuer {
	return &RedisIssuer{store: store, ttl: ttl}
}

// IssueOTP implements OTPIssuer
func (i *RedisIssuer) IssueOTP(ctx context.Context, email string) (string, error) {
	record, err := models.NewOTPRecord(email)
	if err != nil {
		return "", err
	}
	if err := i.store.Issue(ctx, record.Email, record.Code, i.ttl); err != nil {
		return "", err
	}
	return record.Code, nil
}
