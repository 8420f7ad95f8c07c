//go:build integration
// +build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/themizzi/sessionsuite/internal/config"
	"github.com/themizzi/sessionsuite/internal/models"
	"github.com/themizzi/sessionsuite/internal/repository/testutil"
)

func TestOTPRepository_GetLatestOTPByEmail_Integration(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	defer testDB.Teardown(t)

	repo := NewOTPRepository(testDB.DB, config.DriverPostgres)
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)

	for i, code := range []string{"111111", "222222", "333333"} {
		record := &models.OTPRecord{
			Email:     "admin@example.com",
			Code:      code,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.CreateOTP(ctx, record); err != nil {
			t.Fatalf("Failed to create otp %s: %v", code, err)
		}
	}

	got, err := repo.GetLatestOTPByEmail(ctx, "admin@example.com")
	if err != nil {
		t.Fatalf("Failed to retrieve latest otp: %v", err)
	}
	if got.Code != "333333" {
		t.Errorf("Code mismatch: got %v, want %v", got.Code, "333333")
	}
	if !got.CreatedAt.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("CreatedAt mismatch: got %v, want %v", got.CreatedAt, base.Add(2*time.Minute))
	}
}

func TestOTPRepository_GetLatestOTPByEmail_NotFound_Integration(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	defer testDB.Teardown(t)

	repo := NewOTPRepository(testDB.DB, config.DriverPostgres)

	_, err := repo.GetLatestOTPByEmail(context.Background(), "nobody@example.com")
	if err != ErrOTPNotFound {
		t.Errorf("Expected ErrOTPNotFound, got %v", err)
	}
}

func TestOTPRepository_DeleteOTPsByEmail_Integration(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	defer testDB.Teardown(t)

	repo := NewOTPRepository(testDB.DB, config.DriverPostgres)
	ctx := context.Background()

	record, err := models.NewOTPRecord("user@example.com")
	if err != nil {
		t.Fatalf("Failed to build otp: %v", err)
	}
	if err := repo.CreateOTP(ctx, record); err != nil {
		t.Fatalf("Failed to create otp: %v", err)
	}

	removed, err := repo.DeleteOTPsByEmail(ctx, "user@example.com")
	if err != nil {
		t.Fatalf("Failed to delete otps: %v", err)
	}
	if removed != 1 {
		t.Errorf("Expected 1 row removed, got %d", removed)
	}
}
