package models

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/mail"
	"strings"
	"time"
)

// OTPCodeLength is the number of digits in codes issued by NewOTPRecord
const OTPCodeLength = 6

// OTPRecord is a one-time passcode issued to an email address
type OTPRecord struct {
	ID        int64
	Email     string
	Code      string
	CreatedAt time.Time
}

// Domain errors
var (
	ErrInvalidEmail = errors.New("email must be a valid address")
	ErrInvalidCode  = errors.New("otp code must be 4 to 16 digits")
)

// NewOTPRecord issues a fresh random code for email
func NewOTPRecord(email string) (*OTPRecord, error) {
	code, err := GenerateCode(OTPCodeLength)
	if err != nil {
		return nil, err
	}
	return NewOTPRecordWithCode(email, code)
}

// NewOTPRecordWithCode creates a record for a known code with validation
func NewOTPRecordWithCode(email, code string) (*OTPRecord, error) {
	if err := validateOTPInput(email, code); err != nil {
		return nil, err
	}

	return &OTPRecord{
		Email:     strings.TrimSpace(email),
		Code:      code,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func validateOTPInput(email, code string) error {
	if _, err := mail.ParseAddress(strings.TrimSpace(email)); err != nil {
		return ErrInvalidEmail
	}
	if len(code) < 4 || len(code) > 16 {
		return ErrInvalidCode
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return ErrInvalidCode
		}
	}
	return nil
}

// GenerateCode returns a zero-padded random numeric code of the given length
func GenerateCode(digits int) (string, error) {
	if digits < 4 || digits > 16 {
		return "", ErrInvalidCode
	}

	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}

	return fmt.Sprintf("%0*d", digits, n), nil
}
