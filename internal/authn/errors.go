package authn

import (
	"errors"
	"fmt"
)

// Stage names the step of a fresh login that failed.
type Stage string

// Login stages
const (
	StageOpen       Stage = "open"
	StageNavigate   Stage = "navigate"
	StageIdentifier Stage = "identifier"
	StageSecret     Stage = "secret"
	StageSubmit     Stage = "submit"
	StageOTP        Stage = "otp"
	StageLogin      Stage = "login"
)

// ErrAuthentication matches every *AuthenticationError via errors.Is.
var ErrAuthentication = errors.New("authentication failed")

// AuthenticationError reports a fresh login that could not establish a session.
type AuthenticationError struct {
	Role  string
	Stage Stage
	Err   error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("%s login failed at %s: %v", e.Role, e.Stage, e.Err)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrAuthentication) hold for any stage.
func (e *AuthenticationError) Is(target error) bool {
	return target == ErrAuthentication
}

// PersistenceError reports a session snapshot that could not be saved.
type PersistenceError struct {
	Role string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist %s session to %s: %v", e.Role, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
