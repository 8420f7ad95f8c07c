package cli

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/themizzi/sessionsuite/internal/config"
	"github.com/themizzi/sessionsuite/internal/database"
	"github.com/themizzi/sessionsuite/internal/demoapp"
	"github.com/themizzi/sessionsuite/internal/otp"
	"github.com/themizzi/sessionsuite/internal/repository"
)

// IssuedOTPTTL is how long codes issued by the demo portal stay in Redis.
const IssuedOTPTTL = 5 * time.Minute

// OTPStore is the read and write side of the configured OTP backend.
type OTPStore struct {
	Source otp.Source
	Issuer demoapp.OTPIssuer
	close  func() error
}

// Close releases the backend connection.
func (s *OTPStore) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// OpenOTPStore builds a client for the backend named by OTP_SOURCE. Neither
// backend is contacted until the first lookup or issue.
func OpenOTPStore(ctx context.Context, dbCfg *config.DatabaseConfig, authCfg *config.AuthConfig) (*OTPStore, error) {
	switch authCfg.OTPSource {
	case config.OTPSourceRedis:
		client := otp.DialRedis(authCfg.RedisAddr)
		source := otp.NewRedisSource(client)
		return &OTPStore{
			Source: source,
			Issuer: demoapp.NewRedisIssuer(source, IssuedOTPTTL),
			close:  client.Close,
		}, nil

	case config.OTPSourceSQL:
		db, err := database.Open(dbCfg)
		if err != nil {
			return nil, &otp.DataSourceError{Op: "connect", Err: err}
		}
		repo := repository.NewOTPRepository(db, dbCfg.Driver)
		return &OTPStore{
			Source: otp.NewSQLSource(repo),
			Issuer: demoapp.NewRepositoryIssuer(repo),
			close:  db.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported OTP_SOURCE %q", authCfg.OTPSource)
	}
}

// lazyOTPSource opens the OTP store on the first lookup, so logins that reuse
// a persisted session never touch the backend.
type lazyOTPSource struct {
	open func(ctx context.Context) (*OTPStore, error)

	mu    sync.Mutex
	store *OTPStore
}

func (s *lazyOTPSource) LatestCode(ctx context.Context, email string) (string, bool, error) {
	s.mu.Lock()
	if s.store == nil {
		store, err := s.open(ctx)
		if err != nil {
			s.mu.Unlock()
			var dsErr *otp.DataSourceError
			if errors.As(err, &dsErr) {
				return "", false, err
			}
			return "", false, &otp.DataSourceError{Op: "connect", Err: err}
		}
		s.store = store
	}
	store := s.store
	s.mu.Unlock()

	return store.Source.LatestCode(ctx, email)
}

// Close releases the store if a lookup opened it.
func (s *lazyOTPSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}
