// Package authn hands out authenticated browsing sessions, reusing a persisted
// session when it still works and logging in from scratch when it does not.
package authn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/themizzi/sessionsuite/internal/browser"
	"github.com/themizzi/sessionsuite/internal/otp"
)

// Default bounds. The probe is short so a stale session never stalls a run;
// the login wait is long so a slow but valid login is not cut off.
const (
	DefaultProbeTimeout = 5 * time.Second
	DefaultLoginTimeout = 30 * time.Second
)

// Origin tells how an AuthenticatedContext was obtained.
type Origin int

// Origins
const (
	Reused Origin = iota
	FreshLogin
)

func (o Origin) String() string {
	if o == Reused {
		return "reused"
	}
	return "fresh-login"
}

// SessionStore persists storage-state snapshots by path.
type SessionStore interface {
	Exists(path string) (bool, error)
	Load(path string) ([]byte, error)
	Save(path string, data []byte) error
}

// AuthenticatedContext is a live signed-in session owned by one caller.
type AuthenticatedContext struct {
	Profile RoleProfile
	Session browser.Session
	Origin  Origin
}

// Close tears the browsing context down.
func (c *AuthenticatedContext) Close() error {
	return c.Session.Close()
}

// Options tune an Authenticator. Zero values select the defaults.
type Options struct {
	ProbeTimeout time.Duration
	LoginTimeout time.Duration
	// OTP is consulted for roles with a SecondFactor. It may be nil when no
	// profile needs one.
	OTP    otp.Source
	Logger logrus.FieldLogger
}

// Authenticator implements the probe-then-login procedure.
type Authenticator struct {
	driver       browser.Driver
	store        SessionStore
	otp          otp.Source
	probeTimeout time.Duration
	loginTimeout time.Duration
	log          logrus.FieldLogger
}

// New creates an Authenticator.
func New(driver browser.Driver, store SessionStore, opts Options) *Authenticator {
	a := &Authenticator{
		driver:       driver,
		store:        store,
		otp:          opts.OTP,
		probeTimeout: opts.ProbeTimeout,
		loginTimeout: opts.LoginTimeout,
		log:          opts.Logger,
	}
	if a.probeTimeout <= 0 {
		a.probeTimeout = DefaultProbeTimeout
	}
	if a.loginTimeout <= 0 {
		a.loginTimeout = DefaultLoginTimeout
	}
	if a.log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		a.log = discard
	}
	return a
}

// Authenticate returns a signed-in session for profile. A persisted session is
// tried first with a bounded probe; if it is missing or stale, exactly one
// fresh login is attempted and its state persisted.
func (a *Authenticator) Authenticate(ctx context.Context, profile RoleProfile) (*AuthenticatedContext, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	log := a.log.WithField("role", profile.Name)

	if session := a.reuse(profile, log); session != nil {
		return &AuthenticatedContext{Profile: profile, Session: session, Origin: Reused}, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	session, err := a.login(ctx, profile, log)
	if err != nil {
		return nil, err
	}
	return &AuthenticatedContext{Profile: profile, Session: session, Origin: FreshLogin}, nil
}

// Refresh skips the persisted session and performs one fresh login,
// overwriting the session file on success.
func (a *Authenticator) Refresh(ctx context.Context, profile RoleProfile) (*AuthenticatedContext, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	session, err := a.login(ctx, profile, a.log.WithField("role", profile.Name))
	if err != nil {
		return nil, err
	}
	return &AuthenticatedContext{Profile: profile, Session: session, Origin: FreshLogin}, nil
}

// Probe reports whether the persisted session for profile is still valid
// without ever logging in. The probing context is always closed.
func (a *Authenticator) Probe(profile RoleProfile) (bool, error) {
	if err := profile.Validate(); err != nil {
		return false, err
	}

	exists, err := a.store.Exists(profile.SessionFile)
	if err != nil || !exists {
		return false, err
	}

	session, err := a.probe(profile)
	if err != nil {
		a.log.WithField("role", profile.Name).WithError(err).Debug("Session probe failed")
		return false, nil
	}
	return true, session.Close()
}

// reuse returns a session seeded from the persisted snapshot if its indicator
// shows up within the probe bound, and nil otherwise. It never writes.
func (a *Authenticator) reuse(profile RoleProfile, log logrus.FieldLogger) browser.Session {
	exists, err := a.store.Exists(profile.SessionFile)
	if err != nil {
		log.WithError(err).Warn("Could not check persisted session, logging in")
		return nil
	}
	if !exists {
		log.WithField("path", profile.SessionFile).Debug("No persisted session, logging in")
		return nil
	}

	session, err := a.probe(profile)
	if err != nil {
		log.WithError(err).Info("Session expired, re-authenticating...")
		return nil
	}

	log.WithField("path", profile.SessionFile).Debug("Reusing persisted session")
	return session
}

func (a *Authenticator) probe(profile RoleProfile) (browser.Session, error) {
	state, err := a.store.Load(profile.SessionFile)
	if err != nil {
		return nil, err
	}
	if len(state) == 0 {
		return nil, errors.New("persisted session is empty")
	}

	session, err := a.driver.NewSession(state)
	if err != nil {
		return nil, err
	}

	if err := session.Goto(profile.URL); err != nil {
		session.Close()
		return nil, err
	}

	if err := session.Locate(profile.Indicator).WaitVisible(a.probeTimeout); err != nil {
		session.Close()
		return nil, err
	}

	return session, nil
}

func (a *Authenticator) login(ctx context.Context, profile RoleProfile, log logrus.FieldLogger) (browser.Session, error) {
	session, err := a.driver.NewSession(nil)
	if err != nil {
		return nil, &AuthenticationError{Role: profile.Name, Stage: StageOpen, Err: err}
	}

	fail := func(err error) (browser.Session, error) {
		session.Close()
		return nil, err
	}
	failAt := func(stage Stage, err error) (browser.Session, error) {
		return fail(&AuthenticationError{Role: profile.Name, Stage: stage, Err: err})
	}

	if err := session.Goto(profile.URL); err != nil {
		return failAt(StageNavigate, err)
	}
	if err := session.Locate(profile.IdentifierField).Fill(profile.Identifier); err != nil {
		return failAt(StageIdentifier, err)
	}
	if err := session.Locate(profile.SecretField).Fill(profile.Secret); err != nil {
		return failAt(StageSecret, err)
	}
	if err := session.Locate(profile.SubmitControl).Click(); err != nil {
		return failAt(StageSubmit, err)
	}

	sf := profile.SecondFactor
	if sf != nil && sf.Submit {
		if err := a.submitSecondFactor(ctx, session, profile, log); err != nil {
			return fail(err)
		}
	}

	if err := session.Locate(profile.Indicator).WaitVisible(a.loginTimeout); err != nil {
		return failAt(StageLogin, err)
	}

	if sf != nil && !sf.Submit {
		code, found, err := a.lookupOTP(ctx, profile)
		if err != nil {
			return fail(err)
		}
		if found {
			log.WithField("email", profile.Identifier).Infof("OTP for %s: %s", profile.Identifier, code)
		} else {
			log.WithField("email", profile.Identifier).Info("No OTP issued")
		}
	}

	state, err := session.StorageState()
	if err != nil {
		return fail(&PersistenceError{Role: profile.Name, Path: profile.SessionFile, Err: err})
	}
	if err := a.store.Save(profile.SessionFile, state); err != nil {
		return fail(&PersistenceError{Role: profile.Name, Path: profile.SessionFile, Err: err})
	}

	log.WithField("path", profile.SessionFile).Info("Logged in and saved session")
	return session, nil
}

func (a *Authenticator) submitSecondFactor(ctx context.Context, session browser.Session, profile RoleProfile, log logrus.FieldLogger) error {
	sf := profile.SecondFactor
	field := session.Locate(sf.Field)
	if err := field.WaitVisible(a.loginTimeout); err != nil {
		return &AuthenticationError{Role: profile.Name, Stage: StageOTP, Err: err}
	}

	code, found, err := a.lookupOTP(ctx, profile)
	if err != nil {
		return err
	}
	if !found {
		return &AuthenticationError{
			Role:  profile.Name,
			Stage: StageOTP,
			Err:   fmt.Errorf("no otp issued to %s", profile.Identifier),
		}
	}
	log.WithField("email", profile.Identifier).Debug("Submitting OTP")

	if err := field.Fill(code); err != nil {
		return &AuthenticationError{Role: profile.Name, Stage: StageOTP, Err: err}
	}
	if err := session.Locate(sf.Confirm).Click(); err != nil {
		return &AuthenticationError{Role: profile.Name, Stage: StageOTP, Err: err}
	}
	return nil
}

func (a *Authenticator) lookupOTP(ctx context.Context, profile RoleProfile) (string, bool, error) {
	if a.otp == nil {
		return "", false, &otp.DataSourceError{Op: "lookup", Err: errors.New("no otp source configured")}
	}
	return a.otp.LatestCode(ctx, profile.Identifier)
}
