// Package browsertest provides an in-memory browser.Driver that simulates a
// login-protected web application.
package browsertest

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/themizzi/sessionsuite/internal/browser"
)

// LoginForm names the selectors the simulated application reacts to.
type LoginForm struct {
	IdentifierField browser.Selector
	SecretField     browser.Selector
	Submit          browser.Selector
	Indicator       browser.Selector
	OTPField        browser.Selector
	OTPConfirm      browser.Selector
}

// Driver is a fake browser.Driver. Configure the exported fields before use.
type Driver struct {
	Form       LoginForm
	Identifier string
	Secret     string
	// OTPCode, when set, makes the application ask for this code after the
	// credentials are accepted.
	OTPCode string

	// ValidState is the snapshot that counts as signed in when seeded.
	ValidState string
	// IssuedState is what StorageState returns for a signed-in session.
	IssuedState string

	// Hidden selectors (by String()) never become visible.
	Hidden map[string]bool
	// Texts maps selector strings to their text content.
	Texts map[string]string
	// Disabled selectors report IsEnabled false.
	Disabled map[string]bool

	NewSessionErr error
	GotoErr       error
	StorageErr    error

	mu       sync.Mutex
	sessions []*Session
}

// NewSession implements browser.Driver.
func (d *Driver) NewSession(state []byte) (browser.Session, error) {
	if d.NewSessionErr != nil {
		return nil, d.NewSessionErr
	}

	s := &Session{
		driver: d,
		Seed:   string(state),
		values: map[string]string{},
	}
	s.SignedIn = len(state) > 0 && string(state) == d.ValidState

	d.mu.Lock()
	d.sessions = append(d.sessions, s)
	d.mu.Unlock()
	return s, nil
}

// Sessions returns every session opened so far, oldest first.
func (d *Driver) Sessions() []*Session {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Session(nil), d.sessions...)
}

// CountCalls counts recorded calls starting with prefix across all sessions.
func (d *Driver) CountCalls(prefix string) int {
	n := 0
	for _, s := range d.Sessions() {
		n += s.CountCalls(prefix)
	}
	return n
}

// Session is a fake browser.Session that records what was done to it.
type Session struct {
	driver *Driver

	Seed     string
	SignedIn bool
	AwaitOTP bool
	Closed   bool
	Dialogs  *bool
	LastShot string

	mu     sync.Mutex
	url    string
	calls  []string
	waits  []time.Duration
	values map[string]string
}

func (s *Session) record(format string, args ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, fmt.Sprintf(format, args...))
}

// Calls returns the recorded calls in order.
func (s *Session) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// CountCalls counts recorded calls starting with prefix.
func (s *Session) CountCalls(prefix string) int {
	n := 0
	for _, c := range s.Calls() {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// Waits returns the timeouts passed to WaitVisible, in order.
func (s *Session) Waits() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.waits...)
}

// Value returns what was last filled into sel.
func (s *Session) Value(sel browser.Selector) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[sel.String()]
}

func (s *Session) Goto(url string) error {
	s.record("goto %s", url)
	if s.driver.GotoErr != nil {
		return s.driver.GotoErr
	}
	s.mu.Lock()
	s.url = url
	s.mu.Unlock()
	return nil
}

func (s *Session) Locate(sel browser.Selector) browser.Element {
	return &Element{session: s, sel: sel}
}

func (s *Session) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url
}

func (s *Session) WaitForLoadState(state browser.LoadState) error {
	s.record("load %s", state)
	return nil
}

func (s *Session) WaitForURL(pattern string, timeout time.Duration) error {
	s.record("waiturl %s", pattern)
	return nil
}

func (s *Session) Back() error {
	s.record("back")
	return nil
}

func (s *Session) Forward() error {
	s.record("forward")
	return nil
}

func (s *Session) Reload() error {
	s.record("reload")
	return nil
}

func (s *Session) Screenshot(path string) error {
	s.record("screenshot %s", path)
	s.LastShot = path
	return nil
}

func (s *Session) HandleDialogs(accept bool) {
	s.record("dialogs %t", accept)
	s.Dialogs = &accept
}

func (s *Session) StorageState() ([]byte, error) {
	if s.driver.StorageErr != nil {
		return nil, s.driver.StorageErr
	}
	if !s.SignedIn {
		return []byte(`{"cookies":[],"origins":[]}`), nil
	}
	return []byte(s.driver.IssuedState), nil
}

func (s *Session) Close() error {
	s.record("close")
	s.Closed = true
	return nil
}

// Element is a fake browser.Element.
type Element struct {
	session *Session
	sel     browser.Selector
}

func (e *Element) Fill(value string) error {
	s := e.session
	s.record("fill %s", e.sel)
	s.mu.Lock()
	s.values[e.sel.String()] = value
	s.mu.Unlock()
	return nil
}

func (e *Element) Click() error {
	s := e.session
	d := s.driver
	s.record("click %s", e.sel)

	switch e.sel {
	case d.Form.Submit:
		if s.Value(d.Form.IdentifierField) == d.Identifier && s.Value(d.Form.SecretField) == d.Secret {
			if d.OTPCode != "" {
				s.AwaitOTP = true
			} else {
				s.SignedIn = true
			}
		}
	case d.Form.OTPConfirm:
		if s.AwaitOTP && s.Value(d.Form.OTPField) == d.OTPCode {
			s.AwaitOTP = false
			s.SignedIn = true
		}
	}
	return nil
}

func (e *Element) WaitVisible(timeout time.Duration) error {
	s := e.session
	d := s.driver
	s.record("wait %s", e.sel)
	s.mu.Lock()
	s.waits = append(s.waits, timeout)
	s.mu.Unlock()

	visible := !d.Hidden[e.sel.String()]
	switch e.sel {
	case d.Form.Indicator:
		visible = visible && s.SignedIn
	case d.Form.OTPField:
		visible = visible && s.AwaitOTP
	}
	if !visible {
		return fmt.Errorf("%w: %s not visible after %s", browser.ErrTimeout, e.sel, timeout)
	}
	return nil
}

func (e *Element) WaitHidden(timeout time.Duration) error {
	e.session.record("waithidden %s", e.sel)
	return nil
}

func (e *Element) IsVisible() (bool, error) {
	return !e.session.driver.Hidden[e.sel.String()], nil
}

func (e *Element) IsHidden() (bool, error) {
	return e.session.driver.Hidden[e.sel.String()], nil
}

func (e *Element) Text() (string, error) {
	return e.session.driver.Texts[e.sel.String()], nil
}

func (e *Element) Count() (int, error) {
	if e.session.driver.Hidden[e.sel.String()] {
		return 0, nil
	}
	return 1, nil
}

func (e *Element) Clear() error {
	e.session.record("clear %s", e.sel)
	return nil
}

func (e *Element) Type(text string) error {
	e.session.record("type %s", e.sel)
	return nil
}

func (e *Element) Check() error {
	e.session.record("check %s", e.sel)
	return nil
}

func (e *Element) Uncheck() error {
	e.session.record("uncheck %s", e.sel)
	return nil
}

func (e *Element) Hover() error {
	e.session.record("hover %s", e.sel)
	return nil
}

func (e *Element) Press(key string) error {
	e.session.record("press %s %s", e.sel, key)
	return nil
}

func (e *Element) IsEnabled() (bool, error) {
	return !e.session.driver.Disabled[e.sel.String()], nil
}

func (e *Element) IsEditable() (bool, error) { return true, nil }
func (e *Element) First() browser.Element    { return e }

func (e *Element) SelectOption(value string) error {
	e.session.record("select %s %s", e.sel, value)
	return nil
}
