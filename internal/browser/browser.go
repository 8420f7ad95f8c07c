// Package browser defines the narrow browser-control surface the suite needs
// and implements it over playwright-go.
package browser

import (
	"errors"
	"time"
)

// ErrTimeout is matched by errors returned from waits that ran out of time.
var ErrTimeout = errors.New("browser: timeout")

// LoadState is a page lifecycle state accepted by WaitForLoadState.
type LoadState string

// Load states
const (
	LoadStateLoad             LoadState = "load"
	LoadStateDOMContentLoaded LoadState = "domcontentloaded"
	LoadStateNetworkIdle      LoadState = "networkidle"
)

// Driver opens isolated browsing sessions.
type Driver interface {
	// NewSession opens a fresh browsing context with a single page. A non-empty
	// state seeds cookies and local storage from a prior StorageState snapshot.
	NewSession(state []byte) (Session, error)
}

// Session is one isolated browsing context with a single page.
type Session interface {
	Goto(url string) error
	Locate(sel Selector) Element
	URL() string
	WaitForLoadState(state LoadState) error
	WaitForURL(pattern string, timeout time.Duration) error
	Back() error
	Forward() error
	Reload() error
	Screenshot(path string) error
	HandleDialogs(accept bool)
	// StorageState serializes the context's cookies and local storage.
	StorageState() ([]byte, error)
	Close() error
}

// Element is a lazily resolved handle to whatever a Selector matches.
type Element interface {
	Fill(value string) error
	Clear() error
	Type(text string) error
	Click() error
	Check() error
	Uncheck() error
	Hover() error
	Press(key string) error
	SelectOption(value string) error
	// WaitVisible blocks until the element is visible. A zero timeout uses
	// the driver default.
	WaitVisible(timeout time.Duration) error
	WaitHidden(timeout time.Duration) error
	IsVisible() (bool, error)
	IsHidden() (bool, error)
	IsEnabled() (bool, error)
	IsEditable() (bool, error)
	Text() (string, error)
	Count() (int, error)
	First() Element
}
