// Package pages holds the page objects the e2e suite drives. Every page wraps a
// Handle, which carries the signed-in session and the role's base URL.
package pages

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/themizzi/sessionsuite/internal/browser"
)

// DefaultAssertTimeout bounds the Should* assertions when no timeout is given.
const DefaultAssertTimeout = 5 * time.Second

// ErrAssertion is wrapped by every failed Should* check.
var ErrAssertion = errors.New("assertion failed")

// Navigator moves the page around.
type Navigator interface {
	Goto(path string) error
	Back() error
	Forward() error
	Reload() error
	WaitForLoadState(state browser.LoadState) error
	WaitForURL(pattern string, timeout time.Duration) error
}

// Clickable is anything a test can click, hover or press keys on.
type Clickable interface {
	Click(sel browser.Selector) error
	Hover(sel browser.Selector) error
	Press(sel browser.Selector, key string) error
	Check(sel browser.Selector) error
	Uncheck(sel browser.Selector) error
}

// Fillable accepts text input.
type Fillable interface {
	Fill(sel browser.Selector, value string) error
	Clear(sel browser.Selector) error
	Type(sel browser.Selector, text string) error
	SelectOption(sel browser.Selector, value string) error
}

// Assertable checks page state.
type Assertable interface {
	ShouldBeVisible(sel browser.Selector, timeout time.Duration) error
	ShouldHaveText(sel browser.Selector, want string) error
	ShouldHaveCount(sel browser.Selector, want int) error
	ShouldBeEnabled(sel browser.Selector) error
	ShouldBeDisabled(sel browser.Selector) error
}

// Handle implements the page-object surface over one browser session.
type Handle struct {
	session browser.Session
	baseURL string
}

var (
	_ Navigator  = (*Handle)(nil)
	_ Clickable  = (*Handle)(nil)
	_ Fillable   = (*Handle)(nil)
	_ Assertable = (*Handle)(nil)
)

// NewHandle creates a handle. Relative paths passed to Goto are appended to
// baseURL.
func NewHandle(session browser.Session, baseURL string) *Handle {
	return &Handle{session: session, baseURL: baseURL}
}

// Session returns the underlying browser session.
func (h *Handle) Session() browser.Session {
	return h.session
}

// Locate returns the element matched by sel.
func (h *Handle) Locate(sel browser.Selector) browser.Element {
	return h.session.Locate(sel)
}

// URL returns the address currently loaded.
func (h *Handle) URL() string {
	return h.session.URL()
}

// Goto navigates to path, resolved against the base URL unless it is absolute.
func (h *Handle) Goto(path string) error {
	target := h.resolve(path)
	if err := h.session.Goto(target); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", target, err)
	}
	return nil
}

func (h *Handle) resolve(path string) string {
	if u, err := url.Parse(path); err == nil && u.IsAbs() {
		return path
	}
	if h.baseURL == "" {
		return path
	}
	if path == "" {
		return h.baseURL
	}
	return strings.TrimRight(h.baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

func (h *Handle) Back() error {
	return h.session.Back()
}

func (h *Handle) Forward() error {
	return h.session.Forward()
}

func (h *Handle) Reload() error {
	return h.session.Reload()
}

func (h *Handle) WaitForLoadState(state browser.LoadState) error {
	return h.session.WaitForLoadState(state)
}

func (h *Handle) WaitForURL(pattern string, timeout time.Duration) error {
	return h.session.WaitForURL(pattern, timeout)
}

func (h *Handle) Click(sel browser.Selector) error {
	return h.session.Locate(sel).Click()
}

func (h *Handle) Hover(sel browser.Selector) error {
	return h.session.Locate(sel).Hover()
}

func (h *Handle) Press(sel browser.Selector, key string) error {
	return h.session.Locate(sel).Press(key)
}

func (h *Handle) Check(sel browser.Selector) error {
	return h.session.Locate(sel).Check()
}

func (h *Handle) Uncheck(sel browser.Selector) error {
	return h.session.Locate(sel).Uncheck()
}

func (h *Handle) Fill(sel browser.Selector, value string) error {
	return h.session.Locate(sel).Fill(value)
}

func (h *Handle) Clear(sel browser.Selector) error {
	return h.session.Locate(sel).Clear()
}

// Type enters text one key at a time.
func (h *Handle) Type(sel browser.Selector, text string) error {
	return h.session.Locate(sel).Type(text)
}

func (h *Handle) SelectOption(sel browser.Selector, value string) error {
	return h.session.Locate(sel).SelectOption(value)
}

func (h *Handle) IsVisible(sel browser.Selector) (bool, error) {
	return h.session.Locate(sel).IsVisible()
}

func (h *Handle) IsHidden(sel browser.Selector) (bool, error) {
	return h.session.Locate(sel).IsHidden()
}

func (h *Handle) IsEditable(sel browser.Selector) (bool, error) {
	return h.session.Locate(sel).IsEditable()
}

// AcceptDialogs accepts every alert, confirm and prompt from now on.
func (h *Handle) AcceptDialogs() {
	h.session.HandleDialogs(true)
}

// DismissDialogs dismisses every dialog from now on.
func (h *Handle) DismissDialogs() {
	h.session.HandleDialogs(false)
}

func (h *Handle) Screenshot(path string) error {
	if err := h.session.Screenshot(path); err != nil {
		return fmt.Errorf("failed to take screenshot: %w", err)
	}
	return nil
}

// ShouldBeVisible waits up to timeout (DefaultAssertTimeout when zero) for sel
// to become visible.
func (h *Handle) ShouldBeVisible(sel browser.Selector, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultAssertTimeout
	}
	if err := h.session.Locate(sel).WaitVisible(timeout); err != nil {
		return fmt.Errorf("%w: %s is not visible: %v", ErrAssertion, sel, err)
	}
	return nil
}

// ShouldHaveText compares the trimmed text content of sel with want.
func (h *Handle) ShouldHaveText(sel browser.Selector, want string) error {
	got, err := h.session.Locate(sel).Text()
	if err != nil {
		return fmt.Errorf("failed to read text of %s: %w", sel, err)
	}
	if strings.TrimSpace(got) != want {
		return fmt.Errorf("%w: %s has text %q, want %q", ErrAssertion, sel, strings.TrimSpace(got), want)
	}
	return nil
}

func (h *Handle) ShouldHaveCount(sel browser.Selector, want int) error {
	got, err := h.session.Locate(sel).Count()
	if err != nil {
		return fmt.Errorf("failed to count %s: %w", sel, err)
	}
	if got != want {
		return fmt.Errorf("%w: %s matched %d elements, want %d", ErrAssertion, sel, got, want)
	}
	return nil
}

func (h *Handle) ShouldBeEnabled(sel browser.Selector) error {
	return h.expectEnabled(sel, true)
}

func (h *Handle) ShouldBeDisabled(sel browser.Selector) error {
	return h.expectEnabled(sel, false)
}

func (h *Handle) expectEnabled(sel browser.Selector, want bool) error {
	enabled, err := h.session.Locate(sel).IsEnabled()
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", sel, err)
	}
	if enabled != want {
		state := "disabled"
		if enabled {
			state = "enabled"
		}
		return fmt.Errorf("%w: %s is %s", ErrAssertion, sel, state)
	}
	return nil
}
