package browser

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// LaunchOptions configures the browser started by Launch.
type LaunchOptions struct {
	// Browser is one of chromium, firefox or webkit. Empty means chromium.
	Browser  string
	Headless bool
	SlowMo   time.Duration
	// DefaultTimeout applies to every action and wait that does not set its own.
	DefaultTimeout time.Duration
}

// Playwright implements Driver over a playwright-go browser.
type Playwright struct {
	pw             *playwright.Playwright
	browser        playwright.Browser
	defaultTimeout time.Duration
}

// Launch starts the Playwright driver and a browser. Browsers must already be
// installed: go run github.com/playwright-community/playwright-go/cmd/playwright install chromium
func Launch(opts LaunchOptions) (*Playwright, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	var browserType playwright.BrowserType
	switch opts.Browser {
	case "", "chromium":
		browserType = pw.Chromium
	case "firefox":
		browserType = pw.Firefox
	case "webkit":
		browserType = pw.WebKit
	default:
		pw.Stop()
		return nil, fmt.Errorf("unsupported browser %q", opts.Browser)
	}

	launch := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	}
	if opts.SlowMo > 0 {
		launch.SlowMo = playwright.Float(millis(opts.SlowMo))
	}

	b, err := browserType.Launch(launch)
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch %s: %w", browserType.Name(), err)
	}

	return &Playwright{pw: pw, browser: b, defaultTimeout: opts.DefaultTimeout}, nil
}

// NewSession implements Driver.
func (p *Playwright) NewSession(state []byte) (Session, error) {
	opts := playwright.BrowserNewContextOptions{}
	if len(state) > 0 {
		seeded, err := decodeStorageState(state)
		if err != nil {
			return nil, err
		}
		opts.StorageState = seeded
	}

	bctx, err := p.browser.NewContext(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}
	if p.defaultTimeout > 0 {
		bctx.SetDefaultTimeout(millis(p.defaultTimeout))
	}

	page, err := bctx.NewPage()
	if err != nil {
		bctx.Close()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	return &pwSession{bctx: bctx, page: page}, nil
}

// Close shuts the browser and the driver down.
func (p *Playwright) Close() error {
	if err := p.browser.Close(); err != nil {
		p.pw.Stop()
		return fmt.Errorf("failed to close browser: %w", err)
	}
	return p.pw.Stop()
}

type pwSession struct {
	bctx playwright.BrowserContext
	page playwright.Page
}

func (s *pwSession) Goto(url string) error {
	if _, err := s.page.Goto(url); err != nil {
		return translate(err)
	}
	return nil
}

func (s *pwSession) Locate(sel Selector) Element {
	return &pwElement{loc: resolve(s.page, sel)}
}

func (s *pwSession) URL() string {
	return s.page.URL()
}

func (s *pwSession) WaitForLoadState(state LoadState) error {
	ls := playwright.LoadState(state)
	return translate(s.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{State: &ls}))
}

func (s *pwSession) WaitForURL(pattern string, timeout time.Duration) error {
	opts := playwright.PageWaitForURLOptions{}
	if timeout > 0 {
		opts.Timeout = playwright.Float(millis(timeout))
	}
	return translate(s.page.WaitForURL(pattern, opts))
}

func (s *pwSession) Back() error {
	_, err := s.page.GoBack()
	return translate(err)
}

func (s *pwSession) Forward() error {
	_, err := s.page.GoForward()
	return translate(err)
}

func (s *pwSession) Reload() error {
	_, err := s.page.Reload()
	return translate(err)
}

func (s *pwSession) Screenshot(path string) error {
	_, err := s.page.Screenshot(playwright.PageScreenshotOptions{Path: playwright.String(path)})
	return translate(err)
}

func (s *pwSession) HandleDialogs(accept bool) {
	s.page.OnDialog(func(d playwright.Dialog) {
		if accept {
			d.Accept()
			return
		}
		d.Dismiss()
	})
}

func (s *pwSession) StorageState() ([]byte, error) {
	state, err := s.bctx.StorageState()
	if err != nil {
		return nil, fmt.Errorf("failed to read storage state: %w", err)
	}
	return encodeStorageState(state)
}

func (s *pwSession) Close() error {
	return s.bctx.Close()
}

type pwElement struct {
	loc playwright.Locator
}

func (e *pwElement) Fill(value string) error { return translate(e.loc.Fill(value)) }
func (e *pwElement) Clear() error            { return translate(e.loc.Clear()) }
func (e *pwElement) Type(text string) error  { return translate(e.loc.PressSequentially(text)) }
func (e *pwElement) Click() error            { return translate(e.loc.Click()) }
func (e *pwElement) Check() error            { return translate(e.loc.Check()) }
func (e *pwElement) Uncheck() error          { return translate(e.loc.Uncheck()) }
func (e *pwElement) Hover() error            { return translate(e.loc.Hover()) }
func (e *pwElement) Press(key string) error  { return translate(e.loc.Press(key)) }
func (e *pwElement) First() Element          { return &pwElement{loc: e.loc.First()} }

func (e *pwElement) Count() (int, error) {
	n, err := e.loc.Count()
	return n, translate(err)
}

func (e *pwElement) IsVisible() (bool, error) {
	ok, err := e.loc.IsVisible()
	return ok, translate(err)
}

func (e *pwElement) IsHidden() (bool, error) {
	ok, err := e.loc.IsHidden()
	return ok, translate(err)
}

func (e *pwElement) IsEnabled() (bool, error) {
	ok, err := e.loc.IsEnabled()
	return ok, translate(err)
}

func (e *pwElement) IsEditable() (bool, error) {
	ok, err := e.loc.IsEditable()
	return ok, translate(err)
}

func (e *pwElement) Text() (string, error) {
	text, err := e.loc.TextContent()
	return text, translate(err)
}

func (e *pwElement) SelectOption(value string) error {
	_, err := e.loc.SelectOption(playwright.SelectOptionValues{Values: &[]string{value}})
	return translate(err)
}

func (e *pwElement) WaitVisible(timeout time.Duration) error {
	return e.waitFor(playwright.WaitForSelectorStateVisible, timeout)
}

func (e *pwElement) WaitHidden(timeout time.Duration) error {
	return e.waitFor(playwright.WaitForSelectorStateHidden, timeout)
}

func (e *pwElement) waitFor(state *playwright.WaitForSelectorState, timeout time.Duration) error {
	opts := playwright.LocatorWaitForOptions{State: state}
	if timeout > 0 {
		opts.Timeout = playwright.Float(millis(timeout))
	}
	return translate(e.loc.WaitFor(opts))
}

func resolve(page playwright.Page, sel Selector) playwright.Locator {
	exact := playwright.Bool(sel.Exact)
	switch sel.Strategy {
	case ByRole:
		opts := playwright.PageGetByRoleOptions{Exact: exact}
		if sel.Value != "" {
			opts.Name = sel.Value
		}
		return page.GetByRole(playwright.AriaRole(sel.Role), opts)
	case ByLabel:
		return page.GetByLabel(sel.Value, playwright.PageGetByLabelOptions{Exact: exact})
	case ByText:
		return page.GetByText(sel.Value, playwright.PageGetByTextOptions{Exact: exact})
	case ByPlaceholder:
		return page.GetByPlaceholder(sel.Value, playwright.PageGetByPlaceholderOptions{Exact: exact})
	case ByTitle:
		return page.GetByTitle(sel.Value, playwright.PageGetByTitleOptions{Exact: exact})
	case ByAltText:
		return page.GetByAltText(sel.Value, playwright.PageGetByAltTextOptions{Exact: exact})
	default:
		return page.Locator(sel.Value)
	}
}

// translate maps playwright timeouts onto ErrTimeout, keeping the original message.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}

func millis(d time.Duration) float64 {
	return float64(d / time.Millisecond)
}

// encodeStorageState serializes a context's state in Playwright's storageState
// file format.
func encodeStorageState(state *playwright.StorageState) ([]byte, error) {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode storage state: %w", err)
	}
	return data, nil
}

// decodeStorageState reads a storageState file into the form NewContext seeds from.
func decodeStorageState(data []byte) (*playwright.OptionalStorageState, error) {
	var state playwright.OptionalStorageState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode storage state: %w", err)
	}
	return &state, nil
}
