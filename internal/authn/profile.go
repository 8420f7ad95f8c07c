package authn

import (
	"errors"
	"fmt"

	"github.com/themizzi/sessionsuite/internal/browser"
)

// SecondFactor describes the one-time passcode step of a role's login.
type SecondFactor struct {
	// Submit enters the looked-up code into Field and clicks Confirm. When
	// false the code is only looked up and logged.
	Submit  bool
	Field   browser.Selector
	Confirm browser.Selector
}

// RoleProfile identifies one actor type: where it logs in, with what, and how
// to tell that a page belongs to a signed-in session.
type RoleProfile struct {
	Name        string
	URL         string
	Identifier  string
	Secret      string
	SessionFile string
	// Indicator is visible only to authenticated sessions.
	Indicator browser.Selector

	IdentifierField browser.Selector
	SecretField     browser.Selector
	SubmitControl   browser.Selector

	// SecondFactor is nil for roles that log in with credentials alone.
	SecondFactor *SecondFactor
}

// Validate reports the first missing field.
func (p RoleProfile) Validate() error {
	switch {
	case p.Name == "":
		return errors.New("role profile has no name")
	case p.URL == "":
		return fmt.Errorf("%s profile has no URL", p.Name)
	case p.SessionFile == "":
		return fmt.Errorf("%s profile has no session file", p.Name)
	case p.Indicator.IsZero():
		return fmt.Errorf("%s profile has no signed-in indicator", p.Name)
	case p.IdentifierField.IsZero(), p.SecretField.IsZero(), p.SubmitControl.IsZero():
		return fmt.Errorf("%s profile is missing login form locators", p.Name)
	}

	if sf := p.SecondFactor; sf != nil && sf.Submit && (sf.Field.IsZero() || sf.Confirm.IsZero()) {
		return fmt.Errorf("%s profile submits an OTP but has no OTP form locators", p.Name)
	}

	return nil
}
