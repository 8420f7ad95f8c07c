package authn

import (
	"path/filepath"

	"github.com/themizzi/sessionsuite/internal/browser"
	"github.com/themizzi/sessionsuite/internal/config"
)

// Role names
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// AdminProfile is the administrative portal: Username/Password form, a
// Dashboard heading once signed in, and an OTP issued on every login.
func AdminProfile(role config.RoleConfig, authDir string, submitOTP bool) RoleProfile {
	return RoleProfile{
		Name:            RoleAdmin,
		URL:             role.URL,
		Identifier:      role.Email,
		Secret:          role.Password,
		SessionFile:     filepath.Join(authDir, RoleAdmin+".json"),
		Indicator:       browser.Heading("Dashboard"),
		IdentifierField: browser.Textbox("Username"),
		SecretField:     browser.Textbox("Password"),
		SubmitControl:   browser.Button("Login"),
		SecondFactor: &SecondFactor{
			Submit:  submitOTP,
			Field:   browser.Textbox("OTP"),
			Confirm: browser.Button("Verify"),
		},
	}
}

// UserProfile is the customer storefront: email/password form and a
// Products heading once signed in.
func UserProfile(role config.RoleConfig, authDir string) RoleProfile {
	return RoleProfile{
		Name:            RoleUser,
		URL:             role.URL,
		Identifier:      role.Email,
		Secret:          role.Password,
		SessionFile:     filepath.Join(authDir, RoleUser+".json"),
		Indicator:       browser.Heading("Products"),
		IdentifierField: browser.Textbox("email"),
		SecretField:     browser.Textbox("password"),
		SubmitControl:   browser.Button("Login"),
	}
}

// Profiles builds every configured role keyed by name.
func Profiles(roles *config.RolesConfig, auth *config.AuthConfig) map[string]RoleProfile {
	return map[string]RoleProfile{
		RoleAdmin: AdminProfile(roles.Admin(), auth.Dir, auth.AdminSubmitOTP),
		RoleUser:  UserProfile(roles.User(), auth.Dir),
	}
}
