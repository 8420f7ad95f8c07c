// Package fixtures gives tests a signed-in session per role together with the
// page objects bound to it.
package fixtures

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/themizzi/sessionsuite/internal/authn"
	"github.com/themizzi/sessionsuite/internal/pages"
)

// Authenticator hands out signed-in sessions. *authn.Authenticator satisfies it.
type Authenticator interface {
	Authenticate(ctx context.Context, profile authn.RoleProfile) (*authn.AuthenticatedContext, error)
}

// Admin is an administrator's session and the pages reachable from it.
type Admin struct {
	Context *authn.AuthenticatedContext
	Admin   *pages.AdminPage
	PIM     *pages.PIMPage
	Leave   *pages.LeavePage
}

// NewAdmin authenticates profile and derives the admin pages from its session.
// Relative page paths resolve against the profile's URL. A nil log discards
// page logging.
func NewAdmin(ctx context.Context, auth Authenticator, profile authn.RoleProfile, log logrus.FieldLogger) (*Admin, error) {
	ac, err := auth.Authenticate(ctx, profile)
	if err != nil {
		return nil, err
	}

	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}

	s := ac.Session
	return &Admin{
		Context: ac,
		Admin:   pages.NewAdminPage(s, profile.URL),
		PIM:     pages.NewPIMPage(s, profile.URL),
		Leave:   pages.NewLeavePage(s, profile.URL, log.WithField("role", profile.Name)),
	}, nil
}

// Close releases the browsing context.
func (f *Admin) Close() error {
	return f.Context.Close()
}

// User is a customer's session and the storefront pages.
type User struct {
	Context   *authn.AuthenticatedContext
	User      *pages.UserPage
	Products  *pages.ProductListPage
	Cart      *pages.CartPage
	Favorites *pages.FavoritesPage
}

// NewUser authenticates profile and derives the storefront pages.
func NewUser(ctx context.Context, auth Authenticator, profile authn.RoleProfile) (*User, error) {
	ac, err := auth.Authenticate(ctx, profile)
	if err != nil {
		return nil, err
	}

	s := ac.Session
	return &User{
		Context:   ac,
		User:      pages.NewUserPage(s, profile.URL),
		Products:  pages.NewProductListPage(s, profile.URL),
		Cart:      pages.NewCartPage(s, profile.URL),
		Favorites: pages.NewFavoritesPage(s, profile.URL),
	}, nil
}

func (f *User) Close() error {
	return f.Context.Close()
}
