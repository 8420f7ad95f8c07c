//go:build e2e

package e2e

import (
	"context"
	"testing"
	"time"

	"github.com/themizzi/sessionsuite/internal/browser"
	"github.com/themizzi/sessionsuite/internal/fixtures"
)

func userFixture(t *testing.T) *fixtures.User {
	t.Helper()
	f, err := fixtures.NewUser(context.Background(), auth, userProfile)
	if err != nil {
		t.Fatalf("Failed to authenticate user: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

// TestUserLanding
// Feature: Storefront
//
//	As a customer
//	I want to see the products as soon as I open the shop
func TestUserLanding(t *testing.T) {
	f := userFixture(t)

	if err := f.User.Goto("/"); err != nil {
		t.Fatal(err)
	}
	if err := f.User.ShouldBeVisible(f.User.Products, 0); err != nil {
		t.Error(err)
	}
	if err := f.User.ShouldHaveCount(browser.CSS(".product-item"), 3); err != nil {
		t.Error(err)
	}
}

func TestUserOpensProduct(t *testing.T) {
	f := userFixture(t)

	// Given I am on the product list
	if err := f.Products.Navigate(); err != nil {
		t.Fatal(err)
	}
	if err := f.Products.ShouldBeVisible(f.Products.Title, 0); err != nil {
		t.Fatal(err)
	}

	// When I click the first product
	if err := f.Products.ClickFirstProduct(); err != nil {
		t.Fatal(err)
	}

	// Then I should see its details
	if err := f.Products.WaitForURL("**/products/1", 5*time.Second); err != nil {
		t.Fatal(err)
	}
	if err := f.Products.ShouldHaveText(browser.CSS(".product-price"), "$1.00"); err != nil {
		t.Error(err)
	}
}

func TestUserCart(t *testing.T) {
	f := userFixture(t)

	if err := f.Cart.Navigate(); err != nil {
		t.Fatal(err)
	}
	if err := f.Cart.ShouldBeVisible(browser.Heading("Cart"), 0); err != nil {
		t.Error(err)
	}
}

func TestUserFavoritesContinueShopping(t *testing.T) {
	f := userFixture(t)

	// Given I am on my favorites
	if err := f.Favorites.Navigate(); err != nil {
		t.Fatal(err)
	}
	if err := f.Favorites.ShouldBeVisible(f.Favorites.Heading, 0); err != nil {
		t.Fatal(err)
	}

	// When I continue shopping
	if err := f.Favorites.Click(f.Favorites.ContinueShopping); err != nil {
		t.Fatal(err)
	}

	// Then I am back on the product list
	if err := f.Favorites.WaitForURL("**/products*", 5*time.Second); err != nil {
		t.Fatal(err)
	}
	if err := f.Products.ShouldBeVisible(f.Products.Title, 0); err != nil {
		t.Error(err)
	}
}
