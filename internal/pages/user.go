package pages

import (
	"github.com/themizzi/sessionsuite/internal/browser"
)

// Storefront paths
const (
	ProductsPath  = "/products"
	CartPath      = "/cart"
	FavoritesPath = "/favorites"
)

// UserPage is the storefront landing page of a signed-in customer.
type UserPage struct {
	*Handle
	Products browser.Selector
}

func NewUserPage(session browser.Session, baseURL string) *UserPage {
	return &UserPage{
		Handle:   NewHandle(session, baseURL),
		Products: browser.Heading("Products"),
	}
}

// ProductListPage lists the catalogue.
type ProductListPage struct {
	*Handle
	Title       browser.Selector
	ProductLink browser.Selector
}

func NewProductListPage(session browser.Session, baseURL string) *ProductListPage {
	return &ProductListPage{
		Handle:      NewHandle(session, baseURL),
		Title:       browser.CSS(`h1:has-text("Product List")`),
		ProductLink: browser.CSS(".product-item a"),
	}
}

func (p *ProductListPage) Navigate() error {
	return p.Goto(ProductsPath)
}

// ClickFirstProduct follows the first product link in the list.
func (p *ProductListPage) ClickFirstProduct() error {
	return p.Locate(p.ProductLink).First().Click()
}

// CartPage is the shopping cart.
type CartPage struct {
	*Handle
}

func NewCartPage(session browser.Session, baseURL string) *CartPage {
	return &CartPage{Handle: NewHandle(session, baseURL)}
}

func (p *CartPage) Navigate() error {
	return p.Goto(CartPath)
}

// FavoritesPage lists the products a customer saved.
type FavoritesPage struct {
	*Handle
	Heading          browser.Selector
	ContinueShopping browser.Selector
}

func NewFavoritesPage(session browser.Session, baseURL string) *FavoritesPage {
	return &FavoritesPage{
		Handle:           NewHandle(session, baseURL),
		Heading:          browser.Heading("Favorites"),
		ContinueShopping: browser.Button("Continue Shopping"),
	}
}

func (p *FavoritesPage) Navigate() error {
	return p.Goto(FavoritesPath)
}
