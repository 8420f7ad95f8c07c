// Package demoapp serves a small login-protected portal for each role so the
// e2e suite can run without the real applications. Sessions live in memory:
// restarting the portal, or calling InvalidateSessions, makes every persisted
// session stale.
package demoapp

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

//go:embed templates/*.html
var templateFS embed.FS

// Role selects which portal is served.
type Role string

// Roles
const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Config configures a Portal.
type Config struct {
	Role     Role
	Email    string
	Password string
	// RequireOTP asks for the issued code before the session is signed in.
	RequireOTP bool
	// Issuer, when set, issues a code on every successful credential check.
	Issuer OTPIssuer
	Logger logrus.FieldLogger
}

// Product is a catalogue entry on the user portal.
type Product struct {
	ID    int
	Name  string
	Price string
}

// Catalogue is the fixed product list the user portal shows.
var Catalogue = []Product{
	{ID: 1, Name: "Premium Widget", Price: "$1.00"},
	{ID: 2, Name: "Deluxe Gadget", Price: "$4.50"},
	{ID: 3, Name: "Basic Gizmo", Price: "$0.75"},
}

type link struct {
	Path  string
	Label string
}

type pageData struct {
	Title           string
	Heading         string
	Error           string
	Email           string
	IdentifierLabel string
	SecretLabel     string
	Nav             []link
	Products        []Product
	Product         *Product
	Action          *link
}

type section struct {
	heading  string
	products bool
	action   *link
}

var adminSections = map[string]section{
	"/":                           {heading: "Dashboard"},
	"/leave/viewLeaveList":        {heading: "Leave List"},
	"/time/viewEmployeeTimesheet": {heading: "Employee Timesheet"},
	"/pim/viewEmployeeList":       {heading: "Employee Information"},
}

var userSections = map[string]section{
	"/":          {heading: "Products", products: true},
	"/products":  {heading: "Product List", products: true},
	"/cart":      {heading: "Cart"},
	"/favorites": {heading: "Favorites", action: &link{Path: "/products", Label: "Continue Shopping"}},
}

// Portal is the demo web application for one role.
type Portal struct {
	cfg       Config
	templates *template.Template
	sessions  *sessionStore
	sections  map[string]section
	nav       []link
	log       logrus.FieldLogger
}

// New creates a portal.
func New(cfg Config) (*Portal, error) {
	p := &Portal{
		cfg:      cfg,
		sessions: newSessionStore(),
		log:      cfg.Logger,
	}

	switch cfg.Role {
	case RoleAdmin:
		p.sections = adminSections
		p.nav = []link{
			{Path: "/", Label: "Home"},
			{Path: "/pim/viewEmployeeList", Label: "PIM"},
			{Path: "/leave/viewLeaveList", Label: "Leave"},
			{Path: "/time/viewEmployeeTimesheet", Label: "Time"},
		}
	case RoleUser:
		p.sections = userSections
		p.nav = []link{
			{Path: "/products", Label: "Shop"},
			{Path: "/cart", Label: "My Cart"},
			{Path: "/favorites", Label: "Saved"},
		}
	default:
		return nil, fmt.Errorf("unsupported portal role %q", cfg.Role)
	}

	if cfg.Email == "" || cfg.Password == "" {
		return nil, errors.New("portal credentials are required")
	}
	if cfg.RequireOTP && cfg.Issuer == nil {
		return nil, errors.New("portal requires an OTP issuer to ask for codes")
	}

	if p.log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		p.log = discard
	}
	p.log = p.log.WithField("portal", string(cfg.Role))

	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	p.templates = tmpl

	return p, nil
}

// Handler returns the portal's routes.
func (p *Portal) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/login", p.handleLogin)
	mux.HandleFunc("/logout", p.handleLogout)
	mux.HandleFunc("/otp", p.handleOTP)
	mux.HandleFunc("/", p.handlePage)
	return mux
}

// InvalidateSessions signs every client out and returns how many sessions
// were dropped.
func (p *Portal) InvalidateSessions() int {
	n := p.sessions.reset()
	p.log.WithField("sessions", n).Info("Invalidated all sessions")
	return n
}

func (p *Portal) loginLabels() (string, string) {
	if p.cfg.Role == RoleAdmin {
		return "Username", "Password"
	}
	return "email", "password"
}

func (p *Portal) current(r *http.Request) (string, session, bool) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return "", session{}, false
	}
	sess, ok := p.sessions.get(cookie.Value)
	return cookie.Value, sess, ok
}

func (p *Portal) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	_, sess, ok := p.current(r)
	if !ok || !sess.verified {
		if r.URL.Path != "/" {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		if ok {
			http.Redirect(w, r, "/otp", http.StatusFound)
			return
		}
		p.renderLogin(w, http.StatusOK, "")
		return
	}

	if p.cfg.Role == RoleUser && strings.HasPrefix(r.URL.Path, "/products/") {
		p.renderProduct(w, r)
		return
	}

	sec, found := p.sections[r.URL.Path]
	if !found {
		http.NotFound(w, r)
		return
	}

	data := pageData{Title: sec.heading, Heading: sec.heading, Nav: p.nav, Action: sec.action}
	if sec.products {
		data.Products = Catalogue
	}
	p.render(w, "page.html", http.StatusOK, data)
}

func (p *Portal) renderProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/products/"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	for i := range Catalogue {
		if Catalogue[i].ID == id {
			product := Catalogue[i]
			p.render(w, "page.html", http.StatusOK, pageData{
				Title:   product.Name,
				Heading: product.Name,
				Nav:     p.nav,
				Product: &product,
				Action:  &link{Path: "/cart", Label: "Add to Cart"},
			})
			return
		}
	}
	http.NotFound(w, r)
}

func (p *Portal) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	email := strings.TrimSpace(r.PostForm.Get("identifier"))
	log := p.log.WithField("email", email)
	if email != p.cfg.Email || r.PostForm.Get("secret") != p.cfg.Password {
		log.Warn("Rejected login")
		p.renderLogin(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	var code string
	if p.cfg.Issuer != nil {
		issued, err := p.cfg.Issuer.IssueOTP(r.Context(), email)
		if err != nil {
			log.WithError(err).Error("Error issuing OTP")
			http.Error(w, "Failed to issue verification code", http.StatusInternalServerError)
			return
		}
		code = issued
		log.Debug("Issued OTP")
	}

	verified := !p.cfg.RequireOTP
	id := p.sessions.create(email, code, verified)
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	if !verified {
		http.Redirect(w, r, "/otp", http.StatusSeeOther)
		return
	}
	log.Info("Signed in")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (p *Portal) handleOTP(w http.ResponseWriter, r *http.Request) {
	id, sess, ok := p.current(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	if sess.verified {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		p.render(w, "otp.html", http.StatusOK, pageData{Title: "Verification", Email: sess.email})
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(r.PostForm.Get("otp")) != sess.code {
			p.log.WithField("email", sess.email).Warn("Rejected OTP")
			p.render(w, "otp.html", http.StatusUnauthorized, pageData{
				Title: "Verification",
				Email: sess.email,
				Error: "Invalid code",
			})
			return
		}
		p.sessions.verify(id)
		p.log.WithField("email", sess.email).Info("Signed in")
		http.Redirect(w, r, "/", http.StatusSeeOther)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (p *Portal) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if id, _, ok := p.current(r); ok {
		p.sessions.remove(id)
	}
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (p *Portal) renderLogin(w http.ResponseWriter, status int, message string) {
	identifier, secret := p.loginLabels()
	p.render(w, "login.html", status, pageData{
		Title:           "Login",
		Error:           message,
		IdentifierLabel: identifier,
		SecretLabel:     secret,
	})
}

func (p *Portal) render(w http.ResponseWriter, name string, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := p.templates.ExecuteTemplate(w, name, data); err != nil {
		p.log.WithError(err).Errorf("Error rendering template %s", name)
	}
}
