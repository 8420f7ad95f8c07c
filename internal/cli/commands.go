// Package cli implements the sessionsuite commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/themizzi/sessionsuite/internal/authn"
	"github.com/themizzi/sessionsuite/internal/browser"
	"github.com/themizzi/sessionsuite/internal/config"
	"github.com/themizzi/sessionsuite/internal/database"
	"github.com/themizzi/sessionsuite/internal/demoapp"
	"github.com/themizzi/sessionsuite/internal/sessionstore"
)

// ErrStaleSessions is returned by probe when any checked session no longer works.
var ErrStaleSessions = errors.New("stale sessions")

// BrowserDriver is a browser.Driver that owns its browser process.
type BrowserDriver interface {
	browser.Driver
	Close() error
}

// Dependencies are the seams the commands are built on. DefaultDependencies
// wires the real ones.
type Dependencies struct {
	Lookup        config.LookupFunc
	Out           io.Writer
	Logger        *logrus.Logger
	LaunchBrowser func(cfg config.BrowserConfig) (BrowserDriver, error)
	Store         authn.SessionStore
	OpenOTPStore  func(ctx context.Context, dbCfg *config.DatabaseConfig, authCfg *config.AuthConfig) (*OTPStore, error)
	// Shutdown stops the demo server. Nil listens for SIGINT and SIGTERM.
	Shutdown chan os.Signal
}

// DefaultDependencies reads the process environment and drives a real browser.
func DefaultDependencies() *Dependencies {
	return &Dependencies{
		Lookup:        os.LookupEnv,
		Out:           os.Stdout,
		Logger:        logrus.StandardLogger(),
		LaunchBrowser: launchPlaywright,
		Store:         sessionstore.NewOS(),
		OpenOTPStore:  OpenOTPStore,
	}
}

// LaunchOptions maps the BROWSER* settings onto the Playwright launcher.
func LaunchOptions(cfg config.BrowserConfig) browser.LaunchOptions {
	return browser.LaunchOptions{
		Browser:        cfg.Name,
		Headless:       cfg.IsHeadless(),
		SlowMo:         cfg.SlowMo,
		DefaultTimeout: cfg.Timeout,
	}
}

func launchPlaywright(cfg config.BrowserConfig) (BrowserDriver, error) {
	pw, err := browser.Launch(LaunchOptions(cfg))
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// ConfigureLogger applies the LOG_* settings. Use it as the app's Before hook.
func (d *Dependencies) ConfigureLogger(*cli.Context) error {
	cfg, err := config.LoadLogConfig(d.Lookup)
	if err != nil {
		return err
	}
	return ConfigureLogger(d.Logger, cfg)
}

// Commands returns every sessionsuite command.
func Commands(d *Dependencies) []*cli.Command {
	return []*cli.Command{
		LoginCommand(d),
		ProbeCommand(d),
		OTPCommand(d),
		MigrateCommand(d),
		DemoCommand(d),
	}
}

func roleFlag(value string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "role",
		Usage: "admin, user or all",
		Value: value,
	}
}

func selectRoles(role string) ([]string, error) {
	switch role {
	case authn.RoleAdmin, authn.RoleUser:
		return []string{role}, nil
	case "all":
		return []string{authn.RoleAdmin, authn.RoleUser}, nil
	default:
		return nil, fmt.Errorf("unknown role %q", role)
	}
}

func needsOTP(profiles map[string]authn.RoleProfile, roles []string) bool {
	for _, name := range roles {
		if profiles[name].SecondFactor != nil {
			return true
		}
	}
	return false
}

// LoginCommand primes the session file of each selected role.
func LoginCommand(d *Dependencies) *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Reuse or create the persisted session for each role",
		Flags: []cli.Flag{
			roleFlag("all"),
			&cli.BoolFlag{Name: "fresh", Usage: "ignore persisted sessions and log in again"},
		},
		Action: func(c *cli.Context) error {
			roles, err := selectRoles(c.String("role"))
			if err != nil {
				return err
			}
			rolesCfg, err := config.LoadRolesConfig(d.Lookup)
			if err != nil {
				return err
			}
			authCfg, err := config.LoadAuthConfig(d.Lookup)
			if err != nil {
				return err
			}
			browserCfg, err := config.LoadBrowserConfig(d.Lookup)
			if err != nil {
				return err
			}
			profiles := authn.Profiles(rolesCfg, authCfg)

			opts := authn.Options{
				ProbeTimeout: authCfg.ProbeTimeout,
				LoginTimeout: authCfg.LoginTimeout,
				Logger:       d.Logger,
			}
			if needsOTP(profiles, roles) {
				dbCfg, _, err := loadOTPConfig(d.Lookup)
				if err != nil {
					return err
				}
				source := &lazyOTPSource{open: func(ctx context.Context) (*OTPStore, error) {
					return d.OpenOTPStore(ctx, dbCfg, authCfg)
				}}
				defer source.Close()
				opts.OTP = source
			}

			driver, err := d.LaunchBrowser(browserCfg)
			if err != nil {
				return err
			}
			defer driver.Close()

			auth := authn.New(driver, d.Store, opts)
			fresh := c.Bool("fresh")

			var mu sync.Mutex
			g, ctx := errgroup.WithContext(c.Context)
			for _, name := range roles {
				profile := profiles[name]
				g.Go(func() error {
					obtain := auth.Authenticate
					if fresh {
						obtain = auth.Refresh
					}
					ac, err := obtain(ctx, profile)
					if err != nil {
						return err
					}
					defer ac.Close()

					mu.Lock()
					defer mu.Unlock()
					fmt.Fprintf(d.Out, "%s: %s (%s)\n", profile.Name, ac.Origin, profile.SessionFile)
					return nil
				})
			}
			return g.Wait()
		},
	}
}

// ProbeCommand reports whether each persisted session still works.
func ProbeCommand(d *Dependencies) *cli.Command {
	return &cli.Command{
		Name:  "probe",
		Usage: "Check persisted sessions without logging in",
		Flags: []cli.Flag{roleFlag("all")},
		Action: func(c *cli.Context) error {
			roles, err := selectRoles(c.String("role"))
			if err != nil {
				return err
			}
			rolesCfg, err := config.LoadRolesConfig(d.Lookup)
			if err != nil {
				return err
			}
			authCfg, err := config.LoadAuthConfig(d.Lookup)
			if err != nil {
				return err
			}
			browserCfg, err := config.LoadBrowserConfig(d.Lookup)
			if err != nil {
				return err
			}

			driver, err := d.LaunchBrowser(browserCfg)
			if err != nil {
				return err
			}
			defer driver.Close()

			auth := authn.New(driver, d.Store, authn.Options{ProbeTimeout: authCfg.ProbeTimeout, Logger: d.Logger})
			profiles := authn.Profiles(rolesCfg, authCfg)

			stale := 0
			for _, name := range roles {
				ok, err := auth.Probe(profiles[name])
				if err != nil {
					return err
				}
				status := "valid"
				if !ok {
					status = "stale"
					stale++
				}
				fmt.Fprintf(d.Out, "%s: %s\n", name, status)
			}
			if stale > 0 {
				return fmt.Errorf("%w: %d of %d", ErrStaleSessions, stale, len(roles))
			}
			return nil
		},
	}
}

// OTPCommand prints the newest code issued to an address.
func OTPCommand(d *Dependencies) *cli.Command {
	return &cli.Command{
		Name:  "otp",
		Usage: "Print the latest one-time passcode for an email",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Usage: "address the code was issued to", Required: true},
		},
		Action: func(c *cli.Context) error {
			dbCfg, authCfg, err := loadOTPConfig(d.Lookup)
			if err != nil {
				return err
			}
			store, err := d.OpenOTPStore(c.Context, dbCfg, authCfg)
			if err != nil {
				return err
			}
			defer store.Close()

			email := c.String("email")
			code, found, err := store.Source.LatestCode(c.Context, email)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("no OTP issued to %s", email)
			}
			fmt.Fprintln(d.Out, code)
			return nil
		},
	}
}

func loadOTPConfig(lookup config.LookupFunc) (*config.DatabaseConfig, *config.AuthConfig, error) {
	authCfg, err := config.LoadAuthConfig(lookup)
	if err != nil {
		return nil, nil, err
	}
	if authCfg.OTPSource == config.OTPSourceRedis {
		return nil, authCfg, nil
	}
	dbCfg, err := config.LoadDatabaseConfig(lookup)
	if err != nil {
		return nil, nil, err
	}
	return dbCfg, authCfg, nil
}

// MigrateCommand creates the otp_verification table.
func MigrateCommand(d *Dependencies) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Create the otp_verification table",
		Action: func(c *cli.Context) error {
			dbCfg, err := config.LoadDatabaseConfig(d.Lookup)
			if err != nil {
				return err
			}
			db, err := database.Connect(c.Context, dbCfg)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()
			d.Logger.Info("Connected to database successfully")

			if err := database.RunMigrations(c.Context, db, dbCfg.Driver); err != nil {
				return fmt.Errorf("failed to run database migrations: %w", err)
			}
			d.Logger.WithField("driver", dbCfg.Driver).Info("Migrations applied")
			return nil
		},
	}
}

// DemoCommand serves the bundled portal for one role.
func DemoCommand(d *Dependencies) *cli.Command {
	return &cli.Command{
		Name:  "demo",
		Usage: "Serve the demo portal for a role",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "role", Usage: "admin or user", Required: true},
			&cli.StringFlag{Name: "port", Usage: "listen port", Value: "8080"},
			&cli.BoolFlag{Name: "issue-otp", Usage: "issue a code to the configured OTP source on every login"},
			&cli.BoolFlag{Name: "require-otp", Usage: "ask for the issued code before signing in"},
		},
		Action: func(c *cli.Context) error {
			rolesCfg, err := config.LoadRolesConfig(d.Lookup)
			if err != nil {
				return err
			}

			var role config.RoleConfig
			switch c.String("role") {
			case authn.RoleAdmin:
				role = rolesCfg.Admin()
			case authn.RoleUser:
				role = rolesCfg.User()
			default:
				return fmt.Errorf("unknown role %q", c.String("role"))
			}

			portalCfg := demoapp.Config{
				Role:       demoapp.Role(c.String("role")),
				Email:      role.Email,
				Password:   role.Password,
				RequireOTP: c.Bool("require-otp"),
				Logger:     d.Logger,
			}
			if c.Bool("issue-otp") || c.Bool("require-otp") {
				dbCfg, authCfg, err := loadOTPConfig(d.Lookup)
				if err != nil {
					return err
				}
				store, err := d.OpenOTPStore(c.Context, dbCfg, authCfg)
				if err != nil {
					return err
				}
				defer store.Close()
				portalCfg.Issuer = store.Issuer
			}

			portal, err := demoapp.New(portalCfg)
			if err != nil {
				return err
			}

			return RunDemo(DemoDependencies{
				Port:    c.String("port"),
				Handler: portal.Handler(),
				Logger:  d.Logger.WithField("role", portalCfg.Role),
			}, d.Shutdown)
		},
	}
}
