//go:build e2e

package e2e

import (
	"fmt"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/sirupsen/logrus"

	"github.com/themizzi/sessionsuite/internal/authn"
	"github.com/themizzi/sessionsuite/internal/browser"
	"github.com/themizzi/sessionsuite/internal/cli"
	"github.com/themizzi/sessionsuite/internal/config"
	"github.com/themizzi/sessionsuite/internal/demoapp"
	"github.com/themizzi/sessionsuite/internal/otp"
	"github.com/themizzi/sessionsuite/internal/sessionstore"
)

var (
	auth         *authn.Authenticator
	adminProfile authn.RoleProfile
	userProfile  authn.RoleProfile
	adminPortal  *demoapp.Portal
	logger       *logrus.Logger
)

// TestMain serves both demo portals, starts the browser and shares one
// authenticator between all tests
func TestMain(m *testing.M) {
	os.Exit(run(m))
}

func run(m *testing.M) int {
	logger = logrus.New()
	if err := cli.ConfigureLogger(logger, config.LogConfig{Level: "info", Format: "text"}); err != nil {
		panic(err)
	}

	browserCfg, err := config.LoadBrowserConfig(os.LookupEnv)
	if err != nil {
		panic(err)
	}

	// Codes the admin portal issues land in an in-process Redis
	mr, err := miniredis.Run()
	if err != nil {
		panic(err)
	}
	defer mr.Close()
	client := otp.DialRedis(mr.Addr())
	defer client.Close()
	codes := otp.NewRedisSource(client)

	adminPortal, err = demoapp.New(demoapp.Config{
		Role:       demoapp.RoleAdmin,
		Email:      "admin@example.com",
		Password:   "admin123",
		RequireOTP: true,
		Issuer:     demoapp.NewRedisIssuer(codes, cli.IssuedOTPTTL),
		Logger:     logger,
	})
	if err != nil {
		panic(err)
	}
	userPortal, err := demoapp.New(demoapp.Config{
		Role:     demoapp.RoleUser,
		Email:    "user@example.com",
		Password: "user123",
		Logger:   logger,
	})
	if err != nil {
		panic(err)
	}

	adminServer := httptest.NewServer(adminPortal.Handler())
	defer adminServer.Close()
	userServer := httptest.NewServer(userPortal.Handler())
	defer userServer.Close()

	authDir, err := os.MkdirTemp("", "sessionsuite-e2e")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(authDir)

	adminProfile = authn.AdminProfile(config.RoleConfig{
		URL:      adminServer.URL,
		Email:    "admin@example.com",
		Password: "admin123",
	}, authDir, true)
	userProfile = authn.UserProfile(config.RoleConfig{
		URL:      userServer.URL,
		Email:    "user@example.com",
		Password: "user123",
	}, authDir)

	// Browsers already installed via: go run github.com/playwright-community/playwright-go/cmd/playwright@latest install chromium
	driver, err := browser.Launch(cli.LaunchOptions(browserCfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to launch browser: %v\n", err)
		return 1
	}
	defer driver.Close()

	auth = authn.New(driver, sessionstore.NewOS(), authn.Options{OTP: codes, Logger: logger})

	return m.Run()
}
