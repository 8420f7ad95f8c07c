//go:build e2e

package e2e

import (
	"context"
	"testing"

	"github.com/themizzi/sessionsuite/internal/authn"
	"github.com/themizzi/sessionsuite/internal/browser"
	"github.com/themizzi/sessionsuite/internal/fixtures"
)

func adminFixture(t *testing.T) *fixtures.Admin {
	t.Helper()
	f, err := fixtures.NewAdmin(context.Background(), auth, adminProfile, logger)
	if err != nil {
		t.Fatalf("Failed to authenticate admin: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

// TestAdminDashboard
// Feature: Admin session
//
//	As an administrator
//	I want to land on the dashboard without logging in every test
func TestAdminDashboard(t *testing.T) {
	f := adminFixture(t)

	// Given I open the portal
	if err := f.Admin.Goto("/"); err != nil {
		t.Fatal(err)
	}

	// Then I should see the dashboard
	if err := f.Admin.ShouldBeVisible(f.Admin.Dashboard, 0); err != nil {
		t.Error(err)
	}
}

func TestAdminLeaveList(t *testing.T) {
	f := adminFixture(t)

	if err := f.Leave.NavigateToLeavePage(); err != nil {
		t.Fatal(err)
	}
	if err := f.Leave.WaitForLoadState(browser.LoadStateNetworkIdle); err != nil {
		t.Fatal(err)
	}
	if err := f.Leave.ShouldBeVisible(browser.Heading("Leave List"), 0); err != nil {
		t.Error(err)
	}
}

func TestAdminApplyLeaveAndTimesheet(t *testing.T) {
	f := adminFixture(t)

	if err := f.Leave.ApplyLeave(); err != nil {
		t.Fatal(err)
	}
	if err := f.Leave.ShouldBeVisible(browser.Heading("Leave List"), 0); err != nil {
		t.Error(err)
	}

	if err := f.Leave.NavigateToTimesheet(); err != nil {
		t.Fatal(err)
	}
	if err := f.Leave.ShouldBeVisible(browser.Heading("Employee Timesheet"), 0); err != nil {
		t.Error(err)
	}
}

func TestAdminEmployeeList(t *testing.T) {
	f := adminFixture(t)

	if err := f.PIM.Navigate(); err != nil {
		t.Fatal(err)
	}
	if err := f.PIM.ShouldBeVisible(browser.Heading("Employee Information"), 0); err != nil {
		t.Error(err)
	}
}

// TestAdminSessionReuse
// Feature: Persisted sessions
//
//	Scenario: A working session is reused
//	Scenario: A session the portal forgot triggers one fresh login
func TestAdminSessionReuse(t *testing.T) {
	ctx := context.Background()

	// Given a persisted admin session
	first, err := auth.Authenticate(ctx, adminProfile)
	if err != nil {
		t.Fatalf("Failed to authenticate admin: %v", err)
	}
	first.Close()

	// Then the next test reuses it
	second, err := auth.Authenticate(ctx, adminProfile)
	if err != nil {
		t.Fatalf("Failed to reuse admin session: %v", err)
	}
	second.Close()
	if second.Origin != authn.Reused {
		t.Errorf("Expected reused session, got %s", second.Origin)
	}

	// When the portal signs everyone out
	if n := adminPortal.InvalidateSessions(); n == 0 {
		t.Fatal("Expected at least one session to invalidate")
	}

	// Then the stale session is replaced by a fresh login
	third, err := auth.Authenticate(ctx, adminProfile)
	if err != nil {
		t.Fatalf("Failed to re-authenticate admin: %v", err)
	}
	defer third.Close()
	if third.Origin != authn.FreshLogin {
		t.Errorf("Expected fresh login, got %s", third.Origin)
	}
	if ok, err := auth.Probe(adminProfile); err != nil || !ok {
		t.Errorf("Expected refreshed session to probe valid, got %v, %v", ok, err)
	}
}
