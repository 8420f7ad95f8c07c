package cli

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/themizzi/sessionsuite/internal/demoapp"
)

// mockHandler creates a simple test handler
func mockHandler(response string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(response))
	})
}

// createTestDeps creates DemoDependencies with a mock handler for testing
func createTestDeps(port string) DemoDependencies {
	logger, _ := logtest.NewNullLogger()
	return DemoDependencies{
		Port:    port,
		Handler: mockHandler("portal"),
		Logger:  logger,
	}
}

// startTestServer starts a server with the given dependencies and returns listener, server, and port
func startTestServer(t *testing.T, deps DemoDependencies) (net.Listener, *http.Server, int) {
	t.Helper()
	listener, server, err := StartServer(deps)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	return listener, server, port
}

// httpGet makes an HTTP GET request and returns response body and status
func httpGet(t *testing.T, url string) (string, int) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("Failed to make request to %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return string(body), resp.StatusCode
}

func TestStartServer_SuccessfulStartup(t *testing.T) {
	// GIVEN
	deps := createTestDeps("0")

	// WHEN
	listener, server, port := startTestServer(t, deps)
	defer listener.Close()
	defer server.Close()

	// THEN
	if port == 0 {
		t.Error("Expected non-zero port")
	}

	time.Sleep(50 * time.Millisecond)
	body, status := httpGet(t, fmt.Sprintf("http://localhost:%d/", port))

	if status != http.StatusOK {
		t.Errorf("Expected status 200, got %d", status)
	}
	if body != "portal" {
		t.Errorf("Expected 'portal', got '%s'", body)
	}
}

func TestStartServer_InvalidPort(t *testing.T) {
	// GIVEN
	deps := createTestDeps("99999")

	// WHEN
	listener, server, err := StartServer(deps)

	// THEN
	if err == nil {
		listener.Close()
		server.Close()
		t.Error("Expected error for invalid port, got nil")
	}
}

func TestStartServer_PortAlreadyInUse(t *testing.T) {
	// GIVEN
	existingListener, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("Failed to create test listener: %v", err)
	}
	defer existingListener.Close()

	port := existingListener.Addr().(*net.TCPAddr).Port
	deps := createTestDeps(fmt.Sprintf("%d", port))

	// WHEN
	listener, server, err := StartServer(deps)

	// THEN
	if err == nil {
		listener.Close()
		server.Close()
		t.Error("Expected error for port already in use, got nil")
	}
}

func TestStartServer_ServesPortal(t *testing.T) {
	// GIVEN
	portal, err := demoapp.New(demoapp.Config{Role: demoapp.RoleUser, Email: "user@example.com", Password: "user123"})
	if err != nil {
		t.Fatalf("Failed to create portal: %v", err)
	}
	deps := createTestDeps("0")
	deps.Handler = portal.Handler()

	// WHEN
	listener, server, port := startTestServer(t, deps)
	defer listener.Close()
	defer server.Close()

	// THEN
	time.Sleep(50 * time.Millisecond)
	body, status := httpGet(t, fmt.Sprintf("http://localhost:%d/", port))
	if status != http.StatusOK {
		t.Errorf("Expected status 200, got %d", status)
	}
	if want := `aria-label="email"`; !strings.Contains(body, want) {
		t.Errorf("Expected login form containing %s", want)
	}
}

func TestWaitForShutdown_SIGTERM(t *testing.T) {
	// GIVEN
	deps := createTestDeps("0")

	listener, server, _ := startTestServer(t, deps)
	defer listener.Close()

	shutdown := make(chan os.Signal, 1)

	// WHEN
	errCh := make(chan error, 1)
	go func() {
		errCh <- WaitForShutdown(server, shutdown, deps.Logger)
	}()

	time.Sleep(50 * time.Millisecond)
	shutdown <- syscall.SIGTERM

	// THEN
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Expected nil error, got: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("WaitForShutdown did not complete")
	}
}

func TestWaitForShutdown_WithActiveRequests(t *testing.T) {
	// GIVEN
	slowHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.Write([]byte("done"))
	})

	deps := createTestDeps("0")
	deps.Handler = slowHandler

	listener, server, port := startTestServer(t, deps)
	defer listener.Close()

	time.Sleep(50 * time.Millisecond)
	requestComplete := make(chan bool, 1)
	go func() {
		resp, err := http.Get(fmt.Sprintf("http://localhost:%d/", port))
		if err == nil {
			resp.Body.Close()
		}
		requestComplete <- true
	}()

	time.Sleep(50 * time.Millisecond)

	shutdown := make(chan os.Signal, 1)

	// WHEN
	errCh := make(chan error, 1)
	go func() {
		errCh <- WaitForShutdown(server, shutdown, deps.Logger)
	}()

	shutdown <- syscall.SIGTERM

	// THEN
	select {
	case <-requestComplete:
	case <-time.After(2 * time.Second):
		t.Error("Request did not complete in time")
	}

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Expected nil error, got: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("WaitForShutdown did not complete")
	}
}

func TestWaitForShutdown_TimeoutForcesClose(t *testing.T) {
	// GIVEN
	blockingHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
		w.Write([]byte("done"))
	})

	deps := createTestDeps("0")
	deps.Handler = blockingHandler

	listener, server, port := startTestServer(t, deps)
	defer listener.Close()

	go func() {
		resp, err := http.Get(fmt.Sprintf("http://localhost:%d/", port))
		if err == nil {
			resp.Body.Close()
		}
	}()
	time.Sleep(100 * time.Millisecond)

	shutdown := make(chan os.Signal, 1)

	// WHEN
	errCh := make(chan error, 1)
	go func() {
		errCh <- WaitForShutdownWithTimeout(server, shutdown, time.Nanosecond, deps.Logger)
	}()
	shutdown <- syscall.SIGTERM

	// THEN
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Expected forced close to succeed, got: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("WaitForShutdown did not complete")
	}
}

func TestRunDemo_StartupFailure(t *testing.T) {
	// GIVEN
	deps := createTestDeps("99999")

	// WHEN
	err := RunDemo(deps, make(chan os.Signal, 1))

	// THEN
	if err == nil {
		t.Error("Expected error for invalid port, got nil")
	}
}

func TestRunDemo_StopsOnSignal(t *testing.T) {
	// GIVEN
	deps := createTestDeps("0")
	shutdown := make(chan os.Signal, 1)

	// WHEN
	errCh := make(chan error, 1)
	go func() {
		errCh <- RunDemo(deps, shutdown)
	}()
	time.Sleep(100 * time.Millisecond)
	shutdown <- syscall.SIGINT

	// THEN
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Expected nil error, got: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Server did not shut down within timeout")
	}
}
