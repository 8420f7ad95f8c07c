package cli

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
)

// DemoDependencies holds everything needed to serve the demo portal
type DemoDependencies struct {
	Port    string
	Handler http.Handler
	Logger  logrus.FieldLogger
}

// RunDemo serves the portal until a shutdown signal arrives
func RunDemo(deps DemoDependencies, shutdown chan os.Signal) error {
	listener, server, err := StartServer(deps)
	if err != nil {
		return err
	}
	defer listener.Close()

	return WaitForShutdown(server, shutdown, deps.Logger)
}

// StartServer creates and starts the HTTP server, returning the listener and server
func StartServer(deps DemoDependencies) (net.Listener, *http.Server, error) {
	addr := fmt.Sprintf(":%s", deps.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create listener: %w", err)
	}

	server := &http.Server{
		Handler:           deps.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		deps.Logger.Infof("Server listening on %s", listener.Addr().String())
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			deps.Logger.WithError(err).Error("Server error")
		}
	}()

	return listener, server, nil
}

// WaitForShutdown waits for a shutdown signal and gracefully shuts down the server.
// If shutdown is nil, a new channel is registered with signal.Notify.
func WaitForShutdown(server *http.Server, shutdown chan os.Signal, log logrus.FieldLogger) error {
	return WaitForShutdownWithTimeout(server, shutdown, 30*time.Second, log)
}

// WaitForShutdownWithTimeout allows specifying a custom shutdown timeout
func WaitForShutdownWithTimeout(server *http.Server, shutdown chan os.Signal, shutdownTimeout time.Duration, log logrus.FieldLogger) error {
	if shutdown == nil {
		shutdown = make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
		defer signal.Stop(shutdown)
	}

	sig := <-shutdown
	log.Infof("Received signal: %v, shutting down server...", sig)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		if err := server.Close(); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	log.Info("Server stopped")
	return nil
}
