package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	internalcli "github.com/themizzi/sessionsuite/internal/cli"
)

var version = "0.1.0"

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		logrus.Warn(".env file not found, using environment variables")
	}

	deps := internalcli.DefaultDependencies()

	app := &cli.App{
		Name:     "sessionsuite",
		Usage:    "Persisted-session login tooling for the e2e suite",
		Version:  version,
		Before:   deps.ConfigureLogger,
		Commands: internalcli.Commands(deps),
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
