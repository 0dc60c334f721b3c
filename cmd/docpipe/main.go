// Package main is the docpipe CLI entry point.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/raghq/docpipe/internal/apiclient"
	"github.com/raghq/docpipe/internal/cli"
)

func main() {
	// Load .env file if present (local development), ignore if missing.
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		if errors.Is(err, apiclient.ErrNotFound) {
			fmt.Fprintln(os.Stderr, "Error: document not found")
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
