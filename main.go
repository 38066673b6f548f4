// Package main is the entry point for the go-ioc demo application.
package main

import (
	"fmt"
	"os"

	"github.com/km-arc/go-ioc/cmd"
	"github.com/km-arc/go-ioc/framework/app"
)

// Build information injected via ldflags at build time.
var (
	commit = "none"
	date   = "unknown"
)

func main() {
	cmd.SetVersion(fmt.Sprintf("%s (commit: %s, built: %s)", app.Version, commit, date))
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
