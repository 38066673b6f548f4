package cmd

import (
	"github.com/spf13/cobra"

	"github.com/km-arc/go-ioc/framework/app"
	"github.com/km-arc/go-ioc/internal/cats"
)

var envFiles []string

var rootCmd = &cobra.Command{
	Use:   "go-ioc",
	Short: "Demo application for the go-ioc service container",
	Long: `go-ioc boots a small cats service on top of the service container.

Configuration comes from .env files and the environment (APP_*, CONTAINER_*,
LOG_*, METRICS_*).`,
	Version:      app.Version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringSliceVarP(&envFiles, "env", "e", nil,
		"env files to load (default: .env)")
}

// SetVersion overrides the version printed by --version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// newApplication creates the application with the cats domain registered.
func newApplication() (*app.Application, error) {
	application, err := app.New(envFiles...)
	if err != nil {
		return nil, err
	}
	if err := application.Register(&cats.ServiceProvider{
		Seed: []string{"Celine", "Tom", "Felix"},
	}); err != nil {
		return nil, err
	}
	return application, nil
}
