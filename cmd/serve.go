package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Boot the application and serve HTTP",
	Long: `Boot the application and serve HTTP on APP_PORT until interrupted.

Every request gets its own activation scope. Scoped services live for the
request and their resources are released when it completes.

Examples:
  go-ioc serve
  go-ioc serve --env .env.local`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := newApplication()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return application.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
