package cmd

import (
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/maverickins/claims-intake/internal/bootstrap"
	"github.com/maverickins/claims-intake/internal/bootstrap/logging"
	"github.com/maverickins/claims-intake/internal/errs"
	"github.com/maverickins/claims-intake/internal/server"
	"github.com/maverickins/claims-intake/internal/usecase/pipeline"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the claim intake HTTP API",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svc *pipeline.Service) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		ctx = logging.WithAttrs(ctx, slog.String("command", cmd.CommandPath()))

		srv := server.New(app.Config.Server, svc)
		if err := srv.Run(ctx); err != nil {
			return errs.Wrap(err, "run http server")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
