package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pulsegraph/pulsegraph/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the PulseGraph HTTP API",
	Long: `Start the HTTP API. Endpoints:

  POST /ask      answer a question from the graph, optionally refreshing
                 stale data first (?auto_refresh=true)
  POST /refresh  run a refresh for a company/period
  GET  /healthz  health probe`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		app, cleanup, err := buildApp(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		srv := server.New(
			app.store,
			app.orchestrator,
			app.evaluator,
			app.cfg.Server,
			app.cfg.Refresh.SignalWindow,
			app.log,
		)
		return srv.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
