package cli

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/telhawk-systems/telhawk-csv/internal/handlers"
	"github.com/telhawk-systems/telhawk-csv/internal/logging"
	"github.com/telhawk-systems/telhawk-csv/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the header codec HTTP service",
	Long: `Serve exposes the header codec over HTTP:

  POST   /api/v1/headers/decode     process a raw header line for a source
  POST   /api/v1/headers/encode     encode column definitions
  GET    /api/v1/headers/{source}   show the stored block of a source
  DELETE /api/v1/headers/{source}   delete the stored block of a source
  GET    /api/v1/dlq                list rejected header lines
  DELETE /api/v1/dlq[/{id}]         purge or delete rejected header lines
  GET    /healthz                   processor health
  GET    /metrics                   Prometheus metrics`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetInt("port"); port > 0 {
			cfg.Server.Port = port
		}

		logger := newLogger(cmd)
		logging.SetDefault(logger)
		logger.Info("Starting csv header service",
			slog.Int("port", cfg.Server.Port),
			slog.String("store", cfg.Store.Backend),
			slog.Bool("nats", cfg.NATS.Enabled),
			slog.Bool("dlq", cfg.DLQ.Enabled),
		)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rt, err := newRuntime(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer rt.Close()

		router := server.NewRouter(handlers.NewHeaderHandler(rt.processor, logger))
		srv := server.New(cfg.Server, router)
		return server.ListenAndServe(ctx, srv, cfg.Server.ShutdownTimeout, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 0, "override server.port")
}
