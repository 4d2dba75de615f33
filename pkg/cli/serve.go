package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/getmockd/provider/pkg/logging"
	"github.com/getmockd/provider/pkg/server"
)

var serveFlagVals configFlags

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the provider in the foreground",
	Long: `Run the provider HTTP service until interrupted.

Routes:
  GET  /provider.json           the provider endpoint
  POST /_pact/provider_states   provider state changes from external verifiers
  GET  /health                  liveness and the active variant
  GET  /metrics                 Prometheus metrics
  GET  /openapi.yaml            OpenAPI description of the routes above`,
	Example: `  # Serve the count variant on the default port
  provider serve

  # Serve the animals variant on port 9000
  provider serve --variant animals --port 9000

  # Serve from a config file with JSON logs
  provider serve --config provider.yaml --log-format json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runServe(ctx, cmd, &serveFlagVals)
	},
}

func runServe(ctx context.Context, cmd *cobra.Command, f *configFlags) error {
	cfg, err := f.load(cmd)
	if err != nil {
		return err
	}

	logCfg := cfg.Logging()
	logCfg.Output = cmd.ErrOrStderr()
	log := logging.New(logCfg)

	srv, err := server.New(cfg, server.WithLogger(log))
	if err != nil {
		return err
	}
	if err := srv.Start(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Provider (%s) listening on %s\n", srv.Store().Get(), srv.URL())

	<-ctx.Done()
	log.Info("shutting down")
	return srv.Stop()
}

func init() {
	serveFlagVals.register(serveCmd, true)
	rootCmd.AddCommand(serveCmd)
}
