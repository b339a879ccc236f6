package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/clausescope/internal/pipeline"
	"github.com/ppiankov/clausescope/internal/server"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve clause extraction and highlighting over HTTP",
	Long: `Serve starts the JSON API:

  POST /api/v1/analyze     {"text": "..."} → clauses and dates
  POST /api/v1/highlight   {"text": "..."} → entity and date markup
  GET  /health
  GET  /metrics            Prometheus metrics

Example:
  clausescope serve --addr :8080
  CLAUSESCOPE_SERVER_RATE_LIMIT=0 clausescope serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	analyzer, err := pipeline.NewAnalyzerFromConfig(cfg, logger)
	if err != nil {
		return fmt.Errorf("create analyzer: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(cfg.Server, analyzer, logger, version).Start(ctx)
}
