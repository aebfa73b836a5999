package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/btraven00/linksift/internal/logger"
	"github.com/btraven00/linksift/internal/metrics"
	"github.com/btraven00/linksift/internal/server"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve exposes sorting and cleaning over HTTP. Uploaded text is sorted into a
batch kept in memory under an opaque id; its lists can be downloaded or
cleaned until the batch is deleted or expires (store.ttl).

Endpoints:
  GET    /healthz
  GET    /metrics
  POST   /api/v1/batches                          raw text body
  GET    /api/v1/batches/:id
  GET    /api/v1/batches/:id/artifacts/:category
  POST   /api/v1/batches/:id/clean/:category
  DELETE /api/v1/batches/:id

Examples:
  linksift serve
  linksift serve --addr 127.0.0.1:9000
  LINKSIFT_PROBE_CONCURRENCY=50 linksift serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8080)")
	addProbeFlags(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := applyProbeFlags(cmd, &cfg.Probe); err != nil {
		return err
	}

	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if verbose {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	m := metrics.New(true)
	eng := newEngine(cfg, log, m)
	srv := server.New(cfg.Server, cfg.Store.TTL, eng, m, log)

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("linksift API starting",
		logger.String("addr", cfg.Server.Addr),
		logger.Duration("probe_timeout", cfg.Probe.Timeout),
		logger.Int("probe_concurrency", cfg.Probe.Concurrency),
		logger.Duration("store_ttl", cfg.Store.TTL),
	)

	return srv.Run(ctx)
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}
