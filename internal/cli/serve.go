package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/jmylchreest/covergen/internal/apperr"
	"github.com/jmylchreest/covergen/internal/compose"
	"github.com/jmylchreest/covergen/internal/config"
	"github.com/jmylchreest/covergen/internal/cover"
	"github.com/jmylchreest/covergen/internal/label"
	"github.com/jmylchreest/covergen/internal/metrics"
	"github.com/jmylchreest/covergen/internal/server"
	"github.com/jmylchreest/covergen/internal/storage"
)

const (
	shutdownTimeout = 15 * time.Second
	checkTimeout    = 5 * time.Second
)

func newServeCmd(v *viper.Viper, opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the cover HTTP service",
		Long: `Run the HTTP service that renders playlist covers and uploads them to
object storage.

Configuration is read from the environment (API_KEY, STORAGE_ENDPOINT,
STORAGE_ACCESS_KEY, STORAGE_SECRET_KEY, ...), optionally overlaid by --config.
Flags override both.`,
		Args: cobra.NoArgs,
		PreRun: func(cmd *cobra.Command, args []string) {
			bindFlag(v, cmd.Flags(), config.KeyListenAddr, "listen")
			bindFlag(v, cmd.Flags(), config.KeyFontPath, "font")
			bindFlag(v, cmd.Flags(), config.KeyOutputDir, "output-dir")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, v, opts.logger(cmd.ErrOrStderr()))
		},
	}

	cmd.Flags().String("listen", config.DefaultListenAddr, "address to listen on")
	cmd.Flags().String("font", "", "TrueType/OpenType font file (default: embedded Go Regular)")
	cmd.Flags().String("output-dir", config.DefaultOutputDir, "directory for temporary cover files")
	return cmd
}

func runServe(ctx context.Context, v *viper.Viper, logger hclog.Logger) error {
	cfg, err := config.Load(v)
	if err == nil {
		err = cfg.RequireServer()
	}
	if err != nil {
		logConfigError(logger, err)
		return err
	}

	store, err := storage.NewMinioStore(storage.Options{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Region:    cfg.Storage.Region,
		UseSSL:    cfg.Storage.UseSSL,
		Logger:    logger.Named("storage"),
	})
	if err != nil {
		return err
	}

	checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	if err := store.Check(checkCtx, cfg.Storage.Bucket); err != nil {
		logger.Warn("object store not ready, continuing", "bucket", cfg.Storage.Bucket, "error", err)
	}
	cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.MustNew(reg)

	svc, err := cover.NewService(cover.Options{
		Validator: label.NewValidator(cfg.MinYear),
		Composer: compose.New(compose.Options{
			FontPath: cfg.FontPath,
			Logger:   logger.Named("compose"),
		}),
		Uploader:    store,
		Canvas:      cfg.Canvas,
		OutputDir:   cfg.OutputDir,
		Endpoint:    cfg.Storage.Endpoint,
		Bucket:      cfg.Storage.Bucket,
		Concurrency: int64(cfg.RenderConcurrency),
		Metrics:     m,
		Logger:      logger.Named("cover"),
	})
	if err != nil {
		return err
	}

	srv := server.New(server.Options{
		Addr:     cfg.ListenAddr,
		APIKey:   cfg.APIKey,
		Covers:   svc,
		Gatherer: reg,
		Metrics:  m,
		Logger:   logger.Named("server"),
		Debug:    logger.IsDebug(),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.ListenAndServe)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// logConfigError logs each configuration problem on its own line.
func logConfigError(logger hclog.Logger, err error) {
	var cerr *apperr.ConfigurationError
	if !errors.As(err, &cerr) {
		logger.Error("invalid configuration", "error", err)
		return
	}
	for _, p := range cerr.Problems {
		logger.Error("invalid configuration", "problem", p)
	}
}
