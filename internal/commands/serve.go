package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sheikh-saqib/echeque-service/internal/buildinfo"
	"github.com/sheikh-saqib/echeque-service/internal/cheque"
	"github.com/sheikh-saqib/echeque-service/internal/config"
	"github.com/sheikh-saqib/echeque-service/internal/httpapi"
	"github.com/sheikh-saqib/echeque-service/internal/logging"
	"github.com/sheikh-saqib/echeque-service/internal/metrics"
	"github.com/sheikh-saqib/echeque-service/internal/otp"
)

type serveOptions struct {
	envFile string
	addr    string
}

func newServeCommand(opts *serveOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *opts)
		},
	}
	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address, overrides ECHEQUE_HTTP_ADDR")
	return cmd
}

func runServe(ctx context.Context, opts serveOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return err
	}
	if opts.addr != "" {
		cfg.HTTPAddr = opts.addr
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, storeCloser, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("opening storage", zap.Error(err))
		return err
	}
	defer storeCloser.Close()

	publisher, publisherCloser := openPublisher(cfg, logger)
	defer publisherCloser.Close()

	mt := metrics.New()
	manager := cheque.NewManager(store, otp.NewStaticVerifier(cfg.OTPCode),
		cheque.WithLocation(cfg.Timezone),
		cheque.WithPublisher(publisher, cfg.KafkaTopic),
		cheque.WithLogger(logger.Named("cheque")),
		cheque.WithMetrics(mt),
	)

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: httpapi.NewRouter(manager, httpapi.Options{
			Logger:      logger.Named("http"),
			Metrics:     mt,
			CORSOrigins: cfg.CORSOrigins,
			Version:     buildinfo.Version,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("storage", cfg.Storage),
			zap.String("version", buildinfo.Version),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", zap.Error(err))
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
