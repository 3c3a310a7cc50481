package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	charmlog "charm.land/log/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/nakamauwu/backchannel/auth"
	"github.com/nakamauwu/backchannel/cockroach"
	"github.com/nakamauwu/backchannel/cockroach/migrator"
	"github.com/nakamauwu/backchannel/config"
	bcminio "github.com/nakamauwu/backchannel/minio"
	bcnats "github.com/nakamauwu/backchannel/nats"
	"github.com/nakamauwu/backchannel/service"
	bchttp "github.com/nakamauwu/backchannel/transport/http"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	errLogger := slog.New(charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
	}))
	infoLogger := slog.New(charmlog.NewWithOptions(os.Stdout, charmlog.Options{
		ReportTimestamp: true,
	}))

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := pgxpool.New(ctx, cfg.CockroachURL)
	if err != nil {
		return fmt.Errorf("open cockroach connection pool: %w", err)
	}

	defer dbPool.Close()

	if err := dbPool.Ping(ctx); err != nil {
		return fmt.Errorf("ping cockroach: %w", err)
	}

	migrationStart := time.Now()
	infoLogger.Info("starting cockroach migrations")

	if err := migrator.Migrate(ctx, dbPool, cockroach.MigrationsFS); err != nil {
		return fmt.Errorf("migrate cockroach schema: %w", err)
	}

	infoLogger.Info("finished cockroach migrations", "took", time.Since(migrationStart))

	minioClient, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioSecure,
	})
	if err != nil {
		return fmt.Errorf("create minio client: %w", err)
	}

	objects := bcminio.New(context.Background(), minioClient, cfg.MinioPublicURL, cfg.CleanupTimeout)
	go drainErrs(errLogger, "minio error", objects.Errs())

	bucketsStart := time.Now()
	infoLogger.Info("creating minio buckets")

	if err := objects.CreateReadOnlyBucket(ctx, cfg.AttachmentsBucket); err != nil {
		return fmt.Errorf("create minio bucket: %w", err)
	}

	infoLogger.Info("finished creating minio buckets", "took", time.Since(bucketsStart))

	events, err := bcnats.Connect(cfg.NATSURL)
	if err != nil {
		return err
	}

	defer events.Close()
	go drainErrs(errLogger, "nats error", events.Errs())

	sessions, err := auth.DialRedisSessions(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}

	defer sessions.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	svc := service.New(&service.Config{
		Cockroach:         cockroach.New(dbPool),
		ObjectStore:       objects,
		Events:            events,
		Registerer:        reg,
		AttachmentsBucket: cfg.AttachmentsBucket,
		MaxUploadFiles:    cfg.MaxUploadFiles,
		MaxUploadSize:     cfg.MaxUploadSize,
		BaseCtx:           context.Background(),
		BackgroundTimeout: cfg.BackgroundTimeout,
	})
	svcErrsDone := make(chan struct{})
	go func() {
		defer close(svcErrsDone)
		drainErrs(errLogger, "service error", svc.Errs())
	}()

	handler := &bchttp.Handler{
		Service:        svc,
		Sessions:       sessions,
		ErrorLogger:    errLogger,
		SyncToken:      cfg.SyncToken,
		MaxUploadBytes: int64(cfg.MaxUploadFiles)*int64(cfg.MaxUploadSize) + 1<<20,
		Registerer:     reg,
		Gatherer:       reg,
		AllowedOrigins: splitList(cfg.AllowedOrigins),
	}
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	srvErr := make(chan error, 1)
	go func() {
		infoLogger.Info("starting backchannel server", "url", fmt.Sprintf("http://localhost:%d", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- fmt.Errorf("start backchannel server: %w", err)
		}
		close(srvErr)
	}()

	select {
	case err := <-srvErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		infoLogger.Info("shutting down backchannel server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		errLogger.Error("shutdown server", "error", err)
	}

	if err := svc.Close(); err != nil {
		errLogger.Error("close service", "error", err)
	}

	<-svcErrsDone

	return nil
}

func drainErrs(logger *slog.Logger, msg string, errs <-chan error) {
	for err := range errs {
		logger.Error(msg, "error", err)
	}
}

func splitList(s string) []string {
	var out []string
	for item := range strings.SplitSeq(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
