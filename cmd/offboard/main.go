package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/viant/offboard"
)

func main() {
	configURL := flag.String("config", "config.yaml", "config URL (file://, mem://, s3:// ...)")
	addr := flag.String("addr", "", "listen address, overrides http.addr")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	if err := run(*configURL, *addr, logger); err != nil {
		logger.Error("offboard stopped", "error", err)
		os.Exit(1)
	}
}

func run(configURL, addr string, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := offboard.LoadConfig(ctx, configURL)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.HTTP.Addr = addr
	}
	srv, err := offboard.New(ctx, cfg, offboard.WithLogger(logger))
	if err != nil {
		return err
	}
	srv.Start(ctx)

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errs := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.HTTP.Addr, "baseURL", cfg.BaseURL)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	select {
	case err = <-errs:
	case <-ctx.Done():
		logger.Info("shutting down")
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil && err == nil {
		err = shutdownErr
	}
	return errors.Join(err, srv.Shutdown(shutdownCtx))
}
