package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/MrJamesThe3rd/lumen/internal/app"
	"github.com/MrJamesThe3rd/lumen/internal/auth"
	"github.com/MrJamesThe3rd/lumen/internal/config"
	"github.com/MrJamesThe3rd/lumen/internal/database"
	lumenhttp "github.com/MrJamesThe3rd/lumen/internal/http"
	ingestHandler "github.com/MrJamesThe3rd/lumen/internal/http/ingest"
	pollerHandler "github.com/MrJamesThe3rd/lumen/internal/http/poller"
	"github.com/MrJamesThe3rd/lumen/internal/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.LogLevel, cfg.App.LogConsole)

	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("server failed")
		os.Exit(1)
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	if err := cfg.ValidateServer(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db, log); err != nil {
		return err
	}

	a, err := app.New(ctx, cfg, db, log)
	if err != nil {
		return err
	}

	if !cfg.GmailConfigured() {
		log.Warn().Msg("GMAIL_CLIENT_ID or GMAIL_CLIENT_SECRET not set, mailbox polling cannot authenticate")
	}

	var (
		ingestH = ingestHandler.NewHandler(a.Ingest, cfg.Ingest.MaxUploadBytes)
		pollerH = pollerHandler.NewHandler(a.Poller, a.Connector)
	)

	router := lumenhttp.New(log, lumenhttp.Options{
		CORSOrigins: cfg.Server.CORSOrigins,
		Timeout:     cfg.Server.Timeout,
		SlowRequest: 2 * time.Second,
	}, auth.NewVerifier(cfg.Auth.JWTSecret), ingestH, pollerH)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// Uploads and OCR can run long; the router's timeout bounds handlers.
		WriteTimeout: cfg.Server.Timeout + 5*time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting server")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}

	if err := a.Poller.Stop(); err != nil {
		log.Error().Err(err).Msg("stopping poller")
	}

	a.Ingest.Wait()

	return nil
}
