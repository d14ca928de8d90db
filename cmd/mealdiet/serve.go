package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	adapthttp "mealdiet/internal/adapter/http"
	"mealdiet/internal/adapter/memory"
	"mealdiet/internal/adapter/postgres"
	"mealdiet/internal/app"
	"mealdiet/internal/config"
	"mealdiet/internal/domain"
	"mealdiet/internal/logging"
)

const (
	shutdownTimeout = 10 * time.Second
	purgeInterval   = time.Hour
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending postgres migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required")
		}
		db, err := postgres.Connect(cmd.Context(), cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		if err := db.Migrate(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
		return nil
	},
}

// store is everything the services need from a persistence adapter.
type store interface {
	domain.MealRepository
	domain.UserRepository
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagEnvFile)
	if err != nil {
		return cfg, err
	}
	if flagAddr != "" {
		cfg.Addr = flagAddr
	}
	if flagDatabaseURL != "" {
		cfg.DatabaseURL = flagDatabaseURL
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, closeLog := logging.New(logging.Options{
		JSON:  cfg.Production(),
		Level: cfg.LogLevel,
		File:  cfg.LogFile,
	})
	defer func() { _ = closeLog.Close() }()
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		repo     store
		sessions domain.SessionRepository
	)
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set, using in-memory store")
		mem := memory.New()
		repo, sessions = mem, mem.NewSessionRepo()
	} else {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("db open: %w", err)
		}
		defer func() { _ = db.Close() }()
		repo, sessions = db, postgres.NewSessionRepo(db)
	}

	mealSvc := app.NewMealService(repo)
	authSvc := app.NewAuthService(repo, sessions, cfg.SessionTTL)

	opts := adapthttp.Options{
		Logger:       log,
		ForwardAuth:  cfg.ForwardAuth,
		CookieSecure: cfg.CookieSecure || cfg.Production(),
	}
	if cfg.OIDC.Enabled() {
		oc, err := adapthttp.NewOIDCConfig(ctx, cfg.OIDC.Issuer, cfg.OIDC.ClientID, cfg.OIDC.ClientSecret, cfg.OIDC.RedirectURL)
		if err != nil {
			return err
		}
		opts.OIDC = oc
		log.Info("sso enabled", "issuer", cfg.OIDC.Issuer)
	}

	go purgeSessions(ctx, log, authSvc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           adapthttp.New(mealSvc, authSvc, opts).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.Addr, "env", cfg.AppEnv)
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

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

func purgeSessions(ctx context.Context, log *slog.Logger, auth *app.AuthService) {
	t := time.NewTicker(purgeInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := auth.PurgeExpiredSessions(ctx)
			if err != nil {
				log.Warn("purge sessions", "err", err)
				continue
			}
			if n > 0 {
				log.Info("purged expired sessions", "count", n)
			}
		}
	}
}
