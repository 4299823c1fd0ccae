// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Simple Quiz Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/simple-quiz-org/simple-quiz-api/internal/auth"
	authpg "github.com/simple-quiz-org/simple-quiz-api/internal/auth/postgres"
	"github.com/simple-quiz-org/simple-quiz-api/internal/config"
	"github.com/simple-quiz-org/simple-quiz-api/internal/httpapi"
	"github.com/simple-quiz-org/simple-quiz-api/internal/logging"
	"github.com/simple-quiz-org/simple-quiz-api/internal/mail"
	"github.com/simple-quiz-org/simple-quiz-api/internal/observability"
	"github.com/simple-quiz-org/simple-quiz-api/internal/room"
	roompg "github.com/simple-quiz-org/simple-quiz-api/internal/room/postgres"
	"github.com/simple-quiz-org/simple-quiz-api/internal/store"
)

const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long: `Start the HTTP API server, connecting to PostgreSQL and serving
the auth and room endpoints, plus a separate observability listener.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cmd)
		},
	}

	cmd.Flags().String("server.addr", "", "API listen address")
	cmd.Flags().String("server.public_base_url", "", "externally visible base URL")
	cmd.Flags().String("metrics.addr", "", "metrics/health HTTP address (empty = config default)")
	cmd.Flags().String("database.url", "", "PostgreSQL connection string")
	cmd.Flags().String("log.format", "", "log format (json or text)")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger := logging.Setup("simple-quiz-api", cmd.Root().Version, cfg.Log.Format, os.Stderr)
	slog.SetDefault(logger)

	logger.Info("starting api server",
		"addr", cfg.Server.Addr,
		"log_format", cfg.Log.Format,
	)

	pool, err := store.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()
	logger.Info("connected to database")

	hasher, err := auth.NewHasher(cfg.Auth.Hasher)
	if err != nil {
		return err
	}

	sessions := authpg.NewSessionRepository(pool)
	users := authpg.NewUserRepository(pool)
	pending := authpg.NewPendingSignupRepository(pool)
	transactor := authpg.NewTransactor(pool)
	rooms := roompg.NewRepository(pool)

	notifier := mail.NewSMTPNotifier(cfg.SMTP, cfg.Server.PublicBaseURL)

	services := httpapi.Services{
		Auth:     auth.NewService(sessions, users, hasher),
		Signup:   auth.NewSignupService(users, pending, sessions, hasher, notifier, transactor),
		Resolver: auth.NewResolver(sessions),
		Rooms:    room.NewService(rooms),
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Observability listener, if configured.
	var (
		obsServer *observability.Server
		metrics   *observability.Metrics
	)
	if cfg.Metrics.Addr != "" {
		obsServer = observability.NewServer(cfg.Metrics.Addr, func() bool {
			pingCtx, pingCancel := context.WithTimeout(ctx, 2*time.Second)
			defer pingCancel()
			return pool.Ping(pingCtx) == nil
		})
		obsErrCh, err := obsServer.Start()
		if err != nil {
			return oops.With("operation", "start observability server").Wrap(err)
		}
		go monitorServerErrors(ctx, cancel, obsErrCh, "observability")
		metrics = obsServer.Metrics()
	}

	apiServer, err := httpapi.NewServer(
		cfg.Server.Addr,
		cfg.Server.PublicBaseURL,
		cfg.Server.CORSOrigins,
		services,
		logger,
		metrics,
	)
	if err != nil {
		return err
	}
	apiErrCh, err := apiServer.Start()
	if err != nil {
		return oops.With("operation", "start api server").Wrap(err)
	}
	go monitorServerErrors(ctx, cancel, apiErrCh, "api")

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	logger.Info("api server ready", "addr", apiServer.Addr())

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down")
	}

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := apiServer.Stop(shutdownCtx); err != nil {
		logger.Warn("error stopping api server", "error", err)
	}
	if obsServer != nil {
		if err := obsServer.Stop(shutdownCtx); err != nil {
			logger.Warn("error stopping observability server", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return nil
}

// monitorServerErrors cancels the context when a server reports an error,
// so a failed listener tears the whole process down gracefully. It exits
// when an error arrives, the channel closes, or the context is cancelled.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
	}
}
