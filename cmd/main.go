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

	"github.com/Payphone-Digital/customer-service/config"
	"github.com/Payphone-Digital/customer-service/internal/constants"
	"github.com/Payphone-Digital/customer-service/pkg/database"
	"github.com/Payphone-Digital/customer-service/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "customer-service",
		Short:         "Customer identity backend",
		Version:       constants.AppVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newSSOSyncCmd())
	return root
}

// bootstrap loads config and initializes the global logger.
func bootstrap() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := logger.InitLogger(cfg); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, SSO sync loop and notification worker",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := logger.GetLogger()
	log.Info("Application starting",
		zap.String("app_name", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
		zap.String("version", constants.AppVersion),
	)

	app, err := buildApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           app.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("Shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	})

	app.monitor.Start(gctx)
	g.Go(func() error {
		<-gctx.Done()
		app.monitor.Stop()
		return nil
	})

	if cfg.SSO.SyncEnabled {
		if err := app.runner.Start(gctx); err != nil {
			return err
		}
	} else {
		log.Info("SSO sync disabled")
	}

	if app.worker != nil {
		g.Go(func() error {
			return app.worker.Run(gctx)
		})
	}

	err = g.Wait()
	log.Info("Application stopped")
	return err
}

func newMigrateCmd() *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations, indexes and seed data",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync()

			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer database.CloseDB(db)

			if err := migrate(db, seed); err != nil {
				return err
			}
			logger.GetLogger().Info("Database migrated successfully")
			return nil
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", true, "insert default settings and admin accounts")
	return cmd
}

func newSSOSyncCmd() *cobra.Command {
	var ticks int
	cmd := &cobra.Command{
		Use:   "sso-sync",
		Short: "Run SSO sync ticks synchronously and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if ticks <= 0 {
				return fmt.Errorf("--ticks must be positive, got %d", ticks)
			}
			cfg, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync()

			app, err := buildApp(cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := app.runner.LoadConfig(ctx); err != nil {
				return fmt.Errorf("load sso config: %w", err)
			}
			for i := 0; i < ticks && ctx.Err() == nil; i++ {
				app.runner.Tick(ctx)
			}

			status := app.runner.Snapshot()
			logger.GetLogger().Info("SSO sync finished",
				zap.Int("ticks", ticks),
				zap.Int("offset", status.Cursor.Offset),
				zap.Int64("total", status.Cursor.TotalData),
				zap.String("last_error", status.LastError),
			)
			return nil
		},
	}
	cmd.Flags().IntVar(&ticks, "ticks", 1, "number of sync ticks to run")
	return cmd
}
