package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/octobees/leads-generator/sitescan/internal/auth"
	"github.com/octobees/leads-generator/sitescan/internal/database"
	"github.com/octobees/leads-generator/sitescan/internal/handler"
	middlewarepkg "github.com/octobees/leads-generator/sitescan/internal/middleware"
	"github.com/octobees/leads-generator/sitescan/internal/repository"
	"github.com/octobees/leads-generator/sitescan/internal/router"
	"github.com/octobees/leads-generator/sitescan/internal/service"
	"github.com/octobees/leads-generator/sitescan/internal/webhook"
)

const shutdownTimeout = 10 * time.Second

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scan HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		port := cfg.Port
		if servePort != "" {
			port = servePort
		}

		opts := []service.ScansOption{
			service.WithDeadline(cfg.Scan.Deadline),
			service.WithServiceLogger(logger),
		}

		if cfg.HistoryEnabled() {
			connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			pool, err := database.Connect(connectCtx, cfg.DatabaseURL)
			cancel()
			if err != nil {
				return err
			}
			defer pool.Close()
			opts = append(opts, service.WithRepository(repository.NewPGXScansRepository(pool)))
		} else {
			logger.Warn("DATABASE_URL not set, scan history disabled")
		}

		if cfg.WebhookURL != "" {
			hook, err := webhook.NewClient(nil, cfg.WebhookURL)
			if err != nil {
				return err
			}
			opts = append(opts, service.WithWebhook(hook))
		}

		scans := service.NewScansService(newScanner(cfg, logger), opts...)

		e := echo.New()
		e.HideBanner = true
		e.HidePort = true
		e.Use(middlewarepkg.RequestID())
		e.Use(middlewarepkg.Logging(logger))
		e.Use(echoMiddleware.Recover())

		router.Register(e, cfg, auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL), router.Handlers{
			Scans: handler.NewScanHandler(scans, logger),
		})

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			logger.Info("http server listening", zap.String("port", port), zap.Bool("history", scans.HistoryEnabled()))
			if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return eris.Wrap(err, "http server")
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := e.Shutdown(shutdownCtx); err != nil {
				return eris.Wrap(err, "graceful shutdown")
			}
			return nil
		})
		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port (default from PORT)")
	rootCmd.AddCommand(serveCmd)
}
