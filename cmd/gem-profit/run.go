package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"gem-profit/internal/bazaar"
	"gem-profit/internal/chatfeed"
	"gem-profit/internal/config"
	"gem-profit/internal/engine"
	"gem-profit/internal/server"
	"gem-profit/internal/tracker"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Track drops and serve the overlay (default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func runServe(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := config.NewLogger(cfg.LogLevel)

	logger.Info("gem-profit starting",
		slog.String("version", version),
		slog.Int("port", cfg.Port),
		slog.String("bazaar_url", cfg.BazaarURL),
		slog.String("chat_feed_url", cfg.ChatFeedURL),
		slog.Duration("idle_timeout", cfg.IdleTimeout()),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.CheckUpdates {
		go checkForUpdate(ctx, cfg.UpdateRepo, logger)
	}

	tr := tracker.New(cfg.Fee(), cfg.IdleTimeout(), nil)
	market := bazaar.NewClient(cfg.BazaarURL, cfg.HTTPTimeout(), logger)

	var feed chatfeed.Feed
	if cfg.ChatFeedURL != "" {
		feed = chatfeed.NewWSFeed(cfg.ChatFeedURL, logger)
	} else {
		logger.Warn("no chat_feed_url configured; only POST /api/notifications will record drops")
	}

	eng := engine.New(tr, market, feed, nil, engine.Options{
		TickInterval:    cfg.TickInterval(),
		RefreshInterval: cfg.RefreshInterval(),
	}, logger)
	srv := server.NewHTTPServer(eng, logger)
	eng.SetSink(srv)

	if feed != nil {
		go feed.Run(ctx, func(connected bool) {
			eng.SetFeedConnected(connected)
			logger.Debug("chat feed status", slog.Bool("connected", connected))
		})
	}

	engineDone := make(chan struct{})
	go func() {
		defer close(engineDone)
		_ = eng.Run(ctx)
	}()

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", slog.Int("port", cfg.Port))
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			logger.Error("http server failed", slog.String("err", err.Error()))
			runErr = err
		}
	}
	stop()

	logger.Info("shutting down...")
	shCtx, shCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shCancel()

	_ = httpSrv.Shutdown(shCtx)
	srv.Close()
	<-engineDone
	if feed != nil {
		feed.Close()
	}
	logger.Info("bye")
	return runErr
}
