package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/birdwatcher/app/api"
	"github.com/lysyi3m/birdwatcher/app/cfg"
	"github.com/lysyi3m/birdwatcher/app/database"
	"github.com/lysyi3m/birdwatcher/app/feed"
	"github.com/lysyi3m/birdwatcher/app/media"
	"github.com/lysyi3m/birdwatcher/app/metrics"
	"github.com/lysyi3m/birdwatcher/app/notify"
	"github.com/lysyi3m/birdwatcher/app/tasks"
)

func main() {
	appCfg, err := cfg.Load(os.Args[1:])
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		return
	}

	setupLogger(appCfg.Debug)

	slog.Info("Starting birdwatcher", "version", appCfg.Version, "bird", appCfg.BirdTag(), "feed", appCfg.RSSURL())

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to connect to database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	postRepo := database.NewPostRepository(db)
	if err := postRepo.EnsureSchema(); err != nil {
		slog.Error("Failed to create posts table", "error", err)
		os.Exit(1)
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}

	fetcher := feed.NewFetcher(httpClient, appCfg.UserAgent, appCfg.FetchTimeout)
	parser := feed.NewParser(appCfg.NitterInstance)
	normalizer := feed.NewNormalizer(appCfg.BirdUser, appCfg.NitterInstance, appCfg.PublicDomain)

	resolver := media.NewResolver(
		media.NewLookup(appCfg.LookupURL, httpClient, appCfg.LookupRate),
		media.NewScraper(appCfg.NitterInstance, appCfg.MediaHost),
	)
	resolver.OnFallback = metrics.IncLookupFallback

	webhook := notify.NewWebhook(appCfg.WebhookURL, httpClient,
		notify.NewRenderer(appCfg.BirdUser, appCfg.PublicDomain, appCfg.Colour))

	newTask := func(setState func(tasks.State)) tasks.TaskInterface {
		return tasks.NewPollFeedTask(appCfg.BirdUser, appCfg.RSSURL(), fetcher, parser, normalizer,
			resolver, webhook, postRepo, setState)
	}

	scheduler := tasks.NewScheduler(newTask, appCfg.Interval, appCfg.Backoff, nil)
	scheduler.Start()

	var httpServer *http.Server
	serverErrChan := make(chan error, 1)

	if appCfg.HTTPAddr != "" {
		handler := api.NewHandler(postRepo, scheduler, appCfg.BirdUser, appCfg.Version)
		httpServer = &http.Server{
			Addr:         appCfg.HTTPAddr,
			Handler:      api.NewServer(handler),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		}

		go func() {
			slog.Info("Starting ops listener", "addr", appCfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErrChan <- err
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Ops listener error", "error", err)
	}

	slog.Info("Shutting down")

	if httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("Ops listener shutdown failed", "error", err)
		}
		cancel()
	}

	scheduler.Stop()

	slog.Info("Shutdown complete")
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
}
