package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hako/durafmt"
	"github.com/joho/godotenv"

	"github.com/galzzz/drops-exporter/internal/api"
	"github.com/galzzz/drops-exporter/internal/biz"
	"github.com/galzzz/drops-exporter/internal/biz/repo"
	"github.com/galzzz/drops-exporter/internal/conf"
	"github.com/galzzz/drops-exporter/internal/data"
	"github.com/galzzz/drops-exporter/internal/obs"
	"github.com/galzzz/drops-exporter/internal/service"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := conf.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger := obs.NewLogger(cfg.Debug, os.Stderr)

	// Initialize repository layer
	repos, err := data.NewRepositories(cfg.Storage.DBPath, cfg.Timeout(), cfg.Endpoint.SigningSecret)
	if err != nil {
		log.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()

	fmt.Printf("[Exporter] Drop DB: %s\n", cfg.Storage.DBPath)

	// Notification sinks
	sinks := []repo.NotificationSink{data.NewLogSink(logger)}
	if cfg.Notify.Feishu.Enabled() {
		f := cfg.Notify.Feishu
		sinks = append(sinks, data.NewFeishuSink(f.AppID, f.AppSecret, f.ChatID, logger))
		fmt.Printf("[Exporter] Mirroring status to Feishu chat %s\n", f.ChatID)
	}
	if cfg.Notify.Desktop {
		if desktop := data.NewDesktopSink(logger); desktop != nil {
			sinks = append(sinks, desktop)
			fmt.Println("[Exporter] Desktop notifications enabled")
		}
	}
	sink := data.NewMultiSink(sinks...)

	// Item catalog
	var items repo.ItemResolver
	if cfg.ItemCatalogPath != "" {
		items, err = data.LoadItemCatalog(cfg.ItemCatalogPath)
		if err != nil {
			log.Fatalf("Failed to load item catalog: %v", err)
		}
		fmt.Printf("[Exporter] Item catalog: %s\n", cfg.ItemCatalogPath)
	}

	// Initialize usecase layer
	ucs := biz.NewUsecases(biz.Repos{
		Source:  repos.Whitelist,
		Store:   repos.Snapshots,
		Webhook: repos.Webhook,
		Drops:   repos.Drops,
		Items:   items,
		Sink:    sink,
	}, biz.Config{
		Cache:    cfg.ToCacheConfig(),
		Notifier: cfg.ToNotifierConfig(),
		Plugin:   cfg.ToPluginConfig(),
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := ucs.Cache.Seed(ctx); err != nil {
		logger.Warn("failed to seed whitelist", "error", err)
	}

	// Initialize service layer
	scheduler := service.NewRefreshScheduler(ucs.Plugin, ucs.History, cfg.RefreshInterval(), logger)
	scheduler.Start(ctx)

	// Initialize HTTP API server for the host and drops-mcp
	apiServer := api.NewServer(ucs.Plugin, ucs.History, cfg.API.Port, logger)
	go func() {
		if err := apiServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("API server error: %v", err)
		}
	}()

	printBanner(cfg)
	ucs.Plugin.OnStartUp()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	fmt.Println("\nShutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := apiServer.Stop(shutdownCtx); err != nil {
		logger.Warn("API server shutdown failed", "error", err)
	}
	scheduler.Stop()
	if err := ucs.Plugin.OnShutDown(shutdownCtx); err != nil {
		logger.Warn("shutdown incomplete", "error", err)
	}
}

func printBanner(cfg *conf.Config) {
	endpoint := cfg.Endpoint.URL
	if endpoint == "" {
		endpoint = "(not configured)"
	}
	fmt.Println("Starting Drops Exporter...")
	fmt.Printf("[Exporter] Whitelist endpoint: %s\n", endpoint)
	if hook := cfg.ToPluginConfig().WebhookEndpoint(); hook != "" && hook != cfg.Endpoint.URL {
		fmt.Printf("[Exporter] Webhook endpoint: %s\n", hook)
	}
	fmt.Printf("[Exporter] Request timeout: %s\n", durafmt.Parse(cfg.Timeout()).String())
	if interval := cfg.RefreshInterval(); interval > 0 {
		fmt.Printf("[Exporter] Refreshing every %s\n", durafmt.Parse(interval).String())
	} else {
		fmt.Println("[Exporter] Refreshing on startup and login only")
	}
	fmt.Printf("[Exporter] HTTP API on 127.0.0.1:%d\n", cfg.API.Port)
}
