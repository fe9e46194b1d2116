package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fical/fical/app/api"
	"github.com/fical/fical/app/calendar"
	"github.com/fical/fical/app/cfg"
	"github.com/fical/fical/app/database"
	"github.com/fical/fical/app/shortlink"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting fical server...", "version", appCfg.Version)

	// Short link storage, owned here for the process lifetime
	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "migration_version", version, "dirty", dirty)

	shortLinkRepo := database.NewShortLinkRepository(db)
	shortLinks := shortlink.NewService(shortLinkRepo)

	// Preset calendar configurations
	presets := calendar.NewPresetCache(appCfg.FeedsDir)
	if err := presets.Run(); err != nil {
		slog.Error("Failed to load presets", "dir", appCfg.FeedsDir, "error", err)
		os.Exit(1)
	}
	slog.Info("Presets loaded", "dir", appCfg.FeedsDir, "count", presets.GetPresetCount())

	// Core components
	httpClient := &http.Client{}
	fetcher := calendar.NewFetcher(httpClient, time.Duration(appCfg.FetchTimeout)*time.Second,
		appCfg.MaxBodySize, appCfg.UserAgent, appCfg.AllowPrivateHosts)
	processor := calendar.NewProcessor(fetcher)

	// HTTP server
	handler := api.NewHandler(processor, shortLinks, presets)
	server := api.NewServer(handler)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	slog.Info("fical server shutdown complete")
}
