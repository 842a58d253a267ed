package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/claude/ironpath/internal/catalog"
	"github.com/claude/ironpath/internal/config"
	"github.com/claude/ironpath/internal/server"
	"github.com/claude/ironpath/internal/storage"
	"github.com/claude/ironpath/internal/tracker"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// flushInterval is how often queued state writes are committed. Shutdown and
// export flush synchronously regardless.
const flushInterval = 5 * time.Second

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("IronPath starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Load exercise catalog
	var cat *catalog.Catalog
	if cfg.Catalog.Path != "" {
		cat, err = catalog.Load(cfg.Catalog.Path)
		if err != nil {
			log.Error("failed to load catalog", "error", err)
			os.Exit(1)
		}
		log.Info("catalog loaded", "path", cfg.Catalog.Path)
	} else {
		cat = catalog.Default()
		log.Info("using embedded catalog")
	}

	// Open state store (runs migrations, soft-resets on version mismatch)
	store, err := storage.Open(cfg.Storage.Path, log)
	if err != nil {
		log.Error("failed to open state store", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	log.Info("state store ready", "path", cfg.Storage.Path)

	tr, err := tracker.New(cat, store, log)
	if err != nil {
		log.Error("failed to load tracker state", "error", err)
		os.Exit(1)
	}

	srv := server.New(tr, cat, cfg.Auth.APIKey, log)

	// Periodic flush of queued state writes. A failed flush is non-fatal:
	// memory stays authoritative and the write is retried.
	flushDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(flushInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := store.Flush(); err != nil {
					log.Warn("state flush failed", "error", err)
				}
			case <-flushDone:
				return
			}
		}
	}()

	// Start server — tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)
	close(flushDone)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}

	// Queued writes must reach disk before exit.
	if err := store.Flush(); err != nil {
		log.Error("final state flush failed", "error", err)
	}
	log.Info("server stopped")
}
