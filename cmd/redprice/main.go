package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redprice-lab/redprice-analytics/internal/cache"
	corecfg "github.com/redprice-lab/redprice-analytics/internal/core/config"
	"github.com/redprice-lab/redprice-analytics/internal/core/storage"
	"github.com/redprice-lab/redprice-analytics/internal/core/storage/memory"
	"github.com/redprice-lab/redprice-analytics/internal/core/storage/postgres"
	"github.com/redprice-lab/redprice-analytics/internal/ingestion"
	"github.com/redprice-lab/redprice-analytics/internal/migrations"
	"github.com/redprice-lab/redprice-analytics/internal/reporting"
	"github.com/redprice-lab/redprice-analytics/internal/server"
)

func main() {
	configPath := flag.String("config", "redprice.yaml", "Path to configuration file")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config", "config", cfg)
	slog.Info("Classification profiles loaded",
		"count", len(cfg.ProfileLoading.Profiles),
		"config_dir", cfg.ProfileLoading.ConfigDir,
	)

	// 2. Initialize Storage
	var store storage.OrderStore
	if cfg.Database.Type == "memory" {
		slog.Warn("Using in-memory order store, data will not survive restarts")
		store = memory.New()
	} else {
		dbAdapter, err := postgres.NewAdapter(
			cfg.Database.DSN,
			cfg.Database.MaxOpenConns,
			cfg.Database.MaxIdleConns,
		)
		if err != nil {
			slog.Error("Failed to initialize database", "error", err)
			os.Exit(1)
		}
		defer dbAdapter.Close()

		// 2.1. Run Database Migrations
		if err := migrations.RunMigrations(dbAdapter.DB(), cfg.Database.AutoMigrate); err != nil {
			slog.Error("Failed to run database migrations", "error", err)
			os.Exit(1)
		}

		store = dbAdapter
	}

	// 3. Initialize Report Cache
	var reportCache cache.ReportCache = cache.NoopReportCache{}
	if cfg.Cache.Enabled {
		redisCache := cache.NewRedisReportCache(cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB)
		pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisCache.Ping(pingCtx)
		cancelPing()
		if err != nil {
			slog.Warn("Redis unreachable, report caching disabled", "addr", cfg.Cache.Addr, "error", err)
			_ = redisCache.Close()
		} else {
			slog.Info("Report cache enabled", "addr", cfg.Cache.Addr, "ttl", cfg.Cache.EffectiveTTL())
			defer redisCache.Close()
			reportCache = redisCache
		}
	}

	// 4. Initialize Ingestion (write path)
	ingestionSvc := ingestion.NewService(store, cfg.Server.MaxBodySizeMB)

	// 5. Initialize Reporting (query API)
	reportingSvc := reporting.NewService(store, reportCache, cfg.ProfileLoading.Profiles, reporting.Options{
		CacheTTL:  cfg.Cache.EffectiveTTL(),
		BatchSize: cfg.Reports.BatchSize,
		TopN:      cfg.Reports.TopN,
		CostRatio: cfg.Reports.EffectiveCostRatio(),
	})

	// 6. Initialize Server
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), store, cfg.Server.Mode)
	ingestionSvc.RegisterRoutes(srv.Engine)
	reportingSvc.RegisterRoutes(srv.Engine)

	// 7. Start Services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Signal handler triggers the shutdown sequence below.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
