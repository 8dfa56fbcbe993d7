package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/georgeGeorgakakos/optimusddc/pkg/config"
	"github.com/georgeGeorgakakos/optimusddc/pkg/handlers"
	"github.com/georgeGeorgakakos/optimusddc/pkg/indexer"
	"github.com/georgeGeorgakakos/optimusddc/pkg/mapper"
	"github.com/georgeGeorgakakos/optimusddc/pkg/metrics"
	"github.com/georgeGeorgakakos/optimusddc/pkg/middleware"
	"github.com/georgeGeorgakakos/optimusddc/pkg/optimusdb"
	"github.com/georgeGeorgakakos/optimusddc/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := buildLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("backend", cfg.Backend.BaseURL),
		zap.Strings("nodes", cfg.Backend.Nodes),
		zap.Bool("indexer_enabled", cfg.Indexer.Enabled),
	)

	client := optimusdb.NewClient(cfg.Backend, logger)
	entityMapper := mapper.New(logger)

	discovery := services.NewDiscoveryService(client, cfg.Backend, logger)
	schemas := services.NewSchemaDiscovery(client, logger)
	catalog := services.NewCatalogService(client, schemas, discovery, entityMapper, logger)
	users := services.NewUserService(client, logger)
	dashboards := services.NewDashboardService(client, logger)
	search := services.NewSearchService(client, discovery, cfg.Search, logger)

	var statsSource handlers.StatsSource
	if cfg.Indexer.Enabled {
		ix := indexer.New(discovery, entityMapper, cfg.Indexer, logger)
		ix.Start()
		defer ix.Stop()
		statsSource = ix
	}

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewTablesHandler(catalog, logger).RegisterRoutes(mux)
	handlers.NewSearchHandler(search, logger).RegisterRoutes(mux)
	handlers.NewUsersHandler(users, logger).RegisterRoutes(mux)
	handlers.NewDashboardsHandler(dashboards, logger).RegisterRoutes(mux)
	handlers.NewIndexerHandler(statsSource, cfg.Indexer.Enabled, logger).RegisterRoutes(mux)
	mux.Handle("GET /metrics", metrics.Handler())

	server := &http.Server{
		Addr:    cfg.BindAddr + ":" + cfg.Port,
		Handler: middleware.RequestLogger(logger)(mux),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Starting optimusddc",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown did not complete cleanly", zap.Error(err))
	}
}

func buildLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
