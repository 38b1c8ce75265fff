package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/agrimandi/agrimandi-backend/api/controllers"
	"github.com/agrimandi/agrimandi-backend/api/routes"
	auction "github.com/agrimandi/agrimandi-backend/internal/auctions"
	marketprice "github.com/agrimandi/agrimandi-backend/internal/marketprices"
	notification "github.com/agrimandi/agrimandi-backend/internal/notifications"
	product "github.com/agrimandi/agrimandi-backend/internal/products"
	"github.com/agrimandi/agrimandi-backend/pkg/config"
	"github.com/agrimandi/agrimandi-backend/pkg/db"
	"github.com/agrimandi/agrimandi-backend/pkg/fixtures"
	"github.com/agrimandi/agrimandi-backend/pkg/logger"
	"github.com/agrimandi/agrimandi-backend/pkg/metrics"
	"github.com/agrimandi/agrimandi-backend/pkg/migrate"
	"github.com/agrimandi/agrimandi-backend/pkg/outbox"
	pkgredis "github.com/agrimandi/agrimandi-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := buildDBClient(context.Background(), cfg, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	if cfg.App.IsDev() && cfg.FeatureFlags.DevFixtures {
		if err := fixtures.Seed(context.Background(), dbClient, logg); err != nil {
			logg.Error(context.Background(), "failed to seed dev fixtures", err)
			os.Exit(1)
		}
	}

	redisClient, err := pkgredis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	biddingMetrics := metrics.NewBiddingMetrics(registry)

	productRepo := product.NewRepository(dbClient.DB())
	auctionRepo := auction.NewRepository(dbClient.DB())
	notificationRepo := notification.NewRepository(dbClient.DB())
	outboxSvc := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	productSvc, err := product.NewService(productRepo, dbClient, auctionRepo, outboxSvc, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	auctionSvc, err := auction.NewService(auctionRepo, dbClient, productRepo, outboxSvc, notificationRepo, redisClient, biddingMetrics, logg, auction.ServiceOptions{
		MaxSubmitRetries: cfg.Bidding.MaxSubmitRetries,
		CurrentBidTTL:    cfg.Bidding.CurrentBidTTL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auction service", err)
		os.Exit(1)
	}

	marketPriceSvc, err := marketprice.NewService(marketprice.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create market price service", err)
		os.Exit(1)
	}

	notificationSvc, err := notification.NewService(notificationRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create notification service", err)
		os.Exit(1)
	}

	router := routes.NewRouter(routes.Dependencies{
		Config:   cfg,
		Logger:   logg,
		Redis:    redisClient,
		Registry: registry,
		HealthChecks: map[string]controllers.Pinger{
			"db":    dbClient,
			"redis": redisClient,
		},
		Products:     productSvc,
		Auctions:     auctionSvc,
		MarketPrices: marketPriceSvc,
		Notify:       notificationSvc,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

// buildDBClient opens Postgres in normal operation and an embedded SQLite
// database when the dev flag asks for it.
func buildDBClient(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*db.Client, error) {
	if !cfg.FeatureFlags.UseSQLite {
		return db.New(ctx, cfg.DB, logg)
	}

	conn, err := gorm.Open(sqlite.Open(cfg.DB.DSN), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, err
	}
	logg.Info(ctx, "using embedded sqlite database")
	return db.NewFromConn(conn), nil
}
