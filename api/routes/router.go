package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agrimandi/agrimandi-backend/api/controllers"
	"github.com/agrimandi/agrimandi-backend/api/middleware"
	auctionsvc "github.com/agrimandi/agrimandi-backend/internal/auctions"
	marketpricesvc "github.com/agrimandi/agrimandi-backend/internal/marketprices"
	notificationsvc "github.com/agrimandi/agrimandi-backend/internal/notifications"
	productsvc "github.com/agrimandi/agrimandi-backend/internal/products"
	"github.com/agrimandi/agrimandi-backend/pkg/config"
	"github.com/agrimandi/agrimandi-backend/pkg/logger"
	pkgredis "github.com/agrimandi/agrimandi-backend/pkg/redis"
)

// Dependencies carries everything the router needs to wire handlers.
type Dependencies struct {
	Config   *config.Config
	Logger   *logger.Logger
	Redis    *pkgredis.Client
	Registry prometheus.Gatherer

	HealthChecks map[string]controllers.Pinger

	Products     productsvc.Service
	Auctions     auctionsvc.Service
	MarketPrices marketpricesvc.Service
	Notify       notificationsvc.Service
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.HealthChecks))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	var idemStore pkgredis.IdempotencyStore
	if deps.Redis != nil {
		idemStore = deps.Redis
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.ActorContext(logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(deps.Products, logg))
			r.Post("/", controllers.CreateProduct(deps.Products, logg))
			r.Get("/{productId}", controllers.GetProduct(deps.Products, logg))
			r.Patch("/{productId}", controllers.UpdateProduct(deps.Products, logg))
			r.Delete("/{productId}", controllers.DeleteProduct(deps.Products, logg))
			r.Put("/{productId}/inventory", controllers.SetInventory(deps.Products, logg))
		})

		r.Get("/inventory", controllers.SellerInventory(deps.Products, logg))

		r.Route("/auctions", func(r chi.Router) {
			r.Get("/", controllers.ListAuctions(deps.Auctions, logg))
			r.Post("/", controllers.CreateAuction(deps.Auctions, logg))
			r.Get("/{auctionId}", controllers.GetAuction(deps.Auctions, logg))
			r.Patch("/{auctionId}", controllers.UpdateAuction(deps.Auctions, logg))
			r.Post("/{auctionId}/cancel", controllers.CancelAuction(deps.Auctions, logg))
			r.Post("/{auctionId}/close", controllers.CloseAuction(deps.Auctions, logg))
			r.Get("/{auctionId}/bids", controllers.ListBids(deps.Auctions, logg))
			r.With(middleware.BidRateLimit(deps.Redis, cfg.Bidding.RateLimit, cfg.Bidding.RateWindow, logg)).
				Post("/{auctionId}/bids", controllers.PlaceBid(deps.Auctions, logg))
		})

		r.Route("/market-prices", func(r chi.Router) {
			r.Get("/", controllers.ListMarketPrices(deps.MarketPrices, logg))
			r.Post("/", controllers.RecordMarketPrice(deps.MarketPrices, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(deps.Notify, logg))
			r.Post("/", controllers.CreateNotification(deps.Notify, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(deps.Notify, logg))
		})
	})

	return r
}
