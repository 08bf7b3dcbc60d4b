package main

import (
	"context"
	"net/http"
	"time"

	"github.com/printprice/printprice/internal/api"
	v1 "github.com/printprice/printprice/internal/api/v1"
	"github.com/printprice/printprice/internal/cache"
	"github.com/printprice/printprice/internal/config"
	"github.com/printprice/printprice/internal/httpclient"
	"github.com/printprice/printprice/internal/logger"
	"github.com/printprice/printprice/internal/postgres"
	pubsubRouter "github.com/printprice/printprice/internal/pubsub/router"
	"github.com/printprice/printprice/internal/repository"
	"github.com/printprice/printprice/internal/sentry"
	"github.com/printprice/printprice/internal/service"
	"github.com/printprice/printprice/internal/types"
	"github.com/printprice/printprice/internal/webhook"
	"go.uber.org/fx"

	_ "github.com/printprice/printprice/docs/swagger"
	"github.com/gin-gonic/gin"
)

// @title PrintPrice API
// @version 1.0
// @description Price resolution service for print on demand commerce
// @BasePath /v1
// @schemes http https
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Monitoring
			sentry.NewSentryService,

			// Cache
			cache.New,

			// Postgres
			postgres.NewDB,
			postgres.NewClient,

			// HTTP Client
			httpclient.NewDefaultClient,

			// Repositories
			repository.NewProductRepository,
			repository.NewGeoZoneRepository,
			repository.NewUserSegmentRepository,
			repository.NewPriceBookRepository,
			repository.NewAttributeRepository,
			repository.NewPriceModifierRepository,
			repository.NewPricingRepository,

			// PubSub
			pubsubRouter.NewRouter,
		),
	)

	// Webhook module (must be initialised before services)
	opts = append(opts, webhook.Module)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,

			// Catalog services
			service.NewProductService,
			service.NewGeoZoneService,
			service.NewUserSegmentService,
			service.NewPriceBookService,
			service.NewAttributeService,
			service.NewPriceModifierService,

			// Resolution engine
			service.NewPricingService,
		),
	)

	// API
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(
			sentry.RegisterHooks,
			startServer,
		),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideHandlers(
	logger *logger.Logger,
	db *postgres.DB,
	pricingService service.PricingService,
	productService service.ProductService,
	geoZoneService service.GeoZoneService,
	userSegmentService service.UserSegmentService,
	priceBookService service.PriceBookService,
	attributeService service.AttributeService,
	priceModifierService service.PriceModifierService,
) api.Handlers {
	return api.Handlers{
		Health:    v1.NewHealthHandler(db, logger),
		Pricing:   v1.NewPricingHandler(pricingService, logger),
		Product:   v1.NewProductHandler(productService, logger),
		GeoZone:   v1.NewGeoZoneHandler(geoZoneService, logger),
		Segment:   v1.NewUserSegmentHandler(userSegmentService, logger),
		PriceBook: v1.NewPriceBookHandler(priceBookService, logger),
		Attribute: v1.NewAttributeHandler(attributeService, logger),
		Modifier:  v1.NewPriceModifierHandler(priceModifierService, logger),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration, log *logger.Logger) *gin.Engine {
	return api.NewRouter(handlers, cfg, log)
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	webhookService *webhook.WebhookService,
	router *pubsubRouter.Router,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}
	switch mode {
	case types.ModeLocal:
		startAPIServer(lc, r, cfg, log)
		startMessageRouter(lc, router, webhookService, log)
	case types.ModeAPI:
		startAPIServer(lc, r, cfg, log)
	case types.ModeConsumer:
		startMessageRouter(lc, router, webhookService, log)
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting API server", "address", cfg.Server.Address)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatalf("API server failed: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down API server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

func startMessageRouter(
	lc fx.Lifecycle,
	router *pubsubRouter.Router,
	webhookService *webhook.WebhookService,
	log *logger.Logger,
) {
	// Handlers must be registered before the router starts.
	webhookService.RegisterHandler(router)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("starting message router")
			go func() {
				if err := router.Run(); err != nil {
					log.Errorw("message router failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("stopping message router")
			if err := webhookService.Close(); err != nil {
				log.Errorw("failed to close webhook service", "error", err)
			}
			return router.Close()
		},
	})
}
