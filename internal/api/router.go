package api

import (
	v1 "github.com/printprice/printprice/internal/api/v1"
	"github.com/printprice/printprice/internal/config"
	"github.com/printprice/printprice/internal/logger"
	"github.com/printprice/printprice/internal/rest/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Handlers struct {
	Health    *v1.HealthHandler
	Pricing   *v1.PricingHandler
	Product   *v1.ProductHandler
	GeoZone   *v1.GeoZoneHandler
	Segment   *v1.UserSegmentHandler
	PriceBook *v1.PriceBookHandler
	Attribute *v1.AttributeHandler
	Modifier  *v1.PriceModifierHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, log *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.SentryMiddleware(cfg),
		middleware.CORSMiddleware,
		middleware.RequestIDMiddleware,
		middleware.TenantContextMiddleware,
		middleware.SentryTagsMiddleware,
		middleware.ErrorHandler(log),
	)

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", handlers.Health.Health)

	// v1 routes
	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	// Pricing routes
	pricing := router.Group("/pricing")
	{
		pricing.POST("/resolve", handlers.Pricing.ResolvePrice)
		pricing.POST("/snapshots", handlers.Pricing.CreatePriceSnapshot)
		pricing.GET("/snapshots", handlers.Pricing.ListPriceSnapshots)
		pricing.GET("/snapshots/:id", handlers.Pricing.GetPriceSnapshot)
		pricing.GET("/snapshots/:id/logs", handlers.Pricing.ListCalculationLogs)
		pricing.GET("/orders/:order_id/snapshot", handlers.Pricing.GetSnapshotByOrder)
	}

	// Product routes
	products := router.Group("/products")
	{
		products.POST("", handlers.Product.CreateProduct)
		products.GET("", handlers.Product.ListProducts)
		products.GET("/:id", handlers.Product.GetProduct)
		products.PUT("/:id", handlers.Product.UpdateProduct)
		products.DELETE("/:id", handlers.Product.DeleteProduct)
	}

	// Geo zone routes
	geozones := router.Group("/geozones")
	{
		geozones.POST("", handlers.GeoZone.CreateGeoZone)
		geozones.GET("", handlers.GeoZone.ListGeoZones)
		geozones.GET("/resolve", handlers.GeoZone.ResolveChain)
		geozones.GET("/:id", handlers.GeoZone.GetGeoZone)
		geozones.PUT("/:id", handlers.GeoZone.UpdateGeoZone)
		geozones.DELETE("/:id", handlers.GeoZone.DeleteGeoZone)
	}

	// User segment routes
	segments := router.Group("/segments")
	{
		segments.POST("", handlers.Segment.CreateUserSegment)
		segments.GET("", handlers.Segment.ListUserSegments)
		segments.GET("/:id", handlers.Segment.GetUserSegment)
		segments.PUT("/:id", handlers.Segment.UpdateUserSegment)
		segments.DELETE("/:id", handlers.Segment.DeleteUserSegment)
		segments.POST("/:id/default", handlers.Segment.SetDefault)
		segments.POST("/:id/assignments", handlers.Segment.AssignUser)
	}

	// Price book routes; entry id routes hang off /entries so they never
	// collide with the book id wildcard
	pricebooks := router.Group("/pricebooks")
	{
		pricebooks.POST("", handlers.PriceBook.CreatePriceBook)
		pricebooks.GET("", handlers.PriceBook.ListPriceBooks)
		pricebooks.GET("/entries/:id", handlers.PriceBook.GetEntry)
		pricebooks.PUT("/entries/:id", handlers.PriceBook.UpdateEntry)
		pricebooks.DELETE("/entries/:id", handlers.PriceBook.DeleteEntry)
		pricebooks.GET("/:id", handlers.PriceBook.GetPriceBook)
		pricebooks.PUT("/:id", handlers.PriceBook.UpdatePriceBook)
		pricebooks.DELETE("/:id", handlers.PriceBook.DeletePriceBook)
		pricebooks.POST("/:id/default", handlers.PriceBook.SetDefault)
		pricebooks.POST("/:id/entries", handlers.PriceBook.CreateEntry)
		pricebooks.GET("/:id/entries", handlers.PriceBook.ListEntries)
	}

	// Attribute routes
	attributes := router.Group("/attributes")
	{
		attributes.POST("", handlers.Attribute.CreateAttributeType)
		attributes.GET("", handlers.Attribute.ListAttributeTypes)
		attributes.POST("/rules", handlers.Attribute.CreateRule)
		attributes.GET("/rules", handlers.Attribute.ListRules)
		attributes.GET("/rules/:id", handlers.Attribute.GetRule)
		attributes.PUT("/rules/:id", handlers.Attribute.UpdateRule)
		attributes.DELETE("/rules/:id", handlers.Attribute.DeleteRule)
		attributes.PUT("/values/:id", handlers.Attribute.UpdateValue)
		attributes.DELETE("/values/:id", handlers.Attribute.DeleteValue)
		attributes.GET("/:id", handlers.Attribute.GetAttributeType)
		attributes.PUT("/:id", handlers.Attribute.UpdateAttributeType)
		attributes.DELETE("/:id", handlers.Attribute.DeleteAttributeType)
		attributes.POST("/:id/values", handlers.Attribute.CreateValue)
		attributes.GET("/:id/values", handlers.Attribute.ListValues)
	}

	// Price modifier routes
	modifiers := router.Group("/modifiers")
	{
		modifiers.POST("", handlers.Modifier.CreatePriceModifier)
		modifiers.GET("", handlers.Modifier.ListPriceModifiers)
		modifiers.GET("/:id", handlers.Modifier.GetPriceModifier)
		modifiers.PUT("/:id", handlers.Modifier.UpdatePriceModifier)
		modifiers.DELETE("/:id", handlers.Modifier.DeletePriceModifier)
	}
}
