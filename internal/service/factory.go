package service

import (
	"github.com/printprice/printprice/internal/config"
	"github.com/printprice/printprice/internal/domain/attribute"
	"github.com/printprice/printprice/internal/domain/geozone"
	"github.com/printprice/printprice/internal/domain/modifier"
	"github.com/printprice/printprice/internal/domain/pricebook"
	"github.com/printprice/printprice/internal/domain/pricing"
	"github.com/printprice/printprice/internal/domain/product"
	"github.com/printprice/printprice/internal/domain/segment"
	"github.com/printprice/printprice/internal/logger"
	"github.com/printprice/printprice/internal/postgres"
	webhookPublisher "github.com/printprice/printprice/internal/webhook/publisher"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient

	// Repositories
	ProductRepo       product.Repository
	GeoZoneRepo       geozone.Repository
	UserSegmentRepo   segment.Repository
	PriceBookRepo     pricebook.Repository
	AttributeRepo     attribute.Repository
	PriceModifierRepo modifier.Repository
	PricingRepo       pricing.Repository

	// Producers
	WebhookPublisher webhookPublisher.WebhookPublisher
}

// Common service params
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	productRepo product.Repository,
	geoZoneRepo geozone.Repository,
	userSegmentRepo segment.Repository,
	priceBookRepo pricebook.Repository,
	attributeRepo attribute.Repository,
	priceModifierRepo modifier.Repository,
	pricingRepo pricing.Repository,
	webhookPublisher webhookPublisher.WebhookPublisher,
) ServiceParams {
	return ServiceParams{
		Logger:            logger,
		Config:            config,
		DB:                db,
		ProductRepo:       productRepo,
		GeoZoneRepo:       geoZoneRepo,
		UserSegmentRepo:   userSegmentRepo,
		PriceBookRepo:     priceBookRepo,
		AttributeRepo:     attributeRepo,
		PriceModifierRepo: priceModifierRepo,
		PricingRepo:       pricingRepo,
		WebhookPublisher:  webhookPublisher,
	}
}
