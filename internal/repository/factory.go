package repository

import (
	"github.com/printprice/printprice/internal/cache"
	"github.com/printprice/printprice/internal/domain/attribute"
	"github.com/printprice/printprice/internal/domain/geozone"
	"github.com/printprice/printprice/internal/domain/modifier"
	"github.com/printprice/printprice/internal/domain/pricebook"
	"github.com/printprice/printprice/internal/domain/pricing"
	"github.com/printprice/printprice/internal/domain/product"
	"github.com/printprice/printprice/internal/domain/segment"
	"github.com/printprice/printprice/internal/logger"
	"github.com/printprice/printprice/internal/postgres"
	postgresRepo "github.com/printprice/printprice/internal/repository/postgres"
)

func NewProductRepository(db *postgres.DB, logger *logger.Logger, cache cache.Cache) product.Repository {
	return postgresRepo.NewProductRepository(db, logger, cache)
}

func NewGeoZoneRepository(db *postgres.DB, logger *logger.Logger, cache cache.Cache) geozone.Repository {
	return postgresRepo.NewGeoZoneRepository(db, logger, cache)
}

func NewUserSegmentRepository(db *postgres.DB, logger *logger.Logger, cache cache.Cache) segment.Repository {
	return postgresRepo.NewUserSegmentRepository(db, logger, cache)
}

func NewPriceBookRepository(db *postgres.DB, logger *logger.Logger, cache cache.Cache) pricebook.Repository {
	return postgresRepo.NewPriceBookRepository(db, logger, cache)
}

func NewAttributeRepository(db *postgres.DB, logger *logger.Logger, cache cache.Cache) attribute.Repository {
	return postgresRepo.NewAttributeRepository(db, logger, cache)
}

func NewPriceModifierRepository(db *postgres.DB, logger *logger.Logger) modifier.Repository {
	return postgresRepo.NewPriceModifierRepository(db, logger)
}

func NewPricingRepository(db *postgres.DB, logger *logger.Logger) pricing.Repository {
	return postgresRepo.NewPricingRepository(db, logger)
}
