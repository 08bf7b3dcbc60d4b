package testutil

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
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
	"github.com/printprice/printprice/internal/types"
	webhookPublisher "github.com/printprice/printprice/internal/webhook/publisher"
	"github.com/stretchr/testify/suite"
)

// Stores bundles the in-memory repositories handed to services under test.
type Stores struct {
	ProductRepo       product.Repository
	GeoZoneRepo       geozone.Repository
	UserSegmentRepo   segment.Repository
	PriceBookRepo     pricebook.Repository
	AttributeRepo     attribute.Repository
	PriceModifierRepo modifier.Repository
	PricingRepo       pricing.Repository
}

// BaseServiceTestSuite wires fresh stores, a webhook transport, and a
// transaction-counting DB client before every test. Service suites embed it
// and build their service from the accessors.
type BaseServiceTestSuite struct {
	suite.Suite
	ctx              context.Context
	stores           Stores
	pubsub           *InMemoryPubSub
	webhookPublisher webhookPublisher.WebhookPublisher
	db               *MockPostgresClient
	logger           *logger.Logger
	config           *config.Configuration
}

func (s *BaseServiceTestSuite) SetupSuite() {
	cfg := &config.Configuration{
		Logging: config.LoggingConfig{
			Level: types.LogLevelInfo,
		},
		Cache: config.CacheConfig{
			Enabled: true,
		},
		Webhook: config.Webhook{
			Enabled: true,
			Topic:   "webhooks",
			PubSub:  types.MemoryPubSub,
		},
	}
	s.config = cfg

	log, err := logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
	s.logger = log
}

func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = SetupContext()

	s.stores = Stores{
		ProductRepo:       NewInMemoryProductStore(),
		GeoZoneRepo:       NewInMemoryGeoZoneStore(),
		UserSegmentRepo:   NewInMemoryUserSegmentStore(),
		PriceBookRepo:     NewInMemoryPriceBookStore(),
		AttributeRepo:     NewInMemoryAttributeStore(),
		PriceModifierRepo: NewInMemoryPriceModifierStore(),
		PricingRepo:       NewInMemoryPricingStore(),
	}

	s.db = NewMockPostgresClient()
	s.pubsub = NewInMemoryPubSub()

	pub, err := webhookPublisher.NewPublisher(s.pubsub, s.config, s.logger)
	if err != nil {
		s.T().Fatalf("failed to create webhook publisher: %v", err)
	}
	s.webhookPublisher = pub
}

func (s *BaseServiceTestSuite) TearDownTest() {
	s.stores.ProductRepo.(*InMemoryProductStore).Clear()
	s.stores.GeoZoneRepo.(*InMemoryGeoZoneStore).Clear()
	s.stores.UserSegmentRepo.(*InMemoryUserSegmentStore).Clear()
	s.stores.PriceBookRepo.(*InMemoryPriceBookStore).Clear()
	s.stores.AttributeRepo.(*InMemoryAttributeStore).Clear()
	s.stores.PriceModifierRepo.(*InMemoryPriceModifierStore).Clear()
	s.stores.PricingRepo.(*InMemoryPricingStore).Clear()
	s.pubsub.ClearMessages()
}

// WebhookMessages returns the raw messages published to the webhook topic so
// far in the current test.
func (s *BaseServiceTestSuite) WebhookMessages() []*message.Message {
	return s.pubsub.GetMessages(s.config.Webhook.Topic)
}

// TxCalls reports how many DB transactions the current test opened.
func (s *BaseServiceTestSuite) TxCalls() int {
	return s.db.TxCalls()
}

func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

func (s *BaseServiceTestSuite) GetWebhookPublisher() webhookPublisher.WebhookPublisher {
	return s.webhookPublisher
}

func (s *BaseServiceTestSuite) GetDB() postgres.IClient {
	return s.db
}

func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}
