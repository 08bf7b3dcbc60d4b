package config

import (
	"time"

	"github.com/printprice/printprice/internal/types"
)

// Webhook represents the configuration for the webhook system. Defaults for
// the topic, transport and retry policy are registered in setDefaults.
type Webhook struct {
	Enabled bool                           `mapstructure:"enabled"`
	Topic   string                         `mapstructure:"topic"`
	PubSub  types.PubSubType               `mapstructure:"pubsub"`
	Tenants map[string]TenantWebhookConfig `mapstructure:"tenants"`

	// Delivery retry policy
	MaxRetries      int           `mapstructure:"max_retries"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	Multiplier      float64       `mapstructure:"multiplier"`
	MaxElapsedTime  time.Duration `mapstructure:"max_elapsed_time"`
}

// TenantWebhookConfig represents webhook configuration for a specific tenant
type TenantWebhookConfig struct {
	Endpoint       string            `mapstructure:"endpoint"`
	Headers        map[string]string `mapstructure:"headers"`
	Enabled        bool              `mapstructure:"enabled"`
	ExcludedEvents []string          `mapstructure:"excluded_events"`
}
