package pricebook

import (
	"context"

	"github.com/printprice/printprice/internal/types"
)

// Repository defines the interface for price book data access
type Repository interface {
	Create(ctx context.Context, book *PriceBook) error
	Get(ctx context.Context, id string) (*PriceBook, error)
	List(ctx context.Context, filter *types.PriceBookFilter) ([]*PriceBook, error)
	Count(ctx context.Context, filter *types.PriceBookFilter) (int, error)
	Update(ctx context.Context, book *PriceBook) error
	Delete(ctx context.Context, id string) error

	// GetDefault returns the default book for the currency
	GetDefault(ctx context.Context, currency string) (*PriceBook, error)

	// SetDefault flags the book as the currency default, unsetting any other
	// default for the same currency in one transaction
	SetDefault(ctx context.Context, id string) error

	// GetByZone returns books bound to any of the given zones, most recently
	// created first
	GetByZone(ctx context.Context, geoZoneIDs []string) ([]*PriceBook, error)

	// Entry operations

	CreateEntry(ctx context.Context, entry *PriceBookEntry) error
	GetEntry(ctx context.Context, id string) (*PriceBookEntry, error)
	ListEntries(ctx context.Context, filter *types.PriceBookEntryFilter) ([]*PriceBookEntry, error)
	CountEntries(ctx context.Context, filter *types.PriceBookEntryFilter) (int, error)
	UpdateEntry(ctx context.Context, entry *PriceBookEntry) error
	DeleteEntry(ctx context.Context, id string) error

	// FindEntry returns the entry for (book, product) whose quantity tier
	// covers the given quantity, or a not found error
	FindEntry(ctx context.Context, priceBookID string, productID string, quantity int) (*PriceBookEntry, error)
}
