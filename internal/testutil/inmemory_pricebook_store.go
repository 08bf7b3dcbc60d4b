package testutil

import (
	"context"
	"sort"

	"github.com/printprice/printprice/internal/domain/pricebook"
	ierr "github.com/printprice/printprice/internal/errors"
	"github.com/printprice/printprice/internal/types"
	"github.com/samber/lo"
)

// InMemoryPriceBookStore implements pricebook.Repository
type InMemoryPriceBookStore struct {
	books   *InMemoryStore[*pricebook.PriceBook]
	entries *InMemoryStore[*pricebook.PriceBookEntry]
}

func NewInMemoryPriceBookStore() *InMemoryPriceBookStore {
	return &InMemoryPriceBookStore{
		books:   NewInMemoryStore[*pricebook.PriceBook](),
		entries: NewInMemoryStore[*pricebook.PriceBookEntry](),
	}
}

func copyPriceBook(b *pricebook.PriceBook) *pricebook.PriceBook {
	if b == nil {
		return nil
	}
	copied := *b
	return &copied
}

func copyPriceBookEntry(e *pricebook.PriceBookEntry) *pricebook.PriceBookEntry {
	if e == nil {
		return nil
	}
	copied := *e
	return &copied
}

func (s *InMemoryPriceBookStore) Create(ctx context.Context, book *pricebook.PriceBook) error {
	if book == nil {
		return ierr.NewError("price book cannot be nil").
			WithHint("Price book cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.books.Create(ctx, book.ID, copyPriceBook(book))
}

func (s *InMemoryPriceBookStore) Get(ctx context.Context, id string) (*pricebook.PriceBook, error) {
	book, err := s.books.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("price book not found").
			WithHintf("Price book with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return copyPriceBook(book), nil
}

func (s *InMemoryPriceBookStore) List(ctx context.Context, filter *types.PriceBookFilter) ([]*pricebook.PriceBook, error) {
	items, err := s.books.List(ctx, filter, priceBookFilterFn, priceBookSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(b *pricebook.PriceBook, _ int) *pricebook.PriceBook {
		return copyPriceBook(b)
	}), nil
}

func (s *InMemoryPriceBookStore) Count(ctx context.Context, filter *types.PriceBookFilter) (int, error) {
	return s.books.Count(ctx, filter, priceBookFilterFn)
}

func (s *InMemoryPriceBookStore) Update(ctx context.Context, book *pricebook.PriceBook) error {
	if book == nil {
		return ierr.NewError("price book cannot be nil").
			WithHint("Price book cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.books.Update(ctx, book.ID, copyPriceBook(book))
}

func (s *InMemoryPriceBookStore) Delete(ctx context.Context, id string) error {
	return s.books.Delete(ctx, id)
}

func (s *InMemoryPriceBookStore) GetDefault(ctx context.Context, currency string) (*pricebook.PriceBook, error) {
	books, err := s.books.List(ctx, nil, func(ctx context.Context, b *pricebook.PriceBook, _ interface{}) bool {
		return b != nil &&
			b.TenantID == types.GetTenantID(ctx) &&
			b.Status == types.StatusPublished &&
			b.IsDefault &&
			b.Currency == currency
	}, nil)
	if err != nil {
		return nil, err
	}
	if len(books) == 0 {
		return nil, ierr.NewError("default price book not found").
			WithHintf("No default price book is configured for currency %s", currency).
			Mark(ierr.ErrNotFound)
	}
	return copyPriceBook(books[0]), nil
}

func (s *InMemoryPriceBookStore) SetDefault(ctx context.Context, id string) error {
	target, err := s.books.Get(ctx, id)
	if err != nil {
		return ierr.NewError("price book not found").
			WithHintf("Price book with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}

	others, err := s.books.List(ctx, nil, func(ctx context.Context, b *pricebook.PriceBook, _ interface{}) bool {
		return b != nil &&
			b.TenantID == types.GetTenantID(ctx) &&
			b.Currency == target.Currency &&
			b.IsDefault &&
			b.ID != id
	}, nil)
	if err != nil {
		return err
	}

	for _, other := range others {
		updated := copyPriceBook(other)
		updated.IsDefault = false
		if err := s.books.Update(ctx, updated.ID, updated); err != nil {
			return err
		}
	}

	updated := copyPriceBook(target)
	updated.IsDefault = true
	return s.books.Update(ctx, id, updated)
}

func (s *InMemoryPriceBookStore) GetByZone(ctx context.Context, geoZoneIDs []string) ([]*pricebook.PriceBook, error) {
	if len(geoZoneIDs) == 0 {
		return nil, nil
	}

	books, err := s.books.List(ctx, nil, func(ctx context.Context, b *pricebook.PriceBook, _ interface{}) bool {
		return b != nil &&
			b.TenantID == types.GetTenantID(ctx) &&
			b.Status == types.StatusPublished &&
			b.GeoZoneID != nil &&
			lo.Contains(geoZoneIDs, *b.GeoZoneID)
	}, priceBookSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(books, func(b *pricebook.PriceBook, _ int) *pricebook.PriceBook {
		return copyPriceBook(b)
	}), nil
}

func (s *InMemoryPriceBookStore) CreateEntry(ctx context.Context, entry *pricebook.PriceBookEntry) error {
	if entry == nil {
		return ierr.NewError("price book entry cannot be nil").
			WithHint("Price book entry cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.entries.Create(ctx, entry.ID, copyPriceBookEntry(entry))
}

func (s *InMemoryPriceBookStore) GetEntry(ctx context.Context, id string) (*pricebook.PriceBookEntry, error) {
	entry, err := s.entries.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("price book entry not found").
			WithHintf("Price book entry with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return copyPriceBookEntry(entry), nil
}

func (s *InMemoryPriceBookStore) ListEntries(ctx context.Context, filter *types.PriceBookEntryFilter) ([]*pricebook.PriceBookEntry, error) {
	items, err := s.entries.List(ctx, filter, priceBookEntryFilterFn, nil)
	if err != nil {
		return nil, err
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].ProductID != items[j].ProductID {
			return items[i].ProductID < items[j].ProductID
		}
		return items[i].MinQuantity < items[j].MinQuantity
	})

	return lo.Map(items, func(e *pricebook.PriceBookEntry, _ int) *pricebook.PriceBookEntry {
		return copyPriceBookEntry(e)
	}), nil
}

func (s *InMemoryPriceBookStore) CountEntries(ctx context.Context, filter *types.PriceBookEntryFilter) (int, error) {
	return s.entries.Count(ctx, filter, priceBookEntryFilterFn)
}

func (s *InMemoryPriceBookStore) UpdateEntry(ctx context.Context, entry *pricebook.PriceBookEntry) error {
	if entry == nil {
		return ierr.NewError("price book entry cannot be nil").
			WithHint("Price book entry cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.entries.Update(ctx, entry.ID, copyPriceBookEntry(entry))
}

func (s *InMemoryPriceBookStore) DeleteEntry(ctx context.Context, id string) error {
	return s.entries.Delete(ctx, id)
}

// FindEntry applies the highest covering min_quantity wins tie break of the
// postgres repository.
func (s *InMemoryPriceBookStore) FindEntry(ctx context.Context, priceBookID string, productID string, quantity int) (*pricebook.PriceBookEntry, error) {
	entries, err := s.entries.List(ctx, nil, func(ctx context.Context, e *pricebook.PriceBookEntry, _ interface{}) bool {
		return e != nil &&
			e.TenantID == types.GetTenantID(ctx) &&
			e.Status == types.StatusPublished &&
			e.PriceBookID == priceBookID &&
			e.ProductID == productID &&
			e.CoversQuantity(quantity)
	}, nil)
	if err != nil {
		return nil, err
	}

	var best *pricebook.PriceBookEntry
	for _, e := range entries {
		if best == nil || e.MinQuantity > best.MinQuantity {
			best = e
		}
	}

	if best == nil {
		return nil, ierr.NewError("no price book entry covers the request").
			WithHintf("Product %s has no price in price book %s for quantity %d", productID, priceBookID, quantity).
			WithReportableDetails(map[string]any{
				"price_book_id": priceBookID,
				"product_id":    productID,
				"quantity":      quantity,
			}).
			Mark(ierr.ErrNotFound)
	}

	return copyPriceBookEntry(best), nil
}

// Clear wipes books and entries
func (s *InMemoryPriceBookStore) Clear() {
	s.books.Clear()
	s.entries.Clear()
}

func priceBookFilterFn(ctx context.Context, b *pricebook.PriceBook, filter interface{}) bool {
	if b == nil {
		return false
	}

	tenantID := types.GetTenantID(ctx)
	if tenantID != "" && b.TenantID != tenantID {
		return false
	}

	if b.Status != types.StatusPublished {
		return false
	}

	f, ok := filter.(*types.PriceBookFilter)
	if !ok || f == nil {
		return true
	}

	if f.Currency != nil && b.Currency != *f.Currency {
		return false
	}

	if f.GeoZoneID != nil {
		if b.GeoZoneID == nil || *b.GeoZoneID != *f.GeoZoneID {
			return false
		}
	}

	if f.IsDefault != nil && b.IsDefault != *f.IsDefault {
		return false
	}

	return true
}

func priceBookSortFn(i, j *pricebook.PriceBook) bool {
	return i.CreatedAt.After(j.CreatedAt)
}

func priceBookEntryFilterFn(ctx context.Context, e *pricebook.PriceBookEntry, filter interface{}) bool {
	if e == nil {
		return false
	}

	tenantID := types.GetTenantID(ctx)
	if tenantID != "" && e.TenantID != tenantID {
		return false
	}

	if e.Status != types.StatusPublished {
		return false
	}

	f, ok := filter.(*types.PriceBookEntryFilter)
	if !ok || f == nil {
		return true
	}

	if f.PriceBookID != nil && e.PriceBookID != *f.PriceBookID {
		return false
	}

	if f.ProductID != nil && e.ProductID != *f.ProductID {
		return false
	}

	return true
}
