package service

import (
	"context"

	"github.com/printprice/printprice/internal/api/dto"
	"github.com/printprice/printprice/internal/domain/geozone"
	"github.com/printprice/printprice/internal/domain/pricebook"
	ierr "github.com/printprice/printprice/internal/errors"
	"github.com/printprice/printprice/internal/types"
)

// PriceBookService defines the interface for price book operations
type PriceBookService interface {
	CreatePriceBook(ctx context.Context, req dto.CreatePriceBookRequest) (*dto.PriceBookResponse, error)
	GetPriceBook(ctx context.Context, id string) (*dto.PriceBookResponse, error)
	ListPriceBooks(ctx context.Context, filter *types.PriceBookFilter) (*dto.ListPriceBooksResponse, error)
	UpdatePriceBook(ctx context.Context, id string, req dto.UpdatePriceBookRequest) (*dto.PriceBookResponse, error)
	DeletePriceBook(ctx context.Context, id string) error

	// SetDefault promotes the book to the fallback for its currency,
	// demoting the previous default in the same transaction.
	SetDefault(ctx context.Context, id string) (*dto.PriceBookResponse, error)

	CreateEntry(ctx context.Context, priceBookID string, req dto.CreatePriceBookEntryRequest) (*dto.PriceBookEntryResponse, error)
	GetEntry(ctx context.Context, id string) (*dto.PriceBookEntryResponse, error)
	ListEntries(ctx context.Context, filter *types.PriceBookEntryFilter) (*dto.ListPriceBookEntriesResponse, error)
	UpdateEntry(ctx context.Context, id string, req dto.UpdatePriceBookEntryRequest) (*dto.PriceBookEntryResponse, error)
	DeleteEntry(ctx context.Context, id string) error

	// SelectEntry picks the base price source for a pricing request: the
	// first zone in the chain owning a zone book with an entry covering
	// (product, quantity), else the currency default book. No match at all is
	// a not-found error, pricing cannot proceed without a base price.
	SelectEntry(ctx context.Context, productID string, zoneChain []*geozone.GeoZone, quantity int) (*pricebook.PriceBook, *pricebook.PriceBookEntry, error)
}

type priceBookService struct {
	ServiceParams
}

// NewPriceBookService creates a new price book service
func NewPriceBookService(params ServiceParams) PriceBookService {
	return &priceBookService{
		ServiceParams: params,
	}
}

// CreatePriceBook creates a new price book
func (s *priceBookService) CreatePriceBook(ctx context.Context, req dto.CreatePriceBookRequest) (*dto.PriceBookResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if req.GeoZoneID != nil {
		if _, err := s.GeoZoneRepo.Get(ctx, *req.GeoZoneID); err != nil {
			return nil, err
		}
	}

	book := req.ToPriceBook(types.GetDefaultBaseModel(ctx))

	if err := s.PriceBookRepo.Create(ctx, book); err != nil {
		return nil, err
	}

	// A book created as default takes over from the previous default for its
	// currency immediately.
	if book.IsDefault {
		if err := s.PriceBookRepo.SetDefault(ctx, book.ID); err != nil {
			return nil, err
		}
	}

	return &dto.PriceBookResponse{PriceBook: book}, nil
}

// GetPriceBook retrieves a price book by ID
func (s *priceBookService) GetPriceBook(ctx context.Context, id string) (*dto.PriceBookResponse, error) {
	book, err := s.PriceBookRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return &dto.PriceBookResponse{PriceBook: book}, nil
}

// ListPriceBooks lists price books matching the filter
func (s *priceBookService) ListPriceBooks(ctx context.Context, filter *types.PriceBookFilter) (*dto.ListPriceBooksResponse, error) {
	if filter == nil {
		filter = types.NewPriceBookFilter()
	}

	if err := filter.Validate(); err != nil {
		return nil, err
	}

	books, err := s.PriceBookRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	count, err := s.PriceBookRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.PriceBookResponse, len(books))
	for i, book := range books {
		items[i] = &dto.PriceBookResponse{PriceBook: book}
	}

	response := types.NewListResponse(items, count, filter.GetLimit(), filter.GetOffset())
	return &response, nil
}

// UpdatePriceBook updates an existing price book. The currency is immutable:
// every entry in the book is priced in it.
func (s *priceBookService) UpdatePriceBook(ctx context.Context, id string, req dto.UpdatePriceBookRequest) (*dto.PriceBookResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	book, err := s.PriceBookRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		book.Name = *req.Name
	}
	if req.GeoZoneID != nil {
		if _, err := s.GeoZoneRepo.Get(ctx, *req.GeoZoneID); err != nil {
			return nil, err
		}
		book.GeoZoneID = req.GeoZoneID
	}

	if err := s.PriceBookRepo.Update(ctx, book); err != nil {
		return nil, err
	}

	return &dto.PriceBookResponse{PriceBook: book}, nil
}

// DeletePriceBook soft deletes a price book. Its entries become unreachable
// with it: book selection only ever walks published books.
func (s *priceBookService) DeletePriceBook(ctx context.Context, id string) error {
	book, err := s.PriceBookRepo.Get(ctx, id)
	if err != nil {
		return err
	}

	if book.IsDefault {
		return ierr.NewError("default price book cannot be deleted").
			WithHintf("Promote another %s book to default before deleting this one", book.Currency).
			WithReportableDetails(map[string]any{
				"price_book_id": id,
				"currency":      book.Currency,
			}).
			Mark(ierr.ErrValidation)
	}

	return s.PriceBookRepo.Delete(ctx, id)
}

// SetDefault promotes the book to the fallback for its currency
func (s *priceBookService) SetDefault(ctx context.Context, id string) (*dto.PriceBookResponse, error) {
	if _, err := s.PriceBookRepo.Get(ctx, id); err != nil {
		return nil, err
	}

	if err := s.PriceBookRepo.SetDefault(ctx, id); err != nil {
		return nil, err
	}

	book, err := s.PriceBookRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return &dto.PriceBookResponse{PriceBook: book}, nil
}

// CreateEntry adds a product price to a book
func (s *priceBookService) CreateEntry(ctx context.Context, priceBookID string, req dto.CreatePriceBookEntryRequest) (*dto.PriceBookEntryResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.PriceBookRepo.Get(ctx, priceBookID); err != nil {
		return nil, err
	}

	if _, err := s.ProductRepo.Get(ctx, req.ProductID); err != nil {
		return nil, err
	}

	entry := req.ToPriceBookEntry(priceBookID, types.GetDefaultBaseModel(ctx))

	if err := s.ensureTierWindowFree(ctx, entry, ""); err != nil {
		return nil, err
	}

	if err := s.PriceBookRepo.CreateEntry(ctx, entry); err != nil {
		return nil, err
	}

	return &dto.PriceBookEntryResponse{PriceBookEntry: entry}, nil
}

// GetEntry retrieves a price book entry by ID
func (s *priceBookService) GetEntry(ctx context.Context, id string) (*dto.PriceBookEntryResponse, error) {
	entry, err := s.PriceBookRepo.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}

	return &dto.PriceBookEntryResponse{PriceBookEntry: entry}, nil
}

// ListEntries lists price book entries matching the filter
func (s *priceBookService) ListEntries(ctx context.Context, filter *types.PriceBookEntryFilter) (*dto.ListPriceBookEntriesResponse, error) {
	if filter == nil {
		filter = types.NewPriceBookEntryFilter()
	}

	if err := filter.Validate(); err != nil {
		return nil, err
	}

	entries, err := s.PriceBookRepo.ListEntries(ctx, filter)
	if err != nil {
		return nil, err
	}

	count, err := s.PriceBookRepo.CountEntries(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.PriceBookEntryResponse, len(entries))
	for i, entry := range entries {
		items[i] = &dto.PriceBookEntryResponse{PriceBookEntry: entry}
	}

	response := types.NewListResponse(items, count, filter.GetLimit(), filter.GetOffset())
	return &response, nil
}

// UpdateEntry updates an existing price book entry
func (s *priceBookService) UpdateEntry(ctx context.Context, id string, req dto.UpdatePriceBookEntryRequest) (*dto.PriceBookEntryResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	entry, err := s.PriceBookRepo.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.BasePrice != nil {
		entry.BasePrice = *req.BasePrice
	}
	if req.CompareAtPrice != nil {
		entry.CompareAtPrice = req.CompareAtPrice
	}
	if req.MinQuantity != nil {
		entry.MinQuantity = *req.MinQuantity
	}
	if req.MaxQuantity != nil {
		entry.MaxQuantity = req.MaxQuantity
	}
	if req.PriceKind != nil {
		entry.PriceKind = *req.PriceKind
	}

	if entry.MaxQuantity != nil && *entry.MaxQuantity < entry.MinQuantity {
		return nil, ierr.NewError("max_quantity must not be below min_quantity").
			WithHint("Please provide a valid quantity tier").
			Mark(ierr.ErrValidation)
	}

	if err := s.ensureTierWindowFree(ctx, entry, entry.ID); err != nil {
		return nil, err
	}

	if err := s.PriceBookRepo.UpdateEntry(ctx, entry); err != nil {
		return nil, err
	}

	return &dto.PriceBookEntryResponse{PriceBookEntry: entry}, nil
}

// DeleteEntry soft deletes a price book entry
func (s *priceBookService) DeleteEntry(ctx context.Context, id string) error {
	if _, err := s.PriceBookRepo.GetEntry(ctx, id); err != nil {
		return err
	}

	return s.PriceBookRepo.DeleteEntry(ctx, id)
}

// SelectEntry walks the zone chain most specific zone first and returns the
// first (book, entry) pair covering the product and quantity. Books bound to
// a zone win over the currency default book; zones earlier in the chain win
// over their parents.
func (s *priceBookService) SelectEntry(ctx context.Context, productID string, zoneChain []*geozone.GeoZone, quantity int) (*pricebook.PriceBook, *pricebook.PriceBookEntry, error) {
	zoneIDs := make([]string, len(zoneChain))
	for i, zone := range zoneChain {
		zoneIDs[i] = zone.ID
	}

	if len(zoneIDs) > 0 {
		zoneBooks, err := s.PriceBookRepo.GetByZone(ctx, zoneIDs)
		if err != nil {
			return nil, nil, err
		}

		booksByZone := make(map[string][]*pricebook.PriceBook, len(zoneBooks))
		for _, book := range zoneBooks {
			if book.GeoZoneID == nil {
				continue
			}
			booksByZone[*book.GeoZoneID] = append(booksByZone[*book.GeoZoneID], book)
		}

		for _, zoneID := range zoneIDs {
			for _, book := range booksByZone[zoneID] {
				entry, err := s.PriceBookRepo.FindEntry(ctx, book.ID, productID, quantity)
				if err != nil {
					if ierr.IsNotFound(err) {
						continue
					}
					return nil, nil, err
				}
				return book, entry, nil
			}
		}
	}

	currency := s.chainCurrency(zoneChain)

	defaultBook, err := s.PriceBookRepo.GetDefault(ctx, currency)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, nil, noPriceBookEntry(productID, quantity, currency)
		}
		return nil, nil, err
	}

	entry, err := s.PriceBookRepo.FindEntry(ctx, defaultBook.ID, productID, quantity)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, nil, noPriceBookEntry(productID, quantity, currency)
		}
		return nil, nil, err
	}

	return defaultBook, entry, nil
}

// ensureTierWindowFree rejects an entry whose quantity window overlaps an
// existing entry for the same (book, product). Overlapping windows would make
// entry selection order dependent.
func (s *priceBookService) ensureTierWindowFree(ctx context.Context, entry *pricebook.PriceBookEntry, excludeID string) error {
	filter := &types.PriceBookEntryFilter{
		QueryFilter: types.NewNoLimitQueryFilter(),
		PriceBookID: &entry.PriceBookID,
		ProductID:   &entry.ProductID,
	}

	existing, err := s.PriceBookRepo.ListEntries(ctx, filter)
	if err != nil {
		return err
	}

	for _, other := range existing {
		if other.ID == excludeID {
			continue
		}
		if tierWindowsOverlap(entry, other) {
			return ierr.NewError("quantity tier overlaps an existing entry").
				WithHintf("Quantity tier overlaps entry %s for the same product", other.ID).
				WithReportableDetails(map[string]any{
					"price_book_id": entry.PriceBookID,
					"product_id":    entry.ProductID,
					"entry_id":      other.ID,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
	}

	return nil
}

func tierWindowsOverlap(a, b *pricebook.PriceBookEntry) bool {
	if a.MaxQuantity != nil && *a.MaxQuantity < b.MinQuantity {
		return false
	}
	if b.MaxQuantity != nil && *b.MaxQuantity < a.MinQuantity {
		return false
	}
	return true
}

// chainCurrency returns the currency of the most specific zone carrying one,
// falling back to the platform currency.
func (s *priceBookService) chainCurrency(zoneChain []*geozone.GeoZone) string {
	for _, zone := range zoneChain {
		if zone.Currency != nil && *zone.Currency != "" {
			return *zone.Currency
		}
	}
	return types.DefaultCurrency
}

func noPriceBookEntry(productID string, quantity int, currency string) error {
	return ierr.NewError("no price book entry").
		WithHintf("No price is configured for product %s at quantity %d", productID, quantity).
		WithReportableDetails(map[string]any{
			"product_id": productID,
			"quantity":   quantity,
			"currency":   currency,
		}).
		Mark(ierr.ErrNotFound)
}
