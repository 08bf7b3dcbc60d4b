package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/printprice/printprice/internal/cache"
	"github.com/printprice/printprice/internal/domain/pricebook"
	ierr "github.com/printprice/printprice/internal/errors"
	"github.com/printprice/printprice/internal/logger"
	"github.com/printprice/printprice/internal/postgres"
	"github.com/printprice/printprice/internal/types"
)

// priceBookSortColumns and priceBookEntrySortColumns whitelist the sort
// keys the two list endpoints accept.
var (
	priceBookSortColumns = map[string]string{
		"created_at": "created_at",
		"updated_at": "updated_at",
		"name":       "name",
		"currency":   "currency",
	}
	priceBookEntrySortColumns = map[string]string{
		"created_at":   "created_at",
		"updated_at":   "updated_at",
		"product_id":   "product_id",
		"min_quantity": "min_quantity",
		"base_price":   "base_price",
	}
)

type priceBookRepository struct {
	db     *postgres.DB
	logger *logger.Logger
	cache  cache.Cache
}

func NewPriceBookRepository(db *postgres.DB, logger *logger.Logger, cache cache.Cache) pricebook.Repository {
	return &priceBookRepository{db: db, logger: logger, cache: cache}
}

func (r *priceBookRepository) Create(ctx context.Context, book *pricebook.PriceBook) error {
	query := `
		INSERT INTO price_books (
			id, tenant_id, name, currency, geo_zone_id, is_default,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :tenant_id, :name, :currency, :geo_zone_id, :is_default,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	r.logger.Debugw("creating price book",
		"price_book_id", book.ID,
		"currency", book.Currency,
		"tenant_id", book.TenantID,
	)

	_, err := r.db.NamedExecContext(ctx, query, book)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create price book").
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *priceBookRepository) Get(ctx context.Context, id string) (*pricebook.PriceBook, error) {
	if cached := r.getCache(ctx, id); cached != nil {
		return cached, nil
	}

	query := `
		SELECT * FROM price_books
		WHERE id = :id
		AND tenant_id = :tenant_id
		AND status = :status`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"id":        id,
		"tenant_id": types.GetTenantID(ctx),
		"status":    types.StatusPublished,
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to get price book").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("price book not found").
			WithHintf("Price book with ID %s was not found", id).
			WithReportableDetails(map[string]any{
				"price_book_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}

	var book pricebook.PriceBook
	if err := rows.StructScan(&book); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan price book").
			Mark(ierr.ErrDatabase)
	}

	r.setCache(ctx, &book)
	return &book, nil
}

func (r *priceBookRepository) List(ctx context.Context, filter *types.PriceBookFilter) ([]*pricebook.PriceBook, error) {
	query := `
		SELECT * FROM price_books
		WHERE tenant_id = :tenant_id
		AND status = :status`

	params := map[string]interface{}{
		"tenant_id": types.GetTenantID(ctx),
		"status":    filter.GetStatus(),
	}

	if filter != nil {
		if filter.Currency != nil {
			query += " AND currency = :currency"
			params["currency"] = *filter.Currency
		}
		if filter.GeoZoneID != nil {
			query += " AND geo_zone_id = :geo_zone_id"
			params["geo_zone_id"] = *filter.GeoZoneID
		}
		if filter.IsDefault != nil {
			query += " AND is_default = :is_default"
			params["is_default"] = *filter.IsDefault
		}
	}

	query += orderByClause(filter.GetSort(), filter.GetOrder(), priceBookSortColumns)

	if filter != nil && !filter.IsUnlimited() {
		query += " LIMIT :limit OFFSET :offset"
		params["limit"] = filter.GetLimit()
		params["offset"] = filter.GetOffset()
	}

	return r.queryBooks(ctx, query, params)
}

func (r *priceBookRepository) Count(ctx context.Context, filter *types.PriceBookFilter) (int, error) {
	query := `
		SELECT COUNT(*) FROM price_books
		WHERE tenant_id = :tenant_id
		AND status = :status`

	params := map[string]interface{}{
		"tenant_id": types.GetTenantID(ctx),
		"status":    filter.GetStatus(),
	}

	if filter != nil {
		if filter.Currency != nil {
			query += " AND currency = :currency"
			params["currency"] = *filter.Currency
		}
		if filter.GeoZoneID != nil {
			query += " AND geo_zone_id = :geo_zone_id"
			params["geo_zone_id"] = *filter.GeoZoneID
		}
		if filter.IsDefault != nil {
			query += " AND is_default = :is_default"
			params["is_default"] = *filter.IsDefault
		}
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count price books").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var count int
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return 0, ierr.WithError(err).
				WithHint("Failed to scan price book count").
				Mark(ierr.ErrDatabase)
		}
	}

	return count, nil
}

// GetByZone returns books bound to any of the given zones, newest first, so
// the caller can walk the zone chain and keep the closest match.
func (r *priceBookRepository) GetByZone(ctx context.Context, geoZoneIDs []string) ([]*pricebook.PriceBook, error) {
	if len(geoZoneIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT * FROM price_books
		WHERE tenant_id = :tenant_id
		AND status = :status
		AND geo_zone_id = ANY(string_to_array(:geo_zone_ids, ','))
		ORDER BY created_at DESC`

	return r.queryBooks(ctx, query, map[string]interface{}{
		"tenant_id":    types.GetTenantID(ctx),
		"status":       types.StatusPublished,
		"geo_zone_ids": strings.Join(geoZoneIDs, ","),
	})
}

func (r *priceBookRepository) GetDefault(ctx context.Context, currency string) (*pricebook.PriceBook, error) {
	query := `
		SELECT * FROM price_books
		WHERE tenant_id = :tenant_id
		AND status = :status
		AND currency = :currency
		AND is_default = TRUE
		LIMIT 1`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"tenant_id": types.GetTenantID(ctx),
		"status":    types.StatusPublished,
		"currency":  currency,
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to get default price book").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("default price book not found").
			WithHintf("No default price book is configured for currency %s", currency).
			WithReportableDetails(map[string]any{
				"currency": currency,
			}).
			Mark(ierr.ErrNotFound)
	}

	var book pricebook.PriceBook
	if err := rows.StructScan(&book); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan price book").
			Mark(ierr.ErrDatabase)
	}

	return &book, nil
}

func (r *priceBookRepository) queryBooks(ctx context.Context, query string, params map[string]interface{}) ([]*pricebook.PriceBook, error) {
	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list price books").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var books []*pricebook.PriceBook
	for rows.Next() {
		var book pricebook.PriceBook
		if err := rows.StructScan(&book); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan price book").
				Mark(ierr.ErrDatabase)
		}
		books = append(books, &book)
	}

	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to iterate price book rows").
			Mark(ierr.ErrDatabase)
	}

	return books, nil
}

func (r *priceBookRepository) Update(ctx context.Context, book *pricebook.PriceBook) error {
	book.Touch(ctx)

	query := `
		UPDATE price_books SET
			name = :name,
			currency = :currency,
			geo_zone_id = :geo_zone_id,
			status = :status,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id
		AND tenant_id = :tenant_id`

	result, err := r.db.NamedExecContext(ctx, query, book)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update price book").
			Mark(ierr.ErrDatabase)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to get rows affected").
			Mark(ierr.ErrDatabase)
	}
	if rows == 0 {
		return ierr.NewError("price book not found").
			WithHintf("Price book with ID %s was not found", book.ID).
			Mark(ierr.ErrNotFound)
	}

	r.deleteCache(ctx, book.ID)
	return nil
}

func (r *priceBookRepository) Delete(ctx context.Context, id string) error {
	query := `
		UPDATE price_books SET
			status = :status,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id
		AND tenant_id = :tenant_id`

	_, err := r.db.NamedExecContext(ctx, query, map[string]interface{}{
		"id":         id,
		"tenant_id":  types.GetTenantID(ctx),
		"status":     types.StatusDeleted,
		"updated_at": time.Now().UTC(),
		"updated_by": types.GetUserID(ctx),
	})
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete price book").
			Mark(ierr.ErrDatabase)
	}

	r.deleteCache(ctx, id)
	return nil
}

// SetDefault flags the book as the currency default and unsets any previous
// default for the same currency in one transaction.
func (r *priceBookRepository) SetDefault(ctx context.Context, id string) error {
	book, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	return r.db.WithTx(ctx, func(ctx context.Context) error {
		unset := `
			UPDATE price_books SET
				is_default = FALSE,
				updated_at = :updated_at,
				updated_by = :updated_by
			WHERE tenant_id = :tenant_id
			AND currency = :currency
			AND is_default = TRUE
			AND id != :id`

		params := map[string]interface{}{
			"id":         id,
			"tenant_id":  types.GetTenantID(ctx),
			"currency":   book.Currency,
			"updated_at": time.Now().UTC(),
			"updated_by": types.GetUserID(ctx),
		}

		if _, err := r.db.NamedExecContext(ctx, unset, params); err != nil {
			return ierr.WithError(err).
				WithHint("Failed to unset previous default price book").
				Mark(ierr.ErrDatabase)
		}

		set := `
			UPDATE price_books SET
				is_default = TRUE,
				updated_at = :updated_at,
				updated_by = :updated_by
			WHERE id = :id
			AND tenant_id = :tenant_id`

		if _, err := r.db.NamedExecContext(ctx, set, params); err != nil {
			return ierr.WithError(err).
				WithHint("Failed to set default price book").
				Mark(ierr.ErrDatabase)
		}

		r.deleteCache(ctx, id)
		return nil
	})
}

func (r *priceBookRepository) CreateEntry(ctx context.Context, entry *pricebook.PriceBookEntry) error {
	query := `
		INSERT INTO price_book_entries (
			id, tenant_id, price_book_id, product_id, base_price,
			compare_at_price, min_quantity, max_quantity, price_kind,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :tenant_id, :price_book_id, :product_id, :base_price,
			:compare_at_price, :min_quantity, :max_quantity, :price_kind,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	r.logger.Debugw("creating price book entry",
		"entry_id", entry.ID,
		"price_book_id", entry.PriceBookID,
		"product_id", entry.ProductID,
		"tenant_id", entry.TenantID,
	)

	_, err := r.db.NamedExecContext(ctx, query, entry)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create price book entry").
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *priceBookRepository) GetEntry(ctx context.Context, id string) (*pricebook.PriceBookEntry, error) {
	query := `
		SELECT * FROM price_book_entries
		WHERE id = :id
		AND tenant_id = :tenant_id
		AND status = :status`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"id":        id,
		"tenant_id": types.GetTenantID(ctx),
		"status":    types.StatusPublished,
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to get price book entry").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("price book entry not found").
			WithHintf("Price book entry with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}

	var entry pricebook.PriceBookEntry
	if err := rows.StructScan(&entry); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan price book entry").
			Mark(ierr.ErrDatabase)
	}

	return &entry, nil
}

func (r *priceBookRepository) ListEntries(ctx context.Context, filter *types.PriceBookEntryFilter) ([]*pricebook.PriceBookEntry, error) {
	query := `
		SELECT * FROM price_book_entries
		WHERE tenant_id = :tenant_id
		AND status = :status`

	params := map[string]interface{}{
		"tenant_id": types.GetTenantID(ctx),
		"status":    filter.GetStatus(),
	}

	if filter != nil {
		if filter.PriceBookID != nil {
			query += " AND price_book_id = :price_book_id"
			params["price_book_id"] = *filter.PriceBookID
		}
		if filter.ProductID != nil {
			query += " AND product_id = :product_id"
			params["product_id"] = *filter.ProductID
		}
	}

	query += orderByClause(filter.GetSort(), filter.GetOrder(), priceBookEntrySortColumns)

	if filter != nil && !filter.IsUnlimited() {
		query += " LIMIT :limit OFFSET :offset"
		params["limit"] = filter.GetLimit()
		params["offset"] = filter.GetOffset()
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list price book entries").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var entries []*pricebook.PriceBookEntry
	for rows.Next() {
		var entry pricebook.PriceBookEntry
		if err := rows.StructScan(&entry); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan price book entry").
				Mark(ierr.ErrDatabase)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to iterate price book entry rows").
			Mark(ierr.ErrDatabase)
	}

	return entries, nil
}

func (r *priceBookRepository) CountEntries(ctx context.Context, filter *types.PriceBookEntryFilter) (int, error) {
	query := `
		SELECT COUNT(*) FROM price_book_entries
		WHERE tenant_id = :tenant_id
		AND status = :status`

	params := map[string]interface{}{
		"tenant_id": types.GetTenantID(ctx),
		"status":    filter.GetStatus(),
	}

	if filter != nil {
		if filter.PriceBookID != nil {
			query += " AND price_book_id = :price_book_id"
			params["price_book_id"] = *filter.PriceBookID
		}
		if filter.ProductID != nil {
			query += " AND product_id = :product_id"
			params["product_id"] = *filter.ProductID
		}
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count price book entries").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var count int
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return 0, ierr.WithError(err).
				WithHint("Failed to scan price book entry count").
				Mark(ierr.ErrDatabase)
		}
	}

	return count, nil
}

func (r *priceBookRepository) UpdateEntry(ctx context.Context, entry *pricebook.PriceBookEntry) error {
	entry.Touch(ctx)

	query := `
		UPDATE price_book_entries SET
			base_price = :base_price,
			compare_at_price = :compare_at_price,
			min_quantity = :min_quantity,
			max_quantity = :max_quantity,
			price_kind = :price_kind,
			status = :status,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id
		AND tenant_id = :tenant_id`

	result, err := r.db.NamedExecContext(ctx, query, entry)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update price book entry").
			Mark(ierr.ErrDatabase)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to get rows affected").
			Mark(ierr.ErrDatabase)
	}
	if rows == 0 {
		return ierr.NewError("price book entry not found").
			WithHintf("Price book entry with ID %s was not found", entry.ID).
			Mark(ierr.ErrNotFound)
	}

	return nil
}

func (r *priceBookRepository) DeleteEntry(ctx context.Context, id string) error {
	query := `
		UPDATE price_book_entries SET
			status = :status,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id
		AND tenant_id = :tenant_id`

	_, err := r.db.NamedExecContext(ctx, query, map[string]interface{}{
		"id":         id,
		"tenant_id":  types.GetTenantID(ctx),
		"status":     types.StatusDeleted,
		"updated_at": time.Now().UTC(),
		"updated_by": types.GetUserID(ctx),
	})
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete price book entry").
			Mark(ierr.ErrDatabase)
	}

	return nil
}

// FindEntry picks the entry whose quantity tier covers the requested
// quantity. When tiers overlap the one with the highest min_quantity wins,
// so bulk tiers shadow the base tier.
func (r *priceBookRepository) FindEntry(ctx context.Context, priceBookID string, productID string, quantity int) (*pricebook.PriceBookEntry, error) {
	query := `
		SELECT * FROM price_book_entries
		WHERE tenant_id = :tenant_id
		AND status = :status
		AND price_book_id = :price_book_id
		AND product_id = :product_id
		AND min_quantity <= :quantity
		AND (max_quantity IS NULL OR max_quantity >= :quantity)
		ORDER BY min_quantity DESC
		LIMIT 1`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"tenant_id":     types.GetTenantID(ctx),
		"status":        types.StatusPublished,
		"price_book_id": priceBookID,
		"product_id":    productID,
		"quantity":      quantity,
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to find price book entry").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("no price book entry covers the request").
			WithHintf("Product %s has no price in price book %s for quantity %d", productID, priceBookID, quantity).
			WithReportableDetails(map[string]any{
				"price_book_id": priceBookID,
				"product_id":    productID,
				"quantity":      quantity,
			}).
			Mark(ierr.ErrNotFound)
	}

	var entry pricebook.PriceBookEntry
	if err := rows.StructScan(&entry); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan price book entry").
			Mark(ierr.ErrDatabase)
	}

	return &entry, nil
}

func (r *priceBookRepository) setCache(ctx context.Context, book *pricebook.PriceBook) {
	key := cache.GenerateKey(cache.PrefixPriceBook, types.GetTenantID(ctx), book.ID)
	r.cache.Set(ctx, key, book, cache.DefaultExpiration)
}

func (r *priceBookRepository) getCache(ctx context.Context, id string) *pricebook.PriceBook {
	key := cache.GenerateKey(cache.PrefixPriceBook, types.GetTenantID(ctx), id)
	if value, found := r.cache.Get(ctx, key); found {
		if book, ok := value.(*pricebook.PriceBook); ok {
			return book
		}
	}
	return nil
}

func (r *priceBookRepository) deleteCache(ctx context.Context, id string) {
	key := cache.GenerateKey(cache.PrefixPriceBook, types.GetTenantID(ctx), id)
	r.cache.Delete(ctx, key)
}
