package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/printprice/printprice/internal/cache"
	"github.com/printprice/printprice/internal/domain/product"
	ierr "github.com/printprice/printprice/internal/errors"
	"github.com/printprice/printprice/internal/logger"
	"github.com/printprice/printprice/internal/postgres"
	"github.com/printprice/printprice/internal/types"
)

// productSortColumns whitelists the sort keys the product list accepts.
var productSortColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"name":       "name",
}

type productRepository struct {
	db     *postgres.DB
	logger *logger.Logger
	cache  cache.Cache
}

func NewProductRepository(db *postgres.DB, logger *logger.Logger, cache cache.Cache) product.Repository {
	return &productRepository{db: db, logger: logger, cache: cache}
}

func (r *productRepository) Create(ctx context.Context, p *product.Product) error {
	query := `
		INSERT INTO products (
			id, tenant_id, name, description, gst_percentage,
			show_price_including_gst, status, created_at, updated_at,
			created_by, updated_by
		) VALUES (
			:id, :tenant_id, :name, :description, :gst_percentage,
			:show_price_including_gst, :status, :created_at, :updated_at,
			:created_by, :updated_by
		)`

	r.logger.Debugw("creating product",
		"product_id", p.ID,
		"tenant_id", p.TenantID,
	)

	_, err := r.db.NamedExecContext(ctx, query, p)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create product").
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *productRepository) Get(ctx context.Context, id string) (*product.Product, error) {
	if cached := r.getCache(ctx, id); cached != nil {
		return cached, nil
	}

	query := `
		SELECT * FROM products
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
			WithHint("Failed to get product").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("product not found").
			WithHintf("Product with ID %s was not found", id).
			WithReportableDetails(map[string]any{
				"product_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}

	var p product.Product
	if err := rows.StructScan(&p); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan product").
			Mark(ierr.ErrDatabase)
	}

	r.setCache(ctx, &p)
	return &p, nil
}

func (r *productRepository) List(ctx context.Context, filter *types.ProductFilter) ([]*product.Product, error) {
	query := `
		SELECT * FROM products
		WHERE tenant_id = :tenant_id
		AND status = :status`

	params := map[string]interface{}{
		"tenant_id": types.GetTenantID(ctx),
		"status":    filter.GetStatus(),
	}

	query, params = r.applyFilter(query, params, filter)

	query += orderByClause(filter.GetSort(), filter.GetOrder(), productSortColumns)

	if filter != nil && !filter.IsUnlimited() {
		query += " LIMIT :limit OFFSET :offset"
		params["limit"] = filter.GetLimit()
		params["offset"] = filter.GetOffset()
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list products").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var products []*product.Product
	for rows.Next() {
		var p product.Product
		if err := rows.StructScan(&p); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan product").
				Mark(ierr.ErrDatabase)
		}
		products = append(products, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to iterate product rows").
			Mark(ierr.ErrDatabase)
	}

	return products, nil
}

func (r *productRepository) Count(ctx context.Context, filter *types.ProductFilter) (int, error) {
	query := `
		SELECT COUNT(*) FROM products
		WHERE tenant_id = :tenant_id
		AND status = :status`

	params := map[string]interface{}{
		"tenant_id": types.GetTenantID(ctx),
		"status":    filter.GetStatus(),
	}

	query, params = r.applyFilter(query, params, filter)

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count products").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var count int
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return 0, ierr.WithError(err).
				WithHint("Failed to scan product count").
				Mark(ierr.ErrDatabase)
		}
	}

	return count, nil
}

// applyFilter appends the filter's conditions to the query and params. The
// status filter defaults to published so soft deleted products stay hidden
// unless explicitly requested.
func (r *productRepository) applyFilter(query string, params map[string]interface{}, filter *types.ProductFilter) (string, map[string]interface{}) {
	query += " AND status = :status"
	if filter != nil && filter.QueryFilter != nil && filter.Status != nil {
		params["status"] = *filter.Status
	} else {
		params["status"] = types.StatusPublished
	}

	if filter == nil {
		return query, params
	}

	if len(filter.ProductIDs) > 0 {
		query += " AND id = ANY(string_to_array(:product_ids, ','))"
		params["product_ids"] = strings.Join(filter.ProductIDs, ",")
	}

	if filter.Name != nil && *filter.Name != "" {
		query += " AND name ILIKE :name"
		params["name"] = "%" + *filter.Name + "%"
	}

	return query, params
}

func (r *productRepository) Update(ctx context.Context, p *product.Product) error {
	p.Touch(ctx)

	query := `
		UPDATE products SET
			name = :name,
			description = :description,
			gst_percentage = :gst_percentage,
			show_price_including_gst = :show_price_including_gst,
			status = :status,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id
		AND tenant_id = :tenant_id`

	result, err := r.db.NamedExecContext(ctx, query, p)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update product").
			Mark(ierr.ErrDatabase)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to get rows affected").
			Mark(ierr.ErrDatabase)
	}
	if rows == 0 {
		return ierr.NewError("product not found").
			WithHintf("Product with ID %s was not found", p.ID).
			Mark(ierr.ErrNotFound)
	}

	r.deleteCache(ctx, p.ID)
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	query := `
		UPDATE products SET
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
			WithHint("Failed to delete product").
			Mark(ierr.ErrDatabase)
	}

	r.deleteCache(ctx, id)
	return nil
}

func (r *productRepository) setCache(ctx context.Context, p *product.Product) {
	key := cache.GenerateKey(cache.PrefixProduct, types.GetTenantID(ctx), p.ID)
	r.cache.Set(ctx, key, p, cache.DefaultExpiration)
}

func (r *productRepository) getCache(ctx context.Context, id string) *product.Product {
	key := cache.GenerateKey(cache.PrefixProduct, types.GetTenantID(ctx), id)
	if value, found := r.cache.Get(ctx, key); found {
		if p, ok := value.(*product.Product); ok {
			return p
		}
	}
	return nil
}

func (r *productRepository) deleteCache(ctx context.Context, id string) {
	key := cache.GenerateKey(cache.PrefixProduct, types.GetTenantID(ctx), id)
	r.cache.Delete(ctx, key)
}
