package postgres

import (
	"context"
	"strings"

	"github.com/printprice/printprice/internal/domain/pricing"
	ierr "github.com/printprice/printprice/internal/errors"
	"github.com/printprice/printprice/internal/logger"
	"github.com/printprice/printprice/internal/postgres"
	"github.com/printprice/printprice/internal/types"
)

// priceSnapshotSortColumns whitelists the sort keys the snapshot list
// accepts.
var priceSnapshotSortColumns = map[string]string{
	"created_at":    "created_at",
	"calculated_at": "calculated_at",
	"total_payable": "total_payable",
}

type pricingRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewPricingRepository creates a new snapshot and calculation log repository.
// Both tables are append-only so there are no update or delete methods.
func NewPricingRepository(db *postgres.DB, logger *logger.Logger) pricing.Repository {
	return &pricingRepository{db: db, logger: logger}
}

func (r *pricingRepository) CreateSnapshot(ctx context.Context, snapshot *pricing.PriceSnapshot) error {
	query := `
		INSERT INTO price_snapshots (
			id, tenant_id, order_id, product_id, base_price, unit_price,
			quantity, applied_modifiers, subtotal, gst_percentage, gst_amount,
			total_payable, currency, calculated_at,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :tenant_id, :order_id, :product_id, :base_price, :unit_price,
			:quantity, :applied_modifiers, :subtotal, :gst_percentage, :gst_amount,
			:total_payable, :currency, :calculated_at,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	r.logger.Debugw("creating price snapshot",
		"snapshot_id", snapshot.ID,
		"order_id", snapshot.OrderID,
		"product_id", snapshot.ProductID,
		"total_payable", snapshot.TotalPayable,
		"tenant_id", snapshot.TenantID,
	)

	_, err := r.db.NamedExecContext(ctx, query, snapshot)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create price snapshot").
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *pricingRepository) GetSnapshot(ctx context.Context, id string) (*pricing.PriceSnapshot, error) {
	query := `
		SELECT * FROM price_snapshots
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
			WithHint("Failed to get price snapshot").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("price snapshot not found").
			WithHintf("Price snapshot with ID %s was not found", id).
			WithReportableDetails(map[string]any{
				"snapshot_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}

	var snapshot pricing.PriceSnapshot
	if err := rows.StructScan(&snapshot); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan price snapshot").
			Mark(ierr.ErrDatabase)
	}

	return &snapshot, nil
}

func (r *pricingRepository) GetSnapshotByOrder(ctx context.Context, orderID string) (*pricing.PriceSnapshot, error) {
	query := `
		SELECT * FROM price_snapshots
		WHERE order_id = :order_id
		AND tenant_id = :tenant_id
		AND status = :status
		ORDER BY calculated_at DESC
		LIMIT 1`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"order_id":  orderID,
		"tenant_id": types.GetTenantID(ctx),
		"status":    types.StatusPublished,
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to get price snapshot by order").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("price snapshot not found").
			WithHintf("Order %s has no price snapshot", orderID).
			WithReportableDetails(map[string]any{
				"order_id": orderID,
			}).
			Mark(ierr.ErrNotFound)
	}

	var snapshot pricing.PriceSnapshot
	if err := rows.StructScan(&snapshot); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan price snapshot").
			Mark(ierr.ErrDatabase)
	}

	return &snapshot, nil
}

func (r *pricingRepository) ListSnapshots(ctx context.Context, filter *types.PriceSnapshotFilter) ([]*pricing.PriceSnapshot, error) {
	query := `
		SELECT * FROM price_snapshots
		WHERE tenant_id = :tenant_id
		AND status = :status`

	params := map[string]interface{}{
		"tenant_id": types.GetTenantID(ctx),
		"status":    filter.GetStatus(),
	}

	query, params = r.applyFilter(query, params, filter)

	query += orderByClause(filter.GetSort(), filter.GetOrder(), priceSnapshotSortColumns)

	if filter != nil && !filter.IsUnlimited() {
		query += " LIMIT :limit OFFSET :offset"
		params["limit"] = filter.GetLimit()
		params["offset"] = filter.GetOffset()
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list price snapshots").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var snapshots []*pricing.PriceSnapshot
	for rows.Next() {
		var snapshot pricing.PriceSnapshot
		if err := rows.StructScan(&snapshot); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan price snapshot").
				Mark(ierr.ErrDatabase)
		}
		snapshots = append(snapshots, &snapshot)
	}

	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to iterate price snapshot rows").
			Mark(ierr.ErrDatabase)
	}

	return snapshots, nil
}

func (r *pricingRepository) CountSnapshots(ctx context.Context, filter *types.PriceSnapshotFilter) (int, error) {
	query := `
		SELECT COUNT(*) FROM price_snapshots
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
			WithHint("Failed to count price snapshots").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var count int
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return 0, ierr.WithError(err).
				WithHint("Failed to scan price snapshot count").
				Mark(ierr.ErrDatabase)
		}
	}

	return count, nil
}

func (r *pricingRepository) applyFilter(query string, params map[string]interface{}, filter *types.PriceSnapshotFilter) (string, map[string]interface{}) {
	if filter == nil {
		return query, params
	}

	if len(filter.OrderIDs) > 0 {
		query += " AND order_id = ANY(string_to_array(:order_ids, ','))"
		params["order_ids"] = strings.Join(filter.OrderIDs, ",")
	}

	if len(filter.ProductIDs) > 0 {
		query += " AND product_id = ANY(string_to_array(:product_ids, ','))"
		params["product_ids"] = strings.Join(filter.ProductIDs, ",")
	}

	if filter.TimeRangeFilter != nil {
		if filter.StartTime != nil {
			query += " AND calculated_at >= :start_time"
			params["start_time"] = *filter.StartTime
		}
		if filter.EndTime != nil {
			query += " AND calculated_at <= :end_time"
			params["end_time"] = *filter.EndTime
		}
	}

	return query, params
}

// CreateCalculationLogs inserts all audit rows for a snapshot in one
// statement. sqlx expands the named query once per element of the slice.
func (r *pricingRepository) CreateCalculationLogs(ctx context.Context, logs []*pricing.CalculationLog) error {
	if len(logs) == 0 {
		return nil
	}

	query := `
		INSERT INTO calculation_logs (
			id, tenant_id, snapshot_id, order_id, step_index, modifier_id,
			scope, pricing_key, before_amount, after_amount, reason,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :tenant_id, :snapshot_id, :order_id, :step_index, :modifier_id,
			:scope, :pricing_key, :before_amount, :after_amount, :reason,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	r.logger.Debugw("creating calculation logs",
		"snapshot_id", logs[0].SnapshotID,
		"count", len(logs),
		"tenant_id", logs[0].TenantID,
	)

	_, err := r.db.NamedExecContext(ctx, query, logs)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create calculation logs").
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *pricingRepository) ListCalculationLogs(ctx context.Context, snapshotID string) ([]*pricing.CalculationLog, error) {
	query := `
		SELECT * FROM calculation_logs
		WHERE snapshot_id = :snapshot_id
		AND tenant_id = :tenant_id
		AND status = :status
		ORDER BY step_index ASC`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"snapshot_id": snapshotID,
		"tenant_id":   types.GetTenantID(ctx),
		"status":      types.StatusPublished,
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list calculation logs").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var logs []*pricing.CalculationLog
	for rows.Next() {
		var log pricing.CalculationLog
		if err := rows.StructScan(&log); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan calculation log").
				Mark(ierr.ErrDatabase)
		}
		logs = append(logs, &log)
	}

	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to iterate calculation log rows").
			Mark(ierr.ErrDatabase)
	}

	return logs, nil
}
