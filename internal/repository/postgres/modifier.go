package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/printprice/printprice/internal/domain/modifier"
	ierr "github.com/printprice/printprice/internal/errors"
	"github.com/printprice/printprice/internal/logger"
	"github.com/printprice/printprice/internal/postgres"
	"github.com/printprice/printprice/internal/types"
)

// priceModifierSortColumns whitelists the sort keys the modifier list
// accepts.
var priceModifierSortColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"name":       "name",
	"priority":   "priority",
	"applies_to": "applies_to",
}

type priceModifierRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewPriceModifierRepository creates a new price modifier repository.
// Modifiers are deliberately not cached: usage counters and validity windows
// change between reads and a stale counter could over redeem a promo.
func NewPriceModifierRepository(db *postgres.DB, logger *logger.Logger) modifier.Repository {
	return &priceModifierRepository{db: db, logger: logger}
}

func (r *priceModifierRepository) Create(ctx context.Context, m *modifier.PriceModifier) error {
	query := `
		INSERT INTO price_modifiers (
			id, tenant_id, name, applies_to, modifier_type, value, priority,
			geo_zone_id, user_segment_id, product_id, pricing_key, promo_code,
			usage_limit, used_count, valid_from, valid_until,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :tenant_id, :name, :applies_to, :modifier_type, :value, :priority,
			:geo_zone_id, :user_segment_id, :product_id, :pricing_key, :promo_code,
			:usage_limit, :used_count, :valid_from, :valid_until,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	r.logger.Debugw("creating price modifier",
		"modifier_id", m.ID,
		"applies_to", m.AppliesTo,
		"tenant_id", m.TenantID,
	)

	_, err := r.db.NamedExecContext(ctx, query, m)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create price modifier").
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *priceModifierRepository) Get(ctx context.Context, id string) (*modifier.PriceModifier, error) {
	query := `
		SELECT * FROM price_modifiers
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
			WithHint("Failed to get price modifier").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("price modifier not found").
			WithHintf("Price modifier with ID %s was not found", id).
			WithReportableDetails(map[string]any{
				"modifier_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}

	var m modifier.PriceModifier
	if err := rows.StructScan(&m); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan price modifier").
			Mark(ierr.ErrDatabase)
	}

	return &m, nil
}

func (r *priceModifierRepository) GetByPromoCode(ctx context.Context, code string) (*modifier.PriceModifier, error) {
	query := `
		SELECT * FROM price_modifiers
		WHERE promo_code = :promo_code
		AND applies_to = :applies_to
		AND tenant_id = :tenant_id
		AND status = :status`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"promo_code": code,
		"applies_to": types.ModifierScopePromoCode,
		"tenant_id":  types.GetTenantID(ctx),
		"status":     types.StatusPublished,
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to get promo code").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("promo code not found").
			WithHintf("Promo code %s does not exist", code).
			WithReportableDetails(map[string]any{
				"promo_code": code,
			}).
			Mark(ierr.ErrNotFound)
	}

	var m modifier.PriceModifier
	if err := rows.StructScan(&m); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan price modifier").
			Mark(ierr.ErrDatabase)
	}

	return &m, nil
}

func (r *priceModifierRepository) List(ctx context.Context, filter *types.PriceModifierFilter) ([]*modifier.PriceModifier, error) {
	query := `
		SELECT * FROM price_modifiers
		WHERE tenant_id = :tenant_id
		AND status = :status`

	params := map[string]interface{}{
		"tenant_id": types.GetTenantID(ctx),
		"status":    filter.GetStatus(),
	}

	query, params = r.applyFilter(query, params, filter)

	query += orderByClause(filter.GetSort(), filter.GetOrder(), priceModifierSortColumns)

	if filter != nil && !filter.IsUnlimited() {
		query += " LIMIT :limit OFFSET :offset"
		params["limit"] = filter.GetLimit()
		params["offset"] = filter.GetOffset()
	}

	return r.queryModifiers(ctx, query, params)
}

func (r *priceModifierRepository) Count(ctx context.Context, filter *types.PriceModifierFilter) (int, error) {
	query := `
		SELECT COUNT(*) FROM price_modifiers
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
			WithHint("Failed to count price modifiers").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var count int
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return 0, ierr.WithError(err).
				WithHint("Failed to scan price modifier count").
				Mark(ierr.ErrDatabase)
		}
	}

	return count, nil
}

func (r *priceModifierRepository) applyFilter(query string, params map[string]interface{}, filter *types.PriceModifierFilter) (string, map[string]interface{}) {
	if filter == nil {
		return query, params
	}

	if len(filter.Scopes) > 0 {
		scopes := make([]string, len(filter.Scopes))
		for i, s := range filter.Scopes {
			scopes[i] = string(s)
		}
		query += " AND applies_to = ANY(string_to_array(:scopes, ','))"
		params["scopes"] = strings.Join(scopes, ",")
	}

	if len(filter.GeoZoneIDs) > 0 {
		query += " AND geo_zone_id = ANY(string_to_array(:geo_zone_ids, ','))"
		params["geo_zone_ids"] = strings.Join(filter.GeoZoneIDs, ",")
	}

	if filter.SegmentID != nil {
		query += " AND user_segment_id = :user_segment_id"
		params["user_segment_id"] = *filter.SegmentID
	}

	if filter.ProductID != nil {
		query += " AND product_id = :product_id"
		params["product_id"] = *filter.ProductID
	}

	if len(filter.PricingKeys) > 0 {
		query += " AND pricing_key = ANY(string_to_array(:pricing_keys, ','))"
		params["pricing_keys"] = strings.Join(filter.PricingKeys, ",")
	}

	if len(filter.PromoCodes) > 0 {
		query += " AND promo_code = ANY(string_to_array(:promo_codes, ','))"
		params["promo_codes"] = strings.Join(filter.PromoCodes, ",")
	}

	return query, params
}

// ListCandidates gathers every modifier that could apply to the resolved
// pricing context in one round trip. Scope discriminators keep the OR
// branches disjoint so a modifier can never match through the wrong scope.
func (r *priceModifierRepository) ListCandidates(ctx context.Context, params modifier.CandidateParams) ([]*modifier.PriceModifier, error) {
	conditions := []string{"applies_to = :scope_global"}

	queryParams := map[string]interface{}{
		"tenant_id":    types.GetTenantID(ctx),
		"status":       types.StatusPublished,
		"scope_global": types.ModifierScopeGlobal,
	}

	if len(params.GeoZoneIDs) > 0 {
		conditions = append(conditions, "(applies_to = :scope_zone AND geo_zone_id = ANY(string_to_array(:geo_zone_ids, ',')))")
		queryParams["scope_zone"] = types.ModifierScopeZone
		queryParams["geo_zone_ids"] = strings.Join(params.GeoZoneIDs, ",")
	}

	if params.UserSegmentID != "" {
		conditions = append(conditions, "(applies_to = :scope_segment AND user_segment_id = :user_segment_id)")
		queryParams["scope_segment"] = types.ModifierScopeSegment
		queryParams["user_segment_id"] = params.UserSegmentID
	}

	if params.ProductID != "" {
		conditions = append(conditions, "(applies_to = :scope_product AND product_id = :product_id)")
		queryParams["scope_product"] = types.ModifierScopeProduct
		queryParams["product_id"] = params.ProductID
	}

	if len(params.PricingKeys) > 0 {
		conditions = append(conditions, "(applies_to = :scope_attribute AND pricing_key = ANY(string_to_array(:pricing_keys, ',')))")
		queryParams["scope_attribute"] = types.ModifierScopeAttribute
		queryParams["pricing_keys"] = strings.Join(params.PricingKeys, ",")
	}

	if len(params.PromoCodes) > 0 {
		conditions = append(conditions, "(applies_to = :scope_promo AND promo_code = ANY(string_to_array(:promo_codes, ',')))")
		queryParams["scope_promo"] = types.ModifierScopePromoCode
		queryParams["promo_codes"] = strings.Join(params.PromoCodes, ",")
	}

	query := `
		SELECT * FROM price_modifiers
		WHERE tenant_id = :tenant_id
		AND status = :status
		AND (` + strings.Join(conditions, " OR ") + `)
		ORDER BY priority ASC, id ASC`

	r.logger.Debugw("listing candidate modifiers",
		"geo_zone_ids", params.GeoZoneIDs,
		"user_segment_id", params.UserSegmentID,
		"product_id", params.ProductID,
		"pricing_keys", params.PricingKeys,
		"promo_codes", params.PromoCodes,
		"tenant_id", types.GetTenantID(ctx),
	)

	return r.queryModifiers(ctx, query, queryParams)
}

func (r *priceModifierRepository) queryModifiers(ctx context.Context, query string, params map[string]interface{}) ([]*modifier.PriceModifier, error) {
	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list price modifiers").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var modifiers []*modifier.PriceModifier
	for rows.Next() {
		var m modifier.PriceModifier
		if err := rows.StructScan(&m); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan price modifier").
				Mark(ierr.ErrDatabase)
		}
		modifiers = append(modifiers, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to iterate price modifier rows").
			Mark(ierr.ErrDatabase)
	}

	return modifiers, nil
}

func (r *priceModifierRepository) Update(ctx context.Context, m *modifier.PriceModifier) error {
	m.Touch(ctx)

	query := `
		UPDATE price_modifiers SET
			name = :name,
			modifier_type = :modifier_type,
			value = :value,
			priority = :priority,
			usage_limit = :usage_limit,
			valid_from = :valid_from,
			valid_until = :valid_until,
			status = :status,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id
		AND tenant_id = :tenant_id`

	result, err := r.db.NamedExecContext(ctx, query, m)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update price modifier").
			Mark(ierr.ErrDatabase)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to get rows affected").
			Mark(ierr.ErrDatabase)
	}
	if rows == 0 {
		return ierr.NewError("price modifier not found").
			WithHintf("Price modifier with ID %s was not found", m.ID).
			Mark(ierr.ErrNotFound)
	}

	return nil
}

func (r *priceModifierRepository) Delete(ctx context.Context, id string) error {
	query := `
		UPDATE price_modifiers SET
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
			WithHint("Failed to delete price modifier").
			Mark(ierr.ErrDatabase)
	}

	return nil
}

// IncrementUsage bumps the usage counter with a guarded update instead of a
// read then write, so concurrent redemptions serialize on the row and the
// limit can never be overshot. Zero rows affected means the limit was
// already reached (or the modifier is gone) and the caller must abort.
func (r *priceModifierRepository) IncrementUsage(ctx context.Context, id string) error {
	query := `
		UPDATE price_modifiers SET
			used_count = used_count + 1,
			updated_at = :updated_at
		WHERE id = :id
		AND tenant_id = :tenant_id
		AND status = :status
		AND (usage_limit IS NULL OR used_count < usage_limit)`

	result, err := r.db.NamedExecContext(ctx, query, map[string]interface{}{
		"id":         id,
		"tenant_id":  types.GetTenantID(ctx),
		"status":     types.StatusPublished,
		"updated_at": time.Now().UTC(),
	})
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to increment promo usage").
			Mark(ierr.ErrDatabase)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to get rows affected").
			Mark(ierr.ErrDatabase)
	}
	if rows == 0 {
		return ierr.NewError("promo code usage limit reached").
			WithHint("This promo code has no redemptions left").
			WithReportableDetails(map[string]any{
				"modifier_id": id,
			}).
			Mark(ierr.ErrVersionConflict)
	}

	return nil
}
