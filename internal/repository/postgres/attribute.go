package postgres

import (
	"context"
	"time"

	"github.com/printprice/printprice/internal/cache"
	"github.com/printprice/printprice/internal/domain/attribute"
	ierr "github.com/printprice/printprice/internal/errors"
	"github.com/printprice/printprice/internal/logger"
	"github.com/printprice/printprice/internal/postgres"
	"github.com/printprice/printprice/internal/types"
)

// attributeTypeSortColumns and attributeRuleSortColumns whitelist the sort
// keys the attribute list endpoints accept.
var (
	attributeTypeSortColumns = map[string]string{
		"created_at": "created_at",
		"updated_at": "updated_at",
		"name":       "name",
		"input_type": "input_type",
	}
	attributeRuleSortColumns = map[string]string{
		"created_at": "created_at",
		"updated_at": "updated_at",
		"action":     "action",
	}
)

type attributeRepository struct {
	db     *postgres.DB
	logger *logger.Logger
	cache  cache.Cache
}

func NewAttributeRepository(db *postgres.DB, logger *logger.Logger, cache cache.Cache) attribute.Repository {
	return &attributeRepository{db: db, logger: logger, cache: cache}
}

func (r *attributeRepository) CreateType(ctx context.Context, t *attribute.AttributeType) error {
	query := `
		INSERT INTO attribute_types (
			id, tenant_id, name, display_name, input_type, is_required,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :tenant_id, :name, :display_name, :input_type, :is_required,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	r.logger.Debugw("creating attribute type",
		"attribute_type_id", t.ID,
		"name", t.Name,
		"tenant_id", t.TenantID,
	)

	_, err := r.db.NamedExecContext(ctx, query, t)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create attribute type").
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *attributeRepository) GetType(ctx context.Context, id string) (*attribute.AttributeType, error) {
	if cached := r.getTypeCache(ctx, id); cached != nil {
		return cached, nil
	}

	query := `
		SELECT * FROM attribute_types
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
			WithHint("Failed to get attribute type").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("attribute type not found").
			WithHintf("Attribute type with ID %s was not found", id).
			WithReportableDetails(map[string]any{
				"attribute_type_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}

	var t attribute.AttributeType
	if err := rows.StructScan(&t); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan attribute type").
			Mark(ierr.ErrDatabase)
	}

	r.setTypeCache(ctx, &t)
	return &t, nil
}

func (r *attributeRepository) ListTypes(ctx context.Context, filter *types.AttributeTypeFilter) ([]*attribute.AttributeType, error) {
	query := `
		SELECT * FROM attribute_types
		WHERE tenant_id = :tenant_id
		AND status = :status`

	params := map[string]interface{}{
		"tenant_id": types.GetTenantID(ctx),
		"status":    filter.GetStatus(),
	}

	if filter != nil {
		if filter.InputType != nil {
			query += " AND input_type = :input_type"
			params["input_type"] = *filter.InputType
		}
		if filter.Name != nil && *filter.Name != "" {
			query += " AND name ILIKE :name"
			params["name"] = "%" + *filter.Name + "%"
		}
	}

	query += orderByClause(filter.GetSort(), filter.GetOrder(), attributeTypeSortColumns)

	if filter != nil && !filter.IsUnlimited() {
		query += " LIMIT :limit OFFSET :offset"
		params["limit"] = filter.GetLimit()
		params["offset"] = filter.GetOffset()
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list attribute types").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var attrTypes []*attribute.AttributeType
	for rows.Next() {
		var t attribute.AttributeType
		if err := rows.StructScan(&t); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan attribute type").
				Mark(ierr.ErrDatabase)
		}
		attrTypes = append(attrTypes, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to iterate attribute type rows").
			Mark(ierr.ErrDatabase)
	}

	return attrTypes, nil
}

func (r *attributeRepository) CountTypes(ctx context.Context, filter *types.AttributeTypeFilter) (int, error) {
	query := `
		SELECT COUNT(*) FROM attribute_types
		WHERE tenant_id = :tenant_id
		AND status = :status`

	params := map[string]interface{}{
		"tenant_id": types.GetTenantID(ctx),
		"status":    filter.GetStatus(),
	}

	if filter != nil {
		if filter.InputType != nil {
			query += " AND input_type = :input_type"
			params["input_type"] = *filter.InputType
		}
		if filter.Name != nil && *filter.Name != "" {
			query += " AND name ILIKE :name"
			params["name"] = "%" + *filter.Name + "%"
		}
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count attribute types").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var count int
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return 0, ierr.WithError(err).
				WithHint("Failed to scan attribute type count").
				Mark(ierr.ErrDatabase)
		}
	}

	return count, nil
}

func (r *attributeRepository) UpdateType(ctx context.Context, t *attribute.AttributeType) error {
	t.Touch(ctx)

	query := `
		UPDATE attribute_types SET
			name = :name,
			display_name = :display_name,
			input_type = :input_type,
			is_required = :is_required,
			status = :status,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id
		AND tenant_id = :tenant_id`

	result, err := r.db.NamedExecContext(ctx, query, t)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update attribute type").
			Mark(ierr.ErrDatabase)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to get rows affected").
			Mark(ierr.ErrDatabase)
	}
	if rows == 0 {
		return ierr.NewError("attribute type not found").
			WithHintf("Attribute type with ID %s was not found", t.ID).
			Mark(ierr.ErrNotFound)
	}

	r.deleteTypeCache(ctx, t.ID)
	return nil
}

func (r *attributeRepository) DeleteType(ctx context.Context, id string) error {
	query := `
		UPDATE attribute_types SET
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
			WithHint("Failed to delete attribute type").
			Mark(ierr.ErrDatabase)
	}

	r.deleteTypeCache(ctx, id)
	return nil
}

func (r *attributeRepository) CreateValue(ctx context.Context, v *attribute.AttributeValue) error {
	query := `
		INSERT INTO attribute_values (
			id, tenant_id, attribute_type_id, product_id, value,
			display_label, pricing_key, sort_order,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :tenant_id, :attribute_type_id, :product_id, :value,
			:display_label, :pricing_key, :sort_order,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	_, err := r.db.NamedExecContext(ctx, query, v)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create attribute value").
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *attributeRepository) GetValue(ctx context.Context, id string) (*attribute.AttributeValue, error) {
	query := `
		SELECT * FROM attribute_values
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
			WithHint("Failed to get attribute value").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("attribute value not found").
			WithHintf("Attribute value with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}

	var v attribute.AttributeValue
	if err := rows.StructScan(&v); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan attribute value").
			Mark(ierr.ErrDatabase)
	}

	return &v, nil
}

// ListValues returns the attribute type's values. Type level values carry a
// NULL product_id; when productID is given the product's overrides are
// included as well and the caller resolves shadowing.
func (r *attributeRepository) ListValues(ctx context.Context, attributeTypeID string, productID string) ([]*attribute.AttributeValue, error) {
	query := `
		SELECT * FROM attribute_values
		WHERE tenant_id = :tenant_id
		AND status = :status
		AND attribute_type_id = :attribute_type_id`

	params := map[string]interface{}{
		"tenant_id":         types.GetTenantID(ctx),
		"status":            types.StatusPublished,
		"attribute_type_id": attributeTypeID,
	}

	if productID != "" {
		query += " AND (product_id IS NULL OR product_id = :product_id)"
		params["product_id"] = productID
	} else {
		query += " AND product_id IS NULL"
	}

	query += " ORDER BY sort_order ASC, value ASC"

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list attribute values").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var values []*attribute.AttributeValue
	for rows.Next() {
		var v attribute.AttributeValue
		if err := rows.StructScan(&v); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan attribute value").
				Mark(ierr.ErrDatabase)
		}
		values = append(values, &v)
	}

	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to iterate attribute value rows").
			Mark(ierr.ErrDatabase)
	}

	return values, nil
}

func (r *attributeRepository) UpdateValue(ctx context.Context, v *attribute.AttributeValue) error {
	v.Touch(ctx)

	query := `
		UPDATE attribute_values SET
			value = :value,
			display_label = :display_label,
			pricing_key = :pricing_key,
			sort_order = :sort_order,
			status = :status,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id
		AND tenant_id = :tenant_id`

	result, err := r.db.NamedExecContext(ctx, query, v)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update attribute value").
			Mark(ierr.ErrDatabase)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to get rows affected").
			Mark(ierr.ErrDatabase)
	}
	if rows == 0 {
		return ierr.NewError("attribute value not found").
			WithHintf("Attribute value with ID %s was not found", v.ID).
			Mark(ierr.ErrNotFound)
	}

	return nil
}

func (r *attributeRepository) DeleteValue(ctx context.Context, id string) error {
	query := `
		UPDATE attribute_values SET
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
			WithHint("Failed to delete attribute value").
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *attributeRepository) CreateRule(ctx context.Context, rule *attribute.AttributeRule) error {
	query := `
		INSERT INTO attribute_rules (
			id, tenant_id, name, product_id, when_attribute_type_id,
			when_value, action, target_attribute_type_id, target_value,
			pricing_signal, status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :tenant_id, :name, :product_id, :when_attribute_type_id,
			:when_value, :action, :target_attribute_type_id, :target_value,
			:pricing_signal, :status, :created_at, :updated_at, :created_by, :updated_by
		)`

	_, err := r.db.NamedExecContext(ctx, query, rule)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create attribute rule").
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *attributeRepository) GetRule(ctx context.Context, id string) (*attribute.AttributeRule, error) {
	query := `
		SELECT * FROM attribute_rules
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
			WithHint("Failed to get attribute rule").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("attribute rule not found").
			WithHintf("Attribute rule with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}

	var rule attribute.AttributeRule
	if err := rows.StructScan(&rule); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan attribute rule").
			Mark(ierr.ErrDatabase)
	}

	return &rule, nil
}

func (r *attributeRepository) ListRules(ctx context.Context, filter *types.AttributeRuleFilter) ([]*attribute.AttributeRule, error) {
	query := `
		SELECT * FROM attribute_rules
		WHERE tenant_id = :tenant_id
		AND status = :status`

	params := map[string]interface{}{
		"tenant_id": types.GetTenantID(ctx),
		"status":    filter.GetStatus(),
	}

	if filter != nil {
		if filter.ProductID != nil {
			query += " AND (product_id IS NULL OR product_id = :product_id)"
			params["product_id"] = *filter.ProductID
		}
		if filter.AttributeTypeID != nil {
			query += " AND when_attribute_type_id = :when_attribute_type_id"
			params["when_attribute_type_id"] = *filter.AttributeTypeID
		}
		if filter.Action != nil {
			query += " AND action = :action"
			params["action"] = *filter.Action
		}
	}

	query += orderByClause(filter.GetSort(), filter.GetOrder(), attributeRuleSortColumns)

	if filter != nil && !filter.IsUnlimited() {
		query += " LIMIT :limit OFFSET :offset"
		params["limit"] = filter.GetLimit()
		params["offset"] = filter.GetOffset()
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list attribute rules").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var rules []*attribute.AttributeRule
	for rows.Next() {
		var rule attribute.AttributeRule
		if err := rows.StructScan(&rule); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan attribute rule").
				Mark(ierr.ErrDatabase)
		}
		rules = append(rules, &rule)
	}

	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to iterate attribute rule rows").
			Mark(ierr.ErrDatabase)
	}

	return rules, nil
}

func (r *attributeRepository) CountRules(ctx context.Context, filter *types.AttributeRuleFilter) (int, error) {
	query := `
		SELECT COUNT(*) FROM attribute_rules
		WHERE tenant_id = :tenant_id
		AND status = :status`

	params := map[string]interface{}{
		"tenant_id": types.GetTenantID(ctx),
		"status":    filter.GetStatus(),
	}

	if filter != nil {
		if filter.ProductID != nil {
			query += " AND (product_id IS NULL OR product_id = :product_id)"
			params["product_id"] = *filter.ProductID
		}
		if filter.AttributeTypeID != nil {
			query += " AND when_attribute_type_id = :when_attribute_type_id"
			params["when_attribute_type_id"] = *filter.AttributeTypeID
		}
		if filter.Action != nil {
			query += " AND action = :action"
			params["action"] = *filter.Action
		}
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count attribute rules").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var count int
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return 0, ierr.WithError(err).
				WithHint("Failed to scan attribute rule count").
				Mark(ierr.ErrDatabase)
		}
	}

	return count, nil
}

func (r *attributeRepository) UpdateRule(ctx context.Context, rule *attribute.AttributeRule) error {
	rule.Touch(ctx)

	query := `
		UPDATE attribute_rules SET
			name = :name,
			product_id = :product_id,
			when_attribute_type_id = :when_attribute_type_id,
			when_value = :when_value,
			action = :action,
			target_attribute_type_id = :target_attribute_type_id,
			target_value = :target_value,
			pricing_signal = :pricing_signal,
			status = :status,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id
		AND tenant_id = :tenant_id`

	result, err := r.db.NamedExecContext(ctx, query, rule)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update attribute rule").
			Mark(ierr.ErrDatabase)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to get rows affected").
			Mark(ierr.ErrDatabase)
	}
	if rows == 0 {
		return ierr.NewError("attribute rule not found").
			WithHintf("Attribute rule with ID %s was not found", rule.ID).
			Mark(ierr.ErrNotFound)
	}

	return nil
}

func (r *attributeRepository) DeleteRule(ctx context.Context, id string) error {
	query := `
		UPDATE attribute_rules SET
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
			WithHint("Failed to delete attribute rule").
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *attributeRepository) setTypeCache(ctx context.Context, t *attribute.AttributeType) {
	key := cache.GenerateKey(cache.PrefixAttributeType, types.GetTenantID(ctx), t.ID)
	r.cache.Set(ctx, key, t, cache.DefaultExpiration)
}

func (r *attributeRepository) getTypeCache(ctx context.Context, id string) *attribute.AttributeType {
	key := cache.GenerateKey(cache.PrefixAttributeType, types.GetTenantID(ctx), id)
	if value, found := r.cache.Get(ctx, key); found {
		if t, ok := value.(*attribute.AttributeType); ok {
			return t
		}
	}
	return nil
}

func (r *attributeRepository) deleteTypeCache(ctx context.Context, id string) {
	key := cache.GenerateKey(cache.PrefixAttributeType, types.GetTenantID(ctx), id)
	r.cache.Delete(ctx, key)
}
