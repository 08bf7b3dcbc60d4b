package postgres

import (
	"context"
	"time"

	"github.com/printprice/printprice/internal/cache"
	"github.com/printprice/printprice/internal/domain/geozone"
	ierr "github.com/printprice/printprice/internal/errors"
	"github.com/printprice/printprice/internal/logger"
	"github.com/printprice/printprice/internal/postgres"
	"github.com/printprice/printprice/internal/types"
)

// geoZoneSortColumns whitelists the sort keys the zone list accepts.
var geoZoneSortColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"name":       "name",
	"code":       "code",
}

type geoZoneRepository struct {
	db     *postgres.DB
	logger *logger.Logger
	cache  cache.Cache
}

func NewGeoZoneRepository(db *postgres.DB, logger *logger.Logger, cache cache.Cache) geozone.Repository {
	return &geoZoneRepository{db: db, logger: logger, cache: cache}
}

func (r *geoZoneRepository) Create(ctx context.Context, zone *geozone.GeoZone) error {
	query := `
		INSERT INTO geo_zones (
			id, tenant_id, name, code, parent_id, is_restricted,
			warehouse_code, currency, pincode_from, pincode_to,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :tenant_id, :name, :code, :parent_id, :is_restricted,
			:warehouse_code, :currency, :pincode_from, :pincode_to,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	r.logger.Debugw("creating geo zone",
		"geo_zone_id", zone.ID,
		"code", zone.Code,
		"tenant_id", zone.TenantID,
	)

	_, err := r.db.NamedExecContext(ctx, query, zone)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create geo zone").
			Mark(ierr.ErrDatabase)
	}

	// A new zone can change which zone is the narrowest match for already
	// cached pincode lookups
	r.invalidateCache(ctx)
	return nil
}

func (r *geoZoneRepository) Get(ctx context.Context, id string) (*geozone.GeoZone, error) {
	if cached := r.getCache(ctx, id); cached != nil {
		return cached, nil
	}

	query := `
		SELECT * FROM geo_zones
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
			WithHint("Failed to get geo zone").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("geo zone not found").
			WithHintf("Geo zone with ID %s was not found", id).
			WithReportableDetails(map[string]any{
				"geo_zone_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}

	var zone geozone.GeoZone
	if err := rows.StructScan(&zone); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan geo zone").
			Mark(ierr.ErrDatabase)
	}

	r.setCache(ctx, &zone)
	return &zone, nil
}

func (r *geoZoneRepository) List(ctx context.Context, filter *types.GeoZoneFilter) ([]*geozone.GeoZone, error) {
	query := `
		SELECT * FROM geo_zones
		WHERE tenant_id = :tenant_id
		AND status = :status`

	params := map[string]interface{}{
		"tenant_id": types.GetTenantID(ctx),
		"status":    filter.GetStatus(),
	}

	query, params = r.applyFilter(query, params, filter)

	query += orderByClause(filter.GetSort(), filter.GetOrder(), geoZoneSortColumns)

	if filter != nil && !filter.IsUnlimited() {
		query += " LIMIT :limit OFFSET :offset"
		params["limit"] = filter.GetLimit()
		params["offset"] = filter.GetOffset()
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list geo zones").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var zones []*geozone.GeoZone
	for rows.Next() {
		var zone geozone.GeoZone
		if err := rows.StructScan(&zone); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan geo zone").
				Mark(ierr.ErrDatabase)
		}
		zones = append(zones, &zone)
	}

	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to iterate geo zone rows").
			Mark(ierr.ErrDatabase)
	}

	return zones, nil
}

func (r *geoZoneRepository) Count(ctx context.Context, filter *types.GeoZoneFilter) (int, error) {
	query := `
		SELECT COUNT(*) FROM geo_zones
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
			WithHint("Failed to count geo zones").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var count int
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return 0, ierr.WithError(err).
				WithHint("Failed to scan geo zone count").
				Mark(ierr.ErrDatabase)
		}
	}

	return count, nil
}

func (r *geoZoneRepository) applyFilter(query string, params map[string]interface{}, filter *types.GeoZoneFilter) (string, map[string]interface{}) {
	query += " AND status = :status"
	if filter != nil && filter.QueryFilter != nil && filter.Status != nil {
		params["status"] = *filter.Status
	} else {
		params["status"] = types.StatusPublished
	}

	if filter == nil {
		return query, params
	}

	if filter.ParentID != nil {
		query += " AND parent_id = :parent_id"
		params["parent_id"] = *filter.ParentID
	}

	if filter.IsRestricted != nil {
		query += " AND is_restricted = :is_restricted"
		params["is_restricted"] = *filter.IsRestricted
	}

	return query, params
}

func (r *geoZoneRepository) Update(ctx context.Context, zone *geozone.GeoZone) error {
	zone.Touch(ctx)

	query := `
		UPDATE geo_zones SET
			name = :name,
			code = :code,
			parent_id = :parent_id,
			is_restricted = :is_restricted,
			warehouse_code = :warehouse_code,
			currency = :currency,
			pincode_from = :pincode_from,
			pincode_to = :pincode_to,
			status = :status,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id
		AND tenant_id = :tenant_id`

	result, err := r.db.NamedExecContext(ctx, query, zone)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update geo zone").
			Mark(ierr.ErrDatabase)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to get rows affected").
			Mark(ierr.ErrDatabase)
	}
	if rows == 0 {
		return ierr.NewError("geo zone not found").
			WithHintf("Geo zone with ID %s was not found", zone.ID).
			Mark(ierr.ErrNotFound)
	}

	r.invalidateCache(ctx)
	return nil
}

func (r *geoZoneRepository) Delete(ctx context.Context, id string) error {
	query := `
		UPDATE geo_zones SET
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
			WithHint("Failed to delete geo zone").
			Mark(ierr.ErrDatabase)
	}

	r.invalidateCache(ctx)
	return nil
}

// FindByPincode relies on pincodes being stored as zero padded fixed width
// strings, so lexicographic range comparison matches numeric order. Ties
// between overlapping zones go to the narrowest range.
func (r *geoZoneRepository) FindByPincode(ctx context.Context, pincode string) (*geozone.GeoZone, error) {
	if cached := r.getPincodeCache(ctx, pincode); cached != nil {
		return cached, nil
	}

	query := `
		SELECT * FROM geo_zones
		WHERE tenant_id = :tenant_id
		AND status = :status
		AND pincode_from IS NOT NULL
		AND pincode_to IS NOT NULL
		AND pincode_from <= :pincode
		AND pincode_to >= :pincode
		ORDER BY (pincode_to::bigint - pincode_from::bigint) ASC, id ASC
		LIMIT 1`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"tenant_id": types.GetTenantID(ctx),
		"status":    types.StatusPublished,
		"pincode":   pincode,
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to find geo zone by pincode").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("no geo zone covers pincode").
			WithHintf("No serviceable zone covers pincode %s", pincode).
			WithReportableDetails(map[string]any{
				"pincode": pincode,
			}).
			Mark(ierr.ErrNotFound)
	}

	var zone geozone.GeoZone
	if err := rows.StructScan(&zone); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan geo zone").
			Mark(ierr.ErrDatabase)
	}

	r.setPincodeCache(ctx, pincode, &zone)
	return &zone, nil
}

// Zone lookups by id and by pincode share the zone prefix, so one prefix
// sweep on any zone write invalidates both. Pincode results cannot be
// invalidated individually: editing one zone's range can change the
// narrowest match for pincodes cached against other zones.
func (r *geoZoneRepository) setCache(ctx context.Context, zone *geozone.GeoZone) {
	key := cache.GenerateKey(cache.PrefixGeoZone, types.GetTenantID(ctx), zone.ID)
	r.cache.Set(ctx, key, zone, cache.DefaultExpiration)
}

func (r *geoZoneRepository) getCache(ctx context.Context, id string) *geozone.GeoZone {
	key := cache.GenerateKey(cache.PrefixGeoZone, types.GetTenantID(ctx), id)
	if value, found := r.cache.Get(ctx, key); found {
		if zone, ok := value.(*geozone.GeoZone); ok {
			return zone
		}
	}
	return nil
}

func (r *geoZoneRepository) setPincodeCache(ctx context.Context, pincode string, zone *geozone.GeoZone) {
	key := cache.GenerateKey(cache.PrefixGeoZone, types.GetTenantID(ctx), "pincode", pincode)
	r.cache.Set(ctx, key, zone, cache.DefaultExpiration)
}

func (r *geoZoneRepository) getPincodeCache(ctx context.Context, pincode string) *geozone.GeoZone {
	key := cache.GenerateKey(cache.PrefixGeoZone, types.GetTenantID(ctx), "pincode", pincode)
	if value, found := r.cache.Get(ctx, key); found {
		if zone, ok := value.(*geozone.GeoZone); ok {
			return zone
		}
	}
	return nil
}

func (r *geoZoneRepository) invalidateCache(ctx context.Context) {
	r.cache.DeleteByPrefix(ctx, cache.GenerateKey(cache.PrefixGeoZone, types.GetTenantID(ctx)))
}
