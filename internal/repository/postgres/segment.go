package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/printprice/printprice/internal/cache"
	"github.com/printprice/printprice/internal/domain/segment"
	ierr "github.com/printprice/printprice/internal/errors"
	"github.com/printprice/printprice/internal/logger"
	"github.com/printprice/printprice/internal/postgres"
	"github.com/printprice/printprice/internal/types"
)

// userSegmentSortColumns whitelists the sort keys the segment list accepts.
var userSegmentSortColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"name":       "name",
	"code":       "code",
}

type userSegmentRepository struct {
	db     *postgres.DB
	logger *logger.Logger
	cache  cache.Cache
}

func NewUserSegmentRepository(db *postgres.DB, logger *logger.Logger, cache cache.Cache) segment.Repository {
	return &userSegmentRepository{db: db, logger: logger, cache: cache}
}

func (r *userSegmentRepository) Create(ctx context.Context, s *segment.UserSegment) error {
	query := `
		INSERT INTO user_segments (
			id, tenant_id, code, name, description, is_default,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :tenant_id, :code, :name, :description, :is_default,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	r.logger.Debugw("creating user segment",
		"segment_id", s.ID,
		"code", s.Code,
		"tenant_id", s.TenantID,
	)

	_, err := r.db.NamedExecContext(ctx, query, s)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create user segment").
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *userSegmentRepository) Get(ctx context.Context, id string) (*segment.UserSegment, error) {
	if cached := r.getCache(ctx, id); cached != nil {
		return cached, nil
	}

	query := `
		SELECT * FROM user_segments
		WHERE id = :id
		AND tenant_id = :tenant_id
		AND status = :status`

	s, err := r.getOne(ctx, query, map[string]interface{}{
		"id":        id,
		"tenant_id": types.GetTenantID(ctx),
		"status":    types.StatusPublished,
	}, "Segment with ID "+id+" was not found")
	if err != nil {
		return nil, err
	}

	r.setCache(ctx, s)
	return s, nil
}

func (r *userSegmentRepository) GetByCode(ctx context.Context, code string) (*segment.UserSegment, error) {
	query := `
		SELECT * FROM user_segments
		WHERE code = :code
		AND tenant_id = :tenant_id
		AND status = :status`

	return r.getOne(ctx, query, map[string]interface{}{
		"code":      code,
		"tenant_id": types.GetTenantID(ctx),
		"status":    types.StatusPublished,
	}, "Segment with code "+code+" was not found")
}

// GetDefault returns the segment flagged as default. Exactly one default is
// guaranteed by SetDefault, so the first row wins.
func (r *userSegmentRepository) GetDefault(ctx context.Context) (*segment.UserSegment, error) {
	query := `
		SELECT * FROM user_segments
		WHERE is_default = TRUE
		AND tenant_id = :tenant_id
		AND status = :status
		LIMIT 1`

	return r.getOne(ctx, query, map[string]interface{}{
		"tenant_id": types.GetTenantID(ctx),
		"status":    types.StatusPublished,
	}, "No default segment is configured")
}

func (r *userSegmentRepository) getOne(ctx context.Context, query string, params map[string]interface{}, hint string) (*segment.UserSegment, error) {
	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to get user segment").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("user segment not found").
			WithHint(hint).
			Mark(ierr.ErrNotFound)
	}

	var s segment.UserSegment
	if err := rows.StructScan(&s); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan user segment").
			Mark(ierr.ErrDatabase)
	}

	return &s, nil
}

func (r *userSegmentRepository) List(ctx context.Context, filter *types.UserSegmentFilter) ([]*segment.UserSegment, error) {
	query := `
		SELECT * FROM user_segments
		WHERE tenant_id = :tenant_id
		AND status = :status`

	params := map[string]interface{}{
		"tenant_id": types.GetTenantID(ctx),
		"status":    filter.GetStatus(),
	}

	if filter != nil && len(filter.Codes) > 0 {
		query += " AND code = ANY(string_to_array(:codes, ','))"
		params["codes"] = strings.Join(filter.Codes, ",")
	}

	query += orderByClause(filter.GetSort(), filter.GetOrder(), userSegmentSortColumns)

	if filter != nil && !filter.IsUnlimited() {
		query += " LIMIT :limit OFFSET :offset"
		params["limit"] = filter.GetLimit()
		params["offset"] = filter.GetOffset()
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list user segments").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var segments []*segment.UserSegment
	for rows.Next() {
		var s segment.UserSegment
		if err := rows.StructScan(&s); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan user segment").
				Mark(ierr.ErrDatabase)
		}
		segments = append(segments, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to iterate user segment rows").
			Mark(ierr.ErrDatabase)
	}

	return segments, nil
}

func (r *userSegmentRepository) Count(ctx context.Context, filter *types.UserSegmentFilter) (int, error) {
	query := `
		SELECT COUNT(*) FROM user_segments
		WHERE tenant_id = :tenant_id
		AND status = :status`

	params := map[string]interface{}{
		"tenant_id": types.GetTenantID(ctx),
		"status":    filter.GetStatus(),
	}

	if filter != nil && len(filter.Codes) > 0 {
		query += " AND code = ANY(string_to_array(:codes, ','))"
		params["codes"] = strings.Join(filter.Codes, ",")
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count user segments").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var count int
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return 0, ierr.WithError(err).
				WithHint("Failed to scan user segment count").
				Mark(ierr.ErrDatabase)
		}
	}

	return count, nil
}

func (r *userSegmentRepository) Update(ctx context.Context, s *segment.UserSegment) error {
	s.Touch(ctx)

	query := `
		UPDATE user_segments SET
			code = :code,
			name = :name,
			description = :description,
			status = :status,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id
		AND tenant_id = :tenant_id`

	result, err := r.db.NamedExecContext(ctx, query, s)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update user segment").
			Mark(ierr.ErrDatabase)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to get rows affected").
			Mark(ierr.ErrDatabase)
	}
	if rows == 0 {
		return ierr.NewError("user segment not found").
			WithHintf("Segment with ID %s was not found", s.ID).
			Mark(ierr.ErrNotFound)
	}

	r.deleteCache(ctx, s.ID)
	return nil
}

func (r *userSegmentRepository) Delete(ctx context.Context, id string) error {
	query := `
		UPDATE user_segments SET
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
			WithHint("Failed to delete user segment").
			Mark(ierr.ErrDatabase)
	}

	r.deleteCache(ctx, id)
	return nil
}

// SetDefault unsets every other default and flags the given segment inside
// one transaction so there is never zero or more than one default.
func (r *userSegmentRepository) SetDefault(ctx context.Context, id string) error {
	return r.db.WithTx(ctx, func(ctx context.Context) error {
		unset := `
			UPDATE user_segments SET
				is_default = FALSE,
				updated_at = :updated_at,
				updated_by = :updated_by
			WHERE tenant_id = :tenant_id
			AND is_default = TRUE
			AND id != :id`

		params := map[string]interface{}{
			"id":         id,
			"tenant_id":  types.GetTenantID(ctx),
			"updated_at": time.Now().UTC(),
			"updated_by": types.GetUserID(ctx),
		}

		if _, err := r.db.NamedExecContext(ctx, unset, params); err != nil {
			return ierr.WithError(err).
				WithHint("Failed to unset previous default segment").
				Mark(ierr.ErrDatabase)
		}

		set := `
			UPDATE user_segments SET
				is_default = TRUE,
				updated_at = :updated_at,
				updated_by = :updated_by
			WHERE id = :id
			AND tenant_id = :tenant_id
			AND status = :status`

		params["status"] = types.StatusPublished

		result, err := r.db.NamedExecContext(ctx, set, params)
		if err != nil {
			return ierr.WithError(err).
				WithHint("Failed to set default segment").
				Mark(ierr.ErrDatabase)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return ierr.WithError(err).
				WithHint("Failed to get rows affected").
				Mark(ierr.ErrDatabase)
		}
		if rows == 0 {
			return ierr.NewError("user segment not found").
				WithHintf("Segment with ID %s was not found", id).
				Mark(ierr.ErrNotFound)
		}

		r.deleteCache(ctx, id)
		return nil
	})
}

func (r *userSegmentRepository) GetByUser(ctx context.Context, userID string) (*segment.UserSegment, error) {
	query := `
		SELECT s.* FROM user_segments s
		JOIN user_segment_assignments a ON a.segment_id = s.id AND a.tenant_id = s.tenant_id
		WHERE a.user_id = :user_id
		AND s.tenant_id = :tenant_id
		AND s.status = :status`

	return r.getOne(ctx, query, map[string]interface{}{
		"user_id":   userID,
		"tenant_id": types.GetTenantID(ctx),
		"status":    types.StatusPublished,
	}, "User "+userID+" has no segment assignment")
}

func (r *userSegmentRepository) AssignUser(ctx context.Context, userID string, segmentID string) error {
	query := `
		INSERT INTO user_segment_assignments (
			tenant_id, user_id, segment_id, created_at, updated_at
		) VALUES (
			:tenant_id, :user_id, :segment_id, :created_at, :updated_at
		)
		ON CONFLICT (tenant_id, user_id) DO UPDATE SET
			segment_id = EXCLUDED.segment_id,
			updated_at = EXCLUDED.updated_at`

	now := time.Now().UTC()
	_, err := r.db.NamedExecContext(ctx, query, map[string]interface{}{
		"tenant_id":  types.GetTenantID(ctx),
		"user_id":    userID,
		"segment_id": segmentID,
		"created_at": now,
		"updated_at": now,
	})
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to assign user to segment").
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *userSegmentRepository) setCache(ctx context.Context, s *segment.UserSegment) {
	key := cache.GenerateKey(cache.PrefixUserSegment, types.GetTenantID(ctx), s.ID)
	r.cache.Set(ctx, key, s, cache.DefaultExpiration)
}

func (r *userSegmentRepository) getCache(ctx context.Context, id string) *segment.UserSegment {
	key := cache.GenerateKey(cache.PrefixUserSegment, types.GetTenantID(ctx), id)
	if value, found := r.cache.Get(ctx, key); found {
		if s, ok := value.(*segment.UserSegment); ok {
			return s
		}
	}
	return nil
}

func (r *userSegmentRepository) deleteCache(ctx context.Context, id string) {
	key := cache.GenerateKey(cache.PrefixUserSegment, types.GetTenantID(ctx), id)
	r.cache.Delete(ctx, key)
}
