package types

import (
	"time"

	ierr "github.com/printprice/printprice/internal/errors"
	"github.com/printprice/printprice/internal/validator"
	"github.com/samber/lo"
)

const (
	OrderDesc = "desc"
	OrderAsc  = "asc"

	FILTER_DEFAULT_LIMIT  = 50
	FILTER_DEFAULT_STATUS = string(StatusPublished)
	FILTER_DEFAULT_SORT   = "created_at"
	FILTER_DEFAULT_ORDER  = OrderDesc
)

// BaseFilter is the pagination and ordering contract every entity filter
// satisfies through its embedded QueryFilter.
type BaseFilter interface {
	GetLimit() int
	GetOffset() int
	GetStatus() string
	GetSort() string
	GetOrder() string
	Validate() error
	IsUnlimited() bool
}

// QueryFilter holds the common list-endpoint query params. All fields are
// optional; nil falls back to the FILTER_DEFAULT_* values, except Limit
// where nil means the query is unlimited.
type QueryFilter struct {
	Limit  *int    `json:"limit,omitempty" form:"limit" validate:"omitempty,min=1,max=1000"`
	Offset *int    `json:"offset,omitempty" form:"offset" validate:"omitempty,min=0"`
	Status *Status `json:"status,omitempty" form:"status"`
	Sort   *string `json:"sort,omitempty" form:"sort"`
	Order  *string `json:"order,omitempty" form:"order" validate:"omitempty,oneof=asc desc"`
}

// NewDefaultQueryFilter returns a filter for the first page with defaults.
func NewDefaultQueryFilter() *QueryFilter {
	return &QueryFilter{
		Limit:  lo.ToPtr(FILTER_DEFAULT_LIMIT),
		Offset: lo.ToPtr(0),
		Status: lo.ToPtr(StatusPublished),
		Sort:   lo.ToPtr(FILTER_DEFAULT_SORT),
		Order:  lo.ToPtr(FILTER_DEFAULT_ORDER),
	}
}

// NewNoLimitQueryFilter returns a filter that fetches everything. For
// internal fan-out reads, never bound from request input.
func NewNoLimitQueryFilter() *QueryFilter {
	return &QueryFilter{
		Offset: lo.ToPtr(0),
		Status: lo.ToPtr(StatusPublished),
		Sort:   lo.ToPtr(FILTER_DEFAULT_SORT),
		Order:  lo.ToPtr(FILTER_DEFAULT_ORDER),
	}
}

// IsUnlimited reports whether the query should skip pagination.
func (f QueryFilter) IsUnlimited() bool {
	return f.Limit == nil
}

// GetLimit returns the page size, or 0 for unlimited queries.
func (f QueryFilter) GetLimit() int {
	if f.Limit == nil {
		return 0
	}
	return *f.Limit
}

// GetOffset returns the page offset.
func (f QueryFilter) GetOffset() int {
	return lo.FromPtrOr(f.Offset, 0)
}

// GetSort returns the requested sort key. Repositories map it onto a column
// through their own whitelist.
func (f QueryFilter) GetSort() string {
	return lo.FromPtrOr(f.Sort, FILTER_DEFAULT_SORT)
}

// GetOrder returns the sort direction, asc or desc.
func (f QueryFilter) GetOrder() string {
	return lo.FromPtrOr(f.Order, FILTER_DEFAULT_ORDER)
}

// GetStatus returns the status rows are filtered to.
func (f QueryFilter) GetStatus() string {
	if f.Status == nil {
		return FILTER_DEFAULT_STATUS
	}
	return string(*f.Status)
}

// Validate checks the filter against its field constraints.
func (f QueryFilter) Validate() error {
	return validator.ValidateRequest(f)
}

// TimeRangeFilter narrows list queries to a closed time window.
type TimeRangeFilter struct {
	StartTime *time.Time `json:"start_time,omitempty" form:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty" form:"end_time"`
}

// Validate checks the window is ordered.
func (f TimeRangeFilter) Validate() error {
	if f.StartTime != nil && f.EndTime != nil && f.EndTime.Before(*f.StartTime) {
		return ierr.NewError("invalid time range").
			WithHint("end_time must be after start_time").
			Mark(ierr.ErrValidation)
	}
	return nil
}
