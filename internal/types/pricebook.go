package types

import (
	ierr "github.com/printprice/printprice/internal/errors"
	"github.com/samber/lo"
)

// PriceKind represents what a price book entry's base price means for a
// quantity tier.
// PER_UNIT: the price is per unit and is multiplied by quantity downstream.
// RANGE_TOTAL: the price already covers the whole quantity tier, so quantity
// multiplication is skipped to avoid double counting.
type PriceKind string

const (
	PriceKindPerUnit    PriceKind = "PER_UNIT"
	PriceKindRangeTotal PriceKind = "RANGE_TOTAL"
)

func (k PriceKind) String() string {
	return string(k)
}

func (k PriceKind) Validate() error {
	allowed := []PriceKind{
		PriceKindPerUnit,
		PriceKindRangeTotal,
	}
	if !lo.Contains(allowed, k) {
		return ierr.NewError("invalid price kind").
			WithHint("Please provide a valid price kind").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// PriceBookFilter defines the filter criteria for price books
type PriceBookFilter struct {
	*QueryFilter

	Currency  *string `json:"currency,omitempty" form:"currency"`
	GeoZoneID *string `json:"geo_zone_id,omitempty" form:"geo_zone_id"`
	IsDefault *bool   `json:"is_default,omitempty" form:"is_default"`
}

func NewPriceBookFilter() *PriceBookFilter {
	return &PriceBookFilter{
		QueryFilter: NewDefaultQueryFilter(),
	}
}

func NewNoLimitPriceBookFilter() *PriceBookFilter {
	return &PriceBookFilter{
		QueryFilter: NewNoLimitQueryFilter(),
	}
}

func (f *PriceBookFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.QueryFilter != nil {
		if err := f.QueryFilter.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (f *PriceBookFilter) GetLimit() int {
	if f == nil || f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetLimit()
	}
	return f.QueryFilter.GetLimit()
}

func (f *PriceBookFilter) GetOffset() int {
	if f == nil || f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetOffset()
	}
	return f.QueryFilter.GetOffset()
}

func (f *PriceBookFilter) IsUnlimited() bool {
	if f == nil || f.QueryFilter == nil {
		return NewDefaultQueryFilter().IsUnlimited()
	}
	return f.QueryFilter.IsUnlimited()
}

// PriceBookEntryFilter defines the filter criteria for price book entries
type PriceBookEntryFilter struct {
	*QueryFilter

	PriceBookID *string `json:"price_book_id,omitempty" form:"price_book_id"`
	ProductID   *string `json:"product_id,omitempty" form:"product_id"`
}

func NewPriceBookEntryFilter() *PriceBookEntryFilter {
	return &PriceBookEntryFilter{
		QueryFilter: NewDefaultQueryFilter(),
	}
}

func (f *PriceBookEntryFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.QueryFilter != nil {
		if err := f.QueryFilter.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (f *PriceBookEntryFilter) GetLimit() int {
	if f == nil || f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetLimit()
	}
	return f.QueryFilter.GetLimit()
}

func (f *PriceBookEntryFilter) GetOffset() int {
	if f == nil || f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetOffset()
	}
	return f.QueryFilter.GetOffset()
}

func (f *PriceBookEntryFilter) IsUnlimited() bool {
	if f == nil || f.QueryFilter == nil {
		return NewDefaultQueryFilter().IsUnlimited()
	}
	return f.QueryFilter.IsUnlimited()
}

func (f *PriceBookFilter) GetSort() string {
	if f == nil || f.QueryFilter == nil {
		return FILTER_DEFAULT_SORT
	}
	return f.QueryFilter.GetSort()
}

func (f *PriceBookFilter) GetOrder() string {
	if f == nil || f.QueryFilter == nil {
		return FILTER_DEFAULT_ORDER
	}
	return f.QueryFilter.GetOrder()
}

func (f *PriceBookFilter) GetStatus() string {
	if f == nil || f.QueryFilter == nil {
		return FILTER_DEFAULT_STATUS
	}
	return f.QueryFilter.GetStatus()
}

func (f *PriceBookEntryFilter) GetSort() string {
	if f == nil || f.QueryFilter == nil {
		return FILTER_DEFAULT_SORT
	}
	return f.QueryFilter.GetSort()
}

func (f *PriceBookEntryFilter) GetOrder() string {
	if f == nil || f.QueryFilter == nil {
		return FILTER_DEFAULT_ORDER
	}
	return f.QueryFilter.GetOrder()
}

func (f *PriceBookEntryFilter) GetStatus() string {
	if f == nil || f.QueryFilter == nil {
		return FILTER_DEFAULT_STATUS
	}
	return f.QueryFilter.GetStatus()
}
