package types

// PriceSnapshotFilter defines the filter criteria for price snapshots
type PriceSnapshotFilter struct {
	*QueryFilter
	*TimeRangeFilter

	OrderIDs   []string `json:"order_ids,omitempty" form:"order_ids"`
	ProductIDs []string `json:"product_ids,omitempty" form:"product_ids"`
}

func NewPriceSnapshotFilter() *PriceSnapshotFilter {
	return &PriceSnapshotFilter{
		QueryFilter: NewDefaultQueryFilter(),
	}
}

func NewNoLimitPriceSnapshotFilter() *PriceSnapshotFilter {
	return &PriceSnapshotFilter{
		QueryFilter: NewNoLimitQueryFilter(),
	}
}

func (f *PriceSnapshotFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.QueryFilter != nil {
		if err := f.QueryFilter.Validate(); err != nil {
			return err
		}
	}
	if f.TimeRangeFilter != nil {
		if err := f.TimeRangeFilter.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (f *PriceSnapshotFilter) GetLimit() int {
	if f == nil || f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetLimit()
	}
	return f.QueryFilter.GetLimit()
}

func (f *PriceSnapshotFilter) GetOffset() int {
	if f == nil || f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetOffset()
	}
	return f.QueryFilter.GetOffset()
}

func (f *PriceSnapshotFilter) IsUnlimited() bool {
	if f == nil || f.QueryFilter == nil {
		return NewDefaultQueryFilter().IsUnlimited()
	}
	return f.QueryFilter.IsUnlimited()
}

func (f *PriceSnapshotFilter) GetSort() string {
	if f == nil || f.QueryFilter == nil {
		return FILTER_DEFAULT_SORT
	}
	return f.QueryFilter.GetSort()
}

func (f *PriceSnapshotFilter) GetOrder() string {
	if f == nil || f.QueryFilter == nil {
		return FILTER_DEFAULT_ORDER
	}
	return f.QueryFilter.GetOrder()
}

func (f *PriceSnapshotFilter) GetStatus() string {
	if f == nil || f.QueryFilter == nil {
		return FILTER_DEFAULT_STATUS
	}
	return f.QueryFilter.GetStatus()
}
