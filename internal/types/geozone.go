package types

// GeoZoneFilter defines the filter criteria for geo zones
type GeoZoneFilter struct {
	*QueryFilter

	ParentID     *string `json:"parent_id,omitempty" form:"parent_id"`
	IsRestricted *bool   `json:"is_restricted,omitempty" form:"is_restricted"`
}

func NewGeoZoneFilter() *GeoZoneFilter {
	return &GeoZoneFilter{
		QueryFilter: NewDefaultQueryFilter(),
	}
}

func NewNoLimitGeoZoneFilter() *GeoZoneFilter {
	return &GeoZoneFilter{
		QueryFilter: NewNoLimitQueryFilter(),
	}
}

func (f *GeoZoneFilter) Validate() error {
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

func (f *GeoZoneFilter) GetLimit() int {
	if f == nil || f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetLimit()
	}
	return f.QueryFilter.GetLimit()
}

func (f *GeoZoneFilter) GetOffset() int {
	if f == nil || f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetOffset()
	}
	return f.QueryFilter.GetOffset()
}

func (f *GeoZoneFilter) IsUnlimited() bool {
	if f == nil || f.QueryFilter == nil {
		return NewDefaultQueryFilter().IsUnlimited()
	}
	return f.QueryFilter.IsUnlimited()
}

func (f *GeoZoneFilter) GetSort() string {
	if f == nil || f.QueryFilter == nil {
		return FILTER_DEFAULT_SORT
	}
	return f.QueryFilter.GetSort()
}

func (f *GeoZoneFilter) GetOrder() string {
	if f == nil || f.QueryFilter == nil {
		return FILTER_DEFAULT_ORDER
	}
	return f.QueryFilter.GetOrder()
}

func (f *GeoZoneFilter) GetStatus() string {
	if f == nil || f.QueryFilter == nil {
		return FILTER_DEFAULT_STATUS
	}
	return f.QueryFilter.GetStatus()
}
