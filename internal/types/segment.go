package types

// UserSegmentFilter defines the filter criteria for user segments
type UserSegmentFilter struct {
	*QueryFilter

	Codes []string `json:"codes,omitempty" form:"codes"`
}

func NewUserSegmentFilter() *UserSegmentFilter {
	return &UserSegmentFilter{
		QueryFilter: NewDefaultQueryFilter(),
	}
}

func NewNoLimitUserSegmentFilter() *UserSegmentFilter {
	return &UserSegmentFilter{
		QueryFilter: NewNoLimitQueryFilter(),
	}
}

func (f *UserSegmentFilter) Validate() error {
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

func (f *UserSegmentFilter) GetLimit() int {
	if f == nil || f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetLimit()
	}
	return f.QueryFilter.GetLimit()
}

func (f *UserSegmentFilter) GetOffset() int {
	if f == nil || f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetOffset()
	}
	return f.QueryFilter.GetOffset()
}

func (f *UserSegmentFilter) IsUnlimited() bool {
	if f == nil || f.QueryFilter == nil {
		return NewDefaultQueryFilter().IsUnlimited()
	}
	return f.QueryFilter.IsUnlimited()
}

func (f *UserSegmentFilter) GetSort() string {
	if f == nil || f.QueryFilter == nil {
		return FILTER_DEFAULT_SORT
	}
	return f.QueryFilter.GetSort()
}

func (f *UserSegmentFilter) GetOrder() string {
	if f == nil || f.QueryFilter == nil {
		return FILTER_DEFAULT_ORDER
	}
	return f.QueryFilter.GetOrder()
}

func (f *UserSegmentFilter) GetStatus() string {
	if f == nil || f.QueryFilter == nil {
		return FILTER_DEFAULT_STATUS
	}
	return f.QueryFilter.GetStatus()
}
