package types

// ProductFilter defines the filter criteria for products
type ProductFilter struct {
	*QueryFilter

	ProductIDs []string `json:"product_ids,omitempty" form:"product_ids"`
	Name       *string  `json:"name,omitempty" form:"name"`
}

func NewProductFilter() *ProductFilter {
	return &ProductFilter{
		QueryFilter: NewDefaultQueryFilter(),
	}
}

func NewNoLimitProductFilter() *ProductFilter {
	return &ProductFilter{
		QueryFilter: NewNoLimitQueryFilter(),
	}
}

func (f *ProductFilter) Validate() error {
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

func (f *ProductFilter) GetLimit() int {
	if f == nil || f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetLimit()
	}
	return f.QueryFilter.GetLimit()
}

func (f *ProductFilter) GetOffset() int {
	if f == nil || f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetOffset()
	}
	return f.QueryFilter.GetOffset()
}

func (f *ProductFilter) IsUnlimited() bool {
	if f == nil || f.QueryFilter == nil {
		return NewDefaultQueryFilter().IsUnlimited()
	}
	return f.QueryFilter.IsUnlimited()
}

func (f *ProductFilter) GetSort() string {
	if f == nil || f.QueryFilter == nil {
		return FILTER_DEFAULT_SORT
	}
	return f.QueryFilter.GetSort()
}

func (f *ProductFilter) GetOrder() string {
	if f == nil || f.QueryFilter == nil {
		return FILTER_DEFAULT_ORDER
	}
	return f.QueryFilter.GetOrder()
}

func (f *ProductFilter) GetStatus() string {
	if f == nil || f.QueryFilter == nil {
		return FILTER_DEFAULT_STATUS
	}
	return f.QueryFilter.GetStatus()
}
