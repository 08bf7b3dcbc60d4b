package types

// PaginationResponse reports where a returned page sits in the full result
// set. Offset is the offset the page was fetched at, not the next one.
type PaginationResponse struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ListResponse is the common envelope for list endpoints.
type ListResponse[T any] struct {
	Items      []T                `json:"items"`
	Pagination PaginationResponse `json:"pagination"`
}

// NewListResponse wraps a fetched page with its pagination metadata.
func NewListResponse[T any](items []T, total, limit, offset int) ListResponse[T] {
	return ListResponse[T]{
		Items:      items,
		Pagination: PaginationResponse{Total: total, Limit: limit, Offset: offset},
	}
}
