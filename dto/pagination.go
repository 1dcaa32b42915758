package dto

// Pagination describes the page window of a list response.
// Current is 1-based; Pages is the total page count for the filters.
type Pagination struct {
	Current int   `json:"current"`
	Pages   int   `json:"pages"`
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
}

// NewPagination computes the page count from the total and limit.
func NewPagination(current, limit int, total int64) Pagination {
	if current <= 0 {
		current = 1
	}
	if limit <= 0 {
		limit = 10
	}
	pages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{Current: current, Pages: pages, Total: total, Limit: limit}
}
