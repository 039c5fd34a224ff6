package models

// Page sizes used across the API.
const (
	PublicListingPageSize = 12
	DefaultPageSize       = 15
	AdminMessagePageSize  = 50
)

// Pagination describes one window of a paginated result set.
type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewPagination derives the page count from a total.
func NewPagination(page, perPage int, total int64) Pagination {
	pages := int(total) / perPage
	if int(total)%perPage != 0 {
		pages++
	}
	if pages == 0 {
		pages = 1
	}
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: pages}
}
