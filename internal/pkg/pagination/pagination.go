// internal/pkg/pagination/pagination.go
package pagination

import "math"

const MaxLimit = 100

// Meta is the pagination block returned next to list data
type Meta struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// Normalize clamps page to >= 1 and limit to (0, MaxLimit], using
// defaultLimit when the caller sent nothing usable.
func Normalize(page, limit, defaultLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

// Offset returns the row offset for a normalized page/limit pair
func Offset(page, limit int) int {
	return (page - 1) * limit
}

// NewMeta builds the response block
func NewMeta(page, limit int, total int64) Meta {
	pages := 0
	if limit > 0 {
		pages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return Meta{Page: page, Limit: limit, Total: total, Pages: pages}
}
