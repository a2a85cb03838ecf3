package query

import "strconv"

const (
	defaultPage     = 1
	defaultPageSize = 10
)

// StatusAll is the sentinel label that disables status filtering.
const StatusAll = "ALL"

// Request is an ephemeral, request-scoped search description. Invalid values
// are coerced, never rejected: callers can pass raw query-string input.
type Request struct {
	// Search is the free-text term matched against the descriptor's text and
	// numeric columns.
	Search string
	// StatusLabels holds display-layer labels resolved through the
	// descriptor's label table.
	StatusLabels []string
	// Filters are extra exact-match constraints keyed by SQL column.
	Filters map[string]interface{}

	Page          int
	PageSize      int
	SortField     string
	SortDirection string
}

// ParsePage coerces a raw page parameter to a valid 1-based page number.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return defaultPage
	}
	return n
}

// ParsePageSize coerces a raw page-size parameter to a positive size.
func ParsePageSize(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return defaultPageSize
	}
	return n
}

// normalize applies the coercion rules to an already-built request.
func (r *Request) normalize() {
	if r.Page < 1 {
		r.Page = defaultPage
	}
	if r.PageSize <= 0 {
		r.PageSize = defaultPageSize
	}
}
