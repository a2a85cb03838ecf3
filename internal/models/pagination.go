package models

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	TotalRecords int `json:"totalRecords"`
	TotalPages   int `json:"totalPages"`
	CurrentPage  int `json:"currentPage"`
	PageSize     int `json:"pageSize"`
}

// NewPagination derives the page envelope metadata from a count and page window.
func NewPagination(totalRecords, page, pageSize int) *Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	totalPages := (totalRecords + pageSize - 1) / pageSize
	return &Pagination{
		TotalRecords: totalRecords,
		TotalPages:   totalPages,
		CurrentPage:  page,
		PageSize:     pageSize,
	}
}
