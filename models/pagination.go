package models

type PageInfo struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	LastPage    int   `json:"last_page"`
	HasNextPage *bool `json:"has_next_page,omitempty"`
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func newPageInfo(page int, perPage int, total int64) PageInfo {
	lastPage := int((total + int64(perPage) - 1) / int64(perPage))
	if lastPage < 1 {
		lastPage = 1
	}
	hasNext := page < lastPage
	return PageInfo{
		CurrentPage: page,
		PerPage:     perPage,
		Total:       total,
		LastPage:    lastPage,
		HasNextPage: &hasNext,
	}
}
