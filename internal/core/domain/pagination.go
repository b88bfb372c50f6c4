package domain

const (
	DefaultPage    = 1
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// PageRequest is a normalised 1-based page selector.
type PageRequest struct {
	Page    int
	PerPage int
}

// NewPageRequest applies defaults and caps.
func NewPageRequest(page, perPage int) PageRequest {
	if page < 1 {
		page = DefaultPage
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return PageRequest{Page: page, PerPage: perPage}
}

// Offset is the number of rows to skip.
func (p PageRequest) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PerPage
}

// Page is one page of results and the total row count.
type Page[T any] struct {
	Items   []T
	Total   int64
	Page    int
	PerPage int
}

// NewPage wraps items for req.
func NewPage[T any](items []T, total int64, req PageRequest) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{Items: items, Total: total, Page: req.Page, PerPage: req.PerPage}
}

// LastPage is the index of the final page, at least 1.
func (p *Page[T]) LastPage() int {
	if p.PerPage <= 0 || p.Total == 0 {
		return 1
	}
	return int((p.Total + int64(p.PerPage) - 1) / int64(p.PerPage))
}
