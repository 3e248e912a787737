// Package pagination carries page/limit request parameters and the list
// envelope returned by query endpoints.
package pagination

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Params is the caller-supplied page window. Page is 1-based.
type Params struct {
	Page  int
	Limit int
}

// Normalize clamps the window to sane bounds.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Offset returns the number of rows to skip for the normalized window.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// Meta describes where a page sits within the full result set.
type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// Page is a window of entities plus its metadata.
type Page[T any] struct {
	Data       []T  `json:"data"`
	Pagination Meta `json:"pagination"`
}

// New assembles a page from the data slice and the unpaged total.
func New[T any](data []T, total int64, params Params) *Page[T] {
	params = params.Normalize()
	totalPages := int((total + int64(params.Limit) - 1) / int64(params.Limit))
	if data == nil {
		data = []T{}
	}
	return &Page[T]{
		Data: data,
		Pagination: Meta{
			Page:       params.Page,
			Limit:      params.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    params.Page < totalPages,
			HasPrev:    params.Page > 1,
		},
	}
}

// Map converts a page of one type into a page of another, keeping the metadata.
func Map[T, U any](page *Page[T], fn func(T) U) *Page[U] {
	if page == nil {
		return &Page[U]{Data: []U{}}
	}
	out := make([]U, 0, len(page.Data))
	for _, item := range page.Data {
		out = append(out, fn(item))
	}
	return &Page[U]{Data: out, Pagination: page.Pagination}
}

// Window slices an in-memory result set according to params.
func Window[T any](items []T, params Params) []T {
	params = params.Normalize()
	start := params.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + params.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
