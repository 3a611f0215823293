// Package pagination provides page/offset helpers shared by list operations.
package pagination

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Params is a requested page. Zero values fall back to sane defaults.
type Params struct {
	Page    int
	PerPage int
}

// Normalize clamps the params into valid ranges.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

// Offset returns the SQL offset for the normalized page.
func (p Params) Offset() int {
	p = p.Normalize()
	return (p.Page - 1) * p.PerPage
}

// Result is one page of items plus totals.
type Result[T any] struct {
	Items      []T
	Total      int
	Page       int
	PerPage    int
	TotalPages int
}

// NewResult assembles a page result and computes TotalPages.
func NewResult[T any](items []T, total int, params Params) Result[T] {
	params = params.Normalize()
	pages := total / params.PerPage
	if total%params.PerPage != 0 {
		pages++
	}
	return Result[T]{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		PerPage:    params.PerPage,
		TotalPages: pages,
	}
}
