package view

import "github.com/gnemet/staffgrid"

// Pager tracks the page the user is looking at. Every move is clamped to
// [1, TotalPages] and reports whether the page actually changed.
type Pager struct {
	Page       int
	PageSize   int
	TotalPages int
}

func NewPager(pageSize int) *Pager {
	switch {
	case pageSize < 1:
		pageSize = staffgrid.DefaultPageSize
	case pageSize > staffgrid.MaxPageSize:
		pageSize = staffgrid.MaxPageSize
	}
	return &Pager{Page: 1, PageSize: pageSize, TotalPages: 1}
}

func (p *Pager) First() bool { return p.Jump(1) }

func (p *Pager) Prev() bool { return p.Jump(p.Page - 1) }

func (p *Pager) Next() bool { return p.Jump(p.Page + 1) }

func (p *Pager) Last() bool { return p.Jump(p.TotalPages) }

// Jump moves to page n, clamped. It returns false when the clamped target
// is the current page, in which case nothing needs fetching.
func (p *Pager) Jump(n int) bool {
	n = staffgrid.ClampPage(n, p.TotalPages)
	if n == p.Page {
		return false
	}
	p.Page = n
	return true
}

// Update records the page count reported by the server.
func (p *Pager) Update(pg staffgrid.Pagination) {
	p.TotalPages = max(1, pg.TotalPages)
}

func (p *Pager) HasPrev() bool { return p.Page > 1 }

func (p *Pager) HasNext() bool { return p.Page < p.TotalPages }
