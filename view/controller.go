// Package view holds the presentation side of the directory: client-side
// ordering, status classification, formatting and the paging state that
// decides when a new fetch is needed.
package view

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"github.com/gnemet/staffgrid"
)

// ErrStale is returned by Refresh when a newer Refresh started while this
// one was in flight. The stale response is dropped.
var ErrStale = errors.New("view: response superseded by a newer request")

// ErrEmptyResponse is returned by Refresh when a Fetcher reports success
// without a page.
var ErrEmptyResponse = errors.New("view: fetcher returned no page")

// Fetcher retrieves one page for an encoded query string.
type Fetcher interface {
	Fetch(ctx context.Context, q url.Values) (*staffgrid.Page, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, q url.Values) (*staffgrid.Page, error)

func (f FetcherFunc) Fetch(ctx context.Context, q url.Values) (*staffgrid.Page, error) {
	return f(ctx, q)
}

// HandlerFetcher fetches in-process through a staffgrid.Handler.
type HandlerFetcher struct {
	Handler *staffgrid.Handler
}

func (f HandlerFetcher) Fetch(ctx context.Context, q url.Values) (*staffgrid.Page, error) {
	return f.Handler.FetchData(ctx, staffgrid.ParseParams(q))
}

// Controller is the state behind one directory screen: filters, server sort,
// pager and client sort. It fetches once per distinct query signature and
// only ever applies the response of the latest fetch.
type Controller struct {
	fetcher Fetcher

	mu         sync.Mutex
	filters    map[staffgrid.Column]string
	serverSort staffgrid.Sort
	pager      *Pager
	clientSort SortState

	seq        uint64
	pendingSig string
	loadedSig  string
	page       *staffgrid.Page
}

func NewController(f Fetcher, pageSize int) *Controller {
	return &Controller{
		fetcher:    f,
		filters:    make(map[staffgrid.Column]string),
		serverSort: staffgrid.Sort{Column: staffgrid.DefaultSortColumn, Direction: staffgrid.Asc},
		pager:      NewPager(pageSize),
	}
}

// SetFilter sets or clears (empty value) the filter on c and goes back to page 1.
// Non-filterable columns are ignored.
func (c *Controller) SetFilter(col staffgrid.Column, value string) {
	if !col.Filterable() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if value == "" {
		delete(c.filters, col)
	} else {
		c.filters[col] = value
	}
	c.pager.Page = 1
}

// ClearFilters removes every filter and goes back to page 1.
func (c *Controller) ClearFilters() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.filters)
	c.pager.Page = 1
}

// SetServerSort changes the ORDER BY used to choose rows for each page.
func (c *Controller) SetServerSort(s staffgrid.Sort) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.serverSort = s
	c.pager.Page = 1
}

// ToggleSort handles a column header click. It only reorders the rows
// already on screen, yet it also resets the server paging to page 1.
func (c *Controller) ToggleSort(col staffgrid.Column) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clientSort.Toggle(col)
	c.pager.Page = 1
}

// SetClientSort replaces the client ordering without touching paging.
func (c *Controller) SetClientSort(s SortState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clientSort = s
}

func (c *Controller) ClientSort() SortState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clientSort
}

// Navigate applies a pager move and reports whether the page changed.
func (c *Controller) Navigate(move func(*Pager) bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return move(c.pager)
}

// Pager returns a snapshot of the paging state.
func (c *Controller) Pager() Pager {
	c.mu.Lock()
	defer c.mu.Unlock()
	return *c.pager
}

// Params is the server request the current state maps to.
func (c *Controller) Params() staffgrid.Params {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paramsLocked()
}

func (c *Controller) paramsLocked() staffgrid.Params {
	p := staffgrid.Params{
		Sort:     c.serverSort,
		Page:     c.pager.Page,
		PageSize: c.pager.PageSize,
	}
	for _, col := range staffgrid.Columns() {
		if v, ok := c.filters[col]; ok {
			p.Filters = append(p.Filters, staffgrid.Filter{Column: col, Value: v})
		}
	}
	return p
}

// Signature identifies the current query; equal signatures never refetch.
func (c *Controller) Signature() string {
	return c.Params().Values().Encode()
}

// Refresh fetches the page for the current state unless that exact query is
// already loaded or in flight. It reports whether a new page was applied.
func (c *Controller) Refresh(ctx context.Context) (bool, error) {
	c.mu.Lock()
	q := c.paramsLocked().Values()
	sig := q.Encode()
	if sig == c.loadedSig || sig == c.pendingSig {
		c.mu.Unlock()
		return false, nil
	}
	c.seq++
	seq := c.seq
	c.pendingSig = sig
	c.mu.Unlock()

	page, err := c.fetcher.Fetch(ctx, q)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		return false, ErrStale
	}
	c.pendingSig = ""
	if err != nil {
		return false, err
	}
	if page == nil {
		return false, ErrEmptyResponse
	}
	c.page = page
	c.loadedSig = sig
	c.pager.Update(page.Pagination)
	return true, nil
}

// Rows returns the loaded page ordered by the client sort.
func (c *Controller) Rows() []staffgrid.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.page == nil {
		return nil
	}
	return Sort(c.page.Data, c.clientSort)
}

// Pagination returns the metadata of the loaded page.
func (c *Controller) Pagination() (staffgrid.Pagination, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.page == nil {
		return staffgrid.Pagination{}, false
	}
	return c.page.Pagination, true
}
