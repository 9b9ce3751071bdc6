package view

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnemet/staffgrid"
)

type recordingFetcher struct {
	mu    sync.Mutex
	calls []url.Values
	page  func(p staffgrid.Params) *staffgrid.Page
}

func (f *recordingFetcher) Fetch(_ context.Context, q url.Values) (*staffgrid.Page, error) {
	f.mu.Lock()
	f.calls = append(f.calls, q)
	f.mu.Unlock()
	p := staffgrid.ParseParams(q)
	return f.page(p), nil
}

func (f *recordingFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func pageOf(p staffgrid.Params, total int, records ...staffgrid.Record) *staffgrid.Page {
	return &staffgrid.Page{
		Data:       records,
		Pagination: staffgrid.NewPagination(p.Page, p.PageSize, total),
	}
}

func TestControllerDefaults(t *testing.T) {
	c := NewController(nil, 0)
	p := c.Params()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, staffgrid.DefaultPageSize, p.PageSize)
	assert.Equal(t, staffgrid.Sort{Column: staffgrid.ColNome, Direction: staffgrid.Asc}, p.Sort)
	assert.Empty(t, p.Filters)
	assert.Nil(t, c.Rows())

	_, ok := c.Pagination()
	assert.False(t, ok)
}

func TestControllerFetchesOncePerSignature(t *testing.T) {
	f := &recordingFetcher{page: func(p staffgrid.Params) *staffgrid.Page {
		return pageOf(p, 45, staffgrid.Record{ID: 1})
	}}
	c := NewController(f, 20)
	ctx := context.Background()

	applied, err := c.Refresh(ctx)
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = c.Refresh(ctx)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, 1, f.count())

	assert.Equal(t, 3, c.Pager().TotalPages)

	assert.True(t, c.Navigate((*Pager).Next))
	_, err = c.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, f.count())
	assert.Equal(t, "2", f.calls[1].Get(staffgrid.ParamPage))

	// A clamped move that lands on the same page fetches nothing.
	assert.True(t, c.Navigate((*Pager).Last))
	assert.False(t, c.Navigate((*Pager).Next))
	_, err = c.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, f.count())
}

func TestControllerFilterResetsPage(t *testing.T) {
	f := &recordingFetcher{page: func(p staffgrid.Params) *staffgrid.Page {
		return pageOf(p, 100)
	}}
	c := NewController(f, 10)
	ctx := context.Background()

	_, err := c.Refresh(ctx)
	require.NoError(t, err)
	c.Navigate(func(p *Pager) bool { return p.Jump(4) })
	assert.Equal(t, 4, c.Params().Page)

	c.SetFilter(staffgrid.ColNome, "ana")
	c.SetFilter(staffgrid.ColID, "1")
	p := c.Params()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, []staffgrid.Filter{{Column: staffgrid.ColNome, Value: "ana"}}, p.Filters)

	_, err = c.Refresh(ctx)
	require.NoError(t, err)
	last := f.calls[len(f.calls)-1]
	assert.Equal(t, "ana", last.Get("nome"))
	assert.Empty(t, last.Get("id"))

	c.SetFilter(staffgrid.ColNome, "")
	assert.Empty(t, c.Params().Filters)
}

// Header clicks reorder only the page on screen. The rows on that page were
// still chosen by the server sort (nome asc), so a descending client sort on
// page 1 is not the global top of the column.
func TestControllerClientSortOnlyReordersLoadedPage(t *testing.T) {
	f := &recordingFetcher{page: func(p staffgrid.Params) *staffgrid.Page {
		return pageOf(p, 40,
			staffgrid.Record{ID: 5, Nome: str("Ana")},
			staffgrid.Record{ID: 9, Nome: str("Bia")},
			staffgrid.Record{ID: 2, Nome: str("Caio")},
		)
	}}
	c := NewController(f, 3)
	ctx := context.Background()

	_, err := c.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 5, 9}, ids(c.Rows()))

	c.ToggleSort(staffgrid.ColNome)
	assert.Equal(t, SortState{Key: staffgrid.ColNome, Dir: staffgrid.Desc}, c.ClientSort())
	assert.Equal(t, []int64{2, 9, 5}, ids(c.Rows()))

	applied, err := c.Refresh(ctx)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, 1, f.count())
	assert.Equal(t, staffgrid.ColNome, c.Params().Sort.Column)
	assert.Equal(t, staffgrid.Asc, c.Params().Sort.Direction)
}

func TestControllerToggleSortResetsPage(t *testing.T) {
	f := &recordingFetcher{page: func(p staffgrid.Params) *staffgrid.Page {
		return pageOf(p, 100)
	}}
	c := NewController(f, 10)
	_, err := c.Refresh(context.Background())
	require.NoError(t, err)

	c.Navigate((*Pager).Last)
	assert.Equal(t, 10, c.Params().Page)

	c.ToggleSort(staffgrid.ColCargo)
	assert.Equal(t, 1, c.Params().Page)
}

func TestControllerDiscardsStaleResponse(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once

	fetcher := FetcherFunc(func(ctx context.Context, q url.Values) (*staffgrid.Page, error) {
		p := staffgrid.ParseParams(q)
		if q.Get("nome") == "slow" {
			once.Do(func() { close(started) })
			<-release
			return pageOf(p, 1, staffgrid.Record{ID: 100}), nil
		}
		return pageOf(p, 1, staffgrid.Record{ID: 200}), nil
	})
	c := NewController(fetcher, 20)
	ctx := context.Background()

	c.SetFilter(staffgrid.ColNome, "slow")
	errc := make(chan error, 1)
	go func() {
		_, err := c.Refresh(ctx)
		errc <- err
	}()
	<-started

	c.SetFilter(staffgrid.ColNome, "fast")
	applied, err := c.Refresh(ctx)
	require.NoError(t, err)
	assert.True(t, applied)

	close(release)
	assert.ErrorIs(t, <-errc, ErrStale)
	assert.Equal(t, []int64{200}, ids(c.Rows()))
}

func TestControllerFetchError(t *testing.T) {
	boom := errors.New("boom")
	fail := true
	fetcher := FetcherFunc(func(ctx context.Context, q url.Values) (*staffgrid.Page, error) {
		if fail {
			return nil, boom
		}
		return pageOf(staffgrid.ParseParams(q), 0), nil
	})
	c := NewController(fetcher, 20)

	_, err := c.Refresh(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, c.Rows())

	fail = false
	applied, err := c.Refresh(context.Background())
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Empty(t, c.Rows())
}

func TestControllerNilPageIsAnError(t *testing.T) {
	fetcher := FetcherFunc(func(ctx context.Context, q url.Values) (*staffgrid.Page, error) {
		return nil, nil
	})
	c := NewController(fetcher, 20)

	applied, err := c.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrEmptyResponse)
	assert.False(t, applied)
	assert.Nil(t, c.Rows())
	_, ok := c.Pagination()
	assert.False(t, ok)
	assert.Equal(t, 1, c.Pager().TotalPages)
}
